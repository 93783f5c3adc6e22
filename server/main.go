/******************************************************************************
 *
 *  Description :
 *
 *  Setup & initialization.
 *
 *****************************************************************************/

package main

import (
	"encoding/json"
	"expvar"
	"flag"
	"net/http"
	"os"
	"path/filepath"
	"runtime"

	"github.com/tinode/jsonco"

	"github.com/abunechat/chat/server/logs"
	"github.com/abunechat/chat/server/store"

	// Database backends.
	_ "github.com/abunechat/chat/server/db/mysql"
	_ "github.com/abunechat/chat/server/db/postgres"
)

const (
	// currentVersion is the version of the API.
	currentVersion = "0.1"
)

// Build version number defined by the compiler:
//
//	-ldflags "-X main.buildstamp=value_to_assign_to_buildstamp"
var buildstamp = "undef"

var globals struct {
	hub          *Hub
	sessionStore *SessionStore
	presence     *PresenceRegistry
	convos       *ConversationAggregator
	router       *MessageRouter

	// Add Strict-Transport-Security to headers, the value signifies age.
	// Empty string "" turns it off
	tlsStrictMaxAge string

	// Channel for messages to the stats updater.
	statsUpdate chan *varUpdate
}

type configType struct {
	// HTTP(S) address:port to listen on.
	Listen string `json:"listen"`
	// URL path for mounting the websocket endpoint.
	ApiPath string `json:"api_path"`
	// URL path for exposing runtime stats. Disabled if the path is blank.
	ExpvarPath string `json:"expvar"`
	// Snowflake worker id, beween 0 and 1023.
	WorkerID int `json:"worker_id"`
	// Configuration of the store backends.
	Store json.RawMessage `json:"store_config"`
	// Configuration of TLS.
	TLS json.RawMessage `json:"tls"`
}

func main() {
	logFlags := flag.String("log_flags", "stdFlags",
		"Comma-separated list of log flags (as defined in https://golang.org/pkg/log/ without the L prefix)")
	configfile := flag.String("config", "chat.conf", "Path to config file.")
	listenOn := flag.String("listen", "", "Override address and port to listen on for HTTP(S) clients.")
	tlsEnabled := flag.Bool("tls_enabled", false, "Override config value for enabling TLS.")
	expvarPath := flag.String("expvar", "", "Override the path where runtime stats are exposed. Use '-' to disable.")
	initDb := flag.Bool("init_db", false, "Create the database schema and exit.")
	resetDb := flag.Bool("reset_db", false, "Drop and recreate the database schema and exit.")
	flag.Parse()

	logs.Init(os.Stderr, *logFlags)

	curwd, err := os.Getwd()
	if err != nil {
		logs.Err.Fatal("Couldn't get current working directory: ", err)
	}

	logs.Info.Printf("Server v%s:%s; pid %d; %d process(es)",
		currentVersion, buildstamp, os.Getpid(), runtime.GOMAXPROCS(runtime.NumCPU()))

	*configfile = toAbsolutePath(curwd, *configfile)
	logs.Info.Printf("Using config from '%s'", *configfile)

	var config configType
	if file, err := os.Open(*configfile); err != nil {
		logs.Err.Fatal("Failed to read config file: ", err)
	} else {
		jr := jsonco.New(file)
		if err = json.NewDecoder(jr).Decode(&config); err != nil {
			switch jerr := err.(type) {
			case *json.UnmarshalTypeError:
				lnum, cnum, _ := jr.LineAndChar(jerr.Offset)
				logs.Err.Fatalf("Unmarshall error in config file in %s at %d:%d (offset %d bytes): %s",
					jerr.Field, lnum, cnum, jerr.Offset, jerr.Error())
			case *json.SyntaxError:
				lnum, cnum, _ := jr.LineAndChar(jerr.Offset)
				logs.Err.Fatalf("Syntax error in config file at %d:%d (offset %d bytes): %s",
					lnum, cnum, jerr.Offset, jerr.Error())
			default:
				logs.Err.Fatal("Failed to parse config file: ", err)
			}
		}
		file.Close()
	}

	if *initDb || *resetDb {
		if err := store.InitDb(config.Store, *resetDb); err != nil {
			logs.Err.Fatal("Failed to initialize the database: ", err)
		}
		logs.Info.Println("Database successfully initialized")
		return
	}

	if err := store.Open(config.WorkerID, config.Store); err != nil {
		logs.Err.Fatal("Failed to connect to DB: ", err)
	}
	logs.Info.Println("DB adapter", store.GetAdapterName())
	defer func() {
		store.Close()
		logs.Info.Println("Closed database connection(s)")
		logs.Info.Println("All done, good bye")
	}()

	if *listenOn != "" {
		config.Listen = *listenOn
	}
	if *expvarPath != "" {
		config.ExpvarPath = *expvarPath
	}
	if config.ApiPath == "" {
		config.ApiPath = "/v0/channels"
	}

	mux := http.NewServeMux()

	statsInit(mux, config.ExpvarPath)
	statsRegisterInt("IncomingMessagesTotal")
	statsRegisterInt("IncomingWebsockPackets")
	statsRegisterInt("OutgoingWebsockPackets")
	if dbStats := store.DbStats(); dbStats != nil {
		expvar.Publish("DbStats", expvar.Func(dbStats))
	}

	globals.sessionStore = NewSessionStore()
	globals.presence = NewPresenceRegistry()
	globals.convos = NewConversationAggregator()
	globals.hub = newHub(globals.presence, globals.sessionStore)
	globals.router = NewMessageRouter(globals.presence, globals.convos, globals.hub)

	mux.HandleFunc(config.ApiPath, serveWebSocket)
	mux.HandleFunc("/", serve404)

	if err := listenAndServe(config.Listen, mux, *tlsEnabled, string(config.TLS), signalHandler()); err != nil {
		logs.Err.Fatal(err)
	}
}

// toAbsolutePath converts a relative filepath to absolute.
func toAbsolutePath(base, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Clean(filepath.Join(base, path))
}
