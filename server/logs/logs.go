// Package logs exposes info, warning and error loggers.
package logs

import (
	"io"
	"log"
	"os"
	"strings"
)

// Logging levels.
var (
	Info *log.Logger
	Warn *log.Logger
	Err  *log.Logger
)

func init() {
	// Default loggers, reconfigured by Init once flags are parsed.
	Init(os.Stderr, "stdFlags")
}

// Init initializes loggers. The flags string is a comma-separated list of
// standard log flag names: "date", "time", "microseconds", "utc", "shortfile",
// "longfile", or "stdFlags" as a shortcut for "date,time".
func Init(out io.Writer, flagList string) {
	if out == nil {
		out = os.Stderr
	}

	var flags int
	for _, str := range strings.Split(flagList, ",") {
		switch strings.TrimSpace(str) {
		case "date":
			flags |= log.Ldate
		case "time":
			flags |= log.Ltime
		case "microseconds":
			flags |= log.Lmicroseconds
		case "utc":
			flags |= log.LUTC
		case "shortfile":
			flags |= log.Lshortfile
		case "longfile":
			flags |= log.Llongfile
		case "stdFlags":
			flags |= log.LstdFlags
		}
	}

	Info = log.New(out, "I", flags)
	Warn = log.New(out, "W", flags)
	Err = log.New(out, "E", flags)
}
