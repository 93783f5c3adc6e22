/******************************************************************************
 *
 *  Description :
 *
 *    Handler of websocket connections. Identity is established by the
 *    fronting authenticator which passes the resolved user id with the
 *    upgrade request; the handler verifies the account is a live community
 *    member before admitting the connection.
 *
 *****************************************************************************/

package main

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/abunechat/chat/server/logs"
	"github.com/abunechat/chat/server/store"
	"github.com/abunechat/chat/server/store/types"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 55 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 1 << 19 // 512K
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Connections are pre-authenticated by the fronting service; allow
	// all origins here.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (s *Session) closeWS() {
	s.ws.Close()
}

func (s *Session) readLoop() {
	defer func() {
		s.closeWS()
		s.cleanUp()
	}()

	s.ws.SetReadLimit(maxMessageSize)
	s.ws.SetReadDeadline(time.Now().Add(pongWait))
	s.ws.SetPongHandler(func(string) error {
		s.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		// Read a ClientComMessage
		_, raw, err := s.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logs.Warn.Println("ws: readLoop", s.sid, err)
			}
			return
		}
		statsInc("IncomingWebsockPackets", 1)
		s.dispatchRaw(raw)
	}
}

func (s *Session) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		// Break readLoop.
		s.closeWS()
	}()

	for {
		select {
		case msg, ok := <-s.send:
			if !ok {
				return
			}
			if err := wsWrite(s.ws, msg); err != nil {
				logs.Err.Println("ws: writeLoop", s.sid, err)
				return
			}
			statsInc("OutgoingWebsockPackets", 1)

		case msg := <-s.stop:
			// Shutdown requested, don't care if the message is delivered.
			if msg != nil {
				wsWrite(s.ws, msg)
			}
			return

		case <-ticker.C:
			if err := wsPing(s.ws); err != nil {
				logs.Err.Println("ws: writeLoop ping", s.sid, err)
				return
			}
		}
	}
}

func wsWrite(ws *websocket.Conn, msg *ServerComMessage) error {
	ws.SetWriteDeadline(time.Now().Add(writeWait))
	return ws.WriteJSON(msg)
}

func wsPing(ws *websocket.Conn) error {
	ws.SetWriteDeadline(time.Now().Add(writeWait))
	return ws.WriteMessage(websocket.PingMessage, []byte{})
}

// serveWebSocket upgrades the request, admits the user and starts the
// session loops. Presence is made live only after the identity checks pass.
func serveWebSocket(wrt http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		wrt.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	uid := types.ParseUid(req.URL.Query().Get("uid"))
	if uid.IsZero() {
		wrt.WriteHeader(http.StatusUnauthorized)
		return
	}

	user, err := store.Users.Get(uid)
	if err != nil {
		logs.Warn.Println("ws: identity lookup failed", err)
		wrt.WriteHeader(http.StatusUnauthorized)
		return
	}
	if !isCommunityMember(user, user.Community()) {
		// Unapproved, suspended or inactive accounts don't get a live session.
		wrt.WriteHeader(http.StatusForbidden)
		return
	}

	ws, err := upgrader.Upgrade(wrt, req, nil)
	if err != nil {
		logs.Err.Println("ws: failed to upgrade", err)
		return
	}

	sess := globals.sessionStore.NewSession(ws, user, req.RemoteAddr, req.UserAgent())
	logs.Info.Println("ws: session started", sess.sid, sess.remoteAddr)

	// A newer connection is authoritative; kick the replaced one.
	if replaced := globals.presence.Connect(uid, user.Community(), sess.sid); replaced != "" {
		if old := globals.sessionStore.Get(replaced); old != nil {
			old.stop <- NoErrShutdown(types.TimeNow())
		}
	} else {
		// The user went from offline to online; tell the community.
		globals.hub.route <- &ServerComMessage{
			Pres: &MsgServerPres{
				What:      evtUserOnline,
				User:      uid.String(),
				Timestamp: types.TimeNow()},
			community: user.Community(),
			skipSid:   sess.sid,
		}
	}

	sess.pushInitialState()

	go sess.writeLoop()
	sess.readLoop()
}
