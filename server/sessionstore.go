/******************************************************************************
 *
 *  Description :
 *
 *    Management of the live session list.
 *
 *****************************************************************************/

package main

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/abunechat/chat/server/store"
	"github.com/abunechat/chat/server/store/types"
)

// SessionStore holds live sessions keyed by session id.
type SessionStore struct {
	lock sync.Mutex

	// All sessions indexed by session ID.
	sessCache map[string]*Session
}

// NewSessionStore initializes the session store.
func NewSessionStore() *SessionStore {
	ss := &SessionStore{sessCache: make(map[string]*Session)}
	statsRegisterInt("LiveSessions")
	statsRegisterInt("TotalSessions")
	return ss
}

// NewSession creates a new session and saves it to the session store.
func (ss *SessionStore) NewSession(conn *websocket.Conn, user *types.User,
	remoteAddr, userAgent string) *Session {

	s := &Session{
		sid:        store.GetUidString(),
		ws:         conn,
		remoteAddr: remoteAddr,
		userAgent:  userAgent,
		uid:        user.Uid(),
		user:       user,
		community:  user.Community(),
		send:       make(chan *ServerComMessage, sendQueueLimit),
		stop:       make(chan *ServerComMessage, 1),
		lastAction: types.TimeNow(),
	}

	ss.lock.Lock()
	ss.sessCache[s.sid] = s
	ss.lock.Unlock()

	statsInc("LiveSessions", 1)
	statsInc("TotalSessions", 1)
	return s
}

// Get fetches a session from the store by session ID.
func (ss *SessionStore) Get(sid string) *Session {
	ss.lock.Lock()
	defer ss.lock.Unlock()
	return ss.sessCache[sid]
}

// Delete removes the session from the store.
func (ss *SessionStore) Delete(s *Session) {
	ss.lock.Lock()
	defer ss.lock.Unlock()

	if _, found := ss.sessCache[s.sid]; found {
		delete(ss.sessCache, s.sid)
		statsInc("LiveSessions", -1)
	}
}

// Range calls given function for all sessions. Stops if the function returns false.
func (ss *SessionStore) Range(f func(sid string, s *Session) bool) {
	ss.lock.Lock()
	defer ss.lock.Unlock()

	for sid, s := range ss.sessCache {
		if !f(sid, s) {
			break
		}
	}
}

// Shutdown asks every live session to close. Sessions deregister themselves
// as their loops exit.
func (ss *SessionStore) Shutdown() {
	ss.lock.Lock()
	defer ss.lock.Unlock()

	shutdown := NoErrShutdown(types.TimeNow())
	for _, s := range ss.sessCache {
		s.stop <- shutdown
	}
}
