/******************************************************************************
 *
 *  Description :
 *
 *    The hub is the single fan-out point between the routing layer and live
 *    sessions. Messages addressed to one user are delivered to that user's
 *    authoritative connection; community-scoped messages are delivered to
 *    every connected member.
 *
 *****************************************************************************/

package main

import (
	"github.com/abunechat/chat/server/logs"
	"github.com/abunechat/chat/server/store/types"
)

// Hub delivers server messages to live sessions. All routing state is owned
// by the run() goroutine; other goroutines communicate through channels only.
type Hub struct {
	// Messages to deliver to users or communities.
	route chan *ServerComMessage

	// Request to shut down; reports back when the routing loop has stopped.
	shutdown chan chan<- bool

	presence *PresenceRegistry
	sessions *SessionStore
}

func newHub(presence *PresenceRegistry, sessions *SessionStore) *Hub {
	h := &Hub{
		route:    make(chan *ServerComMessage, 4096),
		shutdown: make(chan chan<- bool),
		presence: presence,
		sessions: sessions,
	}
	statsRegisterInt("DeliveredMessagesTotal")
	statsRegisterInt("FanoutFailuresTotal")
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case msg := <-h.route:
			h.dispatch(msg)

		case done := <-h.shutdown:
			// Drain whatever was queued before the shutdown request.
			for {
				select {
				case msg := <-h.route:
					h.dispatch(msg)
				default:
					done <- true
					return
				}
			}
		}
	}
}

// dispatch delivers one message. Failures are logged and counted, never
// propagated: by the time a message reaches the hub it is already durable,
// a missed live delivery is recovered by the client from history.
func (h *Hub) dispatch(msg *ServerComMessage) {
	if !msg.rcptTo.IsZero() {
		h.deliverTo(msg.rcptTo, msg)
		return
	}

	if msg.community.IsZero() {
		logs.Err.Println("hub: message with no destination dropped")
		return
	}
	for _, uid := range h.presence.OnlineUsers(msg.community) {
		h.deliverTo(uid, msg)
	}
}

func (h *Hub) deliverTo(uid types.Uid, msg *ServerComMessage) {
	connId, online := h.presence.ConnFor(uid)
	if !online {
		// Offline recipients pick the message up from storage later.
		return
	}
	if msg.skipSid != "" && connId == msg.skipSid {
		return
	}

	sess := h.sessions.Get(connId)
	if sess == nil {
		statsInc("FanoutFailuresTotal", 1)
		logs.Warn.Println("hub: no session for live connection", connId)
		return
	}
	if !sess.queueOut(msg) {
		statsInc("FanoutFailuresTotal", 1)
		logs.Warn.Println("hub: failed to queue message for", uid.String(), "sid", connId)
		return
	}
	statsInc("DeliveredMessagesTotal", 1)
}

// stop terminates the routing loop after draining queued messages.
func (h *Hub) stop() {
	done := make(chan bool)
	h.shutdown <- done
	<-done
}
