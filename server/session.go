/******************************************************************************
 *
 *  Description :
 *
 *    Handling of a single websocket session: parsing incoming packets,
 *    dispatching them to the router and aggregator, and queuing outbound
 *    messages for the write loop.
 *
 *****************************************************************************/

package main

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/abunechat/chat/server/logs"
	"github.com/abunechat/chat/server/store"
	"github.com/abunechat/chat/server/store/types"
)

// Maximum number of queued outbound messages before the session is considered
// too slow and the message is dropped.
const sendQueueLimit = 128

// Session is a single live websocket connection with an authenticated user
// behind it.
type Session struct {
	// Session id, used as the connection id in the presence registry.
	sid string

	// Underlying websocket connection.
	ws *websocket.Conn

	// IP address of the client.
	remoteAddr string

	// User agent, a string provided by the client.
	userAgent string

	// Authenticated identity. Immutable for the session's lifetime.
	uid       types.Uid
	user      *types.User
	community types.Uid

	// Outbound messages, buffered.
	send chan *ServerComMessage

	// Channel for shutting down the session, buffer 1.
	// Content in the same format as for 'send'.
	stop chan *ServerComMessage

	// Time of the last packet received from the client.
	lastAction time.Time
}

// queueOut attempts to send a message to the session write loop; returns
// false if the send queue is full or the session is already closed.
func (s *Session) queueOut(msg *ServerComMessage) bool {
	if s == nil {
		return true
	}
	select {
	case s.send <- msg:
		return true
	default:
		logs.Err.Println("session: outbound queue full, packet dropped", s.sid)
		return false
	}
}

// dispatchRaw unmarshals the wire packet and processes it.
func (s *Session) dispatchRaw(raw []byte) {
	var msg ClientComMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		logs.Warn.Println("session: parse failed", err, s.sid)
		s.queueOut(ErrMalformed("", types.TimeNow()))
		return
	}
	s.dispatch(&msg)
}

func (s *Session) dispatch(msg *ClientComMessage) {
	s.lastAction = types.TimeNow()
	msg.timestamp = s.lastAction
	msg.from = s.uid
	msg.community = s.community
	msg.sess = s

	statsInc("IncomingMessagesTotal", 1)

	var handler func(*ClientComMessage)
	count := 0
	if msg.Send != nil {
		handler, msg.id = s.sendMsg, msg.Send.Id
		count++
	}
	if msg.Bcast != nil {
		handler, msg.id = s.bcastMsg, msg.Bcast.Id
		count++
	}
	if msg.Edit != nil {
		handler, msg.id = s.editMsg, msg.Edit.Id
		count++
	}
	if msg.Del != nil {
		handler, msg.id = s.delMsg, msg.Del.Id
		count++
	}
	if msg.Fwd != nil {
		handler, msg.id = s.fwdMsg, msg.Fwd.Id
		count++
	}
	if msg.React != nil {
		handler, msg.id = s.reactMsg, msg.React.Id
		count++
	}
	if msg.Read != nil {
		handler, msg.id = s.readMsg, msg.Read.Id
		count++
	}
	if msg.Note != nil {
		handler = s.noteMsg
		count++
	}
	if msg.Get != nil {
		handler, msg.id = s.getMsg, msg.Get.Id
		count++
	}

	if count != 1 {
		s.queueOut(ErrMalformed(msg.id, msg.timestamp))
		return
	}
	handler(msg)
}

func (s *Session) sendMsg(msg *ClientComMessage) {
	to := types.ParseUid(msg.Send.To)
	if to.IsZero() {
		s.queueOut(ErrMalformed(msg.id, msg.timestamp))
		return
	}
	stored, err := globals.router.SendDirect(s.user, to,
		types.ParseContentKind(msg.Send.Kind), msg.Send.Content, msg.Send.FileRef,
		types.ParseUid(msg.Send.ReplyTo))
	if err != nil {
		s.queueOut(storeErrReply(msg.id, err, msg.timestamp))
		return
	}
	s.queueOut(NoErrCreated(msg.id, msg.timestamp,
		map[string]any{"msg": stored.Id, "ts": stored.CreatedAt}))
}

func (s *Session) bcastMsg(msg *ClientComMessage) {
	stored, err := globals.router.SendBroadcast(s.user,
		types.ParseContentKind(msg.Bcast.Kind), msg.Bcast.Content, msg.Bcast.FileRef)
	if err != nil {
		s.queueOut(storeErrReply(msg.id, err, msg.timestamp))
		return
	}
	s.queueOut(NoErrCreated(msg.id, msg.timestamp,
		map[string]any{"msg": stored.Id, "ts": stored.CreatedAt}))
}

func (s *Session) editMsg(msg *ClientComMessage) {
	msgId := types.ParseUid(msg.Edit.Msg)
	if msgId.IsZero() {
		s.queueOut(ErrMalformed(msg.id, msg.timestamp))
		return
	}
	if _, err := globals.router.Edit(s.user, msgId, msg.Edit.Content); err != nil {
		s.queueOut(storeErrReply(msg.id, err, msg.timestamp))
		return
	}
	s.queueOut(NoErr(msg.id, msg.timestamp))
}

func (s *Session) delMsg(msg *ClientComMessage) {
	msgId := types.ParseUid(msg.Del.Msg)
	if msgId.IsZero() {
		s.queueOut(ErrMalformed(msg.id, msg.timestamp))
		return
	}
	if err := globals.router.Delete(s.user, msgId); err != nil {
		s.queueOut(storeErrReply(msg.id, err, msg.timestamp))
		return
	}
	s.queueOut(NoErr(msg.id, msg.timestamp))
}

func (s *Session) fwdMsg(msg *ClientComMessage) {
	origId := types.ParseUid(msg.Fwd.Msg)
	to := types.ParseUid(msg.Fwd.To)
	if origId.IsZero() || to.IsZero() {
		s.queueOut(ErrMalformed(msg.id, msg.timestamp))
		return
	}
	stored, err := globals.router.Forward(s.user, origId, to)
	if err != nil {
		s.queueOut(storeErrReply(msg.id, err, msg.timestamp))
		return
	}
	s.queueOut(NoErrCreated(msg.id, msg.timestamp,
		map[string]any{"msg": stored.Id, "ts": stored.CreatedAt}))
}

func (s *Session) reactMsg(msg *ClientComMessage) {
	msgId := types.ParseUid(msg.React.Msg)
	if msgId.IsZero() {
		s.queueOut(ErrMalformed(msg.id, msg.timestamp))
		return
	}
	var err error
	if msg.React.Remove {
		err = globals.router.Unreact(s.user, msgId)
	} else {
		err = globals.router.React(s.user, msgId, msg.React.Emoji)
	}
	if err != nil {
		s.queueOut(storeErrReply(msg.id, err, msg.timestamp))
		return
	}
	s.queueOut(NoErr(msg.id, msg.timestamp))
}

func (s *Session) readMsg(msg *ClientComMessage) {
	switch {
	case msg.Read.Msg != "":
		msgId := types.ParseUid(msg.Read.Msg)
		if msgId.IsZero() {
			s.queueOut(ErrMalformed(msg.id, msg.timestamp))
			return
		}
		if _, err := globals.router.MarkRead(s.user, msgId); err != nil {
			s.queueOut(storeErrReply(msg.id, err, msg.timestamp))
			return
		}

	case msg.Read.Conv != "":
		convId := types.ParseUid(msg.Read.Conv)
		if convId.IsZero() {
			s.queueOut(ErrMalformed(msg.id, msg.timestamp))
			return
		}
		if _, err := globals.convos.markConversationRead(convId, s.uid); err != nil {
			s.queueOut(storeErrReply(msg.id, err, msg.timestamp))
			return
		}
		s.queueOut(&ServerComMessage{Info: &MsgServerInfo{
			What:      evtUnreadCount,
			Unread:    globals.convos.unreadCountsFor(s.uid, s.community),
			Timestamp: msg.timestamp}})

	default:
		s.queueOut(ErrMalformed(msg.id, msg.timestamp))
		return
	}
	s.queueOut(NoErr(msg.id, msg.timestamp))
}

// noteMsg forwards a typing indicator to the other party. Never acknowledged,
// silently dropped when the pairing is not allowed to message each other.
func (s *Session) noteMsg(msg *ClientComMessage) {
	to := types.ParseUid(msg.Note.To)
	if to.IsZero() {
		return
	}
	target, err := store.Users.Get(to)
	if err != nil || !canSend(s.user, target, s.community) {
		return
	}
	globals.hub.route <- &ServerComMessage{
		Pres: &MsgServerPres{
			What:      evtTypingIndicator,
			User:      s.uid.String(),
			IsTyping:  msg.Note.Typing,
			Timestamp: msg.timestamp},
		rcptTo: to,
	}
}

func (s *Session) getMsg(msg *ClientComMessage) {
	opts := &types.QueryOpt{Before: msg.Get.Before, Limit: msg.Get.Limit}

	switch msg.Get.What {
	case "history":
		other := types.ParseUid(msg.Get.With)
		if other.IsZero() {
			s.queueOut(ErrMalformed(msg.id, msg.timestamp))
			return
		}
		party, err := store.Users.Get(other)
		if err != nil {
			s.queueOut(storeErrReply(msg.id, err, msg.timestamp))
			return
		}
		if !isCommunityMember(party, s.community) || !s.mayExchangeWith(party) {
			s.queueOut(ErrPermissionDenied(msg.id, msg.timestamp))
			return
		}
		abune, member := pairOf(s.user, party)
		messages, err := store.Messages.GetConversation(abune, member, opts)
		s.replyMessages(msg, messages, err)

	case "community":
		// The full community feed is the leader's view.
		if s.user.Type != types.UserAbune {
			s.queueOut(ErrPermissionDenied(msg.id, msg.timestamp))
			return
		}
		messages, err := store.Messages.GetCommunity(s.community, opts)
		s.replyMessages(msg, messages, err)

	case "broadcasts":
		messages, err := store.Messages.GetBroadcasts(s.community, opts)
		s.replyMessages(msg, messages, err)

	case "search":
		if msg.Get.Term == "" {
			s.queueOut(ErrMalformed(msg.id, msg.timestamp))
			return
		}
		messages, err := store.Messages.Search(s.community, msg.Get.Term, opts)
		s.replyMessages(msg, messages, err)

	case "convos":
		convos, err := globals.convos.conversationsFor(s.uid, s.community)
		if err != nil {
			s.queueOut(storeErrReply(msg.id, err, msg.timestamp))
			return
		}
		s.queueOut(NoErrCreated(msg.id, msg.timestamp, map[string]any{"convos": convos}))

	case "online":
		online := globals.presence.OnlineUsers(s.community)
		roster := make([]string, len(online))
		for i, uid := range online {
			roster[i] = uid.String()
		}
		s.queueOut(&ServerComMessage{Pres: &MsgServerPres{
			What:      evtOnlineUsers,
			Online:    roster,
			Timestamp: msg.timestamp}})
		s.queueOut(NoErr(msg.id, msg.timestamp))

	case "unread":
		s.queueOut(&ServerComMessage{Info: &MsgServerInfo{
			What:      evtUnreadCount,
			Unread:    globals.convos.unreadCountsFor(s.uid, s.community),
			Timestamp: msg.timestamp}})
		if s.user.Type == types.UserAbune {
			s.queueOut(&ServerComMessage{Info: &MsgServerInfo{
				What:      evtCommunityUnread,
				PerUser:   s.communityUnread(),
				Timestamp: msg.timestamp}})
		}
		s.queueOut(NoErr(msg.id, msg.timestamp))

	default:
		s.queueOut(ErrMalformed(msg.id, msg.timestamp))
	}
}

// pushInitialState queues the online roster and unread counters to a freshly
// admitted session, before any client packet is processed.
func (s *Session) pushInitialState() {
	now := types.TimeNow()
	online := globals.presence.OnlineUsers(s.community)
	roster := make([]string, len(online))
	for i, uid := range online {
		roster[i] = uid.String()
	}
	s.queueOut(&ServerComMessage{Pres: &MsgServerPres{
		What:      evtOnlineUsers,
		Online:    roster,
		Timestamp: now}})
	s.queueOut(&ServerComMessage{Info: &MsgServerInfo{
		What:      evtUnreadCount,
		Unread:    globals.convos.unreadCountsFor(s.uid, s.community),
		Timestamp: now}})
	if s.user.Type == types.UserAbune {
		s.queueOut(&ServerComMessage{Info: &MsgServerInfo{
			What:      evtCommunityUnread,
			PerUser:   s.communityUnread(),
			Timestamp: now}})
	}
}

// mayExchangeWith reports whether the session's user and the other party form
// a legal conversation pair, in either direction.
func (s *Session) mayExchangeWith(party *types.User) bool {
	return canSend(s.user, party, s.community) || canSend(party, s.user, s.community)
}

// communityUnread builds the per-member unread breakdown for the leader.
func (s *Session) communityUnread() map[string]int {
	convos, err := globals.convos.conversationsFor(s.uid, s.community)
	if err != nil {
		logs.Warn.Println("session: community unread lookup failed", err, s.sid)
		return nil
	}
	perUser := make(map[string]int)
	for i := range convos {
		if convos[i].UnreadCount > 0 {
			perUser[convos[i].User.String()] = convos[i].UnreadCount
		}
	}
	return perUser
}

func (s *Session) replyMessages(msg *ClientComMessage, messages []types.Message, err error) {
	if err != nil {
		s.queueOut(storeErrReply(msg.id, err, msg.timestamp))
		return
	}
	out := make([]*MsgMessage, len(messages))
	for i := range messages {
		out[i] = msgFromStore(&messages[i])
	}
	s.queueOut(NoErrCreated(msg.id, msg.timestamp, map[string]any{"messages": out}))
}

// cleanUp deregisters the session from the session store and takes the user
// offline unless a newer connection already replaced this one.
func (s *Session) cleanUp() {
	globals.sessionStore.Delete(s)

	userId, community, wasLive := globals.presence.Disconnect(s.sid)
	if !wasLive {
		return
	}
	globals.hub.route <- &ServerComMessage{
		Pres: &MsgServerPres{
			What:      evtUserOffline,
			User:      userId.String(),
			Timestamp: types.TimeNow()},
		community: community,
	}
}
