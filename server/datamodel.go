/******************************************************************************
 *
 *  Description :
 *
 *    Definition of the wire protocol: messages received from clients,
 *    messages sent to clients, and constructors for control responses.
 *
 *****************************************************************************/

package main

import (
	"net/http"
	"time"

	"github.com/abunechat/chat/server/store/types"
)

// Names of events pushed to clients.
const (
	evtUserOnline        = "UserOnline"
	evtUserOffline       = "UserOffline"
	evtReceiveMessage    = "ReceiveMessage"
	evtReceiveMedia      = "ReceiveMediaMessage"
	evtReceiveBcast      = "ReceiveBroadcastMessage"
	evtReceiveBcastMedia = "ReceiveBroadcastMediaMessage"
	evtMessageDelivered  = "MessageDelivered"
	evtMessageRead       = "MessageRead"
	evtReactionAdded     = "ReactionAdded"
	evtTypingIndicator   = "TypingIndicator"
	evtOnlineUsers       = "OnlineUsers"
	evtUnreadCount       = "UnreadCountUpdate"
	evtCommunityUnread   = "CommunityUnreadCountUpdate"
)

// MsgClientSend is a request to send a direct message. Reply semantics are
// expressed with ReplyTo referencing an earlier message.
type MsgClientSend struct {
	Id string `json:"id,omitempty"`
	// Recipient's user id.
	To string `json:"to"`
	// Payload kind: "text", "image", "document", "voice".
	Kind string `json:"kind,omitempty"`
	// Inline content for text messages.
	Content string `json:"content,omitempty"`
	// Reference to externally stored media for non-text messages.
	FileRef string `json:"fileref,omitempty"`
	// Optional id of the message being replied to.
	ReplyTo string `json:"reply_to,omitempty"`
}

// MsgClientBcast is a request to broadcast to the sender's whole community.
type MsgClientBcast struct {
	Id      string `json:"id,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Content string `json:"content,omitempty"`
	FileRef string `json:"fileref,omitempty"`
}

// MsgClientEdit is a request to replace the content of an earlier message.
type MsgClientEdit struct {
	Id string `json:"id,omitempty"`
	// Id of the message to edit.
	Msg     string `json:"msg"`
	Content string `json:"content"`
}

// MsgClientDel is a request to soft-delete a message.
type MsgClientDel struct {
	Id  string `json:"id,omitempty"`
	Msg string `json:"msg"`
}

// MsgClientFwd is a request to forward an earlier message to a recipient.
// A forward always produces a direct message, never a broadcast.
type MsgClientFwd struct {
	Id string `json:"id,omitempty"`
	// Id of the message to forward.
	Msg string `json:"msg"`
	// Recipient's user id.
	To string `json:"to"`
}

// MsgClientReact adds or removes an emoji reaction.
type MsgClientReact struct {
	Id    string `json:"id,omitempty"`
	Msg   string `json:"msg"`
	Emoji string `json:"emoji,omitempty"`
	// True to remove the caller's reaction instead of setting it.
	Remove bool `json:"remove,omitempty"`
}

// MsgClientRead reports messages as read. Either Msg (message-level receipt)
// or Conv (reset the conversation's unread counter) must be set.
type MsgClientRead struct {
	Id   string `json:"id,omitempty"`
	Msg  string `json:"msg,omitempty"`
	Conv string `json:"conv,omitempty"`
}

// MsgClientNote is a typing notification addressed to the other party of a
// conversation. Not acknowledged.
type MsgClientNote struct {
	// Recipient's user id.
	To     string `json:"to"`
	Typing bool   `json:"typing"`
}

// MsgClientGet is a query for stored or live data.
type MsgClientGet struct {
	Id string `json:"id,omitempty"`
	// One of "history", "community", "broadcasts", "search", "convos",
	// "online", "unread".
	What string `json:"what"`
	// For "history": the other party of the conversation.
	With string `json:"with,omitempty"`
	// For "search": the term to match.
	Term string `json:"term,omitempty"`
	// Pagination.
	Limit  int       `json:"limit,omitempty"`
	Before time.Time `json:"before,omitempty"`
}

// ClientComMessage is a wrapper for client messages.
type ClientComMessage struct {
	Send  *MsgClientSend  `json:"send,omitempty"`
	Bcast *MsgClientBcast `json:"bcast,omitempty"`
	Edit  *MsgClientEdit  `json:"edit,omitempty"`
	Del   *MsgClientDel   `json:"del,omitempty"`
	Fwd   *MsgClientFwd   `json:"fwd,omitempty"`
	React *MsgClientReact `json:"react,omitempty"`
	Read  *MsgClientRead  `json:"read,omitempty"`
	Note  *MsgClientNote  `json:"note,omitempty"`
	Get   *MsgClientGet   `json:"get,omitempty"`

	// Message id of whichever packet is set, for acks.
	id string
	// Sender's authenticated user id.
	from types.Uid
	// Sender's community.
	community types.Uid
	// Timestamp when the message was received.
	timestamp time.Time
	// Session the packet came by.
	sess *Session
}

// MsgMessage is the wire representation of a stored message.
type MsgMessage struct {
	Id        string    `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to,omitempty"`
	Community string    `json:"community"`
	Broadcast bool      `json:"broadcast,omitempty"`
	Kind      string    `json:"kind"`
	Content   string    `json:"content,omitempty"`
	FileRef   string    `json:"fileref,omitempty"`
	ReplyTo   string    `json:"reply_to,omitempty"`
	FwdFrom   string    `json:"fwd_from,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Status    string    `json:"status"`
	Edited    bool      `json:"edited,omitempty"`
	EditedAt  *time.Time `json:"edited_at,omitempty"`
	Deleted   bool      `json:"deleted,omitempty"`
	// Reactions keyed by reacting user id.
	Reactions map[string]string `json:"reactions,omitempty"`
	// Read receipts keyed by reader user id.
	ReadBy map[string]time.Time `json:"read_by,omitempty"`
}

// msgFromStore converts a stored message into its wire representation.
// Content of soft-deleted messages is withheld from the wire.
func msgFromStore(msg *types.Message) *MsgMessage {
	out := &MsgMessage{
		Id:        msg.Id,
		From:      msg.From.String(),
		To:        msg.To.String(),
		Community: msg.Community.String(),
		Broadcast: msg.Broadcast,
		Kind:      msg.Kind.String(),
		Content:   msg.Content,
		FileRef:   msg.FileRef,
		ReplyTo:   msg.ReplyTo.String(),
		FwdFrom:   msg.ForwardedFrom.String(),
		CreatedAt: msg.CreatedAt,
		Status:    msg.Status.String(),
		Edited:    msg.Edited,
		EditedAt:  msg.EditedAt,
		Deleted:   msg.IsDeleted(),
	}
	if out.Deleted {
		out.Content = ""
		out.FileRef = ""
	}
	if len(msg.Reactions) > 0 {
		out.Reactions = make(map[string]string, len(msg.Reactions))
		for uid, emoji := range msg.Reactions {
			out.Reactions[uid.String()] = emoji
		}
	}
	if len(msg.ReadBy) > 0 {
		out.ReadBy = make(map[string]time.Time, len(msg.ReadBy))
		for uid, at := range msg.ReadBy {
			out.ReadBy[uid.String()] = at
		}
	}
	return out
}

// MsgServerCtrl is a server control message: acknowledgements and errors.
// Errors are delivered only to the session which caused them.
type MsgServerCtrl struct {
	Id        string    `json:"id,omitempty"`
	Code      int       `json:"code"`
	Text      string    `json:"text,omitempty"`
	Params    any       `json:"params,omitempty"`
	Timestamp time.Time `json:"ts"`
}

// MsgServerData carries a full message to its recipients.
type MsgServerData struct {
	// Event name: ReceiveMessage, ReceiveMediaMessage,
	// ReceiveBroadcastMessage, ReceiveBroadcastMediaMessage.
	What      string      `json:"what"`
	Msg       *MsgMessage `json:"msg"`
	Timestamp time.Time   `json:"ts"`
}

// MsgServerPres is a presence change notification.
type MsgServerPres struct {
	// Event name: UserOnline, UserOffline, TypingIndicator, OnlineUsers.
	What string `json:"what"`
	// Subject user for UserOnline/UserOffline/TypingIndicator.
	User string `json:"user,omitempty"`
	// Typing state for TypingIndicator.
	IsTyping bool `json:"is_typing,omitempty"`
	// Roster for OnlineUsers.
	Online    []string  `json:"online,omitempty"`
	Timestamp time.Time `json:"ts"`
}

// MsgServerInfo is a lightweight notification about message state or
// unread-count bookkeeping.
type MsgServerInfo struct {
	// Event name: MessageDelivered, MessageRead, ReactionAdded,
	// UnreadCountUpdate, CommunityUnreadCountUpdate.
	What string `json:"what"`
	// Affected message for MessageDelivered/MessageRead/ReactionAdded.
	Msg string `json:"msg,omitempty"`
	// Acting user: recipient, reader or reactor.
	User string `json:"user,omitempty"`
	// Reaction emoji for ReactionAdded. Empty means the reaction was removed.
	Emoji string `json:"emoji,omitempty"`
	// Unread totals for UnreadCountUpdate.
	Unread *types.UnreadCounts `json:"unread,omitempty"`
	// Per-member unread totals for CommunityUnreadCountUpdate.
	PerUser   map[string]int `json:"per_user,omitempty"`
	Timestamp time.Time      `json:"ts"`
}

// ServerComMessage is a wrapper for server-side messages.
type ServerComMessage struct {
	Ctrl *MsgServerCtrl `json:"ctrl,omitempty"`
	Data *MsgServerData `json:"data,omitempty"`
	Pres *MsgServerPres `json:"pres,omitempty"`
	Info *MsgServerInfo `json:"info,omitempty"`

	// Routing: destination user. Zero means community-wide fan-out.
	rcptTo types.Uid
	// Routing: destination community for community-wide fan-out.
	community types.Uid
	// Session id to skip when fanning out, if any.
	skipSid string
}

// NoErr returns a 200 OK response.
func NoErr(id string, ts time.Time) *ServerComMessage {
	return &ServerComMessage{Ctrl: &MsgServerCtrl{
		Id:        id,
		Code:      http.StatusOK,
		Text:      "ok",
		Timestamp: ts}}
}

// NoErrCreated returns a 201 Created response.
func NoErrCreated(id string, ts time.Time, params any) *ServerComMessage {
	return &ServerComMessage{Ctrl: &MsgServerCtrl{
		Id:        id,
		Code:      http.StatusCreated,
		Text:      "created",
		Params:    params,
		Timestamp: ts}}
}

// NoErrShutdown means the server is shutting down.
func NoErrShutdown(ts time.Time) *ServerComMessage {
	return &ServerComMessage{Ctrl: &MsgServerCtrl{
		Code:      http.StatusResetContent,
		Text:      "server shutdown",
		Timestamp: ts}}
}

// ErrMalformed means the message was malformed or required fields are missing.
func ErrMalformed(id string, ts time.Time) *ServerComMessage {
	return &ServerComMessage{Ctrl: &MsgServerCtrl{
		Id:        id,
		Code:      http.StatusBadRequest,
		Text:      "malformed",
		Timestamp: ts}}
}

// ErrAuthRequired means the session must be authenticated first.
func ErrAuthRequired(id string, ts time.Time) *ServerComMessage {
	return &ServerComMessage{Ctrl: &MsgServerCtrl{
		Id:        id,
		Code:      http.StatusUnauthorized,
		Text:      "authentication required",
		Timestamp: ts}}
}

// ErrPermissionDenied means the authorization oracle denied the operation.
func ErrPermissionDenied(id string, ts time.Time) *ServerComMessage {
	return &ServerComMessage{Ctrl: &MsgServerCtrl{
		Id:        id,
		Code:      http.StatusForbidden,
		Text:      "permission denied",
		Timestamp: ts}}
}

// ErrNotFound means the referenced object does not exist.
func ErrNotFound(id string, ts time.Time) *ServerComMessage {
	return &ServerComMessage{Ctrl: &MsgServerCtrl{
		Id:        id,
		Code:      http.StatusNotFound,
		Text:      "not found",
		Timestamp: ts}}
}

// ErrValidation means the request references a valid object in an invalid way,
// e.g. editing a message past the edit window.
func ErrValidation(id, text string, ts time.Time) *ServerComMessage {
	return &ServerComMessage{Ctrl: &MsgServerCtrl{
		Id:        id,
		Code:      http.StatusUnprocessableEntity,
		Text:      text,
		Timestamp: ts}}
}

// ErrUnknown means an internal, most likely storage, failure.
func ErrUnknown(id string, ts time.Time) *ServerComMessage {
	return &ServerComMessage{Ctrl: &MsgServerCtrl{
		Id:        id,
		Code:      http.StatusInternalServerError,
		Text:      "internal error",
		Timestamp: ts}}
}

// ErrOperationNotAllowed means the packet combination makes no sense.
func ErrOperationNotAllowed(id string, ts time.Time) *ServerComMessage {
	return &ServerComMessage{Ctrl: &MsgServerCtrl{
		Id:        id,
		Code:      http.StatusMethodNotAllowed,
		Text:      "operation not allowed",
		Timestamp: ts}}
}

// storeErrReply converts a storage-layer error into a control response.
func storeErrReply(id string, err error, ts time.Time) *ServerComMessage {
	switch err {
	case types.ErrNotFound:
		return ErrNotFound(id, ts)
	case types.ErrPermissionDenied:
		return ErrPermissionDenied(id, ts)
	case types.ErrMessageTooOld:
		return ErrValidation(id, "too old", ts)
	case types.ErrCrossCommunity:
		return ErrValidation(id, "cross community", ts)
	case types.ErrMalformed:
		return ErrMalformed(id, ts)
	}
	return ErrUnknown(id, ts)
}
