/******************************************************************************
 *
 *  Description :
 *
 *    Message routing. Every mutating operation follows the same shape:
 *    validate against the authorization oracle first, persist, then fan out
 *    to live connections. A message is never delivered before it is stored.
 *
 *****************************************************************************/

package main

import (
	"time"

	"github.com/abunechat/chat/server/logs"
	"github.com/abunechat/chat/server/store"
	"github.com/abunechat/chat/server/store/types"
)

// MessageRouter coordinates persistence, conversation bookkeeping and live
// fan-out for all message operations.
type MessageRouter struct {
	presence *PresenceRegistry
	convos   *ConversationAggregator
	hub      *Hub
}

// NewMessageRouter wires the router to its collaborators.
func NewMessageRouter(presence *PresenceRegistry, convos *ConversationAggregator, hub *Hub) *MessageRouter {
	return &MessageRouter{presence: presence, convos: convos, hub: hub}
}

// validatePayload checks the kind/content/fileref combination: text messages
// carry inline content, media messages carry a file reference.
func validatePayload(kind types.ContentKind, content, fileRef string) error {
	if kind.IsMedia() {
		if fileRef == "" {
			return types.ErrMalformed
		}
		return nil
	}
	if content == "" {
		return types.ErrMalformed
	}
	return nil
}

// pairOf splits a direct exchange into its (Abune, member) conversation key.
func pairOf(sender, recipient *types.User) (types.Uid, types.Uid) {
	if sender.Type == types.UserAbune {
		return sender.Uid(), recipient.Uid()
	}
	return recipient.Uid(), sender.Uid()
}

// dataEvent picks the client-facing event name for a stored message.
func dataEvent(msg *types.Message) string {
	if msg.Broadcast {
		if msg.Kind.IsMedia() {
			return evtReceiveBcastMedia
		}
		return evtReceiveBcast
	}
	if msg.Kind.IsMedia() {
		return evtReceiveMedia
	}
	return evtReceiveMessage
}

// SendDirect validates, persists and delivers a direct message from sender to
// the user with id `to`. ReplyTo, when set, must reference a message of the
// same community; replying to a soft-deleted message is allowed, the client
// renders a placeholder for it.
func (r *MessageRouter) SendDirect(sender *types.User, to types.Uid, kind types.ContentKind,
	content, fileRef string, replyTo types.Uid) (*types.Message, error) {

	if err := validatePayload(kind, content, fileRef); err != nil {
		return nil, err
	}

	recipient, err := store.Users.Get(to)
	if err != nil {
		return nil, err
	}

	community := sender.Community()
	if !canSend(sender, recipient, community) {
		return nil, types.ErrPermissionDenied
	}

	if !replyTo.IsZero() {
		orig, err := store.Messages.GetAny(replyTo)
		if err != nil {
			return nil, err
		}
		if orig.Community != community {
			return nil, types.ErrCrossCommunity
		}
	}

	msg := &types.Message{
		From:      sender.Uid(),
		To:        recipient.Uid(),
		Community: community,
		Kind:      kind,
		Content:   content,
		FileRef:   fileRef,
		ReplyTo:   replyTo,
		Status:    types.StatusSent,
	}
	return msg, r.deliverDirect(sender, recipient, msg)
}

// Forward copies an earlier message to a new recipient as a fresh direct
// message. Broadcast originals forward as direct messages too. Deletion of
// the original does not block forwarding: the copy carries the content.
func (r *MessageRouter) Forward(sender *types.User, origId, to types.Uid) (*types.Message, error) {
	orig, err := store.Messages.GetAny(origId)
	if err != nil {
		return nil, err
	}

	community := sender.Community()
	if orig.Community != community {
		return nil, types.ErrCrossCommunity
	}

	recipient, err := store.Users.Get(to)
	if err != nil {
		return nil, err
	}
	if !canSend(sender, recipient, community) {
		return nil, types.ErrPermissionDenied
	}

	msg := &types.Message{
		From:          sender.Uid(),
		To:            recipient.Uid(),
		Community:     community,
		Kind:          orig.Kind,
		Content:       orig.Content,
		FileRef:       orig.FileRef,
		ForwardedFrom: orig.Uid(),
		Status:        types.StatusSent,
	}
	return msg, r.deliverDirect(sender, recipient, msg)
}

// deliverDirect is the shared persist-then-fanout tail of SendDirect and
// Forward. The message is stored first, then conversation counters are rolled
// forward, then live connections are notified. An online recipient advances
// the message to 'delivered' before fan-out so the stored state never lags
// what the client was told.
func (r *MessageRouter) deliverDirect(sender, recipient *types.User, msg *types.Message) error {
	if err := store.Messages.Save(msg); err != nil {
		return err
	}

	abune, member := pairOf(sender, recipient)
	conv, err := r.convos.applyNewMessage(abune, member, msg)
	if err != nil {
		// The message is durable; counters will self-correct on the next read.
		logs.Warn.Println("router: conversation update failed for message", msg.Id, err)
	}

	if r.presence.IsOnline(recipient.Uid()) {
		if err := store.Messages.Update(msg.Uid(),
			map[string]interface{}{"status": int(types.StatusDelivered)}); err != nil {
			logs.Warn.Println("router: failed to mark delivered", msg.Id, err)
		} else {
			msg.Status = types.StatusDelivered
		}
	}

	now := types.TimeNow()
	r.hub.route <- &ServerComMessage{
		Data:   &MsgServerData{What: dataEvent(msg), Msg: msgFromStore(msg), Timestamp: now},
		rcptTo: recipient.Uid(),
	}
	if msg.Status == types.StatusDelivered {
		r.hub.route <- &ServerComMessage{
			Info: &MsgServerInfo{
				What:      evtMessageDelivered,
				Msg:       msg.Id,
				User:      recipient.Uid().String(),
				Timestamp: now},
			rcptTo: sender.Uid(),
		}
	}
	if conv != nil {
		r.hub.route <- &ServerComMessage{
			Info: &MsgServerInfo{
				What:      evtUnreadCount,
				Unread:    r.convos.unreadCountsFor(recipient.Uid(), msg.Community),
				Timestamp: now},
			rcptTo: recipient.Uid(),
		}
	}
	return nil
}

// SendBroadcast validates, persists and fans out a community-wide
// announcement. Broadcasts bypass conversation bookkeeping entirely.
func (r *MessageRouter) SendBroadcast(sender *types.User, kind types.ContentKind,
	content, fileRef string) (*types.Message, error) {

	if err := validatePayload(kind, content, fileRef); err != nil {
		return nil, err
	}

	community := sender.Community()
	if !canBroadcast(sender, community) {
		return nil, types.ErrPermissionDenied
	}

	msg := &types.Message{
		From:      sender.Uid(),
		Community: community,
		Broadcast: true,
		Kind:      kind,
		Content:   content,
		FileRef:   fileRef,
		Status:    types.StatusSent,
	}
	if err := store.Messages.Save(msg); err != nil {
		return nil, err
	}

	r.hub.route <- &ServerComMessage{
		Data:      &MsgServerData{What: dataEvent(msg), Msg: msgFromStore(msg), Timestamp: types.TimeNow()},
		community: community,
		skipSid:   r.connOf(sender.Uid()),
	}
	return msg, nil
}

// Edit replaces the content of a text message. Only the original sender may
// edit, and only within the edit window measured from the original send time.
// CreatedAt is never touched; the edit is marked on the record instead.
func (r *MessageRouter) Edit(caller *types.User, msgId types.Uid, content string) (*types.Message, error) {
	msg, err := store.Messages.Get(msgId)
	if err != nil {
		return nil, err
	}
	if msg.From != caller.Uid() {
		return nil, types.ErrPermissionDenied
	}
	if msg.Kind.IsMedia() {
		return nil, types.ErrUnsupported
	}
	if content == "" {
		return nil, types.ErrMalformed
	}

	now := types.TimeNow()
	if !msg.Editable(now) {
		return nil, types.ErrMessageTooOld
	}

	update := map[string]interface{}{
		"content":  content,
		"edited":   true,
		"editedat": now,
		"editedby": caller.Uid(),
	}
	if err = store.Messages.Update(msgId, update); err != nil {
		return nil, err
	}
	msg.Content = content
	msg.Edited = true
	msg.EditedAt = &now
	msg.EditedBy = caller.Uid()

	r.notifyParties(msg, &ServerComMessage{
		Data: &MsgServerData{What: dataEvent(msg), Msg: msgFromStore(msg), Timestamp: now},
	})
	return msg, nil
}

// Delete soft-deletes a message on behalf of its sender. The record and its
// conversation placement survive; content is withheld from all future reads.
func (r *MessageRouter) Delete(caller *types.User, msgId types.Uid) error {
	msg, err := store.Messages.Get(msgId)
	if err != nil {
		return err
	}
	if msg.From != caller.Uid() {
		return types.ErrPermissionDenied
	}

	now := types.TimeNow()
	if err = store.Messages.Delete(msgId, caller.Uid(), now); err != nil {
		return err
	}
	msg.DeletedAt = &now
	msg.DeletedBy = caller.Uid()

	r.notifyParties(msg, &ServerComMessage{
		Data: &MsgServerData{What: dataEvent(msg), Msg: msgFromStore(msg), Timestamp: now},
	})
	return nil
}

// MarkRead records a read receipt on behalf of the reader. Direct messages
// may be marked only by their recipient; broadcasts by any community member.
// Repeated receipts are successful no-ops and never move the original
// timestamp.
func (r *MessageRouter) MarkRead(caller *types.User, msgId types.Uid) (*types.Message, error) {
	msg, err := store.Messages.Get(msgId)
	if err != nil {
		return nil, err
	}

	uid := caller.Uid()
	if msg.Broadcast {
		if !isCommunityMember(caller, msg.Community) {
			return nil, types.ErrPermissionDenied
		}
	} else if msg.To != uid {
		return nil, types.ErrPermissionDenied
	}

	if _, seen := msg.ReadBy[uid]; seen {
		return msg, nil
	}

	now := types.TimeNow()
	if err = store.Messages.MarkRead(msgId, uid, now); err != nil {
		return nil, err
	}
	if msg.ReadBy == nil {
		msg.ReadBy = make(map[types.Uid]time.Time)
	}
	msg.ReadBy[uid] = now
	if !msg.Broadcast {
		msg.Status = types.StatusRead
	}

	r.hub.route <- &ServerComMessage{
		Info: &MsgServerInfo{
			What:      evtMessageRead,
			Msg:       msg.Id,
			User:      uid.String(),
			Timestamp: now},
		rcptTo: msg.From,
	}
	return msg, nil
}

// React sets or replaces the caller's emoji reaction on a message. Any member
// of the message's community may react.
func (r *MessageRouter) React(caller *types.User, msgId types.Uid, emoji string) error {
	if emoji == "" {
		return types.ErrMalformed
	}
	msg, err := store.Messages.Get(msgId)
	if err != nil {
		return err
	}
	if !isCommunityMember(caller, msg.Community) {
		return types.ErrPermissionDenied
	}

	if err = store.Messages.SaveReaction(msgId, caller.Uid(), emoji); err != nil {
		return err
	}
	r.notifyReaction(msg, caller.Uid(), emoji)
	return nil
}

// Unreact removes the caller's reaction. Removing a reaction which was never
// set is a successful no-op.
func (r *MessageRouter) Unreact(caller *types.User, msgId types.Uid) error {
	msg, err := store.Messages.Get(msgId)
	if err != nil {
		return err
	}
	if !isCommunityMember(caller, msg.Community) {
		return types.ErrPermissionDenied
	}

	if err = store.Messages.DeleteReaction(msgId, caller.Uid()); err != nil {
		return err
	}
	r.notifyReaction(msg, caller.Uid(), "")
	return nil
}

func (r *MessageRouter) notifyReaction(msg *types.Message, reactor types.Uid, emoji string) {
	r.notifyParties(msg, &ServerComMessage{
		Info: &MsgServerInfo{
			What:      evtReactionAdded,
			Msg:       msg.Id,
			User:      reactor.String(),
			Emoji:     emoji,
			Timestamp: types.TimeNow()},
	})
}

// notifyParties fans a state change out to everyone who could see the
// message: both parties of a direct exchange, or the whole community for a
// broadcast.
func (r *MessageRouter) notifyParties(msg *types.Message, note *ServerComMessage) {
	if msg.Broadcast {
		note.community = msg.Community
		r.hub.route <- note
		return
	}
	to := *note
	to.rcptTo = msg.To
	r.hub.route <- &to

	from := *note
	from.rcptTo = msg.From
	r.hub.route <- &from
}

func (r *MessageRouter) connOf(uid types.Uid) string {
	connId, _ := r.presence.ConnFor(uid)
	return connId
}
