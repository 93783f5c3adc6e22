/******************************************************************************
 *
 *  Description :
 *
 *    Conversation bookkeeping. Maintains exactly one conversation record per
 *    (Abune, member) pair, rolls the last-message summary forward on every
 *    direct message, and keeps the per-conversation unread counter.
 *
 *****************************************************************************/

package main

import (
	"github.com/abunechat/chat/server/concurrency"
	"github.com/abunechat/chat/server/logs"
	"github.com/abunechat/chat/server/store"
	"github.com/abunechat/chat/server/store/types"
)

// ConversationAggregator serializes conversation creation per (Abune, member)
// pair. Storage enforces pair uniqueness with a unique index; the in-process
// lock merely avoids burning insert attempts on the common same-instance race.
type ConversationAggregator struct {
	pairLocks *concurrency.KeyLock
}

// NewConversationAggregator creates an aggregator with an empty lock table.
func NewConversationAggregator() *ConversationAggregator {
	return &ConversationAggregator{pairLocks: concurrency.NewKeyLock()}
}

func pairKey(abune, member types.Uid) string {
	return abune.String() + ":" + member.String()
}

// getOrCreate returns the conversation for the pair, creating it on first
// contact. Concurrent callers converge on a single record: a losing insert
// surfaces as a duplicate-key error and is resolved by re-reading.
func (ca *ConversationAggregator) getOrCreate(abune, member types.Uid) (*types.Conversation, error) {
	key := pairKey(abune, member)
	ca.pairLocks.Lock(key)
	defer ca.pairLocks.Unlock(key)

	conv, err := store.Conversations.Get(abune, member)
	if err == nil {
		return conv, nil
	}
	if err != types.ErrNotFound {
		return nil, err
	}

	conv = &types.Conversation{
		Abune:  abune,
		User:   member,
		Active: true,
	}
	if err = store.Conversations.Create(conv); err == nil {
		return conv, nil
	}
	if err != types.ErrDuplicate {
		return nil, err
	}

	// Another instance inserted the pair first.
	return store.Conversations.Get(abune, member)
}

// applyNewMessage updates the pair's conversation after a direct message was
// persisted: bumps the last-message summary and timestamp and increments the
// unread counter. Broadcasts never reach this path.
func (ca *ConversationAggregator) applyNewMessage(abune, member types.Uid, msg *types.Message) (*types.Conversation, error) {
	conv, err := ca.getOrCreate(abune, member)
	if err != nil {
		return nil, err
	}

	if err = store.Conversations.UpdateOnMessage(conv.Uid(), msg.CreatedAt, msg.Summary()); err != nil {
		return nil, err
	}
	conv.LastMessageAt = msg.CreatedAt
	conv.LastMessageSummary = msg.Summary()
	conv.UnreadCount++
	return conv, nil
}

// markConversationRead resets the unread counter to zero on behalf of the
// caller. Only the two parties of the conversation may reset it. Resetting an
// already-zero counter is a successful no-op.
func (ca *ConversationAggregator) markConversationRead(convId, caller types.Uid) (*types.Conversation, error) {
	conv, err := store.Conversations.GetById(convId)
	if err != nil {
		return nil, err
	}
	if !conv.InvolvesUser(caller) {
		return nil, types.ErrPermissionDenied
	}

	if conv.UnreadCount == 0 {
		return conv, nil
	}
	if err = store.Conversations.MarkRead(convId); err != nil {
		return nil, err
	}
	conv.UnreadCount = 0
	return conv, nil
}

// markPairRead is markConversationRead addressed by the pair instead of the
// record id. Missing conversation is a no-op: there is nothing to reset.
func (ca *ConversationAggregator) markPairRead(abune, member, caller types.Uid) (*types.Conversation, error) {
	conv, err := store.Conversations.Get(abune, member)
	if err == types.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ca.markConversationRead(conv.Uid(), caller)
}

// unreadCountsFor aggregates unread counters for the user: the grand total
// plus a per-conversation breakdown. For an Abune this covers every
// conversation of the community; for a member just their own.
func (ca *ConversationAggregator) unreadCountsFor(userId, community types.Uid) *types.UnreadCounts {
	counts, err := store.Conversations.UnreadCounts(userId, community)
	if err != nil {
		logs.Warn.Println("convo: failed to aggregate unread counts:", err)
		return &types.UnreadCounts{PerConversation: map[string]int{}}
	}
	return counts
}

// conversationsFor lists the user's conversations in the community, most
// recently active first.
func (ca *ConversationAggregator) conversationsFor(userId, community types.Uid) ([]types.Conversation, error) {
	return store.Conversations.GetForUser(userId, community)
}
