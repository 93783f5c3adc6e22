// Package adapter contains the interfaces to be implemented by the database adapter.
package adapter

import (
	"encoding/json"
	"time"

	t "github.com/abunechat/chat/server/store/types"
)

// Adapter is the interface that must be implemented by a database adapter.
// The current schema supports a single connection by database type.
type Adapter interface {
	// General

	// Open and configure the adapter.
	Open(config json.RawMessage) error
	// Close the adapter.
	Close() error
	// IsOpen checks if the adapter is ready for use.
	IsOpen() bool
	// GetName returns the name of the adapter.
	GetName() string
	// SetMaxResults configures how many results can be returned in a single DB call.
	SetMaxResults(val int) error
	// CreateDb creates the database, optionally dropping an existing database first.
	CreateDb(reset bool) error
	// Version returns the adapter version.
	Version() int
	// Stats returns the DB connection stats object.
	Stats() interface{}

	// Identity facts (read-only, owned by the user directory)

	// UserGet fetches a single identity record by user id.
	UserGet(uid t.Uid) (*t.User, error)
	// UserGetAll returns identity records for the given list of user ids.
	UserGetAll(ids ...t.Uid) ([]t.User, error)
	// CommunityMembers returns approved, active Regular members of a community.
	CommunityMembers(community t.Uid) ([]t.User, error)

	// Messages

	// MessageSave persists a new message.
	MessageSave(msg *t.Message) error
	// MessageGet fetches a single message by id, skipping soft-deleted ones.
	MessageGet(msgId t.Uid) (*t.Message, error)
	// MessageGetAny fetches a single message by id, including soft-deleted ones.
	MessageGetAny(msgId t.Uid) (*t.Message, error)
	// MessageUpdate applies the given update map to a message record.
	MessageUpdate(msgId t.Uid, update map[string]interface{}) error
	// MessageDelete soft-deletes a message, retaining content for reply/forward integrity.
	MessageDelete(msgId t.Uid, deletedBy t.Uid, at time.Time) error
	// MessageMarkRead records a read receipt. Must be idempotent.
	MessageMarkRead(msgId t.Uid, userId t.Uid, at time.Time) error
	// ReactionSave stores or replaces userId's reaction to a message.
	ReactionSave(msgId t.Uid, userId t.Uid, emoji string) error
	// ReactionDelete removes userId's reaction from a message.
	ReactionDelete(msgId t.Uid, userId t.Uid) error
	// MessagesForConversation returns direct messages between the two parties
	// of a conversation, newest first.
	MessagesForConversation(abune, user t.Uid, opts *t.QueryOpt) ([]t.Message, error)
	// MessagesForCommunity returns all messages in a community, newest first.
	MessagesForCommunity(community t.Uid, opts *t.QueryOpt) ([]t.Message, error)
	// BroadcastMessages returns broadcast messages of a community, newest first.
	BroadcastMessages(community t.Uid, opts *t.QueryOpt) ([]t.Message, error)
	// MessageSearch finds messages in a community with content matching term.
	MessageSearch(community t.Uid, term string, opts *t.QueryOpt) ([]t.Message, error)

	// Conversations

	// ConversationCreate persists a new conversation. Returns
	// types.ErrDuplicate if the (abune, user) pair already exists.
	ConversationCreate(conv *t.Conversation) error
	// ConversationGet fetches a conversation by its pair key.
	ConversationGet(abune, user t.Uid) (*t.Conversation, error)
	// ConversationGetById fetches a conversation by record id.
	ConversationGetById(convId t.Uid) (*t.Conversation, error)
	// ConversationUpdateOnMessage updates the last-message rollup and
	// increments the unread counter in one write.
	ConversationUpdateOnMessage(convId t.Uid, at time.Time, summary string) error
	// ConversationMarkRead resets the unread counter to zero.
	ConversationMarkRead(convId t.Uid) error
	// ConversationsForUser returns conversations involving the user within a community.
	ConversationsForUser(userId, community t.Uid) ([]t.Conversation, error)
	// UnreadCounts aggregates per-conversation unread counters for a user.
	UnreadCounts(userId, community t.Uid) (*t.UnreadCounts, error)
}
