// Package store provides methods for registering and accessing database adapters.
package store

import (
	"encoding/json"
	"errors"
	"time"

	adapter "github.com/abunechat/chat/server/db"
	"github.com/abunechat/chat/server/store/types"
)

var adp adapter.Adapter
var availableAdapters = make(map[string]adapter.Adapter)

// Unique ID generator.
var uGen types.UidGenerator

type configType struct {
	// 16-byte key for XTEA. Used to initialize types.UidGenerator.
	UidKey []byte `json:"uid_key"`
	// Maximum number of results to return from adapter.
	MaxResults int `json:"max_results"`
	// DB adapter name to use. Should be one of those specified in `Adapters`.
	UseAdapter string `json:"use_adapter"`
	// Configurations for individual adapters.
	Adapters map[string]json.RawMessage `json:"adapters"`
}

func openAdapter(workerId int, jsonconf json.RawMessage) error {
	var config configType
	if err := json.Unmarshal(jsonconf, &config); err != nil {
		return errors.New("store: failed to parse config: " + err.Error() + "(" + string(jsonconf) + ")")
	}

	if adp == nil {
		if len(config.UseAdapter) > 0 {
			// Adapter name specified explicitly.
			if ad, ok := availableAdapters[config.UseAdapter]; ok {
				adp = ad
			} else {
				return errors.New("store: " + config.UseAdapter + " adapter is not available in this binary")
			}
		} else if len(availableAdapters) == 1 {
			// Default to the only entry in availableAdapters.
			for _, v := range availableAdapters {
				adp = v
			}
		} else {
			return errors.New("store: db adapter is not specified. Please set `store_config.use_adapter`")
		}
	}

	if adp.IsOpen() {
		return errors.New("store: connection is already opened")
	}

	// Initialize snowflake.
	if workerId < 0 || workerId > 1023 {
		return errors.New("store: invalid worker ID")
	}

	if err := uGen.Init(uint(workerId), config.UidKey); err != nil {
		return errors.New("store: failed to init snowflake: " + err.Error())
	}

	if err := adp.SetMaxResults(config.MaxResults); err != nil {
		return err
	}

	var adapterConfig json.RawMessage
	if config.Adapters != nil {
		adapterConfig = config.Adapters[adp.GetName()]
	}

	return adp.Open(adapterConfig)
}

// Open initializes the persistence system. Adapter name is optional.
// If the name is missing, it's either inferred from the config or an error is reported.
func Open(workerId int, jsonconf json.RawMessage) error {
	if err := openAdapter(workerId, jsonconf); err != nil {
		return err
	}
	return nil
}

// Close terminates the connection to the persistent storage.
func Close() error {
	if adp.IsOpen() {
		return adp.Close()
	}
	return nil
}

// IsOpen checks if persistent storage connection has been initialized.
func IsOpen() bool {
	if adp != nil {
		return adp.IsOpen()
	}
	return false
}

// GetAdapterName returns the name of the current adapter.
func GetAdapterName() string {
	if adp != nil {
		return adp.GetName()
	}
	return ""
}

// InitDb creates the database schema, optionally dropping the existing one first.
func InitDb(jsonconf json.RawMessage, reset bool) error {
	if !IsOpen() {
		if err := openAdapter(1, jsonconf); err != nil {
			return err
		}
	}
	return adp.CreateDb(reset)
}

// RegisterAdapter makes a persistence adapter available by the provided name.
// If RegisterAdapter is called twice with the same name or if the adapter is nil,
// it panics.
func RegisterAdapter(a adapter.Adapter) {
	if a == nil {
		panic("store: Register adapter is nil")
	}

	name := a.GetName()
	if _, dup := availableAdapters[name]; dup {
		panic("store: adapter '" + name + "' is already registered")
	}
	availableAdapters[name] = a
}

// GetUid generates a unique ID suitable for use as a primary key.
func GetUid() types.Uid {
	return uGen.Get()
}

// GetUidString generates a unique ID as a string.
func GetUidString() string {
	return uGen.GetStr()
}

// DecodeUid takes an XTEA encrypted Uid and decrypts it into an int64.
// Used by database adapters only. Returns 0 for a zero Uid.
func DecodeUid(uid types.Uid) int64 {
	if uid.IsZero() {
		return 0
	}
	return uGen.DecodeUid(uid)
}

// EncodeUid applies XTEA encryption to an int64 value. It's the inverse of DecodeUid.
func EncodeUid(id int64) types.Uid {
	if id == 0 {
		return types.ZeroUid
	}
	return uGen.EncodeInt64(id)
}

// DbStats returns the underlying DB connection statistics object.
func DbStats() func() interface{} {
	if !IsOpen() {
		return nil
	}
	return adp.Stats
}

// UsersPersistenceInterface is an interface for reading identity facts.
type UsersPersistenceInterface interface {
	Get(uid types.Uid) (*types.User, error)
	GetAll(ids ...types.Uid) ([]types.User, error)
	CommunityMembers(community types.Uid) ([]types.User, error)
}

// usersMapper is a concrete UsersPersistenceInterface implementation backed
// by the database adapter.
type usersMapper struct{}

// Users is the persistence mapper for identity facts.
var Users UsersPersistenceInterface = usersMapper{}

// Get loads a single identity record.
func (usersMapper) Get(uid types.Uid) (*types.User, error) {
	return adp.UserGet(uid)
}

// GetAll loads identity records for a list of user ids.
func (usersMapper) GetAll(ids ...types.Uid) ([]types.User, error) {
	return adp.UserGetAll(ids...)
}

// CommunityMembers loads approved, active Regular members of a community.
func (usersMapper) CommunityMembers(community types.Uid) ([]types.User, error) {
	return adp.CommunityMembers(community)
}

// MessagesPersistenceInterface is an interface which defines methods for
// persistent storage of messages.
type MessagesPersistenceInterface interface {
	Save(msg *types.Message) error
	Get(msgId types.Uid) (*types.Message, error)
	GetAny(msgId types.Uid) (*types.Message, error)
	Update(msgId types.Uid, update map[string]interface{}) error
	Delete(msgId, deletedBy types.Uid, at time.Time) error
	MarkRead(msgId, userId types.Uid, at time.Time) error
	SaveReaction(msgId, userId types.Uid, emoji string) error
	DeleteReaction(msgId, userId types.Uid) error
	GetConversation(abune, user types.Uid, opts *types.QueryOpt) ([]types.Message, error)
	GetCommunity(community types.Uid, opts *types.QueryOpt) ([]types.Message, error)
	GetBroadcasts(community types.Uid, opts *types.QueryOpt) ([]types.Message, error)
	Search(community types.Uid, term string, opts *types.QueryOpt) ([]types.Message, error)
}

// messagesMapper is a concrete MessagesPersistenceInterface implementation.
type messagesMapper struct{}

// Messages is the persistence mapper for messages.
var Messages MessagesPersistenceInterface = messagesMapper{}

// Save assigns an id to the message and persists it.
func (messagesMapper) Save(msg *types.Message) error {
	msg.SetUid(GetUid())
	msg.InitTimes()
	return adp.MessageSave(msg)
}

// Get loads a message by id, skipping soft-deleted ones.
func (messagesMapper) Get(msgId types.Uid) (*types.Message, error) {
	return adp.MessageGet(msgId)
}

// GetAny loads a message by id, including soft-deleted ones.
func (messagesMapper) GetAny(msgId types.Uid) (*types.Message, error) {
	return adp.MessageGetAny(msgId)
}

// Update applies an update map to the message record.
func (messagesMapper) Update(msgId types.Uid, update map[string]interface{}) error {
	return adp.MessageUpdate(msgId, update)
}

// Delete soft-deletes the message.
func (messagesMapper) Delete(msgId, deletedBy types.Uid, at time.Time) error {
	return adp.MessageDelete(msgId, deletedBy, at)
}

// MarkRead records a read receipt.
func (messagesMapper) MarkRead(msgId, userId types.Uid, at time.Time) error {
	return adp.MessageMarkRead(msgId, userId, at)
}

// SaveReaction stores or replaces a reaction.
func (messagesMapper) SaveReaction(msgId, userId types.Uid, emoji string) error {
	return adp.ReactionSave(msgId, userId, emoji)
}

// DeleteReaction removes a reaction.
func (messagesMapper) DeleteReaction(msgId, userId types.Uid) error {
	return adp.ReactionDelete(msgId, userId)
}

// GetConversation loads a page of the direct thread between two parties.
func (messagesMapper) GetConversation(abune, user types.Uid, opts *types.QueryOpt) ([]types.Message, error) {
	return adp.MessagesForConversation(abune, user, opts)
}

// GetCommunity loads a page of all community messages.
func (messagesMapper) GetCommunity(community types.Uid, opts *types.QueryOpt) ([]types.Message, error) {
	return adp.MessagesForCommunity(community, opts)
}

// GetBroadcasts loads a page of community broadcasts.
func (messagesMapper) GetBroadcasts(community types.Uid, opts *types.QueryOpt) ([]types.Message, error) {
	return adp.BroadcastMessages(community, opts)
}

// Search finds community messages matching the term.
func (messagesMapper) Search(community types.Uid, term string, opts *types.QueryOpt) ([]types.Message, error) {
	return adp.MessageSearch(community, term, opts)
}

// ConversationsPersistenceInterface is an interface which defines methods for
// persistent storage of conversations.
type ConversationsPersistenceInterface interface {
	Create(conv *types.Conversation) error
	Get(abune, user types.Uid) (*types.Conversation, error)
	GetById(convId types.Uid) (*types.Conversation, error)
	UpdateOnMessage(convId types.Uid, at time.Time, summary string) error
	MarkRead(convId types.Uid) error
	GetForUser(userId, community types.Uid) ([]types.Conversation, error)
	UnreadCounts(userId, community types.Uid) (*types.UnreadCounts, error)
}

// conversationsMapper is a concrete ConversationsPersistenceInterface implementation.
type conversationsMapper struct{}

// Conversations is the persistence mapper for conversations.
var Conversations ConversationsPersistenceInterface = conversationsMapper{}

// Create assigns an id to the conversation and persists it.
func (conversationsMapper) Create(conv *types.Conversation) error {
	conv.SetUid(GetUid())
	conv.InitTimes()
	return adp.ConversationCreate(conv)
}

// Get loads a conversation by its (abune, user) pair key.
func (conversationsMapper) Get(abune, user types.Uid) (*types.Conversation, error) {
	return adp.ConversationGet(abune, user)
}

// GetById loads a conversation by record id.
func (conversationsMapper) GetById(convId types.Uid) (*types.Conversation, error) {
	return adp.ConversationGetById(convId)
}

// UpdateOnMessage rolls the last-message summary forward and increments the
// unread counter in a single write.
func (conversationsMapper) UpdateOnMessage(convId types.Uid, at time.Time, summary string) error {
	return adp.ConversationUpdateOnMessage(convId, at, summary)
}

// MarkRead resets the unread counter to zero.
func (conversationsMapper) MarkRead(convId types.Uid) error {
	return adp.ConversationMarkRead(convId)
}

// GetForUser loads conversations involving the user within a community.
func (conversationsMapper) GetForUser(userId, community types.Uid) ([]types.Conversation, error) {
	return adp.ConversationsForUser(userId, community)
}

// UnreadCounts aggregates unread counters for the user.
func (conversationsMapper) UnreadCounts(userId, community types.Uid) (*types.UnreadCounts, error) {
	return adp.UnreadCounts(userId, community)
}
