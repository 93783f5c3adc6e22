// Package mysql is a database adapter for MySQL.
package mysql

import (
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/abunechat/chat/server/store"
	t "github.com/abunechat/chat/server/store/types"
	ms "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// adapter holds MySQL connection data.
type adapter struct {
	db         *sqlx.DB
	dsn        string
	dbName     string
	maxResults int
	version    int
}

const (
	defaultDSN      = "root:@tcp(localhost:3306)/abunechat?parseTime=true&collation=utf8mb4_unicode_ci"
	defaultDatabase = "abunechat"

	adpVersion = 100

	adapterName = "mysql"

	defaultMaxResults = 1024
)

type configType struct {
	DSN    string `json:"dsn,omitempty"`
	DBName string `json:"database,omitempty"`

	// Connection pool settings.
	MaxOpenConns    int `json:"max_open_conns,omitempty"`
	MaxIdleConns    int `json:"max_idle_conns,omitempty"`
	ConnMaxLifetime int `json:"conn_max_lifetime,omitempty"`
}

// Open initializes the MySQL session.
func (a *adapter) Open(jsonconfig json.RawMessage) error {
	if a.db != nil {
		return errors.New("mysql adapter is already connected")
	}

	var err error
	var config configType

	if len(jsonconfig) > 0 {
		if err = json.Unmarshal(jsonconfig, &config); err != nil {
			return errors.New("mysql adapter failed to parse config: " + err.Error())
		}
	}

	a.dsn = config.DSN
	if a.dsn == "" {
		a.dsn = defaultDSN
	}

	a.dbName = config.DBName
	if a.dbName == "" {
		a.dbName = defaultDatabase
	}

	if a.maxResults <= 0 {
		a.maxResults = defaultMaxResults
	}

	a.db, err = sqlx.Open("mysql", a.dsn)
	if err != nil {
		return err
	}

	// sql.Open does not open the network connection. Force it here.
	if err = a.db.Ping(); err != nil {
		return err
	}

	if config.MaxOpenConns > 0 {
		a.db.SetMaxOpenConns(config.MaxOpenConns)
	}
	if config.MaxIdleConns > 0 {
		a.db.SetMaxIdleConns(config.MaxIdleConns)
	}
	if config.ConnMaxLifetime > 0 {
		a.db.SetConnMaxLifetime(time.Duration(config.ConnMaxLifetime) * time.Second)
	}

	a.version = adpVersion

	return nil
}

// Close closes the underlying database connection.
func (a *adapter) Close() error {
	var err error
	if a.db != nil {
		err = a.db.Close()
		a.db = nil
	}
	return err
}

// IsOpen returns true if the connection to the database has been established.
// It does not check if the connection is actually live.
func (a *adapter) IsOpen() bool {
	return a.db != nil
}

// GetName returns string that adapter uses to register itself with the store.
func (a *adapter) GetName() string {
	return adapterName
}

// SetMaxResults configures how many results can be returned in a single DB call.
func (a *adapter) SetMaxResults(val int) error {
	if val <= 0 {
		a.maxResults = defaultMaxResults
	} else {
		a.maxResults = val
	}
	return nil
}

// Version returns the adapter version.
func (a *adapter) Version() int {
	return adpVersion
}

// Stats returns the DB connection stats object.
func (a *adapter) Stats() interface{} {
	if a.db == nil {
		return nil
	}
	return a.db.Stats()
}

// CreateDb initializes the storage.
func (a *adapter) CreateDb(reset bool) error {
	var err error
	var tx *sql.Tx

	if tx, err = a.db.Begin(); err != nil {
		return err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if reset {
		if _, err = tx.Exec("DROP DATABASE IF EXISTS " + a.dbName); err != nil {
			return err
		}
	}

	if _, err = tx.Exec("CREATE DATABASE " + a.dbName +
		" CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci"); err != nil {
		return err
	}

	if _, err = tx.Exec("USE " + a.dbName); err != nil {
		return err
	}

	// Identity facts. The user directory owns this table; the chat server only reads it.
	if _, err = tx.Exec(
		`CREATE TABLE users(
			id         BIGINT NOT NULL,
			createdat  DATETIME(3) NOT NULL,
			updatedat  DATETIME(3) NOT NULL,
			deletedat  DATETIME(3),
			usertype   SMALLINT NOT NULL DEFAULT 1,
			ownerabune BIGINT NOT NULL DEFAULT 0,
			approved   TINYINT NOT NULL DEFAULT 0,
			state      SMALLINT NOT NULL DEFAULT 0,
			PRIMARY KEY(id),
			INDEX users_ownerabune(ownerabune)
		)`); err != nil {
		return err
	}

	if _, err = tx.Exec(
		`CREATE TABLE messages(
			id            BIGINT NOT NULL,
			createdat     DATETIME(3) NOT NULL,
			updatedat     DATETIME(3) NOT NULL,
			deletedat     DATETIME(3),
			deletedby     BIGINT NOT NULL DEFAULT 0,
			sender        BIGINT NOT NULL,
			recipient     BIGINT NOT NULL DEFAULT 0,
			community     BIGINT NOT NULL,
			broadcast     TINYINT NOT NULL DEFAULT 0,
			kind          SMALLINT NOT NULL DEFAULT 0,
			content       TEXT,
			fileref       VARCHAR(2048) NOT NULL DEFAULT '',
			replyto       BIGINT NOT NULL DEFAULT 0,
			forwardedfrom BIGINT NOT NULL DEFAULT 0,
			reactions     JSON,
			readby        JSON,
			status        SMALLINT NOT NULL DEFAULT 0,
			edited        TINYINT NOT NULL DEFAULT 0,
			editedat      DATETIME(3),
			editedby      BIGINT NOT NULL DEFAULT 0,
			PRIMARY KEY(id),
			INDEX messages_community_createdat(community, createdat),
			INDEX messages_pair(sender, recipient)
		)`); err != nil {
		return err
	}

	// The unique pair key is what makes concurrent get-or-create converge.
	if _, err = tx.Exec(
		`CREATE TABLE conversations(
			id            BIGINT NOT NULL,
			createdat     DATETIME(3) NOT NULL,
			updatedat     DATETIME(3) NOT NULL,
			abune         BIGINT NOT NULL,
			member        BIGINT NOT NULL,
			lastmessageat DATETIME(3),
			summary       VARCHAR(255) NOT NULL DEFAULT '',
			unreadcount   INT NOT NULL DEFAULT 0,
			active        TINYINT NOT NULL DEFAULT 1,
			PRIMARY KEY(id),
			UNIQUE INDEX conversations_pair(abune, member)
		)`); err != nil {
		return err
	}

	return tx.Commit()
}

func isDupe(err error) bool {
	if err == nil {
		return false
	}
	myerr, ok := err.(*ms.MySQLError)
	return ok && myerr.Number == 1062
}

func toJSON(src interface{}) []byte {
	if src == nil {
		return nil
	}
	jval, _ := json.Marshal(src)
	return jval
}

func reactionsFromJSON(src []byte) map[t.Uid]string {
	if len(src) == 0 {
		return nil
	}
	var out map[t.Uid]string
	json.Unmarshal(src, &out)
	return out
}

func readByFromJSON(src []byte) map[t.Uid]time.Time {
	if len(src) == 0 {
		return nil
	}
	var out map[t.Uid]time.Time
	json.Unmarshal(src, &out)
	return out
}

// updateByMap converts an update map into a list of SQL columns and arguments.
func updateByMap(update map[string]interface{}) (cols []string, args []interface{}) {
	for col, arg := range update {
		col = strings.ToLower(col)
		switch col {
		case "reactions", "readby":
			arg = toJSON(arg)
		case "editedby", "deletedby":
			arg = store.DecodeUid(arg.(t.Uid))
		}
		cols = append(cols, col+"=?")
		args = append(args, arg)
	}
	return
}

// UserGet fetches a single identity record.
func (a *adapter) UserGet(uid t.Uid) (*t.User, error) {
	users, err := a.UserGetAll(uid)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, t.ErrNotFound
	}
	return &users[0], nil
}

// UserGetAll returns identity records for the given list of user ids.
func (a *adapter) UserGetAll(ids ...t.Uid) ([]t.User, error) {
	uids := make([]interface{}, len(ids))
	for i, id := range ids {
		uids[i] = store.DecodeUid(id)
	}

	query, args, err := sqlx.In(
		"SELECT id,createdat,updatedat,usertype,ownerabune,approved,state FROM users "+
			"WHERE id IN (?) AND deletedat IS NULL", uids)
	if err != nil {
		return nil, err
	}

	rows, err := a.db.Queryx(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []t.User
	for rows.Next() {
		var user t.User
		var id, owner int64
		var usertype, state int
		var approved bool
		if err = rows.Scan(&id, &user.CreatedAt, &user.UpdatedAt, &usertype, &owner,
			&approved, &state); err != nil {
			return nil, err
		}
		user.SetUid(store.EncodeUid(id))
		user.Type = t.UserType(usertype)
		user.OwnerAbune = store.EncodeUid(owner)
		user.Approved = approved
		user.State = t.ObjState(state)
		users = append(users, user)
	}
	return users, rows.Err()
}

// CommunityMembers returns approved, active Regular members of a community.
func (a *adapter) CommunityMembers(community t.Uid) ([]t.User, error) {
	rows, err := a.db.Queryx(
		"SELECT id,createdat,updatedat,usertype,ownerabune,approved,state FROM users "+
			"WHERE ownerabune=? AND approved=1 AND state=? AND deletedat IS NULL",
		store.DecodeUid(community), int(t.StateActive))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []t.User
	for rows.Next() {
		var user t.User
		var id, owner int64
		var usertype, state int
		var approved bool
		if err = rows.Scan(&id, &user.CreatedAt, &user.UpdatedAt, &usertype, &owner,
			&approved, &state); err != nil {
			return nil, err
		}
		user.SetUid(store.EncodeUid(id))
		user.Type = t.UserType(usertype)
		user.OwnerAbune = store.EncodeUid(owner)
		user.Approved = approved
		user.State = t.ObjState(state)
		users = append(users, user)
	}
	return users, rows.Err()
}

// MessageSave persists a new message record.
func (a *adapter) MessageSave(msg *t.Message) error {
	var editedAt interface{}
	if msg.EditedAt != nil {
		editedAt = *msg.EditedAt
	}
	_, err := a.db.Exec(
		"INSERT INTO messages(id,createdat,updatedat,sender,recipient,community,broadcast,"+
			"kind,content,fileref,replyto,forwardedfrom,reactions,readby,status,edited,editedat,editedby) "+
			"VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)",
		store.DecodeUid(msg.Uid()), msg.CreatedAt, msg.UpdatedAt,
		store.DecodeUid(msg.From), store.DecodeUid(msg.To), store.DecodeUid(msg.Community),
		msg.Broadcast, int(msg.Kind), msg.Content, msg.FileRef,
		store.DecodeUid(msg.ReplyTo), store.DecodeUid(msg.ForwardedFrom),
		toJSON(msg.Reactions), toJSON(msg.ReadBy), int(msg.Status),
		msg.Edited, editedAt, store.DecodeUid(msg.EditedBy))
	return err
}

const messageColumns = "id,createdat,updatedat,deletedat,deletedby,sender,recipient,community," +
	"broadcast,kind,content,fileref,replyto,forwardedfrom,reactions,readby,status,edited,editedat,editedby"

func scanMessage(rows sqlx.ColScanner) (*t.Message, error) {
	var msg t.Message
	var id, deletedBy, sender, recipient, community, replyTo, fwdFrom, editedBy int64
	var kind, status int
	var content sql.NullString
	var deletedAt, editedAt sql.NullTime
	var reactions, readBy []byte
	if err := rows.Scan(&id, &msg.CreatedAt, &msg.UpdatedAt, &deletedAt, &deletedBy,
		&sender, &recipient, &community, &msg.Broadcast, &kind, &content, &msg.FileRef,
		&replyTo, &fwdFrom, &reactions, &readBy, &status, &msg.Edited, &editedAt,
		&editedBy); err != nil {
		return nil, err
	}
	msg.SetUid(store.EncodeUid(id))
	if deletedAt.Valid {
		msg.DeletedAt = &deletedAt.Time
	}
	if editedAt.Valid {
		msg.EditedAt = &editedAt.Time
	}
	msg.DeletedBy = store.EncodeUid(deletedBy)
	msg.From = store.EncodeUid(sender)
	msg.To = store.EncodeUid(recipient)
	msg.Community = store.EncodeUid(community)
	msg.Kind = t.ContentKind(kind)
	msg.Content = content.String
	msg.ReplyTo = store.EncodeUid(replyTo)
	msg.ForwardedFrom = store.EncodeUid(fwdFrom)
	msg.Reactions = reactionsFromJSON(reactions)
	msg.ReadBy = readByFromJSON(readBy)
	msg.Status = t.DeliveryStatus(status)
	msg.EditedBy = store.EncodeUid(editedBy)
	return &msg, nil
}

func (a *adapter) messageGet(msgId t.Uid, includeDeleted bool) (*t.Message, error) {
	query := "SELECT " + messageColumns + " FROM messages WHERE id=?"
	if !includeDeleted {
		query += " AND deletedat IS NULL"
	}
	rows, err := a.db.Queryx(query, store.DecodeUid(msgId))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return nil, err
		}
		return nil, t.ErrNotFound
	}
	return scanMessage(rows)
}

// MessageGet fetches a single message by id, skipping soft-deleted ones.
func (a *adapter) MessageGet(msgId t.Uid) (*t.Message, error) {
	return a.messageGet(msgId, false)
}

// MessageGetAny fetches a single message by id, including soft-deleted ones.
func (a *adapter) MessageGetAny(msgId t.Uid) (*t.Message, error) {
	return a.messageGet(msgId, true)
}

// MessageUpdate applies the given update map to a message record.
func (a *adapter) MessageUpdate(msgId t.Uid, update map[string]interface{}) error {
	if _, ok := update["UpdatedAt"]; !ok {
		update["UpdatedAt"] = t.TimeNow()
	}
	cols, args := updateByMap(update)
	args = append(args, store.DecodeUid(msgId))
	_, err := a.db.Exec("UPDATE messages SET "+strings.Join(cols, ",")+" WHERE id=?", args...)
	return err
}

// MessageDelete soft-deletes a message. Content is retained so replies and
// forwards referencing the message keep working.
func (a *adapter) MessageDelete(msgId t.Uid, deletedBy t.Uid, at time.Time) error {
	res, err := a.db.Exec("UPDATE messages SET updatedat=?,deletedat=?,deletedby=? WHERE id=? AND deletedat IS NULL",
		at, at, store.DecodeUid(deletedBy), store.DecodeUid(msgId))
	if err != nil {
		return err
	}
	if count, _ := res.RowsAffected(); count == 0 {
		return t.ErrNotFound
	}
	return nil
}

// MessageMarkRead records a read receipt. Re-marking an already read message
// is a no-op.
func (a *adapter) MessageMarkRead(msgId t.Uid, userId t.Uid, at time.Time) error {
	return a.mutateJSONMap(msgId, "readby", func(m map[string]interface{}) bool {
		key := userId.String()
		if _, ok := m[key]; ok {
			return false
		}
		m[key] = at
		return true
	}, func(broadcast bool) map[string]interface{} {
		// A broadcast has many readers; its status column stays put.
		if broadcast {
			return nil
		}
		return map[string]interface{}{"status": int(t.StatusRead)}
	})
}

// ReactionSave stores or replaces userId's reaction.
func (a *adapter) ReactionSave(msgId t.Uid, userId t.Uid, emoji string) error {
	return a.mutateJSONMap(msgId, "reactions", func(m map[string]interface{}) bool {
		m[userId.String()] = emoji
		return true
	}, nil)
}

// ReactionDelete removes userId's reaction.
func (a *adapter) ReactionDelete(msgId t.Uid, userId t.Uid) error {
	return a.mutateJSONMap(msgId, "reactions", func(m map[string]interface{}) bool {
		key := userId.String()
		if _, ok := m[key]; !ok {
			return false
		}
		delete(m, key)
		return true
	}, nil)
}

// mutateJSONMap applies a read-modify-write cycle to one of the JSON map
// columns of a message under a row lock. The mutation callback returns false
// if nothing changed and the write should be skipped.
func (a *adapter) mutateJSONMap(msgId t.Uid, column string,
	mutate func(map[string]interface{}) bool, extra func(broadcast bool) map[string]interface{}) error {

	tx, err := a.db.Beginx()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var raw []byte
	var broadcast bool
	err = tx.QueryRow("SELECT "+column+", broadcast FROM messages WHERE id=? AND deletedat IS NULL FOR UPDATE",
		store.DecodeUid(msgId)).Scan(&raw, &broadcast)
	if err == sql.ErrNoRows {
		err = t.ErrNotFound
		return err
	} else if err != nil {
		return err
	}

	val := map[string]interface{}{}
	if len(raw) > 0 {
		json.Unmarshal(raw, &val)
	}

	if !mutate(val) {
		// Nothing to change, commit the empty transaction.
		return tx.Commit()
	}

	cols := []string{column + "=?", "updatedat=?"}
	args := []interface{}{toJSON(val), t.TimeNow()}
	if extra != nil {
		for col, arg := range extra(broadcast) {
			cols = append(cols, col+"=?")
			args = append(args, arg)
		}
	}
	args = append(args, store.DecodeUid(msgId))

	if _, err = tx.Exec("UPDATE messages SET "+strings.Join(cols, ",")+" WHERE id=?", args...); err != nil {
		return err
	}

	return tx.Commit()
}

func (a *adapter) messageSelect(where string, args []interface{}, opts *t.QueryOpt) ([]t.Message, error) {
	limit := a.maxResults
	if opts != nil {
		if !opts.Before.IsZero() {
			where += " AND createdat<?"
			args = append(args, opts.Before)
		}
		if opts.Limit > 0 && opts.Limit < limit {
			limit = opts.Limit
		}
	}
	args = append(args, limit)

	rows, err := a.db.Queryx("SELECT "+messageColumns+" FROM messages WHERE "+where+
		" ORDER BY createdat DESC LIMIT ?", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []t.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, *msg)
	}
	return msgs, rows.Err()
}

// MessagesForConversation returns direct messages between the two parties, newest first.
func (a *adapter) MessagesForConversation(abune, user t.Uid, opts *t.QueryOpt) ([]t.Message, error) {
	da, du := store.DecodeUid(abune), store.DecodeUid(user)
	return a.messageSelect(
		"community=? AND broadcast=0 AND deletedat IS NULL AND "+
			"((sender=? AND recipient=?) OR (sender=? AND recipient=?))",
		[]interface{}{da, da, du, du, da}, opts)
}

// MessagesForCommunity returns all messages in a community, newest first.
func (a *adapter) MessagesForCommunity(community t.Uid, opts *t.QueryOpt) ([]t.Message, error) {
	return a.messageSelect("community=? AND deletedat IS NULL",
		[]interface{}{store.DecodeUid(community)}, opts)
}

// BroadcastMessages returns broadcast messages of a community, newest first.
func (a *adapter) BroadcastMessages(community t.Uid, opts *t.QueryOpt) ([]t.Message, error) {
	return a.messageSelect("community=? AND broadcast=1 AND deletedat IS NULL",
		[]interface{}{store.DecodeUid(community)}, opts)
}

// MessageSearch finds messages in a community with content matching the term.
func (a *adapter) MessageSearch(community t.Uid, term string, opts *t.QueryOpt) ([]t.Message, error) {
	return a.messageSelect("community=? AND deletedat IS NULL AND content LIKE ?",
		[]interface{}{store.DecodeUid(community), "%" + term + "%"}, opts)
}

// ConversationCreate persists a new conversation. Returns types.ErrDuplicate
// if the pair already exists: the caller treats that as "lost the race, re-read".
func (a *adapter) ConversationCreate(conv *t.Conversation) error {
	var lastAt interface{}
	if !conv.LastMessageAt.IsZero() {
		lastAt = conv.LastMessageAt
	}
	_, err := a.db.Exec(
		"INSERT INTO conversations(id,createdat,updatedat,abune,member,lastmessageat,summary,unreadcount,active) "+
			"VALUES(?,?,?,?,?,?,?,?,?)",
		store.DecodeUid(conv.Uid()), conv.CreatedAt, conv.UpdatedAt,
		store.DecodeUid(conv.Abune), store.DecodeUid(conv.User),
		lastAt, conv.LastMessageSummary, conv.UnreadCount, conv.Active)
	if isDupe(err) {
		return t.ErrDuplicate
	}
	return err
}

func scanConversation(rows sqlx.ColScanner) (*t.Conversation, error) {
	var conv t.Conversation
	var id, abune, member int64
	var lastAt sql.NullTime
	if err := rows.Scan(&id, &conv.CreatedAt, &conv.UpdatedAt, &abune, &member,
		&lastAt, &conv.LastMessageSummary, &conv.UnreadCount, &conv.Active); err != nil {
		return nil, err
	}
	conv.SetUid(store.EncodeUid(id))
	conv.Abune = store.EncodeUid(abune)
	conv.User = store.EncodeUid(member)
	if lastAt.Valid {
		conv.LastMessageAt = lastAt.Time
	}
	return &conv, nil
}

const conversationColumns = "id,createdat,updatedat,abune,member,lastmessageat,summary,unreadcount,active"

func (a *adapter) conversationGet(where string, args ...interface{}) (*t.Conversation, error) {
	rows, err := a.db.Queryx("SELECT "+conversationColumns+" FROM conversations WHERE "+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return nil, err
		}
		return nil, t.ErrNotFound
	}
	return scanConversation(rows)
}

// ConversationGet fetches a conversation by its (abune, user) pair key.
func (a *adapter) ConversationGet(abune, user t.Uid) (*t.Conversation, error) {
	return a.conversationGet("abune=? AND member=?", store.DecodeUid(abune), store.DecodeUid(user))
}

// ConversationGetById fetches a conversation by record id.
func (a *adapter) ConversationGetById(convId t.Uid) (*t.Conversation, error) {
	return a.conversationGet("id=?", store.DecodeUid(convId))
}

// ConversationUpdateOnMessage rolls the summary forward and increments the
// unread counter in one write.
func (a *adapter) ConversationUpdateOnMessage(convId t.Uid, at time.Time, summary string) error {
	res, err := a.db.Exec(
		"UPDATE conversations SET updatedat=?,lastmessageat=?,summary=?,unreadcount=unreadcount+1 WHERE id=?",
		at, at, summary, store.DecodeUid(convId))
	if err != nil {
		return err
	}
	if count, _ := res.RowsAffected(); count == 0 {
		return t.ErrNotFound
	}
	return nil
}

// ConversationMarkRead resets the unread counter to zero. Idempotent.
func (a *adapter) ConversationMarkRead(convId t.Uid) error {
	_, err := a.db.Exec("UPDATE conversations SET updatedat=?,unreadcount=0 WHERE id=?",
		t.TimeNow(), store.DecodeUid(convId))
	return err
}

// ConversationsForUser returns conversations involving the user within a community.
func (a *adapter) ConversationsForUser(userId, community t.Uid) ([]t.Conversation, error) {
	du, dc := store.DecodeUid(userId), store.DecodeUid(community)
	rows, err := a.db.Queryx("SELECT "+conversationColumns+
		" FROM conversations WHERE abune=? AND (member=? OR abune=?) ORDER BY lastmessageat DESC",
		dc, du, du)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convos []t.Conversation
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		convos = append(convos, *conv)
	}
	return convos, rows.Err()
}

// UnreadCounts aggregates per-conversation unread counters for the user.
func (a *adapter) UnreadCounts(userId, community t.Uid) (*t.UnreadCounts, error) {
	du, dc := store.DecodeUid(userId), store.DecodeUid(community)
	rows, err := a.db.Queryx(
		"SELECT id,unreadcount FROM conversations WHERE abune=? AND (member=? OR abune=?) AND unreadcount>0",
		dc, du, du)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := &t.UnreadCounts{PerConversation: make(map[string]int)}
	for rows.Next() {
		var id int64
		var count int
		if err = rows.Scan(&id, &count); err != nil {
			return nil, err
		}
		counts.PerConversation[store.EncodeUid(id).String()] = count
		counts.Total += count
	}
	return counts, rows.Err()
}

func init() {
	store.RegisterAdapter(&adapter{})
}
