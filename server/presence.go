/******************************************************************************
 *
 *  Description :
 *
 *    In-memory registry of live connections. Tracks which user is online
 *    through which connection, groups users by community, and answers
 *    reverse lookups from connection id to user on disconnect.
 *
 *    The registry holds no durable state: it is rebuilt from zero on restart
 *    and clients must re-establish presence after reconnecting.
 *
 *****************************************************************************/

package main

import (
	"sync"
	"time"

	"github.com/abunechat/chat/server/store/types"
)

// presEntry is the live presence record of a single user. At most one
// connection per user is authoritative: a newer connection replaces the
// older one.
type presEntry struct {
	sync.Mutex

	userId    types.Uid
	community types.Uid
	// Session id of the live connection. Empty when offline.
	connId   string
	online   bool
	lastSeen time.Time
}

// communityGroup is the set of currently connected members of one community.
type communityGroup struct {
	sync.Mutex
	members map[types.Uid]bool
}

// PresenceRegistry tracks live connections grouped by community and by user.
// All methods are safe for concurrent use; a single user's connect/disconnect
// is atomic per user, unrelated users never contend.
type PresenceRegistry struct {
	// User id -> *presEntry.
	users sync.Map
	// Community id -> *communityGroup.
	groups sync.Map
	// Connection id -> user id reverse index.
	conns sync.Map
}

// NewPresenceRegistry creates an empty registry. Its lifetime is tied to the
// process; nothing is persisted.
func NewPresenceRegistry() *PresenceRegistry {
	return &PresenceRegistry{}
}

func (pr *PresenceRegistry) group(community types.Uid) *communityGroup {
	g, ok := pr.groups.Load(community)
	if !ok {
		g, _ = pr.groups.LoadOrStore(community, &communityGroup{members: make(map[types.Uid]bool)})
	}
	return g.(*communityGroup)
}

// Connect registers (or overwrites) the live entry for the user and adds the
// user to the community group. Returns the connection id of the replaced
// connection, if the user was already online through another one.
func (pr *PresenceRegistry) Connect(userId, community types.Uid, connId string) string {
	e, ok := pr.users.Load(userId)
	if !ok {
		e, _ = pr.users.LoadOrStore(userId, &presEntry{userId: userId})
	}
	entry := e.(*presEntry)

	entry.Lock()
	var replaced string
	if entry.online && entry.connId != connId {
		replaced = entry.connId
	}
	entry.community = community
	entry.connId = connId
	entry.online = true
	entry.lastSeen = types.TimeNow()
	entry.Unlock()

	if replaced != "" {
		pr.conns.Delete(replaced)
	}
	pr.conns.Store(connId, userId)

	g := pr.group(community)
	g.Lock()
	g.members[userId] = true
	g.Unlock()

	return replaced
}

// Disconnect resolves the user owning connId and marks them offline. If the
// connection is not the user's live one (already replaced by a newer
// connection), the call is a no-op: it must not evict the newer entry.
// Returns the affected user and community, and whether a live entry was
// actually taken offline.
func (pr *PresenceRegistry) Disconnect(connId string) (types.Uid, types.Uid, bool) {
	u, ok := pr.conns.Load(connId)
	if !ok {
		return types.ZeroUid, types.ZeroUid, false
	}
	userId := u.(types.Uid)

	e, ok := pr.users.Load(userId)
	if !ok {
		pr.conns.Delete(connId)
		return types.ZeroUid, types.ZeroUid, false
	}
	entry := e.(*presEntry)

	entry.Lock()
	if !entry.online || entry.connId != connId {
		// Stale disconnect raced with a reconnect.
		entry.Unlock()
		pr.conns.Delete(connId)
		return types.ZeroUid, types.ZeroUid, false
	}
	community := entry.community
	entry.online = false
	entry.connId = ""
	entry.lastSeen = types.TimeNow()
	entry.Unlock()

	pr.conns.Delete(connId)

	g := pr.group(community)
	g.Lock()
	delete(g.members, userId)
	g.Unlock()

	return userId, community, true
}

// ConnFor returns the live connection id for the user, if online.
func (pr *PresenceRegistry) ConnFor(userId types.Uid) (string, bool) {
	e, ok := pr.users.Load(userId)
	if !ok {
		return "", false
	}
	entry := e.(*presEntry)

	entry.Lock()
	defer entry.Unlock()
	if !entry.online {
		return "", false
	}
	return entry.connId, true
}

// IsOnline reports whether the user is currently connected.
func (pr *PresenceRegistry) IsOnline(userId types.Uid) bool {
	_, online := pr.ConnFor(userId)
	return online
}

// LastSeen returns the stored timestamp for the user regardless of online
// state. The zero time means the user has never connected to this instance.
func (pr *PresenceRegistry) LastSeen(userId types.Uid) time.Time {
	e, ok := pr.users.Load(userId)
	if !ok {
		return time.Time{}
	}
	entry := e.(*presEntry)

	entry.Lock()
	defer entry.Unlock()
	return entry.lastSeen
}

// OnlineUsers returns the ids of all users currently connected to the
// community, in no particular order.
func (pr *PresenceRegistry) OnlineUsers(community types.Uid) []types.Uid {
	g, ok := pr.groups.Load(community)
	if !ok {
		return nil
	}
	group := g.(*communityGroup)

	group.Lock()
	defer group.Unlock()
	online := make([]types.Uid, 0, len(group.members))
	for uid := range group.members {
		online = append(online, uid)
	}
	return online
}
