package main

import (
	"testing"

	"github.com/abunechat/chat/server/store/types"
)

func TestPresenceConnectReplacesOlderConnection(t *testing.T) {
	pr := NewPresenceRegistry()
	user := types.Uid(21)
	community := types.Uid(10)

	if replaced := pr.Connect(user, community, "conn-1"); replaced != "" {
		t.Errorf("first connect replaced %q, want none", replaced)
	}
	if replaced := pr.Connect(user, community, "conn-2"); replaced != "conn-1" {
		t.Errorf("second connect replaced %q, want conn-1", replaced)
	}

	connId, online := pr.ConnFor(user)
	if !online || connId != "conn-2" {
		t.Errorf("ConnFor = %q/%v, want conn-2/true", connId, online)
	}
	if got := pr.OnlineUsers(community); len(got) != 1 || got[0] != user {
		t.Errorf("OnlineUsers = %v, want exactly [%s]", got, user.String())
	}
}

func TestPresenceStaleDisconnectIsNoop(t *testing.T) {
	pr := NewPresenceRegistry()
	user := types.Uid(21)
	community := types.Uid(10)

	pr.Connect(user, community, "conn-1")
	pr.Connect(user, community, "conn-2")

	// The close of the replaced connection arrives after the reconnect.
	if _, _, wasLive := pr.Disconnect("conn-1"); wasLive {
		t.Error("stale disconnect reported as live")
	}
	if !pr.IsOnline(user) {
		t.Error("stale disconnect evicted the live entry")
	}

	gotUser, gotCommunity, wasLive := pr.Disconnect("conn-2")
	if !wasLive || gotUser != user || gotCommunity != community {
		t.Errorf("live disconnect = (%s, %s, %v), want (%s, %s, true)",
			gotUser.String(), gotCommunity.String(), wasLive, user.String(), community.String())
	}
	if pr.IsOnline(user) {
		t.Error("user still online after live disconnect")
	}
	if got := pr.OnlineUsers(community); len(got) != 0 {
		t.Errorf("OnlineUsers after disconnect = %v, want empty", got)
	}
	if pr.LastSeen(user).IsZero() {
		t.Error("LastSeen not recorded on disconnect")
	}
}

func TestPresenceUnknownConnection(t *testing.T) {
	pr := NewPresenceRegistry()
	if _, _, wasLive := pr.Disconnect("no-such-conn"); wasLive {
		t.Error("unknown connection reported as live")
	}
	if pr.IsOnline(types.Uid(21)) {
		t.Error("never-connected user reported online")
	}
}
