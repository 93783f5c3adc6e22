package main

import (
	"testing"

	"github.com/abunechat/chat/server/store/types"
)

// makeAbune builds an active community leader. The leader's id doubles as the
// community id.
func makeAbune(id uint64) *types.User {
	u := &types.User{Type: types.UserAbune, State: types.StateActive}
	u.SetUid(types.Uid(id))
	return u
}

// makeMember builds an approved, active regular member of the given leader's
// community.
func makeMember(id, abune uint64) *types.User {
	u := &types.User{
		Type:       types.UserRegular,
		OwnerAbune: types.Uid(abune),
		Approved:   true,
		State:      types.StateActive,
	}
	u.SetUid(types.Uid(id))
	return u
}

func TestIsCommunityMember(t *testing.T) {
	abune := makeAbune(10)
	member := makeMember(21, 10)

	unapproved := makeMember(22, 10)
	unapproved.Approved = false

	suspended := makeMember(23, 10)
	suspended.State = types.StateSuspended

	outsider := makeMember(31, 77)

	tests := []struct {
		name      string
		user      *types.User
		community types.Uid
		want      bool
	}{
		{"abune own community", abune, types.Uid(10), true},
		{"abune foreign community", abune, types.Uid(77), false},
		{"approved member", member, types.Uid(10), true},
		{"member foreign community", member, types.Uid(77), false},
		{"unapproved member", unapproved, types.Uid(10), false},
		{"suspended member", suspended, types.Uid(10), false},
		{"member of another abune", outsider, types.Uid(10), false},
		{"nil user", nil, types.Uid(10), false},
		{"zero community", member, types.ZeroUid, false},
	}

	for _, tc := range tests {
		if got := isCommunityMember(tc.user, tc.community); got != tc.want {
			t.Errorf("%s: isCommunityMember = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCanSend(t *testing.T) {
	abune := makeAbune(10)
	otherAbune := makeAbune(77)
	member := makeMember(21, 10)
	member2 := makeMember(22, 10)
	foreign := makeMember(31, 77)

	pending := makeMember(23, 10)
	pending.Approved = false
	pending.State = types.StatePending

	community := types.Uid(10)

	tests := []struct {
		name      string
		sender    *types.User
		recipient *types.User
		want      bool
	}{
		{"abune to own member", abune, member, true},
		{"member to own abune", member, abune, true},
		{"member to member", member, member2, false},
		{"member to foreign abune", member, otherAbune, false},
		{"abune to foreign member", abune, foreign, false},
		{"abune to abune", abune, otherAbune, false},
		{"abune to self", abune, abune, false},
		{"member to self", member, member, false},
		{"abune to pending member", abune, pending, false},
		{"pending member to abune", pending, abune, false},
		{"foreign member into community", foreign, abune, false},
	}

	for _, tc := range tests {
		if got := canSend(tc.sender, tc.recipient, community); got != tc.want {
			t.Errorf("%s: canSend = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCanBroadcast(t *testing.T) {
	abune := makeAbune(10)
	member := makeMember(21, 10)

	if !canBroadcast(abune, types.Uid(10)) {
		t.Error("abune must be able to broadcast to own community")
	}
	if canBroadcast(abune, types.Uid(77)) {
		t.Error("abune must not broadcast to a foreign community")
	}
	if canBroadcast(member, types.Uid(10)) {
		t.Error("regular member must not broadcast")
	}
	if canBroadcast(nil, types.Uid(10)) {
		t.Error("nil sender must not broadcast")
	}
	if canBroadcast(abune, types.ZeroUid) {
		t.Error("zero community must not accept broadcasts")
	}
}
