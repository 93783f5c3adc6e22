/******************************************************************************
 *
 *  Description :
 *
 *    Authorization oracle: pure decisions about community membership and
 *    who may message whom. No state, no I/O; every mutating path in the
 *    router consults these checks before touching storage.
 *
 *****************************************************************************/

package main

import (
	"github.com/abunechat/chat/server/store/types"
)

// isCommunityMember decides whether the identity belongs to the given community.
// An Abune is a member of exactly the community whose id equals their own id.
// A Regular is a member of their owner's community, but only while approved
// and active.
func isCommunityMember(user *types.User, community types.Uid) bool {
	if user == nil || community.IsZero() {
		return false
	}

	switch user.Type {
	case types.UserAbune:
		return user.Uid() == community
	case types.UserRegular:
		return user.OwnerAbune == community && user.Approved && user.State == types.StateActive
	}
	return false
}

// canSend decides whether sender may send a direct message to recipient
// within the given community:
//   - both parties must be members of the community;
//   - no self-messaging;
//   - an Abune may message only Regulars;
//   - a Regular may message only their own Abune.
func canSend(sender, recipient *types.User, community types.Uid) bool {
	if sender == nil || recipient == nil {
		return false
	}
	if !isCommunityMember(sender, community) || !isCommunityMember(recipient, community) {
		return false
	}
	if sender.Uid() == recipient.Uid() {
		return false
	}

	switch sender.Type {
	case types.UserAbune:
		return recipient.Type == types.UserRegular
	case types.UserRegular:
		return recipient.Type == types.UserAbune && recipient.Uid() == sender.OwnerAbune
	}
	return false
}

// canBroadcast decides whether sender may broadcast to the community:
// only the community's own Abune may.
func canBroadcast(sender *types.User, community types.Uid) bool {
	if sender == nil {
		return false
	}
	return sender.Type == types.UserAbune && sender.Uid() == community && !community.IsZero()
}
