package main

import (
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"

	"github.com/abunechat/chat/server/store"
	"github.com/abunechat/chat/server/store/mock_store"
	"github.com/abunechat/chat/server/store/types"
)

// routerFixture assembles a router with mocked storage and a hub stub whose
// route channel is drained manually by the test.
type routerFixture struct {
	ctrl   *gomock.Controller
	users  *mock_store.MockUsersPersistenceInterface
	msgs   *mock_store.MockMessagesPersistenceInterface
	convos *mock_store.MockConversationsPersistenceInterface
	hub    *Hub
	router *MessageRouter
}

func newRouterFixture(t *testing.T) *routerFixture {
	ctrl := gomock.NewController(t)
	f := &routerFixture{
		ctrl:   ctrl,
		users:  mock_store.NewMockUsersPersistenceInterface(ctrl),
		msgs:   mock_store.NewMockMessagesPersistenceInterface(ctrl),
		convos: mock_store.NewMockConversationsPersistenceInterface(ctrl),
	}
	store.Users = f.users
	store.Messages = f.msgs
	store.Conversations = f.convos

	presence := NewPresenceRegistry()
	aggregator := NewConversationAggregator()
	f.hub = &Hub{route: make(chan *ServerComMessage, 16)}
	f.router = NewMessageRouter(presence, aggregator, f.hub)
	return f
}

func (f *routerFixture) tearDown() {
	store.Users = nil
	store.Messages = nil
	store.Conversations = nil
	f.ctrl.Finish()
}

// routed drains everything queued on the hub channel.
func (f *routerFixture) routed() []*ServerComMessage {
	var out []*ServerComMessage
	for {
		select {
		case msg := <-f.hub.route:
			out = append(out, msg)
		default:
			return out
		}
	}
}

// expectSave wires the message save to behave like the real mapper: assign an
// id and set creation time.
func (f *routerFixture) expectSave(id uint64) {
	f.msgs.EXPECT().Save(gomock.Any()).DoAndReturn(func(msg *types.Message) error {
		msg.SetUid(types.Uid(id))
		msg.InitTimes()
		return nil
	})
}

func TestSendDirectMemberToAbune(t *testing.T) {
	f := newRouterFixture(t)
	defer f.tearDown()

	abune := makeAbune(10)
	member := makeMember(21, 10)

	conv := &types.Conversation{Abune: abune.Uid(), User: member.Uid(), Active: true}
	conv.SetUid(types.Uid(500))
	counts := &types.UnreadCounts{Total: 1, PerConversation: map[string]int{conv.Id: 1}}

	f.users.EXPECT().Get(abune.Uid()).Return(abune, nil)
	f.expectSave(600)
	f.convos.EXPECT().Get(abune.Uid(), member.Uid()).Return(conv, nil)
	f.convos.EXPECT().UpdateOnMessage(conv.Uid(), gomock.Any(), "hello").Return(nil)
	f.convos.EXPECT().UnreadCounts(abune.Uid(), types.Uid(10)).Return(counts, nil)

	msg, err := f.router.SendDirect(member, abune.Uid(), types.KindText, "hello", "", types.ZeroUid)
	if err != nil {
		t.Fatal("SendDirect:", err)
	}
	if msg.Status != types.StatusSent {
		t.Errorf("offline recipient: status = %s, want sent", msg.Status.String())
	}

	routed := f.routed()
	if len(routed) != 2 {
		t.Fatalf("routed %d messages, want data + unread update", len(routed))
	}
	data := routed[0]
	if data.Data == nil || data.Data.What != "ReceiveMessage" || data.rcptTo != abune.Uid() {
		t.Errorf("first routed message = %+v, want ReceiveMessage to the abune", data)
	}
	if data.Data.Msg.Content != "hello" || data.Data.Msg.Status != "sent" {
		t.Errorf("delivered payload = %+v", data.Data.Msg)
	}
	info := routed[1]
	if info.Info == nil || info.Info.What != "UnreadCountUpdate" || info.rcptTo != abune.Uid() {
		t.Fatalf("second routed message = %+v, want UnreadCountUpdate to the abune", info)
	}
	if diff := cmp.Diff(counts, info.Info.Unread); diff != "" {
		t.Errorf("unread counts mismatch (-want +got):\n%s", diff)
	}
}

func TestSendDirectMarksDeliveredWhenOnline(t *testing.T) {
	f := newRouterFixture(t)
	defer f.tearDown()

	abune := makeAbune(10)
	member := makeMember(21, 10)
	f.router.presence.Connect(abune.Uid(), types.Uid(10), "conn-abune")

	conv := &types.Conversation{Abune: abune.Uid(), User: member.Uid(), Active: true}
	conv.SetUid(types.Uid(500))

	f.users.EXPECT().Get(abune.Uid()).Return(abune, nil)
	f.expectSave(600)
	f.convos.EXPECT().Get(abune.Uid(), member.Uid()).Return(conv, nil)
	f.convos.EXPECT().UpdateOnMessage(conv.Uid(), gomock.Any(), gomock.Any()).Return(nil)
	f.convos.EXPECT().UnreadCounts(abune.Uid(), types.Uid(10)).Return(&types.UnreadCounts{}, nil)
	f.msgs.EXPECT().Update(types.Uid(600), gomock.Any()).Return(nil)

	msg, err := f.router.SendDirect(member, abune.Uid(), types.KindText, "hello", "", types.ZeroUid)
	if err != nil {
		t.Fatal("SendDirect:", err)
	}
	if msg.Status != types.StatusDelivered {
		t.Errorf("online recipient: status = %s, want delivered", msg.Status.String())
	}

	var delivered bool
	for _, routed := range f.routed() {
		if routed.Info != nil && routed.Info.What == "MessageDelivered" {
			if routed.rcptTo != member.Uid() {
				t.Errorf("MessageDelivered addressed to %s, want the sender", routed.rcptTo.String())
			}
			delivered = true
		}
	}
	if !delivered {
		t.Error("no MessageDelivered receipt routed to the sender")
	}
}

func TestSendDirectMemberToMemberDenied(t *testing.T) {
	f := newRouterFixture(t)
	defer f.tearDown()

	member := makeMember(21, 10)
	peer := makeMember(22, 10)
	f.users.EXPECT().Get(peer.Uid()).Return(peer, nil)

	if _, err := f.router.SendDirect(member, peer.Uid(), types.KindText, "hi", "", types.ZeroUid); err != types.ErrPermissionDenied {
		t.Errorf("member to member: err = %v, want ErrPermissionDenied", err)
	}
	if routed := f.routed(); len(routed) != 0 {
		t.Errorf("denied send still routed %d messages", len(routed))
	}
}

func TestSendDirectMediaRequiresFileRef(t *testing.T) {
	f := newRouterFixture(t)
	defer f.tearDown()

	member := makeMember(21, 10)
	if _, err := f.router.SendDirect(member, types.Uid(10), types.KindImage, "", "", types.ZeroUid); err != types.ErrMalformed {
		t.Errorf("media without fileref: err = %v, want ErrMalformed", err)
	}
}

func TestReplyCrossCommunityRejected(t *testing.T) {
	f := newRouterFixture(t)
	defer f.tearDown()

	abune := makeAbune(10)
	member := makeMember(21, 10)

	foreign := &types.Message{From: types.Uid(88), To: types.Uid(77), Community: types.Uid(77)}
	foreign.SetUid(types.Uid(700))

	f.users.EXPECT().Get(abune.Uid()).Return(abune, nil)
	f.msgs.EXPECT().GetAny(foreign.Uid()).Return(foreign, nil)

	if _, err := f.router.SendDirect(member, abune.Uid(), types.KindText, "re", "", foreign.Uid()); err != types.ErrCrossCommunity {
		t.Errorf("cross-community reply: err = %v, want ErrCrossCommunity", err)
	}
}

func TestEditByNonSenderDenied(t *testing.T) {
	f := newRouterFixture(t)
	defer f.tearDown()

	member := makeMember(21, 10)
	msg := &types.Message{From: types.Uid(10), To: member.Uid(), Community: types.Uid(10), Content: "orig"}
	msg.SetUid(types.Uid(600))
	msg.CreatedAt = types.TimeNow()
	f.msgs.EXPECT().Get(msg.Uid()).Return(msg, nil)

	if _, err := f.router.Edit(member, msg.Uid(), "tampered"); err != types.ErrPermissionDenied {
		t.Errorf("edit by recipient: err = %v, want ErrPermissionDenied", err)
	}
}

func TestEditPastWindowRejected(t *testing.T) {
	f := newRouterFixture(t)
	defer f.tearDown()

	member := makeMember(21, 10)
	msg := &types.Message{From: member.Uid(), To: types.Uid(10), Community: types.Uid(10), Content: "orig"}
	msg.SetUid(types.Uid(600))
	msg.CreatedAt = types.TimeNow().Add(-types.EditWindow - time.Minute)
	f.msgs.EXPECT().Get(msg.Uid()).Return(msg, nil)

	if _, err := f.router.Edit(member, msg.Uid(), "late"); err != types.ErrMessageTooOld {
		t.Errorf("edit past window: err = %v, want ErrMessageTooOld", err)
	}
}

func TestEditKeepsCreatedAt(t *testing.T) {
	f := newRouterFixture(t)
	defer f.tearDown()

	member := makeMember(21, 10)
	created := types.TimeNow().Add(-time.Hour)
	msg := &types.Message{From: member.Uid(), To: types.Uid(10), Community: types.Uid(10), Content: "orig"}
	msg.SetUid(types.Uid(600))
	msg.CreatedAt = created

	f.msgs.EXPECT().Get(msg.Uid()).Return(msg, nil)
	f.msgs.EXPECT().Update(msg.Uid(), gomock.Any()).DoAndReturn(
		func(_ types.Uid, update map[string]interface{}) error {
			if update["content"] != "fixed" || update["edited"] != true {
				t.Errorf("update map = %v", update)
			}
			if _, touched := update["createdat"]; touched {
				t.Error("edit must not touch the creation time")
			}
			return nil
		})

	got, err := f.router.Edit(member, msg.Uid(), "fixed")
	if err != nil {
		t.Fatal("Edit:", err)
	}
	if !got.CreatedAt.Equal(created) || !got.Edited || got.Content != "fixed" {
		t.Errorf("edited message = %+v", got)
	}
	// Both parties learn about the new content.
	if routed := f.routed(); len(routed) != 2 {
		t.Errorf("edit routed %d messages, want one per party", len(routed))
	}
}

func TestForwardSoftDeletedOriginalCopiesContent(t *testing.T) {
	f := newRouterFixture(t)
	defer f.tearDown()

	abune := makeAbune(10)
	member := makeMember(21, 10)

	deleted := types.TimeNow().Add(-time.Hour)
	orig := &types.Message{From: abune.Uid(), To: member.Uid(), Community: types.Uid(10),
		Kind: types.KindText, Content: "kept"}
	orig.SetUid(types.Uid(700))
	orig.DeletedAt = &deleted
	orig.DeletedBy = abune.Uid()

	conv := &types.Conversation{Abune: abune.Uid(), User: member.Uid(), Active: true}
	conv.SetUid(types.Uid(500))

	f.msgs.EXPECT().GetAny(orig.Uid()).Return(orig, nil)
	f.users.EXPECT().Get(member.Uid()).Return(member, nil)
	f.expectSave(800)
	f.convos.EXPECT().Get(abune.Uid(), member.Uid()).Return(conv, nil)
	f.convos.EXPECT().UpdateOnMessage(conv.Uid(), gomock.Any(), gomock.Any()).Return(nil)
	f.convos.EXPECT().UnreadCounts(member.Uid(), types.Uid(10)).Return(&types.UnreadCounts{}, nil)

	msg, err := f.router.Forward(abune, orig.Uid(), member.Uid())
	if err != nil {
		t.Fatal("forward of soft-deleted original:", err)
	}
	if msg.Content != "kept" || msg.ForwardedFrom != orig.Uid() {
		t.Errorf("forwarded copy = %+v, want the original's content", msg)
	}
	if msg.IsDeleted() {
		t.Error("forwarded copy must be a fresh, undeleted message")
	}
}

func TestForwardCrossCommunityRejected(t *testing.T) {
	f := newRouterFixture(t)
	defer f.tearDown()

	abune := makeAbune(10)
	foreign := &types.Message{From: types.Uid(88), Community: types.Uid(77), Content: "x"}
	foreign.SetUid(types.Uid(700))
	f.msgs.EXPECT().GetAny(foreign.Uid()).Return(foreign, nil)

	if _, err := f.router.Forward(abune, foreign.Uid(), types.Uid(21)); err != types.ErrCrossCommunity {
		t.Errorf("cross-community forward: err = %v, want ErrCrossCommunity", err)
	}
}

func TestForwardProducesDirectMessage(t *testing.T) {
	f := newRouterFixture(t)
	defer f.tearDown()

	abune := makeAbune(10)
	member := makeMember(21, 10)

	// Broadcast originals still forward as plain direct messages.
	orig := &types.Message{From: abune.Uid(), Community: types.Uid(10), Broadcast: true,
		Kind: types.KindText, Content: "announce"}
	orig.SetUid(types.Uid(700))

	conv := &types.Conversation{Abune: abune.Uid(), User: member.Uid(), Active: true}
	conv.SetUid(types.Uid(500))

	f.msgs.EXPECT().GetAny(orig.Uid()).Return(orig, nil)
	f.users.EXPECT().Get(member.Uid()).Return(member, nil)
	f.expectSave(800)
	f.convos.EXPECT().Get(abune.Uid(), member.Uid()).Return(conv, nil)
	f.convos.EXPECT().UpdateOnMessage(conv.Uid(), gomock.Any(), gomock.Any()).Return(nil)
	f.convos.EXPECT().UnreadCounts(member.Uid(), types.Uid(10)).Return(&types.UnreadCounts{}, nil)

	msg, err := f.router.Forward(abune, orig.Uid(), member.Uid())
	if err != nil {
		t.Fatal("Forward:", err)
	}
	if msg.Broadcast {
		t.Error("forwarded copy must not be a broadcast")
	}
	if msg.ForwardedFrom != orig.Uid() || msg.Content != "announce" || msg.To != member.Uid() {
		t.Errorf("forwarded copy = %+v", msg)
	}
}

func TestMarkReadByNonRecipientDenied(t *testing.T) {
	f := newRouterFixture(t)
	defer f.tearDown()

	member := makeMember(21, 10)
	msg := &types.Message{From: member.Uid(), To: types.Uid(10), Community: types.Uid(10)}
	msg.SetUid(types.Uid(600))
	f.msgs.EXPECT().Get(msg.Uid()).Return(msg, nil)

	// The sender cannot mark their own message read.
	if _, err := f.router.MarkRead(member, msg.Uid()); err != types.ErrPermissionDenied {
		t.Errorf("mark read by sender: err = %v, want ErrPermissionDenied", err)
	}
}

func TestMarkReadIdempotent(t *testing.T) {
	f := newRouterFixture(t)
	defer f.tearDown()

	abune := makeAbune(10)
	firstRead := types.TimeNow().Add(-time.Hour)
	msg := &types.Message{From: types.Uid(21), To: abune.Uid(), Community: types.Uid(10),
		Status: types.StatusRead,
		ReadBy: map[types.Uid]time.Time{abune.Uid(): firstRead}}
	msg.SetUid(types.Uid(600))
	f.msgs.EXPECT().Get(msg.Uid()).Return(msg, nil)

	got, err := f.router.MarkRead(abune, msg.Uid())
	if err != nil {
		t.Fatal("repeat MarkRead:", err)
	}
	if !got.ReadBy[abune.Uid()].Equal(firstRead) {
		t.Error("repeat receipt moved the original read timestamp")
	}
	if routed := f.routed(); len(routed) != 0 {
		t.Errorf("repeat receipt routed %d messages, want none", len(routed))
	}
}

func TestMarkReadAdvancesStatus(t *testing.T) {
	f := newRouterFixture(t)
	defer f.tearDown()

	abune := makeAbune(10)
	msg := &types.Message{From: types.Uid(21), To: abune.Uid(), Community: types.Uid(10),
		Status: types.StatusDelivered}
	msg.SetUid(types.Uid(600))
	f.msgs.EXPECT().Get(msg.Uid()).Return(msg, nil)
	f.msgs.EXPECT().MarkRead(msg.Uid(), abune.Uid(), gomock.Any()).Return(nil)

	got, err := f.router.MarkRead(abune, msg.Uid())
	if err != nil {
		t.Fatal("MarkRead:", err)
	}
	if got.Status != types.StatusRead {
		t.Errorf("status = %s, want read", got.Status.String())
	}

	routed := f.routed()
	if len(routed) != 1 || routed[0].Info == nil || routed[0].Info.What != "MessageRead" {
		t.Fatalf("routed = %+v, want a single MessageRead receipt", routed)
	}
	if routed[0].rcptTo != types.Uid(21) {
		t.Errorf("receipt addressed to %s, want the sender", routed[0].rcptTo.String())
	}
}

func TestBroadcastByMemberDenied(t *testing.T) {
	f := newRouterFixture(t)
	defer f.tearDown()

	member := makeMember(21, 10)
	if _, err := f.router.SendBroadcast(member, types.KindText, "yo", ""); err != types.ErrPermissionDenied {
		t.Errorf("broadcast by member: err = %v, want ErrPermissionDenied", err)
	}
}

func TestBroadcastSkipsConversationBookkeeping(t *testing.T) {
	f := newRouterFixture(t)
	defer f.tearDown()

	abune := makeAbune(10)
	// No expectations on the conversations mock: a broadcast must not
	// touch pair bookkeeping at all.
	f.expectSave(600)

	msg, err := f.router.SendBroadcast(abune, types.KindText, "service at nine", "")
	if err != nil {
		t.Fatal("SendBroadcast:", err)
	}
	if !msg.Broadcast || !msg.To.IsZero() {
		t.Errorf("broadcast = %+v, want Broadcast=true with zero recipient", msg)
	}

	routed := f.routed()
	if len(routed) != 1 {
		t.Fatalf("routed %d messages, want one community fan-out", len(routed))
	}
	fanout := routed[0]
	if fanout.Data == nil || fanout.Data.What != "ReceiveBroadcastMessage" {
		t.Errorf("fan-out = %+v, want ReceiveBroadcastMessage", fanout)
	}
	if !fanout.rcptTo.IsZero() || fanout.community != types.Uid(10) {
		t.Errorf("fan-out addressing = rcptTo %s community %s, want community-wide",
			fanout.rcptTo.String(), fanout.community.String())
	}
}

func TestReactRequiresMembership(t *testing.T) {
	f := newRouterFixture(t)
	defer f.tearDown()

	outsider := makeMember(31, 77)
	msg := &types.Message{From: types.Uid(21), To: types.Uid(10), Community: types.Uid(10)}
	msg.SetUid(types.Uid(600))
	f.msgs.EXPECT().Get(msg.Uid()).Return(msg, nil)

	if err := f.router.React(outsider, msg.Uid(), "+1"); err != types.ErrPermissionDenied {
		t.Errorf("reaction from outsider: err = %v, want ErrPermissionDenied", err)
	}
}
