package main

import (
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"

	"github.com/abunechat/chat/server/store"
	"github.com/abunechat/chat/server/store/mock_store"
	"github.com/abunechat/chat/server/store/types"
)

func TestGetOrCreateFirstContact(t *testing.T) {
	ctrl := gomock.NewController(t)
	cc := mock_store.NewMockConversationsPersistenceInterface(ctrl)
	store.Conversations = cc
	defer func() {
		store.Conversations = nil
		ctrl.Finish()
	}()

	abune, member := types.Uid(10), types.Uid(21)
	cc.EXPECT().Get(abune, member).Return(nil, types.ErrNotFound)
	cc.EXPECT().Create(gomock.Any()).DoAndReturn(func(conv *types.Conversation) error {
		conv.SetUid(types.Uid(500))
		return nil
	})

	ca := NewConversationAggregator()
	conv, err := ca.getOrCreate(abune, member)
	if err != nil {
		t.Fatal("getOrCreate:", err)
	}
	if conv.Abune != abune || conv.User != member || !conv.Active {
		t.Errorf("created conversation %+v, want active pair (%s, %s)",
			conv, abune.String(), member.String())
	}
}

func TestGetOrCreateLosesInsertRace(t *testing.T) {
	ctrl := gomock.NewController(t)
	cc := mock_store.NewMockConversationsPersistenceInterface(ctrl)
	store.Conversations = cc
	defer func() {
		store.Conversations = nil
		ctrl.Finish()
	}()

	abune, member := types.Uid(10), types.Uid(21)
	winner := &types.Conversation{Abune: abune, User: member, Active: true}
	winner.SetUid(types.Uid(500))

	// Another server instance inserts the pair between the read and the write.
	first := cc.EXPECT().Get(abune, member).Return(nil, types.ErrNotFound)
	cc.EXPECT().Create(gomock.Any()).Return(types.ErrDuplicate)
	cc.EXPECT().Get(abune, member).Return(winner, nil).After(first)

	ca := NewConversationAggregator()
	conv, err := ca.getOrCreate(abune, member)
	if err != nil {
		t.Fatal("getOrCreate:", err)
	}
	if conv.Uid() != winner.Uid() {
		t.Errorf("got conversation %s, want the winner's record %s",
			conv.Uid().String(), winner.Uid().String())
	}
}

// fakeConvoStore is a minimal in-memory ConversationsPersistenceInterface used
// to exercise concurrent get-or-create against real duplicate-key semantics.
type fakeConvoStore struct {
	sync.Mutex
	byPair  map[string]*types.Conversation
	creates int
	nextId  uint64
}

func newFakeConvoStore() *fakeConvoStore {
	return &fakeConvoStore{byPair: map[string]*types.Conversation{}, nextId: 1000}
}

func (f *fakeConvoStore) Create(conv *types.Conversation) error {
	f.Lock()
	defer f.Unlock()
	key := conv.Abune.String() + ":" + conv.User.String()
	f.creates++
	if _, dup := f.byPair[key]; dup {
		return types.ErrDuplicate
	}
	f.nextId++
	conv.SetUid(types.Uid(f.nextId))
	f.byPair[key] = conv
	return nil
}

func (f *fakeConvoStore) Get(abune, user types.Uid) (*types.Conversation, error) {
	f.Lock()
	defer f.Unlock()
	if conv, ok := f.byPair[abune.String()+":"+user.String()]; ok {
		return conv, nil
	}
	return nil, types.ErrNotFound
}

func (f *fakeConvoStore) GetById(convId types.Uid) (*types.Conversation, error) {
	f.Lock()
	defer f.Unlock()
	for _, conv := range f.byPair {
		if conv.Uid() == convId {
			return conv, nil
		}
	}
	return nil, types.ErrNotFound
}

func (f *fakeConvoStore) UpdateOnMessage(convId types.Uid, at time.Time, summary string) error {
	return nil
}

func (f *fakeConvoStore) MarkRead(convId types.Uid) error {
	f.Lock()
	defer f.Unlock()
	for _, conv := range f.byPair {
		if conv.Uid() == convId {
			conv.UnreadCount = 0
			return nil
		}
	}
	return types.ErrNotFound
}

func (f *fakeConvoStore) GetForUser(userId, community types.Uid) ([]types.Conversation, error) {
	return nil, nil
}

func (f *fakeConvoStore) UnreadCounts(userId, community types.Uid) (*types.UnreadCounts, error) {
	return &types.UnreadCounts{}, nil
}

func TestGetOrCreateConcurrentConvergence(t *testing.T) {
	fake := newFakeConvoStore()
	store.Conversations = fake
	defer func() { store.Conversations = nil }()

	ca := NewConversationAggregator()
	abune, member := types.Uid(10), types.Uid(21)

	const callers = 16
	ids := make([]types.Uid, callers)
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(n int) {
			defer wg.Done()
			conv, err := ca.getOrCreate(abune, member)
			if err != nil {
				t.Error("getOrCreate:", err)
				return
			}
			ids[n] = conv.Uid()
		}(i)
	}
	wg.Wait()

	for i := 1; i < callers; i++ {
		if ids[i] != ids[0] {
			t.Fatalf("caller %d got conversation %s, caller 0 got %s; all must converge",
				i, ids[i].String(), ids[0].String())
		}
	}
	if fake.creates != 1 {
		t.Errorf("storage saw %d insert attempts, want 1 under the pair lock", fake.creates)
	}
}

func TestMarkConversationReadPartyCheck(t *testing.T) {
	ctrl := gomock.NewController(t)
	cc := mock_store.NewMockConversationsPersistenceInterface(ctrl)
	store.Conversations = cc
	defer func() {
		store.Conversations = nil
		ctrl.Finish()
	}()

	conv := &types.Conversation{Abune: types.Uid(10), User: types.Uid(21), UnreadCount: 3}
	conv.SetUid(types.Uid(500))
	cc.EXPECT().GetById(conv.Uid()).Return(conv, nil)

	ca := NewConversationAggregator()
	if _, err := ca.markConversationRead(conv.Uid(), types.Uid(99)); err != types.ErrPermissionDenied {
		t.Errorf("outsider reset: err = %v, want ErrPermissionDenied", err)
	}
}

func TestMarkConversationReadIdempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	cc := mock_store.NewMockConversationsPersistenceInterface(ctrl)
	store.Conversations = cc
	defer func() {
		store.Conversations = nil
		ctrl.Finish()
	}()

	conv := &types.Conversation{Abune: types.Uid(10), User: types.Uid(21), UnreadCount: 2}
	conv.SetUid(types.Uid(500))

	// First reset writes through, second is satisfied without a write.
	cc.EXPECT().GetById(conv.Uid()).Return(conv, nil).Times(2)
	cc.EXPECT().MarkRead(conv.Uid()).Return(nil)

	ca := NewConversationAggregator()
	got, err := ca.markConversationRead(conv.Uid(), types.Uid(21))
	if err != nil || got.UnreadCount != 0 {
		t.Fatalf("first reset: err=%v unread=%d, want nil/0", err, got.UnreadCount)
	}
	if _, err = ca.markConversationRead(conv.Uid(), types.Uid(21)); err != nil {
		t.Errorf("repeat reset: err = %v, want successful no-op", err)
	}
}
