package concurrency

import "sync"

// KeyLock provides mutual exclusion scoped to an arbitrary string key.
// Unrelated keys never contend with each other; two callers locking the same
// key are serialized. Used to make conversation get-or-create atomic per
// (abune, user) pair without a global lock.
type KeyLock struct {
	lock  sync.Mutex
	locks map[string]SimpleMutex
	// Number of goroutines holding or waiting on each key's mutex.
	// An entry is removed when the count drops to zero.
	refs map[string]int
}

// NewKeyLock creates a new KeyLock.
func NewKeyLock() *KeyLock {
	return &KeyLock{
		locks: make(map[string]SimpleMutex),
		refs:  make(map[string]int),
	}
}

// Lock acquires the mutex for the given key, creating it if needed.
func (kl *KeyLock) Lock(key string) {
	kl.lock.Lock()
	mtx, ok := kl.locks[key]
	if !ok {
		mtx = NewSimpleMutex()
		kl.locks[key] = mtx
	}
	kl.refs[key]++
	kl.lock.Unlock()

	mtx.Lock()
}

// Unlock releases the mutex for the given key and discards it once no one
// else is waiting.
func (kl *KeyLock) Unlock(key string) {
	kl.lock.Lock()
	mtx, ok := kl.locks[key]
	if !ok {
		kl.lock.Unlock()
		panic("concurrency: Unlock of unlocked key " + key)
	}
	kl.refs[key]--
	if kl.refs[key] == 0 {
		delete(kl.locks, key)
		delete(kl.refs, key)
	}
	kl.lock.Unlock()

	mtx.Unlock()
}
