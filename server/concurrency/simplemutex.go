// Package concurrency is a collection of helpers for concurrent execution.
package concurrency

// SimpleMutex is a channel used for locking.
type SimpleMutex chan struct{}

// NewSimpleMutex creates and returns a new SimpleMutex object.
func NewSimpleMutex() SimpleMutex {
	return make(SimpleMutex, 1)
}

// Lock acquires a lock on the mutex.
func (s SimpleMutex) Lock() {
	s <- struct{}{}
}

// Unlock releases the mutex.
func (s SimpleMutex) Unlock() {
	<-s
}
