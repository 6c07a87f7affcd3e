// Package admission implements the connection semaphore that bounds how
// many clients the proxy serves concurrently.
package admission

import (
	"context"
	"sync/atomic"
)

// Semaphore caps concurrent admissions at a fixed size.
type Semaphore struct {
	tokens chan struct{}
}

// New returns a Semaphore that admits at most size concurrent holders.
func New(size int) *Semaphore {
	return &Semaphore{tokens: make(chan struct{}, size)}
}

// Permit is held for the lifetime of one admitted connection and released
// exactly once when the session ends.
type Permit struct {
	sem      *Semaphore
	released atomic.Bool
}

// Acquire blocks until a slot is free or ctx is done.
func (s *Semaphore) Acquire(ctx context.Context) (*Permit, error) {
	select {
	case s.tokens <- struct{}{}:
		return &Permit{sem: s}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// TryAcquire acquires a slot without blocking, returning ok=false if the
// semaphore is full.
func (s *Semaphore) TryAcquire() (*Permit, bool) {
	select {
	case s.tokens <- struct{}{}:
		return &Permit{sem: s}, true
	default:
		return nil, false
	}
}

// Release frees the slot. A second call on the same Permit panics rather
// than silently freeing a slot some other connection still holds.
func (p *Permit) Release() {
	if p == nil {
		return
	}
	if !p.released.CompareAndSwap(false, true) {
		panic("admission: permit released more than once")
	}
	<-p.sem.tokens
}
