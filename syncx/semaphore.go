package syncx

import (
	"context"

	"github.com/TankerHQ/tconcurrent-go/future"
)

// Semaphore is a counting semaphore built directly on ConcurrentQueue: N
// permits are pushed at construction, Acquire pops one, Release pushes one
// back (§4.8).
type Semaphore struct {
	tokens *ConcurrentQueue[struct{}]
}

// NewSemaphore returns a semaphore initialized with n permits.
func NewSemaphore(n int) *Semaphore {
	s := &Semaphore{tokens: NewConcurrentQueue[struct{}]()}

	for range n {
		s.tokens.Push(struct{}{})
	}

	return s
}

// Acquire returns a future that resolves once a permit is available.
func (s *Semaphore) Acquire() *future.Future[struct{}] {
	return s.tokens.Pop()
}

// Release returns one permit to the semaphore.
func (s *Semaphore) Release() {
	s.tokens.Push(struct{}{})
}

// Count returns the number of permits currently available (not counting
// pending Acquire calls).
func (s *Semaphore) Count() int {
	return s.tokens.Size()
}

// ScopeLock is the RAII-style guard around Acquire/Release: callers must
// defer Close().
type ScopeLock struct {
	sem *Semaphore
}

// Lock acquires a permit synchronously (blocking the caller) and returns a
// guard whose Close releases it.
func (s *Semaphore) Lock() *ScopeLock {
	s.Acquire().Get(context.Background())

	return &ScopeLock{sem: s}
}

// Close releases the permit this guard holds.
func (l *ScopeLock) Close() {
	l.sem.Release()
}
