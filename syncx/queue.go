// Package syncx layers the engine's synchronization primitives (§4.8) on top
// of futures: a concurrent queue, a semaphore built on it, and a future
// group / task canceler for bulk cancelation.
package syncx

import (
	"sync"

	"github.com/TankerHQ/tconcurrent-go/future"
)

// ConcurrentQueue is a FIFO of T backed by a FIFO of waiting promises. At any
// moment at most one of the value queue and the waiter queue is non-empty —
// enforced as a literal invariant under one mutex (not approximated with
// channels alone, since a channel's buffer can't hand a value directly to a
// specific waiting Pop future the way a promise can).
type ConcurrentQueue[T any] struct {
	mu      sync.Mutex
	values  []T
	waiters []*future.Promise[T]
}

// NewConcurrentQueue returns an empty queue.
func NewConcurrentQueue[T any]() *ConcurrentQueue[T] {
	return &ConcurrentQueue[T]{}
}

// Push hands v directly to the oldest waiting Pop future if one exists;
// otherwise it enqueues v for a future Pop to claim.
func (q *ConcurrentQueue[T]) Push(v T) {
	q.mu.Lock()

	if len(q.waiters) > 0 {
		p := q.waiters[0]
		q.waiters = q.waiters[1:]
		q.mu.Unlock()

		p.Success(v)

		return
	}

	q.values = append(q.values, v)

	q.mu.Unlock()
}

// Pop returns a future for the next value: already ready if the queue is
// non-empty, or resolved by a later Push otherwise.
func (q *ConcurrentQueue[T]) Pop() *future.Future[T] {
	q.mu.Lock()

	if len(q.values) > 0 {
		v := q.values[0]
		q.values = q.values[1:]
		q.mu.Unlock()

		return future.MakeReadyFuture(v)
	}

	fut, promise := future.New[T]()
	q.waiters = append(q.waiters, promise)

	q.mu.Unlock()

	return fut
}

// Size returns the number of values currently queued (not counting pending
// waiters).
func (q *ConcurrentQueue[T]) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.values)
}

// Waiting returns the number of Pop calls currently waiting for a Push.
func (q *ConcurrentQueue[T]) Waiting() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.waiters)
}
