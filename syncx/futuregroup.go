package syncx

import (
	"sync"

	"github.com/TankerHQ/tconcurrent-go/errors"
	"github.com/TankerHQ/tconcurrent-go/future"
)

// FutureGroup tracks a set of in-flight futures so they can all be canceled
// together (§4.8). Once Terminate has been called, further Add calls are
// rejected with ErrFutureGroupTerminated.
type FutureGroup struct {
	mu          sync.Mutex
	members     []cancelable
	terminating bool
}

// cancelable is the minimal surface FutureGroup needs from a tracked member:
// any *future.Future[T] satisfies it.
type cancelable interface {
	RequestCancel()
}

// NewFutureGroup returns an empty group.
func NewFutureGroup() *FutureGroup {
	return &FutureGroup{}
}

// Add registers f for bulk cancelation. It returns ErrFutureGroupTerminated if
// Terminate has already been called.
func Add[T any](g *FutureGroup, f *future.Future[T]) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.terminating {
		return errors.ErrFutureGroupTerminated
	}

	g.members = append(g.members, f)

	return nil
}

// Terminate requests cancelation on every tracked member and rejects further
// Add calls. It does not wait for members to finish; callers that need that
// use TaskCanceler.Run, whose wrapped futures are awaited by Terminate.
func (g *FutureGroup) Terminate() {
	g.mu.Lock()
	g.terminating = true
	members := g.members
	g.members = nil
	g.mu.Unlock()

	for _, m := range members {
		m.RequestCancel()
	}
}

// TaskCanceler wraps FutureGroup with Run, the original's `wrap`: every
// future produced by Run is auto-registered, and Terminate returns a WhenAll
// future over all of them without blocking.
type TaskCanceler struct {
	group   *FutureGroup
	mu      sync.Mutex
	waiters []*future.Future[struct{}]
}

// NewTaskCanceler returns an empty task canceler.
func NewTaskCanceler() *TaskCanceler {
	return &TaskCanceler{group: NewFutureGroup()}
}

// Run wraps body's future so it is registered with the canceler's group and
// tracked for Terminate to wait on. It returns ErrFutureGroupTerminated
// (via the returned future's error, since Run's signature can't return an
// error alongside a future) if the canceler is already terminating.
func Run[T any](c *TaskCanceler, body func() *future.Future[T]) *future.Future[T] {
	c.mu.Lock()

	if c.group.terminating {
		c.mu.Unlock()

		return future.MakeExceptionalFuture[T](errors.ErrFutureGroupTerminated)
	}

	c.mu.Unlock()

	f := body()

	if err := Add(c.group, f); err != nil {
		return future.MakeExceptionalFuture[T](err)
	}

	done := future.ToVoid(f)

	c.mu.Lock()
	c.waiters = append(c.waiters, done)
	c.mu.Unlock()

	return f
}

// Terminate cancels every in-flight Run'd future and returns a future that
// resolves once they have all settled.
func (c *TaskCanceler) Terminate() *future.Future[[]*future.Future[struct{}]] {
	c.group.Terminate()

	c.mu.Lock()
	waiters := c.waiters
	c.waiters = nil
	c.mu.Unlock()

	return future.WhenAll(waiters...)
}

// Close implicitly terminates the canceler, the Go stand-in for the
// original's destructor-triggered terminate. Callers that want explicit
// termination without relying on this should call Terminate directly.
func (c *TaskCanceler) Close() {
	c.Terminate()
}
