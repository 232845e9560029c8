package coroutine

import (
	"context"

	"github.com/TankerHQ/tconcurrent-go/errors"
	"github.com/TankerHQ/tconcurrent-go/future"
	"github.com/TankerHQ/tconcurrent-go/zero"
)

// Await suspends the calling coroutine until fut resolves, resuming it as a
// continuation posted onto c.Executor() (§4.6). If fut is already ready, the
// value is taken synchronously (the original's "early_return" fast path) —
// Yield disables this fast path to force an actual reschedule.
//
// On resume: if the awaited future was aborted out from under a requested
// cancel, or the token is cancel-requested, Await returns
// (zero, ErrOperationCanceled) instead of fut's value — callers must check
// the returned error and return early, exactly as with a canceled
// context.Context.
func Await[T any](c *Ctx, fut *future.Future[T]) (T, error) {
	return await(c, fut, true)
}

func await[T any](c *Ctx, fut *future.Future[T], earlyReturn bool) (T, error) {
	if earlyReturn && fut.IsReady() {
		return resumeResult(c, fut)
	}

	// resume is the suspension point's wakeup signal: both the cancel scope and
	// the future's own completion may fire it, but the coroutine only waits for
	// the first; wake never blocks, and a wake that finds the slot full is dropped.
	resume := make(chan struct{}, 1)

	wake := func() {
		select {
		case resume <- struct{}{}:
		default:
		}
	}

	scope := c.token.MakeScopeCanceler(func() {
		c.aborted.Store(true)
		fut.RequestCancel()
		wake()
	})

	fut.OnSuccess(func(T) {
		c.executor.Post(wake, c.name+"/resume")
	})
	fut.OnError(func(error) {
		c.executor.Post(wake, c.name+"/resume")
	})

	<-resume

	scope.Close()

	return resumeResult(c, fut)
}

// resumeResult implements the post-resume rule from §4.6: aborted takes
// precedence, then a cancel-requested token, then the future's own result.
func resumeResult[T any](c *Ctx, fut *future.Future[T]) (T, error) {
	if c.aborted.Load() {
		return zero.Value[T](), errors.ErrOperationCanceled
	}

	if c.token.IsCancelRequested() {
		return zero.Value[T](), errors.ErrOperationCanceled
	}

	return fut.Get(context.Background())
}

// Yield suspends and immediately reschedules the coroutine via c.Executor(),
// without taking the early-return fast path — forcing a reschedule even
// though the awaited future (a fresh ready one) is already complete. It is
// itself a cancelation point.
func Yield(c *Ctx) error {
	_, err := await(c, future.MakeReadyFuture(struct{}{}), false)

	return err
}
