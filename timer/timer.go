// Package timer implements async_wait (§4.5): a cancelable future that
// resolves after a delay, backed by a standard library timer rather than the
// io-reactor the original threads through its executor — Go's runtime timer
// wheel is the idiomatic equivalent extension point.
package timer

import (
	"time"

	"github.com/TankerHQ/tconcurrent-go/errors"
	"github.com/TankerHQ/tconcurrent-go/executor"
	"github.com/TankerHQ/tconcurrent-go/future"
	"go.uber.org/atomic"
)

// AsyncWait returns a future that resolves with a value after delay elapses
// on ex, or with ErrOperationCanceled if RequestCancel is called on it first.
// A fired-or-canceled latch (§4.5) guarantees exactly one of those two
// outcomes, regardless of the race between the timer firing and a concurrent
// cancel.
func AsyncWait(ex executor.Executor, delay time.Duration) *future.Future[struct{}] {
	fut, promise := future.New[struct{}]()
	token := promise.GetCancelationToken()

	var latch atomic.Bool

	t := time.AfterFunc(delay, func() {
		if latch.CompareAndSwap(false, true) {
			ex.Post(func() { promise.Success(struct{}{}) }, "async_wait")
		}
	})

	token.PushCancelationCallback(func() {
		if latch.CompareAndSwap(false, true) {
			t.Stop()
			ex.Post(func() { promise.Failure(errors.ErrOperationCanceled) }, "async_wait/cancel")
		}
	})

	return fut
}
