package future

import (
	"github.com/TankerHQ/tconcurrent-go/errors"
	"github.com/TankerHQ/tconcurrent-go/executor"
)

// chainName composes a child continuation's trace label from its parent's,
// per §4.2 "update_chain_name... appended onto the executor task name".
func chainName(parent string, suffix string) string {
	if parent == "" {
		return suffix
	}

	return parent + "/" + suffix
}

// Then attaches cb to run, on ex, once f is ready — regardless of whether f
// completed with a value or an error. cb receives the completed parent future
// and returns the new future's (value, error). The new future shares f's
// cancelation token: cancel requested downstream reaches f's in-flight
// operation (§4.2 step 1: "sharing the same cancelation token as the parent").
func Then[T, R any](f *Future[T], ex executor.Executor, cb func(*Future[T]) (R, error)) *Future[R] {
	nf, promise := FromFuture[R](f)
	name := chainName(f.GetChainName(), "then")

	f.whenReady(func() {
		ex.Post(func() {
			value, err := callSafely(func() (R, error) { return cb(f) })
			promise.Complete(value, err)
		}, name)
	})

	return nf
}

// AndThen attaches cb to run, on ex, only if f completes with a value and the
// shared cancelation token is not (yet) canceled. Per §4.2: an upstream
// exception propagates untouched; a canceled token turns a ready value into
// ErrOperationCanceled; otherwise cb runs.
func AndThen[T, R any](f *Future[T], ex executor.Executor, cb func(T) (R, error)) *Future[R] {
	nf, promise := FromFuture[R](f)
	name := chainName(f.GetChainName(), "and_then")

	f.whenReady(func() {
		ex.Post(func() {
			result := f.snapshot()

			if result.Error != nil {
				var zero R

				promise.Complete(zero, result.Error)

				return
			}

			if f.token.IsCancelRequested() {
				var zero R

				promise.Complete(zero, errors.ErrOperationCanceled)

				return
			}

			value, err := callSafely(func() (R, error) { return cb(result.Value) })
			promise.Complete(value, err)
		}, name)
	})

	return nf
}

// snapshot returns the completed result. Callers must only call this once
// IsReady() is known to be true (Then/AndThen only call it from inside a
// whenReady trampoline).
func (f *Future[T]) snapshot() Try[T] {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.result
}

// ToVoid discards f's value, keeping only completion and cancel propagation —
// equivalent to `.and_then(sync, func(T){})`.
func ToVoid[T any](f *Future[T]) *Future[struct{}] {
	return AndThen(f, executor.Sync(), func(T) (struct{}, error) {
		return struct{}{}, nil
	})
}

// BreakCancelationChain returns a future tied to a brand-new cancelation
// token, decoupled from f's: cancel requested downstream no longer reaches f,
// and f's cancelation no longer appears canceled to the returned future's
// continuations (§4.2).
func BreakCancelationChain[T any](f *Future[T]) *Future[T] {
	nf, promise := New[T]()

	f.whenReady(func() {
		executor.Sync().Post(func() {
			result := f.snapshot()
			promise.Complete(result.Value, result.Error)
		}, chainName(f.GetChainName(), "break_cancelation_chain"))
	})

	return nf
}
