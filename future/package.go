package future

import (
	"context"

	"github.com/TankerHQ/tconcurrent-go/cancel"
	"github.com/TankerHQ/tconcurrent-go/executor"
)

// Package builds a packaged task around f: a zero-argument closure that, when
// invoked, runs f and writes its (value, error) into a fresh Future. It does
// not schedule anything; callers post the returned task onto an Executor
// themselves, or invoke it inline.
func Package[T any](f func() (T, error)) (task func(), fut *Future[T]) {
	fut, promise := New[T]()

	return func() {
		value, err := callSafely(f)
		promise.Complete(value, err)
	}, fut
}

// PackageCancelable is Package's cancelation-aware variant: f receives the new
// future's cancelation token, matching the original's "leading cancelation
// token detected by signature matching" (§4.2) — expressed in Go as a distinct
// overload rather than reflection over f's signature.
func PackageCancelable[T any](f func(*cancel.Token) (T, error)) (task func(), fut *Future[T]) {
	fut, promise := New[T]()
	token := promise.GetCancelationToken()

	return func() {
		value, err := callSafely(func() (T, error) { return f(token) })
		promise.Complete(value, err)
	}, fut
}

// Go runs f asynchronously on the process-wide background executor and
// returns a future for its result — the engine's `async(work)`.
func Go[T any](f func() (T, error)) *Future[T] {
	return GoOn[T](executor.Background(), f)
}

// GoOn runs f asynchronously on ex and returns a future for its result — the
// engine's `async(executor, work)`.
func GoOn[T any](ex executor.Executor, f func() (T, error)) *Future[T] {
	task, fut := Package(f)
	ex.Post(task, fut.GetChainName())

	return fut
}

// GoContext is Go's context-aware variant: f receives a context derived from
// ctx that is canceled when the returned future's cancelation is requested,
// so context-based callers can participate in the same cooperative cancel as
// cancel.Token-based ones.
func GoContext[T any](ctx context.Context, f func(context.Context) (T, error)) *Future[T] {
	return GoContextOn[T](executor.Background(), ctx, f)
}

// GoContextOn is GoContext's explicit-executor variant.
func GoContextOn[T any](ex executor.Executor, ctx context.Context, f func(context.Context) (T, error)) *Future[T] {
	task, fut := PackageCancelable(func(token *cancel.Token) (T, error) {
		cctx, cancelCtx := context.WithCancel(ctx)
		defer cancelCtx()

		scope := token.MakeScopeCanceler(cancelCtx)
		defer scope.Close()

		return f(cctx)
	})

	ex.Post(task, fut.GetChainName())

	return fut
}

// MakeReady is an alias kept for readers coming from the original's
// make_ready_future naming; it simply calls MakeReadyFuture.
func MakeReady[T any](value T) *Future[T] {
	return MakeReadyFuture(value)
}
