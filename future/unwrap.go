package future

import (
	"github.com/TankerHQ/tconcurrent-go/errors"
	"github.com/TankerHQ/tconcurrent-go/executor"
	"github.com/TankerHQ/tconcurrent-go/zero"
)

// Unwrap flattens a future of a future into a single future of the inner
// value (§4.2). The returned future shares its cancelation token with outer
// (not a fresh one), so a RequestCancel issued on the result is visible on
// outer's token immediately, before either level has completed. Unwrap
// attaches a synchronous continuation to the outer future that, on success,
// chains a synchronous continuation onto the inner future; either level's
// exception propagates untouched. If the outer and inner futures don't
// already share a cancelation token, a "last" (stack-bottom) canceler is
// installed on the outer token so cancel requested on the outer future
// reaches the inner one, but only once no more specific scoped canceler is
// armed.
func Unwrap[T any](outer *Future[*Future[T]]) *Future[T] {
	result, promise := NewWithToken[T](outer.token)

	outer.whenReady(func() {
		executor.Sync().Post(func() {
			outerResult := outer.snapshot()
			if outerResult.Error != nil {
				promise.Complete(zero.Value[T](), outerResult.Error)

				return
			}

			inner := outerResult.Value
			if inner == nil || !inner.IsValid() {
				promise.Complete(zero.Value[T](), errors.ErrFutureNotValid)

				return
			}

			if inner.token != outer.token {
				scope := outer.token.MakeLastScopeCanceler(inner.RequestCancel)
				inner.whenReady(func() { scope.Close() })
			}

			inner.whenReady(func() {
				executor.Sync().Post(func() {
					innerResult := inner.snapshot()
					promise.Complete(innerResult.Value, innerResult.Error)
				}, "unwrap/inner")
			})
		}, "unwrap/outer")
	})

	return result
}
