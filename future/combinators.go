package future

import (
	"sync"

	"go.uber.org/atomic"
)

// sentinelIndex is returned by WhenAny when called with an empty input slice.
const sentinelIndex = -1

// WhenAll returns a future that resolves, once every input future has
// completed (value or exception — when_all never itself fails), to the slice
// of inputs in their original order. An empty slice resolves immediately.
// Cancel requested on the returned future is forwarded to every input (§4.4).
func WhenAll[T any](futures ...*Future[T]) *Future[[]*Future[T]] {
	if len(futures) == 0 {
		return MakeReadyFuture(futures)
	}

	result, promise := New[[]*Future[T]]()

	var remaining atomic.Int64

	remaining.Store(int64(len(futures)))

	promise.GetCancelationToken().PushCancelationCallback(func() {
		for _, f := range futures {
			f.RequestCancel()
		}
	})

	for _, f := range futures {
		f.OnResult(func(Try[T]) {
			if remaining.Dec() == 0 {
				promise.Success(futures)
			}
		})
	}

	return result
}

// WhenAnyResult is the payload WhenAny resolves with: which input settled
// first (sentinelIndex if the input was empty) and the full input slice.
type WhenAnyResult[T any] struct {
	Index   int
	Futures []*Future[T]
}

// WhenAnyOption configures auto-cancel behavior for WhenAny.
type WhenAnyOption int

const (
	// NoAutoCancel leaves every other input running after the first settles.
	NoAutoCancel WhenAnyOption = iota
	// AutoCancel requests cancelation on every other input as soon as the
	// first one resolves. Siblings may still be running after the returned
	// future resolves (§9 open question (a)) — WhenAny does not wait for them.
	AutoCancel
)

// WhenAny returns a future that resolves as soon as any input future
// completes, to the index of the first one and the full input slice. An empty
// slice resolves immediately with index sentinelIndex and an empty slice.
// Cancel requested on the returned future is forwarded to every input.
func WhenAny[T any](opt WhenAnyOption, futures ...*Future[T]) *Future[WhenAnyResult[T]] {
	if len(futures) == 0 {
		return MakeReadyFuture(WhenAnyResult[T]{Index: sentinelIndex})
	}

	result, promise := New[WhenAnyResult[T]]()

	var once sync.Once

	promise.GetCancelationToken().PushCancelationCallback(func() {
		for _, f := range futures {
			f.RequestCancel()
		}
	})

	for i, f := range futures {
		idx := i

		f.OnResult(func(Try[T]) {
			once.Do(func() {
				if opt == AutoCancel {
					for j, other := range futures {
						if j != idx {
							other.RequestCancel()
						}
					}
				}

				promise.Success(WhenAnyResult[T]{Index: idx, Futures: futures})
			})
		})
	}

	return result
}
