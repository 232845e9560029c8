// Package future implements the engine's shared-state future/promise pair: a value or
// exception slot, a continuation list drained exactly once on completion, and a
// cancelation token threaded through every derived future.
package future

import (
	"context"
	"sync"
	"time"

	"github.com/TankerHQ/tconcurrent-go/cancel"
	"github.com/TankerHQ/tconcurrent-go/errors"
	"github.com/TankerHQ/tconcurrent-go/zero"
	"go.uber.org/atomic"
)

// callbackWithContext pairs a context-aware callback with the context it should run
// under, so invokeCallbackContext can derive a cancelable child context per callback.
type callbackWithContext[T any] struct {
	Context  context.Context
	Callback func(context.Context, T)
}

// Future is both the user-facing handle and the shared state it backs — the slot,
// the continuation list, and the cancelation token a whole derived chain shares.
// A Future is valid iff it was produced by one of this package's constructors (New,
// NewWithToken, MakeReadyFuture, ...); the zero value is not usable. Futures are reference types: copying a *Future is exactly the "shared
// future" of the original — readers never consume the value.
type Future[T any] struct {
	mu   sync.Mutex
	once sync.Once

	result      Try[T]
	resultReady chan struct{}

	successCallbacks    []func(T)
	errorCallbacks      []func(error)
	resultCallbacks     []func(Try[T])
	successCtxCallbacks []callbackWithContext[T]
	errorCtxCallbacks   []callbackWithContext[error]
	resultCtxCallbacks  []callbackWithContext[Try[T]]

	// token is retained directly by the future (not only by way of the promise),
	// so RequestCancel and GetCancelationToken keep working after completion — Go's
	// GC makes the original's "state drops its token to break a cycle" unnecessary.
	token *cancel.Token

	// promiseTickets counts outstanding promise/packaged-task references. Go has no
	// destructors, so instead of firing on the last ~promise(), Release must be
	// called explicitly by whoever holds a ticket. Package/PackageCancelable take no
	// ticket: their task always completes the promise itself.
	promiseTickets atomic.Int64

	chainName atomic.String
}

func newFuture[T any](token *cancel.Token) *Future[T] {
	return &Future[T]{
		resultReady: make(chan struct{}),
		token:       token,
	}
}

// New creates a fresh Future/Promise pair sharing a brand-new cancelation token.
func New[T any]() (*Future[T], *Promise[T]) {
	return NewWithToken[T](cancel.New())
}

// NewWithToken creates a fresh Future/Promise pair sharing the given cancelation
// token, the mechanism promise-from-future construction uses to propagate cancel
// upstream (see Promise.FromFuture).
func NewWithToken[T any](token *cancel.Token) (*Future[T], *Promise[T]) {
	f := newFuture[T](token)
	f.promiseTickets.Store(1)

	return f, &Promise[T]{future: f}
}

// MakeReadyFuture returns a Future already completed with value.
func MakeReadyFuture[T any](value T) *Future[T] {
	f := newFuture[T](cancel.New())
	f.result = Try[T]{Value: value}
	close(f.resultReady)

	return f
}

// MakeExceptionalFuture returns a Future already completed with err.
func MakeExceptionalFuture[T any](err error) *Future[T] {
	f := newFuture[T](cancel.New())
	f.result = Try[T]{Error: err}
	close(f.resultReady)

	return f
}

// IsValid reports whether f refers to a backing shared state. Futures produced by
// this package are always valid; the zero value of *Future is nil and therefore
// invalid.
func (f *Future[T]) IsValid() bool {
	return f != nil
}

// IsReady reports whether the slot has been written.
func (f *Future[T]) IsReady() bool {
	select {
	case <-f.resultReady:
		return true
	default:
		return false
	}
}

// HasValue reports whether the future is ready with a value (no error).
func (f *Future[T]) HasValue() bool {
	return f.IsReady() && f.result.Error == nil
}

// HasException reports whether the future is ready with an error.
func (f *Future[T]) HasException() bool {
	return f.IsReady() && f.result.Error != nil
}

// GetCancelationToken returns the token this future (and its whole derived chain)
// shares.
func (f *Future[T]) GetCancelationToken() *cancel.Token {
	return f.token
}

// RequestCancel delegates to the retained cancelation token. Idempotent, and
// harmless to call on an already-completed future.
func (f *Future[T]) RequestCancel() {
	f.token.RequestCancel()
}

// UpdateChainName sets a textual label used only for tracing (appended onto executor
// task names by Then/AndThen).
func (f *Future[T]) UpdateChainName(name string) *Future[T] {
	f.chainName.Store(name)

	return f
}

// GetChainName returns the label set by UpdateChainName, or "" if none was set.
func (f *Future[T]) GetChainName() string {
	return f.chainName.Load()
}

// Get blocks until the future is ready, then returns the value or the stored error.
// It respects ctx cancelation as an additional, independent way to stop waiting
// (ctx.Err() is returned in that case; the future itself is untouched).
func (f *Future[T]) Get(ctx context.Context) (T, error) {
	select {
	case <-f.resultReady:
		return f.result.Value, f.result.Error
	case <-ctx.Done():
		return zero.Value[T](), ctx.Err()
	}
}

// Wait blocks until the future is ready or ctx is done.
func (f *Future[T]) Wait(ctx context.Context) error {
	_, err := f.Get(ctx)
	if err != nil && !f.IsReady() {
		return err
	}

	return nil
}

// WaitFor blocks for at most d, returning true iff the future became ready in time.
func (f *Future[T]) WaitFor(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-f.resultReady:
		return true
	case <-timer.C:
		return false
	}
}

// ToShared returns a copyable handle over the same shared state. Since every *Future
// in this package is already a reference type with multi-reader semantics, ToShared
// is an identity operation kept for API parity with the original's shared_future.
func (f *Future[T]) ToShared() *Future[T] {
	return f
}

// breakPromise completes the slot with a broken-promise error if it is still
// empty. Must be called without holding f.mu.
func (f *Future[T]) breakPromise() {
	f.once.Do(func() {
		f.completeLocked(Try[T]{Error: errors.ErrBrokenPromise})
	})
}

// completeLocked performs the actual slot write, continuation drain, and callback
// dispatch. Callers must guard it with f.once so it only ever runs once.
func (f *Future[T]) completeLocked(result Try[T]) {
	f.mu.Lock()

	successCallbacks := f.successCallbacks
	errorCallbacks := f.errorCallbacks
	resultCallbacks := f.resultCallbacks
	successCtxCallbacks := f.successCtxCallbacks
	errorCtxCallbacks := f.errorCtxCallbacks
	resultCtxCallbacks := f.resultCtxCallbacks

	f.successCallbacks = nil
	f.errorCallbacks = nil
	f.resultCallbacks = nil
	f.successCtxCallbacks = nil
	f.errorCtxCallbacks = nil
	f.resultCtxCallbacks = nil

	f.result = result

	close(f.resultReady)

	f.mu.Unlock()

	invokeResultCallbacks(resultCallbacks, resultCtxCallbacks, result)

	if result.Error == nil {
		invokeSuccessCallbacks(successCallbacks, successCtxCallbacks, result.Value)
	} else {
		invokeErrorCallbacks(errorCallbacks, errorCtxCallbacks, result.Error)
	}
}

// OnSuccess registers cb to fire (in its own goroutine, with panic recovery) if and
// when the future completes with a value. A no-op if cb is nil. If the future is
// already complete, cb fires immediately (still in a fresh goroutine).
func (f *Future[T]) OnSuccess(cb func(T)) {
	if cb == nil {
		return
	}

	f.mu.Lock()

	select {
	case <-f.resultReady:
		f.mu.Unlock()

		if f.result.Error == nil {
			invokeCallback("OnSuccess", cb, f.result.Value)
		}

		return
	default:
	}

	f.successCallbacks = append(f.successCallbacks, cb)

	f.mu.Unlock()
}

// OnError registers cb to fire if and when the future completes with an error.
func (f *Future[T]) OnError(cb func(error)) {
	if cb == nil {
		return
	}

	f.mu.Lock()

	select {
	case <-f.resultReady:
		f.mu.Unlock()

		if f.result.Error != nil {
			invokeCallback("OnError", cb, f.result.Error)
		}

		return
	default:
	}

	f.errorCallbacks = append(f.errorCallbacks, cb)

	f.mu.Unlock()
}

// OnResult registers cb to fire with the terminal value-or-error once the future
// completes, regardless of outcome.
func (f *Future[T]) OnResult(cb func(Try[T])) {
	if cb == nil {
		return
	}

	f.mu.Lock()

	select {
	case <-f.resultReady:
		f.mu.Unlock()
		invokeCallback("OnResult", cb, f.result)

		return
	default:
	}

	f.resultCallbacks = append(f.resultCallbacks, cb)

	f.mu.Unlock()
}

// whenReady runs trampoline once the future is ready, immediately (synchronously) if
// it already is. It is the primitive Then/AndThen/Unwrap/combinators use to post
// continuations onto an executor without caring whether the parent was already
// complete at attach time. Only in the already-ready case does trampoline run on the
// caller's goroutine; otherwise it is queued as an OnResult callback and, like any
// such callback, runs on a fresh goroutine when the future completes.
func (f *Future[T]) whenReady(trampoline func()) {
	f.mu.Lock()

	select {
	case <-f.resultReady:
		f.mu.Unlock()
		trampoline()

		return
	default:
	}

	f.resultCallbacks = append(f.resultCallbacks, func(Try[T]) { trampoline() })

	f.mu.Unlock()
}
