package future

import (
	"github.com/TankerHQ/tconcurrent-go/cancel"
	"github.com/TankerHQ/tconcurrent-go/zero"
)

// Promise is the write-only side of a future: the producer that completes it with a
// value, an error, or lets it break by releasing every outstanding ticket without
// ever completing it.
//
// A Promise can be copied freely (it is a thin reference to its future); copies
// share tickets rather than adding them. Each ticket (the one New hands out plus one
// per Acquire) is released once, since broken-promise detection counts outstanding
// tickets rather than relying on a destructor.
type Promise[T any] struct {
	future *Future[T]
}

// GetFuture returns the future this promise will complete.
func (p *Promise[T]) GetFuture() *Future[T] {
	return p.future
}

// GetCancelationToken returns the cancelation token shared with the future.
func (p *Promise[T]) GetCancelationToken() *cancel.Token {
	return p.future.token
}

// IsCancelled reports whether cancelation has been requested on the shared token.
func (p *Promise[T]) IsCancelled() bool {
	return p.future.token.IsCancelRequested()
}

// FromFuture builds a new Promise/Future pair whose cancelation token is shared with
// parent. This is how a continuation's promise propagates a RequestCancel back up to
// the future it was derived from.
func FromFuture[T, U any](parent *Future[U]) (*Future[T], *Promise[T]) {
	return NewWithToken[T](parent.token)
}

// Acquire increments the promise's outstanding-ticket count and returns a ticket
// whose Release must be deferred by the new holder, so that holder keeps the future
// from breaking independently of the original Promise value.
func (p *Promise[T]) Acquire() *Promise[T] {
	p.future.promiseTickets.Add(1)

	return p
}

// Release drops one outstanding ticket. When the last ticket is released and the
// future is still unset, the future breaks with errors.ErrBrokenPromise — the Go
// stand-in for the original's "promise destroyed before being fulfilled".
func (p *Promise[T]) Release() {
	if p.future.promiseTickets.Add(-1) == 0 {
		p.future.breakPromise()
	}
}

// fulfill is the single completion path shared with breakPromise; f.once guarantees
// exactly one of them ever runs the actual slot write.
func (p *Promise[T]) fulfill(result Try[T]) {
	p.future.once.Do(func() {
		p.future.completeLocked(result)
	})
}

// Success fulfills the promise with a value.
func (p *Promise[T]) Success(value T) {
	p.fulfill(Try[T]{Value: value})
}

// Failure fulfills the promise with an error.
func (p *Promise[T]) Failure(err error) {
	p.fulfill(Try[T]{Value: zero.Value[T](), Error: err})
}

// Complete fulfills the promise from a (value, error) pair, Go's usual return shape.
func (p *Promise[T]) Complete(value T, err error) {
	if err != nil {
		p.Failure(err)

		return
	}

	p.Success(value)
}
