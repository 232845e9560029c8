// Package coroutine implements the engine's stackful coroutine runtime (§4.6):
// AsyncResumable schedules a body function that can suspend at Await/Yield
// points, cooperatively cancelable at each one.
//
// Go goroutines are already a stackful, growable-stack coroutine
// implementation scheduled by the runtime — the idiomatic translation of
// "allocate a fiber stack and switch contexts" is simply "run the body on its
// own goroutine and block it on a channel at each suspension point" (see §9
// "Coroutine implementation choices"). There is no fiber-stack allocation,
// thread-local fiber-context swap, or exception-based unwind to reimplement:
// a canceled Await returns (zero, ErrOperationCanceled) the same way a
// canceled context.Context does, and the body is expected to return early on
// that error exactly as Go code is expected to check ctx.Err().
package coroutine

import (
	"context"
	"runtime/debug"
	"sync"

	"github.com/TankerHQ/tconcurrent-go/cancel"
	"github.com/TankerHQ/tconcurrent-go/executor"
	"github.com/TankerHQ/tconcurrent-go/future"
	"github.com/TankerHQ/tconcurrent-go/utils"
	"github.com/TankerHQ/tconcurrent-go/zero"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/atomic"
)

// Ctx is the coroutine control block (§3): the body's handle for Await/Yield,
// carrying the executor continuations are posted back onto, the shared
// cancelation token, and the trace name.
type Ctx struct {
	name     string
	executor executor.Executor
	token    *cancel.Token
	aborted  atomic.Bool

	previous *Ctx // the coroutine that was current on this goroutine before this one, if any (nesting)
}

// Name returns the coroutine's trace label.
func (c *Ctx) Name() string { return c.name }

// Executor returns the executor this coroutine resumes continuations on.
func (c *Ctx) Executor() executor.Executor { return c.executor }

// Token returns the coroutine's cancelation token.
func (c *Ctx) Token() *cancel.Token { return c.token }

//nolint:gochecknoglobals // goroutine-id-keyed, mirrors the thread-local "current coroutine" pointer of §3
var currentByGoroutine sync.Map

// Current returns the Ctx of the coroutine running on the calling goroutine,
// or nil if the caller is not running inside an AsyncResumable body.
func Current() *Ctx {
	ctx, _ := loadCtx(currentGoroutineID())

	return ctx
}

func loadCtx(id uint64) (*Ctx, bool) {
	v, ok := currentByGoroutine.Load(id)
	if !ok {
		return nil, false
	}

	ctx, ok := v.(*Ctx)

	return ctx, ok
}

// AsyncResumable runs body on its own goroutine, returning a future resolved
// from its (value, error) return. The body receives a *Ctx to Await other
// futures and Yield. name is a tracing label; an empty name gets a generated
// one, matching the original's anonymous coroutine naming fed into the
// executor's task-trace handler.
func AsyncResumable[T any](name string, ex executor.Executor, body func(*Ctx) (T, error)) *future.Future[T] {
	if name == "" {
		name = "coroutine-" + uuid.NewString()
	}

	fut, promise := future.New[T]()

	c := &Ctx{name: name, executor: ex, token: promise.GetCancelationToken()}

	ex.Post(func() {
		go runFiber(c, promise, body)
	}, name)

	return fut
}

func runFiber[T any](c *Ctx, promise *future.Promise[T], body func(*Ctx) (T, error)) {
	id := currentGoroutineID()
	c.previous, _ = loadCtx(id)
	currentByGoroutine.Store(id, c)

	defer func() {
		if c.previous != nil {
			currentByGoroutine.Store(id, c.previous)
		} else {
			currentByGoroutine.Delete(id)
		}
	}()

	_, span := otel.Tracer("tconcurrent-go/coroutine").Start(context.Background(), c.name)
	defer span.End()

	value, err := callBodySafely(c, body)

	promise.Complete(value, err)
}

// callBodySafely recovers a panic escaping body into an error, exactly like a
// packaged task (§4.2, §7.4): the coroutine's future resolves with the
// exception rather than crashing the fiber goroutine.
func callBodySafely[T any](c *Ctx, body func(*Ctx) (T, error)) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			if pe := utils.GetPanicRecoveryError(r, debug.Stack()); pe != nil {
				value, err = zero.Value[T](), pe
			}
		}
	}()

	return body(c)
}
