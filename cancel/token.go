// Package cancel provides a cooperative, hierarchical cancelation signal: a flag plus
// a LIFO stack of cancel callbacks, with at most one callback "armed" (the current
// top of the stack) at any moment.
package cancel

import "sync"

// Token is a reference-shared cancelation signal. The zero value is not usable;
// construct one with New.
type Token struct {
	mu        sync.Mutex
	canceled  bool
	callbacks []func()
}

// New returns a fresh, not-yet-canceled token.
func New() *Token {
	return &Token{}
}

// IsCancelRequested reports whether RequestCancel has been called on this token.
func (t *Token) IsCancelRequested() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.canceled
}

// RequestCancel idempotently marks the token canceled. If a callback is currently
// armed (the stack is non-empty), it is invoked exactly once, outside the lock.
// Calling RequestCancel again is a no-op.
func (t *Token) RequestCancel() {
	t.mu.Lock()

	if t.canceled {
		t.mu.Unlock()

		return
	}

	t.canceled = true

	var top func()
	if n := len(t.callbacks); n > 0 {
		top = t.callbacks[n-1]
	}

	t.mu.Unlock()

	if top != nil {
		top()
	}
}

// PushCancelationCallback pushes cb onto the token's cancel-callback stack, making it
// the newly armed callback. If the token is already canceled, cb fires synchronously,
// before this call returns.
func (t *Token) PushCancelationCallback(cb func()) {
	t.mu.Lock()

	t.callbacks = append(t.callbacks, cb)
	canceled := t.canceled

	t.mu.Unlock()

	if canceled {
		cb()
	}
}

// pushLastCancelationCallback installs cb at the bottom of the stack rather than the
// top. It only arms (fires) once every other callback has been popped — the
// stack-bottom sentinel used by future.Unwrap to forward cancel from an outer future
// to an inner one once no scoped canceler is in the way.
func (t *Token) pushLastCancelationCallback(cb func()) {
	t.mu.Lock()

	t.callbacks = append([]func(){cb}, t.callbacks...)
	fire := t.canceled && len(t.callbacks) == 1

	t.mu.Unlock()

	if fire {
		cb()
	}
}

// PopCancelationCallback removes the top of the cancel-callback stack. If the token is
// already canceled and popping exposes a new top, that new top fires synchronously.
func (t *Token) PopCancelationCallback() {
	t.mu.Lock()

	n := len(t.callbacks)
	if n == 0 {
		t.mu.Unlock()

		return
	}

	t.callbacks = t.callbacks[:n-1]

	var newTop func()

	if t.canceled && len(t.callbacks) > 0 {
		newTop = t.callbacks[len(t.callbacks)-1]
	}

	t.mu.Unlock()

	if newTop != nil {
		newTop()
	}
}

// popLastCancelationCallback removes the bottom-of-stack sentinel installed by
// pushLastCancelationCallback. Unlike PopCancelationCallback it never needs to fire a
// new top: the sentinel only ever armed when it was alone on the stack, and removing
// it from the bottom cannot expose a new top to arm.
func (t *Token) popLastCancelationCallback() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.callbacks) == 0 {
		return
	}

	t.callbacks = t.callbacks[1:]
}

// MakeScopeCanceler pushes cb and returns a handle that pops it on Close. This is the
// Go stand-in for the original's RAII scoped canceler: push on construction, pop on
// destruction. Callers must defer Close().
func (t *Token) MakeScopeCanceler(cb func()) *ScopeCanceler {
	t.PushCancelationCallback(cb)

	return &ScopeCanceler{token: t}
}

// MakeLastScopeCanceler is the stack-bottom counterpart of MakeScopeCanceler, used
// internally by future.Unwrap.
func (t *Token) MakeLastScopeCanceler(cb func()) *ScopeCanceler {
	t.pushLastCancelationCallback(cb)

	return &ScopeCanceler{token: t, last: true}
}
