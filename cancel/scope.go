package cancel

import "go.uber.org/atomic"

// ScopeCanceler is a move-only-in-spirit handle around a pushed cancel callback. It
// stands in for the original's RAII scoped canceler, since Go has no destructors:
// callers must defer Close() to guarantee the callback is popped when the scope ends.
type ScopeCanceler struct {
	token  *Token
	last   bool
	closed atomic.Bool
}

// Close pops the associated cancel callback. Idempotent: only the first call has any
// effect, matching the at-most-once semantics a destructor would give in the original.
func (s *ScopeCanceler) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}

	if s.last {
		s.token.popLastCancelationCallback()

		return
	}

	s.token.PopCancelationCallback()
}
