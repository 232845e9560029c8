package utils //nolint:revive // utils is an appropriate package name for utility functions

import (
	"fmt"

	"github.com/TankerHQ/tconcurrent-go/errors"
	"github.com/TankerHQ/tconcurrent-go/logger"
)

// GetPanicRecoveryError converts a value recovered from a panic inside a
// library-managed goroutine (a packaged task, a continuation, a coroutine
// body, a timer callback) into an error wrapping errors.ErrPanicRecovery. It
// returns nil for a nil recover value, so callers can write
// "if err := GetPanicRecoveryError(recover(), debug.Stack()); err != nil".
//
// When stack is non-nil it is attached via logger.AnnotateError under the
// "stack" key rather than folded into the error's message string, so a
// caller that logs the error through this repo's slog handlers gets the
// trace as a separate structured attribute instead of a multi-line message.
func GetPanicRecoveryError(recovered any, stack []byte) error {
	if recovered == nil {
		return nil
	}

	var wrapped error

	if recoveredErr, ok := recovered.(error); ok {
		wrapped = fmt.Errorf("%w: %w", errors.ErrPanicRecovery, recoveredErr)
	} else {
		wrapped = fmt.Errorf("%w: %v", errors.ErrPanicRecovery, recovered)
	}

	if stack != nil {
		wrapped = logger.AnnotateError(wrapped, "stack", string(stack))
	}

	return wrapped
}
