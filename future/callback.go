// Package future provides callback invocation utilities for Future callbacks.
package future

import (
	"context"
	"runtime/debug"

	"github.com/TankerHQ/tconcurrent-go/logger"
	"github.com/TankerHQ/tconcurrent-go/utils"
)

// invokeCallback invokes a callback in a separate goroutine with panic recovery and logging.
//
// This is the internal helper used by OnSuccess, OnError, and OnResult to safely invoke
// user-provided callbacks. It handles all the complexity of asynchronous callback execution:
//
// Safety guarantees:
//   - Nil callbacks are safely ignored without error
//   - Panics in callbacks are recovered and logged, preventing crashes
//   - Stack traces are captured for debugging panic sources
//   - Execution happens in a goroutine to avoid blocking the caller
//
// Parameters:
//   - kind: The callback type ("OnSuccess", "OnError", "OnResult") for logging
//   - callback: The user-provided callback function to invoke
//   - value: The value to pass to the callback
//
// Design notes:
//   - The goroutine ensures callbacks don't block promise fulfillment
//   - Panic recovery uses utils.GetPanicRecoveryError for consistent error formatting
//   - Logging uses the package logger for observability
//   - The kind parameter helps identify which callback type panicked
//
// This function is intentionally unexported - callers should use OnSuccess/OnError/OnResult.
func invokeCallback[T any](kind string, callback func(T), value T) {
	if callback == nil {
		return
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				if err := utils.GetPanicRecoveryError(r, debug.Stack()); err != nil {
					logger.Get().Error("panic encountered in future."+kind+" callback", "error", err)
				}
			}
		}()

		callback(value)
	}()
}

// invokeCallbackContext invokes a context-aware callback in a separate goroutine with panic recovery.
//
// This is the context-aware version of invokeCallback, used by OnSuccessContext, OnErrorContext,
// and OnResultContext to safely invoke user-provided callbacks that need a context parameter.
//
// Safety guarantees:
//   - Nil callbacks are safely ignored without error
//   - Nil contexts are replaced with context.Background() to prevent panics
//   - Creates a child context that is canceled when the callback completes (prevents leaks)
//   - Panics in callbacks are recovered and logged, preventing crashes
//   - Stack traces are captured for debugging panic sources
//   - Execution happens in a goroutine to avoid blocking the caller
//
// Parameters:
//   - ctx: The context to pass to the callback (nil is replaced with Background)
//   - kind: The callback type ("OnSuccessContext", "OnErrorContext", "OnResultContext") for logging
//   - callback: The user-provided callback function to invoke
//   - value: The value to pass to the callback
//
// Design notes:
//   - The child context (cctx) ensures the callback has a cancellable context
//   - The cancel is deferred to execute even if callback panics (cleanup guarantee)
//   - The goroutine ensures callbacks don't block promise fulfillment
//   - Panic recovery uses utils.GetPanicRecoveryError for consistent error formatting
//   - Logging uses the package logger with context for observability
//
// This function is intentionally unexported - callers should use OnSuccessContext/OnErrorContext/OnResultContext.
func invokeCallbackContext[T any](ctx context.Context, kind string, callback func(context.Context, T), value T) {
	if callback == nil {
		return
	}

	go func() {
		if ctx == nil {
			ctx = context.Background()
		}

		cctx, cancel := context.WithCancel(ctx)
		defer cancel()

		defer func() {
			if r := recover(); r != nil {
				if err := utils.GetPanicRecoveryError(r, debug.Stack()); err != nil {
					logger.Get(cctx).Error("panic encountered in future."+kind+" callback", "error", err)
				}
			}
		}()

		callback(cctx, value)
	}()
}

// invokeResultCallbacks dispatches the plain and context-aware OnResult callbacks
// collected at completion time.
func invokeResultCallbacks[T any](
	resultCallbacks []func(Try[T]),
	resultCtxCallbacks []callbackWithContext[Try[T]],
	result Try[T],
) {
	for _, cb := range resultCallbacks {
		invokeCallback("OnResult", cb, result)
	}

	for _, cwc := range resultCtxCallbacks {
		invokeCallbackContext(cwc.Context, "OnResultContext", cwc.Callback, result)
	}
}

// invokeSuccessCallbacks dispatches the plain and context-aware OnSuccess callbacks
// collected at completion time. Only called when the future completed without error.
func invokeSuccessCallbacks[T any](
	successCallbacks []func(T),
	successCtxCallbacks []callbackWithContext[T],
	value T,
) {
	for _, cb := range successCallbacks {
		invokeCallback("OnSuccess", cb, value)
	}

	for _, cwc := range successCtxCallbacks {
		invokeCallbackContext(cwc.Context, "OnSuccessContext", cwc.Callback, value)
	}
}

// invokeErrorCallbacks dispatches the plain and context-aware OnError callbacks
// collected at completion time. Only called when the future completed with an error.
func invokeErrorCallbacks(
	errorCallbacks []func(error),
	errorCtxCallbacks []callbackWithContext[error],
	err error,
) {
	for _, cb := range errorCallbacks {
		invokeCallback("OnError", cb, err)
	}

	for _, cwc := range errorCtxCallbacks {
		invokeCallbackContext(cwc.Context, "OnErrorContext", cwc.Callback, err)
	}
}
