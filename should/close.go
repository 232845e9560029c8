// Package should provides cleanup helpers for operations that should succeed
// but may fail in practice — close calls that return an error the caller has
// no useful recovery path for, so the failure is logged instead of
// propagated.
package should

import (
	"fmt"
	"io"

	"github.com/TankerHQ/tconcurrent-go/logger"
)

// Close calls closer.Close and logs the error if it fails, annotated with
// "stage" so executor.Shutdown's log line identifies which teardown step
// failed without the caller having to thread an error value anywhere.
//
// The args parameter is optional and can be used in three ways:
//   - No args: uses a default error message
//   - One arg: treated as the error message
//   - Multiple args: first arg is a format string, remaining args are formatting values
func Close(closer io.Closer, args ...any) {
	err := closer.Close()
	if err == nil {
		return
	}

	msg := argsToMessage(args)
	if msg == "" {
		msg = "error closing io.Closer"
	}

	logger.Get().Error(msg, "error", logger.AnnotateError(err, "stage", "shutdown"))
}

// argsToMessage converts variadic args into a formatted message string.
// Returns empty string if no args, Sprint if one arg, or Sprintf if multiple args.
func argsToMessage(args []any) string {
	if len(args) == 0 {
		return ""
	}

	if len(args) == 1 {
		return fmt.Sprint(args[0])
	}

	fmtStr := fmt.Sprint(args[0])
	remaining := args[1:]

	return fmt.Sprintf(fmtStr, remaining...)
}
