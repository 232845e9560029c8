package future

import (
	"runtime/debug"

	"github.com/TankerHQ/tconcurrent-go/utils"
	"github.com/TankerHQ/tconcurrent-go/zero"
)

// callSafely invokes f, converting a panic into an error exactly like the
// original's packaged task wraps its user callable in a try/catch (§4.2,
// §7.4): "a task that throws and belongs to a future still causes that future
// to resolve with the exception".
func callSafely[T any](f func() (T, error)) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			if pe := utils.GetPanicRecoveryError(r, debug.Stack()); pe != nil {
				value, err = zero.Value[T](), pe
			}
		}
	}()

	return f()
}
