package utils //nolint:revive // utils is an appropriate package name for utility functions

import (
	"bytes"
	"errors"
	"testing"

	ampErrors "github.com/TankerHQ/tconcurrent-go/errors"
	"github.com/TankerHQ/tconcurrent-go/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPanicRecoveryError(t *testing.T) {
	t.Parallel()

	t.Run("returns nil for nil panic value", func(t *testing.T) {
		t.Parallel()

		err := GetPanicRecoveryError(nil, nil)
		assert.NoError(t, err)
	})

	t.Run("wraps error panic value", func(t *testing.T) {
		t.Parallel()

		originalErr := errors.New("test error") //nolint:err113
		err := GetPanicRecoveryError(originalErr, nil)
		require.Error(t, err)
		require.ErrorIs(t, err, ampErrors.ErrPanicRecovery)
		require.ErrorIs(t, err, originalErr)
		assert.Contains(t, err.Error(), "test error")
	})

	t.Run("formats string panic value", func(t *testing.T) {
		t.Parallel()

		err := GetPanicRecoveryError("panic message", nil)
		require.Error(t, err)
		require.ErrorIs(t, err, ampErrors.ErrPanicRecovery)
		assert.Contains(t, err.Error(), "panic message")
	})

	t.Run("handles integer panic value", func(t *testing.T) {
		t.Parallel()

		err := GetPanicRecoveryError(42, nil)
		require.Error(t, err)
		require.ErrorIs(t, err, ampErrors.ErrPanicRecovery)
		assert.Contains(t, err.Error(), "42")
	})

	t.Run("handles struct panic value", func(t *testing.T) {
		t.Parallel()

		type testStruct struct {
			Message string
		}

		err := GetPanicRecoveryError(testStruct{Message: "test"}, nil)
		require.Error(t, err)
		require.ErrorIs(t, err, ampErrors.ErrPanicRecovery)
		assert.Contains(t, err.Error(), "test")
	})

	t.Run("nil stack leaves the error message free of stack trace text", func(t *testing.T) {
		t.Parallel()

		err := GetPanicRecoveryError(errors.New("test error"), nil) //nolint:err113
		require.Error(t, err)
		assert.NotContains(t, err.Error(), "goroutine")
	})

	t.Run("stack trace travels as a structured attribute, not in the message", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer

		logger.ConfigureLoggingWithOptions(logger.Options{Subsystem: "panic-test", JSON: true, Output: &buf})

		stack := []byte("goroutine 1 [running]:\nmain.main()\n\t/path/to/main.go:10")
		err := GetPanicRecoveryError(errors.New("test error"), stack) //nolint:err113
		require.Error(t, err)
		assert.NotContains(t, err.Error(), "goroutine 1")

		logger.Get().Error("worker panicked", "error", err)

		output := buf.String()
		assert.Contains(t, output, `"stack"`)
		assert.Contains(t, output, "goroutine 1")
	})
}
