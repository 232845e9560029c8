//nolint:err113 // test file constructs ad hoc errors
package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnotateErrorNil(t *testing.T) {
	t.Parallel()

	assert.NoError(t, AnnotateError(nil, "pool", "background"))
}

func TestAnnotateErrorAttachesAttrsWithoutChangingMessage(t *testing.T) {
	t.Parallel()

	base := errors.New("worker panicked")
	annotated := AnnotateError(base, "pool", "background", "task", "sync/refresh")

	require.Error(t, annotated)
	assert.Equal(t, "worker panicked", annotated.Error())

	var se *slogError
	require.ErrorAs(t, annotated, &se)
	require.Len(t, se.attrs, 2)
	assert.Equal(t, "pool", se.attrs[0].Key)
	assert.Equal(t, "task", se.attrs[1].Key)
}

func TestAnnotateErrorSupportsUnwrapIsAs(t *testing.T) {
	t.Parallel()

	base := &customError{msg: "deadline exceeded"}
	annotated := AnnotateError(base, "task", "periodic/heartbeat")

	require.ErrorIs(t, annotated, base)

	var ce *customError
	require.ErrorAs(t, annotated, &ce)
	assert.Equal(t, "deadline exceeded", ce.msg)

	assert.Equal(t, error(base), errors.Unwrap(annotated))
}

func TestAnnotateErrorChaining(t *testing.T) {
	t.Parallel()

	base := errors.New("stop failed")
	inner := AnnotateError(base, "pool", "default")
	outer := AnnotateError(inner, "stage", "shutdown")

	var se *slogError
	require.ErrorAs(t, outer, &se)
	require.Len(t, se.attrs, 1)
	assert.Equal(t, "stage", se.attrs[0].Key)

	unwrapped := errors.Unwrap(outer)
	require.ErrorAs(t, unwrapped, &se)
	assert.Equal(t, "pool", se.attrs[0].Key)
}

func TestSlogErrorLoggerHandleExtractsAnnotatedAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	h := &slogErrorLogger{inner: slog.NewJSONHandler(&buf, nil)}

	err := AnnotateError(errors.New("pool stop timed out"), "pool", "background", "workers", 4)

	record := slog.NewRecord(time.Now(), slog.LevelError, "executor: shutdown failed", 0)
	record.AddAttrs(slog.Any("error", err))

	require.NoError(t, h.Handle(t.Context(), record))

	var logData map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logData))

	assert.Equal(t, "background", logData["pool"])
	assert.InDelta(t, 4, logData["workers"], 0.001)
	assert.Equal(t, "pool stop timed out", logData["error"])
}

func TestSlogErrorLoggerHandlePlainErrorPassesThrough(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	h := &slogErrorLogger{inner: slog.NewJSONHandler(&buf, nil)}

	record := slog.NewRecord(time.Now(), slog.LevelError, "unhandled task error", 0)
	record.AddAttrs(slog.Any("error", errors.New("plain")))

	require.NoError(t, h.Handle(t.Context(), record))
	assert.Contains(t, buf.String(), "plain")
}

func TestSlogErrorLoggerHandleJoinedErrorsExtractEachAnnotation(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	h := &slogErrorLogger{inner: slog.NewJSONHandler(&buf, nil)}

	err1 := AnnotateError(errors.New("task one failed"), "task", "a")
	err2 := AnnotateError(errors.New("task two failed"), "task", "b")

	record := slog.NewRecord(time.Now(), slog.LevelError, "batch failed", 0)
	record.AddAttrs(slog.Any("error", errors.Join(err1, err2)))

	require.NoError(t, h.Handle(t.Context(), record))

	var logData map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logData))

	assert.Contains(t, logData, "error[0]")
	assert.Contains(t, logData, "error[1]")
}

func TestSlogErrorLoggerEnabledDelegates(t *testing.T) {
	t.Parallel()

	h := &slogErrorLogger{inner: slog.NewJSONHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})}

	assert.True(t, h.Enabled(t.Context(), slog.LevelError))
	assert.False(t, h.Enabled(t.Context(), slog.LevelDebug))
}

func TestSlogErrorLoggerWithAttrsAndWithGroupPreserveExtraction(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	base := &slogErrorLogger{inner: slog.NewJSONHandler(&buf, nil)}

	withAttrs, ok := base.WithAttrs([]slog.Attr{slog.String("pod", "node-1")}).(*slogErrorLogger)
	require.True(t, ok)

	withGroup, ok := withAttrs.WithGroup("executor").(*slogErrorLogger)
	require.True(t, ok)

	err := AnnotateError(errors.New("panic recovered"), "pool", "default")
	record := slog.NewRecord(time.Now(), slog.LevelError, "task panicked", 0)
	record.AddAttrs(slog.Any("error", err))

	require.NoError(t, withGroup.Handle(t.Context(), record))

	output := buf.String()
	assert.Contains(t, output, "node-1")
	assert.Contains(t, output, "default")
}

func TestConfigureLoggingIntegrationAnnotatesExecutorError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	ConfigureLoggingWithOptions(Options{Subsystem: "executor-test", JSON: true, Output: &buf})

	err := AnnotateError(errors.New("task panicked"), "pool", "background", "workers", 8)

	Get(context.Background()).Error("executor: unhandled task error", "error", err)

	var logData map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logData))

	assert.Equal(t, "executor-test", logData["subsystem"])
	assert.Equal(t, "background", logData["pool"])
	assert.InDelta(t, 8, logData["workers"], 0.001)
}

type customError struct {
	msg string
}

func (e *customError) Error() string {
	return e.msg
}
