package should_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/TankerHQ/tconcurrent-go/logger"
	"github.com/TankerHQ/tconcurrent-go/should"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errCloseFailed = errors.New("close failed")

type mockCloser struct {
	closeErr error
	closed   bool
}

func (m *mockCloser) Close() error {
	m.closed = true

	return m.closeErr
}

func TestCloseSuccessDoesNotLog(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger.ConfigureLoggingWithOptions(logger.Options{Subsystem: "should-test", JSON: true, Output: &buf})

	c := &mockCloser{}
	should.Close(c, "test message")

	assert.True(t, c.closed)
	assert.Empty(t, buf.String())
}

func TestCloseFailureLogsDefaultMessage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger.ConfigureLoggingWithOptions(logger.Options{Subsystem: "should-test", JSON: true, Output: &buf})

	should.Close(&mockCloser{closeErr: errCloseFailed})

	assert.Contains(t, buf.String(), "error closing io.Closer")
	assert.Contains(t, buf.String(), "close failed")
}

func TestCloseFailureLogsSingleArgMessage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger.ConfigureLoggingWithOptions(logger.Options{Subsystem: "should-test", JSON: true, Output: &buf})

	should.Close(&mockCloser{closeErr: errCloseFailed}, "custom failure message")

	assert.Contains(t, buf.String(), "custom failure message")
}

func TestCloseFailureLogsFormattedMessage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger.ConfigureLoggingWithOptions(logger.Options{Subsystem: "should-test", JSON: true, Output: &buf})

	should.Close(&mockCloser{closeErr: errCloseFailed}, "failed to close %s", "resource-1")

	assert.Contains(t, buf.String(), "failed to close resource-1")
}

func TestCloseAnnotatesErrorWithShutdownStage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger.ConfigureLoggingWithOptions(logger.Options{Subsystem: "should-test", JSON: true, Output: &buf, MinLevel: slog.LevelError})

	should.Close(&mockCloser{closeErr: errCloseFailed}, "executor: one or more pools did not stop cleanly")

	require.Contains(t, buf.String(), `"stage":"shutdown"`)
}

type joinedCloser struct {
	errs []error
}

func (j *joinedCloser) Close() error {
	return errors.Join(j.errs...)
}

func TestCloseHandlesJoinedErrorsFromMultiCloser(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger.ConfigureLoggingWithOptions(logger.Options{Subsystem: "should-test", JSON: true, Output: &buf})

	should.Close(&joinedCloser{errs: []error{errors.New("pool a"), errors.New("pool b")}}, "shutdown failed")

	output := buf.String()
	assert.Contains(t, output, "pool a")
	assert.Contains(t, output, "pool b")
}
