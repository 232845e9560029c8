package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInt_DefaultsWhenUnset(t *testing.T) {
	t.Setenv("TCONCURRENT_TEST_INT_UNSET", "")
	assert.Equal(t, 7, Int("TCONCURRENT_TEST_INT_DOES_NOT_EXIST", 7))
}

func TestInt_ParsesSetValue(t *testing.T) {
	t.Setenv("TCONCURRENT_TEST_INT", "42")
	assert.Equal(t, 42, Int("TCONCURRENT_TEST_INT", 0))
}

func TestInt_FallsBackOnUnparsable(t *testing.T) {
	t.Setenv("TCONCURRENT_TEST_INT_BAD", "not-an-int")
	assert.Equal(t, 3, Int("TCONCURRENT_TEST_INT_BAD", 3))
}

func TestBool_ParsesSetValue(t *testing.T) {
	t.Setenv("TCONCURRENT_TEST_BOOL", "true")
	assert.True(t, Bool("TCONCURRENT_TEST_BOOL", false))
}

func TestBool_DefaultsWhenUnset(t *testing.T) {
	assert.False(t, Bool("TCONCURRENT_TEST_BOOL_DOES_NOT_EXIST", false))
	assert.True(t, Bool("TCONCURRENT_TEST_BOOL_DOES_NOT_EXIST2", true))
}

func TestDuration_ParsesSetValue(t *testing.T) {
	t.Setenv("TCONCURRENT_TEST_DURATION", "500ms")
	assert.Equal(t, 500*time.Millisecond, Duration("TCONCURRENT_TEST_DURATION", time.Second))
}

func TestDuration_FallsBackOnUnparsable(t *testing.T) {
	t.Setenv("TCONCURRENT_TEST_DURATION_BAD", "not-a-duration")
	assert.Equal(t, time.Second, Duration("TCONCURRENT_TEST_DURATION_BAD", time.Second))
}

func TestString_ParsesSetValue(t *testing.T) {
	t.Setenv("TCONCURRENT_TEST_STRING", "hello")
	assert.Equal(t, "hello", String("TCONCURRENT_TEST_STRING", "default"))
}

func TestString_DefaultsWhenUnset(t *testing.T) {
	assert.Equal(t, "default", String("TCONCURRENT_TEST_STRING_DOES_NOT_EXIST", "default"))
}

func TestSlogLevel_ParsesKnownLevels(t *testing.T) {
	t.Setenv("TCONCURRENT_TEST_LEVEL", "debug")
	assert.Equal(t, slog.LevelDebug, SlogLevel("TCONCURRENT_TEST_LEVEL", slog.LevelInfo))

	t.Setenv("TCONCURRENT_TEST_LEVEL", "WARN")
	assert.Equal(t, slog.LevelWarn, SlogLevel("TCONCURRENT_TEST_LEVEL", slog.LevelInfo))
}

func TestSlogLevel_FallsBackOnUnrecognized(t *testing.T) {
	t.Setenv("TCONCURRENT_TEST_LEVEL_BAD", "not-a-level")
	assert.Equal(t, slog.LevelInfo, SlogLevel("TCONCURRENT_TEST_LEVEL_BAD", slog.LevelInfo))
}
