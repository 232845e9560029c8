package syncx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSemaphore_AcquireRelease(t *testing.T) {
	t.Parallel()

	sem := NewSemaphore(1)
	assert.Equal(t, 1, sem.Count())

	_, err := sem.Acquire().Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sem.Count())

	blocked := sem.Acquire()
	assert.False(t, blocked.IsReady())

	sem.Release()

	_, err = blocked.Get(context.Background())
	require.NoError(t, err)
}

func TestSemaphore_ScopeLock(t *testing.T) {
	t.Parallel()

	sem := NewSemaphore(1)

	lock := sem.Lock()
	assert.Equal(t, 0, sem.Count())

	lock.Close()
	assert.Equal(t, 1, sem.Count())
}

func TestSemaphore_InitialCountZero(t *testing.T) {
	t.Parallel()

	sem := NewSemaphore(0)
	assert.Equal(t, 0, sem.Count())

	fut := sem.Acquire()
	assert.False(t, fut.IsReady())

	sem.Release()

	_, err := fut.Get(context.Background())
	require.NoError(t, err)
}
