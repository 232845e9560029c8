package syncx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcurrentQueue_PushThenPop(t *testing.T) {
	t.Parallel()

	q := NewConcurrentQueue[int]()
	q.Push(1)
	q.Push(2)

	assert.Equal(t, 2, q.Size())

	v, err := q.Pop().Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, err = q.Pop().Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.Equal(t, 0, q.Size())
}

func TestConcurrentQueue_PopThenPush(t *testing.T) {
	t.Parallel()

	q := NewConcurrentQueue[int]()

	fut := q.Pop()
	assert.False(t, fut.IsReady())
	assert.Equal(t, 1, q.Waiting())

	q.Push(42)

	v, err := fut.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 0, q.Waiting())
}

func TestConcurrentQueue_AtMostOneSideNonEmpty(t *testing.T) {
	t.Parallel()

	q := NewConcurrentQueue[int]()

	q.Push(1)
	assert.Positive(t, q.Size())
	assert.Zero(t, q.Waiting())

	q.Pop()

	f1 := q.Pop()
	assert.Zero(t, q.Size())
	assert.Positive(t, q.Waiting())
	assert.False(t, f1.IsReady())
}

func TestConcurrentQueue_PopIsReadyWhenValueAvailable(t *testing.T) {
	t.Parallel()

	q := NewConcurrentQueue[string]()
	q.Push("hello")

	fut := q.Pop()
	assert.True(t, fut.IsReady())
}
