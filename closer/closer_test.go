package closer_test

import (
	"errors"
	"testing"

	"github.com/TankerHQ/tconcurrent-go/closer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCloser struct {
	closed bool
	err    error
}

func (f *fakeCloser) Close() error {
	f.closed = true

	return f.err
}

func TestCloserClosesEveryRegisteredCloser(t *testing.T) {
	t.Parallel()

	a := &fakeCloser{}
	b := &fakeCloser{}

	c := closer.NewCloser(a, b)
	require.NoError(t, c.Close())

	assert.True(t, a.closed)
	assert.True(t, b.closed)
}

func TestCloserAdd(t *testing.T) {
	t.Parallel()

	a := &fakeCloser{}
	b := &fakeCloser{}

	c := closer.NewCloser()
	c.Add(a)
	c.Add(b)

	require.NoError(t, c.Close())
	assert.True(t, a.closed)
	assert.True(t, b.closed)
}

func TestCloserSkipsNilClosers(t *testing.T) {
	t.Parallel()

	a := &fakeCloser{}

	c := closer.NewCloser(a, nil)
	require.NoError(t, c.Close())
	assert.True(t, a.closed)
}

func TestCloserJoinsAllErrorsAndStillClosesEverything(t *testing.T) {
	t.Parallel()

	errA := errors.New("a failed")
	errC := errors.New("c failed")

	a := &fakeCloser{err: errA}
	b := &fakeCloser{}
	c := &fakeCloser{err: errC}

	collector := closer.NewCloser(a, b, c)
	err := collector.Close()

	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errC)

	assert.True(t, a.closed)
	assert.True(t, b.closed, "later closers must still run after an earlier one errors")
	assert.True(t, c.closed)
}

func TestCloserCloseOnEmptyCollectorSucceeds(t *testing.T) {
	t.Parallel()

	require.NoError(t, closer.NewCloser().Close())
}
