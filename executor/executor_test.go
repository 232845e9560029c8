package executor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThreadPool_PostRunsWork(t *testing.T) {
	t.Parallel()

	tp := NewThreadPool("test", 2)
	defer tp.Close()

	done := make(chan struct{})
	tp.Post(func() { close(done) }, "work")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("work never ran")
	}
}

func TestThreadPool_IsSingleThreaded(t *testing.T) {
	t.Parallel()

	single := NewThreadPool("single", 1)
	defer single.Close()
	assert.True(t, single.IsSingleThreaded())

	multi := NewThreadPool("multi", 4)
	defer multi.Close()
	assert.False(t, multi.IsSingleThreaded())
}

func TestThreadPool_IsInThisContext(t *testing.T) {
	t.Parallel()

	tp := NewThreadPool("ctx-test", 1)
	defer tp.Close()

	assert.False(t, tp.IsInThisContext())

	inside := make(chan bool, 1)
	tp.Post(func() { inside <- tp.IsInThisContext() }, "check")

	select {
	case v := <-inside:
		assert.True(t, v)
	case <-time.After(time.Second):
		t.Fatal("work never ran")
	}
}

func TestThreadPool_ErrorHandlerReceivesPanics(t *testing.T) {
	t.Parallel()

	tp := NewThreadPool("panicking", 1)
	defer tp.Close()

	var (
		mu  sync.Mutex
		got error
	)

	done := make(chan struct{})

	tp.SetErrorHandler(func(err error) {
		mu.Lock()
		got = err
		mu.Unlock()
		close(done)
	})

	tp.Post(func() { panic("boom") }, "panicker")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("error handler never called")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Error(t, got)
}

func TestThreadPool_OtherTasksUnaffectedByPanic(t *testing.T) {
	t.Parallel()

	tp := NewThreadPool("resilient", 1)
	defer tp.Close()

	tp.SetErrorHandler(func(error) {})

	tp.Post(func() { panic("first") }, "first")

	done := make(chan struct{})
	tp.Post(func() { close(done) }, "second")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second task never ran after the first one panicked")
	}
}

func TestThreadPool_TaskTraceHandlerTimesNamedTasks(t *testing.T) {
	t.Parallel()

	tp := NewThreadPool("traced", 1)
	defer tp.Close()

	var (
		mu      sync.Mutex
		gotName string
		gotDur  time.Duration
		traced  bool
	)

	done := make(chan struct{})

	tp.SetTaskTraceHandler(func(name string, d time.Duration) {
		mu.Lock()
		gotName = name
		gotDur = d
		traced = true
		mu.Unlock()
		close(done)
	})

	tp.Post(func() { time.Sleep(time.Millisecond) }, "named-task")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("trace handler never called")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.True(t, traced)
	assert.Equal(t, "named-task", gotName)
	assert.GreaterOrEqual(t, gotDur, time.Duration(0))
}

func TestThreadPool_StopClearsIsRunning(t *testing.T) {
	t.Parallel()

	tp := NewThreadPool("stoppable", 1)
	assert.True(t, tp.IsRunning())

	tp.Stop(context.Background())
	assert.False(t, tp.IsRunning())
}

func TestSyncExecutor_RunsInline(t *testing.T) {
	t.Parallel()

	ex := NewSync()

	var ran bool

	ex.Post(func() { ran = true }, "inline")

	assert.True(t, ran)
	assert.True(t, ex.IsInThisContext())
	assert.True(t, ex.IsSingleThreaded())
}

func TestDefaultAndBackground_AreSingletons(t *testing.T) {
	assert.Same(t, Default(), Default())
	assert.Same(t, Background(), Background())
}
