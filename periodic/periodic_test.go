package periodic

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/TankerHQ/tconcurrent-go/executor"
	"github.com/TankerHQ/tconcurrent-go/future"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTask_StartImmediatelyCallsRightAway(t *testing.T) {
	t.Parallel()

	ex := executor.NewThreadPool("periodic-test", 1)
	defer ex.Close()

	var calls int

	var mu sync.Mutex

	done := make(chan struct{})

	task := New("immediate", ex, time.Hour)
	task.SetCallbackVoid(func() error {
		mu.Lock()
		calls++
		mu.Unlock()
		close(done)

		return nil
	})

	require.NoError(t, task.Start(StartImmediately))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("callback never ran")
	}

	mu.Lock()
	assert.Equal(t, 1, calls)
	mu.Unlock()
}

func TestTask_StartAfterPeriodWaitsFirst(t *testing.T) {
	t.Parallel()

	ex := executor.NewThreadPool("periodic-test", 1)
	defer ex.Close()

	called := make(chan struct{}, 1)

	task := New("delayed", ex, 30*time.Millisecond)
	task.SetCallbackVoid(func() error {
		called <- struct{}{}

		return nil
	})

	require.NoError(t, task.Start(StartAfterPeriod))

	select {
	case <-called:
		t.Fatal("callback ran before the period elapsed")
	case <-time.After(10 * time.Millisecond):
	}

	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("callback never ran")
	}
}

func TestTask_StartTwiceFails(t *testing.T) {
	t.Parallel()

	ex := executor.NewThreadPool("periodic-test", 1)
	defer ex.Close()

	task := New("twice", ex, time.Hour)
	task.SetCallbackVoid(func() error { return nil })

	require.NoError(t, task.Start(StartAfterPeriod))
	require.Error(t, task.Start(StartAfterPeriod))
}

func TestTask_StopOnStoppedIsReadyImmediately(t *testing.T) {
	t.Parallel()

	ex := executor.NewThreadPool("periodic-test", 1)
	defer ex.Close()

	task := New("never-started", ex, time.Hour)

	stopped := task.Stop()
	assert.True(t, stopped.IsReady())
	assert.False(t, task.IsRunning())
}

func TestTask_StopWaitsForInFlightCall(t *testing.T) {
	t.Parallel()

	ex := executor.NewThreadPool("periodic-test", 1)
	defer ex.Close()

	releaseCall := make(chan struct{})
	inCall := make(chan struct{})

	task := New("slow", ex, time.Hour)
	task.SetCallback(func() *future.Future[struct{}] {
		fut, promise := future.New[struct{}]()

		go func() {
			close(inCall)
			<-releaseCall
			promise.Success(struct{}{})
		}()

		return fut
	})

	require.NoError(t, task.Start(StartImmediately))

	select {
	case <-inCall:
	case <-time.After(time.Second):
		t.Fatal("callback never started")
	}

	stopFut := task.Stop()
	assert.False(t, stopFut.IsReady())

	close(releaseCall)

	_, err := stopFut.Get(context.Background())
	require.NoError(t, err)
	assert.False(t, task.IsRunning())
}

func TestTask_CadenceRoughlyMatchesPeriod(t *testing.T) {
	t.Parallel()

	ex := executor.NewThreadPool("periodic-test", 1)
	defer ex.Close()

	var calls int

	var mu sync.Mutex

	task := New("cadence", ex, 100*time.Millisecond)
	task.SetCallbackVoid(func() error {
		mu.Lock()
		calls++
		mu.Unlock()

		return nil
	})

	require.NoError(t, task.Start(StartAfterPeriod))

	time.Sleep(450 * time.Millisecond)

	_, err := task.Stop().Get(context.Background())
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, calls, 3)
	assert.LessOrEqual(t, calls, 5)
}
