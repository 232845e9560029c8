// Package periodic implements the periodic task (§4.7): a rescheduling
// wrapper around a callback with an explicit Stopped/Running/Stopping
// lifecycle, at most one call in flight at any time.
package periodic

import (
	"sync"
	"time"

	stderrors "errors"

	"github.com/TankerHQ/tconcurrent-go/errors"
	"github.com/TankerHQ/tconcurrent-go/executor"
	"github.com/TankerHQ/tconcurrent-go/future"
	"github.com/TankerHQ/tconcurrent-go/logger"
	"github.com/TankerHQ/tconcurrent-go/timer"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// State is one of the periodic task's three lifecycle states.
type State int

const (
	StateStopped State = iota
	StateRunning
	StateStopping
)

// StartOption controls whether Start's first call runs immediately or after
// one period.
type StartOption int

const (
	// StartAfterPeriod schedules the first call after one period elapses.
	StartAfterPeriod StartOption = iota
	// StartImmediately posts the first call right away.
	StartImmediately
)

//nolint:gochecknoglobals // process-wide, name-labeled instrumentation shared by every Task
var (
	callsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tconcurrent_periodic_calls_total",
		Help: "Periodic task calls, labeled by task name.",
	}, []string{"task"})

	callDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "tconcurrent_periodic_call_duration_seconds",
		Help: "Periodic task call duration, labeled by task name.",
	}, []string{"task"})
)

// Task is the rescheduling wrapper. The zero value is usable once a callback,
// period, and executor are set (SetCallback/SetPeriod/SetExecutor); New
// applies sensible defaults.
type Task struct {
	name string

	mu       sync.Mutex
	callback func() *future.Future[struct{}]
	period   time.Duration
	executor executor.Executor
	state    State

	pending     *future.Future[struct{}]
	stopPromise *future.Promise[struct{}]
}

// New returns a Task posting to ex every period, named for tracing/metrics.
func New(name string, ex executor.Executor, period time.Duration) *Task {
	return &Task{name: name, executor: ex, period: period, state: StateStopped}
}

// SetCallback installs the function the task calls each period. A callback
// returning only an error is lifted to the future shape via SetCallbackVoid.
func (t *Task) SetCallback(cb func() *future.Future[struct{}]) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.callback = cb
}

// SetCallbackVoid installs a plain callback, lifted into the future shape
// SetCallback expects (§4.7: "non-future callbacks are lifted").
func (t *Task) SetCallbackVoid(cb func() error) {
	t.SetCallback(func() *future.Future[struct{}] {
		fut, promise := future.New[struct{}]()
		promise.Complete(struct{}{}, cb())

		return fut
	})
}

// SetPeriod changes the reschedule interval.
func (t *Task) SetPeriod(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.period = d
}

// SetExecutor changes which executor calls are posted on.
func (t *Task) SetExecutor(ex executor.Executor) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.executor = ex
}

// IsRunning reports whether the task is Running or Stopping.
func (t *Task) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.state != StateStopped
}

// Start transitions Stopped -> Running and schedules the first call per opt.
// It returns ErrAlreadyRunning if the task is not Stopped.
func (t *Task) Start(opt StartOption) error {
	t.mu.Lock()

	if t.state != StateStopped {
		t.mu.Unlock()

		return errors.ErrAlreadyRunning
	}

	t.state = StateRunning
	ex := t.executor
	period := t.period

	t.mu.Unlock()

	if opt == StartImmediately {
		ex.Post(func() { t.doCall() }, t.name+"/call")
	} else {
		t.scheduleAfter(period)
	}

	return nil
}

// Stop is idempotent: if Running, it transitions to Stopping, requests cancel
// on the current in-flight call, and returns a future that resolves once that
// call finishes. If already Stopped, it returns an immediately ready future.
func (t *Task) Stop() *future.Future[struct{}] {
	t.mu.Lock()

	switch t.state {
	case StateStopped:
		t.mu.Unlock()

		return future.MakeReadyFuture(struct{}{})
	case StateStopping:
		stopFut := t.stopPromise.GetFuture()
		t.mu.Unlock()

		return stopFut
	case StateRunning:
		t.state = StateStopping
		stopFut, promise := future.New[struct{}]()
		t.stopPromise = promise
		pending := t.pending
		t.mu.Unlock()

		if pending != nil {
			pending.RequestCancel()
		} else {
			t.finishStopping()
		}

		return stopFut
	default:
		t.mu.Unlock()

		return future.MakeReadyFuture(struct{}{})
	}
}

func (t *Task) scheduleAfter(period time.Duration) {
	t.mu.Lock()
	ex := t.executor
	t.mu.Unlock()

	wait := timer.AsyncWait(ex, period)

	t.mu.Lock()
	t.pending = wait
	t.mu.Unlock()

	wait.OnResult(func(result future.Try[struct{}]) {
		t.onWaitDone(result)
	})
}

func (t *Task) doCall() {
	t.mu.Lock()

	if t.state != StateRunning {
		t.mu.Unlock()

		return
	}

	cb := t.callback

	t.mu.Unlock()

	if cb == nil {
		t.rescheduleOrStop(nil)

		return
	}

	start := time.Now()
	callsTotal.WithLabelValues(t.name).Inc()

	t.mu.Lock()
	call := cb()
	t.pending = call
	t.mu.Unlock()

	call.OnResult(func(result future.Try[struct{}]) {
		callDuration.WithLabelValues(t.name).Observe(time.Since(start).Seconds())
		t.rescheduleOrStop(result.Error)
	})
}

// onWaitDone runs after the interval timer between calls resolves.
func (t *Task) onWaitDone(result future.Try[struct{}]) {
	if result.Error != nil {
		t.finishStopping()

		return
	}

	t.mu.Lock()
	ex := t.executor
	t.mu.Unlock()

	ex.Post(func() { t.doCall() }, t.name+"/call")
}

// rescheduleOrStop implements the post-call transition (§4.7): on success and
// still Running, wait one period then call again; on ErrOperationCanceled,
// stop quietly; on any other error, log it (annotated with the task name) and
// stop. The executor's error handler is not invoked for callback errors.
func (t *Task) rescheduleOrStop(callErr error) {
	t.mu.Lock()
	state := t.state
	period := t.period
	t.mu.Unlock()

	switch {
	case state == StateStopping:
		t.finishStopping()
	case callErr == nil && state == StateRunning:
		t.scheduleAfter(period)
	case errorsIsCanceled(callErr):
		t.finishStopping()
	case callErr != nil:
		t.reportError(callErr)
		t.finishStopping()
	default:
		t.finishStopping()
	}
}

// finishStopping transitions to Stopped and, if a Stop() call is waiting,
// resolves its returned future: the in-flight call has finished either way.
func (t *Task) finishStopping() {
	t.mu.Lock()
	promise := t.stopPromise
	t.stopPromise = nil
	t.pending = nil
	t.state = StateStopped
	t.mu.Unlock()

	if promise != nil {
		promise.Success(struct{}{})
	}
}

func (t *Task) reportError(err error) {
	logger.Get().Error("periodic: callback error", "error", logger.AnnotateError(err, "task", t.name))
}

func errorsIsCanceled(err error) bool {
	return stderrors.Is(err, errors.ErrOperationCanceled)
}
