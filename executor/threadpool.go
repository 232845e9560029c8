package executor

import (
	"context"
	"runtime/debug"
	"sync"
	"time"

	"github.com/TankerHQ/tconcurrent-go/logger"
	"github.com/TankerHQ/tconcurrent-go/utils"
	"github.com/alitto/pond/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/atomic"
)

//nolint:gochecknoglobals // process-wide, label-keyed instrumentation shared by every ThreadPool instance
var (
	tasksPosted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tconcurrent_threadpool_tasks_posted_total",
		Help: "Tasks posted to a thread pool, labeled by pool name.",
	}, []string{"pool"})

	tasksFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tconcurrent_threadpool_tasks_failed_total",
		Help: "Tasks whose execution panicked or otherwise escaped to the error handler.",
	}, []string{"pool"})

	tasksRunning = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tconcurrent_threadpool_tasks_running",
		Help: "Tasks currently executing on a thread pool's workers.",
	}, []string{"pool"})
)

// ThreadPool is an N-worker pool owning its own goroutine workers (by way of
// pond.Pool), matching §4.3: post work, recover and route worker panics to an
// installed error handler, and time named tasks through a task-trace handler.
type ThreadPool struct {
	name    string
	workers int
	pool    pond.Pool
	running atomic.Bool

	mu           sync.RWMutex
	errorHandler ErrorHandler
	trace        TaskTraceHandler

	workerGoroutines sync.Map // goroutine id (uint64) -> struct{}, populated while a task from this pool runs on it
}

// NewThreadPool starts a pool of n worker goroutines immediately. n must be >= 1.
func NewThreadPool(name string, n int) *ThreadPool {
	if n < 1 {
		n = 1
	}

	tp := &ThreadPool{
		name:    name,
		workers: n,
		pool:    pond.NewPool(n),
	}
	tp.running.Store(true)
	tp.errorHandler = tp.defaultErrorHandler

	return tp
}

// defaultErrorHandler logs the escaped error/panic and, per §4.3, aborts the
// process if the installed handler itself throws — here, if logging itself
// panics, we let it propagate and crash, matching "the process aborts". The
// pool name travels on the error itself (via logger.AnnotateError) rather
// than only as a log attribute, so it survives if a caller further wraps or
// joins this error before it is eventually logged elsewhere.
func (tp *ThreadPool) defaultErrorHandler(err error) {
	logger.Get().Error("executor: unhandled task error", "error", logger.AnnotateError(err, "pool", tp.name))
}

// SetErrorHandler installs fn as the pool's error handler, replacing the
// default (log only). fn is called with whatever escaped a task's packaged-task
// try/catch; if fn itself panics, the panic is not recovered and the process
// aborts, per §4.3.
func (tp *ThreadPool) SetErrorHandler(fn ErrorHandler) {
	tp.mu.Lock()
	defer tp.mu.Unlock()

	if fn == nil {
		fn = tp.defaultErrorHandler
	}

	tp.errorHandler = fn
}

// SetTaskTraceHandler installs fn to be called with (name, duration) after
// every named task completes. A nil fn disables tracing.
func (tp *ThreadPool) SetTaskTraceHandler(fn TaskTraceHandler) {
	tp.mu.Lock()
	defer tp.mu.Unlock()

	tp.trace = fn
}

func (tp *ThreadPool) handlers() (ErrorHandler, TaskTraceHandler) {
	tp.mu.RLock()
	defer tp.mu.RUnlock()

	return tp.errorHandler, tp.trace
}

// Post schedules work on a pool worker. Panics escaping work are recovered and
// routed to the installed error handler instead of killing the worker.
func (tp *ThreadPool) Post(work func(), name string) {
	tasksPosted.WithLabelValues(tp.name).Inc()

	errHandler, trace := tp.handlers()

	tp.pool.Submit(func() {
		id := currentGoroutineID()
		tp.workerGoroutines.Store(id, struct{}{})

		tasksRunning.WithLabelValues(tp.name).Inc()

		defer func() {
			tasksRunning.WithLabelValues(tp.name).Dec()
			tp.workerGoroutines.Delete(id)

			if r := recover(); r != nil {
				tasksFailed.WithLabelValues(tp.name).Inc()

				if err := utils.GetPanicRecoveryError(r, debug.Stack()); err != nil {
					errHandler(err)
				}
			}
		}()

		timeTask(trace, name, work)
	})
}

// IsInThisContext reports whether the calling goroutine is currently executing
// a task dispatched by this pool.
func (tp *ThreadPool) IsInThisContext() bool {
	_, ok := tp.workerGoroutines.Load(currentGoroutineID())

	return ok
}

// IsSingleThreaded reports whether this pool was started with exactly one worker.
func (tp *ThreadPool) IsSingleThreaded() bool {
	return tp.workers == 1
}

// IsRunning reports whether Stop has not yet been called.
func (tp *ThreadPool) IsRunning() bool {
	return tp.running.Load()
}

// Stop releases the pool's keep-alive: queued and in-flight work drains, then
// the workers exit. Stop blocks until that drain completes or ctx is done,
// whichever comes first; in the latter case the drain goes on in the background.
func (tp *ThreadPool) Stop(ctx context.Context) {
	if !tp.running.CompareAndSwap(true, false) {
		return
	}

	done := make(chan struct{})

	go func() {
		tp.pool.StopAndWait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}
}

// Close stops the pool within a bounded drain window and satisfies io.Closer,
// so a ThreadPool can be registered with a closer.Closer collector.
func (tp *ThreadPool) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second) //nolint:mnd
	defer cancel()

	tp.Stop(ctx)

	return nil
}
