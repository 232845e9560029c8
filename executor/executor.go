// Package executor defines the type-erased "post(work, name)" sink the engine's
// futures, timers, coroutines, and periodic tasks all run work on, plus the
// synchronous executor used for latency-sensitive continuations.
package executor

import "time"

// Executor is a type-erased sink for named work items. Futures post continuations
// onto one; the thread pool and the synchronous executor are the two
// implementations this package ships.
type Executor interface {
	// Post schedules work to run, eventually, under this executor. name is an
	// optional tracing label (propagated to a task-trace handler, if any).
	Post(work func(), name string)

	// IsInThisContext reports whether the calling goroutine is itself one of this
	// executor's own workers (or, for the synchronous executor, always true since
	// work always runs on the caller).
	IsInThisContext() bool

	// IsSingleThreaded reports whether this executor guarantees at most one task
	// runs at a time. The default executor is single-threaded so that
	// chain-of-continuation code gets race-free mutable access to captured state.
	IsSingleThreaded() bool
}

// ErrorHandler is invoked with a panic/error recovered from a task that escaped
// its packaged-task wrapper (protocol misuse or a bug in the executor itself,
// not ordinary user errors, which are routed into the future instead).
type ErrorHandler func(err error)

// TaskTraceHandler is invoked after a named task completes, with its name and
// wall-clock duration. Used for tracing/metrics, never for control flow.
type TaskTraceHandler func(name string, d time.Duration)

// timeTask runs work and, if trace is non-nil, then calls trace with name and
// the time work took. Shared by every Executor implementation so all of them
// time tasks the same way.
func timeTask(trace TaskTraceHandler, name string, work func()) {
	if trace == nil {
		work()

		return
	}

	start := time.Now()
	work()
	trace(name, time.Since(start))
}
