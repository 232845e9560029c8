package executor

import (
	"io"
	"runtime"
	"sync"

	"github.com/TankerHQ/tconcurrent-go/closer"
	"github.com/TankerHQ/tconcurrent-go/config"
	"github.com/TankerHQ/tconcurrent-go/lazy"
	"github.com/TankerHQ/tconcurrent-go/should"
)

// defaultExecutorInstance is the process-wide single-threaded executor (§4.3): used for
// latency-sensitive continuations and timers, so chain-of-continuation code gets
// race-free mutable access to captured state.
var defaultExecutorInstance = lazy.New(func() *ThreadPool { //nolint:gochecknoglobals
	return newLazyTracked("default", 1)
})

// backgroundExecutorInstance is the process-wide pool sized to hardware
// parallelism, for compute-bound work.
var backgroundExecutorInstance = lazy.New(func() *ThreadPool { //nolint:gochecknoglobals
	n := config.Int("TCONCURRENT_BACKGROUND_WORKERS", runtime.GOMAXPROCS(0))

	return newLazyTracked("background", n)
})

// teardownMu guards lifoClosers, the stack of io.Closers registered as each
// lazy singleton above is first created, so Shutdown tears them down in LIFO
// order (last-created, first-torn-down), matching §4.3 "shutdown tears them
// down in LIFO order". Nothing registers Shutdown automatically — per §9,
// global executor teardown is an explicit entry point the caller invokes,
// not a destructor the runtime fires on its own.
var (
	teardownMu  sync.Mutex  //nolint:gochecknoglobals
	lifoClosers []io.Closer //nolint:gochecknoglobals
)

func newLazyTracked(name string, n int) *ThreadPool {
	tp := NewThreadPool(name, n)

	teardownMu.Lock()
	lifoClosers = append(lifoClosers, tp)
	teardownMu.Unlock()

	return tp
}

// Default returns the process-wide single-threaded executor, creating it on
// first use.
func Default() *ThreadPool {
	return defaultExecutorInstance.Get()
}

// Background returns the process-wide compute executor, creating it on first
// use.
func Background() *ThreadPool {
	return backgroundExecutorInstance.Get()
}

// Shutdown tears down whichever of the two process-wide executors have been
// created so far, in LIFO order (last-created first), per §4.3 and §9's note
// that global executor teardown must be an explicit entry point rather than
// relying on destructor ordering.
func Shutdown() {
	teardownMu.Lock()
	pools := lifoClosers
	lifoClosers = nil
	teardownMu.Unlock()

	reversed := closer.NewCloser()
	for i := len(pools) - 1; i >= 0; i-- {
		reversed.Add(pools[i])
	}

	should.Close(reversed, "executor: one or more pools did not stop cleanly")
}
