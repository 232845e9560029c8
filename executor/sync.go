package executor

// SyncExecutor runs every posted task inline, on the calling goroutine, before
// Post returns. It is the engine's "synchronous executor" (§4.3): used for
// future.ToVoid, Unwrap's internal continuations, and anywhere a continuation
// must run without crossing a goroutine boundary.
type SyncExecutor struct {
	trace TaskTraceHandler
}

// NewSync returns a synchronous executor.
func NewSync() *SyncExecutor {
	return &SyncExecutor{}
}

// Post runs work immediately, before returning.
func (s *SyncExecutor) Post(work func(), name string) {
	timeTask(s.trace, name, work)
}

// IsInThisContext is always true: work never leaves the calling goroutine.
func (s *SyncExecutor) IsInThisContext() bool {
	return true
}

// IsSingleThreaded is always true.
func (s *SyncExecutor) IsSingleThreaded() bool {
	return true
}

// SetTaskTraceHandler installs fn to time every posted task. A nil fn disables
// tracing.
func (s *SyncExecutor) SetTaskTraceHandler(fn TaskTraceHandler) {
	s.trace = fn
}

var syncExecutorInstance = NewSync() //nolint:gochecknoglobals // the single shared synchronous executor instance

// Sync returns the shared synchronous executor instance.
func Sync() *SyncExecutor {
	return syncExecutorInstance
}
