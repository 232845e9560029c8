package executor

import (
	"bytes"
	"runtime"
	"strconv"
)

// currentGoroutineID extracts the calling goroutine's id by parsing the header
// line of its own stack trace ("goroutine 123 [running]:"). This is the
// standard best-effort substitute for thread-local storage in Go (the same
// technique small libraries like petermattis/goid use); it is only ever used
// here to answer IsInThisContext, never for correctness-critical scheduling.
func currentGoroutineID() uint64 {
	buf := make([]byte, 64)
	n := runtime.Stack(buf, false)
	buf = buf[:n]

	const prefix = "goroutine "

	buf = bytes.TrimPrefix(buf, []byte(prefix))

	idx := bytes.IndexByte(buf, ' ')
	if idx < 0 {
		return 0
	}

	id, err := strconv.ParseUint(string(buf[:idx]), 10, 64)
	if err != nil {
		return 0
	}

	return id
}
