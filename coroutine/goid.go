package coroutine

import (
	"bytes"
	"runtime"
	"strconv"
)

// currentGoroutineID is the same best-effort stack-header parse executor uses
// for IsInThisContext; duplicated locally rather than exported cross-package
// since it is an internal detail of "what goroutine am I on", not a public
// part of either package's contract.
func currentGoroutineID() uint64 {
	buf := make([]byte, 64)
	n := runtime.Stack(buf, false)
	buf = buf[:n]

	buf = bytes.TrimPrefix(buf, []byte("goroutine "))

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
