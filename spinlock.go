package fiber

import (
	"runtime"
	"sync/atomic"
)

// spinLock is a minimal test-and-set lock. It guards only the mutex waiter
// list, whose critical sections are a handful of slice operations, and
// serializes against notification callbacks invoked during unlock. Holders
// must not suspend while holding it.
type spinLock struct {
	state atomic.Uint32
}

func (l *spinLock) lock() {
	for !l.state.CompareAndSwap(0, 1) {
		runtime.Gosched()
	}
}

func (l *spinLock) unlock() {
	l.state.Store(0)
}
