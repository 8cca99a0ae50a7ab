package fiber

import (
	"runtime"
	"sync"
)

// schedulers maps goroutine IDs to their scheduler. Driving goroutines are
// bound lazily by Current (or explicitly by New); fiber goroutines bind
// themselves to their owning scheduler for the duration of their run, so
// Current resolves correctly from inside fiber bodies. Entries for fiber
// goroutines are removed on completion; entries for driving goroutines live
// until Scheduler.Close or process exit.
var schedulers = struct {
	mu sync.Mutex
	m  map[uint64]*Scheduler
}{m: make(map[uint64]*Scheduler)}

// Current returns the calling goroutine's scheduler, constructing one with
// default options on first use. Repeated calls from the same goroutine return
// the same instance; different goroutines hold independent schedulers, and
// fibers are not portable between them.
func Current() *Scheduler {
	gid := goroutineID()
	schedulers.mu.Lock()
	s := schedulers.m[gid]
	schedulers.mu.Unlock()
	if s == nil {
		// New binds the goroutine
		s = New()
	}
	return s
}

// bindGoroutine associates the calling goroutine with s, replacing any
// previous association.
func bindGoroutine(s *Scheduler) {
	gid := goroutineID()
	schedulers.mu.Lock()
	defer schedulers.mu.Unlock()
	schedulers.m[gid] = s
}

// unbindGoroutine removes the calling goroutine's association.
func unbindGoroutine() {
	gid := goroutineID()
	schedulers.mu.Lock()
	defer schedulers.mu.Unlock()
	delete(schedulers.m, gid)
}

// unbindScheduler removes the calling goroutine's association, but only if
// it still points at s.
func unbindScheduler(s *Scheduler) {
	gid := goroutineID()
	schedulers.mu.Lock()
	defer schedulers.mu.Unlock()
	if schedulers.m[gid] == s {
		delete(schedulers.m, gid)
	}
}

// goroutineID parses the current goroutine's ID from the runtime stack
// header ("goroutine N [running]: ..."). Goroutine IDs are never reused.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] < '0' || buf[i] > '9' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}
