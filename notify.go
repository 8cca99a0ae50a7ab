package fiber

import (
	"sync/atomic"
)

// Notifier is a wake capability owned by whatever a waiter is blocked on. It
// decouples a releaser from knowing what the waiter is: SetReady wakes the
// waiter without identifying it, and is idempotent.
//
// A fiber waiter's notifier forwards to [Scheduler.Notify]; the main path's
// [MainNotifier] merely flips a flag that the waiter polls while pumping
// [Scheduler.Run].
type Notifier interface {
	SetReady()
	IsReady() bool
}

// fiberNotifier wakes a fiber parked in its scheduler's waiting set. It is
// single-use: only the first SetReady notifies.
type fiberNotifier struct {
	s     *Scheduler
	f     *Fiber
	ready atomic.Bool
}

func (n *fiberNotifier) SetReady() {
	if n.ready.CompareAndSwap(false, true) {
		n.s.Notify(n.f)
	}
}

func (n *fiberNotifier) IsReady() bool { return n.ready.Load() }

// MainNotifier is the Notifier used when the waiter is the driving
// goroutine's own stack rather than a spawned fiber. SetReady only flips the
// flag; the waiting side pumps [Scheduler.Run] until IsReady reports true.
type MainNotifier struct {
	ready atomic.Bool
}

// SetReady marks the notifier ready. Idempotent.
func (n *MainNotifier) SetReady() { n.ready.Store(true) }

// IsReady reports whether SetReady has been called.
func (n *MainNotifier) IsReady() bool { return n.ready.Load() }
