package fiber

import (
	"time"

	"github.com/joeycumines/logiface"
)

// Scheduler multiplexes fibers onto the goroutine that drives it. All
// scheduling is cooperative and logically single-threaded: at most one fiber
// of a scheduler executes at any instant, and the scheduler's own state needs
// no locking.
//
// A Scheduler must be driven by one goroutine at a time. Use [Current] for
// the implicit per-goroutine instance, or [New] for an explicit one.
type Scheduler struct {
	// active identifies the currently executing fiber, nil when control is
	// on the driving goroutine's own stack
	active *Fiber

	rqueue runQueue
	wqueue *waitQueue

	log *logiface.Logger[logiface.Event]
}

// New constructs a scheduler and registers it as the calling goroutine's
// current scheduler, replacing any previous registration for this goroutine.
func New(options ...Option) *Scheduler {
	cfg := resolveOptions(options)
	s := &Scheduler{
		wqueue: newWaitQueue(),
		log:    cfg.logger,
	}
	bindGoroutine(s)
	return s
}

// Active returns the currently executing fiber, or nil when the scheduler is
// being driven from the main path.
func (s *Scheduler) Active() *Fiber { return s.active }

// currentID is the identity of the caller: the active fiber's ID, or the
// zero ID on the main path.
func (s *Scheduler) currentID() ID {
	if s.active != nil {
		return s.active.id
	}
	return 0
}

// mustActive returns the active fiber, panicking if the scheduler is being
// driven from main. Used by operations that are only meaningful on a fiber's
// own stack.
func (s *Scheduler) mustActive() *Fiber {
	f := s.active
	if f == nil {
		panic(`fiber: no active fiber`)
	}
	return f
}

// Spawn resumes f for the first time, running it until its first suspension
// or completion. The previously active fiber, if any, is restored on every
// exit path, including a panic unwinding out of f.
func (s *Scheduler) Spawn(f *Fiber) {
	if f == nil {
		panic(`fiber: nil fiber`)
	}
	if f.IsComplete() {
		panic(`fiber: spawn of a complete fiber`)
	}
	if f == s.active {
		panic(`fiber: spawn of the active fiber`)
	}
	f.sched = s
	s.log.Trace().
		Uint64(`fiber`, uint64(f.id)).
		Log(`spawn`)
	prev := s.active
	defer func() { s.active = prev }()
	s.active = f
	f.resume(signalResume)
}

// Join blocks until f completes. From within a fiber, the active fiber is
// registered as a joiner on f and suspended; f's completion notifies it.
// From the main path, the scheduler is pumped until f completes. Joining a
// complete fiber returns immediately.
func (s *Scheduler) Join(f *Fiber) {
	if f == nil {
		panic(`fiber: nil fiber`)
	}
	if f == s.active {
		panic(`fiber: join of the active fiber`)
	}
	if f.IsComplete() {
		return
	}
	if s.active != nil {
		f.join(s.active)
		s.Wait()
	} else {
		for !f.IsComplete() {
			s.Run()
		}
	}
}

// Cancel unwinds f's stack, leaving it complete, and removes it from the
// waiting set. Canceling a complete fiber is a no-op; canceling the active
// fiber is a contract violation. Joiners of f are notified in the course of
// the unwind.
func (s *Scheduler) Cancel(f *Fiber) {
	if f == nil {
		panic(`fiber: nil fiber`)
	}
	if f == s.active {
		panic(`fiber: cancel of the active fiber`)
	}
	if f.IsComplete() {
		return
	}
	f.sched = s
	s.log.Debug().
		Uint64(`fiber`, uint64(f.id)).
		Log(`cancel`)
	prev := s.active
	func() {
		defer func() { s.active = prev }()
		s.active = f
		f.terminate()
	}()
	s.wqueue.remove(f)
}

// Notify moves a waiting fiber to the front of the run queue. It is the one
// legitimate path by which a waiter re-enters the scheduler; primitives call
// it (via a [Notifier]) when the wait condition is satisfied. The fiber must
// not be complete, resumed, or the active fiber.
func (s *Scheduler) Notify(f *Fiber) {
	if f == nil {
		panic(`fiber: nil fiber`)
	}
	if f.IsComplete() {
		panic(`fiber: notify of a complete fiber`)
	}
	if f.IsResumed() {
		panic(`fiber: notify of a resumed fiber`)
	}
	if f == s.active {
		panic(`fiber: notify of the active fiber`)
	}
	if rec, ok := s.wqueue.remove(f); ok {
		rec.notified = true
	}
	s.log.Trace().
		Uint64(`fiber`, uint64(f.id)).
		Log(`notify`)
	s.rqueue.pushFront(f)
}

// Run executes at most one fiber, returning true if one ran. Waiters whose
// deadline has been reached are first promoted to the front of the run
// queue; the queue is then drained from the front, skipping fibers that
// completed after being enqueued (e.g. canceled before their turn).
func (s *Scheduler) Run() bool {
	if expired := s.wqueue.expired(time.Now()); len(expired) > 0 {
		s.log.Trace().
			Int(`expired`, len(expired)).
			Log(`deadline sweep`)
		for _, rec := range expired {
			s.rqueue.pushFront(rec.f)
		}
	}

	var f *Fiber
	for {
		next, ok := s.rqueue.popFront()
		if !ok {
			return false
		}
		if !next.IsComplete() {
			f = next
			break
		}
	}

	prev := s.active
	defer func() { s.active = prev }()
	s.active = f
	f.resume(signalResume)
	return true
}

// Wait suspends the active fiber indefinitely. It returns once another agent
// has removed the fiber from the waiting set via [Scheduler.Notify]; a
// cancellation instead panics with [ErrFiberCanceled] out of this call.
func (s *Scheduler) Wait() {
	f := s.mustActive()
	s.wqueue.insert(&schedulable{f: f})
	f.suspend()
}

// WaitUntil suspends the active fiber until it is notified or the deadline
// is reached, reporting true if it was notified. A deadline at or before now
// returns false without suspending.
func (s *Scheduler) WaitUntil(deadline time.Time) bool {
	f := s.mustActive()
	if !deadline.After(time.Now()) {
		return false
	}
	rec := &schedulable{f: f, deadline: deadline}
	s.wqueue.insert(rec)
	f.suspend()
	// Either Notify or the deadline sweep removed the record before the
	// fiber could be resumed; the record carries which one it was.
	s.wqueue.remove(f)
	return rec.notified
}

// Yield reschedules the active fiber behind every other runnable fiber: it
// is appended at the back of the run queue and suspended. Fibers made
// runnable by Notify while the yielder waits still jump ahead of it.
func (s *Scheduler) Yield() {
	f := s.mustActive()
	s.rqueue.pushBack(f)
	f.suspend()
}

// SleepUntil suspends the active fiber until the deadline has been reached,
// woken by the deadline sweep in [Scheduler.Run]. A deadline at or before
// now returns immediately.
func (s *Scheduler) SleepUntil(deadline time.Time) {
	f := s.mustActive()
	if !deadline.After(time.Now()) {
		return
	}
	s.wqueue.insert(&schedulable{f: f, deadline: deadline})
	f.suspend()
}

// notifier returns a wake capability for the active fiber, or nil when the
// scheduler is driven from main (in which case callers use a MainNotifier
// and pump Run). The notifier is single-use: SetReady is idempotent.
func (s *Scheduler) notifier() Notifier {
	if s.active == nil {
		return nil
	}
	return &fiberNotifier{s: s, f: s.active}
}

// Close unregisters the scheduler from the calling goroutine. It panics if
// fibers are still runnable or waiting; drive them to completion (or cancel
// them) first.
func (s *Scheduler) Close() {
	if s.rqueue.len() != 0 || s.wqueue.len() != 0 {
		panic(`fiber: close of a scheduler with queued fibers`)
	}
	unbindScheduler(s)
}
