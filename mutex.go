package fiber

import (
	"runtime"
	"sync/atomic"
	"time"
)

const (
	mutexUnlocked uint32 = iota
	mutexLocked
)

// RecursiveTimedMutex is a re-entrant mutex for fibers, with timed
// acquisition. The owner may lock it repeatedly; it is released only after a
// matching number of unlocks. Blocked acquirers suspend via their scheduler
// (or pump it, on the main path) and are woken one at a time, in FIFO order,
// as the mutex is released.
//
// Fairness is FIFO across waiters within a single release, but a woken
// waiter races with concurrently arriving lock attempts that hit the CAS
// fast path; the mutex guarantees eventual forward progress for each waiter
// while its scheduler pumps, not hand-off.
//
// The zero value is an unlocked mutex.
type RecursiveTimedMutex struct {
	state atomic.Uint32

	// owner and count are meaningful only while state is locked, and are
	// touched only by the owner
	owner ID
	count int

	// waiting is the FIFO of blocked acquirers' notifiers, guarded by splk
	splk    spinLock
	waiting []Notifier
}

// Lock acquires the mutex, suspending the calling fiber until it is
// available. If the caller already owns the mutex the recursion count is
// incremented instead.
func (m *RecursiveTimedMutex) Lock() {
	s := Current()
	if m.state.Load() == mutexLocked && m.owner == s.currentID() {
		m.count++
		return
	}

	for !m.state.CompareAndSwap(mutexUnlocked, mutexLocked) {
		if n := s.notifier(); n != nil {
			m.pushWaiter(n)
			m.waitFiber(s, n)
		} else {
			n := new(MainNotifier)
			m.pushWaiter(n)
			for !n.IsReady() {
				if !s.Run() {
					runtime.Gosched()
				}
			}
		}
	}

	if m.owner != 0 || m.count != 0 {
		panic(`fiber: mutex acquired while owned`)
	}
	m.owner = s.currentID()
	m.count = 1
}

// waitFiber parks the calling fiber until its notifier fires. If the wait
// unwinds (cancellation), the notifier is removed from the waiter list
// before the panic continues.
func (m *RecursiveTimedMutex) waitFiber(s *Scheduler, n Notifier) {
	defer func() {
		if r := recover(); r != nil {
			m.removeWaiter(n)
			panic(r)
		}
	}()
	s.Wait()
}

// TryLock attempts to acquire the mutex without blocking, reporting success.
// The re-entrant fast path applies. On failure the caller is yielded once,
// so holders get a chance to release before a retry loop spins.
func (m *RecursiveTimedMutex) TryLock() bool {
	s := Current()
	if m.state.Load() == mutexLocked && m.owner == s.currentID() {
		m.count++
		return true
	}

	if !m.state.CompareAndSwap(mutexUnlocked, mutexLocked) {
		if s.Active() != nil {
			s.Yield()
		} else {
			s.Run()
		}
		return false
	}

	m.owner = s.currentID()
	m.count = 1
	return true
}

// TryLockFor acquires the mutex, giving up after d, reporting success.
func (m *RecursiveTimedMutex) TryLockFor(d time.Duration) bool {
	return m.TryLockUntil(time.Now().Add(d))
}

// TryLockUntil acquires the mutex, giving up once the deadline is reached,
// reporting success. The re-entrant fast path applies. On timeout the
// caller's notifier is removed from the waiter list before returning; a
// release that raced ahead and already marked the notifier ready does not
// rescue an expired attempt.
func (m *RecursiveTimedMutex) TryLockUntil(deadline time.Time) bool {
	s := Current()
	if m.state.Load() == mutexLocked && m.owner == s.currentID() {
		m.count++
		return true
	}

	acquired := false
	for time.Now().Before(deadline) {
		if m.state.CompareAndSwap(mutexUnlocked, mutexLocked) {
			acquired = true
			break
		}

		if n := s.notifier(); n != nil {
			m.pushWaiter(n)
			if !m.waitFiberUntil(s, n, deadline) {
				m.removeWaiter(n)
				return false
			}
		} else {
			n := new(MainNotifier)
			m.pushWaiter(n)
			expired := false
			for !n.IsReady() {
				if !time.Now().Before(deadline) {
					expired = true
					break
				}
				if !s.Run() {
					runtime.Gosched()
				}
			}
			if expired {
				m.removeWaiter(n)
				return false
			}
		}
	}

	if !acquired {
		return false
	}

	if m.owner != 0 || m.count != 0 {
		panic(`fiber: mutex acquired while owned`)
	}
	m.owner = s.currentID()
	m.count = 1
	return true
}

// waitFiberUntil parks the calling fiber until its notifier fires or the
// deadline is reached, reporting true if notified. Cancellation removes the
// notifier before the panic continues.
func (m *RecursiveTimedMutex) waitFiberUntil(s *Scheduler, n Notifier, deadline time.Time) bool {
	defer func() {
		if r := recover(); r != nil {
			m.removeWaiter(n)
			panic(r)
		}
	}()
	return s.WaitUntil(deadline)
}

// Unlock releases one level of ownership. When the recursion count reaches
// zero the mutex is unlocked and the front waiter, if any, is woken.
// Unlocking an unlocked mutex, or from a non-owner, is a contract violation.
func (m *RecursiveTimedMutex) Unlock() {
	s := Current()
	if m.state.Load() != mutexLocked {
		panic(`fiber: unlock of an unlocked mutex`)
	}
	if m.owner != s.currentID() {
		panic(`fiber: unlock by a non-owner`)
	}

	m.count--
	if m.count > 0 {
		return
	}

	var n Notifier
	m.splk.lock()
	if len(m.waiting) > 0 {
		n = m.waiting[0]
		m.waiting[0] = nil
		m.waiting = m.waiting[1:]
	}
	m.splk.unlock()

	m.owner = 0
	m.state.Store(mutexUnlocked)

	if n != nil {
		n.SetReady()
	}
}

func (m *RecursiveTimedMutex) pushWaiter(n Notifier) {
	m.splk.lock()
	m.waiting = append(m.waiting, n)
	m.splk.unlock()
}

func (m *RecursiveTimedMutex) removeWaiter(n Notifier) {
	m.splk.lock()
	for i, w := range m.waiting {
		if w == n {
			m.waiting = append(m.waiting[:i], m.waiting[i+1:]...)
			break
		}
	}
	m.splk.unlock()
}
