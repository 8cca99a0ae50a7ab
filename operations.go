package fiber

import (
	"time"
)

// CurrentID returns the identity of the calling fiber, or the zero ID when
// called from outside any fiber.
func CurrentID() ID {
	return Current().currentID()
}

// Yield reschedules the calling fiber behind every other currently runnable
// fiber of its scheduler. From the main path it instead runs at most one
// fiber, which keeps retry loops cooperative wherever they are written.
func Yield() {
	s := Current()
	if s.Active() != nil {
		s.Yield()
	} else {
		s.Run()
	}
}

// SleepUntil suspends the caller until the deadline has been reached. A
// calling fiber is parked with the deadline and woken by the scheduler's
// sweep; the main path pumps the scheduler until the deadline passes,
// briefly sleeping whenever nothing is runnable.
func SleepUntil(deadline time.Time) {
	s := Current()
	if s.Active() != nil {
		s.SleepUntil(deadline)
		return
	}
	for deadline.After(time.Now()) {
		if !s.Run() {
			d := time.Until(deadline)
			if d > time.Millisecond {
				d = time.Millisecond
			}
			if d > 0 {
				time.Sleep(d)
			}
		}
	}
}

// SleepFor suspends the caller for at least d. It computes the absolute
// deadline once, then behaves as SleepUntil.
func SleepFor(d time.Duration) {
	SleepUntil(time.Now().Add(d))
}
