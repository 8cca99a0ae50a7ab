// Package fiber provides lightweight, cooperatively scheduled coroutines
// ("fibers") multiplexed onto a single driving goroutine, together with the
// primitives needed to coordinate them: spawning, joining, cancellation,
// notification, voluntary yield, deadline-based sleep, and a re-entrant mutex
// with timed acquisition.
//
// # Architecture
//
// A [Scheduler] owns the fibers it runs. At most one fiber of a scheduler
// executes at any instant; control moves between fibers only at explicit
// suspension points ([Scheduler.Wait], [Scheduler.WaitUntil],
// [Scheduler.Yield], [Scheduler.SleepUntil], and the body of
// [Scheduler.Spawn] or [Scheduler.Run] while a fiber executes). There is no
// preemption, no work stealing, and fibers never migrate between schedulers.
//
// Each fiber is backed by a goroutine, but the goroutines never run
// concurrently: control is handed off over unbuffered channels, so resuming a
// fiber blocks the resumer until the fiber suspends or completes. The effect
// is a stackful coroutine, with ordinary Go stacks, defers, and panics.
//
// Runnable fibers sit in an ordered run queue; [Scheduler.Notify] inserts at
// the front (freshly ready fibers win over yielders) while [Scheduler.Yield]
// appends at the back. Fibers blocked with a deadline are indexed both by
// identity and by deadline, and each [Scheduler.Run] call first promotes
// every waiter whose deadline has been reached.
//
// # The current scheduler
//
// [Current] returns the calling goroutine's scheduler, lazily constructing
// one on first use. Fiber bodies resolve to the scheduler that owns them, so
// free functions such as [Yield], [SleepFor], and [CurrentID] work both from
// inside fibers and from the driving goroutine. A goroutine that is not
// running under a spawned fiber (the "main" path) blocks on primitives by
// pumping [Scheduler.Run] until a [Notifier] reports ready.
//
// # Cancellation
//
// [Scheduler.Cancel] unwinds the target fiber's stack by resuming it into a
// cancellation path: the fiber's pending suspension panics with
// [ErrFiberCanceled], deferred cleanup runs as usual, and the panic is
// recovered at the fiber entry point. Primitives that register waiter state
// remove it on that path, so a canceled fiber never leaves bookkeeping
// behind.
//
// # Errors and contract violations
//
// Timeouts are not errors; they surface as the boolean results of
// [Scheduler.WaitUntil] and [RecursiveTimedMutex.TryLockUntil]. Precondition
// breaches that are the caller's responsibility (resuming a complete fiber,
// unlocking from a non-owner, canceling the active fiber) panic with a
// "fiber: "-prefixed message.
//
// # Logging
//
// Schedulers optionally emit structured trace events via
// [github.com/joeycumines/logiface], configured with [WithLogger]. Logging
// is disabled by default and costs nothing when off.
package fiber
