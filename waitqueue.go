package fiber

import (
	"container/heap"
	"time"
)

// schedulable pairs a waiting fiber with an optional absolute deadline. It is
// the unit stored in the waiting set. Two records are the same record iff
// their fibers are the same fiber.
type schedulable struct {
	f *Fiber

	// deadline is the absolute wake time; the zero value means wait
	// indefinitely, in which case the record never participates in deadline
	// scans.
	deadline time.Time

	// notified is set by Scheduler.Notify and left clear by the deadline
	// sweep, disambiguating the outcome of a timed wait.
	notified bool

	// index is the record's position in the deadline heap, -1 while absent
	index int
}

func (rec *schedulable) hasDeadline() bool { return !rec.deadline.IsZero() }

// deadlineHeap is a min-heap of timed records ordered by deadline, with index
// maintenance so arbitrary removal is O(log n).
type deadlineHeap []*schedulable

func (h deadlineHeap) Len() int { return len(h) }

func (h deadlineHeap) Less(i, j int) bool { return h[i].deadline.Before(h[j].deadline) }

func (h deadlineHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *deadlineHeap) Push(x any) {
	rec := x.(*schedulable)
	rec.index = len(*h)
	*h = append(*h, rec)
}

func (h *deadlineHeap) Pop() any {
	old := *h
	n := len(old)
	rec := old[n-1]
	old[n-1] = nil
	rec.index = -1
	*h = old[:n-1]
	return rec
}

// waitQueue is the scheduler's waiting set, indexed two ways: by fiber
// identity for removal on notify/cancel, and by deadline for expiry scans.
// Both indices are updated together, before any suspension point, so they
// are never observed out of lockstep.
type waitQueue struct {
	byFiber    map[ID]*schedulable
	byDeadline deadlineHeap
}

func newWaitQueue() *waitQueue {
	return &waitQueue{byFiber: make(map[ID]*schedulable)}
}

func (q *waitQueue) len() int { return len(q.byFiber) }

// insert adds a record to the waiting set. A fiber appears at most once.
func (q *waitQueue) insert(rec *schedulable) {
	if _, ok := q.byFiber[rec.f.id]; ok {
		panic(`fiber: fiber is already waiting`)
	}
	rec.index = -1
	q.byFiber[rec.f.id] = rec
	if rec.hasDeadline() {
		heap.Push(&q.byDeadline, rec)
	}
}

// remove erases the record for f from both indices, reporting whether one
// was present.
func (q *waitQueue) remove(f *Fiber) (*schedulable, bool) {
	rec, ok := q.byFiber[f.id]
	if !ok {
		return nil, false
	}
	delete(q.byFiber, f.id)
	if rec.index >= 0 {
		heap.Remove(&q.byDeadline, rec.index)
	}
	return rec, true
}

// expired pops every record whose deadline is at or before now. Untimed
// records are never returned.
func (q *waitQueue) expired(now time.Time) []*schedulable {
	var out []*schedulable
	for len(q.byDeadline) > 0 && !q.byDeadline[0].deadline.After(now) {
		rec := heap.Pop(&q.byDeadline).(*schedulable)
		delete(q.byFiber, rec.f.id)
		out = append(out, rec)
	}
	return out
}
