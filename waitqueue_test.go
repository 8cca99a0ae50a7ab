package fiber

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitQueueDualIndex(t *testing.T) {
	q := newWaitQueue()
	now := time.Now()

	a := NewFiber(func() {})
	b := NewFiber(func() {})
	c := NewFiber(func() {})

	q.insert(&schedulable{f: a, deadline: now.Add(time.Second)})
	q.insert(&schedulable{f: b}) // untimed
	q.insert(&schedulable{f: c, deadline: now.Add(time.Minute)})

	require.Equal(t, 3, q.len())
	require.Equal(t, 2, q.byDeadline.Len())

	rec, ok := q.remove(a)
	require.True(t, ok)
	require.Same(t, a, rec.f)
	require.Equal(t, 2, q.len())
	require.Equal(t, 1, q.byDeadline.Len())

	_, ok = q.remove(a)
	assert.False(t, ok)

	rec, ok = q.remove(b)
	require.True(t, ok)
	require.Same(t, b, rec.f)
	require.Equal(t, 1, q.byDeadline.Len())
}

func TestWaitQueueExpiredSkipsUntimed(t *testing.T) {
	q := newWaitQueue()
	now := time.Now()

	timed := NewFiber(func() {})
	untimed := NewFiber(func() {})

	q.insert(&schedulable{f: timed, deadline: now.Add(-time.Second)})
	q.insert(&schedulable{f: untimed})

	expired := q.expired(now)
	require.Len(t, expired, 1)
	require.Same(t, timed, expired[0].f)

	// the indefinite waiter stays put, no matter how far time advances
	require.Empty(t, q.expired(now.Add(time.Hour)))
	require.Equal(t, 1, q.len())
}

func TestWaitQueueExpiredOrderAndBoundary(t *testing.T) {
	q := newWaitQueue()
	now := time.Now()

	f1 := NewFiber(func() {})
	f2 := NewFiber(func() {})
	f3 := NewFiber(func() {})

	q.insert(&schedulable{f: f2, deadline: now.Add(20 * time.Millisecond)})
	q.insert(&schedulable{f: f3, deadline: now.Add(30 * time.Millisecond)})
	q.insert(&schedulable{f: f1, deadline: now.Add(10 * time.Millisecond)})

	// deadline equal to now counts as reached
	expired := q.expired(now.Add(20 * time.Millisecond))
	require.Len(t, expired, 2)
	assert.Same(t, f1, expired[0].f)
	assert.Same(t, f2, expired[1].f)

	require.Equal(t, 1, q.len())
	expired = q.expired(now.Add(time.Second))
	require.Len(t, expired, 1)
	assert.Same(t, f3, expired[0].f)
	require.Equal(t, 0, q.len())
}

func TestWaitQueueDuplicateInsertPanics(t *testing.T) {
	q := newWaitQueue()

	f := NewFiber(func() {})
	q.insert(&schedulable{f: f})

	require.PanicsWithValue(t, `fiber: fiber is already waiting`, func() {
		q.insert(&schedulable{f: f, deadline: time.Now()})
	})
}
