package fiber

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewFiberNilEntryPanics(t *testing.T) {
	require.PanicsWithValue(t, `fiber: nil entry function`, func() {
		NewFiber(nil)
	})
}

func TestFiberIDsUniqueAndOrdered(t *testing.T) {
	a := NewFiber(func() {})
	b := NewFiber(func() {})
	c := NewFiber(func() {})

	if a.ID() == b.ID() || b.ID() == c.ID() {
		t.Fatalf("expected unique ids, got %d %d %d", a.ID(), b.ID(), c.ID())
	}
	if !(a.ID() < b.ID() && b.ID() < c.ID()) {
		t.Errorf("expected ascending ids, got %d %d %d", a.ID(), b.ID(), c.ID())
	}
}

func TestFiberLifecycleFlags(t *testing.T) {
	s := New()

	f := NewFiber(func() {
		Yield()
	})

	require.False(t, f.IsComplete())
	require.False(t, f.IsResumed())

	var sawResumed bool
	probe := NewFiber(func() {
		// f suspended in yield: not resumed, not complete
		sawResumed = f.IsResumed()
	})

	s.Spawn(f) // runs until its yield
	require.False(t, f.IsComplete())
	require.False(t, f.IsResumed())

	s.Spawn(probe)
	s.Join(probe)
	require.False(t, sawResumed)

	s.Join(f)
	require.True(t, f.IsComplete())
	require.False(t, f.IsResumed())
}

func TestFiberPanicPropagatesToResumer(t *testing.T) {
	s := New()

	f := NewFiber(func() {
		panic(`boom`)
	})

	require.PanicsWithValue(t, `boom`, func() {
		s.Spawn(f)
	})

	// the unwind still completed the fiber and restored the active slot
	require.True(t, f.IsComplete())
	require.Nil(t, s.Active())
}

func TestCancelUnstartedFiberNotifiesJoiners(t *testing.T) {
	s := New()

	target := NewFiber(func() {})

	var joined bool
	waiter := NewFiber(func() {
		s.Join(target)
		joined = true
	})

	s.Spawn(waiter) // parks as a joiner on target
	require.False(t, joined)

	s.Cancel(target) // never started: completes without an unwind
	require.True(t, target.IsComplete())

	s.Join(waiter)
	require.True(t, joined)
}

func TestJoinCompletedFiberReturnsImmediately(t *testing.T) {
	s := New()

	f := NewFiber(func() {})
	s.Spawn(f)
	require.True(t, f.IsComplete())

	s.Join(f) // must not block or panic
}
