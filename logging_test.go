package fiber

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
	"github.com/stretchr/testify/require"
)

func TestSchedulerStructuredLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(&buf), stumpy.WithTimeField(``)),
		stumpy.L.WithLevel(logiface.LevelTrace),
	)

	s := New(WithLogger(logger.Logger()))

	sleeper := NewFiber(func() {
		s.SleepUntil(time.Now().Add(time.Millisecond))
	})
	waiter := NewFiber(func() {
		s.Wait()
	})
	doomed := NewFiber(func() {
		s.Wait()
	})

	s.Spawn(sleeper)
	s.Spawn(waiter)
	s.Spawn(doomed)

	s.Notify(waiter)
	s.Cancel(doomed)

	time.Sleep(5 * time.Millisecond)
	for s.Run() {
	}
	s.Join(sleeper)
	s.Join(waiter)

	out := buf.String()
	require.Contains(t, out, `"msg":"spawn"`)
	require.Contains(t, out, `"msg":"notify"`)
	require.Contains(t, out, `"msg":"cancel"`)
	require.Contains(t, out, `"msg":"deadline sweep"`)
	require.Contains(t, out, `"fiber":`)

	// three spawns, one per fiber
	require.Equal(t, 3, strings.Count(out, `"msg":"spawn"`))
}

func TestSchedulerLoggingDisabledByDefault(t *testing.T) {
	s := New()

	f := NewFiber(func() {
		Yield()
	})
	s.Spawn(f)
	s.Join(f)
	// nothing to assert beyond "does not crash": the nil logger is a no-op
	require.True(t, f.IsComplete())
}
