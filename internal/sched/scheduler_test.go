package sched

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"
)

func waitForCount(t *testing.T, c *atomic.Int64, want int64) {
	t.Helper()
	require.Eventually(t, func() bool { return c.Load() == want },
		2*time.Second, time.Millisecond, "want %d runs, got %d", want, c.Load())
}

func TestRegister_FiresImmediatelyThenOnInterval(t *testing.T) {
	clk := clock.NewMock()
	s := New(clk, nil)
	defer s.Destroy()

	var runs atomic.Int64
	require.NoError(t, s.Register("rates", time.Minute, func(context.Context) { runs.Add(1) }))
	waitForCount(t, &runs, 1)

	clk.Add(time.Minute)
	waitForCount(t, &runs, 2)

	clk.Add(time.Minute)
	waitForCount(t, &runs, 3)
}

func TestPauseAll_NoTicksWhilePaused(t *testing.T) {
	clk := clock.NewMock()
	s := New(clk, nil)
	defer s.Destroy()

	var runs atomic.Int64
	require.NoError(t, s.Register("rates", time.Minute, func(context.Context) { runs.Add(1) }))
	waitForCount(t, &runs, 1)

	s.PauseAll()
	require.Equal(t, Paused, s.StateNow())

	clk.Add(5 * time.Minute)
	time.Sleep(20 * time.Millisecond)
	require.EqualValues(t, 1, runs.Load(), "paused scheduler must not tick")
}

func TestResumeAll_RefiresEachJobOnce(t *testing.T) {
	clk := clock.NewMock()
	s := New(clk, nil)
	defer s.Destroy()

	var a, b atomic.Int64
	require.NoError(t, s.Register("a", time.Minute, func(context.Context) { a.Add(1) }))
	require.NoError(t, s.Register("b", time.Hour, func(context.Context) { b.Add(1) }))
	waitForCount(t, &a, 1)
	waitForCount(t, &b, 1)

	s.PauseAll()
	s.ResumeAll()
	waitForCount(t, &a, 2)
	waitForCount(t, &b, 2)

	// interval schedule continues after resume
	clk.Add(time.Minute)
	waitForCount(t, &a, 3)
	require.EqualValues(t, 2, b.Load())
}

func TestRegister_WhilePausedDefersUntilResume(t *testing.T) {
	clk := clock.NewMock()
	s := New(clk, nil)
	defer s.Destroy()

	s.PauseAll()

	var runs atomic.Int64
	require.NoError(t, s.Register("rates", time.Minute, func(context.Context) { runs.Add(1) }))
	clk.Add(time.Minute)
	time.Sleep(20 * time.Millisecond)
	require.EqualValues(t, 0, runs.Load(), "job must not fire while paused")

	s.ResumeAll()
	waitForCount(t, &runs, 1)
}

func TestRegister_ReplacesExistingTimer(t *testing.T) {
	clk := clock.NewMock()
	s := New(clk, nil)
	defer s.Destroy()

	var old, current atomic.Int64
	require.NoError(t, s.Register("rates", time.Minute, func(context.Context) { old.Add(1) }))
	waitForCount(t, &old, 1)

	require.NoError(t, s.Register("rates", time.Minute, func(context.Context) { current.Add(1) }))
	waitForCount(t, &current, 1)

	clk.Add(time.Minute)
	waitForCount(t, &current, 2)
	require.EqualValues(t, 1, old.Load(), "replaced handler must not run again")
}

func TestDestroy_IsTerminal(t *testing.T) {
	clk := clock.NewMock()
	s := New(clk, nil)

	var runs atomic.Int64
	require.NoError(t, s.Register("rates", time.Minute, func(context.Context) { runs.Add(1) }))
	waitForCount(t, &runs, 1)

	s.Destroy()
	require.Equal(t, Destroyed, s.StateNow())
	require.Empty(t, s.Jobs())

	clk.Add(time.Minute)
	time.Sleep(20 * time.Millisecond)
	require.EqualValues(t, 1, runs.Load())

	require.ErrorIs(t, s.Register("again", time.Minute, func(context.Context) {}), ErrDestroyed)

	// Destroy twice is harmless
	s.Destroy()
}

func TestPanickingHandlerKeepsRecurring(t *testing.T) {
	clk := clock.NewMock()
	s := New(clk, nil)
	defer s.Destroy()

	var runs atomic.Int64
	require.NoError(t, s.Register("flaky", time.Minute, func(context.Context) {
		runs.Add(1)
		panic("provider exploded")
	}))
	waitForCount(t, &runs, 1)

	clk.Add(time.Minute)
	waitForCount(t, &runs, 2)
}
