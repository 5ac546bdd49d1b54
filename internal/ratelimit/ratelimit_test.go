package ratelimit

import (
	"testing"

	"github.com/benbjohnson/clock"
)

func TestTryAcquire_EnforcesLimitWithinWindow(t *testing.T) {
	clk := clock.NewMock()
	l := New(clk, map[string]int{"ecb": 5})

	for i := 0; i < 5; i++ {
		if !l.TryAcquire("ecb") {
			t.Fatalf("call %d should be admitted", i+1)
		}
	}
	if l.TryAcquire("ecb") {
		t.Fatal("6th call within the window must be rejected")
	}
}

func TestTryAcquire_WindowRollover(t *testing.T) {
	clk := clock.NewMock()
	l := New(clk, map[string]int{"ecb": 2})

	if !l.TryAcquire("ecb") || !l.TryAcquire("ecb") {
		t.Fatal("first two calls should be admitted")
	}
	if l.TryAcquire("ecb") {
		t.Fatal("limit reached, call must be rejected")
	}

	clk.Add(WindowLength)
	if !l.TryAcquire("ecb") {
		t.Fatal("call after window elapsed must be admitted again")
	}
}

func TestTryAcquire_UnknownSourceFailsClosed(t *testing.T) {
	clk := clock.NewMock()
	l := New(clk, map[string]int{"ecb": 5})

	if l.TryAcquire("mystery") {
		t.Fatal("unconfigured source must be rejected")
	}
}

func TestTryAcquire_ZeroLimitRejects(t *testing.T) {
	clk := clock.NewMock()
	l := New(clk, map[string]int{"ecb": 0})

	if l.TryAcquire("ecb") {
		t.Fatal("zero limit must reject")
	}
}

func TestRemaining(t *testing.T) {
	clk := clock.NewMock()
	l := New(clk, map[string]int{"ecb": 3})

	if got := l.Remaining("ecb"); got != 3 {
		t.Fatalf("want 3, got %d", got)
	}
	l.TryAcquire("ecb")
	l.TryAcquire("ecb")
	if got := l.Remaining("ecb"); got != 1 {
		t.Fatalf("want 1, got %d", got)
	}
	clk.Add(WindowLength)
	if got := l.Remaining("ecb"); got != 3 {
		t.Fatalf("want 3 after rollover, got %d", got)
	}
	if got := l.Remaining("mystery"); got != 0 {
		t.Fatalf("unknown source should report 0, got %d", got)
	}
}

func TestReset_ClearsWindowState(t *testing.T) {
	clk := clock.NewMock()
	l := New(clk, map[string]int{"ecb": 1})

	l.TryAcquire("ecb")
	if l.TryAcquire("ecb") {
		t.Fatal("limit reached")
	}
	l.Reset()
	if !l.TryAcquire("ecb") {
		t.Fatal("reset should start a new window")
	}
}
