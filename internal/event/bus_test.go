package event

import (
	"testing"
)

func TestEmit_SubscriptionOrder(t *testing.T) {
	b := NewBus(nil)
	var got []int
	b.On("tick", func(any) { got = append(got, 1) })
	b.On("tick", func(any) { got = append(got, 2) })
	b.On("tick", func(any) { got = append(got, 3) })

	b.Emit("tick", nil)
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("want [1 2 3], got %v", got)
	}
}

func TestEmit_PanickingHandlerIsIsolated(t *testing.T) {
	b := NewBus(nil)
	var after bool
	b.On("tick", func(any) { panic("boom") })
	b.On("tick", func(any) { after = true })

	b.Emit("tick", nil) // must not panic the emitter
	if !after {
		t.Fatal("handler after a panicking one did not run")
	}
}

func TestOff_RemovesOnlyThatHandler(t *testing.T) {
	b := NewBus(nil)
	var a, c int
	subA := b.On("tick", func(any) { a++ })
	b.On("tick", func(any) { c++ })

	b.Emit("tick", nil)
	b.Off(subA)
	b.Emit("tick", nil)

	if a != 1 || c != 2 {
		t.Fatalf("want a=1 c=2, got a=%d c=%d", a, c)
	}

	// removing twice is a no-op
	b.Off(subA)
	b.Emit("tick", nil)
	if c != 3 {
		t.Fatalf("want c=3, got %d", c)
	}
}

func TestEmit_PayloadDelivered(t *testing.T) {
	b := NewBus(nil)
	var got any
	b.On("data", func(p any) { got = p })
	b.Emit("data", 42)
	if got != 42 {
		t.Fatalf("want 42, got %v", got)
	}
}

func TestRemoveAll(t *testing.T) {
	b := NewBus(nil)
	var n int
	b.On("x", func(any) { n++ })
	b.On("y", func(any) { n++ })
	b.RemoveAll()
	b.Emit("x", nil)
	b.Emit("y", nil)
	if n != 0 {
		t.Fatalf("handlers ran after RemoveAll: %d", n)
	}
}
