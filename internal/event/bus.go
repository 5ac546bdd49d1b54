package event

import (
	"log/slog"
	"sync"
)

// Handler receives the payload published with Emit.
type Handler func(payload any)

// Subscription identifies a single registered handler so it can be
// removed later. Function values are not comparable in Go, so Off takes
// the handle returned by On instead of the handler itself.
type Subscription struct {
	name string
	id   uint64
}

type subscriber struct {
	id uint64
	fn Handler
}

// Bus is a minimal synchronous publish/subscribe dispatcher.
// Handlers for an event run in subscription order on the emitter's
// goroutine. A panicking handler is recovered so it cannot stop later
// handlers or reach the emitter.
type Bus struct {
	mu     sync.Mutex
	seq    uint64
	subs   map[string][]subscriber
	logger *slog.Logger
}

func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{subs: make(map[string][]subscriber), logger: logger}
}

// On registers fn for the named event and returns its subscription handle.
func (b *Bus) On(name string, fn Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	b.subs[name] = append(b.subs[name], subscriber{id: b.seq, fn: fn})
	return Subscription{name: name, id: b.seq}
}

// Off removes the handler identified by sub. Unknown handles are ignored.
func (b *Bus) Off(sub Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.subs[sub.name]
	for i, s := range list {
		if s.id == sub.id {
			b.subs[sub.name] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// Emit delivers payload to every handler registered for name, in
// subscription order.
func (b *Bus) Emit(name string, payload any) {
	b.mu.Lock()
	list := make([]subscriber, len(b.subs[name]))
	copy(list, b.subs[name])
	b.mu.Unlock()

	for _, s := range list {
		b.dispatch(name, s, payload)
	}
}

func (b *Bus) dispatch(name string, s subscriber, payload any) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked", "event", name, "panic", r)
		}
	}()
	s.fn(payload)
}

// RemoveAll drops every subscription on the bus.
func (b *Bus) RemoveAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = make(map[string][]subscriber)
}
