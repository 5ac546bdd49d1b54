package ratelimit

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// WindowLength is the rolling window over which per-source request
// counts apply. The window resets wholesale when it elapses rather than
// sliding per request.
const WindowLength = 60 * time.Second

type window struct {
	count int
	start time.Time
}

// Limiter bounds outbound request volume per source within a rolling
// window. Attempts beyond a source's limit are rejected, not queued.
// Sources without a configured limit are rejected outright: a missing
// limit is a configuration error to surface, not an invitation to make
// unlimited calls.
type Limiter struct {
	clk    clock.Clock
	limits map[string]int

	mu      sync.Mutex
	windows map[string]*window
}

// New builds a limiter from a source name to requests-per-window map.
func New(clk clock.Clock, limits map[string]int) *Limiter {
	if clk == nil {
		clk = clock.New()
	}
	l := &Limiter{
		clk:     clk,
		limits:  make(map[string]int, len(limits)),
		windows: make(map[string]*window, len(limits)),
	}
	for src, n := range limits {
		l.limits[src] = n
	}
	return l
}

// TryAcquire admits one request for source if its window still has
// capacity. It never blocks.
func (l *Limiter) TryAcquire(source string) bool {
	limit, ok := l.limits[source]
	if !ok || limit <= 0 {
		return false
	}

	now := l.clk.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[source]
	if !ok || now.Sub(w.start) >= WindowLength {
		l.windows[source] = &window{count: 1, start: now}
		return true
	}
	if w.count >= limit {
		return false
	}
	w.count++
	return true
}

// Remaining reports how many admissions source has left in the current
// window. Unknown sources report zero.
func (l *Limiter) Remaining(source string) int {
	limit, ok := l.limits[source]
	if !ok || limit <= 0 {
		return 0
	}

	now := l.clk.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[source]
	if !ok || now.Sub(w.start) >= WindowLength {
		return limit
	}
	if w.count >= limit {
		return 0
	}
	return limit - w.count
}

// Reset drops all window state. Limits are kept.
func (l *Limiter) Reset() {
	l.mu.Lock()
	l.windows = make(map[string]*window, len(l.limits))
	l.mu.Unlock()
}
