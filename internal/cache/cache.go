package cache

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// entry stores one cached payload with its fetch timestamp and expiry.
type entry struct {
	value     any
	fetchedAt time.Time
	ttl       time.Duration
}

func (e entry) fresh(now time.Time) bool {
	return e.ttl > 0 && now.Sub(e.fetchedAt) <= e.ttl
}

// Store is a keyed TTL cache. A stale entry behaves as absent on reads
// but is kept in place until the next successful fetch overwrites it,
// so consumers that prefer stale data over none can still be served by
// the writer path.
type Store struct {
	clk clock.Clock

	mu      sync.RWMutex
	entries map[string]entry
}

func New(clk clock.Clock) *Store {
	if clk == nil {
		clk = clock.New()
	}
	return &Store{clk: clk, entries: make(map[string]entry)}
}

// Get returns the value for key only while it is fresh.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok || !e.fresh(s.clk.Now()) {
		return nil, false
	}
	return e.value, true
}

// Set overwrites key unconditionally, stamping fetchedAt with the
// current time.
func (s *Store) Set(key string, value any, ttl time.Duration) {
	now := s.clk.Now()
	s.mu.Lock()
	s.entries[key] = entry{value: value, fetchedAt: now, ttl: ttl}
	s.mu.Unlock()
}

// SetIfNewer writes key only when fetchedAt is not older than the
// stored entry's fetch timestamp. Callers stamp fetchedAt with the time
// the producing request started, so a slow fetch that finishes after a
// faster, later-started one cannot overwrite newer data with older
// data. Reports whether the write happened.
func (s *Store) SetIfNewer(key string, value any, ttl time.Duration, fetchedAt time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.entries[key]; ok && cur.fetchedAt.After(fetchedAt) {
		return false
	}
	s.entries[key] = entry{value: value, fetchedAt: fetchedAt, ttl: ttl}
	return true
}

// Evict removes a single entry, stale or not.
func (s *Store) Evict(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// EvictAll clears the store.
func (s *Store) EvictAll() {
	s.mu.Lock()
	s.entries = make(map[string]entry)
	s.mu.Unlock()
}

// Snapshot returns all currently fresh entries as a key to value map.
// Stale entries are silently excluded.
func (s *Store) Snapshot() map[string]any {
	now := s.clk.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.entries))
	for k, e := range s.entries {
		if e.fresh(now) {
			out[k] = e.value
		}
	}
	return out
}
