package sched

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// State of the scheduler as a whole. Destroyed is terminal.
type State int

const (
	Running State = iota
	Paused
	Destroyed
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Destroyed:
		return "destroyed"
	}
	return "unknown"
}

// ErrDestroyed is returned by Register after Destroy.
var ErrDestroyed = errors.New("scheduler destroyed")

// Handler is a job body. Panics are recovered per tick; a failing job
// simply retries on its next interval.
type Handler func(ctx context.Context)

type job struct {
	key      string
	interval time.Duration
	handler  Handler
	timer    *clock.Timer
}

// Scheduler runs named recurring jobs. Each job fires once immediately
// on registration (while Running) and thereafter on its interval.
// PauseAll cancels timers but keeps job definitions; ResumeAll re-arms
// every retained job and fires each once, so the first post-resume tick
// happens right away.
type Scheduler struct {
	clk    clock.Clock
	logger *slog.Logger

	mu    sync.Mutex
	state State
	jobs  map[string]*job
}

func New(clk clock.Clock, logger *slog.Logger) *Scheduler {
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		clk:    clk,
		logger: logger,
		state:  Running,
		jobs:   make(map[string]*job),
	}
}

// Register adds (or replaces) the job for key. At most one timer exists
// per key: replacing a job first cancels the previous timer. While
// Paused the job is recorded but not armed until ResumeAll.
func (s *Scheduler) Register(key string, interval time.Duration, h Handler) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Destroyed {
		return ErrDestroyed
	}
	if old, ok := s.jobs[key]; ok {
		old.stop()
	}
	j := &job{key: key, interval: interval, handler: h}
	s.jobs[key] = j
	if s.state == Running {
		s.fire(j)
		s.arm(j)
	}
	return nil
}

// Unregister cancels and removes the job for key.
func (s *Scheduler) Unregister(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[key]; ok {
		j.stop()
		delete(s.jobs, key)
	}
}

// PauseAll cancels all active timers but retains job definitions.
func (s *Scheduler) PauseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Running {
		return
	}
	for _, j := range s.jobs {
		j.stop()
	}
	s.state = Paused
}

// ResumeAll re-arms all retained jobs and immediately fires each once.
func (s *Scheduler) ResumeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Paused {
		return
	}
	s.state = Running
	for _, j := range s.jobs {
		s.fire(j)
		s.arm(j)
	}
}

// Destroy cancels all timers and discards job definitions. Irreversible.
func (s *Scheduler) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Destroyed {
		return
	}
	for _, j := range s.jobs {
		j.stop()
	}
	s.jobs = make(map[string]*job)
	s.state = Destroyed
}

// StateNow reports the current lifecycle state.
func (s *Scheduler) StateNow() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Jobs returns the keys of all registered jobs.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.jobs))
	for k := range s.jobs {
		keys = append(keys, k)
	}
	return keys
}

// arm schedules the next tick for j. Caller holds s.mu.
func (s *Scheduler) arm(j *job) {
	// run the tick on a fresh goroutine so timer delivery never blocks
	// on the scheduler lock
	j.timer = s.clk.AfterFunc(j.interval, func() {
		go s.tick(j)
	})
}

// fire runs j's handler asynchronously. Caller holds s.mu.
func (s *Scheduler) fire(j *job) {
	go s.run(j)
}

func (s *Scheduler) tick(j *job) {
	s.mu.Lock()
	// the job may have been replaced, unregistered, or the scheduler
	// paused/destroyed between timer expiry and now
	if s.state != Running || s.jobs[j.key] != j {
		s.mu.Unlock()
		return
	}
	s.arm(j)
	s.mu.Unlock()
	s.run(j)
}

func (s *Scheduler) run(j *job) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("job panicked", "job", j.key, "panic", r)
		}
	}()
	j.handler(context.Background())
}

func (j *job) stop() {
	if j.timer != nil {
		j.timer.Stop()
		j.timer = nil
	}
}
