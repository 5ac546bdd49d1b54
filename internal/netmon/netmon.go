package netmon

import (
	"log/slog"
	"sync"

	"finfeed/internal/event"
)

// Event names announced on connectivity transitions.
const (
	EventOnline  = "network:online"
	EventOffline = "network:offline"
)

// Pauser is the scheduler surface the monitor commands. It pauses the
// whole job group while offline and resumes it when connectivity
// returns; it never touches in-flight fetches.
type Pauser interface {
	PauseAll()
	ResumeAll()
}

// Monitor tracks a binary connectivity signal. The signal source is
// environment specific (a poller, an OS hook, a health probe), so the
// monitor only consumes transitions: push them with SetOnline or feed a
// channel to Watch.
type Monitor struct {
	bus    *event.Bus
	sched  Pauser
	logger *slog.Logger

	mu     sync.Mutex
	online bool
	done   chan struct{}
}

// New starts in the online state.
func New(bus *event.Bus, sched Pauser, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		bus:    bus,
		sched:  sched,
		logger: logger,
		online: true,
		done:   make(chan struct{}),
	}
}

// Online reports current connectivity.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// SetOnline records a connectivity observation. Only actual transitions
// emit events and command the scheduler; repeated observations of the
// same state are ignored.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	m.mu.Unlock()

	if online {
		m.logger.Info("connectivity restored")
		m.bus.Emit(EventOnline, nil)
		m.sched.ResumeAll()
	} else {
		m.logger.Warn("connectivity lost")
		m.bus.Emit(EventOffline, nil)
		m.sched.PauseAll()
	}
}

// Watch consumes connectivity observations from ch until it is closed
// or the monitor is stopped. It blocks; run it on its own goroutine.
func (m *Monitor) Watch(ch <-chan bool) {
	for {
		select {
		case online, ok := <-ch:
			if !ok {
				return
			}
			m.SetOnline(online)
		case <-m.done:
			return
		}
	}
}

// Stop terminates any Watch loops. It does not change the connectivity
// state.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	select {
	case <-m.done:
	default:
		close(m.done)
	}
}
