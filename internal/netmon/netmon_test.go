package netmon

import (
	"testing"
	"time"

	"finfeed/internal/event"
)

type fakePauser struct {
	pauses  int
	resumes int
}

func (f *fakePauser) PauseAll()  { f.pauses++ }
func (f *fakePauser) ResumeAll() { f.resumes++ }

func TestSetOnline_TransitionsEmitAndCommandScheduler(t *testing.T) {
	bus := event.NewBus(nil)
	p := &fakePauser{}
	m := New(bus, p, nil)

	var offline, online int
	bus.On(EventOffline, func(any) { offline++ })
	bus.On(EventOnline, func(any) { online++ })

	if !m.Online() {
		t.Fatal("monitor must start online")
	}

	m.SetOnline(false)
	if m.Online() || p.pauses != 1 || offline != 1 {
		t.Fatalf("offline transition: online=%v pauses=%d events=%d", m.Online(), p.pauses, offline)
	}

	m.SetOnline(true)
	if !m.Online() || p.resumes != 1 || online != 1 {
		t.Fatalf("online transition: online=%v resumes=%d events=%d", m.Online(), p.resumes, online)
	}
}

func TestSetOnline_RepeatedObservationsIgnored(t *testing.T) {
	bus := event.NewBus(nil)
	p := &fakePauser{}
	m := New(bus, p, nil)

	m.SetOnline(true) // already online
	m.SetOnline(false)
	m.SetOnline(false)

	if p.pauses != 1 || p.resumes != 0 {
		t.Fatalf("want single pause, got pauses=%d resumes=%d", p.pauses, p.resumes)
	}
}

func TestWatch_ConsumesChannel(t *testing.T) {
	bus := event.NewBus(nil)
	p := &fakePauser{}
	m := New(bus, p, nil)

	ch := make(chan bool)
	done := make(chan struct{})
	go func() {
		m.Watch(ch)
		close(done)
	}()

	ch <- false
	deadline := time.After(time.Second)
	for m.Online() {
		select {
		case <-deadline:
			t.Fatal("monitor never went offline")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	m.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Watch did not return after Stop")
	}

	// Stop twice is harmless
	m.Stop()
}
