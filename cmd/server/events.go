package main

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"finfeed/internal/event"
	"finfeed/internal/feed"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

type wsEvent struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// handleEvents bridges the service bus onto a websocket so consumers
// react to fresh data, errors and connectivity transitions without
// polling. A client that cannot keep up has events dropped rather than
// blocking the bus.
func handleEvents(svc *feed.Service, logger *slog.Logger) http.HandlerFunc {
	names := []string{feed.EventError, feed.EventNetworkOnline, feed.EventNetworkOffline}
	for _, c := range feed.Categories() {
		names = append(names, feed.DataEvent(c))
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Debug("websocket upgrade failed", "err", err)
			return
		}

		out := make(chan wsEvent, 64)
		subs := make([]event.Subscription, 0, len(names))
		for _, name := range names {
			name := name
			subs = append(subs, svc.Events().On(name, func(p any) {
				select {
				case out <- wsEvent{Event: name, Payload: p}:
				default:
				}
			}))
		}
		defer func() {
			for _, s := range subs {
				svc.Events().Off(s)
			}
			_ = conn.Close()
		}()

		// the read loop only notices the peer going away
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-done:
				return
			case ev := <-out:
				if err := conn.WriteJSON(ev); err != nil {
					return
				}
			}
		}
	}
}
