package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/matzehuels/listgraph/pkg/events"
)

const (
	streamBuffer    = 64
	streamKeepAlive = 15 * time.Second
)

// handleEvents streams the workspace's interaction events as server-sent
// events until the client goes away. Events are dropped for clients that
// fall more than streamBuffer events behind.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	ws, err := s.workspace(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	flusher, _ := w.(http.Flusher)

	ch := make(chan events.Event, streamBuffer)
	sub := ws.Bus().Subscribe(func(ev events.Event) {
		select {
		case ch <- ev:
		default:
			s.logger.Warn("event stream lagging, dropped event", "workspace", ws.ID, "event", ev.Name)
		}
	})
	defer ws.Bus().Unsubscribe(sub)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	if flusher != nil {
		flusher.Flush()
	}

	ticker := time.NewTicker(streamKeepAlive)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
		case ev := <-ch:
			data, err := json.Marshal(ev.Data)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, data); err != nil {
				return
			}
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}
