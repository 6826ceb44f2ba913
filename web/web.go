// Package web serves the SSE observability endpoint: a live feed of a
// rosapi.Broker's Events for external tooling that would rather poll
// HTTP than link the Go package directly.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/corewire/rosapi"
)

// Server serves GET /events as text/event-stream, one JSON-encoded Event
// per frame, sourced from a Broker.
type Server struct {
	httpServer *http.Server
	broker     *rosapi.Broker
}

// New creates a new Server backed by the given Broker.
func New(b *rosapi.Broker) *Server {
	s := &Server{broker: b}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /events", s.handleSSE)

	s.httpServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Serve starts the HTTP server on the given listener.
func (s *Server) Serve(lis net.Listener) error {
	if err := s.httpServer.Serve(lis); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("web: serve: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("web: shutdown: %w", err)
	}
	return nil
}

type eventJSON struct {
	Kind       string `json:"kind"`
	ConnID     string `json:"conn_id"`
	Command    string `json:"command,omitempty"`
	Terminator string `json:"terminator,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, unsub := s.broker.Subscribe()
	defer unsub()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			body, err := json.Marshal(toJSON(ev))
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", body); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func toJSON(ev rosapi.Event) eventJSON {
	out := eventJSON{
		Kind:       ev.Kind.String(),
		ConnID:     ev.ConnID,
		Command:    ev.Command,
		OccurredAt: ev.OccurredAt.Format(time.RFC3339Nano),
	}
	if ev.Reply != nil {
		switch ev.Reply.Terminator {
		case rosapi.TerminatorTrap:
			out.Terminator = "trap"
		case rosapi.TerminatorFatal:
			out.Terminator = "fatal"
		default:
			out.Terminator = "done"
		}
	}
	return out
}
