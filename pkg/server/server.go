// Package server exposes the notification ingest HTTP surface.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mtkohut/spendwatch/pkg/api"
	"github.com/mtkohut/spendwatch/pkg/listener"
)

// EventHandler processes one notification event to a disposition.
type EventHandler interface {
	Handle(ctx context.Context, event api.NotificationEvent) listener.Disposition
}

// Server routes bridge requests to the listener.
type Server struct {
	handler EventHandler
	logger  *slog.Logger
	router  *mux.Router
}

// New creates the ingest server.
func New(handler EventHandler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{handler: handler, logger: logger}

	r := mux.NewRouter()
	r.HandleFunc("/events", s.postEvent).Methods(http.MethodPost)
	r.HandleFunc("/healthz", s.health).Methods(http.MethodGet)
	s.router = r

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// eventResponse reports how an ingested event was handled.
type eventResponse struct {
	Disposition listener.Disposition `json:"disposition"`
}

func (s *Server) postEvent(w http.ResponseWriter, r *http.Request) {
	var event api.NotificationEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		s.logger.Warn("rejecting malformed event", "error", err)
		http.Error(w, "malformed event", http.StatusBadRequest)
		return
	}
	if event.PackageName == "" {
		http.Error(w, "package_name is required", http.StatusBadRequest)
		return
	}
	if event.State == "" {
		event.State = api.EventPosted
	}

	disposition := s.handler.Handle(r.Context(), event)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	if err := json.NewEncoder(w).Encode(eventResponse{Disposition: disposition}); err != nil {
		s.logger.Warn("failed to write response", "error", err)
	}
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
