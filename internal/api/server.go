// Package api serves the optional read-only status API. It exposes what the
// dashboard already shows, for scripts and remote watchers: liveness, the
// current status table, and the run's event stream. It executes nothing.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jobdeck/jobdeck/internal/events"
	"github.com/jobdeck/jobdeck/internal/status"
)

// Config holds API server configuration.
type Config struct {
	Listen string
}

// Server represents the HTTP status server for one run.
type Server struct {
	config    Config
	runID     string
	hub       *events.Hub
	logger    *slog.Logger
	server    *http.Server
	startedAt time.Time

	mu   sync.Mutex
	rows []status.Row
}

// New creates a status server bound to a run's event hub.
func New(config Config, runID string, hub *events.Hub, logger *slog.Logger) *Server {
	return &Server{
		config:    config,
		runID:     runID,
		hub:       hub,
		logger:    logger,
		startedAt: time.Now(),
	}
}

// Start starts the HTTP server (blocking until ctx is cancelled).
func (s *Server) Start(ctx context.Context) error {
	go s.trackStatus(ctx)

	s.server = &http.Server{
		Addr:         s.config.Listen,
		Handler:      s.setupRoutes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // SSE connections stay open for the whole run
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("status API starting", "listen", s.config.Listen)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("status API shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
}

// setupRoutes configures the HTTP router.
func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/api/status", s.handleStatus)
	r.Get("/events", s.handleEvents)

	return r
}

// trackStatus caches the latest status table from the hub so /api/status
// answers without touching dispatcher state.
func (s *Server) trackStatus(ctx context.Context) {
	ch, cancel := s.hub.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if ev.Type != events.TypeStatusSnapshot {
				continue
			}
			var rows []status.Row
			if err := json.Unmarshal(ev.Data, &rows); err != nil {
				continue
			}
			s.mu.Lock()
			s.rows = rows
			s.mu.Unlock()
		}
	}
}

// loggingMiddleware logs HTTP requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
