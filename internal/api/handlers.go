package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jobdeck/jobdeck/internal/status"
)

type healthResponse struct {
	Status        string `json:"status"`
	RunID         string `json:"run_id"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

type statusResponse struct {
	RunID string       `json:"run_id"`
	Jobs  []status.Row `json:"jobs"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:        "ok",
		RunID:         s.runID,
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	rows := s.rows
	s.mu.Unlock()

	if rows == nil {
		rows = []status.Row{}
	}
	s.writeJSON(w, http.StatusOK, statusResponse{RunID: s.runID, Jobs: rows})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, map[string]string{"error": msg})
}
