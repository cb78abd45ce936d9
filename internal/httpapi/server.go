package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/statuswatch/internal/domain"
	"github.com/hamed0406/statuswatch/internal/monitor"
)

const (
	defaultHistoryLimit = 200
	maxHistoryLimit     = 2000
)

type Server struct {
	Logger  *zap.Logger
	Monitor *monitor.Monitor
}

func NewServer(l *zap.Logger, m *monitor.Monitor) *Server {
	return &Server{Logger: l, Monitor: m}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/api/status", s.handleStatus)
	r.Get("/api/history", s.handleHistory)
	r.Post("/api/check-now", s.handleCheckNow)

	return r
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Monitor.GetStatus(r.Context())
	if err != nil {
		s.Logger.Warn("status_error", zap.Error(err))
		http.Error(w, "status error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing 'name' query param"})
		return
	}

	limit := defaultHistoryLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid 'limit'"})
			return
		}
		limit = clamp(n, 1, maxHistoryLimit)
	}

	history, err := s.Monitor.GetHistory(r.Context(), name, limit)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown endpoint"})
			return
		}
		s.Logger.Warn("history_error", zap.String("endpoint", name), zap.Error(err))
		http.Error(w, "history error", http.StatusInternalServerError)
		return
	}
	if history == nil {
		history = []domain.ProbeResult{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    name,
		"history": history,
	})
}

type checkNowPayload struct {
	Name string `json:"name"`
}

func (s *Server) handleCheckNow(w http.ResponseWriter, r *http.Request) {
	var p checkNowPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil || strings.TrimSpace(p.Name) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing 'name'"})
		return
	}
	if err := s.Monitor.CheckNow(strings.TrimSpace(p.Name)); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown endpoint"})
			return
		}
		http.Error(w, "check-now error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]bool{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
