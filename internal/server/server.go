// Package server exposes the latest swap report over HTTP and websocket.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"swap-analytics/internal/observability"
	"swap-analytics/internal/storage"
)

// Server serves the latest computed report. Reads go to the cache first and
// fall back to the archive, re-priming the cache on a hit.
type Server struct {
	logger   *zap.Logger
	store    storage.ReportStore
	cache    storage.ReportCache
	metrics  *observability.Metrics
	hub      *Broadcaster
	cacheTTL time.Duration
}

// New creates a Server. The cache may be nil when caching is disabled.
func New(logger *zap.Logger, store storage.ReportStore, cache storage.ReportCache, metrics *observability.Metrics, hub *Broadcaster, cacheTTL time.Duration) *Server {
	return &Server{
		logger:   logger,
		store:    store,
		cache:    cache,
		metrics:  metrics,
		hub:      hub,
		cacheTTL: cacheTTL,
	}
}

// Router builds the HTTP route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/report", s.handleReport).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", observability.Handler()).Methods(http.MethodGet)
	if s.hub != nil {
		r.HandleFunc("/ws", s.hub.Handler()).Methods(http.MethodGet)
	}
	return r
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if s.cache != nil {
		report, err := s.cache.Get(ctx)
		if err == nil {
			s.metrics.RecordReportRequest("cache_hit")
			writeJSON(w, http.StatusOK, report)
			return
		}
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("Report cache read failed", zap.Error(err))
		}
	}

	report, err := s.store.Latest(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.metrics.RecordReportRequest("not_found")
			writeError(w, http.StatusNotFound, "no report available yet")
			return
		}
		s.logger.Error("Report archive read failed", zap.Error(err))
		s.metrics.RecordReportRequest("error")
		writeError(w, http.StatusInternalServerError, "failed to load report")
		return
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, report, s.cacheTTL); err != nil {
			s.logger.Warn("Report cache write failed", zap.Error(err))
		}
	}

	s.metrics.RecordReportRequest("store_hit")
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
