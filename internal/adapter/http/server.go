// Package http serves the job's operational endpoints in scheduled mode.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/avalanche-accident-etl/internal/pipeline"
)

// StatusReporter returns the outcome of the most recent run, if any.
type StatusReporter interface {
	LastResult() (pipeline.Result, bool)
}

// Server exposes health, readiness, last-run and metrics HTTP endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /status, and
// /metrics routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, status StatusReporter, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.HandleFunc("GET /status", handleStatus(status))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type statusResponse struct {
	JobID     string    `json:"elt_job_id"`
	Status    string    `json:"status"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Duration  float64   `json:"duration_seconds"`
	Scraped   int       `json:"scraped"`
	Stored    int64     `json:"stored"`
	DataCount int       `json:"data_count"`
	Error     string    `json:"error,omitempty"`
	Shrunk    bool      `json:"source_shrunk,omitempty"`
}

func handleStatus(reporter StatusReporter) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		res, ok := reporter.LastResult()
		if !ok {
			sharedobs.WriteJSON(w, http.StatusNotFound, map[string]string{"status": "no runs yet"})
			return
		}
		resp := statusResponse{
			JobID:     res.JobID,
			Status:    string(res.Status),
			StartTime: res.StartTime,
			EndTime:   res.EndTime,
			Duration:  res.Duration().Seconds(),
			Scraped:   res.Scraped,
			Stored:    res.Stored,
			DataCount: res.DataCount,
			Shrunk:    res.Shrunk,
		}
		if res.Err != nil {
			resp.Error = res.Err.Error()
		}
		sharedobs.WriteJSON(w, http.StatusOK, resp)
	}
}
