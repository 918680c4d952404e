// Package web serves stored figures and process metrics over HTTP.
package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rfkit/rfkit/pkg/errors"
	"github.com/rfkit/rfkit/pkg/store"
)

// Server hands out stored figures and exposes Prometheus metrics.
type Server struct {
	figures store.Store
	metrics *Metrics
	logger  *log.Logger
	router  chi.Router
}

// NewServer builds the HTTP surface over a figure store. The metrics are
// installed as the process-wide observability hooks.
func NewServer(figures store.Store, metrics *Metrics, logger *log.Logger) *Server {
	if metrics == nil {
		metrics = NewMetrics()
	}
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{figures: figures, metrics: metrics, logger: logger}
	metrics.Install()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Get("/figures", s.handleListFigures)
	r.Get("/figures/{id}", s.handleGetFigure)
	r.Delete("/figures/{id}", s.handleDeleteFigure)
	r.Method(http.MethodGet, "/metrics",
		promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListFigures(w http.ResponseWriter, r *http.Request) {
	figs, err := s.figures.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, figs)
}

func (s *Server) handleGetFigure(w http.ResponseWriter, r *http.Request) {
	fig, err := s.figures.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	w.Write(fig.SVG)
}

func (s *Server) handleDeleteFigure(w http.ResponseWriter, r *http.Request) {
	if err := s.figures.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeFigureNotFound, errors.ErrCodeNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeInvalidInput:
		status = http.StatusBadRequest
	default:
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, map[string]string{"error": errors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
