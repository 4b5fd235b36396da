// Package api serves the dashboard over HTTP.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"golang.org/x/time/rate"

	"github.com/0x6d61/scandash/internal/dashboard"
	"github.com/0x6d61/scandash/internal/metrics"
)

// Config configures a Server.
type Config struct {
	// ScanRate is the sustained number of simulations clients may start per
	// second; ScanBurst the bucket size.
	ScanRate  float64
	ScanBurst int

	// Metrics, when set, is exposed on /metrics and records request
	// latency.
	Metrics *metrics.Collector
	Logger  *slog.Logger
}

// Server holds the handlers' dependencies.
type Server struct {
	dash      *dashboard.Dashboard
	refresher *dashboard.Refresher
	limiter   *rate.Limiter
	metrics   *metrics.Collector
	logger    *slog.Logger
}

// New creates a Server.
func New(d *dashboard.Dashboard, refresher *dashboard.Refresher, cfg Config) *Server {
	if cfg.ScanRate <= 0 {
		cfg.ScanRate = 1
	}
	if cfg.ScanBurst < 1 {
		cfg.ScanBurst = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		dash:      d,
		refresher: refresher,
		limiter:   rate.NewLimiter(rate.Limit(cfg.ScanRate), cfg.ScanBurst),
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
	}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "healthy"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/scans", s.listScans)
		r.Get("/scans/{id}", s.getScan)
		r.Post("/scans/{id}/delete", s.requestDelete)
		r.Get("/scans/{id}/report", s.scanReport)

		r.Get("/selection", s.getSelection)
		r.Delete("/selection", s.clearSelection)

		r.Get("/stats", s.getStats)

		r.Get("/delete", s.pendingDelete)
		r.Post("/delete/confirm", s.confirmDelete)
		r.Post("/delete/cancel", s.cancelDelete)

		r.Post("/simulations", s.startSimulation)
		r.Get("/simulations/{id}", s.getSimulation)
		r.Delete("/simulations/{id}", s.abandonSimulation)

		r.Post("/refresh", s.refresh)
	})

	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}
	return r
}

// instrument logs each request and records its latency by route pattern.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		elapsed := time.Since(start)
		if s.metrics != nil {
			s.metrics.ObserveRequest(r.Method, route, status, elapsed)
		}
		s.logger.Debug("http request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", elapsed,
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
