package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ricirt/report-robot/internal/api/handler"
	apimw "github.com/ricirt/report-robot/internal/api/middleware"
)

// Handlers bundles the route targets so NewRouter stays declarative.
type Handlers struct {
	Tracking *handler.TrackingHandler
	Queue    *handler.QueueHandler
	Health   *handler.HealthHandler
}

// NewRouter wires the chi router, attaches all middleware, and registers
// every route. It is the single source of truth for the HTTP surface area.
func NewRouter(h Handlers, reg prometheus.Gatherer, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- global middleware (applied to every route) ---
	r.Use(chimw.Recoverer)           // recover panics, return 500
	r.Use(chimw.RealIP)              // trust X-Forwarded-For / X-Real-IP
	r.Use(chimw.RequestSize(64<<10)) // only GET routes; bodies are unexpected
	r.Use(apimw.CorrelationID)
	r.Use(apimw.RequestLogger(logger, "/health", "/metrics"))

	// --- routes ---
	r.Get("/track", h.Tracking.Track)
	r.Get("/health", h.Health.Health)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/queue", h.Queue.GetQueue)
	})

	return r
}
