package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bhandara/internal/platform/metrics"
	"bhandara/internal/platform/middleware"
	"bhandara/internal/registration/handler"
	"bhandara/pkg/platform/httputil"
)

// HealthChecker reports whether the snapshot backend is reachable. The file
// backend always succeeds; redis and postgres ping their server.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// NewRouter assembles the public API surface. Domain routes delegate to the
// registration handler; everything else here is transport plumbing.
func NewRouter(h *handler.Handler, log *slog.Logger, m *metrics.Metrics, health HealthChecker) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}))
	r.Use(middleware.Latency(m))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		h.Register(r)
	})

	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/healthz", handleHealth(health))

	return r
}

func handleHealth(health HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if health != nil {
			if err := health.Health(r.Context()); err != nil {
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "degraded",
					"reason": err.Error(),
				})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
