// Package httpapi assembles the chi router and JSON handlers for the local
// index surface. Every quantity and status it serves is fetched live from
// the ledger by the services underneath; the handlers only shape requests
// and responses.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"maskchain/internal/platform/metrics"
	"maskchain/internal/platform/middleware"
)

// Registrar is satisfied by every handler in this package.
type Registrar interface {
	Register(r chi.Router)
}

// HealthChecker reports readiness of a backing dependency.
type HealthChecker func() error

// NewRouter builds the full HTTP surface. A nil validator leaves mutating
// routes open (dev mode); health is consulted by /healthz and may be nil.
func NewRouter(
	logger *slog.Logger,
	m *metrics.Metrics,
	validator middleware.Validator,
	health HealthChecker,
	handlers ...Registrar,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.Latency(m))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if health != nil {
			if err := health(); err != nil {
				WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "error": err.Error()})
				return
			}
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(api chi.Router) {
		api.Use(middleware.ContentTypeJSON)
		api.Use(middleware.RequireAuthForWrites(validator, logger))
		for _, h := range handlers {
			h.Register(api)
		}
	})

	return r
}
