// Package httptransport assembles the HTTP surface: the middleware chain,
// the deletion governance routes, and the operational endpoints.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	deletionhandler "github.com/marcelarangelrhellorh/rhelloflow/internal/deletion/handler"
	"github.com/marcelarangelrhellorh/rhelloflow/internal/platform/middleware"
	platformmetrics "github.com/marcelarangelrhellorh/rhelloflow/internal/platform/metrics"
)

// RouterConfig carries the dependencies the router wires together.
type RouterConfig struct {
	Deletion  *deletionhandler.Handler
	Validator middleware.TokenValidator
	Logger    *slog.Logger
	Metrics   *platformmetrics.Metrics

	// Throttle settings for destructive operations. A nil Redis client
	// disables throttling.
	Redis          *redis.Client
	ThrottleLimit  int
	ThrottleWindow time.Duration
}

// NewRouter builds the chi router with the full middleware chain.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ContentTypeJSON)
	if cfg.Metrics != nil {
		r.Use(middleware.Latency(cfg.Metrics))
	}
	r.Use(middleware.ResolveActor(cfg.Validator, cfg.Logger))
	r.Use(middleware.Throttle(cfg.Redis, cfg.ThrottleLimit, cfg.ThrottleWindow, cfg.Logger))

	cfg.Deletion.Register(r)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
