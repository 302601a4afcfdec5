// Package http assembles the gin route tree and the HTTP server lifecycle.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/veritype/veritype/internal/infrastructure/monitoring/logging"
	"github.com/veritype/veritype/internal/infrastructure/monitoring/prometheus"
	"github.com/veritype/veritype/internal/interfaces/http/handlers"
	"github.com/veritype/veritype/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handlers and infrastructure the route tree
// needs.
type RouterConfig struct {
	DetectHandler *handlers.DetectHandler
	HealthHandler *handlers.HealthHandler

	Logger    logging.Logger
	Metrics   *prometheus.AppMetrics
	Collector prometheus.MetricsCollector

	// Mode is the gin mode: "debug", "release", or "test".
	Mode string
}

// NewRouter wires global middleware, probe endpoints, the metrics endpoint,
// and the versioned API group into one handler.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger, cfg.Metrics))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.Collector != nil {
		r.GET("/metrics", gin.WrapH(cfg.Collector.Handler()))
	}

	api := r.Group("/api/v1")
	if cfg.DetectHandler != nil {
		api.POST("/detect", cfg.DetectHandler.Detect)
		api.POST("/detect/batch", cfg.DetectHandler.DetectBatch)
		api.POST("/detect/upload", cfg.DetectHandler.Upload)
	}

	return r
}
