// Package http exposes health, progress and metrics of a running symrxn
// process.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/SymRxn/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/SymRxn/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/SymRxn/internal/interfaces/http/handlers"
	"github.com/turtacn/SymRxn/internal/interfaces/http/middleware"
)

// RouterConfig holds the handlers mounted by NewRouter. Nil entries are
// not routed.
type RouterConfig struct {
	HealthHandler    *handlers.HealthHandler
	ProgressHandler  *handlers.ProgressHandler
	MetricsCollector prom.MetricsCollector
	Logger           logging.Logger
}

// NewRouter builds the status route tree.
func NewRouter(cfg RouterConfig) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Logger != nil {
		r.Use(middleware.RequestLogging(cfg.Logger, middleware.DefaultLoggingConfig()))
	}

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.ProgressHandler != nil {
		r.GET("/progress", cfg.ProgressHandler.Get)
	}
	if cfg.MetricsCollector != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsCollector.Handler()))
	}
	return r
}

//Personal.AI order the ending
