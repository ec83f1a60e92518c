// Package http wires the gin route tree and the HTTP server for the ChemSAR
// API.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/turtacn/ChemSAR/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemSAR/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ChemSAR/internal/interfaces/http/handlers"
	"github.com/turtacn/ChemSAR/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handler and middleware dependencies for the
// complete route tree.
type RouterConfig struct {
	ScreeningHandler *handlers.ScreeningHandler
	HealthHandler    *handlers.HealthHandler

	// DatasetHandler is nil when persistence is not configured.
	DatasetHandler *handlers.DatasetHandler

	Logger  logging.Logger
	Metrics *prometheus.Metrics

	// Mode is the gin mode: "debug", "release", or "test".
	Mode string
}

// NewRouter constructs the route tree: public health and metrics endpoints
// plus the /api/v1 pipeline endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogging(cfg.Logger, cfg.Metrics))

	r.GET("/healthz", cfg.HealthHandler.Healthz)
	r.GET("/readyz", cfg.HealthHandler.Readyz)
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	v1 := r.Group("/api/v1")
	{
		v1.POST("/cluster", cfg.ScreeningHandler.Cluster)
		v1.POST("/similarity", cfg.ScreeningHandler.Similarity)
		v1.POST("/descriptors", cfg.ScreeningHandler.Descriptors)

		// Persistence endpoints exist only when a database is configured.
		if cfg.DatasetHandler != nil {
			v1.POST("/datasets/:name", cfg.DatasetHandler.Ingest)
			v1.GET("/datasets/:name", cfg.DatasetHandler.List)
			v1.DELETE("/datasets/:name", cfg.DatasetHandler.Delete)
		}
	}

	return r
}
