package api

import (
	"github.com/gin-gonic/gin"

	"github.com/bazaarhq/bazaar/internal/app"
	"github.com/bazaarhq/bazaar/internal/handlers"
)

func registerHealthRoutes(r *gin.Engine, cfg *app.Config, handler *handlers.HealthHandler) {
	if !cfg.Monitoring.Health.Enabled || handler == nil {
		r.GET("/health", handlers.DisabledHealth)
		r.GET("/health/live", handlers.DisabledHealth)
		r.GET("/health/ready", handlers.DisabledHealth)
		return
	}

	r.GET("/health", handler.Summary)
	r.GET("/health/live", handler.Live)
	r.GET("/health/ready", handler.Ready)
}
