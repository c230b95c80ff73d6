package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bazaarhq/bazaar/internal/monitoring"
)

// HealthHandler exposes liveness and readiness reports.
type HealthHandler struct {
	manager *monitoring.HealthManager
	now     func() time.Time
}

// NewHealthHandler returns nil when manager is nil so callers can register disabled routes.
func NewHealthHandler(manager *monitoring.HealthManager) *HealthHandler {
	if manager == nil {
		return nil
	}
	return &HealthHandler{manager: manager, now: time.Now}
}

// GET /health
func (h *HealthHandler) Summary(c *gin.Context) {
	ctx := requestContext(c)
	report := monitoring.MergeReports(h.manager.EvaluateLiveness(ctx), h.manager.EvaluateReadiness(ctx))
	c.JSON(reportStatus(report), gin.H{
		"success":    report.Success,
		"status":     report.Status,
		"checked_at": h.now().UTC(),
	})
}

// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	h.write(c, h.manager.EvaluateLiveness(requestContext(c)))
}

// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	h.write(c, h.manager.EvaluateReadiness(requestContext(c)))
}

func (h *HealthHandler) write(c *gin.Context, report monitoring.HealthReport) {
	c.JSON(reportStatus(report), gin.H{
		"success":    report.Success,
		"status":     report.Status,
		"checks":     report.Checks,
		"checked_at": h.now().UTC(),
	})
}

// DisabledHealth answers health routes when health checks are turned off.
func DisabledHealth(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"success": false,
		"status":  "disabled",
	})
}

func reportStatus(report monitoring.HealthReport) int {
	if report.Success {
		return http.StatusOK
	}
	return http.StatusServiceUnavailable
}
