package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kadeface/ai-class-scheduling/internal/service"
)

// HealthHandler serves liveness and Prometheus endpoints.
type HealthHandler struct {
	metrics *service.MetricsService
}

// NewHealthHandler constructs the handler.
func NewHealthHandler(metrics *service.MetricsService) *HealthHandler {
	return &HealthHandler{metrics: metrics}
}

// Health reports service liveness.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Prometheus serves the metrics scrape endpoint.
func (h *HealthHandler) Prometheus(c *gin.Context) {
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}
