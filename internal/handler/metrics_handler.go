package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/feedback-api/internal/service"
)

// MetricsHandler serves the Prometheus scrape endpoint.
type MetricsHandler struct {
	metrics *service.MetricsService
}

// NewMetricsHandler constructs a MetricsHandler.
func NewMetricsHandler(metrics *service.MetricsService) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// Expose returns the scrape handler wrapped for gin.
func (h *MetricsHandler) Expose() gin.HandlerFunc {
	return gin.WrapH(h.metrics.Handler())
}
