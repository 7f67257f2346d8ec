package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ruteo/delivery-backend-go/internal/models"
	"github.com/ruteo/delivery-backend-go/internal/service"
	"github.com/ruteo/delivery-backend-go/pkg/response"
)

// MetricsHandler handles HTTP requests for route metrics
type MetricsHandler struct {
	metrics *service.MetricsService
}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler(metrics *service.MetricsService) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// GetMetrics handles GET /api/v1/runs/:id/metrics
func (h *MetricsHandler) GetMetrics(c *gin.Context) {
	var filter models.MetricsFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid filter parameters")
		return
	}

	metrics, err := h.metrics.GetMetrics(c.Param("id"), filter)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, metrics)
}
