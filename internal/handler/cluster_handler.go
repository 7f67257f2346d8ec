package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/ruteo/delivery-backend-go/internal/cluster"
	"github.com/ruteo/delivery-backend-go/internal/service"
	"github.com/ruteo/delivery-backend-go/pkg/response"
)

// ClusterHandler handles HTTP requests for portal visits and clusters
type ClusterHandler struct {
	clusters *service.ClusterService
}

// NewClusterHandler creates a new cluster handler
func NewClusterHandler(clusters *service.ClusterService) *ClusterHandler {
	return &ClusterHandler{clusters: clusters}
}

// BuildClusters handles POST /api/v1/runs/:id/clusters
func (h *ClusterHandler) BuildClusters(c *gin.Context) {
	var req service.ClusterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid clustering request")
		return
	}

	result, err := h.clusters.BuildClusters(c.Param("id"), req)
	if err != nil {
		// A street tagged with conflicting numbering policies is an input
		// data problem, not a server fault.
		var conflict *cluster.PolicyConflictError
		if errors.As(err, &conflict) {
			response.Conflict(c, err.Error())
			return
		}
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, result)
}

// GetClusters handles GET /api/v1/runs/:id/clusters
func (h *ClusterHandler) GetClusters(c *gin.Context) {
	clusters, err := h.clusters.GetClusters(c.Param("id"))
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, clusters)
}

// GetVisits handles GET /api/v1/runs/:id/visits
func (h *ClusterHandler) GetVisits(c *gin.Context) {
	visits, err := h.clusters.GetVisits(c.Param("id"))
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, visits)
}
