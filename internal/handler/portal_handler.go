package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ruteo/delivery-backend-go/internal/spatial"
	"github.com/ruteo/delivery-backend-go/pkg/response"
)

// PortalHandler handles HTTP requests for portal lookups
type PortalHandler struct {
	portals *spatial.IndexProvider
}

// NewPortalHandler creates a new portal handler
func NewPortalHandler(portals *spatial.IndexProvider) *PortalHandler {
	return &PortalHandler{portals: portals}
}

// NearestPortal handles GET /api/v1/portals/nearest
func (h *PortalHandler) NearestPortal(c *gin.Context) {
	unit := c.Query("codired")
	if unit == "" {
		response.BadRequest(c, "codired is required")
		return
	}
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		response.BadRequest(c, "Invalid lat parameter")
		return
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		response.BadRequest(c, "Invalid lon parameter")
		return
	}

	ix, err := h.portals.IndexFor(unit)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	if ix == nil {
		response.NotFound(c, "No portal data for this unit")
		return
	}

	portal, distance, ok := ix.Nearest(lat, lon)
	if !ok {
		response.NotFound(c, "No portals in the index")
		return
	}

	response.Success(c, gin.H{
		"portal":          portal,
		"distance_meters": distance,
	})
}
