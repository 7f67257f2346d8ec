package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ruteo/delivery-backend-go/internal/service"
	"github.com/ruteo/delivery-backend-go/pkg/response"
)

// RunHandler handles HTTP requests for pipeline runs
type RunHandler struct {
	pipeline *service.PipelineService
}

// NewRunHandler creates a new run handler
func NewRunHandler(pipeline *service.PipelineService) *RunHandler {
	return &RunHandler{pipeline: pipeline}
}

type createRunRequest struct {
	PathA string `json:"path_a" binding:"required"`
	PathB string `json:"path_b" binding:"required"`
	PathC string `json:"path_c" binding:"required"`
}

// CreateRun handles POST /api/v1/runs
func (h *RunHandler) CreateRun(c *gin.Context) {
	var req createRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "path_a, path_b and path_c are required")
		return
	}

	run, err := h.pipeline.StartRun(req.PathA, req.PathB, req.PathC)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, run)
}

// ListRuns handles GET /api/v1/runs
func (h *RunHandler) ListRuns(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil {
		response.BadRequest(c, "Invalid limit parameter")
		return
	}

	runs, err := h.pipeline.ListRuns(limit)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, runs)
}

// GetRun handles GET /api/v1/runs/:id
func (h *RunHandler) GetRun(c *gin.Context) {
	run, err := h.pipeline.GetRun(c.Param("id"))
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	if run == nil {
		response.NotFound(c, "Run not found")
		return
	}
	response.Success(c, run)
}

// GetAudit handles GET /api/v1/runs/:id/audit
func (h *RunHandler) GetAudit(c *gin.Context) {
	audit, err := h.pipeline.GetAudit(c.Param("id"))
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	if audit == nil {
		response.NotFound(c, "No audit available for this run")
		return
	}
	response.Success(c, audit)
}
