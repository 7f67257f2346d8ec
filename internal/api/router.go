package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ruteo/delivery-backend-go/internal/config"
	"github.com/ruteo/delivery-backend-go/internal/handler"
	"github.com/ruteo/delivery-backend-go/internal/middleware"
)

// Handlers bundles the HTTP handlers the router mounts.
type Handlers struct {
	Auth     *handler.AuthHandler
	Runs     *handler.RunHandler
	Metrics  *handler.MetricsHandler
	Clusters *handler.ClusterHandler
	Portals  *handler.PortalHandler
}

// SetupRouter wires middleware and routes
func SetupRouter(cfg *config.Config, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Delivery Backend API is running",
		})
	})

	r.POST("/auth/token", h.Auth.IssueToken)

	// API routes
	limiter := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	api := r.Group("/api/v1")
	api.Use(limiter.Middleware())
	api.Use(middleware.Auth(cfg.JWTSecret))
	{
		runs := api.Group("/runs")
		{
			runs.POST("", h.Runs.CreateRun)
			runs.GET("", h.Runs.ListRuns)
			runs.GET("/:id", h.Runs.GetRun)
			runs.GET("/:id/audit", h.Runs.GetAudit)
			runs.GET("/:id/metrics", h.Metrics.GetMetrics)
			runs.GET("/:id/visits", h.Clusters.GetVisits)
			runs.POST("/:id/clusters", h.Clusters.BuildClusters)
			runs.GET("/:id/clusters", h.Clusters.GetClusters)
		}

		portals := api.Group("/portals")
		{
			portals.GET("/nearest", h.Portals.NearestPortal)
		}
	}

	return r
}
