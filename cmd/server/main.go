package main

import (
	"log"

	"github.com/ruteo/delivery-backend-go/internal/api"
	"github.com/ruteo/delivery-backend-go/internal/config"
	"github.com/ruteo/delivery-backend-go/internal/database"
	"github.com/ruteo/delivery-backend-go/internal/handler"
	"github.com/ruteo/delivery-backend-go/internal/parse"
	"github.com/ruteo/delivery-backend-go/internal/repository"
	"github.com/ruteo/delivery-backend-go/internal/service"
	"github.com/ruteo/delivery-backend-go/internal/spatial"
)

func main() {
	cfg := config.Load()

	if err := database.Init(database.Config{Path: cfg.DBPath}); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.Close()
	db := database.GetDB()

	normalizer, err := parse.NewTimeNormalizer(cfg.Timezone)
	if err != nil {
		log.Fatal("Failed to load timezone:", err)
	}

	portals := spatial.NewIndexProvider(cfg.GeoJSONFolder, spatial.NewIndexCache(cfg.PortalCacheCapacity))

	runRepo := repository.NewRunRepository(db)
	eventRepo := repository.NewEventRepository(db)
	clusterRepo := repository.NewClusterRepository(db)

	pipelineService := service.NewPipelineService(
		runRepo, eventRepo, clusterRepo, portals, normalizer,
		cfg.JoinTolerance, cfg.Outliers)
	metricsService := service.NewMetricsService(eventRepo)
	clusterService := service.NewClusterService(clusterRepo, cfg.Cluster, cfg.TimeFilterThresholdS)

	router := api.SetupRouter(cfg, api.Handlers{
		Auth:     handler.NewAuthHandler(cfg.JWTSecret),
		Runs:     handler.NewRunHandler(pipelineService),
		Metrics:  handler.NewMetricsHandler(metricsService),
		Clusters: handler.NewClusterHandler(clusterService),
		Portals:  handler.NewPortalHandler(portals),
	})

	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
