package config

import (
	"os"
	"strconv"
	"time"

	"github.com/ruteo/delivery-backend-go/internal/cluster"
	"github.com/ruteo/delivery-backend-go/internal/models"
	"github.com/ruteo/delivery-backend-go/internal/parse"
	"github.com/ruteo/delivery-backend-go/internal/pipeline"
	"github.com/ruteo/delivery-backend-go/internal/spatial"
)

// Config holds every runtime setting, resolved from the environment with
// working defaults. Pipeline tunables are kept here rather than hard-coded
// because their values varied across export revisions.
type Config struct {
	Port      string
	DBPath    string
	JWTSecret string

	GeoJSONFolder string
	Timezone      string

	JoinTolerance time.Duration
	Outliers      pipeline.CleaningThresholds
	Cluster       models.ClusterParams

	TimeFilterThresholdS float64
	PortalCacheCapacity  int

	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// Load reads the environment. Missing variables fall back to defaults;
// malformed numeric values do too, silently, so a bad deployment still
// boots with sane behavior.
func Load() *Config {
	return &Config{
		Port:      getEnv("PORT", ":8080"),
		DBPath:    getEnv("DB_PATH", "./data/delivery.db"),
		JWTSecret: getEnv("JWT_SECRET", "your-secret-key-change-in-production"),

		GeoJSONFolder: getEnv("GEOJSON_FOLDER", "./data/portals"),
		Timezone:      getEnv("TIMEZONE", parse.DefaultTimezone),

		JoinTolerance: time.Duration(getEnvInt("JOIN_TOLERANCE_SECONDS",
			int(pipeline.DefaultJoinTolerance/time.Second))) * time.Second,

		Outliers: pipeline.CleaningThresholds{
			Window:        getEnvInt("OUTLIER_WINDOW", pipeline.DefaultCleaningThresholds.Window),
			Ratio:         getEnvFloat("OUTLIER_RATIO", pipeline.DefaultCleaningThresholds.Ratio),
			SpeedCapMPS:   getEnvFloat("OUTLIER_SPEED_CAP", pipeline.DefaultCleaningThresholds.SpeedCapMPS),
			MaxIterations: getEnvInt("OUTLIER_MAX_ITERATIONS", pipeline.DefaultCleaningThresholds.MaxIterations),
		},

		Cluster: models.ClusterParams{
			MaxPoints:          getEnvInt("CLUSTER_MAX_POINTS", cluster.DefaultParams.MaxPoints),
			MaxDiameterMeters:  getEnvFloat("CLUSTER_MAX_DIAMETER_M", cluster.DefaultParams.MaxDiameterMeters),
			MaxAccumulatedTime: getEnvFloat("CLUSTER_MAX_TIME_S", cluster.DefaultParams.MaxAccumulatedTime),
		},

		TimeFilterThresholdS: getEnvFloat("TIME_FILTER_THRESHOLD_S", cluster.DefaultTimeThresholdSeconds),
		PortalCacheCapacity:  getEnvInt("PORTAL_CACHE_CAPACITY", spatial.DefaultCacheCapacity),

		RateLimitRequests: getEnvInt("RATE_LIMIT_REQUESTS", 300),
		RateLimitWindow:   time.Duration(getEnvInt("RATE_LIMIT_WINDOW_S", 60)) * time.Second,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
