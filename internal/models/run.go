package models

import (
	"time"

	"github.com/ruteo/delivery-backend-go/internal/stats"
)

// Run statuses.
const (
	RunPending   = "pending"
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
)

// Run is one pipeline execution over a triple of source files.
type Run struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	PathA       string     `json:"path_a"`
	PathB       string     `json:"path_b"`
	PathC       string     `json:"path_c"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// MetricsFilter selects unified events for the per-route metrics view.
type MetricsFilter struct {
	UnitCode   string `form:"codired"`
	DeviceCode string `form:"cod_pda"`
	DateFrom   string `form:"ini"`
	DateTo     string `form:"fin"`
}

// MetricRow is one rendered row of the route metrics table. The first point
// of each route has no previous sample, so its derived fields are "-".
type MetricRow struct {
	N          int     `json:"n"`
	Time       string  `json:"hora"`
	Date       string  `json:"fecha"`
	DeviceCode string  `json:"cod_pda"`
	Longitude  float64 `json:"longitud"`
	Latitude   float64 `json:"latitud"`
	Distance   string  `json:"distancia"`
	Duration   string  `json:"tiempo"`
	Speed      string  `json:"velocidad"`
	IsStop     bool    `json:"es_parada"`
}

// MetricsSummary aggregates a metrics table.
type MetricsSummary struct {
	TotalPoints   int    `json:"puntos_totales"`
	TotalDistance string `json:"distancia_total"` // "12.34 km"
	TotalTime     string `json:"tiempo_total"`    // "56 min"
	MeanSpeed     string `json:"velocidad_media"` // "7.89 km/h"
}

// Metrics is the table + summary payload served by the API. SpeedStats
// describes the distribution of the per-point speeds in km/h.
type Metrics struct {
	Table      []MetricRow    `json:"tabla"`
	Summary    MetricsSummary `json:"resumen"`
	SpeedStats stats.Summary  `json:"velocidad_stats"`
}
