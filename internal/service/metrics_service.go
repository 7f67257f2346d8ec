package service

import (
	"fmt"

	"github.com/ruteo/delivery-backend-go/internal/models"
	"github.com/ruteo/delivery-backend-go/internal/repository"
	"github.com/ruteo/delivery-backend-go/internal/spatial"
	"github.com/ruteo/delivery-backend-go/internal/stats"
)

// MetricsService renders the per-route metrics table served by the API:
// distance, elapsed time and speed between consecutive measurements of each
// (device, date) route, plus a run-level summary.
type MetricsService struct {
	events *repository.EventRepository
}

// NewMetricsService creates a new metrics service
func NewMetricsService(events *repository.EventRepository) *MetricsService {
	return &MetricsService{events: events}
}

// GetMetrics builds the metrics view over a run's unified events. Points
// without coordinates are skipped; the first point of every route has no
// predecessor, so its derived columns render as "-".
func (s *MetricsService) GetMetrics(runID string, filter models.MetricsFilter) (*models.Metrics, error) {
	events, err := s.events.GetEvents(runID, filter)
	if err != nil {
		return nil, err
	}

	m := &models.Metrics{Table: []models.MetricRow{}}
	var timesS, speeds []float64
	var routes [][]spatial.Point

	var prev *models.Event
	n := 0
	for i := range events {
		e := &events[i]
		if !e.HasCoordinates() {
			continue
		}

		sameRoute := prev != nil && prev.DeviceCode == e.DeviceCode && prev.DateOnly == e.DateOnly
		n++
		if !sameRoute {
			n = 1
			routes = append(routes, nil)
		}
		routes[len(routes)-1] = append(routes[len(routes)-1], spatial.Point{Lat: *e.Latitude, Lon: *e.Longitude})

		row := models.MetricRow{
			N:          n,
			Time:       e.TimeOnly,
			Date:       e.DateOnly,
			DeviceCode: e.DeviceCode,
			Longitude:  *e.Longitude,
			Latitude:   *e.Latitude,
			Distance:   "-",
			Duration:   "-",
			Speed:      "-",
			IsStop:     e.IsStop,
		}

		if sameRoute {
			distM := spatial.GeodesicDistance(*prev.Latitude, *prev.Longitude, *e.Latitude, *e.Longitude)
			deltaS := e.Timestamp.Sub(prev.Timestamp).Seconds()

			speedKMH := 0.0
			if deltaS > 0 {
				speedKMH = (distM / 1000.0) / (deltaS / 3600.0)
			}

			row.Distance = fmt.Sprintf("%.3f m", distM)
			row.Duration = fmt.Sprintf("%d sec", int(deltaS))
			row.Speed = fmt.Sprintf("%.2f km/h", speedKMH)

			timesS = append(timesS, deltaS)
			speeds = append(speeds, speedKMH)
		}

		m.Table = append(m.Table, row)
		prev = e
	}

	var totalM float64
	for _, route := range routes {
		totalM += spatial.PathLength(route)
	}

	m.Summary = summarize(len(m.Table), totalM, timesS)
	m.SpeedStats = stats.Describe(speeds)
	return m, nil
}

// summarize totals the table: kilometers walked, minutes elapsed and the
// overall mean speed (total distance over total time, not the mean of the
// per-point speeds).
func summarize(points int, totalDistanceM float64, timesS []float64) models.MetricsSummary {
	totalKM := totalDistanceM / 1000.0
	var totalMin float64
	for _, t := range timesS {
		totalMin += t / 60.0
	}

	meanSpeed := 0.0
	if totalMin > 0 {
		meanSpeed = totalKM / (totalMin / 60.0)
	}

	return models.MetricsSummary{
		TotalPoints:   points,
		TotalDistance: fmt.Sprintf("%.2f km", totalKM),
		TotalTime:     fmt.Sprintf("%d min", int(totalMin)),
		MeanSpeed:     fmt.Sprintf("%.2f km/h", meanSpeed),
	}
}
