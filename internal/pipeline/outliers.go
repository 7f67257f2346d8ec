package pipeline

import (
	"log"
	"math"
	"sort"

	"github.com/ruteo/delivery-backend-go/internal/models"
	"github.com/ruteo/delivery-backend-go/internal/spatial"
	"github.com/ruteo/delivery-backend-go/internal/stats"
)

// CleaningThresholds are the speed-anomaly tunables. The numeric values
// varied across revisions of the source exports with no documented
// rationale, so all of them are configuration.
type CleaningThresholds struct {
	Window        int     // rolling window size on each side
	Ratio         float64 // flag when speed > Ratio × window mean
	SpeedCapMPS   float64 // absolute speed cap, meters/second
	MaxIterations int     // hard stop for the refiltering loop
}

// DefaultCleaningThresholds mirror the values the exports were tuned with.
var DefaultCleaningThresholds = CleaningThresholds{
	Window:        12,
	Ratio:         1.5,
	SpeedCapMPS:   3.5,
	MaxIterations: 25,
}

// CleanRoutes removes speed outliers from set E, one (device, date) route
// at a time, and recomputes the distance/time/speed derivation for the
// survivors. Returns the cleaned set in route order plus the audit counts.
func CleanRoutes(events []models.Event, th CleaningThresholds) ([]models.Event, models.OutlierAudit) {
	groups := map[string][]models.Event{}
	var order []string
	for _, e := range events {
		k := e.DeviceCode + keySep + e.DateOnly
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], e)
	}
	sort.Strings(order)

	audit := models.OutlierAudit{Routes: len(order)}
	var cleaned []models.Event
	removedPerRoute := make([]float64, 0, len(order))

	for _, k := range order {
		route := groups[k]
		sortByTime(route)
		route, removed := cleanRoute(route, th)
		audit.Removed += removed
		removedPerRoute = append(removedPerRoute, float64(removed))
		cleaned = append(cleaned, route...)
	}

	audit.MeanRemovedPerRoute = stats.MeanOf(removedPerRoute)
	log.Printf("[OutlierFilter] Removed %d outliers across %d routes", audit.Removed, audit.Routes)
	return cleaned, audit
}

// cleanRoute runs the flag-remove-recompute loop to its fixed point: when
// an iteration flags nothing the speed series can no longer change. The
// iteration cap is a defense against pathological inputs, not an expected
// exit.
func cleanRoute(route []models.Event, th CleaningThresholds) ([]models.Event, int) {
	deriveMetrics(route)
	removed := 0

	for iter := 0; iter < th.MaxIterations; iter++ {
		flagged := flagOutliers(route, th)
		if len(flagged) == 0 {
			break
		}
		removed += len(flagged)

		kept := route[:0]
		for i, e := range route {
			if !flagged[i] {
				kept = append(kept, e)
			}
		}
		route = kept
		deriveMetrics(route)
	}
	return route, removed
}

// deriveMetrics recomputes the per-point distance, time delta and speed of
// a time-ordered route. The last point's distance is reset to zero so the
// sequence does not wrap around, and the first point has no time delta.
func deriveMetrics(route []models.Event) {
	n := len(route)
	for i := range route {
		e := &route[i]

		e.DistPrevM = 0
		if i < n-1 {
			next := &route[i+1]
			if e.HasCoordinates() && next.HasCoordinates() {
				e.DistPrevM = spatial.GeodesicDistance(
					*e.Latitude, *e.Longitude, *next.Latitude, *next.Longitude)
			}
		}

		e.DeltaTSeconds = 0
		if i > 0 {
			e.DeltaTSeconds = route[i].Timestamp.Sub(route[i-1].Timestamp).Seconds()
		}

		e.SpeedMPS = 0
		if e.DeltaTSeconds > 0 {
			e.SpeedMPS = e.DistPrevM / e.DeltaTSeconds
		}
	}
}

// flagOutliers marks the points whose speed is anomalous against the local
// rolling means on both sides, or above the absolute cap. Window means
// require a full window; points near the route edges can only be flagged by
// the cap, which matches how the series behaves in the exports.
func flagOutliers(route []models.Event, th CleaningThresholds) map[int]bool {
	flagged := map[int]bool{}
	speeds := make([]float64, len(route))
	for i := range route {
		speeds[i] = route[i].SpeedMPS
	}

	for i, v := range speeds {
		if v > th.SpeedCapMPS {
			flagged[i] = true
			continue
		}
		prev, okPrev := windowMean(speeds, i-th.Window, i)
		next, okNext := windowMean(speeds, i+1, i+1+th.Window)
		if okPrev && okNext && v > th.Ratio*prev && v > th.Ratio*next {
			flagged[i] = true
		}
	}
	return flagged
}

// windowMean averages speeds[lo:hi), reporting false when the full window
// does not fit.
func windowMean(speeds []float64, lo, hi int) (float64, bool) {
	if lo < 0 || hi > len(speeds) || lo >= hi {
		return math.NaN(), false
	}
	return stats.MeanOf(speeds[lo:hi]), true
}
