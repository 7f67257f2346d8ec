package pipeline

import (
	"log"
	"sort"

	"github.com/ruteo/delivery-backend-go/internal/models"
)

// MergeUnified produces set E: the union of the GPS trace (A) and the
// reconciled stop events (D), sorted by device, date and time. Every row
// leaves with an explicit is_stop flag.
//
// When a stop row lands on the exact same (device, timestamp) as a trace
// row the trace row wins and the stop row is dropped: the trace carries a
// measured coordinate while the stop's coordinate is a joined
// approximation. The conflict is counted, not silent.
func MergeUnified(trace, stops []models.Event) ([]models.Event, models.MergeAudit) {
	audit := models.MergeAudit{
		TraceRows: len(trace),
		StopRows:  len(stops),
	}

	traceAt := make(map[string]bool, len(trace))
	unified := make([]models.Event, 0, len(trace)+len(stops))

	for _, e := range trace {
		e.IsStop = false
		traceAt[stampKey(&e)] = true
		unified = append(unified, e)
	}
	for _, e := range stops {
		e.IsStop = true
		if traceAt[stampKey(&e)] {
			audit.DuplicateStopConflicts++
			continue
		}
		unified = append(unified, e)
	}

	sort.SliceStable(unified, func(i, j int) bool {
		a, b := &unified[i], &unified[j]
		if a.DeviceCode != b.DeviceCode {
			return a.DeviceCode < b.DeviceCode
		}
		if a.DateOnly != b.DateOnly {
			return a.DateOnly < b.DateOnly
		}
		return a.Timestamp.Before(b.Timestamp)
	})

	audit.Total = len(unified)
	log.Printf("[Merge] Unified %d trace + %d stop rows into %d (%d duplicate-timestamp stops dropped)",
		audit.TraceRows, audit.StopRows, audit.Total, audit.DuplicateStopConflicts)
	return unified, audit
}

func stampKey(e *models.Event) string {
	return e.DeviceCode + keySep + e.Timestamp.UTC().Format("2006-01-02T15:04:05")
}
