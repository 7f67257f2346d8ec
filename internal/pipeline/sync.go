package pipeline

import (
	"log"
	"strings"

	"github.com/ruteo/delivery-backend-go/internal/models"
)

// RecordSet is a named, tagged collection of events moving through the
// pipeline. Names show up in audit output.
type RecordSet struct {
	Name   string
	Events []models.Event
}

// KeyFunc projects an event onto the key tuple record sets are synchronized
// on. The tuple is encoded as a string so it can live in a set.
type KeyFunc func(e *models.Event) string

const keySep = "\x1f"

// ZoneKey is the business key shared by the activity (B) and coordinate (C)
// sources: unit code, section and shift.
func ZoneKey(e *models.Event) string {
	return strings.Join([]string{e.UnitCode, e.Section, e.Shift}, keySep)
}

// ZoneDateKey extends ZoneKey with the calendar date; it is the join
// partition for producing set D.
func ZoneDateKey(e *models.Event) string {
	return ZoneKey(e) + keySep + e.DateOnly
}

// RouteDateKey identifies one device's route on one day; it aligns the
// trace (A) with the reconciled stops (D).
func RouteDateKey(e *models.Event) string {
	return strings.Join([]string{e.UnitCode, e.DeviceCode, e.DateOnly}, keySep)
}

// Synchronize filters every set down to the key tuples present in all of
// them. The intersection of key tuples across the returned sets is, by
// construction, identical in every set. Empty inputs make the intersection
// empty; everything is then dropped and reported, never treated as fatal.
func Synchronize(sets []RecordSet, key KeyFunc) ([]RecordSet, []models.SetAudit) {
	if len(sets) == 0 {
		return nil, nil
	}

	shared := keysOf(sets[0].Events, key)
	for _, set := range sets[1:] {
		own := keysOf(set.Events, key)
		for k := range shared {
			if !own[k] {
				delete(shared, k)
			}
		}
	}

	out := make([]RecordSet, len(sets))
	audits := make([]models.SetAudit, len(sets))
	for i, set := range sets {
		kept := make([]models.Event, 0, len(set.Events))
		for _, e := range set.Events {
			if shared[key(&e)] {
				kept = append(kept, e)
			}
		}
		out[i] = RecordSet{Name: set.Name, Events: kept}
		audits[i] = models.SetAudit{Name: set.Name, Before: len(set.Events), After: len(kept)}
		log.Printf("[Synchronizer] Set %s: %d -> %d rows (%d shared keys)",
			set.Name, len(set.Events), len(kept), len(shared))
	}
	return out, audits
}

// AlignOnZoneDate filters target down to the (zone, date) combinations
// present in reference, and explains every dropped row by checking the zone
// key and the date independently against the reference projections.
func AlignOnZoneDate(target, reference RecordSet) (RecordSet, models.SetAudit) {
	refZones := keysOf(reference.Events, ZoneKey)
	refDates := keysOf(reference.Events, func(e *models.Event) string { return e.DateOnly })
	refCombos := keysOf(reference.Events, ZoneDateKey)

	kept := make([]models.Event, 0, len(target.Events))
	reasons := map[string]int{}

	for _, e := range target.Events {
		if refCombos[ZoneDateKey(&e)] {
			kept = append(kept, e)
			continue
		}
		zoneOK := refZones[ZoneKey(&e)]
		dateOK := refDates[e.DateOnly]
		switch {
		case !zoneOK && !dateOK:
			reasons[models.DropBothMissing]++
		case !zoneOK:
			reasons[models.DropKeyMissing]++
		case !dateOK:
			reasons[models.DropDateMissing]++
		default:
			// Both sub-keys exist in the reference, just never together.
			reasons[models.DropCombinationMissing]++
		}
	}

	audit := models.SetAudit{
		Name:        target.Name,
		Before:      len(target.Events),
		After:       len(kept),
		DropReasons: reasons,
	}
	log.Printf("[Synchronizer] Aligned %s on %s: %d -> %d rows (drops: %v)",
		target.Name, reference.Name, audit.Before, audit.After, reasons)
	return RecordSet{Name: target.Name, Events: kept}, audit
}

func keysOf(events []models.Event, key KeyFunc) map[string]bool {
	set := make(map[string]bool, len(events))
	for i := range events {
		set[key(&events[i])] = true
	}
	return set
}
