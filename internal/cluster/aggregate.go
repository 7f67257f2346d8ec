package cluster

import (
	"log"
	"sort"

	"github.com/ruteo/delivery-backend-go/internal/models"
)

// DefaultTimeThresholdSeconds is the coarse pre-filter floor: portal visits
// accumulating less time than this are considered pass-bys, not deliveries.
const DefaultTimeThresholdSeconds = 100.0

// CollapseConsecutiveDuplicates merges runs of consecutive points annotated
// with the same (street, number). The run's first point survives carrying the
// summed dwell time and the mean speed of the run. Points keep their input
// order.
func CollapseConsecutiveDuplicates(points []models.PortalPoint) []models.PortalPoint {
	if len(points) == 0 {
		return points
	}

	var out []models.PortalPoint
	runLen := 0
	for _, p := range points {
		if runLen > 0 {
			last := &out[len(out)-1]
			if last.NearestStreet == p.NearestStreet && last.NearestNumber == p.NearestNumber {
				last.DeltaTSeconds += p.DeltaTSeconds
				last.SpeedMPS += p.SpeedMPS
				runLen++
				continue
			}
			last.SpeedMPS /= float64(runLen)
		}
		out = append(out, p)
		runLen = 1
	}
	out[len(out)-1].SpeedMPS /= float64(runLen)
	return out
}

// AggregatePortals folds every annotated point into one visit record per
// (street, number) portal. Dwell time is signed: stop rows contribute their
// time negative, so portals where the carrier only idled between registered
// stops net out to zero or below and are dropped. Postcode and policy type
// are the group mode, street counts are summed, and coordinates come from
// the first member's portal annotation.
func AggregatePortals(points []models.PortalPoint) []models.PortalVisit {
	type group struct {
		street, number string
		members        []*models.PortalPoint
	}

	groups := map[string]*group{}
	var keys []string
	for i := range points {
		p := &points[i]
		k := p.NearestStreet + "\x1f" + p.NearestNumber
		g, ok := groups[k]
		if !ok {
			g = &group{street: p.NearestStreet, number: p.NearestNumber}
			groups[k] = g
			keys = append(keys, k)
		}
		g.members = append(g.members, p)
	}
	sort.Strings(keys)

	var visits []models.PortalVisit
	for _, k := range keys {
		g := groups[k]
		v := models.PortalVisit{
			Street:       g.street,
			Number:       g.number,
			Latitude:     ptr(g.members[0].NearestLatitude),
			Longitude:    ptr(g.members[0].NearestLongitude),
			Postcode:     mode(g.members, func(p *models.PortalPoint) string { return p.NearestPostcode }),
			PolicyType:   mode(g.members, func(p *models.PortalPoint) string { return p.PolicyType }),
			TimesVisited: len(g.members),
		}

		devices := map[string]bool{}
		var distSum float64
		for _, p := range g.members {
			signed := p.DeltaTSeconds
			if p.IsStop {
				signed = -signed
			}
			v.TimeAccumulated += signed
			distSum += p.DistanceM
			v.EvenOddCount += p.EvenOddCount
			v.ZigzagCount += p.ZigzagCount
			v.IsStop = v.IsStop || p.IsStop
			if p.DeviceCode != "" && !devices[p.DeviceCode] {
				devices[p.DeviceCode] = true
				v.DeviceCodes = append(v.DeviceCodes, p.DeviceCode)
			}
		}
		v.TimeMean = v.TimeAccumulated / float64(len(g.members))
		v.DistancePortalM = distSum / float64(len(g.members))

		if v.TimeAccumulated <= 0 {
			continue
		}
		visits = append(visits, v)
	}

	log.Printf("[Aggregator] Collapsed %d points into %d portal visits", len(points), len(visits))
	return visits
}

// FilterByTime drops visits whose accumulated dwell time is under the
// threshold.
func FilterByTime(visits []models.PortalVisit, minSeconds float64) []models.PortalVisit {
	out := make([]models.PortalVisit, 0, len(visits))
	for _, v := range visits {
		if v.TimeAccumulated >= minSeconds {
			out = append(out, v)
		}
	}
	return out
}

func ptr(v float64) *float64 { return &v }

// mode returns the most frequent projection over the members; ties go to the
// lexicographically smallest value.
func mode(members []*models.PortalPoint, f func(*models.PortalPoint) string) string {
	counts := map[string]int{}
	for _, m := range members {
		counts[f(m)]++
	}
	best, bestCount := "", -1
	for v, c := range counts {
		if c > bestCount || (c == bestCount && v < best) {
			best, bestCount = v, c
		}
	}
	return best
}
