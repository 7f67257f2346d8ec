package pipeline

import (
	"log"
	"sort"
	"time"

	"github.com/ruteo/delivery-backend-go/internal/models"
)

// DefaultJoinTolerance bounds how far apart a registered delivery activity
// and its geocoordinate sample may be and still describe the same stop.
// The value is an operational policy, not a property of the domain.
const DefaultJoinTolerance = 15 * time.Second

// JoinNearest reconciles activity rows (left, source B) with coordinate
// rows (right, source C) into set D. Within each (unit, section, shift,
// date) partition both sides are sorted by time and every left row is
// matched to the right row with the smallest absolute time difference, ties
// and direction ignored, bounded by tolerance. A right row may serve several
// left rows; right rows never consumed are reported as unused, left rows
// with no coordinate-bearing match are reported as unmatched and dropped.
// |D| never exceeds |left|.
func JoinNearest(left, right []models.Event, tolerance time.Duration) ([]models.Event, models.JoinAudit) {
	audit := models.JoinAudit{
		ToleranceSeconds: tolerance.Seconds(),
		LeftRows:         len(left),
		RightRows:        len(right),
	}

	rightGroups := map[string][]models.Event{}
	for _, e := range right {
		k := ZoneDateKey(&e)
		rightGroups[k] = append(rightGroups[k], e)
	}
	for k := range rightGroups {
		sortByTime(rightGroups[k])
	}

	leftGroups := map[string][]models.Event{}
	var groupOrder []string
	for _, e := range left {
		k := ZoneDateKey(&e)
		if _, seen := leftGroups[k]; !seen {
			groupOrder = append(groupOrder, k)
		}
		leftGroups[k] = append(leftGroups[k], e)
	}

	consumed := map[string]map[int]bool{}
	var joined []models.Event

	for _, k := range groupOrder {
		candidates := rightGroups[k]
		if consumed[k] == nil {
			consumed[k] = map[int]bool{}
		}
		rows := leftGroups[k]
		sortByTime(rows)

		for _, l := range rows {
			idx, delta, ok := nearestInWindow(candidates, l.Timestamp, tolerance)
			if !ok || !candidates[idx].HasCoordinates() {
				audit.UnmatchedLeft++
				continue
			}
			consumed[k][idx] = true
			joined = append(joined, mergeJoined(l, candidates[idx], delta))
		}
	}

	for k, used := range consumed {
		audit.UnusedRight += len(rightGroups[k]) - len(used)
	}
	// Whole right groups with no left counterpart are unused too.
	for k, rows := range rightGroups {
		if _, seen := consumed[k]; !seen {
			audit.UnusedRight += len(rows)
		}
	}

	audit.Joined = len(joined)
	log.Printf("[Joiner] Joined %d/%d activity rows (%d unmatched, %d coordinate rows unused, tolerance %s)",
		audit.Joined, audit.LeftRows, audit.UnmatchedLeft, audit.UnusedRight, tolerance)
	return joined, audit
}

// nearestInWindow finds the candidate closest in time to target, within
// tolerance. Binary search over the sorted slice, then the neighbor on each
// side of the insertion point is compared by absolute difference.
func nearestInWindow(sorted []models.Event, target time.Time, tolerance time.Duration) (int, time.Duration, bool) {
	if len(sorted) == 0 {
		return 0, 0, false
	}

	idx := sort.Search(len(sorted), func(i int) bool {
		return !sorted[i].Timestamp.Before(target)
	})

	best := -1
	bestDiff := tolerance + 1
	for _, i := range []int{idx - 1, idx} {
		if i < 0 || i >= len(sorted) {
			continue
		}
		diff := absDuration(sorted[i].Timestamp.Sub(target))
		if diff <= tolerance && diff < bestDiff {
			best = i
			bestDiff = diff
		}
	}
	if best < 0 {
		return 0, 0, false
	}
	return best, bestDiff, true
}

// mergeJoined builds a D row: the activity row is canonical for every
// shared column; the coordinate row contributes only its unique spatial
// payload plus the section identifier when the activity side lacks one.
func mergeJoined(activity, coordinate models.Event, delta time.Duration) models.Event {
	out := activity
	out.Latitude = coordinate.Latitude
	out.Longitude = coordinate.Longitude
	if out.Section == "" {
		out.Section = coordinate.Section
	}
	out.JoinDeltaSeconds = delta.Seconds()
	out.IsStop = true
	return out
}

func sortByTime(events []models.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
