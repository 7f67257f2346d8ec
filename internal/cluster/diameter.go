package cluster

import (
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/ruteo/delivery-backend-go/internal/models"
	"github.com/ruteo/delivery-backend-go/internal/spatial"
)

// DefaultParams mirror the values the exports were produced with.
var DefaultParams = models.ClusterParams{
	MaxPoints:          10,
	MaxDiameterMeters:  1000,
	MaxAccumulatedTime: -1,
}

// ByDiameter groups portal visits into walking-distance clusters, street by
// street. Even/odd streets are split by house-number parity and ordered by
// number; zigzag and unknown streets keep their arrival order. Within a
// sequence a cluster grows from its first member while every bound holds:
// fewer than MaxPoints members, geodesic distance from the first member to
// the candidate under MaxDiameterMeters, and, when the time cap is enabled,
// accumulated time plus the candidate's time within MaxAccumulatedTime. The
// first violated bound closes the cluster and the violating visit starts the
// next one.
//
// Policy tags must be consistent per street; a conflict is fatal.
func ByDiameter(visits []models.PortalVisit, params models.ClusterParams) ([]models.PortalCluster, error) {
	if err := ValidatePolicies(visits); err != nil {
		return nil, err
	}

	streets := map[string][]models.PortalVisit{}
	var order []string
	for _, v := range visits {
		if _, seen := streets[v.Street]; !seen {
			order = append(order, v.Street)
		}
		streets[v.Street] = append(streets[v.Street], v)
	}
	sort.Strings(order)

	var clusters []models.PortalCluster
	for _, street := range order {
		rows := streets[street]
		for _, seq := range policySequences(rows) {
			for _, members := range clusterSequence(seq, params) {
				clusters = append(clusters, summarize(members))
			}
		}
	}

	log.Printf("[Clusterer] Grouped %d portal visits into %d clusters", len(visits), len(clusters))
	return clusters, nil
}

// policySequences turns one street's visits into the ordered sequences the
// growth loop runs over. Even/odd streets yield up to two sequences, evens
// then odds, each sorted by house number; visits without a parseable number
// cannot be assigned a side and are left out. Every other policy yields the
// visits unchanged, in arrival order.
func policySequences(rows []models.PortalVisit) [][]models.PortalVisit {
	if len(rows) == 0 || rows[0].PolicyType != models.PolicyEvenOdd {
		return [][]models.PortalVisit{rows}
	}

	var evens, odds []models.PortalVisit
	for _, v := range rows {
		n, err := strconv.Atoi(strings.TrimSpace(v.Number))
		if err != nil {
			continue
		}
		if n%2 == 0 {
			evens = append(evens, v)
		} else {
			odds = append(odds, v)
		}
	}
	sortByNumber(evens)
	sortByNumber(odds)

	var out [][]models.PortalVisit
	if len(evens) > 0 {
		out = append(out, evens)
	}
	if len(odds) > 0 {
		out = append(out, odds)
	}
	return out
}

func sortByNumber(rows []models.PortalVisit) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, _ := strconv.Atoi(strings.TrimSpace(rows[i].Number))
		b, _ := strconv.Atoi(strings.TrimSpace(rows[j].Number))
		return a < b
	})
}

func clusterSequence(rows []models.PortalVisit, params models.ClusterParams) [][]models.PortalVisit {
	var clusters [][]models.PortalVisit

	i := 0
	for i < len(rows) {
		first := &rows[i]
		members := []models.PortalVisit{rows[i]}
		accTime := rows[i].TimeAccumulated

		j := i + 1
		for j < len(rows) {
			if len(members) == params.MaxPoints {
				break
			}
			candidate := &rows[j]
			d, ok := visitDistance(first, candidate)
			if !ok || d >= params.MaxDiameterMeters {
				break
			}
			if params.MaxAccumulatedTime >= 0 && accTime+candidate.TimeAccumulated > params.MaxAccumulatedTime {
				break
			}
			members = append(members, rows[j])
			accTime += candidate.TimeAccumulated
			j++
		}

		clusters = append(clusters, members)
		i = j
	}
	return clusters
}

func visitDistance(a, b *models.PortalVisit) (float64, bool) {
	if a.Latitude == nil || a.Longitude == nil || b.Latitude == nil || b.Longitude == nil {
		return 0, false
	}
	return spatial.GeodesicDistance(*a.Latitude, *a.Longitude, *b.Latitude, *b.Longitude), true
}

// summarize collapses the members into one cluster record. The
// representative is the member closest to the arithmetic centroid of the
// members' coordinates; when no member has coordinates the middle member
// stands in.
func summarize(members []models.PortalVisit) models.PortalCluster {
	c := models.PortalCluster{Representative: representative(members)}
	for _, m := range members {
		c.TimeAccumulated += m.TimeAccumulated
		c.VisitCount += m.TimesVisited
		c.MemberNumbers = append(c.MemberNumbers, m.Number)
		c.IsStop = c.IsStop || m.IsStop
	}
	if len(members) > 0 {
		c.TimeMean = c.TimeAccumulated / float64(len(members))
	}
	return c
}

func representative(members []models.PortalVisit) models.PortalVisit {
	if len(members) == 1 {
		return members[0]
	}

	var located []spatial.Point
	for _, m := range members {
		if m.Latitude == nil || m.Longitude == nil {
			continue
		}
		located = append(located, spatial.Point{Lat: *m.Latitude, Lon: *m.Longitude})
	}
	if len(located) == 0 {
		return members[len(members)/2]
	}
	center := spatial.Centroid(located)

	best := -1
	bestDist := 0.0
	for i := range members {
		m := &members[i]
		if m.Latitude == nil || m.Longitude == nil {
			continue
		}
		d := spatial.HaversineDistance(center.Lat, center.Lon, *m.Latitude, *m.Longitude)
		if best < 0 || d < bestDist {
			best = i
			bestDist = d
		}
	}
	if best < 0 {
		return members[len(members)/2]
	}
	return members[best]
}
