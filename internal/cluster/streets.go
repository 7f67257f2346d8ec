package cluster

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ruteo/delivery-backend-go/internal/models"
)

// StreetTally holds the numbering-policy evidence collected for one street:
// how many consecutive visit pairs kept the same house-number parity versus
// how many alternated.
type StreetTally struct {
	EvenOdd int
	Zigzag  int
	Policy  string
}

// CountStreetPolicies walks the annotated points in visit order and, for
// every consecutive pair on the same street with parseable house numbers,
// tallies whether the parity repeated or alternated. A repeated parity is
// evidence the carrier works one side of the street at a time. The dominant
// tally decides the policy; a tie goes to even/odd.
func CountStreetPolicies(points []models.PortalPoint) map[string]StreetTally {
	tallies := map[string]StreetTally{}

	for i := 1; i < len(points); i++ {
		cur, prev := &points[i], &points[i-1]
		if cur.NearestStreet != prev.NearestStreet {
			continue
		}
		curNum, err1 := strconv.Atoi(strings.TrimSpace(cur.NearestNumber))
		prevNum, err2 := strconv.Atoi(strings.TrimSpace(prev.NearestNumber))
		if err1 != nil || err2 != nil {
			continue
		}

		t := tallies[cur.NearestStreet]
		if curNum%2 == prevNum%2 {
			t.EvenOdd++
		} else {
			t.Zigzag++
		}
		tallies[cur.NearestStreet] = t
	}

	for street, t := range tallies {
		if t.EvenOdd >= t.Zigzag {
			t.Policy = models.PolicyEvenOdd
		} else {
			t.Policy = models.PolicyZigzag
		}
		tallies[street] = t
	}
	return tallies
}

// AnnotateStreets writes each point's street tally and inferred policy back
// onto the point. Streets with no tally, typically single-visit streets or
// the not-found sentinel, get the unknown policy and zero counts.
func AnnotateStreets(points []models.PortalPoint) []models.PortalPoint {
	tallies := CountStreetPolicies(points)
	for i := range points {
		p := &points[i]
		t, ok := tallies[p.NearestStreet]
		if !ok {
			p.EvenOddCount = 0
			p.ZigzagCount = 0
			p.PolicyType = models.PolicyUnknown
			continue
		}
		p.EvenOddCount = t.EvenOdd
		p.ZigzagCount = t.Zigzag
		p.PolicyType = t.Policy
	}
	return points
}

// PolicyConflictError reports streets tagged with more than one numbering
// policy. Downstream clustering depends on a single policy per street, so
// this is a data-integrity failure the operator has to resolve in the input.
type PolicyConflictError struct {
	Streets map[string][]string
}

func (e *PolicyConflictError) Error() string {
	names := make([]string, 0, len(e.Streets))
	for s := range e.Streets {
		names = append(names, s)
	}
	sort.Strings(names)
	return fmt.Sprintf("streets tagged with more than one numbering policy: %s", strings.Join(names, ", "))
}

// ValidatePolicies checks that every street carries exactly one policy tag
// across all its visits. Unknown tags other than the recognized three are
// rejected as well.
func ValidatePolicies(visits []models.PortalVisit) error {
	seen := map[string]map[string]bool{}
	for i := range visits {
		v := &visits[i]
		switch v.PolicyType {
		case models.PolicyEvenOdd, models.PolicyZigzag, models.PolicyUnknown:
		default:
			return fmt.Errorf("unknown numbering policy %q on street %q", v.PolicyType, v.Street)
		}
		if seen[v.Street] == nil {
			seen[v.Street] = map[string]bool{}
		}
		seen[v.Street][v.PolicyType] = true
	}

	conflicts := map[string][]string{}
	for street, tags := range seen {
		if len(tags) < 2 {
			continue
		}
		var list []string
		for tag := range tags {
			list = append(list, tag)
		}
		sort.Strings(list)
		conflicts[street] = list
	}
	if len(conflicts) > 0 {
		return &PolicyConflictError{Streets: conflicts}
	}
	return nil
}
