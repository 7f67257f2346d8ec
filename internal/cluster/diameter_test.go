package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruteo/delivery-backend-go/internal/models"
)

// latStepPerMeter is close enough for test geometry: one degree of latitude
// near Madrid is about 111km.
const latStepPerMeter = 1.0 / 111132.0

func visit(street, number, policy string, lat, lon float64) models.PortalVisit {
	return models.PortalVisit{
		Street:       street,
		Number:       number,
		PolicyType:   policy,
		Latitude:     &lat,
		Longitude:    &lon,
		TimesVisited: 1,
	}
}

func TestByDiameterSplitsWhenDiameterExceeded(t *testing.T) {
	// Five odd-numbered portals 50m apart along the street. With a 120m
	// diameter the third member sits 100m from the first and still fits;
	// the fourth would sit 150m out and starts a new cluster.
	var visits []models.PortalVisit
	for i, number := range []string{"1", "3", "5", "7", "9"} {
		visits = append(visits, visit(
			"CALLE MAYOR", number, models.PolicyEvenOdd,
			40.0+float64(i)*50*latStepPerMeter, -3.70))
	}

	params := models.ClusterParams{MaxPoints: 10, MaxDiameterMeters: 120, MaxAccumulatedTime: -1}
	clusters, err := ByDiameter(visits, params)
	require.NoError(t, err)
	require.Len(t, clusters, 2)

	assert.Equal(t, []string{"1", "3", "5"}, clusters[0].MemberNumbers)
	assert.Equal(t, []string{"7", "9"}, clusters[1].MemberNumbers)
	assert.Equal(t, 3, clusters[0].VisitCount)
}

func TestByDiameterMaxPoints(t *testing.T) {
	var visits []models.PortalVisit
	for i, number := range []string{"1", "3", "5", "7"} {
		visits = append(visits, visit(
			"CALLE MAYOR", number, models.PolicyEvenOdd,
			40.0+float64(i)*5*latStepPerMeter, -3.70))
	}

	params := models.ClusterParams{MaxPoints: 2, MaxDiameterMeters: 1000, MaxAccumulatedTime: -1}
	clusters, err := ByDiameter(visits, params)
	require.NoError(t, err)
	require.Len(t, clusters, 2)
	assert.Len(t, clusters[0].MemberNumbers, 2)
	assert.Len(t, clusters[1].MemberNumbers, 2)
}

func TestByDiameterTimeCap(t *testing.T) {
	var visits []models.PortalVisit
	for i, number := range []string{"2", "4", "6"} {
		v := visit("CALLE MAYOR", number, models.PolicyEvenOdd,
			40.0+float64(i)*5*latStepPerMeter, -3.70)
		v.TimeAccumulated = 60
		visits = append(visits, v)
	}

	params := models.ClusterParams{MaxPoints: 10, MaxDiameterMeters: 1000, MaxAccumulatedTime: 120}
	clusters, err := ByDiameter(visits, params)
	require.NoError(t, err)
	require.Len(t, clusters, 2, "third visit would push 180s past the 120s cap")
	assert.Equal(t, 120.0, clusters[0].TimeAccumulated)
	assert.Equal(t, 60.0, clusters[1].TimeAccumulated)
}

func TestByDiameterEvenOddSplitsParities(t *testing.T) {
	// Even and odd numbers interleaved in arrival order; the policy orders
	// each side by house number and never mixes them.
	visits := []models.PortalVisit{
		visit("CALLE MAYOR", "4", models.PolicyEvenOdd, 40.0, -3.70),
		visit("CALLE MAYOR", "1", models.PolicyEvenOdd, 40.0001, -3.70),
		visit("CALLE MAYOR", "2", models.PolicyEvenOdd, 40.0002, -3.70),
		visit("CALLE MAYOR", "3", models.PolicyEvenOdd, 40.0003, -3.70),
	}

	clusters, err := ByDiameter(visits, DefaultParams)
	require.NoError(t, err)
	require.Len(t, clusters, 2)
	assert.Equal(t, []string{"2", "4"}, clusters[0].MemberNumbers)
	assert.Equal(t, []string{"1", "3"}, clusters[1].MemberNumbers)
}

func TestByDiameterZigzagKeepsArrivalOrder(t *testing.T) {
	visits := []models.PortalVisit{
		visit("CALLE LUNA", "5", models.PolicyZigzag, 40.0, -3.70),
		visit("CALLE LUNA", "2", models.PolicyZigzag, 40.0001, -3.70),
		visit("CALLE LUNA", "7", models.PolicyZigzag, 40.0002, -3.70),
	}

	clusters, err := ByDiameter(visits, DefaultParams)
	require.NoError(t, err)
	require.Len(t, clusters, 1)
	assert.Equal(t, []string{"5", "2", "7"}, clusters[0].MemberNumbers)
}

func TestByDiameterPolicyConflictFails(t *testing.T) {
	visits := []models.PortalVisit{
		visit("CALLE MAYOR", "1", models.PolicyEvenOdd, 40.0, -3.70),
		visit("CALLE MAYOR", "2", models.PolicyZigzag, 40.0001, -3.70),
	}
	_, err := ByDiameter(visits, DefaultParams)
	assert.Error(t, err)
}

func TestByDiameterMissingCoordinatesCloseCluster(t *testing.T) {
	blind := models.PortalVisit{
		Street: "CALLE LUNA", Number: "3",
		PolicyType: models.PolicyZigzag, TimesVisited: 1,
	}
	visits := []models.PortalVisit{
		visit("CALLE LUNA", "1", models.PolicyZigzag, 40.0, -3.70),
		blind,
		visit("CALLE LUNA", "5", models.PolicyZigzag, 40.0001, -3.70),
	}

	clusters, err := ByDiameter(visits, DefaultParams)
	require.NoError(t, err)
	// The coordinate-less visit cannot satisfy the diameter bound, so it
	// starts its own cluster and then absorbs nothing.
	require.Len(t, clusters, 3)
}

func TestRepresentativeNearestCentroid(t *testing.T) {
	members := []models.PortalVisit{
		visit("C", "1", models.PolicyZigzag, 40.0, -3.70),
		visit("C", "3", models.PolicyZigzag, 40.0010, -3.70),
		visit("C", "5", models.PolicyZigzag, 40.0011, -3.70),
	}
	// Centroid latitude is 40.0007; the middle member sits closest.
	rep := representative(members)
	assert.Equal(t, "3", rep.Number)
}

func TestRepresentativeFallbackMiddleIndex(t *testing.T) {
	members := []models.PortalVisit{
		{Street: "C", Number: "1"},
		{Street: "C", Number: "3"},
		{Street: "C", Number: "5"},
	}
	rep := representative(members)
	assert.Equal(t, "3", rep.Number)
}
