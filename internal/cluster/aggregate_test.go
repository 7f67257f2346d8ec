package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruteo/delivery-backend-go/internal/models"
)

func dwellPoint(street, number, device string, seconds float64, stop bool) models.PortalPoint {
	p := models.PortalPoint{
		Found:            true,
		NearestStreet:    street,
		NearestNumber:    number,
		NearestPostcode:  "28013",
		NearestLatitude:  40.4167,
		NearestLongitude: -3.7037,
		DistanceM:        4,
		PolicyType:       models.PolicyZigzag,
	}
	p.DeviceCode = device
	p.DeltaTSeconds = seconds
	p.IsStop = stop
	return p
}

func TestCollapseConsecutiveDuplicates(t *testing.T) {
	a := dwellPoint("CALLE MAYOR", "1", "pda1", 10, false)
	a.SpeedMPS = 1.0
	b := dwellPoint("CALLE MAYOR", "1", "pda1", 20, false)
	b.SpeedMPS = 3.0
	c := dwellPoint("CALLE MAYOR", "3", "pda1", 5, false)
	c.SpeedMPS = 2.0

	out := CollapseConsecutiveDuplicates([]models.PortalPoint{a, b, c})
	require.Len(t, out, 2)
	assert.Equal(t, 30.0, out[0].DeltaTSeconds, "run dwell time is summed")
	assert.Equal(t, 2.0, out[0].SpeedMPS, "run speed is averaged")
	assert.Equal(t, 5.0, out[1].DeltaTSeconds)
	assert.Equal(t, 2.0, out[1].SpeedMPS)
}

func TestCollapseKeepsNonConsecutiveRunsApart(t *testing.T) {
	points := []models.PortalPoint{
		dwellPoint("CALLE MAYOR", "1", "pda1", 10, false),
		dwellPoint("CALLE MAYOR", "3", "pda1", 10, false),
		dwellPoint("CALLE MAYOR", "1", "pda1", 10, false),
	}
	out := CollapseConsecutiveDuplicates(points)
	assert.Len(t, out, 3, "revisits are separate runs, not merged")
}

func TestAggregatePortalsSignedTime(t *testing.T) {
	points := []models.PortalPoint{
		dwellPoint("CALLE MAYOR", "1", "pda1", 120, false),
		dwellPoint("CALLE MAYOR", "1", "pda2", 30, true), // stop contributes -30
		dwellPoint("CALLE LUNA", "2", "pda1", 10, false),
		dwellPoint("CALLE LUNA", "2", "pda1", 40, true), // nets to -30, dropped
	}

	visits := AggregatePortals(points)
	require.Len(t, visits, 1)

	v := visits[0]
	assert.Equal(t, "CALLE MAYOR", v.Street)
	assert.Equal(t, 90.0, v.TimeAccumulated)
	assert.Equal(t, 45.0, v.TimeMean)
	assert.Equal(t, 2, v.TimesVisited)
	assert.True(t, v.IsStop)
	assert.ElementsMatch(t, []string{"pda1", "pda2"}, v.DeviceCodes)
	assert.Equal(t, "28013", v.Postcode)
	require.NotNil(t, v.Latitude)
	assert.Equal(t, 40.4167, *v.Latitude)
	assert.Equal(t, 4.0, v.DistancePortalM)
}

func TestAggregatePortalsPostcodeMode(t *testing.T) {
	a := dwellPoint("CALLE MAYOR", "1", "pda1", 50, false)
	b := dwellPoint("CALLE MAYOR", "1", "pda1", 50, false)
	c := dwellPoint("CALLE MAYOR", "1", "pda1", 50, false)
	b.NearestPostcode = "28014"
	c.NearestPostcode = "28014"

	visits := AggregatePortals([]models.PortalPoint{a, b, c})
	require.Len(t, visits, 1)
	assert.Equal(t, "28014", visits[0].Postcode)
}

func TestAggregatePortalsDeterministicOrder(t *testing.T) {
	points := []models.PortalPoint{
		dwellPoint("CALLE LUNA", "2", "pda1", 10, false),
		dwellPoint("CALLE MAYOR", "1", "pda1", 10, false),
		dwellPoint("CALLE ALTA", "9", "pda1", 10, false),
	}
	visits := AggregatePortals(points)
	require.Len(t, visits, 3)
	assert.Equal(t, "CALLE ALTA", visits[0].Street)
	assert.Equal(t, "CALLE LUNA", visits[1].Street)
	assert.Equal(t, "CALLE MAYOR", visits[2].Street)
}

func TestFilterByTime(t *testing.T) {
	visits := []models.PortalVisit{
		{Street: "A", TimeAccumulated: 99},
		{Street: "B", TimeAccumulated: 100},
		{Street: "C", TimeAccumulated: 250},
	}
	out := FilterByTime(visits, DefaultTimeThresholdSeconds)
	require.Len(t, out, 2)
	assert.Equal(t, "B", out[0].Street)
	assert.Equal(t, "C", out[1].Street)
}

func TestAggregatePortalsEmpty(t *testing.T) {
	assert.Empty(t, AggregatePortals(nil))
}
