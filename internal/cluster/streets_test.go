package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruteo/delivery-backend-go/internal/models"
)

func annotated(street, number string) models.PortalPoint {
	return models.PortalPoint{
		Found:         true,
		NearestStreet: street,
		NearestNumber: number,
	}
}

func TestCountStreetPolicies(t *testing.T) {
	points := []models.PortalPoint{
		// Same parity throughout: the carrier is working one side.
		annotated("CALLE MAYOR", "1"),
		annotated("CALLE MAYOR", "3"),
		annotated("CALLE MAYOR", "5"),
		// Alternating parity: crossing back and forth.
		annotated("CALLE LUNA", "2"),
		annotated("CALLE LUNA", "3"),
		annotated("CALLE LUNA", "4"),
	}

	tallies := CountStreetPolicies(points)

	mayor := tallies["CALLE MAYOR"]
	assert.Equal(t, 2, mayor.EvenOdd)
	assert.Equal(t, 0, mayor.Zigzag)
	assert.Equal(t, models.PolicyEvenOdd, mayor.Policy)

	luna := tallies["CALLE LUNA"]
	assert.Equal(t, 0, luna.EvenOdd)
	assert.Equal(t, 2, luna.Zigzag)
	assert.Equal(t, models.PolicyZigzag, luna.Policy)
}

func TestCountStreetPoliciesTieGoesToEvenOdd(t *testing.T) {
	points := []models.PortalPoint{
		annotated("CALLE SOL", "1"),
		annotated("CALLE SOL", "3"),
		annotated("CALLE SOL", "2"),
	}
	tallies := CountStreetPolicies(points)
	assert.Equal(t, models.PolicyEvenOdd, tallies["CALLE SOL"].Policy)
}

func TestCountStreetPoliciesSkipsUnparsableNumbers(t *testing.T) {
	points := []models.PortalPoint{
		annotated("CALLE SOL", "1"),
		annotated("CALLE SOL", "N/A"),
		annotated("CALLE SOL", "3"),
	}
	tallies := CountStreetPolicies(points)
	_, found := tallies["CALLE SOL"]
	assert.False(t, found, "no comparable pair, no tally")
}

func TestAnnotateStreets(t *testing.T) {
	points := []models.PortalPoint{
		annotated("CALLE MAYOR", "1"),
		annotated("CALLE MAYOR", "3"),
		annotated("CALLE SOLITARIA", "7"), // single visit, nothing to compare
	}
	out := AnnotateStreets(points)

	assert.Equal(t, models.PolicyEvenOdd, out[0].PolicyType)
	assert.Equal(t, 1, out[0].EvenOddCount)
	assert.Equal(t, out[0].PolicyType, out[1].PolicyType)

	assert.Equal(t, models.PolicyUnknown, out[2].PolicyType)
	assert.Equal(t, 0, out[2].EvenOddCount)
	assert.Equal(t, 0, out[2].ZigzagCount)
}

func TestValidatePoliciesConflictIsFatal(t *testing.T) {
	visits := []models.PortalVisit{
		{Street: "CALLE MAYOR", PolicyType: models.PolicyEvenOdd},
		{Street: "CALLE MAYOR", PolicyType: models.PolicyZigzag},
		{Street: "CALLE LUNA", PolicyType: models.PolicyZigzag},
	}
	err := ValidatePolicies(visits)
	require.Error(t, err)

	var conflict *PolicyConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Contains(t, conflict.Streets, "CALLE MAYOR")
	assert.NotContains(t, conflict.Streets, "CALLE LUNA")
}

func TestValidatePoliciesAcceptsConsistentTags(t *testing.T) {
	visits := []models.PortalVisit{
		{Street: "CALLE MAYOR", PolicyType: models.PolicyEvenOdd},
		{Street: "CALLE MAYOR", PolicyType: models.PolicyEvenOdd},
		{Street: "CALLE LUNA", PolicyType: models.PolicyUnknown},
	}
	assert.NoError(t, ValidatePolicies(visits))
}

func TestValidatePoliciesRejectsUnknownTag(t *testing.T) {
	visits := []models.PortalVisit{{Street: "CALLE MAYOR", PolicyType: "espiral"}}
	assert.Error(t, ValidatePolicies(visits))
}
