package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruteo/delivery-backend-go/internal/models"
)

func f(v float64) *float64 { return &v }

func TestAssociateAnnotatesNearestPortal(t *testing.T) {
	ix := BuildIndex([]Portal{
		{Latitude: 40.416775, Longitude: -3.703790, Street: "Calle Mayor", Number: "1", Postcode: "28013"},
		{Latitude: 40.420000, Longitude: -3.700000, Street: "Calle Arenal", Number: "7", Postcode: "28013"},
	})

	events := []models.Event{
		{DeviceCode: "PDA01", Latitude: f(40.4168), Longitude: f(-3.7038)},
		{DeviceCode: "PDA01", Latitude: f(40.4199), Longitude: f(-3.7001)},
	}

	points := Associate(events, ix)
	require.Len(t, points, 2)

	assert.True(t, points[0].Found)
	assert.Equal(t, "Calle Mayor", points[0].NearestStreet)
	assert.Equal(t, "1", points[0].NearestNumber)
	assert.Equal(t, "28013", points[0].NearestPostcode)
	assert.Greater(t, points[0].DistanceM, 0.0)
	assert.Less(t, points[0].DistanceM, 50.0)

	assert.Equal(t, "Calle Arenal", points[1].NearestStreet)
}

func TestAssociateSentinelWithoutCoordinates(t *testing.T) {
	ix := BuildIndex([]Portal{{Latitude: 40.0, Longitude: -3.7, Street: "x"}})

	points := Associate([]models.Event{{DeviceCode: "PDA01"}}, ix)
	require.Len(t, points, 1, "rows without coordinates are kept, not dropped")
	assert.False(t, points[0].Found)
	assert.Equal(t, models.AddressNotFound, points[0].NearestStreet)
	assert.Equal(t, -1.0, points[0].DistanceM)
}

func TestAssociateSentinelWithoutIndex(t *testing.T) {
	points := Associate([]models.Event{
		{DeviceCode: "PDA01", Latitude: f(40.0), Longitude: f(-3.7)},
	}, nil)
	require.Len(t, points, 1)
	assert.False(t, points[0].Found)
	assert.Equal(t, models.AddressNotFound, points[0].NearestStreet)
}
