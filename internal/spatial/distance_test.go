package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeodesicAgainstHaversine(t *testing.T) {
	// Short urban hops: ellipsoidal and spherical distance agree to well
	// under 1%.
	cases := []struct{ lat1, lon1, lat2, lon2 float64 }{
		{40.416775, -3.703790, 40.417775, -3.703790},
		{40.416775, -3.703790, 40.416775, -3.701790},
		{40.416775, -3.703790, 40.426775, -3.713790},
	}
	for _, c := range cases {
		g := GeodesicDistance(c.lat1, c.lon1, c.lat2, c.lon2)
		h := HaversineDistance(c.lat1, c.lon1, c.lat2, c.lon2)
		assert.InEpsilon(t, h, g, 0.01)
	}
}

func TestGeodesicCoincidentPoints(t *testing.T) {
	assert.Zero(t, GeodesicDistance(40.0, -3.7, 40.0, -3.7))
}

func TestGeodesicKnownDistance(t *testing.T) {
	// One degree of latitude at the equator is ~110,574 m on WGS84.
	d := GeodesicDistance(0, 0, 1, 0)
	assert.InEpsilon(t, 110574.0, d, 0.001)
}

func TestGeodesicSymmetry(t *testing.T) {
	d1 := GeodesicDistance(40.42, -3.70, 40.43, -3.71)
	d2 := GeodesicDistance(40.43, -3.71, 40.42, -3.70)
	assert.InDelta(t, d1, d2, 1e-6)
}

func TestPlaneDistanceWithin(t *testing.T) {
	// 0.001 degrees is ~111 m: a 200 m best distance still requires
	// crossing the plane, a 50 m one does not.
	assert.True(t, planeDistanceWithin(0.001, 200))
	assert.False(t, planeDistanceWithin(0.001, 50))
}
