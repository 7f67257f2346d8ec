package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCentroid(t *testing.T) {
	points := []Point{
		{Lat: 40.0, Lon: -3.0},
		{Lat: 42.0, Lon: -5.0},
	}
	c := Centroid(points)
	assert.Equal(t, 41.0, c.Lat)
	assert.Equal(t, -4.0, c.Lon)

	assert.Equal(t, Point{}, Centroid(nil))
}

func TestPathLength(t *testing.T) {
	points := []Point{
		{Lat: 40.0, Lon: -3.70},
		{Lat: 40.001, Lon: -3.70},
		{Lat: 40.002, Lon: -3.70},
	}
	total := PathLength(points)
	// Two hops of roughly 111m of latitude each.
	assert.InEpsilon(t, 222.0, total, 0.01)

	assert.Equal(t, 0.0, PathLength(points[:1]))
}

func TestBoundingBox(t *testing.T) {
	points := []Point{
		{Lat: 40.0, Lon: -3.5},
		{Lat: 41.0, Lon: -3.9},
		{Lat: 40.5, Lon: -3.1},
	}
	minLat, minLon, maxLat, maxLon := BoundingBox(points)
	assert.Equal(t, 40.0, minLat)
	assert.Equal(t, -3.9, minLon)
	assert.Equal(t, 41.0, maxLat)
	assert.Equal(t, -3.1, maxLon)
}
