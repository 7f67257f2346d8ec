package spatial

import (
	"math"

	"github.com/golang/geo/s2"
)

// Constants
const (
	EarthRadiusMeters = 6371000.0 // Earth's mean radius in meters

	// MetersPerDegree is the heuristic used to compare a best-so-far
	// geodesic distance (meters) against a splitting-plane offset
	// (degrees) when pruning the k-d tree search. One degree of
	// longitude shrinks toward the poles, so at high latitudes this may
	// explore more nodes than strictly needed, never fewer. Swap
	// planeDistanceWithin for a cos(latitude)-scaled version if the
	// deployment ever leaves mid-latitudes.
	MetersPerDegree = 111320.0
)

// WGS84 ellipsoid parameters.
const (
	wgs84A = 6378137.0         // semi-major axis, meters
	wgs84F = 1 / 298.257223563 // flattening
	wgs84B = wgs84A * (1 - wgs84F)
)

// HaversineDistance calculates the great-circle distance between two points
// in meters on the mean-radius sphere.
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// GeodesicDistance calculates the ellipsoidal (WGS84) distance between two
// points in meters using Vincenty's inverse formula. Falls back to the
// haversine distance for near-antipodal pairs where the iteration does not
// converge; those never occur between points of one delivery round.
func GeodesicDistance(lat1, lon1, lat2, lon2 float64) float64 {
	if lat1 == lat2 && lon1 == lon2 {
		return 0
	}

	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	l := (lon2 - lon1) * math.Pi / 180

	u1 := math.Atan((1 - wgs84F) * math.Tan(phi1))
	u2 := math.Atan((1 - wgs84F) * math.Tan(phi2))
	sinU1, cosU1 := math.Sincos(u1)
	sinU2, cosU2 := math.Sincos(u2)

	lambda := l
	var sinSigma, cosSigma, sigma, sinAlpha, cos2Alpha, cos2SigmaM float64

	for i := 0; i < 100; i++ {
		sinLambda, cosLambda := math.Sincos(lambda)
		sinSigma = math.Sqrt(
			math.Pow(cosU2*sinLambda, 2) +
				math.Pow(cosU1*sinU2-sinU1*cosU2*cosLambda, 2))
		if sinSigma == 0 {
			return 0 // coincident points
		}
		cosSigma = sinU1*sinU2 + cosU1*cosU2*cosLambda
		sigma = math.Atan2(sinSigma, cosSigma)
		sinAlpha = cosU1 * cosU2 * sinLambda / sinSigma
		cos2Alpha = 1 - sinAlpha*sinAlpha
		if cos2Alpha == 0 {
			cos2SigmaM = 0 // equatorial line
		} else {
			cos2SigmaM = cosSigma - 2*sinU1*sinU2/cos2Alpha
		}

		c := wgs84F / 16 * cos2Alpha * (4 + wgs84F*(4-3*cos2Alpha))
		prev := lambda
		lambda = l + (1-c)*wgs84F*sinAlpha*
			(sigma+c*sinSigma*(cos2SigmaM+c*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))

		if math.Abs(lambda-prev) < 1e-12 {
			uSq := cos2Alpha * (wgs84A*wgs84A - wgs84B*wgs84B) / (wgs84B * wgs84B)
			a := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
			b := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))
			deltaSigma := b * sinSigma * (cos2SigmaM + b/4*
				(cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)-
					b/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SigmaM*cos2SigmaM)))
			return wgs84B * a * (sigma - deltaSigma)
		}
	}

	return HaversineDistance(lat1, lon1, lat2, lon2)
}

// planeDistanceWithin reports whether a splitting-plane offset (degrees) is
// smaller than the best distance found so far (meters), i.e. whether the far
// subtree could still contain a closer point. Isolates the MetersPerDegree
// heuristic behind one predicate.
func planeDistanceWithin(planeDeltaDegrees, bestMeters float64) bool {
	bestDegrees := bestMeters / MetersPerDegree
	return planeDeltaDegrees*planeDeltaDegrees < bestDegrees*bestDegrees
}
