package spatial

import (
	"github.com/ruteo/delivery-backend-go/internal/models"
)

// sentinel fills the not-found annotation fields. Points without
// coordinates, or queries against a missing index, keep their row but carry
// these markers; consumers must check Found before trusting the annotation.
func sentinel(p *models.PortalPoint) {
	p.Found = false
	p.NearestStreet = models.AddressNotFound
	p.NearestNumber = "N/A"
	p.NearestPostcode = "N/A"
	p.DistanceM = -1
	p.PolicyType = models.PolicyUnknown
}

// Associate annotates every event with its nearest portal using the given
// index. The index may be nil (no reference data for the unit), in which
// case every point gets the not-found sentinel. Input order is preserved and
// no rows are dropped.
func Associate(events []models.Event, ix *Index) []models.PortalPoint {
	points := make([]models.PortalPoint, len(events))
	for i, e := range events {
		points[i].Event = e
		if !e.HasCoordinates() || ix == nil {
			sentinel(&points[i])
			continue
		}

		portal, meters, ok := ix.Nearest(*e.Latitude, *e.Longitude)
		if !ok {
			sentinel(&points[i])
			continue
		}
		points[i].Found = true
		points[i].NearestStreet = portal.Street
		points[i].NearestNumber = portal.Number
		points[i].NearestPostcode = portal.Postcode
		points[i].NearestLatitude = portal.Latitude
		points[i].NearestLongitude = portal.Longitude
		points[i].DistanceM = meters
		points[i].PolicyType = models.PolicyUnknown
	}
	return points
}
