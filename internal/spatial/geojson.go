package spatial

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Portal is one known building entrance from the reference GeoJSON.
type Portal struct {
	Latitude  float64
	Longitude float64
	Country   string
	Postcode  string
	Street    string
	Number    string
}

// looseString decodes GeoJSON property values that appear sometimes as
// strings and sometimes as bare numbers ("12" vs 12) in the reference data.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	}
	*s = looseString(strings.TrimSpace(string(b)))
	if *s == "null" {
		*s = ""
	}
	return nil
}

type geoFeature struct {
	Geometry struct {
		Type        string    `json:"type"`
		Coordinates []float64 `json:"coordinates"`
	} `json:"geometry"`
	Properties struct {
		Country  looseString `json:"country"`
		Postcode looseString `json:"postcode"`
		Street   looseString `json:"street"`
		Number   looseString `json:"number"`
	} `json:"properties"`
}

type featureCollection struct {
	Features []geoFeature `json:"features"`
}

// LoadPortals reads a GeoJSON FeatureCollection of Point features.
// GeoJSON stores coordinates as [longitude, latitude]; they are swapped to
// (latitude, longitude) here, at the boundary, so nothing downstream has to
// remember the convention. Features without a 2-element coordinate pair are
// skipped.
func LoadPortals(path string) ([]Portal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read portal file: %w", err)
	}

	var fc featureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to decode portal geojson %s: %w", path, err)
	}

	portals := make([]Portal, 0, len(fc.Features))
	for _, f := range fc.Features {
		if len(f.Geometry.Coordinates) != 2 {
			continue
		}
		portals = append(portals, Portal{
			Longitude: f.Geometry.Coordinates[0],
			Latitude:  f.Geometry.Coordinates[1],
			Country:   string(f.Properties.Country),
			Postcode:  string(f.Properties.Postcode),
			Street:    string(f.Properties.Street),
			Number:    string(f.Properties.Number),
		})
	}
	return portals, nil
}
