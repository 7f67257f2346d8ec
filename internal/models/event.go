package models

import "time"

// Source identifiers for the three CSV exports.
const (
	SourceTrace       = "A" // GPS trace samples
	SourceActivity    = "B" // registered delivery timestamps
	SourceCoordinates = "C" // registered delivery coordinates
)

// Event is one normalized row of any source. Raw CSV rows are parsed
// directly into this shape by the ingest package; coordinate and timestamp
// normalization happens at read time, so a zero Timestamp means the source
// string was unparsable.
type Event struct {
	UnitCode   string `json:"codired"`
	DeviceCode string `json:"cod_pda,omitempty"`
	Section    string `json:"seccion,omitempty"`
	Shift      string `json:"turno,omitempty"`

	Timestamp time.Time `json:"fecha_hora"`
	DateOnly  string    `json:"solo_fecha"` // 2006-01-02
	TimeOnly  string    `json:"solo_hora"`  // 15:04:05

	Latitude  *float64 `json:"latitud"`
	Longitude *float64 `json:"longitud"`

	// Activity-source payload (source B only).
	ElapsedSeconds *float64 `json:"seg_transcurrido,omitempty"`
	ActivityCode   string   `json:"cod_actividad,omitempty"`

	// Set D rows carry the activity-to-coordinate time gap from the join.
	JoinDeltaSeconds float64 `json:"join_delta,omitempty"`

	// True for reconciled stop events (set D origin), false for trace rows.
	IsStop bool `json:"es_parada"`

	// Derived by the outlier filter.
	DistPrevM     float64 `json:"dist_anterior"`
	DeltaTSeconds float64 `json:"delta_t"`
	SpeedMPS      float64 `json:"velocidad"`
}

// HasCoordinates reports whether both coordinates parsed to valid floats.
func (e *Event) HasCoordinates() bool {
	return e.Latitude != nil && e.Longitude != nil
}

// HasTimestamp reports whether the source timestamp was parsable.
func (e *Event) HasTimestamp() bool {
	return !e.Timestamp.IsZero()
}

// AddressNotFound is the sentinel used when no portal index is available or
// a point carries no coordinates. Downstream consumers must check Found
// rather than assume annotations are present.
const AddressNotFound = "No encontrado"

// PortalPoint is an Event annotated with its nearest portal. The annotation
// is derived and read-only; the embedded Event keeps its identity.
type PortalPoint struct {
	Event

	Found            bool    `json:"found"`
	NearestStreet    string  `json:"street"`
	NearestNumber    string  `json:"number"`
	NearestPostcode  string  `json:"post_code"`
	NearestLatitude  float64 `json:"nearest_latitud"`
	NearestLongitude float64 `json:"nearest_longitud"`
	DistanceM        float64 `json:"distance"`

	// Street numbering-policy annotation (filled by cluster.AnnotateStreets).
	EvenOddCount int    `json:"conteo_par_impar"`
	ZigzagCount  int    `json:"conteo_zigzag"`
	PolicyType   string `json:"tipo"`
}
