package models

// Street numbering-policy tags. EvenOdd streets deliver one side of the
// street at a time, so house parities cluster separately; zigzag streets are
// walked in arrival order. PolicyUnknown is treated like zigzag.
const (
	PolicyEvenOdd = "par/impar"
	PolicyZigzag  = "zigzag"
	PolicyUnknown = "-"
)

// PortalVisit is one portal-level aggregate: every annotated point sharing
// (street, number) folded into a single record. This is the clusterer input.
type PortalVisit struct {
	Street string `json:"street"`
	Number string `json:"number"`

	DeviceCodes []string `json:"cod_pda"`

	// Portal (not sample) coordinates.
	Latitude  *float64 `json:"latitud"`
	Longitude *float64 `json:"longitud"`

	TimeAccumulated float64 `json:"time_accumulated"` // seconds
	TimeMean        float64 `json:"time_mean"`
	DistancePortalM float64 `json:"distance_portal"`
	Postcode        string  `json:"post_code"`

	EvenOddCount int    `json:"even_odd_count"`
	ZigzagCount  int    `json:"zigzag_count"`
	PolicyType   string `json:"type"`

	IsStop       bool `json:"is_stop"`
	TimesVisited int  `json:"times_visited"`
}

// PortalCluster groups nearby portal visits on the same street. The
// representative visit is the member geographically closest to the cluster
// centroid; accumulated metrics are summed over all members.
type PortalCluster struct {
	Representative PortalVisit `json:"representative"`

	TimeAccumulated float64  `json:"time_accumulated"`
	TimeMean        float64  `json:"time_mean"`
	VisitCount      int      `json:"visit_count"`
	MemberNumbers   []string `json:"puntos_cluster"`
	IsStop          bool     `json:"is_stop"`
}

// ClusterParams are the tunables of the diameter-bounded policy. A
// MaxAccumulatedTime of -1 disables the time cap.
type ClusterParams struct {
	MaxPoints          int     `json:"max_points"`
	MaxDiameterMeters  float64 `json:"max_diameter_meters"`
	MaxAccumulatedTime float64 `json:"max_accumulated_time"`
}
