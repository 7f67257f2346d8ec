package service

import (
	"fmt"

	"github.com/ruteo/delivery-backend-go/internal/cluster"
	"github.com/ruteo/delivery-backend-go/internal/models"
	"github.com/ruteo/delivery-backend-go/internal/repository"
)

// Clustering policies selectable per request.
const (
	PolicyDiameter  = "diameter"
	PolicyThreshold = "threshold"
)

// ClusterRequest selects the policy and its knobs for one clustering pass.
// Zero-valued knobs fall back to the service defaults.
type ClusterRequest struct {
	Policy             string  `json:"policy"`
	MaxPoints          int     `json:"max_points"`
	MaxDiameterMeters  float64 `json:"max_diameter_meters"`
	MaxAccumulatedTime float64 `json:"max_accumulated_time"`
	MinTimeSeconds     float64 `json:"min_time_seconds"`
}

// ClusterService groups a run's portal visits under a selectable policy and
// persists the result.
type ClusterService struct {
	clusters *repository.ClusterRepository

	defaults      models.ClusterParams
	timeThreshold float64
}

// NewClusterService creates a new cluster service
func NewClusterService(clusters *repository.ClusterRepository, defaults models.ClusterParams, timeThreshold float64) *ClusterService {
	return &ClusterService{
		clusters:      clusters,
		defaults:      defaults,
		timeThreshold: timeThreshold,
	}
}

// BuildClusters runs the requested policy over the run's stored portal
// visits, replaces the run's clusters and returns them.
func (s *ClusterService) BuildClusters(runID string, req ClusterRequest) ([]models.PortalCluster, error) {
	visits, err := s.clusters.GetVisits(runID)
	if err != nil {
		return nil, err
	}

	var clusters []models.PortalCluster
	switch req.Policy {
	case PolicyDiameter, "":
		clusters, err = cluster.ByDiameter(visits, s.params(req))
		if err != nil {
			return nil, err
		}
	case PolicyThreshold:
		min := req.MinTimeSeconds
		if min <= 0 {
			min = s.timeThreshold
		}
		// The threshold policy is a predicate filter, not true clustering;
		// every surviving visit stands alone.
		for _, v := range cluster.FilterByTime(visits, min) {
			clusters = append(clusters, models.PortalCluster{
				Representative:  v,
				TimeAccumulated: v.TimeAccumulated,
				TimeMean:        v.TimeMean,
				VisitCount:      v.TimesVisited,
				MemberNumbers:   []string{v.Number},
				IsStop:          v.IsStop,
			})
		}
	default:
		return nil, fmt.Errorf("unknown clustering policy %q", req.Policy)
	}

	if err := s.clusters.SaveClusters(runID, clusters); err != nil {
		return nil, err
	}
	return clusters, nil
}

// GetClusters returns the run's stored clusters
func (s *ClusterService) GetClusters(runID string) ([]models.PortalCluster, error) {
	return s.clusters.GetClusters(runID)
}

// GetVisits returns the run's stored portal visits
func (s *ClusterService) GetVisits(runID string) ([]models.PortalVisit, error) {
	return s.clusters.GetVisits(runID)
}

func (s *ClusterService) params(req ClusterRequest) models.ClusterParams {
	p := s.defaults
	if req.MaxPoints > 0 {
		p.MaxPoints = req.MaxPoints
	}
	if req.MaxDiameterMeters > 0 {
		p.MaxDiameterMeters = req.MaxDiameterMeters
	}
	if req.MaxAccumulatedTime != 0 {
		p.MaxAccumulatedTime = req.MaxAccumulatedTime
	}
	return p
}
