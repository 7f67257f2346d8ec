package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ruteo/delivery-backend-go/internal/models"
)

// ClusterRepository handles database operations for portal visits and their
// clusters
type ClusterRepository struct {
	db *sql.DB
}

// NewClusterRepository creates a new cluster repository
func NewClusterRepository(db *sql.DB) *ClusterRepository {
	return &ClusterRepository{db: db}
}

// SaveVisits replaces the run's portal visits
func (r *ClusterRepository) SaveVisits(runID string, visits []models.PortalVisit) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM portal_visits WHERE run_id = ?", runID); err != nil {
		return fmt.Errorf("failed to clear visits for run %s: %w", runID, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO portal_visits (run_id, street, number, latitud, longitud,
			time_accumulated, time_mean, distance_portal, post_code,
			even_odd_count, zigzag_count, policy_type, is_stop, times_visited, device_codes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare visit insert: %w", err)
	}
	defer stmt.Close()

	for i := range visits {
		v := &visits[i]
		devices, err := json.Marshal(v.DeviceCodes)
		if err != nil {
			return fmt.Errorf("failed to encode device codes: %w", err)
		}
		_, err = stmt.Exec(runID, v.Street, v.Number,
			nullFloat(v.Latitude), nullFloat(v.Longitude),
			v.TimeAccumulated, v.TimeMean, v.DistancePortalM, v.Postcode,
			v.EvenOddCount, v.ZigzagCount, v.PolicyType, v.IsStop, v.TimesVisited,
			string(devices))
		if err != nil {
			return fmt.Errorf("failed to insert visit for run %s: %w", runID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit visits for run %s: %w", runID, err)
	}
	return nil
}

// GetVisits retrieves the run's portal visits ordered by street and number
func (r *ClusterRepository) GetVisits(runID string) ([]models.PortalVisit, error) {
	rows, err := r.db.Query(`
		SELECT street, number, latitud, longitud, time_accumulated, time_mean,
			distance_portal, post_code, even_odd_count, zigzag_count, policy_type,
			is_stop, times_visited, device_codes
		FROM portal_visits WHERE run_id = ? ORDER BY street, number`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query visits for run %s: %w", runID, err)
	}
	defer rows.Close()

	var visits []models.PortalVisit
	for rows.Next() {
		var v models.PortalVisit
		var lat, lon sql.NullFloat64
		var devices sql.NullString
		if err := rows.Scan(&v.Street, &v.Number, &lat, &lon,
			&v.TimeAccumulated, &v.TimeMean, &v.DistancePortalM, &v.Postcode,
			&v.EvenOddCount, &v.ZigzagCount, &v.PolicyType,
			&v.IsStop, &v.TimesVisited, &devices); err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}
		if lat.Valid {
			v.Latitude = &lat.Float64
		}
		if lon.Valid {
			v.Longitude = &lon.Float64
		}
		if devices.Valid && devices.String != "" {
			if err := json.Unmarshal([]byte(devices.String), &v.DeviceCodes); err != nil {
				return nil, fmt.Errorf("failed to decode device codes: %w", err)
			}
		}
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

// SaveClusters replaces the run's clusters
func (r *ClusterRepository) SaveClusters(runID string, clusters []models.PortalCluster) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM clusters WHERE run_id = ?", runID); err != nil {
		return fmt.Errorf("failed to clear clusters for run %s: %w", runID, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO clusters (run_id, street, number, latitud, longitud,
			time_accumulated, time_mean, visit_count, member_numbers, post_code,
			policy_type, is_stop)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare cluster insert: %w", err)
	}
	defer stmt.Close()

	for i := range clusters {
		c := &clusters[i]
		members, err := json.Marshal(c.MemberNumbers)
		if err != nil {
			return fmt.Errorf("failed to encode member numbers: %w", err)
		}
		rep := &c.Representative
		_, err = stmt.Exec(runID, rep.Street, rep.Number,
			nullFloat(rep.Latitude), nullFloat(rep.Longitude),
			c.TimeAccumulated, c.TimeMean, c.VisitCount, string(members),
			rep.Postcode, rep.PolicyType, c.IsStop)
		if err != nil {
			return fmt.Errorf("failed to insert cluster for run %s: %w", runID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit clusters for run %s: %w", runID, err)
	}
	return nil
}

// GetClusters retrieves the run's clusters ordered by street and number
func (r *ClusterRepository) GetClusters(runID string) ([]models.PortalCluster, error) {
	rows, err := r.db.Query(`
		SELECT street, number, latitud, longitud, time_accumulated, time_mean,
			visit_count, member_numbers, post_code, policy_type, is_stop
		FROM clusters WHERE run_id = ? ORDER BY street, number`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query clusters for run %s: %w", runID, err)
	}
	defer rows.Close()

	var clusters []models.PortalCluster
	for rows.Next() {
		var c models.PortalCluster
		var lat, lon sql.NullFloat64
		var members sql.NullString
		rep := &c.Representative
		if err := rows.Scan(&rep.Street, &rep.Number, &lat, &lon,
			&c.TimeAccumulated, &c.TimeMean, &c.VisitCount, &members,
			&rep.Postcode, &rep.PolicyType, &c.IsStop); err != nil {
			return nil, fmt.Errorf("failed to scan cluster: %w", err)
		}
		if lat.Valid {
			rep.Latitude = &lat.Float64
		}
		if lon.Valid {
			rep.Longitude = &lon.Float64
		}
		if members.Valid && members.String != "" {
			if err := json.Unmarshal([]byte(members.String), &c.MemberNumbers); err != nil {
				return nil, fmt.Errorf("failed to decode member numbers: %w", err)
			}
		}
		clusters = append(clusters, c)
	}
	return clusters, rows.Err()
}
