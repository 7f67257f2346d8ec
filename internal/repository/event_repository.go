package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/ruteo/delivery-backend-go/internal/models"
)

// EventRepository handles database operations for unified events
type EventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

// ReplaceRun deletes any previous events of the run and inserts the new set
// in one transaction
func (r *EventRepository) ReplaceRun(runID string, events []models.Event) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM events WHERE run_id = ?", runID); err != nil {
		return fmt.Errorf("failed to clear events for run %s: %w", runID, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO events (run_id, codired, cod_pda, seccion, turno, fecha_hora,
			solo_fecha, solo_hora, longitud, latitud, seg_transcurrido, es_parada,
			dist_anterior, delta_t, velocidad)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare event insert: %w", err)
	}
	defer stmt.Close()

	for i := range events {
		e := &events[i]
		_, err := stmt.Exec(runID, e.UnitCode, e.DeviceCode, e.Section, e.Shift,
			e.Timestamp, e.DateOnly, e.TimeOnly,
			nullFloat(e.Longitude), nullFloat(e.Latitude), nullFloat(e.ElapsedSeconds),
			e.IsStop, e.DistPrevM, e.DeltaTSeconds, e.SpeedMPS)
		if err != nil {
			return fmt.Errorf("failed to insert event for run %s: %w", runID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit events for run %s: %w", runID, err)
	}
	return nil
}

// GetEvents retrieves a run's unified events, filtered and ordered by
// device, date and time
func (r *EventRepository) GetEvents(runID string, filter models.MetricsFilter) ([]models.Event, error) {
	query := `
		SELECT codired, cod_pda, seccion, turno, fecha_hora, solo_fecha, solo_hora,
			longitud, latitud, seg_transcurrido, es_parada, dist_anterior, delta_t, velocidad
		FROM events`

	conditions := []string{"run_id = ?"}
	args := []interface{}{runID}

	if filter.UnitCode != "" {
		conditions = append(conditions, "codired = ?")
		args = append(args, filter.UnitCode)
	}
	if filter.DeviceCode != "" {
		conditions = append(conditions, "cod_pda = ?")
		args = append(args, filter.DeviceCode)
	}
	if filter.DateFrom != "" {
		conditions = append(conditions, "solo_fecha >= ?")
		args = append(args, filter.DateFrom)
	}
	if filter.DateTo != "" {
		conditions = append(conditions, "solo_fecha <= ?")
		args = append(args, filter.DateTo)
	}

	query += " WHERE " + strings.Join(conditions, " AND ")
	query += " ORDER BY cod_pda, solo_fecha, fecha_hora"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events for run %s: %w", runID, err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var e models.Event
		var lon, lat, elapsed sql.NullFloat64
		if err := rows.Scan(&e.UnitCode, &e.DeviceCode, &e.Section, &e.Shift,
			&e.Timestamp, &e.DateOnly, &e.TimeOnly,
			&lon, &lat, &elapsed, &e.IsStop,
			&e.DistPrevM, &e.DeltaTSeconds, &e.SpeedMPS); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if lon.Valid {
			e.Longitude = &lon.Float64
		}
		if lat.Valid {
			e.Latitude = &lat.Float64
		}
		if elapsed.Valid {
			e.ElapsedSeconds = &elapsed.Float64
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func nullFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
