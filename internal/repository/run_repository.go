package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ruteo/delivery-backend-go/internal/models"
)

// RunRepository handles database operations for pipeline runs
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a pending run
func (r *RunRepository) Create(run *models.Run) error {
	_, err := r.db.Exec(`
		INSERT INTO runs (id, status, path_a, path_b, path_c, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Status, run.PathA, run.PathB, run.PathC, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create run %s: %w", run.ID, err)
	}
	return nil
}

// MarkRunning transitions a run to the running state
func (r *RunRepository) MarkRunning(id string) error {
	_, err := r.db.Exec("UPDATE runs SET status = ? WHERE id = ?", models.RunRunning, id)
	if err != nil {
		return fmt.Errorf("failed to mark run %s running: %w", id, err)
	}
	return nil
}

// MarkCompleted stores the audit payload and closes the run
func (r *RunRepository) MarkCompleted(id string, auditJSON string) error {
	now := time.Now()
	_, err := r.db.Exec(
		"UPDATE runs SET status = ?, audit_json = ?, completed_at = ? WHERE id = ?",
		models.RunCompleted, auditJSON, now, id)
	if err != nil {
		return fmt.Errorf("failed to mark run %s completed: %w", id, err)
	}
	return nil
}

// MarkFailed records the failure reason and closes the run
func (r *RunRepository) MarkFailed(id string, cause string) error {
	now := time.Now()
	_, err := r.db.Exec(
		"UPDATE runs SET status = ?, error = ?, completed_at = ? WHERE id = ?",
		models.RunFailed, cause, now, id)
	if err != nil {
		return fmt.Errorf("failed to mark run %s failed: %w", id, err)
	}
	return nil
}

// GetByID fetches one run; a missing id yields (nil, nil)
func (r *RunRepository) GetByID(id string) (*models.Run, error) {
	var run models.Run
	var errMsg, auditJSON sql.NullString
	var completedAt sql.NullTime

	err := r.db.QueryRow(`
		SELECT id, status, path_a, path_b, path_c, error, audit_json, created_at, completed_at
		FROM runs WHERE id = ?`, id).Scan(
		&run.ID, &run.Status, &run.PathA, &run.PathB, &run.PathC,
		&errMsg, &auditJSON, &run.CreatedAt, &completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}

	run.Error = errMsg.String
	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}
	return &run, nil
}

// GetAudit returns a completed run's audit payload as raw JSON
func (r *RunRepository) GetAudit(id string) (string, error) {
	var auditJSON sql.NullString
	err := r.db.QueryRow("SELECT audit_json FROM runs WHERE id = ?", id).Scan(&auditJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get audit for run %s: %w", id, err)
	}
	return auditJSON.String, nil
}

// List returns recent runs, newest first
func (r *RunRepository) List(limit int) ([]models.Run, error) {
	if limit < 1 || limit > 1000 {
		limit = 100
	}

	rows, err := r.db.Query(`
		SELECT id, status, path_a, path_b, path_c, error, created_at, completed_at
		FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []models.Run
	for rows.Next() {
		var run models.Run
		var errMsg sql.NullString
		var completedAt sql.NullTime
		if err := rows.Scan(&run.ID, &run.Status, &run.PathA, &run.PathB, &run.PathC,
			&errMsg, &run.CreatedAt, &completedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Error = errMsg.String
		if completedAt.Valid {
			run.CompletedAt = &completedAt.Time
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
