package database

import (
	"database/sql"
	"fmt"
	"log"
)

// Migration is one schema step. Migrations are embedded rather than loaded
// from disk so a deployed binary carries its own schema.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_runs",
		SQL: `
			CREATE TABLE IF NOT EXISTS runs (
				id TEXT PRIMARY KEY,
				status TEXT NOT NULL,
				path_a TEXT NOT NULL,
				path_b TEXT NOT NULL,
				path_c TEXT NOT NULL,
				error TEXT,
				audit_json TEXT,
				created_at TIMESTAMP NOT NULL,
				completed_at TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
		`,
	},
	{
		Version: 2,
		Name:    "create_events",
		SQL: `
			CREATE TABLE IF NOT EXISTS events (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
				codired TEXT NOT NULL,
				cod_pda TEXT,
				seccion TEXT,
				turno TEXT,
				fecha_hora TIMESTAMP NOT NULL,
				solo_fecha TEXT NOT NULL,
				solo_hora TEXT NOT NULL,
				longitud REAL,
				latitud REAL,
				seg_transcurrido REAL,
				es_parada INTEGER NOT NULL DEFAULT 0,
				dist_anterior REAL NOT NULL DEFAULT 0,
				delta_t REAL NOT NULL DEFAULT 0,
				velocidad REAL NOT NULL DEFAULT 0
			);
			CREATE INDEX IF NOT EXISTS idx_events_run ON events(run_id);
			CREATE INDEX IF NOT EXISTS idx_events_route ON events(run_id, cod_pda, solo_fecha);
		`,
	},
	{
		Version: 3,
		Name:    "create_portal_visits",
		SQL: `
			CREATE TABLE IF NOT EXISTS portal_visits (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
				street TEXT NOT NULL,
				number TEXT NOT NULL,
				latitud REAL,
				longitud REAL,
				time_accumulated REAL NOT NULL,
				time_mean REAL NOT NULL,
				distance_portal REAL NOT NULL,
				post_code TEXT,
				even_odd_count INTEGER NOT NULL DEFAULT 0,
				zigzag_count INTEGER NOT NULL DEFAULT 0,
				policy_type TEXT,
				is_stop INTEGER NOT NULL DEFAULT 0,
				times_visited INTEGER NOT NULL DEFAULT 0,
				device_codes TEXT
			);
			CREATE INDEX IF NOT EXISTS idx_visits_run ON portal_visits(run_id);
			CREATE INDEX IF NOT EXISTS idx_visits_portal ON portal_visits(run_id, street, number);
		`,
	},
	{
		Version: 4,
		Name:    "create_clusters",
		SQL: `
			CREATE TABLE IF NOT EXISTS clusters (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
				street TEXT NOT NULL,
				number TEXT NOT NULL,
				latitud REAL,
				longitud REAL,
				time_accumulated REAL NOT NULL,
				time_mean REAL NOT NULL,
				visit_count INTEGER NOT NULL,
				member_numbers TEXT,
				post_code TEXT,
				policy_type TEXT,
				is_stop INTEGER NOT NULL DEFAULT 0
			);
			CREATE INDEX IF NOT EXISTS idx_clusters_run ON clusters(run_id);
		`,
	},
}

// Migrate applies every pending migration in version order inside a
// transaction, recording applied versions in the migrations table.
func Migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := appliedVersions(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		if err := applyMigration(db, m); err != nil {
			return err
		}
		log.Printf("[Database] Applied migration %d_%s", m.Version, m.Name)
	}
	return nil
}

func appliedVersions(db *sql.DB) (map[int]bool, error) {
	rows, err := db.Query("SELECT version FROM migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

func applyMigration(db *sql.DB, m Migration) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.Exec(m.SQL); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to apply migration %d_%s: %w", m.Version, m.Name, err)
	}
	if _, err := tx.Exec("INSERT INTO migrations (version, name) VALUES (?, ?)", m.Version, m.Name); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to record migration %d_%s: %w", m.Version, m.Name, err)
	}
	return tx.Commit()
}
