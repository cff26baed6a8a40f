package storage

import (
	"database/sql"
	"fmt"
	"log"
)

// Migration represents a database schema migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.Tx) error
}

// allMigrations defines all migrations in order
var allMigrations = []Migration{
	{
		Version: 1,
		Name:    "initial_schema",
		Up:      migration001InitialSchema,
	},
	{
		Version: 2,
		Name:    "add_extraction_runs_table",
		Up:      migration002AddExtractionRunsTable,
	},
}

// runMigrations applies pending migrations in order. Each migration runs
// inside its own transaction and is recorded in schema_migrations.
func (s *Storage) runMigrations() error {
	if err := s.ensureMigrationsTable(); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := s.appliedVersions()
	if err != nil {
		return fmt.Errorf("failed to read applied migrations: %w", err)
	}

	for _, m := range allMigrations {
		if applied[m.Version] {
			continue
		}

		log.Printf("Running migration %d: %s", m.Version, m.Name)

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", m.Version, err)
		}

		if err := m.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Name, err)
		}

		if _, err := tx.Exec(
			`INSERT INTO schema_migrations (version, name) VALUES (?, ?)`,
			m.Version, m.Name,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
		}

		log.Printf("Migration %d complete", m.Version)
	}

	return nil
}

func (s *Storage) ensureMigrationsTable() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	return err
}

// appliedVersions returns the set of migration versions already applied.
func (s *Storage) appliedVersions() (map[int]bool, error) {
	applied := make(map[int]bool)

	rows, err := s.db.Query(`SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}

	return applied, rows.Err()
}

// migration001InitialSchema creates the order_records table
func migration001InitialSchema(db *sql.Tx) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS order_records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			order_number TEXT UNIQUE NOT NULL,
			order_date TEXT NOT NULL,
			order_total REAL,
			tax REAL,
			delivery_charges REAL,
			tip REAL,
			item_count INTEGER DEFAULT 0,
			first_seen_at TIMESTAMP NOT NULL,
			last_seen_at TIMESTAMP NOT NULL,
			run_id TEXT,
			items_json TEXT DEFAULT '[]'
		)`,

		// Indexes for common queries
		`CREATE INDEX IF NOT EXISTS idx_order_records_last_seen
		 ON order_records(last_seen_at DESC)`,

		`CREATE INDEX IF NOT EXISTS idx_order_records_run_id
		 ON order_records(run_id)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}

	return nil
}

// migration002AddExtractionRunsTable creates the extraction_runs table
func migration002AddExtractionRunsTable(db *sql.Tx) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS extraction_runs (
			id TEXT PRIMARY KEY,
			created_at TIMESTAMP NOT NULL,
			source_url TEXT,
			strategy TEXT NOT NULL,
			order_count INTEGER DEFAULT 0,
			new_orders INTEGER DEFAULT 0,
			duplicates INTEGER DEFAULT 0,
			duration_ms INTEGER DEFAULT 0,
			error_detail TEXT
		)`,

		`CREATE INDEX IF NOT EXISTS idx_extraction_runs_created
		 ON extraction_runs(created_at DESC)`,

		`CREATE INDEX IF NOT EXISTS idx_extraction_runs_strategy
		 ON extraction_runs(strategy)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}
