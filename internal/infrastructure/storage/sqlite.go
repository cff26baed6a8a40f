package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Storage provides SQLite database access for extraction results.
// It implements the Repository interface.
type Storage struct {
	db *sql.DB
}

// Compile-time check that Storage implements Repository
var _ Repository = (*Storage)(nil)

// NewStorage creates a new storage instance with SQLite database
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints (SQLite-specific)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Storage{db: db}

	// Run all pending migrations
	if err := s.runMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// SaveOrder saves or updates an order record. The order number is the
// natural key; a re-extraction refreshes the record and bumps
// last_seen_at while keeping first_seen_at from the original row.
func (s *Storage) SaveOrder(record *OrderRecord) error {
	query := `
	INSERT INTO order_records
	(order_number, order_date, order_total, tax, delivery_charges, tip,
	 item_count, first_seen_at, last_seen_at, run_id, items_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(order_number) DO UPDATE SET
		order_date = excluded.order_date,
		order_total = excluded.order_total,
		tax = excluded.tax,
		delivery_charges = excluded.delivery_charges,
		tip = excluded.tip,
		item_count = excluded.item_count,
		last_seen_at = excluded.last_seen_at,
		run_id = excluded.run_id,
		items_json = excluded.items_json
	`

	_, err := s.db.Exec(query,
		record.OrderNumber,
		record.OrderDate,
		record.OrderTotal,
		record.Tax,
		record.Delivery,
		record.Tip,
		record.ItemCount,
		record.FirstSeenAt,
		record.LastSeenAt,
		record.RunID,
		record.MarshalItems(),
	)

	return err
}

// GetOrder retrieves a record by order number
func (s *Storage) GetOrder(orderNumber string) (*OrderRecord, error) {
	query := `
	SELECT id, order_number, order_date, order_total, tax, delivery_charges,
	       tip, item_count, first_seen_at, last_seen_at, run_id, items_json
	FROM order_records WHERE order_number = ?
	`

	record := &OrderRecord{}
	var runID sql.NullString
	err := s.db.QueryRow(query, orderNumber).Scan(
		&record.ID,
		&record.OrderNumber,
		&record.OrderDate,
		&record.OrderTotal,
		&record.Tax,
		&record.Delivery,
		&record.Tip,
		&record.ItemCount,
		&record.FirstSeenAt,
		&record.LastSeenAt,
		&runID,
		&record.ItemsJSON,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if runID.Valid {
		record.RunID = runID.String
	}
	// Unmarshal errors ignored: items are enrichment, the row is the record
	if record.ItemsJSON != "" {
		_ = json.Unmarshal([]byte(record.ItemsJSON), &record.Items)
	}

	return record, nil
}

// IsProcessed checks if an order number has been stored before
func (s *Storage) IsProcessed(orderNumber string) bool {
	var count int
	query := `SELECT COUNT(*) FROM order_records WHERE order_number = ?`
	err := s.db.QueryRow(query, orderNumber).Scan(&count)
	return err == nil && count > 0
}

// ListOrders returns stored orders matching the given filters with pagination
func (s *Storage) ListOrders(filters OrderFilters) (*OrderListResult, error) {
	limit := filters.Limit
	if limit == 0 {
		limit = 50
	}

	where := ""
	args := []any{}
	if filters.RunID != "" {
		where = " WHERE run_id = ?"
		args = append(args, filters.RunID)
	}

	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM order_records`+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	direction := "ASC"
	if filters.OrderDesc {
		direction = "DESC"
	}
	query := `
	SELECT id, order_number, order_date, order_total, tax, delivery_charges,
	       tip, item_count, first_seen_at, last_seen_at, run_id, items_json
	FROM order_records` + where + `
	ORDER BY last_seen_at ` + direction + `
	LIMIT ? OFFSET ?
	`
	args = append(args, limit, filters.Offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := &OrderListResult{
		Orders:     []*OrderRecord{},
		TotalCount: total,
		Limit:      limit,
		Offset:     filters.Offset,
	}

	for rows.Next() {
		record := &OrderRecord{}
		var runID sql.NullString
		err := rows.Scan(
			&record.ID,
			&record.OrderNumber,
			&record.OrderDate,
			&record.OrderTotal,
			&record.Tax,
			&record.Delivery,
			&record.Tip,
			&record.ItemCount,
			&record.FirstSeenAt,
			&record.LastSeenAt,
			&runID,
			&record.ItemsJSON,
		)
		if err != nil {
			return nil, err
		}
		if runID.Valid {
			record.RunID = runID.String
		}
		if record.ItemsJSON != "" {
			_ = json.Unmarshal([]byte(record.ItemsJSON), &record.Items)
		}
		result.Orders = append(result.Orders, record)
	}

	return result, rows.Err()
}

// GetStats returns aggregate statistics
func (s *Storage) GetStats() (*Stats, error) {
	stats := &Stats{
		StrategyCounts: make(map[string]int),
	}

	query := `
	SELECT
		COUNT(*) as total,
		COALESCE(SUM(order_total), 0) as total_amount,
		COALESCE(AVG(order_total), 0) as avg_total,
		COALESCE(SUM(item_count), 0) as total_items
	FROM order_records
	`

	err := s.db.QueryRow(query).Scan(
		&stats.TotalOrders,
		&stats.TotalAmount,
		&stats.AverageOrderTotal,
		&stats.TotalItems,
	)
	if err != nil {
		return nil, err
	}

	if err := s.db.QueryRow(`SELECT COUNT(*) FROM extraction_runs`).Scan(&stats.TotalRuns); err != nil {
		return nil, err
	}

	// Strategy breakdown
	rows, err := s.db.Query(`SELECT strategy, COUNT(*) FROM extraction_runs GROUP BY strategy`)
	if err == nil {
		defer func() { _ = rows.Close() }()
		for rows.Next() {
			var strategy string
			var count int
			if err := rows.Scan(&strategy, &count); err == nil {
				stats.StrategyCounts[strategy] = count
			}
		}
	}

	return stats, nil
}

// SaveRun persists a completed extraction run
func (s *Storage) SaveRun(run *ExtractionRun) error {
	query := `
	INSERT INTO extraction_runs
	(id, created_at, source_url, strategy, order_count, new_orders,
	 duplicates, duration_ms, error_detail)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		run.ID,
		run.CreatedAt,
		run.SourceURL,
		run.Strategy,
		run.OrderCount,
		run.NewOrders,
		run.Duplicates,
		run.DurationMS,
		run.ErrorDetail,
	)

	return err
}

// GetRun retrieves a run by ID
func (s *Storage) GetRun(id string) (*ExtractionRun, error) {
	query := `
	SELECT id, created_at, source_url, strategy, order_count, new_orders,
	       duplicates, duration_ms, error_detail
	FROM extraction_runs WHERE id = ?
	`

	run := &ExtractionRun{}
	err := s.db.QueryRow(query, id).Scan(
		&run.ID,
		&run.CreatedAt,
		&run.SourceURL,
		&run.Strategy,
		&run.OrderCount,
		&run.NewOrders,
		&run.Duplicates,
		&run.DurationMS,
		&run.ErrorDetail,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns recent runs, newest first
func (s *Storage) ListRuns(limit int) ([]ExtractionRun, error) {
	if limit == 0 {
		limit = 20
	}

	query := `
	SELECT id, created_at, source_url, strategy, order_count, new_orders,
	       duplicates, duration_ms, error_detail
	FROM extraction_runs
	ORDER BY created_at DESC
	LIMIT ?
	`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var runs []ExtractionRun
	for rows.Next() {
		var run ExtractionRun
		err := rows.Scan(
			&run.ID,
			&run.CreatedAt,
			&run.SourceURL,
			&run.Strategy,
			&run.OrderCount,
			&run.NewOrders,
			&run.Duplicates,
			&run.DurationMS,
			&run.ErrorDetail,
		)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}
