package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the SQLite database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createRoutesQuery := `
	CREATE TABLE IF NOT EXISTS delivery_routes (
		id TEXT PRIMARY KEY,
		delivery_date TEXT NOT NULL,
		status TEXT NOT NULL
			CHECK (status IN ('PLANNED', 'IN_PROGRESS', 'COMPLETED', 'CANCELLED')),
		created_at TEXT NOT NULL
	);
	`

	createStopsQuery := `
	CREATE TABLE IF NOT EXISTS route_stops (
		id TEXT PRIMARY KEY,
		route_id TEXT NOT NULL REFERENCES delivery_routes (id) ON DELETE CASCADE,
		customer_id INTEGER,
		address TEXT,
		city TEXT,
		status TEXT NOT NULL
			CHECK (status IN ('PENDING', 'DELIVERED', 'FAILED')),
		stop_order INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);
	`

	createStopOrdersQuery := `
	CREATE TABLE IF NOT EXISTS stop_orders (
		stop_id TEXT NOT NULL REFERENCES route_stops (id) ON DELETE CASCADE,
		order_id TEXT NOT NULL,
		PRIMARY KEY (stop_id, order_id)
	);
	`

	createIndexQueries := `
	CREATE INDEX IF NOT EXISTS idx_delivery_routes_delivery_date
	ON delivery_routes (delivery_date);
	CREATE INDEX IF NOT EXISTS idx_route_stops_route_id
	ON route_stops (route_id, stop_order);
	`

	statements := []string{
		createRoutesQuery,
		createStopsQuery,
		createStopOrdersQuery,
		createIndexQueries,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
