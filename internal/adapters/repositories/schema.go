package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the Postgres schema. Statements are idempotent.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createCitiesQuery := `
	CREATE TABLE IF NOT EXISTS cities (
		city_key TEXT PRIMARY KEY,
		city TEXT NOT NULL,
		state TEXT NOT NULL,
		zip TEXT NOT NULL DEFAULT '',
		lat DOUBLE PRECISION NOT NULL,
		lon DOUBLE PRECISION NOT NULL,
		market_area TEXT NOT NULL DEFAULT '',
		population INTEGER NOT NULL DEFAULT 0,
		hot BOOLEAN NOT NULL DEFAULT FALSE,
		equipment_bias TEXT[] NOT NULL DEFAULT '{}'
	);
	`

	createCityCoordsIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_cities_lat_lon ON cities(lat, lon);
	`

	createRateMatricesQuery := `
	CREATE TABLE IF NOT EXISTS rate_matrices (
		equipment TEXT NOT NULL,
		level TEXT NOT NULL,
		effective_at TIMESTAMPTZ NOT NULL,
		rates JSONB NOT NULL,
		PRIMARY KEY (equipment, level, effective_at)
	);
	`

	createLanesQuery := `
	CREATE TABLE IF NOT EXISTS lanes (
		id TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL DEFAULT '',
		origin_city TEXT NOT NULL,
		origin_state TEXT NOT NULL,
		origin_zip TEXT NOT NULL DEFAULT '',
		dest_city TEXT NOT NULL,
		dest_state TEXT NOT NULL,
		dest_zip TEXT NOT NULL DEFAULT '',
		equipment TEXT NOT NULL,
		weight_randomize BOOLEAN NOT NULL DEFAULT FALSE,
		weight_lbs INTEGER NOT NULL DEFAULT 0,
		weight_min INTEGER NOT NULL DEFAULT 0,
		weight_max INTEGER NOT NULL DEFAULT 0,
		length_ft INTEGER NOT NULL,
		full_partial TEXT NOT NULL DEFAULT 'full',
		pickup_earliest DATE NOT NULL,
		pickup_latest DATE,
		commodity TEXT NOT NULL DEFAULT '',
		comment TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		reference_id TEXT NOT NULL DEFAULT '',
		posted_at TIMESTAMPTZ
	);
	`

	createLaneStatusIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_lanes_status ON lanes(status, id);
	`

	createAuditRecordsQuery := `
	CREATE TABLE IF NOT EXISTS audit_records (
		id UUID PRIMARY KEY,
		batch_id UUID NOT NULL,
		lane_ids TEXT[] NOT NULL,
		row_count INTEGER NOT NULL,
		chunk_count INTEGER NOT NULL,
		synthetic_postings INTEGER NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);
	`

	statements := []string{
		createCitiesQuery,
		createCityCoordsIndexQuery,
		createRateMatricesQuery,
		createLanesQuery,
		createLaneStatusIndexQuery,
		createAuditRecordsQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
