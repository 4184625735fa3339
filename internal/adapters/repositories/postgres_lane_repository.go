package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"lane-posting-service/internal/domain"
	"lane-posting-service/internal/ports"
	"time"
)

// Postgres-backed implementation of the LaneStore and LaneSource ports.
type PostgresLaneRepository struct{ DB *sql.DB }

var (
	_ ports.LaneStore  = (*PostgresLaneRepository)(nil)
	_ ports.LaneSource = (*PostgresLaneRepository)(nil)
)

func NewPostgresLaneRepository(db *sql.DB) *PostgresLaneRepository {
	return &PostgresLaneRepository{DB: db}
}

// Set status, reference id and posted_at of one lane.
func (r *PostgresLaneRepository) UpdateLaneStatus(ctx context.Context, laneID string, status domain.LaneStatus, referenceID string, postedAt *time.Time) error {
	if r.DB == nil {
		return errors.New("postgres lane repository: DB is nil")
	}

	var posted sql.NullTime
	if postedAt != nil {
		posted = sql.NullTime{Time: *postedAt, Valid: true}
	}

	query := `
	UPDATE lanes
	SET status = $2, reference_id = $3, posted_at = $4
	WHERE id = $1;
	`
	res, err := r.DB.ExecContext(ctx, query, laneID, string(status), referenceID, posted)
	if err != nil {
		return fmt.Errorf("update lane %s: exec: %w", laneID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update lane %s: rows affected: %w", laneID, err)
	}
	if n == 0 {
		return fmt.Errorf("update lane %s: %w", laneID, ports.ErrNotFound)
	}
	return nil
}

// Persist an audit record for a finalized batch.
func (r *PostgresLaneRepository) InsertAuditRecord(ctx context.Context, rec domain.AuditRecord) error {
	if r.DB == nil {
		return errors.New("postgres lane repository: DB is nil")
	}

	laneIDs := rec.LaneIDs
	if laneIDs == nil {
		laneIDs = []string{}
	}

	query := `
	INSERT INTO audit_records (
		id, batch_id, lane_ids, row_count, chunk_count, synthetic_postings, created_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	if _, err := r.DB.ExecContext(ctx, query,
		rec.ID, rec.BatchID, laneIDs, rec.RowCount, rec.ChunkCount, rec.SyntheticPostings, rec.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert audit record %s: %w", rec.ID, err)
	}
	return nil
}

// Return lanes with the given status ordered by id.
func (r *PostgresLaneRepository) ListLanesByStatus(ctx context.Context, status domain.LaneStatus) ([]domain.Lane, error) {
	if r.DB == nil {
		return nil, errors.New("postgres lane repository: DB is nil")
	}

	query := `
	SELECT
		id, organization_id,
		origin_city, origin_state, origin_zip,
		dest_city, dest_state, dest_zip,
		equipment, weight_randomize, weight_lbs, weight_min, weight_max,
		length_ft, full_partial, pickup_earliest, pickup_latest,
		commodity, comment, status, reference_id, posted_at
	FROM lanes
	WHERE status = $1
	ORDER BY id;
	`
	rows, err := r.DB.QueryContext(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("list lanes: query lanes table: %w", err)
	}
	defer rows.Close()

	lanes := make([]domain.Lane, 0, 64)
	for rows.Next() {
		var l domain.Lane
		var st string
		var latest, posted sql.NullTime
		err := rows.Scan(
			&l.ID, &l.OrganizationID,
			&l.Origin.City, &l.Origin.State, &l.Origin.Zip,
			&l.Destination.City, &l.Destination.State, &l.Destination.Zip,
			&l.Equipment, &l.Weight.Randomize, &l.Weight.Fixed, &l.Weight.Min, &l.Weight.Max,
			&l.LengthFt, &l.FullPartial, &l.PickupEarliest, &latest,
			&l.Commodity, &l.Comment, &st, &l.ReferenceID, &posted,
		)
		if err != nil {
			return nil, fmt.Errorf("list lanes: scan row: %w", err)
		}
		l.Status = domain.LaneStatus(st)
		if latest.Valid {
			l.PickupLatest = latest.Time
		}
		if posted.Valid {
			t := posted.Time
			l.PostedAt = &t
		}
		lanes = append(lanes, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list lanes: row iteration: %w", err)
	}

	return lanes, nil
}
