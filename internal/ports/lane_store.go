package ports

import (
	"context"
	"lane-posting-service/internal/domain"
	"time"
)

// Port: lane mutations and audit writes performed when a batch is finalized.
type LaneStore interface {
	// Set status and reference id of a lane. postedAt may be nil.
	UpdateLaneStatus(ctx context.Context, laneID string, status domain.LaneStatus, referenceID string, postedAt *time.Time) error
	// Persist an audit record for a finalized batch.
	InsertAuditRecord(ctx context.Context, rec domain.AuditRecord) error
}

// Port: retrieval of lanes awaiting posting.
type LaneSource interface {
	ListLanesByStatus(ctx context.Context, status domain.LaneStatus) ([]domain.Lane, error)
}
