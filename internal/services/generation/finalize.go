package generation

import (
	"context"
	"fmt"
	"lane-posting-service/internal/domain"
	"lane-posting-service/internal/services/txn"
	"time"

	"github.com/google/uuid"
)

// finalize commits the batch in one transaction: confirm the reserved
// reference ids, move each lane to posted, then write the audit record.
// Persistence steps are skipped without a lane store or on a dry run.
func (b *batch) finalize(ctx context.Context, rowCount, chunkCount int) error {
	tx := txn.New()
	succeeded := b.successful()

	if err := tx.Add("assign_reference_ids", func(context.Context) error {
		return b.checkReferenceIDs(succeeded)
	}, func(context.Context) error {
		for _, lr := range succeeded {
			b.refs.Release(lr.LaneID)
		}
		return nil
	}); err != nil {
		return err
	}

	if b.store != nil && !b.opts.DryRun {
		postedAt := b.now().UTC()
		for _, lr := range succeeded {
			if err := tx.Add("update_lane_status:"+lr.LaneID, func(ctx context.Context) error {
				return b.store.UpdateLaneStatus(ctx, lr.LaneID, domain.LaneStatusPosted, lr.ReferenceID, &postedAt)
			}, func(ctx context.Context) error {
				prev := b.original[lr.LaneID]
				status := prev.Status
				if status == "" {
					status = domain.LaneStatusPending
				}
				return b.store.UpdateLaneStatus(ctx, lr.LaneID, status, prev.ReferenceID, prev.PostedAt)
			}); err != nil {
				return err
			}
		}

		rec := domain.AuditRecord{
			ID:                uuid.NewString(),
			BatchID:           b.id,
			LaneIDs:           laneIDs(succeeded),
			RowCount:          rowCount,
			ChunkCount:        chunkCount,
			SyntheticPostings: b.result.Statistics.SyntheticPostings,
			CreatedAt:         postedAt,
		}
		if err := tx.Add("insert_audit_record", func(ctx context.Context) error {
			return b.store.InsertAuditRecord(ctx, rec)
		}, nil); err != nil {
			return err
		}
	}

	if err := tx.Execute(ctx); err != nil {
		for i := range b.result.Lanes {
			if _, ok := b.refs.Lookup(b.result.Lanes[i].LaneID); !ok {
				b.result.Lanes[i].ReferenceID = ""
			}
		}
		return fmt.Errorf("finalize batch %s: %w", b.id, err)
	}
	return nil
}

func (b *batch) successful() []LaneResult {
	out := make([]LaneResult, 0, b.result.Statistics.SuccessfulLanes)
	for _, lr := range b.result.Lanes {
		if lr.Success {
			out = append(out, lr)
		}
	}
	return out
}

// checkReferenceIDs confirms each successful lane holds its own distinct id.
func (b *batch) checkReferenceIDs(lanes []LaneResult) error {
	seen := make(map[string]string, len(lanes))
	for _, lr := range lanes {
		id, ok := b.refs.Lookup(lr.LaneID)
		if !ok || id != lr.ReferenceID {
			return fmt.Errorf("lane %s: reference id %q not reserved", lr.LaneID, lr.ReferenceID)
		}
		if other, dup := seen[id]; dup {
			return fmt.Errorf("reference id %s issued to lanes %s and %s", id, other, lr.LaneID)
		}
		seen[id] = lr.LaneID
	}
	return nil
}

func laneIDs(lanes []LaneResult) []string {
	out := make([]string, 0, len(lanes))
	for _, lr := range lanes {
		out = append(out, lr.LaneID)
	}
	return out
}

type priorState struct {
	Status      domain.LaneStatus
	ReferenceID string
	PostedAt    *time.Time
}
