package generation

import (
	"context"
	"errors"
	"fmt"
	"lane-posting-service/internal/domain"
	"lane-posting-service/internal/platform/obs"
	"lane-posting-service/internal/services/csvrows"
	"lane-posting-service/internal/services/pairing"
	"lane-posting-service/internal/services/validation"
	"runtime/debug"
	"time"

	"go.uber.org/zap"
)

// runLane processes one lane in isolation. Every failure, including a
// panic, comes back as an unsuccessful LaneResult.
func (b *batch) runLane(ctx context.Context, lane domain.Lane, violations []domain.FieldError) (res LaneResult) {
	start := time.Now()
	log := obs.Logger(ctx).With(zap.String("lane_id", lane.ID))
	ctx = obs.WithLogger(ctx, log)
	b.recorder.LaneStarted(ctx, b.id, lane.ID)

	defer func() {
		if r := recover(); r != nil {
			log.Error("lane task panicked", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
			res = LaneResult{LaneID: lane.ID, Errors: Describe(lane.ID, fmt.Errorf("lane task panicked: %v", r))}
		}
		res.Duration = time.Since(start)
		b.recorder.LaneFinished(ctx, b.id, lane.ID, res.Success, res.Duration)
	}()

	if len(violations) > 0 {
		return LaneResult{LaneID: lane.ID, Errors: Describe(lane.ID, &domain.ValidationError{
			Message: fmt.Sprintf("lane %q is invalid", lane.ID),
			Details: violations,
		})}
	}

	if b.opts.LaneTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.opts.LaneTimeout)
		defer cancel()
	}

	res, err := b.generateLane(ctx, lane)
	if err != nil {
		log.Warn("lane failed", zap.Error(err))
		return LaneResult{LaneID: lane.ID, Errors: Describe(lane.ID, err)}
	}
	return res
}

func (b *batch) generateLane(ctx context.Context, lane domain.Lane) (LaneResult, error) {
	res := LaneResult{LaneID: lane.ID}

	sel, err := b.selector.Select(ctx, lane, pairing.SelectOptions{
		Target:    b.opts.pairTarget(),
		FillQuota: b.opts.FillQuota,
	})
	var notFound *domain.CityNotFoundError
	switch {
	case errors.As(err, &notFound) && b.opts.DegradeOnMissingCity:
		sel = &pairing.Selection{
			BaseOrigin: literalCity(lane.Origin),
			BaseDest:   literalCity(lane.Destination),
		}
		res.Degraded = true
	case err != nil:
		return res, err
	}
	if err := ctx.Err(); err != nil {
		return res, fmt.Errorf("lane %s: %w", lane.ID, err)
	}

	pairs := make([]domain.Pair, 0, len(sel.Pairs))
	for _, p := range sel.Pairs {
		if err := validation.ValidatePair(lane.ID, p); err != nil {
			obs.Logger(ctx).Warn("dropping invalid pair", zap.Error(err))
			continue
		}
		pairs = append(pairs, p)
	}

	out, err := b.builder.BuildRows(lane, sel.BaseOrigin, sel.BaseDest, pairs, b.opts.FillQuota)
	if err != nil {
		return res, err
	}
	if err := ctx.Err(); err != nil {
		return res, fmt.Errorf("lane %s: %w", lane.ID, err)
	}

	// Reservation is the last step so an abandoned lane never holds an id.
	res.ReferenceID = b.refs.Generate(lane.ID)
	csvrows.StampReferenceID(out.Rows, res.ReferenceID)

	res.Success = true
	res.Pairs = len(pairs)
	res.Postings = len(out.Postings)
	res.SyntheticPostings = out.Synthetic
	res.Rows = len(out.Rows)
	res.UsedRelaxedDiversity = sel.UsedRelaxedDiversity
	res.ShortfallReason = sel.ShortfallReason
	res.rows = out.Rows
	return res, nil
}

// literalCity stands in for an unresolved base city using the lane's text.
func literalCity(p domain.Place) domain.City {
	return domain.City{City: p.City, State: p.State, Zip: p.Zip}
}
