// Package generation turns a batch of lanes into verified, chunked
// bulk-upload CSV. Lanes are processed concurrently and in isolation; the
// batch then moves through verification and a transactional finalization
// that posts the lanes and writes an audit record.
package generation

import (
	"context"
	"errors"
	"fmt"
	"lane-posting-service/internal/adapters/cache"
	"lane-posting-service/internal/domain"
	"lane-posting-service/internal/platform/obs"
	"lane-posting-service/internal/ports"
	"lane-posting-service/internal/services/csvrows"
	"lane-posting-service/internal/services/pairing"
	"lane-posting-service/internal/services/refid"
	"lane-posting-service/internal/services/validation"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrEmptyBatch        = errors.New("batch contains no lanes")
	ErrNoSuccessfulLanes = errors.New("no lane generated successfully")
)

type Orchestrator struct {
	cities ports.CityRepository
	rates  ports.RateRepository
	// Optional; without it finalization only reserves reference ids.
	store    ports.LaneStore
	params   pairing.Params
	recorder obs.Recorder

	now   func() time.Time
	randN func(n int) int
}

// NewOrchestrator wires the generation pipeline. store and rec may be nil.
func NewOrchestrator(cities ports.CityRepository, rates ports.RateRepository, store ports.LaneStore, params pairing.Params, rec obs.Recorder) *Orchestrator {
	if rec == nil {
		rec = obs.NopRecorder{}
	}
	return &Orchestrator{
		cities:   cities,
		rates:    rates,
		store:    store,
		params:   params,
		recorder: rec,
		now:      time.Now,
	}
}

// ValidateBatch checks every lane without generating anything.
func (o *Orchestrator) ValidateBatch(ctx context.Context, lanes []domain.Lane, failFast bool) validation.BatchReport {
	report := validation.ValidateBatch(lanes, validation.BatchOptions{FailOnFirstError: failFast})
	for _, l := range report.Lanes {
		if !l.Valid {
			o.recorder.ValidationFailed(ctx, l.LaneID, len(l.Errors))
		}
	}
	return report
}

// batch is the state of one Generate call. Lookups and reference ids are
// scoped to it so nothing leaks between batches.
type batch struct {
	*Orchestrator
	id       string
	opts     Options
	machine  *machine
	selector *pairing.Selector
	builder  *csvrows.Builder
	refs     *refid.Manager
	started  time.Time
	result   *Result
	// Lane state before this batch, restored if finalization rolls back.
	original map[string]priorState
}

// Generate runs the full pipeline for lanes. Per-lane failures are reported
// in Result.Lanes and do not stop sibling lanes. A batch-level failure
// (empty or invalid batch, no successful lane, verification or commit
// failure) returns a non-nil error together with a Result whose Success is
// false and whose Errors describe the cause.
func (o *Orchestrator) Generate(ctx context.Context, lanes []domain.Lane, opts Options) (_ *Result, err error) {
	defer obs.Time(ctx, "generation.Generate")(&err)

	b := o.newBatch(ctx, opts)
	ctx = obs.WithLogger(ctx, obs.Logger(ctx).With(zap.String("batch_id", b.id)))
	o.recorder.BatchStarted(ctx, b.id, len(lanes))

	if len(lanes) == 0 {
		return b.fail(ctx, fmt.Errorf("generate: %w", ErrEmptyBatch))
	}
	report := o.ValidateBatch(ctx, lanes, false)
	if !report.Valid && !b.opts.SkipInvalidLanes {
		return b.fail(ctx, &domain.ValidationError{
			Message: fmt.Sprintf("batch has %d invalid lane(s)", report.InvalidCount),
			Details: report.Errors,
		})
	}

	if err := b.moveTo(StateGenerating); err != nil {
		return b.fail(ctx, err)
	}
	b.remember(lanes)
	b.result.Lanes = b.runLanes(ctx, lanes, report)

	rows := b.collect()
	if b.result.Statistics.SuccessfulLanes == 0 {
		return b.fail(ctx, fmt.Errorf("generate %d lane(s): %w", len(lanes), ErrNoSuccessfulLanes))
	}

	if err := b.moveTo(StateVerifying); err != nil {
		return b.fail(ctx, err)
	}
	text, err := b.verify(rows)
	if err != nil {
		return b.fail(ctx, err)
	}

	if err := b.moveTo(StateFinalizing); err != nil {
		return b.fail(ctx, err)
	}
	chunks, err := csvrows.FormatChunks(rows, b.opts.ChunkSize)
	if err != nil {
		return b.fail(ctx, fmt.Errorf("finalize: %w", err))
	}
	if err := b.finalize(ctx, len(rows), len(chunks)); err != nil {
		return b.fail(ctx, err)
	}

	b.result.CSV = text
	b.result.Chunks = chunks
	b.result.Statistics.Chunks = len(chunks)
	if err := b.moveTo(StateSucceeded); err != nil {
		return b.fail(ctx, err)
	}
	b.result.Success = true
	b.finish(ctx)
	return b.result, nil
}

func (o *Orchestrator) newBatch(ctx context.Context, opts Options) *batch {
	opts = opts.withDefaults()
	lookups := cache.NewBatchLookups(o.cities, o.rates)

	b := &batch{
		Orchestrator: o,
		id:           uuid.NewString(),
		opts:         opts,
		selector:     pairing.NewSelector(lookups, lookups, o.params),
		builder:      csvrows.NewBuilder(opts.MinimumPostings, o.randN),
		refs:         refid.NewManager(),
		started:      o.now(),
	}
	b.machine = newMachine(func(from, to State) {
		o.recorder.StateChanged(ctx, b.id, string(from), string(to))
	})
	b.result = &Result{BatchID: b.id, State: StateValidating}
	return b
}

func (b *batch) remember(lanes []domain.Lane) {
	b.original = make(map[string]priorState, len(lanes))
	for _, l := range lanes {
		b.original[l.ID] = priorState{Status: l.Status, ReferenceID: l.ReferenceID, PostedAt: l.PostedAt}
	}
}

func (b *batch) moveTo(s State) error {
	if err := b.machine.moveTo(s); err != nil {
		return err
	}
	b.result.State = s
	return nil
}

// runLanes fans lane tasks out with a concurrency limit. Tasks never return
// an error to the group, so every lane settles regardless of its siblings.
func (b *batch) runLanes(ctx context.Context, lanes []domain.Lane, report validation.BatchReport) []LaneResult {
	results := make([]LaneResult, len(lanes))

	var g errgroup.Group
	g.SetLimit(b.opts.Concurrency)
	for i, lane := range lanes {
		var violations []domain.FieldError
		if i < len(report.Lanes) {
			violations = report.Lanes[i].Errors
		}
		g.Go(func() error {
			results[i] = b.runLane(ctx, lane, violations)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// collect tallies lane results and concatenates successful rows in input order.
func (b *batch) collect() []domain.Row {
	stats := &b.result.Statistics
	stats.TotalLanes = len(b.result.Lanes)

	var rows []domain.Row
	for _, lr := range b.result.Lanes {
		if !lr.Success {
			stats.FailedLanes++
			b.result.Errors = append(b.result.Errors, lr.Errors...)
			b.warnf("lane %s failed: %s", lr.LaneID, summarize(lr.Errors))
			continue
		}
		stats.SuccessfulLanes++
		stats.TotalPostings += lr.Postings
		stats.SyntheticPostings += lr.SyntheticPostings
		stats.TotalRows += lr.Rows
		if lr.ShortfallReason != "" {
			b.warnf("lane %s: %s", lr.LaneID, lr.ShortfallReason)
		}
		if lr.Degraded {
			b.warnf("lane %s posted with unresolved base cities", lr.LaneID)
		}
		rows = append(rows, lr.rows...)
	}
	return rows
}

func (b *batch) verify(rows []domain.Row) (string, error) {
	text, err := csvrows.FormatCSV(rows)
	if err != nil {
		return "", fmt.Errorf("verify: %w", err)
	}

	minRows := b.result.Statistics.SuccessfulLanes * b.opts.minimumRows()
	if _, err := csvrows.Verify(text, minRows); err != nil {
		var verr *domain.CsvVerificationError
		if b.opts.VerifyWarnOnly && errors.As(err, &verr) {
			for _, issue := range verr.Issues {
				b.warnf("verification: %s", issue)
			}
			return text, nil
		}
		return "", fmt.Errorf("verify %d row(s): %w", len(rows), err)
	}
	return text, nil
}

// fail moves the batch to failed and attaches err to the result.
func (b *batch) fail(ctx context.Context, err error) (*Result, error) {
	if !b.machine.state.Terminal() {
		_ = b.moveTo(StateFailed)
	}
	b.result.Success = false
	b.result.CSV = ""
	b.result.Chunks = nil
	b.result.Errors = append(Describe("", err), b.result.Errors...)
	b.finish(ctx)
	return b.result, err
}

func (b *batch) finish(ctx context.Context) {
	dur := b.now().Sub(b.started)
	b.result.Statistics.Duration = dur
	stats := b.result.Statistics
	b.recorder.BatchFinished(ctx, b.id, string(b.result.State), stats.SuccessfulLanes, stats.FailedLanes, dur)
	obs.Logger(ctx).Info("batch finished",
		zap.String("state", string(b.result.State)),
		zap.Int("lanes", stats.TotalLanes),
		zap.Int("succeeded", stats.SuccessfulLanes),
		zap.Int("failed", stats.FailedLanes),
		zap.Int("rows", stats.TotalRows),
		zap.Duration("dur", dur),
	)
}

func (b *batch) warnf(format string, args ...any) {
	b.result.Warnings = append(b.result.Warnings, fmt.Sprintf(format, args...))
}

func summarize(details []ErrorDetail) string {
	if len(details) == 0 {
		return "unknown error"
	}
	msg := details[0].Kind + ": " + details[0].Message
	if len(details) > 1 {
		msg += fmt.Sprintf(" (+%d more)", len(details)-1)
	}
	return msg
}
