package obs

import (
	"context"
	"time"
)

// Recorder receives generation lifecycle events. Implementations must be
// safe for concurrent use; lane events arrive from parallel lane tasks.
type Recorder interface {
	BatchStarted(ctx context.Context, batchID string, lanes int)
	BatchFinished(ctx context.Context, batchID string, state string, succeeded, failed int, dur time.Duration)
	StateChanged(ctx context.Context, batchID, from, to string)
	LaneStarted(ctx context.Context, batchID, laneID string)
	LaneFinished(ctx context.Context, batchID, laneID string, ok bool, dur time.Duration)
	ValidationFailed(ctx context.Context, laneID string, violations int)
}

// NopRecorder discards every event.
type NopRecorder struct{}

var _ Recorder = NopRecorder{}

func (NopRecorder) BatchStarted(context.Context, string, int) {}
func (NopRecorder) BatchFinished(context.Context, string, string, int, int, time.Duration) {}
func (NopRecorder) StateChanged(context.Context, string, string, string) {}
func (NopRecorder) LaneStarted(context.Context, string, string) {}
func (NopRecorder) LaneFinished(context.Context, string, string, bool, time.Duration) {}
func (NopRecorder) ValidationFailed(context.Context, string, int) {}

// MultiRecorder fans every event out to each recorder in order.
type MultiRecorder []Recorder

var _ Recorder = MultiRecorder(nil)

func (m MultiRecorder) BatchStarted(ctx context.Context, batchID string, lanes int) {
	for _, r := range m {
		r.BatchStarted(ctx, batchID, lanes)
	}
}

func (m MultiRecorder) BatchFinished(ctx context.Context, batchID, state string, succeeded, failed int, dur time.Duration) {
	for _, r := range m {
		r.BatchFinished(ctx, batchID, state, succeeded, failed, dur)
	}
}

func (m MultiRecorder) StateChanged(ctx context.Context, batchID, from, to string) {
	for _, r := range m {
		r.StateChanged(ctx, batchID, from, to)
	}
}

func (m MultiRecorder) LaneStarted(ctx context.Context, batchID, laneID string) {
	for _, r := range m {
		r.LaneStarted(ctx, batchID, laneID)
	}
}

func (m MultiRecorder) LaneFinished(ctx context.Context, batchID, laneID string, ok bool, dur time.Duration) {
	for _, r := range m {
		r.LaneFinished(ctx, batchID, laneID, ok, dur)
	}
}

func (m MultiRecorder) ValidationFailed(ctx context.Context, laneID string, violations int) {
	for _, r := range m {
		r.ValidationFailed(ctx, laneID, violations)
	}
}
