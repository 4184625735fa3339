package obs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// LogRecorder writes lifecycle events as structured log entries.
type LogRecorder struct {
	log *zap.Logger
}

var _ Recorder = (*LogRecorder)(nil)

func NewLogRecorder(l *zap.Logger) *LogRecorder {
	if l == nil {
		l = zap.NewNop()
	}
	return &LogRecorder{log: l}
}

func (r *LogRecorder) BatchStarted(_ context.Context, batchID string, lanes int) {
	r.log.Info("batch started", zap.String("batch_id", batchID), zap.Int("lanes", lanes))
}

func (r *LogRecorder) BatchFinished(_ context.Context, batchID, state string, succeeded, failed int, dur time.Duration) {
	r.log.Info("batch finished",
		zap.String("batch_id", batchID),
		zap.String("state", state),
		zap.Int("succeeded", succeeded),
		zap.Int("failed", failed),
		zap.Duration("dur", dur),
	)
}

func (r *LogRecorder) StateChanged(_ context.Context, batchID, from, to string) {
	r.log.Debug("batch state changed", zap.String("batch_id", batchID), zap.String("from", from), zap.String("to", to))
}

func (r *LogRecorder) LaneStarted(_ context.Context, batchID, laneID string) {
	r.log.Debug("lane started", zap.String("batch_id", batchID), zap.String("lane_id", laneID))
}

func (r *LogRecorder) LaneFinished(_ context.Context, batchID, laneID string, ok bool, dur time.Duration) {
	if !ok {
		r.log.Warn("lane failed", zap.String("batch_id", batchID), zap.String("lane_id", laneID), zap.Duration("dur", dur))
		return
	}
	r.log.Debug("lane finished", zap.String("batch_id", batchID), zap.String("lane_id", laneID), zap.Duration("dur", dur))
}

func (r *LogRecorder) ValidationFailed(_ context.Context, laneID string, violations int) {
	r.log.Warn("lane validation failed", zap.String("lane_id", laneID), zap.Int("violations", violations))
}
