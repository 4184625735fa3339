package obs

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestPrometheusRecorderCountsLaneOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewPrometheusRecorder(reg, "test")
	ctx := context.Background()

	rec.BatchStarted(ctx, "b1", 2)
	rec.LaneStarted(ctx, "b1", "l1")
	rec.LaneStarted(ctx, "b1", "l2")
	rec.LaneFinished(ctx, "b1", "l1", true, 10*time.Millisecond)
	rec.LaneFinished(ctx, "b1", "l2", false, 20*time.Millisecond)
	rec.ValidationFailed(ctx, "l2", 3)
	rec.StateChanged(ctx, "b1", "validating", "generating")
	rec.BatchFinished(ctx, "b1", "succeeded", 1, 1, time.Second)

	require.Equal(t, 1.0, testutil.ToFloat64(rec.batchesStarted))
	require.Equal(t, 1.0, testutil.ToFloat64(rec.laneResults.WithLabelValues("true")))
	require.Equal(t, 1.0, testutil.ToFloat64(rec.laneResults.WithLabelValues("false")))
	require.Equal(t, 0.0, testutil.ToFloat64(rec.lanesInFlight))
	require.Equal(t, 3.0, testutil.ToFloat64(rec.violations))
	require.Equal(t, 1.0, testutil.ToFloat64(rec.batchesFinished.WithLabelValues("succeeded")))
	require.Equal(t, 1.0, testutil.ToFloat64(rec.stateTransitions.WithLabelValues("validating", "generating")))
}

func TestMultiRecorderFansOut(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	reg := prometheus.NewRegistry()
	prom := NewPrometheusRecorder(reg, "multi")

	rec := MultiRecorder{NewLogRecorder(zap.New(core)), prom, NopRecorder{}}
	rec.ValidationFailed(context.Background(), "lane-7", 2)

	require.Equal(t, 1, logs.FilterMessage("lane validation failed").Len())
	require.Equal(t, 1.0, testutil.ToFloat64(prom.validationFails))
}

func TestLoggerCarriesRequestID(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ctx := WithLogger(context.Background(), zap.New(core))
	ctx = context.WithValue(ctx, RequestIDKey, "req-42")

	var err error
	Time(ctx, "unit.op")(&err)

	entries := logs.FilterMessage("operation finished").All()
	require.Len(t, entries, 1)
	require.Equal(t, "req-42", entries[0].ContextMap()["req_id"])
	require.Equal(t, "unit.op", entries[0].ContextMap()["op"])
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	_, err := NewLogger("loud", "json")
	require.Error(t, err)

	l, err := NewLogger("debug", "console")
	require.NoError(t, err)
	require.NotNil(t, l)
}
