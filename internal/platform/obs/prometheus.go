package obs

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder exports lifecycle events as Prometheus metrics.
// Metrics are registered on first use.
type PrometheusRecorder struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	batchesStarted   prometheus.Counter
	batchesFinished  *prometheus.CounterVec
	batchDuration    prometheus.Histogram
	stateTransitions *prometheus.CounterVec
	lanesInFlight    prometheus.Gauge
	laneResults      *prometheus.CounterVec
	laneDuration     prometheus.Histogram
	validationFails  prometheus.Counter
	violations       prometheus.Counter
}

var _ Recorder = (*PrometheusRecorder)(nil)

// NewPrometheusRecorder creates a recorder registering on reg
// (prometheus.DefaultRegisterer if nil) under namespace ("lane_posting" if empty).
func NewPrometheusRecorder(reg prometheus.Registerer, namespace string) *PrometheusRecorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "lane_posting"
	}
	return &PrometheusRecorder{reg: reg, namespace: namespace}
}

func (p *PrometheusRecorder) ensureRegistered() {
	p.once.Do(func() {
		p.batchesStarted = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "batch",
			Name:      "started_total",
			Help:      "Generation batches started.",
		})
		p.batchesFinished = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "batch",
			Name:      "finished_total",
			Help:      "Generation batches finished by terminal state.",
		}, []string{"state"})
		p.batchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "batch",
			Name:      "duration_seconds",
			Help:      "End-to-end batch generation latency.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms .. ~25s
		})
		p.stateTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "batch",
			Name:      "state_transitions_total",
			Help:      "Batch state machine transitions.",
		}, []string{"from", "to"})
		p.lanesInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "lane",
			Name:      "in_flight",
			Help:      "Lane tasks currently running.",
		})
		p.laneResults = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "lane",
			Name:      "results_total",
			Help:      "Lane outcomes (ok=true|false).",
		}, []string{"ok"})
		p.laneDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "lane",
			Name:      "duration_seconds",
			Help:      "Per-lane processing latency.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		})
		p.validationFails = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "validation",
			Name:      "failed_lanes_total",
			Help:      "Lanes rejected by validation.",
		})
		p.violations = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "validation",
			Name:      "violations_total",
			Help:      "Individual validation violations reported.",
		})

		p.reg.MustRegister(
			p.batchesStarted,
			p.batchesFinished,
			p.batchDuration,
			p.stateTransitions,
			p.lanesInFlight,
			p.laneResults,
			p.laneDuration,
			p.validationFails,
			p.violations,
		)
	})
}

func (p *PrometheusRecorder) BatchStarted(context.Context, string, int) {
	p.ensureRegistered()
	p.batchesStarted.Inc()
}

func (p *PrometheusRecorder) BatchFinished(_ context.Context, _ string, state string, _, _ int, dur time.Duration) {
	p.ensureRegistered()
	p.batchesFinished.WithLabelValues(state).Inc()
	p.batchDuration.Observe(dur.Seconds())
}

func (p *PrometheusRecorder) StateChanged(_ context.Context, _ string, from, to string) {
	p.ensureRegistered()
	p.stateTransitions.WithLabelValues(from, to).Inc()
}

func (p *PrometheusRecorder) LaneStarted(context.Context, string, string) {
	p.ensureRegistered()
	p.lanesInFlight.Inc()
}

func (p *PrometheusRecorder) LaneFinished(_ context.Context, _, _ string, ok bool, dur time.Duration) {
	p.ensureRegistered()
	p.lanesInFlight.Dec()
	p.laneResults.WithLabelValues(strconv.FormatBool(ok)).Inc()
	p.laneDuration.Observe(dur.Seconds())
}

func (p *PrometheusRecorder) ValidationFailed(_ context.Context, _ string, violations int) {
	p.ensureRegistered()
	p.validationFails.Inc()
	p.violations.Add(float64(violations))
}
