// Package metrics exports correction-level Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/oukeidos/tamilfix/internal/apperrors"
	"github.com/oukeidos/tamilfix/internal/correction"
)

const namespace = "tamilfix"

// Recorder implements correction.Observer on top of Prometheus collectors.
type Recorder struct {
	requests       *prometheus.CounterVec
	latency        *prometheus.HistogramVec
	upstreamErrors *prometheus.CounterVec
	inputSize      *prometheus.HistogramVec
}

var _ correction.Observer = (*Recorder)(nil)

// NewRecorder registers its collectors with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "corrections_total",
			Help:      "Correction requests by operation and outcome.",
		}, []string{"operation", "outcome"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "correction_duration_seconds",
			Help:      "Time spent serving a correction request.",
			Buckets:   []float64{0.005, 0.05, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"operation"}),
		upstreamErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_errors_total",
			Help:      "Failed model calls by operation and error kind.",
		}, []string{"operation", "kind"}),
		inputSize: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "input_graphemes",
			Help:      "Input length in grapheme clusters.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"operation"}),
	}
}

func (r *Recorder) ObserveInput(op correction.Operation, graphemes int) {
	r.inputSize.WithLabelValues(string(op)).Observe(float64(graphemes))
}

func (r *Recorder) ObserveRequest(op correction.Operation, outcome string, elapsed time.Duration) {
	r.requests.WithLabelValues(string(op), outcome).Inc()
	r.latency.WithLabelValues(string(op)).Observe(elapsed.Seconds())
}

func (r *Recorder) ObserveUpstreamError(op correction.Operation, kind apperrors.Kind) {
	if kind == "" {
		kind = "unknown"
	}
	r.upstreamErrors.WithLabelValues(string(op), string(kind)).Inc()
}
