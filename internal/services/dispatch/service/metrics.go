package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "dadhumor"
	metricsSubsystem = "dispatch"
)

// Run results recorded on RunsTotal
const (
	runCompleted   = "completed"
	runConfigError = "config_error"
	runFetchError  = "fetch_error"
)

// Metrics holds the dispatch collectors
type Metrics struct {
	RunsTotal         *prometheus.CounterVec
	RunDuration       prometheus.Histogram
	DeliveriesTotal   *prometheus.CounterVec
	PayloadBytes      *prometheus.HistogramVec
	HighlightsDropped prometheus.Counter
}

// NewMetrics builds the collectors and registers them on reg
// A nil reg leaves them unregistered, which tests rely on
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "runs_total",
				Help:      "Dispatch runs by dataset and result",
			},
			[]string{"dataset", "result"},
		),
		RunDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "run_duration_seconds",
				Help:      "Wall time of completed dispatch runs",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
			},
		),
		DeliveriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "deliveries_total",
				Help:      "Push deliveries by variant and result",
			},
			[]string{"variant", "result"},
		),
		PayloadBytes: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "payload_bytes",
				Help:      "Serialized data block size per topic group",
				Buckets:   []float64{250, 500, 1000, 2000, 3000, 4000, 6000, 8000},
			},
			[]string{"shape"},
		),
		HighlightsDropped: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "highlights_dropped_total",
				Help:      "Topic groups sent without highlights because of the size budget",
			},
		),
	}
}
