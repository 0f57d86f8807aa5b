package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the registration domain's Prometheus metrics.
type Metrics struct {
	ConversationsStarted   prometheus.Counter
	RegistrationsCompleted prometheus.Counter
	RegistrationsCancelled prometheus.Counter
	ValidationFailures     *prometheus.CounterVec
	SnapshotSaveFailures   prometheus.Counter
	AdvanceDuration        prometheus.Histogram
}

// New creates and registers all registration metrics.
func New() *Metrics {
	return &Metrics{
		ConversationsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bhandara_conversations_started_total",
			Help: "Total number of registration conversations started",
		}),
		RegistrationsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bhandara_registrations_completed_total",
			Help: "Total number of registrations confirmed and completed",
		}),
		RegistrationsCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bhandara_registrations_cancelled_total",
			Help: "Total number of registrations declined at confirmation",
		}),
		ValidationFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bhandara_validation_failures_total",
			Help: "Total number of rejected inputs, by step",
		}, []string{"step"}),
		SnapshotSaveFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bhandara_snapshot_save_failures_total",
			Help: "Total number of failed snapshot writes (best-effort, not propagated)",
		}),
		AdvanceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "bhandara_advance_duration_ms",
			Help:    "Latency of conversation advance calls in milliseconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
		}),
	}
}

// ObserveAdvance records one advance call's latency.
func (m *Metrics) ObserveAdvance(d time.Duration) {
	m.AdvanceDuration.Observe(float64(d.Microseconds()) / 1000.0)
}
