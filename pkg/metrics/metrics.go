package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Reconciliation sweep metrics
	SweepRuns          prometheus.Counter
	SweepDuration      prometheus.Histogram
	SweepTimersChecked prometheus.Counter
	SweepStatusUpdates *prometheus.CounterVec
	SweepFailures      prometheus.Counter
	SweepSkipped       prometheus.Counter

	// Impression tracker metrics
	ImpressionsQueued  prometheus.Counter
	ImpressionsDropped prometheus.Counter
	ImpressionsFailed  prometheus.Counter
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		SweepRuns: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_runs_total",
			Help:      "Total number of reconciliation sweep runs",
		}),
		SweepDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Time spent per reconciliation sweep",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		SweepTimersChecked: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_timers_checked_total",
			Help:      "Total number of fixed timers evaluated by the sweep",
		}),
		SweepStatusUpdates: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_status_updates_total",
			Help:      "Total number of persisted status transitions",
		}, []string{"from", "to"}),
		SweepFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_failures_total",
			Help:      "Total number of per-timer update failures during sweeps",
		}),
		SweepSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_skipped_total",
			Help:      "Total number of sweep triggers skipped because a run was in flight",
		}),
		ImpressionsQueued: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "impressions_queued_total",
			Help:      "Total number of impression increments accepted by the tracker",
		}),
		ImpressionsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "impressions_dropped_total",
			Help:      "Total number of impression increments dropped due to a full queue",
		}),
		ImpressionsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "impressions_failed_total",
			Help:      "Total number of impression increments that failed to persist",
		}),
	}
}

// New builds unregistered metrics, for tests and tools that manage
// their own registry.
func New(namespace string) *Metrics {
	return &Metrics{
		SweepRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_runs_total",
			Help:      "Total number of reconciliation sweep runs",
		}),
		SweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Time spent per reconciliation sweep",
		}),
		SweepTimersChecked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_timers_checked_total",
			Help:      "Total number of fixed timers evaluated by the sweep",
		}),
		SweepStatusUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_status_updates_total",
			Help:      "Total number of persisted status transitions",
		}, []string{"from", "to"}),
		SweepFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_failures_total",
			Help:      "Total number of per-timer update failures during sweeps",
		}),
		SweepSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_skipped_total",
			Help:      "Total number of sweep triggers skipped because a run was in flight",
		}),
		ImpressionsQueued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "impressions_queued_total",
			Help:      "Total number of impression increments accepted by the tracker",
		}),
		ImpressionsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "impressions_dropped_total",
			Help:      "Total number of impression increments dropped due to a full queue",
		}),
		ImpressionsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "impressions_failed_total",
			Help:      "Total number of impression increments that failed to persist",
		}),
	}
}
