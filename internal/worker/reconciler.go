package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/timerkit/countdown-api/internal/model"
	"github.com/timerkit/countdown-api/internal/repository"
	timersvc "github.com/timerkit/countdown-api/internal/service/timer"
	"github.com/timerkit/countdown-api/pkg/clock"
	"github.com/timerkit/countdown-api/pkg/logger"
	"github.com/timerkit/countdown-api/pkg/messaging"
	"github.com/timerkit/countdown-api/pkg/metrics"
)

// StatusChangedChannel is the broker channel status transitions are
// published to.
const StatusChangedChannel = "timer.status_changed"

type ReconcilerConfig struct {
	Interval   time.Duration
	RunOnStart bool
}

// Reconciler periodically brings every fixed timer's persisted status
// into agreement with its time-derived effective status. One instance
// never runs two sweeps concurrently; an overlapping trigger is
// skipped, not queued.
type Reconciler struct {
	repo    repository.TimerRepository
	broker  messaging.Broker
	clock   clock.Clock
	config  ReconcilerConfig
	logger  *logger.Logger
	metrics *metrics.Metrics

	sweepMu sync.Mutex
	cancel  context.CancelFunc

	mu          sync.Mutex
	running     bool
	lastRunAt   time.Time
	lastChecked int
	lastUpdated int
	lastFailed  int
}

// Status is a snapshot of the reconciler's scheduling state.
type Status struct {
	Running     bool          `json:"running"`
	Interval    time.Duration `json:"interval"`
	LastRunAt   time.Time     `json:"last_run_at"`
	LastChecked int           `json:"last_checked"`
	LastUpdated int           `json:"last_updated"`
	LastFailed  int           `json:"last_failed"`
}

// NewReconciler builds a reconciler. The broker may be nil when no
// event publishing is wanted.
func NewReconciler(
	repo repository.TimerRepository,
	broker messaging.Broker,
	clk clock.Clock,
	config ReconcilerConfig,
	log *logger.Logger,
	m *metrics.Metrics,
) *Reconciler {
	if config.Interval <= 0 {
		panic("Interval must be greater than 0")
	}

	return &Reconciler{
		repo:    repo,
		broker:  broker,
		clock:   clk,
		config:  config,
		logger:  log,
		metrics: m,
	}
}

// Start runs the sweep loop until the context is cancelled or Stop is
// called. It blocks; callers run it in a goroutine.
func (r *Reconciler) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		cancel()
		r.logger.Warn("reconciler already running")
		return
	}
	r.running = true
	r.cancel = cancel
	r.mu.Unlock()

	r.logger.Info("starting timer reconciler", "interval", r.config.Interval.String())

	// Catch up on transitions missed while the process was down.
	if r.config.RunOnStart {
		if _, _, err := r.RunOnce(ctx); err != nil {
			r.logger.Error(err, "initial sweep failed")
		}
	}

	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.mu.Lock()
			r.running = false
			r.mu.Unlock()
			r.logger.Info("shutting down timer reconciler")
			return
		case <-ticker.C:
			if _, _, err := r.RunOnce(ctx); err != nil {
				// The sweep survives to retry on the next trigger.
				r.logger.Error(err, "sweep failed")
			}
		}
	}
}

// Stop cancels the scheduling of future runs. An in-flight sweep is
// allowed to complete; each record update is independently atomic.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Status returns the current scheduling state and last-run counters.
func (r *Reconciler) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Status{
		Running:     r.running,
		Interval:    r.config.Interval,
		LastRunAt:   r.lastRunAt,
		LastChecked: r.lastChecked,
		LastUpdated: r.lastUpdated,
		LastFailed:  r.lastFailed,
	}
}

// RunOnce performs a single sweep. A per-timer update failure is
// counted and logged but never aborts the batch; only a failure to
// load the batch itself is returned. If a sweep is already in flight
// the trigger is skipped.
func (r *Reconciler) RunOnce(ctx context.Context) (updated, failed int, err error) {
	if !r.sweepMu.TryLock() {
		r.metrics.SweepSkipped.Inc()
		r.logger.Warn("sweep already in flight, skipping trigger")
		return 0, 0, nil
	}
	defer r.sweepMu.Unlock()

	timer := prometheus.NewTimer(r.metrics.SweepDuration)
	defer timer.ObserveDuration()
	r.metrics.SweepRuns.Inc()

	now := r.clock.Now()
	timers, err := r.repo.FindFixedNonDraft(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load fixed timers: %w", err)
	}

	for _, t := range timers {
		r.metrics.SweepTimersChecked.Inc()

		effective := timersvc.EffectiveStatus(t, now)
		if effective == t.Status {
			continue
		}

		if err := r.repo.UpdateStatus(ctx, t.ID, effective); err != nil {
			failed++
			r.metrics.SweepFailures.Inc()
			r.logger.Error(err, "failed to update timer status",
				"timer_id", t.ID.String(),
				"from", string(t.Status),
				"to", string(effective),
			)
			continue
		}

		updated++
		r.metrics.SweepStatusUpdates.WithLabelValues(string(t.Status), string(effective)).Inc()
		r.logger.Info("timer status updated",
			"timer_id", t.ID.String(),
			"name", t.Name,
			"from", string(t.Status),
			"to", string(effective),
		)
		r.publishStatusChange(ctx, t, effective)
	}

	r.mu.Lock()
	r.lastRunAt = now
	r.lastChecked = len(timers)
	r.lastUpdated = updated
	r.lastFailed = failed
	r.mu.Unlock()

	if updated > 0 || failed > 0 {
		r.logger.Info("sweep finished",
			"checked", len(timers),
			"updated", updated,
			"failed", failed,
		)
	}
	return updated, failed, nil
}

// publishStatusChange notifies downstream consumers. Publish failures
// are logged, never propagated; the persisted transition is the source
// of truth.
func (r *Reconciler) publishStatusChange(ctx context.Context, t *model.Timer, to model.TimerStatus) {
	if r.broker == nil {
		return
	}
	event := map[string]interface{}{
		"timer_id": t.ID.String(),
		"shop":     t.Shop,
		"from":     string(t.Status),
		"to":       string(to),
	}
	if err := r.broker.Publish(ctx, StatusChangedChannel, event); err != nil {
		r.logger.Error(err, "failed to publish status change", "timer_id", t.ID.String())
	}
}
