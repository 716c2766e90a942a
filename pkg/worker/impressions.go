package worker

import (
	"context"

	"github.com/google/uuid"

	"github.com/timerkit/countdown-api/internal/repository"
	"github.com/timerkit/countdown-api/pkg/logger"
	"github.com/timerkit/countdown-api/pkg/metrics"
)

// ImpressionTracker persists impression counts off the request path.
// Increments are handed to a bounded queue; when the queue is full the
// increment is dropped and counted, never blocking or failing the
// response that triggered it.
type ImpressionTracker struct {
	repo    repository.TimerRepository
	logger  *logger.Logger
	metrics *metrics.Metrics
	queue   chan uuid.UUID
}

func NewImpressionTracker(repo repository.TimerRepository, log *logger.Logger, m *metrics.Metrics, queueSize int) *ImpressionTracker {
	if queueSize <= 0 {
		panic("queueSize must be greater than 0")
	}
	return &ImpressionTracker{
		repo:    repo,
		logger:  log,
		metrics: m,
		queue:   make(chan uuid.UUID, queueSize),
	}
}

// Track enqueues one impression increment. Never blocks.
func (t *ImpressionTracker) Track(timerID uuid.UUID) {
	select {
	case t.queue <- timerID:
		t.metrics.ImpressionsQueued.Inc()
	default:
		t.metrics.ImpressionsDropped.Inc()
		t.logger.Warn("impression queue full, dropping increment", "timer_id", timerID.String())
	}
}

// Start consumes the queue until the context is cancelled. It blocks;
// callers run it in a goroutine.
func (t *ImpressionTracker) Start(ctx context.Context) {
	t.logger.Info("starting impression tracker")
	for {
		select {
		case <-ctx.Done():
			t.logger.Info("shutting down impression tracker")
			return
		case timerID := <-t.queue:
			if err := t.repo.IncrementImpression(ctx, timerID); err != nil {
				t.metrics.ImpressionsFailed.Inc()
				t.logger.Error(err, "failed to increment impression", "timer_id", timerID.String())
			}
		}
	}
}
