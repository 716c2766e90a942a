package timer

import (
	"time"

	"github.com/timerkit/countdown-api/internal/model"
)

// EffectiveStatus derives the lifecycle status a timer should have at
// the given instant. Draft is a manual override and is returned
// unchanged. Evergreen timers carry no shared time window, so their
// persisted status is authoritative. Fixed timers are derived purely
// from their bounds; both window boundaries count as active.
func EffectiveStatus(t *model.Timer, now time.Time) model.TimerStatus {
	if t.Status == model.TimerStatusDraft {
		return model.TimerStatusDraft
	}
	if t.Kind != model.TimerKindFixed {
		return t.Status
	}
	switch {
	case t.StartDate != nil && now.Before(*t.StartDate):
		return model.TimerStatusScheduled
	case t.EndDate != nil && now.After(*t.EndDate):
		return model.TimerStatusExpired
	default:
		return model.TimerStatusActive
	}
}

// IsActive reports whether the timer should be served right now. For
// fixed timers the answer is recomputed from the bounds rather than
// trusting a possibly stale persisted status, which makes request-time
// resolution self-healing regardless of sweep timing.
func IsActive(t *model.Timer, now time.Time) bool {
	if t.Status == model.TimerStatusDraft {
		return false
	}
	if t.Kind == model.TimerKindEvergreen {
		return t.Status == model.TimerStatusActive
	}
	return EffectiveStatus(t, now) == model.TimerStatusActive
}
