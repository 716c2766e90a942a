package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/timerkit/countdown-api/internal/model"
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedTimer(status model.TimerStatus, start, end time.Time) *model.Timer {
	return &model.Timer{
		Kind:      model.TimerKindFixed,
		Status:    status,
		StartDate: &start,
		EndDate:   &end,
	}
}

func evergreenTimer(status model.TimerStatus, duration int) *model.Timer {
	return &model.Timer{
		Kind:     model.TimerKindEvergreen,
		Status:   status,
		Duration: &duration,
	}
}

func TestEffectiveStatusFixed(t *testing.T) {
	start := baseTime
	end := baseTime.Add(time.Hour)

	tests := []struct {
		name string
		now  time.Time
		want model.TimerStatus
	}{
		{"before window", start.Add(-time.Minute), model.TimerStatusScheduled},
		{"at start boundary", start, model.TimerStatusActive},
		{"inside window", start.Add(30 * time.Minute), model.TimerStatusActive},
		{"at end boundary", end, model.TimerStatusActive},
		{"after window", end.Add(time.Second), model.TimerStatusExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			timer := fixedTimer(model.TimerStatusActive, start, end)
			assert.Equal(t, tt.want, EffectiveStatus(timer, tt.now))
		})
	}
}

func TestEffectiveStatusDraftIsSticky(t *testing.T) {
	start := baseTime
	end := baseTime.Add(time.Hour)

	// A draft stays a draft no matter where now falls in the window.
	timer := fixedTimer(model.TimerStatusDraft, start, end)
	assert.Equal(t, model.TimerStatusDraft, EffectiveStatus(timer, start.Add(-time.Minute)))
	assert.Equal(t, model.TimerStatusDraft, EffectiveStatus(timer, start.Add(30*time.Minute)))
	assert.Equal(t, model.TimerStatusDraft, EffectiveStatus(timer, end.Add(time.Hour)))
}

func TestEffectiveStatusEvergreenTrustsPersisted(t *testing.T) {
	// Evergreen timers have no shared window; whatever status is stored
	// is the answer.
	assert.Equal(t, model.TimerStatusActive, EffectiveStatus(evergreenTimer(model.TimerStatusActive, 3600), baseTime))
	assert.Equal(t, model.TimerStatusExpired, EffectiveStatus(evergreenTimer(model.TimerStatusExpired, 3600), baseTime))
	assert.Equal(t, model.TimerStatusScheduled, EffectiveStatus(evergreenTimer(model.TimerStatusScheduled, 3600), baseTime))
}

func TestIsActive(t *testing.T) {
	start := baseTime
	end := baseTime.Add(time.Hour)

	// Fixed: derived from bounds, not from the stored status. A timer
	// still marked scheduled serves once its window opens.
	stale := fixedTimer(model.TimerStatusScheduled, start, end)
	assert.True(t, IsActive(stale, start.Add(time.Minute)))

	// A timer still marked active stops serving past its end.
	overdue := fixedTimer(model.TimerStatusActive, start, end)
	assert.False(t, IsActive(overdue, end.Add(time.Minute)))

	// Draft never serves.
	assert.False(t, IsActive(fixedTimer(model.TimerStatusDraft, start, end), start.Add(time.Minute)))
	assert.False(t, IsActive(evergreenTimer(model.TimerStatusDraft, 3600), baseTime))

	// Evergreen serves on persisted status alone.
	assert.True(t, IsActive(evergreenTimer(model.TimerStatusActive, 3600), baseTime))
	assert.False(t, IsActive(evergreenTimer(model.TimerStatusExpired, 3600), baseTime))
}
