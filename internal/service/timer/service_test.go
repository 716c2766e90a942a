package timer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timerkit/countdown-api/internal/model"
	"github.com/timerkit/countdown-api/pkg/clock"
	apperrors "github.com/timerkit/countdown-api/pkg/errors"
)

func intPtr(v int) *int              { return &v }
func timePtr(v time.Time) *time.Time { return &v }
func strPtr(v string) *string        { return &v }

func newTestService(repo *fakeRepo) *Service {
	return NewService(repo, &clock.Fixed{Instant: baseTime}, testLogger(), 0)
}

func TestCreateFixedTimerDerivesStatus(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo)

	// Window opens in the future: stored as scheduled.
	created, err := svc.Create(context.Background(), testShop, &model.CreateTimerRequest{
		Name:      "flash sale",
		Kind:      model.TimerKindFixed,
		StartDate: timePtr(baseTime.Add(time.Hour)),
		EndDate:   timePtr(baseTime.Add(2 * time.Hour)),
		Status:    model.TimerStatusActive,
	})
	require.NoError(t, err)
	assert.Equal(t, model.TimerStatusScheduled, created.Status)
	assert.Equal(t, model.TargetTypeAll, created.TargetType)
	assert.Equal(t, model.DefaultCustomization(), created.Customization)

	// Window already open: stored as active.
	created, err = svc.Create(context.Background(), testShop, &model.CreateTimerRequest{
		Name:      "live sale",
		Kind:      model.TimerKindFixed,
		StartDate: timePtr(baseTime.Add(-time.Hour)),
		EndDate:   timePtr(baseTime.Add(time.Hour)),
		Status:    model.TimerStatusActive,
	})
	require.NoError(t, err)
	assert.Equal(t, model.TimerStatusActive, created.Status)
}

func TestCreateDefaultsToDraft(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo)

	created, err := svc.Create(context.Background(), testShop, &model.CreateTimerRequest{
		Name:      "unnamed",
		Kind:      model.TimerKindFixed,
		StartDate: timePtr(baseTime.Add(-time.Hour)),
		EndDate:   timePtr(baseTime.Add(time.Hour)),
	})
	require.NoError(t, err)
	// No explicit status: the draft default survives status derivation
	// even though the window is open.
	assert.Equal(t, model.TimerStatusDraft, created.Status)
}

func TestCreateValidation(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo)

	tests := []struct {
		name string
		req  *model.CreateTimerRequest
	}{
		{"fixed without dates", &model.CreateTimerRequest{
			Name: "t", Kind: model.TimerKindFixed,
		}},
		{"fixed with duration", &model.CreateTimerRequest{
			Name: "t", Kind: model.TimerKindFixed,
			StartDate: timePtr(baseTime), EndDate: timePtr(baseTime.Add(time.Hour)),
			Duration: intPtr(3600),
		}},
		{"fixed end before start", &model.CreateTimerRequest{
			Name: "t", Kind: model.TimerKindFixed,
			StartDate: timePtr(baseTime.Add(time.Hour)), EndDate: timePtr(baseTime),
		}},
		{"evergreen without duration", &model.CreateTimerRequest{
			Name: "t", Kind: model.TimerKindEvergreen,
		}},
		{"evergreen with dates", &model.CreateTimerRequest{
			Name: "t", Kind: model.TimerKindEvergreen,
			Duration: intPtr(3600), StartDate: timePtr(baseTime),
		}},
		{"evergreen duration too short", &model.CreateTimerRequest{
			Name: "t", Kind: model.TimerKindEvergreen, Duration: intPtr(59),
		}},
		{"evergreen duration too long", &model.CreateTimerRequest{
			Name: "t", Kind: model.TimerKindEvergreen, Duration: intPtr(86401),
		}},
		{"scoped targeting without ids", &model.CreateTimerRequest{
			Name: "t", Kind: model.TimerKindEvergreen, Duration: intPtr(3600),
			TargetType: model.TargetTypeProducts,
		}},
		{"bad customization position", &model.CreateTimerRequest{
			Name: "t", Kind: model.TimerKindEvergreen, Duration: intPtr(3600),
			Customization: &model.Customization{Position: "sideways"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), testShop, tt.req)
			assert.True(t, apperrors.IsBadRequest(err), "expected bad request, got %v", err)
		})
	}
	assert.Empty(t, repo.timers, "invalid timers must not be persisted")
}

func TestCreateEvergreenDurationBounds(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo)

	for _, d := range []int{model.MinEvergreenDuration, model.MaxEvergreenDuration} {
		_, err := svc.Create(context.Background(), testShop, &model.CreateTimerRequest{
			Name: "bounds", Kind: model.TimerKindEvergreen, Duration: intPtr(d),
		})
		assert.NoError(t, err, "duration %d is within bounds", d)
	}
}

func TestUpdateRederivesStatus(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo)

	created, err := svc.Create(context.Background(), testShop, &model.CreateTimerRequest{
		Name:      "sale",
		Kind:      model.TimerKindFixed,
		StartDate: timePtr(baseTime.Add(-2 * time.Hour)),
		EndDate:   timePtr(baseTime.Add(-time.Hour)),
		Status:    model.TimerStatusActive,
	})
	require.NoError(t, err)
	require.Equal(t, model.TimerStatusExpired, created.Status)

	// Extending the window past now revives the timer.
	updated, err := svc.Update(context.Background(), created.ID, testShop, &model.UpdateTimerRequest{
		EndDate: timePtr(baseTime.Add(time.Hour)),
	})
	require.NoError(t, err)
	assert.Equal(t, model.TimerStatusActive, updated.Status)
}

func TestUpdatePartialAppliesOnlySetFields(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo)

	created, err := svc.Create(context.Background(), testShop, &model.CreateTimerRequest{
		Name:     "evergreen",
		Kind:     model.TimerKindEvergreen,
		Duration: intPtr(3600),
		Priority: intPtr(40),
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, testShop, &model.UpdateTimerRequest{
		Name: strPtr("renamed"),
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Name)
	assert.Equal(t, 40, updated.Priority)
	require.NotNil(t, updated.Duration)
	assert.Equal(t, 3600, *updated.Duration)
}

func TestUpdateRejectsInvalidResult(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo)

	created, err := svc.Create(context.Background(), testShop, &model.CreateTimerRequest{
		Name:     "evergreen",
		Kind:     model.TimerKindEvergreen,
		Duration: intPtr(3600),
	})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), created.ID, testShop, &model.UpdateTimerRequest{
		Duration: intPtr(30),
	})
	assert.True(t, apperrors.IsBadRequest(err))
}

func TestGetScopedByShop(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo)

	created, err := svc.Create(context.Background(), testShop, &model.CreateTimerRequest{
		Name: "mine", Kind: model.TimerKindEvergreen, Duration: intPtr(3600),
	})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), created.ID, "other.myshopify.com")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestAnalyticsAggregates(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo)

	a, err := svc.Create(context.Background(), testShop, &model.CreateTimerRequest{
		Name: "a", Kind: model.TimerKindEvergreen, Duration: intPtr(3600),
		Status: model.TimerStatusActive,
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), testShop, &model.CreateTimerRequest{
		Name: "b", Kind: model.TimerKindEvergreen, Duration: intPtr(3600),
	})
	require.NoError(t, err)

	a.Impressions = 7

	summary, err := svc.Analytics(context.Background(), testShop)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalTimers)
	assert.Equal(t, 1, summary.ActiveTimers)
	assert.Equal(t, int64(7), summary.TotalImpressions)
	assert.Len(t, summary.Timers, 2)
}
