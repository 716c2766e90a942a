package public

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timerkit/countdown-api/internal/middleware"
	"github.com/timerkit/countdown-api/internal/model"
	timerService "github.com/timerkit/countdown-api/internal/service/timer"
	"github.com/timerkit/countdown-api/pkg/clock"
	"github.com/timerkit/countdown-api/pkg/logger"
	"github.com/timerkit/countdown-api/pkg/metrics"
	"github.com/timerkit/countdown-api/pkg/worker"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

const shop = "demo.myshopify.com"

// resolveRepo serves a canned candidate list.
type resolveRepo struct {
	timers []*model.Timer
}

func (r *resolveRepo) FindByShopAndStatuses(_ context.Context, shop string, statuses []model.TimerStatus) ([]*model.Timer, error) {
	var out []*model.Timer
	for _, t := range r.timers {
		if t.Shop != shop {
			continue
		}
		for _, s := range statuses {
			if t.Status == s {
				out = append(out, t)
				break
			}
		}
	}
	return out, nil
}

func (r *resolveRepo) Create(context.Context, *model.Timer) error { return nil }
func (r *resolveRepo) Get(context.Context, uuid.UUID, string) (*model.Timer, error) {
	return nil, nil
}
func (r *resolveRepo) Update(context.Context, *model.Timer) error      { return nil }
func (r *resolveRepo) Delete(context.Context, uuid.UUID, string) error { return nil }
func (r *resolveRepo) ListByShop(context.Context, string) ([]*model.Timer, error) {
	return nil, nil
}
func (r *resolveRepo) FindFixedNonDraft(context.Context) ([]*model.Timer, error) {
	return nil, nil
}
func (r *resolveRepo) UpdateStatus(context.Context, uuid.UUID, model.TimerStatus) error {
	return nil
}
func (r *resolveRepo) IncrementImpression(context.Context, uuid.UUID) error { return nil }

func newResolveRouter(repo *resolveRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	clk := &clock.Fixed{Instant: now}
	svc := timerService.NewService(repo, clk, log, 0)
	tracker := worker.NewImpressionTracker(repo, log, metrics.New("test"), 16)
	h := NewHandler(svc, tracker, clk)

	r := gin.New()
	api := r.Group("")
	api.Use(middleware.ValidateShop())
	h.RegisterRoutes(api)
	return r
}

func doResolve(r *gin.Engine, query string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/public/timer"+query, nil)
	req.Header.Set(middleware.HeaderShopDomain, shop)
	r.ServeHTTP(w, req)
	return w
}

func TestGetActiveTimerRequiresContext(t *testing.T) {
	r := newResolveRouter(&resolveRepo{})
	w := doResolve(r, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetActiveTimerNoMatch(t *testing.T) {
	r := newResolveRouter(&resolveRepo{})
	w := doResolve(r, "?productId=42")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "no active timer found")
}

func TestGetActiveTimerFixedPayload(t *testing.T) {
	start := now.Add(-time.Hour)
	end := now.Add(time.Hour)
	repo := &resolveRepo{timers: []*model.Timer{{
		ID:            uuid.New(),
		Shop:          shop,
		Name:          "flash",
		Kind:          model.TimerKindFixed,
		Status:        model.TimerStatusActive,
		StartDate:     &start,
		EndDate:       &end,
		TargetType:    model.TargetTypeAll,
		Customization: model.DefaultCustomization(),
	}}}

	r := newResolveRouter(repo)
	w := doResolve(r, "?productId=42")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			Timer map[string]interface{} `json:"timer"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	timer := body.Data.Timer
	assert.Equal(t, "fixed", timer["kind"])
	assert.Equal(t, end.Format(time.RFC3339), timer["end_date"])
	assert.Equal(t, float64(3600), timer["remaining_seconds"])
	assert.NotContains(t, timer, "duration")
	assert.Contains(t, timer, "customization")
}

func TestGetActiveTimerEvergreenPayload(t *testing.T) {
	duration := 1800
	repo := &resolveRepo{timers: []*model.Timer{{
		ID:            uuid.New(),
		Shop:          shop,
		Name:          "evergreen",
		Kind:          model.TimerKindEvergreen,
		Status:        model.TimerStatusActive,
		Duration:      &duration,
		TargetType:    model.TargetTypeAll,
		Customization: model.DefaultCustomization(),
	}}}

	r := newResolveRouter(repo)
	w := doResolve(r, "?collectionId=7")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			Timer map[string]interface{} `json:"timer"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	timer := body.Data.Timer
	assert.Equal(t, "evergreen", timer["kind"])
	assert.Equal(t, float64(1800), timer["duration"])
	assert.NotContains(t, timer, "end_date")
}
