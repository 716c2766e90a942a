package timer

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/lib/pq"
	gocache "github.com/patrickmn/go-cache"

	"github.com/timerkit/countdown-api/internal/model"
	"github.com/timerkit/countdown-api/internal/repository"
	"github.com/timerkit/countdown-api/pkg/clock"
	apperrors "github.com/timerkit/countdown-api/pkg/errors"
	"github.com/timerkit/countdown-api/pkg/logger"
)

// Service owns timer CRUD and read-time resolution for one record
// store. Status derivation stays in the pure functions in status.go;
// the service only decides when to apply them and persist the result.
type Service struct {
	repo     repository.TimerRepository
	clock    clock.Clock
	logger   *logger.Logger
	cache    *gocache.Cache
	cacheTTL time.Duration
}

// NewService builds a timer service. A cacheTTL of zero disables the
// resolution cache, which tests rely on for deterministic matching.
func NewService(repo repository.TimerRepository, clk clock.Clock, log *logger.Logger, cacheTTL time.Duration) *Service {
	s := &Service{
		repo:     repo,
		clock:    clk,
		logger:   log,
		cacheTTL: cacheTTL,
	}
	if cacheTTL > 0 {
		s.cache = gocache.New(cacheTTL, 2*cacheTTL)
	}
	return s
}

func (s *Service) List(ctx context.Context, shop string) ([]*model.Timer, error) {
	timers, err := s.repo.ListByShop(ctx, shop)
	if err != nil {
		return nil, fmt.Errorf("failed to list timers: %w", err)
	}
	return timers, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID, shop string) (*model.Timer, error) {
	return s.repo.Get(ctx, id, shop)
}

func (s *Service) Create(ctx context.Context, shop string, req *model.CreateTimerRequest) (*model.Timer, error) {
	timer := &model.Timer{
		Shop:          shop,
		Name:          req.Name,
		Kind:          req.Kind,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		Duration:      req.Duration,
		TargetType:    model.TargetTypeAll,
		TargetIDs:     pq.StringArray(req.TargetIDs),
		Customization: model.DefaultCustomization(),
		Status:        model.TimerStatusDraft,
	}
	if req.TargetType != "" {
		timer.TargetType = req.TargetType
	}
	if req.Priority != nil {
		timer.Priority = *req.Priority
	}
	if req.Status != "" {
		timer.Status = req.Status
	}
	if req.Customization != nil {
		timer.Customization = *req.Customization
	}

	if err := validateTimer(timer); err != nil {
		return nil, err
	}

	// Fixed timers leave the write path time-consistent; drafts keep
	// their manual override.
	timer.Status = EffectiveStatus(timer, s.clock.Now())

	if err := s.repo.Create(ctx, timer); err != nil {
		return nil, err
	}
	return timer, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, shop string, req *model.UpdateTimerRequest) (*model.Timer, error) {
	timer, err := s.repo.Get(ctx, id, shop)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		timer.Name = *req.Name
	}
	if req.StartDate != nil {
		timer.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		timer.EndDate = req.EndDate
	}
	if req.Duration != nil {
		timer.Duration = req.Duration
	}
	if req.TargetType != nil {
		timer.TargetType = *req.TargetType
	}
	if req.TargetIDs != nil {
		timer.TargetIDs = pq.StringArray(*req.TargetIDs)
	}
	if req.Priority != nil {
		timer.Priority = *req.Priority
	}
	if req.Status != nil {
		timer.Status = *req.Status
	}
	if req.Customization != nil {
		timer.Customization = *req.Customization
	}

	if err := validateTimer(timer); err != nil {
		return nil, err
	}

	// Editing bounds can move a fixed timer back into any of the three
	// time-derived states on the next evaluation.
	timer.Status = EffectiveStatus(timer, s.clock.Now())

	if err := s.repo.Update(ctx, timer); err != nil {
		return nil, err
	}
	return timer, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID, shop string) error {
	return s.repo.Delete(ctx, id, shop)
}

// Analytics aggregates impression counters across a shop's timers.
func (s *Service) Analytics(ctx context.Context, shop string) (*model.AnalyticsSummary, error) {
	timers, err := s.repo.ListByShop(ctx, shop)
	if err != nil {
		return nil, fmt.Errorf("failed to load timers for analytics: %w", err)
	}

	summary := &model.AnalyticsSummary{
		TotalTimers: len(timers),
		Timers:      make([]model.TimerAnalyticsEntry, 0, len(timers)),
	}
	for _, t := range timers {
		if t.Status == model.TimerStatusActive {
			summary.ActiveTimers++
		}
		summary.TotalImpressions += t.Impressions
		summary.Timers = append(summary.Timers, model.TimerAnalyticsEntry{
			ID:               t.ID,
			Name:             t.Name,
			Status:           t.Status,
			Impressions:      t.Impressions,
			LastImpressionAt: t.LastImpressionAt,
		})
	}
	return summary, nil
}

// validate re-checks customization on the merged record. Partial
// updates are applied field by field, so binding alone does not cover
// the final state.
var validate = func() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	return v
}()

// validateTimer enforces the kind-specific field rules the request
// binding cannot express.
func validateTimer(t *model.Timer) error {
	switch t.Kind {
	case model.TimerKindFixed:
		if t.StartDate == nil || t.EndDate == nil {
			return apperrors.BadRequest("start and end dates are required for fixed timers", nil)
		}
		if t.Duration != nil {
			return apperrors.BadRequest("duration is not allowed for fixed timers", nil)
		}
		if !t.EndDate.After(*t.StartDate) {
			return apperrors.BadRequest("end date must be after start date", nil)
		}
	case model.TimerKindEvergreen:
		if t.Duration == nil {
			return apperrors.BadRequest("duration is required for evergreen timers", nil)
		}
		if t.StartDate != nil || t.EndDate != nil {
			return apperrors.BadRequest("dates are not allowed for evergreen timers", nil)
		}
		if *t.Duration < model.MinEvergreenDuration || *t.Duration > model.MaxEvergreenDuration {
			return apperrors.BadRequest(
				fmt.Sprintf("duration must be between %d and %d seconds", model.MinEvergreenDuration, model.MaxEvergreenDuration), nil)
		}
	default:
		return apperrors.BadRequest("kind must be fixed or evergreen", nil)
	}

	if t.TargetType != model.TargetTypeAll && len(t.TargetIDs) == 0 {
		return apperrors.BadRequest("target ids are required when target type is not all", nil)
	}
	if t.Priority < model.MinPriority || t.Priority > model.MaxPriority {
		return apperrors.BadRequest("priority must be between 0 and 100", nil)
	}
	if err := validate.Struct(&t.Customization); err != nil {
		return apperrors.BadRequest("invalid customization", err)
	}
	return nil
}
