package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/timerkit/countdown-api/internal/model"
)

// TimerRepository is the record store contract used by the service
// layer and the reconciliation sweep. Every query is scoped server-side
// (by shop, kind or status); callers never filter an unscoped dump.
type TimerRepository interface {
	Create(ctx context.Context, timer *model.Timer) error
	Get(ctx context.Context, id uuid.UUID, shop string) (*model.Timer, error)
	Update(ctx context.Context, timer *model.Timer) error
	Delete(ctx context.Context, id uuid.UUID, shop string) error
	ListByShop(ctx context.Context, shop string) ([]*model.Timer, error)
	FindByShopAndStatuses(ctx context.Context, shop string, statuses []model.TimerStatus) ([]*model.Timer, error)
	FindFixedNonDraft(ctx context.Context) ([]*model.Timer, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.TimerStatus) error
	IncrementImpression(ctx context.Context, id uuid.UUID) error
}
