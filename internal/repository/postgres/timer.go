package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/timerkit/countdown-api/internal/model"
	apperrors "github.com/timerkit/countdown-api/pkg/errors"
)

const timerColumns = `
	id, shop, name, kind, start_date, end_date, duration,
	target_type, target_ids, customization, priority, status,
	impressions, last_impression_at, created_at, updated_at
`

func (r *timerRepository) Create(ctx context.Context, timer *model.Timer) error {
	query := `
		INSERT INTO timers (
			id, shop, name, kind, start_date, end_date, duration,
			target_type, target_ids, customization, priority, status,
			impressions, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	timer.ID = uuid.New()
	timer.CreatedAt = time.Now()
	timer.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		timer.ID,
		timer.Shop,
		timer.Name,
		timer.Kind,
		timer.StartDate,
		timer.EndDate,
		timer.Duration,
		timer.TargetType,
		timer.TargetIDs,
		timer.Customization,
		timer.Priority,
		timer.Status,
		timer.Impressions,
		timer.CreatedAt,
		timer.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create timer: %w", err)
	}
	return nil
}

func (r *timerRepository) Get(ctx context.Context, id uuid.UUID, shop string) (*model.Timer, error) {
	query := `SELECT ` + timerColumns + ` FROM timers WHERE id = $1 AND shop = $2`

	var timer model.Timer
	err := r.db.GetContext(ctx, &timer, query, id, shop)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("timer", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get timer: %w", err)
	}
	return &timer, nil
}

func (r *timerRepository) Update(ctx context.Context, timer *model.Timer) error {
	query := `
		UPDATE timers
		SET name = $1, start_date = $2, end_date = $3, duration = $4,
			target_type = $5, target_ids = $6, customization = $7,
			priority = $8, status = $9, updated_at = $10
		WHERE id = $11 AND shop = $12
	`
	timer.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		timer.Name,
		timer.StartDate,
		timer.EndDate,
		timer.Duration,
		timer.TargetType,
		timer.TargetIDs,
		timer.Customization,
		timer.Priority,
		timer.Status,
		timer.UpdatedAt,
		timer.ID,
		timer.Shop,
	)
	if err != nil {
		return fmt.Errorf("failed to update timer: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("timer", nil)
	}

	return nil
}

func (r *timerRepository) Delete(ctx context.Context, id uuid.UUID, shop string) error {
	query := `DELETE FROM timers WHERE id = $1 AND shop = $2`

	result, err := r.db.ExecContext(ctx, query, id, shop)
	if err != nil {
		return fmt.Errorf("failed to delete timer: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("timer", nil)
	}

	return nil
}

func (r *timerRepository) ListByShop(ctx context.Context, shop string) ([]*model.Timer, error) {
	query := `SELECT ` + timerColumns + ` FROM timers WHERE shop = $1 ORDER BY created_at DESC`

	var timers []*model.Timer
	err := r.db.SelectContext(ctx, &timers, query, shop)
	if err != nil {
		return nil, fmt.Errorf("failed to list timers: %w", err)
	}
	return timers, nil
}

func (r *timerRepository) FindByShopAndStatuses(ctx context.Context, shop string, statuses []model.TimerStatus) ([]*model.Timer, error) {
	query := `SELECT ` + timerColumns + ` FROM timers WHERE shop = $1 AND status = ANY($2)`

	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}

	var timers []*model.Timer
	err := r.db.SelectContext(ctx, &timers, query, shop, pq.Array(values))
	if err != nil {
		return nil, fmt.Errorf("failed to find timers by statuses: %w", err)
	}
	return timers, nil
}

func (r *timerRepository) FindFixedNonDraft(ctx context.Context) ([]*model.Timer, error) {
	query := `SELECT ` + timerColumns + ` FROM timers WHERE kind = $1 AND status != $2`

	var timers []*model.Timer
	err := r.db.SelectContext(ctx, &timers, query, model.TimerKindFixed, model.TimerStatusDraft)
	if err != nil {
		return nil, fmt.Errorf("failed to find fixed timers: %w", err)
	}
	return timers, nil
}

func (r *timerRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.TimerStatus) error {
	query := `UPDATE timers SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update timer status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("timer", nil)
	}

	return nil
}

func (r *timerRepository) IncrementImpression(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE timers
		SET impressions = impressions + 1, last_impression_at = $1
		WHERE id = $2
	`
	_, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to increment impression: %w", err)
	}
	return nil
}
