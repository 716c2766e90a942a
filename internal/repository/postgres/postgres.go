package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/timerkit/countdown-api/internal/repository"
)

type timerRepository struct {
	db *sqlx.DB
}

func NewTimerRepository(db *sqlx.DB) repository.TimerRepository {
	return &timerRepository{db: db}
}
