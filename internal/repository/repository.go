package repository

import (
	"context"
	"database/sql"
	"time"

	"water_tank/internal/models"
)

// EventRepo is the append-only audit log. Tank state itself is never
// stored; only commands and interlock trips are.
type EventRepo interface {
	Append(ctx context.Context, e models.TankEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.TankEvent, error)
}

type Repository struct {
	EventRepo EventRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		EventRepo: NewEventSQLite(db),
	}
}
