package repository

import (
	"context"
	"database/sql"
	"time"

	"heater_bridge"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*heater_bridge.User, error)
}

// EventRepo is the append-only event log: commands, poll errors, status changes.
type EventRepo interface {
	Append(ctx context.Context, e heater_bridge.HeaterEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]heater_bridge.HeaterEvent, error)
}

// ReadingRepo stores telemetry samples, one per successful poll.
type ReadingRepo interface {
	Append(ctx context.Context, r heater_bridge.Reading) error
	ListRecent(ctx context.Context, limit int) ([]heater_bridge.Reading, error)
}

type Repository struct {
	EventRepo   EventRepo
	ReadingRepo ReadingRepo
	Auth        Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		EventRepo:   NewEventSQLite(db),
		ReadingRepo: NewReadingSQLite(db),
		Auth:        NewUserRepository(db),
	}
}
