package health

import (
	"context"
	"errors"
	"time"
)

var (
	ErrStatusNotFound        = errors.New("daily health status not found")
	ErrBloodPressureNotFound = errors.New("blood pressure entry not found")
	ErrPulseNotFound         = errors.New("pulse entry not found")
)

type Repository interface {
	// UpsertStatus creates or rewrites the (user, date) status row.
	UpsertStatus(ctx context.Context, s *DailyHealthStatus) error
	// CreateStatusIfAbsent inserts an empty (user, date) status unless one
	// exists. Safe under concurrent callers.
	CreateStatusIfAbsent(ctx context.Context, userID string, date time.Time) (*DailyHealthStatus, error)
	// GetStatus returns the bare status row, without children.
	GetStatus(ctx context.Context, userID string, date time.Time) (*DailyHealthStatus, error)
	// GetStatusWithChildren loads blood pressures and pulses too.
	GetStatusWithChildren(ctx context.Context, userID string, date time.Time) (*DailyHealthStatus, error)
	// StatusesBetween returns statuses in [from, to] ordered by date, with
	// children loaded.
	StatusesBetween(ctx context.Context, userID string, from, to time.Time) ([]DailyHealthStatus, error)

	CreateBloodPressure(ctx context.Context, bp *BloodPressure) error
	UpdateBloodPressure(ctx context.Context, userID string, bp *BloodPressure) error
	DeleteBloodPressure(ctx context.Context, userID string, id int64) error

	CreatePulse(ctx context.Context, p *Pulse) error
	UpdatePulse(ctx context.Context, userID string, p *Pulse) error
	DeletePulse(ctx context.Context, userID string, id int64) error
}
