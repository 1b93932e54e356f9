package dialysis

import (
	"context"
	"errors"
	"time"
)

var (
	ErrManualNotFound    = errors.New("manual dialysis not found")
	ErrAutomaticNotFound = errors.New("automatic dialysis not found")
)

type Repository interface {
	CreateManual(ctx context.Context, m *ManualDialysis) error
	GetManual(ctx context.Context, userID string, id int64) (*ManualDialysis, error)
	UpdateManual(ctx context.Context, userID string, m *ManualDialysis) error
	DeleteManual(ctx context.Context, userID string, id int64) error
	// LatestManual returns the newest exchanges, not-completed ones first.
	LatestManual(ctx context.Context, userID string, limit int) ([]ManualDialysis, error)
	NotCompletedManual(ctx context.Context, userID string) (*ManualDialysis, error)

	CreateAutomatic(ctx context.Context, a *AutomaticDialysis) error
	GetAutomaticByDate(ctx context.Context, userID string, date time.Time) (*AutomaticDialysis, error)
	UpdateAutomatic(ctx context.Context, userID string, a *AutomaticDialysis) error
	DeleteAutomaticByDate(ctx context.Context, userID string, date time.Time) error
	NotCompletedAutomatic(ctx context.Context, userID string) (*AutomaticDialysis, error)
	LastAutomatic(ctx context.Context, userID string) (*AutomaticDialysis, error)
	AutomaticBetween(ctx context.Context, userID string, from, to time.Time) ([]AutomaticDialysis, error)
}
