package profile

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("profile not found")

type Repository interface {
	// Upsert creates or replaces the user's single profile row.
	Upsert(ctx context.Context, p *Profile) error
	GetByUserID(ctx context.Context, userID string) (*Profile, error)

	// UpsertSnapshot creates or refreshes the (user, date) snapshot row.
	UpsertSnapshot(ctx context.Context, s *HistoricalProfile) error
	// SnapshotAtOrBefore returns the snapshot with the greatest date <= date.
	SnapshotAtOrBefore(ctx context.Context, userID string, date time.Time) (*HistoricalProfile, error)
	// FirstSnapshotAfter returns the snapshot with the smallest date > date.
	FirstSnapshotAfter(ctx context.Context, userID string, date time.Time) (*HistoricalProfile, error)
}
