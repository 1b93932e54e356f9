package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nephrolog-lt/nephrolog-api/internal/platform/db"
)

// Recalculator re-derives a day's stored nutrient norms. Implemented by the
// nutrition service; an interface here keeps the profile package free of a
// dependency cycle.
type Recalculator interface {
	RecalculateIfExists(ctx context.Context, userID string, date time.Time) error
}

type Service struct {
	repo   Repository
	pool   db.TxBeginner
	recalc Recalculator
	logger zerolog.Logger
	now    func() time.Time
}

func NewService(repo Repository, pool db.TxBeginner, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		pool:   pool,
		logger: logger,
		now:    time.Now,
	}
}

// SetRecalculator wires the nutrition-side recalculation trigger. Done after
// construction because the two services reference each other.
func (s *Service) SetRecalculator(r Recalculator) { s.recalc = r }

// SetClock overrides the service clock, for tests.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// Save upserts the user's profile and, in the same transaction, refreshes
// today's historical snapshot. Once committed, today's report norms are
// recalculated so an existing report picks up the new clinical state.
func (s *Service) Save(ctx context.Context, userID string, clinical Clinical) (*Profile, error) {
	if err := validateClinical(clinical); err != nil {
		return nil, err
	}

	today := s.today()
	p := &Profile{UserID: userID, Clinical: clinical}

	err := db.WithTx(ctx, s.pool, func(ctx context.Context) error {
		if err := s.repo.Upsert(ctx, p); err != nil {
			return fmt.Errorf("upsert profile: %w", err)
		}
		snapshot := &HistoricalProfile{UserID: userID, Date: today, Clinical: clinical}
		if err := s.repo.UpsertSnapshot(ctx, snapshot); err != nil {
			return fmt.Errorf("upsert snapshot: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.recalc != nil {
		if err := s.recalc.RecalculateIfExists(ctx, userID, today); err != nil {
			return nil, fmt.Errorf("recalculate daily norms: %w", err)
		}
	}

	return p, nil
}

func (s *Service) Get(ctx context.Context, userID string) (*Profile, error) {
	return s.repo.GetByUserID(ctx, userID)
}

// NearestSnapshot answers "what clinical state applied on date". It prefers
// the latest snapshot at or before the date; for days predating the user's
// first snapshot the first later snapshot is used as an approximation.
func (s *Service) NearestSnapshot(ctx context.Context, userID string, date time.Time) (*HistoricalProfile, error) {
	snap, err := s.repo.SnapshotAtOrBefore(ctx, userID, date)
	if err == nil {
		return snap, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return s.repo.FirstSnapshotAfter(ctx, userID, date)
}

func (s *Service) today() time.Time {
	n := s.now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// ValidationError marks user-correctable input problems.
type ValidationError struct{ msg string }

func (e *ValidationError) Error() string { return e.msg }

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

func validateClinical(c Clinical) error {
	if c.Gender != GenderMale && c.Gender != GenderFemale {
		return validationErrorf("gender must be Male or Female, got %q", c.Gender)
	}
	if c.HeightCm < 100 || c.HeightCm > 250 {
		return validationErrorf("height_cm must be between 100 and 250, got %d", c.HeightCm)
	}
	switch c.Dialysis {
	case DialysisUnknown, DialysisAutomaticPeritoneal, DialysisManualPeritoneal,
		DialysisHemodialysis, DialysisPostTransplant, DialysisNotPerformed:
	default:
		return validationErrorf("unknown dialysis type %q", c.Dialysis)
	}
	return nil
}
