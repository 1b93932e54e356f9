package health

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/nephrolog-lt/nephrolog-api/internal/platform/timezone"
)

// Recalculator re-derives the stored norms of the day's intakes report.
// Implemented by the nutrition service; the day's urine volume feeds the
// liquids allowance.
type Recalculator interface {
	RecalculateIfExists(ctx context.Context, userID string, date time.Time) error
}

type Service struct {
	repo   Repository
	recalc Recalculator
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// SetRecalculator wires the nutrition-side recalculation trigger.
func (s *Service) SetRecalculator(r Recalculator) { s.recalc = r }

// StatusInput carries the client-editable fields of a daily status.
type StatusInput struct {
	Date               time.Time
	WeightKg           *decimal.Decimal
	Glucose            *decimal.Decimal
	UrineMl            *int64
	Swellings          []Swelling
	SwellingDifficulty SwellingDifficulty
	WellFeeling        WellFeeling
	Appetite           Appetite
	ShortnessOfBreath  ShortnessOfBreath
}

var minWeightKg = decimal.NewFromInt(10)

func (in *StatusInput) validate() error {
	if in.Date.IsZero() {
		return validationErrorf("date is required")
	}
	if in.WeightKg != nil && in.WeightKg.LessThan(minWeightKg) {
		return validationErrorf("weight_kg must be at least 10, got %s", in.WeightKg)
	}
	if in.Glucose != nil && in.Glucose.IsNegative() {
		return validationErrorf("glucose must not be negative, got %s", in.Glucose)
	}
	if in.UrineMl != nil && *in.UrineMl < 0 {
		return validationErrorf("urine_ml must not be negative, got %d", *in.UrineMl)
	}
	if in.SwellingDifficulty == "" {
		in.SwellingDifficulty = SwellingDifficultyUnknown
	}
	if in.WellFeeling == "" {
		in.WellFeeling = WellFeelingUnknown
	}
	if in.Appetite == "" {
		in.Appetite = AppetiteUnknown
	}
	if in.ShortnessOfBreath == "" {
		in.ShortnessOfBreath = ShortnessOfBreathUnknown
	}
	return nil
}

// Upsert creates or rewrites the day's status and triggers recalculation of
// the matching intakes report, so a changed urine volume immediately moves
// the day's liquids allowance.
func (s *Service) Upsert(ctx context.Context, userID string, input StatusInput) (*DailyHealthStatus, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	date := normalizeDate(input.Date)
	status := &DailyHealthStatus{
		UserID:             userID,
		Date:               date,
		WeightKg:           input.WeightKg,
		Glucose:            input.Glucose,
		UrineMl:            input.UrineMl,
		Swellings:          input.Swellings,
		SwellingDifficulty: input.SwellingDifficulty,
		WellFeeling:        input.WellFeeling,
		Appetite:           input.Appetite,
		ShortnessOfBreath:  input.ShortnessOfBreath,
	}
	if err := s.repo.UpsertStatus(ctx, status); err != nil {
		return nil, fmt.Errorf("upsert health status: %w", err)
	}

	if s.recalc != nil {
		if err := s.recalc.RecalculateIfExists(ctx, userID, date); err != nil {
			return nil, fmt.Errorf("recalculate daily norms: %w", err)
		}
	}
	return status, nil
}

func (s *Service) GetByDate(ctx context.Context, userID string, date time.Time) (*DailyHealthStatus, error) {
	return s.repo.GetStatusWithChildren(ctx, userID, normalizeDate(date))
}

func (s *Service) GetBetween(ctx context.Context, userID string, from, to time.Time) ([]DailyHealthStatus, error) {
	if from.After(to) {
		return nil, validationErrorf("from %s is after to %s", from.Format("2006-01-02"), to.Format("2006-01-02"))
	}
	return s.repo.StatusesBetween(ctx, userID, normalizeDate(from), normalizeDate(to))
}

// GetOrCreateStatus returns the day's status, creating an empty one when
// missing. Used by measurements and dialysis sessions that attach to a day.
func (s *Service) GetOrCreateStatus(ctx context.Context, userID string, date time.Time) (*DailyHealthStatus, error) {
	return s.repo.CreateStatusIfAbsent(ctx, userID, normalizeDate(date))
}

// UrineMl reports the day's measured urine volume, nil when no status or no
// measurement exists.
func (s *Service) UrineMl(ctx context.Context, userID string, date time.Time) (*int64, error) {
	status, err := s.repo.GetStatus(ctx, userID, normalizeDate(date))
	if errors.Is(err, ErrStatusNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return status.UrineMl, nil
}

// BloodPressureInput carries one cuff measurement.
type BloodPressureInput struct {
	Systolic   int
	Diastolic  int
	MeasuredAt time.Time
}

func (in BloodPressureInput) validate() error {
	if in.Systolic < 1 || in.Systolic > 350 {
		return validationErrorf("systolic_blood_pressure must be between 1 and 350, got %d", in.Systolic)
	}
	if in.Diastolic < 1 || in.Diastolic > 200 {
		return validationErrorf("diastolic_blood_pressure must be between 1 and 200, got %d", in.Diastolic)
	}
	if in.MeasuredAt.IsZero() {
		return validationErrorf("measured_at is required")
	}
	return nil
}

// CreateBloodPressure attaches a measurement to the day's status, creating
// the status for the measured_at day in the caller's timezone if needed.
func (s *Service) CreateBloodPressure(ctx context.Context, userID string, loc *time.Location, input BloodPressureInput) (*BloodPressure, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	status, err := s.GetOrCreateStatus(ctx, userID, timezone.LocalDate(input.MeasuredAt, loc))
	if err != nil {
		return nil, err
	}

	bp := &BloodPressure{
		DailyHealthStatusID: status.ID,
		Systolic:            input.Systolic,
		Diastolic:           input.Diastolic,
		MeasuredAt:          input.MeasuredAt,
	}
	if err := s.repo.CreateBloodPressure(ctx, bp); err != nil {
		return nil, fmt.Errorf("create blood pressure: %w", err)
	}
	return bp, nil
}

func (s *Service) UpdateBloodPressure(ctx context.Context, userID string, id int64, input BloodPressureInput) (*BloodPressure, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	bp := &BloodPressure{
		ID:         id,
		Systolic:   input.Systolic,
		Diastolic:  input.Diastolic,
		MeasuredAt: input.MeasuredAt,
	}
	if err := s.repo.UpdateBloodPressure(ctx, userID, bp); err != nil {
		return nil, err
	}
	return bp, nil
}

func (s *Service) DeleteBloodPressure(ctx context.Context, userID string, id int64) error {
	return s.repo.DeleteBloodPressure(ctx, userID, id)
}

// PulseInput carries one heart-rate measurement.
type PulseInput struct {
	Pulse      int
	MeasuredAt time.Time
}

func (in PulseInput) validate() error {
	if in.Pulse < 10 || in.Pulse > 200 {
		return validationErrorf("pulse must be between 10 and 200, got %d", in.Pulse)
	}
	if in.MeasuredAt.IsZero() {
		return validationErrorf("measured_at is required")
	}
	return nil
}

func (s *Service) CreatePulse(ctx context.Context, userID string, loc *time.Location, input PulseInput) (*Pulse, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	status, err := s.GetOrCreateStatus(ctx, userID, timezone.LocalDate(input.MeasuredAt, loc))
	if err != nil {
		return nil, err
	}

	p := &Pulse{
		DailyHealthStatusID: status.ID,
		Pulse:               input.Pulse,
		MeasuredAt:          input.MeasuredAt,
	}
	if err := s.repo.CreatePulse(ctx, p); err != nil {
		return nil, fmt.Errorf("create pulse: %w", err)
	}
	return p, nil
}

func (s *Service) UpdatePulse(ctx context.Context, userID string, id int64, input PulseInput) (*Pulse, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	p := &Pulse{
		ID:         id,
		Pulse:      input.Pulse,
		MeasuredAt: input.MeasuredAt,
	}
	if err := s.repo.UpdatePulse(ctx, userID, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) DeletePulse(ctx context.Context, userID string, id int64) error {
	return s.repo.DeletePulse(ctx, userID, id)
}

func normalizeDate(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// ValidationError marks user-correctable input problems.
type ValidationError struct{ msg string }

func (e *ValidationError) Error() string { return e.msg }

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}
