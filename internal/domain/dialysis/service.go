package dialysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nephrolog-lt/nephrolog-api/internal/domain/health"
	"github.com/nephrolog-lt/nephrolog-api/internal/domain/nutrition"
	"github.com/nephrolog-lt/nephrolog-api/internal/platform/timezone"
)

// A cycler session that starts shortly after midnight still belongs to the
// evening before, so its day is taken at started_at minus this offset.
const automaticDayOffset = 3 * time.Hour

const manualLatestLimit = 3

// StatusSource is the health-side surface dialysis sessions attach to.
type StatusSource interface {
	GetOrCreateStatus(ctx context.Context, userID string, date time.Time) (*health.DailyHealthStatus, error)
	GetBetween(ctx context.Context, userID string, from, to time.Time) ([]health.DailyHealthStatus, error)
}

// ReportSource is the nutrition-side surface dialysis sessions attach to.
type ReportSource interface {
	GetOrCreateReport(ctx context.Context, userID string, date time.Time) (*nutrition.DailyIntakesReport, error)
	GetReportsBetween(ctx context.Context, userID string, from, to time.Time) ([]nutrition.DailyIntakesReport, error)
}

type Service struct {
	repo     Repository
	statuses StatusSource
	reports  ReportSource
	logger   zerolog.Logger
	now      func() time.Time
}

func NewService(repo Repository, statuses StatusSource, reports ReportSource, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		statuses: statuses,
		reports:  reports,
		logger:   logger,
		now:      time.Now,
	}
}

// SetClock overrides the wall clock.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// ManualInput carries the client-editable fields of a manual exchange.
type ManualInput struct {
	IsCompleted      bool
	StartedAt        time.Time
	DialysisSolution Solution
	SolutionInMl     int64
	SolutionOutMl    *int64
	DialysateColor   DialysateColor
	Notes            string
}

func (in *ManualInput) validate() error {
	if in.StartedAt.IsZero() {
		return validationErrorf("started_at is required")
	}
	if in.SolutionInMl <= 0 {
		return validationErrorf("solution_in_ml must be positive, got %d", in.SolutionInMl)
	}
	if in.SolutionOutMl != nil && *in.SolutionOutMl < 0 {
		return validationErrorf("solution_out_ml must not be negative, got %d", *in.SolutionOutMl)
	}
	if in.IsCompleted && in.SolutionOutMl == nil {
		return validationErrorf("completing an exchange requires solution_out_ml")
	}
	if in.DialysisSolution == "" {
		in.DialysisSolution = SolutionUnknown
	}
	if !validSolution(in.DialysisSolution) {
		return validationErrorf("unknown dialysis_solution %q", in.DialysisSolution)
	}
	if in.DialysateColor == "" {
		in.DialysateColor = DialysateColorUnknown
	}
	if !validDialysateColor(in.DialysateColor) {
		return validationErrorf("unknown dialysate_color %q", in.DialysateColor)
	}
	return nil
}

// attachDay resolves the session's calendar day to a health status and an
// intakes report, creating both when absent.
func (s *Service) attachDay(ctx context.Context, userID string, date time.Time) (statusID, reportID int64, err error) {
	status, err := s.statuses.GetOrCreateStatus(ctx, userID, date)
	if err != nil {
		return 0, 0, fmt.Errorf("get or create health status: %w", err)
	}
	report, err := s.reports.GetOrCreateReport(ctx, userID, date)
	if err != nil {
		return 0, 0, fmt.Errorf("get or create intakes report: %w", err)
	}
	return status.ID, report.ID, nil
}

// CreateManual records an exchange on the started_at day in the caller's
// timezone.
func (s *Service) CreateManual(ctx context.Context, userID string, loc *time.Location, input ManualInput) (*ManualDialysis, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	statusID, reportID, err := s.attachDay(ctx, userID, timezone.LocalDate(input.StartedAt, loc))
	if err != nil {
		return nil, err
	}

	m := &ManualDialysis{
		DailyHealthStatusID:  statusID,
		DailyIntakesReportID: reportID,
		IsCompleted:          input.IsCompleted,
		StartedAt:            input.StartedAt,
		DialysisSolution:     input.DialysisSolution,
		SolutionInMl:         input.SolutionInMl,
		SolutionOutMl:        input.SolutionOutMl,
		DialysateColor:       input.DialysateColor,
		Notes:                input.Notes,
	}
	if err := s.repo.CreateManual(ctx, m); err != nil {
		return nil, fmt.Errorf("create manual dialysis: %w", err)
	}
	return m, nil
}

// UpdateManual rewrites an exchange, moving it to another day's status and
// report when started_at changed the day.
func (s *Service) UpdateManual(ctx context.Context, userID string, loc *time.Location, id int64, input ManualInput) (*ManualDialysis, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	m, err := s.repo.GetManual(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	statusID, reportID, err := s.attachDay(ctx, userID, timezone.LocalDate(input.StartedAt, loc))
	if err != nil {
		return nil, err
	}

	m.DailyHealthStatusID = statusID
	m.DailyIntakesReportID = reportID
	m.IsCompleted = input.IsCompleted
	m.StartedAt = input.StartedAt
	m.DialysisSolution = input.DialysisSolution
	m.SolutionInMl = input.SolutionInMl
	m.SolutionOutMl = input.SolutionOutMl
	m.DialysateColor = input.DialysateColor
	m.Notes = input.Notes

	if err := s.repo.UpdateManual(ctx, userID, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) DeleteManual(ctx context.Context, userID string, id int64) error {
	return s.repo.DeleteManual(ctx, userID, id)
}

// ManualScreen is the manual dialysis home screen.
type ManualScreen struct {
	InProgress       *ManualDialysis                `json:"peritoneal_dialysis_in_progress"`
	LastSessions     []ManualDialysis               `json:"last_peritoneal_dialysis"`
	LastWeekStatuses []health.DailyHealthStatus     `json:"-"`
	LastWeekReports  []nutrition.DailyIntakesReport `json:"-"`
}

func (s *Service) GetManualScreen(ctx context.Context, userID string, loc *time.Location) (*ManualScreen, error) {
	today := timezone.LocalDate(s.now(), loc)
	from := today.AddDate(0, 0, -6)

	statuses, err := s.statuses.GetBetween(ctx, userID, from, today)
	if err != nil {
		return nil, err
	}
	reports, err := s.reports.GetReportsBetween(ctx, userID, from, today)
	if err != nil {
		return nil, err
	}
	last, err := s.repo.LatestManual(ctx, userID, manualLatestLimit)
	if err != nil {
		return nil, err
	}
	inProgress, err := s.repo.NotCompletedManual(ctx, userID)
	if err != nil && !errors.Is(err, ErrManualNotFound) {
		return nil, err
	}

	return &ManualScreen{
		InProgress:       inProgress,
		LastSessions:     last,
		LastWeekStatuses: statuses,
		LastWeekReports:  reports,
	}, nil
}

// AutomaticInput carries the client-editable fields of a cycler session.
type AutomaticInput struct {
	IsCompleted bool
	StartedAt   time.Time

	SolutionYellowInMl int64
	SolutionGreenInMl  int64
	SolutionOrangeInMl int64
	SolutionBlueInMl   int64
	SolutionPurpleInMl int64

	InitialDrainingMl      *int64
	TotalDrainVolumeMl     *int64
	LastFillMl             *int64
	TotalUltrafiltrationMl *int64

	DialysateColor DialysateColor
	Notes          string
	FinishedAt     *time.Time
}

func (in *AutomaticInput) validate() error {
	if in.StartedAt.IsZero() {
		return validationErrorf("started_at is required")
	}
	for _, v := range []struct {
		name string
		ml   int64
	}{
		{"solution_yellow_in_ml", in.SolutionYellowInMl},
		{"solution_green_in_ml", in.SolutionGreenInMl},
		{"solution_orange_in_ml", in.SolutionOrangeInMl},
		{"solution_blue_in_ml", in.SolutionBlueInMl},
		{"solution_purple_in_ml", in.SolutionPurpleInMl},
	} {
		if v.ml < 0 {
			return validationErrorf("%s must not be negative, got %d", v.name, v.ml)
		}
	}
	for _, v := range []struct {
		name string
		ml   *int64
	}{
		{"initial_draining_ml", in.InitialDrainingMl},
		{"total_drain_volume_ml", in.TotalDrainVolumeMl},
		{"last_fill_ml", in.LastFillMl},
		{"total_ultrafiltration_ml", in.TotalUltrafiltrationMl},
	} {
		if v.ml != nil && *v.ml < 0 {
			return validationErrorf("%s must not be negative, got %d", v.name, *v.ml)
		}
	}
	if in.FinishedAt != nil && in.FinishedAt.Before(in.StartedAt) {
		return validationErrorf("finished_at must not precede started_at")
	}
	if in.DialysateColor == "" {
		in.DialysateColor = DialysateColorUnknown
	}
	if !validDialysateColor(in.DialysateColor) {
		return validationErrorf("unknown dialysate_color %q", in.DialysateColor)
	}
	return nil
}

// automaticDate is the session's calendar day in the caller's timezone,
// shifted back so early-night starts count toward the previous day.
func automaticDate(startedAt time.Time, loc *time.Location) time.Time {
	return timezone.LocalDate(startedAt.Add(-automaticDayOffset), loc)
}

func (s *Service) CreateAutomatic(ctx context.Context, userID string, loc *time.Location, input AutomaticInput) (*AutomaticDialysis, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	date := automaticDate(input.StartedAt, loc)
	statusID, reportID, err := s.attachDay(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	a := &AutomaticDialysis{
		DailyHealthStatusID:    statusID,
		DailyIntakesReportID:   reportID,
		Date:                   date,
		IsCompleted:            input.IsCompleted,
		StartedAt:              input.StartedAt,
		SolutionYellowInMl:     input.SolutionYellowInMl,
		SolutionGreenInMl:      input.SolutionGreenInMl,
		SolutionOrangeInMl:     input.SolutionOrangeInMl,
		SolutionBlueInMl:       input.SolutionBlueInMl,
		SolutionPurpleInMl:     input.SolutionPurpleInMl,
		InitialDrainingMl:      input.InitialDrainingMl,
		TotalDrainVolumeMl:     input.TotalDrainVolumeMl,
		LastFillMl:             input.LastFillMl,
		TotalUltrafiltrationMl: input.TotalUltrafiltrationMl,
		DialysateColor:         input.DialysateColor,
		Notes:                  input.Notes,
		FinishedAt:             input.FinishedAt,
	}
	if err := s.repo.CreateAutomatic(ctx, a); err != nil {
		return nil, fmt.Errorf("create automatic dialysis: %w", err)
	}
	return a, nil
}

// UpdateAutomatic rewrites the session recorded on date, moving it to the
// day derived from the new started_at.
func (s *Service) UpdateAutomatic(ctx context.Context, userID string, loc *time.Location, date time.Time, input AutomaticInput) (*AutomaticDialysis, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	a, err := s.repo.GetAutomaticByDate(ctx, userID, normalizeDate(date))
	if err != nil {
		return nil, err
	}

	newDate := automaticDate(input.StartedAt, loc)
	statusID, reportID, err := s.attachDay(ctx, userID, newDate)
	if err != nil {
		return nil, err
	}

	a.DailyHealthStatusID = statusID
	a.DailyIntakesReportID = reportID
	a.Date = newDate
	a.IsCompleted = input.IsCompleted
	a.StartedAt = input.StartedAt
	a.SolutionYellowInMl = input.SolutionYellowInMl
	a.SolutionGreenInMl = input.SolutionGreenInMl
	a.SolutionOrangeInMl = input.SolutionOrangeInMl
	a.SolutionBlueInMl = input.SolutionBlueInMl
	a.SolutionPurpleInMl = input.SolutionPurpleInMl
	a.InitialDrainingMl = input.InitialDrainingMl
	a.TotalDrainVolumeMl = input.TotalDrainVolumeMl
	a.LastFillMl = input.LastFillMl
	a.TotalUltrafiltrationMl = input.TotalUltrafiltrationMl
	a.DialysateColor = input.DialysateColor
	a.Notes = input.Notes
	a.FinishedAt = input.FinishedAt

	if err := s.repo.UpdateAutomatic(ctx, userID, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) DeleteAutomatic(ctx context.Context, userID string, date time.Time) error {
	return s.repo.DeleteAutomaticByDate(ctx, userID, normalizeDate(date))
}

// AutomaticScreen is the cycler home screen. LastSession is the in-progress
// session when one exists, otherwise the most recently started one.
type AutomaticScreen struct {
	InProgress       *AutomaticDialysis             `json:"peritoneal_dialysis_in_progress"`
	LastSession      *AutomaticDialysis             `json:"last_peritoneal_dialysis"`
	LastWeekStatuses []health.DailyHealthStatus     `json:"-"`
	LastWeekReports  []nutrition.DailyIntakesReport `json:"-"`
}

func (s *Service) GetAutomaticScreen(ctx context.Context, userID string, loc *time.Location) (*AutomaticScreen, error) {
	today := timezone.LocalDate(s.now(), loc)
	from := today.AddDate(0, 0, -6)

	statuses, err := s.statuses.GetBetween(ctx, userID, from, today)
	if err != nil {
		return nil, err
	}
	reports, err := s.reports.GetReportsBetween(ctx, userID, from, today)
	if err != nil {
		return nil, err
	}

	inProgress, err := s.repo.NotCompletedAutomatic(ctx, userID)
	if err != nil && !errors.Is(err, ErrAutomaticNotFound) {
		return nil, err
	}

	last := inProgress
	if last == nil {
		last, err = s.repo.LastAutomatic(ctx, userID)
		if err != nil && !errors.Is(err, ErrAutomaticNotFound) {
			return nil, err
		}
	}

	return &AutomaticScreen{
		InProgress:       inProgress,
		LastSession:      last,
		LastWeekStatuses: statuses,
		LastWeekReports:  reports,
	}, nil
}

func (s *Service) GetAutomaticBetween(ctx context.Context, userID string, from, to time.Time) ([]AutomaticDialysis, error) {
	if from.After(to) {
		return nil, validationErrorf("from %s is after to %s", from.Format("2006-01-02"), to.Format("2006-01-02"))
	}
	return s.repo.AutomaticBetween(ctx, userID, normalizeDate(from), normalizeDate(to))
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
