package nutrition

import (
	"context"
	"errors"
	"time"
)

var (
	ErrReportNotFound = errors.New("daily intakes report not found")
	ErrIntakeNotFound = errors.New("intake not found")
)

// Summary is the lifetime span of days the user has logged food on.
type Summary struct {
	MinReportDate *time.Time `json:"min_report_date"`
	MaxReportDate *time.Time `json:"max_report_date"`
}

type Repository interface {
	// CreateReportIfAbsent inserts an empty (user, date) report unless one
	// exists; the returned flag reports whether a row was created. Safe
	// under concurrent callers.
	CreateReportIfAbsent(ctx context.Context, userID string, date time.Time) (*DailyIntakesReport, bool, error)
	GetReport(ctx context.Context, userID string, date time.Time) (*DailyIntakesReport, error)
	GetReportWithIntakes(ctx context.Context, userID string, date time.Time) (*DailyIntakesReport, error)
	// ReportsBetween returns reports in [from, to] ordered by date, with
	// intakes and products loaded.
	ReportsBetween(ctx context.Context, userID string, from, to time.Time) ([]DailyIntakesReport, error)
	// LatestReportWithIntakes returns the newest report by date.
	LatestReportWithIntakes(ctx context.Context, userID string) (*DailyIntakesReport, error)
	// UpdateReportNorms persists the recalculated norm columns only.
	UpdateReportNorms(ctx context.Context, r *DailyIntakesReport) error
	// Summarize aggregates min/max date over reports having at least one
	// intake.
	Summarize(ctx context.Context, userID string) (*Summary, error)

	CreateIntake(ctx context.Context, in *Intake) error
	GetIntake(ctx context.Context, userID string, id int64) (*Intake, error)
	UpdateIntake(ctx context.Context, in *Intake) error
	DeleteIntake(ctx context.Context, userID string, id int64) error
	// LatestIntakes returns the user's most recent intakes with products.
	LatestIntakes(ctx context.Context, userID string, limit int) ([]Intake, error)
}
