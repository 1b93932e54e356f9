package nutrition

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/nephrolog-lt/nephrolog-api/internal/domain/product"
	"github.com/nephrolog-lt/nephrolog-api/internal/domain/profile"
	"github.com/nephrolog-lt/nephrolog-api/internal/platform/db"
	"github.com/nephrolog-lt/nephrolog-api/internal/platform/timezone"
)

const latestIntakesLimit = 3

// SnapshotSource answers which clinical state applied on a given day.
// Satisfied by the profile service.
type SnapshotSource interface {
	NearestSnapshot(ctx context.Context, userID string, date time.Time) (*profile.HistoricalProfile, error)
}

// UrineSource reports the day's measured urine volume, nil when unknown.
// Satisfied by the health service; wired after construction because health
// in turn triggers recalculation here.
type UrineSource interface {
	UrineMl(ctx context.Context, userID string, date time.Time) (*int64, error)
}

// ProductGetter is the slice of the product service intake writes need.
type ProductGetter interface {
	GetByID(ctx context.Context, id int64) (*product.Product, error)
}

type Service struct {
	repo      Repository
	pool      db.TxBeginner
	products  ProductGetter
	snapshots SnapshotSource
	urine     UrineSource
	logger    zerolog.Logger
	now       func() time.Time
}

func NewService(repo Repository, pool db.TxBeginner, products ProductGetter, snapshots SnapshotSource, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		pool:      pool,
		products:  products,
		snapshots: snapshots,
		logger:    logger,
		now:       time.Now,
	}
}

// SetUrineSource wires the health-side urine lookup. Done after
// construction because the two services reference each other.
func (s *Service) SetUrineSource(u UrineSource) { s.urine = u }

// SetClock overrides the service clock, for tests.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// GetOrCreateReport returns the (user, date) report, creating an empty one
// with freshly derived norms when missing. Create and norm derivation run in
// one transaction, so no caller ever observes a report without its norms and
// concurrent callers converge on the same row.
func (s *Service) GetOrCreateReport(ctx context.Context, userID string, date time.Time) (*DailyIntakesReport, error) {
	var rep *DailyIntakesReport
	err := db.WithTx(ctx, s.pool, func(ctx context.Context) error {
		var created bool
		var err error
		rep, created, err = s.repo.CreateReportIfAbsent(ctx, userID, date)
		if err != nil {
			return err
		}
		if created {
			return s.recalculate(ctx, rep)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rep, nil
}

// RecalculateIfExists re-derives the stored norms of the (user, date)
// report. A missing report is not an error: days without a report have
// nothing to refresh.
func (s *Service) RecalculateIfExists(ctx context.Context, userID string, date time.Time) error {
	rep, err := s.repo.GetReport(ctx, userID, date)
	if errors.Is(err, ErrReportNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.recalculate(ctx, rep)
}

// recalculate derives the norm columns from the clinical snapshot nearest
// to the report date. Users without any snapshot keep nil norms. The
// day's measured urine volume extends the liquids allowance.
func (s *Service) recalculate(ctx context.Context, rep *DailyIntakesReport) error {
	snap, err := s.snapshots.NearestSnapshot(ctx, rep.UserID, rep.Date)
	if errors.Is(err, profile.ErrNotFound) {
		s.logger.Debug().Str("user_id", rep.UserID).Time("date", rep.Date).
			Msg("no clinical snapshot, keeping empty norms")
		return nil
	}
	if err != nil {
		return err
	}

	norms := snap.DailyNorms()
	rep.DailyNormPotassiumMg = norms.PotassiumMg
	rep.DailyNormProteinsMg = norms.ProteinsMg
	rep.DailyNormSodiumMg = norms.SodiumMg
	rep.DailyNormPhosphorusMg = norms.PhosphorusMg
	rep.DailyNormEnergyKcal = norms.EnergyKcal
	rep.DailyNormLiquidsG = norms.LiquidsGWithoutUrine

	if rep.DailyNormLiquidsG != nil && *rep.DailyNormLiquidsG > 0 && s.urine != nil {
		urineMl, err := s.urine.UrineMl(ctx, rep.UserID, rep.Date)
		if err != nil {
			return err
		}
		if urineMl != nil && *urineMl > 0 {
			allowance := *rep.DailyNormLiquidsG + *urineMl
			rep.DailyNormLiquidsG = &allowance
		}
	}

	return s.repo.UpdateReportNorms(ctx, rep)
}

// IntakeInput carries the client-editable fields of an intake.
type IntakeInput struct {
	ProductID  int64
	MealType   MealType
	ConsumedAt time.Time
	AmountG    int64
	AmountMl   *int64
}

func (in *IntakeInput) validate() error {
	if in.ProductID <= 0 {
		return validationErrorf("product_id is required")
	}
	if in.AmountG < 1 {
		return validationErrorf("amount_g must be at least 1, got %d", in.AmountG)
	}
	if in.AmountMl != nil && *in.AmountMl < 1 {
		return validationErrorf("amount_ml must be at least 1, got %d", *in.AmountMl)
	}
	if in.MealType == "" {
		in.MealType = MealUnknown
	}
	if !ValidMealType(in.MealType) {
		return validationErrorf("unknown meal type %q", in.MealType)
	}
	if in.ConsumedAt.IsZero() {
		return validationErrorf("consumed_at is required")
	}
	return nil
}

// CreateIntake records a consumption event, bucketing it into the report
// for the consumed_at day in the caller's timezone. Drinks get a derived
// amount_ml when the client omits it.
func (s *Service) CreateIntake(ctx context.Context, userID string, loc *time.Location, input IntakeInput) (*Intake, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	prod, err := s.products.GetByID(ctx, input.ProductID)
	if errors.Is(err, product.ErrNotFound) {
		return nil, validationErrorf("product %d does not exist", input.ProductID)
	}
	if err != nil {
		return nil, err
	}

	date := timezone.LocalDate(input.ConsumedAt, loc)
	rep, err := s.GetOrCreateReport(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	in := &Intake{
		UserID:        userID,
		DailyReportID: rep.ID,
		ProductID:     prod.ID,
		MealType:      input.MealType,
		ConsumedAt:    input.ConsumedAt,
		AmountG:       input.AmountG,
		AmountMl:      derivedAmountMl(input.AmountMl, input.AmountG, prod),
		Product:       prod,
	}
	if err := s.repo.CreateIntake(ctx, in); err != nil {
		return nil, fmt.Errorf("create intake: %w", err)
	}
	return in, nil
}

// UpdateIntake rewrites an intake's editable fields and moves it to the
// right day's report when consumed_at changed buckets.
func (s *Service) UpdateIntake(ctx context.Context, userID string, loc *time.Location, id int64, input IntakeInput) (*Intake, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	in, err := s.repo.GetIntake(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	prod := in.Product
	if input.ProductID != in.ProductID {
		prod, err = s.products.GetByID(ctx, input.ProductID)
		if errors.Is(err, product.ErrNotFound) {
			return nil, validationErrorf("product %d does not exist", input.ProductID)
		}
		if err != nil {
			return nil, err
		}
	}

	date := timezone.LocalDate(input.ConsumedAt, loc)
	rep, err := s.GetOrCreateReport(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	in.DailyReportID = rep.ID
	in.ProductID = prod.ID
	in.Product = prod
	in.MealType = input.MealType
	in.ConsumedAt = input.ConsumedAt
	in.AmountG = input.AmountG
	in.AmountMl = derivedAmountMl(input.AmountMl, input.AmountG, prod)

	if err := s.repo.UpdateIntake(ctx, in); err != nil {
		return nil, err
	}
	return in, nil
}

func (s *Service) DeleteIntake(ctx context.Context, userID string, id int64) error {
	return s.repo.DeleteIntake(ctx, userID, id)
}

// derivedAmountMl backfills the consumed volume from the product density
// when the client did not send one.
func derivedAmountMl(amountMl *int64, amountG int64, prod *product.Product) *int64 {
	if amountMl != nil {
		return amountMl
	}
	if prod.DensityGMl == nil || prod.DensityGMl.IsZero() {
		return nil
	}
	ml := decimal.NewFromInt(amountG).Div(*prod.DensityGMl).RoundBank(0).IntPart()
	return &ml
}

func (s *Service) GetReport(ctx context.Context, userID string, date time.Time) (*DailyIntakesReport, error) {
	return s.repo.GetReportWithIntakes(ctx, userID, date)
}

func (s *Service) GetReportsBetween(ctx context.Context, userID string, from, to time.Time) ([]DailyIntakesReport, error) {
	if from.After(to) {
		return nil, validationErrorf("from %s is after to %s", from.Format("2006-01-02"), to.Format("2006-01-02"))
	}
	return s.repo.ReportsBetween(ctx, userID, from, to)
}

func (s *Service) Summary(ctx context.Context, userID string) (*Summary, error) {
	return s.repo.Summarize(ctx, userID)
}

// LatestNormsAndTotals projects the newest report. Users without any
// report get empty totals and nil norms.
func (s *Service) LatestNormsAndTotals(ctx context.Context, userID string) (DailyNutrientNormsAndTotals, error) {
	rep, err := s.repo.LatestReportWithIntakes(ctx, userID)
	if errors.Is(err, ErrReportNotFound) {
		return DailyNutrientNormsAndTotals{}, nil
	}
	if err != nil {
		return DailyNutrientNormsAndTotals{}, err
	}
	return rep.NormsAndTotals(), nil
}

// Screen is the nutrition home screen payload.
type Screen struct {
	TodayReport         *DailyIntakesReport  `json:"-"`
	LastWeekReports     []DailyIntakesReport `json:"-"`
	CurrentMonthReports []DailyIntakesReport `json:"-"`
	LatestIntakes       []Intake             `json:"latest_intakes"`
	Summary             *Summary             `json:"nutrition_summary_statistics"`
}

// GetScreen assembles the home screen: today's report is created on first
// open, the trailing week and the current month feed the charts.
func (s *Service) GetScreen(ctx context.Context, userID string, loc *time.Location) (*Screen, error) {
	now := s.now().In(loc)
	today := timezone.LocalDate(now, loc)
	weekAgo := today.AddDate(0, 0, -6)
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)

	if _, err := s.GetOrCreateReport(ctx, userID, today); err != nil {
		return nil, err
	}

	lastWeek, err := s.repo.ReportsBetween(ctx, userID, weekAgo, today)
	if err != nil {
		return nil, err
	}

	monthReports, err := s.repo.ReportsBetween(ctx, userID, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}
	monthReports = withIntakesOnly(monthReports)

	latest, err := s.repo.LatestIntakes(ctx, userID, latestIntakesLimit)
	if err != nil {
		return nil, err
	}

	summary, err := s.repo.Summarize(ctx, userID)
	if err != nil {
		return nil, err
	}

	screen := &Screen{
		LastWeekReports:     lastWeek,
		CurrentMonthReports: monthReports,
		LatestIntakes:       latest,
		Summary:             summary,
	}
	for i := range lastWeek {
		if lastWeek[i].Date.Equal(today) {
			screen.TodayReport = &lastWeek[i]
		}
	}
	return screen, nil
}

func withIntakesOnly(reports []DailyIntakesReport) []DailyIntakesReport {
	out := reports[:0]
	for _, rep := range reports {
		if len(rep.Intakes) > 0 {
			out = append(out, rep)
		}
	}
	return out
}

// ValidationError marks user-correctable input problems.
type ValidationError struct{ msg string }

func (e *ValidationError) Error() string { return e.msg }

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}
