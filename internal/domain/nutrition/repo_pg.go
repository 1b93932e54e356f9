package nutrition

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nephrolog-lt/nephrolog-api/internal/domain/product"
	"github.com/nephrolog-lt/nephrolog-api/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const reportCols = `r.id, r.user_id, r.date, r.daily_norm_potassium_mg, r.daily_norm_proteins_mg,
	r.daily_norm_sodium_mg, r.daily_norm_phosphorus_mg, r.daily_norm_energy_kcal,
	r.daily_norm_liquids_g, r.daily_norm_carbohydrates_mg, r.daily_norm_fat_mg,
	r.created_at, r.updated_at`

func scanReport(row pgx.Row) (*DailyIntakesReport, error) {
	var rep DailyIntakesReport
	err := row.Scan(&rep.ID, &rep.UserID, &rep.Date, &rep.DailyNormPotassiumMg, &rep.DailyNormProteinsMg,
		&rep.DailyNormSodiumMg, &rep.DailyNormPhosphorusMg, &rep.DailyNormEnergyKcal,
		&rep.DailyNormLiquidsG, &rep.DailyNormCarbohydratesMg, &rep.DailyNormFatMg,
		&rep.CreatedAt, &rep.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrReportNotFound
	}
	return &rep, err
}

func (r *repoPG) CreateReportIfAbsent(ctx context.Context, userID string, date time.Time) (*DailyIntakesReport, bool, error) {
	row := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO daily_intakes_reports (user_id, date)
		VALUES ($1, $2)
		ON CONFLICT (user_id, date) DO NOTHING
		RETURNING `+reportColsBare, userID, date)

	rep, err := scanReport(row)
	if err == nil {
		return rep, true, nil
	}
	if !errors.Is(err, ErrReportNotFound) {
		return nil, false, err
	}

	// Lost the race or the report already existed.
	rep, err = r.GetReport(ctx, userID, date)
	return rep, false, err
}

// reportColsBare is reportCols without the table alias, for RETURNING.
const reportColsBare = `id, user_id, date, daily_norm_potassium_mg, daily_norm_proteins_mg,
	daily_norm_sodium_mg, daily_norm_phosphorus_mg, daily_norm_energy_kcal,
	daily_norm_liquids_g, daily_norm_carbohydrates_mg, daily_norm_fat_mg,
	created_at, updated_at`

func (r *repoPG) GetReport(ctx context.Context, userID string, date time.Time) (*DailyIntakesReport, error) {
	return scanReport(r.conn(ctx).QueryRow(ctx,
		`SELECT `+reportCols+` FROM daily_intakes_reports r WHERE r.user_id = $1 AND r.date = $2`,
		userID, date))
}

func (r *repoPG) GetReportWithIntakes(ctx context.Context, userID string, date time.Time) (*DailyIntakesReport, error) {
	rep, err := r.GetReport(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	reports := []DailyIntakesReport{*rep}
	if err := r.loadIntakes(ctx, reports); err != nil {
		return nil, err
	}
	return &reports[0], nil
}

func (r *repoPG) ReportsBetween(ctx context.Context, userID string, from, to time.Time) ([]DailyIntakesReport, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+reportCols+` FROM daily_intakes_reports r
		 WHERE r.user_id = $1 AND r.date BETWEEN $2 AND $3
		 ORDER BY r.date`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []DailyIntakesReport
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *rep)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadIntakes(ctx, reports); err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *repoPG) LatestReportWithIntakes(ctx context.Context, userID string) (*DailyIntakesReport, error) {
	rep, err := scanReport(r.conn(ctx).QueryRow(ctx,
		`SELECT `+reportCols+` FROM daily_intakes_reports r
		 WHERE r.user_id = $1 ORDER BY r.date DESC LIMIT 1`, userID))
	if err != nil {
		return nil, err
	}
	reports := []DailyIntakesReport{*rep}
	if err := r.loadIntakes(ctx, reports); err != nil {
		return nil, err
	}
	return &reports[0], nil
}

func (r *repoPG) UpdateReportNorms(ctx context.Context, rep *DailyIntakesReport) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE daily_intakes_reports SET
			daily_norm_potassium_mg = $1,
			daily_norm_proteins_mg = $2,
			daily_norm_sodium_mg = $3,
			daily_norm_phosphorus_mg = $4,
			daily_norm_energy_kcal = $5,
			daily_norm_liquids_g = $6,
			updated_at = NOW()
		WHERE id = $7`,
		rep.DailyNormPotassiumMg, rep.DailyNormProteinsMg, rep.DailyNormSodiumMg,
		rep.DailyNormPhosphorusMg, rep.DailyNormEnergyKcal, rep.DailyNormLiquidsG, rep.ID)
	return err
}

func (r *repoPG) Summarize(ctx context.Context, userID string) (*Summary, error) {
	var s Summary
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT MIN(r.date), MAX(r.date)
		FROM daily_intakes_reports r
		WHERE r.user_id = $1
		  AND EXISTS (SELECT 1 FROM intakes i WHERE i.daily_report_id = r.id)`,
		userID).Scan(&s.MinReportDate, &s.MaxReportDate)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

const intakeCols = `i.id, i.user_id, i.daily_report_id, i.product_id, i.meal_type,
	i.consumed_at, i.amount_g, i.amount_ml, i.created_at, i.updated_at`

const intakeProductCols = `p.id, p.name, p.name_en, p.synonyms, p.name_search, p.product_kind,
	p.region, p.product_source, p.potassium_mg, p.sodium_mg, p.phosphorus_mg,
	p.proteins_mg, p.energy_kcal, p.liquids_g, p.carbohydrates_mg, p.fat_mg,
	p.density_g_ml, p.created_at, p.updated_at`

func scanIntakeWithProduct(row pgx.Row) (*Intake, error) {
	var in Intake
	var p product.Product
	err := row.Scan(&in.ID, &in.UserID, &in.DailyReportID, &in.ProductID, &in.MealType,
		&in.ConsumedAt, &in.AmountG, &in.AmountMl, &in.CreatedAt, &in.UpdatedAt,
		&p.ID, &p.Name, &p.NameEn, &p.Synonyms, &p.NameSearch, &p.Kind,
		&p.Region, &p.Source, &p.PotassiumMg, &p.SodiumMg, &p.PhosphorusMg,
		&p.ProteinsMg, &p.EnergyKcal, &p.LiquidsG, &p.CarbohydratesMg, &p.FatMg,
		&p.DensityGMl, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrIntakeNotFound
	}
	if err != nil {
		return nil, err
	}
	in.Product = &p
	return &in, nil
}

// loadIntakes fills Intakes (with products) for every report in place.
func (r *repoPG) loadIntakes(ctx context.Context, reports []DailyIntakesReport) error {
	if len(reports) == 0 {
		return nil
	}
	ids := make([]int64, len(reports))
	byID := make(map[int64]*DailyIntakesReport, len(reports))
	for idx := range reports {
		ids[idx] = reports[idx].ID
		byID[reports[idx].ID] = &reports[idx]
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+intakeCols+`, `+intakeProductCols+`
		 FROM intakes i
		 JOIN products p ON p.id = i.product_id
		 WHERE i.daily_report_id = ANY($1)
		 ORDER BY i.consumed_at, i.id`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		in, err := scanIntakeWithProduct(rows)
		if err != nil {
			return err
		}
		rep := byID[in.DailyReportID]
		rep.Intakes = append(rep.Intakes, *in)
	}
	return rows.Err()
}

func (r *repoPG) CreateIntake(ctx context.Context, in *Intake) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO intakes (user_id, daily_report_id, product_id, meal_type, consumed_at, amount_g, amount_ml)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, created_at, updated_at`,
		in.UserID, in.DailyReportID, in.ProductID, in.MealType, in.ConsumedAt, in.AmountG, in.AmountMl).
		Scan(&in.ID, &in.CreatedAt, &in.UpdatedAt)
}

func (r *repoPG) GetIntake(ctx context.Context, userID string, id int64) (*Intake, error) {
	return scanIntakeWithProduct(r.conn(ctx).QueryRow(ctx,
		`SELECT `+intakeCols+`, `+intakeProductCols+`
		 FROM intakes i
		 JOIN products p ON p.id = i.product_id
		 WHERE i.id = $1 AND i.user_id = $2`, id, userID))
}

func (r *repoPG) UpdateIntake(ctx context.Context, in *Intake) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE intakes SET
			daily_report_id = $1,
			product_id = $2,
			meal_type = $3,
			consumed_at = $4,
			amount_g = $5,
			amount_ml = $6,
			updated_at = NOW()
		WHERE id = $7 AND user_id = $8`,
		in.DailyReportID, in.ProductID, in.MealType, in.ConsumedAt, in.AmountG, in.AmountMl,
		in.ID, in.UserID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrIntakeNotFound
	}
	return nil
}

func (r *repoPG) DeleteIntake(ctx context.Context, userID string, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM intakes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrIntakeNotFound
	}
	return nil
}

func (r *repoPG) LatestIntakes(ctx context.Context, userID string, limit int) ([]Intake, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+intakeCols+`, `+intakeProductCols+`
		 FROM intakes i
		 JOIN products p ON p.id = i.product_id
		 WHERE i.user_id = $1
		 ORDER BY i.consumed_at DESC
		 LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var intakes []Intake
	for rows.Next() {
		in, err := scanIntakeWithProduct(rows)
		if err != nil {
			return nil, err
		}
		intakes = append(intakes, *in)
	}
	return intakes, rows.Err()
}
