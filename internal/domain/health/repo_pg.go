package health

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

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

const statusCols = `s.id, s.user_id, s.date, s.weight_kg, s.glucose, s.urine_ml, s.swellings,
	s.swelling_difficulty, s.well_feeling, s.appetite, s.shortness_of_breath,
	s.created_at, s.updated_at`

func scanStatus(row pgx.Row) (*DailyHealthStatus, error) {
	var s DailyHealthStatus
	err := row.Scan(&s.ID, &s.UserID, &s.Date, &s.WeightKg, &s.Glucose, &s.UrineMl, &s.Swellings,
		&s.SwellingDifficulty, &s.WellFeeling, &s.Appetite, &s.ShortnessOfBreath,
		&s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrStatusNotFound
	}
	return &s, err
}

const statusColsBare = `id, user_id, date, weight_kg, glucose, urine_ml, swellings,
	swelling_difficulty, well_feeling, appetite, shortness_of_breath, created_at, updated_at`

func (r *repoPG) UpsertStatus(ctx context.Context, s *DailyHealthStatus) error {
	row := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO daily_health_statuses (user_id, date, weight_kg, glucose, urine_ml, swellings,
			swelling_difficulty, well_feeling, appetite, shortness_of_breath)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (user_id, date) DO UPDATE SET
			weight_kg = EXCLUDED.weight_kg,
			glucose = EXCLUDED.glucose,
			urine_ml = EXCLUDED.urine_ml,
			swellings = EXCLUDED.swellings,
			swelling_difficulty = EXCLUDED.swelling_difficulty,
			well_feeling = EXCLUDED.well_feeling,
			appetite = EXCLUDED.appetite,
			shortness_of_breath = EXCLUDED.shortness_of_breath,
			updated_at = NOW()
		RETURNING `+statusColsBare,
		s.UserID, s.Date, s.WeightKg, s.Glucose, s.UrineMl, s.Swellings,
		s.SwellingDifficulty, s.WellFeeling, s.Appetite, s.ShortnessOfBreath)

	saved, err := scanStatus(row)
	if err != nil {
		return err
	}
	children := s.BloodPressures
	pulses := s.Pulses
	*s = *saved
	s.BloodPressures = children
	s.Pulses = pulses
	return nil
}

func (r *repoPG) CreateStatusIfAbsent(ctx context.Context, userID string, date time.Time) (*DailyHealthStatus, error) {
	row := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO daily_health_statuses (user_id, date)
		VALUES ($1, $2)
		ON CONFLICT (user_id, date) DO NOTHING
		RETURNING `+statusColsBare, userID, date)

	s, err := scanStatus(row)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, ErrStatusNotFound) {
		return nil, err
	}
	return r.GetStatus(ctx, userID, date)
}

func (r *repoPG) GetStatus(ctx context.Context, userID string, date time.Time) (*DailyHealthStatus, error) {
	return scanStatus(r.conn(ctx).QueryRow(ctx,
		`SELECT `+statusCols+` FROM daily_health_statuses s WHERE s.user_id = $1 AND s.date = $2`,
		userID, date))
}

func (r *repoPG) GetStatusWithChildren(ctx context.Context, userID string, date time.Time) (*DailyHealthStatus, error) {
	s, err := r.GetStatus(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	statuses := []DailyHealthStatus{*s}
	if err := r.loadChildren(ctx, statuses); err != nil {
		return nil, err
	}
	return &statuses[0], nil
}

func (r *repoPG) StatusesBetween(ctx context.Context, userID string, from, to time.Time) ([]DailyHealthStatus, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+statusCols+` FROM daily_health_statuses s
		 WHERE s.user_id = $1 AND s.date BETWEEN $2 AND $3
		 ORDER BY s.date`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var statuses []DailyHealthStatus
	for rows.Next() {
		s, err := scanStatus(rows)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadChildren(ctx, statuses); err != nil {
		return nil, err
	}
	return statuses, nil
}

func (r *repoPG) loadChildren(ctx context.Context, statuses []DailyHealthStatus) error {
	if len(statuses) == 0 {
		return nil
	}
	ids := make([]int64, len(statuses))
	byID := make(map[int64]*DailyHealthStatus, len(statuses))
	for i := range statuses {
		ids[i] = statuses[i].ID
		byID[statuses[i].ID] = &statuses[i]
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, daily_health_status_id, systolic_blood_pressure, diastolic_blood_pressure,
			measured_at, created_at, updated_at
		FROM blood_pressures
		WHERE daily_health_status_id = ANY($1)
		ORDER BY measured_at`, ids)
	if err != nil {
		return err
	}
	for rows.Next() {
		var bp BloodPressure
		if err := rows.Scan(&bp.ID, &bp.DailyHealthStatusID, &bp.Systolic, &bp.Diastolic,
			&bp.MeasuredAt, &bp.CreatedAt, &bp.UpdatedAt); err != nil {
			rows.Close()
			return err
		}
		s := byID[bp.DailyHealthStatusID]
		s.BloodPressures = append(s.BloodPressures, bp)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.conn(ctx).Query(ctx, `
		SELECT id, daily_health_status_id, pulse, measured_at, created_at, updated_at
		FROM pulses
		WHERE daily_health_status_id = ANY($1)
		ORDER BY measured_at`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var p Pulse
		if err := rows.Scan(&p.ID, &p.DailyHealthStatusID, &p.Pulse,
			&p.MeasuredAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return err
		}
		s := byID[p.DailyHealthStatusID]
		s.Pulses = append(s.Pulses, p)
	}
	return rows.Err()
}

func (r *repoPG) CreateBloodPressure(ctx context.Context, bp *BloodPressure) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO blood_pressures (daily_health_status_id, systolic_blood_pressure,
			diastolic_blood_pressure, measured_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (daily_health_status_id, measured_at) DO UPDATE SET
			systolic_blood_pressure = EXCLUDED.systolic_blood_pressure,
			diastolic_blood_pressure = EXCLUDED.diastolic_blood_pressure,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`,
		bp.DailyHealthStatusID, bp.Systolic, bp.Diastolic, bp.MeasuredAt).
		Scan(&bp.ID, &bp.CreatedAt, &bp.UpdatedAt)
}

func (r *repoPG) UpdateBloodPressure(ctx context.Context, userID string, bp *BloodPressure) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE blood_pressures bp SET
			systolic_blood_pressure = $1,
			diastolic_blood_pressure = $2,
			measured_at = $3,
			updated_at = NOW()
		FROM daily_health_statuses s
		WHERE bp.id = $4 AND bp.daily_health_status_id = s.id AND s.user_id = $5`,
		bp.Systolic, bp.Diastolic, bp.MeasuredAt, bp.ID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBloodPressureNotFound
	}
	return nil
}

func (r *repoPG) DeleteBloodPressure(ctx context.Context, userID string, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		DELETE FROM blood_pressures bp
		USING daily_health_statuses s
		WHERE bp.id = $1 AND bp.daily_health_status_id = s.id AND s.user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBloodPressureNotFound
	}
	return nil
}

func (r *repoPG) CreatePulse(ctx context.Context, p *Pulse) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO pulses (daily_health_status_id, pulse, measured_at)
		VALUES ($1,$2,$3)
		ON CONFLICT (daily_health_status_id, measured_at) DO UPDATE SET
			pulse = EXCLUDED.pulse,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`,
		p.DailyHealthStatusID, p.Pulse, p.MeasuredAt).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *repoPG) UpdatePulse(ctx context.Context, userID string, p *Pulse) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE pulses pl SET
			pulse = $1,
			measured_at = $2,
			updated_at = NOW()
		FROM daily_health_statuses s
		WHERE pl.id = $3 AND pl.daily_health_status_id = s.id AND s.user_id = $4`,
		p.Pulse, p.MeasuredAt, p.ID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPulseNotFound
	}
	return nil
}

func (r *repoPG) DeletePulse(ctx context.Context, userID string, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		DELETE FROM pulses pl
		USING daily_health_statuses s
		WHERE pl.id = $1 AND pl.daily_health_status_id = s.id AND s.user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPulseNotFound
	}
	return nil
}
