package profile

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

const profileCols = `id, user_id, gender, height_cm, chronic_kidney_disease_age,
	chronic_kidney_disease_stage, dialysis, diabetes_type, created_at, updated_at`

func scanProfile(row pgx.Row) (*Profile, error) {
	var p Profile
	err := row.Scan(&p.ID, &p.UserID, &p.Gender, &p.HeightCm, &p.ChronicKidneyDiseaseAge,
		&p.ChronicKidneyDiseaseStage, &p.Dialysis, &p.DiabetesType, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &p, err
}

func (r *repoPG) Upsert(ctx context.Context, p *Profile) error {
	row := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO user_profiles (user_id, gender, height_cm, chronic_kidney_disease_age,
			chronic_kidney_disease_stage, dialysis, diabetes_type)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (user_id) DO UPDATE SET
			gender = EXCLUDED.gender,
			height_cm = EXCLUDED.height_cm,
			chronic_kidney_disease_age = EXCLUDED.chronic_kidney_disease_age,
			chronic_kidney_disease_stage = EXCLUDED.chronic_kidney_disease_stage,
			dialysis = EXCLUDED.dialysis,
			diabetes_type = EXCLUDED.diabetes_type,
			updated_at = NOW()
		RETURNING `+profileCols,
		p.UserID, p.Gender, p.HeightCm, p.ChronicKidneyDiseaseAge,
		p.ChronicKidneyDiseaseStage, p.Dialysis, p.DiabetesType)

	saved, err := scanProfile(row)
	if err != nil {
		return err
	}
	*p = *saved
	return nil
}

func (r *repoPG) GetByUserID(ctx context.Context, userID string) (*Profile, error) {
	return scanProfile(r.conn(ctx).QueryRow(ctx,
		`SELECT `+profileCols+` FROM user_profiles WHERE user_id = $1`, userID))
}

const snapshotCols = `id, user_id, date, gender, height_cm, chronic_kidney_disease_age,
	chronic_kidney_disease_stage, dialysis, diabetes_type, created_at, updated_at`

func scanSnapshot(row pgx.Row) (*HistoricalProfile, error) {
	var s HistoricalProfile
	err := row.Scan(&s.ID, &s.UserID, &s.Date, &s.Gender, &s.HeightCm, &s.ChronicKidneyDiseaseAge,
		&s.ChronicKidneyDiseaseStage, &s.Dialysis, &s.DiabetesType, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &s, err
}

func (r *repoPG) UpsertSnapshot(ctx context.Context, s *HistoricalProfile) error {
	row := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO historical_user_profiles (user_id, date, gender, height_cm,
			chronic_kidney_disease_age, chronic_kidney_disease_stage, dialysis, diabetes_type)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (user_id, date) DO UPDATE SET
			gender = EXCLUDED.gender,
			height_cm = EXCLUDED.height_cm,
			chronic_kidney_disease_age = EXCLUDED.chronic_kidney_disease_age,
			chronic_kidney_disease_stage = EXCLUDED.chronic_kidney_disease_stage,
			dialysis = EXCLUDED.dialysis,
			diabetes_type = EXCLUDED.diabetes_type,
			updated_at = NOW()
		RETURNING `+snapshotCols,
		s.UserID, s.Date, s.Gender, s.HeightCm, s.ChronicKidneyDiseaseAge,
		s.ChronicKidneyDiseaseStage, s.Dialysis, s.DiabetesType)

	saved, err := scanSnapshot(row)
	if err != nil {
		return err
	}
	*s = *saved
	return nil
}

func (r *repoPG) SnapshotAtOrBefore(ctx context.Context, userID string, date time.Time) (*HistoricalProfile, error) {
	return scanSnapshot(r.conn(ctx).QueryRow(ctx,
		`SELECT `+snapshotCols+` FROM historical_user_profiles
		 WHERE user_id = $1 AND date <= $2
		 ORDER BY date DESC LIMIT 1`, userID, date))
}

func (r *repoPG) FirstSnapshotAfter(ctx context.Context, userID string, date time.Time) (*HistoricalProfile, error) {
	return scanSnapshot(r.conn(ctx).QueryRow(ctx,
		`SELECT `+snapshotCols+` FROM historical_user_profiles
		 WHERE user_id = $1 AND date > $2
		 ORDER BY date ASC LIMIT 1`, userID, date))
}
