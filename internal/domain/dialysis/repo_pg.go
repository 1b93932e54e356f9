package dialysis

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

const manualCols = `m.id, m.daily_health_status_id, m.daily_intakes_report_id, m.is_completed,
	m.started_at, m.dialysis_solution, m.solution_in_ml, m.solution_out_ml,
	m.dialysate_color, m.notes, m.created_at, m.updated_at`

func scanManual(row pgx.Row) (*ManualDialysis, error) {
	var m ManualDialysis
	err := row.Scan(&m.ID, &m.DailyHealthStatusID, &m.DailyIntakesReportID, &m.IsCompleted,
		&m.StartedAt, &m.DialysisSolution, &m.SolutionInMl, &m.SolutionOutMl,
		&m.DialysateColor, &m.Notes, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrManualNotFound
	}
	return &m, err
}

func (r *repoPG) CreateManual(ctx context.Context, m *ManualDialysis) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO manual_peritoneal_dialysis (daily_health_status_id, daily_intakes_report_id,
			is_completed, started_at, dialysis_solution, solution_in_ml, solution_out_ml,
			dialysate_color, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id, created_at, updated_at`,
		m.DailyHealthStatusID, m.DailyIntakesReportID, m.IsCompleted, m.StartedAt,
		m.DialysisSolution, m.SolutionInMl, m.SolutionOutMl, m.DialysateColor, m.Notes).
		Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
}

func (r *repoPG) GetManual(ctx context.Context, userID string, id int64) (*ManualDialysis, error) {
	return scanManual(r.conn(ctx).QueryRow(ctx, `
		SELECT `+manualCols+`
		FROM manual_peritoneal_dialysis m
		JOIN daily_health_statuses s ON s.id = m.daily_health_status_id
		WHERE m.id = $1 AND s.user_id = $2`, id, userID))
}

func (r *repoPG) UpdateManual(ctx context.Context, userID string, m *ManualDialysis) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE manual_peritoneal_dialysis m SET
			daily_health_status_id = $1,
			daily_intakes_report_id = $2,
			is_completed = $3,
			started_at = $4,
			dialysis_solution = $5,
			solution_in_ml = $6,
			solution_out_ml = $7,
			dialysate_color = $8,
			notes = $9,
			updated_at = NOW()
		FROM daily_health_statuses s
		WHERE m.id = $10 AND m.daily_health_status_id = s.id AND s.user_id = $11`,
		m.DailyHealthStatusID, m.DailyIntakesReportID, m.IsCompleted, m.StartedAt,
		m.DialysisSolution, m.SolutionInMl, m.SolutionOutMl, m.DialysateColor, m.Notes,
		m.ID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrManualNotFound
	}
	return nil
}

func (r *repoPG) DeleteManual(ctx context.Context, userID string, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		DELETE FROM manual_peritoneal_dialysis m
		USING daily_health_statuses s
		WHERE m.id = $1 AND m.daily_health_status_id = s.id AND s.user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrManualNotFound
	}
	return nil
}

func (r *repoPG) LatestManual(ctx context.Context, userID string, limit int) ([]ManualDialysis, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+manualCols+`
		FROM manual_peritoneal_dialysis m
		JOIN daily_health_statuses s ON s.id = m.daily_health_status_id
		WHERE s.user_id = $1
		ORDER BY m.is_completed, m.started_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []ManualDialysis
	for rows.Next() {
		m, err := scanManual(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *m)
	}
	return sessions, rows.Err()
}

func (r *repoPG) NotCompletedManual(ctx context.Context, userID string) (*ManualDialysis, error) {
	return scanManual(r.conn(ctx).QueryRow(ctx, `
		SELECT `+manualCols+`
		FROM manual_peritoneal_dialysis m
		JOIN daily_health_statuses s ON s.id = m.daily_health_status_id
		WHERE s.user_id = $1 AND NOT m.is_completed
		ORDER BY m.started_at DESC
		LIMIT 1`, userID))
}

const automaticCols = `a.id, a.daily_health_status_id, a.daily_intakes_report_id, s.date,
	a.is_completed, a.started_at,
	a.solution_yellow_in_ml, a.solution_green_in_ml, a.solution_orange_in_ml,
	a.solution_blue_in_ml, a.solution_purple_in_ml,
	a.initial_draining_ml, a.total_drain_volume_ml, a.last_fill_ml, a.total_ultrafiltration_ml,
	a.dialysate_color, a.notes, a.finished_at, a.created_at, a.updated_at`

func scanAutomatic(row pgx.Row) (*AutomaticDialysis, error) {
	var a AutomaticDialysis
	err := row.Scan(&a.ID, &a.DailyHealthStatusID, &a.DailyIntakesReportID, &a.Date,
		&a.IsCompleted, &a.StartedAt,
		&a.SolutionYellowInMl, &a.SolutionGreenInMl, &a.SolutionOrangeInMl,
		&a.SolutionBlueInMl, &a.SolutionPurpleInMl,
		&a.InitialDrainingMl, &a.TotalDrainVolumeMl, &a.LastFillMl, &a.TotalUltrafiltrationMl,
		&a.DialysateColor, &a.Notes, &a.FinishedAt, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAutomaticNotFound
	}
	return &a, err
}

func (r *repoPG) CreateAutomatic(ctx context.Context, a *AutomaticDialysis) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO automatic_peritoneal_dialysis (daily_health_status_id, daily_intakes_report_id,
			is_completed, started_at,
			solution_yellow_in_ml, solution_green_in_ml, solution_orange_in_ml,
			solution_blue_in_ml, solution_purple_in_ml,
			initial_draining_ml, total_drain_volume_ml, last_fill_ml, total_ultrafiltration_ml,
			dialysate_color, notes, finished_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		RETURNING id, created_at, updated_at`,
		a.DailyHealthStatusID, a.DailyIntakesReportID, a.IsCompleted, a.StartedAt,
		a.SolutionYellowInMl, a.SolutionGreenInMl, a.SolutionOrangeInMl,
		a.SolutionBlueInMl, a.SolutionPurpleInMl,
		a.InitialDrainingMl, a.TotalDrainVolumeMl, a.LastFillMl, a.TotalUltrafiltrationMl,
		a.DialysateColor, a.Notes, a.FinishedAt).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (r *repoPG) GetAutomaticByDate(ctx context.Context, userID string, date time.Time) (*AutomaticDialysis, error) {
	return scanAutomatic(r.conn(ctx).QueryRow(ctx, `
		SELECT `+automaticCols+`
		FROM automatic_peritoneal_dialysis a
		JOIN daily_health_statuses s ON s.id = a.daily_health_status_id
		WHERE s.user_id = $1 AND s.date = $2`, userID, date))
}

func (r *repoPG) UpdateAutomatic(ctx context.Context, userID string, a *AutomaticDialysis) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE automatic_peritoneal_dialysis a SET
			daily_health_status_id = $1,
			daily_intakes_report_id = $2,
			is_completed = $3,
			started_at = $4,
			solution_yellow_in_ml = $5,
			solution_green_in_ml = $6,
			solution_orange_in_ml = $7,
			solution_blue_in_ml = $8,
			solution_purple_in_ml = $9,
			initial_draining_ml = $10,
			total_drain_volume_ml = $11,
			last_fill_ml = $12,
			total_ultrafiltration_ml = $13,
			dialysate_color = $14,
			notes = $15,
			finished_at = $16,
			updated_at = NOW()
		FROM daily_health_statuses s
		WHERE a.id = $17 AND a.daily_health_status_id = s.id AND s.user_id = $18`,
		a.DailyHealthStatusID, a.DailyIntakesReportID, a.IsCompleted, a.StartedAt,
		a.SolutionYellowInMl, a.SolutionGreenInMl, a.SolutionOrangeInMl,
		a.SolutionBlueInMl, a.SolutionPurpleInMl,
		a.InitialDrainingMl, a.TotalDrainVolumeMl, a.LastFillMl, a.TotalUltrafiltrationMl,
		a.DialysateColor, a.Notes, a.FinishedAt,
		a.ID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAutomaticNotFound
	}
	return nil
}

func (r *repoPG) DeleteAutomaticByDate(ctx context.Context, userID string, date time.Time) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		DELETE FROM automatic_peritoneal_dialysis a
		USING daily_health_statuses s
		WHERE a.daily_health_status_id = s.id AND s.user_id = $1 AND s.date = $2`, userID, date)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAutomaticNotFound
	}
	return nil
}

func (r *repoPG) NotCompletedAutomatic(ctx context.Context, userID string) (*AutomaticDialysis, error) {
	return scanAutomatic(r.conn(ctx).QueryRow(ctx, `
		SELECT `+automaticCols+`
		FROM automatic_peritoneal_dialysis a
		JOIN daily_health_statuses s ON s.id = a.daily_health_status_id
		WHERE s.user_id = $1 AND NOT a.is_completed
		ORDER BY a.started_at DESC
		LIMIT 1`, userID))
}

func (r *repoPG) LastAutomatic(ctx context.Context, userID string) (*AutomaticDialysis, error) {
	return scanAutomatic(r.conn(ctx).QueryRow(ctx, `
		SELECT `+automaticCols+`
		FROM automatic_peritoneal_dialysis a
		JOIN daily_health_statuses s ON s.id = a.daily_health_status_id
		WHERE s.user_id = $1
		ORDER BY a.started_at DESC
		LIMIT 1`, userID))
}

func (r *repoPG) AutomaticBetween(ctx context.Context, userID string, from, to time.Time) ([]AutomaticDialysis, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+automaticCols+`
		FROM automatic_peritoneal_dialysis a
		JOIN daily_health_statuses s ON s.id = a.daily_health_status_id
		WHERE s.user_id = $1 AND s.date BETWEEN $2 AND $3
		ORDER BY a.id DESC`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []AutomaticDialysis
	for rows.Next() {
		a, err := scanAutomatic(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *a)
	}
	return sessions, rows.Err()
}
