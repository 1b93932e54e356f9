package metrics

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Reporter periodically gauges product usage counts. It lives entirely
// outside the request path; a failed cycle is logged and the next tick
// tries again.
type Reporter struct {
	pool     *pgxpool.Pool
	sink     Sink
	logger   zerolog.Logger
	interval time.Duration
}

func NewReporter(pool *pgxpool.Pool, sink Sink, logger zerolog.Logger, interval time.Duration) *Reporter {
	return &Reporter{pool: pool, sink: sink, logger: logger, interval: interval}
}

// Run blocks until ctx is cancelled, emitting one report per interval.
func (r *Reporter) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.report(ctx); err != nil {
				r.logger.Warn().Err(err).Msg("metrics report failed")
			}
		}
	}
}

func (r *Reporter) report(ctx context.Context) error {
	gauges := []struct {
		name string
		sql  string
		tags []string
	}{
		{name: "product.users.profiles", sql: `SELECT COUNT(*) FROM user_profiles`},
		{name: "product.users.profiles.historical", sql: `SELECT COUNT(*) FROM historical_user_profiles`},
		{name: "product.intakes.reports.total", sql: `SELECT COUNT(DISTINCT daily_report_id) FROM intakes`},
		{name: "product.health_status.total", sql: `SELECT COUNT(*) FROM daily_health_statuses`},
		{name: "product.health_status.urine_ml", sql: `SELECT COUNT(*) FROM daily_health_statuses WHERE urine_ml IS NOT NULL`},
		{name: "product.intakes.total", sql: `SELECT COUNT(*) FROM intakes i JOIN products p ON p.id = i.product_id WHERE p.product_kind = 'Food'`, tags: []string{"kind:Food"}},
		{name: "product.intakes.total", sql: `SELECT COUNT(*) FROM intakes i JOIN products p ON p.id = i.product_id WHERE p.product_kind = 'Drink'`, tags: []string{"kind:Drink"}},
		{name: "product.products.total", sql: `SELECT COUNT(*) FROM products WHERE product_kind = 'Food'`, tags: []string{"kind:Food"}},
		{name: "product.products.total", sql: `SELECT COUNT(*) FROM products WHERE product_kind = 'Drink'`, tags: []string{"kind:Drink"}},
		{name: "product.searches.total", sql: `SELECT COUNT(*) FROM product_search_logs`},
	}

	for _, g := range gauges {
		var count int64
		if err := r.pool.QueryRow(ctx, g.sql).Scan(&count); err != nil {
			return err
		}
		r.sink.Gauge(g.name, float64(count), g.tags...)
	}
	return nil
}
