package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nephrolog-lt/nephrolog-api/internal/platform/db"
)

// candidateLimit caps how many filtered rows are pulled for in-process
// ranking. The SQL pre-orders by the same chain Rank sorts by, so the cap
// only sheds rows that lose every tie-break.
const candidateLimit = 500

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

const productCols = `p.id, p.name, p.name_en, p.synonyms, p.name_search, p.product_kind,
	p.region, p.product_source, p.potassium_mg, p.sodium_mg, p.phosphorus_mg,
	p.proteins_mg, p.energy_kcal, p.liquids_g, p.carbohydrates_mg, p.fat_mg,
	p.density_g_ml, p.created_at, p.updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.NameEn, &p.Synonyms, &p.NameSearch, &p.Kind,
		&p.Region, &p.Source, &p.PotassiumMg, &p.SodiumMg, &p.PhosphorusMg,
		&p.ProteinsMg, &p.EnergyKcal, &p.LiquidsG, &p.CarbohydratesMg, &p.FatMg,
		&p.DensityGMl, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &p, err
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Product, error) {
	return scanProduct(r.conn(ctx).QueryRow(ctx,
		`SELECT `+productCols+` FROM products p WHERE p.id = $1`, id))
}

// searchCandidatesSQL builds the candidate query. The ORDER BY mirrors the
// Rank chain signal for signal so the row cap can never evict a product the
// in-process sort would place ahead of a kept one.
func searchCandidatesSQL(userID string, region Region, q Query, excludeIDs []int64) (string, []interface{}) {
	var sb strings.Builder
	args := []interface{}{userID, region}

	sb.WriteString(`SELECT ` + productCols + `,
		(SELECT COUNT(*) FROM intakes i WHERE i.product_id = p.id) AS popularity,
		(SELECT MAX(i.consumed_at) FROM intakes i WHERE i.product_id = p.id AND i.user_id = $1) AS last_consumed_at
	FROM products p
	WHERE p.region = $2`)

	for _, word := range q.Words {
		args = append(args, word)
		fmt.Fprintf(&sb, ` AND p.name_search LIKE '%%' || $%d || '%%'`, len(args))
	}
	if len(excludeIDs) > 0 {
		args = append(args, excludeIDs)
		fmt.Fprintf(&sb, ` AND NOT (p.id = ANY($%d))`, len(args))
	}

	sb.WriteString(` ORDER BY`)
	if !q.IsEmpty() {
		// POSITION sidesteps LIKE metacharacters in the raw query.
		args = append(args, q.OriginalQuery)
		fmt.Fprintf(&sb, ` POSITION($%d IN LOWER(p.name)) = 1 DESC,
			POSITION($%d IN LOWER(p.name)) > 0 DESC,`, len(args), len(args))
		args = append(args, q.Words[0])
		fmt.Fprintf(&sb, ` POSITION($%d IN p.name_search) = 1 DESC,`, len(args))
	}
	fmt.Fprintf(&sb, ` last_consumed_at DESC NULLS LAST, popularity DESC, p.id DESC LIMIT %d`, candidateLimit)

	return sb.String(), args
}

func (r *repoPG) SearchCandidates(ctx context.Context, userID string, region Region, q Query, excludeIDs []int64) ([]RankedProduct, error) {
	sql, args := searchCandidatesSQL(userID, region, q, excludeIDs)

	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []RankedProduct
	for rows.Next() {
		var rp RankedProduct
		err := rows.Scan(&rp.ID, &rp.Name, &rp.NameEn, &rp.Synonyms, &rp.NameSearch, &rp.Kind,
			&rp.Region, &rp.Source, &rp.PotassiumMg, &rp.SodiumMg, &rp.PhosphorusMg,
			&rp.ProteinsMg, &rp.EnergyKcal, &rp.LiquidsG, &rp.CarbohydratesMg, &rp.FatMg,
			&rp.DensityGMl, &rp.CreatedAt, &rp.UpdatedAt,
			&rp.Popularity, &rp.LastConsumedAt)
		if err != nil {
			return nil, err
		}
		products = append(products, rp)
	}
	return products, rows.Err()
}

func (r *repoPG) InsertSearchLog(ctx context.Context, log *SearchLog) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO product_search_logs (user_id, query, product1_id, product2_id, product3_id,
			results_count, meal_type, submit, excluded_products_count)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		log.UserID, log.Query, log.Product1ID, log.Product2ID, log.Product3ID,
		log.ResultsCount, log.MealType, log.Submit, log.ExcludedProductsCount)
	return err
}
