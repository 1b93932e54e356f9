package product

import "time"

const searchLogQueryMaxLen = 32

// SearchLog records one executed product search for relevance tuning. The
// meal type is stored as received so the log survives enum drift in the
// intake model.
type SearchLog struct {
	ID     int64  `db:"id"`
	UserID string `db:"user_id"`
	Query  string `db:"query"`

	Product1ID *int64 `db:"product1_id"`
	Product2ID *int64 `db:"product2_id"`
	Product3ID *int64 `db:"product3_id"`

	ResultsCount          int    `db:"results_count"`
	MealType              string `db:"meal_type"`
	Submit                *bool  `db:"submit"`
	ExcludedProductsCount int    `db:"excluded_products_count"`

	CreatedAt time.Time `db:"created_at"`
}

// NewSearchLog builds a log entry from a ranked result set. The query is
// truncated to the column width and only the top three hits are kept.
func NewSearchLog(userID, query string, results []RankedProduct, submit *bool, excludedCount int, mealType string) *SearchLog {
	if runes := []rune(query); len(runes) > searchLogQueryMaxLen {
		query = string(runes[:searchLogQueryMaxLen])
	}
	if mealType == "" {
		mealType = "Unknown"
	}

	log := &SearchLog{
		UserID:                userID,
		Query:                 query,
		ResultsCount:          len(results),
		MealType:              mealType,
		Submit:                submit,
		ExcludedProductsCount: excludedCount,
	}
	if len(results) >= 1 {
		log.Product1ID = &results[0].ID
	}
	if len(results) >= 2 {
		log.Product2ID = &results[1].ID
	}
	if len(results) >= 3 {
		log.Product3ID = &results[2].ID
	}
	return log
}
