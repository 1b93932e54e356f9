package product

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("product not found")

type Repository interface {
	GetByID(ctx context.Context, id int64) (*Product, error)

	// SearchCandidates returns region products whose search key contains
	// every query word, annotated with popularity and the user's last
	// intake, pre-ordered by the same chain Rank applies so the row cap
	// never evicts a product Rank would place first. An empty query means
	// no key filtering (the browse path).
	SearchCandidates(ctx context.Context, userID string, region Region, q Query, excludeIDs []int64) ([]RankedProduct, error)

	InsertSearchLog(ctx context.Context, log *SearchLog) error
}
