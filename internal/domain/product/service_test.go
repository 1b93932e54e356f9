package product

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
)

type fakeRepo struct {
	products []RankedProduct

	lastQuery      Query
	lastExcludeIDs []int64

	logs   []*SearchLog
	logErr error
}

func (r *fakeRepo) GetByID(ctx context.Context, id int64) (*Product, error) {
	for i := range r.products {
		if r.products[i].ID == id {
			return &r.products[i].Product, nil
		}
	}
	return nil, ErrNotFound
}

func (r *fakeRepo) SearchCandidates(ctx context.Context, userID string, region Region, q Query, excludeIDs []int64) ([]RankedProduct, error) {
	r.lastQuery = q
	r.lastExcludeIDs = excludeIDs
	out := make([]RankedProduct, len(r.products))
	copy(out, r.products)
	return out, nil
}

func (r *fakeRepo) InsertSearchLog(ctx context.Context, log *SearchLog) error {
	if r.logErr != nil {
		return r.logErr
	}
	r.logs = append(r.logs, log)
	return nil
}

var _ Repository = (*fakeRepo)(nil)

func TestSearchLogsNonEmptyQueries(t *testing.T) {
	repo := &fakeRepo{products: []RankedProduct{rankedProduct(1, "Apple", 0)}}
	svc := NewService(repo, RegionLT, zerolog.Nop())

	submit := false
	_, err := svc.Search(context.Background(), "user-1", SearchParams{
		Query:             " Apple ",
		ExcludeProductIDs: []int64{4, 5},
		MealType:          "Dinner",
		Submit:            &submit,
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if len(repo.logs) != 1 {
		t.Fatalf("logs = %d, want 1", len(repo.logs))
	}
	log := repo.logs[0]
	if log.Query != "apple" {
		t.Errorf("logged query = %q, want %q", log.Query, "apple")
	}
	if log.ExcludedProductsCount != 2 {
		t.Errorf("ExcludedProductsCount = %d, want 2", log.ExcludedProductsCount)
	}
	if log.MealType != "Dinner" {
		t.Errorf("MealType = %q, want Dinner", log.MealType)
	}
	if log.Submit == nil || *log.Submit {
		t.Errorf("Submit = %v, want false", log.Submit)
	}
}

func TestSearchEmptyQuerySkipsLogging(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, RegionLT, zerolog.Nop())

	if _, err := svc.Search(context.Background(), "user-1", SearchParams{Query: "   "}); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(repo.logs) != 0 {
		t.Errorf("logs = %d, want 0", len(repo.logs))
	}
	if !repo.lastQuery.IsEmpty() {
		t.Errorf("query = %+v, want empty for browse path", repo.lastQuery)
	}
}

func TestSearchLogFailureDoesNotFailSearch(t *testing.T) {
	repo := &fakeRepo{
		products: []RankedProduct{rankedProduct(1, "Apple", 0)},
		logErr:   errors.New("log insert failed"),
	}
	svc := NewService(repo, RegionLT, zerolog.Nop())

	results, err := svc.Search(context.Background(), "user-1", SearchParams{Query: "apple"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 {
		t.Errorf("results = %d, want 1", len(results))
	}
}

func TestSearchCapsResults(t *testing.T) {
	repo := &fakeRepo{}
	for i := 1; i <= SearchLimit+10; i++ {
		repo.products = append(repo.products, rankedProduct(int64(i), fmt.Sprintf("Apple %d", i), 0))
	}
	svc := NewService(repo, RegionLT, zerolog.Nop())

	results, err := svc.Search(context.Background(), "user-1", SearchParams{Query: "apple"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != SearchLimit {
		t.Errorf("results = %d, want %d", len(results), SearchLimit)
	}
	if repo.logs[0].ResultsCount != SearchLimit {
		t.Errorf("logged results_count = %d, want %d", repo.logs[0].ResultsCount, SearchLimit)
	}
}
