package product

import (
	"context"

	"github.com/rs/zerolog"
)

// SearchLimit is how many ranked products a search returns at most.
const SearchLimit = 30

type SearchParams struct {
	Query             string
	ExcludeProductIDs []int64
	MealType          string
	Submit            *bool
}

type Service struct {
	repo   Repository
	region Region
	logger zerolog.Logger
}

func NewService(repo Repository, region Region, logger zerolog.Logger) *Service {
	return &Service{repo: repo, region: region, logger: logger}
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

// Search runs the ranked catalog search for the user. Every search with a
// non-empty raw query is logged; a failed log write never fails the search.
func (s *Service) Search(ctx context.Context, userID string, params SearchParams) ([]RankedProduct, error) {
	q := ParseQuery(params.Query)

	candidates, err := s.repo.SearchCandidates(ctx, userID, s.region, q, params.ExcludeProductIDs)
	if err != nil {
		return nil, err
	}

	Rank(candidates, q)
	if len(candidates) > SearchLimit {
		candidates = candidates[:SearchLimit]
	}

	if q.OriginalQuery != "" {
		log := NewSearchLog(userID, q.OriginalQuery, candidates, params.Submit,
			len(params.ExcludeProductIDs), params.MealType)
		if err := s.repo.InsertSearchLog(ctx, log); err != nil {
			s.logger.Warn().Err(err).Str("query", log.Query).Msg("failed to record product search")
		}
	}

	return candidates, nil
}
