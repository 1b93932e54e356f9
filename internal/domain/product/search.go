package product

import (
	"sort"
	"strings"
	"time"

	"github.com/nephrolog-lt/nephrolog-api/internal/platform/textfold"
)

// RankedProduct is a catalog entry together with the per-user annotations
// the ranking chain orders by.
type RankedProduct struct {
	Product

	// Popularity is the lifetime intake count across all users.
	Popularity int64 `db:"popularity" json:"-"`
	// LastConsumedAt is this user's most recent intake of the product,
	// nil when never consumed.
	LastConsumedAt *time.Time `db:"last_consumed_at" json:"-"`
}

// Query is a parsed search query. OriginalQuery keeps the raw (trimmed,
// lowercased) user input for name prefix matching; Words are the normalized
// tokens used against the search key.
type Query struct {
	OriginalQuery string
	Normalized    string
	Words         []string
}

func ParseQuery(raw string) Query {
	original := strings.ToLower(strings.TrimSpace(raw))
	normalized := textfold.SearchKey(original)

	q := Query{OriginalQuery: original, Normalized: normalized}
	if normalized != "" {
		q.Words = strings.Split(normalized, " ")
	}
	return q
}

func (q Query) IsEmpty() bool { return q.Normalized == "" }

// Rank orders candidates in place. For an empty query the order is the
// user's recency, then global popularity; otherwise three relevance signals
// take precedence:
//
//  1. raw name starts with the original query (case-insensitive)
//  2. raw name contains the original query
//  3. search key starts with the first normalized word
//  4. user's latest consumption, most recent first, never-consumed last
//  5. popularity
//  6. id, newest first
func Rank(products []RankedProduct, q Query) {
	var firstWord string
	if len(q.Words) > 0 {
		firstWord = q.Words[0]
	}

	sort.SliceStable(products, func(i, j int) bool {
		a, b := &products[i], &products[j]

		if !q.IsEmpty() {
			if r := compareBool(a.startsWithOriginal(q), b.startsWithOriginal(q)); r != 0 {
				return r > 0
			}
			if r := compareBool(a.containsOriginal(q), b.containsOriginal(q)); r != 0 {
				return r > 0
			}
			if r := compareBool(a.startsWithWord(firstWord), b.startsWithWord(firstWord)); r != 0 {
				return r > 0
			}
		}
		if r := compareLastConsumed(a.LastConsumedAt, b.LastConsumedAt); r != 0 {
			return r > 0
		}
		if a.Popularity != b.Popularity {
			return a.Popularity > b.Popularity
		}
		return a.ID > b.ID
	})
}

func (p *RankedProduct) startsWithOriginal(q Query) bool {
	return strings.HasPrefix(strings.ToLower(p.Name), q.OriginalQuery)
}

func (p *RankedProduct) containsOriginal(q Query) bool {
	return strings.Contains(strings.ToLower(p.Name), q.OriginalQuery)
}

func (p *RankedProduct) startsWithWord(firstWord string) bool {
	return strings.HasPrefix(p.NameSearch, firstWord)
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	default:
		return -1
	}
}

// compareLastConsumed orders recent timestamps first and nils last.
func compareLastConsumed(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	case a.After(*b):
		return 1
	case b.After(*a):
		return -1
	default:
		return 0
	}
}
