package product

import (
	"strings"
	"testing"
)

// orderedSubstrings asserts each fragment occurs in s in the given order.
func orderedSubstrings(t *testing.T, s string, fragments []string) {
	t.Helper()
	pos := 0
	for _, frag := range fragments {
		idx := strings.Index(s[pos:], frag)
		if idx < 0 {
			t.Fatalf("missing or out of order fragment %q in:\n%s", frag, s)
		}
		pos += idx + len(frag)
	}
}

func TestSearchCandidatesSQLPreOrdersLikeRank(t *testing.T) {
	sql, args := searchCandidatesSQL("user-1", RegionLT, ParseQuery("Obuoliu sultys"), nil)

	orderedSubstrings(t, sql, []string{
		`ORDER BY`,
		`POSITION($5 IN LOWER(p.name)) = 1 DESC`,
		`POSITION($5 IN LOWER(p.name)) > 0 DESC`,
		`POSITION($6 IN p.name_search) = 1 DESC`,
		`last_consumed_at DESC NULLS LAST`,
		`popularity DESC`,
		`p.id DESC`,
		`LIMIT`,
	})

	if len(args) != 6 {
		t.Fatalf("args = %d, want 6", len(args))
	}
	if args[4] != "obuoliu sultys" {
		t.Errorf("prefix arg = %v, want lowered original query", args[4])
	}
	if args[5] != "obuoliu" {
		t.Errorf("search key arg = %v, want first word", args[5])
	}
}

func TestSearchCandidatesSQLBrowsePath(t *testing.T) {
	sql, args := searchCandidatesSQL("user-1", RegionLT, ParseQuery("  "), []int64{7})

	if strings.Contains(sql, "POSITION") {
		t.Errorf("browse query must not carry relevance signals:\n%s", sql)
	}
	orderedSubstrings(t, sql, []string{
		`NOT (p.id = ANY($3))`,
		`ORDER BY last_consumed_at DESC NULLS LAST, popularity DESC, p.id DESC`,
	})
	if len(args) != 3 {
		t.Fatalf("args = %d, want 3", len(args))
	}
}
