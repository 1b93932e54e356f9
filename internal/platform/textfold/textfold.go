// Package textfold normalizes free text into the ASCII search keys used by
// the product catalog: lower case, diacritics folded, anything that is not a
// letter, digit or space stripped.
package textfold

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var asciiFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// ToASCII folds diacritics to their base ASCII letter ("ą" -> "a").
// Characters with no ASCII decomposition are left as-is and are removed
// later by OnlyAlphanumericOrSpaces.
func ToASCII(s string) string {
	folded, _, err := transform.String(asciiFolder, s)
	if err != nil {
		return s
	}
	return folded
}

// OnlyAlphanumericOrSpaces drops every rune that is not an ASCII letter,
// digit or space.
func OnlyAlphanumericOrSpaces(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == ' ':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SearchKey produces the normalized search key for a query or product name:
// trimmed, lower-cased, ASCII-folded and restricted to alphanumerics/spaces.
func SearchKey(s string) string {
	return OnlyAlphanumericOrSpaces(ToASCII(strings.ToLower(strings.TrimSpace(s))))
}
