// Package normalize maps arbitrary, locale-specific sheet headers to
// canonical field names. Resolution is deterministic: alias priority
// first, then leftmost matching column.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Header normalizes header text for comparison: trimmed, lower-cased,
// diacritics stripped ("Impressões" and "impressoes" compare equal).
func Header(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(stripper, s); err == nil {
		s = out
	}
	return s
}

// Key normalizes a grouping key (publisher name) the same way rows are
// grouped in the rollups: lower-cased and trimmed only.
func Key(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// emptyLike lists cell values that count as absent. Sheets exported from
// pandas-backed tooling leave literal "nan" cells behind.
var emptyLike = map[string]struct{}{
	"":     {},
	"nan":  {},
	"none": {},
	"null": {},
	"-":    {},
	"--":   {},
}

// IsEmptyCell reports whether a cell value carries no usable data.
func IsEmptyCell(s string) bool {
	_, ok := emptyLike[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// Matches reports whether a normalized header matches an already
// normalized alias, either exactly or by containment.
func Matches(normalizedHeader, normalizedAlias string) bool {
	if normalizedHeader == "" || normalizedAlias == "" {
		return false
	}
	return normalizedHeader == normalizedAlias || strings.Contains(normalizedHeader, normalizedAlias)
}
