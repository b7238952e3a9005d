// Package parse converts locale-specific cell text into typed values.
// Every parser here is total: malformed input degrades to the zero value
// and never fails a batch.
package parse

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"mediapulse/internal/normalize"
)

var currencyCleaner = strings.NewReplacer("R$", "", "US$", "", "$", "", "€", "", " ", "", " ", "")

// Currency parses a monetary cell into an exact decimal. The separator
// rules follow the Brazilian exports this engine ingests:
//   - both "." and "," present: "." is a thousands separator, "," the
//     decimal point ("R$ 1.234,56" -> 1234.56)
//   - only "," present: decimal point when at most two digits follow it,
//     thousands separator otherwise ("1234,5" -> 1234.5, "1,234" -> 1234)
//   - only "." present: thousands separator when repeated or followed by
//     exactly three digits ("200.000" -> 200000), decimal point otherwise
//     ("99.9" -> 99.9)
//
// Returns zero on any parse failure.
func Currency(s string) decimal.Decimal {
	s = strings.TrimSpace(currencyCleaner.Replace(s))
	if normalize.IsEmptyCell(s) {
		return decimal.Zero
	}
	s = normalizeSeparators(s)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FormatCurrency renders a decimal back into the source locale format
// ("R$ 1.234,56"). Round-trips with Currency for two-decimal values.
func FormatCurrency(d decimal.Decimal) string {
	fixed := d.StringFixed(2)
	neg := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	parts := strings.SplitN(fixed, ".", 2)
	intPart, fracPart := parts[0], parts[1]

	var grouped []string
	for len(intPart) > 3 {
		grouped = append([]string{intPart[len(intPart)-3:]}, grouped...)
		intPart = intPart[:len(intPart)-3]
	}
	grouped = append([]string{intPart}, grouped...)

	out := "R$ " + strings.Join(grouped, ".") + "," + fracPart
	if neg {
		out = "-" + out
	}
	return out
}

// Integer parses an integer cell, stripping thousands separators and
// truncating through float conversion ("1.234" -> 1234, "1000.0" -> 1000).
// Returns 0 on failure.
func Integer(s string) int64 {
	s = strings.TrimSpace(currencyCleaner.Replace(s))
	if normalize.IsEmptyCell(s) {
		return 0
	}
	s = normalizeSeparators(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int64(f)
}

// Percent parses a percentage cell: strips "%", comma decimal becomes
// dot decimal. Ratios never carry thousands separators, so the
// grouping heuristics of Currency and Integer do not apply here and
// "1,234" reads as 1.234. Returns 0 on failure.
func Percent(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, "%", ""))
	if normalize.IsEmptyCell(s) {
		return 0
	}
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// normalizeSeparators rewrites a numeric string into Go float syntax,
// disambiguating "." and "," per the locale rules above.
func normalizeSeparators(s string) string {
	hasDot := strings.Contains(s, ".")
	hasComma := strings.Contains(s, ",")

	switch {
	case hasDot && hasComma:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case hasComma:
		idx := strings.LastIndex(s, ",")
		if len(s)-idx-1 <= 2 {
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasDot:
		idx := strings.LastIndex(s, ".")
		if strings.Count(s, ".") > 1 || len(s)-idx-1 == 3 {
			s = strings.ReplaceAll(s, ".", "")
		}
	}
	return s
}

// dateFormats is attempted in order. Day-first formats rank above
// month-first: the sheets this engine reads are predominantly Brazilian.
var dateFormats = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"02-01-2006",
	"01/02/2006",
	"01-02-2006",
}

// Date parses a date cell against the fixed format list, then falls back
// to a manual split that uses the 4-digit component to identify the
// year. Returns ok=false when nothing matches; the caller skips the row
// rather than failing the batch.
func Date(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if normalize.IsEmptyCell(s) {
		return time.Time{}, false
	}

	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return dateFromParts(s)
}

// dateFromParts reconstructs DD/MM/YYYY from a "/" or "-" separated
// string whose 4-digit component marks the year.
func dateFromParts(s string) (time.Time, bool) {
	sep := "/"
	if !strings.Contains(s, sep) {
		sep = "-"
	}
	parts := strings.Split(s, sep)
	if len(parts) != 3 {
		return time.Time{}, false
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	var day, month, year string
	switch {
	case len(parts[0]) == 4:
		year, month, day = parts[0], parts[1], parts[2]
	case len(parts[2]) == 4:
		day, month, year = parts[0], parts[1], parts[2]
	default:
		return time.Time{}, false
	}

	t, err := time.Parse("02/01/2006", pad2(day)+"/"+pad2(month)+"/"+year)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
