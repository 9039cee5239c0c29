// Package normalize converts raw spreadsheet cells into typed values.
//
// It handles the messy reality of accounting exports:
//   - a dozen date formats, including ambiguous day/month orderings
//   - currency symbols, thousands separators, and European decimal commas
//   - accounting-style negatives ("(123.45)")
//   - Excel formula prefixes (="value") and stray quotes
//
// All parsers return an ok flag instead of an error: an unparseable cell is
// an expected condition the caller downgrades to a warning, never a failure.
// Money and quantities are exact decimals throughout; binary floating point
// never touches an amount.
package normalize

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// numericRegex validates a cleaned string before decimal parsing.
// Matches integers, decimals, and scientific notation; anything with
// leftover alphabetic characters fails here and stays absent.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// TwoDigitYearPivot defines how 2-digit years are interpreted. Years that
// would land more than this many years in the future are assumed to be in
// the previous century.
var TwoDigitYearPivot = 20

// Date layouts. The ambiguous slash/dash/dot families exist in both
// month-first and day-first orderings; Date tries the preferred ordering
// first, so "03/04/2024" parses deterministically rather than by guess.
var (
	unambiguousLayouts = []string{
		"2006-01-02", "2006/01/02", "2006.01.02",
		"January 2, 2006", "Jan 2, 2006",
		"2 January 2006", "2 Jan 2006",
		"20060102",
	}
	monthFirstLayouts = []string{
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
	}
	dayFirstLayouts = []string{
		"2/1/2006", "02/01/2006", "2-1-2006", "02-01-2006", "2.1.2006", "02.01.2006",
	}
	monthFirstTwoDigit = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
	}
	dayFirstTwoDigit = []string{
		"2/1/06", "02/01/06", "2-1-06", "2.1.06", "02.01.06",
	}
)

// Date parses a cell into a calendar date. dayFirst selects which ordering
// wins for ambiguous numeric dates; the default import policy is
// month-first.
func Date(s string, dayFirst bool) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range unambiguousLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	preferred, fallback := monthFirstLayouts, dayFirstLayouts
	if dayFirst {
		preferred, fallback = dayFirstLayouts, monthFirstLayouts
	}
	for _, layout := range preferred {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	// A date like 13/04/2024 cannot be month-first; only then does the
	// other ordering get a chance.
	for _, layout := range fallback {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	preferred2, fallback2 := monthFirstTwoDigit, dayFirstTwoDigit
	if dayFirst {
		preferred2, fallback2 = dayFirstTwoDigit, monthFirstTwoDigit
	}
	for _, layouts := range [][]string{preferred2, fallback2} {
		for _, layout := range layouts {
			if t, err := time.Parse(layout, s); err == nil {
				return pivotYear(t), true
			}
		}
	}

	return time.Time{}, false
}

// pivotYear applies the 2-digit year pivot: Go parses 00-68 as 2000-2068,
// but a date decades in the future is far more likely to be last century.
func pivotYear(t time.Time) time.Time {
	if t.Year() > time.Now().Year()+TwoDigitYearPivot {
		return t.AddDate(-100, 0, 0)
	}
	return t
}

// currencyReplacer strips the currency symbols seen across the supported
// export formats, plus ordinary and non-breaking spaces.
var currencyReplacer = strings.NewReplacer(
	"$", "", "€", "", "£", "", "¥", "", "₹", "",
	" ", "", " ", "",
)

// Money parses a cell into an exact decimal amount.
//
// Handles currency symbols, US ("1,234.56") and European ("1.234,56")
// separator conventions, and accounting negatives ("(123.45)" → -123.45).
// Returns ok=false for anything non-numeric: absence is distinct from zero,
// and a garbled amount must never silently become 0.
func Money(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, false
	}

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = currencyReplacer.Replace(s)

	s = normalizeSeparators(s)

	if neg {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return decimal.Decimal{}, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// Quantity parses a count/hours cell. Same cleaning rules as Money;
// quantities in accounting exports carry the same separator quirks.
func Quantity(s string) (decimal.Decimal, bool) {
	return Money(s)
}

// normalizeSeparators resolves comma/period usage into a plain decimal
// string. With both present, whichever comes last is the decimal point.
// With commas only, a two-digit final group is a European decimal comma;
// anything else is thousands grouping.
func normalizeSeparators(s string) string {
	lastComma := strings.LastIndexByte(s, ',')
	lastDot := strings.LastIndexByte(s, '.')

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
			// Any remaining commas were malformed grouping; drop them.
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if len(s)-lastComma-1 == 2 && strings.Count(s, ",") == 1 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}

	return s
}

// Text cleans a free-text cell: trims whitespace, strips Excel formula
// prefixes (="...") and surrounding quotes. An empty result means the value
// is absent, so required-field checks can tell "blank" from "short".
func Text(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) > 2 {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)

	return strings.TrimSpace(s)
}
