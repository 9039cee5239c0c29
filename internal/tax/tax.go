// Package tax supplies fallback US sales tax rates for imported invoices
// that carry a client address but no explicit tax columns.
package tax

import (
	"strings"

	"github.com/shopspring/decimal"
)

// stateRates holds state sales tax rates in percent, 2024 figures. These are
// fallback values only; an invoice's own tax columns always take precedence.
var stateRates = map[string]decimal.Decimal{
	"AL": decimal.NewFromFloat(4.00), "AK": decimal.Zero, "AZ": decimal.NewFromFloat(5.60),
	"AR": decimal.NewFromFloat(6.50), "CA": decimal.NewFromFloat(7.25), "CO": decimal.NewFromFloat(2.90),
	"CT": decimal.NewFromFloat(6.35), "DE": decimal.Zero, "FL": decimal.NewFromFloat(6.00),
	"GA": decimal.NewFromFloat(4.00), "HI": decimal.NewFromFloat(4.00), "ID": decimal.NewFromFloat(6.00),
	"IL": decimal.NewFromFloat(6.25), "IN": decimal.NewFromFloat(7.00), "IA": decimal.NewFromFloat(6.00),
	"KS": decimal.NewFromFloat(6.50), "KY": decimal.NewFromFloat(6.00), "LA": decimal.NewFromFloat(4.45),
	"ME": decimal.NewFromFloat(5.50), "MD": decimal.NewFromFloat(6.00), "MA": decimal.NewFromFloat(6.25),
	"MI": decimal.NewFromFloat(6.00), "MN": decimal.NewFromFloat(6.88), "MS": decimal.NewFromFloat(7.00),
	"MO": decimal.NewFromFloat(4.23), "MT": decimal.Zero, "NE": decimal.NewFromFloat(5.50),
	"NV": decimal.NewFromFloat(6.85), "NH": decimal.Zero, "NJ": decimal.NewFromFloat(6.63),
	"NM": decimal.NewFromFloat(5.13), "NY": decimal.NewFromFloat(4.00), "NC": decimal.NewFromFloat(4.75),
	"ND": decimal.NewFromFloat(5.00), "OH": decimal.NewFromFloat(5.75), "OK": decimal.NewFromFloat(4.50),
	"OR": decimal.Zero, "PA": decimal.NewFromFloat(6.00), "RI": decimal.NewFromFloat(7.00),
	"SC": decimal.NewFromFloat(6.00), "SD": decimal.NewFromFloat(4.50), "TN": decimal.NewFromFloat(7.00),
	"TX": decimal.NewFromFloat(6.25), "UT": decimal.NewFromFloat(6.10), "VT": decimal.NewFromFloat(6.00),
	"VA": decimal.NewFromFloat(5.30), "WA": decimal.NewFromFloat(6.50), "WV": decimal.NewFromFloat(6.00),
	"WI": decimal.NewFromFloat(5.00), "WY": decimal.NewFromFloat(4.00), "DC": decimal.NewFromFloat(6.00),
}

// RateForState returns the percent sales tax rate for a two-letter state
// code. Unknown or empty codes return 0 with ok=false.
func RateForState(code string) (decimal.Decimal, bool) {
	r, ok := stateRates[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return decimal.Zero, false
	}
	return r, true
}

// ExtractState pulls a US state code out of a free-form address.
//
// Addresses put the state near the end ("123 Main St, Austin, TX 78701"), so
// tokens are scanned back to front, and only whole tokens count: "CALL ME"
// must not read as Alabama, and "Washington, IN" is Indiana, not WA.
func ExtractState(address string) (string, bool) {
	if address == "" {
		return "", false
	}

	fields := strings.FieldsFunc(strings.ToUpper(address), func(r rune) bool {
		return r == ' ' || r == ',' || r == '.' || r == ';' || r == '\n' || r == '\t'
	})

	for i := len(fields) - 1; i >= 0; i-- {
		if _, ok := stateRates[fields[i]]; ok {
			return fields[i], true
		}
	}
	return "", false
}

// Calculate returns the tax amount and grand total for a pre-tax amount at
// the given percent rate, rounded to cents.
func Calculate(amount, ratePercent decimal.Decimal) (taxAmount, total decimal.Decimal) {
	taxAmount = amount.Mul(ratePercent).Div(decimal.NewFromInt(100)).Round(2)
	total = amount.Add(taxAmount).Round(2)
	return taxAmount, total
}
