package tax

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestRateForState(t *testing.T) {
	tests := []struct {
		code   string
		want   string
		wantOK bool
	}{
		{"CA", "7.25", true},
		{"ca", "7.25", true},
		{" TX ", "6.25", true},
		{"OR", "0", true}, // no sales tax, but a known state
		{"DC", "6", true},
		{"XX", "0", false},
		{"", "0", false},
	}

	for _, tt := range tests {
		got, ok := RateForState(tt.code)
		if ok != tt.wantOK {
			t.Errorf("RateForState(%q) ok = %v, want %v", tt.code, ok, tt.wantOK)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("RateForState(%q) = %s, want %s", tt.code, got.String(), tt.want)
		}
	}
}

func TestExtractState(t *testing.T) {
	tests := []struct {
		name    string
		address string
		want    string
		wantOK  bool
	}{
		{"comma separated", "123 Main St, Austin, TX 78701", "TX", true},
		{"lowercase", "456 oak ave, portland, or 97201", "OR", true},
		{"state last", "789 Pine Rd, Denver CO", "CO", true},
		{"multiline", "Acme Corp\n1 Plaza Dr\nNew York, NY 10001", "NY", true},
		{"city named after state scans from end", "100 Washington St, Indianapolis, IN 46204", "IN", true},
		{"substring is not a match", "CALL ME LATER", "", false},
		{"no state", "10 Downing Street, London", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractState(tt.address)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ExtractState(%q) = %q,%v, want %q,%v", tt.address, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestCalculate(t *testing.T) {
	amount := decimal.NewFromFloat(1000)
	rate := decimal.NewFromFloat(7.25)

	taxAmount, total := Calculate(amount, rate)
	if taxAmount.String() != "72.5" {
		t.Errorf("tax amount = %s, want 72.5", taxAmount.String())
	}
	if total.String() != "1072.5" {
		t.Errorf("total = %s, want 1072.5", total.String())
	}

	// Rounding to cents.
	taxAmount, total = Calculate(decimal.NewFromFloat(99.99), decimal.NewFromFloat(6.35))
	if taxAmount.String() != "6.35" {
		t.Errorf("tax amount = %s, want 6.35", taxAmount.String())
	}
	if total.String() != "106.34" {
		t.Errorf("total = %s, want 106.34", total.String())
	}

	// Zero rate yields zero tax.
	taxAmount, total = Calculate(amount, decimal.Zero)
	if !taxAmount.IsZero() || !total.Equal(amount) {
		t.Errorf("zero-rate Calculate = %s, %s", taxAmount.String(), total.String())
	}
}
