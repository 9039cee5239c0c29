package normalize

import (
	"testing"
	"time"
)

func TestMoney(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		wantOK bool
		want   string // decimal string form
	}{
		// Plain numbers
		{"integer", "123", true, "123"},
		{"decimal", "1234.56", true, "1234.56"},
		{"zero", "0", true, "0"},
		{"negative", "-456.78", true, "-456.78"},
		{"leading decimal point", ".99", true, "0.99"},
		{"explicit positive", "+12", true, "12"},

		// Currency symbols
		{"dollar with thousands", "$1,234.56", true, "1234.56"},
		{"euro", "€1234.56", true, "1234.56"},
		{"pound", "£99.50", true, "99.5"},
		{"yen", "¥5000", true, "5000"},
		{"rupee", "₹1,00,000", true, "100000"},

		// Thousands separators
		{"us grouping", "1,234,567.89", true, "1234567.89"},
		{"grouping no decimals", "1,000,000", true, "1000000"},

		// European formats
		{"european full", "1.234,56", true, "1234.56"},
		{"european decimal comma", "1234,56", true, "1234.56"},

		// Accounting negatives
		{"parenthesized", "(1234.56)", true, "-1234.56"},
		{"parenthesized with currency", "($1,234.56)", true, "-1234.56"},
		{"parenthesized with spaces", "( 999.99 )", true, "-999.99"},

		// Whitespace
		{"surrounding whitespace", "  123.45  ", true, "123.45"},

		// Absent, not zero
		{"empty", "", false, ""},
		{"whitespace only", "   ", false, ""},

		// Rejected: alphabetic garbage must not become a number
		{"alphabetic", "abc", false, ""},
		{"mixed alphanumeric", "12abc34", false, ""},
		{"currency symbol only", "$", false, ""},
		{"double decimal", "12.34.56", false, ""},
		{"double negative", "--5", false, ""},
		{"trailing minus", "123-", false, ""},
		{"free text", "call me", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Money(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("Money(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got.String() != tt.want {
				t.Errorf("Money(%q) = %s, want %s", tt.input, got.String(), tt.want)
			}
		})
	}
}

func TestDate_MonthFirstDefault(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		wantOK bool
		want   string // YYYY-MM-DD
	}{
		{"iso", "2024-01-15", true, "2024-01-15"},
		{"iso slashes", "2024/01/15", true, "2024-01-15"},
		{"iso dots", "2024.01.15", true, "2024-01-15"},
		{"us slashes", "01/15/2024", true, "2024-01-15"},
		{"us single digits", "1/5/2024", true, "2024-01-05"},
		{"us dashes", "01-15-2024", true, "2024-01-15"},
		{"us dots", "01.15.2024", true, "2024-01-15"},
		{"long month", "January 15, 2024", true, "2024-01-15"},
		{"short month", "Jan 15, 2024", true, "2024-01-15"},
		{"day first text", "15 January 2024", true, "2024-01-15"},
		{"day first short text", "15 Jan 2024", true, "2024-01-15"},
		{"compact", "20240115", true, "2024-01-15"},

		// Ambiguous day/month: month-first wins deterministically.
		{"ambiguous prefers month first", "03/04/2024", true, "2024-03-04"},
		// Month-first impossible, so day-first is the only reading.
		{"impossible month falls back", "13/04/2024", true, "2024-04-13"},

		{"leap day", "02/29/2024", true, "2024-02-29"},
		{"invalid leap day", "02/29/2023", false, ""},
		{"garbage", "not-a-date", false, ""},
		{"empty", "", false, ""},
		{"month out of range", "2024-13-01", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Date(tt.input, false)
			if ok != tt.wantOK {
				t.Fatalf("Date(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got.Format("2006-01-02") != tt.want {
				t.Errorf("Date(%q) = %s, want %s", tt.input, got.Format("2006-01-02"), tt.want)
			}
		})
	}
}

func TestDate_DayFirst(t *testing.T) {
	got, ok := Date("03/04/2024", true)
	if !ok {
		t.Fatal("Date(03/04/2024, dayFirst) failed to parse")
	}
	if got.Format("2006-01-02") != "2024-04-03" {
		t.Errorf("Date(03/04/2024, dayFirst) = %s, want 2024-04-03", got.Format("2006-01-02"))
	}

	// ISO input is unambiguous and must not be affected by the flag.
	iso, ok := Date("2024-01-15", true)
	if !ok || iso.Format("2006-01-02") != "2024-01-15" {
		t.Errorf("Date(2024-01-15, dayFirst) = %v, want 2024-01-15", iso)
	}
}

func TestDate_TwoDigitYearPivot(t *testing.T) {
	originalPivot := TwoDigitYearPivot
	defer func() { TwoDigitYearPivot = originalPivot }()
	TwoDigitYearPivot = 20

	tests := []struct {
		input    string
		wantYear int
	}{
		{"01/15/25", 2025},
		{"01/15/99", 1999},
		{"01/15/85", 1985},
		{"1-15-99", 1999},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := Date(tt.input, false)
			if !ok {
				t.Fatalf("Date(%q) failed to parse", tt.input)
			}
			if got.Year() != tt.wantYear {
				t.Errorf("Date(%q).Year = %d, want %d", tt.input, got.Year(), tt.wantYear)
			}
			if got.Month() != time.January || got.Day() != 15 {
				t.Errorf("Date(%q) = %v, want Jan 15", tt.input, got)
			}
		})
	}
}

func TestQuantity(t *testing.T) {
	tests := []struct {
		input  string
		wantOK bool
		want   string
	}{
		{"3", true, "3"},
		{"1.5", true, "1.5"},
		{"1,000", true, "1000"},
		{"two", false, ""},
		{"", false, ""},
	}

	for _, tt := range tests {
		got, ok := Quantity(tt.input)
		if ok != tt.wantOK {
			t.Errorf("Quantity(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			continue
		}
		if ok && got.String() != tt.want {
			t.Errorf("Quantity(%q) = %s, want %s", tt.input, got.String(), tt.want)
		}
	}
}

func TestText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Consulting", "Consulting"},
		{"trimmed", "  Consulting  ", "Consulting"},
		{"excel formula", `="INV-001"`, "INV-001"},
		{"bare equals", "=Consulting", "Consulting"},
		{"quoted", `"Acme Corp"`, "Acme Corp"},
		{"single quoted", "'12345'", "12345"},
		{"empty is absent", "", ""},
		{"whitespace is absent", "   ", ""},
		{"inner whitespace kept", "Acme  Corp", "Acme  Corp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.input); got != tt.want {
				t.Errorf("Text(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
