// Package invoice defines the canonical invoice data model produced by the
// import engine. Every source format, whatever its column names and value
// formats, normalizes into these types.
package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an imported invoice.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPending   Status = "pending"
	StatusSent      Status = "sent"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

// Severity classifies a Warning.
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityError Severity = "error"
)

// Warning is a non-fatal diagnostic attached to an import result.
// Row is the 1-based data row number (0 for file-level warnings).
// Field names the canonical field involved, when one applies.
type Warning struct {
	Row      int      `json:"row,omitempty"`
	Field    string   `json:"field,omitempty"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// LineItem is a single billable line on an invoice.
// Amount is parsed from a dedicated column when present, otherwise derived
// as Quantity × Rate.
type LineItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}

// Draft is an in-memory invoice assembled during import, before persistence.
// Identity key is InvoiceNumber; rows without one get a synthesized
// "ROW-<n>" key so no data is silently dropped.
type Draft struct {
	ID            uuid.UUID  `json:"id"`
	InvoiceNumber string     `json:"invoice_number"`
	Date          *time.Time `json:"invoice_date,omitempty"`
	DueDate       *time.Time `json:"due_date,omitempty"`

	ClientName    string `json:"client_name"`
	ClientEmail   string `json:"client_email,omitempty"`
	ClientAddress string `json:"client_address,omitempty"`

	LineItems []LineItem `json:"line_items"`

	Subtotal  decimal.Decimal `json:"subtotal"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
	Total     decimal.Decimal `json:"total"`

	Terms    string `json:"terms,omitempty"`
	PONumber string `json:"po_number,omitempty"`
	Currency string `json:"currency"`
	Status   Status `json:"status"`
	Notes    string `json:"notes,omitempty"`
}

// Result is the complete outcome of importing one file.
// It is immutable once returned: usable invoices plus an ordered warning
// list so a human can triage exactly what needs correction.
type Result struct {
	Invoices      []*Draft  `json:"invoices"`
	TotalRowsSeen int       `json:"total_rows_seen"`
	RowsSkipped   int       `json:"rows_skipped"`
	Warnings      []Warning `json:"warnings"`
}

// ErrorCount returns the number of error-severity warnings.
func (r *Result) ErrorCount() int {
	n := 0
	for _, w := range r.Warnings {
		if w.Severity == SeverityError {
			n++
		}
	}
	return n
}
