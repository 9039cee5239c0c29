package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/invoiceflow/importer/internal/invoice"
)

// toPgText maps an empty string to SQL NULL. Absent text is stored as NULL,
// never as an empty string.
func toPgText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// toPgDate maps a nil time to SQL NULL.
func toPgDate(t *time.Time) pgtype.Date {
	if t == nil {
		return pgtype.Date{Valid: false}
	}
	return pgtype.Date{Time: *t, Valid: true}
}

// invoiceSelect reads numerics as text so they round-trip through decimal
// without a float conversion.
const invoiceSelect = `
	SELECT id, invoice_number, invoice_date, due_date,
		COALESCE(client_name, ''), COALESCE(client_email, ''), COALESCE(client_address, ''),
		subtotal::text, tax_rate::text, tax_amount::text, total::text,
		COALESCE(terms, ''), COALESCE(po_number, ''), currency, status, COALESCE(notes, '')
	FROM invoices`

func scanInvoice(row pgx.Row) (*invoice.Draft, error) {
	var (
		inv              invoice.Draft
		invDate, dueDate pgtype.Date
		sub, rate, tax   string
		total            string
		status           string
	)
	err := row.Scan(&inv.ID, &inv.InvoiceNumber, &invDate, &dueDate,
		&inv.ClientName, &inv.ClientEmail, &inv.ClientAddress,
		&sub, &rate, &tax, &total,
		&inv.Terms, &inv.PONumber, &inv.Currency, &status, &inv.Notes)
	if err != nil {
		return nil, err
	}

	if invDate.Valid {
		t := invDate.Time
		inv.Date = &t
	}
	if dueDate.Valid {
		t := dueDate.Time
		inv.DueDate = &t
	}
	inv.Status = invoice.Status(status)

	if inv.Subtotal, err = decimal.NewFromString(sub); err != nil {
		return nil, fmt.Errorf("scan subtotal %q: %w", sub, err)
	}
	if inv.TaxRate, err = decimal.NewFromString(rate); err != nil {
		return nil, fmt.Errorf("scan tax_rate %q: %w", rate, err)
	}
	if inv.TaxAmount, err = decimal.NewFromString(tax); err != nil {
		return nil, fmt.Errorf("scan tax_amount %q: %w", tax, err)
	}
	if inv.Total, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("scan total %q: %w", total, err)
	}
	return &inv, nil
}

func scanLineItem(row pgx.Row) (invoice.LineItem, error) {
	var (
		li             invoice.LineItem
		qty, rate, amt string
	)
	if err := row.Scan(&li.Description, &qty, &rate, &amt); err != nil {
		return invoice.LineItem{}, err
	}

	var err error
	if li.Quantity, err = decimal.NewFromString(qty); err != nil {
		return invoice.LineItem{}, fmt.Errorf("scan quantity %q: %w", qty, err)
	}
	if li.Rate, err = decimal.NewFromString(rate); err != nil {
		return invoice.LineItem{}, fmt.Errorf("scan rate %q: %w", rate, err)
	}
	if li.Amount, err = decimal.NewFromString(amt); err != nil {
		return invoice.LineItem{}, fmt.Errorf("scan amount %q: %w", amt, err)
	}
	return li, nil
}
