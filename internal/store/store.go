// Package store persists import results to PostgreSQL.
//
// Everything an import produces - the file-level record, the invoice drafts,
// their line items, and the warning list - is written in a single
// transaction, so a failed save leaves no partial import behind.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/invoiceflow/importer/internal/invoice"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// DBTX abstracts a pgx pool or transaction, so queries run the same inside
// and outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is the persistence layer over a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New returns a Store over the given pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// ImportRecord is the stored summary of one import run.
type ImportRecord struct {
	ID            uuid.UUID `json:"id"`
	Filename      string    `json:"filename"`
	TotalRowsSeen int       `json:"total_rows_seen"`
	RowsSkipped   int       `json:"rows_skipped"`
	InvoiceCount  int       `json:"invoice_count"`
	WarningCount  int       `json:"warning_count"`
	ErrorCount    int       `json:"error_count"`
	CreatedAt     time.Time `json:"created_at"`
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS imports (
	id              UUID PRIMARY KEY,
	filename        TEXT NOT NULL,
	total_rows_seen INTEGER NOT NULL,
	rows_skipped    INTEGER NOT NULL,
	invoice_count   INTEGER NOT NULL,
	warning_count   INTEGER NOT NULL,
	error_count     INTEGER NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS invoices (
	id             UUID PRIMARY KEY,
	import_id      UUID NOT NULL REFERENCES imports(id) ON DELETE CASCADE,
	invoice_number TEXT NOT NULL,
	invoice_date   DATE,
	due_date       DATE,
	client_name    TEXT,
	client_email   TEXT,
	client_address TEXT,
	subtotal       NUMERIC(18,4) NOT NULL DEFAULT 0,
	tax_rate       NUMERIC(9,4) NOT NULL DEFAULT 0,
	tax_amount     NUMERIC(18,4) NOT NULL DEFAULT 0,
	total          NUMERIC(18,4) NOT NULL DEFAULT 0,
	terms          TEXT,
	po_number      TEXT,
	currency       TEXT NOT NULL,
	status         TEXT NOT NULL,
	notes          TEXT,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_invoices_import_id ON invoices(import_id);
CREATE INDEX IF NOT EXISTS idx_invoices_number ON invoices(invoice_number);

CREATE TABLE IF NOT EXISTS line_items (
	id          BIGSERIAL PRIMARY KEY,
	invoice_id  UUID NOT NULL REFERENCES invoices(id) ON DELETE CASCADE,
	position    INTEGER NOT NULL,
	description TEXT,
	quantity    NUMERIC(18,4) NOT NULL DEFAULT 0,
	rate        NUMERIC(18,4) NOT NULL DEFAULT 0,
	amount      NUMERIC(18,4) NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_line_items_invoice_id ON line_items(invoice_id);

CREATE TABLE IF NOT EXISTS import_warnings (
	id        BIGSERIAL PRIMARY KEY,
	import_id UUID NOT NULL REFERENCES imports(id) ON DELETE CASCADE,
	row_num   INTEGER NOT NULL,
	field     TEXT,
	message   TEXT NOT NULL,
	severity  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_import_warnings_import_id ON import_warnings(import_id);
`

// EnsureSchema creates the tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SaveImport persists a complete import result in one transaction and
// returns the new import record's ID.
func (s *Store) SaveImport(ctx context.Context, filename string, res *invoice.Result) (uuid.UUID, error) {
	importID := uuid.New()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO imports (id, filename, total_rows_seen, rows_skipped, invoice_count, warning_count, error_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		importID, filename, res.TotalRowsSeen, res.RowsSkipped,
		len(res.Invoices), len(res.Warnings), res.ErrorCount())
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert import: %w", err)
	}

	for _, inv := range res.Invoices {
		if err := insertInvoice(ctx, tx, importID, inv); err != nil {
			return uuid.Nil, err
		}
	}

	for _, w := range res.Warnings {
		_, err = tx.Exec(ctx, `
			INSERT INTO import_warnings (import_id, row_num, field, message, severity)
			VALUES ($1, $2, $3, $4, $5)`,
			importID, w.Row, toPgText(w.Field), w.Message, string(w.Severity))
		if err != nil {
			return uuid.Nil, fmt.Errorf("insert warning: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("commit: %w", err)
	}
	return importID, nil
}

func insertInvoice(ctx context.Context, db DBTX, importID uuid.UUID, inv *invoice.Draft) error {
	_, err := db.Exec(ctx, `
		INSERT INTO invoices (
			id, import_id, invoice_number, invoice_date, due_date,
			client_name, client_email, client_address,
			subtotal, tax_rate, tax_amount, total,
			terms, po_number, currency, status, notes
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		inv.ID, importID, inv.InvoiceNumber,
		toPgDate(inv.Date), toPgDate(inv.DueDate),
		toPgText(inv.ClientName), toPgText(inv.ClientEmail), toPgText(inv.ClientAddress),
		inv.Subtotal.String(), inv.TaxRate.String(), inv.TaxAmount.String(), inv.Total.String(),
		toPgText(inv.Terms), toPgText(inv.PONumber), inv.Currency, string(inv.Status), toPgText(inv.Notes))
	if err != nil {
		return fmt.Errorf("insert invoice %s: %w", inv.InvoiceNumber, err)
	}

	for i, li := range inv.LineItems {
		_, err = db.Exec(ctx, `
			INSERT INTO line_items (invoice_id, position, description, quantity, rate, amount)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			inv.ID, i, toPgText(li.Description),
			li.Quantity.String(), li.Rate.String(), li.Amount.String())
		if err != nil {
			return fmt.Errorf("insert line item %d of %s: %w", i, inv.InvoiceNumber, err)
		}
	}
	return nil
}

// ListImports returns import records, most recent first.
func (s *Store) ListImports(ctx context.Context, limit int) ([]ImportRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, filename, total_rows_seen, rows_skipped, invoice_count, warning_count, error_count, created_at
		FROM imports ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list imports: %w", err)
	}
	defer rows.Close()

	var out []ImportRecord
	for rows.Next() {
		var rec ImportRecord
		if err := rows.Scan(&rec.ID, &rec.Filename, &rec.TotalRowsSeen, &rec.RowsSkipped,
			&rec.InvoiceCount, &rec.WarningCount, &rec.ErrorCount, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan import: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// GetImport returns one import record with its warning list.
func (s *Store) GetImport(ctx context.Context, id uuid.UUID) (*ImportRecord, []invoice.Warning, error) {
	var rec ImportRecord
	err := s.pool.QueryRow(ctx, `
		SELECT id, filename, total_rows_seen, rows_skipped, invoice_count, warning_count, error_count, created_at
		FROM imports WHERE id = $1`, id).
		Scan(&rec.ID, &rec.Filename, &rec.TotalRowsSeen, &rec.RowsSkipped,
			&rec.InvoiceCount, &rec.WarningCount, &rec.ErrorCount, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get import: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT row_num, COALESCE(field, ''), message, severity
		FROM import_warnings WHERE import_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("get import warnings: %w", err)
	}
	defer rows.Close()

	var warnings []invoice.Warning
	for rows.Next() {
		var w invoice.Warning
		var sev string
		if err := rows.Scan(&w.Row, &w.Field, &w.Message, &sev); err != nil {
			return nil, nil, fmt.Errorf("scan warning: %w", err)
		}
		w.Severity = invoice.Severity(sev)
		warnings = append(warnings, w)
	}
	return &rec, warnings, rows.Err()
}

// ListInvoices returns stored invoices, most recent first, without line items.
func (s *Store) ListInvoices(ctx context.Context, limit int) ([]*invoice.Draft, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, invoiceSelect+` ORDER BY created_at DESC, invoice_number LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var out []*invoice.Draft
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// GetInvoice returns one invoice with its line items.
func (s *Store) GetInvoice(ctx context.Context, id uuid.UUID) (*invoice.Draft, error) {
	row := s.pool.QueryRow(ctx, invoiceSelect+` WHERE id = $1`, id)
	inv, err := scanInvoice(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT COALESCE(description, ''), quantity::text, rate::text, amount::text
		FROM line_items WHERE invoice_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("get line items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		li, err := scanLineItem(rows)
		if err != nil {
			return nil, err
		}
		inv.LineItems = append(inv.LineItems, li)
	}
	return inv, rows.Err()
}
