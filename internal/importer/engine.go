// Package importer is the import engine: it decodes an uploaded CSV or XLSX
// export, resolves its headers against the alias catalog, normalizes every
// cell, and assembles rows into canonical invoice drafts.
//
// The engine is deterministic and side-effect free: importing the same bytes
// twice produces identical results, and nothing is persisted here.
package importer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/invoiceflow/importer/internal/catalog"
	"github.com/invoiceflow/importer/internal/invoice"
	"github.com/invoiceflow/importer/internal/match"
	"github.com/invoiceflow/importer/internal/normalize"
	"github.com/invoiceflow/importer/internal/tax"
)

// Options tune a single engine instance. The zero value is usable: default
// similarity threshold, month-first dates, USD, tax fallback off.
type Options struct {
	// SimilarityThreshold overrides the fuzzy header match cutoff.
	SimilarityThreshold float64
	// DayFirst flips ambiguous numeric dates to day-first interpretation.
	DayFirst bool
	// DefaultCurrency is stamped on invoices whose file has no currency column.
	DefaultCurrency string
	// TaxFallback enables state-rate tax estimation from the client address
	// when the file carries no tax columns.
	TaxFallback bool
	// RateForState and ExtractState supply the fallback tax lookup. Unset,
	// they default to the built-in state table.
	RateForState func(code string) (decimal.Decimal, bool)
	ExtractState func(address string) (string, bool)
}

// Engine converts raw upload bytes into invoice drafts.
type Engine struct {
	catalog *catalog.Catalog
	matcher *match.Matcher
	opts    Options
	log     *slog.Logger
}

// New builds an engine over the given catalog.
func New(c *catalog.Catalog, opts Options, log *slog.Logger) *Engine {
	if opts.DefaultCurrency == "" {
		opts.DefaultCurrency = "USD"
	}
	if opts.RateForState == nil {
		opts.RateForState = tax.RateForState
	}
	if opts.ExtractState == nil {
		opts.ExtractState = tax.ExtractState
	}
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		catalog: c,
		matcher: match.New(c, opts.SimilarityThreshold),
		opts:    opts,
		log:     log,
	}
}

// Import runs the full pipeline on one uploaded file.
//
// It returns an error only for structural failures: an empty or undecodable
// file, or a header row in which no column resolves to any known field.
// Everything else - unparseable cells, missing required values, conflicting
// duplicates - degrades to warnings on the result.
func (e *Engine) Import(ctx context.Context, data []byte, filename string) (*invoice.Result, error) {
	rows, err := readRows(data, filename)
	if err != nil {
		return nil, err
	}

	headers := rows[0]
	resolution := e.matcher.Resolve(headers)
	if len(resolution.ResolvedFields()) == 0 {
		return nil, fmt.Errorf("%w in %q", ErrNoKnownFields, filename)
	}

	result := &invoice.Result{
		Warnings: append([]invoice.Warning(nil), resolution.Warnings...),
	}
	warn := func(w invoice.Warning) { result.Warnings = append(result.Warnings, w) }

	descCol, hasDesc := resolution.ColumnFor(catalog.FieldDescription)
	qtyCol, hasQty := resolution.ColumnFor(catalog.FieldQuantity)
	rateCol, hasRate := resolution.ColumnFor(catalog.FieldRate)
	amountCol, hasAmount := resolution.ColumnFor(catalog.FieldAmount)
	numberCol, hasNumber := resolution.ColumnFor(catalog.FieldInvoiceNumber)

	builders := make(map[string]*builder)
	var order []string

	for i, row := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rowNum := i + 1 // 1-based data row, header excluded
		result.TotalRowsSeen++

		if isBlankRow(row) {
			result.RowsSkipped++
			continue
		}

		key := ""
		if hasNumber {
			key = normalize.Text(cellAt(row, numberCol))
		}
		synthesized := false
		if key == "" {
			key = fmt.Sprintf("ROW-%d", rowNum)
			synthesized = true
		}

		b, ok := builders[key]
		if !ok {
			b = newBuilder(key, rowNum, synthesized, filename)
			builders[key] = b
			order = append(order, key)
		}

		for _, col := range resolution.Columns {
			if !col.Resolved() || col.Field.Scope != catalog.ScopeInvoice {
				continue
			}
			if col.Field.Name == catalog.FieldInvoiceNumber {
				continue // already the group key
			}
			b.setField(col.Field, cellAt(row, col.Index), rowNum, e.opts.DayFirst, warn)
		}

		var desc, qty, rate, amount string
		if hasDesc {
			desc = cellAt(row, descCol)
		}
		if hasQty {
			qty = cellAt(row, qtyCol)
		}
		if hasRate {
			rate = cellAt(row, rateCol)
		}
		if hasAmount {
			amount = cellAt(row, amountCol)
		}
		b.addLineItem(desc, qty, rate, amount, rowNum, warn)
	}

	for _, key := range order {
		result.Invoices = append(result.Invoices, builders[key].finalize(&e.opts, warn))
	}

	e.log.InfoContext(ctx, "import complete",
		"file", filename,
		"rows", result.TotalRowsSeen,
		"skipped", result.RowsSkipped,
		"invoices", len(result.Invoices),
		"warnings", len(result.Warnings),
		"errors", result.ErrorCount(),
	)

	return result, nil
}
