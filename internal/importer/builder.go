package importer

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/invoiceflow/importer/internal/catalog"
	"github.com/invoiceflow/importer/internal/invoice"
	"github.com/invoiceflow/importer/internal/normalize"
	"github.com/invoiceflow/importer/internal/tax"
)

// draftNamespace seeds the deterministic draft IDs. Importing the same file
// twice yields byte-identical results, IDs included.
var draftNamespace = uuid.MustParse("8a7b2a1e-4c9d-4f1e-9b3a-6d5e8f0c2b41")

// builder accumulates one invoice group while its rows stream in.
// Invoice-level fields are first-writer-wins; later rows only contribute
// line items (and conflict warnings).
type builder struct {
	draft       *invoice.Draft
	firstRow    int
	synthesized bool

	// first raw value seen per invoice-level field, for conflict detection
	seen map[catalog.FieldName]string

	subtotalSet  bool
	taxRateSet   bool
	taxAmountSet bool
	totalSet     bool
}

func newBuilder(key string, row int, synthesized bool, filename string) *builder {
	return &builder{
		draft: &invoice.Draft{
			ID:            uuid.NewSHA1(draftNamespace, []byte(filename+"\x00"+key)),
			InvoiceNumber: key,
			Status:        invoice.StatusDraft,
		},
		firstRow:    row,
		synthesized: synthesized,
		seen:        make(map[catalog.FieldName]string),
	}
}

// setField applies one invoice-level cell. The first non-empty value wins;
// a later, different value is reported and ignored.
func (b *builder) setField(f *catalog.Field, raw string, row int, dayFirst bool, warn func(invoice.Warning)) {
	val := normalize.Text(raw)
	if val == "" {
		return
	}

	if prev, ok := b.seen[f.Name]; ok {
		// Conflicting invoice-level data across rows of one invoice is an
		// error-severity warning; the first value stays.
		if !strings.EqualFold(prev, val) {
			warn(invoice.Warning{
				Row:      row,
				Field:    string(f.Name),
				Message:  fmt.Sprintf("conflicting %s %q for invoice %q; keeping %q", f.Name, val, b.draft.InvoiceNumber, prev),
				Severity: invoice.SeverityError,
			})
		}
		return
	}

	switch f.Kind {
	case catalog.KindDate:
		t, ok := normalize.Date(val, dayFirst)
		if !ok {
			warn(invoice.Warning{
				Row:      row,
				Field:    string(f.Name),
				Message:  fmt.Sprintf("could not parse %q as a date; value ignored", val),
				Severity: invoice.SeverityInfo,
			})
			return
		}
		switch f.Name {
		case catalog.FieldInvoiceDate:
			b.draft.Date = &t
		case catalog.FieldDueDate:
			b.draft.DueDate = &t
		}

	case catalog.KindMoney, catalog.KindNumber:
		d, ok := normalize.Money(val)
		if !ok {
			warn(invoice.Warning{
				Row:      row,
				Field:    string(f.Name),
				Message:  fmt.Sprintf("could not parse %q as an amount; value ignored", val),
				Severity: invoice.SeverityInfo,
			})
			return
		}
		switch f.Name {
		case catalog.FieldSubtotal:
			b.draft.Subtotal = d
			b.subtotalSet = true
		case catalog.FieldTaxRate:
			b.draft.TaxRate = d
			b.taxRateSet = true
		case catalog.FieldTaxAmount:
			b.draft.TaxAmount = d
			b.taxAmountSet = true
		case catalog.FieldTotal:
			b.draft.Total = d
			b.totalSet = true
		}

	default:
		switch f.Name {
		case catalog.FieldClientName:
			b.draft.ClientName = val
		case catalog.FieldClientEmail:
			b.draft.ClientEmail = val
		case catalog.FieldClientAddress:
			b.draft.ClientAddress = val
		case catalog.FieldTerms:
			b.draft.Terms = val
		case catalog.FieldPONumber:
			b.draft.PONumber = val
		case catalog.FieldCurrency:
			b.draft.Currency = strings.ToUpper(val)
		case catalog.FieldNotes:
			b.draft.Notes = val
		case catalog.FieldStatus:
			b.draft.Status = parseStatus(val, row, warn)
		}
	}

	b.seen[f.Name] = val
}

// addLineItem builds a line item from one row's item cells. All-empty item
// cells mean the row carries no line item (header-style or summary rows).
func (b *builder) addLineItem(desc, qty, rate, amount string, row int, warn func(invoice.Warning)) {
	desc = normalize.Text(desc)
	qty = normalize.Text(qty)
	rate = normalize.Text(rate)
	amount = normalize.Text(amount)

	if desc == "" && qty == "" && rate == "" && amount == "" {
		return
	}

	item := invoice.LineItem{Description: desc}

	var qtyOK, rateOK, amountOK bool
	if qty != "" {
		if d, ok := normalize.Quantity(qty); ok {
			item.Quantity, qtyOK = d, true
		} else {
			warn(invoice.Warning{Row: row, Field: string(catalog.FieldQuantity),
				Message:  fmt.Sprintf("could not parse %q as a quantity; value ignored", qty),
				Severity: invoice.SeverityInfo})
		}
	}
	if rate != "" {
		if d, ok := normalize.Money(rate); ok {
			item.Rate, rateOK = d, true
		} else {
			warn(invoice.Warning{Row: row, Field: string(catalog.FieldRate),
				Message:  fmt.Sprintf("could not parse %q as a rate; value ignored", rate),
				Severity: invoice.SeverityInfo})
		}
	}
	if amount != "" {
		if d, ok := normalize.Money(amount); ok {
			item.Amount, amountOK = d, true
		} else {
			warn(invoice.Warning{Row: row, Field: string(catalog.FieldAmount),
				Message:  fmt.Sprintf("could not parse %q as an amount; value ignored", amount),
				Severity: invoice.SeverityInfo})
		}
	}

	// Derivations: a missing quantity on an otherwise-present item defaults
	// to 1, and a missing amount is quantity × rate.
	if !qtyOK && (rateOK || amountOK || desc != "") {
		item.Quantity = decimal.NewFromInt(1)
	}
	if !amountOK && rateOK {
		item.Amount = item.Quantity.Mul(item.Rate)
	}

	b.draft.LineItems = append(b.draft.LineItems, item)
}

// finalize completes the draft: validation warnings for incomplete invoices,
// derived totals, and tax fallback when the file carries no tax columns.
func (b *builder) finalize(opts *Options, warn func(invoice.Warning)) *invoice.Draft {
	d := b.draft

	if b.synthesized {
		warn(invoice.Warning{Row: b.firstRow, Field: string(catalog.FieldInvoiceNumber),
			Message:  fmt.Sprintf("row has no invoice number; imported under synthesized key %q", d.InvoiceNumber),
			Severity: invoice.SeverityError})
	}
	if d.ClientName == "" {
		warn(invoice.Warning{Row: b.firstRow, Field: string(catalog.FieldClientName),
			Message:  fmt.Sprintf("invoice %q has no client name", d.InvoiceNumber),
			Severity: invoice.SeverityError})
	}
	if len(d.LineItems) == 0 {
		warn(invoice.Warning{Row: b.firstRow, Field: string(catalog.FieldDescription),
			Message:  fmt.Sprintf("invoice %q has no line items", d.InvoiceNumber),
			Severity: invoice.SeverityError})
	}

	if !b.subtotalSet {
		sum := decimal.Zero
		for _, li := range d.LineItems {
			sum = sum.Add(li.Amount)
		}
		d.Subtotal = sum
	}

	switch {
	case b.taxRateSet && !b.taxAmountSet:
		d.TaxAmount, _ = tax.Calculate(d.Subtotal, d.TaxRate)
	case b.taxAmountSet && !b.taxRateSet && d.Subtotal.IsPositive():
		d.TaxRate = d.TaxAmount.Div(d.Subtotal).Mul(decimal.NewFromInt(100)).Round(2)
	case !b.taxRateSet && !b.taxAmountSet && opts.TaxFallback:
		if state, ok := opts.ExtractState(d.ClientAddress); ok {
			if rate, known := opts.RateForState(state); known && rate.IsPositive() {
				d.TaxRate = rate
				d.TaxAmount, _ = tax.Calculate(d.Subtotal, rate)
				warn(invoice.Warning{Row: b.firstRow, Field: string(catalog.FieldTaxRate),
					Message:  fmt.Sprintf("invoice %q has no tax columns; applied %s%% %s fallback rate", d.InvoiceNumber, rate.String(), state),
					Severity: invoice.SeverityInfo})
			}
		}
	}

	if !b.totalSet {
		d.Total = d.Subtotal.Add(d.TaxAmount)
	} else {
		computed := d.Subtotal.Add(d.TaxAmount)
		if !d.Total.Sub(computed).Abs().LessThanOrEqual(decimal.NewFromFloat(0.01)) {
			warn(invoice.Warning{Row: b.firstRow, Field: string(catalog.FieldTotal),
				Message:  fmt.Sprintf("invoice %q states total %s but line items compute to %s", d.InvoiceNumber, d.Total.String(), computed.String()),
				Severity: invoice.SeverityInfo})
		}
	}

	if d.Currency == "" {
		d.Currency = opts.DefaultCurrency
	}

	return d
}

// parseStatus maps a status cell onto the canonical lifecycle values.
// Unrecognized spellings fall back to draft.
func parseStatus(s string, row int, warn func(invoice.Warning)) invoice.Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "draft":
		return invoice.StatusDraft
	case "pending", "open", "unpaid", "awaiting payment", "authorised", "authorized", "outstanding":
		return invoice.StatusPending
	case "sent", "submitted", "viewed":
		return invoice.StatusSent
	case "paid", "closed", "settled":
		return invoice.StatusPaid
	case "cancelled", "canceled", "void", "voided", "deleted":
		return invoice.StatusCancelled
	default:
		warn(invoice.Warning{Row: row, Field: string(catalog.FieldStatus),
			Message:  fmt.Sprintf("unrecognized status %q; defaulting to draft", s),
			Severity: invoice.SeverityInfo})
		return invoice.StatusDraft
	}
}
