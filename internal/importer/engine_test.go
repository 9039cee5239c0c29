package importer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/invoiceflow/importer/internal/catalog"
	"github.com/invoiceflow/importer/internal/invoice"
)

func testEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(catalog.Default(), opts, log)
}

func importCSV(t *testing.T, opts Options, csvText string) *invoice.Result {
	t.Helper()
	res, err := testEngine(t, opts).Import(context.Background(), []byte(csvText), "test.csv")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	return res
}

func TestImport_GroupsRowsIntoOneInvoice(t *testing.T) {
	res := importCSV(t, Options{}, strings.Join([]string{
		"Invoice #,Date,Customer,Item,Qty,Rate",
		"INV-001,01/15/2024,Acme Corp,Consulting,10,150",
		"INV-001,01/15/2024,Acme Corp,Design,5,200",
	}, "\n"))

	if len(res.Invoices) != 1 {
		t.Fatalf("got %d invoices, want 1", len(res.Invoices))
	}
	inv := res.Invoices[0]

	if inv.InvoiceNumber != "INV-001" {
		t.Errorf("invoice number = %q", inv.InvoiceNumber)
	}
	if inv.ClientName != "Acme Corp" {
		t.Errorf("client name = %q", inv.ClientName)
	}
	if inv.Date == nil || inv.Date.Format("2006-01-02") != "2024-01-15" {
		t.Errorf("date = %v, want 2024-01-15", inv.Date)
	}
	if len(inv.LineItems) != 2 {
		t.Fatalf("got %d line items, want 2", len(inv.LineItems))
	}

	first := inv.LineItems[0]
	if first.Description != "Consulting" || first.Quantity.String() != "10" ||
		first.Rate.String() != "150" || first.Amount.String() != "1500" {
		t.Errorf("line item 1 = %+v", first)
	}
	if inv.Subtotal.String() != "2500" {
		t.Errorf("subtotal = %s, want 2500", inv.Subtotal.String())
	}
	if inv.Total.String() != "2500" {
		t.Errorf("total = %s, want 2500", inv.Total.String())
	}
	if inv.Currency != "USD" {
		t.Errorf("currency = %q, want default USD", inv.Currency)
	}
	if inv.Status != invoice.StatusDraft {
		t.Errorf("status = %q, want draft", inv.Status)
	}

	if res.TotalRowsSeen != 2 || res.RowsSkipped != 0 {
		t.Errorf("rows seen/skipped = %d/%d, want 2/0", res.TotalRowsSeen, res.RowsSkipped)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}
}

func TestImport_StructuralFailures(t *testing.T) {
	eng := testEngine(t, Options{})
	ctx := context.Background()

	if _, err := eng.Import(ctx, nil, "empty.csv"); !errors.Is(err, ErrEmptyFile) {
		t.Errorf("empty file: err = %v, want ErrEmptyFile", err)
	}
	if _, err := eng.Import(ctx, []byte("   \n  "), "blank.csv"); !errors.Is(err, ErrEmptyFile) {
		t.Errorf("blank file: err = %v, want ErrEmptyFile", err)
	}
	if _, err := eng.Import(ctx, []byte("not an xlsx"), "fake.xlsx"); !errors.Is(err, ErrUndecodable) {
		t.Errorf("bad xlsx: err = %v, want ErrUndecodable", err)
	}

	data := "Colour,Weather,Mood\nred,rainy,fine\n"
	if _, err := eng.Import(ctx, []byte(data), "nonsense.csv"); !errors.Is(err, ErrNoKnownFields) {
		t.Errorf("no known columns: err = %v, want ErrNoKnownFields", err)
	}
}

func TestImport_ZeroDataRowsIsNotAnError(t *testing.T) {
	res := importCSV(t, Options{}, "Invoice #,Customer,Description\n")

	if len(res.Invoices) != 0 || res.TotalRowsSeen != 0 {
		t.Errorf("got %d invoices, %d rows", len(res.Invoices), res.TotalRowsSeen)
	}
}

func TestImport_UnparseableDateKeepsRow(t *testing.T) {
	res := importCSV(t, Options{}, strings.Join([]string{
		"Invoice #,Date,Customer,Description,Amount",
		"INV-2,sometime soon,Acme,Work,100",
	}, "\n"))

	if len(res.Invoices) != 1 {
		t.Fatalf("got %d invoices, want 1 (row must survive a bad date)", len(res.Invoices))
	}
	if res.Invoices[0].Date != nil {
		t.Errorf("date = %v, want nil", res.Invoices[0].Date)
	}

	found := false
	for _, w := range res.Warnings {
		if w.Field == string(catalog.FieldInvoiceDate) && w.Severity == invoice.SeverityInfo && w.Row == 1 {
			found = true
		}
	}
	if !found {
		t.Errorf("no date warning in %v", res.Warnings)
	}
}

func TestImport_SynthesizedKeys(t *testing.T) {
	res := importCSV(t, Options{}, strings.Join([]string{
		"Invoice #,Customer,Description,Amount",
		",Acme,First,100",
		",Beta LLC,Second,200",
	}, "\n"))

	if len(res.Invoices) != 2 {
		t.Fatalf("got %d invoices, want one per keyless row", len(res.Invoices))
	}
	if res.Invoices[0].InvoiceNumber != "ROW-1" || res.Invoices[1].InvoiceNumber != "ROW-2" {
		t.Errorf("keys = %q, %q, want ROW-1, ROW-2",
			res.Invoices[0].InvoiceNumber, res.Invoices[1].InvoiceNumber)
	}

	// Missing invoice numbers are usable-but-flagged: error severity.
	if res.ErrorCount() != 2 {
		t.Errorf("error count = %d, want 2", res.ErrorCount())
	}
}

func TestImport_IncompleteInvoiceWarnings(t *testing.T) {
	// Client name column absent entirely; row has no item data either.
	res := importCSV(t, Options{}, strings.Join([]string{
		"Invoice #,Status",
		"INV-3,paid",
	}, "\n"))

	if len(res.Invoices) != 1 {
		t.Fatalf("got %d invoices, want 1", len(res.Invoices))
	}
	if res.Invoices[0].Status != invoice.StatusPaid {
		t.Errorf("status = %q, want paid", res.Invoices[0].Status)
	}

	var fields []string
	for _, w := range res.Warnings {
		if w.Severity == invoice.SeverityError {
			fields = append(fields, w.Field)
		}
	}
	want := []string{string(catalog.FieldClientName), string(catalog.FieldDescription)}
	if !reflect.DeepEqual(fields, want) {
		t.Errorf("error warning fields = %v, want %v", fields, want)
	}
}

func TestImport_FirstWriterWinsWithConflictWarning(t *testing.T) {
	res := importCSV(t, Options{}, strings.Join([]string{
		"Invoice #,Customer,Description,Amount",
		"INV-4,Acme Corp,Consulting,100",
		"INV-4,Beta LLC,Design,200",
	}, "\n"))

	if len(res.Invoices) != 1 {
		t.Fatalf("got %d invoices, want 1", len(res.Invoices))
	}
	if res.Invoices[0].ClientName != "Acme Corp" {
		t.Errorf("client name = %q, want first writer Acme Corp", res.Invoices[0].ClientName)
	}

	found := false
	for _, w := range res.Warnings {
		if w.Field == string(catalog.FieldClientName) && w.Row == 2 {
			found = true
			if w.Severity != invoice.SeverityError {
				t.Errorf("conflict warning severity = %s, want error", w.Severity)
			}
		}
	}
	if !found {
		t.Errorf("no conflict warning in %v", res.Warnings)
	}
}

func TestImport_BlankRowsSkipped(t *testing.T) {
	res := importCSV(t, Options{}, strings.Join([]string{
		"Invoice #,Customer,Description,Amount",
		"INV-5,Acme,Work,100",
		",,,",
		"",
	}, "\n"))

	if len(res.Invoices) != 1 {
		t.Errorf("got %d invoices, want 1", len(res.Invoices))
	}
	if res.RowsSkipped != 1 {
		t.Errorf("rows skipped = %d, want 1", res.RowsSkipped)
	}
}

func TestImport_TaxRateDerivesAmount(t *testing.T) {
	res := importCSV(t, Options{}, strings.Join([]string{
		"Invoice #,Customer,Description,Amount,Tax Rate",
		"INV-6,Acme,Widget,100,7.25",
	}, "\n"))

	inv := res.Invoices[0]
	if inv.TaxRate.String() != "7.25" {
		t.Errorf("tax rate = %s", inv.TaxRate.String())
	}
	if inv.TaxAmount.String() != "7.25" {
		t.Errorf("tax amount = %s, want 7.25", inv.TaxAmount.String())
	}
	if inv.Total.String() != "107.25" {
		t.Errorf("total = %s, want 107.25", inv.Total.String())
	}
}

func TestImport_TaxAmountDerivesRate(t *testing.T) {
	res := importCSV(t, Options{}, strings.Join([]string{
		"Invoice #,Customer,Description,Amount,Tax Amount",
		"INV-7,Acme,Widget,200,13",
	}, "\n"))

	inv := res.Invoices[0]
	if inv.TaxRate.String() != "6.5" {
		t.Errorf("derived tax rate = %s, want 6.5", inv.TaxRate.String())
	}
	if inv.Total.String() != "213" {
		t.Errorf("total = %s, want 213", inv.Total.String())
	}
}

func TestImport_TaxFallbackFromAddress(t *testing.T) {
	csvText := strings.Join([]string{
		"Invoice #,Customer,Billing Address,Description,Amount",
		`INV-8,Acme,"123 Main St, Austin, TX 78701",Consulting,100`,
	}, "\n")

	// Disabled by default.
	res := importCSV(t, Options{}, csvText)
	if !res.Invoices[0].TaxAmount.IsZero() {
		t.Errorf("tax fallback applied while disabled: %s", res.Invoices[0].TaxAmount.String())
	}

	res = importCSV(t, Options{TaxFallback: true}, csvText)
	inv := res.Invoices[0]
	if inv.TaxRate.String() != "6.25" {
		t.Errorf("fallback tax rate = %s, want TX 6.25", inv.TaxRate.String())
	}
	if inv.TaxAmount.String() != "6.25" || inv.Total.String() != "106.25" {
		t.Errorf("tax/total = %s/%s, want 6.25/106.25", inv.TaxAmount.String(), inv.Total.String())
	}
}

func TestImport_InjectedTaxLookup(t *testing.T) {
	opts := Options{
		TaxFallback:  true,
		ExtractState: func(string) (string, bool) { return "ZZ", true },
		RateForState: func(code string) (decimal.Decimal, bool) {
			if code == "ZZ" {
				return decimal.NewFromInt(10), true
			}
			return decimal.Zero, false
		},
	}
	res := importCSV(t, opts, strings.Join([]string{
		"Invoice #,Customer,Billing Address,Description,Amount",
		"INV-20,Acme,Somewhere,Widget,50",
	}, "\n"))

	inv := res.Invoices[0]
	if inv.TaxRate.String() != "10" || inv.TaxAmount.String() != "5" {
		t.Errorf("injected lookup: rate/amount = %s/%s, want 10/5",
			inv.TaxRate.String(), inv.TaxAmount.String())
	}
}

func TestImport_StatedTotalMismatchWarns(t *testing.T) {
	res := importCSV(t, Options{}, strings.Join([]string{
		"Invoice #,Customer,Description,Amount,Total",
		"INV-9,Acme,Widget,100,250",
	}, "\n"))

	if res.Invoices[0].Total.String() != "250" {
		t.Errorf("stated total overridden: %s", res.Invoices[0].Total.String())
	}
	found := false
	for _, w := range res.Warnings {
		if w.Field == string(catalog.FieldTotal) {
			found = true
		}
	}
	if !found {
		t.Error("no total mismatch warning")
	}
}

func TestImport_EuropeanAmountsAndDayFirstDates(t *testing.T) {
	res := importCSV(t, Options{DayFirst: true, DefaultCurrency: "EUR"}, strings.Join([]string{
		"Invoice #,Date,Customer,Description,Amount",
		`INV-10,03/04/2024,Acme GmbH,Beratung,"1.234,56"`,
	}, "\n"))

	inv := res.Invoices[0]
	if inv.Date == nil || inv.Date.Format("2006-01-02") != "2024-04-03" {
		t.Errorf("date = %v, want 2024-04-03 (day-first)", inv.Date)
	}
	if inv.Subtotal.String() != "1234.56" {
		t.Errorf("subtotal = %s, want 1234.56", inv.Subtotal.String())
	}
	if inv.Currency != "EUR" {
		t.Errorf("currency = %q, want EUR", inv.Currency)
	}
}

func TestImport_Idempotent(t *testing.T) {
	csvText := strings.Join([]string{
		"Invoice #,Date,Customer,Item,Qty,Rate",
		"INV-001,01/15/2024,Acme Corp,Consulting,10,150",
		",bad-date,Beta,Thing,x,20",
	}, "\n")

	first := importCSV(t, Options{}, csvText)
	second := importCSV(t, Options{}, csvText)

	if !reflect.DeepEqual(first, second) {
		t.Error("repeated imports of identical bytes differ")
	}
	if first.Invoices[0].ID != second.Invoices[0].ID {
		t.Error("draft IDs not stable across imports")
	}
}

func TestImport_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"Invoice #", "Date", "Customer", "Description", "Amount"},
		{"INV-11", "2024-02-01", "Acme Corp", "Audit", 500},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	res, err := testEngine(t, Options{}).Import(context.Background(), buf.Bytes(), "export.xlsx")
	if err != nil {
		t.Fatalf("Import xlsx: %v", err)
	}
	if len(res.Invoices) != 1 {
		t.Fatalf("got %d invoices, want 1", len(res.Invoices))
	}
	inv := res.Invoices[0]
	if inv.InvoiceNumber != "INV-11" || inv.ClientName != "Acme Corp" {
		t.Errorf("invoice = %+v", inv)
	}
	if inv.Subtotal.String() != "500" {
		t.Errorf("subtotal = %s, want 500", inv.Subtotal.String())
	}
}

func TestImport_BOMStripped(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Invoice #,Customer,Description,Amount\nINV-12,Acme,Work,10\n")...)
	res, err := testEngine(t, Options{}).Import(context.Background(), data, "bom.csv")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Invoices[0].InvoiceNumber != "INV-12" {
		t.Errorf("invoice number = %q (BOM leaked into header resolution?)", res.Invoices[0].InvoiceNumber)
	}
}
