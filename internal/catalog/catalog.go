// Package catalog is the alias catalog: a static, immutable mapping from
// known header spellings to canonical invoice fields. It covers the export
// formats of the major accounting tools (QuickBooks Online/Desktop, Xero,
// Harvest, FreshBooks, Wave) plus generic spreadsheet conventions.
//
// The catalog is built once at init and is safe for unsynchronized
// concurrent reads. Lookup is always against the normalized form of a
// header (lowercase, trimmed, punctuation collapsed to single spaces), so
// "Invoice_Number", "invoice-number" and "Invoice  Number" all hit the
// same alias.
package catalog

import (
	"fmt"
	"strings"
)

// FieldName is the canonical, source-independent name of an invoice attribute.
type FieldName string

const (
	FieldInvoiceNumber FieldName = "invoice_number"
	FieldInvoiceDate   FieldName = "invoice_date"
	FieldDueDate       FieldName = "due_date"
	FieldClientName    FieldName = "client_name"
	FieldClientEmail   FieldName = "client_email"
	FieldClientAddress FieldName = "client_address"
	FieldDescription   FieldName = "description"
	FieldQuantity      FieldName = "quantity"
	FieldRate          FieldName = "rate"
	FieldAmount        FieldName = "amount"
	FieldSubtotal      FieldName = "subtotal"
	FieldTaxRate       FieldName = "tax_rate"
	FieldTaxAmount     FieldName = "tax_amount"
	FieldTotal         FieldName = "total"
	FieldTerms         FieldName = "terms"
	FieldNotes         FieldName = "notes"
	FieldCurrency      FieldName = "currency"
	FieldStatus        FieldName = "status"
	FieldPONumber      FieldName = "po_number"
)

// ValueKind is the expected data type of a field's cells.
type ValueKind int

const (
	KindText ValueKind = iota
	KindDate
	KindMoney
	KindNumber
)

// Scope distinguishes invoice-level fields (one value per invoice, taken
// from the first row of the group) from line-item fields (one value per row).
type Scope int

const (
	ScopeInvoice Scope = iota
	ScopeLineItem
)

// Field describes one canonical field: its kind, scope, and whether the
// import considers an invoice incomplete without it.
type Field struct {
	Name     FieldName
	Kind     ValueKind
	Scope    Scope
	Required bool
}

// Alias pairs a normalized header spelling with the field it names.
type Alias struct {
	Text  string // normalized spelling
	Field *Field
}

// Catalog is an immutable lookup table from normalized alias to field.
type Catalog struct {
	fields  []*Field
	byName  map[FieldName]*Field
	byAlias map[string]*Field
	aliases []Alias // declaration order, for deterministic tie-breaks
}

// NormalizeHeader lowercases a raw header, trims it, and collapses every run
// of whitespace and punctuation into a single space. The result is the only
// form the catalog stores or matches against.
func NormalizeHeader(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range strings.ToLower(s) {
		isWord := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !isWord {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

// ResolveExact returns the field a normalized header names, if any.
// Pure lookup, no fuzzy matching.
func (c *Catalog) ResolveExact(header string) (*Field, bool) {
	f, ok := c.byAlias[NormalizeHeader(header)]
	return f, ok
}

// Field returns a field descriptor by canonical name.
func (c *Catalog) Field(name FieldName) (*Field, bool) {
	f, ok := c.byName[name]
	return f, ok
}

// Fields returns all fields in declaration order.
func (c *Catalog) Fields() []*Field {
	return c.fields
}

// Aliases returns every alias in declaration order. The matcher relies on
// this ordering as its final tie-break, so it must be stable.
func (c *Catalog) Aliases() []Alias {
	return c.aliases
}

// RequiredFields returns the fields flagged Required, in declaration order.
func (c *Catalog) RequiredFields() []*Field {
	var out []*Field
	for _, f := range c.fields {
		if f.Required {
			out = append(out, f)
		}
	}
	return out
}

// Len returns the number of distinct aliases in the catalog.
func (c *Catalog) Len() int {
	return len(c.byAlias)
}

// add registers aliases for a field. Spellings that normalize to a form the
// field already owns are deduplicated silently; a spelling owned by a
// different field is a catalog bug and panics at init.
func (c *Catalog) add(f *Field, spellings ...string) {
	if _, exists := c.byName[f.Name]; exists {
		panic(fmt.Sprintf("catalog: field already registered: %s", f.Name))
	}
	c.fields = append(c.fields, f)
	c.byName[f.Name] = f
	for _, s := range spellings {
		norm := NormalizeHeader(s)
		if norm == "" {
			panic(fmt.Sprintf("catalog: alias %q for %s normalizes to empty", s, f.Name))
		}
		if owner, dup := c.byAlias[norm]; dup {
			if owner == f {
				continue
			}
			panic(fmt.Sprintf("catalog: alias %q claimed by both %s and %s", norm, owner.Name, f.Name))
		}
		c.byAlias[norm] = f
		c.aliases = append(c.aliases, Alias{Text: norm, Field: f})
	}
}

// addAlias registers one extra spelling for an already-registered field.
// Used by overlay loading; enforces the same uniqueness invariant but
// returns an error instead of panicking, since overlay data is user input.
func (c *Catalog) addAlias(name FieldName, spelling string) error {
	f, ok := c.byName[name]
	if !ok {
		return fmt.Errorf("unknown canonical field %q", name)
	}
	norm := NormalizeHeader(spelling)
	if norm == "" {
		return fmt.Errorf("alias %q normalizes to empty", spelling)
	}
	if owner, dup := c.byAlias[norm]; dup {
		if owner == f {
			return nil
		}
		return fmt.Errorf("alias %q already claimed by %s", norm, owner.Name)
	}
	c.byAlias[norm] = f
	c.aliases = append(c.aliases, Alias{Text: norm, Field: f})
	return nil
}
