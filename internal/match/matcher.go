// Package match resolves a file's raw header row against the alias catalog,
// producing the header resolution map the import engine decodes rows with.
//
// Resolution is a two-pass process. Exact (normalized) catalog hits are
// final. Remaining headers are scored against every alias with a normalized
// edit distance; a candidate is accepted at similarity ≥ the threshold
// (0.70 by default). All tie-breaks are deterministic, so the same header
// row always yields the same resolution.
package match

import (
	"fmt"
	"sort"

	"github.com/invoiceflow/importer/internal/catalog"
	"github.com/invoiceflow/importer/internal/invoice"
)

// DefaultThreshold is the minimum similarity for a fuzzy header match.
const DefaultThreshold = 0.70

// Column records how one raw header resolved.
type Column struct {
	Index  int
	Header string         // raw header text
	Field  *catalog.Field // nil when unresolved
	Alias  string         // normalized alias that matched
	Score  float64        // 1 for exact hits
	Exact  bool
}

// Resolved reports whether the column maps to a canonical field.
func (c Column) Resolved() bool { return c.Field != nil }

// Resolution is the immutable header resolution map for one file.
type Resolution struct {
	Columns  []Column
	Warnings []invoice.Warning

	byField map[catalog.FieldName][]int
}

// ColumnsFor returns the column indexes claimed by a field, in file order.
// Invoice-level fields have at most one; line-item fields may have several
// when a source format repeats item columns.
func (r *Resolution) ColumnsFor(name catalog.FieldName) []int {
	return r.byField[name]
}

// ColumnFor returns the first column claimed by a field.
func (r *Resolution) ColumnFor(name catalog.FieldName) (int, bool) {
	cols := r.byField[name]
	if len(cols) == 0 {
		return 0, false
	}
	return cols[0], true
}

// ResolvedFields returns the set of canonical fields claimed by any column.
func (r *Resolution) ResolvedFields() map[catalog.FieldName]bool {
	out := make(map[catalog.FieldName]bool, len(r.byField))
	for name := range r.byField {
		out[name] = true
	}
	return out
}

// Matcher resolves header rows against a catalog.
type Matcher struct {
	catalog   *catalog.Catalog
	threshold float64
}

// New returns a matcher over the given catalog. A non-positive threshold
// falls back to DefaultThreshold.
func New(c *catalog.Catalog, threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Matcher{catalog: c, threshold: threshold}
}

// candidate is a header's best fuzzy alias before conflict resolution.
type candidate struct {
	col   int
	alias catalog.Alias
	score float64
}

// Resolve builds the resolution map for one header row.
func (m *Matcher) Resolve(headers []string) *Resolution {
	res := &Resolution{
		Columns: make([]Column, len(headers)),
		byField: make(map[catalog.FieldName][]int),
	}

	claimed := make(map[catalog.FieldName]int) // field -> winning column

	// Pass 1: exact hits are final and not subject to override.
	var fuzzyCols []int
	for i, h := range headers {
		res.Columns[i] = Column{Index: i, Header: h}

		norm := catalog.NormalizeHeader(h)
		if norm == "" {
			res.warn(invoice.SeverityInfo, "", fmt.Sprintf("column %d has an empty header and was ignored", i+1))
			continue
		}

		f, ok := m.catalog.ResolveExact(h)
		if !ok {
			fuzzyCols = append(fuzzyCols, i)
			continue
		}

		if f.Scope == catalog.ScopeInvoice {
			if prev, dup := claimed[f.Name]; dup {
				// Two exact hits on one invoice-level field: first in file
				// order wins, the duplicate is ignored with a warning.
				res.warn(invoice.SeverityInfo, string(f.Name),
					fmt.Sprintf("column %q duplicates %q; keeping the first", h, headers[prev]))
				continue
			}
			claimed[f.Name] = i
		}
		res.claim(i, f, norm, 1, true)
	}

	// Pass 2: score every remaining header against every alias.
	var candidates []candidate
	for _, i := range fuzzyCols {
		if cand, ok := m.bestAlias(headers[i], claimed); ok {
			candidates = append(candidates, candidate{col: i, alias: cand.alias, score: cand.score})
		} else {
			res.warn(invoice.SeverityInfo, "",
				fmt.Sprintf("unrecognized column %q; its values will be ignored", headers[i]))
		}
	}

	// Conflict resolution: when two fuzzy columns want the same
	// invoice-level field, the higher similarity wins; ties go to the
	// earlier column.
	sort.SliceStable(candidates, func(a, b int) bool {
		if candidates[a].score != candidates[b].score {
			return candidates[a].score > candidates[b].score
		}
		return candidates[a].col < candidates[b].col
	})

	for _, cand := range candidates {
		f := cand.alias.Field
		if f.Scope == catalog.ScopeInvoice {
			if prev, dup := claimed[f.Name]; dup {
				res.warn(invoice.SeverityInfo, string(f.Name),
					fmt.Sprintf("column %q also matched %s (claimed by %q with a closer match); ignored",
						headers[cand.col], f.Name, headers[prev]))
				continue
			}
			claimed[f.Name] = cand.col
		}
		res.claim(cand.col, f, cand.alias.Text, cand.score, false)
	}

	// Claims were appended in score order; callers expect file order.
	for name := range res.byField {
		sort.Ints(res.byField[name])
	}

	return res
}

// scored pairs an alias with its similarity to one header.
type scored struct {
	alias catalog.Alias
	score float64
}

// bestAlias finds the highest-similarity alias for a header, or reports no
// candidate when nothing reaches the threshold. Ties between equal scores
// prefer (in order): a field no other column has claimed, the shorter
// alias, catalog declaration order.
func (m *Matcher) bestAlias(header string, claimed map[catalog.FieldName]int) (scored, bool) {
	norm := catalog.NormalizeHeader(header)

	var best scored
	found := false

	for _, a := range m.catalog.Aliases() {
		s := similarity(norm, a.Text)
		if s < m.threshold {
			continue
		}
		if !found || better(scored{a, s}, best, claimed) {
			best = scored{alias: a, score: s}
			found = true
		}
	}

	return best, found
}

// better reports whether candidate x beats the current best y.
func better(x, y scored, claimed map[catalog.FieldName]int) bool {
	if x.score != y.score {
		return x.score > y.score
	}
	_, xClaimed := claimed[x.alias.Field.Name]
	_, yClaimed := claimed[y.alias.Field.Name]
	if xClaimed != yClaimed {
		return !xClaimed
	}
	if len(x.alias.Text) != len(y.alias.Text) {
		return len(x.alias.Text) < len(y.alias.Text)
	}
	// Catalog order: Aliases() iterates in declaration order and y was seen
	// first, so y wins.
	return false
}

func (r *Resolution) claim(col int, f *catalog.Field, alias string, score float64, exact bool) {
	r.Columns[col].Field = f
	r.Columns[col].Alias = alias
	r.Columns[col].Score = score
	r.Columns[col].Exact = exact
	r.byField[f.Name] = append(r.byField[f.Name], col)
}

func (r *Resolution) warn(sev invoice.Severity, field, msg string) {
	r.Warnings = append(r.Warnings, invoice.Warning{Field: field, Message: msg, Severity: sev})
}
