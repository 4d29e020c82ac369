// Package report joins resolved species against reference data and
// assembles the report document.
package report

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/KaramelBytes/redlist-cli/internal/refdata"
	"github.com/KaramelBytes/redlist-cli/internal/render"
	"github.com/KaramelBytes/redlist-cli/internal/species"
	"github.com/KaramelBytes/redlist-cli/internal/variant"
)

// Row is one species with its display values, one per column.
type Row struct {
	Name   string
	Values []string
}

// Table is the joined report, sorted by name.
type Table struct {
	Columns []string
	Rows    []Row
	// Misses lists species without a reference record, sorted.
	Misses []string
	// Duplicates lists the species of this run whose reference key occurred
	// more than once.
	Duplicates []string
}

// Join left-joins every species in set against ref on the variant's key
// column. Matching is exact. Species without a record keep their name in the
// key column and the placeholder everywhere else; empty reference values are
// replaced by the placeholder too. Column labels are title-cased.
func Join(set species.Set, ref *refdata.Table, v variant.Variant) (*Table, error) {
	if err := ref.Require(v.Columns...); err != nil {
		return nil, err
	}
	ix, err := ref.Index(v.KeyColumn)
	if err != nil {
		return nil, err
	}
	title := cases.Title(language.German)
	t := &Table{Columns: make([]string, len(v.Columns))}
	for _, d := range ix.Duplicates {
		if set.Has(d) {
			t.Duplicates = append(t.Duplicates, d)
		}
	}
	for i, c := range v.Columns {
		t.Columns[i] = title.String(c)
	}

	for _, name := range set.Sorted() {
		row := Row{Name: name, Values: make([]string, len(v.Columns))}
		row.Values[0] = name
		rec, ok := ix.Lookup(name)
		if !ok {
			t.Misses = append(t.Misses, name)
		}
		for i, c := range v.Columns[1:] {
			val := ""
			if ok {
				val, _ = rec.Get(c)
			}
			if val == "" {
				val = v.Placeholder
			}
			row.Values[i+1] = val
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// Grid returns the table as a header plus rows of display strings.
func (t *Table) Grid() render.Grid {
	g := render.Grid{Columns: t.Columns, Rows: make([][]string, len(t.Rows))}
	for i, r := range t.Rows {
		g.Rows[i] = r.Values
	}
	return g
}
