// Package refdata loads and builds the `|`-separated reference datasets that
// map species names to conservation-status attributes.
package refdata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

// Delimiter separates fields in reference and legend files.
const Delimiter = '|'

// Table is a header plus rows of string values, in file order.
type Table struct {
	Source string
	Header []string
	Rows   [][]string
	cols   map[string]int
}

// NewTable builds a table, padding or truncating rows to the header width.
func NewTable(source string, header []string, rows [][]string) *Table {
	t := &Table{Source: source, Header: header, cols: make(map[string]int, len(header))}
	for i, h := range header {
		if _, dup := t.cols[h]; !dup {
			t.cols[h] = i
		}
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, fit(r, len(header)))
	}
	return t
}

func fit(row []string, n int) []string {
	out := make([]string, n)
	copy(out, row)
	return out
}

// Column returns the index of a named column.
func (t *Table) Column(name string) (int, bool) {
	i, ok := t.cols[name]
	return i, ok
}

// Require returns a *SchemaError listing every column absent from the table.
func (t *Table) Require(cols ...string) error {
	var missing []string
	for _, c := range cols {
		if _, ok := t.cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Source: t.Source, Missing: missing}
	}
	return nil
}

// Load reads a reference file. A missing file yields *ReferenceMissingError.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &ReferenceMissingError{Path: path, Err: err}
		}
		return nil, fmt.Errorf("open reference: %w", err)
	}
	defer f.Close()
	return Parse(path, f)
}

// Parse reads a `|`-separated table with a header row from r.
func Parse(source string, r io.Reader) (*Table, error) {
	return ParseWith(source, r, Delimiter)
}

// ParseWith reads a delimited table with a header row from r. Blank rows are
// skipped.
func ParseWith(source string, r io.Reader, comma rune) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &SchemaError{Source: source}
		}
		return nil, fmt.Errorf("read header of %s: %w", source, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}
	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", source, err)
		}
		if blank(rec) {
			continue
		}
		rows = append(rows, rec)
	}
	return NewTable(source, header, rows), nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Record is one reference row addressed by column name.
type Record struct {
	Name   string
	values []string
	t      *Table
}

// Get returns the value of column col; ok is false when the column is unknown.
func (r Record) Get(col string) (string, bool) {
	i, ok := r.t.Column(col)
	if !ok {
		return "", false
	}
	return r.values[i], true
}

// Index maps key values to records. Keys are matched exactly.
type Index struct {
	records map[string]Record
	// Duplicates lists keys that occurred more than once; the first row wins.
	Duplicates []string
}

// Index builds a lookup on the key column.
func (t *Table) Index(key string) (*Index, error) {
	if err := t.Require(key); err != nil {
		return nil, err
	}
	k := t.cols[key]
	ix := &Index{records: make(map[string]Record, len(t.Rows))}
	for _, row := range t.Rows {
		name := row[k]
		if name == "" {
			continue
		}
		if _, dup := ix.records[name]; dup {
			ix.Duplicates = append(ix.Duplicates, name)
			continue
		}
		ix.records[name] = Record{Name: name, values: row, t: t}
	}
	return ix, nil
}

// Lookup returns the record for name.
func (ix *Index) Lookup(name string) (Record, bool) {
	r, ok := ix.records[name]
	return r, ok
}

// Len returns the number of distinct keys.
func (ix *Index) Len() int { return len(ix.records) }
