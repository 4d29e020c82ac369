package refdata

import (
	"fmt"
	"strings"
)

// SchemaError indicates a data source lacks expected columns or attributes,
// or that spreadsheets being consolidated disagree on their header.
type SchemaError struct {
	// Source names the file, layer or table that was inspected.
	Source  string
	Missing []string
	// Extra lists unexpected columns (header mismatch during a build).
	Extra []string
}

func (e *SchemaError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+quoteAll(e.Missing))
	}
	if len(e.Extra) > 0 {
		parts = append(parts, "unexpected "+quoteAll(e.Extra))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("schema error in %s", e.Source)
	}
	return fmt.Sprintf("schema error in %s: %s", e.Source, strings.Join(parts, "; "))
}

// ReferenceMissingError indicates the reference dataset file was not found.
type ReferenceMissingError struct {
	Path string
	Err  error
}

func (e *ReferenceMissingError) Error() string {
	return fmt.Sprintf("reference data not found at %s (run `redlist reference build` first)", e.Path)
}

func (e *ReferenceMissingError) Unwrap() error { return e.Err }

func quoteAll(ss []string) string {
	q := make([]string, len(ss))
	for i, s := range ss {
		q[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(q, ", ")
}
