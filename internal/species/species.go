// Package species extracts the distinct species names of a feature layer.
package species

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/KaramelBytes/redlist-cli/internal/features"
	"github.com/KaramelBytes/redlist-cli/internal/refdata"
)

// Set is an unordered set of species names.
type Set map[string]struct{}

// NewSet returns a set holding names.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Len returns the number of names.
func (s Set) Len() int { return len(s) }

// Has reports whether name is in the set.
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the names in ascending byte order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Resolve returns the distinct non-null values of field across all features.
// NULLs and blank strings are skipped; values are otherwise kept verbatim.
// A field absent from the layer schema yields *refdata.SchemaError.
func Resolve(c features.Collection, field string) (Set, error) {
	found := false
	for _, f := range c.Fields() {
		if f == field {
			found = true
			break
		}
	}
	if !found {
		return nil, &refdata.SchemaError{Source: c.Name(), Missing: []string{field}}
	}
	set := Set{}
	err := c.Scan(func(f features.Feature) error {
		v, ok := f.Value(field)
		if !ok {
			return &refdata.SchemaError{Source: c.Name(), Missing: []string{field}}
		}
		if name, ok := text(v); ok {
			set[name] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

func text(v any) (string, bool) {
	var s string
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		s = t
	case []byte:
		s = string(t)
	case json.Number:
		s = t.String()
	default:
		s = fmt.Sprint(t)
	}
	if strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}
