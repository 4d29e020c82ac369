// Package features reads attribute tables of geographic feature layers
// (GeoPackage, GeoJSON, CSV/XLSX exports) behind a minimal read-only interface.
package features

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Feature is one record of a layer, queryable by field name.
type Feature interface {
	// Value returns the attribute value; nil means NULL. ok is false when
	// the field does not exist.
	Value(field string) (v any, ok bool)
}

// Collection is a read-only feature layer.
type Collection interface {
	Name() string
	// Fields returns the attribute schema in layer order.
	Fields() []string
	// Scan calls fn for every feature until fn returns an error.
	Scan(fn func(Feature) error) error
}

// Opener opens a layer file of a particular format.
type Opener interface {
	CanOpen(path string) bool
	Open(path, layer string) (Collection, error)
}

var registry []Opener

// Register adds an opener to the registry.
func Register(o Opener) {
	registry = append(registry, o)
}

// ErrUnsupported indicates no opener accepts the file.
var ErrUnsupported = errors.New("unsupported feature layer format")

// Open selects an opener by file name. layer picks a table or sheet where the
// format has several; empty selects the first.
func Open(path, layer string) (Collection, error) {
	for _, o := range registry {
		if o.CanOpen(path) {
			return o.Open(path, layer)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
}

func init() {
	Register(gpkgOpener{})
	Register(geojsonOpener{})
	Register(csvOpener{})
	Register(xlsxOpener{})
}

// Memory is an in-memory Collection.
type Memory struct {
	name   string
	fields []string
	rows   []map[string]any
}

// NewMemory builds a collection from rows keyed by field name.
func NewMemory(name string, fields []string, rows []map[string]any) *Memory {
	return &Memory{name: name, fields: fields, rows: rows}
}

func (m *Memory) Name() string     { return m.name }
func (m *Memory) Fields() []string { return m.fields }

func (m *Memory) Scan(fn func(Feature) error) error {
	for _, r := range m.rows {
		if err := fn(record(r)); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of features.
func (m *Memory) Len() int { return len(m.rows) }

type record map[string]any

func (r record) Value(field string) (any, bool) {
	v, ok := r[field]
	return v, ok
}
