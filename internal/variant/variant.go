// Package variant describes report variants (fauna, flora) as data: column
// schema, color rules, width policy and legend layout.
package variant

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/redlist-cli/internal/colorrule"
)

//go:embed builtin/*.yaml builtin/*.csv
var builtinFS embed.FS

// ErrUnknownVariant is returned by Registry.Get for unregistered names.
var ErrUnknownVariant = errors.New("unknown report variant")

const defaultPlaceholder = "-"

// Group merges Span header cells of the legend starting at column Start.
type Group struct {
	Start int    `yaml:"start"`
	Span  int    `yaml:"span"`
	Label string `yaml:"label"`
}

// Legend configures the legend table appended after the main table.
type Legend struct {
	File     string  `yaml:"file"`
	Groups   []Group `yaml:"groups"`
	Width    float64 `yaml:"width"`
	FontSize float64 `yaml:"font_size"`
	// Colored applies the variant's color rules to legend data rows.
	Colored bool `yaml:"colored"`
}

// Variant is one report flavour.
type Variant struct {
	Name  string `yaml:"name"`
	Title string `yaml:"title"`
	// IdentityField is the feature attribute holding the species name.
	IdentityField string `yaml:"identity_field"`
	// KeyColumn is the reference column the species name is matched against.
	KeyColumn     string   `yaml:"key_column"`
	ReferenceFile string   `yaml:"reference_file"`
	Columns       []string `yaml:"columns"`
	Placeholder   string   `yaml:"placeholder"`
	// Widths in centimetres for the leading columns; DefaultWidth for the rest.
	Widths         []float64        `yaml:"widths"`
	DefaultWidth   float64          `yaml:"default_width"`
	HeaderFontSize float64          `yaml:"header_font_size"`
	Rules          []colorrule.Rule `yaml:"rules"`
	Legend         Legend           `yaml:"legend"`
}

// Width returns the configured width of column i in centimetres.
func (v Variant) Width(i int) float64 {
	if i < len(v.Widths) {
		return v.Widths[i]
	}
	return v.DefaultWidth
}

// RuleSet builds the variant's color rule set.
func (v Variant) RuleSet() (*colorrule.Set, error) {
	return colorrule.New(v.Rules)
}

// Validate checks the variant for configuration errors.
func (v Variant) Validate() error {
	if v.Name == "" {
		return errors.New("variant name is required")
	}
	if v.IdentityField == "" {
		return fmt.Errorf("variant %s: identity_field is required", v.Name)
	}
	if len(v.Columns) == 0 {
		return fmt.Errorf("variant %s: columns are required", v.Name)
	}
	if v.Columns[0] != v.KeyColumn {
		return fmt.Errorf("variant %s: first column %q must be the key column %q", v.Name, v.Columns[0], v.KeyColumn)
	}
	seen := make(map[string]bool, len(v.Columns))
	for _, c := range v.Columns {
		if seen[c] {
			return fmt.Errorf("variant %s: duplicate column %q", v.Name, c)
		}
		seen[c] = true
	}
	if v.ReferenceFile == "" {
		return fmt.Errorf("variant %s: reference_file is required", v.Name)
	}
	for _, w := range append(append([]float64{}, v.Widths...), v.DefaultWidth, v.Legend.Width) {
		if w < 0 {
			return fmt.Errorf("variant %s: negative column width %v", v.Name, w)
		}
	}
	if _, err := v.RuleSet(); err != nil {
		return fmt.Errorf("variant %s: %w", v.Name, err)
	}
	if err := CheckGroups(v.Legend.Groups, 0); err != nil {
		return fmt.Errorf("variant %s: %w", v.Name, err)
	}
	return nil
}

// CheckGroups validates legend merge groups: each spans at least two columns
// from a non-negative start and no two overlap. With cols > 0 every group must
// also end inside the first cols columns.
func CheckGroups(groups []Group, cols int) error {
	sorted := append([]Group(nil), groups...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
	end := 0
	for i, g := range sorted {
		if g.Start < 0 || g.Span < 2 {
			return fmt.Errorf("invalid legend group %+v", g)
		}
		if cols > 0 && g.Start+g.Span > cols {
			return fmt.Errorf("legend group %q spans columns %d..%d of %d", g.Label, g.Start, g.Start+g.Span-1, cols)
		}
		if i > 0 && g.Start < end {
			return fmt.Errorf("legend group %q overlaps %q", g.Label, sorted[i-1].Label)
		}
		end = g.Start + g.Span
	}
	return nil
}

func (v *Variant) applyDefaults() {
	if v.Placeholder == "" {
		v.Placeholder = defaultPlaceholder
	}
	if v.KeyColumn == "" && len(v.Columns) > 0 {
		v.KeyColumn = v.Columns[0]
	}
	if v.HeaderFontSize == 0 {
		v.HeaderFontSize = 12
	}
	if v.Legend.Width == 0 {
		v.Legend.Width = 1.75
	}
	if v.Legend.FontSize == 0 {
		v.Legend.FontSize = 6
	}
}

// BuiltinLegend returns the embedded legend dataset for the variant, if any.
func (v Variant) BuiltinLegend() ([]byte, bool) {
	if v.Legend.File == "" {
		return nil, false
	}
	b, err := builtinFS.ReadFile("builtin/" + v.Legend.File)
	if err != nil {
		return nil, false
	}
	return b, true
}

// Parse decodes a YAML list of variants, applies defaults and validates each.
func Parse(b []byte) ([]Variant, error) {
	var vs []Variant
	if err := yaml.Unmarshal(b, &vs); err != nil {
		return nil, fmt.Errorf("parse variants: %w", err)
	}
	for i := range vs {
		vs[i].applyDefaults()
		if err := vs[i].Validate(); err != nil {
			return nil, err
		}
	}
	return vs, nil
}

// Registry holds variants by name.
type Registry struct {
	variants map[string]Variant
}

// Builtin returns a registry with the embedded fauna and flora variants.
func Builtin() (*Registry, error) {
	b, err := builtinFS.ReadFile("builtin/variants.yaml")
	if err != nil {
		return nil, fmt.Errorf("read builtin variants: %w", err)
	}
	vs, err := Parse(b)
	if err != nil {
		return nil, err
	}
	r := &Registry{variants: make(map[string]Variant, len(vs))}
	for _, v := range vs {
		r.variants[v.Name] = v
	}
	return r, nil
}

// LoadFile adds the variants from a YAML file, replacing same-named ones.
func (r *Registry) LoadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read variants file: %w", err)
	}
	vs, err := Parse(b)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	for _, v := range vs {
		r.variants[v.Name] = v
	}
	return nil
}

// Get returns the named variant.
func (r *Registry) Get(name string) (Variant, error) {
	v, ok := r.variants[name]
	if !ok {
		return Variant{}, fmt.Errorf("%w: %q (available: %v)", ErrUnknownVariant, name, r.Names())
	}
	return v, nil
}

// Names returns the registered variant names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.variants))
	for n := range r.variants {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Marshal renders a variant as YAML.
func Marshal(v Variant) ([]byte, error) {
	return yaml.Marshal([]Variant{v})
}
