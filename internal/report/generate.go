package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/redlist-cli/internal/docx"
	"github.com/KaramelBytes/redlist-cli/internal/features"
	"github.com/KaramelBytes/redlist-cli/internal/logging"
	"github.com/KaramelBytes/redlist-cli/internal/refdata"
	"github.com/KaramelBytes/redlist-cli/internal/render"
	"github.com/KaramelBytes/redlist-cli/internal/species"
	"github.com/KaramelBytes/redlist-cli/internal/variant"
)

// Options configures one report run.
type Options struct {
	Variant variant.Variant
	// ReferenceDir holds the variant's reference and legend files.
	ReferenceDir string
	// Field overrides the variant's identity field when set.
	Field string
}

// Result is a fully built report, ready to be saved.
type Result struct {
	Document *docx.Document
	Table    *Table
	Main     *docx.Table
	Legend   *docx.Table
	// Filled counts main-table cells that received a fill color.
	Filled int
}

// Generate runs the report pipeline for one layer: resolve species, load the
// reference data, join, render, color, format and append the legend. All
// inputs are loaded before the document is built.
func Generate(ctx context.Context, layer features.Collection, opt Options) (*Result, error) {
	log := logging.From(ctx)
	v := opt.Variant
	rules, err := v.RuleSet()
	if err != nil {
		return nil, fmt.Errorf("variant %s: %w", v.Name, err)
	}
	field := v.IdentityField
	if opt.Field != "" {
		field = opt.Field
	}

	set, err := species.Resolve(layer, field)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("layer", layer.Name()).Str("field", field).Int("species", set.Len()).Msg("resolved species")

	refPath := filepath.Join(opt.ReferenceDir, v.ReferenceFile)
	ref, err := refdata.Load(refPath)
	if err != nil {
		return nil, err
	}
	legend, err := LoadLegend(opt.ReferenceDir, v)
	if err != nil {
		return nil, err
	}

	table, err := Join(set, ref, v)
	if err != nil {
		return nil, err
	}
	for _, d := range table.Duplicates {
		log.Warn().Str("name", d).Str("reference", refPath).Msg("duplicate reference record ignored")
	}
	for _, m := range table.Misses {
		log.Warn().Str("species", m).Msg("no reference record")
	}

	doc := docx.New()
	doc.Title = v.Title
	doc.SetHeader(v.Title)
	main := render.Table(doc, table.Grid(), v.Width)
	filled := rules.Apply(main, 0)
	render.FormatMainTable(main, v.HeaderFontSize)

	res := &Result{Document: doc, Table: table, Main: main, Filled: filled}
	if legend != nil {
		lt, err := render.Legend(doc, legend, v.Legend, rules)
		if err != nil {
			return nil, err
		}
		res.Legend = lt
	}
	log.Info().
		Str("variant", v.Name).
		Int("rows", len(table.Rows)).
		Int("misses", len(table.Misses)).
		Int("filled", filled).
		Msg("report built")
	return res, nil
}

// LoadLegend reads the variant's legend file from refDir, falling back to the
// built-in legend. It returns nil when the variant has no legend.
func LoadLegend(refDir string, v variant.Variant) (*refdata.Table, error) {
	if v.Legend.File == "" {
		return nil, nil
	}
	path := filepath.Join(refDir, v.Legend.File)
	t, err := refdata.Load(path)
	if err == nil {
		return t, nil
	}
	var missing *refdata.ReferenceMissingError
	if !errors.As(err, &missing) {
		return nil, err
	}
	b, ok := v.BuiltinLegend()
	if !ok {
		return nil, err
	}
	return refdata.Parse(v.Legend.File, bytes.NewReader(b))
}

// Save writes the document to path. The parent directory must exist.
func (r *Result) Save(path string) error {
	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("output directory %s does not exist", dir)
	}
	return r.Document.Save(path)
}
