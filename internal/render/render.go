// Package render lays out report and legend tables in a docx document and
// applies their text formatting.
package render

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/redlist-cli/internal/colorrule"
	"github.com/KaramelBytes/redlist-cli/internal/docx"
	"github.com/KaramelBytes/redlist-cli/internal/refdata"
	"github.com/KaramelBytes/redlist-cli/internal/variant"
)

// TableStyle is the bordered table style used for both tables.
const TableStyle = "TableGrid"

// Grid is a header plus data rows of display strings.
type Grid struct {
	Columns []string
	Rows    [][]string
}

// Table appends a (len(g.Rows)+1) x len(g.Columns) table. Row 0 holds the
// column labels and is flagged as the header row; width gives the static
// width of each column in centimetres.
func Table(doc *docx.Document, g Grid, width func(col int) float64) *docx.Table {
	t := doc.AddTable(len(g.Rows)+1, len(g.Columns))
	t.Style = TableStyle
	t.Rows[0].Header = true
	for j, c := range g.Columns {
		t.Cell(0, j).SetText(c)
		if width != nil {
			t.SetColumnWidth(j, width(j))
		}
	}
	for i, row := range g.Rows {
		for j := range g.Columns {
			if j < len(row) {
				t.Cell(i+1, j).SetText(row[j])
			}
		}
	}
	return t
}

// FormatMainTable makes the header row bold at size points and centers every
// paragraph. Applying it twice has no further effect.
func FormatMainTable(t *docx.Table, size float64) {
	for _, row := range t.Rows {
		for _, c := range row.Cells {
			for _, p := range c.Paragraphs {
				p.Align = docx.AlignCenter
				if !row.Header {
					continue
				}
				for _, r := range p.Runs {
					r.Bold = true
					r.Size = size
				}
			}
		}
	}
}

// Legend appends a blank spacer paragraph and the legend table built from
// the static legend dataset. Header cells are merged into the configured
// groups; empty or "-" values render as empty cells. With cfg.Colored the
// rule set is applied to the data rows.
func Legend(doc *docx.Document, legend *refdata.Table, cfg variant.Legend, rules *colorrule.Set) (*docx.Table, error) {
	cols := len(legend.Header)
	if err := variant.CheckGroups(cfg.Groups, cols); err != nil {
		return nil, fmt.Errorf("%s: %w", legend.Source, err)
	}

	doc.AddParagraph("")
	t := doc.AddTable(len(legend.Rows)+1, cols)
	t.Style = TableStyle
	t.Align = docx.AlignCenter
	t.Fixed = true
	t.Rows[0].Header = true
	for j, h := range legend.Header {
		t.Cell(0, j).SetText(h)
		t.SetColumnWidth(j, cfg.Width)
	}
	for i, row := range legend.Rows {
		for j, v := range row {
			if blankLegendValue(v) {
				continue
			}
			t.Cell(i+1, j).SetText(v)
		}
	}
	for _, g := range cfg.Groups {
		c, err := t.Merge(0, g.Start, g.Start+g.Span-1)
		if err != nil {
			return nil, fmt.Errorf("legend group %q: %w", g.Label, err)
		}
		c.SetText(g.Label)
	}
	if cfg.Colored {
		rules.Apply(t, 1)
	}
	formatLegend(t, cfg.FontSize)
	return t, nil
}

func blankLegendValue(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || v == "-"
}

func formatLegend(t *docx.Table, size float64) {
	for _, row := range t.Rows {
		for _, c := range row.Cells {
			for _, p := range c.Paragraphs {
				p.Align = docx.AlignCenter
				for _, r := range p.Runs {
					r.Size = size
					r.Bold = row.Header
				}
			}
		}
	}
}
