package render_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/redlist-cli/internal/colorrule"
	"github.com/KaramelBytes/redlist-cli/internal/docx"
	"github.com/KaramelBytes/redlist-cli/internal/refdata"
	"github.com/KaramelBytes/redlist-cli/internal/render"
	"github.com/KaramelBytes/redlist-cli/internal/variant"
)

func faunaVariant(t *testing.T) variant.Variant {
	t.Helper()
	r, err := variant.Builtin()
	require.NoError(t, err)
	v, err := r.Get("fauna")
	require.NoError(t, err)
	return v
}

func TestTableLayout(t *testing.T) {
	v := faunaVariant(t)
	doc := docx.New()
	g := render.Grid{
		Columns: []string{"Name", "Deutscher Name", "Rl Kat."},
		Rows:    [][]string{{"Lynx lynx", "Luchs", "1"}, {"Vulpes vulpes", "Rotfuchs", "*"}},
	}
	tbl := render.Table(doc, g, v.Width)

	require.Len(t, tbl.Rows, 3)
	assert.Equal(t, 3, tbl.Cols())
	assert.True(t, tbl.Rows[0].Header)
	assert.False(t, tbl.Rows[1].Header)
	assert.Equal(t, "Deutscher Name", tbl.Cell(0, 1).Text())
	assert.Equal(t, "Vulpes vulpes", tbl.Cell(2, 0).Text())
	assert.Equal(t, []float64{4, 4, 2.5}, tbl.Widths)
	assert.Equal(t, render.TableStyle, tbl.Style)
}

func TestTableHeaderOnly(t *testing.T) {
	doc := docx.New()
	tbl := render.Table(doc, render.Grid{Columns: []string{"Name", "Rl Kat."}}, nil)
	assert.Len(t, tbl.Rows, 1)
}

func TestFormatMainTableIsIdempotent(t *testing.T) {
	doc := docx.New()
	tbl := render.Table(doc, render.Grid{
		Columns: []string{"Name", "Deutscher Name"},
		Rows:    [][]string{{"Deutscher Name", "x"}},
	}, nil)
	render.FormatMainTable(tbl, 12)
	once := snapshot(tbl)
	render.FormatMainTable(tbl, 12)
	assert.Equal(t, once, snapshot(tbl))

	for _, r := range tbl.Cell(0, 0).Runs() {
		assert.True(t, r.Bold)
		assert.Equal(t, 12.0, r.Size)
	}
	// a data cell whose text equals a header label is not treated as header
	for _, r := range tbl.Cell(1, 0).Runs() {
		assert.False(t, r.Bold)
	}
	for _, row := range tbl.Rows {
		for _, c := range row.Cells {
			for _, p := range c.Paragraphs {
				assert.Equal(t, docx.AlignCenter, p.Align)
			}
		}
	}
}

func snapshot(t *docx.Table) []string {
	var out []string
	for _, row := range t.Rows {
		for _, c := range row.Cells {
			for _, p := range c.Paragraphs {
				for _, r := range p.Runs {
					out = append(out, p.Text()+"|"+string(p.Align)+"|"+boolStr(r.Bold))
				}
			}
		}
	}
	return out
}

func boolStr(b bool) string {
	if b {
		return "b"
	}
	return ""
}

func faunaLegend(t *testing.T, v variant.Variant) *refdata.Table {
	t.Helper()
	b, ok := v.BuiltinLegend()
	require.True(t, ok)
	tbl, err := refdata.Parse(v.Legend.File, strings.NewReader(string(b)))
	require.NoError(t, err)
	return tbl
}

func TestLegendMergesAndFormats(t *testing.T) {
	v := faunaVariant(t)
	rules, err := v.RuleSet()
	require.NoError(t, err)
	legend := faunaLegend(t, v)

	doc := docx.New()
	lt, err := render.Legend(doc, legend, v.Legend, rules)
	require.NoError(t, err)

	require.Len(t, doc.Body, 2, "spacer paragraph and legend table")
	spacer, ok := doc.Body[0].(*docx.Paragraph)
	require.True(t, ok)
	assert.Empty(t, spacer.Text())

	header := lt.VisibleCells(0)
	require.Len(t, header, 4)
	labels := make([]string, len(header))
	for i, c := range header {
		labels[i] = c.Text()
		assert.Equal(t, 2, c.Span())
	}
	assert.Equal(t, []string{"Rote Liste Status", "Aktuelle Bestandssituation", "Bestandstrend langfristig", "Bestandstrend kurzfristig"}, labels)

	assert.Len(t, lt.Rows, len(legend.Rows)+1)
	assert.Equal(t, docx.AlignCenter, lt.Align)
	assert.True(t, lt.Fixed)
	for _, w := range lt.Widths {
		assert.Equal(t, 1.75, w)
	}
	for i, row := range lt.Rows {
		for _, c := range row.Cells {
			for _, r := range c.Runs() {
				assert.Equal(t, 6.0, r.Size)
				assert.Equal(t, i == 0, r.Bold)
			}
		}
	}

	// "-" placeholders render empty
	last := lt.Rows[len(lt.Rows)-1]
	assert.Equal(t, "♦", last.Cells[0].Text())
	assert.Empty(t, last.Cells[2].Text())
	// legend codes carry the colors they explain
	assert.Equal(t, "9EDD23", last.Cells[0].Fill)
	assert.Empty(t, last.Cells[1].Fill)
}

func TestLegendRenderingIsStable(t *testing.T) {
	v := faunaVariant(t)
	rules, err := v.RuleSet()
	require.NoError(t, err)
	legend := faunaLegend(t, v)

	layout := func() []string {
		doc := docx.New()
		lt, err := render.Legend(doc, legend, v.Legend, rules)
		require.NoError(t, err)
		var out []string
		for _, c := range lt.VisibleCells(0) {
			out = append(out, c.Text()+"/"+string(rune('0'+c.Span())))
		}
		return out
	}
	assert.Equal(t, layout(), layout())
}

func TestLegendRejectsGroupOutsideColumns(t *testing.T) {
	legend := refdata.NewTable("legend.csv", []string{"A", "B"}, [][]string{{"1", "x"}})
	cfg := variant.Legend{Width: 1.75, FontSize: 6, Groups: []variant.Group{{Start: 1, Span: 2, Label: "zu breit"}}}
	doc := docx.New()
	_, err := render.Legend(doc, legend, cfg, nil)
	assert.Error(t, err)
	assert.Empty(t, doc.Body)

	cfg.Groups = []variant.Group{{Start: 0, Span: 2, Label: "a"}, {Start: 1, Span: 2, Label: "b"}}
	legend = refdata.NewTable("legend.csv", []string{"A", "B", "C"}, nil)
	doc = docx.New()
	_, err = render.Legend(doc, legend, cfg, nil)
	assert.Error(t, err, "overlapping groups")
	assert.Empty(t, doc.Body, "document left untouched")
}

func TestLegendUncolored(t *testing.T) {
	rules, err := colorrule.New([]colorrule.Rule{{Text: "1", Fill: "#80c902"}})
	require.NoError(t, err)
	legend := refdata.NewTable("legend.csv", []string{"Kat", "Text"}, [][]string{{"1", "bedroht"}})
	lt, err := render.Legend(docx.New(), legend, variant.Legend{Width: 2, FontSize: 6}, rules)
	require.NoError(t, err)
	assert.Empty(t, lt.Cell(1, 0).Fill)
	assert.Equal(t, "Kat", lt.Cell(0, 0).Text())
}
