package report_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/redlist-cli/internal/docx"
	"github.com/KaramelBytes/redlist-cli/internal/features"
	"github.com/KaramelBytes/redlist-cli/internal/refdata"
	"github.com/KaramelBytes/redlist-cli/internal/report"
)

func refDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fauna.csv"), []byte(faunaCSV), 0o644))
	return dir
}

func layer(names ...any) features.Collection {
	rows := make([]map[string]any, len(names))
	for i, n := range names {
		rows[i] = map[string]any{"fid": i + 1, "Name": n}
	}
	return features.NewMemory("fauna_punkte", []string{"fid", "Name"}, rows)
}

func testContext(buf *bytes.Buffer) context.Context {
	return zerolog.New(buf).WithContext(context.Background())
}

func generate(t *testing.T, l features.Collection) *report.Result {
	t.Helper()
	var logs bytes.Buffer
	res, err := report.Generate(testContext(&logs), l, report.Options{Variant: fauna(t), ReferenceDir: refDir(t)})
	require.NoError(t, err)
	return res
}

// column index of "Rl Kat." in the fauna schema
const rlCol = 5

func TestScenarioSingleHitIsColored(t *testing.T) {
	res := generate(t, layer("Vulpes vulpes"))
	require.Len(t, res.Main.Rows, 2)
	cell := res.Main.Cell(1, rlCol)
	assert.Equal(t, "1", cell.Text())
	assert.Equal(t, "80C902", cell.Fill)
	assert.Equal(t, 1, res.Filled)
}

func TestScenarioMissHasNoColor(t *testing.T) {
	res := generate(t, layer("Unknown sp."))
	require.Len(t, res.Main.Rows, 2)
	for j := 1; j < res.Main.Cols(); j++ {
		c := res.Main.Cell(1, j)
		assert.Equal(t, "-", c.Text())
		assert.Empty(t, c.Fill)
	}
	assert.Zero(t, res.Filled)
}

func TestScenarioEmptyLayerStillRendersLegend(t *testing.T) {
	res := generate(t, layer())
	assert.Len(t, res.Main.Rows, 1)
	require.NotNil(t, res.Legend)
	assert.Len(t, res.Legend.Rows, 11)
	tables := res.Document.Tables()
	require.Len(t, tables, 2)
	assert.Same(t, res.Main, tables[0])
	assert.Same(t, res.Legend, tables[1])
}

func TestScenarioSameCodeSameColor(t *testing.T) {
	res := generate(t, layer("Vulpes vulpes", "Lynx lynx", nil, "Vulpes vulpes"))
	require.Len(t, res.Main.Rows, 3)
	a, b := res.Main.Cell(1, rlCol), res.Main.Cell(2, rlCol)
	assert.Equal(t, "1", a.Text())
	assert.Equal(t, a.Text(), b.Text())
	assert.NotEmpty(t, a.Fill)
	assert.Equal(t, a.Fill, b.Fill)
}

func TestColorTotalityOverMainTable(t *testing.T) {
	v := fauna(t)
	rules, err := v.RuleSet()
	require.NoError(t, err)
	res := generate(t, layer("Vulpes vulpes", "Lynx lynx", "Alauda arvensis", "Bufo bufo", "Unknown sp."))
	for i, row := range res.Main.Rows {
		for j, c := range row.Cells {
			fill, ok := rules.Fill(c.Text())
			if ok {
				assert.Equal(t, fill, c.Fill, "cell %d,%d", i, j)
			} else {
				assert.Empty(t, c.Fill, "cell %d,%d", i, j)
			}
		}
	}
}

func TestHeaderFormatting(t *testing.T) {
	res := generate(t, layer("Lynx lynx"))
	for _, c := range res.Main.Rows[0].Cells {
		for _, r := range c.Runs() {
			assert.True(t, r.Bold)
			assert.Equal(t, 12.0, r.Size)
		}
	}
	require.NotNil(t, res.Document.Header)
	assert.Equal(t, "Rote-Liste Fauna im Untersuchungsgebiet\n", res.Document.Header.Text())
}

func TestGenerateReferenceMissing(t *testing.T) {
	var logs bytes.Buffer
	_, err := report.Generate(testContext(&logs), layer("Lynx lynx"), report.Options{Variant: fauna(t), ReferenceDir: t.TempDir()})
	var rm *refdata.ReferenceMissingError
	assert.ErrorAs(t, err, &rm)
}

func TestGenerateSchemaError(t *testing.T) {
	var logs bytes.Buffer
	l := features.NewMemory("punkte", []string{"Art"}, []map[string]any{{"Art": "Lynx lynx"}})
	_, err := report.Generate(testContext(&logs), l, report.Options{Variant: fauna(t), ReferenceDir: refDir(t)})
	var se *refdata.SchemaError
	assert.ErrorAs(t, err, &se)

	// the identity field can be overridden per run
	res, err := report.Generate(testContext(&logs), l, report.Options{Variant: fauna(t), ReferenceDir: refDir(t), Field: "Art"})
	require.NoError(t, err)
	assert.Equal(t, "Luchs", res.Main.Cell(1, 1).Text())
}

func TestGenerateLogsMisses(t *testing.T) {
	var logs bytes.Buffer
	_, err := report.Generate(testContext(&logs), layer("Unknown sp."), report.Options{Variant: fauna(t), ReferenceDir: refDir(t)})
	require.NoError(t, err)
	assert.Contains(t, logs.String(), `"species":"Unknown sp."`)
	assert.Contains(t, logs.String(), "no reference record")
}

func TestLegendOverrideFromReferenceDir(t *testing.T) {
	dir := refDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fauna_legend.csv"),
		[]byte("a|b|c|d|e|f|g|h\n1|eins|-|-|-|-|-|-\n"), 0o644))
	legend, err := report.LoadLegend(dir, fauna(t))
	require.NoError(t, err)
	assert.Len(t, legend.Rows, 1)

	builtin, err := report.LoadLegend(t.TempDir(), fauna(t))
	require.NoError(t, err)
	assert.Len(t, builtin.Rows, 10)
}

func TestSaveWritesDocx(t *testing.T) {
	res := generate(t, layer("Vulpes vulpes", "Unknown sp."))
	out := filepath.Join(t.TempDir(), "fauna.docx")
	require.NoError(t, res.Save(out))

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	text, err := docx.ExtractText(b)
	require.NoError(t, err)
	assert.Contains(t, text, "Vulpes vulpes | Rotfuchs | h | = | = | 1")
	assert.Contains(t, text, "Unknown sp. | - | - | - | - | -")
	assert.Contains(t, text, "Rote Liste Status")

	assert.Error(t, res.Save(filepath.Join(t.TempDir(), "missing", "x.docx")))
}
