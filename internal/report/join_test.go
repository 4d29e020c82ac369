package report_test

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/redlist-cli/internal/refdata"
	"github.com/KaramelBytes/redlist-cli/internal/report"
	"github.com/KaramelBytes/redlist-cli/internal/species"
	"github.com/KaramelBytes/redlist-cli/internal/variant"
)

const faunaCSV = "Name|Deutscher Name|aktuelle Bestandssituation|kurzfristiger Bestandstrend|langfristiger Bestandstrend|RL Kat.|Gruppe\n" +
	"Vulpes vulpes|Rotfuchs|h|=|=|1|Säuger\n" +
	"Lynx lynx|Luchs|es|↑|<<|1|Säuger\n" +
	"Alauda arvensis|Feldlerche|h|↓↓|<<|3|Vögel\n" +
	"Bufo bufo|Erdkröte||||*|Amphibien\n"

func fauna(t *testing.T) variant.Variant {
	t.Helper()
	r, err := variant.Builtin()
	require.NoError(t, err)
	v, err := r.Get("fauna")
	require.NoError(t, err)
	return v
}

func faunaRef(t *testing.T) *refdata.Table {
	t.Helper()
	tbl, err := refdata.Parse("fauna.csv", strings.NewReader(faunaCSV))
	require.NoError(t, err)
	return tbl
}

func TestJoinHit(t *testing.T) {
	tbl, err := report.Join(species.NewSet("Vulpes vulpes"), faunaRef(t), fauna(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Deutscher Name", "Aktuelle Bestandssituation",
		"Kurzfristiger Bestandstrend", "Langfristiger Bestandstrend", "Rl Kat."}, tbl.Columns)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, []string{"Vulpes vulpes", "Rotfuchs", "h", "=", "=", "1"}, tbl.Rows[0].Values)
	assert.Empty(t, tbl.Misses)
}

func TestJoinMissUsesPlaceholder(t *testing.T) {
	tbl, err := report.Join(species.NewSet("Unknown sp."), faunaRef(t), fauna(t))
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, []string{"Unknown sp.", "-", "-", "-", "-", "-"}, tbl.Rows[0].Values)
	assert.Equal(t, []string{"Unknown sp."}, tbl.Misses)
}

func TestJoinEmptyValuesBecomePlaceholder(t *testing.T) {
	tbl, err := report.Join(species.NewSet("Bufo bufo"), faunaRef(t), fauna(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"Bufo bufo", "Erdkröte", "-", "-", "-", "*"}, tbl.Rows[0].Values)
}

func TestJoinIsExactMatch(t *testing.T) {
	tbl, err := report.Join(species.NewSet("vulpes vulpes", "Vulpes vulpes "), faunaRef(t), fauna(t))
	require.NoError(t, err)
	assert.Len(t, tbl.Misses, 2)
}

func TestJoinRowCountSortAndDeterminism(t *testing.T) {
	set := species.NewSet("Vulpes vulpes", "Lynx lynx", "Zootoca vivipara", "Alauda arvensis", "Bufo bufo", "Ächtes Moos")
	first, err := report.Join(set, faunaRef(t), fauna(t))
	require.NoError(t, err)
	assert.Len(t, first.Rows, set.Len())

	names := make([]string, len(first.Rows))
	for i, r := range first.Rows {
		names[i] = r.Values[0]
	}
	assert.True(t, sort.StringsAreSorted(names), "rows sorted by name: %v", names)

	seen := map[string]bool{}
	for _, n := range names {
		assert.False(t, seen[n], "duplicate %s", n)
		seen[n] = true
	}

	second, err := report.Join(set, faunaRef(t), fauna(t))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestJoinMissingReferenceColumn(t *testing.T) {
	ref, err := refdata.Parse("fauna.csv", strings.NewReader("Name|Deutscher Name\nVulpes vulpes|Rotfuchs\n"))
	require.NoError(t, err)
	_, err = report.Join(species.NewSet("Vulpes vulpes"), ref, fauna(t))
	var se *refdata.SchemaError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, se.Missing, "RL Kat.")
}

func TestJoinEmptySet(t *testing.T) {
	tbl, err := report.Join(species.NewSet(), faunaRef(t), fauna(t))
	require.NoError(t, err)
	assert.Empty(t, tbl.Rows)
	g := tbl.Grid()
	assert.Len(t, g.Columns, 6)
	assert.Empty(t, g.Rows)
}

func TestJoinDuplicatesLimitedToSet(t *testing.T) {
	ref, err := refdata.Parse("fauna.csv", strings.NewReader(faunaCSV+
		"Vulpes vulpes|Fuchs|s|=|=|2|Säuger\n"+
		"Bufo bufo|Kröte|h|=|=|V|Amphibien\n"))
	require.NoError(t, err)
	tbl, err := report.Join(species.NewSet("Vulpes vulpes", "Lynx lynx"), ref, fauna(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"Vulpes vulpes"}, tbl.Duplicates)
	// first record wins
	assert.Equal(t, "Rotfuchs", tbl.Rows[1].Values[1])
}
