package variant_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/redlist-cli/internal/colorrule"
	"github.com/KaramelBytes/redlist-cli/internal/variant"
)

func TestBuiltinVariants(t *testing.T) {
	r, err := variant.Builtin()
	require.NoError(t, err)
	assert.Equal(t, []string{"fauna", "flora"}, r.Names())

	fauna, err := r.Get("fauna")
	require.NoError(t, err)
	assert.Equal(t, "Name", fauna.IdentityField)
	assert.Len(t, fauna.Columns, 6)
	assert.Equal(t, "-", fauna.Placeholder)
	assert.Equal(t, 4.0, fauna.Width(0))
	assert.Equal(t, 4.0, fauna.Width(1))
	assert.Equal(t, 2.5, fauna.Width(5))
	assert.Len(t, fauna.Legend.Groups, 4)
	assert.Equal(t, "Rote-Liste Fauna im Untersuchungsgebiet\n", fauna.Title)

	rules, err := fauna.RuleSet()
	require.NoError(t, err)
	assert.Equal(t, 10, rules.Len())
	fill, ok := rules.Fill("♦")
	assert.True(t, ok)
	assert.Equal(t, "9EDD23", fill)

	flora, err := r.Get("flora")
	require.NoError(t, err)
	assert.Equal(t, "name", flora.IdentityField)
	fr, err := flora.RuleSet()
	require.NoError(t, err)
	_, ok = fr.Fill("Mäßig häufig")
	assert.True(t, ok)

	legend, ok := fauna.BuiltinLegend()
	assert.True(t, ok)
	assert.Contains(t, string(legend), "RL Kat.|Bedeutung")
}

func TestGetUnknown(t *testing.T) {
	r, err := variant.Builtin()
	require.NoError(t, err)
	_, err = r.Get("fungi")
	assert.ErrorIs(t, err, variant.ErrUnknownVariant)
}

func TestLoadFileOverridesAndAdds(t *testing.T) {
	r, err := variant.Builtin()
	require.NoError(t, err)
	p := filepath.Join(t.TempDir(), "variants.yaml")
	content := `
- name: flora
  identity_field: taxon
  reference_file: flora_2024.csv
  columns: [Name, Deutscher Name]
- name: moose
  identity_field: Art
  reference_file: moose.csv
  columns: [Art, Status]
  rules:
    - {text: "x", fill: "#000000"}
`
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	require.NoError(t, r.LoadFile(p))
	assert.Equal(t, []string{"fauna", "flora", "moose"}, r.Names())

	flora, err := r.Get("flora")
	require.NoError(t, err)
	assert.Equal(t, "taxon", flora.IdentityField)
	assert.Equal(t, "-", flora.Placeholder)
	assert.Equal(t, 1.75, flora.Legend.Width)

	moose, err := r.Get("moose")
	require.NoError(t, err)
	assert.Equal(t, "Art", moose.KeyColumn)
}

func TestParseRejectsBadConfig(t *testing.T) {
	cases := map[string]string{
		"duplicate rule": `
- name: a
  identity_field: Name
  reference_file: a.csv
  columns: [Name]
  rules: [{text: "1", fill: "#000000"}, {text: "1", fill: "#ffffff"}]
`,
		"key column not first": `
- name: a
  identity_field: Name
  key_column: Name
  reference_file: a.csv
  columns: [Status, Name]
`,
		"missing identity": `
- name: a
  reference_file: a.csv
  columns: [Name]
`,
		"bad legend group": `
- name: a
  identity_field: Name
  reference_file: a.csv
  columns: [Name]
  legend: {groups: [{start: 0, span: 1, label: x}]}
`,
		"overlapping legend groups": `
- name: a
  identity_field: Name
  reference_file: a.csv
  columns: [Name]
  legend: {groups: [{start: 2, span: 2, label: b}, {start: 0, span: 3, label: a}]}
`,
	}
	for name, y := range cases {
		_, err := variant.Parse([]byte(y))
		assert.Error(t, err, name)
	}
	_, err := variant.Parse([]byte(cases["duplicate rule"]))
	assert.ErrorIs(t, err, colorrule.ErrDuplicateRule)
}

func TestMarshalRoundTrip(t *testing.T) {
	r, err := variant.Builtin()
	require.NoError(t, err)
	fauna, err := r.Get("fauna")
	require.NoError(t, err)
	b, err := variant.Marshal(fauna)
	require.NoError(t, err)
	vs, err := variant.Parse(b)
	require.NoError(t, err)
	require.Len(t, vs, 1)
	assert.Equal(t, fauna, vs[0])
}

func TestCheckGroups(t *testing.T) {
	groups := []variant.Group{{Start: 0, Span: 2, Label: "a"}, {Start: 2, Span: 2, Label: "b"}}
	assert.NoError(t, variant.CheckGroups(groups, 4))
	assert.NoError(t, variant.CheckGroups(groups, 0))
	assert.Error(t, variant.CheckGroups(groups, 3))
	assert.Error(t, variant.CheckGroups([]variant.Group{{Start: 0, Span: 2}, {Start: 1, Span: 2}}, 0))
	assert.NoError(t, variant.CheckGroups(nil, 2))
}
