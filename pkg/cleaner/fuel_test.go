package cleaner

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/David-Botos/plant-clean/pkg/model"
)

func TestStandardize(t *testing.T) {
	n := NewFuelNormalizer(model.DefaultRules().MustCompile())

	tests := []struct {
		raw  string
		want string
	}{
		{"", "NONE"},
		{"   ", "NONE"},
		{"None", "NONE"},
		{"n/a", "NONE"},
		{"N.A.", "NONE"},
		{"NA", "NONE"},
		{"Coal/Gas", "GAS|COAL|"},
		{"#2 Oil", "OIL|"},
		{"#6 Oil", "OIL|"},
		{"Natural Gas", "GAS|"},
		{"Diesel", "DIESEL|"},
		{"Oil & Diesel", "OIL|DIESEL|"},
		{"Hydro", "HYDRO|"},
		{"River Water", "WATER|RIVER|"},
		{"Waste Heat", "WASTE HEAT|"},
		{"Steam", "STEAM|"},
		{"Landfill Methane", "METHANE|"},
		{"xyz-unrecognized", ""},
		{"Wood", ""},
		// Substring matching: "reserve" contains "rv"
		{"Reserve Oil", "OIL|RV|"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Standardize(tt.raw))
		})
	}
}

func TestStandardizeStripTrailingDelimiter(t *testing.T) {
	rules := model.DefaultRules()
	rules.StripTrailingDelimiter = true
	n := NewFuelNormalizer(rules.MustCompile())

	assert.Equal(t, "GAS|COAL", n.Standardize("Coal/Gas"))
	assert.Equal(t, "OIL", n.Standardize("#2 Oil"))
	assert.Equal(t, "NONE", n.Standardize("n/a"))
	assert.Equal(t, "", n.Standardize("xyz"))
}

func TestStandardizeValue(t *testing.T) {
	n := NewFuelNormalizer(model.DefaultRules().MustCompile())

	tag, err := n.StandardizeValue(nil)
	require.NoError(t, err)
	assert.Equal(t, "NONE", tag)

	tag, err = n.StandardizeValue([]byte("Gas"))
	require.NoError(t, err)
	assert.Equal(t, "GAS|", tag)

	_, err = n.StandardizeValue(2.0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrMalformedRow))
}

func TestNormalize(t *testing.T) {
	rules := model.DefaultRules().MustCompile()
	row := model.Row{"plant_name": "Plant A", "kind_of_fuel": "Coal/Gas"}

	out, err := Normalize(rules, row)
	require.NoError(t, err)
	assert.Equal(t, "GAS|COAL|", out["kind_of_fuel"])
	assert.Equal(t, "Plant A", out["plant_name"])
	assert.Equal(t, "Coal/Gas", row["kind_of_fuel"], "input row is not modified")

	out, err = Normalize(rules, model.Row{"plant_name": "Plant B"})
	require.NoError(t, err)
	assert.Equal(t, "NONE", out["kind_of_fuel"])

	_, err = Normalize(rules, model.Row{"kind_of_fuel": 7})
	assert.True(t, errors.Is(err, model.ErrMalformedRow))
}

func TestFuelMappings(t *testing.T) {
	rules := model.DefaultRules().MustCompile()
	tbl := model.NewTable("t", []string{"kind_of_fuel"})
	for _, v := range []interface{}{"Gas", "Coal", "Gas", nil, "Gas", "Coal", "xyz"} {
		tbl.Append(model.Row{"kind_of_fuel": v})
	}

	mappings, err := FuelMappings(tbl, rules)
	require.NoError(t, err)
	assert.Equal(t, []FuelMapping{
		{Raw: "Gas", Tag: "GAS|", Count: 3},
		{Raw: "Coal", Tag: "COAL|", Count: 2},
		{Raw: "", Tag: "NONE", Count: 1},
		{Raw: "xyz", Tag: "", Count: 1},
	}, mappings)

	tbl.Append(model.Row{"kind_of_fuel": 3})
	_, err = FuelMappings(tbl, rules)
	var mre *model.MalformedRowError
	require.True(t, errors.As(err, &mre))
	assert.Equal(t, 7, mre.Row)
}

func TestFuelMappingsMissingColumn(t *testing.T) {
	tbl := model.NewTable("t", []string{"KIND_OF_FUEL"})
	tbl.Append(model.Row{"KIND_OF_FUEL": "Gas"})

	_, err := FuelMappings(tbl, model.DefaultRules().MustCompile())
	assert.ErrorIs(t, err, model.ErrMissingColumn)
}
