package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableClone(t *testing.T) {
	src := NewTable("f1_gnrt_plant", []string{"plant_name", "kind_of_fuel"})
	src.Append(Row{"plant_name": "Plant A", "kind_of_fuel": "Coal"})

	dup := src.Clone()
	dup.Rows[0]["kind_of_fuel"] = "COAL|"
	dup.Columns[0] = "renamed"
	dup.Append(Row{})

	assert.Equal(t, "Coal", src.Rows[0]["kind_of_fuel"])
	assert.Equal(t, "plant_name", src.Columns[0])
	assert.Equal(t, 1, src.Len())
	assert.Equal(t, 2, dup.Len())
}

func TestTableHasColumn(t *testing.T) {
	tbl := NewTable("t", []string{"a", "b"})
	assert.True(t, tbl.HasColumn("b"))
	assert.False(t, tbl.HasColumn("c"))
}

func TestMetadata(t *testing.T) {
	meta := &TableMetadata{
		Schema:  "public",
		Table:   "f1_gnrt_plant",
		Columns: []Column{{Name: "Plant_Name", DataType: "TEXT", Nullable: true}},
	}

	assert.Equal(t, "public.f1_gnrt_plant", meta.FullName())
	require.NotNil(t, meta.GetColumnByName("plant_name"))
	assert.Nil(t, meta.GetColumnByName("kind_of_fuel"))

	meta.Schema = ""
	assert.Equal(t, "f1_gnrt_plant", meta.FullName())
}

func TestIsFootnoteColumn(t *testing.T) {
	assert.True(t, IsFootnoteColumn("plant_name_f", "_f"))
	assert.True(t, IsFootnoteColumn("PLANT_NAME_F", "_f"))
	assert.False(t, IsFootnoteColumn("plant_name", "_f"))
	assert.False(t, IsFootnoteColumn("plant_name_f", ""))
}

func TestMalformedRowError(t *testing.T) {
	base := &MalformedRowError{Column: "plant_name", Value: 42, Row: -1}

	err := PositionError(fmt.Errorf("scan: %w", base), "f1_gnrt_plant", 7)
	assert.True(t, errors.Is(err, ErrMalformedRow))

	var mre *MalformedRowError
	require.True(t, errors.As(err, &mre))
	assert.Equal(t, "f1_gnrt_plant", mre.Table)
	assert.Equal(t, 7, mre.Row)
	assert.Equal(t, -1, base.Row, "At returns a copy")
	assert.Contains(t, mre.Error(), "column plant_name expects text, got int (42)")

	other := errors.New("boom")
	assert.Same(t, other, PositionError(other, "t", 1))
}
