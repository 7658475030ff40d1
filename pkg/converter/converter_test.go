package converter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/David-Botos/plant-clean/pkg/model"
)

func TestTargetType(t *testing.T) {
	c := NewTypeConverter(zaptest.NewLogger(t))

	tests := []struct {
		source string
		want   string
	}{
		{"", "TEXT"},
		{"text", "TEXT"},
		{"integer", "BIGINT"},
		{"INT4", "INTEGER"},
		{"int2", "SMALLINT"},
		{"VARCHAR(50)", "VARCHAR(50)"},
		{"VARCHAR(20000)", "TEXT"},
		{"character varying", "TEXT"},
		{"NUMBER(38,0)", "NUMERIC(38)"},
		{"NUMBER(10,2)", "NUMERIC(10,2)"},
		{"NUMERIC(4)", "SMALLINT"},
		{"NUMBER(9, 0)", "INTEGER"},
		{"NUMBER", "NUMERIC"},
		{"float8", "DOUBLE PRECISION"},
		{"REAL", "DOUBLE PRECISION"},
		{"FLOAT4", "REAL"},
		{"bool", "BOOLEAN"},
		{"date", "DATE"},
		{"TIMESTAMP_NTZ", "TIMESTAMP"},
		{"timestamp with time zone", "TIMESTAMP WITH TIME ZONE"},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			got, err := c.TargetType(tt.source)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	got, err := c.TargetType("GEOGRAPHY")
	assert.Error(t, err)
	assert.Equal(t, "TEXT", got)
}

func TestTargetTypeVarcharAsText(t *testing.T) {
	cfg := DefaultConfig()
	cfg.VarcharAsText = true
	c := NewTypeConverterWithConfig(zaptest.NewLogger(t), cfg)

	got, err := c.TargetType("VARCHAR(50)")
	require.NoError(t, err)
	assert.Equal(t, "TEXT", got)
}

func TestGenerateColumnDefinitions(t *testing.T) {
	c := NewTypeConverter(zaptest.NewLogger(t))
	meta := &model.TableMetadata{
		Table: "f1_gnrt_plant",
		Columns: []model.Column{
			{Name: "respondent_id", DataType: "INTEGER", Nullable: false},
			{Name: "kind_of_fuel", DataType: "VARCHAR(10)", Nullable: true},
			{Name: "plant_name", DataType: "VARCHAR(10)", Nullable: true},
		},
	}

	defs, err := c.GenerateColumnDefinitions(meta, "kind_of_fuel")
	require.NoError(t, err)
	assert.Equal(t, []string{
		`"respondent_id" BIGINT NOT NULL`,
		`"kind_of_fuel" TEXT NULL`,
		`"plant_name" VARCHAR(10) NULL`,
	}, defs)
}
