package converter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestConvertValue(t *testing.T) {
	c := NewTypeConverter(zaptest.NewLogger(t))

	tests := []struct {
		name       string
		value      interface{}
		targetType string
		want       interface{}
	}{
		{"nil", nil, "BIGINT", nil},
		{"text", "GAS|COAL|", "TEXT", "GAS|COAL|"},
		{"empty text is kept", "", "TEXT", ""},
		{"number as text", int64(12), "TEXT", "12"},
		{"varchar", "Plant A", "VARCHAR(10)", "Plant A"},
		{"empty integer is null", " ", "BIGINT", nil},
		{"integral float string", "12.0", "BIGINT", int64(12)},
		{"integral float", 7.0, "INTEGER", int64(7)},
		{"integer", int64(5), "SMALLINT", int64(5)},
		{"numeric string keeps precision", "12.50", "NUMERIC(10,2)", "12.50"},
		{"numeric float", 1.25, "NUMERIC", 1.25},
		{"double from int", 3, "DOUBLE PRECISION", 3.0},
		{"boolean", "true", "BOOLEAN", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.ConvertValue(tt.value, tt.targetType, "col")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConvertValueErrors(t *testing.T) {
	c := NewTypeConverter(zaptest.NewLogger(t))

	_, err := c.ConvertValue(12.5, "BIGINT", "respondent_id")
	assert.ErrorContains(t, err, "respondent_id")

	_, err = c.ConvertValue("abc", "NUMERIC", "plant_cost")
	assert.Error(t, err)

	_, err = c.ConvertValue("lots", "DOUBLE PRECISION", "capacity_rating")
	assert.Error(t, err)
}

func TestConvertValueNumericWithoutPrecision(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PreserveNumericPrecision = false
	c := NewTypeConverterWithConfig(zaptest.NewLogger(t), cfg)

	got, err := c.ConvertValue("12.50", "NUMERIC", "plant_cost")
	require.NoError(t, err)
	assert.Equal(t, 12.5, got)
}

func TestConvertValueTime(t *testing.T) {
	c := NewTypeConverter(zaptest.NewLogger(t))

	got, err := c.ConvertValue("2020-01-02", "DATE", "report_date")
	require.NoError(t, err)
	ts, ok := got.(time.Time)
	require.True(t, ok)
	assert.True(t, ts.Equal(time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)))

	now := time.Now()
	got, err = c.ConvertValue(now, "TIMESTAMP", "cleaned_at")
	require.NoError(t, err)
	assert.Equal(t, now, got)
}
