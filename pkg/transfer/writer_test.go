package transfer

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/David-Botos/plant-clean/pkg/config"
	"github.com/David-Botos/plant-clean/pkg/connector"
	"github.com/David-Botos/plant-clean/pkg/converter"
	"github.com/David-Botos/plant-clean/pkg/model"
)

func newSink(t *testing.T) *connector.SQLiteConnector {
	t.Helper()
	conn, err := connector.NewSQLiteConnector(context.Background(), &config.SQLiteConfig{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func newWriter(t *testing.T, sink connector.DatabaseConnector) *Writer {
	t.Helper()
	logger := zaptest.NewLogger(t)
	w, err := NewWriter(sink, converter.NewTypeConverter(logger), logger)
	require.NoError(t, err)
	return w
}

func cleanedTable() (*model.Table, *model.TableMetadata) {
	meta := &model.TableMetadata{
		Table: "f1_gnrt_plant",
		Columns: []model.Column{
			{Name: "respondent_id", DataType: "INTEGER", Nullable: false},
			{Name: "plant_name", DataType: "TEXT", Nullable: true},
			{Name: "yr_constructed", DataType: "TEXT", Nullable: true},
			{Name: "kind_of_fuel", DataType: "VARCHAR(8)", Nullable: true},
			{Name: "capacity_rating", DataType: "REAL", Nullable: true},
		},
	}
	tbl := model.NewTable("f1_gnrt_plant", []string{
		"respondent_id", "plant_name", "yr_constructed", "kind_of_fuel", "capacity_rating",
	})
	tbl.Append(model.Row{"respondent_id": int64(1), "plant_name": "Plant A", "yr_constructed": "1985",
		"kind_of_fuel": "GAS|COAL|", "capacity_rating": 12.5})
	tbl.Append(model.Row{"respondent_id": int64(2), "plant_name": "Plant B", "yr_constructed": "2001",
		"kind_of_fuel": "NONE", "capacity_rating": nil})
	tbl.Append(model.Row{"respondent_id": int64(3), "plant_name": "Plant C", "yr_constructed": "1999",
		"kind_of_fuel": "", "capacity_rating": 4.0})
	return tbl, meta
}

func TestWriteTable(t *testing.T) {
	ctx := context.Background()
	sink := newSink(t)
	tbl, meta := cleanedTable()

	result, err := newWriter(t, sink).WithBatchSize(2).WriteTable(ctx, tbl, meta, "plants_clean", "kind_of_fuel")
	require.NoError(t, err)
	assert.Equal(t, "plants_clean", result.Target)
	assert.EqualValues(t, 3, result.RowsWritten)
	assert.EqualValues(t, 3, result.TargetCount)
	assert.True(t, result.Verified)

	back, backMeta, err := connector.ReadTable(ctx, sink, "plants_clean", connector.ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, tbl.Columns, back.Columns)
	assert.Equal(t, "TEXT", backMeta.GetColumnByName("kind_of_fuel").DataType)
	assert.Equal(t, "BIGINT", backMeta.GetColumnByName("respondent_id").DataType)

	require.Equal(t, 3, back.Len())
	assert.EqualValues(t, 1, back.Rows[0]["respondent_id"])
	assert.Equal(t, "GAS|COAL|", back.Rows[0]["kind_of_fuel"])
	assert.Equal(t, 12.5, back.Rows[0]["capacity_rating"])
	assert.Nil(t, back.Rows[1]["capacity_rating"])
	assert.Equal(t, "", back.Rows[2]["kind_of_fuel"], "unrecognized fuel stays an empty string")
}

func TestWriteTableReplace(t *testing.T) {
	ctx := context.Background()
	sink := newSink(t)
	tbl, meta := cleanedTable()
	w := newWriter(t, sink)

	_, err := w.WriteTable(ctx, tbl, meta, "plants_clean")
	require.NoError(t, err)
	result, err := w.WriteTable(ctx, tbl, meta, "plants_clean")
	require.NoError(t, err)
	assert.True(t, result.Verified)

	result, err = w.WithReplace(false).WriteTable(ctx, tbl, meta, "plants_clean")
	require.NoError(t, err)
	assert.False(t, result.Verified)

	var count int
	require.NoError(t, sqlx.NewDb(sink.DB(), sink.DriverName()).GetContext(ctx, &count, `SELECT COUNT(*) FROM plants_clean`))
	assert.Equal(t, 6, count)
}

func TestWriteTableColumnWithoutMetadata(t *testing.T) {
	ctx := context.Background()
	sink := newSink(t)
	tbl, meta := cleanedTable()
	tbl.Columns = append(tbl.Columns, "note")
	tbl.Rows[0]["note"] = "checked"

	_, err := newWriter(t, sink).WriteTable(ctx, tbl, meta, "plants_clean")
	require.NoError(t, err)

	back, backMeta, err := connector.ReadTable(ctx, sink, "plants_clean", connector.ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "TEXT", backMeta.GetColumnByName("note").DataType)
	assert.Equal(t, "checked", back.Rows[0]["note"])
	assert.Nil(t, back.Rows[1]["note"])
}

func TestWriteTableConversionError(t *testing.T) {
	ctx := context.Background()
	sink := newSink(t)
	tbl, meta := cleanedTable()
	tbl.Rows[2]["capacity_rating"] = "lots"

	_, err := newWriter(t, sink).WriteTable(ctx, tbl, meta, "plants_clean")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")

	// Table creation is rolled back together with the inserts
	var tables int
	require.NoError(t, sqlx.NewDb(sink.DB(), sink.DriverName()).GetContext(ctx, &tables,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'plants_clean'`))
	assert.Zero(t, tables)
}

func TestWriteTableFailedReplaceKeepsPreviousTable(t *testing.T) {
	ctx := context.Background()
	sink := newSink(t)
	tbl, meta := cleanedTable()
	w := newWriter(t, sink)

	_, err := w.WriteTable(ctx, tbl, meta, "plants_clean")
	require.NoError(t, err)

	bad, _ := cleanedTable()
	bad.Rows[1]["capacity_rating"] = "lots"
	_, err = w.WriteTable(ctx, bad, meta, "plants_clean")
	require.Error(t, err)

	back, _, err := connector.ReadTable(ctx, sink, "plants_clean", connector.ReadOptions{})
	require.NoError(t, err)
	require.Equal(t, 3, back.Len())
	assert.Equal(t, "GAS|COAL|", back.Rows[0]["kind_of_fuel"])
}

func TestWriteEmptyTable(t *testing.T) {
	ctx := context.Background()
	sink := newSink(t)
	_, meta := cleanedTable()
	empty := model.NewTable("f1_gnrt_plant", []string{"respondent_id", "plant_name"})

	result, err := newWriter(t, sink).WriteTable(ctx, empty, meta, "plants_clean")
	require.NoError(t, err)
	assert.Zero(t, result.RowsWritten)
	assert.True(t, result.Verified)
}

func TestNewWriterValidation(t *testing.T) {
	logger := zaptest.NewLogger(t)
	tc := converter.NewTypeConverter(logger)
	sink := newSink(t)

	_, err := NewWriter(nil, tc, logger)
	assert.Error(t, err)
	_, err = NewWriter(sink, nil, logger)
	assert.Error(t, err)
	_, err = NewWriter(sink, tc, nil)
	assert.Error(t, err)
}
