package connector

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/David-Botos/plant-clean/pkg/model"
)

// ReadOptions controls how a source table is loaded
type ReadOptions struct {
	Schema         string        // Optional schema qualifier
	FootnoteSuffix string        // Columns ending in this suffix are dropped
	Timeout        time.Duration // Zero means no timeout beyond ctx
}

// QualifiedName quotes a table name, prefixed by its schema when given.
// Quoted identifiers are case-sensitive, so pass names in the case the
// database stores them.
func QualifiedName(schema, table string) string {
	if schema == "" {
		return pq.QuoteIdentifier(table)
	}
	return pq.QuoteIdentifier(schema) + "." + pq.QuoteIdentifier(table)
}

// ReadTable loads a whole table into memory. Footnote columns are dropped,
// column order follows the source, SQL NULL becomes nil and byte slices
// become strings.
func ReadTable(
	ctx context.Context,
	conn DatabaseConnector,
	table string,
	opts ReadOptions,
) (*model.Table, *model.TableMetadata, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	logger := zap.L().Named("table-reader")
	db := sqlx.NewDb(conn.DB(), conn.DriverName())

	query := "SELECT * FROM " + QualifiedName(opts.Schema, table)
	rows, err := db.QueryxContext(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query table %s: %w", table, err)
	}
	defer rows.Close()

	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read column types of %s: %w", table, err)
	}

	metadata := &model.TableMetadata{Schema: opts.Schema, Table: table}
	columns := make([]string, 0, len(colTypes))
	for _, ct := range colTypes {
		name := ct.Name()
		if model.IsFootnoteColumn(name, opts.FootnoteSuffix) {
			metadata.Dropped = append(metadata.Dropped, name)
			continue
		}
		nullable, ok := ct.Nullable()
		metadata.Columns = append(metadata.Columns, model.Column{
			Name:     name,
			DataType: strings.ToUpper(ct.DatabaseTypeName()),
			Nullable: nullable || !ok,
		})
		columns = append(columns, name)
	}

	result := model.NewTable(table, columns)
	for rows.Next() {
		raw := make(map[string]interface{}, len(colTypes))
		if err := rows.MapScan(raw); err != nil {
			return nil, nil, fmt.Errorf("failed to scan row %d of %s: %w", result.Len(), table, err)
		}

		row := make(model.Row, len(columns))
		for _, col := range columns {
			row[col] = normalizeCell(raw[col])
		}
		result.Append(row)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating rows of %s: %w", table, err)
	}

	logger.Info("Loaded table",
		zap.String("table", metadata.FullName()),
		zap.Int("rows", result.Len()),
		zap.Int("columns", len(columns)),
		zap.Strings("droppedColumns", metadata.Dropped))

	return result, metadata, nil
}

// normalizeCell converts driver byte slices to strings
func normalizeCell(v interface{}) interface{} {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
