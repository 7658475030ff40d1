package cleaner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/David-Botos/plant-clean/pkg/model"
)

// Reasons recorded with each cleaning operation
const (
	reasonCanonicalTags = "canonical_fuel_tags"
	reasonUnrecognized  = "unrecognized_fuel"
	reasonInvalidYear   = "invalid_year_constructed"
)

// OperationRecorder persists cleaning operations
type OperationRecorder interface {
	Record(ctx context.Context, operations []model.CleaningOperation) error
}

// CleanResult is the output of a cleaning pass
type CleanResult struct {
	RunID      string
	Table      *model.Table
	Read       int
	Kept       int
	Dropped    int
	Rewritten  int // Fuel cells whose value changed
	Operations []model.CleaningOperation
	Duration   time.Duration
}

// DataCleaner drops heading rows and standardizes the fuel column
type DataCleaner struct {
	rules    *model.CompiledRules
	fuel     *FuelNormalizer
	logger   *zap.Logger
	recorder OperationRecorder
	schema   string
}

// NewDataCleaner creates a new DataCleaner instance
func NewDataCleaner(rules *model.CompiledRules, logger *zap.Logger) (*DataCleaner, error) {
	if rules == nil {
		return nil, errors.New("rules cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &DataCleaner{
		rules:  rules,
		fuel:   NewFuelNormalizer(rules),
		logger: logger,
	}, nil
}

// WithRecorder records every cleaning operation of a run through r
func (c *DataCleaner) WithRecorder(r OperationRecorder) *DataCleaner {
	c.recorder = r
	return c
}

// WithSchema sets the schema name stamped on cleaning operations
func (c *DataCleaner) WithSchema(schema string) *DataCleaner {
	c.schema = schema
	return c
}

// CleanTable returns a new table holding only rows with a valid year
// constructed, each with its fuel column rewritten to canonical tags.
// Every row is normalized before classification, dropped ones included.
// The input table is not modified.
func (c *DataCleaner) CleanTable(ctx context.Context, table *model.Table) (*CleanResult, error) {
	if table == nil {
		return nil, errors.New("table cannot be nil")
	}

	if err := requireColumns(table, c.rules.YearColumn, c.rules.FuelColumn); err != nil {
		return nil, err
	}

	start := time.Now()
	result := &CleanResult{
		RunID: uuid.New().String(),
		Table: model.NewTable(table.Name, table.Columns),
		Read:  table.Len(),
	}

	for i, row := range table.Rows {
		normalized, err := c.fuel.NormalizeRow(row)
		if err != nil {
			return nil, model.PositionError(err, table.Name, i)
		}
		rowID := c.rowIdentifier(row, i)

		if op := c.fuelOperation(result.RunID, table.Name, rowID, row, normalized); op != nil {
			result.Operations = append(result.Operations, *op)
			result.Rewritten++
		}

		decision, err := Classify(c.rules, normalized)
		if err != nil {
			return nil, model.PositionError(err, table.Name, i)
		}

		// TODO: heading rows can carry a plant name or fuel that belongs to
		// the plant rows following them; propagate it here once the grouping
		// rules for a reporting group are defined.
		if decision == Drop {
			result.Dropped++
			result.Operations = append(result.Operations, model.CleaningOperation{
				RunID:             result.RunID,
				SchemaName:        c.schema,
				TableName:         table.Name,
				ColumnName:        c.rules.YearColumn,
				OriginalValue:     row[c.rules.YearColumn],
				NewValue:          "",
				RowIdentifier:     rowID,
				CleaningOperation: model.OperationRowRemoval,
				CleaningReason:    reasonInvalidYear,
				CleanedAt:         time.Now().UTC(),
			})
			continue
		}

		result.Table.Append(normalized)
		result.Kept++
	}

	result.Duration = time.Since(start)

	c.logger.Info("Cleaned table",
		zap.String("table", table.Name),
		zap.String("runID", result.RunID),
		zap.Int("rowsRead", result.Read),
		zap.Int("rowsKept", result.Kept),
		zap.Int("rowsDropped", result.Dropped),
		zap.Int("fuelRewrites", result.Rewritten),
		zap.Duration("duration", result.Duration))

	if c.recorder != nil && len(result.Operations) > 0 {
		if err := c.recorder.Record(ctx, result.Operations); err != nil {
			return result, fmt.Errorf("failed to record cleaning operations: %w", err)
		}
	}

	return result, nil
}

// fuelOperation describes the fuel rewrite of one row, or nil if unchanged
func (c *DataCleaner) fuelOperation(runID, table, rowID string, before, after model.Row) *model.CleaningOperation {
	original := before[c.rules.FuelColumn]
	newValue := cast.ToString(after[c.rules.FuelColumn])
	if s, ok := original.(string); ok && s == newValue {
		return nil
	}

	reason := reasonCanonicalTags
	if newValue == "" {
		reason = reasonUnrecognized
	}

	return &model.CleaningOperation{
		RunID:             runID,
		SchemaName:        c.schema,
		TableName:         table,
		ColumnName:        c.rules.FuelColumn,
		OriginalValue:     original,
		NewValue:          newValue,
		RowIdentifier:     rowID,
		CleaningOperation: model.OperationFuelStandardization,
		CleaningReason:    reason,
		CleanedAt:         time.Now().UTC(),
	}
}

// rowIdentifier joins the key columns of a row, falling back to its index
func (c *DataCleaner) rowIdentifier(row model.Row, index int) string {
	parts := make([]string, 0, len(c.rules.KeyColumns))
	for _, col := range c.rules.KeyColumns {
		v, ok := row[col]
		if !ok || v == nil {
			continue
		}
		parts = append(parts, cast.ToString(v))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("row:%d", index)
	}
	return strings.Join(parts, "/")
}

// requireColumns fails when table lacks any of columns. Column names are
// matched exactly, so an upper-case source needs upper-case rules.
func requireColumns(table *model.Table, columns ...string) error {
	for _, col := range columns {
		if !table.HasColumn(col) {
			return fmt.Errorf("%w: %s has no column %q", model.ErrMissingColumn, table.Name, col)
		}
	}
	return nil
}
