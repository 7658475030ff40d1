package transfer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/David-Botos/plant-clean/pkg/connector"
	"github.com/David-Botos/plant-clean/pkg/converter"
	"github.com/David-Botos/plant-clean/pkg/model"
)

// WriteResult describes a completed table write
type WriteResult struct {
	Target      string
	RowsWritten int64
	TargetCount int64
	Verified    bool
	Duration    time.Duration
}

// Writer persists a cleaned table into a sink database
type Writer struct {
	sink          connector.DatabaseConnector
	db            *sqlx.DB
	typeConverter *converter.TypeConverter
	verifier      *Verifier
	logger        *zap.Logger
	batchSize     int
	replace       bool
	ddlTimeout    time.Duration
}

// NewWriter creates a writer for the sink connection
func NewWriter(
	sink connector.DatabaseConnector,
	typeConverter *converter.TypeConverter,
	logger *zap.Logger,
) (*Writer, error) {
	if sink == nil {
		return nil, errors.New("sink connector cannot be nil")
	}
	if typeConverter == nil {
		return nil, errors.New("type converter cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	db := sqlx.NewDb(sink.DB(), sink.DriverName())
	return &Writer{
		sink:          sink,
		db:            db,
		typeConverter: typeConverter,
		verifier:      NewVerifier(db, logger),
		logger:        logger,
		batchSize:     500,
		replace:       true,
		ddlTimeout:    30 * time.Second,
	}, nil
}

// WithBatchSize sets the number of rows per INSERT statement
func (w *Writer) WithBatchSize(batchSize int) *Writer {
	if batchSize > 0 {
		w.batchSize = batchSize
	}
	return w
}

// WithReplace controls whether an existing target table is dropped first
func (w *Writer) WithReplace(replace bool) *Writer {
	w.replace = replace
	return w
}

// WriteTable creates the target table from metadata and inserts every row of
// table. Columns in textColumns are created as TEXT.
func (w *Writer) WriteTable(
	ctx context.Context,
	table *model.Table,
	metadata *model.TableMetadata,
	target string,
	textColumns ...string,
) (*WriteResult, error) {
	start := time.Now()
	result := &WriteResult{Target: target}

	targetMeta := projectMetadata(metadata, table.Columns)
	targetTypes := w.targetTypes(targetMeta, textColumns)

	written, err := w.load(ctx, table, targetMeta, target, targetTypes, textColumns)
	if err != nil {
		return nil, err
	}
	result.RowsWritten = written

	if w.replace {
		ok, count, err := w.verifier.VerifyRowCount(ctx, target, int64(table.Len()))
		if err != nil {
			return nil, fmt.Errorf("failed to verify %s: %w", target, err)
		}
		result.Verified = ok
		result.TargetCount = count
	}

	result.Duration = time.Since(start)
	w.logger.Info("Wrote cleaned table",
		zap.String("target", target),
		zap.Int64("rowsWritten", result.RowsWritten),
		zap.Bool("verified", result.Verified),
		zap.Duration("duration", result.Duration))

	return result, nil
}

// projectMetadata keeps the metadata of the given columns in their order.
// Columns without metadata are described as nullable TEXT.
func projectMetadata(metadata *model.TableMetadata, columns []string) *model.TableMetadata {
	out := &model.TableMetadata{Table: metadata.Table, Schema: metadata.Schema}
	for _, name := range columns {
		if col := metadata.GetColumnByName(name); col != nil {
			out.Columns = append(out.Columns, *col)
			continue
		}
		out.Columns = append(out.Columns, model.Column{Name: name, DataType: "TEXT", Nullable: true})
	}
	return out
}

func (w *Writer) targetTypes(metadata *model.TableMetadata, textColumns []string) map[string]string {
	forceText := make(map[string]bool, len(textColumns))
	for _, c := range textColumns {
		forceText[c] = true
	}

	types := make(map[string]string, len(metadata.Columns))
	for _, col := range metadata.Columns {
		if forceText[col.Name] {
			types[col.Name] = "TEXT"
			continue
		}
		// Unknown types fall back to TEXT; the converter logs them
		t, _ := w.typeConverter.TargetType(col.DataType)
		types[col.Name] = t
	}
	return types
}

// load creates the target table and inserts the rows in one transaction.
// A failed write leaves a replaced table as it was, except on sinks whose
// DDL commits implicitly.
func (w *Writer) load(
	ctx context.Context,
	table *model.Table,
	metadata *model.TableMetadata,
	target string,
	targetTypes map[string]string,
	textColumns []string,
) (inserted int64, err error) {
	tx, err := w.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				w.logger.Error("Failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	if err = w.createTargetTable(ctx, tx, metadata, target, textColumns); err != nil {
		return 0, err
	}
	if inserted, err = w.insertRows(ctx, tx, table, target, targetTypes); err != nil {
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return inserted, nil
}

// execDDL runs query inside tx, or straight on the sink when its DDL
// cannot take part in a transaction
func (w *Writer) execDDL(ctx context.Context, tx *sqlx.Tx, query string) error {
	if !connector.TransactionalDDL(w.sink.DriverName()) {
		_, err := w.sink.ExecWithTimeout(ctx, query, w.ddlTimeout)
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, w.ddlTimeout)
	defer cancel()
	_, err := tx.ExecContext(ctx, query)
	return err
}

// createTargetTable (re)creates the sink table
func (w *Writer) createTargetTable(
	ctx context.Context,
	tx *sqlx.Tx,
	metadata *model.TableMetadata,
	target string,
	textColumns []string,
) error {
	columnDefs, err := w.typeConverter.GenerateColumnDefinitions(metadata, textColumns...)
	if err != nil {
		return fmt.Errorf("failed to generate column definitions: %w", err)
	}

	quoted := connector.QualifiedName("", target)
	if w.replace {
		if err := w.execDDL(ctx, tx, "DROP TABLE IF EXISTS "+quoted); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", target, err)
		}
	}

	createSQL := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)",
		quoted,
		strings.Join(columnDefs, ",\n\t"),
	)
	if err := w.execDDL(ctx, tx, createSQL); err != nil {
		return fmt.Errorf("failed to create table %s: %w", target, err)
	}

	w.logger.Info("Created table", zap.String("table", target))
	return nil
}

// insertRows inserts the table in batches through tx
func (w *Writer) insertRows(
	ctx context.Context,
	tx *sqlx.Tx,
	table *model.Table,
	target string,
	targetTypes map[string]string,
) (int64, error) {
	if table.Len() == 0 {
		return 0, nil
	}

	quotedCols := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		quotedCols[i] = connector.QualifiedName("", col)
	}
	rowPlaceholder := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(table.Columns)), ", ") + ")"
	baseSQL := fmt.Sprintf("INSERT INTO %s (%s) VALUES ",
		connector.QualifiedName("", target), strings.Join(quotedCols, ", "))

	var inserted int64
	for i := 0; i < table.Len(); i += w.batchSize {
		end := i + w.batchSize
		if end > table.Len() {
			end = table.Len()
		}
		batch := table.Rows[i:end]

		placeholders := make([]string, len(batch))
		args := make([]interface{}, 0, len(batch)*len(table.Columns))
		for j, row := range batch {
			placeholders[j] = rowPlaceholder
			for _, col := range table.Columns {
				value, convErr := w.typeConverter.ConvertValue(row[col], targetTypes[col], col)
				if convErr != nil {
					return 0, fmt.Errorf("row %d: %w", i+j, convErr)
				}
				args = append(args, value)
			}
		}

		query := w.db.Rebind(baseSQL + strings.Join(placeholders, ", "))
		res, execErr := tx.ExecContext(ctx, query, args...)
		if execErr != nil {
			return 0, fmt.Errorf("batch insert failed at row %d: %w", i, execErr)
		}

		rowsAffected, raErr := res.RowsAffected()
		if raErr != nil {
			w.logger.Warn("Couldn't get rows affected", zap.Error(raErr))
			rowsAffected = int64(len(batch))
		}
		inserted += rowsAffected
	}

	return inserted, nil
}
