package cleaner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/David-Botos/plant-clean/pkg/model"
)

// DefaultAuditTable is the tracking table used when none is configured
const DefaultAuditTable = "cleaning_audit"

// auditColumns is the tracking table layout, in insert order
var auditColumns = []struct{ name, definition string }{
	{"run_id", "TEXT NOT NULL"},
	{"schema_name", "TEXT"},
	{"table_name", "TEXT NOT NULL"},
	{"column_name", "TEXT NOT NULL"},
	{"original_value", "TEXT"},
	{"new_value", "TEXT NOT NULL"},
	{"row_identifier", "TEXT NOT NULL"},
	{"cleaning_operation", "TEXT NOT NULL"},
	{"cleaning_reason", "TEXT NOT NULL"},
	{"cleaned_at", "TIMESTAMP NOT NULL"},
}

// auditRecord is one tracking table row; field tags match auditColumns
type auditRecord struct {
	RunID         string    `db:"run_id"`
	SchemaName    string    `db:"schema_name"`
	TableName     string    `db:"table_name"`
	ColumnName    string    `db:"column_name"`
	OriginalValue *string   `db:"original_value"`
	NewValue      string    `db:"new_value"`
	RowIdentifier string    `db:"row_identifier"`
	Operation     string    `db:"cleaning_operation"`
	Reason        string    `db:"cleaning_reason"`
	CleanedAt     time.Time `db:"cleaned_at"`
}

func newAuditRecord(op model.CleaningOperation) auditRecord {
	cleanedAt := op.CleanedAt
	if cleanedAt.IsZero() {
		cleanedAt = time.Now().UTC()
	}
	return auditRecord{
		RunID:         op.RunID,
		SchemaName:    op.SchemaName,
		TableName:     op.TableName,
		ColumnName:    op.ColumnName,
		OriginalValue: toNullableString(op.OriginalValue),
		NewValue:      op.NewValue,
		RowIdentifier: op.RowIdentifier,
		Operation:     op.CleaningOperation,
		Reason:        op.CleaningReason,
		CleanedAt:     cleanedAt,
	}
}

// AuditLog persists cleaning operations to a tracking table. It is the
// OperationRecorder used when auditing is enabled.
type AuditLog struct {
	db     *sqlx.DB
	table  string
	insert string
	logger *zap.Logger
}

// NewAuditLog creates an AuditLog and ensures its tracking table exists
func NewAuditLog(ctx context.Context, db *sqlx.DB, table string, logger *zap.Logger) (*AuditLog, error) {
	if db == nil {
		return nil, errors.New("database connection cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if table == "" {
		table = DefaultAuditTable
	}

	names := make([]string, len(auditColumns))
	params := make([]string, len(auditColumns))
	for i, c := range auditColumns {
		names[i] = c.name
		params[i] = ":" + c.name
	}

	audit := &AuditLog{
		db:    db,
		table: table,
		insert: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			pq.QuoteIdentifier(table), strings.Join(names, ", "), strings.Join(params, ", ")),
		logger: logger,
	}

	if err := audit.ensureTable(ctx); err != nil {
		return nil, fmt.Errorf("failed to setup audit table: %w", err)
	}
	return audit, nil
}

func (a *AuditLog) ensureTable(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	defs := make([]string, len(auditColumns))
	for i, c := range auditColumns {
		defs[i] = c.name + " " + c.definition
	}
	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		pq.QuoteIdentifier(a.table), strings.Join(defs, ", "))

	if _, err := a.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create tracking table: %w", err)
	}

	a.logger.Info("Ensured audit table exists", zap.String("table", a.table))
	return nil
}

// Record writes operations in one transaction; either all land or none do
func (a *AuditLog) Record(ctx context.Context, operations []model.CleaningOperation) (err error) {
	if len(operations) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	tx, err := a.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			a.logger.Error("Failed to rollback audit transaction",
				zap.Error(rbErr),
				zap.NamedError("cause", err))
		}
	}()

	for i, op := range operations {
		if _, err = tx.NamedExecContext(ctx, a.insert, newAuditRecord(op)); err != nil {
			return fmt.Errorf("failed to insert cleaning operation %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	a.logger.Info("Recorded cleaning operations",
		zap.String("table", a.table),
		zap.Int("count", len(operations)))
	return nil
}

// toNullableString renders a cell as text, keeping NULL as nil
func toNullableString(v interface{}) *string {
	if v == nil {
		return nil
	}
	s := cast.ToString(v)
	return &s
}
