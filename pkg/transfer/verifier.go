package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/David-Botos/plant-clean/pkg/connector"
)

// Verifier checks written tables against what was meant to be written
type Verifier struct {
	db      *sqlx.DB
	logger  *zap.Logger
	timeout time.Duration
}

// NewVerifier creates a new verifier
func NewVerifier(db *sqlx.DB, logger *zap.Logger) *Verifier {
	return &Verifier{
		db:      db,
		logger:  logger,
		timeout: time.Minute, // Default 1-minute timeout
	}
}

// WithTimeout sets a custom timeout for verification operations
func (v *Verifier) WithTimeout(timeout time.Duration) *Verifier {
	v.timeout = timeout
	return v
}

// VerifyRowCount compares the row count of table with expected
func (v *Verifier) VerifyRowCount(ctx context.Context, table string, expected int64) (bool, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	var count int64
	countQuery := "SELECT COUNT(*) FROM " + connector.QualifiedName("", table)
	if err := v.db.GetContext(ctx, &count, countQuery); err != nil {
		return false, 0, fmt.Errorf("failed to count rows: %w", err)
	}

	matches := count == expected
	if matches {
		v.logger.Info("Row count verification successful",
			zap.String("table", table),
			zap.Int64("count", count))
	} else {
		v.logger.Warn("Row count mismatch",
			zap.String("table", table),
			zap.Int64("expectedCount", expected),
			zap.Int64("targetCount", count),
			zap.Int64("difference", expected-count))
	}

	return matches, count, nil
}
