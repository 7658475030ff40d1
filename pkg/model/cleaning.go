package model

import (
	"time"
)

// Operation names recorded in the audit trail
const (
	OperationFuelStandardization = "fuel_standardization"
	OperationRowRemoval          = "row_removal"
)

// CleaningOperation represents a single data cleaning operation
type CleaningOperation struct {
	RunID             string      // Identifier of the cleaning run
	SchemaName        string      // Database schema name
	TableName         string      // Table name
	ColumnName        string      // Column that was cleaned
	OriginalValue     interface{} // Original value (may be nil)
	NewValue          string      // New value after cleaning
	RowIdentifier     string      // Key columns joined, or the row index
	CleaningOperation string      // Type of cleaning performed (e.g., "fuel_standardization")
	CleaningReason    string      // Reason for cleaning (e.g., "invalid_year_constructed")
	CleanedAt         time.Time   // When the cleaning occurred
}
