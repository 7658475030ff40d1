package model

import "strings"

// TableMetadata contains the structure information for a source table
type TableMetadata struct {
	Schema  string   // Schema name (may be empty)
	Table   string   // Table name
	Columns []Column // Column definitions, in source order
	Dropped []string // Footnote columns removed at load time
}

// Column represents metadata about a database column
type Column struct {
	Name     string // Column name
	DataType string // Database type name reported by the driver
	Nullable bool   // Whether column allows NULL values
}

// GetColumnByName returns a column by name (case-insensitive)
// Returns nil if column not found
func (tm *TableMetadata) GetColumnByName(name string) *Column {
	normalizedName := normalizeColumnName(name)
	for i, col := range tm.Columns {
		if normalizeColumnName(col.Name) == normalizedName {
			return &tm.Columns[i]
		}
	}
	return nil
}

// FullName returns schema.table, or just the table when no schema is set
func (tm *TableMetadata) FullName() string {
	if tm.Schema == "" {
		return tm.Table
	}
	return tm.Schema + "." + tm.Table
}

// IsFootnoteColumn reports whether a column is a footnote reference column
// that should be excluded from analysis.
func IsFootnoteColumn(name, suffix string) bool {
	if suffix == "" {
		return false
	}
	return hasSuffix(name, suffix)
}

func normalizeColumnName(name string) string {
	return strings.ToLower(name)
}

func hasSuffix(s, suffix string) bool {
	return strings.HasSuffix(
		strings.ToLower(s),
		strings.ToLower(suffix),
	)
}
