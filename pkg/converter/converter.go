// pkg/converter/converter.go
package converter

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/David-Botos/plant-clean/pkg/model"
)

// TypeConverter maps source column types to sink column types and converts
// cell values for insertion
type TypeConverter struct {
	logger *zap.Logger
	// Configuration options
	config TypeConverterConfig
}

// TypeConverterConfig provides configuration options for type conversion
type TypeConverterConfig struct {
	// Maximum VARCHAR length before converting to TEXT
	MaxVarcharLength int
	// Whether to map sized VARCHARs to TEXT regardless of length
	VarcharAsText bool
	// Whether to treat empty strings in non-text columns as NULL
	EmptyStringAsNull bool
	// Preserve original precision and scale for numeric types
	PreserveNumericPrecision bool
}

// DefaultConfig returns the default configuration
func DefaultConfig() TypeConverterConfig {
	return TypeConverterConfig{
		MaxVarcharLength:         10000,
		VarcharAsText:            false,
		EmptyStringAsNull:        true,
		PreserveNumericPrecision: true,
	}
}

// NewTypeConverter creates a new TypeConverter with default configuration
func NewTypeConverter(logger *zap.Logger) *TypeConverter {
	return NewTypeConverterWithConfig(logger, DefaultConfig())
}

// NewTypeConverterWithConfig creates a TypeConverter with custom configuration
func NewTypeConverterWithConfig(logger *zap.Logger, config TypeConverterConfig) *TypeConverter {
	return &TypeConverter{
		logger: logger,
		config: config,
	}
}

// fixedTypes maps base type names whose target never depends on size arguments
var fixedTypes = invert(map[string][]string{
	"TEXT":                     {"TEXT", "STRING", "CLOB", "NAME"},
	"SMALLINT":                 {"INT2", "SMALLINT", "TINYINT"},
	"INTEGER":                  {"INT4"},
	"BIGINT":                   {"INT", "INTEGER", "INT8", "BIGINT"},
	"REAL":                     {"FLOAT4"},
	"DOUBLE PRECISION":         {"FLOAT", "FLOAT8", "REAL", "DOUBLE", "DOUBLE PRECISION"},
	"BOOLEAN":                  {"BOOL", "BOOLEAN"},
	"DATE":                     {"DATE"},
	"TIMESTAMP":                {"TIMESTAMP", "TIMESTAMP_NTZ", "DATETIME", "TIMESTAMP WITHOUT TIME ZONE"},
	"TIMESTAMP WITH TIME ZONE": {"TIMESTAMPTZ", "TIMESTAMP_TZ", "TIMESTAMP_LTZ", "TIMESTAMP WITH TIME ZONE"},
})

func invert(groups map[string][]string) map[string]string {
	m := make(map[string]string)
	for target, sources := range groups {
		for _, source := range sources {
			m[source] = target
		}
	}
	return m
}

// TargetType converts a source database type name to a sink column type.
// Unknown types fall back to TEXT and are reported as an error.
func (c *TypeConverter) TargetType(sourceType string) (string, error) {
	// Expression columns and untyped SQLite columns report no type
	if sourceType == "" || strings.EqualFold(sourceType, "NULL") {
		return "TEXT", nil
	}

	sourceType = strings.ToUpper(strings.TrimSpace(sourceType))
	baseType := getBaseType(sourceType)

	if target, ok := fixedTypes[baseType]; ok {
		return target, nil
	}

	switch baseType {
	case "VARCHAR", "CHARACTER VARYING", "CHAR", "CHARACTER", "BPCHAR", "NVARCHAR":
		return c.handleVarcharType(sourceType), nil
	case "NUMERIC", "DECIMAL", "NUMBER", "FIXED":
		return c.handleNumberType(sourceType), nil
	}

	c.logger.Warn("Unknown source type encountered", zap.String("sourceType", sourceType))
	return "TEXT", fmt.Errorf("unknown source type: %s (mapped to TEXT as fallback)", sourceType)
}

// GenerateColumnDefinitions creates sink column definitions. Columns named in
// textColumns are always TEXT, for values rewritten by cleaning.
func (c *TypeConverter) GenerateColumnDefinitions(metadata *model.TableMetadata, textColumns ...string) ([]string, error) {
	forceText := make(map[string]bool, len(textColumns))
	for _, col := range textColumns {
		forceText[col] = true
	}

	definitions := make([]string, 0, len(metadata.Columns))
	for _, col := range metadata.Columns {
		targetType := "TEXT"
		if !forceText[col.Name] {
			// Unknown types are already logged and fall back to TEXT
			targetType, _ = c.TargetType(col.DataType)
		}

		nullability := "NULL"
		if !col.Nullable {
			nullability = "NOT NULL"
		}

		definitions = append(definitions, fmt.Sprintf("%s %s %s",
			pq.QuoteIdentifier(col.Name),
			targetType,
			nullability))
	}

	return definitions, nil
}
