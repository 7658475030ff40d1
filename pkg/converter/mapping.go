// pkg/converter/mapping.go
package converter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

var typeArgsPattern = regexp.MustCompile(`\(\s*(\d+)\s*(?:,\s*(\d+)\s*)?\)`)

// integerTypes maps the largest decimal precision each integer type holds
var integerTypes = []struct {
	maxPrecision int
	name         string
}{
	{4, "SMALLINT"},
	{9, "INTEGER"},
	{18, "BIGINT"},
}

// getBaseType strips the size arguments from a type such as NUMBER(38,0)
func getBaseType(fullType string) string {
	base, _, _ := strings.Cut(fullType, "(")
	return strings.TrimSpace(base)
}

// typeArgs returns the size arguments of fullType; zero when absent
func typeArgs(fullType string) (first, second int, ok bool) {
	m := typeArgsPattern.FindStringSubmatch(fullType)
	if m == nil {
		return 0, 0, false
	}
	first, _ = strconv.Atoi(m[1])
	if m[2] != "" {
		second, _ = strconv.Atoi(m[2])
	}
	return first, second, true
}

// handleVarcharType keeps sized VARCHARs up to the configured length
func (c *TypeConverter) handleVarcharType(fullType string) string {
	length, _, ok := typeArgs(fullType)
	if c.config.VarcharAsText || !ok || length <= 0 {
		return "TEXT"
	}
	if length > c.config.MaxVarcharLength {
		c.logger.Debug("Converting large VARCHAR to TEXT",
			zap.String("original", fullType),
			zap.Int("length", length))
		return "TEXT"
	}
	return fmt.Sprintf("VARCHAR(%d)", length)
}

// handleNumberType narrows integral NUMBER(p,0) columns to the smallest
// integer type and keeps decimals as NUMERIC
func (c *TypeConverter) handleNumberType(fullType string) string {
	precision, scale, ok := typeArgs(fullType)
	if !ok {
		return "NUMERIC"
	}

	if scale > 0 {
		if c.config.PreserveNumericPrecision {
			return fmt.Sprintf("NUMERIC(%d,%d)", precision, scale)
		}
		return "NUMERIC"
	}

	for _, t := range integerTypes {
		if precision <= t.maxPrecision {
			return t.name
		}
	}
	return fmt.Sprintf("NUMERIC(%d)", precision)
}
