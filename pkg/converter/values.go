// pkg/converter/values.go
package converter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// ConvertValue converts a cell to a value the sink driver accepts for
// targetType. nil stays nil.
func (c *TypeConverter) ConvertValue(value interface{}, targetType string, colName string) (interface{}, error) {
	if value == nil {
		return nil, nil
	}

	targetType = strings.ToUpper(targetType)

	// Text keeps empty strings; an empty fuel tag is a meaningful value
	if targetType == "TEXT" || strings.HasPrefix(targetType, "VARCHAR") {
		s, err := cast.ToStringE(value)
		if err != nil {
			return nil, fmt.Errorf("column %s: cannot convert %T to text: %w", colName, value, err)
		}
		return s, nil
	}

	if s, ok := value.(string); ok && strings.TrimSpace(s) == "" && c.config.EmptyStringAsNull {
		return nil, nil
	}

	var (
		out interface{}
		err error
	)
	switch {
	case targetType == "SMALLINT", targetType == "INTEGER", targetType == "BIGINT":
		out, err = c.convertToInteger(value)
	case strings.HasPrefix(targetType, "NUMERIC"):
		out, err = c.convertToNumeric(value)
	case targetType == "REAL", targetType == "DOUBLE PRECISION":
		out, err = cast.ToFloat64E(value)
	case targetType == "BOOLEAN":
		out, err = cast.ToBoolE(value)
	case targetType == "DATE", strings.HasPrefix(targetType, "TIMESTAMP"):
		out, err = convertToTime(value)
	default:
		out, err = cast.ToStringE(value)
	}
	if err != nil {
		return nil, fmt.Errorf("column %s: cannot convert %v to %s: %w", colName, value, targetType, err)
	}
	return out, nil
}

// convertToInteger accepts integral floats and numeric strings such as "12.0"
func (c *TypeConverter) convertToInteger(value interface{}) (interface{}, error) {
	if s, ok := value.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, err
		}
		value = f
	}
	switch v := value.(type) {
	case float32, float64:
		f := cast.ToFloat64(v)
		if f != float64(int64(f)) {
			return nil, fmt.Errorf("%v is not integral", v)
		}
		return int64(f), nil
	}
	return cast.ToInt64E(value)
}

// convertToNumeric keeps numeric strings as text so precision is not lost
func (c *TypeConverter) convertToNumeric(value interface{}) (interface{}, error) {
	if s, ok := value.(string); ok {
		s = strings.TrimSpace(s)
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return nil, err
		}
		if c.config.PreserveNumericPrecision {
			return s, nil
		}
	}
	return cast.ToFloat64E(value)
}

// convertToTime parses dates and timestamps in the usual layouts
func convertToTime(value interface{}) (interface{}, error) {
	if t, ok := value.(time.Time); ok {
		return t, nil
	}
	return cast.ToTimeE(value)
}
