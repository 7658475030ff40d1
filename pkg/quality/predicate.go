package quality

import (
	"math"
	"strings"

	"github.com/David-Botos/plant-clean/pkg/model"
)

// IsInvalid reports whether the cell at column in row lacks a valid value.
//
// The plant name column is invalid when blank or equal to the null sentinel,
// the year column when it does not match the year pattern, numeric columns
// only when they hold the missing-value sentinel, and every other column
// when its trimmed text is empty. A nil cell in a text column counts as
// missing. A non-text value in a text column is a *model.MalformedRowError.
func IsInvalid(rules *model.CompiledRules, row model.Row, column string) (bool, error) {
	value := row[column]

	switch {
	case column == rules.PlantNameColumn:
		s, present, err := textValue(column, value)
		if err != nil || !present {
			return !present, err
		}
		trimmed := strings.TrimSpace(s)
		if trimmed == "" {
			return true, nil
		}
		return rules.PlantNameNull != "" && strings.EqualFold(trimmed, rules.PlantNameNull), nil

	case column == rules.YearColumn:
		s, present, err := textValue(column, value)
		if err != nil || !present {
			return !present, err
		}
		return s == "" || !rules.MatchesYear(s), nil

	case rules.IsNumeric(column):
		return isMissingNumber(value), nil

	default:
		s, present, err := textValue(column, value)
		if err != nil || !present {
			return !present, err
		}
		return strings.TrimSpace(s) == "", nil
	}
}

// textValue returns the string held by a text cell. present is false for nil.
func textValue(column string, value interface{}) (s string, present bool, err error) {
	switch v := value.(type) {
	case nil:
		return "", false, nil
	case string:
		return v, true, nil
	case []byte:
		return string(v), true, nil
	default:
		return "", true, &model.MalformedRowError{Column: column, Value: value, Row: -1}
	}
}

// isMissingNumber treats nil and NaN as the missing-value sentinel
func isMissingNumber(value interface{}) bool {
	if value == nil {
		return true
	}
	switch v := value.(type) {
	case float64:
		return math.IsNaN(v)
	case float32:
		return math.IsNaN(float64(v))
	}
	return false
}
