package cleaner

import (
	"github.com/David-Botos/plant-clean/pkg/model"
)

// Decision is the outcome of classifying a row
type Decision int

const (
	// Keep marks a plant row
	Keep Decision = iota
	// Drop marks a heading/aggregate row
	Drop
)

// String returns a readable name for the decision
func (d Decision) String() string {
	switch d {
	case Keep:
		return "keep"
	case Drop:
		return "drop"
	default:
		return "unknown"
	}
}

// Classify keeps rows whose year-constructed value matches the year pattern.
// A missing year drops the row; a non-text year is a malformed row.
func Classify(rules *model.CompiledRules, row model.Row) (Decision, error) {
	switch v := row[rules.YearColumn].(type) {
	case nil:
		return Drop, nil
	case string:
		return decide(rules.MatchesYear(v)), nil
	case []byte:
		return decide(rules.MatchesYear(string(v))), nil
	default:
		return Drop, &model.MalformedRowError{Column: rules.YearColumn, Value: v, Row: -1}
	}
}

func decide(keep bool) Decision {
	if keep {
		return Keep
	}
	return Drop
}
