package quality

import (
	"errors"
	"sort"

	"go.uber.org/zap"

	"github.com/David-Botos/plant-clean/pkg/model"
)

// ColumnProfile is the invalid-value count for one column
type ColumnProfile struct {
	Column  string
	Invalid int
	Valid   int
	Total   int
	Percent float64 // Invalid / Total * 100, 0 for an empty table
}

// Incompleteness counts rows with at least one invalid cell
type Incompleteness struct {
	Incomplete int
	Total      int
	Percent    float64
}

// Profile bundles the column report and the row-level summary
type Profile struct {
	Table          string
	Rows           int
	Columns        []ColumnProfile
	Incompleteness Incompleteness
}

// ProfileColumns computes the percentage of invalid cells per column, sorted
// descending by percentage. Every column is scanned in full. Columns with
// equal percentages keep their table order.
func ProfileColumns(table *model.Table, rules *model.CompiledRules) ([]ColumnProfile, error) {
	profiles := make([]ColumnProfile, 0, len(table.Columns))
	total := table.Len()

	for _, column := range table.Columns {
		invalid := 0
		for i, row := range table.Rows {
			bad, err := IsInvalid(rules, row, column)
			if err != nil {
				return nil, model.PositionError(err, table.Name, i)
			}
			if bad {
				invalid++
			}
		}

		profiles = append(profiles, ColumnProfile{
			Column:  column,
			Invalid: invalid,
			Valid:   total - invalid,
			Total:   total,
			Percent: percent(invalid, total),
		})
	}

	sort.SliceStable(profiles, func(i, j int) bool {
		return profiles[i].Percent > profiles[j].Percent
	})
	return profiles, nil
}

// RowIncompleteness counts rows with at least one invalid cell. Each row
// stops at the first invalid column found.
func RowIncompleteness(table *model.Table, rules *model.CompiledRules) (Incompleteness, error) {
	incomplete := 0
	for i, row := range table.Rows {
		for _, column := range table.Columns {
			bad, err := IsInvalid(rules, row, column)
			if err != nil {
				return Incompleteness{}, model.PositionError(err, table.Name, i)
			}
			if bad {
				incomplete++
				break
			}
		}
	}

	return Incompleteness{
		Incomplete: incomplete,
		Total:      table.Len(),
		Percent:    percent(incomplete, table.Len()),
	}, nil
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

// Profiler runs both reports over a table and logs the outcome
type Profiler struct {
	rules  *model.CompiledRules
	logger *zap.Logger
}

// NewProfiler creates a Profiler for the given rules
func NewProfiler(rules *model.CompiledRules, logger *zap.Logger) (*Profiler, error) {
	if rules == nil {
		return nil, errors.New("rules cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &Profiler{rules: rules, logger: logger}, nil
}

// Profile computes the column report and the row incompleteness summary
func (p *Profiler) Profile(table *model.Table) (*Profile, error) {
	if table == nil {
		return nil, errors.New("table cannot be nil")
	}

	columns, err := ProfileColumns(table, p.rules)
	if err != nil {
		p.logger.Error("Column profiling failed", zap.String("table", table.Name), zap.Error(err))
		return nil, err
	}

	inc, err := RowIncompleteness(table, p.rules)
	if err != nil {
		p.logger.Error("Row incompleteness scan failed", zap.String("table", table.Name), zap.Error(err))
		return nil, err
	}

	p.logger.Info("Profiled table",
		zap.String("table", table.Name),
		zap.Int("rows", table.Len()),
		zap.Int("columns", len(table.Columns)),
		zap.Int("incompleteRows", inc.Incomplete),
		zap.Float64("incompletePercent", inc.Percent))

	return &Profile{
		Table:          table.Name,
		Rows:           table.Len(),
		Columns:        columns,
		Incompleteness: inc,
	}, nil
}
