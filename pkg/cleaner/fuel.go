package cleaner

import (
	"sort"
	"strings"

	"github.com/David-Botos/plant-clean/pkg/model"
)

// FuelNormalizer maps free-text fuel descriptions to canonical tags
type FuelNormalizer struct {
	rules *model.CompiledRules
}

// NewFuelNormalizer creates a normalizer over the rules' keyword list
func NewFuelNormalizer(rules *model.CompiledRules) *FuelNormalizer {
	return &FuelNormalizer{rules: rules}
}

// Standardize returns the canonical tag string for raw.
//
// Blank text and the not-applicable spellings give the empty tag (NONE).
// Otherwise every keyword found as a substring contributes its tag followed
// by the delimiter, in keyword-list order, so "Coal/Gas" gives "GAS|COAL|".
// Matching is by plain substring: "rv" also hits unrelated words such as
// "reserve", and "river rv" yields both RIVER and RV. Text matching no
// keyword gives "", which is not the same outcome as NONE.
func (n *FuelNormalizer) Standardize(raw string) string {
	text := strings.ToLower(strings.TrimSpace(raw))
	if text == "" || n.rules.IsNotApplicable(text) {
		return n.rules.EmptyTag
	}

	delim := n.rules.TagDelimiter
	tags := foldKeywords(n.rules.FuelKeywords, text, func(acc string, kt model.KeywordTag) string {
		return acc + kt.Tag + delim
	})

	if n.rules.StripTrailingDelimiter {
		tags = strings.TrimSuffix(tags, delim)
	}
	return tags
}

// StandardizeValue normalizes a table cell. A nil cell is treated as blank.
func (n *FuelNormalizer) StandardizeValue(value interface{}) (string, error) {
	switch v := value.(type) {
	case nil:
		return n.rules.EmptyTag, nil
	case string:
		return n.Standardize(v), nil
	case []byte:
		return n.Standardize(string(v)), nil
	default:
		return "", &model.MalformedRowError{Column: n.rules.FuelColumn, Value: value, Row: -1}
	}
}

// NormalizeRow returns a copy of row with the fuel column rewritten
func (n *FuelNormalizer) NormalizeRow(row model.Row) (model.Row, error) {
	tag, err := n.StandardizeValue(row[n.rules.FuelColumn])
	if err != nil {
		return nil, err
	}
	out := row.Clone()
	out[n.rules.FuelColumn] = tag
	return out, nil
}

// Normalize returns a copy of row with its fuel column in canonical tag form
func Normalize(rules *model.CompiledRules, row model.Row) (model.Row, error) {
	return NewFuelNormalizer(rules).NormalizeRow(row)
}

// foldKeywords applies fn to every keyword contained in text, in list order
func foldKeywords(keywords []model.KeywordTag, text string, fn func(string, model.KeywordTag) string) string {
	acc := ""
	for _, kt := range keywords {
		if strings.Contains(text, kt.Keyword) {
			acc = fn(acc, kt)
		}
	}
	return acc
}

// FuelMapping is one distinct raw fuel value and the tag it maps to
type FuelMapping struct {
	Raw   string // nil cells are reported as ""
	Tag   string
	Count int
}

// FuelMappings lists the distinct raw fuel values of a table with their
// canonical tags, most frequent first
func FuelMappings(table *model.Table, rules *model.CompiledRules) ([]FuelMapping, error) {
	if err := requireColumns(table, rules.FuelColumn); err != nil {
		return nil, err
	}

	n := NewFuelNormalizer(rules)
	index := make(map[string]int)
	var mappings []FuelMapping

	for i, row := range table.Rows {
		value := row[rules.FuelColumn]
		tag, err := n.StandardizeValue(value)
		if err != nil {
			return nil, model.PositionError(err, table.Name, i)
		}

		raw := ""
		switch v := value.(type) {
		case string:
			raw = v
		case []byte:
			raw = string(v)
		}

		if pos, ok := index[raw]; ok {
			mappings[pos].Count++
			continue
		}
		index[raw] = len(mappings)
		mappings = append(mappings, FuelMapping{Raw: raw, Tag: tag, Count: 1})
	}

	sort.SliceStable(mappings, func(i, j int) bool {
		if mappings[i].Count != mappings[j].Count {
			return mappings[i].Count > mappings[j].Count
		}
		return mappings[i].Raw < mappings[j].Raw
	})
	return mappings, nil
}
