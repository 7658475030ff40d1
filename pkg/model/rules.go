package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// KeywordTag pairs a lowercase keyword with the canonical tag it produces
type KeywordTag struct {
	Keyword string `yaml:"keyword"`
	Tag     string `yaml:"tag"`
}

// Rules holds the column-specific validity rules and the fuel vocabulary.
// It is passed explicitly to every profiling and cleaning function.
type Rules struct {
	NumericColumns []string `yaml:"numeric_columns"`

	YearColumn  string `yaml:"year_column"`
	YearPattern string `yaml:"year_pattern"`

	PlantNameColumn string `yaml:"plant_name_column"`
	PlantNameNull   string `yaml:"plant_name_null"`

	FuelColumn             string       `yaml:"fuel_column"`
	NotApplicable          []string     `yaml:"not_applicable"`
	FuelKeywords           []KeywordTag `yaml:"fuel_keywords"`
	EmptyTag               string       `yaml:"empty_tag"`
	TagDelimiter           string       `yaml:"tag_delimiter"`
	StripTrailingDelimiter bool         `yaml:"strip_trailing_delimiter"`

	FootnoteSuffix string   `yaml:"footnote_suffix"`
	KeyColumns     []string `yaml:"key_columns"`
}

// DefaultRules returns the rules for the FERC Form 1 small plant table
func DefaultRules() Rules {
	return Rules{
		NumericColumns: []string{
			"respondent_id", "report_year", "spplmnt_num", "row_number",
			"row_seq", "row_prvlg", "capacity_rating", "net_demand",
			"net_generation", "plant_cost", "plant_cost_mw", "operation",
			"expns_fuel", "expns_maint", "fuel_cost",
		},
		YearColumn:      "yr_constructed",
		YearPattern:     `^[0-9]{4}$`,
		PlantNameColumn: "plant_name",
		PlantNameNull:   "none",
		FuelColumn:      "kind_of_fuel",
		NotApplicable:   []string{"none", "n/a", "na", "n.a."},
		FuelKeywords: []KeywordTag{
			{Keyword: "oil", Tag: "OIL"},
			{Keyword: "gas", Tag: "GAS"},
			{Keyword: "diesel", Tag: "DIESEL"},
			{Keyword: "hydro", Tag: "HYDRO"},
			{Keyword: "coal", Tag: "COAL"},
			{Keyword: "water", Tag: "WATER"},
			{Keyword: "wind", Tag: "WIND"},
			{Keyword: "solar", Tag: "SOLAR"},
			{Keyword: "waste heat", Tag: "WASTE HEAT"},
			{Keyword: "propane", Tag: "PROPANE"},
			{Keyword: "methane", Tag: "METHANE"},
			{Keyword: "fossil", Tag: "FOSSIL"},
			{Keyword: "river", Tag: "RIVER"},
			// "rv" also matches inside unrelated words; kept as-is.
			{Keyword: "rv", Tag: "RV"},
			{Keyword: "steam", Tag: "STEAM"},
		},
		EmptyTag:       "NONE",
		TagDelimiter:   "|",
		FootnoteSuffix: "_f",
		KeyColumns:     []string{"respondent_id", "report_year", "spplmnt_num", "row_number"},
	}
}

// Validate ensures the rules are usable
func (r Rules) Validate() error {
	if r.YearColumn == "" {
		return errors.New("year column is required")
	}
	if r.YearPattern == "" {
		return errors.New("year pattern is required")
	}
	if _, err := regexp.Compile(r.YearPattern); err != nil {
		return fmt.Errorf("invalid year pattern %q: %w", r.YearPattern, err)
	}
	if r.FuelColumn == "" {
		return errors.New("fuel column is required")
	}
	if r.EmptyTag == "" {
		return errors.New("empty tag is required")
	}
	if len(r.FuelKeywords) == 0 {
		return errors.New("at least one fuel keyword is required")
	}
	for i, kt := range r.FuelKeywords {
		if strings.TrimSpace(kt.Keyword) == "" || kt.Tag == "" {
			return fmt.Errorf("fuel keyword %d: keyword and tag are required", i)
		}
	}
	return nil
}

// CompiledRules is Rules with the year regexp compiled and column lookups
// prepared. Build it once per run with Compile.
type CompiledRules struct {
	Rules
	yearRe   *regexp.Regexp
	numeric  map[string]bool
	naValues map[string]bool
}

// Compile validates the rules and prepares them for row scans
func (r Rules) Compile() (*CompiledRules, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	cr := &CompiledRules{
		Rules:    r,
		yearRe:   regexp.MustCompile(r.YearPattern),
		numeric:  make(map[string]bool, len(r.NumericColumns)),
		naValues: make(map[string]bool, len(r.NotApplicable)),
	}
	for _, c := range r.NumericColumns {
		cr.numeric[c] = true
	}
	for _, v := range r.NotApplicable {
		cr.naValues[strings.ToLower(strings.TrimSpace(v))] = true
	}
	// Keywords match against lowercased text
	cr.FuelKeywords = make([]KeywordTag, len(r.FuelKeywords))
	for i, kt := range r.FuelKeywords {
		cr.FuelKeywords[i] = KeywordTag{Keyword: strings.ToLower(kt.Keyword), Tag: kt.Tag}
	}
	return cr, nil
}

// MustCompile is like Compile but panics on invalid rules
func (r Rules) MustCompile() *CompiledRules {
	cr, err := r.Compile()
	if err != nil {
		panic(err)
	}
	return cr
}

// IsNumeric reports whether column is in the numeric set
func (cr *CompiledRules) IsNumeric(column string) bool {
	return cr.numeric[column]
}

// MatchesYear reports whether s matches the year pattern
func (cr *CompiledRules) MatchesYear(s string) bool {
	return cr.yearRe.MatchString(s)
}

// IsNotApplicable reports whether normalized (trimmed, lowercased) text is
// one of the recognized "not applicable" spellings
func (cr *CompiledRules) IsNotApplicable(normalized string) bool {
	return cr.naValues[normalized]
}
