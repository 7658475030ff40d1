package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/David-Botos/plant-clean/pkg/model"
)

// LoadRules returns the default rules overlaid with the YAML file at path.
// An empty path returns the defaults. Lists in the file replace the defaults.
func LoadRules(path string) (model.Rules, error) {
	rules := model.DefaultRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return rules, fmt.Errorf("failed to read rules file: %w", err)
	}

	if err := yaml.Unmarshal(data, &rules); err != nil {
		return rules, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}

	if err := rules.Validate(); err != nil {
		return rules, fmt.Errorf("invalid rules in %s: %w", path, err)
	}

	return rules, nil
}

// ResolveRules loads the rules file at path and applies the single-setting
// environment overrides on top, the same way LoadConfig does
func ResolveRules(path string) (model.Rules, error) {
	rules, err := LoadRules(path)
	if err != nil {
		return rules, err
	}
	return applyRuleOverrides(rules), nil
}
