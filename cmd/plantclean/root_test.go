package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/David-Botos/plant-clean/pkg/config"
	"github.com/David-Botos/plant-clean/pkg/model"
)

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.StringVarP(&tableName, "table", "t", "", "")
	fs.StringVar(&schemaName, "schema", "", "")
	fs.StringVar(&rulesFileFlag, "rules", "", "")
	fs.StringVar(&logLevelFlag, "log-level", "", "")
	fs.BoolVar(&stripTrailing, "strip-trailing", false, "")
	return fs
}

func baseConfig() *config.Config {
	return &config.Config{
		SourceDriver: config.DriverSQLite,
		SourceSchema: "main",
		SourceTable:  "f1_gnrt_plant",
		SinkTable:    "f1_gnrt_plant_clean",
		AuditTable:   "cleaning_audit",
		Rules:        model.DefaultRules(),
		LogLevel:     "info",
		LogFormat:    "console",
	}
}

func TestApplyFlags(t *testing.T) {
	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"-t", "small_plants", "--strip-trailing", "--log-level", "debug"}))

	c := baseConfig()
	require.NoError(t, applyFlags(fs, c))
	assert.Equal(t, "small_plants", c.SourceTable)
	assert.Equal(t, "main", c.SourceSchema, "unset flags keep the environment value")
	assert.Equal(t, "debug", c.LogLevel)
	assert.True(t, c.Rules.StripTrailingDelimiter)
}

func TestApplyFlagsValidates(t *testing.T) {
	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"--table", ""}))

	assert.Error(t, applyFlags(fs, baseConfig()))
}

func TestInitRuntime(t *testing.T) {
	c := baseConfig()
	c.Rules.StripTrailingDelimiter = true
	require.NoError(t, initRuntime(c))

	require.NotNil(t, rules)
	require.NotNil(t, logger)
	assert.True(t, rules.StripTrailingDelimiter)

	c.LogLevel = "chatty"
	assert.Error(t, initRuntime(c))
}

func TestApplyFlagsRulesFileKeepsEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("year_column: YR_CONSTRUCTED\n"), 0o600))
	t.Setenv("NOT_APPLICABLE", "unknown")
	t.Setenv("FUEL_TAG_STRIP_TRAILING", "true")

	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"--rules", path}))

	c := baseConfig()
	require.NoError(t, applyFlags(fs, c))
	assert.Equal(t, path, c.RulesFile)
	assert.Equal(t, "YR_CONSTRUCTED", c.Rules.YearColumn)
	assert.Equal(t, []string{"unknown"}, c.Rules.NotApplicable)
	assert.True(t, c.Rules.StripTrailingDelimiter)
}

func TestTagRulesUseEnvOverrides(t *testing.T) {
	t.Setenv("RULES_FILE", "")
	t.Setenv("NOT_APPLICABLE", "unknown")
	t.Setenv("FUEL_TAG_STRIP_TRAILING", "true")

	r, err := tagRules(tagCmd)
	require.NoError(t, err)
	assert.Equal(t, []string{"unknown"}, r.NotApplicable)
	assert.True(t, r.StripTrailingDelimiter)
}
