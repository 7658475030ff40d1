package config

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"

	"github.com/David-Botos/plant-clean/pkg/model"
)

// Supported database drivers
const (
	DriverPostgres  = "postgres"
	DriverSnowflake = "snowflake"
	DriverSQLite    = "sqlite"
)

// Config represents the application configuration
type Config struct {
	// Source table
	SourceDriver string
	SourceSchema string
	SourceTable  string

	// Optional destination for the cleaned table
	SinkDriver string
	SinkTable  string

	// Cleaning audit trail
	AuditEnabled bool
	AuditTable   string

	// Database connections, only those referenced by a driver are loaded
	Snowflake *SnowflakeConfig
	Postgres  *PostgresConfig
	SQLite    *SQLiteConfig

	// Profiling and cleaning rules
	RulesFile string
	Rules     model.Rules

	// Logging
	LogLevel  string
	LogFormat string
}

// LoadConfig loads configuration from an optional .env file and the environment
func LoadConfig() (*Config, error) {
	envFile := getEnv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	cfg := &Config{
		SourceDriver: strings.ToLower(getEnv("SOURCE_DRIVER", DriverPostgres)),
		SourceSchema: getEnv("SOURCE_SCHEMA", ""),
		SourceTable:  getEnv("SOURCE_TABLE", "f1_gnrt_plant"),
		SinkDriver:   strings.ToLower(getEnv("SINK_DRIVER", "")),
		AuditEnabled: getEnvAsBool("AUDIT_ENABLED", false),
		AuditTable:   getEnv("AUDIT_TABLE", "cleaning_audit"),
		RulesFile:    getEnv("RULES_FILE", ""),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "json"),
	}
	cfg.SinkTable = getEnv("SINK_TABLE", cfg.SourceTable+"_clean")

	rules, err := ResolveRules(cfg.RulesFile)
	if err != nil {
		return nil, err
	}
	cfg.Rules = rules

	// Load database configurations for the drivers in use
	for _, driver := range cfg.Drivers() {
		switch driver {
		case DriverSnowflake:
			cfg.Snowflake, err = LoadSnowflakeConfig()
		case DriverPostgres:
			cfg.Postgres, err = LoadPostgresConfig()
		case DriverSQLite:
			cfg.SQLite, err = LoadSQLiteConfig()
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load %s configuration: %w", driver, err)
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Drivers returns the distinct database drivers the configuration refers to
func (c *Config) Drivers() []string {
	drivers := []string{c.SourceDriver}
	if c.SinkDriver != "" && c.SinkDriver != c.SourceDriver {
		drivers = append(drivers, c.SinkDriver)
	}
	return drivers
}

// Validate ensures all required configuration is present and valid
func (c *Config) Validate() error {
	for _, driver := range c.Drivers() {
		if !isSupportedDriver(driver) {
			return fmt.Errorf("unsupported driver %q", driver)
		}
	}

	if c.SourceTable == "" {
		return errors.New("source table is required")
	}

	if c.SinkDriver != "" && c.SinkTable == "" {
		return errors.New("sink table is required when a sink driver is set")
	}

	if c.SinkDriver == c.SourceDriver && c.SinkTable == c.SourceTable {
		return errors.New("sink table must differ from the source table")
	}

	if c.AuditEnabled && c.AuditTable == "" {
		return errors.New("audit table is required when auditing is enabled")
	}

	if err := c.Rules.Validate(); err != nil {
		return fmt.Errorf("invalid rules: %w", err)
	}

	return nil
}

func isSupportedDriver(driver string) bool {
	switch driver {
	case DriverPostgres, DriverSnowflake, DriverSQLite:
		return true
	default:
		return false
	}
}

// applyRuleOverrides lets single rule settings be changed from the environment
func applyRuleOverrides(r model.Rules) model.Rules {
	r.NumericColumns = getEnvAsStringSlice("NUMERIC_COLUMNS", r.NumericColumns)
	r.NotApplicable = getEnvAsStringSlice("NOT_APPLICABLE", r.NotApplicable)
	r.KeyColumns = getEnvAsStringSlice("KEY_COLUMNS", r.KeyColumns)
	r.YearColumn = getEnv("YEAR_COLUMN", r.YearColumn)
	r.YearPattern = getEnv("YEAR_PATTERN", r.YearPattern)
	r.PlantNameColumn = getEnv("PLANT_NAME_COLUMN", r.PlantNameColumn)
	r.PlantNameNull = getEnv("PLANT_NAME_NULL", r.PlantNameNull)
	r.FuelColumn = getEnv("FUEL_COLUMN", r.FuelColumn)
	r.FootnoteSuffix = getEnv("FOOTNOTE_SUFFIX", r.FootnoteSuffix)
	r.StripTrailingDelimiter = getEnvAsBool("FUEL_TAG_STRIP_TRAILING", r.StripTrailingDelimiter)
	return r
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt falls back to defaultValue when the variable is unset or not a number
func getEnvAsInt(key string, defaultValue int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	value, err := cast.ToIntE(raw)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsSeconds(key string, defaultSeconds int) time.Duration {
	return time.Duration(getEnvAsInt(key, defaultSeconds)) * time.Second
}

func getEnvAsBool(key string, defaultValue bool) bool {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	value, err := cast.ToBoolE(raw)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsStringSlice parses a comma-separated list; quoted items may contain commas
func getEnvAsStringSlice(key string, defaultValue []string) []string {
	var result []string
	for _, v := range splitCommaDelimited(getEnv(key, "")) {
		if v != "" {
			result = append(result, v)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}

// splitCommaDelimited splits one CSV record and trims each item. A malformed
// record yields nil.
func splitCommaDelimited(s string) []string {
	if s == "" {
		return []string{}
	}

	r := csv.NewReader(strings.NewReader(s))
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	record, err := r.Read()
	if err != nil {
		return nil
	}

	for i, v := range record {
		record[i] = strings.TrimSpace(v)
	}
	return record
}
