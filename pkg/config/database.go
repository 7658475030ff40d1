// pkg/config/database.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/snowflakedb/gosnowflake"
)

// PoolConfig holds database/sql pool limits shared by every driver
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// loadPoolConfig reads <prefix>_MAX_OPEN_CONNS and friends
func loadPoolConfig(prefix string, maxOpen, maxIdle, lifetimeSeconds, idleSeconds int) PoolConfig {
	return PoolConfig{
		MaxOpenConns:    getEnvAsInt(prefix+"_MAX_OPEN_CONNS", maxOpen),
		MaxIdleConns:    getEnvAsInt(prefix+"_MAX_IDLE_CONNS", maxIdle),
		ConnMaxLifetime: getEnvAsSeconds(prefix+"_CONN_MAX_LIFETIME_SECONDS", lifetimeSeconds),
		ConnMaxIdleTime: getEnvAsSeconds(prefix+"_CONN_MAX_IDLE_TIME_SECONDS", idleSeconds),
	}
}

// SnowflakeConfig holds Snowflake connection parameters
type SnowflakeConfig struct {
	User          string
	Password      string
	Account       string
	Warehouse     string
	Database      string // FERC1 unless set
	Schema        string // PUBLIC unless set
	Role          string
	Authenticator gosnowflake.AuthType

	Pool PoolConfig

	// Applied as a session parameter on every pooled connection
	QueryTimeout time.Duration
}

// PostgresConfig holds PostgreSQL connection parameters
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	Pool PoolConfig

	// Sent as a runtime parameter on every pooled connection
	StatementTimeout time.Duration
}

// SQLiteConfig holds the path of a local SQLite extract
type SQLiteConfig struct {
	Path string
}

var snowflakeAuthenticators = map[string]gosnowflake.AuthType{
	"snowflake":             gosnowflake.AuthTypeSnowflake,
	"oauth":                 gosnowflake.AuthTypeOAuth,
	"externalbrowser":       gosnowflake.AuthTypeExternalBrowser,
	"username_password_mfa": gosnowflake.AuthTypeUsernamePasswordMFA,
	"jwt":                   gosnowflake.AuthTypeJwt,
	"token":                 gosnowflake.AuthTypeTokenAccessor,
	"okta":                  gosnowflake.AuthTypeOkta,
}

// LoadSnowflakeConfig loads Snowflake configuration from environment variables
func LoadSnowflakeConfig() (*SnowflakeConfig, error) {
	required, err := requireEnv("SNOWFLAKE_USER", "SNOWFLAKE_PASSWORD", "SNOWFLAKE_ACCOUNT", "SNOWFLAKE_WAREHOUSE")
	if err != nil {
		return nil, err
	}

	name := strings.ToLower(getEnv("SNOWFLAKE_AUTHENTICATOR", "snowflake"))
	authenticator, ok := snowflakeAuthenticators[name]
	if !ok {
		return nil, fmt.Errorf("unsupported SNOWFLAKE_AUTHENTICATOR %q", name)
	}

	return &SnowflakeConfig{
		User:          required["SNOWFLAKE_USER"],
		Password:      required["SNOWFLAKE_PASSWORD"],
		Account:       required["SNOWFLAKE_ACCOUNT"],
		Warehouse:     required["SNOWFLAKE_WAREHOUSE"],
		Database:      getEnv("SNOWFLAKE_DATABASE", "FERC1"),
		Schema:        getEnv("SNOWFLAKE_SCHEMA", "PUBLIC"),
		Role:          getEnv("SNOWFLAKE_ROLE", ""),
		Authenticator: authenticator,
		Pool:          loadPoolConfig("SNOWFLAKE", 10, 5, 600, 300),
		QueryTimeout:  getEnvAsSeconds("SNOWFLAKE_QUERY_TIMEOUT_SECONDS", 300),
	}, nil
}

// DriverConfig returns the gosnowflake configuration used to build the DSN
func (c *SnowflakeConfig) DriverConfig() *gosnowflake.Config {
	sf := &gosnowflake.Config{
		Account:       c.Account,
		User:          c.User,
		Password:      c.Password,
		Database:      c.Database,
		Schema:        c.Schema,
		Warehouse:     c.Warehouse,
		Role:          c.Role,
		Authenticator: c.Authenticator,
	}
	if c.QueryTimeout > 0 {
		seconds := strconv.Itoa(int(c.QueryTimeout.Seconds()))
		sf.Params = map[string]*string{"STATEMENT_TIMEOUT_IN_SECONDS": &seconds}
	}
	return sf
}

// LoadPostgresConfig loads PostgreSQL configuration from environment variables
func LoadPostgresConfig() (*PostgresConfig, error) {
	required, err := requireEnv("POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB")
	if err != nil {
		return nil, err
	}

	return &PostgresConfig{
		Host:             getEnv("POSTGRES_HOST", "localhost"),
		Port:             getEnvAsInt("POSTGRES_PORT", 5432),
		User:             required["POSTGRES_USER"],
		Password:         required["POSTGRES_PASSWORD"],
		Database:         required["POSTGRES_DB"],
		SSLMode:          getEnv("POSTGRES_SSLMODE", "disable"),
		Pool:             loadPoolConfig("POSTGRES", 25, 10, 1800, 600),
		StatementTimeout: getEnvAsSeconds("POSTGRES_STATEMENT_TIMEOUT_SECONDS", 300),
	}, nil
}

// ConnectionString returns a keyword/value PostgreSQL connection string
func (c *PostgresConfig) ConnectionString() string {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
	if c.StatementTimeout > 0 {
		dsn += fmt.Sprintf(" statement_timeout=%d", c.StatementTimeout.Milliseconds())
	}
	return dsn
}

// LoadSQLiteConfig loads SQLite configuration from environment variables
func LoadSQLiteConfig() (*SQLiteConfig, error) {
	required, err := requireEnv("SQLITE_PATH")
	if err != nil {
		return nil, err
	}
	return &SQLiteConfig{Path: required["SQLITE_PATH"]}, nil
}

// IsMemory reports whether the database lives only in memory
func (c *SQLiteConfig) IsMemory() bool {
	return c.Path == ":memory:" || strings.Contains(c.Path, "mode=memory")
}

// requireEnv returns the values of keys, failing on the first one unset
func requireEnv(keys ...string) (map[string]string, error) {
	values := make(map[string]string, len(keys))
	for _, key := range keys {
		value := os.Getenv(key)
		if value == "" {
			return nil, fmt.Errorf("%s environment variable is required", key)
		}
		values[key] = value
	}
	return values, nil
}
