package connector

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/David-Botos/plant-clean/pkg/config"
)

// ConnectorFactory creates database connectors
type ConnectorFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewConnectorFactory creates a new connector factory
func NewConnectorFactory(cfg *config.Config, logger *zap.Logger) *ConnectorFactory {
	return &ConnectorFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// Create opens a connector for the named driver
func (f *ConnectorFactory) Create(ctx context.Context, driver string) (DatabaseConnector, error) {
	f.logger.Info("Creating connector", zap.String("driver", driver))

	var (
		conn DatabaseConnector
		err  error
	)
	switch driver {
	case config.DriverPostgres:
		if f.cfg.Postgres == nil {
			return nil, fmt.Errorf("PostgreSQL configuration is not loaded")
		}
		conn, err = NewPostgresConnector(ctx, f.cfg.Postgres)
	case config.DriverSnowflake:
		if f.cfg.Snowflake == nil {
			return nil, fmt.Errorf("snowflake configuration is not loaded")
		}
		conn, err = NewSnowflakeConnector(ctx, f.cfg.Snowflake)
	case config.DriverSQLite:
		if f.cfg.SQLite == nil {
			return nil, fmt.Errorf("SQLite configuration is not loaded")
		}
		conn, err = NewSQLiteConnector(ctx, f.cfg.SQLite)
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s connector: %w", driver, err)
	}

	if err := conn.Validate(); err != nil {
		if cerr := conn.Close(); cerr != nil {
			f.logger.Warn("Failed to close connector", zap.Error(cerr))
		}
		return nil, fmt.Errorf("failed to validate %s connection: %w", driver, err)
	}

	return conn, nil
}

// CreateSource opens the connector holding the source table
func (f *ConnectorFactory) CreateSource(ctx context.Context) (DatabaseConnector, error) {
	return f.Create(ctx, f.cfg.SourceDriver)
}

// CreateSink opens the connector the cleaned table is written to. It returns
// nil when no sink is configured.
func (f *ConnectorFactory) CreateSink(ctx context.Context) (DatabaseConnector, error) {
	if f.cfg.SinkDriver == "" {
		return nil, nil
	}
	return f.Create(ctx, f.cfg.SinkDriver)
}
