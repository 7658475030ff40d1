package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/David-Botos/plant-clean/pkg/config"
	"github.com/David-Botos/plant-clean/pkg/connector"
	"github.com/David-Botos/plant-clean/pkg/model"
)

var (
	// Flags overriding the environment
	tableName     string
	schemaName    string
	stripTrailing bool
	jsonOutput    bool
	logLevelFlag  string
	rulesFileFlag string

	// Set up by the persistent pre-run
	cfg    *config.Config
	rules  *model.CompiledRules
	logger *zap.Logger
)

// RootCmd is the main command.
var RootCmd = &cobra.Command{
	Use:   "plantclean",
	Short: "Profile and clean the FERC Form 1 small plant table.",
	Long: `plantclean reads the small generating plant table, reports missing and
invalid values per column, normalizes the free-text fuel column to
canonical tags and drops heading rows that carry no construction year.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	flags := RootCmd.PersistentFlags()
	flags.StringVarP(&tableName, "table", "t", "", "source table (overrides SOURCE_TABLE)")
	flags.StringVar(&schemaName, "schema", "", "source schema (overrides SOURCE_SCHEMA)")
	flags.StringVar(&rulesFileFlag, "rules", "", "YAML rules file (overrides RULES_FILE)")
	flags.StringVar(&logLevelFlag, "log-level", "", "log level (overrides LOG_LEVEL)")
	flags.BoolVar(&stripTrailing, "strip-trailing", false, "drop the trailing delimiter from fuel tags")
	flags.BoolVar(&jsonOutput, "json", false, "print results as JSON where supported")

	RootCmd.AddCommand(profileCmd, fuelsCmd, cleanCmd, tagCmd)
}

// setup loads the configuration, applies flag overrides and installs the
// global logger
func setup(cmd *cobra.Command, args []string) error {
	c, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := applyFlags(cmd.Flags(), c); err != nil {
		return err
	}
	return initRuntime(c)
}

// applyFlags copies explicitly set flags over the environment settings
func applyFlags(flags *pflag.FlagSet, c *config.Config) error {
	if flags.Changed("table") {
		c.SourceTable = tableName
	}
	if flags.Changed("schema") {
		c.SourceSchema = schemaName
	}
	if flags.Changed("log-level") {
		c.LogLevel = logLevelFlag
	}
	if flags.Changed("rules") {
		c.RulesFile = rulesFileFlag
		r, err := config.ResolveRules(rulesFileFlag)
		if err != nil {
			return err
		}
		c.Rules = r
	}
	if flags.Changed("strip-trailing") {
		c.Rules.StripTrailingDelimiter = stripTrailing
	}
	return c.Validate()
}

func initRuntime(c *config.Config) error {
	l, err := config.NewLogger(c)
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(l)

	compiled, err := c.Rules.Compile()
	if err != nil {
		return fmt.Errorf("invalid rules: %w", err)
	}

	cfg = c
	rules = compiled
	logger = l
	return nil
}

// loadSource reads the configured source table through conn
func loadSource(ctx context.Context, conn connector.DatabaseConnector) (*model.Table, *model.TableMetadata, error) {
	return connector.ReadTable(ctx, conn, cfg.SourceTable, connector.ReadOptions{
		Schema:         cfg.SourceSchema,
		FootnoteSuffix: cfg.Rules.FootnoteSuffix,
	})
}

// withSource opens the source database for the duration of fn
func withSource(ctx context.Context, fn func(conn connector.DatabaseConnector) error) error {
	factory := connector.NewConnectorFactory(cfg, logger)
	conn, err := factory.CreateSource(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			logger.Warn("Failed to close source connection", zap.Error(cerr))
		}
	}()
	return fn(conn)
}
