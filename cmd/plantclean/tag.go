package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/David-Botos/plant-clean/pkg/cleaner"
	"github.com/David-Botos/plant-clean/pkg/config"
	"github.com/David-Botos/plant-clean/pkg/model"
)

var tagCmd = &cobra.Command{
	Use:   "tag <text>...",
	Short: "Print the canonical fuel tags for each argument.",
	Args:  cobra.MinimumNArgs(1),
	// Needs no database, so skip loading connection settings
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		r, err := tagRules(cmd)
		if err != nil {
			return err
		}
		return initRuntime(&config.Config{
			Rules:     r,
			LogLevel:  "warn",
			LogFormat: "console",
		})
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		n := cleaner.NewFuelNormalizer(rules)
		for _, text := range args {
			if _, err := fmt.Fprintf(os.Stdout, "%q -> %q\n", text, n.Standardize(text)); err != nil {
				return err
			}
		}
		return nil
	},
}

// tagRules resolves the rules exactly as the database commands do, without
// loading connection settings
func tagRules(cmd *cobra.Command) (model.Rules, error) {
	r, err := config.ResolveRules(rulesPath(cmd))
	if err != nil {
		return r, err
	}
	if cmd.Flags().Changed("strip-trailing") {
		r.StripTrailingDelimiter = stripTrailing
	}
	return r, nil
}

func rulesPath(cmd *cobra.Command) string {
	if cmd.Flags().Changed("rules") {
		return rulesFileFlag
	}
	return os.Getenv("RULES_FILE")
}
