package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/David-Botos/plant-clean/pkg/cleaner"
	"github.com/David-Botos/plant-clean/pkg/connector"
	"github.com/David-Botos/plant-clean/pkg/quality"
	"github.com/David-Botos/plant-clean/pkg/report"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Print the percentage of missing or invalid values per column.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSource(cmd.Context(), func(conn connector.DatabaseConnector) error {
			table, _, err := loadSource(cmd.Context(), conn)
			if err != nil {
				return err
			}

			profiler, err := quality.NewProfiler(rules, logger.Named("profiler"))
			if err != nil {
				return err
			}
			p, err := profiler.Profile(table)
			if err != nil {
				return err
			}

			if jsonOutput {
				return json.NewEncoder(os.Stdout).Encode(p)
			}
			return report.WriteProfile(os.Stdout, p)
		})
	},
}

var fuelsCmd = &cobra.Command{
	Use:   "fuels",
	Short: "Print every distinct fuel description with its canonical tags.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSource(cmd.Context(), func(conn connector.DatabaseConnector) error {
			table, _, err := loadSource(cmd.Context(), conn)
			if err != nil {
				return err
			}

			mappings, err := cleaner.FuelMappings(table, rules)
			if err != nil {
				return err
			}

			if jsonOutput {
				return json.NewEncoder(os.Stdout).Encode(mappings)
			}
			return report.WriteFuelMappings(os.Stdout, mappings)
		})
	},
}
