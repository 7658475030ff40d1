package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/David-Botos/plant-clean/pkg/cleaner"
	"github.com/David-Botos/plant-clean/pkg/connector"
	"github.com/David-Botos/plant-clean/pkg/converter"
	"github.com/David-Botos/plant-clean/pkg/export"
	"github.com/David-Botos/plant-clean/pkg/model"
	"github.com/David-Botos/plant-clean/pkg/quality"
	"github.com/David-Botos/plant-clean/pkg/report"
	"github.com/David-Botos/plant-clean/pkg/transfer"
)

var (
	xlsxPath   string
	sinkTable  string
	noWrite    bool
	appendRows bool
	batchSize  int
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Drop heading rows, normalize fuel tags and report the run.",
	Long: `clean keeps the rows whose construction year is a 4-digit year and
rewrites the fuel column of every kept row to its canonical tags. The cleaned
table is written to the configured sink and, with --xlsx, to a workbook.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("sink-table") {
			cfg.SinkTable = sinkTable
		}
		return withSource(cmd.Context(), func(conn connector.DatabaseConnector) error {
			return runClean(cmd.Context(), conn)
		})
	},
}

func init() {
	cleanCmd.Flags().StringVar(&xlsxPath, "xlsx", "", "also save the cleaned table, profile and fuel tags to this workbook")
	cleanCmd.Flags().StringVar(&sinkTable, "sink-table", "", "destination table (overrides SINK_TABLE)")
	cleanCmd.Flags().BoolVar(&noWrite, "no-write", false, "skip writing to the sink database")
	cleanCmd.Flags().BoolVar(&appendRows, "append", false, "append to an existing sink table instead of replacing it")
	cleanCmd.Flags().IntVar(&batchSize, "batch-size", 500, "rows per INSERT statement when writing the sink")
}

func runClean(ctx context.Context, source connector.DatabaseConnector) error {
	metrics := report.NewRunMetrics(cfg.SourceTable, logger.Named("metrics"))

	var (
		table *model.Table
		meta  *model.TableMetadata
	)
	if err := metrics.Time(report.StageLoad, func() error {
		var err error
		table, meta, err = loadSource(ctx, source)
		return err
	}); err != nil {
		return err
	}

	var profile *quality.Profile
	if err := metrics.Time(report.StageProfile, func() error {
		profiler, err := quality.NewProfiler(rules, logger.Named("profiler"))
		if err != nil {
			return err
		}
		profile, err = profiler.Profile(table)
		return err
	}); err != nil {
		return err
	}
	metrics.RecordProfile(profile)

	var sink connector.DatabaseConnector
	if !noWrite {
		var err error
		sink, err = connector.NewConnectorFactory(cfg, logger).CreateSink(ctx)
		if err != nil {
			return err
		}
		if sink != nil {
			defer func() {
				if cerr := sink.Close(); cerr != nil {
					logger.Warn("Failed to close sink connection", zap.Error(cerr))
				}
			}()
		}
	}

	dc, err := cleaner.NewDataCleaner(rules, logger.Named("cleaner"))
	if err != nil {
		return err
	}
	dc.WithSchema(cfg.SourceSchema)

	if cfg.AuditEnabled {
		// Audit records go to the sink, or next to the source without one
		auditConn := sink
		if auditConn == nil {
			auditConn = source
		}
		db := sqlx.NewDb(auditConn.DB(), auditConn.DriverName())
		audit, err := cleaner.NewAuditLog(ctx, db, cfg.AuditTable, logger.Named("audit"))
		if err != nil {
			return err
		}
		dc.WithRecorder(audit)
	}

	var result *cleaner.CleanResult
	if err := metrics.Time(report.StageClean, func() error {
		var err error
		result, err = dc.CleanTable(ctx, table)
		return err
	}); err != nil {
		return err
	}
	metrics.RecordClean(result)

	if sink != nil {
		if err := metrics.Time(report.StageWrite, func() error {
			w, err := transfer.NewWriter(sink, converter.NewTypeConverter(logger.Named("converter")), logger.Named("writer"))
			if err != nil {
				return err
			}
			w.WithBatchSize(batchSize).WithReplace(!appendRows)
			wr, err := w.WriteTable(ctx, result.Table, meta, cfg.SinkTable, rules.FuelColumn)
			if err != nil {
				return err
			}
			metrics.RecordWrite(wr)
			return nil
		}); err != nil {
			return err
		}
	}

	if xlsxPath != "" {
		if err := metrics.Time(report.StageExport, func() error {
			return exportWorkbook(table, result.Table, profile)
		}); err != nil {
			return err
		}
	}

	metrics.Complete()

	if jsonOutput {
		data, err := metrics.ToJSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(os.Stdout, string(data))
		return err
	}
	_, err = fmt.Fprint(os.Stdout, metrics.GenerateReport())
	return err
}

// exportWorkbook saves the cleaned table with the source profile and fuel tags
func exportWorkbook(source, cleaned *model.Table, profile *quality.Profile) error {
	mappings, err := cleaner.FuelMappings(source, rules)
	if err != nil {
		return err
	}
	return export.WriteXLSX(xlsxPath, cleaned, profile, mappings)
}
