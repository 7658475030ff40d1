package report

import (
	"encoding/json"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/plant-clean/pkg/cleaner"
	"github.com/David-Botos/plant-clean/pkg/quality"
	"github.com/David-Botos/plant-clean/pkg/transfer"
)

// Stage names used for timing
const (
	StageLoad    = "load"
	StageProfile = "profile"
	StageClean   = "clean"
	StageWrite   = "write"
	StageExport  = "export"
)

// StageTiming is the duration of one pipeline stage
type StageTiming struct {
	Stage    string
	Duration time.Duration
}

// RunMetrics tracks the metrics of one profiling/cleaning run
type RunMetrics struct {
	logger          *zap.Logger
	Table           string
	RunID           string
	StartTime       time.Time
	EndTime         time.Time
	Columns         int
	RowsRead        int64
	RowsKept        int64
	RowsDropped     int64
	FuelRewrites    int64
	CleaningOps     int
	IncompleteRows  int64
	RowsWritten     int64
	SinkVerified    bool
	PeakMemoryUsage int64
	Stages          []StageTiming
}

// NewRunMetrics creates a new RunMetrics instance
func NewRunMetrics(table string, logger *zap.Logger) *RunMetrics {
	return &RunMetrics{
		logger:    logger,
		Table:     table,
		StartTime: time.Now(),
	}
}

// Time runs fn as the named stage and records its duration
func (m *RunMetrics) Time(stage string, fn func() error) error {
	start := time.Now()
	err := fn()
	d := time.Since(start)
	m.Stages = append(m.Stages, StageTiming{Stage: stage, Duration: d})
	m.sampleMemory()

	if m.logger != nil {
		m.logger.Debug("Stage finished",
			zap.String("stage", stage),
			zap.Duration("duration", d),
			zap.Bool("failed", err != nil))
	}
	return err
}

// RecordProfile records the outcome of profiling
func (m *RunMetrics) RecordProfile(p *quality.Profile) {
	m.Columns = len(p.Columns)
	m.RowsRead = int64(p.Rows)
	m.IncompleteRows = int64(p.Incompleteness.Incomplete)
}

// RecordClean records the outcome of a cleaning pass
func (m *RunMetrics) RecordClean(r *cleaner.CleanResult) {
	m.RunID = r.RunID
	m.RowsRead = int64(r.Read)
	m.RowsKept = int64(r.Kept)
	m.RowsDropped = int64(r.Dropped)
	m.FuelRewrites = int64(r.Rewritten)
	m.CleaningOps = len(r.Operations)
}

// RecordWrite records the outcome of writing the cleaned table
func (m *RunMetrics) RecordWrite(r *transfer.WriteResult) {
	m.RowsWritten = r.RowsWritten
	m.SinkVerified = r.Verified
}

// sampleMemory keeps the peak heap allocation seen so far
func (m *RunMetrics) sampleMemory() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	if alloc := int64(memStats.Alloc); alloc > m.PeakMemoryUsage {
		m.PeakMemoryUsage = alloc
	}
}

// Complete marks the run as complete
func (m *RunMetrics) Complete() {
	m.EndTime = time.Now()
	m.sampleMemory()

	if m.logger != nil {
		m.logger.Info("Run completed",
			zap.String("table", m.Table),
			zap.String("runID", m.RunID),
			zap.Duration("totalDuration", m.Duration()),
			zap.Int64("rowsRead", m.RowsRead),
			zap.Int64("rowsKept", m.RowsKept),
			zap.Int64("rowsDropped", m.RowsDropped),
			zap.Float64("throughput", m.CalculateThroughput()))
	}
}

// Duration returns the total duration of the run
func (m *RunMetrics) Duration() time.Duration {
	if m.EndTime.IsZero() {
		return time.Since(m.StartTime)
	}
	return m.EndTime.Sub(m.StartTime)
}

// CalculateThroughput calculates the rows/second throughput
func (m *RunMetrics) CalculateThroughput() float64 {
	duration := m.Duration().Seconds()
	if duration <= 0 {
		return 0
	}
	return float64(m.RowsRead) / duration
}

// formatBytes converts bytes to a human-readable string
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// formatDuration formats a duration to a human-readable string
func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}

// getPercentage safely calculates a percentage, avoiding division by zero
func getPercentage(value, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(value) / float64(total) * 100
}

// GenerateReport creates a human-readable run report
func (m *RunMetrics) GenerateReport() string {
	report := fmt.Sprintf(`
Cleaning Run Report
===================
Table:                   %s
Run ID:                  %s
Duration:                %s

Rows
----
Rows Read:               %d
Rows Kept:               %d (%.1f%%)
Rows Dropped:            %d (%.1f%%)
Incomplete Rows:         %d (%.1f%%)
Fuel Rewrites:           %d
Cleaning Ops:            %d
Rows Written:            %d
Sink Verified:           %t

Resource Usage
--------------
Peak Memory Usage:       %s
`,
		m.Table,
		m.RunID,
		formatDuration(m.Duration()),

		m.RowsRead,
		m.RowsKept, getPercentage(m.RowsKept, m.RowsRead),
		m.RowsDropped, getPercentage(m.RowsDropped, m.RowsRead),
		m.IncompleteRows, getPercentage(m.IncompleteRows, m.RowsRead),
		m.FuelRewrites,
		m.CleaningOps,
		m.RowsWritten,
		m.SinkVerified,

		formatBytes(m.PeakMemoryUsage),
	)

	if len(m.Stages) > 0 {
		report += "\nStages\n------\n"
		for _, s := range m.Stages {
			report += fmt.Sprintf("- %s: %s\n", s.Stage, formatDuration(s.Duration))
		}
	}

	return report
}

// ToJSON serializes metrics to JSON
func (m *RunMetrics) ToJSON() ([]byte, error) {
	stages := make(map[string]string, len(m.Stages))
	for _, s := range m.Stages {
		stages[s.Stage] = formatDuration(s.Duration)
	}

	return json.Marshal(struct {
		Table          string            `json:"table"`
		RunID          string            `json:"runId,omitempty"`
		Duration       string            `json:"duration"`
		RowsRead       int64             `json:"rowsRead"`
		RowsKept       int64             `json:"rowsKept"`
		RowsDropped    int64             `json:"rowsDropped"`
		IncompleteRows int64             `json:"incompleteRows"`
		FuelRewrites   int64             `json:"fuelRewrites"`
		CleaningOps    int               `json:"cleaningOps"`
		RowsWritten    int64             `json:"rowsWritten"`
		SinkVerified   bool              `json:"sinkVerified"`
		Throughput     float64           `json:"throughput"`
		Stages         map[string]string `json:"stages,omitempty"`
	}{
		Table:          m.Table,
		RunID:          m.RunID,
		Duration:       formatDuration(m.Duration()),
		RowsRead:       m.RowsRead,
		RowsKept:       m.RowsKept,
		RowsDropped:    m.RowsDropped,
		IncompleteRows: m.IncompleteRows,
		FuelRewrites:   m.FuelRewrites,
		CleaningOps:    m.CleaningOps,
		RowsWritten:    m.RowsWritten,
		SinkVerified:   m.SinkVerified,
		Throughput:     m.CalculateThroughput(),
		Stages:         stages,
	})
}
