// Package ports defines interfaces for infrastructure dependencies.
// These are the "ports" in hexagonal architecture - abstractions that
// the application layer depends on but doesn't implement.
package ports

import (
	"context"
	"io"

	"github.com/dftest-dev/dftest/internal/application/dto"
	"github.com/dftest-dev/dftest/internal/domain/dataset"
	"github.com/dftest-dev/dftest/internal/domain/results"
	"github.com/dftest-dev/dftest/internal/domain/rules"
	"github.com/dftest-dev/dftest/internal/infrastructure/system"
)

// RulesLoader loads rules files.
type RulesLoader interface {
	Load(path string) (*rules.Config, error)
}

// DatasetLoader loads a dataset from storage.
type DatasetLoader interface {
	Load(ctx context.Context, path string) (*dataset.Table, error)
}

// SystemConfigProvider loads system configuration.
type SystemConfigProvider interface {
	Load(path string) (*system.Config, error)
}

// ValidationEngine runs one validation.
type ValidationEngine interface {
	Run(ctx context.Context) (*results.Results, error)
}

// EngineFactory creates validation engines.
type EngineFactory interface {
	CreateEngine(ds dataset.Dataset, cfg *rules.Config, execution dto.ExecutionOptions) ValidationEngine
}

// OutputFormatter formats validation results.
type OutputFormatter interface {
	Format(res *results.Results) error
}

// FormatterOptions configures formatter creation.
type FormatterOptions struct {
	RulesPath        string
	MaxFailedRows    int
	Indent           bool
	EnableColor      bool
	ShowValidColumns bool
	ShowUntested     bool
	Stub             bool
	PrintAllFailed   bool
}

// OutputFormatterFactory creates formatters by name.
type OutputFormatterFactory interface {
	Create(format string, writer io.Writer, options FormatterOptions) (OutputFormatter, error)
	SupportedFormats() []string
}

// ChartRenderer draws chart data on a terminal.
type ChartRenderer interface {
	RenderSummary(w io.Writer, charts results.SummaryCharts) error
	RenderHeatmap(w io.Writer, heatmap results.Heatmap) error
	RenderBarChart(w io.Writer, chart results.BarChart) error
	RenderPieChart(w io.Writer, chart results.PieChart) error
}

// RowInspector exports rows and opens them for viewing.
type RowInspector interface {
	results.RowInspector
}
