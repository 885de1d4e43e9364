package output

import (
	"time"

	"github.com/dftest-dev/dftest/internal/domain/results"
	"github.com/dftest-dev/dftest/internal/version"
)

// maxReportedRows caps the invalid row indices listed per test in structured reports.
const maxReportedRows = 1000

// Report is the serializable form of a run used by the JSON and YAML formatters.
type Report struct {
	StartedAt  time.Time       `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time       `json:"finished_at" yaml:"finished_at"`
	Rules      RulesInfo       `json:"rules" yaml:"rules"`
	RunID      string          `json:"run_id" yaml:"run_id"`
	Version    string          `json:"dftest_version" yaml:"dftest_version"`
	Untested   []string        `json:"untested_columns" yaml:"untested_columns"`
	Columns    []ColumnReport  `json:"columns" yaml:"columns"`
	Summary    results.Summary `json:"summary" yaml:"summary"`
	DurationMS int64           `json:"duration_ms" yaml:"duration_ms"`
}

// RulesInfo describes the rules file of the run.
type RulesInfo struct {
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Version     string `json:"version,omitempty" yaml:"version,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Source      string `json:"source,omitempty" yaml:"source,omitempty"`
}

// ColumnReport is one validated column.
type ColumnReport struct {
	Name   string         `json:"name" yaml:"name"`
	Color  string         `json:"color" yaml:"color"`
	Tests  []TestReport   `json:"tests" yaml:"tests"`
	Counts results.Counts `json:"counts" yaml:"counts"`
	Valid  bool           `json:"valid" yaml:"valid"`
}

// TestReport is one binding on a column.
type TestReport struct {
	Name        string         `json:"name" yaml:"name"`
	Kind        string         `json:"kind,omitempty" yaml:"kind,omitempty"`
	InvalidRows []int          `json:"invalid_rows,omitempty" yaml:"invalid_rows,omitempty"`
	Errors      []CellError    `json:"errors,omitempty" yaml:"errors,omitempty"`
	Counts      results.Counts `json:"counts" yaml:"counts"`
	ErrorCount  int            `json:"error_count,omitempty" yaml:"error_count,omitempty"`
	Truncated   bool           `json:"invalid_rows_truncated,omitempty" yaml:"invalid_rows_truncated,omitempty"`
}

// CellError is a recorded test failure on one cell.
type CellError struct {
	Value   string `json:"value" yaml:"value"`
	Message string `json:"message" yaml:"message"`
	Row     int    `json:"row" yaml:"row"`
}

// NewReport converts results into a Report.
func NewReport(res *results.Results) *Report {
	meta := res.Metadata()
	report := &Report{
		RunID:      res.RunID().String(),
		Version:    version.Version,
		StartedAt:  res.StartedAt(),
		FinishedAt: res.FinishedAt(),
		DurationMS: res.Duration().Milliseconds(),
		Rules: RulesInfo{
			Name:        meta.Name,
			Version:     meta.Version,
			Description: meta.Description,
			Source:      meta.Source,
		},
		Summary:  res.Summary(),
		Untested: res.UntestedColumns(),
		Columns:  []ColumnReport{},
	}
	if report.Untested == nil {
		report.Untested = []string{}
	}

	for _, name := range res.Columns() {
		col, err := res.ColumnResults(name)
		if err != nil {
			continue
		}
		cr := ColumnReport{
			Name:   name,
			Color:  col.Color(),
			Valid:  col.Valid(),
			Counts: col.Counts(),
		}
		for _, b := range col.Bindings() {
			cr.Tests = append(cr.Tests, newTestReport(b))
		}
		report.Columns = append(report.Columns, cr)
	}
	return report
}

func newTestReport(b *results.BindingResult) TestReport {
	tr := TestReport{
		Name:       b.Name(),
		Kind:       b.Kind(),
		Counts:     b.Counts(),
		ErrorCount: b.ErrorCount(),
	}
	rows := b.InvalidRows()
	if len(rows) > maxReportedRows {
		rows = rows[:maxReportedRows]
		tr.Truncated = true
	}
	tr.InvalidRows = rows
	for _, e := range b.Errors() {
		tr.Errors = append(tr.Errors, CellError{Row: e.Row, Value: e.Value, Message: e.Cause.Error()})
	}
	return tr
}
