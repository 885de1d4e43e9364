// Package results provides the immutable outcome grid of a validation run and its views.
package results

import (
	"time"

	"github.com/dftest-dev/dftest/internal/domain/checks"
	"github.com/dftest-dev/dftest/internal/domain/dataset"
	"github.com/dftest-dev/dftest/internal/domain/rules"
	"github.com/dftest-dev/dftest/internal/domain/values"
)

// Params carries everything a run produced.
type Params struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Dataset    dataset.Dataset
	Config     *rules.Config
	Bindings   []*BindingResult
	RunID      values.RunID
}

// Results is the full per-row, per-binding outcome grid of one run.
// It is never mutated after New returns.
type Results struct {
	startedAt  time.Time
	finishedAt time.Time
	dataset    dataset.Dataset
	config     *rules.Config
	byColumn   map[string]*ColumnResults
	bindings   []*BindingResult
	columns    []string
	runID      values.RunID
}

// New assembles Results and derives the per-column views.
func New(p Params) *Results {
	cfg := p.Config
	if cfg == nil {
		cfg = rules.NewConfig()
	}
	runID := p.RunID
	if runID.IsZero() {
		runID = values.NewRunID()
	}

	r := &Results{
		runID:      runID,
		startedAt:  p.StartedAt,
		finishedAt: p.FinishedAt,
		dataset:    p.Dataset,
		config:     cfg,
		bindings:   p.Bindings,
		byColumn:   make(map[string]*ColumnResults),
	}

	grouped := make(map[string][]*BindingResult)
	for _, b := range p.Bindings {
		if _, seen := grouped[b.column]; !seen {
			r.columns = append(r.columns, b.column)
		}
		grouped[b.column] = append(grouped[b.column], b)
	}
	for _, column := range r.columns {
		r.byColumn[column] = newColumnResults(column, grouped[column], r.RowCount(), cfg.LevelsFor(column), p.Dataset)
	}
	return r
}

// RunID returns the identifier of the run.
func (r *Results) RunID() values.RunID { return r.runID }

// StartedAt returns when the run started.
func (r *Results) StartedAt() time.Time { return r.startedAt }

// FinishedAt returns when the run finished.
func (r *Results) FinishedAt() time.Time { return r.finishedAt }

// Duration returns the wall time of the run.
func (r *Results) Duration() time.Duration { return r.finishedAt.Sub(r.startedAt) }

// Dataset returns the validated dataset.
func (r *Results) Dataset() dataset.Dataset { return r.dataset }

// Metadata returns the metadata of the rules the run used.
func (r *Results) Metadata() rules.Metadata { return r.config.Metadata }

// RowCount returns the number of rows evaluated.
func (r *Results) RowCount() int {
	if r.dataset == nil {
		return 0
	}
	return r.dataset.RowCount()
}

// Columns returns the validated columns in configuration order.
func (r *Results) Columns() []string {
	out := make([]string, len(r.columns))
	copy(out, r.columns)
	return out
}

// DatasetColumns returns every dataset column in source order.
func (r *Results) DatasetColumns() []string {
	if r.dataset == nil {
		return nil
	}
	return r.dataset.Columns()
}

// UntestedColumns returns dataset columns without any binding, in source order.
func (r *Results) UntestedColumns() []string {
	var out []string
	for _, c := range r.DatasetColumns() {
		if _, ok := r.byColumn[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}

// IsTested reports whether a column was validated.
func (r *Results) IsTested(column string) bool {
	_, ok := r.byColumn[column]
	return ok
}

// Bindings returns the binding results in configuration order.
func (r *Results) Bindings() []*BindingResult {
	out := make([]*BindingResult, len(r.bindings))
	copy(out, r.bindings)
	return out
}

// ColumnResults returns the view of one validated column.
func (r *Results) ColumnResults(column string) (*ColumnResults, error) {
	col, ok := r.byColumn[column]
	if !ok {
		return nil, &ColumnNotFoundError{Column: column}
	}
	return col, nil
}

// HasInvalid reports whether any cell was Invalid.
func (r *Results) HasInvalid() bool {
	for _, col := range r.byColumn {
		if col.counts.Invalid > 0 {
			return true
		}
	}
	return false
}

// CellErrors returns every recorded cell evaluation error, in binding order.
func (r *Results) CellErrors() []*checks.CellEvaluationError {
	var out []*checks.CellEvaluationError
	for _, b := range r.bindings {
		out = append(out, b.errors...)
	}
	return out
}

// Summary computes per-column and dataset-wide aggregates.
func (r *Results) Summary() Summary {
	s := Summary{
		Rows:          r.RowCount(),
		TotalColumns:  len(r.DatasetColumns()),
		TestedColumns: len(r.columns),
		TotalBindings: len(r.bindings),
		Columns:       make([]ColumnSummary, 0, len(r.columns)),
	}
	for _, column := range r.columns {
		col := r.byColumn[column]
		cs := col.Summary()
		if cs.Valid {
			s.ValidColumns++
		}
		s.InvalidCells += cs.Counts.Invalid
		s.CellErrorCount += cs.Errors
		s.Columns = append(s.Columns, cs)
	}
	return s
}
