package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/dftest-dev/dftest/internal/application/errors"
	"github.com/dftest-dev/dftest/internal/domain/checks"
	"github.com/dftest-dev/dftest/internal/domain/dataset"
	"github.com/dftest-dev/dftest/internal/domain/results"
	"github.com/dftest-dev/dftest/internal/domain/rules"
	"github.com/dftest-dev/dftest/internal/domain/values"
)

// Engine validates one dataset against one rules configuration.
// It keeps no state between runs.
type Engine struct {
	dataset dataset.Dataset
	rules   *rules.Config
	logger  *slog.Logger
	now     func() time.Time
	config  ExecutionConfig
}

// Option configures an Engine.
type Option func(*Engine)

// WithExecutionConfig sets worker and chunk settings.
func WithExecutionConfig(cfg ExecutionConfig) Option {
	return func(e *Engine) {
		e.config = cfg
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an engine. A nil cfg validates nothing.
func New(ds dataset.Dataset, cfg *rules.Config, opts ...Option) *Engine {
	if cfg == nil {
		cfg = rules.NewConfig()
	}
	e := &Engine{
		dataset: ds,
		rules:   cfg,
		logger:  slog.Default(),
		now:     time.Now,
		config:  DefaultExecutionConfig(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.config = e.config.normalized()
	return e
}

// Run evaluates every binding on every row.
// A *apperrors.SchemaError is returned before any row is evaluated when a
// configured column is missing from the dataset.
func (e *Engine) Run(ctx context.Context) (*results.Results, error) {
	if err := contextError(ctx); err != nil {
		return nil, err
	}
	if e.dataset == nil {
		return nil, fmt.Errorf("no dataset to validate")
	}
	if err := e.validateSchema(); err != nil {
		return nil, err
	}

	runID := values.NewRunID()
	started := e.now()
	bindings := e.rules.Bindings()
	rows := e.dataset.RowCount()

	e.logger.Info("validation started",
		"run_id", runID.String(),
		"rows", rows,
		"columns", len(e.rules.Columns()),
		"tests", len(bindings),
		"parallel", e.config.Parallel)

	cells, err := e.columnValues(bindings)
	if err != nil {
		return nil, err
	}

	grid := make([][]values.Outcome, len(bindings))
	for i := range bindings {
		grid[i] = make([]values.Outcome, rows)
	}

	tasks := e.plan(bindings, rows)
	if e.config.Parallel && len(tasks) > 1 {
		if err := e.evaluateWithWorkerPool(ctx, tasks, bindings, cells, grid); err != nil {
			return nil, err
		}
	} else {
		for _, t := range tasks {
			if err := contextError(ctx); err != nil {
				return nil, err
			}
			e.evaluateTask(t, bindings[t.binding], cells[bindings[t.binding].Column], grid[t.binding])
		}
	}

	bindingResults := e.collect(bindings, tasks, grid)
	finished := e.now()

	res := results.New(results.Params{
		RunID:      runID,
		StartedAt:  started,
		FinishedAt: finished,
		Dataset:    e.dataset,
		Config:     e.rules,
		Bindings:   bindingResults,
	})

	summary := res.Summary()
	e.logger.Info("validation finished",
		"run_id", runID.String(),
		"duration", finished.Sub(started),
		"invalid_cells", summary.InvalidCells,
		"cell_errors", summary.CellErrorCount)
	return res, nil
}

// validateSchema reports every configured column absent from the dataset.
func (e *Engine) validateSchema() error {
	var missing []string
	for _, column := range e.rules.Columns() {
		if !dataset.HasColumn(e.dataset, column) {
			missing = append(missing, column)
		}
	}
	if len(missing) > 0 {
		return apperrors.NewSchemaError(missing...)
	}
	return nil
}

func (e *Engine) columnValues(bindings []rules.Binding) (map[string][]dataset.Value, error) {
	cells := make(map[string][]dataset.Value)
	for _, b := range bindings {
		if _, ok := cells[b.Column]; ok {
			continue
		}
		column, err := e.dataset.Column(b.Column)
		if err != nil {
			return nil, fmt.Errorf("failed to read column %q: %w", b.Column, err)
		}
		cells[b.Column] = column
	}
	return cells, nil
}

// plan splits the grid into tasks of at most ChunkSize rows per binding.
// Tasks are ordered by binding, then by row.
func (e *Engine) plan(bindings []rules.Binding, rows int) []*task {
	var tasks []*task
	for i := range bindings {
		for start := 0; start < rows; start += e.config.ChunkSize {
			end := min(start+e.config.ChunkSize, rows)
			tasks = append(tasks, &task{binding: i, start: start, end: end})
		}
	}
	return tasks
}

// evaluateTask fills outcomes[t.start:t.end]. Tasks never share a write range.
// Row tests additionally receive every cell of their row.
func (e *Engine) evaluateTask(t *task, b rules.Binding, cells []dataset.Value, outcomes []values.Outcome) {
	_, wantsRow := b.Test.(checks.RowTest)
	for row := t.start; row < t.end; row++ {
		var rowCells map[string]dataset.Value
		if wantsRow {
			var err error
			rowCells, err = dataset.Row(e.dataset, row)
			if err != nil {
				outcomes[row] = values.OutcomeInvalid
				e.record(t, newCellError(b, cells[row], row, err))
				continue
			}
		}
		outcome, cellErr := evaluateCell(b, cells[row], row, rowCells)
		outcomes[row] = outcome
		if cellErr != nil {
			e.record(t, cellErr)
		}
	}
}

func (e *Engine) record(t *task, cellErr *checks.CellEvaluationError) {
	t.errCount++
	if len(t.errs) < e.config.MaxRecordedErrors {
		t.errs = append(t.errs, cellErr)
	}
	e.logger.Debug("test failed unexpectedly",
		"column", cellErr.Column,
		"test", cellErr.Binding,
		"row", cellErr.Row,
		"value", cellErr.Value,
		"error", cellErr.Cause)
}

func newCellError(b rules.Binding, v dataset.Value, row int, cause error) *checks.CellEvaluationError {
	return &checks.CellEvaluationError{
		Column:  b.Column,
		Binding: b.Name,
		Row:     row,
		Value:   v.String(),
		Cause:   cause,
	}
}

// evaluateCell runs one test on one cell, passing rowCells to row tests when set.
// Panics and returned errors mark the cell Invalid.
func evaluateCell(b rules.Binding, v dataset.Value, row int, rowCells map[string]dataset.Value) (outcome values.Outcome, cellErr *checks.CellEvaluationError) {
	defer func() {
		if r := recover(); r != nil {
			outcome = values.OutcomeInvalid
			cellErr = newCellError(b, v, row, fmt.Errorf("panic: %v", r))
		}
	}()

	var err error
	if rowTest, ok := b.Test.(checks.RowTest); ok && rowCells != nil {
		outcome, err = rowTest.EvaluateRow(v, rowCells)
	} else {
		outcome, err = b.Test.Evaluate(v)
	}
	if err != nil {
		return values.OutcomeInvalid, newCellError(b, v, row, err)
	}
	if verr := outcome.Validate(); verr != nil {
		return values.OutcomeInvalid, newCellError(b, v, row, verr)
	}
	return outcome, nil
}

// collect merges per-task errors in row order and builds the binding results.
func (e *Engine) collect(bindings []rules.Binding, tasks []*task, grid [][]values.Outcome) []*results.BindingResult {
	errs := make([][]*checks.CellEvaluationError, len(bindings))
	counts := make([]int, len(bindings))
	for _, t := range tasks {
		counts[t.binding] += t.errCount
		room := e.config.MaxRecordedErrors - len(errs[t.binding])
		if room <= 0 {
			continue
		}
		errs[t.binding] = append(errs[t.binding], t.errs[:min(room, len(t.errs))]...)
	}

	out := make([]*results.BindingResult, len(bindings))
	for i, b := range bindings {
		out[i] = results.NewBindingResult(i, b, grid[i], errs[i], counts[i])
	}
	return out
}

func contextError(ctx context.Context) error {
	if ctx.Err() == nil {
		return nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("validation timed out: %w", ctx.Err())
	}
	return ctx.Err()
}
