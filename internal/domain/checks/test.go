// Package checks is the library of cell-level tests and the factories that build them
// from declarative parameters.
//
// Every test the factories produce is wrapped by Guard, so a missing cell always
// evaluates to NotApplicable and individual kinds never special-case absence.
package checks

import (
	"fmt"

	"github.com/dftest-dev/dftest/internal/domain/dataset"
	"github.com/dftest-dev/dftest/internal/domain/values"
)

// Test evaluates a single cell.
// Implementations must be deterministic and free of side effects so they can be
// shared across concurrent evaluation tasks.
type Test interface {
	Evaluate(v dataset.Value) (values.Outcome, error)
}

// Func adapts an ordinary function to the Test interface.
type Func func(v dataset.Value) (values.Outcome, error)

// Evaluate calls f(v).
func (f Func) Evaluate(v dataset.Value) (values.Outcome, error) {
	return f(v)
}

// Predicate adapts a boolean predicate over the cell's string form.
func Predicate(fn func(s string) bool) Func {
	return func(v dataset.Value) (values.Outcome, error) {
		return outcomeOf(fn(v.String())), nil
	}
}

// RowTest is a Test that may also read the other cells of the row under test.
// The engine calls EvaluateRow instead of Evaluate for tests implementing it.
type RowTest interface {
	Test
	EvaluateRow(v dataset.Value, row map[string]dataset.Value) (values.Outcome, error)
}

// RowFunc adapts an ordinary function to the RowTest interface.
// Evaluate passes a nil row.
type RowFunc func(v dataset.Value, row map[string]dataset.Value) (values.Outcome, error)

// Evaluate calls f(v, nil).
func (f RowFunc) Evaluate(v dataset.Value) (values.Outcome, error) {
	return f(v, nil)
}

// EvaluateRow calls f(v, row).
func (f RowFunc) EvaluateRow(v dataset.Value, row map[string]dataset.Value) (values.Outcome, error) {
	return f(v, row)
}

type guarded struct {
	inner Test
}

type guardedRow struct {
	inner RowTest
}

// Guard wraps t so that missing cells yield NotApplicable without reaching t.
// A RowTest stays a RowTest.
func Guard(t Test) Test {
	switch g := t.(type) {
	case guarded, guardedRow:
		return g
	case RowTest:
		return guardedRow{inner: g}
	}
	return guarded{inner: t}
}

func (g guarded) Evaluate(v dataset.Value) (values.Outcome, error) {
	if v.IsMissing() {
		return values.OutcomeNotApplicable, nil
	}
	return g.inner.Evaluate(v)
}

func (g guardedRow) Evaluate(v dataset.Value) (values.Outcome, error) {
	if v.IsMissing() {
		return values.OutcomeNotApplicable, nil
	}
	return g.inner.Evaluate(v)
}

func (g guardedRow) EvaluateRow(v dataset.Value, row map[string]dataset.Value) (values.Outcome, error) {
	if v.IsMissing() {
		return values.OutcomeNotApplicable, nil
	}
	return g.inner.EvaluateRow(v, row)
}

func outcomeOf(ok bool) values.Outcome {
	if ok {
		return values.OutcomeValid
	}
	return values.OutcomeInvalid
}

// CellEvaluationError records a test that failed unexpectedly on one cell.
// The engine records these and marks the cell Invalid; they never abort a run.
type CellEvaluationError struct {
	Cause   error
	Column  string
	Binding string
	Value   string
	Row     int
}

func (e *CellEvaluationError) Error() string {
	return fmt.Sprintf("column %q, test %q, row %d (value %q): %v", e.Column, e.Binding, e.Row, e.Value, e.Cause)
}

func (e *CellEvaluationError) Unwrap() error {
	return e.Cause
}
