package results

import (
	"github.com/dftest-dev/dftest/internal/domain/checks"
	"github.com/dftest-dev/dftest/internal/domain/rules"
	"github.com/dftest-dev/dftest/internal/domain/values"
)

// BindingResult is the outcome vector of one binding over every row of the dataset.
type BindingResult struct {
	name       string
	kind       string
	column     string
	source     string
	outcomes   []values.Outcome
	errors     []*checks.CellEvaluationError
	index      int
	line       int
	errorCount int
}

// NewBindingResult takes ownership of outcomes and errs.
// errorCount may exceed len(errs) when the recorded errors were capped.
func NewBindingResult(index int, b rules.Binding, outcomes []values.Outcome, errs []*checks.CellEvaluationError, errorCount int) *BindingResult {
	if errorCount < len(errs) {
		errorCount = len(errs)
	}
	return &BindingResult{
		index:      index,
		name:       b.Name,
		kind:       b.Kind,
		column:     b.Column,
		source:     b.Source,
		line:       b.Line,
		outcomes:   outcomes,
		errors:     errs,
		errorCount: errorCount,
	}
}

// Name returns the user supplied test name, if any.
func (b *BindingResult) Name() string { return b.name }

// Kind returns the canonical test kind.
func (b *BindingResult) Kind() string { return b.kind }

// Column returns the tested column.
func (b *BindingResult) Column() string { return b.column }

// Source returns the rules file the binding came from.
func (b *BindingResult) Source() string { return b.source }

// Index returns the position of the binding in load order.
func (b *BindingResult) Index() int { return b.index }

// Line returns the 1-based line of the binding in a line rules file, or 0.
func (b *BindingResult) Line() int { return b.line }

// Outcomes returns a copy of the per-row outcomes.
func (b *BindingResult) Outcomes() []values.Outcome {
	out := make([]values.Outcome, len(b.outcomes))
	copy(out, b.outcomes)
	return out
}

// Outcome returns the outcome of one row.
func (b *BindingResult) Outcome(row int) values.Outcome {
	return b.outcomes[row]
}

// Counts tallies the outcomes.
func (b *BindingResult) Counts() Counts {
	return countOutcomes(b.outcomes)
}

// InvalidRows returns the indices of rows this binding marked Invalid, ascending.
func (b *BindingResult) InvalidRows() []int {
	return invalidIndices(b.outcomes)
}

// Errors returns the recorded cell evaluation errors (possibly capped).
func (b *BindingResult) Errors() []*checks.CellEvaluationError {
	out := make([]*checks.CellEvaluationError, len(b.errors))
	copy(out, b.errors)
	return out
}

// ErrorCount returns the total number of cell evaluation errors, including those not recorded.
func (b *BindingResult) ErrorCount() int {
	return b.errorCount
}

func countOutcomes(outcomes []values.Outcome) Counts {
	var c Counts
	for _, o := range outcomes {
		switch o {
		case values.OutcomeValid:
			c.Valid++
		case values.OutcomeInvalid:
			c.Invalid++
		default:
			c.NotApplicable++
		}
	}
	return c
}

func invalidIndices(outcomes []values.Outcome) []int {
	out := make([]int, 0)
	for i, o := range outcomes {
		if o == values.OutcomeInvalid {
			out = append(out, i)
		}
	}
	return out
}
