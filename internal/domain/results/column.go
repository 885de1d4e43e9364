package results

import (
	"context"
	"fmt"

	"github.com/dftest-dev/dftest/internal/domain/dataset"
	"github.com/dftest-dev/dftest/internal/domain/values"
)

// RowInspector surfaces a subset of rows for external inspection, e.g. by exporting
// them to a file and opening a viewer. Implementations must not block on the viewer.
type RowInspector interface {
	Inspect(ctx context.Context, req InspectRequest) error
}

// InspectRequest is a subset of the original rows handed to a RowInspector.
type InspectRequest struct {
	Rows       dataset.Dataset
	Column     string
	RowIndices []int // original row index of each row in Rows
}

// ColumnResults is the per-column view: every binding on the column and the combined verdict per row.
// A row is Invalid if any binding is Invalid, else Valid if any binding is Valid, else NotApplicable.
type ColumnResults struct {
	source   dataset.Dataset
	name     string
	levels   values.IntegrityLevels
	bindings []*BindingResult
	outcomes []values.Outcome
	invalid  []int
	counts   Counts
}

func newColumnResults(name string, bindings []*BindingResult, rows int, levels values.IntegrityLevels, source dataset.Dataset) *ColumnResults {
	outcomes := make([]values.Outcome, rows)
	per := make([]values.Outcome, len(bindings))
	for row := 0; row < rows; row++ {
		for i, b := range bindings {
			per[i] = b.outcomes[row]
		}
		outcomes[row] = values.Combine(per...)
	}
	return &ColumnResults{
		source:   source,
		name:     name,
		levels:   levels,
		bindings: bindings,
		outcomes: outcomes,
		invalid:  invalidIndices(outcomes),
		counts:   countOutcomes(outcomes),
	}
}

// Name returns the column name.
func (c *ColumnResults) Name() string { return c.name }

// RowCount returns the number of rows.
func (c *ColumnResults) RowCount() int { return len(c.outcomes) }

// Outcomes returns a copy of the combined per-row verdicts.
func (c *ColumnResults) Outcomes() []values.Outcome {
	out := make([]values.Outcome, len(c.outcomes))
	copy(out, c.outcomes)
	return out
}

// Outcome returns the combined verdict of one row.
func (c *ColumnResults) Outcome(row int) values.Outcome {
	return c.outcomes[row]
}

// Counts returns the combined verdict tally.
func (c *ColumnResults) Counts() Counts { return c.counts }

// InvalidRowIndices returns the rows where at least one binding was Invalid, ascending.
func (c *ColumnResults) InvalidRowIndices() []int {
	out := make([]int, len(c.invalid))
	copy(out, c.invalid)
	return out
}

// Bindings returns the bindings on this column in configuration order.
func (c *ColumnResults) Bindings() []*BindingResult {
	out := make([]*BindingResult, len(c.bindings))
	copy(out, c.bindings)
	return out
}

// Valid reports whether no row of the column is Invalid.
func (c *ColumnResults) Valid() bool { return c.counts.Invalid == 0 }

// IntegrityLevels returns the colour bands that grade this column.
func (c *ColumnResults) IntegrityLevels() values.IntegrityLevels { return c.levels }

// Color grades the column's valid rate; grey when nothing was evaluated.
func (c *ColumnResults) Color() string {
	rate, ok := c.counts.ValidRate()
	if !ok {
		return values.ColorGrey
	}
	return c.levels.Colorcode(rate)
}

// Summary returns the aggregate for this column.
func (c *ColumnResults) Summary() ColumnSummary {
	rate, _ := c.counts.ValidRate()
	errs := 0
	for _, b := range c.bindings {
		errs += b.errorCount
	}
	return ColumnSummary{
		Column:   c.name,
		Counts:   c.counts,
		Bindings: len(c.bindings),
		Rate:     rate,
		Color:    c.Color(),
		Errors:   errs,
		Valid:    c.Valid(),
	}
}

// InvalidRows returns the invalid rows restricted to this column and include, in row order.
// The column itself is always first.
func (c *ColumnResults) InvalidRows(include ...string) (*dataset.Table, error) {
	if c.source == nil {
		return nil, fmt.Errorf("column %q: no dataset attached", c.name)
	}
	columns := []string{c.name}
	for _, name := range include {
		if name != c.name && !contains(columns, name) {
			columns = append(columns, name)
		}
	}
	return dataset.Subset(c.source, c.invalid, columns)
}

// OpenInvalidRows hands the invalid rows to inspector.
func (c *ColumnResults) OpenInvalidRows(ctx context.Context, inspector RowInspector, include ...string) error {
	if inspector == nil {
		return fmt.Errorf("no row inspector configured")
	}
	rows, err := c.InvalidRows(include...)
	if err != nil {
		return fmt.Errorf("failed to select invalid rows of %q: %w", c.name, err)
	}
	return inspector.Inspect(ctx, InspectRequest{
		Column:     c.name,
		Rows:       rows,
		RowIndices: c.InvalidRowIndices(),
	})
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
