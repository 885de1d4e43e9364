package results

// Counts tallies outcomes. NotApplicable never counts toward Valid or Invalid.
type Counts struct {
	Valid         int `json:"valid" yaml:"valid"`
	Invalid       int `json:"invalid" yaml:"invalid"`
	NotApplicable int `json:"not_applicable" yaml:"not_applicable"`
}

// Total returns the number of rows counted.
func (c Counts) Total() int {
	return c.Valid + c.Invalid + c.NotApplicable
}

// Evaluated returns the rows that produced a verdict.
func (c Counts) Evaluated() int {
	return c.Valid + c.Invalid
}

// ValidRate returns Valid over evaluated rows. ok is false when nothing was evaluated.
func (c Counts) ValidRate() (rate float64, ok bool) {
	if c.Evaluated() == 0 {
		return 0, false
	}
	return float64(c.Valid) / float64(c.Evaluated()), true
}

// ColumnSummary is the aggregate for one validated column.
type ColumnSummary struct {
	Column   string  `json:"column" yaml:"column"`
	Color    string  `json:"color" yaml:"color"`
	Counts   Counts  `json:"counts" yaml:"counts"`
	Rate     float64 `json:"valid_rate" yaml:"valid_rate"`
	Bindings int     `json:"tests" yaml:"tests"`
	Errors   int     `json:"cell_errors,omitempty" yaml:"cell_errors,omitempty"`
	Valid    bool    `json:"valid" yaml:"valid"`
}

// Summary provides aggregate statistics about a run.
type Summary struct {
	Columns        []ColumnSummary `json:"columns" yaml:"columns"`
	Rows           int             `json:"rows" yaml:"rows"`
	TotalColumns   int             `json:"total_columns" yaml:"total_columns"`
	TestedColumns  int             `json:"tested_columns" yaml:"tested_columns"`
	ValidColumns   int             `json:"valid_columns" yaml:"valid_columns"`
	TotalBindings  int             `json:"total_tests" yaml:"total_tests"`
	InvalidCells   int             `json:"invalid_cells" yaml:"invalid_cells"`
	CellErrorCount int             `json:"cell_errors" yaml:"cell_errors"`
}

// TestedRate returns the share of dataset columns that have at least one binding.
func (s Summary) TestedRate() float64 {
	if s.TotalColumns == 0 {
		return 0
	}
	return float64(s.TestedColumns) / float64(s.TotalColumns)
}

// ValidColumnRate returns the share of dataset columns that are tested and fully valid.
func (s Summary) ValidColumnRate() float64 {
	if s.TotalColumns == 0 {
		return 0
	}
	return float64(s.ValidColumns) / float64(s.TotalColumns)
}
