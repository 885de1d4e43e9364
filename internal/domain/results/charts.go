package results

import "github.com/dftest-dev/dftest/internal/domain/values"

// Chart colours used by the built-in chart data.
const (
	ColorValid         = "green"
	ColorInvalid       = "red"
	ColorNotApplicable = "grey"
	ColorUntested      = "grey"
	ColorTested        = "blue"
)

// Segment is one labelled quantity of a bar or pie.
type Segment struct {
	Label string
	Color string
	Value float64
}

// Bar is a labelled stack of segments.
type Bar struct {
	Label    string
	Segments []Segment
}

// Total sums the segments of the bar.
func (b Bar) Total() float64 {
	t := 0.0
	for _, s := range b.Segments {
		t += s.Value
	}
	return t
}

// BarChart is a set of (possibly stacked) bars.
type BarChart struct {
	Title string
	Unit  string // "rows" or "rate"
	Bars  []Bar
}

// PieChart is a set of shares of one whole.
type PieChart struct {
	Title  string
	Slices []Segment
}

// Total sums the slices.
func (p PieChart) Total() float64 {
	t := 0.0
	for _, s := range p.Slices {
		t += s.Value
	}
	return t
}

// Heatmap is a row by column grid of outcome codes (Valid 1, Invalid 0, NotApplicable -1).
// With Binary set, NotApplicable cells are reported as Valid.
type Heatmap struct {
	Title   string
	Columns []string
	Cells   [][]int // Cells[column][row]
	Rows    int
	Binary  bool
}

// SummaryCharts is the aggregate chart set of a run.
type SummaryCharts struct {
	Coverage      PieChart
	Validity      PieChart
	InvalidCounts BarChart
}

// SummaryChart builds the aggregate charts: tested vs untested columns, valid vs invalid
// columns, and invalid row counts per validated column.
func (r *Results) SummaryChart() SummaryCharts {
	s := r.Summary()

	invalid := BarChart{Title: "Invalid rows per column", Unit: "rows"}
	for _, cs := range s.Columns {
		invalid.Bars = append(invalid.Bars, Bar{
			Label:    cs.Column,
			Segments: []Segment{{Label: "Invalid", Color: ColorInvalid, Value: float64(cs.Counts.Invalid)}},
		})
	}

	return SummaryCharts{
		Coverage: PieChart{
			Title: "Columns tested",
			Slices: []Segment{
				{Label: "Tested", Color: ColorTested, Value: float64(s.TestedColumns)},
				{Label: "Untested", Color: ColorUntested, Value: float64(s.TotalColumns - s.TestedColumns)},
			},
		},
		Validity: PieChart{
			Title: "Columns valid",
			Slices: []Segment{
				{Label: "Valid", Color: ColorValid, Value: float64(s.ValidColumns)},
				{Label: "Invalid", Color: ColorInvalid, Value: float64(s.TotalColumns - s.ValidColumns)},
			},
		},
		InvalidCounts: invalid,
	}
}

// ValidityHeatmap builds the row by column grid of every validated column.
func (r *Results) ValidityHeatmap(binary bool) Heatmap {
	h := Heatmap{
		Title:   "Validity",
		Columns: r.Columns(),
		Rows:    r.RowCount(),
		Binary:  binary,
		Cells:   make([][]int, 0, len(r.columns)),
	}
	for _, column := range r.columns {
		h.Cells = append(h.Cells, codes(r.byColumn[column].outcomes, binary))
	}
	return h
}

// ValidityHeatmap builds the single-column grid.
func (c *ColumnResults) ValidityHeatmap(binary bool) Heatmap {
	return Heatmap{
		Title:   c.name + " validity",
		Columns: []string{c.name},
		Rows:    len(c.outcomes),
		Binary:  binary,
		Cells:   [][]int{codes(c.outcomes, binary)},
	}
}

func codes(outcomes []values.Outcome, binary bool) []int {
	out := make([]int, len(outcomes))
	for i, o := range outcomes {
		code := o.Code()
		if binary && o == values.OutcomeNotApplicable {
			code = values.OutcomeValid.Code()
		}
		out[i] = code
	}
	return out
}

// TestsSuccessChart stacks valid, invalid and not applicable rows per binding.
func (c *ColumnResults) TestsSuccessChart() BarChart {
	chart := BarChart{Title: c.name + " tests", Unit: "rows"}
	for _, b := range c.bindings {
		counts := b.Counts()
		chart.Bars = append(chart.Bars, Bar{
			Label: b.name,
			Segments: []Segment{
				{Label: "Valid", Color: ColorValid, Value: float64(counts.Valid)},
				{Label: "Invalid", Color: ColorInvalid, Value: float64(counts.Invalid)},
				{Label: "N/A", Color: ColorNotApplicable, Value: float64(counts.NotApplicable)},
			},
		})
	}
	return chart
}

// TestsRateChart shows each binding's valid rate coloured by the column's integrity levels.
func (c *ColumnResults) TestsRateChart() BarChart {
	chart := BarChart{Title: c.name + " valid rate", Unit: "rate"}
	for _, b := range c.bindings {
		rate, ok := b.Counts().ValidRate()
		color := values.ColorGrey
		if ok {
			color = c.levels.Colorcode(rate)
		}
		chart.Bars = append(chart.Bars, Bar{
			Label:    b.name,
			Segments: []Segment{{Label: "Valid rate", Color: color, Value: rate}},
		})
	}
	return chart
}

// ValidityChart is the valid / invalid / not applicable share of the column.
func (c *ColumnResults) ValidityChart() PieChart {
	return PieChart{
		Title: c.name + " validity",
		Slices: []Segment{
			{Label: "Valid", Color: ColorValid, Value: float64(c.counts.Valid)},
			{Label: "Invalid", Color: ColorInvalid, Value: float64(c.counts.Invalid)},
			{Label: "N/A", Color: ColorNotApplicable, Value: float64(c.counts.NotApplicable)},
		},
	}
}
