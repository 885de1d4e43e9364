// Package charts draws the chart data of a validation run on a terminal.
package charts

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/dftest-dev/dftest/internal/domain/results"
	"github.com/dftest-dev/dftest/internal/domain/values"
)

const (
	// DefaultWidth is the number of cells used by a full-length bar or heatmap row.
	DefaultWidth = 50

	maxLabelWidth = 28

	glyphBar     = "█"
	glyphValid   = "█"
	glyphInvalid = "X"
	glyphNA      = "·"
)

// palette maps colour names used by the domain to ANSI-256 colours.
var palette = map[string]lipgloss.Color{
	"red":            lipgloss.Color("1"),
	"orange":         lipgloss.Color("208"),
	"yellow":         lipgloss.Color("3"),
	"blue":           lipgloss.Color("4"),
	"green":          lipgloss.Color("2"),
	values.ColorGrey: lipgloss.Color("8"),
}

// Renderer implements ports.ChartRenderer with text bars coloured by lipgloss.
type Renderer struct {
	// Width is the length in cells of the longest bar.
	Width int

	// Color enables ANSI colours. Without it segments are told apart by glyph only.
	Color bool
}

// NewRenderer creates a renderer with the default width and colours enabled.
func NewRenderer() *Renderer {
	return &Renderer{Width: DefaultWidth, Color: true}
}

type canvas struct {
	w      io.Writer
	lg     *lipgloss.Renderer
	width  int
	errOut error
}

func (r *Renderer) canvas(w io.Writer) *canvas {
	lg := lipgloss.NewRenderer(w)
	if r.Color {
		lg.SetColorProfile(termenv.ANSI256)
	} else {
		lg.SetColorProfile(termenv.Ascii)
	}
	width := r.Width
	if width <= 0 {
		width = DefaultWidth
	}
	return &canvas{w: w, lg: lg, width: width}
}

func (c *canvas) println(s string) {
	if c.errOut != nil {
		return
	}
	_, c.errOut = fmt.Fprintln(c.w, s)
}

func (c *canvas) paint(s, color string) string {
	fg, ok := palette[color]
	if !ok {
		return s
	}
	return c.lg.NewStyle().Foreground(fg).Render(s)
}

func (c *canvas) title(s string) {
	c.println(c.lg.NewStyle().Bold(true).Render(s))
}

func (c *canvas) label(s string, width int) string {
	if r := []rune(s); len(r) > width {
		s = string(r[:width-1]) + "…"
	}
	return c.lg.NewStyle().Width(width).Render(s)
}

func labelWidth(labels []string) int {
	width := 1
	for _, l := range labels {
		if n := len([]rune(l)); n > width {
			width = n
		}
	}
	return min(width, maxLabelWidth)
}

// RenderBarChart draws one line per bar. Row charts scale to the largest bar;
// rate charts scale to 1.
func (r *Renderer) RenderBarChart(w io.Writer, chart results.BarChart) error {
	c := r.canvas(w)
	c.title(chart.Title)
	if len(chart.Bars) == 0 {
		c.println("  (no data)")
		return c.errOut
	}

	scale := 1.0
	if chart.Unit != "rate" {
		scale = 0
		for _, b := range chart.Bars {
			scale = max(scale, b.Total())
		}
	}

	labels := make([]string, len(chart.Bars))
	for i, b := range chart.Bars {
		labels[i] = b.Label
	}
	lw := labelWidth(labels)

	legend := make(map[string]string)
	var legendOrder []string
	for _, b := range chart.Bars {
		var bar strings.Builder
		var figures []string
		for _, s := range b.Segments {
			if _, seen := legend[s.Label]; !seen {
				legend[s.Label] = s.Color
				legendOrder = append(legendOrder, s.Label)
			}
			bar.WriteString(c.paint(strings.Repeat(glyphBar, cells(s.Value, scale, c.width)), s.Color))
			figures = append(figures, formatValue(s.Value, chart.Unit))
		}
		c.println(fmt.Sprintf("  %s %s %s", c.label(b.Label, lw), bar.String(), strings.Join(figures, "/")))
	}

	if len(legendOrder) > 1 {
		parts := make([]string, len(legendOrder))
		for i, l := range legendOrder {
			parts[i] = c.paint(glyphBar, legend[l]) + " " + l
		}
		c.println("  " + strings.Join(parts, "  "))
	}
	return c.errOut
}

// RenderPieChart draws the shares of a whole as one proportional bar
// followed by each slice's count and percentage.
func (r *Renderer) RenderPieChart(w io.Writer, chart results.PieChart) error {
	c := r.canvas(w)
	c.title(chart.Title)

	total := chart.Total()
	if total == 0 {
		c.println("  (no data)")
		return c.errOut
	}

	var bar strings.Builder
	used := 0
	for i, s := range chart.Slices {
		n := cells(s.Value, total, c.width)
		if i == len(chart.Slices)-1 {
			n = max(c.width-used, 0)
		}
		if s.Value == 0 {
			n = 0
		}
		used += n
		bar.WriteString(c.paint(strings.Repeat(glyphBar, n), s.Color))
	}
	c.println("  " + bar.String())

	labels := make([]string, len(chart.Slices))
	for i, s := range chart.Slices {
		labels[i] = s.Label
	}
	lw := labelWidth(labels)
	for _, s := range chart.Slices {
		c.println(fmt.Sprintf("  %s %s %s (%s%%)",
			c.paint(glyphBar, s.Color), c.label(s.Label, lw), formatValue(s.Value, ""),
			strconv.FormatFloat(s.Value/total*100, 'f', 1, 64)))
	}
	return c.errOut
}

// RenderHeatmap draws one line per column. When there are more rows than
// cells, consecutive rows share a cell, which shows the strongest outcome
// among them (invalid over valid over not applicable).
func (r *Renderer) RenderHeatmap(w io.Writer, heatmap results.Heatmap) error {
	c := r.canvas(w)
	c.title(heatmap.Title)
	if heatmap.Rows == 0 || len(heatmap.Columns) == 0 {
		c.println("  (no data)")
		return c.errOut
	}

	perCell := (heatmap.Rows + c.width - 1) / c.width
	lw := labelWidth(heatmap.Columns)

	for i, column := range heatmap.Columns {
		var line strings.Builder
		codes := heatmap.Cells[i]
		for start := 0; start < len(codes); start += perCell {
			end := min(start+perCell, len(codes))
			line.WriteString(c.glyph(bucket(codes[start:end])))
		}
		c.println(fmt.Sprintf("  %s %s", c.label(column, lw), line.String()))
	}

	c.println(fmt.Sprintf("  %s rows 0-%d, %d per cell", strings.Repeat(" ", lw), heatmap.Rows-1, perCell))
	legend := []string{
		c.glyph(values.OutcomeValid.Code()) + " valid",
		c.glyph(values.OutcomeInvalid.Code()) + " invalid",
	}
	if !heatmap.Binary {
		legend = append(legend, c.glyph(values.OutcomeNotApplicable.Code())+" n/a")
	}
	c.println("  " + strings.Join(legend, "  "))
	return c.errOut
}

// RenderSummary draws the coverage and validity pies and the invalid row counts.
func (r *Renderer) RenderSummary(w io.Writer, charts results.SummaryCharts) error {
	if err := r.RenderPieChart(w, charts.Coverage); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	if err := r.RenderPieChart(w, charts.Validity); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	return r.RenderBarChart(w, charts.InvalidCounts)
}

func (c *canvas) glyph(code int) string {
	switch code {
	case values.OutcomeValid.Code():
		return c.paint(glyphValid, results.ColorValid)
	case values.OutcomeInvalid.Code():
		return c.paint(glyphInvalid, results.ColorInvalid)
	default:
		return c.paint(glyphNA, results.ColorNotApplicable)
	}
}

// bucket folds outcome codes into the code shown for a heatmap cell.
func bucket(codes []int) int {
	out := values.OutcomeNotApplicable.Code()
	for _, code := range codes {
		switch code {
		case values.OutcomeInvalid.Code():
			return code
		case values.OutcomeValid.Code():
			out = code
		}
	}
	return out
}

// cells converts a value into a bar length. Non-zero values get at least one cell.
func cells(value, scale float64, width int) int {
	if value <= 0 || scale <= 0 {
		return 0
	}
	n := int(value / scale * float64(width))
	return max(n, 1)
}

func formatValue(v float64, unit string) string {
	if unit == "rate" {
		return strconv.FormatFloat(v*100, 'f', 2, 64) + "%"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
