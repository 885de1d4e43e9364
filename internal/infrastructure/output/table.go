package output

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/dftest-dev/dftest/internal/domain/dataset"
	"github.com/dftest-dev/dftest/internal/domain/results"
	"github.com/dftest-dev/dftest/internal/domain/values"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorOrange = "\033[38;5;208m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

// DefaultMaxFailedRows is how many invalid rows are listed per test unless PrintAllFailed is set.
const DefaultMaxFailedRows = 10

// TableFormatter writes a human-readable coverage report.
type TableFormatter struct {
	writer           io.Writer
	EnableColor      bool
	ShowValidColumns bool // include columns without invalid rows
	ShowUntested     bool // include columns without tests
	Stub             bool // only the coverage lines and the summary table
	PrintAllFailed   bool
	MaxFailedRows    int
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{
		writer:        w,
		EnableColor:   true, // Default to true, caller can disable
		MaxFailedRows: DefaultMaxFailedRows,
	}
}

// colorize returns the string wrapped in ANSI color codes if enabled.
func (f *TableFormatter) colorize(text, code string) string {
	if !f.EnableColor || code == "" {
		return text
	}
	return code + text + colorReset
}

func levelCode(color string) string {
	switch color {
	case "red":
		return colorRed
	case "orange":
		return colorOrange
	case "yellow":
		return colorYellow
	case "blue":
		return colorBlue
	case "green":
		return colorGreen
	case values.ColorGrey:
		return colorGray
	default:
		return ""
	}
}

// Format writes the coverage report.
//
//nolint:errcheck // Table formatting errors are non-critical (best-effort terminal output)
func (f *TableFormatter) Format(res *results.Results) error {
	summary := res.Summary()
	meta := res.Metadata()

	fmt.Fprintln(f.writer, f.colorize(strings.Repeat("─", 80), colorGray))
	if meta.Name != "" {
		fmt.Fprintf(f.writer, "Rules: %s", f.colorize(meta.Name, colorBold))
		if meta.Version != "" {
			fmt.Fprintf(f.writer, " (v%s)", meta.Version)
		}
		fmt.Fprintln(f.writer)
	}
	if meta.Source != "" {
		fmt.Fprintf(f.writer, "Source: %s\n", meta.Source)
	}
	fmt.Fprintf(f.writer, "Executed: %s\n", res.StartedAt().Format(time.RFC3339))
	fmt.Fprintf(f.writer, "Duration: %s\n", res.Duration().Round(time.Millisecond))
	fmt.Fprintf(f.writer, "Rows: %d\n", summary.Rows)
	fmt.Fprintln(f.writer, f.colorize(strings.Repeat("─", 80), colorGray))

	fmt.Fprintf(f.writer, "Columns Tested: %d/%d (%s%%).\n",
		summary.TestedColumns, summary.TotalColumns, formatPercent(summary.TestedRate(), 0))
	fmt.Fprintf(f.writer, "Columns valid: %d/%d (%s%%).\n",
		summary.ValidColumns, summary.TotalColumns, formatPercent(summary.ValidColumnRate(), 2))

	if !f.Stub {
		fmt.Fprintln(f.writer)
		f.formatColumns(res)
	}

	if summary.TestedColumns > 0 {
		fmt.Fprintln(f.writer)
		f.formatSummaryTable(summary)
	}

	if summary.CellErrorCount > 0 {
		fmt.Fprintln(f.writer)
		fmt.Fprintln(f.writer, f.colorize(
			fmt.Sprintf("%d cells could not be evaluated and were counted invalid.", summary.CellErrorCount), colorRed))
	}
	return nil
}

// formatColumns prints one section per dataset column that passes the visibility filters.
//
//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) formatColumns(res *results.Results) {
	datasetColumns := res.DatasetColumns()
	first := ""
	if len(datasetColumns) > 0 {
		first = datasetColumns[0]
	}

	for i, column := range datasetColumns {
		col, err := res.ColumnResults(column)
		tested := err == nil

		switch {
		case !tested && !f.ShowUntested:
			continue
		case tested && col.Valid() && !f.ShowValidColumns:
			continue
		}

		fmt.Fprintf(f.writer, "--- Column %d: %s ---\n", i+1, column)
		if !tested {
			fmt.Fprintln(f.writer, f.colorize("No tests.", colorGray))
			fmt.Fprintln(f.writer)
			continue
		}
		f.formatColumn(res.Dataset(), col, first)
	}
}

// formatColumn prints every test on a column with a sample of its invalid rows.
//
//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) formatColumn(ds dataset.Dataset, col *results.ColumnResults, first string) {
	columns := []string{col.Name()}
	if first != "" && first != col.Name() {
		columns = []string{first, col.Name()}
	}
	cells := make([][]dataset.Value, len(columns))
	for i, name := range columns {
		cells[i], _ = ds.Column(name)
	}

	rows := col.RowCount()
	for j, b := range col.Bindings() {
		counts := b.Counts()
		rate := "n/a"
		if rows > 0 {
			rate = formatPercent(float64(counts.Valid)/float64(rows), 2) + "%"
		}
		fmt.Fprintf(f.writer, "Test #%02d: %s: %d/%d (%s).\n", j+1, b.Name(), counts.Valid, rows, rate)

		invalid := b.InvalidRows()
		shown := invalid
		if !f.PrintAllFailed && f.MaxFailedRows >= 0 && len(shown) > f.MaxFailedRows {
			shown = shown[:f.MaxFailedRows]
		}

		if len(shown) > 0 {
			t := table.NewWriter()
			t.SetOutputMirror(f.writer)
			t.SetStyle(table.StyleLight)
			t.Style().Format.Header = text.FormatDefault
			header := table.Row{"Row"}
			for _, name := range columns {
				header = append(header, name)
			}
			t.AppendHeader(header)
			t.SetColumnConfigs([]table.ColumnConfig{
				{Number: 1, Align: text.AlignRight},
			})
			for _, row := range shown {
				r := table.Row{row}
				for i := range columns {
					if cells[i] != nil {
						r = append(r, cells[i][row].String())
					}
				}
				t.AppendRow(r)
			}
			t.Render()
		}
		if len(shown) < len(invalid) {
			fmt.Fprintf(f.writer, "... %d more\n", len(invalid)-len(shown))
		}
		fmt.Fprintln(f.writer)
	}
}

// formatSummaryTable prints the per-column aggregate table.
func (f *TableFormatter) formatSummaryTable(summary results.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(f.writer)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault
	t.SetTitle("Summary")

	t.AppendHeader(table.Row{"Column", "Tests", "Valid", "Invalid", "N/A", "Valid %", "Level"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Column", WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Tests", Align: text.AlignRight},
		{Name: "Valid", Align: text.AlignRight},
		{Name: "Invalid", Align: text.AlignRight},
		{Name: "N/A", Align: text.AlignRight},
		{Name: "Valid %", Align: text.AlignRight},
	})

	var totals results.Counts
	for _, cs := range summary.Columns {
		totals.Valid += cs.Counts.Valid
		totals.Invalid += cs.Counts.Invalid
		totals.NotApplicable += cs.Counts.NotApplicable

		rate := "-"
		if _, ok := cs.Counts.ValidRate(); ok {
			rate = formatPercent(cs.Rate, 2)
		}
		t.AppendRow(table.Row{
			cs.Column,
			cs.Bindings,
			cs.Counts.Valid,
			cs.Counts.Invalid,
			cs.Counts.NotApplicable,
			rate,
			f.colorize(cs.Color, levelCode(cs.Color)),
		})
	}

	status := f.colorize("VALID", colorGreen)
	if totals.Invalid > 0 {
		status = f.colorize("INVALID", colorRed)
	}
	t.AppendFooter(table.Row{"TOTAL", summary.TotalBindings, totals.Valid, totals.Invalid, totals.NotApplicable, "", status})
	t.Render()
}

// formatPercent renders rate*100 rounded to the given number of decimals,
// without trailing zeros.
func formatPercent(rate float64, decimals int) string {
	scale := math.Pow(10, float64(decimals))
	return strconv.FormatFloat(math.Round(rate*100*scale)/scale, 'f', -1, 64)
}
