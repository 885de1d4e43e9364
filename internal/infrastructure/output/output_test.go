package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dftest-dev/dftest/internal/domain/checks"
	"github.com/dftest-dev/dftest/internal/domain/dataset"
	"github.com/dftest-dev/dftest/internal/domain/results"
	"github.com/dftest-dev/dftest/internal/domain/rules"
	"github.com/dftest-dev/dftest/internal/domain/values"
)

const (
	v  = values.OutcomeValid
	x  = values.OutcomeInvalid
	na = values.OutcomeNotApplicable
)

// createTestResults builds a run over four columns where Object Number fails
// two tests (one with a cell error), Title passes and the rest are untested.
func createTestResults(t *testing.T) *results.Results {
	t.Helper()

	ds, err := dataset.FromRows(
		[]string{"Object ID", "Object Number", "Title", "Culture"},
		[][]string{
			{"1", "1979.486.1", "Coin", ""},
			{"2", "bad-id", "Vase", "Greek"},
			{"3", "", "Bowl", ""},
		},
	)
	require.NoError(t, err)

	cfg := rules.NewConfig()
	cfg.Metadata = rules.Metadata{Name: "met", Version: "1.0", Source: "tests.conf"}

	match := rules.Binding{Name: "match", Kind: checks.KindMatch, Column: "Object Number", Source: "tests.conf", Line: 3}
	notEmpty := rules.Binding{Name: "not_empty", Kind: checks.KindExpr, Column: "Title", Source: "tests.conf", Line: 4}
	typed := rules.Binding{Name: "type", Kind: checks.KindType, Column: "Object Number", Source: "tests.conf", Line: 5}

	cellErr := &checks.CellEvaluationError{
		Column: "Object Number", Binding: "type", Row: 1, Value: "bad-id", Cause: errors.New("boom"),
	}

	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return results.New(results.Params{
		RunID:      values.NewRunID(),
		StartedAt:  start,
		FinishedAt: start.Add(1500 * time.Millisecond),
		Dataset:    ds,
		Config:     cfg,
		Bindings: []*results.BindingResult{
			results.NewBindingResult(0, match, []values.Outcome{v, x, na}, nil, 0),
			results.NewBindingResult(1, notEmpty, []values.Outcome{v, v, v}, nil, 0),
			results.NewBindingResult(2, typed, []values.Outcome{v, x, na}, []*checks.CellEvaluationError{cellErr}, 1),
		},
	})
}

func emptyResults(t *testing.T) *results.Results {
	t.Helper()
	ds, err := dataset.FromRows([]string{"a"}, nil)
	require.NoError(t, err)
	return results.New(results.Params{Dataset: ds})
}

func plainTable(buf *bytes.Buffer) *TableFormatter {
	f := NewTableFormatter(buf)
	f.EnableColor = false
	return f
}

func TestTableFormatter_Format(t *testing.T) {
	res := createTestResults(t)
	var buf bytes.Buffer

	require.NoError(t, plainTable(&buf).Format(res))
	out := buf.String()

	assert.Contains(t, out, "Rules: met (v1.0)")
	assert.Contains(t, out, "Rows: 3")
	assert.Contains(t, out, "Columns Tested: 2/4 (50%).")
	assert.Contains(t, out, "Columns valid: 1/4 (25%).")

	assert.Contains(t, out, "--- Column 2: Object Number ---")
	assert.Contains(t, out, "Test #01: match: 1/3 (33.33%).")
	assert.Contains(t, out, "Test #02: type: 1/3 (33.33%).")
	assert.Contains(t, out, "bad-id")
	assert.Contains(t, out, "Object ID", "invalid rows show the first dataset column")

	assert.NotContains(t, out, "--- Column 3: Title ---", "valid columns are hidden by default")
	assert.NotContains(t, out, "--- Column 4: Culture ---", "untested columns are hidden by default")

	assert.Contains(t, out, "Summary")
	assert.Contains(t, out, "TOTAL")
	assert.Contains(t, out, "INVALID")
	assert.Contains(t, out, "1 cells could not be evaluated")
	assert.NotContains(t, out, "\033[", "color disabled")
}

func TestTableFormatter_Visibility(t *testing.T) {
	res := createTestResults(t)

	tests := []struct {
		name       string
		configure  func(f *TableFormatter)
		contains   []string
		notContain []string
	}{
		{
			name:       "show valid",
			configure:  func(f *TableFormatter) { f.ShowValidColumns = true },
			contains:   []string{"--- Column 2: Object Number ---", "--- Column 3: Title ---", "Test #01: not_empty: 3/3 (100%)."},
			notContain: []string{"--- Column 1: Object ID ---"},
		},
		{
			name:       "show untested",
			configure:  func(f *TableFormatter) { f.ShowUntested = true },
			contains:   []string{"--- Column 1: Object ID ---", "--- Column 4: Culture ---", "No tests."},
			notContain: []string{"--- Column 3: Title ---"},
		},
		{
			name:       "stub",
			configure:  func(f *TableFormatter) { f.Stub = true; f.ShowValidColumns = true },
			contains:   []string{"Columns Tested: 2/4 (50%).", "TOTAL"},
			notContain: []string{"--- Column", "Test #01"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			f := plainTable(&buf)
			tc.configure(f)
			require.NoError(t, f.Format(res))

			out := buf.String()
			for _, s := range tc.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tc.notContain {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestTableFormatter_FailedRowLimit(t *testing.T) {
	res := createTestResults(t)

	var buf bytes.Buffer
	f := plainTable(&buf)
	f.MaxFailedRows = 0
	require.NoError(t, f.Format(res))
	assert.Contains(t, buf.String(), "... 1 more")
	assert.NotContains(t, buf.String(), "bad-id")

	buf.Reset()
	f.PrintAllFailed = true
	require.NoError(t, f.Format(res))
	assert.NotContains(t, buf.String(), "more")
	assert.Contains(t, buf.String(), "bad-id")
}

func TestTableFormatter_Color(t *testing.T) {
	res := createTestResults(t)
	var buf bytes.Buffer

	require.NoError(t, NewTableFormatter(&buf).Format(res))
	assert.Contains(t, buf.String(), colorRed+"INVALID"+colorReset)
	assert.Contains(t, buf.String(), colorGreen+"green"+colorReset, "Title is graded green")
}

func TestTableFormatter_EmptyResult(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, plainTable(&buf).Format(emptyResults(t)))
	out := buf.String()
	assert.Contains(t, out, "Columns Tested: 0/1 (0%).")
	assert.NotContains(t, out, "TOTAL")
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "33.33", formatPercent(1.0/3.0, 2))
	assert.Equal(t, "50", formatPercent(0.5, 2))
	assert.Equal(t, "67", formatPercent(2.0/3.0, 0))
	assert.Equal(t, "0", formatPercent(0, 0))
}

func TestJSONFormatter_Format_Indented(t *testing.T) {
	res := createTestResults(t)
	var buf bytes.Buffer

	require.NoError(t, NewJSONFormatter(&buf, true).Format(res))
	assert.Contains(t, buf.String(), "\n  \"")

	var report Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))

	assert.Equal(t, res.RunID().String(), report.RunID)
	assert.Equal(t, "met", report.Rules.Name)
	assert.Equal(t, int64(1500), report.DurationMS)
	assert.Equal(t, []string{"Object ID", "Culture"}, report.Untested)
	assert.Equal(t, 2, report.Summary.TestedColumns)

	require.Len(t, report.Columns, 2)
	number := report.Columns[0]
	assert.Equal(t, "Object Number", number.Name)
	assert.False(t, number.Valid)
	require.Len(t, number.Tests, 2)
	assert.Equal(t, []int{1}, number.Tests[0].InvalidRows)
	assert.Equal(t, results.Counts{Valid: 1, Invalid: 1, NotApplicable: 1}, number.Tests[0].Counts)

	require.Len(t, number.Tests[1].Errors, 1)
	assert.Equal(t, CellError{Row: 1, Value: "bad-id", Message: "boom"}, number.Tests[1].Errors[0])
	assert.Equal(t, 1, number.Tests[1].ErrorCount)

	assert.Equal(t, "green", report.Columns[1].Color)
}

func TestJSONFormatter_Format_Compact(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, NewJSONFormatter(&buf, false).Format(createTestResults(t)))
	out := strings.TrimSuffix(buf.String(), "\n")
	assert.NotContains(t, out, "\n")
	assert.True(t, json.Valid([]byte(out)))
}

func TestJSONFormatter_EmptyResult(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, NewJSONFormatter(&buf, false).Format(emptyResults(t)))
	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	assert.Equal(t, []interface{}{}, raw["columns"])
	assert.Equal(t, []interface{}{"a"}, raw["untested_columns"])
}

func TestYAMLFormatter_Format(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, NewYAMLFormatter(&buf).Format(createTestResults(t)))
	out := buf.String()
	assert.Contains(t, out, "run_id:")
	assert.Contains(t, out, "untested_columns:")

	var raw map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &raw))
	columns, ok := raw["columns"].([]interface{})
	require.True(t, ok)
	require.Len(t, columns, 2)
	first, ok := columns[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Object Number", first["name"])
}

func TestNewReport_TruncatesInvalidRows(t *testing.T) {
	rows := maxReportedRows + 5
	records := make([][]string, rows)
	outcomes := make([]values.Outcome, rows)
	for i := range records {
		records[i] = []string{"x"}
		outcomes[i] = x
	}
	ds, err := dataset.FromRows([]string{"a"}, records)
	require.NoError(t, err)

	res := results.New(results.Params{
		Dataset: ds,
		Bindings: []*results.BindingResult{
			results.NewBindingResult(0, rules.Binding{Name: "t", Column: "a"}, outcomes, nil, 0),
		},
	})

	report := NewReport(res)
	test := report.Columns[0].Tests[0]
	assert.Len(t, test.InvalidRows, maxReportedRows)
	assert.True(t, test.Truncated)
	assert.Equal(t, rows, test.Counts.Invalid)
}
