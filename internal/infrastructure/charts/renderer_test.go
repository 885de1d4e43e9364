package charts

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dftest-dev/dftest/internal/domain/results"
	"github.com/dftest-dev/dftest/internal/domain/values"
)

func plain(width int) *Renderer {
	return &Renderer{Width: width, Color: false}
}

func lines(buf *bytes.Buffer) []string {
	return strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
}

func TestRenderBarChart_Rows(t *testing.T) {
	chart := results.BarChart{
		Title: "Object Number tests",
		Unit:  "rows",
		Bars: []results.Bar{
			{Label: "match", Segments: []results.Segment{
				{Label: "Valid", Color: "green", Value: 6},
				{Label: "Invalid", Color: "red", Value: 4},
			}},
			{Label: "type", Segments: []results.Segment{
				{Label: "Valid", Color: "green", Value: 5},
				{Label: "Invalid", Color: "red", Value: 0},
			}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, plain(10).RenderBarChart(&buf, chart))
	out := lines(&buf)
	require.Len(t, out, 4)

	assert.Equal(t, "Object Number tests", out[0])
	assert.Equal(t, "  match "+strings.Repeat(glyphBar, 10)+" 6/4", out[1])
	assert.Equal(t, "  type  "+strings.Repeat(glyphBar, 5)+" 5/0", out[2])
	assert.Contains(t, out[3], "Valid")
	assert.Contains(t, out[3], "Invalid")
}

func TestRenderBarChart_Rate(t *testing.T) {
	chart := results.BarChart{
		Title: "valid rate",
		Unit:  "rate",
		Bars: []results.Bar{
			{Label: "a", Segments: []results.Segment{{Label: "Valid rate", Color: "yellow", Value: 0.5}}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, plain(20).RenderBarChart(&buf, chart))
	out := lines(&buf)
	require.Len(t, out, 2, "single-segment charts have no legend")
	assert.Equal(t, "  a "+strings.Repeat(glyphBar, 10)+" 50.00%", out[1])
}

func TestRenderBarChart_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, plain(10).RenderBarChart(&buf, results.BarChart{Title: "empty"}))
	assert.Equal(t, "empty\n  (no data)\n", buf.String())
}

func TestRenderPieChart(t *testing.T) {
	chart := results.PieChart{
		Title: "Columns tested",
		Slices: []results.Segment{
			{Label: "Tested", Color: "blue", Value: 1},
			{Label: "Untested", Color: "grey", Value: 3},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, plain(8).RenderPieChart(&buf, chart))
	out := lines(&buf)
	require.Len(t, out, 4)
	assert.Equal(t, "  "+strings.Repeat(glyphBar, 8), out[1])
	assert.Equal(t, "  "+glyphBar+" Tested   1 (25.0%)", out[2])
	assert.Equal(t, "  "+glyphBar+" Untested 3 (75.0%)", out[3])
}

func TestRenderPieChart_NoData(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, plain(8).RenderPieChart(&buf, results.PieChart{Title: "p"}))
	assert.Contains(t, buf.String(), "(no data)")
}

func TestRenderHeatmap_Buckets(t *testing.T) {
	heatmap := results.Heatmap{
		Title:   "Validity",
		Columns: []string{"a", "b"},
		Rows:    6,
		Cells: [][]int{
			{1, 1, 1, 0, -1, -1},
			{1, -1, -1, -1, 1, 1},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, plain(3).RenderHeatmap(&buf, heatmap))
	out := lines(&buf)
	require.Len(t, out, 5)

	assert.Equal(t, "  a "+glyphValid+glyphInvalid+glyphNA, out[1])
	assert.Equal(t, "  b "+glyphValid+glyphNA+glyphValid, out[2])
	assert.Contains(t, out[3], "rows 0-5, 2 per cell")
	assert.Contains(t, out[4], "n/a")
}

func TestRenderHeatmap_BinaryLegend(t *testing.T) {
	heatmap := results.Heatmap{Title: "h", Columns: []string{"a"}, Rows: 1, Cells: [][]int{{1}}, Binary: true}

	var buf bytes.Buffer
	require.NoError(t, plain(10).RenderHeatmap(&buf, heatmap))
	assert.NotContains(t, buf.String(), "n/a")
	assert.Contains(t, buf.String(), "1 per cell")
}

func TestRenderHeatmap_NoRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, plain(10).RenderHeatmap(&buf, results.Heatmap{Title: "h", Columns: []string{"a"}, Cells: [][]int{{}}}))
	assert.Contains(t, buf.String(), "(no data)")
}

func TestRenderSummary(t *testing.T) {
	charts := results.SummaryCharts{
		Coverage: results.PieChart{Title: "Columns tested", Slices: []results.Segment{{Label: "Tested", Value: 1}}},
		Validity: results.PieChart{Title: "Columns valid", Slices: []results.Segment{{Label: "Valid", Value: 1}}},
		InvalidCounts: results.BarChart{Title: "Invalid rows per column", Unit: "rows", Bars: []results.Bar{
			{Label: "a", Segments: []results.Segment{{Label: "Invalid", Value: 2}}},
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, plain(4).RenderSummary(&buf, charts))
	out := buf.String()
	assert.Contains(t, out, "Columns tested")
	assert.Contains(t, out, "Columns valid")
	assert.Contains(t, out, "Invalid rows per column")
}

func TestRenderer_Color(t *testing.T) {
	r := NewRenderer()
	r.Width = 4
	chart := results.PieChart{Title: "p", Slices: []results.Segment{{Label: "Valid", Color: "green", Value: 1}}}

	var buf bytes.Buffer
	require.NoError(t, r.RenderPieChart(&buf, chart))
	assert.Contains(t, buf.String(), "\x1b[")
}

func TestBucket(t *testing.T) {
	valid, invalid, na := values.OutcomeValid.Code(), values.OutcomeInvalid.Code(), values.OutcomeNotApplicable.Code()
	assert.Equal(t, invalid, bucket([]int{valid, invalid, na}))
	assert.Equal(t, valid, bucket([]int{na, valid}))
	assert.Equal(t, na, bucket([]int{na, na}))
	assert.Equal(t, na, bucket(nil))
}

func TestLabelTruncation(t *testing.T) {
	long := strings.Repeat("x", maxLabelWidth+10)
	heatmap := results.Heatmap{Title: "h", Columns: []string{long}, Rows: 1, Cells: [][]int{{1}}}

	var buf bytes.Buffer
	require.NoError(t, plain(10).RenderHeatmap(&buf, heatmap))
	assert.Contains(t, buf.String(), strings.Repeat("x", maxLabelWidth-1)+"…")
	assert.NotContains(t, buf.String(), strings.Repeat("x", maxLabelWidth))
}
