package output

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/dftest-dev/dftest/internal/domain/results"
)

// maxJUnitRows caps the invalid row indices listed in a failure body.
const maxJUnitRows = 50

// JUnitFormatter formats validation results as JUnit XML.
// Each validated column is a test suite and each test bound to it a test case.
type JUnitFormatter struct {
	writer io.Writer
}

// NewJUnitFormatter creates a new JUnit formatter.
func NewJUnitFormatter(w io.Writer) *JUnitFormatter {
	return &JUnitFormatter{
		writer: w,
	}
}

// JUnitTestSuites JUnit XML structures
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Name       string           `xml:"name,attr"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Time       float64          `xml:"time,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

type JUnitTestSuite struct {
	XMLName   xml.Name        `xml:"testsuite"`
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Errors    int             `xml:"errors,attr"`
	Skipped   int             `xml:"skipped,attr"`
	Time      float64         `xml:"time,attr"`
	TestCases []JUnitTestCase `xml:"testcase"`
}

type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
}

type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Content string `xml:",chardata"`
}

type JUnitError struct {
	Message string `xml:"message,attr"`
	Content string `xml:",chardata"`
}

type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// Format writes the validation results as JUnit XML.
func (f *JUnitFormatter) Format(res *results.Results) error {
	suites := JUnitTestSuites{
		Name: "dftest",
		Time: res.Duration().Seconds(),
	}
	if meta := res.Metadata(); meta.Name != "" {
		suites.Name = meta.Name
	}

	for _, column := range res.Columns() {
		col, err := res.ColumnResults(column)
		if err != nil {
			continue
		}
		suite := JUnitTestSuite{Name: column}

		for _, b := range col.Bindings() {
			c := newJUnitTestCase(b)
			suite.Tests++
			switch {
			case c.Error != nil:
				suite.Errors++
			case c.Failure != nil:
				suite.Failures++
			case c.Skipped != nil:
				suite.Skipped++
			}
			suite.TestCases = append(suite.TestCases, c)
		}

		suites.Tests += suite.Tests
		suites.Failures += suite.Failures
		suites.Errors += suite.Errors
		suites.TestSuites = append(suites.TestSuites, suite)
	}

	_, err := f.writer.Write([]byte(xml.Header))
	if err != nil {
		return err
	}

	encoder := xml.NewEncoder(f.writer)
	encoder.Indent("", "  ")
	if err := encoder.Encode(suites); err != nil {
		return err
	}

	_, err = f.writer.Write([]byte("\n"))
	return err
}

func newJUnitTestCase(b *results.BindingResult) JUnitTestCase {
	c := JUnitTestCase{
		Name:      b.Name(),
		ClassName: b.Column(),
	}
	counts := b.Counts()

	switch {
	case b.ErrorCount() > 0:
		c.Error = &JUnitError{
			Message: fmt.Sprintf("%d cells could not be evaluated", b.ErrorCount()),
			Content: formatCellErrors(b),
		}
	case counts.Invalid > 0:
		c.Failure = &JUnitFailure{
			Message: fmt.Sprintf("%d/%d rows invalid", counts.Invalid, counts.Total()),
			Content: formatInvalidRows(b.InvalidRows()),
		}
	case counts.Evaluated() == 0:
		c.Skipped = &JUnitSkipped{
			Message: "test not applicable to any row",
		}
	}
	return c
}

func formatInvalidRows(rows []int) string {
	shown := rows
	if len(shown) > maxJUnitRows {
		shown = shown[:maxJUnitRows]
	}
	parts := make([]string, len(shown))
	for i, r := range shown {
		parts[i] = fmt.Sprint(r)
	}
	out := "Invalid rows: " + strings.Join(parts, ", ")
	if len(shown) < len(rows) {
		out += fmt.Sprintf(" ... (%d more)", len(rows)-len(shown))
	}
	return out + "\n"
}

func formatCellErrors(b *results.BindingResult) string {
	var sb strings.Builder
	for _, e := range b.Errors() {
		fmt.Fprintf(&sb, "Row %d (%q): %v\n", e.Row, e.Value, e.Cause)
	}
	if recorded := len(b.Errors()); recorded < b.ErrorCount() {
		fmt.Fprintf(&sb, "... %d more\n", b.ErrorCount()-recorded)
	}
	return sb.String()
}
