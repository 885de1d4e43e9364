// Package output provides formatters for dftest validation results.
package output

import (
	"fmt"
	"io"

	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"

	"github.com/dftest-dev/dftest/internal/domain/results"
	"github.com/dftest-dev/dftest/internal/version"
)

// SARIFFormatter formats validation results as SARIF 2.1.0 JSON.
// Each bound test becomes a SARIF rule and its outcome over the dataset a result
// located at the rule's line in the rules file.
//
// Usage:
//
//	formatter := output.NewSARIFFormatter(os.Stdout, "tests.conf")
//	if err := formatter.Format(res); err != nil {
//	    log.Fatal(err)
//	}
type SARIFFormatter struct {
	writer    io.Writer
	rulesPath string
}

// NewSARIFFormatter creates a new SARIF formatter.
// rulesPath is the fallback location for tests that carry no source of their own.
func NewSARIFFormatter(writer io.Writer, rulesPath string) *SARIFFormatter {
	return &SARIFFormatter{
		writer:    writer,
		rulesPath: rulesPath,
	}
}

// Format writes the validation results as SARIF 2.1.0 JSON.
func (f *SARIFFormatter) Format(res *results.Results) error {
	report := sarif.NewReport()

	run := sarif.NewRunWithInformationURI("dftest", "https://github.com/dftest-dev/dftest")
	run.Tool.Driver.Version = ptrString(version.Version)
	run.Tool.Driver.Organization = ptrString("dftest")

	mapper := newSARIFMapper(res, f.rulesPath)
	mapper.mapToRun(run)

	report.AddRun(run)

	if err := report.Write(f.writer); err != nil {
		return fmt.Errorf("failed to write SARIF output: %w", err)
	}

	_, err := f.writer.Write([]byte("\n"))
	return err
}

func ptrString(s string) *string {
	return &s
}
