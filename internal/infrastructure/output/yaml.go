package output

import (
	"io"

	"github.com/goccy/go-yaml"

	"github.com/dftest-dev/dftest/internal/domain/results"
)

// YAMLFormatter formats validation results as YAML.
type YAMLFormatter struct {
	writer io.Writer
}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter(w io.Writer) *YAMLFormatter {
	return &YAMLFormatter{writer: w}
}

// Format writes the validation results as YAML.
func (f *YAMLFormatter) Format(res *results.Results) error {
	encoder := yaml.NewEncoder(f.writer, yaml.Indent(2))

	if err := encoder.Encode(NewReport(res)); err != nil {
		return err
	}

	return encoder.Close()
}
