// Package rules holds the loaded validation configuration: which tests apply to which columns.
package rules

import (
	"fmt"

	"github.com/dftest-dev/dftest/internal/domain/checks"
	"github.com/dftest-dev/dftest/internal/domain/values"
)

// Binding associates one Test with one target column.
type Binding struct {
	Spec   checks.Spec
	Test   checks.Test
	Name   string
	Kind   string
	Column string
	Source string // rules file the binding came from, if any
	Line   int    // 1-based line in Source, 0 when unknown
}

// Validate checks that the binding can be executed.
func (b Binding) Validate() error {
	if b.Column == "" {
		return fmt.Errorf("binding %q: column is required", b.Name)
	}
	if b.Test == nil {
		return fmt.Errorf("binding %q on column %q: test is required", b.Name, b.Column)
	}
	return nil
}

// ColumnConfig is the ordered list of bindings for one column.
type ColumnConfig struct {
	IntegrityLevels values.IntegrityLevels
	Name            string
	Bindings        []Binding
}

// Metadata describes where a Config came from.
type Metadata struct {
	Name        string
	Version     string
	Description string
	Source      string
}

// Config maps column names to their bindings, keeping columns in first-seen order.
// A Config is built once by a loader and treated as read-only afterwards.
type Config struct {
	index           map[string]int
	Metadata        Metadata
	IntegrityLevels values.IntegrityLevels
	columns         []*ColumnConfig
}

// NewConfig returns an empty config using the default integrity levels.
func NewConfig() *Config {
	return &Config{
		index:           make(map[string]int),
		IntegrityLevels: values.DefaultIntegrityLevels(),
	}
}

// Add appends a binding to its column, creating the column entry on first use.
// A binding without a name is named after its kind and spec.
func (c *Config) Add(b Binding) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if b.Name == "" {
		b.Name = defaultName(b)
	}
	col := c.ensure(b.Column)
	col.Bindings = append(col.Bindings, b)
	return nil
}

// SetIntegrityLevels overrides the colour bands of one column.
func (c *Config) SetIntegrityLevels(column string, levels values.IntegrityLevels) error {
	if err := levels.Validate(); err != nil {
		return fmt.Errorf("column %q: %w", column, err)
	}
	c.ensure(column).IntegrityLevels = levels
	return nil
}

func (c *Config) ensure(column string) *ColumnConfig {
	if i, ok := c.index[column]; ok {
		return c.columns[i]
	}
	col := &ColumnConfig{Name: column}
	c.index[column] = len(c.columns)
	c.columns = append(c.columns, col)
	return col
}

// Columns returns the configured column names in order.
// Columns that only carry integrity levels and no bindings are omitted.
func (c *Config) Columns() []string {
	out := make([]string, 0, len(c.columns))
	for _, col := range c.columns {
		if len(col.Bindings) > 0 {
			out = append(out, col.Name)
		}
	}
	return out
}

// Column returns the configuration of one column.
func (c *Config) Column(name string) (ColumnConfig, bool) {
	i, ok := c.index[name]
	if !ok || len(c.columns[i].Bindings) == 0 {
		return ColumnConfig{}, false
	}
	return *c.columns[i], true
}

// Bindings returns every binding, grouped by column in column order.
func (c *Config) Bindings() []Binding {
	var out []Binding
	for _, col := range c.columns {
		out = append(out, col.Bindings...)
	}
	return out
}

// Len returns the total number of bindings.
func (c *Config) Len() int {
	n := 0
	for _, col := range c.columns {
		n += len(col.Bindings)
	}
	return n
}

// LevelsFor returns the colour bands for a column: its own, else the config default.
func (c *Config) LevelsFor(column string) values.IntegrityLevels {
	if i, ok := c.index[column]; ok && len(c.columns[i].IntegrityLevels) > 0 {
		return c.columns[i].IntegrityLevels
	}
	if len(c.IntegrityLevels) > 0 {
		return c.IntegrityLevels
	}
	return values.DefaultIntegrityLevels()
}

func defaultName(b Binding) string {
	if b.Spec == nil {
		if b.Kind != "" {
			return b.Kind
		}
		return "test"
	}
	return b.Spec.Kind() + ": " + b.Spec.Describe()
}
