// Package system provides infrastructure for system-level configuration.
// This is the user's settings file (~/.dftest/config.yaml), separate from
// rules files.
package system

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/dftest-dev/dftest/internal/domain/values"
)

// ExportFormat is the file format invalid rows are exported in.
type ExportFormat string

const (
	// ExportCSV writes invalid rows as CSV.
	ExportCSV ExportFormat = "csv"
	// ExportParquet writes invalid rows as Parquet.
	ExportParquet ExportFormat = "parquet"
)

// DefaultMaxFailedRows is how many invalid rows the table report lists per test.
const DefaultMaxFailedRows = 10

// Config represents the global configuration file (~/.dftest/config.yaml).
type Config struct {
	// Viewer is the command that opens exported rows. Empty uses the platform opener.
	Viewer          string                 `yaml:"viewer"`
	ExportFormat    ExportFormat           `yaml:"export_format"`
	ExportDir       string                 `yaml:"export_dir"`
	IntegrityLevels values.IntegrityLevels `yaml:"integrity_levels"`
	MaxFailedRows   int                    `yaml:"max_failed_rows"`
}

// Levels returns the configured default colour bands. Nil means none were configured.
func (c *Config) Levels() (values.IntegrityLevels, error) {
	if len(c.IntegrityLevels) == 0 {
		return nil, nil
	}
	if err := c.IntegrityLevels.Validate(); err != nil {
		return nil, fmt.Errorf("integrity_levels: %w", err)
	}
	return c.IntegrityLevels, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.ExportFormat {
	case ExportCSV, ExportParquet:
	default:
		return fmt.Errorf("export_format must be %q or %q, got %q", ExportCSV, ExportParquet, c.ExportFormat)
	}
	if c.MaxFailedRows < 0 {
		return fmt.Errorf("max_failed_rows must not be negative, got %d", c.MaxFailedRows)
	}
	_, err := c.Levels()
	return err
}

// ConfigLoader loads system configuration from disk.
type ConfigLoader struct{}

// NewConfigLoader creates a new system config loader.
func NewConfigLoader() *ConfigLoader {
	return &ConfigLoader{}
}

// DefaultConfig returns a Config with safe defaults for all fields.
// This is used when no system config file exists.
func DefaultConfig() *Config {
	return &Config{
		ExportFormat:  ExportCSV,
		ExportDir:     os.TempDir(),
		MaxFailedRows: DefaultMaxFailedRows,
	}
}

// DefaultPath returns ~/.dftest/config.yaml, or "" when the home directory is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".dftest", "config.yaml")
}

// Load loads the system configuration from the specified path.
// If the file does not exist, returns DefaultConfig() with safe defaults.
// Fields absent from the file keep their defaults.
func (l *ConfigLoader) Load(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	//nolint:gosec // G304: path is user-provided config file, validated to exist above
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read system config: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse system config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid system config %s: %w", path, err)
	}

	return config, nil
}
