// Package config loads rules files into a rules.Config.
// Two formats are supported: the line oriented rules format and YAML profiles.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/dftest-dev/dftest/internal/application/errors"
	"github.com/dftest-dev/dftest/internal/domain/checks"
	"github.com/dftest-dev/dftest/internal/domain/rules"
	"github.com/dftest-dev/dftest/internal/domain/values"
)

// Format identifies a rules file format.
type Format string

const (
	// FormatLine is one rule per line: <kind> <column> [param ...].
	FormatLine Format = "line"
	// FormatYAML is a YAML rules profile.
	FormatYAML Format = "yaml"
)

// FormatFor picks the format from a file extension. Anything but .yaml/.yml is line format.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatLine
	}
}

// Loader reads rules files of either format.
type Loader struct {
	registry      *checks.Registry
	logger        *slog.Logger
	defaultLevels values.IntegrityLevels
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger used for per-rule debug output.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithDefaultIntegrityLevels sets the colour bands used when a rules file defines none.
func WithDefaultIntegrityLevels(levels values.IntegrityLevels) LoaderOption {
	return func(l *Loader) {
		l.defaultLevels = levels
	}
}

// NewLoader creates a loader resolving kinds through registry (DefaultRegistry when nil).
func NewLoader(registry *checks.Registry, opts ...LoaderOption) *Loader {
	l := &Loader{
		registry: registry,
		logger:   slog.Default(),
	}
	if l.registry == nil {
		l.registry = checks.DefaultRegistry()
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Registry returns the kind registry the loader resolves against.
func (l *Loader) Registry() *checks.Registry {
	return l.registry
}

// Load reads a rules file. The format is chosen by extension.
func (l *Loader) Load(path string) (*rules.Config, error) {
	// Security: Use os.OpenRoot to prevent path traversal attacks
	root, err := os.OpenRoot(filepath.Dir(path))
	if err != nil {
		return nil, apperrors.NewConfigError(path, 0, "", "failed to open rules directory", err)
	}
	defer func() {
		_ = root.Close() // Best-effort cleanup
	}()

	file, err := root.Open(filepath.Base(path))
	if err != nil {
		return nil, apperrors.NewConfigError(path, 0, "", "failed to open rules file", err)
	}
	defer func() {
		_ = file.Close() // Best-effort cleanup
	}()

	return l.load(file, FormatFor(path), path)
}

// LoadFromReader reads rules in the given format from r.
func (l *Loader) LoadFromReader(r io.Reader, format Format) (*rules.Config, error) {
	return l.load(r, format, "")
}

func (l *Loader) load(r io.Reader, format Format, source string) (*rules.Config, error) {
	cfg := rules.NewConfig()
	cfg.Metadata.Source = source
	if len(l.defaultLevels) > 0 {
		if err := l.defaultLevels.Validate(); err != nil {
			return nil, apperrors.NewConfigError(source, 0, "", "invalid default integrity levels", err)
		}
		cfg.IntegrityLevels = l.defaultLevels
	}

	var err error
	switch format {
	case FormatLine:
		err = NewLineLoader(l.registry, l.logger).Load(r, source, cfg)
	case FormatYAML:
		err = NewProfileLoader(l.registry, l.logger).Load(r, source, cfg)
	default:
		err = apperrors.NewConfigError(source, 0, "", fmt.Sprintf("unsupported rules format %q", format), nil)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Len() == 0 {
		l.logger.Warn("rules file defines no tests", "source", source)
	}
	l.logger.Debug("rules loaded", "source", source, "columns", len(cfg.Columns()), "tests", cfg.Len())
	return cfg, nil
}
