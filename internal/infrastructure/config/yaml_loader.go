package config

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/Masterminds/semver/v3"
	"github.com/goccy/go-yaml"

	apperrors "github.com/dftest-dev/dftest/internal/application/errors"
	"github.com/dftest-dev/dftest/internal/domain/checks"
	"github.com/dftest-dev/dftest/internal/domain/rules"
	"github.com/dftest-dev/dftest/internal/domain/values"
)

// ProfileDocument is the YAML rules profile.
type ProfileDocument struct {
	Profile  ProfileMetadata  `yaml:"profile,omitempty"`
	Defaults ProfileDefaults  `yaml:"defaults,omitempty"`
	Columns  []ColumnDocument `yaml:"columns"`
}

// ProfileMetadata names and versions a profile.
type ProfileMetadata struct {
	Name        string `yaml:"name,omitempty"`
	Version     string `yaml:"version,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// ProfileDefaults apply to every column unless overridden.
type ProfileDefaults struct {
	IntegrityLevels values.IntegrityLevels `yaml:"integrity_levels,omitempty"`
}

// ColumnDocument lists the tests of one column.
type ColumnDocument struct {
	Name            string                 `yaml:"name"`
	IntegrityLevels values.IntegrityLevels `yaml:"integrity_levels,omitempty"`
	Tests           []TestDocument         `yaml:"tests,omitempty"`
}

// TestDocument is one test on a column.
type TestDocument struct {
	Params map[string]ParamValue `yaml:"params,omitempty"`
	Kind   string                `yaml:"kind"`
	Name   string                `yaml:"name,omitempty"`
	Args   []ParamValue          `yaml:"args,omitempty"`
}

// ProfileLoader loads YAML rules profiles. Documents are validated against the
// embedded JSON schema before any test is built.
type ProfileLoader struct {
	registry *checks.Registry
	logger   *slog.Logger
}

// NewProfileLoader creates a profile loader resolving kinds through registry.
func NewProfileLoader(registry *checks.Registry, logger *slog.Logger) *ProfileLoader {
	if registry == nil {
		registry = checks.DefaultRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileLoader{registry: registry, logger: logger}
}

// Load decodes a profile from r into cfg.
func (l *ProfileLoader) Load(r io.Reader, source string, cfg *rules.Config) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return apperrors.NewConfigError(source, 0, "", "failed to read profile", err)
	}

	doc, err := yaml.YAMLToJSON(data)
	if err != nil {
		return apperrors.NewConfigError(source, 0, "", "failed to decode profile YAML", err)
	}
	if err := validateRulesDocument(doc); err != nil {
		return apperrors.NewConfigError(source, 0, "", "profile does not match schema", err)
	}

	var profile ProfileDocument
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return apperrors.NewConfigError(source, 0, "", "failed to decode profile YAML", err)
	}

	if v := profile.Profile.Version; v != "" {
		if _, err := semver.NewVersion(v); err != nil {
			return apperrors.NewConfigError(source, 0, "profile.version", fmt.Sprintf("version %q is not a semantic version", v), err)
		}
	}

	cfg.Metadata = rules.Metadata{
		Name:        profile.Profile.Name,
		Version:     profile.Profile.Version,
		Description: profile.Profile.Description,
		Source:      source,
	}

	if len(profile.Defaults.IntegrityLevels) > 0 {
		if err := profile.Defaults.IntegrityLevels.Validate(); err != nil {
			return apperrors.NewConfigError(source, 0, "defaults.integrity_levels", "invalid integrity levels", err)
		}
		cfg.IntegrityLevels = profile.Defaults.IntegrityLevels
	}

	for ci, column := range profile.Columns {
		if len(column.IntegrityLevels) > 0 {
			if err := cfg.SetIntegrityLevels(column.Name, column.IntegrityLevels); err != nil {
				return apperrors.NewConfigError(source, 0, fmt.Sprintf("columns[%d]", ci), "invalid integrity levels", err)
			}
		}

		for ti, test := range column.Tests {
			location := fmt.Sprintf("columns[%d].tests[%d]", ci, ti)
			binding, err := l.buildBinding(column.Name, test)
			if err != nil {
				return apperrors.NewConfigError(source, 0, location, fmt.Sprintf("column %q, test %d", column.Name, ti), err)
			}
			binding.Source = source
			if err := cfg.Add(binding); err != nil {
				return apperrors.NewConfigError(source, 0, location, fmt.Sprintf("column %q, test %d", column.Name, ti), err)
			}
			l.logger.Debug("loaded rule", "source", source, "column", column.Name, "kind", binding.Kind, "name", binding.Name)
		}
	}
	return nil
}

func (l *ProfileLoader) buildBinding(column string, test TestDocument) (rules.Binding, error) {
	params := checks.NewRawParams()
	for i, arg := range test.Args {
		if arg.IsList() {
			return rules.Binding{}, fmt.Errorf("args[%d]: expected a scalar", i)
		}
		params.Positional = append(params.Positional, arg.String())
	}
	for key, raw := range test.Params {
		if raw.IsList() {
			params = params.WithList(key, raw.Items()...)
			continue
		}
		params = params.With(key, raw.String())
	}

	spec, built, err := l.registry.Build(test.Kind, column, params)
	if err != nil {
		return rules.Binding{}, err
	}
	return rules.Binding{
		Spec:   spec,
		Test:   built,
		Name:   test.Name,
		Kind:   spec.Kind(),
		Column: column,
	}, nil
}
