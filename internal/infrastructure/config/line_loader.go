package config

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	apperrors "github.com/dftest-dev/dftest/internal/application/errors"
	"github.com/dftest-dev/dftest/internal/domain/checks"
	"github.com/dftest-dev/dftest/internal/domain/rules"
)

const maxLineLength = 1024 * 1024

// LineLoader parses the line oriented rules format:
//
//	# comment
//	<kind> <column> [param ...]
//
// Parameters are positional, or named as key=value.
type LineLoader struct {
	registry *checks.Registry
	logger   *slog.Logger
}

// NewLineLoader creates a loader resolving kinds through registry.
func NewLineLoader(registry *checks.Registry, logger *slog.Logger) *LineLoader {
	if registry == nil {
		registry = checks.DefaultRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LineLoader{registry: registry, logger: logger}
}

// Load parses every rule from r into cfg. The first malformed line aborts loading.
func (l *LineLoader) Load(r io.Reader, source string, cfg *rules.Config) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := scanner.Text()
		trimmed := strings.TrimSpace(text)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		binding, err := l.parseLine(trimmed)
		if err != nil {
			return apperrors.NewConfigError(source, lineNo, trimmed, "invalid rule", err)
		}
		binding.Source = source
		binding.Line = lineNo

		if err := cfg.Add(binding); err != nil {
			return apperrors.NewConfigError(source, lineNo, trimmed, "invalid rule", err)
		}
		l.logger.Debug("loaded rule", "source", source, "line", lineNo, "kind", binding.Kind, "column", binding.Column)
	}
	if err := scanner.Err(); err != nil {
		return apperrors.NewConfigError(source, lineNo+1, "", "failed to read rules", err)
	}
	return nil
}

func (l *LineLoader) parseLine(line string) (rules.Binding, error) {
	tokens, err := tokenize(line)
	if err != nil {
		return rules.Binding{}, err
	}
	if len(tokens) < 2 || tokens[0].Named || tokens[1].Named {
		return rules.Binding{}, fmt.Errorf("expected <kind> <column> [param ...]")
	}

	kind := tokens[0].Value
	column := tokens[1].Value
	if column == "" {
		return rules.Binding{}, fmt.Errorf("column name is empty")
	}

	params := checks.NewRawParams()
	for _, tok := range tokens[2:] {
		if !tok.Named {
			params.Positional = append(params.Positional, tok.Value)
			continue
		}
		if _, dup := params.Named[tok.Key]; dup {
			return rules.Binding{}, fmt.Errorf("parameter %s given twice", tok.Key)
		}
		params = params.With(tok.Key, tok.Value)
	}

	spec, test, err := l.registry.Build(kind, column, params)
	if err != nil {
		return rules.Binding{}, err
	}

	return rules.Binding{
		Spec:   spec,
		Test:   test,
		Kind:   spec.Kind(),
		Column: column,
	}, nil
}
