package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/dftest-dev/dftest/internal/application/errors"
	"github.com/dftest-dev/dftest/internal/domain/checks"
	"github.com/dftest-dev/dftest/internal/domain/dataset"
	"github.com/dftest-dev/dftest/internal/domain/values"
)

const metRules = `# MetObjects rules
match_test 'Object Number' '([0-9]{2}|[0-9]{4})\.[0-9]{1,4}\.[0-9]{1,4}'

in_range_test AccessionYear min=1870 max=2030 right_inclusive=true
   # indented comment
in_list_test 'Is Highlight' True False
`

func TestFormatFor(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFor("rules.yaml"))
	assert.Equal(t, FormatYAML, FormatFor("dir/RULES.YML"))
	assert.Equal(t, FormatLine, FormatFor("tests.conf"))
	assert.Equal(t, FormatLine, FormatFor("rules"))
}

func TestLineLoader_Valid(t *testing.T) {
	cfg, err := NewLoader(nil).LoadFromReader(strings.NewReader(metRules), FormatLine)
	require.NoError(t, err)

	assert.Equal(t, []string{"Object Number", "AccessionYear", "Is Highlight"}, cfg.Columns())
	assert.Equal(t, 3, cfg.Len())

	bindings := cfg.Bindings()
	assert.Equal(t, 2, bindings[0].Line)
	assert.Equal(t, 4, bindings[1].Line)
	assert.Equal(t, 6, bindings[2].Line)

	out, err := bindings[0].Test.Evaluate(dataset.StringValue("bad-id"))
	require.NoError(t, err)
	assert.Equal(t, values.OutcomeInvalid, out)

	out, err = bindings[1].Test.Evaluate(dataset.StringValue("2030"))
	require.NoError(t, err)
	assert.Equal(t, values.OutcomeValid, out)

	out, err = bindings[2].Test.Evaluate(dataset.StringValue("False"))
	require.NoError(t, err)
	assert.Equal(t, values.OutcomeValid, out)
}

func TestLineLoader_UnknownKind(t *testing.T) {
	rules := "match_test Title .+\nfoo_test Title x\n"
	_, err := NewLoader(nil).LoadFromReader(strings.NewReader(rules), FormatLine)

	var cfgErr *apperrors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, 2, cfgErr.Line)
	assert.Equal(t, "foo_test Title x", cfgErr.Text)
	assert.True(t, errors.Is(err, checks.ErrUnknownKind))
	assert.Contains(t, err.Error(), "line 2")
}

func TestLineLoader_Malformed(t *testing.T) {
	tests := []struct {
		name     string
		rules    string
		contains string
	}{
		{"kind only", "match_test\n", "expected <kind> <column>"},
		{"named column", "match_test col=Title x\n", "expected <kind> <column>"},
		{"invalid pattern", "match_test Title '([a-z'\n", "invalid pattern"},
		{"unterminated quote", "match_test 'Title x\n", "unterminated"},
		{"duplicate parameter", "in_range_test Year min=1 min=2\n", "given twice"},
		{"empty column", "match_test '' x\n", "column name is empty"},
		{"bad bound", "in_range_test Year min=abc\n", "not a number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader(nil).LoadFromReader(strings.NewReader(tt.rules), FormatLine)
			var cfgErr *apperrors.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, 1, cfgErr.Line)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestLineLoader_EmptyFile(t *testing.T) {
	cfg, err := NewLoader(nil).LoadFromReader(strings.NewReader("# nothing\n\n"), FormatLine)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Len())
}

func TestLoader_LoadFromFile(t *testing.T) {
	dir := t.TempDir()

	linePath := filepath.Join(dir, "tests.conf")
	require.NoError(t, os.WriteFile(linePath, []byte(metRules), 0o600))
	yamlPath := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(metProfile), 0o600))

	loader := NewLoader(nil)

	cfg, err := loader.Load(linePath)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Len())
	assert.Equal(t, linePath, cfg.Metadata.Source)
	assert.Equal(t, linePath, cfg.Bindings()[0].Source)

	cfg, err = loader.Load(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "met-objects", cfg.Metadata.Name)
	assert.Equal(t, yamlPath, cfg.Metadata.Source)
}

func TestLoader_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.conf")
	_, err := NewLoader(nil).Load(path)

	var cfgErr *apperrors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, path, cfgErr.Source)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoader_DefaultIntegrityLevels(t *testing.T) {
	levels := values.IntegrityLevels{{Color: "red", Threshold: 0}, {Color: "green", Threshold: 0.5}}
	cfg, err := NewLoader(nil, WithDefaultIntegrityLevels(levels)).
		LoadFromReader(strings.NewReader("match_test Title .+\n"), FormatLine)
	require.NoError(t, err)
	assert.Equal(t, "green", cfg.LevelsFor("Title").Colorcode(0.6))

	_, err = NewLoader(nil, WithDefaultIntegrityLevels(values.IntegrityLevels{{Color: "x", Threshold: 9}})).
		LoadFromReader(strings.NewReader(""), FormatLine)
	assert.Error(t, err)
}

func TestLoader_UnsupportedFormat(t *testing.T) {
	_, err := NewLoader(nil).LoadFromReader(strings.NewReader(""), Format("toml"))
	var cfgErr *apperrors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "unsupported rules format")
}

func TestLoader_CustomRegistry(t *testing.T) {
	registry := checks.DefaultRegistry()
	require.NoError(t, registry.Register(checks.KindInfo{
		Name: "yes_no_test",
		Parse: func(_ checks.RawParams) (checks.Spec, error) {
			return checks.ListSpec{Values: []string{"Yes", "No"}}, nil
		},
	}))

	cfg, err := NewLoader(registry).LoadFromReader(strings.NewReader("yes_no_test Flag\n"), FormatLine)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Len())
}
