package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/dftest-dev/dftest/internal/application/errors"
	"github.com/dftest-dev/dftest/internal/domain/checks"
	"github.com/dftest-dev/dftest/internal/domain/dataset"
	"github.com/dftest-dev/dftest/internal/domain/values"
)

const metProfile = `
profile:
  name: met-objects
  version: 1.0.0
  description: Met open access catalog
defaults:
  integrity_levels:
    - {color: red, threshold: 0}
    - {color: green, threshold: 0.9}
columns:
  - name: Object Number
    tests:
      - kind: match_test
        name: Accession number
        params:
          pattern: '([0-9]{2}|[0-9]{4})\.[0-9]{1,4}\.[0-9]{1,4}'
  - name: AccessionYear
    integrity_levels:
      - {color: red, threshold: 0}
      - {color: blue, threshold: 0.5}
    tests:
      - kind: in_range
        params: {min: 1870, max: 2030, right_inclusive: true}
      - kind: type_test
        args: [int]
  - name: Is Highlight
    tests:
      - kind: in_list_test
        params:
          values: ["True", "False"]
`

func loadYAML(t *testing.T, doc string) error {
	t.Helper()
	_, err := NewLoader(nil).LoadFromReader(strings.NewReader(doc), FormatYAML)
	return err
}

func TestProfileLoader_Valid(t *testing.T) {
	cfg, err := NewLoader(nil).LoadFromReader(strings.NewReader(metProfile), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, "met-objects", cfg.Metadata.Name)
	assert.Equal(t, "1.0.0", cfg.Metadata.Version)
	assert.Equal(t, []string{"Object Number", "AccessionYear", "Is Highlight"}, cfg.Columns())
	assert.Equal(t, 4, cfg.Len())

	number, ok := cfg.Column("Object Number")
	require.True(t, ok)
	require.Len(t, number.Bindings, 1)
	assert.Equal(t, "Accession number", number.Bindings[0].Name)
	assert.Equal(t, checks.KindMatch, number.Bindings[0].Kind)

	out, err := number.Bindings[0].Test.Evaluate(dataset.StringValue("1979.486.1"))
	require.NoError(t, err)
	assert.Equal(t, values.OutcomeValid, out)

	year, ok := cfg.Column("AccessionYear")
	require.True(t, ok)
	require.Len(t, year.Bindings, 2)
	assert.Equal(t, checks.KindInRange, year.Bindings[0].Kind, "aliases resolve to the canonical kind")
	out, err = year.Bindings[0].Test.Evaluate(dataset.StringValue("2030"))
	require.NoError(t, err)
	assert.Equal(t, values.OutcomeValid, out)

	highlight, ok := cfg.Column("Is Highlight")
	require.True(t, ok)
	assert.Equal(t, []string{"True", "False"}, highlight.Bindings[0].Spec.(checks.ListSpec).Values)

	assert.Equal(t, "blue", cfg.LevelsFor("AccessionYear").Colorcode(0.6))
	assert.Equal(t, "green", cfg.LevelsFor("Object Number").Colorcode(0.95))
}

func TestProfileLoader_SchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing columns", "profile: {name: x}\n"},
		{"unknown top level key", "columns: []\ncontrols: []\n"},
		{"test without kind", "columns:\n  - name: A\n    tests:\n      - name: x\n"},
		{"threshold out of range", "defaults:\n  integrity_levels:\n    - {color: red, threshold: 3}\ncolumns: []\n"},
		{"params must be scalars", "columns:\n  - name: A\n    tests:\n      - kind: match_test\n        params: {pattern: {nested: true}}\n"},
		{"empty document", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := loadYAML(t, tt.doc)
			var cfgErr *apperrors.ConfigError
			require.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestProfileLoader_SchemaMessageNamesLocation(t *testing.T) {
	err := loadYAML(t, "columns:\n  - name: A\n    tests:\n      - name: x\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/columns/0/tests/0")
}

func TestProfileLoader_UnknownKind(t *testing.T) {
	err := loadYAML(t, "columns:\n  - name: Title\n    tests:\n      - kind: foo_test\n")
	var cfgErr *apperrors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.True(t, errors.Is(err, checks.ErrUnknownKind))
	assert.Equal(t, "columns[0].tests[0]", cfgErr.Text)
	assert.Contains(t, cfgErr.Message, `column "Title"`)
}

func TestProfileLoader_BadParams(t *testing.T) {
	err := loadYAML(t, "columns:\n  - name: Title\n    tests:\n      - kind: match_test\n        params: {pattern: '([a-z'}\n")
	var cfgErr *apperrors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "invalid pattern")
}

func TestProfileLoader_InvalidVersion(t *testing.T) {
	err := loadYAML(t, "profile: {name: x, version: not-a-version}\ncolumns: []\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a semantic version")
}

func TestProfileLoader_NonIncreasingLevels(t *testing.T) {
	doc := "columns:\n  - name: A\n    integrity_levels:\n      - {color: green, threshold: 0.9}\n      - {color: red, threshold: 0.1}\n"
	err := loadYAML(t, doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must increase")
}

func TestProfileLoader_InvalidYAML(t *testing.T) {
	err := loadYAML(t, "columns: [[[")
	var cfgErr *apperrors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "failed to decode")
}

func TestProfileLoader_ListValuesKeepCommas(t *testing.T) {
	doc := `
columns:
  - name: Artist
    tests:
      - kind: in_list_test
        params:
          values: ["Smith, John", "Doe"]
`
	cfg, err := NewLoader(nil).LoadFromReader(strings.NewReader(doc), FormatYAML)
	require.NoError(t, err)

	artist, ok := cfg.Column("Artist")
	require.True(t, ok)
	require.Len(t, artist.Bindings, 1)
	assert.Equal(t, []string{"Smith, John", "Doe"}, artist.Bindings[0].Spec.(checks.ListSpec).Values)

	out, err := artist.Bindings[0].Test.Evaluate(dataset.StringValue("Smith, John"))
	require.NoError(t, err)
	assert.Equal(t, values.OutcomeValid, out)

	out, err = artist.Bindings[0].Test.Evaluate(dataset.StringValue("Smith"))
	require.NoError(t, err)
	assert.Equal(t, values.OutcomeInvalid, out)
}

func TestProfileLoader_ScalarsKeepSpelling(t *testing.T) {
	doc := `
columns:
  - name: Flag
    tests:
      - kind: in_list_test
        args: [True, False, 007, 1.50]
  - name: Weight
    tests:
      - kind: in_range
        params: {min: 1.50, max: 2}
`
	cfg, err := NewLoader(nil).LoadFromReader(strings.NewReader(doc), FormatYAML)
	require.NoError(t, err)

	flag, ok := cfg.Column("Flag")
	require.True(t, ok)
	assert.Equal(t, []string{"True", "False", "007", "1.50"}, flag.Bindings[0].Spec.(checks.ListSpec).Values)

	cases := map[string]values.Outcome{
		"True": values.OutcomeValid,
		"007":  values.OutcomeValid,
		"1.50": values.OutcomeValid,
		"true": values.OutcomeInvalid,
		"7":    values.OutcomeInvalid,
		"1.5":  values.OutcomeInvalid,
	}
	for cell, want := range cases {
		out, err := flag.Bindings[0].Test.Evaluate(dataset.StringValue(cell))
		require.NoError(t, err)
		assert.Equal(t, want, out, cell)
	}

	weight, ok := cfg.Column("Weight")
	require.True(t, ok)
	out, err := weight.Bindings[0].Test.Evaluate(dataset.StringValue("1.5"))
	require.NoError(t, err)
	assert.Equal(t, values.OutcomeValid, out)
}

func TestProfileLoader_ListWhereScalarExpected(t *testing.T) {
	err := loadYAML(t, "columns:\n  - name: A\n    tests:\n      - kind: in_range\n        params: {min: [1, 2]}\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not a number")
}
