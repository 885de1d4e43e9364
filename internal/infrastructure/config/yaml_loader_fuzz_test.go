package config

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dftest-dev/dftest/internal/domain/checks"
	"github.com/dftest-dev/dftest/internal/domain/rules"
)

// FuzzProfileLoading fuzzes YAML profile parsing for malformed input
// TARGETS: ProfileLoader.Load() via schema validation and yaml.Unmarshal
// EXPECTED FAILURES: Panic on deeply nested YAML, non-scalar params, invalid UTF-8
func FuzzProfileLoading(f *testing.F) {
	seeds := []string{
		// Valid profile
		`profile:
  name: met
  version: 1.0.0
columns:
  - name: Object Number
    tests:
      - kind: match_test
        args: ['[0-9]+']`,

		// Range with mixed scalar params
		"columns:\n  - name: Year\n    tests:\n      - kind: in_range\n        params: {min: 1870, max: '2030', right_inclusive: true}",

		// Deeply nested
		strings.Repeat("nested:\n  ", 1000) + "value: 1",

		// Large document
		"columns:\n" + strings.Repeat("  - name: c\n", 10000),

		// Invalid UTF-8
		"profile:\n  name: \xff\xfe",

		// Anchors
		"columns:\n  - &col\n    name: a\n  - *col",

		// Null bytes
		"columns:\n  - name: a\x00b",

		// Empty
		"",

		// Malformed YAML
		"columns:\n  - name: a\n    invalid_indent: [",

		// Bad levels
		"defaults:\n  integrity_levels:\n    - {color: red, threshold: 2}\ncolumns: []",
	}

	for _, seed := range seeds {
		f.Add([]byte(seed))
	}

	f.Fuzz(func(t *testing.T, yamlData []byte) {
		defer func() {
			if r := recover(); r != nil {
				t.Errorf("PANIC on input (len=%d): %v", len(yamlData), r)
			}
		}()

		loader := NewProfileLoader(checks.DefaultRegistry(), nil)

		// Should handle all inputs gracefully (error or success, no panic)
		_ = loader.Load(bytes.NewReader(yamlData), "fuzz.yaml", rules.NewConfig())
	})
}

// FuzzLineRules fuzzes the line rules tokenizer and parameter parsers
func FuzzLineRules(f *testing.F) {
	seeds := []string{
		"match_test 'Object Number' '([0-9]{2}|[0-9]{4})\\.[0-9]{1,4}'",
		"in_range_test AccessionYear min=1870 max=2030 right_inclusive=true",
		"in_list_test 'Is Highlight' True False",
		"expr_test Year 'number > 1900 && is_number'",
		"type_test Weight types=int,float",
		"match_test 'unterminated",
		"in_range_test Year min=abc",
		"# comment\n\n",
		strings.Repeat("'", 10000),
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		defer func() {
			if r := recover(); r != nil {
				t.Errorf("PANIC on input %q: %v", input, r)
			}
		}()

		loader := NewLineLoader(checks.DefaultRegistry(), nil)
		_ = loader.Load(strings.NewReader(input), "fuzz.conf", rules.NewConfig())
	})
}
