package checks

import (
	"fmt"
	"regexp"

	"github.com/dftest-dev/dftest/internal/domain/dataset"
	"github.com/dftest-dev/dftest/internal/domain/values"
)

// MatchMode selects how much of the value a pattern must cover.
type MatchMode string

const (
	// MatchFull requires the pattern to match the entire value.
	MatchFull MatchMode = "full"
	// MatchPrefix requires the pattern to match at the start of the value.
	MatchPrefix MatchMode = "prefix"
	// MatchSearch accepts a match anywhere in the value.
	MatchSearch MatchMode = "search"
)

// MatchSpec is the parameter record of match_test.
type MatchSpec struct {
	Pattern string
	Mode    MatchMode
}

func (s MatchSpec) Kind() string { return KindMatch }

func (s MatchSpec) Describe() string {
	if s.Mode == "" || s.Mode == MatchFull {
		return fmt.Sprintf("matches %s", s.Pattern)
	}
	return fmt.Sprintf("matches %s (%s)", s.Pattern, s.Mode)
}

// Build compiles the pattern. An invalid pattern or mode is an error.
func (s MatchSpec) Build(_ string) (Test, error) {
	var anchored string
	switch s.Mode {
	case "", MatchFull:
		anchored = `\A(?:` + s.Pattern + `)\z`
	case MatchPrefix:
		anchored = `\A(?:` + s.Pattern + `)`
	case MatchSearch:
		anchored = s.Pattern
	default:
		return nil, fmt.Errorf("unknown match mode %q (want full, prefix or search)", s.Mode)
	}

	// Compile the bare pattern first so errors point at what the user wrote.
	if _, err := regexp.Compile(s.Pattern); err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", s.Pattern, err)
	}
	re, err := regexp.Compile(anchored)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", s.Pattern, err)
	}

	return Guard(Func(func(v dataset.Value) (values.Outcome, error) {
		return outcomeOf(re.MatchString(v.String())), nil
	})), nil
}

// MakeMatchTest returns a test that is Valid only when the whole string form of a
// cell matches pattern. The pattern is compiled immediately.
func MakeMatchTest(pattern, column string) (Test, error) {
	return MatchSpec{Pattern: pattern, Mode: MatchFull}.Build(column)
}

func parseMatch(p RawParams) (Spec, error) {
	if err := p.expect(2, "pattern", "mode"); err != nil {
		return nil, err
	}
	pattern, ok := p.lookup("pattern", 0)
	if !ok || pattern == "" {
		return nil, fmt.Errorf("pattern is required")
	}
	mode, _ := p.lookup("mode", 1)
	if mode == "" {
		mode = string(MatchFull)
	}
	return MatchSpec{Pattern: pattern, Mode: MatchMode(mode)}, nil
}
