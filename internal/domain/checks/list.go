package checks

import (
	"fmt"
	"strings"

	"github.com/dftest-dev/dftest/internal/domain/dataset"
	"github.com/dftest-dev/dftest/internal/domain/values"
)

// ListSpec is the parameter record of in_list_test.
type ListSpec struct {
	Values []string
}

func (s ListSpec) Kind() string { return KindInList }

func (s ListSpec) Describe() string {
	return fmt.Sprintf("one of [%s]", strings.Join(s.Values, ", "))
}

func (s ListSpec) Build(_ string) (Test, error) {
	if len(s.Values) == 0 {
		return nil, fmt.Errorf("at least one value is required")
	}
	allowed := make(map[string]struct{}, len(s.Values))
	for _, v := range s.Values {
		allowed[v] = struct{}{}
	}
	return Guard(Func(func(v dataset.Value) (values.Outcome, error) {
		_, ok := allowed[v.String()]
		return outcomeOf(ok), nil
	})), nil
}

// MakeListTest returns a test accepting only the given values.
func MakeListTest(column string, allowed ...string) (Test, error) {
	return ListSpec{Values: allowed}.Build(column)
}

func parseList(p RawParams) (Spec, error) {
	if err := p.expect(-1, "values"); err != nil {
		return nil, err
	}
	if p.has("values") && len(p.Positional) > 0 {
		return nil, fmt.Errorf("values given both positionally and by name")
	}
	spec := ListSpec{Values: p.list("values")}
	if len(spec.Values) == 0 {
		return nil, fmt.Errorf("at least one value is required")
	}
	return spec, nil
}

// NotEqualSpec is the parameter record of not_equal_test.
type NotEqualSpec struct {
	Value string
}

func (s NotEqualSpec) Kind() string { return KindNotEqual }

func (s NotEqualSpec) Describe() string {
	return fmt.Sprintf("not %q", s.Value)
}

func (s NotEqualSpec) Build(_ string) (Test, error) {
	return Guard(Func(func(v dataset.Value) (values.Outcome, error) {
		return outcomeOf(v.String() != s.Value), nil
	})), nil
}

// MakeNotEqualTest returns a test rejecting one sentinel value.
func MakeNotEqualTest(value, column string) (Test, error) {
	return NotEqualSpec{Value: value}.Build(column)
}

func parseNotEqual(p RawParams) (Spec, error) {
	if err := p.expect(1, "value"); err != nil {
		return nil, err
	}
	value, ok := p.lookup("value", 0)
	if !ok {
		return nil, fmt.Errorf("value is required")
	}
	return NotEqualSpec{Value: value}, nil
}
