package checks

import (
	"fmt"
	"strconv"

	"github.com/dftest-dev/dftest/internal/domain/dataset"
	"github.com/dftest-dev/dftest/internal/domain/values"
)

// RangeSpec is the parameter record of in_range_test.
// A nil bound is open on that side.
type RangeSpec struct {
	Min            *float64
	Max            *float64
	LeftInclusive  bool
	RightInclusive bool
}

func (s RangeSpec) Kind() string { return KindInRange }

func (s RangeSpec) Describe() string {
	left, right := "(", ")"
	if s.LeftInclusive {
		left = "["
	}
	if s.RightInclusive {
		right = "]"
	}
	return fmt.Sprintf("in %s%s, %s%s", left, bound(s.Min, "-inf"), bound(s.Max, "+inf"), right)
}

func bound(f *float64, open string) string {
	if f == nil {
		return open
	}
	return strconv.FormatFloat(*f, 'g', -1, 64)
}

// Build validates the interval. Non-numeric cells evaluate to Invalid.
func (s RangeSpec) Build(_ string) (Test, error) {
	if s.Min == nil && s.Max == nil {
		return nil, fmt.Errorf("at least one of min or max is required")
	}
	if s.Min != nil && s.Max != nil && *s.Min > *s.Max {
		return nil, fmt.Errorf("min %v is greater than max %v", *s.Min, *s.Max)
	}

	return Guard(Func(func(v dataset.Value) (values.Outcome, error) {
		f, ok := v.Float()
		if !ok {
			return values.OutcomeInvalid, nil
		}
		if s.Min != nil {
			if f < *s.Min || (!s.LeftInclusive && f == *s.Min) {
				return values.OutcomeInvalid, nil
			}
		}
		if s.Max != nil {
			if f > *s.Max || (!s.RightInclusive && f == *s.Max) {
				return values.OutcomeInvalid, nil
			}
		}
		return values.OutcomeValid, nil
	})), nil
}

// MakeRangeTest returns a test accepting numbers in [lo, hi).
func MakeRangeTest(lo, hi float64, column string) (Test, error) {
	return RangeSpec{Min: &lo, Max: &hi, LeftInclusive: true}.Build(column)
}

func parseRange(p RawParams) (Spec, error) {
	if err := p.expect(2, "min", "max", "left_inclusive", "right_inclusive"); err != nil {
		return nil, err
	}
	lo, err := p.float("min", 0)
	if err != nil {
		return nil, err
	}
	hi, err := p.float("max", 1)
	if err != nil {
		return nil, err
	}
	left, err := p.boolean("left_inclusive", true)
	if err != nil {
		return nil, err
	}
	right, err := p.boolean("right_inclusive", false)
	if err != nil {
		return nil, err
	}
	spec := RangeSpec{Min: lo, Max: hi, LeftInclusive: left, RightInclusive: right}
	if _, err := spec.Build(""); err != nil {
		return nil, err
	}
	return spec, nil
}
