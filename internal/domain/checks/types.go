package checks

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dftest-dev/dftest/internal/domain/dataset"
	"github.com/dftest-dev/dftest/internal/domain/values"
)

// TypeName is a loose cell type accepted by type_test.
type TypeName string

const (
	TypeInt   TypeName = "int"
	TypeFloat TypeName = "float"
	TypeStr   TypeName = "str"
	TypeBool  TypeName = "bool"
)

// TypeSpec is the parameter record of type_test. A cell is Valid when it is any of Types.
type TypeSpec struct {
	Types []TypeName
}

func (s TypeSpec) Kind() string { return KindType }

func (s TypeSpec) Describe() string {
	names := make([]string, len(s.Types))
	for i, t := range s.Types {
		names[i] = string(t)
	}
	return "type " + strings.Join(names, "|")
}

func (s TypeSpec) Build(_ string) (Test, error) {
	if len(s.Types) == 0 {
		return nil, fmt.Errorf("at least one type is required")
	}
	for _, t := range s.Types {
		switch t {
		case TypeInt, TypeFloat, TypeStr, TypeBool:
		default:
			return nil, fmt.Errorf("unknown type %q (want int, float, str or bool)", t)
		}
	}
	types := append([]TypeName(nil), s.Types...)

	return Guard(Func(func(v dataset.Value) (values.Outcome, error) {
		for _, t := range types {
			if isType(v, t) {
				return values.OutcomeValid, nil
			}
		}
		return values.OutcomeInvalid, nil
	})), nil
}

// MakeTypeTest returns a test accepting cells of any of the given types.
func MakeTypeTest(column string, types ...TypeName) (Test, error) {
	return TypeSpec{Types: types}.Build(column)
}

func isType(v dataset.Value, t TypeName) bool {
	switch t {
	case TypeInt:
		return isInt(v)
	case TypeFloat:
		return isFloat(v)
	case TypeBool:
		return isBool(v)
	case TypeStr:
		return !isFloat(v) && !isBool(v)
	}
	return false
}

func isInt(v dataset.Value) bool {
	switch raw := v.Raw.(type) {
	case int64, int:
		return true
	case float64:
		return raw == math.Trunc(raw) && !math.IsInf(raw, 0)
	case string:
		_, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		return err == nil
	}
	return false
}

func isFloat(v dataset.Value) bool {
	switch raw := v.Raw.(type) {
	case int64, int, float32:
		return true
	case float64:
		return !math.IsNaN(raw)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		return err == nil && !math.IsNaN(f)
	}
	return false
}

func isBool(v dataset.Value) bool {
	switch raw := v.Raw.(type) {
	case bool:
		return true
	case string:
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "true", "false", "yes", "no":
			return true
		}
	}
	return false
}

func parseType(p RawParams) (Spec, error) {
	if err := p.expect(-1, "types"); err != nil {
		return nil, err
	}
	raw := p.list("types")
	if len(raw) == 0 {
		return nil, fmt.Errorf("at least one type is required")
	}
	spec := TypeSpec{Types: make([]TypeName, len(raw))}
	for i, r := range raw {
		spec.Types[i] = TypeName(strings.ToLower(r))
	}
	if _, err := spec.Build(""); err != nil {
		return nil, err
	}
	return spec, nil
}
