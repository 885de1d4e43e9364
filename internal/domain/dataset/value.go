// Package dataset provides the read-only tabular data model validated by the engine.
// These are pure domain types with NO infrastructure dependencies.
package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is a single cell. Raw holds a string, bool, int64 or float64; Null marks an absent cell.
type Value struct {
	Raw  any
	Null bool
}

// NullValue returns an absent cell.
func NullValue() Value {
	return Value{Null: true}
}

// StringValue wraps a string cell.
func StringValue(s string) Value {
	return Value{Raw: s}
}

// Of wraps an arbitrary raw value; nil becomes a null cell.
func Of(raw any) Value {
	if raw == nil {
		return NullValue()
	}
	return Value{Raw: raw}
}

// IsMissing reports whether the cell should be treated as absent: null,
// blank after trimming, or a floating point NaN.
func (v Value) IsMissing() bool {
	if v.Null || v.Raw == nil {
		return true
	}
	switch raw := v.Raw.(type) {
	case string:
		return strings.TrimSpace(raw) == ""
	case float64:
		return math.IsNaN(raw)
	case float32:
		return math.IsNaN(float64(raw))
	}
	return false
}

// String returns the string form the tests match against.
func (v Value) String() string {
	if v.Null || v.Raw == nil {
		return ""
	}
	switch raw := v.Raw.(type) {
	case string:
		return raw
	case float64:
		return strconv.FormatFloat(raw, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(raw), 'f', -1, 32)
	case int64:
		return strconv.FormatInt(raw, 10)
	case int:
		return strconv.Itoa(raw)
	case bool:
		return strconv.FormatBool(raw)
	default:
		return fmt.Sprintf("%v", raw)
	}
}

// Float returns the numeric form of the cell and whether it has one.
func (v Value) Float() (float64, bool) {
	if v.IsMissing() {
		return 0, false
	}
	switch raw := v.Raw.(type) {
	case float64:
		return raw, true
	case float32:
		return float64(raw), true
	case int64:
		return float64(raw), true
	case int:
		return float64(raw), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
