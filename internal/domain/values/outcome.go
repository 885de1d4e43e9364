// Package values contains domain value objects that encapsulate
// primitive types with validation and such.
package values

import (
	"fmt"
)

// Outcome is the verdict of one test on one cell.
type Outcome string

const (
	// OutcomeValid indicates the cell passed the test
	OutcomeValid Outcome = "valid"
	// OutcomeInvalid indicates the cell failed the test (or the test errored on it)
	OutcomeInvalid Outcome = "invalid"
	// OutcomeNotApplicable indicates the cell was missing, so the test did not apply
	OutcomeNotApplicable Outcome = "not_applicable"
)

// Precedence returns the numeric precedence of this outcome.
// Higher values win when outcomes of several tests on the same cell are combined.
//
// Precedence: Invalid (2) > Valid (1) > NotApplicable (0)
func (o Outcome) Precedence() int {
	switch o {
	case OutcomeInvalid:
		return 2
	case OutcomeValid:
		return 1
	case OutcomeNotApplicable:
		return 0
	default:
		return -1
	}
}

// Code returns the heatmap code of the outcome: 1 valid, 0 invalid, -1 not applicable.
func (o Outcome) Code() int {
	switch o {
	case OutcomeValid:
		return 1
	case OutcomeInvalid:
		return 0
	default:
		return -1
	}
}

// IsValid returns true if this outcome represents a pass
func (o Outcome) IsValid() bool {
	return o == OutcomeValid
}

// IsInvalid returns true if this outcome represents a failure
func (o Outcome) IsInvalid() bool {
	return o == OutcomeInvalid
}

// IsNotApplicable returns true if the test did not apply
func (o Outcome) IsNotApplicable() bool {
	return o == OutcomeNotApplicable
}

// Validate returns an error if the outcome value is invalid
func (o Outcome) Validate() error {
	switch o {
	case OutcomeValid, OutcomeInvalid, OutcomeNotApplicable:
		return nil
	default:
		return fmt.Errorf("invalid outcome: %s", o)
	}
}

// Combine folds outcomes of several tests on the same cell into one verdict.
// An empty input is not applicable.
func Combine(outcomes ...Outcome) Outcome {
	verdict := OutcomeNotApplicable
	for _, o := range outcomes {
		if o.Precedence() > verdict.Precedence() {
			verdict = o
		}
	}
	return verdict
}
