package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Outcome_Precedence(t *testing.T) {
	tests := []struct {
		outcome    Outcome
		precedence int
	}{
		{OutcomeInvalid, 2},
		{OutcomeValid, 1},
		{OutcomeNotApplicable, 0},
		{Outcome("unknown"), -1},
	}

	for _, tt := range tests {
		t.Run(string(tt.outcome), func(t *testing.T) {
			assert.Equal(t, tt.precedence, tt.outcome.Precedence())
		})
	}
}

func Test_Outcome_Code(t *testing.T) {
	assert.Equal(t, 1, OutcomeValid.Code())
	assert.Equal(t, 0, OutcomeInvalid.Code())
	assert.Equal(t, -1, OutcomeNotApplicable.Code())
}

func Test_Outcome_Predicates(t *testing.T) {
	assert.True(t, OutcomeValid.IsValid())
	assert.False(t, OutcomeInvalid.IsValid())
	assert.True(t, OutcomeInvalid.IsInvalid())
	assert.False(t, OutcomeNotApplicable.IsInvalid())
	assert.True(t, OutcomeNotApplicable.IsNotApplicable())
	assert.False(t, OutcomeValid.IsNotApplicable())
}

func Test_Outcome_Validate(t *testing.T) {
	for _, o := range []Outcome{OutcomeValid, OutcomeInvalid, OutcomeNotApplicable} {
		t.Run(string(o), func(t *testing.T) {
			assert.NoError(t, o.Validate())
		})
	}

	err := Outcome("maybe").Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid outcome")
}

func Test_Combine(t *testing.T) {
	tests := []struct {
		name     string
		outcomes []Outcome
		expected Outcome
	}{
		{"empty", nil, OutcomeNotApplicable},
		{"all not applicable", []Outcome{OutcomeNotApplicable, OutcomeNotApplicable}, OutcomeNotApplicable},
		{"all valid", []Outcome{OutcomeValid, OutcomeValid}, OutcomeValid},
		{"valid and not applicable", []Outcome{OutcomeNotApplicable, OutcomeValid}, OutcomeValid},
		{"any invalid wins", []Outcome{OutcomeValid, OutcomeInvalid, OutcomeNotApplicable}, OutcomeInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Combine(tt.outcomes...))
		})
	}
}

func Test_RunID(t *testing.T) {
	id1 := NewRunID()
	id2 := NewRunID()

	assert.False(t, id1.IsZero())
	assert.False(t, id1.Equals(id2), "two new IDs should be different")

	text, err := id1.MarshalText()
	require.NoError(t, err)

	var parsed RunID
	require.NoError(t, parsed.UnmarshalText(text))
	assert.True(t, parsed.Equals(id1))

	_, err = ParseRunID("not-a-uuid")
	assert.Error(t, err)
}

func Test_IntegrityLevels_Colorcode(t *testing.T) {
	levels := DefaultIntegrityLevels()

	tests := []struct {
		rate     float64
		expected string
	}{
		{0, "red"},
		{0.1, "red"},
		{0.25, "orange"},
		{0.6, "yellow"},
		{0.99, "blue"},
		{1, "green"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, levels.Colorcode(tt.rate), "rate %v", tt.rate)
	}
}

func Test_IntegrityLevels_ColorcodeBelowAllBands(t *testing.T) {
	levels := IntegrityLevels{{Color: "amber", Threshold: 0.5}, {Color: "green", Threshold: 0.9}}
	assert.Equal(t, ColorGrey, levels.Colorcode(0.2))
	assert.Equal(t, ColorGrey, IntegrityLevels{}.Colorcode(1))
}

func Test_IntegrityLevels_Validate(t *testing.T) {
	assert.NoError(t, DefaultIntegrityLevels().Validate())

	err := IntegrityLevels{{Color: "red", Threshold: 0.5}, {Color: "green", Threshold: 0.2}}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must increase")

	err = IntegrityLevels{{Color: "red", Threshold: 2}}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")

	err = IntegrityLevels{{Threshold: 0}}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "color is required")
}
