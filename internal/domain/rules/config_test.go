package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dftest-dev/dftest/internal/domain/checks"
	"github.com/dftest-dev/dftest/internal/domain/values"
)

func matchBinding(t *testing.T, column, pattern string) Binding {
	t.Helper()
	spec := checks.MatchSpec{Pattern: pattern}
	test, err := spec.Build(column)
	require.NoError(t, err)
	return Binding{Spec: spec, Test: test, Kind: spec.Kind(), Column: column}
}

func TestConfig_AddKeepsColumnOrder(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, cfg.Add(matchBinding(t, "Object Number", "[0-9.]+")))
	require.NoError(t, cfg.Add(matchBinding(t, "AccessionYear", "[0-9]{4}")))
	require.NoError(t, cfg.Add(matchBinding(t, "Object Number", ".+")))

	assert.Equal(t, []string{"Object Number", "AccessionYear"}, cfg.Columns())
	assert.Equal(t, 3, cfg.Len())

	col, ok := cfg.Column("Object Number")
	require.True(t, ok)
	require.Len(t, col.Bindings, 2)
	assert.Equal(t, "match_test: matches [0-9.]+", col.Bindings[0].Name)

	all := cfg.Bindings()
	require.Len(t, all, 3)
	assert.Equal(t, "Object Number", all[0].Column)
	assert.Equal(t, "Object Number", all[1].Column)
	assert.Equal(t, "AccessionYear", all[2].Column)
}

func TestConfig_AddRejectsIncompleteBindings(t *testing.T) {
	cfg := NewConfig()
	assert.Error(t, cfg.Add(Binding{Name: "x"}))
	assert.Error(t, cfg.Add(Binding{Column: "c"}))
	assert.Equal(t, 0, cfg.Len())
}

func TestConfig_ExplicitNameIsKept(t *testing.T) {
	cfg := NewConfig()
	b := matchBinding(t, "Title", ".+")
	b.Name = "Title present"
	require.NoError(t, cfg.Add(b))

	col, _ := cfg.Column("Title")
	assert.Equal(t, "Title present", col.Bindings[0].Name)
}

func TestConfig_IntegrityLevels(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, cfg.Add(matchBinding(t, "Title", ".+")))

	assert.Equal(t, values.DefaultIntegrityLevels(), cfg.LevelsFor("Title"))

	custom := values.IntegrityLevels{{Color: "red", Threshold: 0}, {Color: "green", Threshold: 0.9}}
	require.NoError(t, cfg.SetIntegrityLevels("Title", custom))
	assert.Equal(t, custom, cfg.LevelsFor("Title"))
	assert.Equal(t, "green", cfg.LevelsFor("Title").Colorcode(0.95))

	err := cfg.SetIntegrityLevels("Title", values.IntegrityLevels{{Color: "red", Threshold: 5}})
	assert.Error(t, err)
}

func TestConfig_LevelsOnlyColumnIsNotConfigured(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, cfg.SetIntegrityLevels("Notes", values.DefaultIntegrityLevels()))

	assert.Empty(t, cfg.Columns())
	_, ok := cfg.Column("Notes")
	assert.False(t, ok)
}
