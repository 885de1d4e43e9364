package main

import (
	"bytes"
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/dftest-dev/dftest/internal/domain/checks"
	"github.com/dftest-dev/dftest/internal/domain/dataset"
	"github.com/dftest-dev/dftest/internal/domain/rules"
	"github.com/dftest-dev/dftest/internal/domain/values"
	"github.com/dftest-dev/dftest/internal/infrastructure/config"
)

// defaultMaxListValues caps the distinct values an in_list_test is generated for.
const defaultMaxListValues = 20

// ColumnChoice is the test picked for one column.
type ColumnChoice struct {
	Column string
	Kind   string
	// Argument is the pattern, sentinel or expression of match, not_equal and expr tests.
	Argument string
}

// ProfileGenerator builds a starter YAML profile from a dataset.
type ProfileGenerator struct {
	name          string
	source        string
	maxListValues int
}

// NewProfileGenerator creates a generator for the dataset at source.
func NewProfileGenerator(source string) *ProfileGenerator {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	return &ProfileGenerator{
		name:          base + "-profile",
		source:        source,
		maxListValues: defaultMaxListValues,
	}
}

// Suggest proposes a kind for column: a closed set of few values becomes in_list_test,
// anything else a type_test.
func (g *ProfileGenerator) Suggest(ds dataset.Dataset, column string) string {
	cells, err := ds.Column(column)
	if err != nil {
		return checks.KindType
	}
	distinct := distinctValues(cells)
	present := 0
	for _, v := range cells {
		if !v.IsMissing() {
			present++
		}
	}
	if len(distinct) > 0 && len(distinct) <= g.maxListValues && len(distinct)*2 <= present {
		return checks.KindInList
	}
	return checks.KindType
}

// NeedsArgument reports whether kind cannot be inferred from the data alone.
func NeedsArgument(kind string) bool {
	switch kind {
	case checks.KindMatch, checks.KindNotEqual, checks.KindExpr:
		return true
	}
	return false
}

// Generate builds the profile document for choices, in the order given.
func (g *ProfileGenerator) Generate(ds dataset.Dataset, choices []ColumnChoice) (*config.ProfileDocument, error) {
	doc := &config.ProfileDocument{
		Profile: config.ProfileMetadata{
			Name:        g.name,
			Version:     "0.1.0",
			Description: fmt.Sprintf("Generated from %s", filepath.Base(g.source)),
		},
		Defaults: config.ProfileDefaults{IntegrityLevels: values.DefaultIntegrityLevels()},
	}

	index := make(map[string]int)
	for _, choice := range choices {
		cells, err := ds.Column(choice.Column)
		if err != nil {
			return nil, err
		}
		test, err := g.buildTest(choice, cells)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", choice.Column, err)
		}

		i, ok := index[choice.Column]
		if !ok {
			i = len(doc.Columns)
			index[choice.Column] = i
			doc.Columns = append(doc.Columns, config.ColumnDocument{Name: choice.Column})
		}
		doc.Columns[i].Tests = append(doc.Columns[i].Tests, test)
	}
	return doc, nil
}

func (g *ProfileGenerator) buildTest(choice ColumnChoice, cells []dataset.Value) (config.TestDocument, error) {
	test := config.TestDocument{Kind: choice.Kind}

	switch choice.Kind {
	case checks.KindType:
		types := inferTypes(choice.Column, cells)
		for _, t := range types {
			test.Args = append(test.Args, config.ScalarParam(string(t)))
		}

	case checks.KindInList:
		distinct := distinctValues(cells)
		if len(distinct) == 0 {
			return test, fmt.Errorf("no values to list")
		}
		if len(distinct) > g.maxListValues {
			return test, fmt.Errorf("%d distinct values (at most %d can be listed)", len(distinct), g.maxListValues)
		}
		for _, v := range distinct {
			test.Args = append(test.Args, config.ScalarParam(v))
		}

	case checks.KindInRange:
		lo, hi, ok := numericBounds(cells)
		if !ok {
			return test, fmt.Errorf("no numeric values to bound")
		}
		test.Params = map[string]config.ParamValue{
			"min":             config.ScalarParam(strconv.FormatFloat(lo, 'f', -1, 64)),
			"max":             config.ScalarParam(strconv.FormatFloat(hi, 'f', -1, 64)),
			"right_inclusive": config.ScalarParam("true"),
		}

	case checks.KindMatch, checks.KindNotEqual, checks.KindExpr:
		if strings.TrimSpace(choice.Argument) == "" {
			return test, fmt.Errorf("%s needs an argument", choice.Kind)
		}
		test.Args = []config.ParamValue{config.ScalarParam(choice.Argument)}

	default:
		return test, fmt.Errorf("%w: %s", checks.ErrUnknownKind, choice.Kind)
	}
	return test, nil
}

// Render encodes doc as YAML and checks that it loads back as a valid profile.
func (g *ProfileGenerator) Render(doc *config.ProfileDocument, registry *checks.Registry) ([]byte, error) {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode profile: %w", err)
	}
	loader := config.NewProfileLoader(registry, nil)
	if err := loader.Load(bytes.NewReader(data), g.name+".yaml", rules.NewConfig()); err != nil {
		return nil, fmt.Errorf("generated profile does not load: %w", err)
	}
	return data, nil
}

// inferTypes returns the narrowest type every present cell satisfies.
func inferTypes(column string, cells []dataset.Value) []checks.TypeName {
	for _, t := range []checks.TypeName{checks.TypeInt, checks.TypeFloat, checks.TypeBool} {
		if allOfType(column, cells, t) {
			return []checks.TypeName{t}
		}
	}
	return []checks.TypeName{checks.TypeStr}
}

func allOfType(column string, cells []dataset.Value, t checks.TypeName) bool {
	test, err := checks.MakeTypeTest(column, t)
	if err != nil {
		return false
	}
	seen := false
	for _, v := range cells {
		outcome, err := test.Evaluate(v)
		if err != nil || outcome == values.OutcomeInvalid {
			return false
		}
		if outcome == values.OutcomeValid {
			seen = true
		}
	}
	return seen
}

// distinctValues returns the sorted string forms of the present cells.
func distinctValues(cells []dataset.Value) []string {
	set := make(map[string]struct{})
	for _, v := range cells {
		if v.IsMissing() {
			continue
		}
		set[v.String()] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func numericBounds(cells []dataset.Value) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range cells {
		f, numeric := v.Float()
		if !numeric || math.IsInf(f, 0) {
			continue
		}
		lo = math.Min(lo, f)
		hi = math.Max(hi, f)
		ok = true
	}
	return lo, hi, ok
}
