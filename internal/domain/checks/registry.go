package checks

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownKind is returned when a rule names a kind the registry does not know.
var ErrUnknownKind = errors.New("unknown test kind")

// Parser turns raw parameters into a validated Spec.
type Parser func(p RawParams) (Spec, error)

// KindInfo describes one registered test kind.
type KindInfo struct {
	Parse       Parser
	Name        string
	Usage       string
	Description string
	Aliases     []string
}

// Registry maps kind identifiers (and their aliases) to parameter parsers.
// It is safe for concurrent use.
type Registry struct {
	kinds   map[string]KindInfo
	aliases map[string]string
	mu      sync.RWMutex
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		kinds:   make(map[string]KindInfo),
		aliases: make(map[string]string),
	}
}

// DefaultRegistry returns a registry holding the built-in kinds.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, info := range builtinKinds() {
		if err := r.Register(info); err != nil {
			panic(err)
		}
	}
	return r
}

func builtinKinds() []KindInfo {
	return []KindInfo{
		{
			Name:        KindMatch,
			Aliases:     []string{"match"},
			Usage:       "match_test <column> <pattern> [mode=full|prefix|search]",
			Description: "value matches a regular expression (whole value by default)",
			Parse:       parseMatch,
		},
		{
			Name:        KindInRange,
			Aliases:     []string{"in_range"},
			Usage:       "in_range_test <column> [min=N] [max=N] [left_inclusive=true] [right_inclusive=false]",
			Description: "numeric value lies inside an interval",
			Parse:       parseRange,
		},
		{
			Name:        KindInList,
			Aliases:     []string{"in_list"},
			Usage:       "in_list_test <column> <value>... | values=a,b,c",
			Description: "value is one of a fixed set",
			Parse:       parseList,
		},
		{
			Name:        KindNotEqual,
			Aliases:     []string{"not_equal"},
			Usage:       "not_equal_test <column> <value>",
			Description: "value differs from a sentinel",
			Parse:       parseNotEqual,
		},
		{
			Name:        KindType,
			Aliases:     []string{"type"},
			Usage:       "type_test <column> <int|float|str|bool>... | types=int,float",
			Description: "value parses as one of the given types",
			Parse:       parseType,
		},
		{
			Name:        KindExpr,
			Aliases:     []string{"expr"},
			Usage:       "expr_test <column> '<expression>'",
			Description: "boolean expression over value, number, is_number, column and the row map",
			Parse:       parseExpr,
		},
	}
}

// Register adds a kind. Names and aliases must be unique across the registry.
func (r *Registry) Register(info KindInfo) error {
	if info.Name == "" {
		return fmt.Errorf("kind name is required")
	}
	if info.Parse == nil {
		return fmt.Errorf("kind %s: parser is required", info.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	names := append([]string{info.Name}, info.Aliases...)
	for _, n := range names {
		if _, exists := r.kinds[n]; exists {
			return fmt.Errorf("kind %s is already registered", n)
		}
		if _, exists := r.aliases[n]; exists {
			return fmt.Errorf("kind %s is already registered as an alias", n)
		}
	}

	r.kinds[info.Name] = info
	for _, a := range info.Aliases {
		r.aliases[a] = info.Name
	}
	return nil
}

// Lookup resolves a kind name or alias.
func (r *Registry) Lookup(kind string) (KindInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if canonical, ok := r.aliases[kind]; ok {
		kind = canonical
	}
	info, ok := r.kinds[kind]
	return info, ok
}

// Kinds returns every registered kind sorted by name.
func (r *Registry) Kinds() []KindInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]KindInfo, 0, len(r.kinds))
	for _, info := range r.kinds {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Parse resolves kind and parses its parameters.
func (r *Registry) Parse(kind string, p RawParams) (Spec, error) {
	info, ok := r.Lookup(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	if p.Named == nil {
		p.Named = map[string]string{}
	}
	spec, err := info.Parse(p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", info.Name, err)
	}
	return spec, nil
}

// Build parses the parameters of kind and binds the resulting test to column.
func (r *Registry) Build(kind, column string, p RawParams) (Spec, Test, error) {
	spec, err := r.Parse(kind, p)
	if err != nil {
		return nil, nil, err
	}
	test, err := spec.Build(column)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", spec.Kind(), err)
	}
	return spec, test, nil
}
