package checks

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// RawParams are the loosely structured parameters of one rule, as written in a rules file.
// Lists holds named parameters written as sequences; their items are never split again.
type RawParams struct {
	Named      map[string]string
	Lists      map[string][]string
	Positional []string
}

// NewRawParams builds parameters from positional values.
func NewRawParams(positional ...string) RawParams {
	return RawParams{Positional: positional, Named: map[string]string{}}
}

// With returns a copy of p with a named parameter set.
func (p RawParams) With(key, value string) RawParams {
	out := p.clone()
	out.Named[key] = value
	delete(out.Lists, key)
	return out
}

// WithList returns a copy of p with a named list parameter set.
func (p RawParams) WithList(key string, items ...string) RawParams {
	out := p.clone()
	if out.Lists == nil {
		out.Lists = map[string][]string{}
	}
	out.Lists[key] = append([]string(nil), items...)
	delete(out.Named, key)
	return out
}

func (p RawParams) clone() RawParams {
	named := make(map[string]string, len(p.Named)+1)
	for k, v := range p.Named {
		named[k] = v
	}
	var lists map[string][]string
	if len(p.Lists) > 0 {
		lists = make(map[string][]string, len(p.Lists))
		for k, v := range p.Lists {
			lists[k] = v
		}
	}
	return RawParams{Positional: p.Positional, Named: named, Lists: lists}
}

// has reports whether a named parameter was given in either form.
func (p RawParams) has(name string) bool {
	if _, ok := p.Named[name]; ok {
		return true
	}
	_, ok := p.Lists[name]
	return ok
}

// lookup returns a named parameter, falling back to the positional slot at index (when index >= 0).
// A list given where a scalar is expected comes back joined, which the caller then rejects.
func (p RawParams) lookup(name string, index int) (string, bool) {
	if v, ok := p.Named[name]; ok {
		return v, true
	}
	if items, ok := p.Lists[name]; ok {
		if len(items) == 1 {
			return items[0], true
		}
		return "[" + strings.Join(items, ", ") + "]", true
	}
	if index >= 0 && index < len(p.Positional) {
		return p.Positional[index], true
	}
	return "", false
}

// list returns a named list parameter, a comma separated named parameter, or every positional value.
func (p RawParams) list(name string) []string {
	if items, ok := p.Lists[name]; ok {
		out := make([]string, 0, len(items))
		for _, item := range items {
			if item != "" {
				out = append(out, item)
			}
		}
		return out
	}
	if v, ok := p.Named[name]; ok {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, part := range parts {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	out := make([]string, len(p.Positional))
	copy(out, p.Positional)
	return out
}

func (p RawParams) boolean(name string, def bool) (bool, error) {
	v, ok := p.lookup(name, -1)
	if !ok {
		return def, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false, fmt.Errorf("parameter %s: %q is not a boolean", name, v)
	}
	return b, nil
}

func (p RawParams) float(name string, index int) (*float64, error) {
	v, ok := p.lookup(name, index)
	if !ok || strings.TrimSpace(v) == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return nil, fmt.Errorf("parameter %s: %q is not a number", name, v)
	}
	return &f, nil
}

// expect rejects unknown named parameters and surplus positional ones.
func (p RawParams) expect(maxPositional int, allowed ...string) error {
	if maxPositional >= 0 && len(p.Positional) > maxPositional {
		return fmt.Errorf("expected at most %d positional parameters, got %d", maxPositional, len(p.Positional))
	}
	known := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		known[a] = true
	}
	var unknown []string
	for k := range p.Named {
		if !known[k] {
			unknown = append(unknown, k)
		}
	}
	for k := range p.Lists {
		if !known[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unknown parameters: %s", strings.Join(unknown, ", "))
	}
	return nil
}
