package config

import (
	"fmt"
	"strings"

	"github.com/goccy/go-yaml/ast"
)

// ParamValue is one argument or parameter of a profile test: a scalar or a flat
// list of scalars. Scalars keep the spelling used in the profile, so `007`
// stays "007" and `True` stays "True".
type ParamValue struct {
	items []string
	list  bool
}

// ScalarParam returns a single valued parameter.
func ScalarParam(s string) ParamValue {
	return ParamValue{items: []string{s}}
}

// ListParam returns a list parameter.
func ListParam(items ...string) ParamValue {
	return ParamValue{items: items, list: true}
}

// IsList reports whether the parameter was written as a sequence.
func (p ParamValue) IsList() bool { return p.list }

// Items returns the list entries, or the scalar as a one element list.
func (p ParamValue) Items() []string {
	out := make([]string, len(p.items))
	copy(out, p.items)
	return out
}

func (p ParamValue) String() string {
	if p.list {
		return "[" + strings.Join(p.items, ", ") + "]"
	}
	if len(p.items) == 0 {
		return ""
	}
	return p.items[0]
}

// UnmarshalYAML reads the node source text instead of the decoded Go value.
func (p *ParamValue) UnmarshalYAML(node ast.Node) error {
	node = unwrapNode(node)
	if seq, ok := node.(*ast.SequenceNode); ok {
		items := make([]string, 0, len(seq.Values))
		for i, item := range seq.Values {
			s, err := scalarText(item)
			if err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
			items = append(items, s)
		}
		*p = ListParam(items...)
		return nil
	}
	s, err := scalarText(node)
	if err != nil {
		return err
	}
	*p = ScalarParam(s)
	return nil
}

// MarshalYAML writes scalars as strings so their spelling survives a round trip.
func (p ParamValue) MarshalYAML() (interface{}, error) {
	if p.list {
		return p.Items(), nil
	}
	return p.String(), nil
}

func unwrapNode(node ast.Node) ast.Node {
	for {
		switch n := node.(type) {
		case *ast.AnchorNode:
			node = n.Value
		case *ast.TagNode:
			node = n.Value
		default:
			return node
		}
	}
}

func scalarText(node ast.Node) (string, error) {
	switch n := unwrapNode(node).(type) {
	case *ast.StringNode:
		return n.Value, nil
	case *ast.LiteralNode:
		return n.Value.Value, nil
	case *ast.IntegerNode, *ast.FloatNode, *ast.BoolNode, *ast.InfinityNode, *ast.NanNode:
		return n.GetToken().Value, nil
	case *ast.NullNode:
		return "", nil
	case *ast.AliasNode:
		return "", fmt.Errorf("aliases are not supported in test parameters")
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected a scalar, got %s", n.Type())
	}
}
