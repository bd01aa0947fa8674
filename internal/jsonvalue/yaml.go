package jsonvalue

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ParseYAML decodes a single YAML document into a Value. Mapping order is
// preserved. Only the JSON-compatible subset of YAML is accepted: mapping
// keys must be scalars and anchors are resolved.
func ParseYAML(data []byte) (Value, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Value{}, &ParseError{Err: ErrEmptyInput}
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Value{}, &ParseError{Err: err}
	}

	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return Value{}, &ParseError{Err: ErrEmptyInput}
	}

	d := &nodeDecoder{budget: 10*len(data) + 10000}

	v, err := d.decode(doc.Content[0], 0)
	if err != nil {
		return Value{}, &ParseError{Err: err}
	}

	return v, nil
}

// errAliasExpansion rejects documents whose aliases expand far beyond the
// size of the input.
var errAliasExpansion = errors.New("document expands too far through aliases")

// nodeDecoder converts a yaml.Node tree. budget bounds the number of nodes
// visited, counting every expansion of an alias.
type nodeDecoder struct {
	budget int
}

func (d *nodeDecoder) decode(n *yaml.Node, depth int) (Value, error) {
	d.budget--
	if d.budget < 0 {
		return Value{}, errAliasExpansion
	}

	switch n.Kind {
	case yaml.AliasNode:
		return d.decode(n.Alias, depth)
	case yaml.SequenceNode:
		if depth >= MaxDepth {
			return Value{}, ErrTooDeep
		}

		elems := make([]Value, 0, len(n.Content))

		for _, c := range n.Content {
			v, err := d.decode(c, depth+1)
			if err != nil {
				return Value{}, err
			}

			elems = append(elems, v)
		}

		return Value{kind: KindArray, arr: elems}, nil
	case yaml.MappingNode:
		if depth >= MaxDepth {
			return Value{}, ErrTooDeep
		}

		o := &object{index: make(map[string]int, len(n.Content)/2)}

		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if k.Kind != yaml.ScalarNode {
				return Value{}, fmt.Errorf("line %d: mapping key must be a scalar", k.Line)
			}

			v, err := d.decode(n.Content[i+1], depth+1)
			if err != nil {
				return Value{}, err
			}

			o.set(k.Value, v)
		}

		return Value{kind: KindObject, obj: o}, nil
	case yaml.ScalarNode:
		return fromScalar(n)
	}

	return Value{}, fmt.Errorf("line %d: unsupported YAML node", n.Line)
}

func fromScalar(n *yaml.Node) (Value, error) {
	switch n.Tag {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return Value{}, err
		}

		return Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return Value{}, err
		}

		return Int(i), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return Value{}, err
		}

		if math.IsInf(f, 0) || math.IsNaN(f) {
			return Value{}, fmt.Errorf("line %d: non-finite number has no JSON form", n.Line)
		}

		return Number(strconv.FormatFloat(f, 'g', -1, 64))
	default:
		return String(n.Value), nil
	}
}

// MarshalYAML implements yaml.Marshaler. Object keys keep insertion order
// and numbers keep their literal. Strings are always double-quoted so that
// values like "yes" or "1" read back as strings.
func (v Value) MarshalYAML() (any, error) {
	return toNode(v), nil
}

func toNode(v Value) *yaml.Node {
	switch v.kind {
	case KindBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v.b)}
	case KindNumber:
		return &yaml.Node{Kind: yaml.ScalarNode, Value: v.lit}
	case KindString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.lit, Style: yaml.DoubleQuotedStyle}
	case KindArray:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range v.arr {
			n.Content = append(n.Content, toNode(e))
		}

		return n
	case KindObject:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for i, k := range v.obj.keys {
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				toNode(v.obj.vals[i]))
		}

		return n
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}
