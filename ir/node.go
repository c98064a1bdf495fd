// Package ir provides the intermediate representation for configuration
// items: a recursive tagged union of null, bool, number, string, array and
// object values. Objects keep their fields in insertion order, so a tree
// round-trips through processing without reshuffling keys.
package ir

import (
	"fmt"
	"maps"
	"slices"

	"github.com/goccy/go-yaml"
)

type Node struct {
	Type Type

	// Fields names Values for ObjectType; len(Fields) == len(Values).
	Fields []string
	// Values holds children for ObjectType and ArrayType.
	Values []*Node

	String  string
	Bool    bool
	Int64   *int64
	Float64 *float64
}

func FromString(v string) *Node {
	return &Node{Type: StringType, String: v}
}

func FromInt(v int64) *Node {
	return &Node{Type: NumberType, Int64: &v}
}

func FromFloat(f float64) *Node {
	return &Node{Type: NumberType, Float64: &f}
}

func FromBool(v bool) *Node {
	return &Node{Type: BoolType, Bool: v}
}

func Null() *Node {
	return &Node{Type: NullType}
}

func Object() *Node {
	return &Node{Type: ObjectType}
}

func FromSlice(vs []*Node) *Node {
	return &Node{Type: ArrayType, Values: vs}
}

// FromMap builds an object with fields in sorted key order. Use Object
// followed by Set when insertion order matters.
func FromMap(m map[string]*Node) *Node {
	res := Object()
	for _, key := range slices.Sorted(maps.Keys(m)) {
		res.Set(key, m[key])
	}
	return res
}

func ToMap(n *Node) map[string]*Node {
	if n.Type != ObjectType {
		return nil
	}
	res := make(map[string]*Node, len(n.Fields))
	for i, f := range n.Fields {
		res[f] = n.Values[i]
	}
	return res
}

// Get returns the value of field, or nil if n is not an object or the
// field is absent.
func (n *Node) Get(field string) *Node {
	for i := range n.Fields {
		if n.Fields[i] == field {
			return n.Values[i]
		}
	}
	return nil
}

// Set replaces the value of field in place, appending the field if absent,
// and returns n.
func (n *Node) Set(field string, v *Node) *Node {
	n.Type = ObjectType
	for i := range n.Fields {
		if n.Fields[i] == field {
			n.Values[i] = v
			return n
		}
	}
	n.Fields = append(n.Fields, field)
	n.Values = append(n.Values, v)
	return n
}

// Pop removes field from n and returns its value, or nil if absent.
func (n *Node) Pop(field string) *Node {
	for i := range n.Fields {
		if n.Fields[i] == field {
			v := n.Values[i]
			n.Fields = append(n.Fields[:i], n.Fields[i+1:]...)
			n.Values = append(n.Values[:i], n.Values[i+1:]...)
			return v
		}
	}
	return nil
}

func (n *Node) Has(field string) bool {
	return slices.Contains(n.Fields, field)
}

func (n *Node) Clone() *Node {
	res := &Node{}
	return n.CloneTo(res)
}

func (n *Node) CloneTo(dst *Node) *Node {
	dst.Type = n.Type
	dst.String = n.String
	dst.Bool = n.Bool
	if n.Int64 != nil {
		i := *n.Int64
		dst.Int64 = &i
	}
	if n.Float64 != nil {
		f := *n.Float64
		dst.Float64 = &f
	}
	if n.Fields != nil {
		dst.Fields = slices.Clone(n.Fields)
	}
	if n.Values != nil {
		dst.Values = make([]*Node, len(n.Values))
		for i, v := range n.Values {
			dst.Values[i] = v.Clone()
		}
	}
	return dst
}

// Strings reports whether n is a non-empty array of strings, returning
// the string values when it is.
func (n *Node) Strings() ([]string, bool) {
	if n == nil || n.Type != ArrayType || len(n.Values) == 0 {
		return nil, false
	}
	res := make([]string, len(n.Values))
	for i, v := range n.Values {
		if v.Type != StringType {
			return nil, false
		}
		res[i] = v.String
	}
	return res, true
}

// FromGo converts a generic Go value, as produced by goccy/go-yaml
// unmarshalling into any, to a node. Mapping order is preserved when the
// value uses yaml.MapSlice (yaml.UseOrderedMap); plain map[string]any
// falls back to sorted keys.
func FromGo(v any) (*Node, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case bool:
		return FromBool(x), nil
	case int:
		return FromInt(int64(x)), nil
	case int64:
		return FromInt(x), nil
	case uint64:
		if x > 1<<63-1 {
			return nil, fmt.Errorf("integer %d overflows int64", x)
		}
		return FromInt(int64(x)), nil
	case float64:
		return FromFloat(x), nil
	case string:
		return FromString(x), nil
	case []any:
		vs := make([]*Node, len(x))
		for i := range x {
			vv, err := FromGo(x[i])
			if err != nil {
				return nil, err
			}
			vs[i] = vv
		}
		return FromSlice(vs), nil
	case yaml.MapSlice:
		res := Object()
		for _, item := range x {
			key, ok := item.Key.(string)
			if !ok {
				return nil, fmt.Errorf("non-string mapping key %v (%T)", item.Key, item.Key)
			}
			vv, err := FromGo(item.Value)
			if err != nil {
				return nil, err
			}
			res.Set(key, vv)
		}
		return res, nil
	case map[string]any:
		res := Object()
		for _, key := range slices.Sorted(maps.Keys(x)) {
			vv, err := FromGo(x[key])
			if err != nil {
				return nil, err
			}
			res.Set(key, vv)
		}
		return res, nil
	default:
		return nil, fmt.Errorf("unsupported value %v (%T)", v, v)
	}
}

// ToGo converts a node back to a generic Go value. Objects become
// yaml.MapSlice so field order survives encoding.
func (n *Node) ToGo() any {
	switch n.Type {
	case NullType:
		return nil
	case BoolType:
		return n.Bool
	case NumberType:
		if n.Int64 != nil {
			return *n.Int64
		}
		if n.Float64 != nil {
			return *n.Float64
		}
		return int64(0)
	case StringType:
		return n.String
	case ArrayType:
		res := make([]any, len(n.Values))
		for i, v := range n.Values {
			res[i] = v.ToGo()
		}
		return res
	case ObjectType:
		res := make(yaml.MapSlice, len(n.Fields))
		for i := range n.Fields {
			res[i] = yaml.MapItem{Key: n.Fields[i], Value: n.Values[i].ToGo()}
		}
		return res
	}
	return nil
}
