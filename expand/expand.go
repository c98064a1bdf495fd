// Package expand turns elastic, shorthand-tolerant configuration trees
// into flat, scope-resolved leaf records.
//
// A tree node is either a stem (its registered stem key holds a sequence
// of child nodes), a leaf (its registered leaf key holds the terminal
// payload), or a shorthand that normalizes to one of the two. Variables
// from the other registered keys accumulate along the path from the root;
// every leaf emits one record holding the fully merged scope.
package expand

import (
	"fmt"

	"github.com/unfurl-format/unfurl/ir"
	"github.com/unfurl-format/unfurl/merge"
	"github.com/unfurl-format/unfurl/pipeline"
)

// Keys configures the vocabulary of a tree: which key stems into child
// nodes, which key marks a leaf, where a bare string lands inside a leaf,
// and which other keys may carry variables. LeafKeyMap routes single-key
// shorthand mappings whose value holds no registered keys: the shorthand
// key is looked up exactly, then under "*".
type Keys struct {
	Stem        string
	Leaf        string
	LeafDefault string
	OtherValid  []string
	LeafKeyMap  map[string]string
}

// Expander is the pipeline processor implementing the expansion. The key
// registry is fixed at construction. The root scope persists across items
// within a run, so variables set by one top-level config are visible to
// later ones; use a fresh Expander (or Reset) per run.
type Expander struct {
	keys Keys
	all  map[string]bool

	vars *ir.Node
	item *ir.Node
}

func New(keys Keys) (*Expander, error) {
	if keys.Stem == "" || keys.Leaf == "" || keys.LeafDefault == "" {
		return nil, fmt.Errorf("%w: expand needs stem, leaf and leaf default keys", pipeline.ErrConfigFormat)
	}
	if keys.Stem == keys.Leaf {
		return nil, fmt.Errorf("%w: stem key and leaf key are both %q", pipeline.ErrConfigFormat, keys.Stem)
	}
	all := map[string]bool{keys.Stem: true, keys.Leaf: true}
	for _, k := range keys.OtherValid {
		all[k] = true
	}
	return &Expander{keys: keys, all: all, vars: ir.Object()}, nil
}

// Reset clears the scope accumulated across items, making the expander
// safe to reuse for another run.
func (e *Expander) Reset() {
	e.vars = ir.Object()
	e.item = nil
}

func (e *Expander) Name() string {
	return "expand"
}

func (e *Expander) SetItem(item *ir.Node, pc *pipeline.Context) {
	e.item = item
}

func (e *Expander) AdditionalItems() []*ir.Node {
	return nil
}

func (e *Expander) HandlesFinalPass() bool {
	return false
}

func (e *Expander) Process() (pipeline.Output, error) {
	if e.item == nil {
		return pipeline.Output{}, nil
	}
	return pipeline.FromStream(&walker{
		e:     e,
		stack: []frame{{node: e.item, scope: e.vars}},
	}), nil
}

// normalize rewrites a mapping node into canonical form. A mapping with at
// least one registered key must contain only registered keys. A mapping
// with no registered keys is a single-key shorthand: the key becomes the
// leaf's default field, and the value either merges in (all of its keys
// registered) or migrates under the LeafKeyMap destination (none of them
// registered). Mixed shorthand values are unsupported.
func (e *Expander) normalize(node *ir.Node) (*ir.Node, error) {
	known := false
	for _, f := range node.Fields {
		if e.all[f] {
			known = true
			break
		}
	}
	if known {
		for _, f := range node.Fields {
			if !e.all[f] {
				return nil, fmt.Errorf("%w: key %q not allowed amongst known keys in %s",
					pipeline.ErrConfigFormat, f, nodeJSON(node))
			}
		}
		return node, nil
	}

	if len(node.Fields) != 1 {
		return nil, fmt.Errorf("%w: no registered key in mapping with keys %v",
			pipeline.ErrConfigFormat, node.Fields)
	}
	key := node.Fields[0]
	val := node.Values[0]
	if val.Type != ir.ObjectType {
		return nil, fmt.Errorf("%w: shorthand value for %q must be a mapping, got %v",
			pipeline.ErrConfigFormat, key, val.Type)
	}
	res := ir.Object().Set(e.keys.Leaf, ir.Object().Set(e.keys.LeafDefault, ir.FromString(key)))
	registered, unregistered := 0, 0
	for _, f := range val.Fields {
		if e.all[f] {
			registered++
		} else {
			unregistered++
		}
	}
	switch {
	case unregistered == 0:
		if _, err := merge.Nodes(res, val, true); err != nil {
			return nil, err
		}
	case registered == 0:
		dst, ok := e.keys.LeafKeyMap[key]
		if !ok {
			dst, ok = e.keys.LeafKeyMap["*"]
		}
		if !ok {
			return nil, fmt.Errorf("%w: cannot find destination key for shortcut value %q",
				pipeline.ErrConfigFormat, key)
		}
		res.Set(dst, val)
	default:
		return nil, fmt.Errorf("%w: shorthand value for %q mixes registered and unregistered keys",
			pipeline.ErrConfigFormat, key)
	}
	return res, nil
}

func nodeJSON(n *ir.Node) string {
	d, err := n.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("%v", n)
	}
	return string(d)
}

var _ pipeline.Processor = (*Expander)(nil)
