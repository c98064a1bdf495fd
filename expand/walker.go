package expand

import (
	"fmt"
	"io"

	"github.com/unfurl-format/unfurl/debug"
	"github.com/unfurl-format/unfurl/ir"
	"github.com/unfurl-format/unfurl/merge"
	"github.com/unfurl-format/unfurl/pipeline"
)

// frame is one pending node together with the scope it inherits. Scopes
// are cloned at every branch point (sequence element, stem descent), so a
// frame owns its scope exclusively and may merge into it in place. The
// root frame carries the expander's persistent scope on purpose: top-level
// variables accumulate across the items of a run.
type frame struct {
	node  *ir.Node
	scope *ir.Node
}

// walker is the lazy, non-restartable stream of leaf records for one item.
// It runs an explicit stack instead of recursing, so tree depth does not
// depend on the host call stack. Emission order is depth-first,
// left-to-right.
type walker struct {
	e     *Expander
	stack []frame
}

func (w *walker) Next() (*ir.Node, error) {
	for len(w.stack) > 0 {
		f := w.stack[len(w.stack)-1]
		w.stack = w.stack[:len(w.stack)-1]
		node, scope := f.node, f.scope

		if node.Type == ir.StringType {
			node = ir.Object().Set(w.e.keys.Leaf,
				ir.Object().Set(w.e.keys.LeafDefault, ir.FromString(node.String)))
		}
		if node.Type == ir.ArrayType {
			w.pushAll(node.Values, scope)
			continue
		}
		if node.Type != ir.ObjectType {
			return nil, fmt.Errorf("%w: unsupported value %s (%v)",
				pipeline.ErrConfigFormat, nodeJSON(node), node.Type)
		}

		canon, err := w.e.normalize(node)
		if err != nil {
			return nil, err
		}
		if canon.Has(w.e.keys.Stem) && canon.Has(w.e.keys.Leaf) {
			return nil, fmt.Errorf("%w: mapping has both stem key %q and leaf key %q: %s",
				pipeline.ErrConfigFormat, w.e.keys.Stem, w.e.keys.Leaf, nodeJSON(canon))
		}

		stem := canon.Pop(w.e.keys.Stem)
		if _, err := merge.Nodes(scope, canon, true); err != nil {
			return nil, err
		}

		if stem == nil {
			if scope.Has(w.e.keys.Leaf) {
				rec := scope.Clone()
				if debug.Expand() {
					debug.Logf("expand: leaf %s\n", nodeJSON(rec))
				}
				return rec, nil
			}
			// No stem, no leaf: the node contributed variables only.
			continue
		}
		if stem.Type != ir.ArrayType {
			return nil, fmt.Errorf("%w: stem key %q must hold a sequence, got %v",
				pipeline.ErrConfigFormat, w.e.keys.Stem, stem.Type)
		}
		w.pushAll(stem.Values, scope)
	}
	return nil, io.EOF
}

// pushAll stacks children in reverse so they pop left-to-right, each with
// an independent copy of the inherited scope.
func (w *walker) pushAll(children []*ir.Node, scope *ir.Node) {
	for i := len(children) - 1; i >= 0; i-- {
		w.stack = append(w.stack, frame{node: children[i], scope: scope.Clone()})
	}
}
