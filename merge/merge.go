// Package merge implements the recursive object merge used to overlay
// configuration scopes.
package merge

import (
	"fmt"

	"github.com/unfurl-format/unfurl/ir"
)

// Nodes merges override into base and returns the result. For every field
// of override: when both sides hold objects the merge recurses, otherwise
// the override value replaces the base value. With inPlace false, base is
// deep-copied first and neither argument is modified. With inPlace true,
// base is mutated and returned.
//
// Values taken from override are shared by reference, not copied; callers
// needing isolation clone before or after merging.
func Nodes(base, override *ir.Node, inPlace bool) (*ir.Node, error) {
	if base == nil || base.Type != ir.ObjectType {
		return nil, fmt.Errorf("merge base must be an object, got %v", typeOf(base))
	}
	if override == nil || override.Type != ir.ObjectType {
		return nil, fmt.Errorf("merge override must be an object, got %v", typeOf(override))
	}
	if !inPlace {
		base = base.Clone()
	}
	mergeInto(base, override)
	return base, nil
}

func mergeInto(base, override *ir.Node) {
	for i, key := range override.Fields {
		ov := override.Values[i]
		bv := base.Get(key)
		if bv != nil && bv.Type == ir.ObjectType && ov.Type == ir.ObjectType {
			mergeInto(bv, ov)
			continue
		}
		base.Set(key, ov)
	}
}

func typeOf(n *ir.Node) any {
	if n == nil {
		return "nil"
	}
	return n.Type
}
