package expand

import (
	"fmt"

	"github.com/unfurl-format/unfurl/ir"
	"github.com/unfurl-format/unfurl/pipeline"
)

// Parameter names accepted by ParseKeys, as they appear in bootstrap
// configurations.
const (
	StemKeyParam        = "stem_key"
	LeafKeyParam        = "default_leaf_key"
	LeafDefaultParam    = "default_leaf_default_key"
	OtherValidKeysParam = "other_valid_keys"
	LeafKeyMapParam     = "default_leaf_key_map"
)

// ParseKeys reads a Keys registry from a parameter mapping. The
// default_leaf_key_map entry may be a bare string, shorthand for a
// wildcard mapping {"*": value}.
func ParseKeys(params *ir.Node) (Keys, error) {
	var keys Keys
	if params == nil || params.Type != ir.ObjectType {
		return keys, fmt.Errorf("%w: expand parameters must be a mapping", pipeline.ErrConfigFormat)
	}
	var err error
	if keys.Stem, err = stringParam(params, StemKeyParam); err != nil {
		return keys, err
	}
	if keys.Leaf, err = stringParam(params, LeafKeyParam); err != nil {
		return keys, err
	}
	if keys.LeafDefault, err = stringParam(params, LeafDefaultParam); err != nil {
		return keys, err
	}
	if other := params.Get(OtherValidKeysParam); other != nil {
		vs, ok := other.Strings()
		if !ok {
			return keys, fmt.Errorf("%w: %s must be a sequence of strings", pipeline.ErrConfigFormat, OtherValidKeysParam)
		}
		keys.OtherValid = vs
	}
	if km := params.Get(LeafKeyMapParam); km != nil {
		switch km.Type {
		case ir.StringType:
			keys.LeafKeyMap = map[string]string{"*": km.String}
		case ir.ObjectType:
			keys.LeafKeyMap = make(map[string]string, len(km.Fields))
			for i, f := range km.Fields {
				v := km.Values[i]
				if v.Type != ir.StringType {
					return keys, fmt.Errorf("%w: %s entry %q must be a string", pipeline.ErrConfigFormat, LeafKeyMapParam, f)
				}
				keys.LeafKeyMap[f] = v.String
			}
		default:
			return keys, fmt.Errorf("%w: type %v not supported for %s", pipeline.ErrConfigFormat, km.Type, LeafKeyMapParam)
		}
	}
	return keys, nil
}

func stringParam(params *ir.Node, name string) (string, error) {
	v := params.Get(name)
	if v == nil || v.Type != ir.StringType || v.String == "" {
		return "", fmt.Errorf("%w: expand parameter %s must be a non-empty string", pipeline.ErrConfigFormat, name)
	}
	return v.String, nil
}

type symbol struct{}

// Symbol lets the expander be constructed from a processor descriptor via
// a pipeline registry.
func Symbol() pipeline.Symbol {
	return symbol{}
}

func (symbol) Name() string {
	return "expand"
}

func (symbol) Instance(params *ir.Node) (pipeline.Processor, error) {
	keys, err := ParseKeys(params)
	if err != nil {
		return nil, err
	}
	return New(keys)
}
