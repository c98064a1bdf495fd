package stage

import (
	"fmt"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/goccy/go-yaml"

	"github.com/unfurl-format/unfurl/ir"
	"github.com/unfurl-format/unfurl/pipeline"
)

// JSONPatch applies an RFC 6902 patch, given at construction, to every
// structured item. String items pass through.
type JSONPatch struct {
	base
	patch jsonpatch.Patch
}

func NewJSONPatch(patchDoc *ir.Node) (*JSONPatch, error) {
	if patchDoc == nil || patchDoc.Type != ir.ArrayType {
		return nil, fmt.Errorf("%w: json patch must be a sequence of operations", pipeline.ErrConfigFormat)
	}
	d, err := patchDoc.MarshalJSON()
	if err != nil {
		return nil, err
	}
	ops, err := jsonpatch.DecodePatch(d)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pipeline.ErrConfigFormat, err)
	}
	return &JSONPatch{patch: ops}, nil
}

func (j *JSONPatch) Name() string {
	return "jsonpatch"
}

func (j *JSONPatch) Process() (pipeline.Output, error) {
	if j.item == nil {
		return pipeline.Output{}, nil
	}
	if j.item.Type != ir.ObjectType && j.item.Type != ir.ArrayType {
		return pipeline.One(j.item), nil
	}
	d, err := j.item.MarshalJSON()
	if err != nil {
		return pipeline.Output{}, err
	}
	out, err := j.patch.Apply(d)
	if err != nil {
		return pipeline.Output{}, fmt.Errorf("applying patch: %w", err)
	}
	var v any
	if err := yaml.UnmarshalWithOptions(out, &v, yaml.UseOrderedMap()); err != nil {
		return pipeline.Output{}, fmt.Errorf("decoding patched document: %w", err)
	}
	n, err := ir.FromGo(v)
	if err != nil {
		return pipeline.Output{}, err
	}
	return pipeline.One(n), nil
}

type jsonPatchSymbol struct{}

func JSONPatchSymbol() pipeline.Symbol {
	return jsonPatchSymbol{}
}

func (jsonPatchSymbol) Name() string {
	return "jsonpatch"
}

// Instance accepts a patch parameter holding the RFC 6902 operations.
func (jsonPatchSymbol) Instance(params *ir.Node) (pipeline.Processor, error) {
	if params == nil || params.Type != ir.ObjectType {
		return nil, fmt.Errorf("%w: jsonpatch parameters must be a mapping", pipeline.ErrConfigFormat)
	}
	return NewJSONPatch(params.Get("patch"))
}
