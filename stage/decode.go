package stage

import (
	"fmt"

	"github.com/goccy/go-yaml"

	"github.com/unfurl-format/unfurl/ir"
	"github.com/unfurl-format/unfurl/pipeline"
)

// Decode parses a string item as YAML (or JSON, which YAML subsumes) into
// a structured item. Already-structured items pass through untouched.
type Decode struct {
	base
}

func NewDecode() *Decode {
	return &Decode{}
}

func (d *Decode) Name() string {
	return "decode"
}

func (d *Decode) Process() (pipeline.Output, error) {
	if d.item == nil {
		return pipeline.Output{}, nil
	}
	if d.item.Type != ir.StringType {
		return pipeline.One(d.item), nil
	}
	var v any
	if err := yaml.UnmarshalWithOptions([]byte(d.item.String), &v, yaml.UseOrderedMap()); err != nil {
		return pipeline.Output{}, fmt.Errorf("decoding yaml: %w", err)
	}
	n, err := ir.FromGo(v)
	if err != nil {
		return pipeline.Output{}, fmt.Errorf("%w: %v", pipeline.ErrConfigFormat, err)
	}
	return pipeline.One(n), nil
}

type decodeSymbol struct{}

func DecodeSymbol() pipeline.Symbol {
	return decodeSymbol{}
}

func (decodeSymbol) Name() string {
	return "decode"
}

func (decodeSymbol) Instance(params *ir.Node) (pipeline.Processor, error) {
	if params != nil {
		return nil, fmt.Errorf("%w: decode takes no parameters", pipeline.ErrConfigFormat)
	}
	return NewDecode(), nil
}

// Encode renders a structured item as YAML text, producing a string item.
type Encode struct {
	base
}

func NewEncode() *Encode {
	return &Encode{}
}

func (e *Encode) Name() string {
	return "encode"
}

func (e *Encode) Process() (pipeline.Output, error) {
	if e.item == nil {
		return pipeline.Output{}, nil
	}
	d, err := yaml.Marshal(e.item.ToGo())
	if err != nil {
		return pipeline.Output{}, fmt.Errorf("encoding yaml: %w", err)
	}
	return pipeline.One(ir.FromString(string(d))), nil
}

type encodeSymbol struct{}

func EncodeSymbol() pipeline.Symbol {
	return encodeSymbol{}
}

func (encodeSymbol) Name() string {
	return "encode"
}

func (encodeSymbol) Instance(params *ir.Node) (pipeline.Processor, error) {
	if params != nil {
		return nil, fmt.Errorf("%w: encode takes no parameters", pipeline.ErrConfigFormat)
	}
	return NewEncode(), nil
}
