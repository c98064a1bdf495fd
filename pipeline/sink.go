package pipeline

import (
	"fmt"

	"github.com/unfurl-format/unfurl/ir"
)

// Sink receives the items that fall out of the end of a chain. The engine
// calls OnStart before the first item and OnFinish after the final pass.
// Accumulated results are read from the concrete sink type.
type Sink interface {
	OnStart()
	OnItem(item *ir.Node) error
	OnFinish()
}

// MergeSink appends every terminal item as one entry.
type MergeSink struct {
	items []*ir.Node
}

func NewMergeSink() *MergeSink {
	return &MergeSink{}
}

func (s *MergeSink) OnStart()  {}
func (s *MergeSink) OnFinish() {}

func (s *MergeSink) OnItem(item *ir.Node) error {
	s.items = append(s.items, item)
	return nil
}

func (s *MergeSink) Result() []*ir.Node {
	return s.items
}

// ExtendSink expects terminal items to be arrays and splice-appends their
// elements.
type ExtendSink struct {
	items []*ir.Node
}

func NewExtendSink() *ExtendSink {
	return &ExtendSink{}
}

func (s *ExtendSink) OnStart()  {}
func (s *ExtendSink) OnFinish() {}

func (s *ExtendSink) OnItem(item *ir.Node) error {
	if item.Type != ir.ArrayType {
		return fmt.Errorf("%w: extend sink needs array items, got %v", ErrConfigFormat, item.Type)
	}
	s.items = append(s.items, item.Values...)
	return nil
}

func (s *ExtendSink) Result() []*ir.Node {
	return s.items
}

// FactorySink consumes processor descriptor mappings of the form
//
//	processor:
//	  type: <name>
//	init:
//	  <construction parameters>
//
// resolving each type through a caller-supplied registry and assembling
// the instances into a chain.
type FactorySink struct {
	reg   *Registry
	chain []Processor
}

func NewFactorySink(reg *Registry) *FactorySink {
	return &FactorySink{reg: reg}
}

func (s *FactorySink) OnStart()  {}
func (s *FactorySink) OnFinish() {}

func (s *FactorySink) OnItem(item *ir.Node) error {
	if item.Type != ir.ObjectType {
		return fmt.Errorf("%w: processor descriptor must be a mapping, got %v", ErrConfigFormat, item.Type)
	}
	proc := item.Get("processor")
	if proc == nil || proc.Type != ir.ObjectType {
		return fmt.Errorf("%w: descriptor has no processor mapping: %s", ErrConfigFormat, debugJSON(item))
	}
	typ := proc.Get("type")
	if typ == nil || typ.Type != ir.StringType || typ.String == "" {
		return fmt.Errorf("%w: cannot parse processor type from descriptor: %s", ErrConfigFormat, debugJSON(item))
	}
	sym, ok := s.reg.Lookup(typ.String)
	if !ok {
		return fmt.Errorf("%w: unknown processor type %q", ErrConfigFormat, typ.String)
	}
	p, err := sym.Instance(item.Get("init"))
	if err != nil {
		return fmt.Errorf("constructing processor %q: %w", typ.String, err)
	}
	s.chain = append(s.chain, p)
	return nil
}

func (s *FactorySink) Result() []Processor {
	return s.chain
}

func debugJSON(n *ir.Node) string {
	d, err := n.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("%v", n)
	}
	return string(d)
}
