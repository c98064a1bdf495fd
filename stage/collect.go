package stage

import (
	"fmt"

	"github.com/unfurl-format/unfurl/ir"
	"github.com/unfurl-format/unfurl/pipeline"
)

// Collect gathers every item it sees during the run and emits them as one
// array on the final pass. Per-item output is empty, so nothing reaches
// the rest of the chain until the queue has drained.
type Collect struct {
	base
	seen []*ir.Node
}

func NewCollect() *Collect {
	return &Collect{}
}

// Reset drops the accumulated items, making the processor safe to reuse
// for another run.
func (c *Collect) Reset() {
	c.seen = nil
	c.item = nil
}

func (c *Collect) Name() string {
	return "collect"
}

func (c *Collect) SetItem(item *ir.Node, pc *pipeline.Context) {
	c.base.SetItem(item, pc)
	if !c.finalPass && item != nil {
		c.seen = append(c.seen, item)
	}
}

func (c *Collect) HandlesFinalPass() bool {
	return true
}

func (c *Collect) Process() (pipeline.Output, error) {
	if !c.finalPass {
		return pipeline.Output{}, nil
	}
	return pipeline.One(ir.FromSlice(c.seen)), nil
}

type collectSymbol struct{}

func CollectSymbol() pipeline.Symbol {
	return collectSymbol{}
}

func (collectSymbol) Name() string {
	return "collect"
}

func (collectSymbol) Instance(params *ir.Node) (pipeline.Processor, error) {
	if params != nil {
		return nil, fmt.Errorf("%w: collect takes no parameters", pipeline.ErrConfigFormat)
	}
	return NewCollect(), nil
}
