package pipeline

import (
	"fmt"
	"io"
	"slices"

	"github.com/unfurl-format/unfurl/debug"
	"github.com/unfurl-format/unfurl/ir"
)

// DefaultQueueCap bounds the pending work queue of a run.
const DefaultQueueCap = 1024

// Engine drives items through an ordered processor chain. A single run is
// strictly synchronous and depth-first: an item is popped from the queue,
// pushed through the chain (fanning out where a processor streams), and
// terminal outputs are handed to the sink. Processors are stateful across
// a run, so an engine's chain must be freshly constructed (or explicitly
// reset) before each run.
type Engine struct {
	chain    []Processor
	queueCap int
}

type Option func(*Engine)

// WithQueueCap overrides the pending-queue cap (default DefaultQueueCap).
func WithQueueCap(n int) Option {
	return func(e *Engine) {
		e.queueCap = n
	}
}

func New(chain []Processor, opts ...Option) *Engine {
	e := &Engine{chain: chain, queueCap: DefaultQueueCap}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Chain() []Processor {
	return e.chain
}

// Run processes items in order, then performs one final pass with a nil
// sentinel so accumulator processors can flush. Any processor error aborts
// the run. Results accumulate in the sink.
func (e *Engine) Run(items []*ir.Node, sink Sink) error {
	r := &run{
		engine: e,
		queue:  slices.Clone(items),
		sink:   sink,
		ctx:    &Context{},
	}
	sink.OnStart()
	for len(r.queue) > 0 {
		if len(r.queue) > e.queueCap {
			return fmt.Errorf("%w: %d items pending, cap is %d", ErrRunawayExpansion, len(r.queue), e.queueCap)
		}
		item := r.queue[0]
		r.queue = r.queue[1:]
		r.ctx.Origin = item
		if err := r.process(item, e.chain); err != nil {
			return err
		}
	}
	r.ctx.FinalPass = true
	r.ctx.Origin = nil
	if err := r.finalPass(); err != nil {
		return err
	}
	sink.OnFinish()
	return nil
}

type run struct {
	engine  *Engine
	queue   []*ir.Node
	sink    Sink
	ctx     *Context
	spliced int
}

// process pushes item through chain, recursing on the remaining sub-chain
// for every produced element.
func (r *run) process(item *ir.Node, chain []Processor) error {
	if item == nil {
		return nil
	}
	if len(chain) == 0 {
		return r.sink.OnItem(item)
	}
	p := chain[0]
	r.ctx.Pending = r.queue
	r.ctx.Chain = chain
	p.SetItem(item.Clone(), r.ctx)

	if add := p.AdditionalItems(); len(add) > 0 {
		if debug.Engine() {
			debug.Logf("engine: %s prepends %d items\n", p.Name(), len(add))
		}
		// A processor that keeps re-adding items never grows the queue
		// past the cap (pop one, add one), so cap the cumulative splice
		// count as well.
		r.spliced += len(add)
		if r.spliced > r.engine.queueCap || len(r.queue)+len(add) > r.engine.queueCap {
			return fmt.Errorf("%w: %s exceeded the queue cap of %d", ErrRunawayExpansion, p.Name(), r.engine.queueCap)
		}
		r.queue = append(slices.Clone(add), r.queue...)
	}

	out, err := p.Process()
	if err != nil {
		return r.wrap(p, err)
	}
	if out.Stream != nil {
		for {
			n, err := out.Stream.Next()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return r.wrap(p, err)
			}
			if err := r.process(n, chain[1:]); err != nil {
				return err
			}
		}
	}
	return r.process(out.Item, chain[1:])
}

// finalPass folds a nil sentinel through the whole chain once. Processors
// that neither hold a concrete item nor handle the final pass are skipped.
// A streaming result fans out through the remaining chain as in the main
// loop.
func (r *run) finalPass() error {
	chain := r.engine.chain
	var item *ir.Node
	for i, p := range chain {
		if item == nil && !p.HandlesFinalPass() {
			continue
		}
		r.ctx.Pending = r.queue
		r.ctx.Chain = chain[i:]
		p.SetItem(item, r.ctx)
		out, err := p.Process()
		if err != nil {
			return r.wrap(p, err)
		}
		if out.Stream != nil {
			rest := chain[i+1:]
			for {
				n, err := out.Stream.Next()
				if err == io.EOF {
					return nil
				}
				if err != nil {
					return r.wrap(p, err)
				}
				if err := r.process(n, rest); err != nil {
					return err
				}
			}
		}
		item = out.Item
	}
	if item != nil {
		return r.sink.OnItem(item)
	}
	return nil
}

func (r *run) wrap(p Processor, err error) error {
	if r.ctx.Origin != nil {
		return fmt.Errorf("processing %s with %s: %w", debugJSON(r.ctx.Origin), p.Name(), err)
	}
	return fmt.Errorf("final pass of %s: %w", p.Name(), err)
}
