// Package unfurl expands terse, nested configuration trees into flat
// sequences of fully-resolved records. Configurations enter as urls,
// paths or yaml text, travel through an ordered processor chain
// (abbreviation expansion, retrieval, decoding, tree expansion) and fall
// out as leaf records carrying the variables inherited from their
// ancestors.
package unfurl

import (
	"fmt"

	"github.com/unfurl-format/unfurl/expand"
	"github.com/unfurl-format/unfurl/ir"
	"github.com/unfurl-format/unfurl/pipeline"
	"github.com/unfurl-format/unfurl/stage"
)

// DefaultChain converts a string item, possibly an abbreviated url or
// path or raw yaml, into a structured item: abbrev -> fetch -> decode.
// Custom abbreviations merge over the defaults.
func DefaultChain(abbrevs map[string]stage.Expansion) []pipeline.Processor {
	return []pipeline.Processor{
		stage.NewAbbrev(abbrevs, true),
		stage.NewFetch(),
		stage.NewDecode(),
	}
}

// BootstrapKeys is the tree vocabulary of processor-descriptor
// configurations, used to build chains from configuration.
func BootstrapKeys() expand.Keys {
	return expand.Keys{
		Stem:        "processors",
		Leaf:        "processor",
		LeafDefault: "type",
		OtherValid:  []string{"init"},
		LeafKeyMap:  map[string]string{"*": "init"},
	}
}

// BootstrapChain extends DefaultChain with an expander over
// BootstrapKeys, turning descriptor configs into flat processor
// descriptors.
func BootstrapChain() ([]pipeline.Processor, error) {
	ex, err := expand.New(BootstrapKeys())
	if err != nil {
		return nil, err
	}
	return append(DefaultChain(nil), ex), nil
}

// Unfurl holds a set of configurations together with the processor chain
// that resolves them. The chain is stateful: one Unfurl supports one
// Process call unless its processors are reset.
type Unfurl struct {
	configs []*ir.Node
	chain   []pipeline.Processor
	opts    []pipeline.Option
}

func New(chain []pipeline.Processor, configs ...*ir.Node) *Unfurl {
	return &Unfurl{chain: chain, configs: configs}
}

// WithEngineOptions sets options, such as pipeline.WithQueueCap, for the
// engine Process constructs.
func (u *Unfurl) WithEngineOptions(opts ...pipeline.Option) *Unfurl {
	u.opts = append(u.opts, opts...)
	return u
}

func (u *Unfurl) SetConfigs(configs ...*ir.Node) {
	u.configs = configs
}

func (u *Unfurl) AppendConfigs(configs ...*ir.Node) {
	u.configs = append(u.configs, configs...)
}

// Process drives the configurations through the chain, accumulating
// results in sink.
func (u *Unfurl) Process(sink pipeline.Sink) error {
	return pipeline.New(u.chain, u.opts...).Run(u.configs, sink)
}

// Expand is Process with a merge sink, returning the terminal items.
func (u *Unfurl) Expand() ([]*ir.Node, error) {
	sink := pipeline.NewMergeSink()
	if err := u.Process(sink); err != nil {
		return nil, err
	}
	return sink.Result(), nil
}

// Factory builds an Unfurl whose chain is described by bootstrap
// configurations: each leaf record names a processor type resolved
// through reg, plus its init parameters.
func Factory(reg *pipeline.Registry, bootstrap []*ir.Node, configs ...*ir.Node) (*Unfurl, error) {
	chain, err := BootstrapChain()
	if err != nil {
		return nil, err
	}
	sink := pipeline.NewFactorySink(reg)
	if err := pipeline.New(chain).Run(bootstrap, sink); err != nil {
		return nil, fmt.Errorf("bootstrapping chain: %w", err)
	}
	return New(sink.Result(), configs...), nil
}

// Configs wraps raw strings as items, the common entry point for url and
// path arguments.
func Configs(ss ...string) []*ir.Node {
	res := make([]*ir.Node, len(ss))
	for i, s := range ss {
		res[i] = ir.FromString(s)
	}
	return res
}
