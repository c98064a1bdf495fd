// Package stage provides the built-in collaborator processors that
// surround tree expansion: abbreviation rewriting, retrieval, decoding,
// templating and accumulation. Each processor has a Symbol so chains can
// be assembled from descriptor configurations through a registry.
package stage

import (
	"github.com/unfurl-format/unfurl/expand"
	"github.com/unfurl-format/unfurl/ir"
	"github.com/unfurl-format/unfurl/pipeline"
)

// base carries the per-item state every processor needs.
type base struct {
	item      *ir.Node
	finalPass bool
}

func (b *base) SetItem(item *ir.Node, pc *pipeline.Context) {
	b.item = item
	b.finalPass = pc != nil && pc.FinalPass
}

func (b *base) AdditionalItems() []*ir.Node {
	return nil
}

func (b *base) HandlesFinalPass() bool {
	return false
}

// Builtins returns a fresh registry holding every built-in symbol,
// including the tree expander's.
func Builtins() *pipeline.Registry {
	return pipeline.NewRegistry(
		AbbrevSymbol(),
		FetchSymbol(),
		DecodeSymbol(),
		EncodeSymbol(),
		TemplateSymbol(),
		RegexSymbol(),
		LoadMoreSymbol(),
		CollectSymbol(),
		JSONPatchSymbol(),
		expand.Symbol(),
	)
}
