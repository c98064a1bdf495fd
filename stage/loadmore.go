package stage

import (
	"fmt"

	"github.com/unfurl-format/unfurl/debug"
	"github.com/unfurl-format/unfurl/ir"
	"github.com/unfurl-format/unfurl/pipeline"
)

// LoadMore interprets an array-of-strings item as a list of further
// configurations to load: the strings are prepended to the engine's
// pending queue and the item's own branch ends. Anything else passes
// through. Use with care, a list of plain strings that are not urls will
// still be treated as one.
type LoadMore struct {
	base
}

func NewLoadMore() *LoadMore {
	return &LoadMore{}
}

func (l *LoadMore) Name() string {
	return "loadmore"
}

func (l *LoadMore) AdditionalItems() []*ir.Node {
	ss, ok := l.item.Strings()
	if !ok {
		return nil
	}
	if debug.Stage() {
		debug.Logf("loadmore: queueing %d configs\n", len(ss))
	}
	res := make([]*ir.Node, len(ss))
	for i, s := range ss {
		res[i] = ir.FromString(s)
	}
	return res
}

func (l *LoadMore) Process() (pipeline.Output, error) {
	if l.item == nil {
		return pipeline.Output{}, nil
	}
	if _, ok := l.item.Strings(); ok {
		return pipeline.Output{}, nil
	}
	return pipeline.One(l.item), nil
}

type loadMoreSymbol struct{}

func LoadMoreSymbol() pipeline.Symbol {
	return loadMoreSymbol{}
}

func (loadMoreSymbol) Name() string {
	return "loadmore"
}

func (loadMoreSymbol) Instance(params *ir.Node) (pipeline.Processor, error) {
	if params != nil {
		return nil, fmt.Errorf("%w: loadmore takes no parameters", pipeline.ErrConfigFormat)
	}
	return NewLoadMore(), nil
}
