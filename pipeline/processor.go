// Package pipeline drives configuration items through an ordered chain of
// processors. The engine owns a FIFO work queue; processors transform one
// item at a time, may prepend further items to the queue, may fan one item
// out into many, and may hold state across the run to flush on a final
// pass after the queue drains.
package pipeline

import (
	"io"

	"github.com/unfurl-format/unfurl/ir"
)

// Processor is one stage of a chain. Implementations are stateful across a
// run and must not be shared between overlapping runs; construct fresh
// instances (or reset explicitly) per run. Construction-time parameter
// validation belongs in the constructor or Symbol.Instance.
type Processor interface {
	// Name identifies the processor in errors and diagnostics.
	Name() string

	// SetItem stores the item to process next. The context is owned by
	// the engine and is read-only for the processor.
	SetItem(item *ir.Node, pc *Context)

	// AdditionalItems returns items the engine prepends to the pending
	// queue before this processor's own output is consumed. Called after
	// SetItem and before Process.
	AdditionalItems() []*ir.Node

	// Process transforms the current item. An empty Output terminates the
	// branch silently.
	Process() (Output, error)

	// HandlesFinalPass reports whether the processor wants to run once
	// more on a nil sentinel item after the queue has drained.
	HandlesFinalPass() bool
}

// Output is the result of one Process call: a single item, a lazy stream
// of items (fan-out), or neither.
type Output struct {
	Item   *ir.Node
	Stream Stream
}

func (o Output) empty() bool {
	return o.Item == nil && o.Stream == nil
}

func One(n *ir.Node) Output {
	return Output{Item: n}
}

func FromStream(s Stream) Output {
	return Output{Stream: s}
}

// Stream is a pull-based, finite, non-restartable sequence of items. Next
// returns io.EOF when the stream is exhausted. Consuming a stream twice
// requires re-invoking whatever produced it.
type Stream interface {
	Next() (*ir.Node, error)
}

// SliceStream adapts a slice to a Stream.
type SliceStream struct {
	items []*ir.Node
	at    int
}

func NewSliceStream(items []*ir.Node) *SliceStream {
	return &SliceStream{items: items}
}

func (s *SliceStream) Next() (*ir.Node, error) {
	if s.at >= len(s.items) {
		return nil, io.EOF
	}
	n := s.items[s.at]
	s.at++
	return n, nil
}
