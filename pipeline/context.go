package pipeline

import "github.com/unfurl-format/unfurl/ir"

// Context describes the engine state visible to a processor while it runs.
// Processors read it; only the engine writes it.
type Context struct {
	// FinalPass is true during the single extra pass performed after the
	// queue drains, when accumulator processors flush.
	FinalPass bool

	// Origin is the queue item that started the current chain of work.
	Origin *ir.Node

	// Pending is the still-unprocessed queue. Read-only; queue insertions
	// go through Processor.AdditionalItems.
	Pending []*ir.Node

	// Chain is the remaining processor sub-chain, starting with the
	// processor currently running.
	Chain []Processor
}
