package pipeline

import "errors"

var (
	// ErrConfigFormat marks a malformed configuration shape: disallowed
	// keys, non-mapping values where a mapping is required, unresolvable
	// shorthand keys.
	ErrConfigFormat = errors.New("config format")

	// ErrRunawayExpansion marks a run aborted because the pending queue
	// outgrew the engine's cap, usually a cyclic load-more stage.
	ErrRunawayExpansion = errors.New("runaway expansion")
)
