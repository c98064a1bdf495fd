package pipeline

import (
	"maps"
	"slices"

	"github.com/unfurl-format/unfurl/ir"
)

// Symbol names a processor type and constructs instances of it from a
// parameter node (nil when the descriptor carries no init section).
type Symbol interface {
	Name() string
	Instance(params *ir.Node) (Processor, error)
}

// Registry maps processor type names to their symbols. Registries are
// built explicitly by the caller and passed where needed; there is no
// package-level registry.
type Registry struct {
	syms map[string]Symbol
}

func NewRegistry(syms ...Symbol) *Registry {
	r := &Registry{syms: make(map[string]Symbol, len(syms))}
	for _, s := range syms {
		r.syms[s.Name()] = s
	}
	return r
}

func (r *Registry) Register(s Symbol) {
	r.syms[s.Name()] = s
}

func (r *Registry) Lookup(name string) (Symbol, bool) {
	s, ok := r.syms[name]
	return s, ok
}

func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.syms))
}
