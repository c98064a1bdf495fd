package stage

import (
	"fmt"
	"regexp"

	"github.com/unfurl-format/unfurl/ir"
	"github.com/unfurl-format/unfurl/pipeline"
)

// Replacement is one regex rewrite rule.
type Replacement struct {
	Pattern string
	Repl    string
}

// Regex applies an ordered list of regex replacements to string items.
// Patterns are compiled and validated at construction. Non-string items
// pass through.
type Regex struct {
	base
	subs []sub
}

type sub struct {
	re   *regexp.Regexp
	repl string
}

func NewRegex(rules []Replacement) (*Regex, error) {
	subs := make([]sub, len(rules))
	for i, r := range rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: bad pattern %q: %v", pipeline.ErrConfigFormat, r.Pattern, err)
		}
		subs[i] = sub{re: re, repl: r.Repl}
	}
	return &Regex{subs: subs}, nil
}

func (r *Regex) Name() string {
	return "regex"
}

func (r *Regex) Process() (pipeline.Output, error) {
	if r.item == nil {
		return pipeline.Output{}, nil
	}
	if r.item.Type != ir.StringType {
		return pipeline.One(r.item), nil
	}
	out := r.item.String
	for _, s := range r.subs {
		out = s.re.ReplaceAllString(out, s.repl)
	}
	return pipeline.One(ir.FromString(out)), nil
}

type regexSymbol struct{}

func RegexSymbol() pipeline.Symbol {
	return regexSymbol{}
}

func (regexSymbol) Name() string {
	return "regex"
}

// Instance accepts a regexes mapping of pattern to replacement, applied
// in the mapping's order.
func (regexSymbol) Instance(params *ir.Node) (pipeline.Processor, error) {
	if params == nil || params.Type != ir.ObjectType {
		return nil, fmt.Errorf("%w: regex parameters must be a mapping", pipeline.ErrConfigFormat)
	}
	rs := params.Get("regexes")
	if rs == nil || rs.Type != ir.ObjectType {
		return nil, fmt.Errorf("%w: regex needs a regexes mapping", pipeline.ErrConfigFormat)
	}
	rules := make([]Replacement, 0, len(rs.Fields))
	for i, pattern := range rs.Fields {
		v := rs.Values[i]
		if v.Type != ir.StringType {
			return nil, fmt.Errorf("%w: replacement for %q must be a string", pipeline.ErrConfigFormat, pattern)
		}
		rules = append(rules, Replacement{Pattern: pattern, Repl: v.String})
	}
	return NewRegex(rules)
}
