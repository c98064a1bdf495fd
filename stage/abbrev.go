package stage

import (
	"fmt"
	"strings"

	"github.com/unfurl-format/unfurl/debug"
	"github.com/unfurl-format/unfurl/ir"
	"github.com/unfurl-format/unfurl/pipeline"
)

// Placeholder marks a token slot filled from the abbreviated remainder.
const Placeholder = "{}"

// Expansion is one abbreviation target. Plain replaces the prefix
// verbatim; Tokens assembles the result from fixed parts and Placeholder
// slots, joined by "/".
type Expansion struct {
	Plain  string
	Tokens []string
}

// DefaultAbbrevs shortens the common raw-content hosts, so
// "gh:user/repo/path/file.yml" resolves to the file on the repository's
// master branch.
func DefaultAbbrevs() map[string]Expansion {
	return map[string]Expansion{
		"gh": {Tokens: []string{"https://raw.githubusercontent.com", Placeholder, Placeholder, "master"}},
		"bb": {Tokens: []string{"https://bitbucket.org", Placeholder, Placeholder, "src", "master"}},
	}
}

// Abbrev rewrites string items that start with a registered "<prefix>:"
// abbreviation into their expanded form. Non-string items pass through
// untouched.
type Abbrev struct {
	base
	abbrevs map[string]Expansion
}

func NewAbbrev(abbrevs map[string]Expansion, addDefaults bool) *Abbrev {
	res := map[string]Expansion{}
	if addDefaults {
		res = DefaultAbbrevs()
	}
	for k, v := range abbrevs {
		res[k] = v
	}
	return &Abbrev{abbrevs: res}
}

func (a *Abbrev) Name() string {
	return "abbrev"
}

func (a *Abbrev) Process() (pipeline.Output, error) {
	if a.item == nil {
		return pipeline.Output{}, nil
	}
	if a.item.Type != ir.StringType {
		return pipeline.One(a.item), nil
	}
	expanded, err := a.expand(a.item.String)
	if err != nil {
		return pipeline.Output{}, err
	}
	if debug.Stage() && expanded != a.item.String {
		debug.Logf("abbrev: %s -> %s\n", a.item.String, expanded)
	}
	return pipeline.One(ir.FromString(expanded)), nil
}

func (a *Abbrev) expand(config string) (string, error) {
	prefix, rest, found := strings.Cut(config, ":")
	if !found {
		return config, nil
	}
	exp, ok := a.abbrevs[prefix]
	if !ok {
		return config, nil
	}
	if exp.Plain != "" {
		return exp.Plain + rest, nil
	}

	tokens := strings.Split(rest, "/")
	minTokens := 0
	for _, t := range exp.Tokens {
		if t == Placeholder {
			minTokens++
		}
	}
	var sb strings.Builder
	for _, t := range exp.Tokens {
		if t == Placeholder {
			if len(tokens) == 0 {
				return "", fmt.Errorf("%w: cannot expand %q: need at least %d parts separated by '/' after ':'",
					pipeline.ErrConfigFormat, config, minTokens)
			}
			t = tokens[0]
			tokens = tokens[1:]
			if t == "" {
				return "", fmt.Errorf("%w: empty part in %q, cannot expand", pipeline.ErrConfigFormat, config)
			}
		}
		sb.WriteString(t)
		sb.WriteString("/")
	}
	sb.WriteString(strings.Join(tokens, "/"))
	return sb.String(), nil
}

type abbrevSymbol struct{}

func AbbrevSymbol() pipeline.Symbol {
	return abbrevSymbol{}
}

func (abbrevSymbol) Name() string {
	return "abbrev"
}

// Instance accepts parameters of the form
//
//	abbrevs:
//	  <prefix>: <replacement string> | [<token or "{}">, ...]
//	add_defaults: <bool, default true>
func (abbrevSymbol) Instance(params *ir.Node) (pipeline.Processor, error) {
	abbrevs := map[string]Expansion{}
	addDefaults := true
	if params != nil {
		if params.Type != ir.ObjectType {
			return nil, fmt.Errorf("%w: abbrev parameters must be a mapping", pipeline.ErrConfigFormat)
		}
		if ad := params.Get("add_defaults"); ad != nil {
			if ad.Type != ir.BoolType {
				return nil, fmt.Errorf("%w: add_defaults must be a bool", pipeline.ErrConfigFormat)
			}
			addDefaults = ad.Bool
		}
		if ab := params.Get("abbrevs"); ab != nil {
			if ab.Type != ir.ObjectType {
				return nil, fmt.Errorf("%w: abbrevs must be a mapping", pipeline.ErrConfigFormat)
			}
			for i, prefix := range ab.Fields {
				v := ab.Values[i]
				switch v.Type {
				case ir.StringType:
					abbrevs[prefix] = Expansion{Plain: v.String}
				case ir.ArrayType:
					tokens, ok := v.Strings()
					if !ok {
						return nil, fmt.Errorf("%w: abbrev %q tokens must be strings", pipeline.ErrConfigFormat, prefix)
					}
					abbrevs[prefix] = Expansion{Tokens: tokens}
				default:
					return nil, fmt.Errorf("%w: abbrev %q must be a string or token sequence", pipeline.ErrConfigFormat, prefix)
				}
			}
		}
	}
	return NewAbbrev(abbrevs, addDefaults), nil
}
