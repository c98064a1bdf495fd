package stage

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/goccy/go-yaml"

	"github.com/unfurl-format/unfurl/debug"
	"github.com/unfurl-format/unfurl/ir"
	"github.com/unfurl-format/unfurl/pipeline"
)

// Template expands $[expr] segments inside string items. Expressions are
// evaluated with expr-lang against the environment given at construction.
// Within an expression, \] keeps a literal ] and \\ a literal backslash;
// an unclosed $[ is left as literal text. Non-string items pass through.
type Template struct {
	base
	env map[string]any
}

func NewTemplate(env map[string]any) *Template {
	if env == nil {
		env = map[string]any{}
	}
	return &Template{env: env}
}

func (t *Template) Name() string {
	return "template"
}

func (t *Template) Process() (pipeline.Output, error) {
	if t.item == nil {
		return pipeline.Output{}, nil
	}
	if t.item.Type != ir.StringType {
		return pipeline.One(t.item), nil
	}
	out, err := t.expandString(t.item.String)
	if err != nil {
		return pipeline.Output{}, err
	}
	return pipeline.One(ir.FromString(out)), nil
}

func (t *Template) expandString(v string) (string, error) {
	if len(v) < 3 {
		return v, nil
	}
	inExpr := false
	i := 0
	n := len(v)
	var outBuf []byte
	var keyBuf []byte

	flush := func() error {
		key := strings.TrimSpace(string(keyBuf))
		x, err := expr.Eval(key, t.env)
		if err != nil {
			return fmt.Errorf("error evaluating %q: %w", key, err)
		}
		if debug.Stage() {
			debug.Logf("template: %q gave %#v\n", key, x)
		}
		d, err := anyToBytes(x)
		if err != nil {
			return fmt.Errorf("could not render result of %q: %w", key, err)
		}
		outBuf = append(outBuf, d...)
		return nil
	}

	for i < n-1 {
		c, next := v[i], v[i+1]
		i++
		switch c {
		case '$':
			if !inExpr && next == '[' {
				inExpr = true
				keyBuf = keyBuf[:0]
				i++
				continue
			}
			if inExpr {
				keyBuf = append(keyBuf, c)
			} else {
				outBuf = append(outBuf, c)
			}
		case '\\':
			if inExpr {
				keyBuf = append(keyBuf, next)
				i++
				continue
			}
			outBuf = append(outBuf, c)
		case ']':
			if inExpr {
				if err := flush(); err != nil {
					return "", err
				}
				inExpr = false
				continue
			}
			outBuf = append(outBuf, c)
		default:
			if inExpr {
				keyBuf = append(keyBuf, c)
			} else {
				outBuf = append(outBuf, c)
			}
		}
	}
	if i == n-1 {
		c := v[i]
		if c == ']' && inExpr {
			if err := flush(); err != nil {
				return "", err
			}
			inExpr = false
		} else if inExpr {
			keyBuf = append(keyBuf, c)
		} else {
			outBuf = append(outBuf, c)
		}
	}
	if inExpr {
		// Unterminated expression, treat as literal text.
		outBuf = append(outBuf, "$["...)
		outBuf = append(outBuf, keyBuf...)
	}
	return string(outBuf), nil
}

func anyToBytes(x any) ([]byte, error) {
	switch v := x.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(v), nil
	case bool:
		return []byte(strconv.FormatBool(v)), nil
	case int:
		return []byte(strconv.Itoa(v)), nil
	case int64:
		return []byte(strconv.FormatInt(v, 10)), nil
	case float64:
		return []byte(strconv.FormatFloat(v, 'g', -1, 64)), nil
	default:
		return json.Marshal(x)
	}
}

type templateSymbol struct{}

func TemplateSymbol() pipeline.Symbol {
	return templateSymbol{}
}

func (templateSymbol) Name() string {
	return "template"
}

// Instance accepts an env mapping of template values.
func (templateSymbol) Instance(params *ir.Node) (pipeline.Processor, error) {
	env := map[string]any{}
	if params != nil {
		if params.Type != ir.ObjectType {
			return nil, fmt.Errorf("%w: template parameters must be a mapping", pipeline.ErrConfigFormat)
		}
		envNode := params.Get("env")
		if envNode != nil {
			if envNode.Type != ir.ObjectType {
				return nil, fmt.Errorf("%w: template env must be a mapping", pipeline.ErrConfigFormat)
			}
			for i, f := range envNode.Fields {
				env[f] = plainGo(envNode.Values[i].ToGo())
			}
		}
	}
	return NewTemplate(env), nil
}

// plainGo rewrites yaml.MapSlice values into map[string]any so expr-lang
// can index into them.
func plainGo(v any) any {
	switch x := v.(type) {
	case yaml.MapSlice:
		res := make(map[string]any, len(x))
		for _, item := range x {
			key, ok := item.Key.(string)
			if !ok {
				continue
			}
			res[key] = plainGo(item.Value)
		}
		return res
	case []any:
		for i := range x {
			x[i] = plainGo(x[i])
		}
		return x
	default:
		return v
	}
}
