package stage

import (
	"errors"
	"testing"

	"github.com/unfurl-format/unfurl/ir"
	"github.com/unfurl-format/unfurl/pipeline"
)

func abbrevOut(t *testing.T, a *Abbrev, in string) (string, error) {
	t.Helper()
	a.SetItem(ir.FromString(in), nil)
	out, err := a.Process()
	if err != nil {
		return "", err
	}
	if out.Item == nil || out.Item.Type != ir.StringType {
		t.Fatalf("abbrev did not produce a string: %v", out.Item)
	}
	return out.Item.String, nil
}

func TestAbbrevDefaults(t *testing.T) {
	a := NewAbbrev(nil, true)
	tests := []struct {
		name string
		in   string
		out  string
	}{
		{"github", "gh:user/repo/path/file.yml",
			"https://raw.githubusercontent.com/user/repo/master/path/file.yml"},
		{"bitbucket", "bb:user/repo/file.yml",
			"https://bitbucket.org/user/repo/src/master/file.yml"},
		{"no colon", "plain-config.yml", "plain-config.yml"},
		{"unknown prefix", "https://example.com/x.yml", "https://example.com/x.yml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := abbrevOut(t, a, tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.out {
				t.Errorf("got %q, want %q", got, tt.out)
			}
		})
	}
}

func TestAbbrevPlainPrefix(t *testing.T) {
	a := NewAbbrev(map[string]Expansion{"cfg": {Plain: "https://example.com/configs/"}}, false)
	got, err := abbrevOut(t, a, "cfg:team/app.yml")
	if err != nil {
		t.Fatal(err)
	}
	if want := "https://example.com/configs/team/app.yml"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestAbbrevTooFewParts(t *testing.T) {
	a := NewAbbrev(nil, true)
	if _, err := abbrevOut(t, a, "gh:user"); !errors.Is(err, pipeline.ErrConfigFormat) {
		t.Errorf("got %v, want ErrConfigFormat", err)
	}
	if _, err := abbrevOut(t, a, "gh:user//file.yml"); !errors.Is(err, pipeline.ErrConfigFormat) {
		t.Errorf("empty part: got %v, want ErrConfigFormat", err)
	}
}

func TestAbbrevNonStringPassesThrough(t *testing.T) {
	a := NewAbbrev(nil, true)
	item := ir.Object().Set("a", ir.FromInt(1))
	a.SetItem(item, nil)
	out, err := a.Process()
	if err != nil {
		t.Fatal(err)
	}
	if out.Item != item {
		t.Errorf("non-string item was not passed through")
	}
}

func TestAbbrevSymbol(t *testing.T) {
	params := ir.Object().
		Set("add_defaults", ir.FromBool(false)).
		Set("abbrevs", ir.Object().
			Set("p", ir.FromString("https://plain.example/")).
			Set("t", ir.FromSlice([]*ir.Node{
				ir.FromString("https://tok.example"),
				ir.FromString(Placeholder),
				ir.FromString("fixed"),
			})))
	p, err := AbbrevSymbol().Instance(params)
	if err != nil {
		t.Fatal(err)
	}
	a := p.(*Abbrev)
	if got, _ := abbrevOut(t, a, "p:x"); got != "https://plain.example/x" {
		t.Errorf("plain: got %q", got)
	}
	if got, _ := abbrevOut(t, a, "t:x/rest"); got != "https://tok.example/x/fixed/rest" {
		t.Errorf("tokens: got %q", got)
	}
	// defaults were not added
	if got, _ := abbrevOut(t, a, "gh:a/b/c"); got != "gh:a/b/c" {
		t.Errorf("gh should be unknown here, got %q", got)
	}

	bad := []*ir.Node{
		ir.FromSlice(nil),
		ir.Object().Set("add_defaults", ir.FromString("yes")),
		ir.Object().Set("abbrevs", ir.Object().Set("x", ir.FromInt(1))),
		ir.Object().Set("abbrevs", ir.Object().Set("x", ir.FromSlice([]*ir.Node{ir.FromInt(1)}))),
	}
	for i, params := range bad {
		if _, err := AbbrevSymbol().Instance(params); !errors.Is(err, pipeline.ErrConfigFormat) {
			t.Errorf("params %d: got %v, want ErrConfigFormat", i, err)
		}
	}
}
