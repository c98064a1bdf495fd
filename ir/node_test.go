package ir

import (
	"testing"

	"github.com/goccy/go-yaml"
)

func TestObjectOrder(t *testing.T) {
	n := Object().
		Set("b", FromInt(1)).
		Set("a", FromInt(2)).
		Set("b", FromInt(3))
	if got, want := len(n.Fields), 2; got != want {
		t.Fatalf("got %d fields, want %d", got, want)
	}
	if n.Fields[0] != "b" || n.Fields[1] != "a" {
		t.Errorf("insertion order not kept: %v", n.Fields)
	}
	if got := n.Get("b"); got == nil || *got.Int64 != 3 {
		t.Errorf("Set did not replace b")
	}
}

func TestPop(t *testing.T) {
	n := Object().Set("a", FromInt(1)).Set("b", FromInt(2))
	v := n.Pop("a")
	if v == nil || *v.Int64 != 1 {
		t.Fatalf("Pop returned %v", v)
	}
	if n.Has("a") || !n.Has("b") {
		t.Errorf("Pop left fields %v", n.Fields)
	}
	if n.Pop("a") != nil {
		t.Errorf("Pop of absent field must return nil")
	}
}

func TestCloneIsDeep(t *testing.T) {
	n := Object().Set("vars", Object().Set("aa", FromInt(11)))
	c := n.Clone()
	c.Get("vars").Set("aa", FromInt(99))
	if got := *n.Get("vars").Get("aa").Int64; got != 11 {
		t.Errorf("mutating clone changed original: %d", got)
	}
}

func TestFromGoOrdered(t *testing.T) {
	v := yaml.MapSlice{
		{Key: "z", Value: "last?"},
		{Key: "a", Value: []any{int64(1), "two", true, nil}},
	}
	n, err := FromGo(v)
	if err != nil {
		t.Fatal(err)
	}
	if n.Fields[0] != "z" || n.Fields[1] != "a" {
		t.Errorf("mapping order not kept: %v", n.Fields)
	}
	arr := n.Get("a")
	if arr.Type != ArrayType || len(arr.Values) != 4 {
		t.Fatalf("array not converted: %v", arr)
	}
	wantTypes := []Type{NumberType, StringType, BoolType, NullType}
	for i, want := range wantTypes {
		if arr.Values[i].Type != want {
			t.Errorf("element %d has type %v, want %v", i, arr.Values[i].Type, want)
		}
	}
}

func TestFromGoUnsupported(t *testing.T) {
	if _, err := FromGo(struct{}{}); err == nil {
		t.Error("expected error for unsupported value")
	}
	if _, err := FromGo(yaml.MapSlice{{Key: 3, Value: "x"}}); err == nil {
		t.Error("expected error for non-string key")
	}
}

func TestStrings(t *testing.T) {
	if _, ok := FromSlice(nil).Strings(); ok {
		t.Error("empty array must not count as string list")
	}
	if _, ok := FromSlice([]*Node{FromString("a"), FromInt(1)}).Strings(); ok {
		t.Error("mixed array must not count as string list")
	}
	ss, ok := FromSlice([]*Node{FromString("a"), FromString("b")}).Strings()
	if !ok || len(ss) != 2 || ss[0] != "a" || ss[1] != "b" {
		t.Errorf("got %v, %v", ss, ok)
	}
}

func TestMarshalJSONOrder(t *testing.T) {
	n := Object().
		Set("z", FromString("v")).
		Set("a", FromSlice([]*Node{FromInt(1), FromFloat(1.5), FromBool(false), Null()}))
	d, err := n.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	want := `{"z":"v","a":[1,1.5,false,null]}`
	if string(d) != want {
		t.Errorf("got %s, want %s", d, want)
	}
}

func TestToGoRoundTrip(t *testing.T) {
	n := Object().Set("a", FromInt(1)).Set("b", FromSlice([]*Node{FromString("x")}))
	back, err := FromGo(n.ToGo())
	if err != nil {
		t.Fatal(err)
	}
	if !Equal(n, back) {
		t.Errorf("round trip changed node: %v vs %v", n, back)
	}
}
