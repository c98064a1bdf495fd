package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/unfurl-format/unfurl/ir"
)

// testStage is a minimal stateful processor for engine tests. Its zero
// value is an identity stage.
type testStage struct {
	name      string
	item      *ir.Node
	finalPass bool

	// hooks, all optional
	additional func(item *ir.Node) []*ir.Node
	process    func(item *ir.Node) (Output, error)
	final      func() (Output, error)
}

func (s *testStage) Name() string {
	if s.name == "" {
		return "test"
	}
	return s.name
}

func (s *testStage) SetItem(item *ir.Node, pc *Context) {
	s.item = item
	s.finalPass = pc != nil && pc.FinalPass
}

func (s *testStage) AdditionalItems() []*ir.Node {
	if s.additional == nil || s.item == nil {
		return nil
	}
	return s.additional(s.item)
}

func (s *testStage) HandlesFinalPass() bool {
	return s.final != nil
}

func (s *testStage) Process() (Output, error) {
	if s.finalPass && s.final != nil {
		return s.final()
	}
	if s.process != nil {
		return s.process(s.item)
	}
	return One(s.item), nil
}

func strItems(ss ...string) []*ir.Node {
	res := make([]*ir.Node, len(ss))
	for i, s := range ss {
		res[i] = ir.FromString(s)
	}
	return res
}

func sinkStrings(t *testing.T, sink *MergeSink) []string {
	t.Helper()
	var res []string
	for _, n := range sink.Result() {
		if n.Type != ir.StringType {
			t.Fatalf("terminal item is not a string: %v", n)
		}
		res = append(res, n.String)
	}
	return res
}

func TestRunKeepsOrder(t *testing.T) {
	sink := NewMergeSink()
	err := New([]Processor{&testStage{}, &testStage{}}).Run(strItems("x", "y"), sink)
	if err != nil {
		t.Fatal(err)
	}
	got := sinkStrings(t, sink)
	if len(got) != 2 || got[0] != "x" || got[1] != "y" {
		t.Errorf("got %v, want [x y]", got)
	}
}

func TestEmptyChain(t *testing.T) {
	sink := NewMergeSink()
	if err := New(nil).Run(strItems("x"), sink); err != nil {
		t.Fatal(err)
	}
	if got := sinkStrings(t, sink); len(got) != 1 || got[0] != "x" {
		t.Errorf("got %v", got)
	}
}

func TestFanOut(t *testing.T) {
	double := &testStage{
		process: func(item *ir.Node) (Output, error) {
			return FromStream(NewSliceStream([]*ir.Node{
				ir.FromString(item.String + "1"),
				ir.FromString(item.String + "2"),
			})), nil
		},
	}
	sink := NewMergeSink()
	if err := New([]Processor{double, &testStage{}}).Run(strItems("a", "b"), sink); err != nil {
		t.Fatal(err)
	}
	got := sinkStrings(t, sink)
	want := []string{"a1", "a2", "b1", "b2"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestAdditionalItemsArePrepended(t *testing.T) {
	prepend := &testStage{
		additional: func(item *ir.Node) []*ir.Node {
			if item.String == "a" {
				return strItems("b", "c")
			}
			return nil
		},
	}
	sink := NewMergeSink()
	if err := New([]Processor{prepend}).Run(strItems("a", "z"), sink); err != nil {
		t.Fatal(err)
	}
	got := sinkStrings(t, sink)
	want := []string{"a", "b", "c", "z"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestRunawayReAdd(t *testing.T) {
	// Re-adding the current item keeps the queue length constant, so the
	// cumulative splice count has to trip the guard.
	readd := &testStage{
		additional: func(item *ir.Node) []*ir.Node {
			return []*ir.Node{item}
		},
		process: func(item *ir.Node) (Output, error) {
			return Output{}, nil
		},
	}
	err := New([]Processor{readd}, WithQueueCap(16)).Run(strItems("a"), NewMergeSink())
	if !errors.Is(err, ErrRunawayExpansion) {
		t.Errorf("got %v, want ErrRunawayExpansion", err)
	}
}

func TestRunawaySplice(t *testing.T) {
	burst := &testStage{
		additional: func(item *ir.Node) []*ir.Node {
			return strItems(make([]string, 32)...)
		},
	}
	err := New([]Processor{burst}, WithQueueCap(16)).Run(strItems("a"), NewMergeSink())
	if !errors.Is(err, ErrRunawayExpansion) {
		t.Errorf("got %v, want ErrRunawayExpansion", err)
	}
}

func TestDropTerminatesBranch(t *testing.T) {
	drop := &testStage{
		process: func(item *ir.Node) (Output, error) {
			if item.String == "skip" {
				return Output{}, nil
			}
			return One(item), nil
		},
	}
	sink := NewMergeSink()
	if err := New([]Processor{drop}).Run(strItems("keep", "skip"), sink); err != nil {
		t.Fatal(err)
	}
	if got := sinkStrings(t, sink); len(got) != 1 || got[0] != "keep" {
		t.Errorf("got %v, want [keep]", got)
	}
}

func TestFinalPassFlush(t *testing.T) {
	var seen []*ir.Node
	collect := &testStage{
		process: func(item *ir.Node) (Output, error) {
			seen = append(seen, item)
			return Output{}, nil
		},
		final: func() (Output, error) {
			return One(ir.FromSlice(seen)), nil
		},
	}
	sink := NewMergeSink()
	if err := New([]Processor{collect}).Run(strItems("a", "b"), sink); err != nil {
		t.Fatal(err)
	}
	res := sink.Result()
	if len(res) != 1 {
		t.Fatalf("got %d terminal items, want 1", len(res))
	}
	if !ir.Equal(res[0], ir.FromSlice(strItems("a", "b"))) {
		t.Errorf("flushed %v", res[0])
	}
}

func TestFinalPassStreamFansOut(t *testing.T) {
	flush := &testStage{
		process: func(item *ir.Node) (Output, error) {
			return Output{}, nil
		},
		final: func() (Output, error) {
			return FromStream(NewSliceStream(strItems("f1", "f2"))), nil
		},
	}
	suffix := &testStage{
		process: func(item *ir.Node) (Output, error) {
			return One(ir.FromString(item.String + "!")), nil
		},
	}
	sink := NewMergeSink()
	if err := New([]Processor{flush, suffix}).Run(strItems("a"), sink); err != nil {
		t.Fatal(err)
	}
	got := sinkStrings(t, sink)
	want := []string{"f1!", "f2!"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFinalPassSkipsStatelessStages(t *testing.T) {
	calls := 0
	counting := &testStage{
		process: func(item *ir.Node) (Output, error) {
			calls++
			return One(item), nil
		},
	}
	if err := New([]Processor{counting}).Run(strItems("a"), NewMergeSink()); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("stateless stage ran %d times, want 1", calls)
	}
}

func TestErrorCarriesOrigin(t *testing.T) {
	boom := errors.New("boom")
	failing := &testStage{
		name: "failing",
		process: func(item *ir.Node) (Output, error) {
			return Output{}, boom
		},
	}
	err := New([]Processor{failing}).Run(strItems("the-item"), NewMergeSink())
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want wrapped boom", err)
	}
	for _, want := range []string{"the-item", "failing"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestProcessorsSeeClones(t *testing.T) {
	orig := ir.Object().Set("a", ir.FromInt(1))
	mutate := &testStage{
		process: func(item *ir.Node) (Output, error) {
			item.Set("a", ir.FromInt(99))
			return One(item), nil
		},
	}
	if err := New([]Processor{mutate}).Run([]*ir.Node{orig}, NewMergeSink()); err != nil {
		t.Fatal(err)
	}
	if got := *orig.Get("a").Int64; got != 1 {
		t.Errorf("input item was mutated: a=%d", got)
	}
}

func TestExtendSink(t *testing.T) {
	sink := NewExtendSink()
	sink.OnStart()
	if err := sink.OnItem(ir.FromSlice(strItems("a", "b"))); err != nil {
		t.Fatal(err)
	}
	if err := sink.OnItem(ir.FromSlice(strItems("c"))); err != nil {
		t.Fatal(err)
	}
	if got := len(sink.Result()); got != 3 {
		t.Errorf("got %d elements, want 3", got)
	}
	if err := sink.OnItem(ir.FromString("not an array")); !errors.Is(err, ErrConfigFormat) {
		t.Errorf("got %v, want ErrConfigFormat", err)
	}
}

type testSymbol struct {
	built []*ir.Node
}

func (s *testSymbol) Name() string { return "stub" }

func (s *testSymbol) Instance(params *ir.Node) (Processor, error) {
	s.built = append(s.built, params)
	return &testStage{name: "stub"}, nil
}

func TestFactorySink(t *testing.T) {
	sym := &testSymbol{}
	sink := NewFactorySink(NewRegistry(sym))

	desc := ir.Object().
		Set("processor", ir.Object().Set("type", ir.FromString("stub"))).
		Set("init", ir.Object().Set("param", ir.FromInt(1)))
	if err := sink.OnItem(desc); err != nil {
		t.Fatal(err)
	}
	if len(sink.Result()) != 1 || len(sym.built) != 1 {
		t.Fatalf("chain %d, built %d", len(sink.Result()), len(sym.built))
	}
	if sym.built[0] == nil || !sym.built[0].Has("param") {
		t.Errorf("init params not passed: %v", sym.built[0])
	}

	bad := []*ir.Node{
		ir.FromString("not a mapping"),
		ir.Object().Set("init", ir.Object()),
		ir.Object().Set("processor", ir.Object()),
		ir.Object().Set("processor", ir.Object().Set("type", ir.FromString("nope"))),
	}
	for i, item := range bad {
		if err := sink.OnItem(item); !errors.Is(err, ErrConfigFormat) {
			t.Errorf("descriptor %d: got %v, want ErrConfigFormat", i, err)
		}
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry(&testSymbol{})
	if _, ok := reg.Lookup("stub"); !ok {
		t.Error("stub not registered")
	}
	if _, ok := reg.Lookup("nope"); ok {
		t.Error("lookup of unknown symbol succeeded")
	}
	if names := reg.Names(); len(names) != 1 || names[0] != "stub" {
		t.Errorf("Names() = %v", names)
	}
}
