package summary

import (
	"testing"

	"github.com/lighttime0/RSC/internal/cfgpath"
	f "github.com/lighttime0/RSC/internal/formula"
	"github.com/lighttime0/RSC/internal/ptrsig"
	"github.com/lighttime0/RSC/internal/solver"
	"github.com/lighttime0/RSC/ir"
)

// predefinedUnary builds a one-entry Summary for a single-argument
// refcount primitive ("[1]" += amount, returns void), standing in for
// the kref family of spec.md §4.8 without pulling in internal/predefined.
func predefinedUnary(name string, amount int) *Summary {
	s := New(name, nil)
	s.Entries = []*PathSummaryEntry{{
		PC:  f.True{},
		Ops: RefcountOps{"[1]": NewOperation("[1]", amount, name)},
		Ret: "[0]",
	}}
	return s
}

func TestMergeSkipsTrivialGetPutCancellation(t *testing.T) {
	i32 := ir.Integer{Bits: 32}
	p0 := ir.NewParam(1, "p", i32)
	fn := ir.NewFunction("demo", []ir.Value{p0}, 1)
	b0 := fn.Blocks[0]

	ir.NewCall("r1", nil, b0, nil, "get", p0)
	ir.NewCall("r2", nil, b0, nil, "put", p0)
	ir.NewReturn(b0, nil)

	ctx := f.NewContext(fn)
	ctx.SetSolver(solver.NewBounded())
	g := cfgpath.NewGraph(ctx, fn)

	base := NewBase()
	base.PutPredefined("get", predefinedUnary("get", 1))
	base.PutPredefined("put", predefinedUnary("put", -1))

	s := New("demo", fn)
	n := cfgpath.Enumerate(g, cfgpath.DefaultMaxPathsPerFunc, func(it *cfgpath.PathIterator) bool {
		for _, e := range BuildEntries(ctx, g, it, base, DefaultMaxSubcasesPerPath) {
			s.Merge(ctx, e)
		}
		return true
	})
	if n != 1 {
		t.Fatalf("Enumerate visited %d paths, want 1", n)
	}

	if len(s.Entries) != 0 {
		t.Fatalf("get/put cancellation should leave no entries (trivial skip), got %d: %+v", len(s.Entries), s.Entries)
	}
	if !s.IsPure() {
		t.Errorf("demo should be pure after get/put cancel")
	}
}

func TestBuildEntriesCancelsOppositeDeltas(t *testing.T) {
	i32 := ir.Integer{Bits: 32}
	p0 := ir.NewParam(1, "p", i32)
	fn := ir.NewFunction("demo2", []ir.Value{p0}, 1)
	b0 := fn.Blocks[0]

	ir.NewCall("r1", nil, b0, nil, "get", p0)
	ir.NewCall("r2", nil, b0, nil, "put", p0)
	ir.NewReturn(b0, nil)

	ctx := f.NewContext(fn)
	ctx.SetSolver(solver.NewBounded())
	g := cfgpath.NewGraph(ctx, fn)

	base := NewBase()
	base.PutPredefined("get", predefinedUnary("get", 1))
	base.PutPredefined("put", predefinedUnary("put", -1))

	it := cfgpath.Begin(g)
	entries := BuildEntries(ctx, g, it, base, DefaultMaxSubcasesPerPath)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if !e.PC.IsTrue() {
		t.Errorf("PC = %v, want True (no branches)", e.PC)
	}
	if op, ok := e.Ops["[1]"]; !ok || op.Amount != 0 {
		t.Errorf("Ops[\"[1]\"] = %+v, want amount 0", e.Ops["[1]"])
	}
	if e.Ret != "[0]" {
		t.Errorf("Ret = %q, want [0] (void function)", e.Ret)
	}
}

func TestInstantiateRewritesFormalsAndCollapsesContainerOf(t *testing.T) {
	i32 := ir.Integer{Bits: 32}
	p0 := ir.NewParam(1, "p", i32)
	fn := ir.NewFunction("caller", []ir.Value{p0}, 1)
	b0 := fn.Blocks[0]
	call := ir.NewCall("r", nil, b0, nil, "wrap_get", p0)

	ctx := f.NewContext(fn)
	ctx.SetSolver(solver.NewBounded())
	path := cfgpath.Begin(cfgpath.NewGraph(ctx, fn))
	ptrSigs := ptrsig.New(ctx, fn, path)

	callee := New("wrap_get", nil)
	callee.Entries = []*PathSummaryEntry{{
		PC:  f.True{},
		Ops: RefcountOps{"[1].-f": NewOperation("[1].-f", 1, "wrap_get")},
		Ret: "[0]",
	}}

	out := instantiate(ctx, callee, call, ptrSigs)
	if len(out) != 1 {
		t.Fatalf("got %d instantiated entries, want 1", len(out))
	}
	// [1] substitutes to p0's own signature ("[1]" in caller's own
	// formal-parameter numbering too, since p0 is caller's sole
	// argument); ".-f" then ".f" would cancel if chained, but here it's
	// a single container-of hop onto the substituted actual so it
	// should survive uncollapsed.
	op, ok := out[0].Ops["[1].-f"]
	if !ok || op.Amount != 1 {
		t.Errorf("Ops = %+v, want single entry \"[1].-f\" amount 1", out[0].Ops)
	}
}

func TestCollapseContainerOfCancelsAdjacentPair(t *testing.T) {
	cases := []struct{ in, want string }{
		{"[1].-f.f", "[1]"},
		{"[1].f.-f", "[1]"},
		{"[1].f", "[1].f"},
		{"[1]", "[1]"},
	}
	for _, c := range cases {
		if got := collapseContainerOf(c.in); got != c.want {
			t.Errorf("collapseContainerOf(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestMergeRoutesInconsistentEntryToDropped(t *testing.T) {
	fn := ir.NewFunction("branchy", nil, 1)
	ctx := f.NewContext(fn)
	ctx.SetSolver(solver.NewBounded())

	s := New("branchy", fn)
	first := &PathSummaryEntry{
		PC:  f.GetTrue(ctx),
		Ops: RefcountOps{"[1]": NewOperation("[1]", 1, "a")},
		Ret: "[0]",
	}
	second := &PathSummaryEntry{
		PC:  f.GetTrue(ctx),
		Ops: RefcountOps{"[1]": NewOperation("[1]", -1, "b")},
		Ret: "[0]",
	}

	s.Merge(ctx, first)
	if len(s.Entries) != 1 {
		t.Fatalf("first entry should be kept, got %d entries", len(s.Entries))
	}

	s.Merge(ctx, second)
	if len(s.Entries) != 1 || len(s.Dropped) != 1 {
		t.Fatalf("conflicting entry under an always-true condition should be dropped: entries=%d dropped=%d", len(s.Entries), len(s.Dropped))
	}
	if len(s.Tainted) == 0 {
		t.Errorf("expected a tainted signature to be recorded")
	}
}

func TestMergeFoldsSameCaseIntoDisjunction(t *testing.T) {
	fn := ir.NewFunction("samecase", nil, 1)
	ctx := f.NewContext(fn)
	ctx.SetSolver(solver.NewBounded())

	s := New("samecase", fn)
	ops := RefcountOps{"[1]": NewOperation("[1]", 1, "a")}
	first := &PathSummaryEntry{PC: f.GetTrue(ctx), ExactPC: f.GetTrue(ctx), Ops: ops, Ret: "[0]"}
	second := &PathSummaryEntry{PC: f.GetTrue(ctx), ExactPC: f.GetTrue(ctx), Ops: ops, Ret: "[0]"}

	s.Merge(ctx, first)
	s.Merge(ctx, second)
	if len(s.Entries) != 1 {
		t.Fatalf("same-case entries should fold into one, got %d", len(s.Entries))
	}
	if len(s.Dropped) != 0 {
		t.Errorf("no entry should be dropped for a same-case fold, got %d", len(s.Dropped))
	}
}

func TestQueryFindsReleaseAndAcquire(t *testing.T) {
	s := New("q", nil)
	s.Entries = []*PathSummaryEntry{
		{PC: f.True{}, Ops: RefcountOps{"[1]": NewOperation("[1]", -1, "h")}, Ret: "[0]"},
	}
	if !MayRelease(s, "[1]") {
		t.Errorf("MayRelease should be true for a -1 delta")
	}
	if MayAcquire(s, "[1]") {
		t.Errorf("MayAcquire should be false when every delta is negative")
	}
	if Query(nil, "[1]", true) {
		t.Errorf("Query on a nil Summary must report false")
	}
}
