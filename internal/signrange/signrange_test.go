package signrange

import (
	"testing"

	"github.com/lighttime0/RSC/internal/cfgpath"
	f "github.com/lighttime0/RSC/internal/formula"
	"github.com/lighttime0/RSC/internal/solver"
	"github.com/lighttime0/RSC/ir"
)

func TestIntersectsNarrowsSignComponent(t *testing.T) {
	cases := []struct {
		a, b, want Range
	}{
		{NonnegRange(), NonposRange(), Exactly(0)},
		{NonnegRange(), NegativeRange(), EmptyRange()},
		{PositiveRange(), NonzeroRange(), PositiveRange()},
		{AnyRange(), NegativeRange(), NegativeRange()},
		{Exactly(3), PositiveRange(), Exactly(3)},
		{Exactly(-3), PositiveRange(), EmptyRange()},
		{Exactly(5), Exactly(5), Exactly(5)},
		{Exactly(5), Exactly(6), EmptyRange()},
	}
	for _, c := range cases {
		if got := c.a.Intersects(c.b); got != c.want {
			t.Errorf("%v.Intersects(%v) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestUnionsWidensToNamedRange(t *testing.T) {
	if got := NonnegRange().Unions(Exactly(3)); got != NonnegRange() {
		t.Errorf("Nonneg.Unions(3) = %v, want Nonneg (superset, not narrowed to 3)", got)
	}
	if got := PositiveRange().Unions(NegativeRange()); got != NonzeroRange() {
		t.Errorf("Positive.Unions(Negative) = %v, want Nonzero", got)
	}
	if got := Exactly(2).Unions(Exactly(2)); got != Exactly(2) {
		t.Errorf("2.Unions(2) = %v, want 2", got)
	}
	if got := Exactly(2).Unions(Exactly(3)); got != AnyRange() {
		t.Errorf("2.Unions(3) = %v, want Any", got)
	}
}

func TestNegatesComplements(t *testing.T) {
	if NonnegRange().Negates() != NegativeRange() {
		t.Errorf("Nonneg.Negates() != Negative")
	}
	if Exactly(0).Negates() != NonzeroRange() {
		t.Errorf("0.Negates() != Nonzero")
	}
	if Exactly(5).Negates() != NonposRange() {
		t.Errorf("5.Negates() != Nonpos")
	}
}

// buildBranch builds:
//
//	b0: cmp = p0 < 0; br cmp, b1, b2
//	b1: br b3
//	b2: br b3
//	b3: phi = [b1: -1, b2: 7]; return phi
func buildBranch(t *testing.T) (*ir.Function, *f.Context) {
	t.Helper()
	i32 := ir.Integer{Bits: 32}
	p0 := ir.NewParam(1, "p", i32)

	fn := ir.NewFunction("signtest", []ir.Value{p0}, 4)
	fn.Connect(0, 1)
	fn.Connect(0, 2)
	fn.Connect(1, 3)
	fn.Connect(2, 3)
	b0, b1, b2, b3 := fn.Blocks[0], fn.Blocks[1], fn.Blocks[2], fn.Blocks[3]

	cmp := ir.NewICmp("cmp", b0, ir.ICmpLT, p0, ir.NewConst(0, i32))
	ir.NewBranch(b0, cmp)
	ir.NewBranch(b1, nil)
	ir.NewBranch(b2, nil)

	v1 := ir.NewConst(-1, i32)
	v2 := ir.NewConst(7, i32)
	phi := ir.NewPhi("phi", i32, b3, v1, v2)
	ir.NewReturn(b3, phi)

	c := f.NewContext(fn)
	c.SetSolver(solver.NewBounded())
	return fn, c
}

func TestICmpNarrowsParamOnTakenBranch(t *testing.T) {
	fn, c := buildBranch(t)
	g := cfgpath.NewGraph(c, fn)

	n := cfgpath.Enumerate(g, cfgpath.DefaultMaxPathsPerFunc, func(it *cfgpath.PathIterator) bool {
		blocks := it.BlockSet()
		a := New(fn, it)
		if blocks[fn.Blocks[1]] {
			if got := a.Signature(fn.Blocks[0].Instrs[0].(*ir.ICmp).X); got != NegativeRange() {
				t.Errorf("through b1 (cmp taken): Signature(p0) = %v, want Negative", got)
			}
		} else if blocks[fn.Blocks[2]] {
			if got := a.Signature(fn.Blocks[0].Instrs[0].(*ir.ICmp).X); got != NonnegRange() {
				t.Errorf("through b2 (cmp not taken): Signature(p0) = %v, want Nonneg", got)
			}
		}
		return true
	})
	if n != 2 {
		t.Fatalf("Enumerate visited %d paths, want 2", n)
	}
}
