package cfgpath

import (
	"testing"

	f "github.com/lighttime0/RSC/internal/formula"
	"github.com/lighttime0/RSC/internal/solver"
	"github.com/lighttime0/RSC/ir"
)

// buildDiamond builds:
//
//	b0: cmp = p0 > 0; br cmp, b1, b2
//	b1: br b3               (unconditional)
//	b2: br b3               (unconditional)
//	b3: phi = [b1: 10, b2: 20]; return phi
func buildDiamond(t *testing.T) (*ir.Function, *f.Context, *ir.Phi) {
	t.Helper()
	i32 := ir.Integer{Bits: 32}
	p0 := ir.NewParam(1, "p", i32)

	fn := ir.NewFunction("diamond", []ir.Value{p0}, 4)
	fn.Connect(0, 1)
	fn.Connect(0, 2)
	fn.Connect(1, 3)
	fn.Connect(2, 3)

	b0, b1, b2, b3 := fn.Blocks[0], fn.Blocks[1], fn.Blocks[2], fn.Blocks[3]

	cmp := ir.NewICmp("cmp", b0, ir.ICmpGT, p0, ir.NewConst(0, i32))
	ir.NewBranch(b0, cmp)
	ir.NewBranch(b1, nil)
	ir.NewBranch(b2, nil)

	v1 := ir.NewConst(10, i32)
	v2 := ir.NewConst(20, i32)
	phi := ir.NewPhi("phi", i32, b3, v1, v2)
	ir.NewReturn(b3, phi)

	c := f.NewContext(fn)
	c.SetSolver(solver.NewBounded())
	return fn, c, phi
}

func TestNewGraphBuildsPredicatesAndPhiValues(t *testing.T) {
	fn, c, _ := buildDiamond(t)
	g := NewGraph(c, fn)

	if g.Exit == nil || g.Exit.BB != fn.Blocks[3] {
		t.Fatalf("exit vertex should be block 3")
	}
	if g.Branches != 1 {
		t.Errorf("Branches = %d, want 1", g.Branches)
	}

	b1ToB3 := findEdge(g, 1, 3)
	b2ToB3 := findEdge(g, 2, 3)
	if b1ToB3 == nil || b2ToB3 == nil {
		t.Fatalf("expected edges 1->3 and 2->3")
	}
	if len(b1ToB3.PhiValues) != 1 || len(b2ToB3.PhiValues) != 1 {
		t.Fatalf("expected exactly one phi tracked per incoming edge")
	}
}

func findEdge(g *Graph, from, to int) *Edge {
	for _, e := range g.Edges {
		if e.Source.BB == g.Fn.Blocks[from] && e.Target.BB == g.Fn.Blocks[to] {
			return e
		}
	}
	return nil
}

func TestCountFindsTwoSimplePaths(t *testing.T) {
	fn, c, _ := buildDiamond(t)
	g := NewGraph(c, fn)
	if got := g.Count(); got.Int64() != 2 {
		t.Errorf("Count() = %s, want 2", got)
	}
}

func TestEnumeratePathConditionsAndPhiResolution(t *testing.T) {
	fn, c, phi := buildDiamond(t)
	g := NewGraph(c, fn)

	type result struct {
		cond    string
		phiVal  ir.Value
		through *ir.BasicBlock
	}
	var got []result

	n := Enumerate(g, DefaultMaxPathsPerFunc, func(it *PathIterator) bool {
		blocks := it.BlockSet()
		var through *ir.BasicBlock
		for _, bb := range []*ir.BasicBlock{fn.Blocks[1], fn.Blocks[2]} {
			if blocks[bb] {
				through = bb
			}
		}
		got = append(got, result{
			cond:    it.PathCondition().String(),
			phiVal:  it.DeterminePhinode(phi),
			through: through,
		})
		return true
	})

	if n != 2 {
		t.Fatalf("Enumerate visited %d paths, want 2", n)
	}

	sawB1, sawB2 := false, false
	for _, r := range got {
		switch r.through {
		case fn.Blocks[1]:
			sawB1 = true
			if c, ok := r.phiVal.(*ir.Const); !ok || c.Int64 != 10 {
				t.Errorf("through b1: phi resolved to %v, want constant 10", r.phiVal)
			}
		case fn.Blocks[2]:
			sawB2 = true
			if c, ok := r.phiVal.(*ir.Const); !ok || c.Int64 != 20 {
				t.Errorf("through b2: phi resolved to %v, want constant 20", r.phiVal)
			}
		}
	}
	if !sawB1 || !sawB2 {
		t.Fatalf("expected one path through each branch, got %+v", got)
	}
}

type stubPurity struct{ pure bool }

func (s stubPurity) IsPure(*ir.Function) bool { return s.pure }

func TestSliceMarksOnlyThePhiAndReturnBlock(t *testing.T) {
	fn, c, _ := buildDiamond(t)
	g := NewGraph(c, fn)

	g.Slice(stubPurity{pure: false})

	for i, v := range g.Vertices {
		wantInSlice := i == 3
		if v.InSlice != wantInSlice {
			t.Errorf("vertex %d: InSlice = %v, want %v", i, v.InSlice, wantInSlice)
		}
		if v.SafeToInclude != !wantInSlice {
			t.Errorf("vertex %d: SafeToInclude = %v, want %v", i, v.SafeToInclude, !wantInSlice)
		}
	}
}

func TestReducePathsContractsSafeVertices(t *testing.T) {
	fn, c, _ := buildDiamond(t)
	g := NewGraph(c, fn)
	g.Slice(stubPurity{pure: false})
	g.ReducePaths()

	b0 := g.VertexOf(fn.Blocks[0])
	b3 := g.VertexOf(fn.Blocks[3])

	if len(b0.Out) != 2 {
		t.Fatalf("expected 2 direct edges out of entry after contraction, got %d", len(b0.Out))
	}
	for _, e := range b0.Out {
		if e.Target != b3 {
			t.Errorf("expected contracted edge to target exit vertex directly, got target bb=%v", e.Target.BB)
		}
	}
	if g.Count().Int64() != 2 {
		t.Errorf("Count() after reduction = %s, want 2", g.Count())
	}
}
