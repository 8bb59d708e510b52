// Package cfgpath builds the per-function simple-path enumerator of
// spec.md §4.3 (C3): a reduced CFG over ir.BasicBlocks, annotated with
// branch conditions and ϕ-node incoming-value bitsets, walked one
// simple entry-to-exit path at a time.
//
// Grounded on
// _examples/original_source/code/src/{include,lib}/PathIterator.{h,cpp},
// with vertex/edge bookkeeping built over internal/cfgraph instead of
// llvm::BitVector, and golang.org/x/tools/container/intsets.Sparse in
// place of llvm::BitVector for the edge-id and path bitsets (both are
// sparse int sets; Sparse is the teacher pack's analogue already
// required by go.mod via golang.org/x/tools).
package cfgpath

import (
	"golang.org/x/tools/container/intsets"

	f "github.com/lighttime0/RSC/internal/formula"
	"github.com/lighttime0/RSC/ir"
)

// Vertex is one basic block in the path graph.
type Vertex struct {
	ID  int
	BB  *ir.BasicBlock
	In  []*Edge
	Out []*Edge

	InSlice       bool
	SafeToInclude bool
}

// Edge is one CFG successor relationship, possibly merged with others
// by ReducePaths (in which case it stands for more than one original
// edge, tracked via DominatedEdges).
type Edge struct {
	ID     int
	Source *Vertex
	Target *Vertex

	Cond f.Formula

	// DominatedEdges is the set of original edge ids this edge's
	// inclusion in a path forces along with it (itself, plus any
	// contracted-away edges folded into it by ReducePaths).
	DominatedEdges *intsets.Sparse

	// PhiValues[phi] has bit i set when incoming index i of phi is
	// selected by taking this edge (several indices collapse onto the
	// same bit when they carry the same incoming value, matching
	// PathIterator.cpp's constructor).
	PhiValues map[*ir.Phi]*intsets.Sparse

	SelfLoop bool
}

// Graph is the vertex/edge model path_iterator builds once per
// function and then repeatedly walks.
type Graph struct {
	Ctx *f.Context
	Fn  *ir.Function

	Vertices []*Vertex
	Exit     *Vertex
	RetInst  *ir.Return
	Edges    []*Edge

	// NrOriginalEdges is len(Edges) immediately after construction,
	// before any contraction by ReducePaths; dominated-edge bitsets are
	// sized to this and contraction never grows them.
	NrOriginalEdges int
	Branches        int

	bbIndex map[*ir.BasicBlock]int
}

// NewGraph builds the path graph for fn, rooted at fn.Entry(). c is
// used to intern branch-condition atoms via GetAtomFor.
func NewGraph(c *f.Context, fn *ir.Function) *Graph {
	g := &Graph{
		Ctx:     c,
		Fn:      fn,
		bbIndex: make(map[*ir.BasicBlock]int, len(fn.Blocks)),
	}

	for i, bb := range fn.Blocks {
		v := &Vertex{ID: i, BB: bb}
		g.Vertices = append(g.Vertices, v)
		g.bbIndex[bb] = i
		for _, inst := range bb.Instrs {
			if ri, ok := inst.(*ir.Return); ok {
				g.Exit = v
				g.RetInst = ri
			}
		}
	}
	for _, bb := range fn.Blocks {
		v := g.Vertices[g.bbIndex[bb]]
		for _, succ := range bb.Succs {
			g.addEdge(v, g.Vertices[g.bbIndex[succ]])
		}
	}
	g.NrOriginalEdges = len(g.Edges)

	g.buildPredicates()
	g.buildPhiValues()

	for _, e := range g.Edges {
		e.DominatedEdges = &intsets.Sparse{}
		e.DominatedEdges.Insert(e.ID)
	}

	return g
}

func (g *Graph) addEdge(from, to *Vertex) *Edge {
	e := &Edge{
		ID:       len(g.Edges),
		Source:   from,
		Target:   to,
		Cond:     f.GetTrue(g.Ctx),
		SelfLoop: from == to,
	}
	from.Out = append(from.Out, e)
	to.In = append(to.In, e)
	g.Edges = append(g.Edges, e)
	return e
}

// buildPredicates attaches a branch's condition atom (resp. its
// negation) to the outgoing edge of its true (resp. false) successor.
// Blocks terminated by anything else (unconditional branch, switch,
// return) keep the default True condition on their out-edges.
func (g *Graph) buildPredicates() {
	for _, bb := range g.Fn.Blocks {
		v := g.Vertices[g.bbIndex[bb]]
		if len(bb.Instrs) == 0 {
			continue
		}
		br, ok := bb.Instrs[len(bb.Instrs)-1].(*ir.Branch)
		if !ok || br.Cond == nil {
			continue
		}
		cond := g.Ctx.GetAtomFor(br.Cond)
		addPredicate := func(succIdx int, atom f.Formula) {
			target := g.Vertices[g.bbIndex[bb.Succs[succIdx]]]
			for _, e := range v.Out {
				if e.Target == target {
					e.Cond = atom
					return
				}
			}
		}
		addPredicate(0, cond)
		addPredicate(1, f.Not(cond))
		g.Branches++
	}
}

// buildPhiValues records, per ϕ instruction and per incoming edge,
// which incoming index that edge selects, deduping indices that carry
// the identical incoming value onto the earliest such index (matching
// PathIterator.cpp's constructor phi-node loop).
func (g *Graph) buildPhiValues() {
	for _, bb := range g.Fn.Blocks {
		v := g.Vertices[g.bbIndex[bb]]
		for _, inst := range bb.Instrs {
			phi, ok := inst.(*ir.Phi)
			if !ok {
				continue
			}
			for i, val := range phi.Edges {
				idx := i
				for j := 0; j < i; j++ {
					if phi.Edges[j] == val {
						idx = j
						break
					}
				}
				predBB := bb.Preds[i]
				for _, e := range v.In {
					if e.Source.BB != predBB {
						continue
					}
					if e.PhiValues == nil {
						e.PhiValues = make(map[*ir.Phi]*intsets.Sparse)
					}
					bv, ok := e.PhiValues[phi]
					if !ok {
						bv = &intsets.Sparse{}
						e.PhiValues[phi] = bv
					}
					bv.Insert(idx)
					break
				}
			}
		}
	}
}

// VertexOf returns the vertex for bb.
func (g *Graph) VertexOf(bb *ir.BasicBlock) *Vertex { return g.Vertices[g.bbIndex[bb]] }
