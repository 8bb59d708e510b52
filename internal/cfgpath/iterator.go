package cfgpath

import (
	"math/big"

	"golang.org/x/tools/container/intsets"

	"github.com/lighttime0/RSC/internal/cfgraph"
	f "github.com/lighttime0/RSC/internal/formula"
	"github.com/lighttime0/RSC/internal/visit"
	"github.com/lighttime0/RSC/ir"
)

// DefaultMaxPathsPerFunc is the hard per-function enumeration cap of
// spec.md §4.6 ("max-path-per-func", default 100).
const DefaultMaxPathsPerFunc = 100

// PathIterator walks g one simple entry-to-exit path at a time. The
// zero value is not usable; construct with Begin.
//
// path is kept index-0-first in entry-to-exit order: path[0] is the
// current search frontier (the edge whose source is closest to
// entry), and path[len(path)-1] is the edge into the exit vertex —
// the same orientation PathIterator.cpp gets from always push_front'ing
// the next edge toward entry.
type PathIterator struct {
	G    *Graph
	path []*Edge

	pathbv   *intsets.Sparse
	domEdges *intsets.Sparse
}

// Begin constructs the first simple path of g (or an immediately-done
// iterator if g has no exit, or its exit has no predecessors).
func Begin(g *Graph) *PathIterator {
	it := &PathIterator{G: g, pathbv: &intsets.Sparse{}, domEdges: &intsets.Sparse{}}

	if len(g.Vertices) == 1 {
		it.path = []*Edge{nil}
		return it
	}
	if g.Exit == nil || len(g.Exit.In) == 0 {
		return it
	}

	it.addToPath(g.Exit.In[0])
	if !it.fillPath() {
		it.path = nil
		return it
	}
	if !it.isFeasiblePath() {
		it.Next()
	}
	return it
}

// Done reports whether iteration has finished (no more simple paths).
func (it *PathIterator) Done() bool { return len(it.path) == 0 }

// Next advances to the next simple path; ok is false once iteration is
// exhausted (mirrors path_iterator::operator++, whose return value the
// caller only ever tests via !=end()).
func (it *PathIterator) Next() bool {
	if len(it.G.Vertices) == 1 {
		it.path = nil
		return false
	}
	for {
		if !it.switchEdge() || !it.fillPath() {
			it.path = nil
			return false
		}
		if it.isFeasiblePath() {
			return true
		}
	}
}

func (it *PathIterator) addToPath(e *Edge) {
	np := make([]*Edge, 0, len(it.path)+1)
	np = append(np, e)
	it.path = append(np, it.path...)
	it.pathbv.Insert(e.ID)
}

func (it *PathIterator) removeFromPath() *Edge {
	e := it.path[0]
	it.path = it.path[1:]
	it.pathbv.Remove(e.ID)
	return e
}

func (it *PathIterator) canAdd(e *Edge) bool {
	return !it.pathbv.Has(e.ID) && !e.SelfLoop
}

// switchEdge pops the frontier edge and tries the next admissible
// sibling entering the same vertex, continuing to pop on exhaustion.
func (it *PathIterator) switchEdge() bool {
	for {
		if len(it.path) == 0 {
			return false
		}
		e := it.removeFromPath()
		siblings := e.Target.In
		idx := indexOfEdge(siblings, e) + 1
		for idx < len(siblings) && !it.canAdd(siblings[idx]) {
			idx++
		}
		if idx < len(siblings) {
			it.addToPath(siblings[idx])
			return true
		}
	}
}

// fillPath prepends, at each step, the first admissible in-edge of the
// current frontier's source, until the frontier reaches entry.
func (it *PathIterator) fillPath() bool {
	entry := it.G.Vertices[0]
	for it.path[0].Source != entry {
		head := it.path[0]
		found := false
		for _, e := range head.Source.In {
			if !it.canAdd(e) {
				continue
			}
			it.addToPath(e)
			found = true
			break
		}
		if found {
			continue
		}
		if !it.switchEdge() {
			return false
		}
	}

	it.domEdges = &intsets.Sparse{}
	for _, e := range it.path {
		it.domEdges.UnionWith(e.DominatedEdges)
	}
	return true
}

// isFeasiblePath is the placeholder of spec.md §9: unconditionally
// true. Feasibility is enforced later, by a solver CheckSAT call on
// the fully-built PathCondition (spec.md §4.6), not here.
func (it *PathIterator) isFeasiblePath() bool { return f.IsFeasiblePath(nil) }

// PathCondition folds the conjunction of each edge's condition, first
// rewriting ϕ-node atoms against the edge's incoming selection via
// ResolvePhiNodes, then deep-simplifying. Requires a solver configured
// on g.Ctx.
func (it *PathIterator) PathCondition() f.Formula {
	pc := f.Formula(f.GetTrue(it.G.Ctx))
	for _, e := range it.path {
		if e == nil {
			continue
		}
		rpn := NewResolvePhiNodes(it.G.Ctx, it, e)
		pc = f.And(pc, visit.Walk(it.G.Ctx, rpn, e.Cond))
	}
	return f.DeepSimplify(pc)
}

// DeterminePhinode returns the incoming value of phi if exactly one
// incoming index is selected by some edge in the current path,
// otherwise nil.
func (it *PathIterator) DeterminePhinode(phi *ir.Phi) ir.Value {
	if len(it.path) == 0 {
		return nil
	}
	parent := phi.Block()
	var ret ir.Value
	for i, predBB := range parent.Preds {
		var edge *Edge
		for _, e := range it.G.Edges[:it.G.NrOriginalEdges] {
			if e.Source.BB == predBB && e.Target.BB == parent {
				edge = e
				break
			}
		}
		if edge == nil || !it.domEdges.Has(edge.ID) {
			continue
		}
		if ret != nil {
			return nil
		}
		ret = phi.Edges[i]
	}
	return ret
}

// DeterminePhinodeAt walks the path backward from edge, consulting
// phi_values at each step; if it selects a unique incoming index, the
// chain is followed (handling ϕ→ϕ) until a non-ϕ value is found.
func (it *PathIterator) DeterminePhinodeAt(phi *ir.Phi, edge *Edge) ir.Value {
	if phi == nil || edge == nil {
		return nil
	}
	start := indexOfEdge(it.path, edge)
	if start < 0 {
		return nil
	}
	cur := phi
	for i := start; i >= 0; i-- {
		e := it.path[i]
		if e == nil {
			continue
		}
		for {
			bv, ok := e.PhiValues[cur]
			if !ok || bv.Len() != 1 {
				break
			}
			v := cur.Edges[bv.Min()]
			next, isPhi := v.(*ir.Phi)
			if !isPhi || next == cur {
				return v
			}
			cur = next
		}
	}
	return nil
}

// TruePreds and FalsePreds return the underlying ir.Values of every
// branch condition taken on the current path in its asserted (resp.
// negated) sense — the same split internal/signrange's fixpoint engine
// revisits after the path's basic blocks converge (spec.md §4.5,
// "predicates asserted true on the path, then ... false").
// Unconditional edges and conditions not bound to an ir.Value (atoms
// built directly, not via Context.GetAtomFor) are skipped.
func (it *PathIterator) TruePreds() []ir.Value  { return it.preds(false) }
func (it *PathIterator) FalsePreds() []ir.Value { return it.preds(true) }

func (it *PathIterator) preds(negated bool) []ir.Value {
	var vs []ir.Value
	for _, e := range it.path {
		if e == nil {
			continue
		}
		switch c := e.Cond.(type) {
		case *f.Atom:
			if !negated && c.V != nil {
				vs = append(vs, c.V)
			}
		case *f.Negation:
			if a, ok := c.P.(*f.Atom); ok && negated && a.V != nil {
				vs = append(vs, a.V)
			}
		}
	}
	return vs
}

// BlockSet returns the set of blocks enclosed by the current path (via
// path_dominated_edges), or every block in the function if iteration
// hasn't started.
func (it *PathIterator) BlockSet() map[*ir.BasicBlock]bool {
	set := make(map[*ir.BasicBlock]bool)
	if len(it.path) == 0 {
		for _, bb := range it.G.Fn.Blocks {
			set[bb] = true
		}
		return set
	}
	set[it.G.Vertices[0].BB] = true
	if len(it.G.Vertices) <= 1 {
		return set
	}
	for _, e := range it.path {
		if e == nil {
			continue
		}
		for _, bit := range e.DominatedEdges.AppendTo(nil) {
			set[it.G.Edges[bit].Target.BB] = true
		}
		set[e.Target.BB] = true
	}
	return set
}

// predGraph presents g's predecessor relation (Vertex.In) as a
// cfgraph.Graph rooted at the exit, so Count can reuse
// internal/cfgraph's traversal instead of hand-rolling a second DFS:
// in this view, a node's cfgraph "successors" are its path-graph
// predecessors, so a post-order numbering from the exit visits every
// vertex only after all of its predecessors have been counted.
type predGraph struct{ g *Graph }

func (p predGraph) NumNodes() int { return len(p.g.Vertices) }

func (p predGraph) Out(i int) []int {
	in := p.g.Vertices[i].In
	ids := make([]int, len(in))
	for j, e := range in {
		ids[j] = e.Source.ID
	}
	return ids
}

// Count approximates the number of simple paths through g by a DAG
// count that treats back edges as absent (spec.md §4.3, "used only
// for reporting"): call before any reduction pass for the unreduced
// count, or after for the reduced one. Built over cfgraph.PostOrder
// rather than a bespoke traversal, matching the original's own
// count_internal, which is a DFS over in-edges with a visited bitset.
// Returned as *big.Int, following rtcheck's own LockSet bitmask
// convention for counts that can outgrow a machine word on
// pathological CFGs (a branch-dense function's DAG path count grows
// as 2^branches).
func (g *Graph) Count() *big.Int {
	total := big.NewInt(0)
	if g.Exit == nil {
		return total
	}
	order := cfgraph.PostOrder(predGraph{g}, g.Exit.ID)
	counts := make([]*big.Int, len(g.Vertices))
	for _, id := range order {
		v := g.Vertices[id]
		if len(v.In) == 0 {
			counts[id] = big.NewInt(1)
			continue
		}
		sum := big.NewInt(0)
		for _, e := range v.In {
			sum.Add(sum, counts[e.Source.ID])
		}
		counts[id] = sum
	}
	return counts[g.Exit.ID]
}

// NrBranches is the number of conditional-branch vertices in g.
func (g *Graph) NrBranches() int { return g.Branches }

// Enumerate walks up to maxPaths simple paths of g, calling visit for
// each; it stops early if visit returns false. Returns the number of
// paths visited. maxPaths should be DefaultMaxPathsPerFunc unless the
// caller has an explicit override (spec.md §4.6 "max-path-per-func").
func Enumerate(g *Graph, maxPaths int, visit func(*PathIterator) bool) int {
	it := Begin(g)
	n := 0
	for !it.Done() && n < maxPaths {
		n++
		if !visit(it) {
			break
		}
		it.Next()
	}
	return n
}

func indexOfEdge(edges []*Edge, target *Edge) int {
	for i, e := range edges {
		if e == target {
			return i
		}
	}
	return -1
}
