package cfgpath

import (
	"strings"

	"golang.org/x/tools/container/intsets"

	f "github.com/lighttime0/RSC/internal/formula"
	"github.com/lighttime0/RSC/ir"
)

// Purity answers whether fn is known pure (spec.md: "every entry's ops
// is empty"). Slice uses it to prune calls to pure callees from the
// backward-dependency worklist. Implemented by internal/summary's SCC
// driver over the summary base; cfgpath never imports internal/summary
// to provide this itself, which would invert the dependency direction
// spec.md's layering calls for (C3 is below C6).
type Purity interface {
	IsPure(fn *ir.Function) bool
}

// Slice marks each vertex's InSlice bit: a vertex is in-slice iff an
// instruction it contains is, transitively via backward value
// dependencies, reachable from the return or from a non-pure call.
// SafeToInclude is set to the complement. Optional reduction pass
// (spec.md §4.3); the caller decides whether to run it before
// enumerating paths.
func (g *Graph) Slice(purity Purity) {
	for _, v := range g.Vertices {
		v.InSlice = false
	}

	var worklist []ir.Value
	visited := make(map[ir.Value]bool)
	push := func(v ir.Value) {
		if v == nil || visited[v] {
			return
		}
		visited[v] = true
		worklist = append(worklist, v)
	}

	if g.RetInst != nil {
		push(g.RetInst)
	}
	for _, bb := range g.Fn.Blocks {
		for _, inst := range bb.Instrs {
			switch x := inst.(type) {
			case *ir.Phi:
				push(x)
			case *ir.Call:
				if x.Callee == nil || !purity.IsPure(x.Callee) {
					push(x)
				}
			}
		}
	}

	for len(worklist) > 0 {
		v := worklist[0]
		worklist = worklist[1:]
		inst, ok := v.(ir.Instruction)
		if !ok {
			continue
		}
		g.VertexOf(inst.Block()).InSlice = true
		for _, op := range ir.Operands(inst) {
			push(op)
		}
	}

	for _, v := range g.Vertices {
		v.SafeToInclude = !v.InSlice
	}
}

func buildUsers(fn *ir.Function) map[ir.Value][]ir.Instruction {
	users := make(map[ir.Value][]ir.Instruction)
	for _, bb := range fn.Blocks {
		for _, inst := range bb.Instrs {
			for _, op := range ir.Operands(inst) {
				users[op] = append(users[op], inst)
			}
		}
	}
	return users
}

func isIntrinsicCall(name string) bool { return strings.HasPrefix(name, "llvm.") }

func structResult(inst ir.Instruction) bool {
	t := inst.Type()
	return t != nil && t.Kind() == ir.TStruct
}

// MarkInclusionSafety is the alternative, finer-grained reduction pass
// to Slice: a vertex is SafeToInclude iff it has both a predecessor
// and a successor, and every instruction in it is pure, local (no use
// outside the block), or a side-effect-free memory op whose result
// isn't struct-typed. Vertices reachable backward from the return, or
// whose value feeds a comparison, or that choose a ϕ incoming value,
// are additionally marked unsafe, since excluding them would change
// the path condition or the resolved ϕ value.
func (g *Graph) MarkInclusionSafety(purity Purity) {
	users := buildUsers(g.Fn)

	for _, v := range g.Vertices {
		if len(v.In) == 0 || len(v.Out) == 0 {
			v.SafeToInclude = false
			continue
		}
		safe := true
	instrs:
		for _, inst := range v.BB.Instrs {
			force := false
			if call, ok := inst.(*ir.Call); ok {
				switch {
				case call.Callee == nil:
					force = true
				case isIntrinsicCall(call.CalleeName):
				case purity.IsPure(call.Callee):
				default:
					force = true
				}
			}

			local := true
			for _, u := range users[inst] {
				if u.Block() != v.BB {
					local = false
					break
				}
			}
			if local {
				continue
			}

			switch inst.(type) {
			case *ir.GetElementPtr, *ir.Load, *ir.Store, *ir.Cast, *ir.Call:
			default:
				continue
			}

			if force || structResult(inst) {
				safe = false
				break instrs
			}
		}
		v.SafeToInclude = safe
	}

	var worklist []ir.Value
	visited := make(map[ir.Value]bool)
	push := func(v ir.Value) {
		if v == nil || visited[v] {
			return
		}
		visited[v] = true
		worklist = append(worklist, v)
	}
	if g.RetInst != nil {
		push(g.RetInst)
	}
	for len(worklist) > 0 {
		v := worklist[0]
		worklist = worklist[1:]
		inst, ok := v.(ir.Instruction)
		if !ok {
			continue
		}
		g.VertexOf(inst.Block()).SafeToInclude = false
		for _, u := range users[v] {
			if _, ok := u.(*ir.ICmp); ok {
				g.VertexOf(u.Block()).SafeToInclude = false
			}
		}
		if phi, ok := inst.(*ir.Phi); ok {
			for i, incoming := range phi.Edges {
				g.VertexOf(phi.Block().Preds[i]).SafeToInclude = false
				if _, isConst := incoming.(*ir.Const); !isConst {
					push(incoming)
				}
			}
			continue
		}
		for _, op := range ir.Operands(inst) {
			push(op)
		}
	}
}

// ReducePaths contracts every SafeToInclude vertex with both a
// predecessor and a successor: for each (inEdge, outEdge) pair
// incident on it, a new edge (inEdge.Source, outEdge.Target) is
// created (or, if an equivalent edge already exists with the same ϕ
// selections, its condition is disjoined instead of duplicating it).
// Requires a solver configured on g.Ctx, since merging conditions
// calls formula.DeepSimplify.
func (g *Graph) ReducePaths() {
	for _, v := range g.Vertices {
		if !v.SafeToInclude || len(v.In) == 0 || len(v.Out) == 0 {
			continue
		}

		inEdges := append([]*Edge(nil), v.In...)
		outEdges := append([]*Edge(nil), v.Out...)

		for _, e := range inEdges {
			e.Source.Out = removeEdge(e.Source.Out, e)
		}
		for _, e := range outEdges {
			e.Target.In = removeEdge(e.Target.In, e)
		}
		v.In, v.Out = nil, nil

		for _, in := range inEdges {
			for _, out := range outEdges {
				g.connectEdge(in, out)
			}
		}
	}
}

func removeEdge(edges []*Edge, target *Edge) []*Edge {
	out := edges[:0]
	for _, e := range edges {
		if e != target {
			out = append(out, e)
		}
	}
	return out
}

func (g *Graph) connectEdge(e1, e2 *Edge) {
	source, target := e1.Source, e2.Target

	var merged *Edge
	for _, e := range source.Out {
		if e.Target != target {
			continue
		}
		consistent := true
		for phi, bv := range e1.PhiValues {
			if other, ok := e.PhiValues[phi]; ok && !other.Equals(bv) {
				consistent = false
				break
			}
		}
		for phi, bv := range e2.PhiValues {
			if other, ok := e.PhiValues[phi]; ok && !other.Equals(bv) {
				consistent = false
				break
			}
		}
		if consistent {
			merged = e
			break
		}
	}

	if merged != nil {
		tmp := &intsets.Sparse{}
		tmp.Copy(e1.DominatedEdges)
		tmp.UnionWith(e2.DominatedEdges)
		merged.DominatedEdges.IntersectionWith(tmp)
		merged.Cond = f.DeepSimplify(f.Or(merged.Cond, f.And(e1.Cond, e2.Cond)))
	} else {
		merged = g.addEdge(source, target)
		merged.DominatedEdges = &intsets.Sparse{}
		merged.DominatedEdges.Copy(e1.DominatedEdges)
		merged.DominatedEdges.UnionWith(e2.DominatedEdges)
		merged.Cond = f.And(e1.Cond, e2.Cond)
	}

	if merged.PhiValues == nil {
		merged.PhiValues = make(map[*ir.Phi]*intsets.Sparse)
	}
	for _, src := range []*Edge{e1, e2} {
		for phi, bv := range src.PhiValues {
			dst, ok := merged.PhiValues[phi]
			if !ok {
				dst = &intsets.Sparse{}
				merged.PhiValues[phi] = dst
			}
			dst.UnionWith(bv)
		}
	}
}
