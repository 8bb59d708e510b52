package cfgpath

import (
	f "github.com/lighttime0/RSC/internal/formula"
	"github.com/lighttime0/RSC/internal/visit"
	"github.com/lighttime0/RSC/ir"
)

// ResolvePhiNodes rewrites every atom bound to an IR ϕ-node,
// substituting the incoming value selected by edge's position on
// path, walking ϕ→ϕ chains until a non-ϕ value or a fixed point.
//
// Grounded on FormulaVisitor.{h,cpp}'s ResolvePhiNodes. It lives here
// rather than in internal/visit because it needs path_iterator's
// ϕ-resolution queries (PathIterator.Edge, PathIterator.DeterminePhinodeAt);
// putting it in internal/visit would make C2 depend on C3, inverting
// the dependency the original's own header already has backwards
// (FormulaVisitor.h includes PathIterator.h for this one pass). See
// DESIGN.md.
type ResolvePhiNodes struct {
	visit.Base
	ctx  *f.Context
	path *PathIterator
	edge *Edge
}

// NewResolvePhiNodes builds the pass for a single edge of a path
// walked by path (the edge whose condition is currently being
// rewritten).
func NewResolvePhiNodes(ctx *f.Context, path *PathIterator, edge *Edge) *ResolvePhiNodes {
	return &ResolvePhiNodes{ctx: ctx, path: path, edge: edge}
}

func (r *ResolvePhiNodes) PostAtom(n *f.Atom) f.Formula {
	atom := n

	if phi, ok := n.V.(*ir.Phi); ok {
		v := r.path.DeterminePhinodeAt(phi, r.edge)
		if v != nil {
			if c, ok := v.(*ir.Const); ok {
				switch c.Int64 {
				case 0:
					return f.GetFalse(r.ctx)
				case 1:
					return f.GetTrue(r.ctx)
				}
			}
			if a, ok := r.ctx.GetAtomFor(v).(*f.Atom); ok {
				atom = a
			}
		}
	}

	lhs := r.resolveOperand(atom.LHS)
	rhs := r.resolveOperand(atom.RHS)
	if lhs == atom.LHS && rhs == atom.RHS {
		return atom
	}
	return f.NewAtom(r.ctx, atom.Op, lhs, rhs)
}

// resolveOperand follows a Variable operand through a chain of ϕ
// instructions for as long as DeterminePhinodeAt keeps selecting a
// different, still-ϕ, incoming value.
func (r *ResolvePhiNodes) resolveOperand(op f.Operand) f.Operand {
	for {
		v, ok := op.(*f.Variable)
		if !ok || v.V == nil {
			return op
		}
		phi, ok := v.V.(*ir.Phi)
		if !ok {
			return op
		}
		val := r.path.DeterminePhinodeAt(phi, r.edge)
		if val == nil || val == v.V {
			return op
		}
		op = r.ctx.OperandFor(val)
	}
}

func (r *ResolvePhiNodes) PostConj(n *f.Conjunction, p, q f.Formula) f.Formula {
	if p == n.P && q == n.Q {
		return n
	}
	return f.And(p, q)
}

func (r *ResolvePhiNodes) PostDisj(n *f.Disjunction, p, q f.Formula) f.Formula {
	if p == n.P && q == n.Q {
		return n
	}
	return f.Or(p, q)
}

func (r *ResolvePhiNodes) PostNeg(n *f.Negation, p f.Formula) f.Formula {
	if p == n.P {
		return n
	}
	return f.Not(p)
}
