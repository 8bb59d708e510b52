// Package visit implements the formula visitor/rewriter framework
// (spec.md §4.2... folded into §4.1's formula algebra) and the
// concrete passes built on it: PrintTree, VariableToValue,
// RangeToConstant, RemoveLocals.
//
// Grounded on
// _examples/original_source/code/src/{include,lib}/FormulaVisitor.{h,cpp},
// adapted to Go's embedding-based override idiom in place of C++
// virtual methods (the same idiom used by rtcheck/rewrite.go's
// callback-driven Rewrite, generalized here to pre/mid/post hooks per
// node kind since a single callback isn't enough to thread
// conjunction/disjunction state the way RangeToConstant needs).
package visit

import f "github.com/lighttime0/RSC/internal/formula"

// Visitor is implemented by every pass. Concrete passes embed Base and
// override only the hooks they need; Base's defaults reproduce the
// original's default virtual method bodies (return F unchanged).
type Visitor interface {
	Initialize(root f.Formula)
	Finalize(result f.Formula)

	PreTrue(n f.Formula) f.Formula
	PostTrue(n f.Formula) f.Formula
	PreFalse(n f.Formula) f.Formula
	PostFalse(n f.Formula) f.Formula
	PreAtom(n *f.Atom) f.Formula
	PostAtom(n *f.Atom) f.Formula
	PreConj(n *f.Conjunction) f.Formula
	MidConj(n *f.Conjunction, p f.Formula) f.Formula
	PostConj(n *f.Conjunction, p, q f.Formula) f.Formula
	PreDisj(n *f.Disjunction) f.Formula
	MidDisj(n *f.Disjunction, p f.Formula) f.Formula
	PostDisj(n *f.Disjunction, p, q f.Formula) f.Formula
	PreNeg(n *f.Negation) f.Formula
	PostNeg(n *f.Negation, p f.Formula) f.Formula
}

// Base supplies identity default implementations of every hook, so a
// concrete pass need only override the handful it cares about.
type Base struct{}

func (Base) Initialize(f.Formula)                             {}
func (Base) Finalize(f.Formula)                                {}
func (Base) PreTrue(n f.Formula) f.Formula                     { return n }
func (Base) PostTrue(n f.Formula) f.Formula                    { return n }
func (Base) PreFalse(n f.Formula) f.Formula                    { return n }
func (Base) PostFalse(n f.Formula) f.Formula                   { return n }
func (Base) PreAtom(n *f.Atom) f.Formula                       { return n }
func (Base) PostAtom(n *f.Atom) f.Formula                      { return n }
func (Base) PreConj(n *f.Conjunction) f.Formula                { return n }
func (Base) MidConj(n *f.Conjunction, p f.Formula) f.Formula   { return p }
func (Base) PostConj(n *f.Conjunction, p, q f.Formula) f.Formula { return n }
func (Base) PreDisj(n *f.Disjunction) f.Formula                { return n }
func (Base) MidDisj(n *f.Disjunction, p f.Formula) f.Formula   { return p }
func (Base) PostDisj(n *f.Disjunction, p, q f.Formula) f.Formula { return n }
func (Base) PreNeg(n *f.Negation) f.Formula                    { return n }
func (Base) PostNeg(n *f.Negation, p f.Formula) f.Formula      { return n }

// Walk applies v to root, mirroring FormulaVisitor::visit: a nil root
// (matching the original's Formula() == NULL) is treated as True,
// Initialize/Finalize bracket the traversal, and every node is
// visited pre-order then its post hook run after its children
// (conjunction/disjunction get a mid hook between left and right
// child, used by RangeToConstant to swap its working set).
func Walk(ctx *f.Context, v Visitor, root f.Formula) f.Formula {
	if root == nil {
		root = f.GetTrue(ctx)
	}
	v.Initialize(root)
	result := walkAux(v, root)
	v.Finalize(result)
	return result
}

func walkAux(v Visitor, n f.Formula) f.Formula {
	var intermediate f.Formula

	switch x := n.(type) {
	case f.True:
		intermediate = v.PreTrue(x)
	case f.False:
		intermediate = v.PreFalse(x)
	case *f.Atom:
		intermediate = v.PreAtom(x)
	case *f.Conjunction:
		intermediate = v.PreConj(x)
	case *f.Disjunction:
		intermediate = v.PreDisj(x)
	case *f.Negation:
		intermediate = v.PreNeg(x)
	default:
		panic("visit: unknown formula node type")
	}

	switch x := intermediate.(type) {
	case f.True:
		return v.PostTrue(x)
	case f.False:
		return v.PostFalse(x)
	case *f.Atom:
		return v.PostAtom(x)
	case *f.Conjunction:
		p := v.MidConj(x, walkAux(v, x.P))
		q := walkAux(v, x.Q)
		return v.PostConj(x, p, q)
	case *f.Disjunction:
		p := v.MidDisj(x, walkAux(v, x.P))
		q := walkAux(v, x.Q)
		return v.PostDisj(x, p, q)
	case *f.Negation:
		p := walkAux(v, x.P)
		return v.PostNeg(x, p)
	default:
		panic("visit: unknown formula node type")
	}
}
