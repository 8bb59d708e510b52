package visit

import (
	"strings"

	f "github.com/lighttime0/RSC/internal/formula"
)

// RemoveLocals drops every atom that mentions no formal-parameter,
// global, or return-slot signature (i.e. no Signature operand
// containing "["), keeping only clauses that constrain externally
// visible state. A dropped atom surfaces as a nil Formula; And/Or
// absorb a nil child by returning the other child untouched.
//
// This is imprecise by construction — a clause like "[0] = {v} /\ {v}
// = 4" loses the connection between the return value and the local it
// was equated to, since the local-only half of the conjunction is
// dropped first. The original carries the same imprecision (and says
// so in its own comment); grounded on FormulaVisitor.cpp's
// RemoveLocals.
type RemoveLocals struct{ Base }

func (RemoveLocals) PostAtom(n *f.Atom) f.Formula {
	keep := false
	if lhs, ok := n.LHS.(*f.Signature); ok && strings.ContainsRune(lhs.Sig, '[') {
		keep = true
	}
	if rhs, ok := n.RHS.(*f.Signature); ok && strings.ContainsRune(rhs.Sig, '[') {
		keep = true
	}
	if !keep {
		return nil
	}
	return n
}

func (RemoveLocals) PostConj(n *f.Conjunction, p, q f.Formula) f.Formula {
	if p == nil {
		return q
	}
	if q == nil {
		return p
	}
	return n
}

func (RemoveLocals) PostDisj(n *f.Disjunction, p, q f.Formula) f.Formula {
	if p == nil {
		return q
	}
	if q == nil {
		return p
	}
	return n
}

func (RemoveLocals) PostNeg(n *f.Negation, p f.Formula) f.Formula {
	if p == nil {
		return nil
	}
	return n
}
