package formula

import (
	"fmt"

	"github.com/lighttime0/RSC/ir"
)

// Formula is a node in the QF-LIA formula DAG: True, False, an Atom,
// or a Conjunction/Disjunction/Negation over child Formulas. Formula
// values are not pointers to a common base in Go; instead every
// concrete node satisfies this interface, matching the original's
// __Formula subclasses.
type Formula interface {
	IsTrue() bool
	IsFalse() bool
	String() string
	Context() *Context
}

type base struct{ c *Context }

func (b base) Context() *Context { return b.c }
func (base) IsTrue() bool        { return false }
func (base) IsFalse() bool       { return false }

// True is the formula constant true.
type True struct{ base }

func (True) IsTrue() bool  { return true }
func (True) String() string { return "True" }

// GetTrue returns c's True node (one per Context, matching
// True::get).
func GetTrue(c *Context) Formula { return True{base{c}} }

// False is the formula constant false.
type False struct{ base }

func (False) IsFalse() bool  { return true }
func (False) String() string { return "False" }

func GetFalse(c *Context) Formula { return False{base{c}} }

// AtomOp is a QF-LIA relation, or OpNone for a nullary named
// (uninterpreted boolean) atom.
type AtomOp int

const (
	OpNone AtomOp = iota
	OpEQ
	OpNE
	OpLT
	OpLE
	OpGT
	OpGE
)

var opSymbol = [...]string{"", "=", "!=", "<", "<=", ">", ">="}

// Atom is a leaf formula: either a relation between two Operands, or a
// nullary named boolean (e.g. the condition of a call with no usable
// comparison form).
type Atom struct {
	base
	Op       AtomOp
	LHS, RHS Operand
	Name     string // set when Op == OpNone

	// V is the ir.Value this atom's condition was built from, when it
	// came from Context.GetAtomFor; nil for atoms built directly via
	// NewAtom/NewNamedAtom. internal/cfgpath's ResolvePhiNodes pass uses
	// it to recognize a ϕ-node used directly as a boolean condition.
	V ir.Value
}

func (a *Atom) String() string {
	if a.Op == OpNone {
		return a.Name
	}
	return fmt.Sprintf("(%s %s %s)", a.LHS.String(), opSymbol[a.Op], a.RHS.String())
}

// NewAtom builds a relational atom. Unlike Conjunction/Disjunction/
// Negation, atoms are not structurally deduplicated by GetAtomFor's
// caller; callers that want identity sharing go through
// Context.GetAtomFor.
func NewAtom(c *Context, op AtomOp, lhs, rhs Operand) Formula {
	return &Atom{base: base{c}, Op: op, LHS: lhs, RHS: rhs}
}

// NewNamedAtom builds a nullary named boolean atom.
func NewNamedAtom(c *Context, name string) Formula {
	return &Atom{base: base{c}, Op: OpNone, Name: name}
}

type Conjunction struct {
	base
	P, Q Formula
}

func (n *Conjunction) String() string { return fmt.Sprintf("(%s /\\ %s)", n.P, n.Q) }

type Disjunction struct {
	base
	P, Q Formula
}

func (n *Disjunction) String() string { return fmt.Sprintf("(%s \\/ %s)", n.P, n.Q) }

type Negation struct {
	base
	P Formula
}

func (n *Negation) String() string { return "~" + n.P.String() }

func sameContext(p, q Formula) {
	if p.Context() != q.Context() {
		violatef("cannot combine formulas from different Contexts")
	}
}

// And builds p /\ q, short-circuiting True/False exactly like the
// original's operator&&: it does NOT structurally intern the result,
// so two calls with equal p, q produce distinct (but semantically
// equal) Conjunction nodes, matching Formula.cpp.
func And(p, q Formula) Formula {
	if p == nil {
		return q
	}
	if q == nil {
		return p
	}
	sameContext(p, q)
	if p.IsFalse() || q.IsFalse() {
		return GetFalse(p.Context())
	}
	if p.IsTrue() {
		return q
	}
	if q.IsTrue() {
		return p
	}
	return &Conjunction{base{p.Context()}, p, q}
}

// Or builds p \/ q, short-circuiting True/False like operator||.
func Or(p, q Formula) Formula {
	if p == nil {
		return q
	}
	if q == nil {
		return p
	}
	sameContext(p, q)
	if p.IsTrue() || q.IsTrue() {
		return GetTrue(p.Context())
	}
	if p.IsFalse() {
		return q
	}
	if q.IsFalse() {
		return p
	}
	return &Disjunction{base{p.Context()}, p, q}
}

// Not builds ~p, short-circuiting True/False like operator!.
func Not(p Formula) Formula {
	if p == nil {
		return nil
	}
	if p.IsTrue() {
		return GetFalse(p.Context())
	}
	if p.IsFalse() {
		return GetTrue(p.Context())
	}
	return &Negation{base{p.Context()}, p}
}

// AndAll folds And over fs left to right, returning True for an empty
// slice.
func AndAll(c *Context, fs ...Formula) Formula {
	acc := GetTrue(c)
	for _, f := range fs {
		acc = And(acc, f)
	}
	return acc
}

// Distinct builds the pairwise-disequal formula over ops: for every
// i<j, ops[i] != ops[j], conjoined. The original's Z3_OP_DISTINCT
// parse case returns the loop-local last-constructed pairwise atom
// instead of the accumulated conjunction; see DESIGN.md, this
// implementation returns the full conjunction.
func Distinct(c *Context, ops ...Operand) Formula {
	p := Formula(GetTrue(c))
	for i := 0; i < len(ops); i++ {
		for j := i + 1; j < len(ops); j++ {
			p = And(p, NewAtom(c, OpNE, ops[i], ops[j]))
		}
	}
	return p
}
