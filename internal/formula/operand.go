// Package formula implements the QF-LIA formula algebra: interned
// operands and formula DAG nodes owned by a per-function Context, with
// smart constructors that fold True/False during construction and an
// abstract Solver boundary for simplification and satisfiability.
//
// Grounded on _examples/original_source/code/src/{include,lib}/Formula.{h,cpp}.
package formula

import (
	"fmt"

	"github.com/lighttime0/RSC/ir"
)

// Operand is a leaf value in a Formula: an integer constant, a
// session-local variable tied to an ir.Value, or a signature string
// (the grammar of spec.md §3: "[k]", "s.f", "s.-f", "[G]", "{x@F}",
// integer literals, "<v>").
type Operand interface {
	isOperand()
	String() string
}

// Constant is an interned integer literal.
type Constant struct {
	I int64
}

func (*Constant) isOperand()        {}
func (c *Constant) String() string {
	if c.I >= 0 && c.I < 10 {
		return fmt.Sprintf("%d", c.I)
	}
	return fmt.Sprintf("0x%x", c.I)
}

// Variable is interned per ir.Value within one Context and is never
// serialized (spec.md invariant I2): it stands for a program value
// that only makes sense within the function currently being analyzed.
type Variable struct {
	V    ir.Value
	Name string // printed as "<name>", matching the original's Variable::print
}

func (*Variable) isOperand()       {}
func (v *Variable) String() string { return "<" + v.Name + ">" }

// Signature is an interned symbolic path-agnostic name: a formal
// parameter ("[k]"), a field projection ("s.f"), a container-of walk
// ("s.-f"), a global ("[G]"), an escaped local ("{x@F}"), or a
// placeholder awaiting resolution ("<v>" before a Variable is
// substituted in).
type Signature struct {
	Sig string
}

func (*Signature) isOperand()       {}
func (s *Signature) String() string { return s.Sig }
