package formula

import (
	"strconv"
	"strings"

	"github.com/lighttime0/RSC/ir"
)

// Context is the operand and formula pool for one function's analysis
// (spec.md §3 invariant I1: every Operand and Formula node is interned
// within exactly one Context; composing nodes from two Contexts is a
// contract violation). Grounded on Formula.h's Context / Formula.cpp's
// Context::get_*.
type Context struct {
	Func *ir.Function

	constants  map[int64]*Constant
	variables  map[ir.Value]*Variable
	byName     map[string]*Variable
	signatures map[string]*Signature

	atomsByValue map[ir.Value]Formula
	atomsByName  map[string]Formula

	pathID   int
	pathTree map[int]int // new path -> old path, root path 0 -> -1

	solver Solver
}

// NewContext creates an empty Context for fn. fn may be nil for
// Contexts built purely to hold instantiated summaries (spec.md §4.6),
// which never mint fresh Variables.
func NewContext(fn *ir.Function) *Context {
	c := &Context{
		Func:         fn,
		constants:    make(map[int64]*Constant),
		variables:    make(map[ir.Value]*Variable),
		byName:       make(map[string]*Variable),
		signatures:   make(map[string]*Signature),
		atomsByValue: make(map[ir.Value]Formula),
		atomsByName:  make(map[string]Formula),
		pathTree:     map[int]int{0: -1},
	}
	return c
}

// GetConstant interns the integer literal i.
func (c *Context) GetConstant(i int64) *Constant {
	if op, ok := c.constants[i]; ok {
		return op
	}
	op := &Constant{I: i}
	c.constants[i] = op
	return op
}

// GetVariable interns the Variable standing for v, printed as
// "<v.Name()>" exactly like the original's Variable::print.
func (c *Context) GetVariable(v ir.Value) *Variable {
	if op, ok := c.variables[v]; ok {
		return op
	}
	op := &Variable{V: v, Name: v.Name()}
	c.variables[v] = op
	c.byName["<"+op.Name+">"] = op
	return op
}

// GetSignature interns the Signature string sig.
func (c *Context) GetSignature(sig string) *Signature {
	if op, ok := c.signatures[sig]; ok {
		return op
	}
	op := &Signature{Sig: sig}
	c.signatures[sig] = op
	return op
}

// GetOperand parses sig as one of: an integer literal, a "<name>"
// variable reference, or a bare signature string, matching
// Context::get_operand(const std::string&).
func (c *Context) GetOperand(sig string) Operand {
	if i, err := strconv.ParseInt(sig, 10, 64); err == nil {
		return c.GetConstant(i)
	}
	if strings.HasPrefix(sig, "<") && strings.HasSuffix(sig, ">") {
		if v, ok := c.byName[sig]; ok {
			return v
		}
		return c.GetSignature(sig) // unresolved placeholder, kept literal
	}
	return c.GetSignature(sig)
}

// GetAtomFor returns the (possibly cached) atom for an ir.Value that
// represents a boolean condition: an ICmp lowers to a relational atom,
// anything else lowers to a nullary named atom keyed by v.Name().
func (c *Context) GetAtomFor(v ir.Value) Formula {
	if f, ok := c.atomsByValue[v]; ok {
		return f
	}
	var f Formula
	if icmp, ok := v.(*ir.ICmp); ok {
		f = NewAtom(c, icmpOp(icmp.Op), c.operandOf(icmp.X), c.operandOf(icmp.Y))
	} else {
		f = NewNamedAtom(c, v.Name())
		if v.Name() != "" {
			c.atomsByName[v.Name()] = f
		}
	}
	f.(*Atom).V = v
	c.atomsByValue[v] = f
	return f
}

// GetAtomByName looks up a previously created named atom. Violates the
// contract (spec.md §7 kind 4) if name was never registered.
func (c *Context) GetAtomByName(name string) Formula {
	if f, ok := c.atomsByName[name]; ok {
		return f
	}
	violatef("attempt to get an atom by unknown name %q", name)
	return nil
}

// OperandFor converts an arbitrary ir.Value to the Operand that
// represents it (a Constant for an integer literal, a Variable
// otherwise), matching Context::get_operand(llvm::Value*). Used by
// internal/cfgpath's ResolvePhiNodes when a ϕ chain resolves to a
// concrete incoming value outside of an atom's own lhs/rhs.
func (c *Context) OperandFor(v ir.Value) Operand { return c.operandOf(v) }

func (c *Context) operandOf(v ir.Value) Operand {
	switch vv := v.(type) {
	case *ir.Const:
		return c.GetConstant(vv.Int64)
	default:
		return c.GetVariable(v)
	}
}

func icmpOp(op ir.ICmpOp) AtomOp {
	switch op {
	case ir.ICmpEQ:
		return OpEQ
	case ir.ICmpNE:
		return OpNE
	case ir.ICmpLT:
		return OpLT
	case ir.ICmpLE:
		return OpLE
	case ir.ICmpGT:
		return OpGT
	case ir.ICmpGE:
		return OpGE
	}
	violatef("unknown ICmpOp %d", op)
	return OpEQ
}

// SwitchPathID records the path currently being analyzed, and
// CopyPath records that newID's state was forked from oldID's, used
// by ptrsig's per-path overlay to walk lineage back to a base value
// (spec.md §4.4 "Multipath" / val.go's frameValState chain).
func (c *Context) SwitchPathID(id int)          { c.pathID = id }
func (c *Context) CopyPath(oldID, newID int)    { c.pathTree[newID] = oldID }
func (c *Context) PathID() int                  { return c.pathID }
func (c *Context) ParentPath(id int) (int, bool) {
	p, ok := c.pathTree[id]
	return p, ok && p != -1
}
