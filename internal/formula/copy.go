package formula

// OperandSub rewrites an Operand while DeepCopy-ing a Formula into a
// (possibly different) Context, e.g. substituting a callee's "[k]"
// Signature with the caller's actual-argument signature (spec.md
// §4.6 callee instantiation). Returning nil leaves the operand
// unchanged, reinterned into dst.
type OperandSub func(dst *Context, op Operand) Operand

// DeepCopy rebuilds f into dst, applying sub to every Operand it
// encounters. Grounded on Formula.cpp's deep_copy family: Constant and
// Signature operands may be copied (freshly interned in dst after
// substitution); a bare Variable may never be copied, matching the
// original's `assert(0 && "Variables cannot be copied!")` — copying a
// formula containing an unresolved Variable is a contract violation,
// since a Variable only makes sense bound to its original Context's
// ir.Value lifetime.
func DeepCopy(dst *Context, f Formula, sub OperandSub) Formula {
	switch n := f.(type) {
	case True:
		return GetTrue(dst)
	case False:
		return GetFalse(dst)
	case *Atom:
		if n.Op == OpNone {
			return NewNamedAtom(dst, n.Name)
		}
		return NewAtom(dst, n.Op, copyOperand(dst, n.LHS, sub), copyOperand(dst, n.RHS, sub))
	case *Conjunction:
		return And(DeepCopy(dst, n.P, sub), DeepCopy(dst, n.Q, sub))
	case *Disjunction:
		return Or(DeepCopy(dst, n.P, sub), DeepCopy(dst, n.Q, sub))
	case *Negation:
		return Not(DeepCopy(dst, n.P, sub))
	}
	violatef("unknown formula node type %T", f)
	return nil
}

func copyOperand(dst *Context, op Operand, sub OperandSub) Operand {
	if sub != nil {
		if r := sub(dst, op); r != nil {
			return r
		}
	}
	switch o := op.(type) {
	case *Constant:
		return dst.GetConstant(o.I)
	case *Signature:
		return dst.GetSignature(o.Sig)
	case *Variable:
		violatef("cannot deep-copy a Variable operand (%s): variables are not transferable across Contexts", o.String())
	}
	violatef("unknown operand type %T", op)
	return nil
}
