package solver

import (
	"fmt"
	"strconv"

	f "github.com/lighttime0/RSC/internal/formula"
)

// liftOperand re-lifts a numeral or symbol s-expression to an
// Operand: a numeral becomes a Constant, a declared symbol is looked
// up through env back to its original signature/variable text.
func liftOperand(ctx *f.Context, env *smtlibEnv, s *sexpr) (f.Operand, error) {
	if !s.isAtom() {
		// (- n): SMT-LIB2's negative-numeral form.
		if len(s.Children) == 2 && s.Children[0].Sym == "-" {
			inner, err := liftOperand(ctx, env, s.Children[1])
			if err != nil {
				return nil, err
			}
			if c, ok := inner.(*f.Constant); ok {
				return ctx.GetConstant(-c.I), nil
			}
		}
		return nil, fmt.Errorf("solver: cannot lift compound operand %v", s)
	}
	if n, err := strconv.ParseInt(s.Sym, 10, 64); err == nil {
		return ctx.GetConstant(n), nil
	}
	if orig, ok := env.origOf[s.Sym]; ok {
		return ctx.GetOperand(orig), nil
	}
	return nil, fmt.Errorf("solver: unknown symbol %q in solver output", s.Sym)
}

// liftFormula re-lifts a solver S-expression to a Formula, per the
// grammar spec.md names: TRUE/FALSE, n-ary AND/OR (fold into binary),
// NOT, EQ (n-ary, as l=r1 ∧ l=r2 ∧ …), DISTINCT (pairwise ≠),
// LE/LT/GE/GT, numerals, string-or-int symbols (looked up in the atom
// table; otherwise become constants/signatures).
func liftFormula(ctx *f.Context, env *smtlibEnv, s *sexpr) (f.Formula, error) {
	if s.isAtom() {
		switch s.Sym {
		case "true":
			return f.GetTrue(ctx), nil
		case "false":
			return f.GetFalse(ctx), nil
		}
		if orig, ok := env.origOf[s.Sym]; ok {
			return ctx.GetAtomByName(orig), nil
		}
		return nil, fmt.Errorf("solver: unknown boolean symbol %q", s.Sym)
	}

	if len(s.Children) == 0 {
		return nil, fmt.Errorf("solver: empty list in solver output")
	}
	head := s.Children[0].Sym
	args := s.Children[1:]

	switch head {
	case "true":
		return f.GetTrue(ctx), nil
	case "false":
		return f.GetFalse(ctx), nil
	case "and":
		acc := f.Formula(f.GetTrue(ctx))
		for _, a := range args {
			child, err := liftFormula(ctx, env, a)
			if err != nil {
				return nil, err
			}
			acc = f.And(acc, child)
		}
		return acc, nil
	case "or":
		acc := f.Formula(f.GetFalse(ctx))
		for _, a := range args {
			child, err := liftFormula(ctx, env, a)
			if err != nil {
				return nil, err
			}
			acc = f.Or(acc, child)
		}
		return acc, nil
	case "not":
		if len(args) != 1 {
			return nil, fmt.Errorf("solver: `not` expects 1 argument, got %d", len(args))
		}
		child, err := liftFormula(ctx, env, args[0])
		if err != nil {
			return nil, err
		}
		return f.Not(child), nil
	case "=":
		ops, err := liftOperands(ctx, env, args)
		if err != nil {
			return nil, err
		}
		acc := f.Formula(f.GetTrue(ctx))
		for i := 1; i < len(ops); i++ {
			acc = f.And(acc, f.NewAtom(ctx, f.OpEQ, ops[0], ops[i]))
		}
		return acc, nil
	case "distinct":
		ops, err := liftOperands(ctx, env, args)
		if err != nil {
			return nil, err
		}
		return f.Distinct(ctx, ops...), nil
	case "<", "<=", ">", ">=":
		if len(args) != 2 {
			return nil, fmt.Errorf("solver: `%s` expects 2 arguments, got %d", head, len(args))
		}
		l, err := liftOperand(ctx, env, args[0])
		if err != nil {
			return nil, err
		}
		r, err := liftOperand(ctx, env, args[1])
		if err != nil {
			return nil, err
		}
		return f.NewAtom(ctx, relOp(head), l, r), nil
	}
	return nil, fmt.Errorf("solver: unknown operator %q in solver output", head)
}

func liftOperands(ctx *f.Context, env *smtlibEnv, args []*sexpr) ([]f.Operand, error) {
	ops := make([]f.Operand, len(args))
	for i, a := range args {
		op, err := liftOperand(ctx, env, a)
		if err != nil {
			return nil, err
		}
		ops[i] = op
	}
	return ops, nil
}

func relOp(sym string) f.AtomOp {
	switch sym {
	case "<":
		return f.OpLT
	case "<=":
		return f.OpLE
	case ">":
		return f.OpGT
	case ">=":
		return f.OpGE
	}
	panic("solver: unreachable relOp " + sym)
}
