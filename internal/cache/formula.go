package cache

import (
	"fmt"
	"io"

	"github.com/lighttime0/RSC/internal/diag"
	f "github.com/lighttime0/RSC/internal/formula"
)

// writeOperand ports Constant::serialize/Signature::serialize; a
// Variable operand panics via a contract violation exactly like the
// original's Variable::serialize, since a Variable is only meaningful
// within its originating Context's path and must never survive to a
// cache write (spec.md invariant I2) — every PathSummaryEntry.PC
// cached here has already passed through visit.VariableToValue and
// visit.RemoveLocals.
func writeOperand(w io.Writer, op f.Operand) error {
	switch o := op.(type) {
	case *f.Constant:
		if err := writeUint32(w, uint32(tagConstant)); err != nil {
			return err
		}
		return writeInt32(w, int32(o.I))
	case *f.Signature:
		if err := writeUint32(w, uint32(tagSignature)); err != nil {
			return err
		}
		return writeString(w, o.Sig)
	case *f.Variable:
		diag.Violate("cache: cannot serialize a Variable operand (%s)", o.String())
	}
	diag.Violate("cache: unknown operand type %T", op)
	return nil
}

func readOperand(r io.Reader, ctx *f.Context) (f.Operand, error) {
	tag, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	switch operandTag(tag) {
	case tagConstant:
		i, err := readInt32(r)
		if err != nil {
			return nil, err
		}
		return ctx.GetConstant(int64(i)), nil
	case tagSignature:
		s, err := readString(r)
		if err != nil {
			return nil, err
		}
		return ctx.GetSignature(s), nil
	}
	return nil, fmt.Errorf("cache: unknown operand tag %d", tag)
}

// writeFormula ports __Formula's per-subclass serialize methods.
func writeFormula(w io.Writer, ff f.Formula) error {
	switch n := ff.(type) {
	case f.True:
		return writeUint32(w, uint32(tagTrue))
	case f.False:
		return writeUint32(w, uint32(tagFalse))
	case *f.Conjunction:
		if err := writeUint32(w, uint32(tagConjunction)); err != nil {
			return err
		}
		if err := writeFormula(w, n.P); err != nil {
			return err
		}
		return writeFormula(w, n.Q)
	case *f.Disjunction:
		if err := writeUint32(w, uint32(tagDisjunction)); err != nil {
			return err
		}
		if err := writeFormula(w, n.P); err != nil {
			return err
		}
		return writeFormula(w, n.Q)
	case *f.Negation:
		if err := writeUint32(w, uint32(tagNegation)); err != nil {
			return err
		}
		return writeFormula(w, n.P)
	case *f.Atom:
		return writeAtom(w, n)
	}
	diag.Violate("cache: unknown formula type %T", ff)
	return nil
}

func writeAtom(w io.Writer, a *f.Atom) error {
	if a.Op == f.OpNone {
		if err := writeUint32(w, uint32(tagNamedAtom)); err != nil {
			return err
		}
		return writeString(w, a.Name)
	}
	tag, ok := atomTag(a.Op)
	if !ok {
		diag.Violate("cache: unknown atom operator %v", a.Op)
	}
	if a.LHS == nil || a.RHS == nil {
		diag.Violate("cache: relational atom missing an operand")
	}
	if err := writeUint32(w, uint32(tag)); err != nil {
		return err
	}
	if err := writeOperand(w, a.LHS); err != nil {
		return err
	}
	return writeOperand(w, a.RHS)
}

func atomTag(op f.AtomOp) (formulaTag, bool) {
	switch op {
	case f.OpEQ:
		return tagEQ, true
	case f.OpNE:
		return tagNE, true
	case f.OpLT:
		return tagLT, true
	case f.OpLE:
		return tagLE, true
	case f.OpGT:
		return tagGT, true
	case f.OpGE:
		return tagGE, true
	}
	return 0, false
}

func atomOp(tag formulaTag) (f.AtomOp, bool) {
	switch tag {
	case tagEQ:
		return f.OpEQ, true
	case tagNE:
		return f.OpNE, true
	case tagLT:
		return f.OpLT, true
	case tagLE:
		return f.OpLE, true
	case tagGT:
		return f.OpGT, true
	case tagGE:
		return f.OpGE, true
	}
	return 0, false
}

func readFormula(r io.Reader, ctx *f.Context) (f.Formula, error) {
	tag, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	switch formulaTag(tag) {
	case tagTrue:
		return f.GetTrue(ctx), nil
	case tagFalse:
		return f.GetFalse(ctx), nil
	case tagConjunction:
		p, err := readFormula(r, ctx)
		if err != nil {
			return nil, err
		}
		q, err := readFormula(r, ctx)
		if err != nil {
			return nil, err
		}
		return f.And(p, q), nil
	case tagDisjunction:
		p, err := readFormula(r, ctx)
		if err != nil {
			return nil, err
		}
		q, err := readFormula(r, ctx)
		if err != nil {
			return nil, err
		}
		return f.Or(p, q), nil
	case tagNegation:
		p, err := readFormula(r, ctx)
		if err != nil {
			return nil, err
		}
		return f.Not(p), nil
	case tagNamedAtom:
		name, err := readString(r)
		if err != nil {
			return nil, err
		}
		return f.NewNamedAtom(ctx, name), nil
	default:
		op, ok := atomOp(formulaTag(tag))
		if !ok {
			return nil, fmt.Errorf("cache: unknown formula tag %d", tag)
		}
		lhs, err := readOperand(r, ctx)
		if err != nil {
			return nil, err
		}
		rhs, err := readOperand(r, ctx)
		if err != nil {
			return nil, err
		}
		return f.NewAtom(ctx, op, lhs, rhs), nil
	}
}
