package visit

import (
	"fmt"
	"strings"

	f "github.com/lighttime0/RSC/internal/formula"
	"github.com/lighttime0/RSC/ir"
)

// VariableToValue replaces each Variable operand with the symbolic
// signature text pointer-signature inference (internal/ptrsig) has
// computed for the underlying ir.Value, via SigMap. When EndOfPath is
// set (the path condition is being finalized rather than an
// intermediate per-instruction constraint), any Variable or
// "<v>"-embedding Signature left unresolved by SigMap is escaped into
// a local-scoped signature "{name@func}" (spec.md §3 grammar) instead
// of being left as a bare variable reference, since a Variable must
// never survive into a serialized summary (invariant I2).
//
// Grounded on FormulaVisitor.cpp's VariableToValue.
type VariableToValue struct {
	Base
	Ctx      *f.Context
	SigMap   map[ir.Value]string
	FuncName string
	EndOfPath bool
}

func (vv *VariableToValue) updateOperand(op f.Operand) f.Operand {
	if v, ok := op.(*f.Variable); ok {
		if sig, ok := vv.SigMap[v.V]; ok {
			op = vv.Ctx.GetOperand(sig)
		}
	}

	if !vv.EndOfPath {
		return op
	}

	if v, ok := op.(*f.Variable); ok {
		escaped := fmt.Sprintf("{%s@%s}", v.Name, vv.FuncName)
		return vv.Ctx.GetOperand(escaped)
	}

	if sig, ok := op.(*f.Signature); ok {
		if strings.ContainsRune(sig.Sig, '<') {
			return vv.Ctx.GetOperand(vv.expandEmbeddedVariables(sig.Sig))
		}
	}

	return op
}

// expandEmbeddedVariables rewrites every "<name>" substring of buf:
// resolved through SigMap if the underlying ir.Value has a known
// signature, otherwise escaped to "{name@func}".
func (vv *VariableToValue) expandEmbeddedVariables(buf string) string {
	for {
		left := strings.IndexByte(buf, '<')
		if left < 0 {
			return buf
		}
		right := strings.IndexByte(buf[left:], '>')
		if right < 0 {
			return buf
		}
		right += left
		varName := buf[left : right+1] // including "<" and ">"

		updated := false
		if op, ok := vv.Ctx.GetOperand(varName).(*f.Variable); ok {
			if sig, ok := vv.SigMap[op.V]; ok && !strings.HasPrefix(sig, "<") {
				buf = strings.ReplaceAll(buf, varName, sig)
				updated = true
			}
		}
		if !updated {
			escaped := fmt.Sprintf("{%s@%s}", varName[1:len(varName)-1], vv.FuncName)
			buf = strings.ReplaceAll(buf, varName, escaped)
		}
	}
}

func (vv *VariableToValue) PostAtom(n *f.Atom) f.Formula {
	if n.Op == f.OpNone {
		return n
	}
	newLHS := vv.updateOperand(n.LHS)
	newRHS := vv.updateOperand(n.RHS)
	if newLHS == n.LHS && newRHS == n.RHS {
		return n
	}
	return f.NewAtom(vv.Ctx, n.Op, newLHS, newRHS)
}

func (vv *VariableToValue) PostConj(n *f.Conjunction, p, q f.Formula) f.Formula {
	if p == n.P && q == n.Q {
		return n
	}
	return f.And(p, q)
}

func (vv *VariableToValue) PostDisj(n *f.Disjunction, p, q f.Formula) f.Formula {
	if p == n.P && q == n.Q {
		return n
	}
	return f.Or(p, q)
}

func (vv *VariableToValue) PostNeg(n *f.Negation, p f.Formula) f.Formula {
	if p == n.P {
		return n
	}
	return f.Not(p)
}
