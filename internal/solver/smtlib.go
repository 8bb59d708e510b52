package solver

import (
	"fmt"
	"sort"
	"strings"

	f "github.com/lighttime0/RSC/internal/formula"
)

// symbolName renders an Operand as an SMT-LIB2 symbol or numeral.
// Signatures and named atoms carry characters SMT-LIB2 symbols can't
// (brackets, dots, braces, "<", ">"), so they are declared under a
// mangled alias and mapped back during lifting.
type smtlibEnv struct {
	aliasOf map[string]string // original signature/atom text -> smt symbol
	origOf  map[string]string // smt symbol -> original text
	isConst map[string]bool   // smt symbol -> declared as Bool (named atom) rather than Int
	next    int
}

func newEnv() *smtlibEnv {
	return &smtlibEnv{aliasOf: map[string]string{}, origOf: map[string]string{}, isConst: map[string]bool{}}
}

func (e *smtlibEnv) alias(orig string, isBool bool) string {
	if a, ok := e.aliasOf[orig]; ok {
		return a
	}
	a := fmt.Sprintf("s%d", e.next)
	e.next++
	e.aliasOf[orig] = a
	e.origOf[a] = orig
	e.isConst[a] = isBool
	return a
}

func (e *smtlibEnv) operandText(op f.Operand) string {
	switch o := op.(type) {
	case *f.Constant:
		if o.I < 0 {
			return fmt.Sprintf("(- %d)", -o.I)
		}
		return fmt.Sprintf("%d", o.I)
	case *f.Signature:
		return e.alias(o.Sig, false)
	case *f.Variable:
		return e.alias(o.String(), false)
	}
	panic(fmt.Sprintf("solver: unknown operand type %T", op))
}

var atomOpSMT = map[f.AtomOp]string{
	f.OpEQ: "=", f.OpNE: "distinct", f.OpLT: "<", f.OpLE: "<=", f.OpGT: ">", f.OpGE: ">=",
}

func (e *smtlibEnv) render(form f.Formula) string {
	switch n := form.(type) {
	case f.True:
		return "true"
	case f.False:
		return "false"
	case *f.Atom:
		if n.Op == f.OpNone {
			return e.alias(n.Name, true)
		}
		return fmt.Sprintf("(%s %s %s)", atomOpSMT[n.Op], e.operandText(n.LHS), e.operandText(n.RHS))
	case *f.Conjunction:
		return fmt.Sprintf("(and %s %s)", e.render(n.P), e.render(n.Q))
	case *f.Disjunction:
		return fmt.Sprintf("(or %s %s)", e.render(n.P), e.render(n.Q))
	case *f.Negation:
		return fmt.Sprintf("(not %s)", e.render(n.P))
	}
	panic(fmt.Sprintf("solver: unknown formula node %T", form))
}

// toSMTLIB2 renders assert with preceding declarations, ready to pipe
// to an external solver process. script names the tactic to run
// ("simplify", "ctx-solver-simplify", or "" for a bare check-sat).
func toSMTLIB2(form f.Formula, timeoutMS int, tactic string) (text string, env *smtlibEnv) {
	env = newEnv()
	body := env.render(form) // populates env.alias as a side effect

	var b strings.Builder
	names := make([]string, 0, len(env.origOf))
	for s := range env.origOf {
		names = append(names, s)
	}
	sort.Strings(names)
	for _, s := range names {
		if env.isConst[s] {
			fmt.Fprintf(&b, "(declare-const %s Bool)\n", s)
		} else {
			fmt.Fprintf(&b, "(declare-const %s Int)\n", s)
		}
	}
	fmt.Fprintf(&b, "(assert %s)\n", body)
	if tactic != "" {
		fmt.Fprintf(&b, "(apply (%s))\n", tactic)
	} else {
		if timeoutMS > 0 {
			fmt.Fprintf(&b, "(set-option :timeout %d)\n", timeoutMS)
		}
		b.WriteString("(check-sat)\n")
	}
	return b.String(), env
}
