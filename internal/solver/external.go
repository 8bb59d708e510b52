// Package solver implements spec.md's abstract SMT decision-procedure
// boundary (formula.Solver): External pipes to a real QF-LIA solver
// process, Bounded is a small dependency-free reference used by tests
// and as a fallback.
//
// External's process-piping shape is grounded on
// _examples/aclements-go-misc/rtcheck/order.go's
// LockOrder.WriteToHTML, which shells out to `dot -Tsvg` via
// exec.Command + StdinPipe and reads its Output. The teacher's
// declared-but-unused github.com/kballard/go-shellquote dependency is
// put to real use here, logging the invoked command line the way it
// logs shelled commands elsewhere in the retrieved pack.
package solver

import (
	"bytes"
	"fmt"
	"os/exec"

	"github.com/kballard/go-shellquote"

	"github.com/lighttime0/RSC/internal/diag"
	f "github.com/lighttime0/RSC/internal/formula"
)

// External pipes SMT-LIB2 text to Path, a QF-LIA-capable solver binary
// that accepts a script on stdin and prints results on stdout (e.g.
// z3 -in, cvc5 --lang smt2). Any such binary satisfies spec.md §9's
// "SMT coupling" note.
type External struct {
	Path      string
	Args      []string
	TimeoutMS int // default 100, per spec.md §4.1
	Log       *diag.Logger
}

func NewExternal(path string, log *diag.Logger) *External {
	return &External{Path: path, Args: nil, TimeoutMS: 100, Log: log}
}

func (e *External) run(script string) (string, error) {
	cmd := exec.Command(e.Path, e.Args...)
	if e.Log != nil {
		e.Log.Warnl(0, "solver: running %s", shellquote.Join(append([]string{e.Path}, e.Args...)...))
	}
	cmd.Stdin = bytes.NewReader([]byte(script))
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("solver: running %s: %w (stderr: %s)", e.Path, err, errb.String())
	}
	return out.String(), nil
}

func (e *External) tactic(form f.Formula, tactic string) f.Formula {
	script, env := toSMTLIB2(form, e.TimeoutMS, tactic)
	out, err := e.run(script)
	if err != nil {
		if e.Log != nil {
			e.Log.Warnl(0, "solver: %s failed, returning input unchanged: %v", tactic, err)
		}
		return form
	}
	exprs, err := parseSexprs(out)
	if err != nil || len(exprs) == 0 {
		return form
	}
	// `(apply t)` returns a goal list: `(goals (goal <exprs...> :precision ...))`.
	goal := findGoal(exprs[len(exprs)-1])
	if goal == nil {
		return form
	}
	lifted, err := liftGoal(form.Context(), env, goal)
	if err != nil {
		if e.Log != nil {
			e.Log.Warnl(0, "solver: lifting %s result failed, returning input unchanged: %v", tactic, err)
		}
		return form
	}
	return lifted
}

func findGoal(s *sexpr) *sexpr {
	if s.isAtom() {
		return nil
	}
	if len(s.Children) > 0 && s.Children[0].Sym == "goal" {
		return s
	}
	for _, c := range s.Children {
		if g := findGoal(c); g != nil {
			return g
		}
	}
	return nil
}

// liftGoal conjoins every assertion in a (goal ...) s-expression.
func liftGoal(ctx *f.Context, env *smtlibEnv, goal *sexpr) (f.Formula, error) {
	acc := f.Formula(f.GetTrue(ctx))
	for _, c := range goal.Children[1:] {
		if c.isAtom() && len(c.Sym) > 0 && c.Sym[0] == ':' {
			continue // :precision, :depth, etc.
		}
		lifted, err := liftFormula(ctx, env, c)
		if err != nil {
			return nil, err
		}
		acc = f.And(acc, lifted)
	}
	return acc, nil
}

func (e *External) Simplify(form f.Formula) f.Formula     { return e.tactic(form, "simplify") }
func (e *External) DeepSimplify(form f.Formula) f.Formula { return e.tactic(form, "ctx-solver-simplify") }

func (e *External) CheckSAT(form f.Formula) bool {
	script, _ := toSMTLIB2(form, e.TimeoutMS, "")
	out, err := e.run(script)
	if err != nil {
		return true // can't run the solver: conservative per spec.md §7 kind 2
	}
	switch firstToken(out) {
	case "unsat":
		return false
	default: // "sat", "unknown", or anything unparseable: conservative
		return true
	}
}

func firstToken(s string) string {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\n' || s[i] == '\t' || s[i] == '\r') {
		i++
	}
	j := i
	for j < len(s) && !isSexprBreak(s[j]) {
		j++
	}
	return s[i:j]
}
