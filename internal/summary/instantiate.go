package summary

import (
	"strconv"
	"strings"

	"github.com/lighttime0/RSC/internal/ptrsig"
	"github.com/lighttime0/RSC/ir"

	f "github.com/lighttime0/RSC/internal/formula"
)

// formalToActual rewrites every "[0]" (the call's own result
// signature) and "[k]" (the k-th actual argument's signature) token in
// sig, then collapses any container-of field/enclose cancellation the
// substitution exposed (InstantiatedSummary::formal_to_actual).
func formalToActual(sig string, call *ir.Call, ptrSigs *ptrsig.Analysis) string {
	sig = strings.ReplaceAll(sig, "[0]", ptrSigs.Signature(call))
	for i, arg := range call.Args {
		token := "[" + strconv.Itoa(i+1) + "]"
		sig = strings.ReplaceAll(sig, token, ptrSigs.Signature(arg))
	}
	return collapseContainerOf(sig)
}

// collapseContainerOf cancels adjacent ".X" / ".-X" component pairs in
// either order, repeatedly, in one linear scan — the Go-idiomatic
// replacement for the original's two boost::regex patterns
// (".-(\w+).\1" and ".(\w+).-\1"): Go's regexp package is RE2-based
// and has no backreference support at all, so a literal port is not
// possible. A single stack scan also cancels newly-adjacent pairs
// exposed by an earlier cancellation in one pass, which
// boost::regex_replace's single non-overlapping substitution does
// not; this is a generalization forced by the missing backreference
// feature, not a behavior change for the original's single-hop case.
func collapseContainerOf(sig string) string {
	if !strings.ContainsRune(sig, '.') {
		return sig
	}
	parts := strings.Split(sig, ".")
	stack := make([]string, 0, len(parts))
	for _, p := range parts {
		if len(stack) > 0 {
			top := stack[len(stack)-1]
			if cancels(top, p) {
				stack = stack[:len(stack)-1]
				continue
			}
		}
		stack = append(stack, p)
	}
	return strings.Join(stack, ".")
}

func cancels(a, b string) bool {
	if strings.HasPrefix(a, "-") && a[1:] == b {
		return true
	}
	if strings.HasPrefix(b, "-") && b[1:] == a {
		return true
	}
	return false
}

// isLocalSig reports whether sig is an escaped local ("{name@func}"),
// which cannot escape the callee's scope and is dropped during
// instantiation (spec.md §4.6: "entries whose refcount signatures
// contain {...} locals are dropped").
func isLocalSig(sig string) bool {
	return strings.HasPrefix(sig, "{") && strings.Contains(sig, "}")
}

// instantiate rewrites every entry of callee against the call site ci,
// substituting formal signatures for actual ones and dropping any
// refcount delta whose signature escaped only as a callee-local
// (InstantiatedSummary's constructor).
func instantiate(ctx *f.Context, callee *Summary, ci *ir.Call, ptrSigs *ptrsig.Analysis) []InstantiatedPathSummaryEntry {
	out := make([]InstantiatedPathSummaryEntry, 0, len(callee.Entries))
	for _, pe := range callee.Entries {
		sub := func(dst *f.Context, op f.Operand) f.Operand {
			s, ok := op.(*f.Signature)
			if !ok {
				return nil
			}
			return dst.GetOperand(formalToActual(s.Sig, ci, ptrSigs))
		}
		instPC := f.DeepCopy(ctx, pe.PC, sub)

		ops := make(map[string]*Operation, len(pe.Ops))
		for sig, op := range pe.Ops {
			if op.Amount == 0 || isLocalSig(sig) {
				continue
			}
			ops[formalToActual(sig, ci, ptrSigs)] = op
		}

		out = append(out, InstantiatedPathSummaryEntry{
			PC:  instPC,
			Ops: ops,
			Ret: formalToActual(pe.Ret, ci, ptrSigs),
		})
	}
	return out
}
