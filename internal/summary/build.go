package summary

import (
	"github.com/lighttime0/RSC/internal/cfgpath"
	"github.com/lighttime0/RSC/internal/ptrsig"
	"github.com/lighttime0/RSC/internal/signrange"
	"github.com/lighttime0/RSC/internal/visit"
	"github.com/lighttime0/RSC/ir"

	f "github.com/lighttime0/RSC/internal/formula"
)

// DefaultMaxSubcasesPerPath is the cap of spec.md §6 ("max-subcase-
// per-path", default 10) on the number of entries a single path can
// expand into when it crosses calls whose callee summary itself has
// multiple cases.
const DefaultMaxSubcasesPerPath = 10

// BuildEntries synthesizes the PathSummaryEntry set for one simple
// path through g (spec.md §4.6 "Per-path entry synthesis"). Returns
// nil if the path's sign/constant analysis proved it infeasible.
// maxSubcases bounds how many entries this single path may expand
// into when it crosses calls to multi-case callees; overflow entries
// beyond the cap are silently dropped (spec.md §6 "max-subcase-per-
// path").
func BuildEntries(ctx *f.Context, g *cfgpath.Graph, it *cfgpath.PathIterator, base *Base, maxSubcases int) []*PathSummaryEntry {
	fn := g.Fn
	ptrSigs := ptrsig.New(ctx, fn, it)
	signs := signrange.New(fn, it)
	signs.AddPointerInfo(ptrSigs)
	if signs.Infeasible() {
		return nil
	}
	if maxSubcases <= 0 {
		maxSubcases = DefaultMaxSubcasesPerPath
	}

	entries := []*PathSummaryEntry{{PC: f.GetTrue(ctx), Ops: RefcountOps{}}}

	blocks := it.BlockSet()
	// Walk blocks in entry-to-exit index order, not map iteration
	// order: a call's AddConstraint must land before any later
	// instruction (in a later block, on this same path) consults the
	// call's signature.
	ordered := make([]*ir.BasicBlock, 0, len(blocks))
	for _, bb := range fn.Blocks {
		if blocks[bb] {
			ordered = append(ordered, bb)
		}
	}
	for _, bb := range ordered {
		for _, inst := range bb.Instrs {
			call, ok := inst.(*ir.Call)
			if !ok {
				continue
			}
			callee, ok := base.Get(call.Callee, call.CalleeName)
			if !ok {
				continue
			}
			instantiated := instantiate(ctx, callee, call, ptrSigs)
			entries = foldCallee(entries, call, ptrSigs, instantiated, maxSubcases)
		}
	}

	sigMap := buildSigMap(blocks, ptrSigs)
	rawPC := it.PathCondition()
	vtv := &visit.VariableToValue{Ctx: ctx, SigMap: sigMap, FuncName: fn.Name, EndOfPath: true}
	resolved := visit.Walk(ctx, vtv, rawPC)

	for _, e := range entries {
		e.PC = f.And(e.PC, resolved)
		if e.Ret == "" {
			e.Ret = ptrSigs.ReturnSignature()
		}

		clone := f.DeepCopy(ctx, e.PC, nil)
		rtc := visit.NewRangeToConstant(ctx)
		exact := visit.Walk(ctx, rtc, clone)
		e.ExactPC = f.Simplify(exact)
		if v, ok := rtc.Return(); ok {
			e.Ret = v
		}

		e.PC = visit.Walk(ctx, visit.RemoveLocals{}, e.PC)
	}
	return entries
}

// foldCallee multiplies entries by inst, one new entry per
// (existing entry, callee case) pair, up to maxSubcases; if the callee
// produced exactly one case (the overwhelmingly common shape for the
// predefined refcount primitives of spec.md §4.8), the call's own
// result signature is sharpened via AddConstraint so later
// instructions on this path see it.
func foldCallee(entries []*PathSummaryEntry, call *ir.Call, ptrSigs *ptrsig.Analysis, inst []InstantiatedPathSummaryEntry, maxSubcases int) []*PathSummaryEntry {
	if len(inst) == 0 {
		return entries
	}
	if len(inst) == 1 {
		ptrSigs.AddConstraint(call, inst[0].Ret)
	}

	out := make([]*PathSummaryEntry, 0, len(entries)*len(inst))
	for _, cur := range entries {
		for _, ce := range inst {
			if len(out) >= maxSubcases {
				return out
			}
			out = append(out, &PathSummaryEntry{
				PC:  f.And(cur.PC, ce.PC),
				Ops: mergeOps(cur.Ops, ce.Ops, call.Name()),
				Ret: cur.Ret,
			})
		}
	}
	return out
}

// mergeOps accumulates add's deltas into base (copy-on-write), linking
// each merged Operation's provenance back to both the running total
// and the newly-observed delta (Operation::add_history_entry).
func mergeOps(base RefcountOps, add map[string]*Operation, host string) RefcountOps {
	out := make(RefcountOps, len(base)+len(add))
	for sig, op := range base {
		out[sig] = op
	}
	for sig, op := range add {
		amount := op.Amount
		var prior *Operation
		if cur, ok := out[sig]; ok {
			amount += cur.Amount
			prior = cur
		}
		merged := NewOperation(sig, amount, host)
		if prior != nil {
			merged.AddHistoryEntry(prior)
		}
		merged.AddHistoryEntry(op)
		out[sig] = merged
	}
	return out
}

// buildSigMap collects the pointer signature of every value that can
// appear as an ICmp operand within blocks — the only instruction kind
// whose atom lowering (formula.Context.GetAtomFor) mints a Variable
// operand (spec.md §4.2 "VariableToValue" consumes exactly this map).
func buildSigMap(blocks map[*ir.BasicBlock]bool, ptrSigs *ptrsig.Analysis) map[ir.Value]string {
	sigs := make(map[ir.Value]string)
	for bb := range blocks {
		for _, inst := range bb.Instrs {
			icmp, ok := inst.(*ir.ICmp)
			if !ok {
				continue
			}
			if _, ok := sigs[icmp.X]; !ok {
				sigs[icmp.X] = ptrSigs.Signature(icmp.X)
			}
			if _, ok := sigs[icmp.Y]; !ok {
				sigs[icmp.Y] = ptrSigs.Signature(icmp.Y)
			}
		}
	}
	return sigs
}
