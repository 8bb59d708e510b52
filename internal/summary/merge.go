package summary

import (
	f "github.com/lighttime0/RSC/internal/formula"
)

// Merge folds a newly-built path entry into s (spec.md §4.6 "Merging
// entries into a Summary"). Trivial entries (true condition, no
// refcount effect, the plain pseudo-return) are skipped outright
// (Summary::add_summary's early return for a no-op path). A same-case
// entry (equal Ops and equal Ret) is folded by disjoining its path
// condition into the existing entry instead of appending a duplicate.
// Otherwise, e is checked against every existing entry for joint
// satisfiability; if some existing entry's condition can hold at the
// same time as e's (and they disagree on effect or return value), both
// are judged inconsistent and e is routed to Dropped rather than
// silently overwriting the kept entry.
func (s *Summary) Merge(ctx *f.Context, e *PathSummaryEntry) {
	if isTrivial(e) {
		return
	}

	for _, cur := range s.Entries {
		if cur.Ops.Equal(e.Ops) && cur.Ret == e.Ret {
			cur.PC = f.Or(cur.PC, e.PC)
			cur.ExactPC = f.Or(cur.ExactPC, e.ExactPC)
			return
		}
	}

	for _, cur := range s.Entries {
		joint := f.And(cur.PC, e.PC)
		if cur.Ret != "" && e.Ret != "" && cur.Ret != e.Ret {
			joint = f.And(joint, f.NewAtom(ctx, f.OpEQ, ctx.GetOperand(cur.Ret), ctx.GetOperand(e.Ret)))
		}
		if !f.Check(joint) {
			continue
		}
		if cur.Ops.Equal(e.Ops) && cur.Ret == e.Ret {
			continue
		}
		tainted, differs := cur.Ops.Diff(e.Ops)
		if differs {
			for sig, delta := range tainted {
				s.Tainted[TaintKey{Sig: sig, Delta: delta}] = true
			}
		}
		s.Dropped = append(s.Dropped, e)
		return
	}

	s.Entries = append(s.Entries, e)
	s.pure = purityUnknown
}

// isTrivial reports whether e has no observable effect: an
// always-true condition, no nonzero refcount deltas, and the plain
// pseudo-return signature (Summary::add_summary's skip condition).
func isTrivial(e *PathSummaryEntry) bool {
	if e.PC != nil && !e.PC.IsTrue() {
		return false
	}
	if !e.Ops.IsPure() {
		return false
	}
	return e.Ret == "" || e.Ret == "[0]"
}
