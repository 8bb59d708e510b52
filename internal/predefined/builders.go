package predefined

import (
	"fmt"

	f "github.com/lighttime0/RSC/internal/formula"
	"github.com/lighttime0/RSC/internal/summary"
)

// getNoReturn ports get_no_return: an unconditional hit, no reported
// return value (kref_init/kref_get, ffs_data_get, _Py_INCREF).
func getNoReturn(name string, target int, typ string) *summary.Summary {
	s, ctx := newEntrySummary(name)
	sig := fmt.Sprintf("[%d]:%s", target, typ)
	s.Entries = []*summary.PathSummaryEntry{{
		PC:  f.GetTrue(ctx),
		Ops: summary.RefcountOps{sig: summary.NewOperation(sig, 1, name)},
	}}
	return s
}

// getReturnSuccess ports get_return_success: the call always acquires
// a reference, and splits on whether its own (int status) return value
// is the literal 0 used for "success" (PyObject_SetAttrString,
// PyList_Append).
func getReturnSuccess(name string, target int, typ string) *summary.Summary {
	s, ctx := newEntrySummary(name)
	sig := fmt.Sprintf("[%d]:%s", target, typ)
	entry := &summary.PathSummaryEntry{
		PC:  f.GetTrue(ctx),
		Ops: summary.RefcountOps{sig: summary.NewOperation(sig, 1, name)},
		Ret: "0",
	}
	entry2 := &summary.PathSummaryEntry{
		PC:  f.NewAtom(ctx, f.OpNE, ctx.GetOperand("[0]"), ctx.GetOperand("0")),
		Ret: "0",
	}
	s.Entries = []*summary.PathSummaryEntry{entry, entry2}
	return s
}

// getNonnullNoReturn ports get_nonnull_no_return: the reference is
// only acquired when the target argument itself is non-null
// (PyErr_SetObject's exception-type argument).
func getNonnullNoReturn(name string, target int, typ string) *summary.Summary {
	s, ctx := newEntrySummary(name)
	base := fmt.Sprintf("[%d]", target)
	sig := base + ":" + typ
	entry := &summary.PathSummaryEntry{
		PC:  f.NewAtom(ctx, f.OpNE, ctx.GetOperand(base), ctx.GetOperand("0")),
		Ops: summary.RefcountOps{sig: summary.NewOperation(sig, 1, name)},
	}
	s.Entries = []*summary.PathSummaryEntry{entry}
	return s
}

// getNew ports get_new: an allocator that returns the object it just
// created, acquiring a reference on its own freshly minted signature
// when the result is non-null, returning the literal status value 0
// (no object) otherwise (ffs_data_new, Py_BuildValue and friends).
func getNew(name, typ string) *summary.Summary {
	s, ctx := newEntrySummary(name)
	sig := "[0]:" + typ
	ok := &summary.PathSummaryEntry{
		PC:  f.NewAtom(ctx, f.OpNE, ctx.GetOperand("[0]"), ctx.GetOperand("0")),
		Ops: summary.RefcountOps{sig: summary.NewOperation(sig, 1, name)},
		Ret: "[0]",
	}
	fail := &summary.PathSummaryEntry{
		PC:  f.NewAtom(ctx, f.OpEQ, ctx.GetOperand("[0]"), ctx.GetOperand("0")),
		Ret: "0",
	}
	s.Entries = []*summary.PathSummaryEntry{ok, fail}
	return s
}

// getUnlessZero ports get_unless_zero: acquires a reference only when
// the target's current count was already positive, otherwise falls
// through untouched (kref_get_unless_zero).
func getUnlessZero(name string, target int, typ string) *summary.Summary {
	s, ctx := newEntrySummary(name)
	sig := fmt.Sprintf("[%d]:%s", target, typ)
	got := &summary.PathSummaryEntry{
		PC:  f.NewAtom(ctx, f.OpGT, ctx.GetOperand("[0]"), ctx.GetOperand("0")),
		Ops: summary.RefcountOps{sig: summary.NewOperation(sig, 1, name)},
		Ret: "[0]",
	}
	missed := &summary.PathSummaryEntry{
		PC:  f.GetTrue(ctx),
		Ret: "0",
	}
	s.Entries = []*summary.PathSummaryEntry{got, missed}
	return s
}

// putNoReturn ports put_no_return: an unconditional release, no
// reported return value (kref_put family, ffs_data_put, _Py_DECREF).
func putNoReturn(name string, target int, typ string) *summary.Summary {
	s, ctx := newEntrySummary(name)
	sig := fmt.Sprintf("[%d]:%s", target, typ)
	s.Entries = []*summary.PathSummaryEntry{{
		PC:  f.GetTrue(ctx),
		Ops: summary.RefcountOps{sig: summary.NewOperation(sig, -1, name)},
	}}
	return s
}

// getReturnAny ports get_return_any: an unconditional acquire that
// also reports its own return value as the call's result signature,
// regardless of what it is (pm_runtime_get family).
func getReturnAny(name string, target int, typ string) *summary.Summary {
	s, ctx := newEntrySummary(name)
	sig := fmt.Sprintf("[%d]:%s", target, typ)
	s.Entries = []*summary.PathSummaryEntry{{
		PC:  f.GetTrue(ctx),
		Ops: summary.RefcountOps{sig: summary.NewOperation(sig, 1, name)},
		Ret: "[0]",
	}}
	return s
}

// putReturnAny ports put_return_any: the release counterpart of
// getReturnAny (pm_runtime_put family).
func putReturnAny(name string, target int, typ string) *summary.Summary {
	s, ctx := newEntrySummary(name)
	sig := fmt.Sprintf("[%d]:%s", target, typ)
	s.Entries = []*summary.PathSummaryEntry{{
		PC:  f.GetTrue(ctx),
		Ops: summary.RefcountOps{sig: summary.NewOperation(sig, -1, name)},
		Ret: "[0]",
	}}
	return s
}

// noopRet ports noop_ret: no refcount effect, but the call is known to
// return (an alias of) its target argument's own signature
// (kobject_get's "returns the kobject you gave it").
func noopRet(name string, target int) *summary.Summary {
	s, ctx := newEntrySummary(name)
	s.Entries = []*summary.PathSummaryEntry{{
		PC:  f.GetTrue(ctx),
		Ret: fmt.Sprintf("[%d]", target),
	}}
	return s
}

// noopNoret ports noop_noret: a function known to have no refcount
// effect and nothing worth reporting about its return value, recorded
// as an entry-free Summary so a call to it folds away entirely
// (foldCallee's len(inst) == 0 early return) rather than being treated
// as an unanalyzed external call.
func noopNoret(name string) *summary.Summary {
	s, _ := newEntrySummary(name)
	return s
}
