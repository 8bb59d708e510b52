package signrange

import (
	"github.com/lighttime0/RSC/internal/cfgpath"
	"github.com/lighttime0/RSC/internal/ptrsig"
	"github.com/lighttime0/RSC/ir"
)

// predHolds is the three-valued flag of spec.md §4.5 controlling how
// ICmp/Call transfer functions narrow their operands.
type predHolds int8

const (
	predUnknown predHolds = iota
	predHold
	predNotHold
)

// Analysis computes, for one path through a function, the sign/
// constant range of every IR value reachable on it, then (once
// AddPointerInfo is called) the same information re-keyed by pointer
// signature. Grounded on FsigConstantAnalysis.cpp.
type Analysis struct {
	fn   *ir.Function
	path *cfgpath.PathIterator

	sigmap     map[ir.Value]Range
	feasible   bool
	changed    bool
	sigmapOfSig map[string]Range
}

// New runs the fixpoint over path's enclosed blocks and predicates.
// Infeasible() reports whether unification ever hit EMPTY; if so the
// merger must discard this path (spec.md §4.5).
func New(fn *ir.Function, path *cfgpath.PathIterator) *Analysis {
	a := &Analysis{fn: fn, path: path, sigmap: make(map[ir.Value]Range), feasible: true}
	blocks := path.BlockSet()

	for bb := range blocks {
		for _, inst := range bb.Instrs {
			for _, operand := range ir.Operands(inst) {
				a.visitConstant(operand)
			}
		}
	}

	truePreds := path.TruePreds()
	falsePreds := path.FalsePreds()
	for {
		a.changed = false

		for bb := range blocks {
			for _, inst := range bb.Instrs {
				a.visitInst(inst, predUnknown)
			}
		}
		for _, v := range truePreds {
			if inst, ok := v.(ir.Instruction); ok {
				a.visitInst(inst, predHold)
			}
		}
		for _, v := range falsePreds {
			if inst, ok := v.(ir.Instruction); ok {
				a.visitInst(inst, predNotHold)
			}
		}

		if !a.changed || !a.feasible {
			break
		}
	}
	return a
}

// Infeasible reports whether any unification along this path collapsed
// to EMPTY.
func (a *Analysis) Infeasible() bool { return !a.feasible }

func (a *Analysis) rangeOf(v ir.Value) Range {
	if r, ok := a.sigmap[v]; ok {
		return r
	}
	return AnyRange()
}

// setIntegerSignature narrows v's range by intersecting in sig
// (FsigConstantAnalysis::setIntegerSignature): "try merging results
// from multiple predicates".
func (a *Analysis) setIntegerSignature(v ir.Value, sig Range) {
	old := a.rangeOf(v)
	n := old.Intersects(sig)
	if old != n {
		a.sigmap[v] = n
		a.changed = true
	}
}

// copySig unifies left and right, flagging the path infeasible if
// their ranges are disjoint (FsigConstantAnalysis::copySig).
func (a *Analysis) copySig(left, right ir.Value) {
	if left == nil || right == nil {
		return
	}
	l, r := a.rangeOf(left), a.rangeOf(right)
	n := l.Intersects(r)
	if n.Kind == Empty {
		a.feasible = false
		return
	}
	if l != n {
		a.sigmap[left] = n
		a.changed = true
	}
	if r != n {
		a.sigmap[right] = n
		a.changed = true
	}
}

func (a *Analysis) visitConstant(v ir.Value) {
	if c, ok := v.(*ir.Const); ok {
		a.setIntegerSignature(v, Exactly(c.Int64))
	}
}

func (a *Analysis) inferEq(v, constant ir.Value) { a.copySig(v, constant) }

func (a *Analysis) inferNe(v, constant ir.Value) {
	if c := a.rangeOf(constant); c.Kind == Exact && c.Int64 == 0 {
		a.setIntegerSignature(v, NonzeroRange())
	}
}

func (a *Analysis) inferSlt(v, constant ir.Value) {
	if c := a.rangeOf(constant); c.Kind == Exact && c.Int64 <= 0 {
		a.setIntegerSignature(v, NegativeRange())
	}
}

func (a *Analysis) inferSle(v, constant ir.Value) {
	if c := a.rangeOf(constant); c.Kind == Exact {
		switch {
		case c.Int64 < 0:
			a.setIntegerSignature(v, NegativeRange())
		case c.Int64 == 0:
			a.setIntegerSignature(v, NonposRange())
		}
	}
}

func (a *Analysis) inferSgt(v, constant ir.Value) {
	if c := a.rangeOf(constant); c.Kind == Exact && c.Int64 >= 0 {
		a.setIntegerSignature(v, PositiveRange())
	}
}

func (a *Analysis) inferSge(v, constant ir.Value) {
	if c := a.rangeOf(constant); c.Kind == Exact {
		switch {
		case c.Int64 > 0:
			a.setIntegerSignature(v, PositiveRange())
		case c.Int64 == 0:
			a.setIntegerSignature(v, NonnegRange())
		}
	}
}

// inferWithConstant applies infer (resp. inferRev) to whichever of
// i's operands is known constant, with the other operand as the
// value being narrowed (FsigConstantAnalysis::inferWithConstant).
func (a *Analysis) inferWithConstant(i *ir.ICmp, infer, inferRev func(v, constant ir.Value)) {
	left, right := i.X, i.Y
	if a.rangeOf(right).IsConstant() {
		infer(left, right)
	} else if a.rangeOf(left).IsConstant() {
		inferRev(right, left)
	}
}

// visitICmp narrows i's operands per the known-true/false branch
// taken, handling the ICmp predicate's logical complement and
// swapped-operand forms exactly as FsigConstantAnalysis::visitICmpInst.
func (a *Analysis) visitICmp(i *ir.ICmp, p predHolds) {
	if p == predUnknown {
		return
	}
	branchTaken := p == predHold

	var infer, inferRev func(v, constant ir.Value)

	switch i.Op {
	case ir.ICmpNE:
		branchTaken = !branchTaken
		fallthrough
	case ir.ICmpEQ:
		if branchTaken {
			infer, inferRev = a.inferEq, a.inferEq
		} else {
			infer, inferRev = a.inferNe, a.inferNe
		}
	case ir.ICmpGE:
		branchTaken = !branchTaken
		fallthrough
	case ir.ICmpLT:
		if branchTaken {
			infer, inferRev = a.inferSlt, a.inferSgt
		} else {
			infer, inferRev = a.inferSge, a.inferSle
		}
	case ir.ICmpGT:
		branchTaken = !branchTaken
		fallthrough
	case ir.ICmpLE:
		if branchTaken {
			infer, inferRev = a.inferSle, a.inferSge
		} else {
			infer, inferRev = a.inferSgt, a.inferSlt
		}
	}
	if infer != nil && inferRev != nil {
		a.inferWithConstant(i, infer, inferRev)
	}
}

func (a *Analysis) visitInst(inst ir.Instruction, p predHolds) {
	switch i := inst.(type) {
	case *ir.Load:
		a.copySig(i, i.Addr)
	case *ir.Store:
		a.copySig(i.Addr, i.Val)
	case *ir.Cast:
		a.visitConstant(i.X)
		a.copySig(i, i.X)
	case *ir.ICmp:
		a.visitICmp(i, p)
	case *ir.Call:
		switch p {
		case predHold:
			a.setIntegerSignature(i, NonzeroRange())
		case predNotHold:
			a.setIntegerSignature(i, Exactly(0))
		}
	case *ir.Phi:
		a.copySig(i, a.path.DeterminePhinode(i))
	case *ir.Return:
		if i.Result != nil {
			a.copySig(i.Result, ptrsig.PseudoReturn)
		}
	}
}

// Signature returns v's range, or ANY if v was never visited
// (FsigConstantAnalysis::getSignature / operator[]).
func (a *Analysis) Signature(v ir.Value) Range {
	if r, ok := a.sigmap[v]; ok {
		return r
	}
	return AnyRange()
}

// AddPointerInfo re-keys the sign map by pointer signature: every
// (v, range) pair intersects into sigmapOfSig[ptrSigs.Signature(v)],
// and the return slot's range is aliased to "[0]" (FsigConstantAnalysis::addPointerInfo).
func (a *Analysis) AddPointerInfo(ptrSigs *ptrsig.Analysis) {
	a.sigmapOfSig = make(map[string]Range)
	for v, r := range a.sigmap {
		sig := ptrSigs.Signature(v)
		if cur, ok := a.sigmapOfSig[sig]; ok {
			a.sigmapOfSig[sig] = cur.Intersects(r)
		} else {
			a.sigmapOfSig[sig] = r
		}
	}

	retSig := ptrSigs.Signature(ptrsig.PseudoReturn)
	if retSig == "[0]" {
		return
	}
	if r, ok := a.sigmapOfSig[retSig]; ok {
		a.sigmapOfSig["[0]"] = r
	}
}

// SignatureOf returns the range keyed by pointer signature sig, or ANY
// if AddPointerInfo was never called or sig was never observed.
func (a *Analysis) SignatureOf(sig string) Range {
	if a.sigmapOfSig == nil {
		return AnyRange()
	}
	if r, ok := a.sigmapOfSig[sig]; ok {
		return r
	}
	return AnyRange()
}
