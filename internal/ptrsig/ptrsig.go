// Package ptrsig is the pointer-signature inference of spec.md §4.4
// (component C4): a per-path, fixpoint data-flow assigning every IR
// value a symbolic Signature string naming the abstract storage
// location it denotes.
//
// Grounded on FsigAnalysis.h / FsigPointerAnalysis.cpp: Score/Signature
// mirror SignatureData and the SCORE_* constants there, Analysis
// mirrors FsigPointerAnalysis, and revisit/copySig/composeSig are
// ported method for method. Two simplifications follow directly from
// this repo's ir model rather than LLVM's: GetElementPtr here already
// names a single field hop (Base, Field int) instead of a multi-index
// GEP, so composeGetElementPtrSig's index loop collapses to one
// lookup; and Call.ContainerOf/Call.Field are populated by the front
// end instead of being recovered by walking pointer-arithmetic casts
// backward out of a generic call, so handleSpecialFunction collapses
// to a single branch.
package ptrsig

import (
	"strconv"

	"github.com/lighttime0/RSC/internal/cfgpath"
	f "github.com/lighttime0/RSC/internal/formula"
	"github.com/lighttime0/RSC/ir"
)

// Score orders signatures so a stronger-provenance signature
// overwrites a weaker one when two values are unified (spec.md §4.4).
type Score int

// Canonical scores, in the same ascending order spec.md gives them.
const (
	ScoreDefault     Score = 0
	ScoreFuncCall    Score = 50
	ScoreReturnValue Score = 80
	ScoreFormalParam Score = 90
	ScoreGlobalVar   Score = 90
	ScoreConstant    Score = 95
	ScoreMax         Score = 100
)

type sigEntry struct {
	sig   string
	score Score
}

// pseudoReturn is the sentinel standing for a function's return slot,
// matching FsigAnalysis.h's pseudo_return.
type pseudoReturn struct{}

func (pseudoReturn) Name() string  { return "returns" }
func (pseudoReturn) Type() ir.Type { return nil }

// PseudoReturn is the one value naming the return slot; its signature
// is always "[0]" once initialized.
var PseudoReturn ir.Value = pseudoReturn{}

// Analysis computes pointer signatures for every IR value reachable
// on one path through fn, keeping per-pathid overlays on top of a
// function-wide base so that a cloned path (spec.md's pathtree)
// inherits its parent's signatures until it diverges.
type Analysis struct {
	fn   *ir.Function
	ctx  *f.Context
	path *cfgpath.PathIterator

	sigs    map[ir.Value]map[int]sigEntry
	updated []ir.Value
	changed bool
}

// New builds and runs the analysis for path through fn, under ctx
// (whose current PathID() selects the overlay written to and read
// from). Formal parameters seed to "[k]" and the return slot to "[0]",
// then revisit iterates every instruction reachable from path's
// enclosed blocks to a fixpoint.
func New(ctx *f.Context, fn *ir.Function, path *cfgpath.PathIterator) *Analysis {
	a := &Analysis{fn: fn, ctx: ctx, path: path, sigs: make(map[ir.Value]map[int]sigEntry)}
	for i, p := range fn.Params {
		a.set(p, 0, sigEntry{sig: "[" + strconv.Itoa(i+1) + "]", score: ScoreFormalParam})
	}
	a.set(PseudoReturn, 0, sigEntry{sig: "[0]", score: ScoreReturnValue})
	a.revisit()
	return a
}

func (a *Analysis) get(v ir.Value, pathid int) (sigEntry, bool) {
	for {
		if m, ok := a.sigs[v]; ok {
			if e, ok := m[pathid]; ok {
				return e, true
			}
		}
		parent, ok := a.ctx.ParentPath(pathid)
		if !ok {
			return sigEntry{}, false
		}
		pathid = parent
	}
}

func (a *Analysis) set(v ir.Value, pathid int, e sigEntry) {
	if v == nil {
		return
	}
	m, ok := a.sigs[v]
	if !ok {
		m = make(map[int]sigEntry)
		a.sigs[v] = m
	}
	m[pathid] = e
	a.updated = append(a.updated, v)
	a.changed = true
}

func (a *Analysis) scoreOf(v ir.Value) Score {
	if e, ok := a.get(v, a.ctx.PathID()); ok {
		return e.score
	}
	return ScoreDefault
}

func (a *Analysis) sigOf(v ir.Value) string {
	if e, ok := a.get(v, a.ctx.PathID()); ok {
		return e.sig
	}
	return ""
}

// checkKnown lazily assigns canonical signatures to constants and
// globals the first time they're consulted (FsigPointerAnalysis::checkKnown).
func (a *Analysis) checkKnown(v ir.Value) {
	if v == nil || v == PseudoReturn {
		return
	}
	pid := a.ctx.PathID()
	if a.scoreOf(v) < ScoreConstant {
		if c, ok := v.(*ir.Const); ok {
			a.set(v, pid, sigEntry{sig: strconv.FormatInt(c.Int64, 10), score: ScoreConstant})
		}
	}
	if a.scoreOf(v) < ScoreGlobalVar {
		if g, ok := v.(*ir.Global); ok {
			a.set(v, pid, sigEntry{sig: "[" + g.GlobalName + "]", score: ScoreGlobalVar})
		}
	}
}

// copySig unifies left and right: the weaker side takes on the
// stronger side's signature (FsigPointerAnalysis::copySig).
func (a *Analysis) copySig(left, right ir.Value) {
	if left == nil || right == nil {
		return
	}
	a.checkKnown(left)
	a.checkKnown(right)

	pid := a.ctx.PathID()
	ls := a.scoreOf(left)
	rs := a.scoreOf(right)
	if ls > rs {
		e, _ := a.get(left, pid)
		a.set(right, pid, e)
	} else if ls < rs {
		e, _ := a.get(right, pid)
		a.set(left, pid, e)
	}
}

// composeSig installs sig on left, provided it strictly improves on
// left's current score (FsigPointerAnalysis::composeSig, specialized
// to this repo's single-component GetElementPtr/container-of shape).
func (a *Analysis) composeSig(left ir.Value, sig string, score Score) {
	if sig == "" || score <= a.scoreOf(left) {
		return
	}
	a.set(left, a.ctx.PathID(), sigEntry{sig: sig, score: score})
}

// fieldComponent returns the field-name component a GetElementPtr
// contributes to its signature (spec.md §4.4): for struct.X/union.X
// with a constant index, the debug-info field name, else the numeric
// index; any other pointee type (array, non-constant index, opaque)
// contributes no component and the instruction is left unsigned.
func fieldComponent(i *ir.GetElementPtr) (comp string, ok bool) {
	if i.Field < 0 {
		return "", false
	}
	ptr, isPtr := i.Base.Type().(ir.Pointer)
	if !isPtr {
		return "", false
	}
	s, isStruct := ptr.Elem.(ir.Struct)
	if !isStruct {
		return "", false
	}
	if name, ok2 := s.Field(i.Field); ok2 && name != "" {
		return name, true
	}
	return strconv.Itoa(i.Field), true
}

func (a *Analysis) visitGetElementPtr(i *ir.GetElementPtr) {
	baseScore := a.scoreOf(i.Base)
	if a.scoreOf(i) >= baseScore {
		return
	}
	comp, ok := fieldComponent(i)
	if !ok {
		return
	}
	baseSig := a.sigOf(i.Base)
	if baseSig == "" {
		return
	}
	a.composeSig(i, baseSig+"."+comp, baseScore)
}

// visitCall handles the one special function recognized by pointer-
// signature inference, __container_of (FsigPointerAnalysis::handleSpecialFunction).
// Everything else is opaque to this analysis.
func (a *Analysis) visitCall(i *ir.Call) {
	if !i.ContainerOf || len(i.Args) == 0 {
		return
	}
	base := i.Args[0]
	a.checkKnown(base)
	baseScore := a.scoreOf(base)
	if baseScore <= a.scoreOf(i) {
		return
	}
	baseSig := a.sigOf(base)
	if baseSig == "" {
		return
	}
	a.composeSig(i, baseSig+".-"+i.Field, baseScore)
}

func (a *Analysis) visitInst(inst ir.Instruction) {
	switch i := inst.(type) {
	case *ir.Load:
		a.copySig(i, i.Addr)
	case *ir.Store:
		a.copySig(i.Addr, i.Val)
	case *ir.GetElementPtr:
		a.visitGetElementPtr(i)
	case *ir.Call:
		a.visitCall(i)
	case *ir.Cast:
		a.copySig(i, i.X)
	case *ir.Phi:
		a.copySig(i, a.path.DeterminePhinode(i))
	case *ir.Return:
		if i.Result != nil {
			a.copySig(i.Result, PseudoReturn)
		}
	}
}

// revisit iterates every instruction in path's enclosed blocks to a
// fixpoint; termination follows P7 (scores only rise, over a finite
// lattice), exactly as FsigPointerAnalysis::revisit.
func (a *Analysis) revisit() {
	blocks := a.path.BlockSet()
	for {
		a.changed = false
		for bb := range blocks {
			for _, inst := range bb.Instrs {
				a.visitInst(inst)
			}
		}
		if !a.changed {
			return
		}
	}
}

// Signature returns v's signature, lazily materializing "{name@F}"
// for a value that never resolved to anything stronger
// (FsigPointerAnalysis::operator[]).
func (a *Analysis) Signature(v ir.Value) string {
	a.checkKnown(v)
	if a.scoreOf(v) == ScoreDefault {
		return "{" + v.Name() + "@" + a.fn.Name + "}"
	}
	return a.sigOf(v)
}

// Operand interns Signature(v) as a formula.Operand in ctx.
func (a *Analysis) Operand(v ir.Value) f.Operand {
	return a.ctx.GetSignature(a.Signature(v))
}

// ReturnSignature is Signature(PseudoReturn) (FsigPointerAnalysis::get_retsig).
func (a *Analysis) ReturnSignature() string { return a.Signature(PseudoReturn) }

// AddConstraint lets the merger overwrite v's signature with the
// result of a callee instantiation (spec.md §4.4); sig is scored as a
// constant if it parses as one, otherwise as a func-call result.
func (a *Analysis) AddConstraint(v ir.Value, sig string) {
	if a.sigOf(v) == sig {
		return
	}
	score := ScoreFuncCall
	if _, err := strconv.ParseInt(sig, 10, 64); err == nil {
		score = ScoreConstant
	}
	a.set(v, a.ctx.PathID(), sigEntry{sig: sig, score: score})
}

// Updated lists every value whose signature changed since the last
// ForgetUpdated, in the order it changed (FsigPointerAnalysis::updated).
func (a *Analysis) Updated() []ir.Value { return a.updated }

// ForgetUpdated clears the updated list.
func (a *Analysis) ForgetUpdated() { a.updated = nil }
