package visit

import (
	"math"
	"strconv"

	f "github.com/lighttime0/RSC/internal/formula"
)

// rangeEntry is the accumulated [min, max] bound for one Signature
// across a formula subtree, plus every Atom that contributed to it
// (so a later collapse to a single constant can rewrite them all in
// place).
type rangeEntry struct {
	min, max int64
	atoms    []*f.Atom
}

func newRangeEntry() rangeEntry {
	return rangeEntry{min: math.MinInt64, max: math.MaxInt64}
}

// RangeToConstant narrows every Signature's range of values implied by
// conjoined/disjoined/negated relational atoms; a Signature pinned to
// a single integer has every contributing atom rewritten to
// `sig = value` (or, for the return slot "[0]", recorded via
// ReturnValue and its atoms collapsed to `value = value`, matching the
// original's comment that such atoms are discarded by later
// simplification).
//
// Grounded on FormulaVisitor.cpp's RangeToConstant.
type RangeToConstant struct {
	Base
	Ctx *f.Context

	stack []map[*f.Signature]*rangeEntry // one frame per open conj/disj/neg
	right []map[*f.Signature]*rangeEntry

	ReturnValue string
	haveReturn  bool
}

func NewRangeToConstant(ctx *f.Context) *RangeToConstant {
	return &RangeToConstant{Ctx: ctx}
}

func (r *RangeToConstant) Initialize(f.Formula) {
	r.stack = []map[*f.Signature]*rangeEntry{{}}
}

func (r *RangeToConstant) top() map[*f.Signature]*rangeEntry { return r.stack[len(r.stack)-1] }

func (r *RangeToConstant) entry(m map[*f.Signature]*rangeEntry, sig *f.Signature) *rangeEntry {
	e, ok := m[sig]
	if !ok {
		ne := newRangeEntry()
		e = &ne
		m[sig] = e
	}
	return e
}

func (r *RangeToConstant) PostAtom(n *f.Atom) f.Formula {
	op := n.Op
	lhs, rhs := n.LHS, n.RHS

	var sig *f.Signature
	var cnt *f.Constant
	if s, ok := lhs.(*f.Signature); ok {
		if c, ok := rhs.(*f.Constant); ok {
			sig, cnt = s, c
		}
	} else if c, ok := lhs.(*f.Constant); ok {
		if s, ok := rhs.(*f.Signature); ok {
			switch op {
			case f.OpLT:
				op = f.OpGT
			case f.OpLE:
				op = f.OpGE
			case f.OpGT:
				op = f.OpLT
			case f.OpGE:
				op = f.OpLE
			}
			sig, cnt = s, c
		}
	}
	if sig == nil {
		return n
	}

	e := r.entry(r.top(), sig)
	switch op {
	case f.OpLT:
		e.max = min64(e.max, cnt.I-1)
	case f.OpLE:
		e.max = min64(e.max, cnt.I)
	case f.OpGT:
		e.min = max64(e.min, cnt.I+1)
	case f.OpGE:
		e.min = max64(e.min, cnt.I)
	}
	e.atoms = append(e.atoms, n)
	return n
}

func (r *RangeToConstant) PreConj(n *f.Conjunction) f.Formula {
	r.stack = append(r.stack, map[*f.Signature]*rangeEntry{})
	r.right = append(r.right, map[*f.Signature]*rangeEntry{})
	return n
}

func (r *RangeToConstant) MidConj(n *f.Conjunction, p f.Formula) f.Formula {
	r.stack[len(r.stack)-1] = r.right[len(r.right)-1]
	return p
}

func (r *RangeToConstant) PostConj(n *f.Conjunction, p, q f.Formula) f.Formula {
	left := r.stack[len(r.stack)-1]
	right := r.right[len(r.right)-1]
	r.stack = r.stack[:len(r.stack)-1]
	r.right = r.right[:len(r.right)-1]
	dst := r.top()

	for _, m := range []map[*f.Signature]*rangeEntry{left, right} {
		for sig, e := range m {
			d := r.entry(dst, sig)
			d.min = max64(d.min, e.min)
			d.max = min64(d.max, e.max)
			d.atoms = append(d.atoms, e.atoms...)
		}
	}
	return n
}

func (r *RangeToConstant) PreDisj(n *f.Disjunction) f.Formula {
	r.stack = append(r.stack, map[*f.Signature]*rangeEntry{})
	r.right = append(r.right, map[*f.Signature]*rangeEntry{})
	return n
}

func (r *RangeToConstant) MidDisj(n *f.Disjunction, p f.Formula) f.Formula {
	r.stack[len(r.stack)-1] = r.right[len(r.right)-1]
	return p
}

func (r *RangeToConstant) PostDisj(n *f.Disjunction, p, q f.Formula) f.Formula {
	left := r.stack[len(r.stack)-1]
	right := r.right[len(r.right)-1]
	r.stack = r.stack[:len(r.stack)-1]
	r.right = r.right[:len(r.right)-1]
	dst := r.top()

	for sig, le := range left {
		re, ok := right[sig]
		if !ok {
			continue
		}
		d := r.entry(dst, sig)
		d.min = min64(le.min, d.min)
		d.max = max64(le.max, d.max)
		d.atoms = append(d.atoms, le.atoms...)
		d.atoms = append(d.atoms, re.atoms...)
	}
	return n
}

func (r *RangeToConstant) PreNeg(n *f.Negation) f.Formula {
	r.stack = append(r.stack, map[*f.Signature]*rangeEntry{})
	return n
}

func (r *RangeToConstant) PostNeg(n *f.Negation, p f.Formula) f.Formula {
	left := r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]
	dst := r.top()

	for sig, e := range left {
		d := r.entry(dst, sig)
		switch {
		case e.max == math.MaxInt64:
			d.max = e.min - 1
		case e.min == math.MinInt64:
			d.min = e.max + 1
		}
		d.atoms = append(d.atoms, e.atoms...)
	}
	return n
}

func (r *RangeToConstant) Finalize(f.Formula) {
	cur := r.top()
	for sig, e := range cur {
		if e.min != e.max {
			continue
		}
		if sig.Sig == "[0]" {
			r.ReturnValue = strconv.FormatInt(e.min, 10)
			r.haveReturn = true
			for _, a := range e.atoms {
				a.Op = f.OpEQ
				c := r.Ctx.GetConstant(e.min)
				a.LHS, a.RHS = c, c
			}
		} else {
			for _, a := range e.atoms {
				a.Op = f.OpEQ
				a.LHS = sig
				a.RHS = r.Ctx.GetConstant(e.min)
			}
		}
	}
}

// Return reports the collapsed return-slot constant, if RangeToConstant
// pinned "[0]" to a single value during this walk.
func (r *RangeToConstant) Return() (value string, ok bool) { return r.ReturnValue, r.haveReturn }

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
