// Package summary is the summary merger of spec.md §4.6 (component
// C6): per-path entry synthesis (path condition, collapsed return
// value, accumulated refcount deltas with callee instantiation) and
// the rules for folding new entries into a function's persistent
// Summary, including the joint-condition inconsistency check that
// routes disagreeing entries to dropped_summaries instead of silently
// overwriting one another.
//
// Grounded on Summary.{h,cpp}: Operation/RefcountOps/PathSummaryEntry/
// Summary mirror the same-named C++ types: fields that exist only for
// printing and debugging in the original (Operation.host,
// PathSummaryEntry.path/id/applied) are kept for the same purpose
// here.
package summary

import (
	"github.com/lighttime0/RSC/ir"

	f "github.com/lighttime0/RSC/internal/formula"
)

// Operation is one refcount delta observed on a path, with a
// provenance chain back to the operations (predefined primitives or
// callee-instantiated deltas) that produced it — used only for
// reporting (Operation::print/print_history).
type Operation struct {
	RefcountSig string
	Amount      int
	ID          int
	From        []*Operation
	Host        string
}

var nextOperationID int

// NewOperation allocates an Operation with a fresh id, matching
// Operation's next_id counter. Not safe for concurrent use across
// goroutines; the analyzer is single-threaded per spec.md §5.
func NewOperation(sig string, amount int, host string) *Operation {
	nextOperationID++
	return &Operation{RefcountSig: sig, Amount: amount, ID: nextOperationID, Host: host}
}

// AddHistoryEntry records op as a cause of o, deduplicating and
// keeping From ordered by host name (Operation::add_history_entry).
func (o *Operation) AddHistoryEntry(op *Operation) {
	for i, e := range o.From {
		if e == op {
			return
		}
		if e.Host > op.Host {
			o.From = append(o.From[:i:i], append([]*Operation{op}, o.From[i:]...)...)
			return
		}
	}
	o.From = append(o.From, op)
}

// RefcountOps maps a signature to the net delta observed for it along
// one path (RefcountOps : public std::map<RefcountSig, Operation>, ported
// to a map of pointers so provenance chains can share Operation
// identity).
type RefcountOps map[string]*Operation

// IsPure reports whether every tracked delta is zero
// (RefcountOps::is_pure).
func (ops RefcountOps) IsPure() bool {
	for _, op := range ops {
		if op.Amount != 0 {
			return false
		}
	}
	return true
}

// Equal compares two RefcountOps ignoring zero-amount entries on
// either side (RefcountOps::operator==).
func (ops RefcountOps) Equal(rhs RefcountOps) bool {
	for sig, op := range ops {
		if op.Amount == 0 {
			continue
		}
		o2, ok := rhs[sig]
		if !ok || o2.Amount != op.Amount {
			return false
		}
	}
	for sig, op := range rhs {
		if op.Amount == 0 {
			continue
		}
		o2, ok := ops[sig]
		if !ok || o2.Amount != op.Amount {
			return false
		}
	}
	return true
}

// Diff reports, per signature with a nonzero delta on either side, the
// absolute difference between this path's amount and rhs's
// (RefcountOps::diff); differs reports whether any such delta was
// nonzero.
func (ops RefcountOps) Diff(rhs RefcountOps) (tainted map[string]int, differs bool) {
	tainted = make(map[string]int)
	abs := func(i int) int {
		if i < 0 {
			return -i
		}
		return i
	}
	check := func(a, b RefcountOps) {
		for sig, op := range a {
			if op.Amount == 0 {
				continue
			}
			other, ok := b[sig]
			delta := op.Amount
			if ok {
				delta = op.Amount - other.Amount
			}
			if delta != 0 {
				tainted[sig] = abs(delta)
				differs = true
			}
		}
	}
	check(ops, rhs)
	check(rhs, ops)
	return tainted, differs
}

// PathSummaryEntry is one case of a function's behavior: the
// condition under which it applies, the refcount deltas it causes,
// and what it returns (spec.md §3 "PathSummaryEntry").
type PathSummaryEntry struct {
	PC      f.Formula
	ExactPC f.Formula
	Ops     RefcountOps
	Ret     string

	// ID/Applied are bookkeeping used only while building entries for
	// one path; they are not part of the entry's logical content.
	ID      int
	Applied bool
}

// InstantiatedPathSummaryEntry is a callee's PathSummaryEntry with
// every "[k]"/"[0]" token rewritten to the caller's actual-argument
// and call-result signatures (spec.md §4.6 "Callee integration").
type InstantiatedPathSummaryEntry struct {
	PC  f.Formula
	Ops map[string]*Operation
	Ret string
}

type purity int

const (
	purityUnknown purity = iota
	purityPure
	purityImpure
)

// Summary is the persistent per-function behavioral contract (spec.md
// §3 "Summary"): the kept entries, the entries dropped for
// inconsistency, and a cached purity verdict.
type Summary struct {
	Name string
	Func *ir.Function

	Entries []*PathSummaryEntry
	Dropped []*PathSummaryEntry

	// Tainted records, for reporting, every (signature, delta) pair
	// that caused two entries to be judged inconsistent.
	Tainted map[TaintKey]bool

	pure purity
}

// TaintKey is one (signature, delta) pair recorded when two entries
// disagree (Summary::tainted element type).
type TaintKey struct {
	Sig   string
	Delta int
}

// New creates an empty Summary for fn (Summary's default constructor;
// fn may be nil for a Summary built purely from deserialized data, as
// PredefinedSummary.cpp's synthetic entries are).
func New(name string, fn *ir.Function) *Summary {
	return &Summary{Name: name, Func: fn, Tainted: make(map[TaintKey]bool)}
}

// IsPure reports whether every kept entry has no refcount effect,
// caching the verdict once computed (Summary::is_pure).
func (s *Summary) IsPure() bool {
	if s.pure == purityUnknown {
		s.pure = purityPure
		for _, e := range s.Entries {
			if !e.Ops.IsPure() {
				s.pure = purityImpure
				break
			}
		}
	}
	return s.pure == purityPure
}

// Base is the function -> Summary registry of spec.md §5 ("summary
// base"). Predefined summaries (internal/predefined) are seeded by
// name, since the library functions they model have no ir.Function
// body for the front end to hand back; user-defined callees are keyed
// by their *ir.Function identity instead (Summary.h's
// "extern SummaryBase summaryBase", generalized here to also carry a
// by-name index rather than relying on a global variable).
type Base struct {
	byFunc map[*ir.Function]*Summary
	byName map[string]*Summary
}

func NewBase() *Base {
	return &Base{byFunc: make(map[*ir.Function]*Summary), byName: make(map[string]*Summary)}
}

// Put registers s for a user-analyzed or deserialized function.
func (b *Base) Put(fn *ir.Function, s *Summary) { b.byFunc[fn] = s }

// PutPredefined registers s under a library function name (spec.md
// §4.8), consulted when a call's static target has no ir.Function
// body.
func (b *Base) PutPredefined(name string, s *Summary) { b.byName[name] = s }

// Get looks up the summary for a call's target: by *ir.Function
// identity first (has_predefined_summary / summaryBase lookup order
// in the original puts user bodies first, predefined fallbacks
// second, since a predefined name can be shadowed by a real
// definition in the translation unit), then by name.
func (b *Base) Get(callee *ir.Function, calleeName string) (*Summary, bool) {
	if callee != nil {
		if s, ok := b.byFunc[callee]; ok {
			return s, true
		}
	}
	if s, ok := b.byName[calleeName]; ok {
		return s, true
	}
	return nil, false
}

// IsPure reports whether the callee identified by callee/calleeName is
// pure, treating an unknown callee as pure (isPure's catch branch: an
// unanalyzed external function is conservatively assumed to have no
// refcount effect).
func (b *Base) IsPure(callee *ir.Function, calleeName string) bool {
	s, ok := b.Get(callee, calleeName)
	if !ok {
		return true
	}
	return s.IsPure()
}
