package rsc

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/lighttime0/RSC/internal/summary"
	"github.com/lighttime0/RSC/ir"
)

// location renders fn's entry position as "file:line", honoring
// cfg.Prefix, or "<unknown>" if fn carries no position information
// (Summary::print's getLocation fallback).
func location(cfg *Config, fn *ir.Function) string {
	if fn == nil || fn.FileSet == nil {
		return "<unknown>"
	}
	entry := fn.Entry()
	if entry == nil || len(entry.Instrs) == 0 {
		return "<unknown>"
	}
	pos := fn.FileSet.Position(entry.Instrs[0].Pos())
	if !pos.IsValid() {
		return "<unknown>"
	}
	loc := pos.String()
	if cfg.Prefix != "" {
		loc = strings.TrimPrefix(loc, cfg.Prefix)
	}
	return loc
}

// sortedSigs returns ops's signatures in a stable order, so two dumps
// of the same Summary always print identically.
func sortedSigs(ops summary.RefcountOps) []string {
	sigs := make([]string, 0, len(ops))
	for sig := range ops {
		sigs = append(sigs, sig)
	}
	sort.Strings(sigs)
	return sigs
}

// printOps writes one "<sig> <+|-><n>" line per nonzero delta in ops,
// skipping any signature whose amount equals the same signature's
// amount in other (when other is non-nil) — the same-on-both-paths
// elision PathSummaryEntry::print applies when printing a case
// alongside the other half of an inconsistent pair. Reports whether
// anything was printed.
func printOps(w io.Writer, prefix string, ops summary.RefcountOps, other summary.RefcountOps) bool {
	printed := false
	for _, sig := range sortedSigs(ops) {
		op := ops[sig]
		if op.Amount == 0 {
			continue
		}
		if other != nil {
			if o2, ok := other[sig]; ok && o2.Amount == op.Amount {
				continue
			}
		}
		sign := ""
		if op.Amount > 0 {
			sign = "+"
		}
		fmt.Fprintf(w, "%s%s %s%d\n", prefix, sig, sign, op.Amount)
		printed = true
	}
	return printed
}

// printEntry writes one PathSummaryEntry (Summary.cpp's
// PathSummaryEntry::print, EXACT variant): the condition, then its
// refcount deltas or a bare "-" when there are none, then a "returns"
// line when Ret is non-empty.
func printEntry(w io.Writer, e *summary.PathSummaryEntry, other *summary.PathSummaryEntry) {
	pc := e.PC
	if e.ExactPC != nil {
		pc = e.ExactPC
	}
	fmt.Fprintf(w, "\t%s\n", pc)

	var otherOps summary.RefcountOps
	if other != nil {
		otherOps = other.Ops
	}
	wrote := printOps(w, "\t\t", e.Ops, otherOps)
	if !wrote && e.Ret == "" {
		fmt.Fprint(w, "\t\t-\n")
	}
	if e.Ret != "" {
		fmt.Fprintf(w, "\t\treturns %s\n", e.Ret)
	}
}

// DumpSummary renders s in the human-readable format of spec.md §6: a
// header line naming the function and its source location, one block
// per kept entry, and — when complete is true and some entries were
// dropped — a "~~~~~ dropped ~~~~~" section for them. Reports whether
// anything was printed (an empty Summary prints nothing, matching
// Summary::print's early-return on an empty summaries list).
func DumpSummary(w io.Writer, cfg *Config, fn *ir.Function, s *summary.Summary, complete bool) bool {
	if s == nil || len(s.Entries) == 0 {
		return false
	}

	if fn != nil {
		fmt.Fprintf(w, "%s (%s@%s)\n", s.Name, s.Name, location(cfg, fn))
	} else {
		fmt.Fprintf(w, "%s\n", s.Name)
	}
	for _, e := range s.Entries {
		printEntry(w, e, nil)
	}
	if complete && len(s.Dropped) > 0 {
		fmt.Fprint(w, "\t~~~~~ dropped ~~~~~\n")
		for _, e := range s.Dropped {
			printEntry(w, e, nil)
		}
	}
	return true
}

// DumpInconsistency writes an inconsistency report for a disagreeing
// pair (spec.md §6 "Inconsistency reports"): the two entries annotated
// "-- Case 1"/"-- Case 2", each eliding the deltas the two sides
// happen to agree on, followed by the tainted (signature, |delta|)
// pairs that caused the disagreement.
func DumpInconsistency(w io.Writer, name string, kept, dropped *summary.PathSummaryEntry, tainted map[summary.TaintKey]bool) {
	fmt.Fprintf(w, "%s: inconsistent summary\n", name)
	fmt.Fprint(w, "-- Case 1\n")
	printEntry(w, kept, dropped)
	fmt.Fprint(w, "-- Case 2\n")
	printEntry(w, dropped, kept)

	keys := make([]summary.TaintKey, 0, len(tainted))
	for k := range tainted {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Sig != keys[j].Sig {
			return keys[i].Sig < keys[j].Sig
		}
		return keys[i].Delta < keys[j].Delta
	})
	for _, k := range keys {
		fmt.Fprintf(w, "\ttainted: %s delta %d\n", k.Sig, k.Delta)
	}
}
