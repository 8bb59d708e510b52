package rsc

import (
	"github.com/lighttime0/RSC/internal/cfgpath"
	"github.com/lighttime0/RSC/internal/diag"
	f "github.com/lighttime0/RSC/internal/formula"
	"github.com/lighttime0/RSC/internal/summary"
	"github.com/lighttime0/RSC/ir"
)

// basePurity adapts a summary.Base to cfgpath.Purity, letting the
// reduction pass ask whether a callee is known to have no refcount
// effect without cfgpath importing internal/summary itself (see
// cfgpath.Purity's doc comment on the intentional layering).
type basePurity struct{ base *summary.Base }

func (p basePurity) IsPure(fn *ir.Function) bool { return p.base.IsPure(fn, fn.Name) }

// AnalyzeFunction is the single public entry point of spec.md §6: it
// enumerates fn's simple paths, synthesizes a PathSummaryEntry per
// path against base, and merges the results into a fresh Summary.
// slv backs every SMT decision the analysis makes along the way
// (internal/solver.External or internal/solver.Bounded); log receives
// positioned diagnostics for anything notable encountered on the way
// (spec.md §7 kind 1: a shape mismatch or an unexpected IR form is
// logged and the function degrades to an empty summary rather than
// aborting the run).
//
// A nil Summary with a nil error means fn was not analyzed at all
// (blacklisted, or declaration-only): callers should simply not Put
// anything for it into base, so later callers of it fall through to
// summary.Base.IsPure's conservative "unknown callee is pure" rule.
// A non-nil error means a contract violation (spec.md §7 kind 4) was
// recovered; the caller should treat the run as failed for fn but may
// continue with other functions.
func AnalyzeFunction(cfg *Config, slv f.Solver, base *summary.Base, fn *ir.Function, log *diag.Logger) (s *summary.Summary, err error) {
	defer diag.Recover(&err)

	if cfg.Blacklist[fn.Name] {
		if log != nil {
			log.Warnl(0, "%s: blacklisted, skipping analysis", fn.Name)
		}
		return nil, nil
	}
	if fn.Entry() == nil {
		if log != nil {
			log.Warnl(0, "%s: no function body, treating as an unanalyzed external call", fn.Name)
		}
		return nil, nil
	}

	ctx := f.NewContext(fn)
	ctx.SetSolver(slv)

	g := cfgpath.NewGraph(ctx, fn)
	purity := basePurity{base}
	if cfg.ForceExclude {
		g.MarkInclusionSafety(purity)
		g.ReducePaths()
	} else {
		g.Slice(purity)
	}

	maxPaths := cfg.MaxPathsPerFunc
	if maxPaths <= 0 {
		maxPaths = cfgpath.DefaultMaxPathsPerFunc
	}
	maxSubcases := cfg.MaxSubcasesPerPath
	if maxSubcases <= 0 {
		maxSubcases = summary.DefaultMaxSubcasesPerPath
	}

	s = summary.New(fn.Name, fn)
	cfgpath.Enumerate(g, maxPaths, func(it *cfgpath.PathIterator) bool {
		for _, e := range summary.BuildEntries(ctx, g, it, base, maxSubcases) {
			s.Merge(ctx, e)
		}
		return true
	})
	return s, nil
}
