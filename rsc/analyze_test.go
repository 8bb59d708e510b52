package rsc

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	f "github.com/lighttime0/RSC/internal/formula"
	"github.com/lighttime0/RSC/internal/solver"
	"github.com/lighttime0/RSC/internal/summary"
	"github.com/lighttime0/RSC/ir"
)

// getSummary builds a one-entry predefined-shaped Summary standing in
// for a "get(x)" acquire of a "[1]:T" signature, the same shape
// spec.md §8's E2/E3 scenarios use.
func getSummary() *summary.Summary {
	s := summary.New("get", nil)
	s.Entries = []*summary.PathSummaryEntry{{
		PC:  f.True{},
		Ops: summary.RefcountOps{"[1]:T": summary.NewOperation("[1]:T", 1, "get")},
		Ret: "[0]",
	}}
	return s
}

// buildIfElse builds a diamond: b0: cmp = x != 0; br cmp, b1, b2; b1:
// [call get(x);] br b3; b2: br b3; b3: phi = [b1: x, b2: 0]; return phi.
// The IR model only admits a single Return per function (one Exit
// vertex), so the two branches have to rejoin through a common exit
// block with a phi rather than returning directly, the same shape
// cfgpath's own buildDiamond test fixture uses. callGet controls
// whether b1 calls get(x) before rejoining.
func buildIfElse(t *testing.T, name string, callGet bool) *ir.Function {
	t.Helper()
	i32 := ir.Integer{Bits: 32}
	p0 := ir.NewParam(1, "x", i32)
	fn := ir.NewFunction(name, []ir.Value{p0}, 4)
	fn.Connect(0, 1)
	fn.Connect(0, 2)
	fn.Connect(1, 3)
	fn.Connect(2, 3)
	b0, b1, b2, b3 := fn.Blocks[0], fn.Blocks[1], fn.Blocks[2], fn.Blocks[3]

	cmp := ir.NewICmp("cmp", b0, ir.ICmpNE, p0, ir.NewConst(0, i32))
	ir.NewBranch(b0, cmp)

	if callGet {
		ir.NewCall("r1", nil, b1, nil, "get", p0)
	}
	ir.NewBranch(b1, nil)
	ir.NewBranch(b2, nil)

	phi := ir.NewPhi("phi", i32, b3, p0, ir.NewConst(0, i32))
	ir.NewReturn(b3, phi)
	return fn
}

// maybeSummary stands in for a callee with two genuinely ambiguous
// cases that share a return value but disagree on their refcount
// effect: one acquires "[1]:T", the other is pure. Both cases carry an
// always-true path condition, so a caller that invokes it along a
// single straight-line path (no branch of its own) sees the two
// resulting entries under a jointly satisfiable condition — the shape
// spec.md §8's E3 scenario needs to exercise Summary.Merge's
// inconsistency routing, as opposed to two entries that only disagree
// because they were reached via mutually exclusive caller branches.
func maybeSummary() *summary.Summary {
	s := summary.New("maybe", nil)
	s.Entries = []*summary.PathSummaryEntry{
		{PC: f.True{}, Ops: summary.RefcountOps{"[1]:T": summary.NewOperation("[1]:T", 1, "maybe")}, Ret: "0"},
		{PC: f.True{}, Ops: summary.RefcountOps{}, Ret: "0"},
	}
	return s
}

// buildCallMaybe builds a single straight-line block calling maybe(x)
// and returning the literal constant 0, regardless of what maybe
// returns.
func buildCallMaybe(t *testing.T, name string) *ir.Function {
	t.Helper()
	i32 := ir.Integer{Bits: 32}
	p0 := ir.NewParam(1, "x", i32)
	fn := ir.NewFunction(name, []ir.Value{p0}, 1)
	b0 := fn.Blocks[0]
	ir.NewCall("r1", nil, b0, nil, "maybe", p0)
	ir.NewReturn(b0, ir.NewConst(0, i32))
	return fn
}

func TestAnalyzeFunctionDivergesOnReturn(t *testing.T) {
	fn := buildIfElse(t, "e2", true)

	base := summary.NewBase()
	base.PutPredefined("get", getSummary())

	cfg := DefaultConfig()
	s, err := AnalyzeFunction(cfg, solver.NewBounded(), base, fn, nil)
	if err != nil {
		t.Fatalf("AnalyzeFunction: %v", err)
	}
	if len(s.Dropped) != 0 {
		t.Fatalf("E2 expects no dropped entries, got %d", len(s.Dropped))
	}
	if len(s.Entries) != 2 {
		t.Fatalf("E2 expects two kept entries, got %d: %+v", len(s.Entries), s.Entries)
	}

	var sawAcquireReturnsParam, sawPureReturnsZero bool
	for _, e := range s.Entries {
		op, hasOp := e.Ops["[1]:T"]
		switch {
		case e.Ret == "[1]" && hasOp && op.Amount == 1:
			sawAcquireReturnsParam = true
		case e.Ret == "0" && (!hasOp || op.Amount == 0):
			sawPureReturnsZero = true
		}
	}
	if !sawAcquireReturnsParam {
		t.Errorf("expected an entry acquiring [1]:T and returning [1], got %+v", s.Entries)
	}
	if !sawPureReturnsZero {
		t.Errorf("expected a pure entry returning 0, got %+v", s.Entries)
	}
}

func TestAnalyzeFunctionRoutesInconsistentPairToDropped(t *testing.T) {
	fn := buildCallMaybe(t, "e3")

	base := summary.NewBase()
	base.PutPredefined("maybe", maybeSummary())

	cfg := DefaultConfig()
	s, err := AnalyzeFunction(cfg, solver.NewBounded(), base, fn, nil)
	if err != nil {
		t.Fatalf("AnalyzeFunction: %v", err)
	}
	if len(s.Entries) != 1 || len(s.Dropped) != 1 {
		t.Fatalf("E3 expects one kept and one dropped entry, got entries=%d dropped=%d", len(s.Entries), len(s.Dropped))
	}
	if len(s.Tainted) == 0 {
		t.Errorf("E3 expects a tainted signature to be recorded")
	}
	found := false
	for k := range s.Tainted {
		if k.Sig == "[1]:T" && k.Delta == 1 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected tainted entry ([1]:T, 1), got %v", s.Tainted)
	}
}

func TestAnalyzeFunctionSkipsBlacklisted(t *testing.T) {
	fn := buildIfElse(t, "blacklisted", false)
	cfg := DefaultConfig()
	cfg.Blacklist["blacklisted"] = true

	s, err := AnalyzeFunction(cfg, solver.NewBounded(), summary.NewBase(), fn, nil)
	if err != nil {
		t.Fatalf("AnalyzeFunction: %v", err)
	}
	if s != nil {
		t.Errorf("blacklisted function should not be analyzed, got %+v", s)
	}
}

func TestAnalyzeFunctionSkipsBodylessFunction(t *testing.T) {
	fn := &ir.Function{Name: "extern_fn"}
	cfg := DefaultConfig()

	s, err := AnalyzeFunction(cfg, solver.NewBounded(), summary.NewBase(), fn, nil)
	if err != nil {
		t.Fatalf("AnalyzeFunction: %v", err)
	}
	if s != nil {
		t.Errorf("a function with no blocks should not be analyzed, got %+v", s)
	}
}

func TestDefaultConfigEnablesEveryPredefinedFamily(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.MaxPathsPerFunc != 100 || cfg.MaxSubcasesPerPath != 10 || !cfg.ForceExclude {
		t.Errorf("DefaultConfig() = %+v, want the documented spec.md §6 defaults", cfg)
	}
}

func TestLoadNameListSkipsBlankLinesAndComments(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blacklist")
	content := "foo\n\n# a comment\nbar\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	names, err := LoadNameList(path)
	if err != nil {
		t.Fatalf("LoadNameList: %v", err)
	}
	if !names["foo"] || !names["bar"] || len(names) != 2 {
		t.Errorf("LoadNameList = %v, want {foo, bar}", names)
	}
}

func TestDumpSummaryIncludesDroppedSeparator(t *testing.T) {
	fn := buildCallMaybe(t, "e3dump")
	base := summary.NewBase()
	base.PutPredefined("maybe", maybeSummary())

	cfg := DefaultConfig()
	s, err := AnalyzeFunction(cfg, solver.NewBounded(), base, fn, nil)
	if err != nil {
		t.Fatalf("AnalyzeFunction: %v", err)
	}

	var buf bytes.Buffer
	if !DumpSummary(&buf, cfg, fn, s, true) {
		t.Fatalf("DumpSummary should have printed something")
	}
	out := buf.String()
	if !strings.Contains(out, "e3dump") {
		t.Errorf("dump should name the function, got %q", out)
	}
	if !strings.Contains(out, "~~~~~ dropped ~~~~~") {
		t.Errorf("dump should carry the dropped separator, got %q", out)
	}
	if !strings.Contains(out, "returns") {
		t.Errorf("dump should print a returns line, got %q", out)
	}
}

func TestDumpInconsistencyAnnotatesBothCases(t *testing.T) {
	kept := &summary.PathSummaryEntry{PC: f.True{}, Ops: summary.RefcountOps{"[1]:T": summary.NewOperation("[1]:T", 1, "get")}, Ret: "0"}
	dropped := &summary.PathSummaryEntry{PC: f.True{}, Ops: summary.RefcountOps{}, Ret: "0"}
	tainted := map[summary.TaintKey]bool{{Sig: "[1]:T", Delta: 1}: true}

	var buf bytes.Buffer
	DumpInconsistency(&buf, "e3", kept, dropped, tainted)
	out := buf.String()
	if !strings.Contains(out, "-- Case 1") || !strings.Contains(out, "-- Case 2") {
		t.Errorf("report should annotate both cases, got %q", out)
	}
	if !strings.Contains(out, "tainted: [1]:T delta 1") {
		t.Errorf("report should list the tainted signature, got %q", out)
	}
}
