package cache

import (
	"bytes"
	"testing"

	f "github.com/lighttime0/RSC/internal/formula"
	"github.com/lighttime0/RSC/internal/summary"
)

func buildSample(ctx *f.Context) *summary.Summary {
	s := summary.New("widget_get", nil)

	base := summary.NewOperation("[1]", 1, "widget_get")
	derived := summary.NewOperation("[1]", 1, "widget_get")
	derived.AddHistoryEntry(base)

	cond := f.NewAtom(ctx, f.OpGT, ctx.GetSignature("[1]"), ctx.GetConstant(0))
	named := f.NewNamedAtom(ctx, "widget_locked")
	pc := f.And(f.Not(named), cond)

	s.Entries = []*summary.PathSummaryEntry{
		{PC: pc, Ops: summary.RefcountOps{"[1]": derived}, Ret: "[0]"},
		{PC: f.GetTrue(ctx), Ops: summary.RefcountOps{}, Ret: "[0]"},
	}
	s.Dropped = []*summary.PathSummaryEntry{
		{PC: f.GetTrue(ctx), Ops: summary.RefcountOps{"[1]": summary.NewOperation("[1]", -1, "widget_put")}, Ret: "[0]"},
	}
	return s
}

func TestWriteReadSummaryRoundTrip(t *testing.T) {
	ctx := f.NewContext(nil)
	want := buildSample(ctx)

	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.WriteSummary(want); err != nil {
		t.Fatalf("WriteSummary: %v", err)
	}

	r := bytes.NewReader(buf.Bytes())
	idx, err := Open(r, int64(buf.Len()))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(idx.Names) != 1 || idx.Names[0] != "widget_get" {
		t.Fatalf("Names = %v, want [widget_get]", idx.Names)
	}
	if !idx.Has("widget_get") || idx.Has("nonexistent") {
		t.Fatalf("Has lookup mismatch")
	}

	rctx := f.NewContext(nil)
	got, ok, err := idx.ReadSummary(rctx, "widget_get")
	if err != nil || !ok {
		t.Fatalf("ReadSummary: ok=%v err=%v", ok, err)
	}

	if len(got.Entries) != len(want.Entries) {
		t.Fatalf("got %d entries, want %d", len(got.Entries), len(want.Entries))
	}
	if got.Entries[0].PC.String() != want.Entries[0].PC.String() {
		t.Errorf("entry 0 PC = %s, want %s", got.Entries[0].PC, want.Entries[0].PC)
	}
	op, ok := got.Entries[0].Ops["[1]"]
	if !ok || op.Amount != 1 {
		t.Fatalf("entry 0 Ops[\"[1]\"] = %+v, want amount 1", op)
	}
	if len(op.From) != 1 || op.From[0].Amount != 1 {
		t.Errorf("provenance chain not preserved: From = %+v", op.From)
	}
	if op.Host != "widget_get" {
		t.Errorf("Host = %q, want widget_get (re-stamped on read)", op.Host)
	}

	if len(got.Dropped) != 1 {
		t.Fatalf("got %d dropped entries, want 1", len(got.Dropped))
	}
}

func TestReadSummaryMissingNameReportsNotFound(t *testing.T) {
	ctx := f.NewContext(nil)
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.WriteSummary(buildSample(ctx)); err != nil {
		t.Fatalf("WriteSummary: %v", err)
	}

	r := bytes.NewReader(buf.Bytes())
	idx, err := Open(r, int64(buf.Len()))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	_, ok, err := idx.ReadSummary(f.NewContext(nil), "nope")
	if err != nil {
		t.Fatalf("ReadSummary on a missing name should not error, got %v", err)
	}
	if ok {
		t.Fatalf("ReadSummary on a missing name should report ok=false")
	}
}

func TestWriteSummaryRejectsUnnamedSummary(t *testing.T) {
	ctx := f.NewContext(nil)
	s := summary.New("", nil)
	s.Entries = []*summary.PathSummaryEntry{{PC: f.GetTrue(ctx), Ops: summary.RefcountOps{}, Ret: "[0]"}}

	var buf bytes.Buffer
	if err := NewWriter(&buf).WriteSummary(s); err == nil {
		t.Fatalf("WriteSummary on an unnamed summary should fail")
	}
}
