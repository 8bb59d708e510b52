package visit

import (
	"bytes"
	"strings"
	"testing"

	f "github.com/lighttime0/RSC/internal/formula"
)

func TestRemoveLocalsKeepsOnlyBracketedSignatures(t *testing.T) {
	c := f.NewContext(nil)
	local := c.GetSignature("{x@f}")
	param := c.GetSignature("[1]")

	formula := f.And(
		f.NewAtom(c, f.OpEQ, local, c.GetConstant(4)),
		f.NewAtom(c, f.OpGT, param, c.GetConstant(0)),
	)

	got := Walk(c, RemoveLocals{}, formula)
	if got == nil {
		t.Fatal("RemoveLocals dropped everything, want the [1] atom kept")
	}
	if !strings.Contains(got.String(), "[1]") {
		t.Errorf("result %q should mention [1]", got)
	}
	if strings.Contains(got.String(), "{x@f}") {
		t.Errorf("result %q should not mention {x@f}", got)
	}
}

func TestRangeToConstantCollapsesPinnedRange(t *testing.T) {
	c := f.NewContext(nil)
	sig := c.GetSignature("[1]")

	formula := f.And(
		f.NewAtom(c, f.OpLE, sig, c.GetConstant(5)),
		f.NewAtom(c, f.OpGE, sig, c.GetConstant(5)),
	)

	rc := NewRangeToConstant(c)
	result := Walk(c, rc, formula)
	if !strings.Contains(result.String(), "[1] = 5") {
		t.Errorf("RangeToConstant result = %q, want atoms collapsed to [1] = 5", result)
	}
}

func TestPrintTreeWritesIndentedStructure(t *testing.T) {
	c := f.NewContext(nil)
	formula := f.Not(f.NewNamedAtom(c, "x"))
	var buf bytes.Buffer
	Walk(c, NewPrintTree(&buf), formula)
	if !strings.Contains(buf.String(), "Negation") {
		t.Errorf("PrintTree output %q missing Negation line", buf.String())
	}
}
