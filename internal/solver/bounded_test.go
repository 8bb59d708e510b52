package solver

import (
	"testing"

	f "github.com/lighttime0/RSC/internal/formula"
)

func TestBoundedCheckSATFindsSatisfyingAssignment(t *testing.T) {
	c := NewContext(t)
	sig := c.GetSignature("[1]")
	form := f.NewAtom(c, f.OpGT, sig, c.GetConstant(0))

	b := NewBounded()
	if !b.CheckSAT(form) {
		t.Errorf("CheckSAT([1] > 0) = false, want true (e.g. [1]=1 satisfies it)")
	}
}

func TestBoundedCheckSATUnsatContradiction(t *testing.T) {
	c := NewContext(t)
	sig := c.GetSignature("[1]")
	form := f.And(
		f.NewAtom(c, f.OpGT, sig, c.GetConstant(100)),
		f.NewAtom(c, f.OpLT, sig, c.GetConstant(-100)),
	)
	b := &Bounded{Range: 16}
	if b.CheckSAT(form) {
		t.Errorf("CheckSAT([1]>100 /\\ [1]<-100) = true, want false: unsatisfiable within the bound")
	}
}

func TestBoundedCheckSATTrivialTrueFalse(t *testing.T) {
	c := NewContext(t)
	b := NewBounded()
	if !b.CheckSAT(f.GetTrue(c)) {
		t.Error("CheckSAT(True) should be true")
	}
	if b.CheckSAT(f.GetFalse(c)) {
		t.Error("CheckSAT(False) should be false")
	}
}

// NewContext is a tiny test helper building a Context with no
// underlying ir.Function (formula tests never need one).
func NewContext(t *testing.T) *f.Context {
	t.Helper()
	return f.NewContext(nil)
}
