package visit

import (
	"fmt"
	"io"
	"strings"

	f "github.com/lighttime0/RSC/internal/formula"
)

// PrintTree dumps a formula's structure indented by nesting depth,
// grounded on FormulaVisitor.cpp's PrintTree.
type PrintTree struct {
	Base
	W     io.Writer
	level int
}

func NewPrintTree(w io.Writer) *PrintTree { return &PrintTree{W: w} }

func (p *PrintTree) prefix() string { return strings.Repeat("    ", p.level) }

func (p *PrintTree) PostTrue(n f.Formula) f.Formula {
	fmt.Fprintf(p.W, "%sTrue\n", p.prefix())
	return n
}

func (p *PrintTree) PostFalse(n f.Formula) f.Formula {
	fmt.Fprintf(p.W, "%sFalse\n", p.prefix())
	return n
}

func (p *PrintTree) PostAtom(n *f.Atom) f.Formula {
	fmt.Fprintf(p.W, "%sAtom: %s\n", p.prefix(), n.String())
	return n
}

func (p *PrintTree) PreConj(n *f.Conjunction) f.Formula {
	fmt.Fprintf(p.W, "%sConjunction\n", p.prefix())
	p.level++
	return n
}
func (p *PrintTree) PostConj(n *f.Conjunction, _, _ f.Formula) f.Formula {
	p.level--
	return n
}

func (p *PrintTree) PreDisj(n *f.Disjunction) f.Formula {
	fmt.Fprintf(p.W, "%sDisjunction\n", p.prefix())
	p.level++
	return n
}
func (p *PrintTree) PostDisj(n *f.Disjunction, _, _ f.Formula) f.Formula {
	p.level--
	return n
}

func (p *PrintTree) PreNeg(n *f.Negation) f.Formula {
	fmt.Fprintf(p.W, "%sNegation\n", p.prefix())
	p.level++
	return n
}
func (p *PrintTree) PostNeg(n *f.Negation, _ f.Formula) f.Formula {
	p.level--
	return n
}
