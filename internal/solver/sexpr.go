package solver

import (
	"fmt"
	"strings"
)

// sexpr is a minimal S-expression: either an atom (Sym) or a list of
// child sexprs. Good enough to parse the narrow subset of SMT-LIB2
// output our tactics produce (Bool/LIA connectives, numerals,
// symbols) — not a general SMT-LIB parser.
type sexpr struct {
	Sym      string
	Children []*sexpr
}

func (s *sexpr) isAtom() bool { return s.Children == nil }

// parseSexpr parses the first complete S-expression in text and
// returns it along with the unconsumed remainder.
func parseSexpr(text string) (*sexpr, string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, "", fmt.Errorf("solver: empty s-expression")
	}
	if text[0] != '(' {
		end := 0
		for end < len(text) && !isSexprBreak(text[end]) {
			end++
		}
		return &sexpr{Sym: text[:end]}, text[end:], nil
	}

	rest := text[1:]
	node := &sexpr{}
	for {
		rest = strings.TrimSpace(rest)
		if rest == "" {
			return nil, "", fmt.Errorf("solver: unterminated s-expression in %q", text)
		}
		if rest[0] == ')' {
			return node, rest[1:], nil
		}
		child, tail, err := parseSexpr(rest)
		if err != nil {
			return nil, "", err
		}
		node.Children = append(node.Children, child)
		rest = tail
	}
}

func isSexprBreak(b byte) bool {
	return b == '(' || b == ')' || b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// parseSexprs parses every top-level S-expression in text.
func parseSexprs(text string) ([]*sexpr, error) {
	var out []*sexpr
	rest := text
	for strings.TrimSpace(rest) != "" {
		s, tail, err := parseSexpr(rest)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
		rest = tail
	}
	return out, nil
}
