package cfgraph

import "math/big"

// PreOrder returns g's nodes reachable from root, visited pre-order.
// Used by internal/cfgpath's slicing pass to walk backward data
// dependencies from the return instruction in a stable order. The
// visited set is a math/big.Int bitmask — the same big-count idiom
// _examples/aclements-go-misc/rtcheck uses for LockSet — sized to
// keep small graphs entirely on the stack.
func PreOrder(g Graph, root int) []int {
	const stackNodes = 1024
	var words [stackNodes / 32]big.Word
	var visited big.Int
	visited.SetBits(words[:])

	var out []int
	var visit func(n int)
	visit = func(n int) {
		out = append(out, n)
		visited.SetBit(&visited, n, 1)
		for _, succ := range g.Out(n) {
			if visited.Bit(succ) == 0 {
				visit(succ)
			}
		}
	}
	visit(root)
	return out
}

// PostOrder returns g's nodes reachable from root, visited post-order.
// Required by IDom (Cooper-Harvey-Kennedy needs a reverse postorder
// node numbering).
func PostOrder(g Graph, root int) []int {
	const stackNodes = 1024
	var words [stackNodes / 32]big.Word
	var visited big.Int
	visited.SetBits(words[:])

	var out []int
	var visit func(n int)
	visit = func(n int) {
		visited.SetBit(&visited, n, 1)
		for _, succ := range g.Out(n) {
			if visited.Bit(succ) == 0 {
				visit(succ)
			}
		}
		out = append(out, n)
	}
	visit(root)
	return out
}

// Reverse reverses xs in place and returns it.
func Reverse(xs []int) []int {
	for i, j := 0, len(xs)-1; i < j; i, j = i+1, j-1 {
		xs[i], xs[j] = xs[j], xs[i]
	}
	return xs
}
