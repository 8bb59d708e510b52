// Package cfgraph provides densely-numbered directed-graph algorithms
// (pre/post order, dominance) used by internal/cfgpath to compute the
// path-count approximation and the per-path dominated-block set of
// spec.md §4.3. Adapted from
// _examples/aclements-go-misc/obj/internal/graph, which implements
// the same Cooper-Harvey-Kennedy dominance algorithm for a different
// consumer (object-file basic-block graphs); renamed to this package
// and repurposed over CFG vertex indices instead of object-file block
// indices.
package cfgraph

// Graph is a directed graph whose nodes are densely numbered from 0.
// A path_iterator's reduced CFG (spec.md §4.3) implements this over
// its Vertex indices.
type Graph interface {
	NumNodes() int
	Out(i int) []int
}

// BiGraph extends Graph with in-edges, required by IDom/DomFrontier.
type BiGraph interface {
	Graph
	In(i int) []int
}

// MakeBiGraph builds in-edges for a Graph that only exposes out-edges.
func MakeBiGraph(g Graph) BiGraph {
	if bg, ok := g.(BiGraph); ok {
		return bg
	}
	preds := make([][]int, g.NumNodes())
	for i := range preds {
		for _, j := range g.Out(i) {
			preds[j] = append(preds[j], i)
		}
	}
	return &bigraph{g, preds}
}

type bigraph struct {
	Graph
	preds [][]int
}

func (b *bigraph) In(i int) []int { return b.preds[i] }

// IntGraph is the simplest Graph: IntGraph[i] lists i's out-edges.
// Used directly by internal/cfgpath's vertex graph and by this
// package's own tests.
type IntGraph [][]int

func (g IntGraph) NumNodes() int  { return len(g) }
func (g IntGraph) Out(i int) []int { return g[i] }
