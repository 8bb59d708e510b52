package cfgraph

// graphMuchnick is the example graph from Muchnick, "Advanced Compiler
// Design & Implementation", figure 8.21. Used to exercise PreOrder,
// PostOrder, and IDom against known-good results.
var graphMuchnick = MakeBiGraph(IntGraph{
	0: {1},
	1: {2},
	2: {3, 4},
	3: {2},
	4: {5, 6},
	5: {7},
	6: {7},
	7: {},
})

// graphCS252 is the example graph from
// https://www.seas.harvard.edu/courses/cs252/2011sp/slides/Lec04-SSA.pdf
// slide 24. Used for the dominance-frontier case, which graphMuchnick
// doesn't exercise well (no merge point with more than two preds).
var graphCS252 = MakeBiGraph(IntGraph{
	0: {1},
	1: {2, 5},
	2: {3, 4},
	3: {6},
	4: {6},
	5: {1, 7},
	6: {7},
	7: {8},
	8: {},
})
