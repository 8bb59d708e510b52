package ir

// Operands returns the Values read by inst, in an unspecified order.
// Mirrors go/ssa's Instruction.Operands, the def-use walk
// rtcheck/live.go's livenessFor consumes; internal/cfgpath's slicing
// pass (spec.md §4.3) and inclusion-safety check walk the same way to
// find an instruction's backward dependencies and its local-use
// status.
func Operands(inst Instruction) []Value {
	var ops []Value
	add := func(v Value) {
		if v != nil {
			ops = append(ops, v)
		}
	}
	switch i := inst.(type) {
	case *Load:
		add(i.Addr)
	case *Store:
		add(i.Addr)
		add(i.Val)
	case *GetElementPtr:
		add(i.Base)
	case *Call:
		for _, a := range i.Args {
			add(a)
		}
	case *Cast:
		add(i.X)
	case *Phi:
		for _, e := range i.Edges {
			add(e)
		}
	case *Return:
		add(i.Result)
	case *ICmp:
		add(i.X)
		add(i.Y)
	case *Branch:
		add(i.Cond)
	case *Switch:
		add(i.Tag)
		for _, c := range i.Cases {
			add(c.Value)
		}
	}
	return ops
}
