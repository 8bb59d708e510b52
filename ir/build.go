package ir

// This file is a minimal builder for the ir model, used by tests and
// by any front end that wants a ready-made way to assemble a
// Function. It performs no analysis of its own.

// NewFunction returns an empty function with n blocks pre-allocated
// (indices 0..n-1), wired with no edges.
func NewFunction(name string, params []Value, n int) *Function {
	f := &Function{Name: name, Params: params}
	f.Blocks = make([]*BasicBlock, n)
	for i := range f.Blocks {
		f.Blocks[i] = &BasicBlock{Index: i, Parent: f}
	}
	return f
}

// Connect adds a CFG edge from block `from` to block `to` (by index).
func (f *Function) Connect(from, to int) {
	a, b := f.Blocks[from], f.Blocks[to]
	a.Succs = append(a.Succs, b)
	b.Preds = append(b.Preds, a)
}

// Emit appends instr to block b's instruction list.
func (b *BasicBlock) Emit(instr Instruction) {
	b.Instrs = append(b.Instrs, instr)
}

func NewLoad(name string, typ Type, b *BasicBlock, addr Value) *Load {
	l := &Load{reg: NewReg(name, typ, b, 0), Addr: addr}
	b.Emit(l)
	return l
}

func NewStore(b *BasicBlock, addr, val Value) *Store {
	s := &Store{reg: NewReg("", nil, b, 0), Addr: addr, Val: val}
	b.Emit(s)
	return s
}

func NewGetElementPtr(name string, typ Type, b *BasicBlock, base Value, field int) *GetElementPtr {
	g := &GetElementPtr{reg: NewReg(name, typ, b, 0), Base: base, Field: field}
	b.Emit(g)
	return g
}

func NewCall(name string, typ Type, b *BasicBlock, callee *Function, calleeName string, args ...Value) *Call {
	c := &Call{reg: NewReg(name, typ, b, 0), Callee: callee, CalleeName: calleeName, Args: args}
	b.Emit(c)
	return c
}

func NewContainerOf(name string, typ Type, b *BasicBlock, base Value, field string) *Call {
	c := &Call{reg: NewReg(name, typ, b, 0), CalleeName: "__container_of", Args: []Value{base}, ContainerOf: true, Field: field}
	b.Emit(c)
	return c
}

func NewCast(name string, typ Type, b *BasicBlock, x Value) *Cast {
	c := &Cast{reg: NewReg(name, typ, b, 0), X: x}
	b.Emit(c)
	return c
}

func NewPhi(name string, typ Type, b *BasicBlock, edges ...Value) *Phi {
	p := &Phi{reg: NewReg(name, typ, b, 0), Edges: edges}
	b.Instrs = append([]Instruction{p}, b.Instrs...)
	return p
}

func NewReturn(b *BasicBlock, result Value) *Return {
	r := &Return{reg: NewReg("", nil, b, 0), Result: result}
	b.Emit(r)
	return r
}

func NewICmp(name string, b *BasicBlock, op ICmpOp, x, y Value) *ICmp {
	c := &ICmp{reg: NewReg(name, Integer{1}, b, 0), Op: op, X: x, Y: y}
	b.Emit(c)
	return c
}

// NewBranch terminates block b: Succs[0] is the true target, Succs[1]
// the false target; Connect both before calling NewBranch.
func NewBranch(b *BasicBlock, cond Value) *Branch {
	br := &Branch{reg: NewReg("", nil, b, 0), Cond: cond}
	b.Emit(br)
	return br
}

func NewSwitch(b *BasicBlock, tag Value, defaultIdx int, cases ...SwitchCase) *Switch {
	s := &Switch{reg: NewReg("", nil, b, 0), Tag: tag, Cases: cases, DefaultIdx: defaultIdx}
	b.Emit(s)
	return s
}
