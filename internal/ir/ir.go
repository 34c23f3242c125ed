// Package ir is the linear, typed intermediate representation produced by
// lowering a resolved FuncBody (spec.md §4.7 "IR"). Unlike the shared CFG,
// every Value here carries a concrete types.Type and every local variable
// has exactly one Alloca living in its function's entry block — the
// "alloca-per-variable-in-entry-block" invariant spec.md §4.7 requires so
// that a later mem2reg-style pass (or LLVM's own) has a single place to
// look for a variable's storage.
//
// The Value-interface-over-concrete-instruction-struct shape mirrors the
// teacher's own light IR (ir/lir/*.go): one struct per instruction kind,
// each implementing a small common interface, rather than one tagged
// union struct.
package ir

import (
	"sync"

	"adeptc/internal/types"
)

// Value is anything that produces a typed result: an instruction, a
// constant, or a function parameter.
type Value interface {
	ID() int
	Type() types.Type
	String() string
}

// Param is one resolved function parameter.
type Param struct {
	id   int
	name string
	typ  types.Type
}

func (p *Param) ID() int          { return p.id }
func (p *Param) Name() string     { return p.name }
func (p *Param) Type() types.Type { return p.typ }
func (p *Param) String() string   { return p.name + ": " + p.typ.String() }

// Block is a single-entry, single-exit straight-line instruction sequence
// ending in exactly one terminator (spec.md §4.7 "IR basic block").
type Block struct {
	f      *Func
	id     int
	instrs []Value
	term   Terminator
}

func (b *Block) ID() int            { return b.id }
func (b *Block) Instrs() []Value    { return b.instrs }
func (b *Block) Term() Terminator   { return b.term }
func (b *Block) Func() *Func        { return b.f }
func (b *Block) emit(v Value) Value { b.instrs = append(b.instrs, v); return v }

// SetTerm sets Block b's terminator. It is an internal invariant violation
// (spec.md §7 ICE) to terminate a block twice.
func (b *Block) SetTerm(t Terminator) {
	if b.term != nil {
		panic("ir: block " + b.Name() + " already terminated")
	}
	b.term = t
}

// Name returns the textual label of Block b.
func (b *Block) Name() string { return blockLabel(b.id) }

func blockLabel(id int) string {
	return "bb" + itoa(id)
}

// Func is one lowered function body.
type Func struct {
	m       *Module
	name    string
	params  []*Param
	ret     types.Type
	blocks  []*Block
	locals  []*Alloca // every local's Alloca, all living in blocks[0] (spec.md §4.7 invariant).
	seq     int
	isC     bool
	extern  bool // declaration only, no body (spec.md §4.7 "external declarations").
	variadic bool
	allocaPos int // insertion index in blocks[0].instrs for the next CreateLocal.
}

// NewFunc creates a Func owned by m, with a single empty entry block.
func (m *Module) NewFunc(name string, ret types.Type, isC bool) *Func {
	f := &Func{m: m, name: name, ret: ret, isC: isC}
	f.blocks = append(f.blocks, &Block{f: f, id: f.nextID()})
	m.mu.Lock()
	m.funcs = append(m.funcs, f)
	m.mu.Unlock()
	return f
}

// NewDeclaration registers an external function with no body (spec.md
// §4.7 "a Call may target a Func with Extern true").
func (m *Module) NewDeclaration(name string, params []types.Type, ret types.Type, variadic bool) *Func {
	f := &Func{m: m, name: name, ret: ret, extern: true, variadic: variadic}
	for i, pt := range params {
		f.params = append(f.params, &Param{id: f.nextID(), name: paramName(i), typ: pt})
	}
	m.mu.Lock()
	m.funcs = append(m.funcs, f)
	m.mu.Unlock()
	return f
}

func paramName(i int) string { return "arg" + itoa(i) }

// PromoteDeclaration turns a previously-declared extern Func (created via
// NewDeclaration when a call forward-references a function not yet
// lowered) into a definition in place: the same *ir.Func value every
// earlier Call already captured gains a real entry block, rather than
// aliasing to a second stub that never gets a body (spec.md §4.7 "call
// lowering"). ret and isC are corrected to the authoritative values the
// real definition carries, since a forward declaration's guesses (or
// defaults, when the caller's Callee metadata was unavailable) may not
// match.
func (f *Func) PromoteDeclaration(ret types.Type, isC bool) {
	f.extern = false
	f.variadic = false
	f.params = nil
	f.ret = ret
	f.isC = isC
	f.blocks = append(f.blocks, &Block{f: f, id: f.nextID()})
}

func (f *Func) Module() *Module   { return f.m }
func (f *Func) Name() string      { return f.name }
func (f *Func) Return() types.Type { return f.ret }
func (f *Func) Params() []*Param  { return f.params }
func (f *Func) Blocks() []*Block  { return f.blocks }
func (f *Func) Locals() []*Alloca { return f.locals }
func (f *Func) Entry() *Block     { return f.blocks[0] }
func (f *Func) IsExtern() bool    { return f.extern }
func (f *Func) IsVariadic() bool  { return f.variadic }
func (f *Func) IsC() bool         { return f.isC }

func (f *Func) nextID() int { id := f.seq; f.seq++; return id }

// AddParam appends a new parameter to f's signature.
func (f *Func) AddParam(name string, t types.Type) *Param {
	p := &Param{id: f.nextID(), name: name, typ: t}
	f.params = append(f.params, p)
	return p
}

// NewBlock appends a fresh, unterminated block to f.
func (f *Func) NewBlock() *Block {
	b := &Block{f: f, id: f.nextID()}
	f.blocks = append(f.blocks, b)
	return b
}

// CreateLocal allocates storage for one local variable in f's entry block,
// regardless of which block calls CreateLocal from (spec.md §4.7
// "alloca-per-variable-in-entry-block"), and records it in f.Locals.
func (f *Func) CreateLocal(name string, t types.Type) *Alloca {
	a := &Alloca{id: f.nextID(), name: name, elem: t}
	entry := &f.blocks[0].instrs
	*entry = append(*entry, nil)
	copy((*entry)[f.allocaPos+1:], (*entry)[f.allocaPos:])
	(*entry)[f.allocaPos] = a
	f.allocaPos++
	f.locals = append(f.locals, a)
	return a
}

// Module is one compiled translation unit's worth of IR: every function and
// global produced from one or more resolved FuncBody values (spec.md §4.7
// "Module"). mu guards funcs/globals, since concurrent funcTasks (spec.md
// §5 "task executor"; cmd/adeptc/pipeline.go) lower into one shared Module
// under executor.RunParallel.
type Module struct {
	mu      sync.Mutex
	name    string
	funcs   []*Func
	globals []*Global
}

// NewModule creates an empty Module.
func NewModule(name string) *Module { return &Module{name: name} }

func (m *Module) Name() string { return m.name }

func (m *Module) Funcs() []*Func {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Func, len(m.funcs))
	copy(out, m.funcs)
	return out
}

func (m *Module) Globals() []*Global {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Global, len(m.globals))
	copy(out, m.globals)
	return out
}

// Global is a module-scoped storage location (spec.md §4.7 "Global").
type Global struct {
	id   int
	name string
	typ  types.Type
	init Value // optional constant initializer.
}

func (g *Global) ID() int          { return g.id }
func (g *Global) Name() string     { return g.name }
func (g *Global) Type() types.Type { return types.Type{Kind: types.KPointer, Pointee: &g.typ} }
func (g *Global) Elem() types.Type { return g.typ }
func (g *Global) Init() Value      { return g.init }
func (g *Global) String() string   { return "@" + g.name }

// NewGlobal creates and registers a module-scoped Global.
func (m *Module) NewGlobal(name string, t types.Type, init Value) *Global {
	m.mu.Lock()
	defer m.mu.Unlock()
	g := &Global{id: len(m.globals), name: name, typ: t, init: init}
	m.globals = append(m.globals, g)
	return g
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
