package ir

import (
	"strconv"

	"adeptc/internal/types"
)

// Alloca reserves stack storage for one local (spec.md §4.7
// "alloca-per-variable-in-entry-block").
type Alloca struct {
	id   int
	name string
	elem types.Type
}

func (a *Alloca) ID() int      { return a.id }
func (a *Alloca) Name() string { return a.name }
func (a *Alloca) Elem() types.Type { return a.elem }
func (a *Alloca) Type() types.Type { return types.Type{Kind: types.KPointer, Pointee: &a.elem} }
func (a *Alloca) String() string   { return "%" + a.name + " = alloca " + a.elem.String() }

// Load reads the value stored at a pointer-typed operand.
type Load struct {
	id   int
	from Value
	typ  types.Type
}

func (l *Load) ID() int          { return l.id }
func (l *Load) From() Value      { return l.from }
func (l *Load) Type() types.Type { return l.typ }
func (l *Load) String() string   { return "load " + l.from.String() }

// Store writes a value to a pointer-typed destination. It implements Value
// so it can sit in a Block's instruction list alongside result-producing
// instructions, but its ID/Type are never meaningfully read.
type Store struct {
	id       int
	To, What Value
}

func (s *Store) ID() int          { return s.id }
func (s *Store) Type() types.Type { return types.Type{Kind: types.KVoid} }
func (s *Store) String() string   { return "store " + s.What.String() + " -> " + s.To.String() }

// CreateLoad emits a Load of ptr into Block b.
func (b *Block) CreateLoad(ptr Value) *Load {
	pt := ptr.Type()
	var elem types.Type
	if pt.Kind == types.KPointer && pt.Pointee != nil {
		elem = *pt.Pointee
	}
	l := &Load{id: b.f.nextID(), from: ptr, typ: elem}
	b.emit(l)
	return l
}

// CreateStore emits a Store into Block b.
func (b *Block) CreateStore(ptr, val Value) *Store {
	s := &Store{id: b.f.nextID(), To: ptr, What: val}
	b.emit(s)
	return s
}

// ConstInt/ConstFloat/ConstBool/ConstString/ConstNull are literal values
// materialized directly, with no instruction needed to produce them.
type ConstInt struct {
	id    int
	Text  string
	typ   types.Type
}
type ConstFloat struct {
	id  int
	Val float64
	typ types.Type
}
type ConstBool struct {
	id  int
	Val bool
}
type ConstString struct {
	id  int
	Val string
}
type ConstNull struct {
	id  int
	typ types.Type
}

func (c *ConstInt) ID() int          { return c.id }
func (c *ConstInt) Type() types.Type { return c.typ }
func (c *ConstInt) String() string   { return c.Text }

func (c *ConstFloat) ID() int          { return c.id }
func (c *ConstFloat) Type() types.Type { return c.typ }
func (c *ConstFloat) String() string   { return strconv.FormatFloat(c.Val, 'g', -1, 64) }

func (c *ConstBool) ID() int          { return c.id }
func (c *ConstBool) Type() types.Type { return types.Type{Kind: types.KBool} }
func (c *ConstBool) String() string {
	if c.Val {
		return "true"
	}
	return "false"
}

func (c *ConstString) ID() int { return c.id }
func (c *ConstString) Type() types.Type {
	u8 := types.Type{Kind: types.KInt, IntWidth: types.Int8, IntUnsigned: true}
	return types.Type{Kind: types.KPointer, Pointee: &u8}
}
func (c *ConstString) String() string { return `"` + c.Val + `"` }

func (c *ConstNull) ID() int          { return c.id }
func (c *ConstNull) Type() types.Type { return c.typ }
func (c *ConstNull) String() string   { return "null" }

func (f *Func) ConstInt(text string, t types.Type) *ConstInt {
	return &ConstInt{id: f.nextID(), Text: text, typ: t}
}
func (f *Func) ConstFloat(v float64, t types.Type) *ConstFloat {
	return &ConstFloat{id: f.nextID(), Val: v, typ: t}
}
func (f *Func) ConstBool(v bool) *ConstBool   { return &ConstBool{id: f.nextID(), Val: v} }
func (f *Func) ConstString(v string) *ConstString { return &ConstString{id: f.nextID(), Val: v} }
func (f *Func) ConstNull(t types.Type) *ConstNull { return &ConstNull{id: f.nextID(), typ: t} }

// BinOpKind mirrors cfg.BinOp for the lowered IR, kept as a distinct type
// so IR code never needs to import the CFG package.
type BinOpKind int

const (
	Add BinOpKind = iota
	Sub
	Mul
	Div
	Mod
	Eq
	NotEq
	Lt
	LtEq
	Gt
	GtEq
	BitAnd
	BitOr
	BitXor
	LShift
	RShift
)

// BinOp is a two-operand arithmetic, relational, or bitwise instruction.
// Overflow-checked arithmetic (spec.md §4.7 "overflow-checked add") is
// represented the same way as plain arithmetic here; the checked-vs-wrapping
// distinction is realized at LLVM emission time by llvmgen, which picks the
// llvm.sadd.with.overflow family of intrinsics for Checked BinOps.
type BinOp struct {
	id       int
	Op       BinOpKind
	Lhs, Rhs Value
	typ      types.Type
	Checked  bool
}

func (b *BinOp) ID() int          { return b.id }
func (b *BinOp) Type() types.Type { return b.typ }
func (b *BinOp) String() string   { return "binop" }

func (bb *Block) CreateBinOp(op BinOpKind, lhs, rhs Value, result types.Type, checked bool) *BinOp {
	v := &BinOp{id: bb.f.nextID(), Op: op, Lhs: lhs, Rhs: rhs, typ: result, Checked: checked}
	bb.emit(v)
	return v
}

// UnaryOpKind mirrors cfg.UnaryOp.
type UnaryOpKind int

const (
	Negate UnaryOpKind = iota
	Not
	BitComplement
	AddressOf
	Dereference
)

// UnaryOp is a single-operand instruction.
type UnaryOp struct {
	id      int
	Op      UnaryOpKind
	Operand Value
	typ     types.Type
}

func (u *UnaryOp) ID() int          { return u.id }
func (u *UnaryOp) Type() types.Type { return u.typ }
func (u *UnaryOp) String() string   { return "unaryop" }

func (b *Block) CreateUnaryOp(op UnaryOpKind, operand Value, result types.Type) *UnaryOp {
	v := &UnaryOp{id: b.f.nextID(), Op: op, Operand: operand, typ: result}
	b.emit(v)
	return v
}

// Cast realizes one step of a types.Cast chain (spec.md §4.7 "UnaryCast
// chain realization"): conform_to may need several Casts to get from one
// type to another (e.g. int -> wider int -> float), and lowering emits one
// Cast instruction per step rather than trying to special-case every
// combined conversion.
type Cast struct {
	id  int
	Op  types.CastKind
	Val Value
	typ types.Type
}

func (c *Cast) ID() int          { return c.id }
func (c *Cast) Type() types.Type { return c.typ }
func (c *Cast) String() string   { return "cast" }

func (b *Block) CreateCast(op types.CastKind, val Value, to types.Type) *Cast {
	v := &Cast{id: b.f.nextID(), Op: op, Val: val, typ: to}
	b.emit(v)
	return v
}

// Call invokes a Func, possibly variadic, possibly external (spec.md §4.7
// "call lowering").
type Call struct {
	id     int
	Target *Func
	Args   []Value
	typ    types.Type
}

func (c *Call) ID() int          { return c.id }
func (c *Call) Type() types.Type { return c.typ }
func (c *Call) String() string   { return "call " + c.Target.Name() }

func (b *Block) CreateCall(target *Func, args []Value) *Call {
	v := &Call{id: b.f.nextID(), Target: target, Args: args, typ: target.Return()}
	b.emit(v)
	return v
}

// Phi merges values along incoming edges at a join point (spec.md §4.7
// "PHI lowering").
type Phi struct {
	id   int
	Incoming []PhiEdge
	typ  types.Type
}

// PhiEdge is one (value, predecessor-block) pair of a Phi.
type PhiEdge struct {
	Value Value
	From  *Block
}

func (p *Phi) ID() int          { return p.id }
func (p *Phi) Type() types.Type { return p.typ }
func (p *Phi) String() string   { return "phi" }

func (b *Block) CreatePhi(t types.Type, incoming []PhiEdge) *Phi {
	v := &Phi{id: b.f.nextID(), Incoming: incoming, typ: t}
	b.emit(v)
	return v
}

// Member computes the address of a struct field relative to a base pointer
// (spec.md §4.7 "struct member addressing").
type Member struct {
	id      int
	Base    Value
	Field   string
	FieldIx int
	typ     types.Type
}

func (m *Member) ID() int          { return m.id }
func (m *Member) Type() types.Type { return types.Type{Kind: types.KPointer, Pointee: &m.typ} }
func (m *Member) String() string   { return "member " + m.Field }

func (b *Block) CreateMember(base Value, field string, fieldIx int, fieldType types.Type) *Member {
	v := &Member{id: b.f.nextID(), Base: base, Field: field, FieldIx: fieldIx, typ: fieldType}
	b.emit(v)
	return v
}

// Index computes the address of one array element (spec.md §4.7 "array
// indexing").
type Index struct {
	id   int
	Base Value
	Idx  Value
	typ  types.Type
}

func (i *Index) ID() int          { return i.id }
func (i *Index) Type() types.Type { return types.Type{Kind: types.KPointer, Pointee: &i.typ} }
func (i *Index) String() string   { return "index" }

func (b *Block) CreateIndex(base, idx Value, elemType types.Type) *Index {
	v := &Index{id: b.f.nextID(), Base: base, Idx: idx, typ: elemType}
	b.emit(v)
	return v
}

// SizeOf yields the ABI size in bytes of a type (spec.md §4.7 "sizeof").
type SizeOf struct {
	id     int
	Target types.Type
}

func (s *SizeOf) ID() int { return s.id }
func (s *SizeOf) Type() types.Type {
	return types.Type{Kind: types.KInt, IntWidth: types.Int64, IntUnsigned: true}
}
func (s *SizeOf) String() string { return "sizeof(" + s.Target.String() + ")" }

func (b *Block) CreateSizeOf(target types.Type) *SizeOf {
	v := &SizeOf{id: b.f.nextID(), Target: target}
	b.emit(v)
	return v
}
