// Package cfg implements the control-flow-graph representation shared by
// both front ends (spec.md §3 "CFG", §4.5 "CFG Flattener"). A CfgBuilder
// holds a set of basic blocks, each with a sequence of SSA-like
// instructions and exactly one terminating EndInstr.
package cfg

import (
	"adeptc/internal/sourcemap"
	"adeptc/internal/types"
)

// BasicBlockID identifies a basic block within one CfgBuilder.
type BasicBlockID int

// InstrRef is (BasicBlockId, index): both the identity of an instruction
// and, once resolved, its SSA value name (spec.md §3 "CFG").
type InstrRef struct {
	Block BasicBlockID
	Index int
}

// InstrKind enumerates the instruction union (spec.md §3).
type InstrKind int

const (
	IParameter InstrKind = iota
	IDeclare
	IDeclareAssign
	IAssign
	IName // unresolved reference; replaced by VariableRef/external binding during resolution.
	IPhi
	IBoolLiteral
	IIntLiteral
	IFloatLiteral
	ICharLiteral
	IStringLiteral
	INullptrLiteral
	IVoidLiteral
	ICall
	IBinOp
	IUnaryOp
	IMember
	IArrayAccess
	IStructLiteral
	ISizeOfValue
	ISizeOfType
	IInterpreterSyscall
	IIntegerPromote
	IConformToBool
	IIs
	ILabelLiteral
)

// BinOp enumerates binary operators carried by an IBinOp instruction.
type BinOp int

const (
	BinAdd BinOp = iota
	BinSub
	BinMul
	BinDiv
	BinMod
	BinEq
	BinNotEq
	BinLt
	BinLtEq
	BinGt
	BinGtEq
	BinBitAnd
	BinBitOr
	BinBitXor
	BinLShift
	BinRShift
	BinLogicalAnd // short-circuit; flattened to a diamond, never reaches IR directly.
	BinLogicalOr
)

// UnaryOp enumerates unary operators.
type UnaryOp int

const (
	UnaryNegate UnaryOp = iota
	UnaryNot
	UnaryBitComplement
	UnaryAddressOf
	UnaryDereference
)

// ConformLanguage records which language's truthiness rules apply to a
// ConformToBool instruction (spec.md §4.5 "Conform-to-bool").
type ConformLanguage int

const (
	LangAdept ConformLanguage = iota
	LangC
)

// Instr is one SSA-like instruction. Only the fields relevant to Kind are
// populated; resolution later fills Typed/Callee/Cast/VarRef as described
// in spec.md §3 "Each instruction has optional attached metadata".
type Instr struct {
	Kind   InstrKind
	Source sourcemap.Source

	Name string // IDeclare/IDeclareAssign/IName/IParameter.
	Args []InstrRef

	BinOp   BinOp
	UnaryOp UnaryOp

	BoolValue   bool
	IntValue    string // decimal text; parsed to BigInt by resolver/lowering.
	FloatValue  float64
	CharValue   rune
	StringValue string

	CalleeName string     // ICall: the unresolved callee name; resolved to *types.FuncHead later.
	CallArgs   []InstrRef // ICall arguments.

	MemberName  string // IMember.
	StructTypeName string // IStructLiteral's nominal type name, unresolved.

	SizeOfTypeName string // ISizeOfType.

	Label string // ILabelLiteral.

	ConformLang ConformLanguage // IConformToBool.

	// Phi incoming edges: parallel to Args, one BasicBlockID per value.
	PhiBlocks []BasicBlockID

	// --- filled in by resolution (spec.md §3 "Invariants") ---
	Typed    *types.Unaliased
	VarRef   VarRef
	Callee   *types.FuncHead
	ArgCasts []types.Cast
	// VariadicArgTypes holds, for an ICall to a variadic callee, the
	// promoted type of each argument past Callee.Params (spec.md §3
	// "list of per-arg casts" / §4.6 step 8 "variadic_arg_types").
	VariadicArgTypes []types.Type
	Cast             *types.Cast // primary unary cast, e.g. on a ConformToBool/Is operand.
}

// VarRef names which local variable a Declare/DeclareAssign/Name/Parameter
// instruction binds, once resolved (spec.md §3 "variable reference").
type VarRef struct {
	Valid bool
	Index int // index into FuncBody.Variables.
}

// EndInstrKind enumerates the basic-block terminator union (spec.md §3).
type EndInstrKind int

const (
	EndReturn EndInstrKind = iota
	EndJump
	EndBranch
	EndNewScope
	EndIncompleteGoto
	EndIncompleteBreak
	EndIncompleteContinue
	EndUnreachable
)

// BreakContinueRole marks a Branch end as the head of a loop, so later
// break/continue fix-up knows which targets it offers (spec.md §4.5 "Body
// is annotated with BreakContinue::positive()").
type BreakContinueRole struct {
	IsLoop       bool
	ContinueTo   BasicBlockID
	BreakTo      BasicBlockID
}

// EndInstr terminates exactly one basic block.
type EndInstr struct {
	Kind EndInstrKind

	// EndReturn / EndJump value.
	Value    *InstrRef
	HasValue bool
	Cast     *types.Cast // applied to Value before Return/Jump (pre-jump cast feeding a PHI).
	ToType   *types.Unaliased

	// EndJump.
	Target BasicBlockID

	// EndBranch.
	Cond    InstrRef
	TrueBB  BasicBlockID
	FalseBB BasicBlockID
	Role    BreakContinueRole

	// EndNewScope.
	InScopeBB   BasicBlockID
	CloseScopeBB BasicBlockID

	// EndIncompleteGoto.
	Label string
}

// BasicBlock is one node of the CFG: a straight-line instruction sequence
// ending in exactly one EndInstr (spec.md §3 invariant).
type BasicBlock struct {
	Instrs []Instr
	End    EndInstr
	HasEnd bool
}

// Builder accumulates basic blocks for one function body while flattening
// (spec.md §4.5 "CfgBuilder produces a set of basic blocks").
type Builder struct {
	Blocks  []BasicBlock
	Current BasicBlockID
}

// NewBuilder returns a Builder with a single empty entry block current.
func NewBuilder() *Builder {
	b := &Builder{}
	b.NewBlock()
	return b
}

// NewBlock appends a fresh, empty basic block and returns its id; it does
// not switch Current.
func (b *Builder) NewBlock() BasicBlockID {
	b.Blocks = append(b.Blocks, BasicBlock{})
	return BasicBlockID(len(b.Blocks) - 1)
}

// SwitchTo moves subsequent Emit/End calls to target bb.
func (b *Builder) SwitchTo(bb BasicBlockID) { b.Current = bb }

// Emit appends instr to the current block and returns its InstrRef.
func (b *Builder) Emit(instr Instr) InstrRef {
	bb := &b.Blocks[b.Current]
	bb.Instrs = append(bb.Instrs, instr)
	return InstrRef{Block: b.Current, Index: len(bb.Instrs) - 1}
}

// End terminates the current block. It is a bug (ICE) to end a block
// twice or to leave one unterminated (spec.md §3 invariant "every basic
// block has exactly one end instruction").
func (b *Builder) End(end EndInstr) {
	bb := &b.Blocks[b.Current]
	bb.End = end
	bb.HasEnd = true
}

// Instr dereferences an InstrRef.
func (b *Builder) Instr(ref InstrRef) *Instr {
	return &b.Blocks[ref.Block].Instrs[ref.Index]
}

// Block dereferences a BasicBlockID.
func (b *Builder) Block(id BasicBlockID) *BasicBlock {
	return &b.Blocks[id]
}

// AllUnterminated returns the ids of any block missing its EndInstr, used
// by validation to catch a flattener bug before it reaches resolution.
func (b *Builder) AllUnterminated() []BasicBlockID {
	var out []BasicBlockID
	for i, bb := range b.Blocks {
		if !bb.HasEnd {
			out = append(out, BasicBlockID(i))
		}
	}
	return out
}

// Predecessors computes, for every block, the set of blocks whose EndInstr
// can transfer control to it. Used for PHI-edge-closure validation (spec.md
// §8 law 5) and by the resolver's dominator computation.
func (b *Builder) Predecessors() map[BasicBlockID][]BasicBlockID {
	preds := make(map[BasicBlockID][]BasicBlockID, len(b.Blocks))
	add := func(from, to BasicBlockID) { preds[to] = append(preds[to], from) }
	for i, bb := range b.Blocks {
		id := BasicBlockID(i)
		switch bb.End.Kind {
		case EndJump:
			add(id, bb.End.Target)
		case EndBranch:
			add(id, bb.End.TrueBB)
			add(id, bb.End.FalseBB)
		case EndNewScope:
			add(id, bb.End.InScopeBB)
		}
	}
	return preds
}
