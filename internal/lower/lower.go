// Package lower turns a resolved FuncBody (internal/resolve) into the
// linear typed IR (internal/ir), per spec.md §4.7 "IR Lowering". Every
// local variable gets exactly one ir.Alloca in the function's entry block
// regardless of where in the source it was declared; every CFG Instr
// becomes zero or one ir.Value; every EndInstr becomes exactly one
// ir.Terminator.
package lower

import (
	"strconv"
	"sync"
	"unicode/utf8"

	"adeptc/internal/cfg"
	"adeptc/internal/ir"
	"adeptc/internal/resolve"
	"adeptc/internal/types"
)

// FuncTable maps an already-lowered (or merely declared) function's name to
// its ir.Func, shared across every Lower call for one ir.Module so that a
// call to a function lowered earlier — or not yet lowered at all — resolves
// to the same ir.Func value (spec.md §4.7 "call lowering"). One FuncTable is
// shared, by pointer, across every funcTask lowering into the same Module
// concurrently (spec.md §5 "must not mutate another task's state" refers to
// per-task locals, not this intentionally shared linkage table), so lookups
// and inserts are serialized by mu.
type FuncTable struct {
	mu sync.Mutex
	m  map[string]*ir.Func
}

// NewFuncTable returns an empty, ready-to-share FuncTable.
func NewFuncTable() *FuncTable {
	return &FuncTable{m: make(map[string]*ir.Func)}
}

// Lower builds one ir.Func for fb in Module m. paramCount is the number of
// leading fb.Variables entries that are parameters (the same count passed
// to resolve.Resolve). funcs must be shared (the same *FuncTable pointer)
// across every Lower call targeting m, including those running concurrently
// under executor.RunParallel, so that every call site links to the one
// ir.Func a given name resolves to.
func Lower(m *ir.Module, fb *resolve.FuncBody, name string, paramCount int, isC bool, funcs *FuncTable) *ir.Func {
	funcs.mu.Lock()
	f, ok := funcs.m[name]
	if ok && f.IsExtern() {
		// A call lowered earlier in this module forward-referenced name
		// before its body existed; reuse that same Func value (see
		// resolveCallee) instead of creating a second, never-defined one.
		f.PromoteDeclaration(fb.ReturnType, isC)
	} else if !ok {
		f = m.NewFunc(name, fb.ReturnType, isC)
	}
	funcs.m[name] = f
	funcs.mu.Unlock()

	for i := 0; i < paramCount; i++ {
		v := fb.Variables.GetAt(i)
		f.AddParam(v.Name, v.Type)
	}

	allocas := make([]*ir.Alloca, fb.Variables.Len())
	for i, v := range fb.Variables.Items() {
		allocas[i] = f.CreateLocal(v.Name, v.Type)
	}

	blocks := make([]*ir.Block, len(fb.CFG.Blocks))
	blocks[0] = f.Entry()
	for i := 1; i < len(fb.CFG.Blocks); i++ {
		blocks[i] = f.NewBlock()
	}

	for i := 0; i < paramCount; i++ {
		blocks[0].CreateStore(allocas[i], f.Params()[i])
	}

	vals := make(map[cfg.InstrRef]ir.Value)
	l := &lowerer{f: f, fb: fb, allocas: allocas, blocks: blocks, vals: vals, funcs: funcs, m: m}

	for bi, bb := range fb.CFG.Blocks {
		block := blocks[bi]
		for ii, instr := range bb.Instrs {
			ref := cfg.InstrRef{Block: cfg.BasicBlockID(bi), Index: ii}
			vals[ref] = l.instr(block, &instr)
		}
		l.term(block, blocks, bb.End)
	}
	return f
}

type lowerer struct {
	f       *ir.Func
	fb      *resolve.FuncBody
	allocas []*ir.Alloca
	blocks  []*ir.Block
	vals    map[cfg.InstrRef]ir.Value
	funcs   *FuncTable
	m       *ir.Module
}

func instrType(instr *cfg.Instr) types.Type {
	if instr.Typed != nil {
		return instr.Typed.Type()
	}
	return types.Type{Kind: types.KVoid}
}

func (l *lowerer) val(ref cfg.InstrRef) ir.Value { return l.vals[ref] }

func (l *lowerer) instr(block *ir.Block, instr *cfg.Instr) ir.Value {
	switch instr.Kind {
	case cfg.IParameter:
		return nil

	case cfg.IDeclare:
		return nil

	case cfg.IDeclareAssign:
		if instr.VarRef.Valid && len(instr.Args) == 1 {
			block.CreateStore(l.allocas[instr.VarRef.Index], l.val(instr.Args[0]))
		}
		return nil

	case cfg.IAssign:
		if len(instr.Args) != 2 {
			return nil
		}
		rhs := l.val(instr.Args[1])
		lhsInstr := l.fb.CFG.Instr(instr.Args[0])
		var target ir.Value
		if lhsInstr.Kind == cfg.IName && lhsInstr.VarRef.Valid {
			target = l.allocas[lhsInstr.VarRef.Index]
		} else {
			target = l.val(instr.Args[0])
		}
		block.CreateStore(target, rhs)
		return rhs

	case cfg.IName:
		if instr.VarRef.Valid {
			return block.CreateLoad(l.allocas[instr.VarRef.Index])
		}
		return nil

	case cfg.IBoolLiteral:
		return l.f.ConstBool(instr.BoolValue)
	case cfg.IIntLiteral:
		return l.f.ConstInt(instr.IntValue, instrType(instr))
	case cfg.IFloatLiteral:
		// The Adept flattener keeps a float literal's raw text in
		// StringValue and leaves FloatValue for lowering to fill in; the
		// C flattener parses it eagerly into FloatValue. Prefer whichever
		// is actually populated.
		v := instr.FloatValue
		if v == 0 && instr.StringValue != "" {
			v, _ = strconv.ParseFloat(instr.StringValue, 64)
		}
		return l.f.ConstFloat(v, instrType(instr))
	case cfg.ICharLiteral:
		// The C flattener fills CharValue directly; the Adept flattener
		// keeps the raw text in StringValue instead (mirroring its float
		// literal convention), so fall back to decoding that when
		// CharValue is still its zero value.
		r := instr.CharValue
		if r == 0 && instr.StringValue != "" {
			r, _ = utf8.DecodeRuneInString(instr.StringValue)
		}
		return l.f.ConstInt(strconv.Itoa(int(r)), instrType(instr))
	case cfg.IStringLiteral:
		return l.f.ConstString(instr.StringValue)
	case cfg.INullptrLiteral:
		return l.f.ConstNull(instrType(instr))
	case cfg.IVoidLiteral:
		return nil

	case cfg.IBinOp:
		if len(instr.Args) != 2 {
			return nil
		}
		return block.CreateBinOp(toIrBinOp(instr.BinOp), l.val(instr.Args[0]), l.val(instr.Args[1]), instrType(instr), false)

	case cfg.IUnaryOp:
		if len(instr.Args) != 1 {
			return nil
		}
		return block.CreateUnaryOp(toIrUnary(instr.UnaryOp), l.val(instr.Args[0]), instrType(instr))

	case cfg.IConformToBool:
		if len(instr.Args) != 1 {
			return nil
		}
		operand := l.val(instr.Args[0])
		if instr.Cast != nil && instr.Cast.Op != types.CastNone {
			return block.CreateCast(instr.Cast.Op, operand, instrType(instr))
		}
		return operand

	case cfg.IPhi:
		incoming := make([]ir.PhiEdge, 0, len(instr.Args))
		for i, argRef := range instr.Args {
			var from *ir.Block
			if i < len(instr.PhiBlocks) {
				from = l.blocks[instr.PhiBlocks[i]]
			}
			incoming = append(incoming, ir.PhiEdge{Value: l.val(argRef), From: from})
		}
		return block.CreatePhi(instrType(instr), incoming)

	case cfg.ICall:
		args := make([]ir.Value, 0, len(instr.CallArgs))
		for i, argRef := range instr.CallArgs {
			v := l.val(argRef)
			if i < len(instr.ArgCasts) && instr.ArgCasts[i].Op != types.CastNone {
				v = block.CreateCast(instr.ArgCasts[i].Op, v, instr.ArgCasts[i].To)
			}
			args = append(args, v)
		}
		target := l.resolveCallee(instr)
		return block.CreateCall(target, args)

	case cfg.IMember:
		if len(instr.Args) != 1 {
			return nil
		}
		return block.CreateMember(l.val(instr.Args[0]), instr.MemberName, 0, instrType(instr))

	case cfg.IArrayAccess:
		if len(instr.Args) != 2 {
			return nil
		}
		return block.CreateIndex(l.val(instr.Args[0]), l.val(instr.Args[1]), instrType(instr))

	case cfg.ISizeOfValue, cfg.ISizeOfType:
		return block.CreateSizeOf(instrType(instr))

	case cfg.IIs:
		return l.f.ConstBool(false) // full tagged-union pattern matching is out of this core's scope.

	case cfg.IIntegerPromote:
		if len(instr.Args) != 1 {
			return l.f.ConstInt("0", instrType(instr))
		}
		operand := l.val(instr.Args[0])
		operandInstr := l.fb.CFG.Instr(instr.Args[0])
		to := instrType(instr)
		if operandInstr.Typed == nil {
			return operand
		}
		if c, err := types.ConformTo(*operandInstr.Typed, types.MustUnalias(to)); err == nil && c.Op != types.CastNone {
			return block.CreateCast(c.Op, operand, to)
		}
		return operand

	default:
		// IStructLiteral / IInterpreterSyscall / ILabelLiteral: left as an
		// opaque zero constant pending the struct-layout and interpreter
		// subsystems this core does not implement.
		return l.f.ConstInt("0", instrType(instr))
	}
}

// resolveCallee finds or declares the ir.Func a Call instruction targets.
// A callee lowered earlier in the same module is reused; one not yet (or
// never) lowered gets an extern declaration, matching how a linker would
// resolve a call to a function defined in another translation unit.
func (l *lowerer) resolveCallee(instr *cfg.Instr) *ir.Func {
	l.funcs.mu.Lock()
	defer l.funcs.mu.Unlock()

	if existing, ok := l.funcs.m[instr.CalleeName]; ok {
		return existing
	}
	var paramTypes []types.Type
	var ret types.Type
	variadic := false
	if instr.Callee != nil {
		for _, p := range instr.Callee.Params {
			paramTypes = append(paramTypes, p.Type)
		}
		ret = instr.Callee.Return
		variadic = instr.Callee.Variadic
	}
	decl := l.m.NewDeclaration(instr.CalleeName, paramTypes, ret, variadic)
	l.funcs.m[instr.CalleeName] = decl
	return decl
}

func (l *lowerer) term(block *ir.Block, blocks []*ir.Block, end cfg.EndInstr) {
	switch end.Kind {
	case cfg.EndReturn:
		if !end.HasValue {
			block.SetTerm(&ir.Return{})
			return
		}
		val := l.val(*end.Value)
		if end.Cast != nil && end.Cast.Op != types.CastNone && end.ToType != nil {
			val = block.CreateCast(end.Cast.Op, val, end.ToType.Type())
		}
		block.SetTerm(&ir.Return{Value: val})

	case cfg.EndJump:
		block.SetTerm(&ir.Jump{Target: blocks[end.Target]})

	case cfg.EndBranch:
		block.SetTerm(&ir.CondBranch{Cond: l.val(end.Cond), Then: blocks[end.TrueBB], Else: blocks[end.FalseBB]})

	case cfg.EndNewScope:
		block.SetTerm(&ir.Jump{Target: blocks[end.InScopeBB]})

	case cfg.EndUnreachable:
		block.SetTerm(ir.Unreachable{})

	default:
		// EndIncompleteGoto/Break/Continue must have been patched by the
		// flattener's fixup pass before resolution; reaching lowering
		// means that invariant was violated.
		panic("lower: block " + block.Name() + " reached lowering with an incomplete terminator")
	}
}

func toIrBinOp(op cfg.BinOp) ir.BinOpKind {
	if op == cfg.BinLogicalAnd || op == cfg.BinLogicalOr {
		panic("lower: short-circuit operator reached IR lowering; the flattener should have diamond-expanded it")
	}
	return ir.BinOpKind(op)
}

func toIrUnary(op cfg.UnaryOp) ir.UnaryOpKind {
	return ir.UnaryOpKind(op)
}
