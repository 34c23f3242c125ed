package llvmgen

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"adeptc/internal/ir"
	"adeptc/internal/types"
)

// emitCheckedBinOp lowers a Checked Add/Sub/Mul using the matching
// llvm.{s,u}{add,sub,mul}.with.overflow intrinsic, hints the overflow bit
// unlikely via llvm.expect.i1, and branches to the target's shared
// overflow panic thunk when it fires (spec.md §4.8/§9 "Overflow panic
// symbol... its ABI is fn() -> !").
func (g *bodyGen) emitCheckedBinOp(bo *ir.BinOp, lhs, rhs llvm.Value) (llvm.Value, error) {
	t := bo.Type()
	if t.Kind != types.KInt {
		return llvm.Value{}, fmt.Errorf("llvmgen: checked arithmetic is only defined for integers, got %s", t.String())
	}

	name, ok := overflowIntrinsicName(bo.Op, t)
	if !ok {
		return llvm.Value{}, fmt.Errorf("llvmgen: no overflow intrinsic for binop %d on %s", bo.Op, t.String())
	}
	intr := g.e.intrinsic(name, g.e.llvmType(t))

	agg := g.b.CreateCall(intr, []llvm.Value{lhs, rhs}, "")
	result := g.b.CreateExtractValue(agg, 0, "")
	overflowed := g.b.CreateExtractValue(agg, 1, "")

	expect := g.e.intrinsic("llvm.expect.i1", llvm.Type{})
	hinted := g.b.CreateCall(expect, []llvm.Value{overflowed, llvm.ConstInt(g.e.ctx.Int1Type(), 0, false)}, "")

	contBB := llvm.AddBasicBlock(g.fn, "overflow.cont")
	g.b.CreateCondBr(hinted, g.panicBlock(), contBB)

	g.b.SetInsertPointAtEnd(contBB)
	return result, nil
}

// panicBlock returns this function's single shared overflow-panic block,
// creating it the first time any Checked binop in the function needs it
// (spec.md §4.8 "a per-function shared 'overflow panic' block") so that a
// function with several checked operations branches every one of them to
// the same block instead of emitting a fresh panic/call/unreachable triple
// per op.
func (g *bodyGen) panicBlock() llvm.BasicBlock {
	if g.hasOverflowPanicBB {
		return g.overflowPanicBB
	}
	bb := llvm.AddBasicBlock(g.fn, "overflow.panic")
	saved := g.b.GetInsertBlock()
	g.b.SetInsertPointAtEnd(bb)
	panicFn := g.e.overflowPanicFunc()
	g.b.CreateCall(panicFn, nil, "")
	g.b.CreateUnreachable()
	g.b.SetInsertPointAtEnd(saved)

	g.overflowPanicBB = bb
	g.hasOverflowPanicBB = true
	return bb
}

func overflowIntrinsicName(op ir.BinOpKind, t types.Type) (string, bool) {
	var kind string
	switch op {
	case ir.Add:
		kind = "add"
	case ir.Sub:
		kind = "sub"
	case ir.Mul:
		kind = "mul"
	default:
		return "", false
	}
	sign := "s"
	if t.IntUnsigned {
		sign = "u"
	}
	return fmt.Sprintf("llvm.%s%s.with.overflow.i%d", sign, kind, t.IntWidth), true
}

// intrinsic finds or declares the named LLVM intrinsic function, memoized
// per Emitter since a module must never declare the same function twice.
func (e *Emitter) intrinsic(name string, operandType llvm.Type) llvm.Value {
	e.intrinsicsMu.Lock()
	defer e.intrinsicsMu.Unlock()
	if fn, ok := e.intrinsics[name]; ok {
		return fn
	}

	var fnType llvm.Type
	switch {
	case name == "llvm.expect.i1":
		b1 := e.ctx.Int1Type()
		fnType = llvm.FunctionType(b1, []llvm.Type{b1, b1}, false)
	default:
		// *.with.overflow.iN : (iN, iN) -> {iN, i1}
		agg := e.ctx.StructType([]llvm.Type{operandType, e.ctx.Int1Type()}, false)
		fnType = llvm.FunctionType(agg, []llvm.Type{operandType, operandType}, false)
	}
	fn := llvm.AddFunction(e.mod, name, fnType)
	e.intrinsics[name] = fn
	return fn
}

// overflowPanicFunc returns the module's shared overflow panic thunk,
// declaring it lazily as fn() -> void (the caller treats the call as
// diverging by always following it with Unreachable, matching the
// declared fn() -> ! ABI without needing a true bottom type in this IR).
func (e *Emitter) overflowPanicFunc() llvm.Value {
	e.overflowOnce.Do(func() {
		fnType := llvm.FunctionType(e.ctx.VoidType(), nil, false)
		e.overflowFn = llvm.AddFunction(e.mod, e.target.OverflowPanicSymbol, fnType)
	})
	return e.overflowFn
}
