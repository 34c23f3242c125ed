package llvmgen

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"adeptc/internal/abi"
	"adeptc/internal/ir"
	"adeptc/internal/types"
)

// emit translates one ir.Value appearing in a Block's instruction stream
// into LLVM IR, returning the produced llvm.Value (a nil Value for
// instructions with no result, e.g. Store).
func (g *bodyGen) emit(v ir.Value) (llvm.Value, error) {
	switch t := v.(type) {
	case *ir.Alloca:
		return g.b.CreateAlloca(g.e.llvmType(t.Elem()), t.Name()), nil

	case *ir.Load:
		return g.b.CreateLoad(g.val(t.From()), ""), nil

	case *ir.Store:
		g.b.CreateStore(g.val(t.What), g.val(t.To))
		return llvm.Value{}, nil

	case *ir.BinOp:
		return g.emitBinOp(t)

	case *ir.UnaryOp:
		return g.emitUnaryOp(t)

	case *ir.Cast:
		return g.emitCast(t)

	case *ir.Call:
		return g.emitCall(t)

	case *ir.Phi:
		return g.emitPhi(t)

	case *ir.Member:
		base := g.val(t.Base)
		return g.b.CreateStructGEP(base, t.FieldIx, t.Field), nil

	case *ir.Index:
		base := g.val(t.Base)
		idx := g.val(t.Idx)
		zero := llvm.ConstInt(g.e.ctx.Int32Type(), 0, false)
		return g.b.CreateGEP(base, []llvm.Value{zero, idx}, ""), nil

	case *ir.SizeOf:
		ty := g.e.llvmType(t.Target)
		return llvm.SizeOf(ty), nil

	// Param/consts/etc. are resolved on demand via val(), never emitted
	// directly from the instruction stream.
	case *ir.Param, *ir.ConstInt, *ir.ConstFloat, *ir.ConstBool, *ir.ConstString, *ir.ConstNull:
		return llvm.Value{}, nil

	default:
		return llvm.Value{}, fmt.Errorf("llvmgen: unhandled IR value %T", v)
	}
}

// structOf/elemOf recover the aggregate type Member/Index index into from
// the pointer type of their Base operand.
func structOf(base ir.Value) types.Type {
	t := base.Type()
	if t.Kind == types.KPointer && t.Pointee != nil {
		return *t.Pointee
	}
	return t
}

func elemOf(base ir.Value) types.Type {
	t := base.Type()
	if t.Kind == types.KPointer && t.Pointee != nil {
		if t.Pointee.Kind == types.KArray && t.Pointee.ArrayElem != nil {
			return *t.Pointee
		}
		return *t.Pointee
	}
	return t
}

func (g *bodyGen) emitUnaryOp(u *ir.UnaryOp) (llvm.Value, error) {
	operand := g.val(u.Operand)
	isFloat := u.Operand.Type().Kind == types.KFloat
	switch u.Op {
	case ir.Negate:
		if isFloat {
			return g.b.CreateFNeg(operand, ""), nil
		}
		return g.b.CreateNeg(operand, ""), nil
	case ir.Not:
		return g.b.CreateNot(operand, ""), nil
	case ir.BitComplement:
		return g.b.CreateNot(operand, ""), nil
	case ir.AddressOf:
		// Operand is already an addressable pointer-producing value
		// (an Alloca/Member/Index/Global); AddressOf is a type-level
		// no-op at this layer.
		return operand, nil
	case ir.Dereference:
		return g.b.CreateLoad(operand, ""), nil
	default:
		return llvm.Value{}, fmt.Errorf("llvmgen: unknown unary op %d", u.Op)
	}
}

func (g *bodyGen) emitCast(c *ir.Cast) (llvm.Value, error) {
	val := g.val(c.Val)
	to := g.e.llvmType(c.Type())
	switch c.Op {
	case types.CastNone:
		return val, nil
	case types.CastIntWiden:
		if c.Val.Type().IntUnsigned {
			return g.b.CreateZExt(val, to, ""), nil
		}
		return g.b.CreateSExt(val, to, ""), nil
	case types.CastIntNarrow:
		return g.b.CreateTrunc(val, to, ""), nil
	case types.CastIntSignChange:
		if c.Type().Kind == types.KBool && c.Val.Type().Kind != types.KBool {
			// C truthiness (types.ConformToBool): a scalar is true when nonzero.
			if c.Val.Type().Kind == types.KFloat {
				return g.b.CreateFCmp(llvm.FloatUNE, val, llvm.ConstNull(val.Type()), ""), nil
			}
			return g.b.CreateICmp(llvm.IntNE, val, llvm.ConstNull(val.Type()), ""), nil
		}
		return val, nil // same bit pattern, only the resolved type's signedness changes.
	case types.CastIntToFloat:
		if c.Val.Type().IntUnsigned {
			return g.b.CreateUIToFP(val, to, ""), nil
		}
		return g.b.CreateSIToFP(val, to, ""), nil
	case types.CastFloatToInt:
		if c.Type().IntUnsigned {
			return g.b.CreateFPToUI(val, to, ""), nil
		}
		return g.b.CreateFPToSI(val, to, ""), nil
	case types.CastFloatWiden:
		return g.b.CreateFPExt(val, to, ""), nil
	case types.CastFloatNarrow:
		return g.b.CreateFPTrunc(val, to, ""), nil
	case types.CastPointerBitcast:
		return g.b.CreateBitCast(val, to, ""), nil
	case types.CastBoolToInt:
		return g.b.CreateZExt(val, to, ""), nil
	default:
		return llvm.Value{}, fmt.Errorf("llvmgen: unknown cast kind %d", c.Op)
	}
}

func (g *bodyGen) emitPhi(p *ir.Phi) (llvm.Value, error) {
	node := g.b.CreatePHI(g.e.llvmType(p.Type()), "")
	vals := make([]llvm.Value, 0, len(p.Incoming))
	blocks := make([]llvm.BasicBlock, 0, len(p.Incoming))
	for _, edge := range p.Incoming {
		if edge.From == nil {
			continue
		}
		vals = append(vals, g.val(edge.Value))
		blocks = append(blocks, g.blocks[edge.From])
	}
	node.AddIncoming(vals, blocks)
	return node, nil
}

// emitBinOp lowers a BinOp; Checked BinOps use the llvm.*.with.overflow
// intrinsic family and branch to the target's overflow panic thunk on
// overflow (spec.md §4.8 "overflow-checked arithmetic", §9 "Overflow panic
// symbol").
func (g *bodyGen) emitBinOp(bo *ir.BinOp) (llvm.Value, error) {
	lhs, rhs := g.val(bo.Lhs), g.val(bo.Rhs)
	isFloat := bo.Type().Kind == types.KFloat
	unsigned := bo.Type().IntUnsigned

	if bo.Checked {
		return g.emitCheckedBinOp(bo, lhs, rhs)
	}

	switch bo.Op {
	case ir.Add:
		if isFloat {
			return g.b.CreateFAdd(lhs, rhs, ""), nil
		}
		return g.b.CreateAdd(lhs, rhs, ""), nil
	case ir.Sub:
		if isFloat {
			return g.b.CreateFSub(lhs, rhs, ""), nil
		}
		return g.b.CreateSub(lhs, rhs, ""), nil
	case ir.Mul:
		if isFloat {
			return g.b.CreateFMul(lhs, rhs, ""), nil
		}
		return g.b.CreateMul(lhs, rhs, ""), nil
	case ir.Div:
		if isFloat {
			return g.b.CreateFDiv(lhs, rhs, ""), nil
		}
		if unsigned {
			return g.b.CreateUDiv(lhs, rhs, ""), nil
		}
		return g.b.CreateSDiv(lhs, rhs, ""), nil
	case ir.Mod:
		if isFloat {
			return g.b.CreateFRem(lhs, rhs, ""), nil
		}
		if unsigned {
			return g.b.CreateURem(lhs, rhs, ""), nil
		}
		return g.b.CreateSRem(lhs, rhs, ""), nil
	case ir.Eq:
		return g.cmp(lhs, rhs, bo.Lhs.Type(), llvm.IntEQ, llvm.FloatOEQ), nil
	case ir.NotEq:
		return g.cmp(lhs, rhs, bo.Lhs.Type(), llvm.IntNE, llvm.FloatONE), nil
	case ir.Lt:
		return g.cmp(lhs, rhs, bo.Lhs.Type(), signedPred(llvm.IntSLT, llvm.IntULT, bo.Lhs.Type()), llvm.FloatOLT), nil
	case ir.LtEq:
		return g.cmp(lhs, rhs, bo.Lhs.Type(), signedPred(llvm.IntSLE, llvm.IntULE, bo.Lhs.Type()), llvm.FloatOLE), nil
	case ir.Gt:
		return g.cmp(lhs, rhs, bo.Lhs.Type(), signedPred(llvm.IntSGT, llvm.IntUGT, bo.Lhs.Type()), llvm.FloatOGT), nil
	case ir.GtEq:
		return g.cmp(lhs, rhs, bo.Lhs.Type(), signedPred(llvm.IntSGE, llvm.IntUGE, bo.Lhs.Type()), llvm.FloatOGE), nil
	case ir.BitAnd:
		return g.b.CreateAnd(lhs, rhs, ""), nil
	case ir.BitOr:
		return g.b.CreateOr(lhs, rhs, ""), nil
	case ir.BitXor:
		return g.b.CreateXor(lhs, rhs, ""), nil
	case ir.LShift:
		return g.b.CreateShl(lhs, rhs, ""), nil
	case ir.RShift:
		if unsigned {
			return g.b.CreateLShr(lhs, rhs, ""), nil
		}
		return g.b.CreateAShr(lhs, rhs, ""), nil
	default:
		return llvm.Value{}, fmt.Errorf("llvmgen: unknown binop %d", bo.Op)
	}
}

func signedPred(signed, unsignedPred llvm.IntPredicate, t types.Type) llvm.IntPredicate {
	if t.IntUnsigned {
		return unsignedPred
	}
	return signed
}

func (g *bodyGen) cmp(lhs, rhs llvm.Value, t types.Type, ip llvm.IntPredicate, fp llvm.FloatPredicate) llvm.Value {
	if t.Kind == types.KFloat {
		return g.b.CreateFCmp(fp, lhs, rhs, "")
	}
	return g.b.CreateICmp(ip, lhs, rhs, "")
}

// emitCall classifies Target's signature the same way declareFunc did and
// marshals each argument accordingly: Indirect arguments are copied into a
// caller-side temporary and passed by pointer; an Indirect/IndirectAliased
// return gets a caller-allocated sret temporary prepended to the argument
// list (spec.md §4.8 "ABI-complying call").
func (g *bodyGen) emitCall(c *ir.Call) (llvm.Value, error) {
	fn, sig := g.e.lookupFunc(c.Target)

	var args []llvm.Value
	var sretTemp llvm.Value
	if sig.Mapping.HasSRet {
		sretTemp = g.b.CreateAlloca(g.e.llvmType(c.Target.Return()), "sret")
		args = append(args, sretTemp)
	}

	for i, a := range c.Args {
		v := g.val(a)
		if i < len(sig.Params) {
			switch sig.Params[i].Mode {
			case abi.Indirect, abi.IndirectAliased:
				tmp := g.b.CreateAlloca(g.e.llvmType(sig.Params[i].Type), "byval")
				g.b.CreateStore(v, tmp)
				v = tmp
			}
		} else {
			// Variadic-overflow argument: the callee has no declared
			// parameter slot for it, so apply the default argument
			// promotions a C call site performs at the call itself
			// rather than at the (non-existent) parameter (spec.md §4.8
			// "Variadic promotion").
			v = g.promoteVariadic(v, a.Type())
		}
		args = append(args, v)
	}

	call := g.b.CreateCall(fn, args, "")
	if sig.Mapping.HasSRet {
		return g.b.CreateLoad(sretTemp, ""), nil
	}
	return call, nil
}

// promoteVariadic applies the C default argument promotions to one
// variadic-overflow argument: bool and any integer narrower than the
// target's `int` widen to `int` (sign- or zero-extended per t's own
// signedness), and `float` widens to `double` when the target says so
// (spec.md §4.8 "Variadic promotion... if it is f32 promote to f64").
// Anything else, including arguments already at or above int/double
// width, passes through unchanged.
func (g *bodyGen) promoteVariadic(v llvm.Value, t types.Type) llvm.Value {
	intBits := g.e.target.CInt.IntBits
	switch {
	case t.Kind == types.KBool:
		return g.b.CreateZExt(v, g.e.ctx.IntType(intBits), "")
	case t.Kind == types.KInt && int(t.IntWidth) < intBits:
		if t.IntUnsigned {
			return g.b.CreateZExt(v, g.e.ctx.IntType(intBits), "")
		}
		return g.b.CreateSExt(v, g.e.ctx.IntType(intBits), "")
	case t.Kind == types.KFloat && t.FloatWidth == types.Float32 && g.e.target.PromoteVariadicFloat:
		return g.b.CreateFPExt(v, g.e.ctx.DoubleType(), "")
	default:
		return v
	}
}
