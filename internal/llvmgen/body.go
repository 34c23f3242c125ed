package llvmgen

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"adeptc/internal/abi"
	"adeptc/internal/ir"
)

// genFuncBody emits f's basic blocks and instructions with builder b
// (spec.md §4.8 "emission walks ir.Func blocks in order"). lower.go already
// put one Alloca per variable and one Store per parameter into the entry
// block's instruction stream, so this pass only needs to
// translate that stream literally rather than re-deriving parameter
// marshalling itself.
func (e *Emitter) genFuncBody(b llvm.Builder, f *ir.Func) error {
	fn, sig := e.lookupFunc(f)

	blocks := make(map[*ir.Block]llvm.BasicBlock, len(f.Blocks()))
	for _, bb := range f.Blocks() {
		blocks[bb] = llvm.AddBasicBlock(fn, bb.Name())
	}

	g := &bodyGen{
		e:      e,
		b:      b,
		f:      f,
		fn:     fn,
		sig:    sig,
		blocks: blocks,
		vals:   make(map[ir.Value]llvm.Value),
	}
	g.bindParams()

	for _, bb := range f.Blocks() {
		b.SetInsertPointAtEnd(blocks[bb])
		for _, instr := range bb.Instrs() {
			v, err := g.emit(instr)
			if err != nil {
				return fmt.Errorf("llvmgen: func %q: %w", f.Name(), err)
			}
			if !v.IsNil() {
				g.vals[instr] = v
			}
		}
		if err := g.term(bb); err != nil {
			return err
		}
	}
	return nil
}

// bodyGen carries the per-function emission state.
type bodyGen struct {
	e      *Emitter
	b      llvm.Builder
	f      *ir.Func
	fn     llvm.Value
	sig    abi.Signature
	blocks map[*ir.Block]llvm.BasicBlock
	vals   map[ir.Value]llvm.Value

	// sretSlot is the LLVM pointer argument receiving the return value
	// when sig.Mapping.HasSRet is true.
	sretSlot llvm.Value

	// paramVals maps each ir.Param to the logical value it carries once
	// unwrapped from its ABI-classified LLVM form (an Indirect param
	// arrives as a pointer; everything else arrives as the value itself).
	paramVals map[*ir.Param]llvm.Value

	// overflowPanicBB is this function's single shared "overflow panic"
	// block (spec.md §4.8 "branches to a per-function shared 'overflow
	// panic' block"): every Checked binop in the function branches here
	// instead of each getting its own panic block.
	overflowPanicBB    llvm.BasicBlock
	hasOverflowPanicBB bool
}

// bindParams computes each ir.Param's logical value from the function's
// actual LLVM formal arguments, accounting for the sret slot and any
// Indirect/Ignore classification (spec.md §4.8 "ABI classifier"). It does
// not create any Alloca or Store itself — lower.go already emitted those
// as ordinary instructions at the front of the entry block, which the main
// emit loop in genFuncBody will process like any other instruction.
func (g *bodyGen) bindParams() {
	llvmParams := g.fn.Params()
	idx := 0
	if g.sig.Mapping.HasSRet {
		g.sretSlot = llvmParams[0]
		idx = 1
	}

	paramVals := make(map[*ir.Param]llvm.Value, len(g.f.Params()))
	for i, p := range g.f.Params() {
		if i >= len(g.sig.Params) {
			break
		}
		classified := g.sig.Params[i]
		if classified.Mode == abi.Ignore {
			continue
		}
		lp := llvmParams[idx]
		idx++

		if classified.Mode == abi.Indirect || classified.Mode == abi.IndirectAliased {
			// lp is a pointer to the caller's copy; the Store lower.go
			// emitted for this parameter expects the value itself, loaded
			// once here rather than re-loaded at every use.
			paramVals[p] = g.b.CreateLoad(lp, "")
		} else {
			paramVals[p] = lp
		}
	}
	g.paramVals = paramVals
}

// val resolves an ir.Value operand to its LLVM value, materializing
// constants on demand and looking up already-emitted instructions/params.
func (g *bodyGen) val(v ir.Value) llvm.Value {
	if v == nil {
		return llvm.Value{}
	}
	if found, ok := g.vals[v]; ok {
		return found
	}
	switch t := v.(type) {
	case *ir.Param:
		return g.paramVals[t]
	case *ir.ConstInt:
		c := llvm.ConstIntFromString(g.e.llvmType(t.Type()), t.Text, 10)
		g.vals[v] = c
		return c
	case *ir.ConstFloat:
		c := llvm.ConstFloat(g.e.llvmType(t.Type()), t.Val)
		g.vals[v] = c
		return c
	case *ir.ConstBool:
		n := uint64(0)
		if t.Val {
			n = 1
		}
		c := llvm.ConstInt(g.e.ctx.Int1Type(), n, false)
		g.vals[v] = c
		return c
	case *ir.ConstString:
		c := g.b.CreateGlobalStringPtr(t.Val, "L_STR")
		g.vals[v] = c
		return c
	case *ir.ConstNull:
		c := llvm.ConstNull(g.e.llvmType(t.Type()))
		g.vals[v] = c
		return c
	default:
		return llvm.Value{}
	}
}
