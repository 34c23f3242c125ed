// Package llvmgen walks a lowered internal/ir.Module and emits an LLVM
// module via tinygo.org/x/go-llvm, applying the internal/abi classification
// at every call and return boundary (spec.md §4.8 "LLVM Emission Driver").
// Structured as a two-phase declare-then-define pass, one llvm.Builder per
// worker goroutine during function-body generation, and a module-scoped,
// mutex-guarded symbol table for cross-function lookups.
package llvmgen

import (
	"fmt"
	"sync"

	"tinygo.org/x/go-llvm"

	"adeptc/internal/abi"
	"adeptc/internal/ir"
	"adeptc/internal/target"
	"adeptc/internal/types"
)

// Threads controls how many goroutines generate function bodies
// concurrently (spec.md §5 "bounded worker concurrency"). 0 or 1 means
// sequential.
type Options struct {
	Threads int
}

// Emitter holds the LLVM context/module/state shared across one Generate
// call. funcs maps an ir.Func to its declared llvm.Value, guarded by mu
// since the body-generation goroutines read it through lookupFunc (every
// declareFunc call finishes before they start).
type Emitter struct {
	ctx    llvm.Context
	mod    llvm.Module
	target *target.Description
	cls    abi.Classifier

	mu    sync.RWMutex
	funcs map[*ir.Func]llvm.Value
	sigs  map[*ir.Func]abi.Signature

	overflowFn   llvm.Value
	overflowOnce sync.Once
	intrinsics   map[string]llvm.Value
	intrinsicsMu sync.Mutex
}

func classifierFor(d *target.Description) abi.Classifier {
	switch d.ABI {
	case target.AArch64AAPCS:
		return abi.AArch64{}
	case target.Win64:
		return abi.Win64{}
	default:
		return abi.SysV{}
	}
}

// Generate lowers every Func in m into a fresh llvm.Module named after m,
// returning it for the caller to verify/optimize/emit to an object file.
// The caller owns disposal of the returned module and its context.
func Generate(m *ir.Module, d *target.Description, opt Options) (llvm.Context, llvm.Module, error) {
	ctx := llvm.NewContext()
	mod := ctx.NewModule(m.Name())

	e := &Emitter{
		ctx:        ctx,
		mod:        mod,
		target:     d,
		cls:        classifierFor(d),
		funcs:      make(map[*ir.Func]llvm.Value),
		sigs:       make(map[*ir.Func]abi.Signature),
		intrinsics: make(map[string]llvm.Value),
	}

	// Phase 1: declare every function header so forward/mutually-recursive
	// calls resolve regardless of definition order (mirrors GenLLVM's
	// genFuncHeader pass before any genFuncBody runs).
	for _, f := range m.Funcs() {
		if err := e.declareFunc(f); err != nil {
			return ctx, mod, err
		}
	}

	defs := make([]*ir.Func, 0, len(m.Funcs()))
	for _, f := range m.Funcs() {
		if !f.IsExtern() {
			defs = append(defs, f)
		}
	}

	threads := opt.Threads
	if threads > len(defs) {
		threads = len(defs)
	}
	if threads <= 1 || len(defs) == 0 {
		b := ctx.NewBuilder()
		defer b.Dispose()
		for _, f := range defs {
			if err := e.genFuncBody(b, f); err != nil {
				return ctx, mod, err
			}
		}
		return ctx, mod, nil
	}

	// Parallel body generation, one builder per goroutine so that no two
	// goroutines share an insertion point.
	n := len(defs) / threads
	res := len(defs) % threads
	start := 0
	var wg sync.WaitGroup
	errs := make([]error, threads)
	for w := 0; w < threads; w++ {
		end := start + n
		if w < res {
			end++
		}
		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			b := ctx.NewBuilder()
			defer b.Dispose()
			for _, f := range defs[start:end] {
				if err := e.genFuncBody(b, f); err != nil {
					errs[w] = err
					return
				}
			}
		}(w, start, end)
		start = end
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return ctx, mod, err
		}
	}
	return ctx, mod, nil
}

// ---------------------------------------------------------------------
// Type mapping
// ---------------------------------------------------------------------

func (e *Emitter) llvmType(t types.Type) llvm.Type {
	switch t.Kind {
	case types.KBool:
		return e.ctx.Int1Type()
	case types.KVoid:
		return e.ctx.VoidType()
	case types.KInt:
		return e.ctx.IntType(int(t.IntWidth))
	case types.KFloat:
		if t.FloatWidth == types.Float32 {
			return e.ctx.FloatType()
		}
		return e.ctx.DoubleType()
	case types.KPointer:
		var elem llvm.Type
		if t.Pointee != nil {
			elem = e.llvmType(*t.Pointee)
		} else {
			elem = e.ctx.Int8Type()
		}
		return llvm.PointerType(elem, 0)
	case types.KArray:
		var elem llvm.Type
		if t.ArrayElem != nil {
			elem = e.llvmType(*t.ArrayElem)
		} else {
			elem = e.ctx.Int8Type()
		}
		return llvm.ArrayType(elem, int(t.ArrayLen))
	case types.KStruct:
		fields := make([]llvm.Type, len(t.StructFields))
		for i, f := range t.StructFields {
			fields[i] = e.llvmType(f.Type)
		}
		return e.ctx.StructType(fields, false)
	default:
		return e.ctx.Int64Type()
	}
}

// abiParamType returns the LLVM type a single classified parameter
// occupies at the call boundary: the pointer type for Indirect, the plain
// type otherwise (Expand/CoerceAndExpand are not produced by the built-in
// Classifiers; declareFunc rejects only InAlloca, so such a parameter gets
// one slot of its plain type here).
func (e *Emitter) abiParamType(p abi.Param) llvm.Type {
	switch p.Mode {
	case abi.Indirect, abi.IndirectAliased:
		return llvm.PointerType(e.llvmType(p.Type), 0)
	default:
		return e.llvmType(p.Type)
	}
}

// ---------------------------------------------------------------------
// Function declaration
// ---------------------------------------------------------------------

func (e *Emitter) declareFunc(f *ir.Func) error {
	var paramTypes []types.Type
	for _, p := range f.Params() {
		paramTypes = append(paramTypes, p.Type())
	}
	sig := abi.Classify(e.cls, paramTypes, f.Return())
	if sig.Return.Mode == abi.InAlloca {
		return fmt.Errorf("llvmgen: function %q: InAlloca return is not supported by this core", f.Name())
	}
	for _, p := range sig.Params {
		if p.Mode == abi.InAlloca {
			return fmt.Errorf("llvmgen: function %q: InAlloca parameter is not supported by this core", f.Name())
		}
	}

	var llvmParams []llvm.Type
	if sig.Mapping.HasSRet {
		llvmParams = append(llvmParams, llvm.PointerType(e.llvmType(f.Return()), 0))
	}
	for _, p := range sig.Params {
		if p.Mode == abi.Ignore {
			continue
		}
		llvmParams = append(llvmParams, e.abiParamType(p))
	}

	var retType llvm.Type
	if sig.Mapping.HasSRet || f.Return().Kind == types.KVoid {
		retType = e.ctx.VoidType()
	} else {
		retType = e.llvmType(sig.Return.Type)
	}

	fnType := llvm.FunctionType(retType, llvmParams, f.IsVariadic())
	fn := llvm.AddFunction(e.mod, f.Name(), fnType)

	e.mu.Lock()
	e.funcs[f] = fn
	e.sigs[f] = sig
	e.mu.Unlock()
	return nil
}

func (e *Emitter) lookupFunc(f *ir.Func) (llvm.Value, abi.Signature) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.funcs[f], e.sigs[f]
}
