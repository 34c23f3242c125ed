package resolve

import (
	"testing"

	"github.com/stretchr/testify/require"

	"adeptc/internal/alex"
	"adeptc/internal/aparse"
	"adeptc/internal/cfg"
	"adeptc/internal/diag"
	"adeptc/internal/sourcemap"
	"adeptc/internal/types"
)

func flattenAdept(t *testing.T, src string) *cfg.Builder {
	t.Helper()
	toks, err := alex.Lex(sourcemap.Key(1), src)
	require.NoError(t, err)
	prog, err := aparse.Parse(sourcemap.Key(1), toks)
	require.NoError(t, err)
	fn := prog.Children[0]
	b, err := aparse.Flatten(fn)
	require.NoError(t, err)
	return b
}

// TestDominatorWalkResolvesShadowedName exercises scenario S7 from spec.md
// §8: an inner `let x` inside an if shadows the outer x only within that
// branch; a use after the if resolves to the outer declaration.
func TestDominatorWalkResolvesShadowedName(t *testing.T) {
	b := flattenAdept(t, "func f() {\n  let x = 1\n  if x < 2 {\n    let x = 2\n    let y = x\n  }\n  let z = x\n}\n")
	sink := &diag.Sink{}
	fb := Resolve(b, 0, nil, types.Type{Kind: types.KVoid}, nil, nil, false, sink)
	require.Empty(t, sink.Errors())

	declOf := map[string]int{} // x's initializer literal text -> variable index
	useOf := map[string]int{}  // y, z -> variable index of the x it is initialized from
	for _, bb := range b.Blocks {
		for _, instr := range bb.Instrs {
			if instr.Kind == cfg.IName && instr.Name == "x" {
				require.True(t, instr.VarRef.Valid)
				require.Equal(t, "x", fb.Variables.GetAt(instr.VarRef.Index).Name)
			}
			if instr.Kind != cfg.IDeclareAssign {
				continue
			}
			initInstr := b.Instr(instr.Args[0])
			if instr.Name == "x" {
				declOf[initInstr.IntValue] = instr.VarRef.Index
			} else {
				useOf[instr.Name] = initInstr.VarRef.Index
			}
		}
	}
	require.Len(t, declOf, 2)
	require.Len(t, useOf, 2)
	require.Equal(t, declOf["2"], useOf["y"], "inner use binds to the inner x")
	require.Equal(t, declOf["1"], useOf["z"], "outer use binds to the outer x")
}

func TestUnresolvedNameReportsDiagnostic(t *testing.T) {
	b := flattenAdept(t, "func f() {\n  let x = y\n}\n")
	sink := &diag.Sink{}
	Resolve(b, 0, nil, types.Type{Kind: types.KVoid}, nil, nil, false, sink)
	require.NotEmpty(t, sink.Errors())
}

func TestIntLiteralTypedAndBinOpUnifies(t *testing.T) {
	b := flattenAdept(t, "func f() {\n  let x = 1 + 2\n}\n")
	sink := &diag.Sink{}
	Resolve(b, 0, nil, types.Type{Kind: types.KVoid}, nil, nil, false, sink)
	require.Empty(t, sink.Errors())

	found := false
	for _, bb := range b.Blocks {
		for _, instr := range bb.Instrs {
			if instr.Kind == cfg.IBinOp {
				found = true
				require.NotNil(t, instr.Typed)
				require.Equal(t, types.KInt, instr.Typed.Type().Kind)
			}
		}
	}
	require.True(t, found)
}

func TestCallResolvesAgainstFuncTable(t *testing.T) {
	b := flattenAdept(t, "func f() {\n  let x = add(1, 2)\n}\n")
	head := &types.FuncHead{
		Name:   "add",
		Params: []types.Field{{Name: "a", Type: types.Type{Kind: types.KInt, IntWidth: types.Int32}}, {Name: "b", Type: types.Type{Kind: types.KInt, IntWidth: types.Int32}}},
		Return: types.Type{Kind: types.KInt, IntWidth: types.Int32},
	}
	funcs := map[string]*types.FuncHead{"add": head}
	sink := &diag.Sink{}
	Resolve(b, 0, nil, types.Type{Kind: types.KVoid}, funcs, nil, false, sink)
	require.Empty(t, sink.Errors())

	found := false
	for _, bb := range b.Blocks {
		for _, instr := range bb.Instrs {
			if instr.Kind == cfg.ICall {
				found = true
				require.Same(t, head, instr.Callee)
			}
		}
	}
	require.True(t, found)
}

func TestPhiUnifiesShortCircuitOperandTypes(t *testing.T) {
	b := flattenAdept(t, "func f() {\n  let x = true && false\n}\n")
	sink := &diag.Sink{}
	Resolve(b, 0, nil, types.Type{Kind: types.KVoid}, nil, nil, false, sink)
	require.Empty(t, sink.Errors())

	for _, bb := range b.Blocks {
		for _, instr := range bb.Instrs {
			if instr.Kind == cfg.IPhi {
				require.NotNil(t, instr.Typed)
				require.Equal(t, types.KBool, instr.Typed.Type().Kind)
			}
		}
	}
}

func TestReturnConformsToDeclaredReturnType(t *testing.T) {
	b := flattenAdept(t, "func f() -> int {\n  return 1\n}\n")
	sink := &diag.Sink{}
	fb := Resolve(b, 0, nil, types.Type{Kind: types.KInt, IntWidth: types.Int64}, nil, nil, false, sink)
	require.Empty(t, sink.Errors())

	for _, bb := range fb.CFG.Blocks {
		if bb.End.Kind == cfg.EndReturn && bb.End.HasValue {
			require.NotNil(t, bb.End.Cast)
			require.Equal(t, types.CastIntWiden, bb.End.Cast.Op)
		}
	}
}

func TestDomTreeEntryDominatesEveryBlock(t *testing.T) {
	b := flattenAdept(t, "func f() {\n  if 1 < 2 {\n    let x = 1\n  } else {\n    let y = 2\n  }\n}\n")
	dom := ComputeDominators(b, 0)
	for id := range b.Blocks {
		require.True(t, dom.Dominates(0, cfg.BasicBlockID(id)))
	}
}
