package lower

import (
	"testing"

	"github.com/stretchr/testify/require"

	"adeptc/internal/alex"
	"adeptc/internal/aparse"
	"adeptc/internal/diag"
	"adeptc/internal/ir"
	"adeptc/internal/resolve"
	"adeptc/internal/sourcemap"
	"adeptc/internal/types"
)

func resolveAdept(t *testing.T, src string, ret types.Type, funcs map[string]*types.FuncHead) *resolve.FuncBody {
	t.Helper()
	toks, err := alex.Lex(sourcemap.Key(1), src)
	require.NoError(t, err)
	prog, err := aparse.Parse(sourcemap.Key(1), toks)
	require.NoError(t, err)
	fn := prog.Children[0]
	b, err := aparse.Flatten(fn)
	require.NoError(t, err)
	sink := &diag.Sink{}
	fb := resolve.Resolve(b, 0, nil, ret, funcs, nil, false, sink)
	require.Empty(t, sink.Errors())
	return fb
}

func TestEveryVariableGetsEntryBlockAlloca(t *testing.T) {
	fb := resolveAdept(t, "func f() {\n  let x = 1\n  let y = 2\n}\n", types.Type{Kind: types.KVoid}, nil)
	m := ir.NewModule("test")
	f := Lower(m, fb, "f", 0, false, NewFuncTable())

	require.Len(t, f.Locals(), fb.Variables.Len())
	entryInstrs := f.Entry().Instrs()
	for _, local := range f.Locals() {
		found := false
		for _, instr := range entryInstrs {
			if a, ok := instr.(*ir.Alloca); ok && a == local {
				found = true
			}
		}
		require.True(t, found, "alloca for %s must live in the entry block", local.Name())
	}
}

func TestBinOpLowersWithOperands(t *testing.T) {
	fb := resolveAdept(t, "func f() {\n  let x = 1 + 2\n}\n", types.Type{Kind: types.KVoid}, nil)
	m := ir.NewModule("test")
	f := Lower(m, fb, "f", 0, false, NewFuncTable())

	found := false
	for _, bb := range f.Blocks() {
		for _, instr := range bb.Instrs() {
			if bo, ok := instr.(*ir.BinOp); ok {
				found = true
				require.Equal(t, ir.Add, bo.Op)
				require.NotNil(t, bo.Lhs)
				require.NotNil(t, bo.Rhs)
			}
		}
	}
	require.True(t, found)
}

func TestCallLowersToExternDeclarationWhenUnseen(t *testing.T) {
	head := &types.FuncHead{
		Name:   "add",
		Params: []types.Field{{Name: "a", Type: types.Type{Kind: types.KInt, IntWidth: types.Int32}}},
		Return: types.Type{Kind: types.KInt, IntWidth: types.Int32},
	}
	fb := resolveAdept(t, "func f() {\n  let x = add(1)\n}\n", types.Type{Kind: types.KVoid}, map[string]*types.FuncHead{"add": head})
	m := ir.NewModule("test")
	funcs := NewFuncTable()
	Lower(m, fb, "f", 0, false, funcs)

	decl, ok := funcs.m["add"]
	require.True(t, ok)
	require.True(t, decl.IsExtern())
	require.Len(t, m.Funcs(), 2)
}

func TestReturnValueCastInserted(t *testing.T) {
	fb := resolveAdept(t, "func f() -> int {\n  return 1\n}\n", types.Type{Kind: types.KInt, IntWidth: types.Int64}, nil)
	m := ir.NewModule("test")
	f := Lower(m, fb, "f", 0, false, NewFuncTable())

	foundCast := false
	var lastRet *ir.Return
	for _, bb := range f.Blocks() {
		if ret, ok := bb.Term().(*ir.Return); ok {
			lastRet = ret
			if _, ok := ret.Value.(*ir.Cast); ok {
				foundCast = true
			}
		}
	}
	require.NotNil(t, lastRet)
	require.True(t, foundCast)
}

func TestModuleStringDoesNotPanic(t *testing.T) {
	fb := resolveAdept(t, "func f() {\n  let x = 1\n  if x < 2 {\n    return\n  }\n}\n", types.Type{Kind: types.KVoid}, nil)
	m := ir.NewModule("test")
	Lower(m, fb, "f", 0, false, NewFuncTable())
	require.NotEmpty(t, m.String())
}
