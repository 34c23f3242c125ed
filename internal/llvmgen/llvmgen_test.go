package llvmgen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"adeptc/internal/alex"
	"adeptc/internal/aparse"
	"adeptc/internal/diag"
	"adeptc/internal/ir"
	"adeptc/internal/lower"
	"adeptc/internal/resolve"
	"adeptc/internal/sourcemap"
	"adeptc/internal/target"
	"adeptc/internal/types"
)

func lowerAdept(t *testing.T, src string, ret types.Type) *ir.Func {
	t.Helper()
	toks, err := alex.Lex(sourcemap.Key(1), src)
	require.NoError(t, err)
	prog, err := aparse.Parse(sourcemap.Key(1), toks)
	require.NoError(t, err)
	fn := prog.Children[0]
	b, err := aparse.Flatten(fn)
	require.NoError(t, err)
	sink := &diag.Sink{}
	fb := resolve.Resolve(b, 0, nil, ret, nil, nil, false, sink)
	require.Empty(t, sink.Errors())
	m := ir.NewModule("test")
	return lower.Lower(m, fb, "f", 0, false, lower.NewFuncTable())
}

func TestGenerateSimpleFunctionDoesNotError(t *testing.T) {
	f := lowerAdept(t, "func f() {\n  let x = 1 + 2\n}\n", types.Type{Kind: types.KVoid})
	ctx, mod, err := Generate(f.Module(), target.X86_64SysV(), Options{Threads: 1})
	require.NoError(t, err)
	defer ctx.Dispose()
	defer mod.Dispose()
}

func TestGenerateReturningIntFunction(t *testing.T) {
	f := lowerAdept(t, "func f() -> int {\n  return 1\n}\n", types.Type{Kind: types.KInt, IntWidth: types.Int32})
	ctx, mod, err := Generate(f.Module(), target.X86_64SysV(), Options{Threads: 2})
	require.NoError(t, err)
	defer ctx.Dispose()
	defer mod.Dispose()
}
