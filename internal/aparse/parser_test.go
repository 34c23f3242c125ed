package aparse

import (
	"testing"

	"github.com/stretchr/testify/require"

	"adeptc/internal/aast"
	"adeptc/internal/alex"
	"adeptc/internal/sourcemap"
)

func lexOrFail(t *testing.T, src string) []alex.Token {
	t.Helper()
	toks, err := alex.Lex(sourcemap.Key(1), src)
	require.NoError(t, err)
	return toks
}

func TestParseSimpleFunc(t *testing.T) {
	toks := lexOrFail(t, "func add(a: int, b: int) -> int {\n  return a + b\n}\n")
	prog, err := Parse(sourcemap.Key(1), toks)
	require.NoError(t, err)
	require.Equal(t, aast.Program, prog.Type)
	require.Len(t, prog.Children, 1)
	fn := prog.Children[0]
	require.Equal(t, aast.FuncDecl, fn.Type)
	require.Equal(t, "add", fn.Data)
}

func TestParseShortCircuitBinary(t *testing.T) {
	toks := lexOrFail(t, "func f() {\n  a && b || c\n}\n")
	prog, err := Parse(sourcemap.Key(1), toks)
	require.NoError(t, err)
	fn := prog.Children[0]
	block := fn.Children[1] // Children: [ParamList, Block] (no return type).
	exprStmt := block.Children[0]
	require.Equal(t, aast.StmtExpr, exprStmt.Type)
	top := exprStmt.Children[0]
	require.Equal(t, aast.ExprBinary, top.Type)
	require.Equal(t, aast.OpLogicalOr, top.Data)
}

func TestParseIfElseAndWhile(t *testing.T) {
	toks := lexOrFail(t, "func f() {\n  if a < b {\n    return\n  } else {\n    return\n  }\n  while a < b {\n    break\n  }\n}\n")
	prog, err := Parse(sourcemap.Key(1), toks)
	require.NoError(t, err)
	fn := prog.Children[0]
	block := fn.Children[1]
	require.Equal(t, aast.StmtIf, block.Children[0].Type)
	require.Len(t, block.Children[0].Children, 3)
	require.Equal(t, aast.StmtWhile, block.Children[1].Type)
}

func TestParseGotoLabel(t *testing.T) {
	toks := lexOrFail(t, "func f() {\n  goto top\n  top::\n  return\n}\n")
	prog, err := Parse(sourcemap.Key(1), toks)
	require.NoError(t, err)
	block := prog.Children[0].Children[1]
	require.Equal(t, aast.StmtGoto, block.Children[0].Type)
	require.Equal(t, "top", block.Children[0].Data)
	require.Equal(t, aast.StmtLabel, block.Children[1].Type)
}

func TestParseStructDecl(t *testing.T) {
	toks := lexOrFail(t, "struct Point {\n  x: int,\n  y: int\n}\n")
	prog, err := Parse(sourcemap.Key(1), toks)
	require.NoError(t, err)
	s := prog.Children[0]
	require.Equal(t, aast.StructDecl, s.Type)
	require.Equal(t, "Point", s.Data)
	fields := s.Children[0]
	require.Len(t, fields.Children, 2)
}

func TestParseCallAndMemberChain(t *testing.T) {
	toks := lexOrFail(t, "func f() {\n  a.b.c(1, 2)\n}\n")
	prog, err := Parse(sourcemap.Key(1), toks)
	require.NoError(t, err)
	block := prog.Children[0].Children[1]
	call := block.Children[0].Children[0]
	require.Equal(t, aast.ExprCall, call.Type)
	require.Len(t, call.Children, 3) // callee + 2 args.
	require.Equal(t, aast.ExprMember, call.Children[0].Type)
}
