package cparse

import (
	"testing"

	"github.com/stretchr/testify/require"

	"adeptc/internal/cast"
	"adeptc/internal/cpre"
	"adeptc/internal/sourcemap"
)

func parseSrc(t *testing.T, src string) *cast.Node {
	t.Helper()
	pre, err := cpre.Preprocess(sourcemap.Key(1), []byte(src))
	require.NoError(t, err)
	toks, err := cpre.Lex(pre)
	require.NoError(t, err)
	unit, err := Parse(toks)
	require.NoError(t, err)
	return unit
}

func TestParseSimpleFuncDef(t *testing.T) {
	unit := parseSrc(t, "int add(int a, int b) {\n  return a + b;\n}\n")
	require.Equal(t, cast.TranslationUnit, unit.Type)
	require.Len(t, unit.Children, 1)
	fn := unit.Children[0]
	require.Equal(t, cast.FuncDef, fn.Type)
	decl := fn.Children[1]
	require.Equal(t, "add", cast.DeclaratorIdentifier(decl))
}

func TestParseTypedefThenUseAsType(t *testing.T) {
	unit := parseSrc(t, "typedef int myint;\nmyint x;\n")
	require.Len(t, unit.Children, 2)
	require.Equal(t, cast.Declaration, unit.Children[1].Type)
}

func TestParseCastVsParenDisambiguation(t *testing.T) {
	unit := parseSrc(t, "int f(void) {\n  int x;\n  x = (int)1;\n  return (x);\n}\n")
	fn := unit.Children[0]
	body := fn.Children[2]
	assignStmt := body.Children[1]
	assign := assignStmt.Children[0]
	require.Equal(t, cast.ExprAssign, assign.Type)
	rhs := assign.Children[1]
	require.Equal(t, cast.ExprCast, rhs.Type)
}

func TestParseIfWhileForBreakContinueGoto(t *testing.T) {
	unit := parseSrc(t, `int f(void) {
  int i;
  for (i = 0; i < 10; i = i + 1) {
    if (i == 5) {
      break;
    } else {
      continue;
    }
  }
  while (i > 0) {
    i = i - 1;
  }
  goto done;
  done:
  return i;
}
`)
	fn := unit.Children[0]
	body := fn.Children[2]
	require.Equal(t, cast.StmtFor, body.Children[1].Type)
	require.Equal(t, cast.StmtWhile, body.Children[2].Type)
	require.Equal(t, cast.StmtGoto, body.Children[3].Type)
	require.Equal(t, cast.StmtLabel, body.Children[4].Type)
}

func TestParseStaticAssert(t *testing.T) {
	unit := parseSrc(t, `static_assert(1, "always true");
int f(void) { return 0; }
`)
	require.Equal(t, cast.StaticAssert, unit.Children[0].Type)
}

func TestParseSizeofTypeVsExpr(t *testing.T) {
	unit := parseSrc(t, `int f(void) {
  int x;
  return sizeof(int) + sizeof(x);
}
`)
	fn := unit.Children[0]
	body := fn.Children[2]
	retStmt := body.Children[1]
	sum := retStmt.Children[0]
	require.Equal(t, cast.ExprBinary, sum.Type)
	require.Equal(t, cast.ExprSizeofType, sum.Children[0].Type)
	require.Equal(t, cast.ExprSizeofExpr, sum.Children[1].Type)
}
