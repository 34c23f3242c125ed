package alex

import (
	"testing"

	"github.com/stretchr/testify/require"

	"adeptc/internal/sourcemap"
)

// TestAmbiguousAngle exercises scenario S2 from spec.md §8.
func TestAmbiguousAngle(t *testing.T) {
	toks, err := Lex(sourcemap.Key(1), "if a < b { }\n")
	require.NoError(t, err)

	var kinds []Kind
	for _, tok := range toks {
		if tok.Kind != KindNewline && tok.Kind != KindEOF {
			kinds = append(kinds, tok.Kind)
		}
	}
	require.Contains(t, kinds, KindLessThan)
	require.NotContains(t, kinds, KindOpenAngle)
}

func TestGenericCallOpensAngle(t *testing.T) {
	toks, err := Lex(sourcemap.Key(1), "a<b>(c)\n")
	require.NoError(t, err)
	require.Equal(t, KindIdentifier, toks[0].Kind)
	require.Equal(t, KindOpenAngle, toks[1].Kind)
}

func TestUnaryVsBinaryAmpStar(t *testing.T) {
	toks, err := Lex(sourcemap.Key(1), "&x x & y *x x * y\n")
	require.NoError(t, err)
	require.Equal(t, KindAddressOf, toks[0].Kind)
	require.Equal(t, KindIdentifier, toks[1].Kind)
	require.Equal(t, KindAmp, toks[3].Kind)
	require.Equal(t, KindIdentifier, toks[4].Kind)
	require.Equal(t, KindDereference, toks[5].Kind)
	require.Equal(t, KindIdentifier, toks[6].Kind)
	require.Equal(t, KindStar, toks[8].Kind)
}

func TestCompoundIdentifier(t *testing.T) {
	toks, err := Lex(sourcemap.Key(1), "struct<T, N> s\n")
	require.NoError(t, err)
	require.Equal(t, KindCompoundIdentifier, toks[0].Kind)
	require.Equal(t, "struct<T, N>", toks[0].Text)
}

func TestPolymorphAndShortGeneric(t *testing.T) {
	toks, err := Lex(sourcemap.Key(1), "$T #\n")
	require.NoError(t, err)
	require.Equal(t, KindPolymorph, toks[0].Kind)
	require.Equal(t, "$T", toks[0].Text)
	require.Equal(t, KindShortGeneric, toks[1].Kind)
}

func TestStringLiteralModifiers(t *testing.T) {
	toks, err := Lex(sourcemap.Key(1), `"a" c"b" 'r' c'd'`+"\n")
	require.NoError(t, err)
	require.Equal(t, KindString, toks[0].Kind)
	require.Equal(t, KindCString, toks[1].Kind)
	require.Equal(t, KindRune, toks[2].Kind)
	require.Equal(t, KindCChar, toks[3].Kind)
}

func TestNumericLiterals(t *testing.T) {
	toks, err := Lex(sourcemap.Key(1), "0x1A 3.14 1e10 2p3\n")
	require.NoError(t, err)
	require.Equal(t, KindInteger, toks[0].Kind)
	require.Equal(t, KindFloat, toks[1].Kind)
	require.Equal(t, KindFloat, toks[2].Kind)
	require.Equal(t, KindFloat, toks[3].Kind)
}
