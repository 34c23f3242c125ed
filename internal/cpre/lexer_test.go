package cpre

import (
	"testing"

	"github.com/stretchr/testify/require"

	"adeptc/internal/ctoken"
	"adeptc/internal/sourcemap"
)

// TestLineSplicing exercises scenario S1 from spec.md §8: backslash-newline
// splicing must make "int x\\\n = 42;\n" tokenize identically to
// "int x = 42;\n".
func TestLineSplicing(t *testing.T) {
	pre, err := Preprocess(sourcemap.Key(1), []byte("int x\\\n = 42;\n"))
	require.NoError(t, err)

	toks, err := Lex(pre)
	require.NoError(t, err)
	require.Equal(t, ctoken.CTKeyword, toks[0].Kind)
	require.Equal(t, ctoken.KwInt, toks[0].Keyword)
	require.Equal(t, ctoken.CTIdentifier, toks[1].Kind)
	require.Equal(t, "x", toks[1].Ident)
	require.Equal(t, ctoken.CTPunctuator, toks[2].Kind)
	require.Equal(t, ctoken.PAssign, toks[2].Punct)
	require.Equal(t, ctoken.CTIntegerLiteral, toks[3].Kind)
	require.Equal(t, int64(42), toks[3].Int.Int64())
	require.Equal(t, ctoken.CTPunctuator, toks[4].Kind)
	require.Equal(t, ctoken.PSemicolon, toks[4].Punct)
	require.Equal(t, ctoken.CTEOF, toks[5].Kind)
}

func TestRoundTripStabilityWithoutDirectives(t *testing.T) {
	src := "int add(int a, int b) { return a + b; }\n"
	p1, err := Preprocess(sourcemap.Key(1), []byte(src))
	require.NoError(t, err)
	t1, err := Lex(p1)
	require.NoError(t, err)

	// Re-lexing the same source a second time must be deterministic
	// (spec.md §8 law 1, restricted to the non-directive subset this core
	// actually re-derives text for).
	p2, err := Preprocess(sourcemap.Key(2), []byte(src))
	require.NoError(t, err)
	t2, err := Lex(p2)
	require.NoError(t, err)

	require.Equal(t, len(t1), len(t2))
	for i := range t1 {
		require.Equal(t, t1[i].Kind, t2[i].Kind)
		require.Equal(t, t1[i].Text, t2[i].Text)
	}
}

func TestUnterminatedBlockComment(t *testing.T) {
	_, err := Preprocess(sourcemap.Key(1), []byte("int x; /* oops\n"))
	require.Error(t, err)
	pe, ok := err.(*PreprocError)
	require.True(t, ok)
	require.Equal(t, ErrUnterminatedMultiLineComment, pe.Kind)
}

func TestEscapeSequences(t *testing.T) {
	pre, err := Preprocess(sourcemap.Key(1), []byte(`"a\tb\x41\n"`))
	require.NoError(t, err)
	require.Len(t, pre, 1)
	require.Equal(t, []rune{'a', '\t', 'b', 'A', '\n'}, pre[0].Chars)
}

func TestBadEscapeSequence(t *testing.T) {
	_, err := Preprocess(sourcemap.Key(1), []byte(`"\q"`))
	require.Error(t, err)
	pe, ok := err.(*PreprocError)
	require.True(t, ok)
	require.Equal(t, ErrBadEscapeSequence, pe.Kind)
}

func TestEncodingPrefixes(t *testing.T) {
	pre, err := Preprocess(sourcemap.Key(1), []byte(`u8"hi" u'a' U"wide" L'x'`))
	require.NoError(t, err)
	require.Len(t, pre, 4)
	require.Equal(t, ctoken.EncU8, pre[0].Encoding)
	require.Equal(t, ctoken.EncU, pre[1].Encoding)
	require.Equal(t, ctoken.EncBigU, pre[2].Encoding)
	require.Equal(t, ctoken.EncWide, pre[3].Encoding)
}

func TestNumericSuffixesAndSeparators(t *testing.T) {
	pre, err := Preprocess(sourcemap.Key(1), []byte("1'000'000ull 3.14f 0x2Ap1"))
	require.NoError(t, err)
	toks, err := Lex(pre)
	require.NoError(t, err)

	require.Equal(t, ctoken.CTIntegerLiteral, toks[0].Kind)
	require.Equal(t, int64(1000000), toks[0].Int.Int64())
	require.True(t, toks[0].Suffix.Unsigned)
	require.Equal(t, 2, toks[0].Suffix.LongCount)

	require.Equal(t, ctoken.CTFloatLiteral, toks[1].Kind)
	require.InDelta(t, 3.14, toks[1].Float, 0.0001)
	require.True(t, toks[1].Suffix.ExplicitF32)

	require.Equal(t, ctoken.CTFloatLiteral, toks[2].Kind)
}
