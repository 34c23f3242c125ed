// Package ctoken defines the token vocabulary shared by the C preprocessor
// and C lexer (spec.md §3 "Tokens", §4.1): the unparsed PreToken stream
// produced by line splicing + tokenization, and the classified CToken
// stream produced by keyword/numeric-literal lexing.
package ctoken

import (
	"math/big"

	"adeptc/internal/sourcemap"
)

// Encoding names the string/char literal encoding prefix (spec.md §4.1
// "recognition of ... char/string constants with encoding prefixes u8, u,
// U, L").
type Encoding int

const (
	EncNone Encoding = iota // no prefix: plain char/string.
	EncU8                   // u8"..."
	EncU                    // u"..."
	EncBigU                 // U"..."
	EncWide                 // L"..."
)

func (e Encoding) String() string {
	switch e {
	case EncU8:
		return "u8"
	case EncU:
		return "u"
	case EncBigU:
		return "U"
	case EncWide:
		return "L"
	default:
		return ""
	}
}

// PreTokenKind enumerates the preprocessing-token union (spec.md §3
// "PreToken (C only)").
type PreTokenKind int

const (
	PTIdentifier PreTokenKind = iota
	PTNumber                  // unparsed pp-number text.
	PTCharacterConstant
	PTStringLiteral
	PTPunctuator
	PTHeaderName
	PTUniversalCharacterName
	PTPlaceholder // result of an empty macro expansion; core does not expand macros, but the slot exists.
	PTOther
)

// PreToken is a single entry in the preprocessing-token stream.
type PreToken struct {
	Kind     PreTokenKind
	Text     string   // raw spelling (for Number, Punctuator, Identifier, Other).
	Encoding Encoding // meaningful for CharacterConstant/StringLiteral.
	Chars    []rune   // decoded characters, for CharacterConstant/StringLiteral.
	Source   sourcemap.Source
	Line     int // physical line, post-splicing, 1-indexed.
}

// CTokenKind enumerates the classified C token union (spec.md §3 "CToken").
type CTokenKind int

const (
	CTIdentifier CTokenKind = iota
	CTKeyword
	CTIntegerLiteral
	CTFloatLiteral
	CTCharLiteral
	CTStringLiteral
	CTPunctuator
	CTEOF
)

// Suffix captures a numeric literal's trailing type suffix, e.g. `u`, `ul`,
// `ull`, `f`, `l`.
type Suffix struct {
	Unsigned     bool
	LongCount    int // 0, 1 (l), or 2 (ll).
	Float        bool
	ExplicitF32  bool // trailing `f`/`F` on a float literal.
}

// CToken is a single classified C token.
type CToken struct {
	Kind   CTokenKind
	Text   string // original spelling, for diagnostics.
	Source sourcemap.Source

	Keyword  Keyword // valid when Kind == CTKeyword.
	Ident    string  // valid when Kind == CTIdentifier.
	Punct    Punct   // valid when Kind == CTPunctuator.
	Int      *big.Int
	Float    float64
	Suffix   Suffix
	Encoding Encoding
	Chars    []rune // decoded char/string contents.
}
