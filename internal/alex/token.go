// Package alex implements the Adept lexer (spec.md §4.3) as a Rob-Pike
// state-function scanner generalized to the richer Adept token set:
// newline significance, doc comments, angle
// disambiguation, unary/binary &/* disambiguation, compound identifiers,
// polymorph/short-generic sigils, and the four string-literal modifier
// prefixes.
package alex

import "adeptc/internal/sourcemap"

// Kind enumerates Adept token kinds.
type Kind int

const (
	KindEOF Kind = iota
	KindNewline
	KindIdentifier
	KindCompoundIdentifier // struct<...>, union<...>, enum<...> accumulated text.
	KindDocComment
	KindPolymorph   // $name
	KindShortGeneric // #
	KindInteger
	KindFloat
	KindString // "...": default normal string.
	KindCString // c"...": null-terminated.
	KindRune    // '...': rune literal.
	KindCChar   // c'...': C char literal.

	// Keywords.
	KindFunc
	KindStruct
	KindUnion
	KindEnum
	KindIf
	KindElse
	KindWhile
	KindReturn
	KindBreak
	KindContinue
	KindGoto
	KindLet
	KindConst
	KindTrue
	KindFalse
	KindNull
	KindSizeof
	KindAs
	KindIs

	// Punctuation / operators.
	KindLParen
	KindRParen
	KindLBrace
	KindRBrace
	KindLBracket
	KindRBracket
	KindComma
	KindColon
	KindColonColon
	KindSemicolon
	KindDot
	KindAssign
	KindOpenAngle   // '<' when it might be a generic-call opener.
	KindLessThan    // '<' as a binary comparison (disambiguated by leading space).
	KindGreaterThan
	KindLessEq
	KindGreaterEq
	KindEqEq
	KindNotEq
	KindPlus
	KindMinus
	KindStar       // binary multiply.
	KindSlash
	KindPercent
	KindAmp        // binary bitwise and.
	KindPipe
	KindCaret
	KindNot
	KindAndAnd
	KindOrOr
	KindLShift
	KindRShift
	KindLShiftAssign
	KindRShiftAssign
	KindPlusAssign
	KindMinusAssign
	KindStarAssign
	KindSlashAssign
	KindAddressOf   // unary &.
	KindDereference // unary *.
	KindArrow
	KindEllipsis
	KindQuestion
)

// Token is a single scanned Adept token.
type Token struct {
	Kind   Kind
	Text   string
	Source sourcemap.Source
	// HadPrecedingSpace records whether whitespace (not counting newlines)
	// immediately preceded this token. The OpenAngle/LessThan
	// disambiguation keys off this bit (spec.md §4.3); the unary/binary &/*
	// disambiguation instead looks at whether whitespace follows the
	// operator.
	HadPrecedingSpace bool
}

var keywords = map[string]Kind{
	"func": KindFunc, "struct": KindStruct, "union": KindUnion, "enum": KindEnum,
	"if": KindIf, "else": KindElse, "while": KindWhile, "return": KindReturn,
	"break": KindBreak, "continue": KindContinue, "goto": KindGoto,
	"let": KindLet, "const": KindConst, "true": KindTrue, "false": KindFalse,
	"null": KindNull, "sizeof": KindSizeof, "as": KindAs, "is": KindIs,
}
