// Package cpre implements the C preprocessing-token scanner and the CToken
// classifier built on top of it (spec.md §4.1). The scanner is a Rob-Pike
// state-function lexer: instead of a goroutine feeding a channel, it runs
// synchronously and appends to a slice, since preprocess() is specified as
// a pure `bytes -> Result<[PreToken], PreprocError>` function rather than a
// streaming collaborator of a concurrent parser.
package cpre

import (
	"fmt"
	"unicode/utf8"

	"adeptc/internal/ctoken"
	"adeptc/internal/sourcemap"
)

const eof = 0

// stateFunc is one state of the preprocessing scanner.
type stateFunc func(*scanner) stateFunc

// scanner holds the mutable state threaded through the state functions:
// input/start/pos/width/line.
type scanner struct {
	file      sourcemap.Key
	input     string
	physLine  []int
	start     int
	pos       int
	width     int
	startLine int // physical line of the token currently being scanned.

	out []ctoken.PreToken
	err *PreprocError

	// commentStartLine is the physical line where the current block comment
	// (non-nesting, per ISO C) opened, so an unterminated comment reports
	// where it began.
	commentStartLine int
}

// PreprocError is returned by Preprocess on the first unrecoverable lexical
// failure (spec.md §4.1 "Errors"). Unlike the resolver/parser, the
// preprocessor does not attempt multi-error recovery: once splicing and
// tokenization diverge from a clean grammar there is no reliable
// resynchronization point.
type PreprocError struct {
	Kind    PreprocErrorKind
	Message string
	Source  sourcemap.Source
}

func (e *PreprocError) Error() string { return e.Message }

// PreprocErrorKind enumerates spec.md §4.1's error kinds.
type PreprocErrorKind int

const (
	ErrUnterminatedMultiLineComment PreprocErrorKind = iota
	ErrUnterminatedCharacterConstant
	ErrUnterminatedStringLiteral
	ErrUnterminatedHeaderName
	ErrBadEscapeSequence
	ErrBadEscapedCodepoint
	ErrUnsupportedPragma
	ErrCannotConcatTokens
	ErrExpectedEOF
	ErrBadInclude
	ErrErrorDirective
	ErrUniversalCharacterNameNotSupported
	ErrUnrecognizedSymbol
)

// Preprocess turns raw C source bytes into a PreToken stream: line
// splicing, then per-character tokenization with carry-over state for
// unterminated multi-line comments (spec.md §4.1 operations a/b/c).
func Preprocess(file sourcemap.Key, src []byte) ([]ctoken.PreToken, error) {
	spliced, physLine := spliceLines(string(src))
	s := &scanner{
		file:      file,
		input:     spliced,
		physLine:  physLine,
		startLine: 1,
		out:       make([]ctoken.PreToken, 0, len(spliced)/4+8),
	}
	for state := stateFunc(lexGlobal); state != nil; {
		state = state(s)
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.out, nil
}

func (s *scanner) lineAt(pos int) int {
	if pos < 0 {
		pos = 0
	}
	if pos >= len(s.physLine) {
		if len(s.physLine) == 0 {
			return 1
		}
		return s.physLine[len(s.physLine)-1]
	}
	return s.physLine[pos]
}

func (s *scanner) source() sourcemap.Source {
	return sourcemap.Source{Key: s.file, Location: sourcemap.Location{Line: s.lineAt(s.start), Column: 1}}
}

func (s *scanner) fail(kind PreprocErrorKind, format string, args ...any) stateFunc {
	s.err = &PreprocError{Kind: kind, Message: fmt.Sprintf(format, args...), Source: s.source()}
	return nil
}

func (s *scanner) next() rune {
	if s.pos >= len(s.input) {
		s.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(s.input[s.pos:])
	s.width = w
	s.pos += w
	return r
}

func (s *scanner) backup() {
	if s.pos > s.start {
		s.pos -= s.width
	}
}

func (s *scanner) peek() rune {
	r := s.next()
	s.backup()
	return r
}

func (s *scanner) peekAt(offset int) rune {
	save := s.pos
	for i := 0; i < offset; i++ {
		if s.next() == eof {
			s.pos = save
			return eof
		}
	}
	r := s.next()
	s.pos = save
	return r
}

func (s *scanner) ignore() {
	s.start = s.pos
	s.startLine = s.lineAt(s.pos)
}

func (s *scanner) emit(kind ctoken.PreTokenKind) {
	s.emitText(kind, s.input[s.start:s.pos])
}

func (s *scanner) emitText(kind ctoken.PreTokenKind, text string) {
	s.out = append(s.out, ctoken.PreToken{
		Kind: kind,
		Text: text,
		Source: sourcemap.Source{
			Key:      s.file,
			Location: sourcemap.Location{Line: s.startLine, Column: 1},
		},
		Line: s.startLine,
	})
	s.start = s.pos
	s.startLine = s.lineAt(s.pos)
}
