package alex

import (
	"fmt"
	"unicode/utf8"

	"adeptc/internal/sourcemap"
)

const eof = 0

// LexError reports a lexical failure in the Adept scanner.
type LexError struct {
	Message string
	Source  sourcemap.Source
}

func (e *LexError) Error() string { return e.Message }

type stateFunc func(*lexer) stateFunc

// lexer is a Rob-Pike state-function scanner (input/start/pos/width/line
// fields driving a chain of stateFunc values), run synchronously over the
// whole input and appending Tokens to a slice rather than streaming them
// over a channel to a concurrent goyacc parser —
// the Adept parser in this core is a hand-written recursive-descent parser
// (spec.md §4.2 "Dynamic overload resolution with speculation" redesign
// note applies equally to the Adept grammar) that consumes a materialized
// token slice with unbounded look-ahead via cursor save/restore.
type lexer struct {
	file  sourcemap.Key
	input string
	start int
	pos   int
	width int
	line  int
	col   int
	// startLine/startCol record where the token currently being scanned
	// began.
	startLine int
	startCol  int

	hadSpace bool // whitespace (not newline) seen since the last emitted token.

	out []Token
	err *LexError
}

// Lex scans the full Adept source in input and returns its Token stream.
func Lex(file sourcemap.Key, input string) ([]Token, error) {
	l := &lexer{file: file, input: input, line: 1, col: 1, startLine: 1, startCol: 1}
	for state := stateFunc(lexGlobal); state != nil; {
		state = state(l)
	}
	if l.err != nil {
		return nil, l.err
	}
	return l.out, nil
}

func (l *lexer) fail(format string, args ...any) stateFunc {
	l.err = &LexError{Message: fmt.Sprintf(format, args...), Source: l.sourceHere()}
	return nil
}

func (l *lexer) sourceHere() sourcemap.Source {
	return sourcemap.Source{Key: l.file, Location: sourcemap.Location{Line: l.startLine, Column: l.startCol}}
}

func (l *lexer) next() rune {
	if l.pos >= len(l.input) {
		l.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.width = w
	l.pos += w
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col += w
	}
	return r
}

func (l *lexer) backup() {
	if l.pos > l.start {
		l.pos -= l.width
		if l.input[l.pos] == '\n' {
			l.line--
		} else {
			l.col -= l.width
		}
	}
}

func (l *lexer) peek() rune {
	save, saveLine, saveCol, saveWidth := l.pos, l.line, l.col, l.width
	r := l.next()
	l.pos, l.line, l.col, l.width = save, saveLine, saveCol, saveWidth
	return r
}

func (l *lexer) peekAt(n int) rune {
	save, saveLine, saveCol, saveWidth := l.pos, l.line, l.col, l.width
	var r rune = eof
	for i := 0; i <= n; i++ {
		r = l.next()
	}
	l.pos, l.line, l.col, l.width = save, saveLine, saveCol, saveWidth
	return r
}

func (l *lexer) ignore() {
	l.start = l.pos
	l.startLine = l.line
	l.startCol = l.col
}

func (l *lexer) emit(kind Kind) {
	l.emitText(kind, l.input[l.start:l.pos])
}

func (l *lexer) emitText(kind Kind, text string) {
	l.out = append(l.out, Token{
		Kind:              kind,
		Text:              text,
		Source:            sourcemap.Source{Key: l.file, Location: sourcemap.Location{Line: l.startLine, Column: l.startCol}},
		HadPrecedingSpace: l.hadSpace,
	})
	l.hadSpace = false
	l.start = l.pos
	l.startLine = l.line
	l.startCol = l.col
}
