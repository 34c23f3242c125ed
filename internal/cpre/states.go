package cpre

import (
	"adeptc/internal/ctoken"
	"adeptc/internal/sourcemap"
)

// lexGlobal is the Idle state: the default dispatcher (spec.md §4.1 "State
// machine (lexer)").
func lexGlobal(s *scanner) stateFunc {
	for {
		r := s.next()
		switch {
		case r == eof:
			s.ignore()
			return nil
		case r == '\n':
			s.ignore()
		case isSpace(r):
			s.ignore()
		case r == '/' && s.peek() == '/':
			return lexLineComment
		case r == '/' && s.peek() == '*':
			s.next()
			s.commentStartLine = s.startLine
			return lexMultiLineComment
		case r == '#' && s.startOfLine():
			return lexDirective
		case isIdentStart(r):
			s.backup()
			return lexWord
		case isDigit(r) || (r == '.' && isDigit(s.peek())):
			s.backup()
			return lexNumber
		case r == '"':
			return lexStringState(ctoken.EncNone)
		case r == '\'':
			return lexCharState(ctoken.EncNone)
		default:
			s.backup()
			if p, n, ok := ctoken.MatchPunct(s.input[s.pos:]); ok {
				for i := 0; i < n; i++ {
					s.next()
				}
				_ = p
				s.emit(ctoken.PTPunctuator)
				continue
			}
			s.next()
			return s.fail(ErrUnrecognizedSymbol, "unrecognized symbol %q", string(r))
		}
	}
}

// startOfLine reports whether everything scanned since the last emitted
// token on the current physical line was whitespace, i.e. '#' opens a
// preprocessing directive line.
func (s *scanner) startOfLine() bool {
	for i := s.start; i < s.pos-s.width; i++ {
		if s.input[i] != ' ' && s.input[i] != '\t' {
			return false
		}
	}
	return true
}

func lexLineComment(s *scanner) stateFunc {
	for {
		r := s.next()
		if r == '\n' || r == eof {
			s.ignore()
			return lexGlobal
		}
	}
}

func lexMultiLineComment(s *scanner) stateFunc {
	for {
		r := s.next()
		switch r {
		case eof:
			return s.fail(ErrUnterminatedMultiLineComment, "unterminated /* comment (opened at line %d)", s.commentStartLine)
		case '*':
			if s.peek() == '/' {
				s.next()
				s.ignore()
				return lexGlobal
			}
		}
	}
}

// lexWord scans an identifier, and additionally recognizes the string/char
// encoding prefixes u8/u/U/L when immediately followed by a quote (spec.md
// §4.1 "char/string constants with encoding prefixes").
func lexWord(s *scanner) stateFunc {
	for {
		r := s.next()
		if !isIdentCont(r) {
			s.backup()
			break
		}
	}
	word := s.input[s.start:s.pos]
	if enc, ok := encodingPrefix(word); ok {
		switch s.peek() {
		case '"':
			s.next()
			return lexStringState(enc)
		case '\'':
			s.next()
			return lexCharState(enc)
		}
	}
	s.emit(ctoken.PTIdentifier)
	return lexGlobal
}

func encodingPrefix(word string) (ctoken.Encoding, bool) {
	switch word {
	case "u8":
		return ctoken.EncU8, true
	case "u":
		return ctoken.EncU, true
	case "U":
		return ctoken.EncBigU, true
	case "L":
		return ctoken.EncWide, true
	default:
		return ctoken.EncNone, false
	}
}

// lexStringState scans a string literal body up to the closing quote,
// decoding escape sequences as it goes (spec.md §4.1 escapes).
func lexStringState(enc ctoken.Encoding) stateFunc {
	return func(s *scanner) stateFunc {
		var chars []rune
		for {
			r := s.next()
			switch r {
			case eof, '\n':
				return s.fail(ErrUnterminatedStringLiteral, "unterminated string literal")
			case '"':
				s.emitLiteral(ctoken.PTStringLiteral, enc, chars)
				return lexGlobal
			case '\\':
				dr, n, err := ctoken.DecodeEscape(s.input[s.pos:])
				if err != nil {
					return s.failEscape(err)
				}
				for i := 0; i < n; i++ {
					s.next()
				}
				chars = append(chars, dr)
			default:
				chars = append(chars, r)
			}
		}
	}
}

// lexCharState scans a character constant body up to the closing quote.
func lexCharState(enc ctoken.Encoding) stateFunc {
	return func(s *scanner) stateFunc {
		var chars []rune
		for {
			r := s.next()
			switch r {
			case eof, '\n':
				return s.fail(ErrUnterminatedCharacterConstant, "unterminated character constant")
			case '\'':
				s.emitLiteral(ctoken.PTCharacterConstant, enc, chars)
				return lexGlobal
			case '\\':
				dr, n, err := ctoken.DecodeEscape(s.input[s.pos:])
				if err != nil {
					return s.failEscape(err)
				}
				for i := 0; i < n; i++ {
					s.next()
				}
				chars = append(chars, dr)
			default:
				chars = append(chars, r)
			}
		}
	}
}

func (s *scanner) failEscape(err error) stateFunc {
	if ee, ok := err.(*ctoken.EscapeError); ok && ee.BadCodepoint {
		return s.fail(ErrBadEscapedCodepoint, "%s", ee.Msg)
	}
	return s.fail(ErrBadEscapeSequence, "%s", err.Error())
}

func (s *scanner) emitLiteral(kind ctoken.PreTokenKind, enc ctoken.Encoding, chars []rune) {
	s.out = append(s.out, ctoken.PreToken{
		Kind:     kind,
		Text:     s.input[s.start:s.pos],
		Encoding: enc,
		Chars:    chars,
		Source:   sourcemap.Source{Key: s.file, Location: sourcemap.Location{Line: s.startLine, Column: 1}},
		Line:     s.startLine,
	})
	s.start = s.pos
	s.startLine = s.lineAt(s.pos)
}

// lexDirective consumes a preprocessing directive line as a sequence of
// Other/Identifier/Number/String tokens, without expanding macros (macro
// expansion is explicitly out of scope, spec.md §1). #include's header
// name is tokenized specially so <...> isn't mistaken for relational
// operators.
func lexDirective(s *scanner) stateFunc {
	s.emit(ctoken.PTOther) // emit the '#' itself as an Other pp-token.
	for {
		r := s.next()
		switch {
		case r == '\n' || r == eof:
			s.backup()
			return lexGlobal
		case isSpace(r):
			s.ignore()
		case isIdentStart(r):
			s.backup()
			word := scanWord(s)
			if word == "include" && (s.peek() == '<' || s.peek() == '"') {
				if s.peek() == '<' {
					s.next()
					return lexHeaderNameAngled
				}
			}
		case r == '"':
			return lexStringState(ctoken.EncNone)
		case r == '\'':
			return lexCharState(ctoken.EncNone)
		default:
			s.backup()
			if p, n, ok := ctoken.MatchPunct(s.input[s.pos:]); ok {
				for i := 0; i < n; i++ {
					s.next()
				}
				_ = p
				s.emit(ctoken.PTPunctuator)
				continue
			}
			s.next()
			s.emit(ctoken.PTOther)
		}
	}
}

// scanWord consumes and emits an identifier, returning its text.
func scanWord(s *scanner) string {
	for {
		r := s.next()
		if !isIdentCont(r) {
			s.backup()
			break
		}
	}
	word := s.input[s.start:s.pos]
	s.emit(ctoken.PTIdentifier)
	return word
}

func lexHeaderNameAngled(s *scanner) stateFunc {
	for {
		r := s.next()
		switch r {
		case '\n', eof:
			return s.fail(ErrUnterminatedHeaderName, "unterminated header name")
		case '>':
			s.emit(ctoken.PTHeaderName)
			return lexGlobal
		}
	}
}

func lexNumber(s *scanner) stateFunc {
	for {
		r := s.next()
		switch {
		case (r == 'e' || r == 'E' || r == 'p' || r == 'P') && (s.peek() == '+' || s.peek() == '-'):
			s.next()
		case isDigit(r) || isIdentCont(r) || r == '\'':
			continue
		case r == '.':
			continue
		default:
			s.backup()
			s.emit(ctoken.PTNumber)
			return lexGlobal
		}
	}
}

func isSpace(r rune) bool { return r == ' ' || r == '\t' || r == '\f' || r == '\r' || r == '\v' }
func isDigit(r rune) bool { return r >= '0' && r <= '9' }
func isIdentStart(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_' || r == '$' || r > 0x7F
}
func isIdentCont(r rune) bool { return isIdentStart(r) || isDigit(r) }
