package alex

func lexGlobal(l *lexer) stateFunc {
	for {
		r := l.next()
		switch {
		case r == eof:
			l.emit(KindEOF)
			return nil
		case r == '\n':
			l.emit(KindNewline)
		case isSpace(r):
			l.ignore()
			l.hadSpace = true
		case r == '/' && l.peek() == '/':
			return lexLineComment
		case r == '/' && l.peek() == '*':
			l.next()
			return lexBlockComment
		case isIdentStart(r):
			l.backup()
			return lexWord
		case isDigit(r):
			l.backup()
			return lexNumber
		case r == '"':
			return lexStringBody(KindString, '"')
		case r == '\'':
			return lexStringBody(KindRune, '\'')
		case r == '$':
			return lexPolymorph
		case r == '#':
			l.emit(KindShortGeneric)
		case r == '&':
			return lexAmpOrAddr
		case r == '*':
			return lexStarOrDeref
		case r == '<':
			return lexAngle
		default:
			return lexOperator(r)
		}
	}
}

func lexLineComment(l *lexer) stateFunc {
	// "///" is a doc comment (spec.md §4.3 "doc comments"); plain "//" is
	// discarded entirely.
	// lexGlobal consumed only the first '/', so peekAt(0) is the second
	// '/' and peekAt(1) the possible third.
	isDoc := l.peekAt(1) == '/'
	for {
		r := l.next()
		if r == '\n' || r == eof {
			l.backup()
			if isDoc {
				l.emit(KindDocComment)
			} else {
				l.ignore()
			}
			return lexGlobal
		}
	}
}

func lexBlockComment(l *lexer) stateFunc {
	depth := 1
	for depth > 0 {
		r := l.next()
		switch r {
		case eof:
			return l.fail("unterminated block comment")
		case '/':
			if l.peek() == '*' {
				l.next()
				depth++
			}
		case '*':
			if l.peek() == '/' {
				l.next()
				depth--
			}
		}
	}
	l.ignore()
	return lexGlobal
}

func lexWord(l *lexer) stateFunc {
	for {
		r := l.next()
		if !isIdentCont(r) {
			l.backup()
			break
		}
	}
	word := l.input[l.start:l.pos]

	// c"..."/c'...' modifier prefixes (spec.md §4.3): a bare "c" directly
	// glued to a quote selects the null-terminated-string / C-char literal
	// mode instead of being an identifier.
	if word == "c" {
		switch l.peek() {
		case '"':
			l.next()
			return lexStringBody(KindCString, '"')
		case '\'':
			l.next()
			return lexStringBody(KindCChar, '\'')
		}
	}

	kind, isKw := keywords[word]

	// struct<...>/union<...>/enum<...> accumulate into one compound
	// identifier token when the '<' immediately follows with no space
	// (spec.md §4.3 "compound identifier state").
	if isKw && (kind == KindStruct || kind == KindUnion || kind == KindEnum) && l.peek() == '<' {
		return lexCompoundIdentifier
	}
	if isKw {
		l.emit(kind)
	} else {
		l.emit(KindIdentifier)
	}
	return lexGlobal
}

func lexCompoundIdentifier(l *lexer) stateFunc {
	l.next() // consume '<'.
	depth := 1
	for depth > 0 {
		r := l.next()
		switch r {
		case eof:
			return l.fail("unterminated compound identifier (missing '>')")
		case '<':
			depth++
		case '>':
			depth--
		}
	}
	l.emit(KindCompoundIdentifier)
	return lexGlobal
}

func lexPolymorph(l *lexer) stateFunc {
	for {
		r := l.next()
		if !isIdentCont(r) {
			l.backup()
			break
		}
	}
	if l.pos == l.start+1 {
		return l.fail("expected identifier after '$'")
	}
	l.emit(KindPolymorph)
	return lexGlobal
}

// lexNumber mirrors spec.md §4.3: 0x<hex>, or decimal with optional '.',
// eE/pP exponents, and a trailing sign after the exponent marker.
func lexNumber(l *lexer) stateFunc {
	isFloat := false
	if l.peek() == '0' {
		l.next()
		if l.peek() == 'x' || l.peek() == 'X' {
			l.next()
			for isHexDigit(l.peek()) {
				l.next()
			}
			l.emit(KindInteger)
			return lexGlobal
		}
	}
	for isDigit(l.peek()) {
		l.next()
	}
	if l.peek() == '.' {
		isFloat = true
		l.next()
		for isDigit(l.peek()) {
			l.next()
		}
	}
	if c := l.peek(); c == 'e' || c == 'E' || c == 'p' || c == 'P' {
		isFloat = true
		l.next()
		if c := l.peek(); c == '+' || c == '-' {
			l.next()
		}
		for isDigit(l.peek()) {
			l.next()
		}
	}
	if isFloat {
		l.emit(KindFloat)
	} else {
		l.emit(KindInteger)
	}
	return lexGlobal
}

// lexStringBody scans the four literal modes: "...", c"...", '...', c'...'
// (spec.md §4.3 "String-like literals support modifier prefixes").
func lexStringBody(base Kind, quote rune) stateFunc {
	return func(l *lexer) stateFunc {
		for {
			r := l.next()
			switch r {
			case eof, '\n':
				return l.fail("unterminated literal")
			case quote:
				l.emit(base)
				return lexGlobal
			case '\\':
				// Adept supports a restricted escape set (spec.md §4.3):
				// \n \r \t \0 \" \' \\ .
				switch l.peek() {
				case 'n', 'r', 't', '0', '"', '\'', '\\':
					l.next()
				default:
					return l.fail("bad escape sequence in literal")
				}
			}
		}
	}
}

func lexAmpOrAddr(l *lexer) stateFunc {
	// Logical and (AndAnd) if followed by another '&'.
	if l.peek() == '&' {
		l.next()
		l.emit(KindAndAnd)
		return lexGlobal
	}
	// Unary AddressOf when no space follows; otherwise binary BitAnd
	// (spec.md §4.3).
	if !isSpace(l.peek()) {
		l.emit(KindAddressOf)
	} else {
		l.emit(KindAmp)
	}
	return lexGlobal
}

func lexStarOrDeref(l *lexer) stateFunc {
	if l.peek() == '=' {
		l.next()
		l.emit(KindStarAssign)
		return lexGlobal
	}
	if !isSpace(l.peek()) {
		l.emit(KindDereference)
	} else {
		l.emit(KindStar)
	}
	return lexGlobal
}

// lexAngle implements the OpenAngle/LessThan/LShift disambiguation (spec.md
// §4.3 "< is lexed as OpenAngle generically but as a left-shift/
// shift-assign/compare only when preceded by a space").
func lexAngle(l *lexer) stateFunc {
	precededBySpace := l.hadSpace
	switch {
	case l.peek() == '=':
		l.next()
		if precededBySpace {
			l.emit(KindLessEq)
		} else {
			l.emit(KindOpenAngle) // '<=' inside a generic arg list is exceedingly rare; fall back to OpenAngle text.
		}
	case l.peek() == '<':
		l.next()
		if precededBySpace {
			if l.peek() == '=' {
				l.next()
				l.emit(KindLShiftAssign)
			} else {
				l.emit(KindLShift)
			}
		} else {
			// Two nested generic opens, e.g. "List<List<T>>": emit as two
			// OpenAngle tokens by backing up one rune and re-emitting.
			l.backup()
			l.emit(KindOpenAngle)
		}
	default:
		if precededBySpace {
			l.emit(KindLessThan)
		} else {
			l.emit(KindOpenAngle)
		}
	}
	return lexGlobal
}

func lexOperator(r rune) stateFunc {
	return func(l *lexer) stateFunc {
		switch r {
		case '(':
			l.emit(KindLParen)
		case ')':
			l.emit(KindRParen)
		case '{':
			l.emit(KindLBrace)
		case '}':
			l.emit(KindRBrace)
		case '[':
			l.emit(KindLBracket)
		case ']':
			l.emit(KindRBracket)
		case ',':
			l.emit(KindComma)
		case ';':
			l.emit(KindSemicolon)
		case '?':
			l.emit(KindQuestion)
		case ':':
			if l.peek() == ':' {
				l.next()
				l.emit(KindColonColon)
			} else if l.peek() == '=' {
				l.next()
				l.emit(KindAssign)
			} else {
				l.emit(KindColon)
			}
		case '.':
			if l.peek() == '.' && l.peekAt(1) == '.' {
				l.next()
				l.next()
				l.emit(KindEllipsis)
			} else {
				l.emit(KindDot)
			}
		case '=':
			if l.peek() == '=' {
				l.next()
				l.emit(KindEqEq)
			} else {
				l.emit(KindAssign)
			}
		case '!':
			if l.peek() == '=' {
				l.next()
				l.emit(KindNotEq)
			} else {
				l.emit(KindNot)
			}
		case '+':
			if l.peek() == '=' {
				l.next()
				l.emit(KindPlusAssign)
			} else {
				l.emit(KindPlus)
			}
		case '-':
			switch {
			case l.peek() == '=':
				l.next()
				l.emit(KindMinusAssign)
			case l.peek() == '>':
				l.next()
				l.emit(KindArrow)
			default:
				l.emit(KindMinus)
			}
		case '/':
			if l.peek() == '=' {
				l.next()
				l.emit(KindSlashAssign)
			} else {
				l.emit(KindSlash)
			}
		case '%':
			l.emit(KindPercent)
		case '|':
			if l.peek() == '|' {
				l.next()
				l.emit(KindOrOr)
			} else {
				l.emit(KindPipe)
			}
		case '^':
			l.emit(KindCaret)
		case '>':
			switch {
			case l.peek() == '=':
				l.next()
				l.emit(KindGreaterEq)
			case l.peek() == '>':
				l.next()
				if l.peek() == '=' {
					l.next()
					l.emit(KindRShiftAssign)
				} else {
					l.emit(KindRShift)
				}
			default:
				l.emit(KindGreaterThan)
			}
		default:
			return l.fail("unexpected character %q", string(r))
		}
		return lexGlobal
	}
}

func isSpace(r rune) bool { return r == ' ' || r == '\t' || r == '\r' }
func isDigit(r rune) bool { return r >= '0' && r <= '9' }
func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
func isIdentStart(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_' || r > 0x7F
}
func isIdentCont(r rune) bool { return isIdentStart(r) || isDigit(r) }
