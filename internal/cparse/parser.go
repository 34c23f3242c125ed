// Package cparse implements a speculative recursive-descent parser for the
// C23 subset described by spec.md §4.2 "C Parser". As with aparse, the
// teacher carries no hand-written C-like grammar (its VSL parser is
// goyacc-generated), so the structure here follows sunholo-data-ailang's
// multi-file parser layout and mna-nenuphar's resolver-friendly tree
// shapes, adapted to classic C recursive-descent techniques: a
// mark/reset speculation cursor resolves the declaration-vs-expression and
// cast-vs-parenthesized-expression ambiguities by trying a parse and
// backtracking on failure, and a threaded typedef-name set resolves the
// "is this identifier a type?" ambiguity the C grammar is famous for.
package cparse

import (
	"fmt"

	"adeptc/internal/cast"
	"adeptc/internal/ctoken"
	"adeptc/internal/intern"
	"adeptc/internal/sourcemap"
)

// ParseError reports a syntax error with the offending token's source.
type ParseError struct {
	Message string
	Source  sourcemap.Source
}

func (e *ParseError) Error() string { return e.Message }

// typeSpecWords are the base-type keywords recognized as starting a
// DeclSpec (spec.md §4.2 "type specifiers"); storage-class and qualifier
// keywords are folded in alongside them since this parser does not
// separately validate combinations (left to a later semantic pass).
var typeSpecWords = map[ctoken.Keyword]bool{
	ctoken.KwVoid: true, ctoken.KwChar: true, ctoken.KwShort: true, ctoken.KwInt: true,
	ctoken.KwLong: true, ctoken.KwFloat: true, ctoken.KwDouble: true, ctoken.KwSigned: true,
}

// typedefTable is the Table every Parser interns typedef names through
// (spec.md §3 "Interning ... Interned identifiers must compare by value
// across arenas" — every Parser shares the same process-wide registry, so
// a typedef name interned while parsing one translation unit compares
// equal to the same spelling interned while parsing another).
var typedefTable = intern.NewTable("c.typedefs")

// Parser holds the CToken cursor plus the typedef-name set threaded
// through declaration parsing. The set is keyed by intern.Symbol; the
// lexer does not intern, so isTypeStart interns each identifier's text (a
// string-keyed registry lookup) before probing the set.
type Parser struct {
	toks     []ctoken.CToken
	pos      int
	typedefs map[intern.Symbol]bool
}

// New returns a Parser with va_list pre-seeded as a known typedef name
// (spec.md §4.2 "Typedef interaction ... va_list is pre-seeded to *void"):
// without this, "va_list ap;" would misparse as an expression statement
// rather than a declaration, since va_list is never spelled as a C23
// keyword.
func New(toks []ctoken.CToken) *Parser {
	p := &Parser{toks: toks, typedefs: map[intern.Symbol]bool{}}
	p.typedefs[typedefTable.Intern("va_list")] = true
	return p
}

// Parse parses one translation unit (spec.md §4.2 "TranslationUnit :=
// ExternalDecl*").
func Parse(toks []ctoken.CToken) (*cast.Node, error) {
	p := New(toks)
	src := p.sourceHere()
	var decls []*cast.Node
	for !p.atEOF() {
		d, err := p.parseExternalDecl()
		if err != nil {
			return nil, err
		}
		decls = append(decls, d)
	}
	return cast.New(cast.TranslationUnit, src, nil, decls...), nil
}

func (p *Parser) sourceHere() sourcemap.Source {
	if p.pos < len(p.toks) {
		return p.toks[p.pos].Source
	}
	if len(p.toks) > 0 {
		return p.toks[len(p.toks)-1].Source
	}
	return sourcemap.Internal()
}

func (p *Parser) atEOF() bool {
	return p.pos >= len(p.toks) || p.toks[p.pos].Kind == ctoken.CTEOF
}

func (p *Parser) cur() ctoken.CToken {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return ctoken.CToken{Kind: ctoken.CTEOF}
}

func (p *Parser) advance() ctoken.CToken {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) checkKeyword(k ctoken.Keyword) bool {
	return p.cur().Kind == ctoken.CTKeyword && p.cur().Keyword == k
}

func (p *Parser) checkPunct(pu ctoken.Punct) bool {
	return p.cur().Kind == ctoken.CTPunctuator && p.cur().Punct == pu
}

func (p *Parser) matchPunct(pu ctoken.Punct) (ctoken.CToken, bool) {
	if p.checkPunct(pu) {
		return p.advance(), true
	}
	return ctoken.CToken{}, false
}

func (p *Parser) expectPunct(pu ctoken.Punct, what string) (ctoken.CToken, error) {
	if t, ok := p.matchPunct(pu); ok {
		return t, nil
	}
	return ctoken.CToken{}, &ParseError{Message: fmt.Sprintf("expected %s", what), Source: p.sourceHere()}
}

func (p *Parser) expectIdent(what string) (string, sourcemap.Source, error) {
	if p.cur().Kind != ctoken.CTIdentifier {
		return "", sourcemap.Source{}, &ParseError{Message: "expected " + what, Source: p.sourceHere()}
	}
	t := p.advance()
	return t.Text, t.Source, nil
}

func (p *Parser) mark() int   { return p.pos }
func (p *Parser) reset(m int) { p.pos = m }

// isTypeStart reports whether the current token can start a DeclSpec:
// either a base-type keyword, a struct/union/enum tag introducer, or a
// name already registered as a typedef (spec.md §4.2 "typedef-threaded
// classification").
func (p *Parser) isTypeStart() bool {
	t := p.cur()
	if t.Kind == ctoken.CTKeyword {
		if typeSpecWords[t.Keyword] {
			return true
		}
		switch t.Keyword {
		case ctoken.KwStruct, ctoken.KwUnion, ctoken.KwEnum,
			ctoken.KwConst, ctoken.KwVolatile, ctoken.KwStatic, ctoken.KwExtern,
			ctoken.KwTypedef, ctoken.KwUnsigned, ctoken.KwBool:
			return true
		}
	}
	if t.Kind == ctoken.CTIdentifier && p.typedefs[typedefTable.Intern(t.Text)] {
		return true
	}
	return false
}
