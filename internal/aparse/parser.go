// Package aparse implements a hand-written recursive-descent parser for
// Adept (spec.md §4.4 "Adept Parser"). No goyacc-generated grammar file
// is available to adapt, so this parser's structure instead follows
// sunholo-data-ailang's
// multi-file recursive-descent layout (parser.go/parser_decl.go/
// parser_expr.go/parser_type.go) and speculates with an explicit
// save/restore cursor the way that package's Parser.mark()/reset() do,
// generalized to Adept's token set from internal/alex.
package aparse

import (
	"fmt"

	"adeptc/internal/aast"
	"adeptc/internal/alex"
	"adeptc/internal/sourcemap"
)

// ParseError reports a syntax error with the offending token's source.
type ParseError struct {
	Message string
	Source  sourcemap.Source
}

func (e *ParseError) Error() string { return e.Message }

// Parser holds the token cursor used by every production. Productions
// return (*aast.Node, error); a nil error with nil node only happens at a
// production that legitimately matched nothing (e.g. an optional clause).
type Parser struct {
	toks []alex.Token
	pos  int
}

// New constructs a Parser over a token stream as alex.Lex produces it,
// newline tokens included; the parser skips newlines itself where they are
// insignificant (Adept is newline-sensitive only at statement boundaries,
// mirrored by skipNewlines at those points).
func New(toks []alex.Token) *Parser { return &Parser{toks: toks} }

// Parse parses one whole source file into a Program node (spec.md §4.4
// "Program := FileIdentifier? Decl*").
func Parse(file sourcemap.Key, toks []alex.Token) (*aast.Node, error) {
	p := New(toks)
	src := p.sourceHere()
	var children []*aast.Node

	if fid, ok, err := p.parseFileIdentifier(); err != nil {
		return nil, err
	} else if ok {
		children = append(children, fid)
	}

	for !p.atEOF() {
		p.skipNewlines()
		if p.atEOF() {
			break
		}
		decl, err := p.parseDecl()
		if err != nil {
			return nil, err
		}
		children = append(children, decl)
	}
	_ = file
	return aast.New(aast.Program, src, nil, children...), nil
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
	return p.pos >= len(p.toks) || p.toks[p.pos].Kind == alex.KindEOF
}

func (p *Parser) cur() alex.Token {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return alex.Token{Kind: alex.KindEOF}
}

func (p *Parser) advance() alex.Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) check(k alex.Kind) bool { return p.cur().Kind == k }

func (p *Parser) match(k alex.Kind) (alex.Token, bool) {
	if p.check(k) {
		return p.advance(), true
	}
	return alex.Token{}, false
}

func (p *Parser) expect(k alex.Kind, what string) (alex.Token, error) {
	if t, ok := p.match(k); ok {
		return t, nil
	}
	return alex.Token{}, &ParseError{
		Message: fmt.Sprintf("expected %s, found %q", what, p.cur().Text),
		Source:  p.sourceHere(),
	}
}

func (p *Parser) skipNewlines() {
	for p.check(alex.KindNewline) {
		p.advance()
	}
}

// mark/reset implement the speculative backtracking used by disambiguation
// points (e.g. struct-literal vs block after an if-condition), kept as
// small focused helpers rather than folded into a monolithic parser
// function.
func (p *Parser) mark() int      { return p.pos }
func (p *Parser) reset(m int)    { p.pos = m }

func (p *Parser) parseFileIdentifier() (*aast.Node, bool, error) {
	src := p.sourceHere()
	switch {
	case p.check(alex.KindIdentifier) && p.cur().Text == "local":
		m := p.mark()
		p.advance()
		if !p.check(alex.KindIdentifier) {
			p.reset(m)
			return nil, false, nil
		}
		name := p.advance().Text
		p.skipNewlines()
		return aast.New(aast.FileIdentifierLocal, src, name), true, nil
	case p.check(alex.KindIdentifier) && p.cur().Text == "remote":
		m := p.mark()
		p.advance()
		if !p.check(alex.KindIdentifier) {
			p.reset(m)
			return nil, false, nil
		}
		name := p.advance().Text
		p.skipNewlines()
		return aast.New(aast.FileIdentifierRemote, src, name), true, nil
	default:
		return nil, false, nil
	}
}

// parseDecl dispatches on the leading keyword (spec.md §4.4 "top-level
// declarations: func, struct, alias, global (let/const), trait, impl,
// helper expressions").
func (p *Parser) parseDecl() (*aast.Node, error) {
	switch {
	case p.check(alex.KindFunc):
		return p.parseFuncDecl()
	case p.check(alex.KindStruct):
		return p.parseStructDecl()
	case p.check(alex.KindLet), p.check(alex.KindConst):
		return p.parseGlobalDecl()
	case p.check(alex.KindIdentifier) && p.cur().Text == "alias":
		return p.parseAliasDecl()
	case p.check(alex.KindIdentifier) && p.cur().Text == "trait":
		return p.parseTraitDecl()
	case p.check(alex.KindIdentifier) && p.cur().Text == "impl":
		return p.parseImplDecl()
	case p.check(alex.KindDocComment):
		p.advance()
		return p.parseDecl()
	default:
		return p.parseHelperExprDecl()
	}
}

func (p *Parser) parseFuncDecl() (*aast.Node, error) {
	src := p.sourceHere()
	p.advance() // 'func'
	name, err := p.expect(alex.KindIdentifier, "function name")
	if err != nil {
		return nil, err
	}
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	var ret *aast.Node
	if _, ok := p.match(alex.KindArrow); ok {
		ret, err = p.parseTypeRef()
		if err != nil {
			return nil, err
		}
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	children := []*aast.Node{params}
	if ret != nil {
		children = append(children, ret)
	}
	children = append(children, body)
	return aast.New(aast.FuncDecl, src, name.Text, children...), nil
}

func (p *Parser) parseParamList() (*aast.Node, error) {
	src := p.sourceHere()
	if _, err := p.expect(alex.KindLParen, "'('"); err != nil {
		return nil, err
	}
	var params []*aast.Node
	for !p.check(alex.KindRParen) {
		pSrc := p.sourceHere()
		name, err := p.expect(alex.KindIdentifier, "parameter name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(alex.KindColon, "':'"); err != nil {
			return nil, err
		}
		ty, err := p.parseTypeRef()
		if err != nil {
			return nil, err
		}
		params = append(params, aast.New(aast.Param, pSrc, name.Text, ty))
		if _, ok := p.match(alex.KindComma); !ok {
			break
		}
	}
	if _, err := p.expect(alex.KindRParen, "')'"); err != nil {
		return nil, err
	}
	return aast.New(aast.ParamList, src, nil, params...), nil
}

func (p *Parser) parseTypeRef() (*aast.Node, error) {
	src := p.sourceHere()
	if _, ok := p.match(alex.KindAmp); ok {
		inner, err := p.parseTypeRef()
		if err != nil {
			return nil, err
		}
		return aast.New(aast.TypeRef, src, "*", inner), nil
	}
	if _, ok := p.match(alex.KindStar); ok {
		inner, err := p.parseTypeRef()
		if err != nil {
			return nil, err
		}
		return aast.New(aast.TypeRef, src, "*", inner), nil
	}
	if t, ok := p.match(alex.KindCompoundIdentifier); ok {
		return aast.New(aast.TypeRef, src, t.Text), nil
	}
	t, err := p.expect(alex.KindIdentifier, "type name")
	if err != nil {
		return nil, err
	}
	return aast.New(aast.TypeRef, src, t.Text), nil
}

func (p *Parser) parseStructDecl() (*aast.Node, error) {
	src := p.sourceHere()
	p.advance() // 'struct'
	name, err := p.expect(alex.KindIdentifier, "struct name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(alex.KindLBrace, "'{'"); err != nil {
		return nil, err
	}
	fieldsSrc := p.sourceHere()
	var fields []*aast.Node
	p.skipNewlines()
	for !p.check(alex.KindRBrace) {
		fSrc := p.sourceHere()
		fname, err := p.expect(alex.KindIdentifier, "field name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(alex.KindColon, "':'"); err != nil {
			return nil, err
		}
		ty, err := p.parseTypeRef()
		if err != nil {
			return nil, err
		}
		fields = append(fields, aast.New(aast.Field, fSrc, fname.Text, ty))
		p.skipNewlines()
		if _, ok := p.match(alex.KindComma); ok {
			p.skipNewlines()
		}
	}
	if _, err := p.expect(alex.KindRBrace, "'}'"); err != nil {
		return nil, err
	}
	return aast.New(aast.StructDecl, src, name.Text, aast.New(aast.FieldList, fieldsSrc, nil, fields...)), nil
}

func (p *Parser) parseGlobalDecl() (*aast.Node, error) {
	src := p.sourceHere()
	isConst := p.check(alex.KindConst)
	p.advance()
	name, err := p.expect(alex.KindIdentifier, "global name")
	if err != nil {
		return nil, err
	}
	var ty *aast.Node
	if _, ok := p.match(alex.KindColon); ok {
		ty, err = p.parseTypeRef()
		if err != nil {
			return nil, err
		}
	}
	var init *aast.Node
	if _, ok := p.match(alex.KindAssign); ok {
		init, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	var children []*aast.Node
	if ty != nil {
		children = append(children, ty)
	}
	if init != nil {
		children = append(children, init)
	}
	data := name.Text
	if isConst {
		data = "const " + name.Text
	}
	return aast.New(aast.GlobalDecl, src, data, children...), nil
}

func (p *Parser) parseAliasDecl() (*aast.Node, error) {
	src := p.sourceHere()
	p.advance() // 'alias'
	name, err := p.expect(alex.KindIdentifier, "alias name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(alex.KindAssign, "'='"); err != nil {
		return nil, err
	}
	target, err := p.parseTypeRef()
	if err != nil {
		return nil, err
	}
	return aast.New(aast.AliasDecl, src, name.Text, target), nil
}

// parseTraitDecl and parseImplDecl accept a name and a brace-delimited body
// of func declarations; full trait-bound resolution is out of this core's
// scope (spec.md Non-goals exclude generic trait dispatch codegen), so the
// parse tree here simply preserves structure for a future resolver pass.
func (p *Parser) parseTraitDecl() (*aast.Node, error) {
	src := p.sourceHere()
	p.advance() // 'trait'
	name, err := p.expect(alex.KindIdentifier, "trait name")
	if err != nil {
		return nil, err
	}
	body, err := p.parseDeclBody()
	if err != nil {
		return nil, err
	}
	return aast.New(aast.TraitDecl, src, name.Text, body...), nil
}

func (p *Parser) parseImplDecl() (*aast.Node, error) {
	src := p.sourceHere()
	p.advance() // 'impl'
	name, err := p.expect(alex.KindIdentifier, "impl target name")
	if err != nil {
		return nil, err
	}
	body, err := p.parseDeclBody()
	if err != nil {
		return nil, err
	}
	return aast.New(aast.ImplDecl, src, name.Text, body...), nil
}

func (p *Parser) parseDeclBody() ([]*aast.Node, error) {
	if _, err := p.expect(alex.KindLBrace, "'{'"); err != nil {
		return nil, err
	}
	var out []*aast.Node
	p.skipNewlines()
	for !p.check(alex.KindRBrace) {
		d, err := p.parseFuncDecl()
		if err != nil {
			return nil, err
		}
		out = append(out, d)
		p.skipNewlines()
	}
	if _, err := p.expect(alex.KindRBrace, "'}'"); err != nil {
		return nil, err
	}
	return out, nil
}

// parseHelperExprDecl parses a bare top-level expression declaration
// (spec.md §4.4 "helper expression declarations").
func (p *Parser) parseHelperExprDecl() (*aast.Node, error) {
	src := p.sourceHere()
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return aast.New(aast.HelperExprDecl, src, nil, e), nil
}
