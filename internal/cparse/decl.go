package cparse

import (
	"adeptc/internal/cast"
	"adeptc/internal/ctoken"
	"adeptc/internal/sourcemap"
)

// typedefTable and the Parser.typedefs field it interns into are declared
// in parser.go; this file and stmt.go only populate and query it.

// parseExternalDecl parses one top-level declaration or function
// definition (spec.md §4.2 "ExternalDecl := FuncDef | Declaration").
func (p *Parser) parseExternalDecl() (*cast.Node, error) {
	if p.checkKeyword(ctoken.KwStaticAssert) {
		return p.parseStaticAssert()
	}
	src := p.sourceHere()
	spec, err := p.parseDeclSpec()
	if err != nil {
		return nil, err
	}
	if p.checkPunct(ctoken.PSemicolon) {
		p.advance()
		return cast.New(cast.Declaration, src, spec), nil
	}
	decl, err := p.parseDeclarator()
	if err != nil {
		return nil, err
	}
	if isTypedef, _ := spec.Data.(declSpecData); isTypedef.Typedef {
		p.typedefs[typedefTable.Intern(cast.DeclaratorIdentifier(decl))] = true
	}
	if p.checkPunct(ctoken.PLBrace) {
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return cast.New(cast.FuncDef, src, nil, spec, decl, body), nil
	}
	return p.finishDeclaration(src, spec, decl)
}

// declSpecData carries the decoded DeclSpec alongside its printable text,
// so isTypeStart-driven code paths don't need to re-tokenize Data.
type declSpecData struct {
	Text    string
	Typedef bool
}

// parseDeclSpec consumes a maximal run of type-specifier/qualifier/
// storage-class keywords or a single typedef-name (spec.md §4.2
// "DeclSpec"). It does not validate legal combinations; a later semantic
// pass is expected to reject e.g. "int char".
func (p *Parser) parseDeclSpec() (*cast.Node, error) {
	src := p.sourceHere()
	var words []string
	isTypedef := false
	var tagChild *cast.Node

	for {
		t := p.cur()
		if t.Kind == ctoken.CTKeyword && (typeSpecWords[t.Keyword] || isQualifierOrStorage(t.Keyword)) {
			if t.Keyword == ctoken.KwTypedef {
				isTypedef = true
			}
			words = append(words, t.Text)
			p.advance()
			continue
		}
		if t.Kind == ctoken.CTKeyword && (t.Keyword == ctoken.KwStruct || t.Keyword == ctoken.KwUnion || t.Keyword == ctoken.KwEnum) {
			tag, err := p.parseStructUnionEnumSpec()
			if err != nil {
				return nil, err
			}
			tagChild = tag
			words = append(words, t.Text)
			continue
		}
		if t.Kind == ctoken.CTIdentifier && p.typedefs[typedefTable.Intern(t.Text)] && len(words) == 0 {
			words = append(words, t.Text)
			p.advance()
			continue
		}
		break
	}
	var children []*cast.Node
	if tagChild != nil {
		children = append(children, tagChild)
	}
	text := ""
	for i, w := range words {
		if i > 0 {
			text += " "
		}
		text += w
	}
	return cast.New(cast.DeclSpec, src, declSpecData{Text: text, Typedef: isTypedef}, children...), nil
}

func isQualifierOrStorage(k ctoken.Keyword) bool {
	switch k {
	case ctoken.KwConst, ctoken.KwVolatile, ctoken.KwStatic, ctoken.KwExtern,
		ctoken.KwTypedef, ctoken.KwUnsigned, ctoken.KwBool, ctoken.KwInline,
		ctoken.KwRegister, ctoken.KwRestrict, ctoken.KwAuto, ctoken.KwAtomic,
		ctoken.KwThreadLocal, ctoken.KwConstexpr:
		return true
	}
	return false
}

// parseStructUnionEnumSpec parses "struct Tag { ... }" / "struct Tag" /
// "enum Tag { ... }" into a tag node; field lists are recorded as further
// Declarations for a later resolver pass to interpret, rather than fully
// modeled here (spec.md Non-goals exclude bit-field layout from this
// core's scope).
func (p *Parser) parseStructUnionEnumSpec() (*cast.Node, error) {
	src := p.sourceHere()
	kw := p.advance().Keyword
	nodeType := cast.StructOrUnionSpec
	if kw == ctoken.KwEnum {
		nodeType = cast.EnumSpec
	}
	var tag string
	if p.cur().Kind == ctoken.CTIdentifier {
		tag = p.advance().Text
	}
	var members []*cast.Node
	if p.checkPunct(ctoken.PLBrace) {
		p.advance()
		for !p.checkPunct(ctoken.PRBrace) {
			spec, err := p.parseDeclSpec()
			if err != nil {
				return nil, err
			}
			decl, err := p.parseDeclarator()
			if err != nil {
				return nil, err
			}
			if _, err := p.expectPunct(ctoken.PSemicolon, "';'"); err != nil {
				return nil, err
			}
			members = append(members, cast.New(cast.Declaration, src, nil, spec, decl))
		}
		if _, err := p.expectPunct(ctoken.PRBrace, "'}'"); err != nil {
			return nil, err
		}
	}
	return cast.New(nodeType, src, tag, members...), nil
}

// parseDeclarator implements the classic inside-out declarator grammar:
// an optional run of '*' (with qualifiers ignored) wraps a direct
// declarator, which may itself be parenthesized, array-suffixed, or
// function-suffixed (spec.md §4.2 "declarator algebra").
func (p *Parser) parseDeclarator() (*cast.Node, error) {
	src := p.sourceHere()
	if p.checkPunct(ctoken.PStar) {
		p.advance()
		for p.cur().Kind == ctoken.CTKeyword && (p.cur().Keyword == ctoken.KwConst || p.cur().Keyword == ctoken.KwVolatile || p.cur().Keyword == ctoken.KwRestrict) {
			p.advance()
		}
		inner, err := p.parseDeclarator()
		if err != nil {
			return nil, err
		}
		return cast.New(cast.DeclaratorPointer, src, nil, inner), nil
	}
	return p.parseDirectDeclarator()
}

func (p *Parser) parseDirectDeclarator() (*cast.Node, error) {
	src := p.sourceHere()
	var base *cast.Node
	switch {
	case p.cur().Kind == ctoken.CTIdentifier:
		name := p.advance().Text
		base = cast.New(cast.DeclaratorName, src, name)
	case p.checkPunct(ctoken.PLParen):
		p.advance()
		inner, err := p.parseDeclarator()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectPunct(ctoken.PRParen, "')'"); err != nil {
			return nil, err
		}
		base = inner
	default:
		base = cast.New(cast.DeclaratorName, src, "")
	}
	for {
		switch {
		case p.checkPunct(ctoken.PLBracket):
			p.advance()
			var sizeExpr *cast.Node
			hasSize := false
			if !p.checkPunct(ctoken.PRBracket) {
				e, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				sizeExpr = e
				hasSize = true
			}
			if _, err := p.expectPunct(ctoken.PRBracket, "']'"); err != nil {
				return nil, err
			}
			if hasSize {
				base = cast.New(cast.DeclaratorArray, src, true, base, sizeExpr)
			} else {
				base = cast.New(cast.DeclaratorArray, src, false, base)
			}
		case p.checkPunct(ctoken.PLParen):
			p.advance()
			params, err := p.parseParamList()
			if err != nil {
				return nil, err
			}
			if _, err := p.expectPunct(ctoken.PRParen, "')'"); err != nil {
				return nil, err
			}
			base = cast.New(cast.DeclaratorFunction, src, nil, base, params)
		default:
			return base, nil
		}
	}
}

func (p *Parser) parseParamList() (*cast.Node, error) {
	src := p.sourceHere()
	var params []*cast.Node
	for !p.checkPunct(ctoken.PRParen) {
		if p.checkPunct(ctoken.PEllipsis) {
			p.advance()
			params = append(params, cast.New(cast.Param, src, "..."))
			break
		}
		pSrc := p.sourceHere()
		spec, err := p.parseDeclSpec()
		if err != nil {
			return nil, err
		}
		var declChild *cast.Node
		if p.cur().Kind == ctoken.CTIdentifier || p.checkPunct(ctoken.PStar) || p.checkPunct(ctoken.PLParen) {
			declChild, err = p.parseDeclarator()
			if err != nil {
				return nil, err
			}
		}
		spText, _ := spec.Data.(declSpecData)
		children := []*cast.Node{spec}
		if declChild != nil {
			children = append(children, declChild)
		}
		params = append(params, cast.New(cast.Param, pSrc, spText.Text, children...))
		if _, ok := p.matchPunct(ctoken.PComma); !ok {
			break
		}
	}
	return cast.New(cast.ParamList, src, nil, params...), nil
}

// finishDeclaration parses the remaining init-declarator-list after the
// first declarator has already been consumed (spec.md §4.2 "Declaration
// := DeclSpec InitDeclaratorList ';'").
func (p *Parser) finishDeclaration(src sourcemap.Source, spec, firstDecl *cast.Node) (*cast.Node, error) {
	initDecls := []*cast.Node{p.finishInitDeclarator(firstDecl)}
	for {
		if _, ok := p.matchPunct(ctoken.PAssign); ok {
			init, err := p.parseAssignExpr()
			if err != nil {
				return nil, err
			}
			initDecls[len(initDecls)-1] = cast.New(cast.InitDeclarator, src, nil, firstDecl, init)
		}
		if _, ok := p.matchPunct(ctoken.PComma); !ok {
			break
		}
		decl, err := p.parseDeclarator()
		if err != nil {
			return nil, err
		}
		if isTypedef, _ := spec.Data.(declSpecData); isTypedef.Typedef {
			p.typedefs[typedefTable.Intern(cast.DeclaratorIdentifier(decl))] = true
		}
		if _, ok := p.matchPunct(ctoken.PAssign); ok {
			init, err := p.parseAssignExpr()
			if err != nil {
				return nil, err
			}
			initDecls = append(initDecls, cast.New(cast.InitDeclarator, src, nil, decl, init))
		} else {
			initDecls = append(initDecls, p.finishInitDeclarator(decl))
		}
	}
	if _, err := p.expectPunct(ctoken.PSemicolon, "';'"); err != nil {
		return nil, err
	}
	return cast.New(cast.Declaration, src, nil, append([]*cast.Node{spec}, initDecls...)...), nil
}

func (p *Parser) finishInitDeclarator(decl *cast.Node) *cast.Node {
	return cast.New(cast.InitDeclarator, decl.Source, nil, decl)
}

func (p *Parser) parseStaticAssert() (*cast.Node, error) {
	src := p.sourceHere()
	p.advance() // static_assert
	if _, err := p.expectPunct(ctoken.PLParen, "'('"); err != nil {
		return nil, err
	}
	cond, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	var children = []*cast.Node{cond}
	if _, ok := p.matchPunct(ctoken.PComma); ok {
		if p.cur().Kind == ctoken.CTStringLiteral {
			msg := p.advance().Text
			children = append(children, cast.New(cast.ExprStringLit, src, msg))
		}
	}
	if _, err := p.expectPunct(ctoken.PRParen, "')'"); err != nil {
		return nil, err
	}
	if _, err := p.expectPunct(ctoken.PSemicolon, "';'"); err != nil {
		return nil, err
	}
	return cast.New(cast.StaticAssert, src, nil, children...), nil
}
