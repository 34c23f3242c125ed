package cparse

import (
	"adeptc/internal/cast"
	"adeptc/internal/ctoken"
)

func (p *Parser) parseBlock() (*cast.Node, error) {
	src := p.sourceHere()
	if _, err := p.expectPunct(ctoken.PLBrace, "'{'"); err != nil {
		return nil, err
	}
	var stmts []*cast.Node
	for !p.checkPunct(ctoken.PRBrace) {
		s, err := p.parseBlockItem()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	if _, err := p.expectPunct(ctoken.PRBrace, "'}'"); err != nil {
		return nil, err
	}
	return cast.New(cast.Block, src, nil, stmts...), nil
}

// parseBlockItem parses either a declaration or a statement, disambiguated
// by isTypeStart (spec.md §4.2 "BlockItem := Declaration | Stmt").
func (p *Parser) parseBlockItem() (*cast.Node, error) {
	if p.checkKeyword(ctoken.KwStaticAssert) {
		return p.parseStaticAssert()
	}
	if p.isTypeStart() {
		src := p.sourceHere()
		spec, err := p.parseDeclSpec()
		if err != nil {
			return nil, err
		}
		if p.checkPunct(ctoken.PSemicolon) {
			p.advance()
			return cast.New(cast.StmtDecl, src, nil, cast.New(cast.Declaration, src, spec)), nil
		}
		decl, err := p.parseDeclarator()
		if err != nil {
			return nil, err
		}
		if isTypedef, _ := spec.Data.(declSpecData); isTypedef.Typedef {
			p.typedefs[typedefTable.Intern(cast.DeclaratorIdentifier(decl))] = true
		}
		declNode, err := p.finishDeclaration(src, spec, decl)
		if err != nil {
			return nil, err
		}
		return cast.New(cast.StmtDecl, src, nil, declNode), nil
	}
	return p.parseStmt()
}

func (p *Parser) parseStmt() (*cast.Node, error) {
	src := p.sourceHere()
	switch {
	case p.checkPunct(ctoken.PLBrace):
		return p.parseBlock()
	case p.checkKeyword(ctoken.KwReturn):
		p.advance()
		if p.checkPunct(ctoken.PSemicolon) {
			p.advance()
			return cast.New(cast.StmtReturn, src, nil), nil
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectPunct(ctoken.PSemicolon, "';'"); err != nil {
			return nil, err
		}
		return cast.New(cast.StmtReturn, src, nil, e), nil
	case p.checkKeyword(ctoken.KwIf):
		return p.parseIfStmt()
	case p.checkKeyword(ctoken.KwWhile):
		return p.parseWhileStmt()
	case p.checkKeyword(ctoken.KwFor):
		return p.parseForStmt()
	case p.checkKeyword(ctoken.KwBreak):
		p.advance()
		_, err := p.expectPunct(ctoken.PSemicolon, "';'")
		return cast.New(cast.StmtBreak, src, nil), err
	case p.checkKeyword(ctoken.KwContinue):
		p.advance()
		_, err := p.expectPunct(ctoken.PSemicolon, "';'")
		return cast.New(cast.StmtContinue, src, nil), err
	case p.checkKeyword(ctoken.KwGoto):
		p.advance()
		label, _, err := p.expectIdent("label name")
		if err != nil {
			return nil, err
		}
		_, err = p.expectPunct(ctoken.PSemicolon, "';'")
		return cast.New(cast.StmtGoto, src, label), err
	case p.checkKeyword(ctoken.KwSwitch):
		return p.parseSwitchStmt()
	case p.checkKeyword(ctoken.KwCase):
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectPunct(ctoken.PColon, "':'"); err != nil {
			return nil, err
		}
		return cast.New(cast.StmtCase, src, nil, e), nil
	case p.checkKeyword(ctoken.KwDefault):
		p.advance()
		if _, err := p.expectPunct(ctoken.PColon, "':'"); err != nil {
			return nil, err
		}
		return cast.New(cast.StmtDefault, src, nil), nil
	case p.peekLabel():
		label, _, _ := p.expectIdent("label")
		p.advance() // ':'
		return cast.New(cast.StmtLabel, src, label), nil
	case p.checkPunct(ctoken.PSemicolon):
		p.advance()
		return cast.New(cast.StmtExpr, src, nil), nil
	default:
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectPunct(ctoken.PSemicolon, "';'"); err != nil {
			return nil, err
		}
		return cast.New(cast.StmtExpr, src, nil, e), nil
	}
}

func (p *Parser) peekLabel() bool {
	if p.cur().Kind != ctoken.CTIdentifier || p.pos+1 >= len(p.toks) {
		return false
	}
	next := p.toks[p.pos+1]
	return next.Kind == ctoken.CTPunctuator && next.Punct == ctoken.PColon
}

func (p *Parser) parseIfStmt() (*cast.Node, error) {
	src := p.sourceHere()
	p.advance() // if
	if _, err := p.expectPunct(ctoken.PLParen, "'('"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunct(ctoken.PRParen, "')'"); err != nil {
		return nil, err
	}
	then, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	children := []*cast.Node{cond, then}
	if p.checkKeyword(ctoken.KwElse) {
		p.advance()
		elseStmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		children = append(children, elseStmt)
	}
	return cast.New(cast.StmtIf, src, nil, children...), nil
}

func (p *Parser) parseWhileStmt() (*cast.Node, error) {
	src := p.sourceHere()
	p.advance() // while
	if _, err := p.expectPunct(ctoken.PLParen, "'('"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunct(ctoken.PRParen, "')'"); err != nil {
		return nil, err
	}
	body, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	return cast.New(cast.StmtWhile, src, nil, cond, body), nil
}

// parseForStmt always threads three child slots (init, cond, post), any of
// which may be an empty StmtExpr/no node, keeping the CFG flattener's
// for-loop lowering uniform (spec.md §4.5 "for desugars to while + init +
// post").
func (p *Parser) parseForStmt() (*cast.Node, error) {
	src := p.sourceHere()
	p.advance() // for
	if _, err := p.expectPunct(ctoken.PLParen, "'('"); err != nil {
		return nil, err
	}
	var init *cast.Node
	var err error
	if p.isTypeStart() {
		init, err = p.parseBlockItem()
	} else if !p.checkPunct(ctoken.PSemicolon) {
		var e *cast.Node
		e, err = p.parseExpr()
		if err == nil {
			_, err = p.expectPunct(ctoken.PSemicolon, "';'")
			init = cast.New(cast.StmtExpr, src, nil, e)
		}
	} else {
		p.advance()
		init = cast.New(cast.StmtExpr, src, nil)
	}
	if err != nil {
		return nil, err
	}
	var cond *cast.Node
	if !p.checkPunct(ctoken.PSemicolon) {
		cond, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expectPunct(ctoken.PSemicolon, "';'"); err != nil {
		return nil, err
	}
	var post *cast.Node
	if !p.checkPunct(ctoken.PRParen) {
		post, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expectPunct(ctoken.PRParen, "')'"); err != nil {
		return nil, err
	}
	body, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	children := []*cast.Node{init, cond, post, body}
	return cast.New(cast.StmtFor, src, nil, children...), nil
}

func (p *Parser) parseSwitchStmt() (*cast.Node, error) {
	src := p.sourceHere()
	p.advance() // switch
	if _, err := p.expectPunct(ctoken.PLParen, "'('"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunct(ctoken.PRParen, "')'"); err != nil {
		return nil, err
	}
	body, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	return cast.New(cast.StmtSwitch, src, nil, cond, body), nil
}
