package aparse

import "adeptc/internal/aast"
import "adeptc/internal/alex"

// parseBlock parses a brace-delimited, newline-separated statement list
// (spec.md §4.4 "Block := '{' Stmt* '}'").
func (p *Parser) parseBlock() (*aast.Node, error) {
	src := p.sourceHere()
	if _, err := p.expect(alex.KindLBrace, "'{'"); err != nil {
		return nil, err
	}
	var stmts []*aast.Node
	p.skipNewlines()
	for !p.check(alex.KindRBrace) {
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
		p.skipNewlines()
	}
	if _, err := p.expect(alex.KindRBrace, "'}'"); err != nil {
		return nil, err
	}
	return aast.New(aast.Block, src, nil, stmts...), nil
}

func (p *Parser) parseStmt() (*aast.Node, error) {
	src := p.sourceHere()
	switch {
	case p.check(alex.KindLet), p.check(alex.KindConst):
		return p.parseLetStmt()
	case p.check(alex.KindReturn):
		p.advance()
		if p.check(alex.KindNewline) || p.check(alex.KindRBrace) {
			return aast.New(aast.StmtReturn, src, nil), nil
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return aast.New(aast.StmtReturn, src, nil, e), nil
	case p.check(alex.KindIf):
		return p.parseIfStmt()
	case p.check(alex.KindWhile):
		return p.parseWhileStmt()
	case p.check(alex.KindBreak):
		p.advance()
		return aast.New(aast.StmtBreak, src, nil), nil
	case p.check(alex.KindContinue):
		p.advance()
		return aast.New(aast.StmtContinue, src, nil), nil
	case p.check(alex.KindGoto):
		p.advance()
		label, err := p.expect(alex.KindIdentifier, "label name")
		if err != nil {
			return nil, err
		}
		return aast.New(aast.StmtGoto, src, label.Text), nil
	case p.check(alex.KindIdentifier) && p.peekColonColonLabel():
		label := p.advance().Text
		p.advance() // '::'
		return aast.New(aast.StmtLabel, src, label), nil
	default:
		return p.parseExprOrAssignStmt()
	}
}

// peekColonColonLabel recognizes "name::" as a label statement without
// consuming anything (spec.md §4.4 "labeled statements use '::'").
func (p *Parser) peekColonColonLabel() bool {
	if p.pos+1 >= len(p.toks) {
		return false
	}
	return p.toks[p.pos+1].Kind == alex.KindColonColon
}

func (p *Parser) parseLetStmt() (*aast.Node, error) {
	src := p.sourceHere()
	isConst := p.check(alex.KindConst)
	p.advance()
	name, err := p.expect(alex.KindIdentifier, "variable name")
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
	return aast.New(aast.StmtLet, src, data, children...), nil
}

func (p *Parser) parseIfStmt() (*aast.Node, error) {
	src := p.sourceHere()
	p.advance() // 'if'
	cond, err := p.parseExprNoStructLit()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	children := []*aast.Node{cond, then}
	p.skipElseLookahead()
	if p.check(alex.KindElse) {
		p.advance()
		if p.check(alex.KindIf) {
			elseIf, err := p.parseIfStmt()
			if err != nil {
				return nil, err
			}
			children = append(children, elseIf)
		} else {
			elseBlock, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			children = append(children, elseBlock)
		}
	}
	return aast.New(aast.StmtIf, src, nil, children...), nil
}

// skipElseLookahead allows "} \n else" by tolerating newlines between the
// then-block and a following else (common brace-style ambiguity).
func (p *Parser) skipElseLookahead() {
	m := p.mark()
	p.skipNewlines()
	if !p.check(alex.KindElse) {
		p.reset(m)
	}
}

func (p *Parser) parseWhileStmt() (*aast.Node, error) {
	src := p.sourceHere()
	p.advance() // 'while'
	cond, err := p.parseExprNoStructLit()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return aast.New(aast.StmtWhile, src, nil, cond, body), nil
}

func (p *Parser) parseExprOrAssignStmt() (*aast.Node, error) {
	src := p.sourceHere()
	lhs, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, ok := p.match(alex.KindAssign); ok {
		rhs, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return aast.New(aast.StmtAssign, src, nil, lhs, rhs), nil
	}
	return aast.New(aast.StmtExpr, src, nil, lhs), nil
}
