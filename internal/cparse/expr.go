package cparse

import (
	"adeptc/internal/cast"
	"adeptc/internal/ctoken"
)

var binPrec = map[ctoken.Punct]int{
	ctoken.PPipePipe: 1,
	ctoken.PAmpAmp:   2,
	ctoken.PPipe:     3,
	ctoken.PCaret:    4,
	ctoken.PAmp:      5,
	ctoken.PEqEq:     6, ctoken.PNotEq: 6,
	ctoken.PLt: 7, ctoken.PGt: 7, ctoken.PLe: 7, ctoken.PGe: 7,
	ctoken.PLShift: 8, ctoken.PRShift: 8,
	ctoken.PPlus: 9, ctoken.PMinus: 9,
	ctoken.PStar: 10, ctoken.PSlash: 10, ctoken.PPercent: 10,
}

var binOpOf = map[ctoken.Punct]cast.BinOp{
	ctoken.PPipePipe: cast.OpLogicalOr, ctoken.PAmpAmp: cast.OpLogicalAnd,
	ctoken.PPipe: cast.OpBitOr, ctoken.PCaret: cast.OpBitXor, ctoken.PAmp: cast.OpBitAnd,
	ctoken.PEqEq: cast.OpEq, ctoken.PNotEq: cast.OpNotEq,
	ctoken.PLt: cast.OpLt, ctoken.PGt: cast.OpGt, ctoken.PLe: cast.OpLtEq, ctoken.PGe: cast.OpGtEq,
	ctoken.PLShift: cast.OpLShift, ctoken.PRShift: cast.OpRShift,
	ctoken.PPlus: cast.OpAdd, ctoken.PMinus: cast.OpSub,
	ctoken.PStar: cast.OpMul, ctoken.PSlash: cast.OpDiv, ctoken.PPercent: cast.OpMod,
}

var assignPuncts = map[ctoken.Punct]bool{
	ctoken.PAssign: true, ctoken.PStarAssign: true, ctoken.PSlashAssign: true, ctoken.PPercentAssign: true,
	ctoken.PPlusAssign: true, ctoken.PMinusAssign: true, ctoken.PLShiftAssign: true, ctoken.PRShiftAssign: true,
	ctoken.PAmpAssign: true, ctoken.PCaretAssign: true, ctoken.PPipeAssign: true,
}

// parseExpr parses a comma expression (spec.md §4.2 "Expr := AssignExpr
// (',' AssignExpr)*").
func (p *Parser) parseExpr() (*cast.Node, error) {
	e, err := p.parseAssignExpr()
	if err != nil {
		return nil, err
	}
	for p.checkPunct(ctoken.PComma) {
		src := p.sourceHere()
		p.advance()
		rhs, err := p.parseAssignExpr()
		if err != nil {
			return nil, err
		}
		e = cast.New(cast.ExprComma, src, nil, e, rhs)
	}
	return e, nil
}

func (p *Parser) parseAssignExpr() (*cast.Node, error) {
	lhs, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	if p.cur().Kind == ctoken.CTPunctuator && assignPuncts[p.cur().Punct] {
		src := p.sourceHere()
		op := p.advance().Punct
		rhs, err := p.parseAssignExpr()
		if err != nil {
			return nil, err
		}
		return cast.New(cast.ExprAssign, src, op, lhs, rhs), nil
	}
	return lhs, nil
}

func (p *Parser) parseTernary() (*cast.Node, error) {
	cond, err := p.parseBinary(1)
	if err != nil {
		return nil, err
	}
	if p.checkPunct(ctoken.PQuestion) {
		src := p.sourceHere()
		p.advance()
		then, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectPunct(ctoken.PColon, "':'"); err != nil {
			return nil, err
		}
		els, err := p.parseAssignExpr()
		if err != nil {
			return nil, err
		}
		return cast.New(cast.ExprTernary, src, nil, cond, then, els), nil
	}
	return cond, nil
}

func (p *Parser) parseBinary(minPrec int) (*cast.Node, error) {
	lhs, err := p.parseCastExpr()
	if err != nil {
		return nil, err
	}
	for {
		if p.cur().Kind != ctoken.CTPunctuator {
			return lhs, nil
		}
		prec, ok := binPrec[p.cur().Punct]
		if !ok || prec < minPrec {
			return lhs, nil
		}
		opTok := p.advance()
		rhs, err := p.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}
		lhs = cast.New(cast.ExprBinary, opTok.Source, binOpOf[opTok.Punct], lhs, rhs)
	}
}

// parseCastExpr disambiguates "(Type)expr" from "(expr)" by speculatively
// parsing a type name inside the parens and backtracking if that fails or
// isn't followed by a valid unary-expr start (spec.md §4.2 "cast vs
// parenthesized-expression ambiguity").
func (p *Parser) parseCastExpr() (*cast.Node, error) {
	if p.checkPunct(ctoken.PLParen) {
		m := p.mark()
		src := p.sourceHere()
		p.advance()
		if p.isTypeStart() {
			tn, err := p.parseTypeName()
			if err == nil && p.checkPunct(ctoken.PRParen) {
				p.advance()
				operand, err := p.parseCastExpr()
				if err == nil {
					return cast.New(cast.ExprCast, src, nil, tn, operand), nil
				}
			}
		}
		p.reset(m)
	}
	return p.parseUnary()
}

func (p *Parser) parseTypeName() (*cast.Node, error) {
	src := p.sourceHere()
	spec, err := p.parseDeclSpec()
	if err != nil {
		return nil, err
	}
	if p.checkPunct(ctoken.PStar) || p.checkPunct(ctoken.PLBracket) || p.checkPunct(ctoken.PLParen) {
		decl, err := p.parseDeclarator()
		if err != nil {
			return nil, err
		}
		return cast.New(cast.TypeName, src, nil, spec, decl), nil
	}
	return cast.New(cast.TypeName, src, nil, spec), nil
}

func (p *Parser) parseUnary() (*cast.Node, error) {
	src := p.sourceHere()
	if p.cur().Kind == ctoken.CTPunctuator {
		switch p.cur().Punct {
		case ctoken.PAmp:
			p.advance()
			e, err := p.parseCastExpr()
			if err != nil {
				return nil, err
			}
			return cast.New(cast.ExprUnary, src, cast.UnaryAddressOf, e), nil
		case ctoken.PStar:
			p.advance()
			e, err := p.parseCastExpr()
			if err != nil {
				return nil, err
			}
			return cast.New(cast.ExprUnary, src, cast.UnaryDereference, e), nil
		case ctoken.PMinus:
			p.advance()
			e, err := p.parseCastExpr()
			if err != nil {
				return nil, err
			}
			return cast.New(cast.ExprUnary, src, cast.UnaryNegate, e), nil
		case ctoken.PBang:
			p.advance()
			e, err := p.parseCastExpr()
			if err != nil {
				return nil, err
			}
			return cast.New(cast.ExprUnary, src, cast.UnaryNot, e), nil
		case ctoken.PTilde:
			p.advance()
			e, err := p.parseCastExpr()
			if err != nil {
				return nil, err
			}
			return cast.New(cast.ExprUnary, src, cast.UnaryBitComplement, e), nil
		case ctoken.PPlusPlus:
			p.advance()
			e, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			return cast.New(cast.ExprUnary, src, cast.UnaryPreIncr, e), nil
		case ctoken.PMinusMinus:
			p.advance()
			e, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			return cast.New(cast.ExprUnary, src, cast.UnaryPreDecr, e), nil
		}
	}
	if p.checkKeyword(ctoken.KwSizeof) {
		return p.parseSizeof()
	}
	return p.parsePostfix()
}

func (p *Parser) parseSizeof() (*cast.Node, error) {
	src := p.sourceHere()
	p.advance() // sizeof
	if p.checkPunct(ctoken.PLParen) {
		m := p.mark()
		p.advance()
		if p.isTypeStart() {
			tn, err := p.parseTypeName()
			if err == nil && p.checkPunct(ctoken.PRParen) {
				p.advance()
				return cast.New(cast.ExprSizeofType, src, nil, tn), nil
			}
		}
		p.reset(m)
	}
	e, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return cast.New(cast.ExprSizeofExpr, src, nil, e), nil
}

func (p *Parser) parsePostfix() (*cast.Node, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		src := p.sourceHere()
		switch {
		case p.checkPunct(ctoken.PDot):
			p.advance()
			name, _, err := p.expectIdent("member name")
			if err != nil {
				return nil, err
			}
			e = cast.New(cast.ExprMember, src, name, e)
		case p.checkPunct(ctoken.PArrow):
			p.advance()
			name, _, err := p.expectIdent("member name")
			if err != nil {
				return nil, err
			}
			e = cast.New(cast.ExprMember, src, ">"+name, e)
		case p.checkPunct(ctoken.PLParen):
			p.advance()
			var args []*cast.Node
			for !p.checkPunct(ctoken.PRParen) {
				a, err := p.parseAssignExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, a)
				if _, ok := p.matchPunct(ctoken.PComma); !ok {
					break
				}
			}
			if _, err := p.expectPunct(ctoken.PRParen, "')'"); err != nil {
				return nil, err
			}
			e = cast.New(cast.ExprCall, src, nil, append([]*cast.Node{e}, args...)...)
		case p.checkPunct(ctoken.PLBracket):
			p.advance()
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expectPunct(ctoken.PRBracket, "']'"); err != nil {
				return nil, err
			}
			e = cast.New(cast.ExprIndex, src, nil, e, idx)
		case p.checkPunct(ctoken.PPlusPlus):
			p.advance()
			e = cast.New(cast.ExprUnary, src, cast.UnaryPostIncr, e)
		case p.checkPunct(ctoken.PMinusMinus):
			p.advance()
			e = cast.New(cast.ExprUnary, src, cast.UnaryPostDecr, e)
		default:
			return e, nil
		}
	}
}

func (p *Parser) parsePrimary() (*cast.Node, error) {
	src := p.sourceHere()
	t := p.cur()
	switch {
	case t.Kind == ctoken.CTIntegerLiteral:
		p.advance()
		return cast.New(cast.ExprIntLit, src, t.Int.String()), nil
	case t.Kind == ctoken.CTFloatLiteral:
		p.advance()
		return cast.New(cast.ExprFloatLit, src, t.Float), nil
	case t.Kind == ctoken.CTCharLiteral:
		p.advance()
		return cast.New(cast.ExprCharLit, src, t.Chars), nil
	case t.Kind == ctoken.CTStringLiteral:
		p.advance()
		return cast.New(cast.ExprStringLit, src, string(t.Chars)), nil
	case t.Kind == ctoken.CTIdentifier:
		p.advance()
		return cast.New(cast.ExprIdent, src, t.Text), nil
	case t.Kind == ctoken.CTKeyword && t.Keyword == ctoken.KwTrue:
		p.advance()
		return cast.New(cast.ExprIntLit, src, "1"), nil
	case t.Kind == ctoken.CTKeyword && t.Keyword == ctoken.KwFalse:
		p.advance()
		return cast.New(cast.ExprIntLit, src, "0"), nil
	case p.checkPunct(ctoken.PLParen):
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectPunct(ctoken.PRParen, "')'"); err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, &ParseError{Message: "expected expression, found " + t.Text, Source: src}
	}
}
