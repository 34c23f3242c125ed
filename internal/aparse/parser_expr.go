package aparse

import (
	"adeptc/internal/aast"
	"adeptc/internal/alex"
	"adeptc/internal/sourcemap"
)

// precedence table, low to high (spec.md §4.4 "Expr precedence climbing").
var binPrec = map[alex.Kind]int{
	alex.KindOrOr:     1,
	alex.KindAndAnd:   2,
	alex.KindEqEq:     3,
	alex.KindNotEq:    3,
	alex.KindLessThan: 4, alex.KindGreaterThan: 4, alex.KindLessEq: 4, alex.KindGreaterEq: 4,
	alex.KindPipe: 5, alex.KindCaret: 5,
	alex.KindAmp: 6,
	alex.KindLShift: 7, alex.KindRShift: 7,
	alex.KindPlus: 8, alex.KindMinus: 8,
	alex.KindStar: 9, alex.KindSlash: 9, alex.KindPercent: 9,
}

var binOpOf = map[alex.Kind]aast.BinOp{
	alex.KindOrOr: aast.OpLogicalOr, alex.KindAndAnd: aast.OpLogicalAnd,
	alex.KindEqEq: aast.OpEq, alex.KindNotEq: aast.OpNotEq,
	alex.KindLessThan: aast.OpLt, alex.KindGreaterThan: aast.OpGt,
	alex.KindLessEq: aast.OpLtEq, alex.KindGreaterEq: aast.OpGtEq,
	alex.KindPipe: aast.OpBitOr, alex.KindCaret: aast.OpBitXor, alex.KindAmp: aast.OpBitAnd,
	alex.KindLShift: aast.OpLShift, alex.KindRShift: aast.OpRShift,
	alex.KindPlus: aast.OpAdd, alex.KindMinus: aast.OpSub,
	alex.KindStar: aast.OpMul, alex.KindSlash: aast.OpDiv, alex.KindPercent: aast.OpMod,
}

// parseExpr parses a full expression, including struct literals.
func (p *Parser) parseExpr() (*aast.Node, error) { return p.parseBinary(1, true) }

// parseExprNoStructLit disables bare `Name { ... }` struct-literal parsing
// at the top level, so `if cond { ... }` parses cond's trailing '{' as the
// block opener rather than a struct literal (a classic C-family ambiguity;
// resolved the same way Go itself resolves it).
func (p *Parser) parseExprNoStructLit() (*aast.Node, error) { return p.parseBinary(1, false) }

func (p *Parser) parseBinary(minPrec int, allowStructLit bool) (*aast.Node, error) {
	lhs, err := p.parseUnaryChain(allowStructLit)
	if err != nil {
		return nil, err
	}
	for {
		prec, ok := binPrec[p.cur().Kind]
		if !ok || prec < minPrec {
			return lhs, nil
		}
		opTok := p.advance()
		rhs, err := p.parseBinary(prec+1, allowStructLit)
		if err != nil {
			return nil, err
		}
		lhs = aast.New(aast.ExprBinary, opTok.Source, binOpOf[opTok.Kind], lhs, rhs)
	}
}

func (p *Parser) parseUnaryChain(allowStructLit bool) (*aast.Node, error) {
	src := p.sourceHere()
	switch {
	case p.check(alex.KindMinus):
		p.advance()
		e, err := p.parseUnaryChain(allowStructLit)
		if err != nil {
			return nil, err
		}
		return aast.New(aast.ExprUnary, src, aast.UnaryNegate, e), nil
	case p.check(alex.KindNot):
		p.advance()
		e, err := p.parseUnaryChain(allowStructLit)
		if err != nil {
			return nil, err
		}
		return aast.New(aast.ExprUnary, src, aast.UnaryNot, e), nil
	case p.check(alex.KindCaret):
		p.advance()
		e, err := p.parseUnaryChain(allowStructLit)
		if err != nil {
			return nil, err
		}
		return aast.New(aast.ExprUnary, src, aast.UnaryBitComplement, e), nil
	case p.check(alex.KindAddressOf):
		p.advance()
		e, err := p.parseUnaryChain(allowStructLit)
		if err != nil {
			return nil, err
		}
		return aast.New(aast.ExprUnary, src, aast.UnaryAddressOf, e), nil
	case p.check(alex.KindDereference):
		p.advance()
		e, err := p.parseUnaryChain(allowStructLit)
		if err != nil {
			return nil, err
		}
		return aast.New(aast.ExprUnary, src, aast.UnaryDereference, e), nil
	default:
		return p.parsePostfix(allowStructLit)
	}
}

func (p *Parser) parsePostfix(allowStructLit bool) (*aast.Node, error) {
	e, err := p.parsePrimary(allowStructLit)
	if err != nil {
		return nil, err
	}
	for {
		src := p.sourceHere()
		switch {
		case p.check(alex.KindDot):
			p.advance()
			name, err := p.expect(alex.KindIdentifier, "member name")
			if err != nil {
				return nil, err
			}
			e = aast.New(aast.ExprMember, src, name.Text, e)
		case p.check(alex.KindLParen):
			p.advance()
			var args []*aast.Node
			for !p.check(alex.KindRParen) {
				a, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, a)
				if _, ok := p.match(alex.KindComma); !ok {
					break
				}
			}
			if _, err := p.expect(alex.KindRParen, "')'"); err != nil {
				return nil, err
			}
			e = aast.New(aast.ExprCall, src, nil, append([]*aast.Node{e}, args...)...)
		case p.check(alex.KindLBracket):
			p.advance()
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(alex.KindRBracket, "']'"); err != nil {
				return nil, err
			}
			e = aast.New(aast.ExprIndex, src, nil, e, idx)
		case p.check(alex.KindAs):
			p.advance()
			ty, err := p.parseTypeRef()
			if err != nil {
				return nil, err
			}
			e = aast.New(aast.ExprAs, src, nil, e, ty)
		case p.check(alex.KindIs):
			p.advance()
			ty, err := p.parseTypeRef()
			if err != nil {
				return nil, err
			}
			e = aast.New(aast.ExprIs, src, nil, e, ty)
		default:
			return e, nil
		}
	}
}

func (p *Parser) parsePrimary(allowStructLit bool) (*aast.Node, error) {
	src := p.sourceHere()
	switch {
	case p.check(alex.KindTrue):
		p.advance()
		return aast.New(aast.ExprBoolLit, src, true), nil
	case p.check(alex.KindFalse):
		p.advance()
		return aast.New(aast.ExprBoolLit, src, false), nil
	case p.check(alex.KindNull):
		p.advance()
		return aast.New(aast.ExprNullLit, src, nil), nil
	case p.check(alex.KindInteger):
		t := p.advance()
		return aast.New(aast.ExprIntLit, src, t.Text), nil
	case p.check(alex.KindFloat):
		t := p.advance()
		return aast.New(aast.ExprFloatLit, src, t.Text), nil
	case p.check(alex.KindRune), p.check(alex.KindCChar):
		t := p.advance()
		return aast.New(aast.ExprCharLit, src, t.Text), nil
	case p.check(alex.KindString), p.check(alex.KindCString):
		t := p.advance()
		return aast.New(aast.ExprStringLit, src, t.Text), nil
	case p.check(alex.KindSizeof):
		return p.parseSizeof()
	case p.check(alex.KindLParen):
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(alex.KindRParen, "')'"); err != nil {
			return nil, err
		}
		return e, nil
	case p.check(alex.KindIdentifier), p.check(alex.KindCompoundIdentifier):
		name := p.advance().Text
		if allowStructLit && p.check(alex.KindLBrace) {
			return p.parseStructLit(src, name)
		}
		return aast.New(aast.ExprName, src, name), nil
	default:
		return nil, &ParseError{Message: "expected expression, found " + p.cur().Text, Source: src}
	}
}

// parseSizeof handles both sizeof(Type) and sizeof expr forms (spec.md
// §4.4 "sizeof disambiguates on whether its argument parses as a type").
func (p *Parser) parseSizeof() (*aast.Node, error) {
	src := p.sourceHere()
	p.advance() // 'sizeof'
	if _, err := p.expect(alex.KindLParen, "'('"); err != nil {
		return nil, err
	}
	m := p.mark()
	if ty, err := p.parseTypeRef(); err == nil && p.check(alex.KindRParen) {
		p.advance()
		return aast.New(aast.ExprSizeofType, src, nil, ty), nil
	}
	p.reset(m)
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(alex.KindRParen, "')'"); err != nil {
		return nil, err
	}
	return aast.New(aast.ExprSizeofExpr, src, nil, e), nil
}

func (p *Parser) parseStructLit(src sourcemap.Source, name string) (*aast.Node, error) {
	p.advance() // '{'
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
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		fields = append(fields, aast.New(aast.Field, fSrc, fname.Text, val))
		p.skipNewlines()
		if _, ok := p.match(alex.KindComma); ok {
			p.skipNewlines()
		}
	}
	if _, err := p.expect(alex.KindRBrace, "'}'"); err != nil {
		return nil, err
	}
	return aast.New(aast.ExprStructLit, src, name, fields...), nil
}
