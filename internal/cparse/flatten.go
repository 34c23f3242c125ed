package cparse

import (
	"adeptc/internal/cast"
	"adeptc/internal/cfg"
)

// Flatten lowers a parsed C FuncDef into a cfg.Builder, sharing the exact
// Builder primitives aparse.Flatten uses so both languages feed the same
// resolver (spec.md §4.5 "CFG Flattener is shared by both front ends").
// switch/case/default is parsed into the tree (cast.StmtSwitch) but not
// yet flattened here; spec.md lists switch as a C-only construct whose
// fallthrough semantics this core does not attempt to lower to the CFG's
// branch/PHI model, so a StmtSwitch reaching the flattener is reported as
// an unsupported-construct error rather than silently miscompiled.
func Flatten(fn *cast.Node) (*cfg.Builder, error) {
	b := cfg.NewBuilder()
	fl := &cFlattener{b: b, labels: map[string]cfg.BasicBlockID{}}

	decl := fn.Children[1]
	paramList := funcParams(decl)
	if paramList != nil {
		for _, pn := range paramList.Children {
			name := cast.DeclaratorIdentifier(paramDeclarator(pn))
			b.Emit(cfg.Instr{Kind: cfg.IParameter, Source: pn.Source, Name: name})
		}
	}

	body := fn.Children[2]
	if err := fl.block(body); err != nil {
		return nil, err
	}
	if !b.Block(b.Current).HasEnd {
		b.End(cfg.EndInstr{Kind: cfg.EndReturn})
	}
	fl.fixup()
	return b, fl.firstErr
}

func funcParams(decl *cast.Node) *cast.Node {
	for decl != nil {
		if decl.Type == cast.DeclaratorFunction {
			return decl.Children[1]
		}
		if len(decl.Children) == 0 {
			return nil
		}
		decl = decl.Children[0]
	}
	return nil
}

func paramDeclarator(p *cast.Node) *cast.Node {
	for _, c := range p.Children {
		if c.Type != cast.DeclSpec {
			return c
		}
	}
	return nil
}

type loopCtx struct {
	continueTo cfg.BasicBlockID
	breakTo    cfg.BasicBlockID
}

type pendingGoto struct {
	block cfg.BasicBlockID
	label string
}

type cFlattener struct {
	b        *cfg.Builder
	loops    []loopCtx
	labels   map[string]cfg.BasicBlockID
	pending  []pendingGoto
	firstErr error
}

func (f *cFlattener) fail(err error) {
	if f.firstErr == nil {
		f.firstErr = err
	}
}

func (f *cFlattener) fixup() {
	for _, pg := range f.pending {
		target, ok := f.labels[pg.label]
		if !ok {
			continue
		}
		bb := f.b.Block(pg.block)
		bb.End = cfg.EndInstr{Kind: cfg.EndJump, Target: target}
	}
}

func (f *cFlattener) block(n *cast.Node) error {
	for _, stmt := range n.Children {
		if err := f.stmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (f *cFlattener) stmt(n *cast.Node) error {
	b := f.b
	switch n.Type {
	case cast.Block:
		return f.block(n)

	case cast.StmtDecl:
		declNode := n.Children[0]
		for _, child := range declNode.Children {
			if child.Type != cast.InitDeclarator {
				continue
			}
			name := cast.DeclaratorIdentifier(child.Children[0])
			if len(child.Children) > 1 {
				ref, err := f.expr(child.Children[1])
				if err != nil {
					return err
				}
				b.Emit(cfg.Instr{Kind: cfg.IDeclareAssign, Source: n.Source, Name: name, Args: []cfg.InstrRef{ref}})
			} else {
				b.Emit(cfg.Instr{Kind: cfg.IDeclare, Source: n.Source, Name: name})
			}
		}
		return nil

	case cast.StmtExpr:
		if len(n.Children) == 0 {
			return nil
		}
		_, err := f.expr(n.Children[0])
		return err

	case cast.StmtReturn:
		if len(n.Children) == 0 {
			b.End(cfg.EndInstr{Kind: cfg.EndReturn})
		} else {
			ref, err := f.expr(n.Children[0])
			if err != nil {
				return err
			}
			b.End(cfg.EndInstr{Kind: cfg.EndReturn, Value: &ref, HasValue: true})
		}
		next := b.NewBlock()
		b.SwitchTo(next)
		return nil

	case cast.StmtBreak:
		if len(f.loops) == 0 {
			f.fail(errUnexpected("break outside loop"))
			return nil
		}
		b.End(cfg.EndInstr{Kind: cfg.EndJump, Target: f.loops[len(f.loops)-1].breakTo})
		next := b.NewBlock()
		b.SwitchTo(next)
		return nil

	case cast.StmtContinue:
		if len(f.loops) == 0 {
			f.fail(errUnexpected("continue outside loop"))
			return nil
		}
		b.End(cfg.EndInstr{Kind: cfg.EndJump, Target: f.loops[len(f.loops)-1].continueTo})
		next := b.NewBlock()
		b.SwitchTo(next)
		return nil

	case cast.StmtGoto:
		label := n.Data.(string)
		cur := b.Current
		b.End(cfg.EndInstr{Kind: cfg.EndIncompleteGoto, Label: label})
		f.pending = append(f.pending, pendingGoto{block: cur, label: label})
		next := b.NewBlock()
		b.SwitchTo(next)
		return nil

	case cast.StmtLabel:
		label := n.Data.(string)
		cur := b.Current
		if !b.Block(cur).HasEnd {
			next := b.NewBlock()
			b.End(cfg.EndInstr{Kind: cfg.EndJump, Target: next})
			b.SwitchTo(next)
		}
		f.labels[label] = b.Current
		return nil

	case cast.StmtIf:
		return f.ifStmt(n)

	case cast.StmtWhile:
		return f.whileStmt(n.Children[0], n.Children[1])

	case cast.StmtFor:
		return f.forStmt(n)

	case cast.StmtSwitch:
		f.fail(errUnexpected("switch statement lowering is not implemented by this core"))
		return nil

	default:
		f.fail(errUnexpected("unsupported C statement kind in flattener"))
		return nil
	}
}

func (f *cFlattener) ifStmt(n *cast.Node) error {
	b := f.b
	condRef, err := f.exprConformBool(n.Children[0])
	if err != nil {
		return err
	}
	thenBB := b.NewBlock()
	hasElse := len(n.Children) > 2
	var elseBB cfg.BasicBlockID
	if hasElse {
		elseBB = b.NewBlock()
	}
	joinBB := b.NewBlock()
	if !hasElse {
		elseBB = joinBB
	}
	b.End(cfg.EndInstr{Kind: cfg.EndBranch, Cond: condRef, TrueBB: thenBB, FalseBB: elseBB})

	b.SwitchTo(thenBB)
	if err := f.stmt(n.Children[1]); err != nil {
		return err
	}
	if !b.Block(b.Current).HasEnd {
		b.End(cfg.EndInstr{Kind: cfg.EndJump, Target: joinBB})
	}
	if hasElse {
		b.SwitchTo(elseBB)
		if err := f.stmt(n.Children[2]); err != nil {
			return err
		}
		if !b.Block(b.Current).HasEnd {
			b.End(cfg.EndInstr{Kind: cfg.EndJump, Target: joinBB})
		}
	}
	b.SwitchTo(joinBB)
	return nil
}

func (f *cFlattener) whileStmt(cond, body *cast.Node) error {
	b := f.b
	headBB := b.NewBlock()
	b.End(cfg.EndInstr{Kind: cfg.EndJump, Target: headBB})
	b.SwitchTo(headBB)

	condRef, err := f.exprConformBool(cond)
	if err != nil {
		return err
	}
	bodyBB := b.NewBlock()
	afterBB := b.NewBlock()
	b.End(cfg.EndInstr{
		Kind: cfg.EndBranch, Cond: condRef, TrueBB: bodyBB, FalseBB: afterBB,
		Role: cfg.BreakContinueRole{IsLoop: true, ContinueTo: headBB, BreakTo: afterBB},
	})

	f.loops = append(f.loops, loopCtx{continueTo: headBB, breakTo: afterBB})
	b.SwitchTo(bodyBB)
	if err := f.stmt(body); err != nil {
		return err
	}
	if !b.Block(b.Current).HasEnd {
		b.End(cfg.EndInstr{Kind: cfg.EndJump, Target: headBB})
	}
	f.loops = f.loops[:len(f.loops)-1]

	b.SwitchTo(afterBB)
	return nil
}

// forStmt desugars "for (init; cond; post) body" to "init; while (cond) {
// body; post; }" (spec.md §4.5 "for desugars to while + init + post"),
// except continue must still reach post before re-testing cond, so post
// runs in its own block that continue jumps to rather than being inlined
// before the back-edge.
func (f *cFlattener) forStmt(n *cast.Node) error {
	b := f.b
	init, cond, post, body := n.Children[0], n.Children[1], n.Children[2], n.Children[3]
	if init != nil {
		if err := f.stmt(init); err != nil {
			return err
		}
	}

	headBB := b.NewBlock()
	b.End(cfg.EndInstr{Kind: cfg.EndJump, Target: headBB})
	b.SwitchTo(headBB)

	bodyBB := b.NewBlock()
	postBB := b.NewBlock()
	afterBB := b.NewBlock()

	if cond != nil {
		condRef, err := f.exprConformBool(cond)
		if err != nil {
			return err
		}
		b.End(cfg.EndInstr{
			Kind: cfg.EndBranch, Cond: condRef, TrueBB: bodyBB, FalseBB: afterBB,
			Role: cfg.BreakContinueRole{IsLoop: true, ContinueTo: postBB, BreakTo: afterBB},
		})
	} else {
		b.End(cfg.EndInstr{Kind: cfg.EndJump, Target: bodyBB})
	}

	f.loops = append(f.loops, loopCtx{continueTo: postBB, breakTo: afterBB})
	b.SwitchTo(bodyBB)
	if err := f.stmt(body); err != nil {
		return err
	}
	if !b.Block(b.Current).HasEnd {
		b.End(cfg.EndInstr{Kind: cfg.EndJump, Target: postBB})
	}
	f.loops = f.loops[:len(f.loops)-1]

	b.SwitchTo(postBB)
	if post != nil {
		if _, err := f.expr(post); err != nil {
			return err
		}
	}
	b.End(cfg.EndInstr{Kind: cfg.EndJump, Target: headBB})

	b.SwitchTo(afterBB)
	return nil
}

// exprConformBool flattens a condition expression and tags the result for
// C's any-scalar-compared-to-zero truthiness via a ConformToBool
// instruction (spec.md §4.5 "Conform-to-bool").
func (f *cFlattener) exprConformBool(n *cast.Node) (cfg.InstrRef, error) {
	ref, err := f.expr(n)
	if err != nil {
		return cfg.InstrRef{}, err
	}
	return f.b.Emit(cfg.Instr{Kind: cfg.IConformToBool, Source: n.Source, Args: []cfg.InstrRef{ref}, ConformLang: cfg.LangC}), nil
}

func (f *cFlattener) expr(n *cast.Node) (cfg.InstrRef, error) {
	b := f.b
	switch n.Type {
	case cast.ExprIntLit:
		return b.Emit(cfg.Instr{Kind: cfg.IIntLiteral, Source: n.Source, IntValue: n.Data.(string)}), nil
	case cast.ExprFloatLit:
		return b.Emit(cfg.Instr{Kind: cfg.IFloatLiteral, Source: n.Source, FloatValue: n.Data.(float64)}), nil
	case cast.ExprCharLit:
		var r rune
		if chars, ok := n.Data.([]rune); ok && len(chars) > 0 {
			r = chars[0]
		}
		return b.Emit(cfg.Instr{Kind: cfg.ICharLiteral, Source: n.Source, CharValue: r}), nil
	case cast.ExprStringLit:
		return b.Emit(cfg.Instr{Kind: cfg.IStringLiteral, Source: n.Source, StringValue: n.Data.(string)}), nil
	case cast.ExprIdent:
		return b.Emit(cfg.Instr{Kind: cfg.IName, Source: n.Source, Name: n.Data.(string)}), nil

	case cast.ExprUnary:
		operand, err := f.expr(n.Children[0])
		if err != nil {
			return cfg.InstrRef{}, err
		}
		op, ok := toCfgCUnary(n.Data.(cast.UnaryOp))
		if !ok {
			return b.Emit(cfg.Instr{Kind: cfg.IAssign, Source: n.Source, Args: []cfg.InstrRef{operand}}), nil
		}
		return b.Emit(cfg.Instr{Kind: cfg.IUnaryOp, Source: n.Source, UnaryOp: op, Args: []cfg.InstrRef{operand}}), nil

	case cast.ExprBinary:
		op := n.Data.(cast.BinOp)
		if op == cast.OpLogicalAnd || op == cast.OpLogicalOr {
			return f.shortCircuit(n, op)
		}
		lhs, err := f.expr(n.Children[0])
		if err != nil {
			return cfg.InstrRef{}, err
		}
		rhs, err := f.expr(n.Children[1])
		if err != nil {
			return cfg.InstrRef{}, err
		}
		return b.Emit(cfg.Instr{Kind: cfg.IBinOp, Source: n.Source, BinOp: cfg.BinOp(op), Args: []cfg.InstrRef{lhs, rhs}}), nil

	case cast.ExprAssign:
		lhs, err := f.expr(n.Children[0])
		if err != nil {
			return cfg.InstrRef{}, err
		}
		rhs, err := f.expr(n.Children[1])
		if err != nil {
			return cfg.InstrRef{}, err
		}
		return b.Emit(cfg.Instr{Kind: cfg.IAssign, Source: n.Source, Args: []cfg.InstrRef{lhs, rhs}}), nil

	case cast.ExprCall:
		callee := n.Children[0]
		var args []cfg.InstrRef
		for _, a := range n.Children[1:] {
			ref, err := f.expr(a)
			if err != nil {
				return cfg.InstrRef{}, err
			}
			args = append(args, ref)
		}
		name := ""
		if callee.Type == cast.ExprIdent {
			name = callee.Data.(string)
		}
		return b.Emit(cfg.Instr{Kind: cfg.ICall, Source: n.Source, CalleeName: name, CallArgs: args}), nil

	case cast.ExprMember:
		target, err := f.expr(n.Children[0])
		if err != nil {
			return cfg.InstrRef{}, err
		}
		return b.Emit(cfg.Instr{Kind: cfg.IMember, Source: n.Source, MemberName: n.Data.(string), Args: []cfg.InstrRef{target}}), nil

	case cast.ExprIndex:
		arr, err := f.expr(n.Children[0])
		if err != nil {
			return cfg.InstrRef{}, err
		}
		idx, err := f.expr(n.Children[1])
		if err != nil {
			return cfg.InstrRef{}, err
		}
		return b.Emit(cfg.Instr{Kind: cfg.IArrayAccess, Source: n.Source, Args: []cfg.InstrRef{arr, idx}}), nil

	case cast.ExprSizeofExpr:
		operand, err := f.expr(n.Children[0])
		if err != nil {
			return cfg.InstrRef{}, err
		}
		return b.Emit(cfg.Instr{Kind: cfg.ISizeOfValue, Source: n.Source, Args: []cfg.InstrRef{operand}}), nil

	case cast.ExprSizeofType:
		return b.Emit(cfg.Instr{Kind: cfg.ISizeOfType, Source: n.Source}), nil

	case cast.ExprCast:
		operand, err := f.expr(n.Children[1])
		if err != nil {
			return cfg.InstrRef{}, err
		}
		return b.Emit(cfg.Instr{Kind: cfg.IIntegerPromote, Source: n.Source, Args: []cfg.InstrRef{operand}}), nil

	case cast.ExprComma:
		if _, err := f.expr(n.Children[0]); err != nil {
			return cfg.InstrRef{}, err
		}
		return f.expr(n.Children[1])

	case cast.ExprTernary:
		return f.ternary(n)

	default:
		f.fail(errUnexpected("unsupported C expression kind in flattener"))
		return cfg.InstrRef{}, f.firstErr
	}
}

func (f *cFlattener) ternary(n *cast.Node) (cfg.InstrRef, error) {
	b := f.b
	condRef, err := f.exprConformBool(n.Children[0])
	if err != nil {
		return cfg.InstrRef{}, err
	}
	thenBB := b.NewBlock()
	elseBB := b.NewBlock()
	joinBB := b.NewBlock()
	b.End(cfg.EndInstr{Kind: cfg.EndBranch, Cond: condRef, TrueBB: thenBB, FalseBB: elseBB})

	b.SwitchTo(thenBB)
	thenRef, err := f.expr(n.Children[1])
	if err != nil {
		return cfg.InstrRef{}, err
	}
	thenEnd := b.Current
	b.End(cfg.EndInstr{Kind: cfg.EndJump, Target: joinBB})

	b.SwitchTo(elseBB)
	elseRef, err := f.expr(n.Children[2])
	if err != nil {
		return cfg.InstrRef{}, err
	}
	elseEnd := b.Current
	b.End(cfg.EndInstr{Kind: cfg.EndJump, Target: joinBB})

	b.SwitchTo(joinBB)
	return b.Emit(cfg.Instr{
		Kind: cfg.IPhi, Source: n.Source,
		Args: []cfg.InstrRef{thenRef, elseRef}, PhiBlocks: []cfg.BasicBlockID{thenEnd, elseEnd},
	}), nil
}

func (f *cFlattener) shortCircuit(n *cast.Node, op cast.BinOp) (cfg.InstrRef, error) {
	b := f.b
	lhs, err := f.expr(n.Children[0])
	if err != nil {
		return cfg.InstrRef{}, err
	}
	rhsBB := b.NewBlock()
	joinBB := b.NewBlock()

	lhsBlock := b.Current
	if op == cast.OpLogicalAnd {
		b.End(cfg.EndInstr{Kind: cfg.EndBranch, Cond: lhs, TrueBB: rhsBB, FalseBB: joinBB})
	} else {
		b.End(cfg.EndInstr{Kind: cfg.EndBranch, Cond: lhs, TrueBB: joinBB, FalseBB: rhsBB})
	}

	b.SwitchTo(rhsBB)
	rhs, err := f.expr(n.Children[1])
	if err != nil {
		return cfg.InstrRef{}, err
	}
	rhsBlockEnd := b.Current
	b.End(cfg.EndInstr{Kind: cfg.EndJump, Target: joinBB})

	b.SwitchTo(joinBB)
	return b.Emit(cfg.Instr{
		Kind: cfg.IPhi, Source: n.Source,
		Args: []cfg.InstrRef{lhs, rhs}, PhiBlocks: []cfg.BasicBlockID{lhsBlock, rhsBlockEnd},
	}), nil
}

func toCfgCUnary(op cast.UnaryOp) (cfg.UnaryOp, bool) {
	switch op {
	case cast.UnaryNegate:
		return cfg.UnaryNegate, true
	case cast.UnaryNot:
		return cfg.UnaryNot, true
	case cast.UnaryBitComplement:
		return cfg.UnaryBitComplement, true
	case cast.UnaryAddressOf:
		return cfg.UnaryAddressOf, true
	case cast.UnaryDereference:
		return cfg.UnaryDereference, true
	default:
		return 0, false // pre/post incr/decr: lowered as a plain assign by the caller.
	}
}

type flattenError struct{ msg string }

func (e *flattenError) Error() string { return e.msg }

func errUnexpected(msg string) error { return &flattenError{msg: msg} }
