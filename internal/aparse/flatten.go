package aparse

import (
	"adeptc/internal/aast"
	"adeptc/internal/cfg"
)

// Flatten lowers a parsed FuncDecl's body into a cfg.Builder (spec.md
// §4.5 "CFG Flattener"). Short-circuit && / || become diamonds with a
// PHI merging the two paths; if/while become Branch ends; break/continue
// end their block with a direct Jump to the innermost loop's exit or
// condition block; goto is emitted as an incomplete end and patched by a
// fix-up pass once the whole function has been walked, since its label may
// not have been seen yet.
func Flatten(fn *aast.Node) (*cfg.Builder, error) {
	b := cfg.NewBuilder()
	fl := &flattener{b: b, labels: map[string]cfg.BasicBlockID{}}

	params := fn.Children[0]
	for _, pn := range params.Children {
		b.Emit(cfg.Instr{Kind: cfg.IParameter, Source: pn.Source, Name: pn.Data.(string)})
	}

	body := fn.Children[len(fn.Children)-1]
	if err := fl.block(body); err != nil {
		return nil, err
	}
	if !b.Block(b.Current).HasEnd {
		b.End(cfg.EndInstr{Kind: cfg.EndReturn})
	}
	fl.fixup()
	return b, fl.firstErr
}

type loopCtx struct {
	continueTo cfg.BasicBlockID
	breakTo    cfg.BasicBlockID
}

type flattener struct {
	b        *cfg.Builder
	loops    []loopCtx
	labels   map[string]cfg.BasicBlockID
	pending  []pendingGoto
	firstErr error
}

type pendingGoto struct {
	block cfg.BasicBlockID
	label string
}

func (f *flattener) fail(err error) {
	if f.firstErr == nil {
		f.firstErr = err
	}
}

// fixup resolves every EndIncompleteGoto against the labels map collected
// during the walk (spec.md §4.5 "break/continue/goto fix-up pass").
func (f *flattener) fixup() {
	for _, pg := range f.pending {
		target, ok := f.labels[pg.label]
		if !ok {
			continue // unresolved goto target; left for the resolver's diagnostics.
		}
		bb := f.b.Block(pg.block)
		bb.End = cfg.EndInstr{Kind: cfg.EndJump, Target: target}
	}
}

func (f *flattener) block(n *aast.Node) error {
	for _, stmt := range n.Children {
		if err := f.stmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (f *flattener) stmt(n *aast.Node) error {
	b := f.b
	switch n.Type {
	case aast.StmtLet:
		if len(n.Children) == 0 {
			b.Emit(cfg.Instr{Kind: cfg.IDeclare, Source: n.Source, Name: n.Data.(string)})
			return nil
		}
		initIdx := len(n.Children) - 1
		initRef, err := f.expr(n.Children[initIdx])
		if err != nil {
			return err
		}
		b.Emit(cfg.Instr{Kind: cfg.IDeclareAssign, Source: n.Source, Name: n.Data.(string), Args: []cfg.InstrRef{initRef}})
		return nil

	case aast.StmtAssign:
		lhsRef, err := f.expr(n.Children[0])
		if err != nil {
			return err
		}
		rhsRef, err := f.expr(n.Children[1])
		if err != nil {
			return err
		}
		b.Emit(cfg.Instr{Kind: cfg.IAssign, Source: n.Source, Args: []cfg.InstrRef{lhsRef, rhsRef}})
		return nil

	case aast.StmtExpr:
		_, err := f.expr(n.Children[0])
		return err

	case aast.StmtReturn:
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

	case aast.StmtBreak:
		if len(f.loops) == 0 {
			f.fail(errUnexpected("break outside loop", n))
			return nil
		}
		b.End(cfg.EndInstr{Kind: cfg.EndJump, Target: f.loops[len(f.loops)-1].breakTo})
		next := b.NewBlock()
		b.SwitchTo(next)
		return nil

	case aast.StmtContinue:
		if len(f.loops) == 0 {
			f.fail(errUnexpected("continue outside loop", n))
			return nil
		}
		b.End(cfg.EndInstr{Kind: cfg.EndJump, Target: f.loops[len(f.loops)-1].continueTo})
		next := b.NewBlock()
		b.SwitchTo(next)
		return nil

	case aast.StmtGoto:
		label := n.Data.(string)
		cur := b.Current
		b.End(cfg.EndInstr{Kind: cfg.EndIncompleteGoto, Label: label})
		f.pending = append(f.pending, pendingGoto{block: cur, label: label})
		next := b.NewBlock()
		b.SwitchTo(next)
		return nil

	case aast.StmtLabel:
		label := n.Data.(string)
		cur := b.Current
		if !b.Block(cur).HasEnd {
			next := b.NewBlock()
			b.End(cfg.EndInstr{Kind: cfg.EndJump, Target: next})
			b.SwitchTo(next)
		}
		f.labels[label] = b.Current
		return nil

	case aast.StmtIf:
		return f.ifStmt(n)

	case aast.StmtWhile:
		return f.whileStmt(n)

	default:
		f.fail(errUnexpected("unsupported statement kind in flattener", n))
		return nil
	}
}

func (f *flattener) ifStmt(n *aast.Node) error {
	b := f.b
	condRef, err := f.expr(n.Children[0])
	if err != nil {
		return err
	}
	thenBB := b.NewBlock()
	var elseBB cfg.BasicBlockID
	hasElse := len(n.Children) > 2
	if hasElse {
		elseBB = b.NewBlock()
	} else {
		elseBB = 0 // patched to joinBB below.
	}
	joinBB := b.NewBlock()
	if !hasElse {
		elseBB = joinBB
	}
	b.End(cfg.EndInstr{Kind: cfg.EndBranch, Cond: condRef, TrueBB: thenBB, FalseBB: elseBB})

	b.SwitchTo(thenBB)
	if err := f.block(n.Children[1]); err != nil {
		return err
	}
	if !b.Block(b.Current).HasEnd {
		b.End(cfg.EndInstr{Kind: cfg.EndJump, Target: joinBB})
	}

	if hasElse {
		b.SwitchTo(elseBB)
		elseNode := n.Children[2]
		var err error
		if elseNode.Type == aast.StmtIf {
			err = f.ifStmt(elseNode)
		} else {
			err = f.block(elseNode)
		}
		if err != nil {
			return err
		}
		if !b.Block(b.Current).HasEnd {
			b.End(cfg.EndInstr{Kind: cfg.EndJump, Target: joinBB})
		}
	}

	b.SwitchTo(joinBB)
	return nil
}

func (f *flattener) whileStmt(n *aast.Node) error {
	b := f.b
	headBB := b.NewBlock()
	b.End(cfg.EndInstr{Kind: cfg.EndJump, Target: headBB})
	b.SwitchTo(headBB)

	condRef, err := f.expr(n.Children[0])
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
	if err := f.block(n.Children[1]); err != nil {
		return err
	}
	if !b.Block(b.Current).HasEnd {
		b.End(cfg.EndInstr{Kind: cfg.EndJump, Target: headBB})
	}
	f.loops = f.loops[:len(f.loops)-1]

	b.SwitchTo(afterBB)
	return nil
}

// expr flattens an expression into a value-producing instruction, handling
// && / || specially as a short-circuit diamond with a PHI join (spec.md
// §4.5 "short-circuit flattening").
func (f *flattener) expr(n *aast.Node) (cfg.InstrRef, error) {
	b := f.b
	switch n.Type {
	case aast.ExprBoolLit:
		return b.Emit(cfg.Instr{Kind: cfg.IBoolLiteral, Source: n.Source, BoolValue: n.Data.(bool)}), nil
	case aast.ExprIntLit:
		return b.Emit(cfg.Instr{Kind: cfg.IIntLiteral, Source: n.Source, IntValue: n.Data.(string)}), nil
	case aast.ExprFloatLit:
		// Raw text is kept in StringValue; lowering parses it to float64
		// once the target's float width is known (spec.md §4.6/§4.7).
		return b.Emit(cfg.Instr{Kind: cfg.IFloatLiteral, Source: n.Source, StringValue: n.Data.(string)}), nil
	case aast.ExprCharLit:
		return b.Emit(cfg.Instr{Kind: cfg.ICharLiteral, Source: n.Source, StringValue: n.Data.(string)}), nil
	case aast.ExprStringLit:
		return b.Emit(cfg.Instr{Kind: cfg.IStringLiteral, Source: n.Source, StringValue: n.Data.(string)}), nil
	case aast.ExprNullLit:
		return b.Emit(cfg.Instr{Kind: cfg.INullptrLiteral, Source: n.Source}), nil
	case aast.ExprName:
		return b.Emit(cfg.Instr{Kind: cfg.IName, Source: n.Source, Name: n.Data.(string)}), nil

	case aast.ExprUnary:
		operand, err := f.expr(n.Children[0])
		if err != nil {
			return cfg.InstrRef{}, err
		}
		return b.Emit(cfg.Instr{Kind: cfg.IUnaryOp, Source: n.Source, UnaryOp: toCfgUnary(n.Data.(aast.UnaryOp)), Args: []cfg.InstrRef{operand}}), nil

	case aast.ExprBinary:
		op := n.Data.(aast.BinOp)
		if op == aast.OpLogicalAnd || op == aast.OpLogicalOr {
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
		return b.Emit(cfg.Instr{Kind: cfg.IBinOp, Source: n.Source, BinOp: toCfgBinOp(op), Args: []cfg.InstrRef{lhs, rhs}}), nil

	case aast.ExprCall:
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
		if callee.Type == aast.ExprName {
			name = callee.Data.(string)
		}
		return b.Emit(cfg.Instr{Kind: cfg.ICall, Source: n.Source, CalleeName: name, CallArgs: args}), nil

	case aast.ExprMember:
		target, err := f.expr(n.Children[0])
		if err != nil {
			return cfg.InstrRef{}, err
		}
		return b.Emit(cfg.Instr{Kind: cfg.IMember, Source: n.Source, MemberName: n.Data.(string), Args: []cfg.InstrRef{target}}), nil

	case aast.ExprIndex:
		arr, err := f.expr(n.Children[0])
		if err != nil {
			return cfg.InstrRef{}, err
		}
		idx, err := f.expr(n.Children[1])
		if err != nil {
			return cfg.InstrRef{}, err
		}
		return b.Emit(cfg.Instr{Kind: cfg.IArrayAccess, Source: n.Source, Args: []cfg.InstrRef{arr, idx}}), nil

	case aast.ExprSizeofExpr:
		operand, err := f.expr(n.Children[0])
		if err != nil {
			return cfg.InstrRef{}, err
		}
		return b.Emit(cfg.Instr{Kind: cfg.ISizeOfValue, Source: n.Source, Args: []cfg.InstrRef{operand}}), nil

	case aast.ExprSizeofType:
		return b.Emit(cfg.Instr{Kind: cfg.ISizeOfType, Source: n.Source, SizeOfTypeName: n.Children[0].Data.(string)}), nil

	case aast.ExprAs:
		operand, err := f.expr(n.Children[0])
		if err != nil {
			return cfg.InstrRef{}, err
		}
		return b.Emit(cfg.Instr{Kind: cfg.IIntegerPromote, Source: n.Source, Args: []cfg.InstrRef{operand}, SizeOfTypeName: n.Children[1].Data.(string)}), nil

	case aast.ExprIs:
		operand, err := f.expr(n.Children[0])
		if err != nil {
			return cfg.InstrRef{}, err
		}
		return b.Emit(cfg.Instr{Kind: cfg.IIs, Source: n.Source, Args: []cfg.InstrRef{operand}, SizeOfTypeName: n.Children[1].Data.(string)}), nil

	case aast.ExprStructLit:
		var fields []cfg.InstrRef
		for _, fn := range n.Children {
			ref, err := f.expr(fn.Children[0])
			if err != nil {
				return cfg.InstrRef{}, err
			}
			fields = append(fields, ref)
		}
		return b.Emit(cfg.Instr{Kind: cfg.IStructLiteral, Source: n.Source, StructTypeName: n.Data.(string), Args: fields}), nil

	default:
		f.fail(errUnexpected("unsupported expression kind in flattener", n))
		return cfg.InstrRef{}, f.firstErr
	}
}

// shortCircuit flattens && / || into a diamond: evaluate lhs, branch; one
// side short-circuits to the result without evaluating rhs, the other
// evaluates rhs; a PHI in the join block merges the two (spec.md §4.5
// "short-circuit flattening produces a PHI-joined diamond").
func (f *flattener) shortCircuit(n *aast.Node, op aast.BinOp) (cfg.InstrRef, error) {
	b := f.b
	lhs, err := f.expr(n.Children[0])
	if err != nil {
		return cfg.InstrRef{}, err
	}
	rhsBB := b.NewBlock()
	joinBB := b.NewBlock()

	lhsBlock := b.Current
	if op == aast.OpLogicalAnd {
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
	phi := b.Emit(cfg.Instr{
		Kind:      cfg.IPhi,
		Source:    n.Source,
		Args:      []cfg.InstrRef{lhs, rhs},
		PhiBlocks: []cfg.BasicBlockID{lhsBlock, rhsBlockEnd},
	})
	return phi, nil
}

func toCfgBinOp(op aast.BinOp) cfg.BinOp { return cfg.BinOp(op) }
func toCfgUnary(op aast.UnaryOp) cfg.UnaryOp { return cfg.UnaryOp(op) }

type flattenError struct {
	msg string
	n   *aast.Node
}

func (e *flattenError) Error() string { return e.msg }

func errUnexpected(msg string, n *aast.Node) error { return &flattenError{msg: msg, n: n} }
