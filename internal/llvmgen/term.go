package llvmgen

import (
	"fmt"

	"adeptc/internal/ir"
)

// term emits bb's terminator. A Return whose function classified its
// return type Indirect stores into the sret slot and returns void instead
// of producing an LLVM ret-with-value (spec.md §4.8 "sret").
func (g *bodyGen) term(bb *ir.Block) error {
	switch t := bb.Term().(type) {
	case *ir.Return:
		if g.sig.Mapping.HasSRet {
			if t.Value != nil {
				g.b.CreateStore(g.val(t.Value), g.sretSlot)
			}
			g.b.CreateRetVoid()
			return nil
		}
		if t.Value == nil {
			g.b.CreateRetVoid()
			return nil
		}
		g.b.CreateRet(g.val(t.Value))
		return nil

	case *ir.Jump:
		g.b.CreateBr(g.blocks[t.Target])
		return nil

	case *ir.CondBranch:
		g.b.CreateCondBr(g.val(t.Cond), g.blocks[t.Then], g.blocks[t.Else])
		return nil

	case ir.Unreachable:
		g.b.CreateUnreachable()
		return nil

	case nil:
		return fmt.Errorf("llvmgen: block %s has no terminator", bb.Name())

	default:
		return fmt.Errorf("llvmgen: unhandled terminator %T", t)
	}
}
