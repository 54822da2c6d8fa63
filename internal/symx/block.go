package symx

import (
	"github.com/llir/llvm/ir"

	"github.com/mewmew/panicx/internal/cfg"
	"github.com/mewmew/panicx/internal/solver"
)

// CompileBlock asserts name ≡ post for the block named name, where post is
// folded in this fixed order:
//
//  1. successor fold: the conjunction of successor block-predicate
//     variables (true with no successors)
//  2. terminal case: common_end additionally requires ¬panic_var
//  3. instruction walk, in reverse, each producing an assignment A that
//     becomes "A ⇒ post"
//  4. panic marking: panic_var = true/false/unconstrained depending on
//     the block's terminator, folded the same way
//  5. entry-condition guard: the conjunction of incoming entry
//     conditions becomes the new outermost antecedent
//
// The successor conjunction must stay innermost so that steps 3-5 wrap it
// from the inside out; reversing this order changes the formula's meaning
// from a weakest-precondition-style "if assignments hold, post holds" into
// something else entirely.
func CompileBlock(s solver.Session, blocks map[string]*ir.BasicBlock, fwd, bwd cfg.EdgeMap, name string) {
	post := successorFold(s, fwd, name)

	if name == cfg.End {
		post = s.And(s.Not(s.Const(panicVar, solver.SortBool)), post)
	}

	if block, ok := blocks[name]; ok {
		post = instructionFold(s, block, post)
		post = panicMarkFold(s, fwd, block, post)
	}

	guard := entryGuard(s, blocks, bwd, name)
	post = s.Implies(guard, post)

	blockVar := s.Const(name, solver.SortBool)
	s.Assert(s.Eq(blockVar, post))
}

func successorFold(s solver.Session, fwd cfg.EdgeMap, name string) solver.Formula {
	succs := fwd.Sorted(name)
	if len(succs) == 0 {
		return s.BoolLit(true)
	}
	vars := make([]solver.Formula, len(succs))
	for i, succ := range succs {
		vars[i] = s.Const(succ, solver.SortBool)
	}
	return s.And(vars...)
}

func instructionFold(s solver.Session, block *ir.BasicBlock, post solver.Formula) solver.Formula {
	if a, ok := CompileInst(s, block.Term); ok {
		post = s.Implies(a, post)
	}
	for i := len(block.Insts) - 1; i >= 0; i-- {
		if a, ok := CompileInst(s, block.Insts[i]); ok {
			post = s.Implies(a, post)
		}
	}
	return post
}

// panicMarkFold attaches the panic-flag assignment for blocks that flow
// into common_end: Unreachable sets panic_var true, Return/Br/Switch set
// it false, anything else leaves it unconstrained (no assignment emitted).
func panicMarkFold(s solver.Session, fwd cfg.EdgeMap, block *ir.BasicBlock, post solver.Formula) solver.Formula {
	if !fwd.Has(block.Name, cfg.End) {
		return post
	}
	panicFlag := s.Const(panicVar, solver.SortBool)
	switch block.Term.(type) {
	case *ir.TermUnreachable:
		return s.Implies(s.Eq(panicFlag, s.BoolLit(true)), post)
	case *ir.TermRet, *ir.TermBr, *ir.TermSwitch:
		return s.Implies(s.Eq(panicFlag, s.BoolLit(false)), post)
	default:
		return post
	}
}

func entryGuard(s solver.Session, blocks map[string]*ir.BasicBlock, bwd cfg.EdgeMap, name string) solver.Formula {
	preds := bwd.Sorted(name)
	if len(preds) == 0 {
		return s.BoolLit(true)
	}
	conds := make([]solver.Formula, 0, len(preds))
	for _, predName := range preds {
		pred, ok := blocks[predName]
		if !ok {
			// A predecessor can only be common_end's predecessor, and
			// common_end is never itself a predecessor of anything.
			continue
		}
		conds = append(conds, EntryCondition(s, pred, name))
	}
	if len(conds) == 0 {
		return s.BoolLit(true)
	}
	return s.And(conds...)
}
