package symx

import (
	"github.com/llir/llvm/ir"

	"github.com/mewmew/panicx/internal/solver"
)

// EntryCondition returns the boolean formula under which control passes
// from pred into the block named target.
//
// Unconditional transfers (Br with one operand, Ret, Unreachable) are
// unconditionally true. A conditional Br resolves its discriminant and
// equates it to true or false depending on which arm leads to target.
// Any other terminator (including Switch, whose case guards have no
// representation here) is unsupported: the guard defaults to true, which
// over-approximates reachability but never causes a false "safe" verdict.
func EntryCondition(s solver.Session, pred *ir.BasicBlock, target string) solver.Formula {
	switch t := pred.Term.(type) {
	case *ir.TermRet, *ir.TermUnreachable, *ir.TermBr:
		return s.BoolLit(true)
	case *ir.TermCondBr:
		d := Resolve(s, t.Cond)
		switch target {
		case t.TargetTrue.Name:
			return s.Eq(d, s.BoolLit(true))
		case t.TargetFalse.Name:
			return s.Eq(d, s.BoolLit(false))
		default:
			warn.Printf("block %q is not a successor of the conditional branch in %q", target, pred.Name)
			return s.BoolLit(true)
		}
	default:
		warn.Printf("unsupported terminator %T in %q for entry-condition generation; guard defaults to true", pred.Term, pred.Name)
		return s.BoolLit(true)
	}
}
