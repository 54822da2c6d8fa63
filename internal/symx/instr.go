package symx

import (
	"math"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"

	"github.com/mewmew/panicx/internal/solver"
)

// smulWithOverflowI32 is the only call target the Instruction Compiler
// understands; every other callee is unsupported.
const smulWithOverflowI32 = "llvm.smul.with.overflow.i32"

const (
	minI32 = math.MinInt32
	maxI32 = math.MaxInt32
)

// CompileInst synthesizes the assignment predicate "lhs = rhs" for one
// supported LLVM instruction or terminator. ok is false for no-op opcodes
// (Alloca, Br, Ret, Unreachable at instruction level) and for unsupported
// opcodes, either of which contributes no assignment; the Block Compiler
// folds nothing into its implication chain in that case.
//
// The Block Compiler passes both basic-block instructions and the block's
// terminator through CompileInst, since a terminator is, in this opcode
// table's sense, just another instruction that happens to end a block.
func CompileInst(s solver.Session, inst interface{}) (f solver.Formula, ok bool) {
	switch i := inst.(type) {
	case *ir.InstAlloca, *ir.TermBr, *ir.TermCondBr, *ir.TermRet, *ir.TermUnreachable:
		return nil, false

	case *ir.InstLoad:
		if !isI32(i.Type()) {
			warn.Printf("unsupported Load element type %v in %q; skipping", i.Type(), identOf(i))
			return nil, false
		}
		lhs := s.Const(identOf(i), solver.SortInt)
		rhs := Resolve(s, i.Src)
		return s.Eq(lhs, rhs), true

	case *ir.InstStore:
		if !isI32(i.Src.Type()) {
			warn.Printf("unsupported Store value type %v; skipping", i.Src.Type())
			return nil, false
		}
		// Name resolution treats the pointer destination as a plain value
		// identifier; aliasing is not modeled, so repeated stores to the
		// same allocation are unsound (matches the approximation this
		// analyzer inherits rather than introducing per-address renaming).
		dst := Resolve(s, i.Dst)
		src := Resolve(s, i.Src)
		return s.Eq(dst, src), true

	case *ir.InstXor:
		if !isI1(i.Type()) {
			warn.Printf("unsupported Xor result type %v in %q; skipping", i.Type(), identOf(i))
			return nil, false
		}
		lhs := s.Const(identOf(i), solver.SortBool)
		x := Resolve(s, i.X)
		y := Resolve(s, i.Y)
		return s.Eq(lhs, s.Xor(x, y)), true

	case *ir.InstICmp:
		lhs := s.Const(identOf(i), solver.SortBool)
		x := Resolve(s, i.X)
		y := Resolve(s, i.Y)
		rhs, ok := compileICmpPred(s, i.Pred, x, y)
		if !ok {
			warn.Printf("unsupported ICmp predicate %v in %q; skipping", i.Pred, identOf(i))
			return nil, false
		}
		return s.Eq(lhs, rhs), true

	case *ir.InstExtractValue:
		if len(i.Indices) != 1 {
			warn.Printf("unsupported multi-level ExtractValue in %q; skipping", identOf(i))
			return nil, false
		}
		field := i.Indices[0]
		lhs := s.Const(identOf(i), sortOf(i.Type()))
		rhs := s.Const(fieldIdent(i.X, field), sortOf(i.Type()))
		return s.Eq(lhs, rhs), true

	case *ir.InstCall:
		return compileCall(s, i)

	default:
		warn.Printf("unsupported opcode %T; skipping", inst)
		return nil, false
	}
}

// compileCall recognizes llvm.smul.with.overflow.i32 and models both
// projections of its {i32, i1} result: field 0 (the product) per the
// opcode table, and field 1 (the overflow flag) as the actual signed
// 32-bit overflow predicate over the unbounded product, which is what
// makes the overflow field's later ExtractValue consumers (e.g. a branch
// to an unreachable cleanup) meaningfully constrained rather than free.
// Any other callee is unsupported.
func compileCall(s solver.Session, call *ir.InstCall) (solver.Formula, bool) {
	name, ok := calleeName(call.Callee)
	if !ok || name != smulWithOverflowI32 {
		warn.Printf("unsupported call target in %q; skipping", identOf(call))
		return nil, false
	}
	if len(call.Args) != 2 {
		warn.Printf("unexpected operand count for %s in %q; skipping", smulWithOverflowI32, identOf(call))
		return nil, false
	}
	x := Resolve(s, call.Args[0])
	y := Resolve(s, call.Args[1])
	product := s.Mul(x, y)

	productField := s.Const(fieldIdent(call, 0), solver.SortInt)
	productEq := s.Eq(productField, product)

	overflowField := s.Const(fieldIdent(call, 1), solver.SortBool)
	overflows := s.Or(s.Lt(product, s.IntLit(minI32)), s.Gt(product, s.IntLit(maxI32)))
	overflowEq := s.Eq(overflowField, overflows)

	return s.And(productEq, overflowEq), true
}

func calleeName(v interface{ Ident() string }) (string, bool) {
	if v == nil {
		return "", false
	}
	return extractIdent2(v.Ident()), true
}

// extractIdent2 strips the leading '@' or '%' sigil LLVM prints before a
// function or value name, leaving the bare identifier for comparison
// against well-known intrinsic names.
func extractIdent2(s string) string {
	for len(s) > 0 && (s[0] == '@' || s[0] == '%') {
		s = s[1:]
	}
	return s
}

func compileICmpPred(s solver.Session, pred ir.IntPred, x, y solver.Formula) (solver.Formula, bool) {
	switch pred {
	case ir.IntEQ:
		return s.Eq(x, y), true
	case ir.IntNE:
		return s.Ne(x, y), true
	case ir.IntSGE, ir.IntUGE:
		return s.Ge(x, y), true
	case ir.IntSGT, ir.IntUGT:
		return s.Gt(x, y), true
	case ir.IntSLE, ir.IntULE:
		return s.Le(x, y), true
	case ir.IntSLT, ir.IntULT:
		return s.Lt(x, y), true
	default:
		return nil, false
	}
}

func isI1(t types.Type) bool {
	it, ok := t.(*types.IntType)
	return ok && it.BitSize == 1
}

func isI32(t types.Type) bool {
	it, ok := t.(*types.IntType)
	return ok && it.BitSize == 32
}

// identOf returns the SMT identifier of an instruction that produces a
// value, via the same extraction rule as Resolve.
func identOf(v interface{ Ident() string }) string {
	return extractIdent(v.Ident())
}
