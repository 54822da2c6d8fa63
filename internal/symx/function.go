package symx

import (
	"context"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
	"github.com/pkg/errors"

	"github.com/mewmew/panicx/internal/cfg"
	"github.com/mewmew/panicx/internal/solver"
)

// Verdict is the outcome of analyzing one function.
type Verdict int

const (
	// Safe means no input reaches panic.
	Safe Verdict = iota
	// Unsafe means Model is a counter-example that reaches panic.
	Unsafe
	// UnsafeUnknown means the solver could not decide; callers should
	// treat this conservatively, the same as Unsafe.
	UnsafeUnknown
)

func (v Verdict) String() string {
	switch v {
	case Safe:
		return "safe"
	case Unsafe, UnsafeUnknown:
		return "unsafe"
	default:
		return "unknown"
	}
}

// Report is the result of analyzing one function.
type Report struct {
	Verdict Verdict
	// Model holds parameter values that reach panic, populated only when
	// Verdict is Unsafe.
	Model solver.Model
}

// NewSession is the constructor for a fresh per-function solver session;
// production callers pass solver.NewZ3Session, tests pass
// solver.NewFakeSession.
type NewSession func() solver.Session

// Analyze runs the full symbolic compilation pipeline over fn: CFG
// extraction, topological ordering, per-block compilation in reverse
// order, parameter range constraints, the entry-block-is-false assertion,
// and a satisfiability check. It opens and closes exactly one solver
// session, regardless of which exit path is taken.
func Analyze(ctx context.Context, newSession NewSession, fn *ir.Function) (*Report, error) {
	s := newSession()
	defer s.Close()

	fwd := cfg.ForwardEdges(fn)
	bwd := cfg.BackwardEdges(fwd)

	forward, err := cfg.TopoSort(fn, fwd, bwd)
	if err != nil {
		return nil, errors.Wrapf(err, "function %q", fn.Name)
	}
	backward := cfg.BackwardOrder(forward)

	blocks := make(map[string]*ir.BasicBlock, len(fn.Blocks))
	for _, b := range fn.Blocks {
		blocks[b.Name] = b
	}

	for _, name := range backward {
		CompileBlock(s, blocks, fwd, bwd, name)
	}

	constrainParams(s, fn)

	if len(fn.Blocks) == 0 {
		return nil, errors.Errorf("function %q has no basic blocks", fn.Name)
	}
	entry := fn.Blocks[0].Name
	entryVar := s.Const(entry, solver.SortBool)
	s.Assert(s.Not(entryVar))

	result, err := s.CheckSat(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "function %q", fn.Name)
	}

	switch result {
	case solver.Unsat:
		return &Report{Verdict: Safe}, nil
	case solver.Sat:
		model, err := s.Model()
		if err != nil {
			return nil, errors.Wrapf(err, "function %q", fn.Name)
		}
		return &Report{Verdict: Unsafe, Model: model}, nil
	default:
		dbg.Printf("solver returned unknown for function %q; reporting conservatively as unsafe", fn.Name)
		return &Report{Verdict: UnsafeUnknown}, nil
	}
}

// constrainParams bounds every i1 parameter with nothing (left
// unconstrained) and every i32/i64 parameter to its signed range. Other
// parameter types are left unconstrained with a diagnostic.
func constrainParams(s solver.Session, fn *ir.Function) {
	for _, p := range fn.Params {
		it, ok := p.Typ.(*types.IntType)
		if !ok {
			warn.Printf("unsupported parameter type %v for %q; leaving unconstrained", p.Typ, p.Ident())
			continue
		}
		switch it.BitSize {
		case 1:
			// Booleans need no range constraint.
		case 32, 64:
			c := s.Const(extractIdent(p.Ident()), solver.SortInt)
			s.Assert(s.SignedRange(c, uint(it.BitSize)))
		default:
			warn.Printf("unsupported integer width i%d for parameter %q; leaving unconstrained", it.BitSize, p.Ident())
		}
	}
}
