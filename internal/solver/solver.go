// Package solver is the narrow SMT-provider boundary the rest of this
// module talks to: declare named constants, build formulas over a small
// operator set, assert them, and ask for satisfiability plus a model.
//
// Session is implemented twice: z3Session (internal/solver/z3.go) drives a
// real Z3 context via github.com/aclements/go-z3, and FakeSession
// (internal/solver/fake.go) is an in-memory double used by internal/symx's
// tests to assert on formula shape without requiring Z3 to be installed.
package solver

import "context"

// Sort is the SMT sort of a declared constant.
type Sort int

const (
	SortBool Sort = iota
	SortInt
)

// Formula is an opaque handle to a boolean or integer SMT expression. Its
// only behavior is identification; Session methods are the sole way to
// build, combine, and assert formulas.
type Formula interface {
	String() string
}

// Result is the outcome of a satisfiability check.
type Result int

const (
	Unsat Result = iota
	Sat
	Unknown
)

func (r Result) String() string {
	switch r {
	case Unsat:
		return "unsat"
	case Sat:
		return "sat"
	default:
		return "unknown"
	}
}

// Model maps a constant name to its value in a satisfying assignment, as
// printed by the underlying solver.
type Model map[string]string

// Session is one function's worth of SMT state: a context plus a solver.
// Callers must call Close when done so solver-side resources are released
// on every exit path, including early cycle-abort and unsupported-
// terminator bail-outs.
type Session interface {
	// Const declares (or re-declares, idempotently) a named constant of
	// the given sort and returns a handle to it.
	Const(name string, sort Sort) Formula

	// BoolLit and IntLit build literal formulas; they do not declare
	// constants.
	BoolLit(v bool) Formula
	IntLit(v int64) Formula

	Not(a Formula) Formula
	And(fs ...Formula) Formula
	Or(fs ...Formula) Formula
	Implies(a, b Formula) Formula
	Xor(a, b Formula) Formula

	Eq(a, b Formula) Formula
	Ne(a, b Formula) Formula
	Lt(a, b Formula) Formula
	Le(a, b Formula) Formula
	Gt(a, b Formula) Formula
	Ge(a, b Formula) Formula

	Add(a, b Formula) Formula
	Mul(a, b Formula) Formula

	// SignedRange returns the formula min <= c <= max for a signed
	// integer of the given bit width, expressed over the unbounded
	// integer sort (the Function Compiler's concession to fixed width).
	SignedRange(c Formula, bits uint) Formula

	Assert(f Formula)

	// CheckSat runs the solver; ctx is the sole cancellation point of an
	// analysis.
	CheckSat(ctx context.Context) (Result, error)

	// Model returns the satisfying assignment of the most recent Sat
	// CheckSat call.
	Model() (Model, error)

	Close()
}
