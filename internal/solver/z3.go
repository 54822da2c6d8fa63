package solver

import (
	"context"
	"fmt"
	"math"

	"github.com/aclements/go-z3/z3"
	"github.com/pkg/errors"
)

// z3Session drives a real Z3 context and solver. It is the production
// implementation of Session, built around the same Config/Context/Solver
// plus Bool/Int ast triple every Z3 binding exposes.
type z3Session struct {
	ctx    *z3.Context
	solver *z3.Solver
	consts map[string]Sort
}

// NewZ3Session opens a fresh Z3 context and solver, scoped to the analysis
// of a single function; the caller must Close it on every exit path.
func NewZ3Session() Session {
	cfg := z3.NewConfig()
	ctx := z3.NewContextWithConfig(cfg)
	return &z3Session{
		ctx:    ctx,
		solver: ctx.NewSolver(),
		consts: make(map[string]Sort),
	}
}

type z3Formula struct {
	ast  z3.AST
	sort Sort
}

func (f *z3Formula) String() string { return f.ast.String() }

func wrap(ast z3.AST, sort Sort) Formula { return &z3Formula{ast: ast, sort: sort} }

func unwrap(f Formula) *z3Formula { return f.(*z3Formula) }

func (s *z3Session) Const(name string, sort Sort) Formula {
	s.consts[name] = sort
	switch sort {
	case SortBool:
		return wrap(s.ctx.BoolConst(name), SortBool)
	default:
		return wrap(s.ctx.IntConst(name), SortInt)
	}
}

func (s *z3Session) BoolLit(v bool) Formula {
	return wrap(s.ctx.FromBool(v), SortBool)
}

func (s *z3Session) IntLit(v int64) Formula {
	return wrap(s.ctx.FromInt(v, s.ctx.IntSort()), SortInt)
}

func (s *z3Session) Not(a Formula) Formula {
	return wrap(unwrap(a).ast.(z3.Bool).Not(), SortBool)
}

func (s *z3Session) And(fs ...Formula) Formula {
	if len(fs) == 0 {
		return s.BoolLit(true)
	}
	acc := unwrap(fs[0]).ast.(z3.Bool)
	for _, f := range fs[1:] {
		acc = acc.And(unwrap(f).ast.(z3.Bool))
	}
	return wrap(acc, SortBool)
}

func (s *z3Session) Or(fs ...Formula) Formula {
	if len(fs) == 0 {
		return s.BoolLit(false)
	}
	acc := unwrap(fs[0]).ast.(z3.Bool)
	for _, f := range fs[1:] {
		acc = acc.Or(unwrap(f).ast.(z3.Bool))
	}
	return wrap(acc, SortBool)
}

func (s *z3Session) Implies(a, b Formula) Formula {
	return wrap(unwrap(a).ast.(z3.Bool).Implies(unwrap(b).ast.(z3.Bool)), SortBool)
}

func (s *z3Session) Xor(a, b Formula) Formula {
	return wrap(unwrap(a).ast.(z3.Bool).Xor(unwrap(b).ast.(z3.Bool)), SortBool)
}

func (s *z3Session) Eq(a, b Formula) Formula {
	return wrap(unwrap(a).ast.Eq(unwrap(b).ast), SortBool)
}

func (s *z3Session) Ne(a, b Formula) Formula {
	return s.Not(s.Eq(a, b))
}

func (s *z3Session) Lt(a, b Formula) Formula {
	return wrap(unwrap(a).ast.(z3.Int).Lt(unwrap(b).ast.(z3.Int)), SortBool)
}

func (s *z3Session) Le(a, b Formula) Formula {
	return wrap(unwrap(a).ast.(z3.Int).Le(unwrap(b).ast.(z3.Int)), SortBool)
}

func (s *z3Session) Gt(a, b Formula) Formula {
	return wrap(unwrap(a).ast.(z3.Int).Gt(unwrap(b).ast.(z3.Int)), SortBool)
}

func (s *z3Session) Ge(a, b Formula) Formula {
	return wrap(unwrap(a).ast.(z3.Int).Ge(unwrap(b).ast.(z3.Int)), SortBool)
}

func (s *z3Session) Add(a, b Formula) Formula {
	return wrap(unwrap(a).ast.(z3.Int).Add(unwrap(b).ast.(z3.Int)), SortInt)
}

func (s *z3Session) Mul(a, b Formula) Formula {
	return wrap(unwrap(a).ast.(z3.Int).Mul(unwrap(b).ast.(z3.Int)), SortInt)
}

func (s *z3Session) SignedRange(c Formula, bits uint) Formula {
	min := int64(-1) << (bits - 1)
	max := int64(1)<<(bits-1) - 1
	if bits >= 64 {
		min = math.MinInt64
		max = math.MaxInt64
	}
	lo := s.IntLit(min)
	hi := s.IntLit(max)
	return s.And(s.Ge(c, lo), s.Le(c, hi))
}

func (s *z3Session) Assert(f Formula) {
	s.solver.Assert(unwrap(f).ast.(z3.Bool))
}

func (s *z3Session) CheckSat(ctx context.Context) (Result, error) {
	type outcome struct {
		res Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		sat, err := s.solver.Check()
		if err != nil {
			done <- outcome{Unknown, errors.WithStack(err)}
			return
		}
		switch sat {
		case z3.Sat:
			done <- outcome{Sat, nil}
		case z3.Unsat:
			done <- outcome{Unsat, nil}
		default:
			done <- outcome{Unknown, nil}
		}
	}()
	select {
	case <-ctx.Done():
		return Unknown, errors.WithStack(ctx.Err())
	case o := <-done:
		return o.res, o.err
	}
}

func (s *z3Session) Model() (Model, error) {
	m := s.solver.Model()
	if m == nil {
		return nil, errors.New("no model available; CheckSat did not return Sat")
	}
	out := make(Model, len(s.consts))
	for name, sort := range s.consts {
		var ast z3.AST
		switch sort {
		case SortBool:
			ast = s.ctx.BoolConst(name)
		default:
			ast = s.ctx.IntConst(name)
		}
		val, ok := m.Eval(ast, true)
		if !ok {
			continue
		}
		out[name] = fmt.Sprint(val)
	}
	return out, nil
}

func (s *z3Session) Close() {
	// z3.Context and z3.Solver are reference-counted by the underlying Z3
	// library; dropping our references here is sufficient since go-z3 ties
	// their finalizers to garbage collection. Nothing else to release.
}
