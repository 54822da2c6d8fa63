package solver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFakeSessionUnsatWhenContradictory(t *testing.T) {
	s := NewFakeSession()
	x := s.Const("x", SortInt)
	s.Assert(s.Eq(x, s.IntLit(1)))
	s.Assert(s.Eq(x, s.IntLit(2)))

	result, err := s.CheckSat(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, Unsat, result)
}

func TestFakeSessionSatProducesModel(t *testing.T) {
	s := NewFakeSession()
	x := s.Const("x", SortInt)
	s.Assert(s.Eq(x, s.IntLit(3)))

	result, err := s.CheckSat(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, Sat, result)

	model, err := s.Model()
	assert.NoError(t, err)
	assert.Equal(t, "3", model["x"])
}

func TestFakeSessionBooleanDomain(t *testing.T) {
	s := NewFakeSession()
	b := s.Const("panic_var", SortBool)
	s.Assert(s.Eq(b, s.BoolLit(true)))

	result, err := s.CheckSat(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, Sat, result)

	model, err := s.Model()
	assert.NoError(t, err)
	assert.Equal(t, "true", model["panic_var"])
}

func TestFakeSessionImpliesShortCircuitsOnFalseAntecedent(t *testing.T) {
	s := NewFakeSession()
	x := s.Const("x", SortInt)
	// false ⇒ (x = 999) is vacuously true, so x is unconstrained by it and
	// a second assertion pins it down.
	s.Assert(s.Implies(s.BoolLit(false), s.Eq(x, s.IntLit(999))))
	s.Assert(s.Eq(x, s.IntLit(1)))

	result, err := s.CheckSat(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, Sat, result)
	model, _ := s.Model()
	assert.Equal(t, "1", model["x"])
}

func TestFakeSessionCheckSatRespectsCancellation(t *testing.T) {
	s := NewFakeSession()
	x := s.Const("x", SortInt)
	s.Assert(s.Eq(x, s.IntLit(1)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := s.CheckSat(ctx)
	assert.NoError(t, err)
	assert.Equal(t, Unsat, result)
}
