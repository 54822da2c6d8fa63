package symx

import (
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/stretchr/testify/assert"

	"github.com/mewmew/panicx/internal/solver"
)

func TestResolveSSAValueUsesRawIdent(t *testing.T) {
	s := solver.NewFakeSession()
	fn := ir.NewFunc("f", types.I32, ir.NewParam("x", types.I32))
	f := Resolve(s, fn.Params[0])
	assert.Equal(t, "%x", f.String())
}

func TestResolveIsDeterministicForEqualValues(t *testing.T) {
	s := solver.NewFakeSession()
	a := Resolve(s, constant.NewInt(types.I32, 42))
	b := Resolve(s, constant.NewInt(types.I32, 42))
	assert.Equal(t, a.String(), b.String())
}

func TestResolveConstantDeclaresStandingEquality(t *testing.T) {
	s := solver.NewFakeSession()
	Resolve(s, constant.NewInt(types.I32, 42))
	assert.Len(t, s.Asserts, 1)
	assert.Equal(t, "eq(const_42, 42)", s.Asserts[0].String())
}

func TestResolveBooleanConstants(t *testing.T) {
	s := solver.NewFakeSession()
	f := Resolve(s, constant.NewBool(true))
	assert.Equal(t, "const_true", f.String())
}

func TestExtractIdentStopsAtSpace(t *testing.T) {
	assert.Equal(t, "%foo", extractIdent(`%foo = type i32`))
}

func TestFieldIdent(t *testing.T) {
	fn := ir.NewFunc("f", types.I32, ir.NewParam("r", types.I32))
	assert.Equal(t, "%r.0", fieldIdent(fn.Params[0], 0))
}
