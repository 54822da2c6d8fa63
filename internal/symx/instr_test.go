package symx

import (
	"regexp"
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/stretchr/testify/assert"

	"github.com/mewmew/panicx/internal/solver"
)

func TestCompileInstICmpEq(t *testing.T) {
	s := solver.NewFakeSession()
	fn := ir.NewFunc("f", types.I32, ir.NewParam("x", types.I32))
	entry := fn.NewBlock("entry")
	cmp := entry.NewICmp(ir.IntEQ, fn.Params[0], constant.NewInt(types.I32, 7))

	f, ok := CompileInst(s, cmp)
	assert.True(t, ok)
	assert.Regexp(t, regexp.MustCompile(`^eq\(%\S+, eq\(%x, const_7\)\)$`), f.String())
}

func TestCompileInstSignedAndUnsignedComparisonsCollapse(t *testing.T) {
	s := solver.NewFakeSession()
	fn := ir.NewFunc("f", types.I32, ir.NewParam("x", types.I32), ir.NewParam("y", types.I32))
	entry := fn.NewBlock("entry")
	sgt := entry.NewICmp(ir.IntSGT, fn.Params[0], fn.Params[1])
	ugt := entry.NewICmp(ir.IntUGT, fn.Params[0], fn.Params[1])

	sf, sok := CompileInst(s, sgt)
	uf, uok := CompileInst(s, ugt)
	assert.True(t, sok)
	assert.True(t, uok)
	re := regexp.MustCompile(`^eq\(%\S+, gt\(%x, %y\)\)$`)
	assert.Regexp(t, re, sf.String())
	assert.Regexp(t, re, uf.String())
}

func TestCompileInstAllocaIsNoOp(t *testing.T) {
	s := solver.NewFakeSession()
	fn := ir.NewFunc("f", types.Void)
	entry := fn.NewBlock("entry")
	alloca := entry.NewAlloca(types.I32)

	_, ok := CompileInst(s, alloca)
	assert.False(t, ok)
}

func TestCompileInstUnsupportedOpcodeIsSkipped(t *testing.T) {
	s := solver.NewFakeSession()
	fn := ir.NewFunc("f", types.I32, ir.NewParam("x", types.I32), ir.NewParam("y", types.I32))
	entry := fn.NewBlock("entry")
	sub := entry.NewSub(fn.Params[0], fn.Params[1])

	_, ok := CompileInst(s, sub)
	assert.False(t, ok)
}

// compileCall binds both projections of the {i32, i1} result of
// llvm.smul.with.overflow.i32: the product (field 0) and the actual
// overflow predicate over that product (field 1), so a later branch on the
// overflow flag is meaningfully tied to the multiplicands rather than free.
func TestCompileCallBindsProductAndOverflowFields(t *testing.T) {
	s := solver.NewFakeSession()
	smul := ir.NewFunc("llvm.smul.with.overflow.i32", types.NewStruct(types.I32, types.I1),
		ir.NewParam("a", types.I32), ir.NewParam("b", types.I32))
	fn := ir.NewFunc("smul_ok", types.I32, ir.NewParam("a", types.I32), ir.NewParam("b", types.I32))
	entry := fn.NewBlock("entry")
	call := entry.NewCall(smul, fn.Params[0], fn.Params[1])

	f, ok := CompileInst(s, call)
	assert.True(t, ok)
	got := f.String()
	assert.Regexp(t, regexp.MustCompile(`^and\(eq\(%\S+\.0, mul\(%a, %b\)\), eq\(%\S+\.1, or\(lt\(mul\(%a, %b\), -2147483648\), gt\(mul\(%a, %b\), 2147483647\)\)\)\)$`), got)
}

func TestCompileCallRejectsUnknownCallee(t *testing.T) {
	s := solver.NewFakeSession()
	other := ir.NewFunc("some_other_func", types.I32)
	fn := ir.NewFunc("f", types.I32)
	entry := fn.NewBlock("entry")
	call := entry.NewCall(other)

	_, ok := CompileInst(s, call)
	assert.False(t, ok)
}
