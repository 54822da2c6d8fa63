package symx

import (
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
	"github.com/stretchr/testify/assert"

	"github.com/mewmew/panicx/internal/solver"
)

func TestEntryConditionUnconditionalBranchIsTrue(t *testing.T) {
	s := solver.NewFakeSession()
	fn := ir.NewFunc("f", types.Void)
	entry := fn.NewBlock("entry")
	target := fn.NewBlock("target")
	entry.NewBr(target)

	f := EntryCondition(s, entry, "target")
	assert.Equal(t, "true", f.String())
}

func TestEntryConditionCondBrDiscriminatesTrueTarget(t *testing.T) {
	s := solver.NewFakeSession()
	fn := ir.NewFunc("f", types.Void, ir.NewParam("x", types.I1))
	entry := fn.NewBlock("entry")
	then := fn.NewBlock("then")
	els := fn.NewBlock("else")
	entry.NewCondBr(fn.Params[0], then, els)

	toThen := EntryCondition(s, entry, "then")
	toElse := EntryCondition(s, entry, "else")
	assert.Equal(t, "eq(%x, true)", toThen.String())
	assert.Equal(t, "eq(%x, false)", toElse.String())
}

func TestEntryConditionUnreachableIsTrue(t *testing.T) {
	s := solver.NewFakeSession()
	fn := ir.NewFunc("f", types.Void)
	entry := fn.NewBlock("entry")
	entry.NewUnreachable()

	f := EntryCondition(s, entry, "common_end")
	assert.Equal(t, "true", f.String())
}
