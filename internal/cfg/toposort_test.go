package cfg

import (
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/stretchr/testify/assert"
)

func TestTopoSortVisitsEachBlockOnceAfterItsPredecessors(t *testing.T) {
	fn := branchingFunc()
	fwd := ForwardEdges(fn)
	bwd := BackwardEdges(fwd)

	order, err := TopoSort(fn, fwd, bwd)
	assert.NoError(t, err)
	assert.Len(t, order, 5) // entry, then, else, join, common_end

	pos := make(map[string]int, len(order))
	for i, name := range order {
		pos[name] = i
	}
	// Forward order: every predecessor must precede its successors'
	// positions; BackwardOrder reverses this for the compiler walk.
	for from, tos := range fwd {
		for to := range tos {
			assert.Less(t, pos[from], pos[to], "%q should precede %q in forward order", from, to)
		}
	}
}

func TestTopoSortRejectsCycles(t *testing.T) {
	fn := ir.NewFunc("looping", types.Void, ir.NewParam("x", types.I1))
	entry := fn.NewBlock("entry")
	loop := fn.NewBlock("loop")
	exit := fn.NewBlock("exit")

	entry.NewBr(loop)
	loop.NewCondBr(fn.Params[0], loop, exit)
	exit.NewRet(nil)

	fwd := ForwardEdges(fn)
	bwd := BackwardEdges(fwd)

	_, err := TopoSort(fn, fwd, bwd)
	assert.ErrorIs(t, err, ErrCyclic)
}

func TestBackwardOrderReversesForwardOrder(t *testing.T) {
	forward := []string{"entry", "then", "else", "join", End}
	backward := BackwardOrder(forward)
	assert.Equal(t, []string{End, "join", "else", "then", "entry"}, backward)
}

func TestTopoSortDeterministic(t *testing.T) {
	fn := ir.NewFunc("id", types.I32, ir.NewParam("x", types.I32))
	entry := fn.NewBlock("entry")
	entry.NewRet(constant.NewInt(types.I32, 0))

	fwd := ForwardEdges(fn)
	bwd := BackwardEdges(fwd)

	order1, err := TopoSort(fn, fwd, bwd)
	assert.NoError(t, err)
	order2, err := TopoSort(fn, fwd, bwd)
	assert.NoError(t, err)
	assert.Equal(t, order1, order2)
}
