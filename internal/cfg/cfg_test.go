package cfg

import (
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/stretchr/testify/assert"
)

// branchingFunc builds:
//
//	entry: br i1 %x, label %then, label %else
//	then:  br label %join
//	else:  br label %join
//	join:  ret i32 0
func branchingFunc() *ir.Function {
	fn := ir.NewFunc("branching", types.I32, ir.NewParam("x", types.I1))
	entry := fn.NewBlock("entry")
	then := fn.NewBlock("then")
	els := fn.NewBlock("else")
	join := fn.NewBlock("join")

	entry.NewCondBr(fn.Params[0], then, els)
	then.NewBr(join)
	els.NewBr(join)
	join.NewRet(constant.NewInt(types.I32, 0))

	return fn
}

func TestForwardBackwardEdgesAreMutualInverses(t *testing.T) {
	fn := branchingFunc()
	fwd := ForwardEdges(fn)
	bwd := BackwardEdges(fwd)

	for from, tos := range fwd {
		for to := range tos {
			assert.True(t, bwd.Has(to, from), "expected %q to be a predecessor of %q", from, to)
		}
	}
	for to, froms := range bwd {
		for from := range froms {
			assert.True(t, fwd.Has(from, to), "expected %q to be a successor of %q", from, to)
		}
	}
}

func TestForwardEdgesUnifiesReturnIntoCommonEnd(t *testing.T) {
	fn := branchingFunc()
	fwd := ForwardEdges(fn)

	assert.True(t, fwd.Has("join", End))
	assert.ElementsMatch(t, []string{"then", "else"}, fwd.Sorted("entry"))
}

func TestUnreachableUnifiesIntoCommonEnd(t *testing.T) {
	fn := ir.NewFunc("always_panic", types.Void)
	entry := fn.NewBlock("entry")
	entry.NewUnreachable()

	fwd := ForwardEdges(fn)
	assert.ElementsMatch(t, []string{End}, fwd.Sorted("entry"))
}
