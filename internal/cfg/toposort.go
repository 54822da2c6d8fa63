package cfg

import (
	"github.com/llir/llvm/ir"
	"github.com/pkg/errors"
)

// ErrCyclic is returned by TopoSort when the CFG contains a cycle; loops are
// rejected outright, never widened or unrolled.
var ErrCyclic = errors.New("cyclic control-flow graph")

// TopoSort computes a forward topological order over fn's basic blocks plus
// End, using Kahn's algorithm with ties broken by IR iteration order. It
// returns ErrCyclic if a full pass extracts no node while unsorted nodes
// remain.
func TopoSort(fn *ir.Function, fwd, bwd EdgeMap) ([]string, error) {
	var nodes []string
	for _, block := range fn.Blocks {
		nodes = append(nodes, block.Name)
	}
	nodes = append(nodes, End)

	indeg := make(map[string]int, len(nodes))
	for _, n := range nodes {
		indeg[n] = len(bwd[n])
	}

	var sorted []string
	remaining := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		remaining[n] = true
	}

	for len(sorted) < len(nodes) {
		progressed := false
		// Extract every current zero-indegree node in this pass, breaking
		// ties by IR iteration order (stable).
		var ready []string
		for _, n := range nodes {
			if remaining[n] && indeg[n] == 0 {
				ready = append(ready, n)
			}
		}
		for _, n := range ready {
			delete(remaining, n)
			sorted = append(sorted, n)
			progressed = true
			for succ := range fwd[n] {
				indeg[succ]--
			}
		}
		if !progressed {
			warn.Printf("CFG of function %q is cyclic, which is not supported", fn.Name)
			return nil, ErrCyclic
		}
	}
	return sorted, nil
}

// BackwardOrder reverses a forward topological order; the Function Compiler
// walks blocks in this order so that every successor is compiled before its
// predecessors.
func BackwardOrder(forward []string) []string {
	backward := make([]string, len(forward))
	for i, n := range forward {
		backward[len(forward)-1-i] = n
	}
	return backward
}
