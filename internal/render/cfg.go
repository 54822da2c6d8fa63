// Package render writes a Graphviz rendering of an analyzed function's
// control-flow graph. Every basic block is rendered in IR order, whether
// or not it is reachable from the entry block.
package render

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/llir/llvm/ir"
	"github.com/zboralski/lattice"
	latticerender "github.com/zboralski/lattice/render"

	"github.com/mewmew/panicx/internal/cfg"
)

// WriteDOT converts fn's control-flow graph to a lattice.FuncCFG and writes
// its DOT rendering to dir/<fn.Name>.dot, creating dir if necessary.
func WriteDOT(dir string, fn *ir.Function) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	lcfg := convertFuncCFG(fn)
	g := &lattice.CFGGraph{Funcs: []*lattice.FuncCFG{lcfg}}
	dot := latticerender.DOTCFG(g, fn.Name)
	path := filepath.Join(dir, fn.Name+".dot")
	return os.WriteFile(path, []byte(dot), 0o644)
}

// convertFuncCFG maps fn's basic blocks to a lattice.FuncCFG. Blocks are
// numbered by their position in fn.Blocks; the synthetic common_end node
// used internally by the symbolic compiler is not part of the function's
// real IR and is therefore not rendered.
func convertFuncCFG(fn *ir.Function) *lattice.FuncCFG {
	fwd := cfg.ForwardEdges(fn)

	id := make(map[string]int, len(fn.Blocks))
	for i, block := range fn.Blocks {
		id[block.Name] = i
	}

	lcfg := &lattice.FuncCFG{Name: fn.Name}
	for i, block := range fn.Blocks {
		lb := &lattice.BasicBlock{
			ID:    i,
			Start: 0,
			End:   len(block.Insts),
			Term:  fwd.Has(block.Name, cfg.End),
		}
		for _, succName := range fwd.Sorted(block.Name) {
			succID, ok := id[succName]
			if !ok {
				// succName is common_end; it has no block index of its own.
				continue
			}
			lb.Succs = append(lb.Succs, lattice.Successor{
				BlockID: succID,
				Cond:    branchLabel(block.Term, succName),
			})
		}
		for offset, inst := range block.Insts {
			lb.Calls = append(lb.Calls, lattice.CallSite{
				Offset: offset,
				Callee: fmt.Sprintf("%v", inst),
			})
		}
		lcfg.Blocks = append(lcfg.Blocks, lb)
	}
	return lcfg
}

// branchLabel reports the "T"/"F" edge label for a conditional branch's
// target, and the empty string for every other terminator, matching the
// convention lattice/render's DOTCFG expects for highlighting taken/not-taken
// edges.
func branchLabel(term ir.Terminator, target string) string {
	condBr, ok := term.(*ir.TermCondBr)
	if !ok {
		return ""
	}
	if condBr.TargetTrue.Name == target {
		return "T"
	}
	return "F"
}
