// Package cfg reconstructs the control-flow graph of an LLVM IR function and
// produces a topological ordering over its basic blocks.
//
// A CFG built here is read-only with respect to the underlying
// *ir.Function; it never mutates blocks or instructions, only discovers
// the edges between them.
package cfg

import (
	"log"
	"os"
	"sort"

	"github.com/llir/llvm/ir"
	"github.com/mewkiz/pkg/term"
)

var (
	// dbg is a logger which logs debug messages with "cfg:" prefix to
	// standard error.
	dbg = log.New(os.Stderr, term.MagentaBold("cfg:")+" ", 0)
	// warn is a logger which logs warning messages with "warning:" prefix
	// to standard error.
	warn = log.New(os.Stderr, term.RedBold("warning:")+" ", 0)
)

// End is the name of the synthetic terminal node that every Return or
// Unreachable block flows into.
const End = "common_end"

// EdgeMap maps a basic block name to the set of block names reachable from
// it (or reaching it, for a backward map) in one step. common_end is
// always present as a key.
type EdgeMap map[string]map[string]bool

// add records an edge from 'from' to 'to', creating the source's entry if
// absent.
func (m EdgeMap) add(from, to string) {
	if m[from] == nil {
		m[from] = make(map[string]bool)
	}
	m[from][to] = true
}

// Has reports whether there is an edge from 'from' to 'to'.
func (m EdgeMap) Has(from, to string) bool {
	return m[from][to]
}

// Sorted returns the successor (or predecessor) names of node, in a stable
// order, for callers that need deterministic iteration.
func (m EdgeMap) Sorted(node string) []string {
	names := make([]string, 0, len(m[node]))
	for name := range m[node] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ForwardEdges computes the forward edge map of fn: for every basic block,
// the set of blocks its terminator may transfer control to, with Return and
// Unreachable terminators unified into the synthetic End node.
//
// Unsupported or missing terminators contribute no edges; a diagnostic is
// emitted and the function remains analyzable only if the gap does not
// matter for reachability of panic.
func ForwardEdges(fn *ir.Function) EdgeMap {
	fwd := make(EdgeMap)
	fwd[End] = make(map[string]bool)
	for _, block := range fn.Blocks {
		name := block.Name
		if fwd[name] == nil {
			fwd[name] = make(map[string]bool)
		}
		term := block.Term
		if term == nil {
			warn.Printf("block %q has no terminator", name)
			continue
		}
		switch t := term.(type) {
		case *ir.TermRet:
			fwd.add(name, End)
		case *ir.TermUnreachable:
			fwd.add(name, End)
		case *ir.TermBr:
			fwd.add(name, t.Target.Name)
		case *ir.TermCondBr:
			fwd.add(name, t.TargetTrue.Name)
			fwd.add(name, t.TargetFalse.Name)
		case *ir.TermSwitch:
			fwd.add(name, t.TargetDefault.Name)
			for _, c := range t.Cases {
				fwd.add(name, c.Target.Name)
			}
		default:
			warn.Printf("unsupported terminator opcode %T in block %q for edge generation", term, name)
		}
	}
	return fwd
}

// BackwardEdges inverts fwd: an edge P -> N in fwd becomes N -> P here.
// Every block name present in fwd (including End) is present as a key,
// even if its predecessor set is empty.
func BackwardEdges(fwd EdgeMap) EdgeMap {
	bwd := make(EdgeMap)
	for name := range fwd {
		bwd[name] = make(map[string]bool)
	}
	for from, tos := range fwd {
		for to := range tos {
			bwd.add(to, from)
		}
	}
	return bwd
}
