// Package symx is the symbolic compilation pipeline: it turns one LLVM IR
// function into an SMT formula whose satisfiability answers "can this
// function reach a panic", and, when it can, extracts a model of the
// parameter values that drive it there.
package symx

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/mewkiz/pkg/term"

	"github.com/mewmew/panicx/internal/solver"
)

var (
	// dbg is a logger which logs debug messages with "symx:" prefix to
	// standard error.
	dbg = log.New(os.Stderr, term.MagentaBold("symx:")+" ", 0)
	// warn is a logger which logs warning messages with "warning:" prefix
	// to standard error.
	warn = log.New(os.Stderr, term.RedBold("warning:")+" ", 0)
)

// panicVar is the fixed name of the panic-flag boolean.
const panicVar = "panic_var"

// sortOf maps an LLVM type to the SMT sort it is modeled with: i1 is
// boolean, every other supported integer width is the unbounded integer
// sort (the Function Compiler narrows i32/i64 parameters back down with
// SignedRange).
func sortOf(t types.Type) solver.Sort {
	if it, ok := t.(*types.IntType); ok && it.BitSize == 1 {
		return solver.SortBool
	}
	return solver.SortInt
}

// Resolve canonicalizes an LLVM value to an SMT identifier. SSA values and
// parameters resolve to their raw printed identifier (including the
// leading '%'); constant literals are declared under a fresh const_<N> or
// const_true/const_false name with a standing equality asserted.
//
// Resolution is idempotent: resolving the same value twice declares the
// same constant and asserts the same (redundant, harmless) equality.
func Resolve(s solver.Session, v value.Value) solver.Formula {
	text := v.Ident()
	if !strings.Contains(text, "%") {
		return resolveConstant(s, text, v)
	}
	return s.Const(extractIdent(text), sortOf(v.Type()))
}

func resolveConstant(s solver.Session, text string, v value.Value) solver.Formula {
	switch text {
	case "true", "false":
		b := text == "true"
		name := "const_false"
		if b {
			name = "const_true"
		}
		c := s.Const(name, solver.SortBool)
		s.Assert(s.Eq(c, s.BoolLit(b)))
		return c
	default:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			warn.Printf("unable to parse constant literal %q as a signed integer: %v", text, err)
			n = 0
		}
		name := fmt.Sprintf("const_%d", n)
		c := s.Const(name, solver.SortInt)
		s.Assert(s.Eq(c, s.IntLit(n)))
		return c
	}
}

// extractIdent extracts the identifier beginning at '%' up to the first of
// '"', space, ',', or end of string.
func extractIdent(text string) string {
	i := strings.IndexByte(text, '%')
	if i < 0 {
		return text
	}
	rest := text[i:]
	end := len(rest)
	if j := strings.IndexAny(rest, "\" ,"); j >= 0 {
		end = j
	}
	return rest[:end]
}

// fieldIdent returns the SMT identifier for the field-th field projected
// out of the aggregate value base.
func fieldIdent(base value.Value, field int64) string {
	return fmt.Sprintf("%s.%d", extractIdent(base.Ident()), field)
}
