// Package codegen implements C7: the expression, statement, and function
// micro-compilers that lower a resolved, typed AST into AssemblyBlocks of
// bytecode instructions. The three share a single VariableUseTracker per
// function compilation, the same way a class lowerer shares one scope
// table across class/subroutine/statement handlers.
package codegen

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"jodin.dev/jodinc/pkg/asmblock"
	"jodin.dev/jodinc/pkg/bytecode"
)

var log = logrus.WithField("component", "codegen")

// Compiler holds the state threaded through one function's compilation:
// the variable slot tracker and a monotonic counter used to keep
// generated control-flow labels unique across nested if/while/for.
type Compiler struct {
	vars         *VariableUseTracker
	labelCounter int
}

// New builds a compiler with a fresh variable tracker.
func New() *Compiler {
	return &Compiler{vars: NewVariableUseTracker()}
}

// nextLabel mints a fresh, block-relative label under the given prefix
// (e.g. "then" -> "@then_3"), guaranteeing uniqueness within this
// compiler's lifetime.
func (c *Compiler) nextLabel(prefix string) string {
	n := c.labelCounter
	c.labelCounter++
	return fmt.Sprintf("%c%s_%d", asmblock.RelativeLabelMarker, prefix, n)
}

// single wraps a lone instruction in an anonymous block, for the many
// call sites that just need to splice one instruction into a sequence.
func single(i bytecode.Instruction) *asmblock.AssemblyBlock {
	b := asmblock.NewAnonymous()
	b.InsertAsm(i)
	return b
}
