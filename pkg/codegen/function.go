package codegen

import (
	"jodin.dev/jodinc/pkg/ast"
	"jodin.dev/jodinc/pkg/asmblock"
	"jodin.dev/jodinc/pkg/bytecode"
	"jodin.dev/jodinc/pkg/types"
)

// CompileFunction produces a named AssemblyBlock for fn: a public label
// at the function's resolved id, a temporary params marker, a SetVar per
// parameter (bound in declaration order), the body, and an automatic
// `Push(Empty); Return` tail for functions with no declared return value
// that don't already end in one.
func (c *Compiler) CompileFunction(fn *ast.Node) (*asmblock.AssemblyBlock, error) {
	tag, err := ast.GetTagAs[ast.ResolvedIdentityTag](fn, "resolved_identity")
	if err != nil {
		return nil, err
	}
	name := tag.Absolute.String()
	log.WithField("function", name).Debug("compiling function")

	block := asmblock.NewNamed(name)
	block.InsertAsm(bytecode.PublicLabel{Name: name})
	block.InsertAsm(bytecode.Label{Name: string(asmblock.RemoveLabelMarker) + "__func_params__"})

	for _, param := range fn.Params {
		slot := c.vars.Allocate(param.This())
		block.InsertAsm(bytecode.SetVar{Slot: slot})
	}

	block.InsertAsm(bytecode.Label{Name: string(asmblock.RelativeLabelMarker) + "__func_start__"})
	for _, stmt := range fn.Children {
		stmtBlock, err := c.CompileStatement(stmt)
		if err != nil {
			return nil, err
		}
		block.InsertBlock(stmtBlock)
	}
	block.InsertAsm(bytecode.Label{Name: string(asmblock.RelativeLabelMarker) + "__func_end__"})

	if isVoidReturn(fn.DeclaredType) {
		block.InsertAsm(bytecode.Push{Value: "empty"})
		block.InsertAsm(bytecode.Return{})
	}
	return block, nil
}

func isVoidReturn(t types.IntermediateType) bool {
	return len(t.Tails) == 0 && t.Specifier.Kind == types.SpecifierPrimitive && t.Specifier.Primitive == types.Void
}
