package module

import (
	"path/filepath"

	"jodin.dev/jodinc/pkg/ast"
	"jodin.dev/jodinc/pkg/codegen"
)

// jobjExtension is the per-object file extension: one function, struct,
// or module static initializer per file.
const jobjExtension = ".jobj"

// BuildObject compiles a single function or struct member into its own
// CompilationObject. A function's body is compiled through pkg/codegen
// and normalized to a flat instruction stream; a struct contributes no
// bytecode of its own (its shape lives in the type environment, C6) but
// still claims a path, so every exported name has exactly one object on
// disk. Each object carries its own declaration's TranslationUnit, so a
// consumer reading the object off an object path learns the signature
// without needing the module's static object too.
func BuildObject(n *ast.Node, mod Module, baseDir string) (*CompilationObject, error) {
	tag, err := ast.GetTagAs[ast.ResolvedIdentityTag](n, "resolved_identity")
	if err != nil {
		return nil, err
	}
	path := filepath.Join(mod.Dir(baseDir), tag.Absolute.This()+jobjExtension)

	var units []TranslationUnit
	if unit, ok := declarationUnit(n); ok {
		units = append(units, unit)
	}

	switch n.Type {
	case ast.NodeFunctionDef:
		compiler := codegen.New()
		block, err := compiler.CompileFunction(n)
		if err != nil {
			return nil, err
		}
		flat, err := block.Normalize()
		if err != nil {
			return nil, err
		}
		instrs := flat.Instructions()
		lines := make([]string, len(instrs))
		for i, instr := range instrs {
			lines[i] = instr.Encode()
		}
		return New(path, mod.Identifier, units, lines), nil

	case ast.NodeStructDef:
		return New(path, mod.Identifier, units, nil), nil

	default:
		return nil, nil
	}
}
