package module

import (
	"path/filepath"

	"jodin.dev/jodinc/pkg/ast"
	"jodin.dev/jodinc/pkg/asmblock"
	"jodin.dev/jodinc/pkg/bytecode"
	"jodin.dev/jodinc/pkg/codegen"
	"jodin.dev/jodinc/pkg/jerr"
)

// staticLabel is the module's static initializer's well-known entry
// point, used verbatim (public labels aren't subject to the sigil
// pipeline — see pkg/asmblock).
const staticLabel = "@@STATIC"

// BuildStaticObject compiles a module's top-level variable declarations
// into its static initializer object: every non-extern declaration with
// an initializer compiles its initializer expression and stores it under
// its resolved symbol name, in source order; an extern declaration
// contributes a TranslationUnit instead, making its name and type visible
// to files compiled after this one. A non-extern declaration with no
// initializer is rejected — static storage has nothing to default-init
// it with.
func BuildStaticObject(mod Module, baseDir string) (*CompilationObject, error) {
	compiler := codegen.New()
	block := asmblock.NewAnonymous()
	block.InsertAsm(bytecode.PublicLabel{Name: staticLabel})

	var units []TranslationUnit
	for _, decl := range mod.Declarations() {
		tag, err := ast.GetTagAs[ast.ResolvedIdentityTag](decl, "resolved_identity")
		if err != nil {
			return nil, err
		}

		if decl.Extern {
			units = append(units, TranslationUnit{
				Name:       tag.Absolute,
				Type:       decl.DeclaredType,
				Visibility: tag.Visibility,
			})
			continue
		}

		if len(decl.Children) == 0 {
			return nil, jerr.ErrUninitializedGlobal.New(tag.Absolute.String())
		}
		initBlock, err := compiler.CompileExpression(decl.Children[0])
		if err != nil {
			return nil, err
		}
		block.InsertBlock(initBlock)
		block.InsertAsm(bytecode.SetSymbol{Name: tag.Absolute.String()})
	}

	block.InsertAsm(bytecode.Push{Value: "0"})
	block.InsertAsm(bytecode.Return{})

	flat, err := block.Normalize()
	if err != nil {
		return nil, err
	}
	instrs := flat.Instructions()
	lines := make([]string, len(instrs))
	for i, instr := range instrs {
		lines[i] = instr.Encode()
	}

	path := filepath.Join(mod.Dir(baseDir), "static"+jobjExtension)
	return New(path, mod.Identifier, units, lines), nil
}
