package module

import (
	"jodin.dev/jodinc/pkg/ast"
	"jodin.dev/jodinc/pkg/resolve"
)

// OutgoingSurface runs identity creation (pass A only — no preload is
// needed and none of its cross-file uses have to resolve yet) over tree
// and returns the same outgoing TranslationUnit set CompileFile would
// compute, without doing any codegen. pkg/build uses this during
// dependency-graph construction, before a file's place in the build
// order — and therefore what's safe to preload for it — is known.
func OutgoingSurface(tree *ast.Node) ([]TranslationUnit, error) {
	creator := resolve.NewIdentityCreator("")
	if err := creator.Run(tree); err != nil {
		return nil, err
	}

	var out []TranslationUnit
	for _, mod := range SplitByModule(tree) {
		for _, member := range mod.Objects() {
			if unit, ok := declarationUnit(member); ok {
				out = append(out, unit)
			}
		}
		for _, decl := range mod.Declarations() {
			if !decl.Extern {
				continue
			}
			tag, err := ast.GetTagAs[ast.ResolvedIdentityTag](decl, "resolved_identity")
			if err != nil {
				return nil, err
			}
			out = append(out, TranslationUnit{Name: tag.Absolute, Type: decl.DeclaredType, Visibility: tag.Visibility})
		}
	}
	return out, nil
}
