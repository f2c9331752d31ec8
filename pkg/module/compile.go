package module

import (
	"jodin.dev/jodinc/pkg/ast"
	"jodin.dev/jodinc/pkg/types"
)

// CompileFile splits tree into its modules and compiles every member of
// each into a CompilationObject (functions and structs individually,
// plus one static initializer per module), writing paths rooted at
// baseDir. It also returns this file's outgoing surface: a
// TranslationUnit for every top-level declaration (function, struct, or
// extern variable) the file exposes, which an incremental build feeds to
// later files so their resolution can see this one's declarations (see
// pkg/build).
func CompileFile(tree *ast.Node, baseDir string) ([]*CompilationObject, []TranslationUnit, error) {
	modules := SplitByModule(tree)

	env, err := buildTypeEnvironment(modules)
	if err != nil {
		return nil, nil, err
	}
	defer env.Close()

	var objects []*CompilationObject
	var outgoing []TranslationUnit

	for _, mod := range modules {
		for _, member := range mod.Objects() {
			if err := resolveMemberTypes(env, member); err != nil {
				return nil, nil, err
			}

			obj, err := BuildObject(member, mod, baseDir)
			if err != nil {
				return nil, nil, err
			}
			if obj != nil {
				objects = append(objects, obj)
			}
			if unit, ok := declarationUnit(member); ok {
				outgoing = append(outgoing, unit)
			}
		}

		staticObj, err := BuildStaticObject(mod, baseDir)
		if err != nil {
			return nil, nil, err
		}
		objects = append(objects, staticObj)
		outgoing = append(outgoing, staticObj.Units...)
	}

	return objects, outgoing, nil
}

// declarationUnit builds the TranslationUnit a function or struct
// definition itself contributes to its file's outgoing surface.
func declarationUnit(n *ast.Node) (TranslationUnit, bool) {
	tag, err := ast.GetTagAs[ast.ResolvedIdentityTag](n, "resolved_identity")
	if err != nil {
		return TranslationUnit{}, false
	}

	switch n.Type {
	case ast.NodeFunctionDef:
		jtype := n.DeclaredType.WithFunctionParams(n.ParamTypes...)
		return TranslationUnit{Name: tag.Absolute, Type: jtype, Visibility: tag.Visibility}, true
	case ast.NodeStructDef:
		jtype := types.FromSpecifier(types.IdSpecifier(tag.Absolute))
		return TranslationUnit{Name: tag.Absolute, Type: jtype, Visibility: tag.Visibility}, true
	default:
		return TranslationUnit{}, false
	}
}
