package module

import (
	"jodin.dev/jodinc/pkg/ast"
	"jodin.dev/jodinc/pkg/registry"
	"jodin.dev/jodinc/pkg/types"
	"jodin.dev/jodinc/pkg/typeenv"
)

// buildTypeEnvironment registers every struct this file declares as a
// typeenv.JodinType, so that C7's per-member compile step can validate the
// declared types it depends on (field types, parameters, return types)
// actually resolve before bytecode is ever emitted. This is the C5 -> C6
// handoff: module splitting has already partitioned the resolved tree, and
// every declaring occurrence already carries its ResolvedIdentityTag.
//
// The minimal front end's type syntax (pkg/parsing's pType token) carries
// no qualified-path resolution of its own — a field or parameter written as
// "Point" is always the bare local name, never "shapes::Point" — so structs
// are keyed here by their local name rather than their full absolute path.
// A fuller front end would resolve a type reference the same way Pass B
// resolves a value reference (searching the use-list, then the surrounding
// namespaces); until one exists this stays a flat, local-name keyed
// environment.
func buildTypeEnvironment(modules []Module) (*typeenv.TypeEnvironment, error) {
	env := typeenv.New()
	for _, mod := range modules {
		for _, member := range mod.Objects() {
			if member.Type != ast.NodeStructDef {
				continue
			}
			fields := make([]types.Field[types.IntermediateType], 0, len(member.Children))
			for _, f := range member.Children {
				fields = append(fields, types.NewField(registry.Public.String(), f.DeclaredType, f.Name))
			}
			jt := &typeenv.JodinType{ID: member.Name, Kind: typeenv.KindStruct, Fields: fields}
			if err := env.Add(jt); err != nil {
				return nil, err
			}
		}
	}
	return env, nil
}

// resolveMemberTypes resolves every type a function or struct member
// declares against env, attaching the result as an ast.TypeTag so a later
// pass (or a test) can inspect it without re-walking the environment.
// Struct fields are resolved transitively as part of resolving the
// struct's own type; function parameters and the return type are resolved
// individually since there is no separate AST node per parameter to tag.
func resolveMemberTypes(env *typeenv.TypeEnvironment, member *ast.Node) error {
	switch member.Type {
	case ast.NodeStructDef:
		resolved, err := env.ResolveType(types.FromSpecifier(types.IdSpecifier(member.Name)))
		if err != nil {
			return err
		}
		member.SetTag(ast.TypeTag{Resolved: resolved})

	case ast.NodeFunctionDef:
		for _, pt := range member.ParamTypes {
			if _, err := env.ResolveType(pt); err != nil {
				return err
			}
		}
		resolved, err := env.ResolveType(member.DeclaredType)
		if err != nil {
			return err
		}
		member.SetTag(ast.TypeTag{Resolved: resolved})
	}
	return nil
}
