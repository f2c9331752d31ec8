package module

import (
	"path/filepath"

	"jodin.dev/jodinc/pkg/ast"
	"jodin.dev/jodinc/pkg/ident"
)

// Module is one namespace's worth of declarations, gathered from wherever
// in the tree they were written under an `ast.NodeNamespace` (or the
// top-level, for the anonymous root module).
type Module struct {
	Identifier ident.Identifier
	Members    []*ast.Node
}

// Objects returns the module's individually compilable members: function
// and struct definitions.
func (m Module) Objects() []*ast.Node {
	var out []*ast.Node
	for _, n := range m.Members {
		if n.Type == ast.NodeFunctionDef || n.Type == ast.NodeStructDef {
			out = append(out, n)
		}
	}
	return out
}

// Declarations returns the module's top-level variable declarations —
// not individually compilable, they instead feed the module's static
// initializer object (see BuildStaticObject).
func (m Module) Declarations() []*ast.Node {
	var out []*ast.Node
	for _, n := range m.Members {
		if n.Type == ast.NodeVarDecl {
			out = append(out, n)
		}
	}
	return out
}

// Dir returns the directory this module's objects are written under:
// base joined with the module identifier's components.
func (m Module) Dir(base string) string {
	return filepath.Join(append([]string{base}, m.Identifier.Components()...)...)
}

// SplitByModule partitions a resolved AST into Modules, one per
// `namespace { ... }` block encountered (recursively — a namespace
// nested inside another contributes its own Module, named by its full
// joined path) plus one for whatever is left at the top level. The
// top-level (anonymous) module is always first.
func SplitByModule(tree *ast.Node) []Module {
	root := Module{Identifier: ident.Identifier{}}
	rest := splitByModule(tree, &root, ident.Identifier{})
	return append([]Module{root}, rest...)
}

func splitByModule(tree *ast.Node, current *Module, prefix ident.Identifier) []Module {
	switch tree.Type {
	case ast.NodeNamespace:
		absolute := prefix.Join(ident.New(tree.Name.This()))
		child := Module{Identifier: absolute}
		var out []Module
		for _, c := range tree.Children {
			out = append(out, splitByModule(c, &child, absolute)...)
		}
		return append([]Module{child}, out...)

	case ast.NodeTopLevel:
		var out []Module
		for _, c := range tree.Children {
			out = append(out, splitByModule(c, current, prefix)...)
		}
		return out

	case ast.NodeFunctionDef, ast.NodeStructDef, ast.NodeVarDecl:
		current.Members = append(current.Members, tree)
		return nil

	default:
		return nil
	}
}
