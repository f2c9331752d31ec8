package resolve

import (
	"fmt"

	"jodin.dev/jodinc/pkg/ast"
	"jodin.dev/jodinc/pkg/ident"
	"jodin.dev/jodinc/pkg/registry"
)

// IdentitySetter is Pass B: it re-walks the tree (mirroring Pass A's
// namespace push/pop so the cursor lines up the same way at every node),
// resolving every use-occurrence against the identifiers Pass A created,
// enforcing visibility, and expanding import declarations into either a
// `using` namespace (wildcard imports) or a direct alias registration
// (single-name imports with an alias).
type IdentitySetter struct {
	Registry *registry.Registry[*ast.Node]
}

// NewIdentitySetter builds a Pass B walker over the registry Pass A
// populated.
func NewIdentitySetter(reg *registry.Registry[*ast.Node]) *IdentitySetter {
	return &IdentitySetter{Registry: reg}
}

// Run executes Pass B over root.
func (s *IdentitySetter) Run(root *ast.Node) error {
	return s.visit(root)
}

func (s *IdentitySetter) visit(n *ast.Node) error {
	switch n.Type {
	case ast.NodeNamespace:
		s.Registry.Resolver.PushNamespace(n.Name.This())
		defer s.Registry.Resolver.PopNamespace()
		return s.visitChildren(n)

	case ast.NodeImport:
		return s.handleImport(n)

	case ast.NodeIdentifierExpr, ast.NodeFunctionCall:
		if err := s.resolveUse(n); err != nil {
			return err
		}
		return s.visitChildren(n)

	default:
		if isDeclaring(n.Type) {
			if opensNamespace(n.Type) {
				s.Registry.Resolver.PushNamespace(n.Name.This())
				defer s.Registry.Resolver.PopNamespace()
			}
			return s.visitChildren(n)
		}
		if n.Type == ast.NodeBlock {
			blockTag, err := ast.GetTagAs[ast.BlockIdentifierTag](n, "block_identifier")
			name := "{block 0}"
			if err == nil {
				name = fmt.Sprintf("{block %d}", blockTag.Number)
			}
			s.Registry.Resolver.PushNamespace(name)
			defer s.Registry.Resolver.PopNamespace()
		}
		return s.visitChildren(n)
	}
}

func (s *IdentitySetter) resolveUse(n *ast.Node) error {
	useSite := s.Registry.Resolver.ScopePath()
	abs, entry, err := s.Registry.Resolve(n.Name, useSite)
	if err != nil {
		return err
	}
	n.SetTag(ast.ResolvedIdentityTag{Absolute: abs, Visibility: entry.Visibility})
	return nil
}

// handleImport expands an import declaration. A wildcard import
// (`import a::b::*`) adds b to the set of namespaces searched during
// relative resolution. A direct import, optionally aliased
// (`import a::b::c as d`), registers the alias as pointing at the same
// declaration so later code can refer to it by either name.
func (s *IdentitySetter) handleImport(n *ast.Node) error {
	if n.Wildcard {
		s.Registry.Resolver.UseNamespace(n.ImportPath)
		return nil
	}

	abs, entry, err := s.Registry.Resolve(n.ImportPath, s.Registry.Resolver.ScopePath())
	if err != nil {
		return err
	}

	alias := n.ImportAlias
	if alias.IsEmpty() {
		alias = ident.New(abs.This())
	}
	if _, err := s.Registry.InsertWithIdentifier(alias, entry.Visibility, entry.Value); err != nil {
		return err
	}
	return nil
}

func (s *IdentitySetter) visitChildren(n *ast.Node) error {
	for _, child := range n.Children {
		if err := s.visit(child); err != nil {
			return err
		}
	}
	return nil
}

