// Package resolve implements C5: two-pass identity resolution over an
// ast.Node tree. Pass A (IdentityCreator) assigns every declaring
// occurrence its absolute identifier; Pass B (IdentitySetter) rewrites
// every use-occurrence to the identifier Pass A assigned, enforcing
// visibility and expanding import aliases along the way.
package resolve

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"jodin.dev/jodinc/internal/utils"
	"jodin.dev/jodinc/pkg/ast"
	"jodin.dev/jodinc/pkg/registry"
)

var log = logrus.WithField("component", "resolve")

// isDeclaring reports the node kinds Pass A registers an identifier for.
func isDeclaring(t ast.NodeType) bool {
	switch t {
	case ast.NodeFunctionDef, ast.NodeStructDef, ast.NodeVarDecl:
		return true
	default:
		return false
	}
}

// opensNamespace are the node kinds that push a namespace scope of their
// own name, so nested declarations resolve relative to them.
func opensNamespace(t ast.NodeType) bool {
	switch t {
	case ast.NodeFunctionDef, ast.NodeStructDef, ast.NodeNamespace:
		return true
	default:
		return false
	}
}

// IdentityCreator is Pass A: it walks the tree creating absolute
// identifiers for every declaration and tagging the declaring node with
// the result.
type IdentityCreator struct {
	Registry      *registry.Registry[*ast.Node]
	blockCounters utils.Stack[int]
}

// NewIdentityCreator builds a Pass A walker rooted at the given base
// namespace (pass "" for the default).
func NewIdentityCreator(base string) *IdentityCreator {
	c := &IdentityCreator{Registry: registry.New[*ast.Node](base)}
	c.blockCounters.Push(0)
	return c
}

// Run executes Pass A over root.
func (c *IdentityCreator) Run(root *ast.Node) error {
	return c.visit(root)
}

func (c *IdentityCreator) visit(n *ast.Node) error {
	if n.Type == ast.NodeNamespace {
		c.Registry.Resolver.PushNamespace(n.Name.This())
		defer c.Registry.Resolver.PopNamespace()
		return c.visitChildren(n)
	}

	if n.Type == ast.NodeBlock {
		return c.visitBlock(n)
	}

	if isDeclaring(n.Type) {
		vis := defaultVisibility(n)
		abs, err := c.Registry.InsertWithIdentifier(n.Name, vis, n)
		if err != nil {
			return err
		}
		n.SetTag(ast.ResolvedIdentityTag{Absolute: abs, Visibility: vis})
		log.WithField("identifier", abs.String()).Debug("created identifier")

		if opensNamespace(n.Type) {
			c.Registry.Resolver.PushNamespace(n.Name.This())
			defer c.Registry.Resolver.PopNamespace()
			c.blockCounters.Push(0)
			defer c.blockCounters.Pop()
		}

		// A function's parameters are declaring occurrences too, even
		// though they live in n.Params rather than as separate child
		// nodes — register them now, under the namespace just pushed, so
		// pass B resolves a use of the parameter inside the body the
		// same way it resolves any other local.
		if n.Type == ast.NodeFunctionDef {
			for _, param := range n.Params {
				if _, err := c.Registry.InsertWithIdentifier(param, registry.Protected, n); err != nil {
					return err
				}
			}
		}
		return c.visitChildren(n)
	}

	return c.visitChildren(n)
}

// visitBlock implements a per-scope block-numbering counter: entering a
// block captures (and then increments) the enclosing
// scope's current counter value as this block's number, then pushes a
// fresh counter of its own for any blocks nested inside it.
func (c *IdentityCreator) visitBlock(n *ast.Node) error {
	num, err := c.blockCounters.Pop()
	if err != nil {
		num = 0
	}
	c.blockCounters.Push(num + 1)

	n.SetTag(ast.BlockIdentifierTag{Number: num})
	blockName := fmt.Sprintf("{block %d}", num)

	c.Registry.Resolver.PushNamespace(blockName)
	defer c.Registry.Resolver.PopNamespace()
	c.blockCounters.Push(0)
	defer c.blockCounters.Pop()

	return c.visitChildren(n)
}

func (c *IdentityCreator) visitChildren(n *ast.Node) error {
	for _, child := range n.Children {
		if err := c.visit(child); err != nil {
			return err
		}
	}
	return nil
}

// defaultVisibility reads the node's explicit visibility qualifier if the
// front end attached one, defaulting to Protected — the reference
// implementation's documented default for unqualified declarations.
func defaultVisibility(n *ast.Node) registry.Visibility {
	if tag, err := ast.GetTagAs[ast.VisibilityTag](n, "visibility"); err == nil {
		return tag.Visibility
	}
	return registry.Protected
}
