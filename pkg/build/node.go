package build

import (
	"jodin.dev/jodinc/pkg/ast"
	"jodin.dev/jodinc/pkg/ident"
	"jodin.dev/jodinc/pkg/module"
)

// ImportRequest is one import declaration a file needs satisfied by some
// other file in the build, before its own resolution can succeed.
type ImportRequest struct {
	Path     ident.Identifier
	Wildcard bool // import path::* rather than a single name
}

// CompilationNode is one source file's place in the build graph: its
// parsed tree, the public surface it exposes (Outgoing), and the import
// targets it requires (Incoming). Both are discoverable without any
// other file existing yet, which is what makes graph construction
// possible before compilation order is known.
type CompilationNode struct {
	Path     string
	Tree     *ast.Node
	Outgoing []module.TranslationUnit
	Incoming []ImportRequest
}

// BuildNode computes a CompilationNode for tree, read from path. Outgoing
// comes from pass-A-only identity resolution (module.OutgoingSurface);
// Incoming comes from a plain walk over the tree's import declarations.
func BuildNode(path string, tree *ast.Node) (*CompilationNode, error) {
	outgoing, err := module.OutgoingSurface(tree)
	if err != nil {
		return nil, err
	}

	var incoming []ImportRequest
	ast.Walk(tree, func(n *ast.Node) {
		if n.Type == ast.NodeImport {
			incoming = append(incoming, ImportRequest{Path: n.ImportPath, Wildcard: n.Wildcard})
		}
	})

	return &CompilationNode{Path: path, Tree: tree, Outgoing: outgoing, Incoming: incoming}, nil
}

// satisfies reports whether some declaration in outgoing answers req —
// an exact name match, or (for a wildcard import of a namespace) req's
// path being a prefix of the declaration's absolute path.
func satisfies(req ImportRequest, outgoing []module.TranslationUnit) bool {
	for _, u := range outgoing {
		if req.Wildcard {
			if req.Path.IsPrefixOf(u.Name) {
				return true
			}
			continue
		}
		if req.Path.Equal(u.Name) {
			return true
		}
	}
	return false
}
