package resolve

import (
	"jodin.dev/jodinc/pkg/ast"
	"jodin.dev/jodinc/pkg/ident"
	"jodin.dev/jodinc/pkg/registry"
)

// Result bundles the two passes' shared registry for downstream
// consumers (C6 type resolution, C7 codegen).
type Result struct {
	Registry *IdentityCreator
}

// PreloadSymbol is a declaration from an already-compiled file, seeded
// into a later file's registry before its own pass A runs so that file
// can resolve uses of it (the incremental build's cross-file visibility
// mechanism — see pkg/build).
type PreloadSymbol struct {
	Absolute   ident.Identifier
	Visibility registry.Visibility
}

// Resolve runs both passes over root in order and returns the populated
// identity creator (whose Registry field downstream passes read from).
func Resolve(root *ast.Node, base string) (*IdentityCreator, error) {
	return ResolveWithPreload(root, base, nil)
}

// ResolveWithPreload behaves like Resolve, but first seeds the registry
// with preload's symbols (each under its own already-absolute path) so
// pass B can resolve uses of them as if they'd been declared in this
// file. The node value stored for a preloaded symbol is always nil —
// nothing in either pass dereferences Entry.Value for a use-occurrence,
// only its Visibility.
func ResolveWithPreload(root *ast.Node, base string, preload []PreloadSymbol) (*IdentityCreator, error) {
	passA := NewIdentityCreator(base)
	for _, sym := range preload {
		if err := passA.Registry.InsertAbsolute(sym.Absolute, sym.Visibility, nil); err != nil {
			return nil, err
		}
	}
	if err := passA.Run(root); err != nil {
		return nil, err
	}

	passB := NewIdentitySetter(passA.Registry)
	if err := passB.Run(root); err != nil {
		return nil, err
	}

	return passA, nil
}
