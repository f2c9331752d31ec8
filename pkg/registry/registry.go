package registry

import (
	"jodin.dev/jodinc/pkg/ident"
	"jodin.dev/jodinc/pkg/jerr"
)

// Entry pairs a stored value with the visibility and namespace it was
// declared under, letting Registry answer visibility queries without the
// caller having to track that separately.
type Entry[T any] struct {
	Value      T
	Visibility Visibility
	DeclaredIn ident.Identifier
}

// Registry associates absolute identifiers with values of type T, using an
// embedded Resolver to turn declaring/use occurrences into absolute paths.
type Registry[T any] struct {
	Resolver *ident.Resolver
	entries  map[string]Entry[T]
}

// New builds an empty registry rooted at the given base namespace (pass ""
// for the default).
func New[T any](base string) *Registry[T] {
	return &Registry[T]{
		Resolver: ident.NewResolver(base),
		entries:  make(map[string]Entry[T]),
	}
}

// InsertWithIdentifier resolves relative against the registry's current
// namespace and stores value there, failing if that absolute path is
// already occupied. The identifier returned (and the key values are
// stored under) is CreateAbsolutePath's base-stripped form, exactly what
// a later successful Resolve of the same path produces.
func (r *Registry[T]) InsertWithIdentifier(relative ident.Identifier, vis Visibility, value T) (ident.Identifier, error) {
	abs := r.Resolver.CreateAbsolutePath(relative)
	key := abs.String()
	if _, exists := r.entries[key]; exists {
		return ident.Identifier{}, jerr.ErrIdentifierAlreadyExists.New(key)
	}
	r.entries[key] = Entry[T]{Value: value, Visibility: vis, DeclaredIn: r.Resolver.ScopePath()}
	return abs, nil
}

// InsertAbsolute stores value directly under abs, bypassing the resolver
// (abs is already fully resolved — this is how an earlier compilation
// unit's public declarations get seeded into a later file's registry
// before that file's own pass A runs).
func (r *Registry[T]) InsertAbsolute(abs ident.Identifier, vis Visibility, value T) error {
	key := abs.String()
	if _, exists := r.entries[key]; exists {
		return jerr.ErrIdentifierAlreadyExists.New(key)
	}
	// The path must exist in the resolver's namespace tree too, or no
	// ResolvePath call could ever produce it. DeclaredIn stays in the
	// base-stripped space every other entry (and a use site's ScopePath)
	// renders in, so visibility prefix checks compare like with like.
	r.Resolver.AddAbsolute(abs)
	declaredIn, ok := abs.Parent()
	if !ok {
		declaredIn = ident.Identifier{}
	}
	r.entries[key] = Entry[T]{Value: value, Visibility: vis, DeclaredIn: declaredIn}
	return nil
}

// Get returns the entry stored at the given absolute identifier.
func (r *Registry[T]) Get(abs ident.Identifier) (Entry[T], bool) {
	e, ok := r.entries[abs.String()]
	return e, ok
}

// Resolve turns a use-occurrence into its stored entry, honoring visibility
// rules against useSite.
func (r *Registry[T]) Resolve(path ident.Identifier, useSite ident.Identifier) (ident.Identifier, Entry[T], error) {
	abs, err := r.Resolver.ResolvePath(path)
	if err != nil {
		var zero Entry[T]
		return ident.Identifier{}, zero, err
	}
	entry, ok := r.Get(abs)
	if !ok {
		var zero Entry[T]
		return ident.Identifier{}, zero, jerr.ErrIdentifierDoesNotExist.New(abs.String())
	}
	if !VisibleFrom(entry.Visibility, entry.DeclaredIn, useSite) {
		var zero Entry[T]
		return ident.Identifier{}, zero, jerr.ErrVisibilityViolation.New(abs.String(), entry.Visibility.String(), useSite.String())
	}
	return abs, entry, nil
}

// Ids returns every absolute identifier currently registered.
func (r *Registry[T]) Ids() []ident.Identifier {
	out := make([]ident.Identifier, 0, len(r.entries))
	for k := range r.entries {
		out = append(out, ident.FromString(k))
	}
	return out
}

// Len returns the number of registered entries.
func (r *Registry[T]) Len() int {
	return len(r.entries)
}
