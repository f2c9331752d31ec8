package ident

import (
	"sort"

	"jodin.dev/jodinc/pkg/jerr"
)

// defaultBase is the synthetic root namespace every resolved path is
// ultimately rooted under. The braces keep it from colliding with any
// name a source file could legally declare.
const defaultBase = "{base}"

// Resolver turns relative or partially-qualified identifier references
// into fully resolved absolute identifiers, tracking a namespace cursor
// and a set of "using" namespaces the way a compiler's current scope and
// its active `use` imports do.
type Resolver struct {
	tree            *NamespaceTree[struct{}]
	baseNamespace   Identifier
	currentNamespace Identifier
	usingNamespaces []Identifier
}

// NewResolver builds a resolver rooted at the given base namespace name
// (pass "" to use the default synthetic base).
func NewResolver(base string) *Resolver {
	if base == "" {
		base = defaultBase
	}
	baseID := New(base)
	tree := NewNamespaceTree[struct{}]()
	tree.AddNamespace(baseID)
	return &Resolver{
		tree:             tree,
		baseNamespace:    baseID,
		currentNamespace: baseID,
	}
}

// PushNamespace descends the cursor into a child namespace, registering it
// if it didn't already exist.
func (r *Resolver) PushNamespace(component string) {
	r.currentNamespace = r.currentNamespace.Join(New(component))
	r.tree.AddNamespace(r.currentNamespace)
}

// PopNamespace moves the cursor back up to the current namespace's parent.
// It is a no-op at the base namespace.
func (r *Resolver) PopNamespace() {
	if r.currentNamespace.Equal(r.baseNamespace) {
		return
	}
	if parent, ok := r.currentNamespace.Parent(); ok {
		r.currentNamespace = parent
	}
}

// CurrentNamespace returns the resolver's cursor.
func (r *Resolver) CurrentNamespace() Identifier {
	return r.currentNamespace
}

// ScopePath returns the cursor relative to the base namespace — the same
// space CreateAbsolutePath and ResolvePath render results in, and the one
// visibility rules compare against. At the top level it is empty.
func (r *Resolver) ScopePath() Identifier {
	stripped, ok := r.currentNamespace.StripHighestParent()
	if !ok {
		return Identifier{}
	}
	return stripped
}

// UseNamespace adds id to the set of namespaces searched during relative
// resolution (the effect of a `use`/`import` declaration). id is
// interpreted as absolute under the resolver's base namespace, the same
// space every declared identifier lives in.
func (r *Resolver) UseNamespace(id Identifier) {
	r.usingNamespaces = append(r.usingNamespaces, r.baseNamespace.Join(id))
}

// StopUsing removes id from the using set, if present.
func (r *Resolver) StopUsing(id Identifier) {
	target := r.baseNamespace.Join(id)
	for i, u := range r.usingNamespaces {
		if u.Equal(target) {
			r.usingNamespaces = append(r.usingNamespaces[:i], r.usingNamespaces[i+1:]...)
			return
		}
	}
}

// AddAbsolute registers an already-resolved path (relative to the base
// namespace) in the namespace tree, so later ResolvePath calls can find
// it. This is how declarations from other compilation units are made
// resolvable without re-walking their trees.
func (r *Resolver) AddAbsolute(id Identifier) {
	r.tree.AddNamespace(r.baseNamespace.Join(id))
}

// CreateAbsolutePath declares relative as existing under the resolver's
// current namespace and returns its absolute form, stripped of the base
// namespace the same way a successful ResolvePath strips it — the two
// must agree on the canonical rendering or an inserted path could never
// be resolved back. Use for declaring occurrences (C5 pass A), as
// opposed to ResolvePath's use-occurrences.
func (r *Resolver) CreateAbsolutePath(relative Identifier) Identifier {
	abs := r.currentNamespace.Join(relative)
	r.tree.AddNamespace(abs)
	stripped, ok := abs.StripHighestParent()
	if !ok {
		return abs
	}
	return stripped
}

// ResolvePath resolves a use-occurrence of path against, in order: the
// base namespace directly, the current namespace and its ancestors, and
// each used namespace — deduplicating the candidates before checking how
// many distinct matches remain.
func (r *Resolver) ResolvePath(path Identifier) (Identifier, error) {
	seen := make(map[string]Identifier)

	consider := func(candidate Identifier) {
		if r.tree.Contains(candidate) {
			seen[candidate.String()] = candidate
		}
	}

	// absolute-under-base
	consider(r.baseNamespace.Join(path))
	// relative-to-cursor (and its ancestors)
	for _, c := range r.tree.GetNamespaces(r.currentNamespace, path) {
		consider(c)
	}
	// each used namespace
	for _, using := range r.usingNamespaces {
		consider(using.Join(path))
	}

	switch len(seen) {
	case 0:
		return Identifier{}, jerr.ErrIdentifierDoesNotExist.New(path.String())
	case 1:
		for _, v := range seen {
			stripped, ok := v.StripHighestParent()
			if !ok {
				return v, nil
			}
			return stripped, nil
		}
		panic("unreachable")
	default:
		found := make([]string, 0, len(seen))
		for _, v := range seen {
			found = append(found, v.String())
		}
		sort.Strings(found)
		return Identifier{}, jerr.ErrAmbiguousIdentifier.New(path.String(), found)
	}
}
