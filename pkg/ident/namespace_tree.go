package ident

import (
	"fmt"

	"github.com/kr/pretty"
)

// Namespaced is implemented by values that can be filed under a namespace
// node (declarations, visibility records, exported identifiers — whatever
// a Registry is parameterized over).
type Namespaced interface {
	NamespaceID() Identifier
}

// node is a single rose-tree vertex: one path component plus whatever
// values were registered directly under this exact namespace.
type node[T any] struct {
	component string
	children  map[string]*node[T]
	values    []T
}

func newNode[T any](component string) *node[T] {
	return &node[T]{component: component, children: make(map[string]*node[T])}
}

// NamespaceTree is a rose tree keyed by Identifier path, the structure a
// Registry uses to know which absolute namespaces actually exist.
type NamespaceTree[T any] struct {
	root *node[T]
}

// NewNamespaceTree builds an empty tree.
func NewNamespaceTree[T any]() *NamespaceTree[T] {
	return &NamespaceTree[T]{root: newNode[T]("")}
}

// AddNamespace ensures id (and every parent namespace along the way) exists
// as a node in the tree, creating missing ones as it walks down.
func (t *NamespaceTree[T]) AddNamespace(id Identifier) {
	cur := t.root
	for _, comp := range id.Components() {
		child, ok := cur.children[comp]
		if !ok {
			child = newNode[T](comp)
			cur.children[comp] = child
		}
		cur = child
	}
}

// getNode walks the absolute path id and returns its node, if present.
func (t *NamespaceTree[T]) getNode(id Identifier) (*node[T], bool) {
	cur := t.root
	for _, comp := range id.Components() {
		child, ok := cur.children[comp]
		if !ok {
			return nil, false
		}
		cur = child
	}
	return cur, true
}

// Contains reports whether id names an existing namespace node.
func (t *NamespaceTree[T]) Contains(id Identifier) bool {
	_, ok := t.getNode(id)
	return ok
}

// AddValue files value under id's namespace, creating the namespace (and
// any missing parents) first if needed.
func (t *NamespaceTree[T]) AddValue(id Identifier, value T) {
	t.AddNamespace(id)
	n, _ := t.getNode(id)
	n.values = append(n.values, value)
}

// ValuesAt returns the values registered directly at id's namespace.
func (t *NamespaceTree[T]) ValuesAt(id Identifier) []T {
	n, ok := t.getNode(id)
	if !ok {
		return nil
	}
	return n.values
}

// GetNamespaces returns every absolute namespace that could plausibly be
// meant by path when interpreted either as already-absolute, or as
// relative to cursor — the candidate set a resolver disambiguates from.
func (t *NamespaceTree[T]) GetNamespaces(cursor Identifier, path Identifier) []Identifier {
	seen := make(map[string]bool)
	var out []Identifier

	add := func(candidate Identifier) {
		key := candidate.String()
		if seen[key] {
			return
		}
		if t.Contains(candidate) {
			seen[key] = true
			out = append(out, candidate)
		}
	}

	// interpretation 1: path is already absolute
	add(path)

	// interpretation 2: path is relative to the cursor, walking upward
	// through every ancestor of cursor (so a name can resolve from an
	// enclosing namespace without being re-imported).
	anc := cursor
	for {
		add(anc.Join(path))
		parent, ok := anc.Parent()
		if !ok {
			break
		}
		anc = parent
	}

	return out
}

// Debug renders the tree for diagnostics, replacing the reference
// implementation's tree-drawing Debug impl with a structural dump.
func (t *NamespaceTree[T]) Debug() string {
	return fmt.Sprintf("%# v", pretty.Formatter(t.root))
}
