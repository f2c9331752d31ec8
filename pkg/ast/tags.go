package ast

import (
	"fmt"

	"github.com/google/uuid"
	"jodin.dev/jodinc/pkg/ident"
	"jodin.dev/jodinc/pkg/jerr"
	"jodin.dev/jodinc/pkg/registry"
)

// Tag is open-extension metadata a pass can attach to a node — identity
// resolution results, block numbering, type annotations — without the
// Node struct itself needing a field for every pass that will ever exist.
type Tag interface {
	TagKind() string
}

// multiTag is implemented by tag types that allow more than one instance
// per node; everything else is a singleton.
type multiTag interface {
	MaxOfKind() int
}

// maxOfKind returns the per-kind upper bound on how many tags of tag's
// kind one node may carry.
func maxOfKind(tag Tag) int {
	if m, ok := tag.(multiTag); ok {
		return m.MaxOfKind()
	}
	return 1
}

// AddTag attaches tag to n, failing once the node already carries its
// kind's maximum number of tags.
func (n *Node) AddTag(tag Tag) error {
	count := 0
	for _, existing := range n.Tags {
		if existing.TagKind() == tag.TagKind() {
			count++
		}
	}
	if count >= maxOfKind(tag) {
		return jerr.ErrMaxNumOfTag.New(tag.TagKind())
	}
	n.Tags = append(n.Tags, tag)
	return nil
}

// SetTag attaches tag to n, replacing an existing tag of the same kind —
// the idempotent form a pass that may legitimately re-visit an
// already-tagged tree uses (re-running identity creation over a tree whose
// outgoing surface was probed earlier is the normal case, not an error).
func (n *Node) SetTag(tag Tag) {
	for i, existing := range n.Tags {
		if existing.TagKind() == tag.TagKind() {
			n.Tags[i] = tag
			return
		}
	}
	n.Tags = append(n.Tags, tag)
}

// GetTag returns the tag of the given kind, if present.
func (n *Node) GetTag(kind string) (Tag, bool) {
	for _, t := range n.Tags {
		if t.TagKind() == kind {
			return t, true
		}
	}
	return nil, false
}

// GetTagAs fetches a node's tag of the given kind and downcasts it to T,
// failing with a recoverable error on either a missing tag or a kind/type
// mismatch so callers can probe for optional metadata.
func GetTagAs[T Tag](n *Node, kind string) (T, error) {
	var zero T
	raw, ok := n.GetTag(kind)
	if !ok {
		return zero, jerr.ErrTagNotPresent.New(kind)
	}
	cast, ok := raw.(T)
	if !ok {
		return zero, jerr.ErrTagCastError.New(kind, fmt.Sprintf("%T", zero))
	}
	return cast, nil
}

// ResolvedIdentityTag records the fully resolved absolute identifier for a
// declaring occurrence, attached by C5 pass A (IdentifierCreator analog).
type ResolvedIdentityTag struct {
	Absolute   ident.Identifier
	Visibility registry.Visibility
}

func (ResolvedIdentityTag) TagKind() string { return "resolved_identity" }

// VisibilityTag carries an explicit visibility qualifier from the surface
// syntax (`pub`/`private`). Declarations without one default to Protected
// during identity creation.
type VisibilityTag struct {
	Visibility registry.Visibility
}

func (VisibilityTag) TagKind() string { return "visibility" }

// BlockIdentifierTag numbers an anonymous block within its enclosing scope
// (e.g. the 2nd `{ ... }` inside function `foo` becomes `foo::{block 1}`),
// so two blocks in the same scope never collide as namespaces.
type BlockIdentifierTag struct {
	Number int
}

func (BlockIdentifierTag) TagKind() string { return "block_identifier" }

// NoMangleTag marks a declaration whose name must survive to the bytecode
// layer unchanged (an extern/native entry point).
type NoMangleTag struct{}

func (NoMangleTag) TagKind() string { return "no_mangle" }

// TypeTag attaches a resolved type to an expression or declaration node
// once C6 type resolution has run.
type TypeTag struct {
	Resolved interface{} // holds a typeenv.ResolvedType; kept opaque here to avoid an ast<->typeenv import cycle
}

func (TypeTag) TagKind() string { return "resolved_type" }

// NodeAddress is a stable cross-reference to another node in the same
// tree: the path of child indices from the root, plus a random checksum
// minted when the address is taken and stamped onto the addressed node,
// so a stale address (one computed before a later pass reshaped the tree)
// is detected even when the path still resolves to *some* node.
type NodeAddress struct {
	Path     []int
	Checksum uuid.UUID
}

// addressChecksumTag is the addressed node's half of the checksum
// handshake.
type addressChecksumTag struct {
	Checksum uuid.UUID
}

func (addressChecksumTag) TagKind() string { return "address_checksum" }

// AddressOf takes the address of the node at path under root, minting a
// fresh checksum and stamping it onto the addressed node. Fails if path
// doesn't resolve.
func AddressOf(root *Node, path []int) (NodeAddress, error) {
	target, ok := walkPath(root, path)
	if !ok {
		return NodeAddress{}, jerr.ErrStaleNodeAddress.New()
	}
	cp := make([]int, len(path))
	copy(cp, path)
	addr := NodeAddress{Path: cp, Checksum: uuid.New()}
	target.SetTag(addressChecksumTag{Checksum: addr.Checksum})
	return addr, nil
}

// Resolve walks root down the address's path and validates the checksum
// stamped when the address was taken. A path that no longer resolves, or
// a node whose checksum no longer matches, fails with ErrStaleNodeAddress.
func (a NodeAddress) Resolve(root *Node) (*Node, error) {
	cur, ok := walkPath(root, a.Path)
	if !ok {
		return nil, jerr.ErrStaleNodeAddress.New()
	}
	stamp, err := GetTagAs[addressChecksumTag](cur, "address_checksum")
	if err != nil || stamp.Checksum != a.Checksum {
		return nil, jerr.ErrStaleNodeAddress.New()
	}
	return cur, nil
}

func walkPath(root *Node, path []int) (*Node, bool) {
	cur := root
	for _, idx := range path {
		if cur == nil || idx < 0 || idx >= len(cur.Children) {
			return nil, false
		}
		cur = cur.Children[idx]
	}
	return cur, cur != nil
}
