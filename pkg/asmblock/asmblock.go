// Package asmblock implements C4: nestable blocks of bytecode instructions
// with namespace-scoped label normalization, grounded on the reference
// implementation's assembly-block label sigil scheme.
package asmblock

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"jodin.dev/jodinc/pkg/bytecode"
	"jodin.dev/jodinc/pkg/jerr"
)

// Label sigils. A label name in a Label/Goto/IfGoto instruction may carry
// one of these as its first byte, selecting how normalization rewrites it.
const (
	// RelativeLabelMarker resolves the rest of the name relative to the
	// block's enclosing namespace (the chain of nested block names).
	RelativeLabelMarker = '@'
	// NonlocalLabelMarker searches upward through the enclosing namespaces
	// for a label declared under this name, first match wins.
	NonlocalLabelMarker = '$'
	// RemoveLabelMarker marks a temporary label: its final name is
	// disambiguated via a namespace/content hash rather than a plain
	// join, since it may be normalized before the rest of its final
	// position in the tree is known.
	RemoveLabelMarker = '#'
)

// Component is one element of an AssemblyBlock: either a single
// instruction or a nested block.
type Component struct {
	Instr bytecode.Instruction
	Block *AssemblyBlock
	// Temporary marks a Label declaration that originated from a `#`-sigil
	// name. Normalize discards these once every rewrite pass has run: a
	// temporary label exists only to disambiguate a scratch position
	// during code generation and nothing jumps to it — unlike a plain
	// unreferenced `@`/absolute label, which normalization leaves alone.
	Temporary bool
}

// Instr wraps a single instruction as a Component.
func Instr(i bytecode.Instruction) Component { return Component{Instr: i} }

// Nested wraps a sub-block as a Component.
func Nested(b *AssemblyBlock) Component { return Component{Block: b} }

// IsBlock reports whether this component is a nested block.
func (c Component) IsBlock() bool { return c.Block != nil }

// AssemblyBlock is a possibly-named sequence of instructions and nested
// blocks. The name, when present, contributes a namespace segment that
// relative and temporary label references within it (and its descendants)
// are resolved against.
type AssemblyBlock struct {
	Name       *string
	Components []Component
}

// New builds a block with an optional name (nil for an anonymous block).
func New(name *string) *AssemblyBlock { return &AssemblyBlock{Name: name} }

// NewNamed builds a block scoped under the given namespace segment.
func NewNamed(name string) *AssemblyBlock { return &AssemblyBlock{Name: &name} }

// NewAnonymous builds an unnamed block.
func NewAnonymous() *AssemblyBlock { return &AssemblyBlock{} }

// InsertAsm appends a single instruction to the end of the block.
func (b *AssemblyBlock) InsertAsm(i bytecode.Instruction) {
	b.Components = append(b.Components, Instr(i))
}

// InsertAsmFront prepends a single instruction to the block.
func (b *AssemblyBlock) InsertAsmFront(i bytecode.Instruction) {
	b.Components = append([]Component{Instr(i)}, b.Components...)
}

// InsertAsmAtPosition inserts i at index pos, shifting later components
// back.
func (b *AssemblyBlock) InsertAsmAtPosition(pos int, i bytecode.Instruction) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(b.Components) {
		pos = len(b.Components)
	}
	b.Components = append(b.Components[:pos:pos], append([]Component{Instr(i)}, b.Components[pos:]...)...)
}

// InsertBlock appends a nested block as a component.
func (b *AssemblyBlock) InsertBlock(nested *AssemblyBlock) {
	b.Components = append(b.Components, Nested(nested))
}

// InsertAfterLabel inserts i immediately after the (non-recursive, current
// block only) declaration of label, stripped of any sigil.
func (b *AssemblyBlock) InsertAfterLabel(label string, i bytecode.Instruction) error {
	idx, err := b.findLabelDecl(label)
	if err != nil {
		return err
	}
	b.InsertAsmAtPosition(idx+1, i)
	return nil
}

// InsertBeforeLabel inserts i immediately before the (non-recursive,
// current block only) declaration of label, stripped of any sigil.
func (b *AssemblyBlock) InsertBeforeLabel(label string, i bytecode.Instruction) error {
	idx, err := b.findLabelDecl(label)
	if err != nil {
		return err
	}
	b.InsertAsmAtPosition(idx, i)
	return nil
}

func (b *AssemblyBlock) findLabelDecl(label string) (int, error) {
	for idx, c := range b.Components {
		if c.IsBlock() {
			continue
		}
		text, isDecl, _ := labelOf(c.Instr)
		if isDecl {
			stripped, _, _ := stripSigil(text)
			if stripped == label || text == label {
				return idx, nil
			}
		}
	}
	return 0, jerr.ErrNonlocalLabelNotFound.New(label)
}

// SeparatedAsm wraps a block's contents with instructions emitted
// immediately before and after it, without merging into the wrapped
// block's own namespace.
type SeparatedAsm struct {
	Before []bytecode.Instruction
	After  []bytecode.Instruction
}

// Wrap builds a new anonymous block containing Before, then inner as a
// nested block, then After.
func (s SeparatedAsm) Wrap(inner *AssemblyBlock) *AssemblyBlock {
	out := NewAnonymous()
	for _, i := range s.Before {
		out.InsertAsm(i)
	}
	out.InsertBlock(inner)
	for _, i := range s.After {
		out.InsertAsm(i)
	}
	return out
}

// labelOf extracts a label-bearing instruction's name, reporting whether
// it is a declaring occurrence (Label) or a referencing one (Goto/IfGoto).
func labelOf(instr bytecode.Instruction) (text string, isDecl bool, isRef bool) {
	switch v := instr.(type) {
	case bytecode.Label:
		return v.Name, true, false
	case bytecode.Goto:
		return v.Label, false, true
	case bytecode.IfGoto:
		return v.Label, false, true
	default:
		return "", false, false
	}
}

// withLabel returns a copy of instr with its label text replaced.
func withLabel(instr bytecode.Instruction, newText string) bytecode.Instruction {
	switch v := instr.(type) {
	case bytecode.Label:
		v.Name = newText
		return v
	case bytecode.Goto:
		v.Label = newText
		return v
	case bytecode.IfGoto:
		v.Label = newText
		return v
	default:
		return instr
	}
}

// stripSigil splits off a leading sigil byte, if any.
func stripSigil(text string) (stripped string, sigil byte, has bool) {
	if text == "" {
		return text, 0, false
	}
	switch text[0] {
	case RelativeLabelMarker, NonlocalLabelMarker, RemoveLabelMarker:
		return text[1:], text[0], true
	default:
		return text, 0, false
	}
}

// normalizeLabelText joins namespace and the label's own text into the
// canonical label form: lowercase, with path-unsafe characters folded to
// underscores, so a final label can double as an on-disk identifier.
func normalizeLabelText(namespace, label string) string {
	joined := label
	if namespace != "" {
		joined = namespace + "_" + label
	}
	return strings.ToLower(osCompat(joined))
}

func osCompat(s string) string {
	replacer := strings.NewReplacer(
		"::", "_", " ", "_", ":", "_", "/", "_", "\\", "_", "\t", "_",
	)
	return replacer.Replace(s)
}

// reformatTemporaryLabel disambiguates a `#`-marked temporary label by
// folding a hash of its own text against a hash of the enclosing
// namespace, so two identically-named temporary labels in different
// scopes never collide even when normalized before their final tree
// position is fully known.
func reformatTemporaryLabel(namespace, label string) string {
	nsHash := xxhash.Sum64String(namespace)
	labelHash := xxhash.Sum64String(label)
	folded := nsHash ^ labelHash
	return fmt.Sprintf("tmp_%s_%x", strings.ToLower(osCompat(label)), folded)
}
