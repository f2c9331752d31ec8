package asmblock

import (
	"strings"

	"jodin.dev/jodinc/pkg/bytecode"
	"jodin.dev/jodinc/pkg/jerr"
)

// Normalize runs the full label-normalization pipeline: resolve relative
// (@) and temporary (#) labels against each block's accumulated namespace,
// collect every label declaration, resolve nonlocal ($) references by
// searching upward through the enclosing namespaces, flatten the (now
// label-complete) tree into a single anonymous block of plain
// instructions, then discard whatever temporary-label declarations remain
// unreferenced.
func (b *AssemblyBlock) Normalize() (*AssemblyBlock, error) {
	clone := b.deepClone()
	resolveRelativeLabels(clone, "")
	allLabels := make(map[string]bool)
	collectLabels(clone, allLabels)
	if err := resolveNonlocalLabels(clone, allLabels, ""); err != nil {
		return nil, err
	}
	return flatten(clone), nil
}

func (b *AssemblyBlock) deepClone() *AssemblyBlock {
	out := &AssemblyBlock{Name: b.Name}
	out.Components = make([]Component, len(b.Components))
	for i, c := range b.Components {
		if c.IsBlock() {
			out.Components[i] = Nested(c.Block.deepClone())
		} else {
			out.Components[i] = c
		}
	}
	return out
}

func resolveRelativeLabels(block *AssemblyBlock, namespace string) {
	newNamespace := namespace
	if block.Name != nil {
		if namespace == "" {
			newNamespace = *block.Name
		} else {
			newNamespace = namespace + "::" + *block.Name
		}
	}

	for i, c := range block.Components {
		if c.IsBlock() {
			resolveRelativeLabels(c.Block, newNamespace)
			continue
		}
		text, isDecl, isRef := labelOf(c.Instr)
		if !isDecl && !isRef {
			continue
		}
		stripped, sigil, has := stripSigil(text)
		if !has {
			continue
		}
		switch sigil {
		case RelativeLabelMarker:
			block.Components[i] = Instr(withLabel(c.Instr, normalizeLabelText(newNamespace, stripped)))
		case RemoveLabelMarker:
			rewritten := withLabel(c.Instr, reformatTemporaryLabel(newNamespace, stripped))
			block.Components[i] = Component{Instr: rewritten, Temporary: isDecl}
		}
	}
}

// collectLabels gathers every label declaration in the whole tree that is
// not itself still a nonlocal reference — the candidate set nonlocal ($)
// resolution tests against. Relative and temporary declarations have
// already been rewritten to their final names by this point.
func collectLabels(block *AssemblyBlock, into map[string]bool) {
	for _, c := range block.Components {
		if c.IsBlock() {
			collectLabels(c.Block, into)
			continue
		}
		text, isDecl, _ := labelOf(c.Instr)
		if isDecl && (text == "" || text[0] != NonlocalLabelMarker) {
			into[text] = true
		}
	}
}

// findNonlocalLabel walks from namespace upward toward the root, at each
// level testing whether that namespace's normalized form of label exists
// among the declared labels. The first hit wins.
func findNonlocalLabel(label string, allLabels map[string]bool, namespace string) (string, bool) {
	ns := namespace
	for {
		candidate := normalizeLabelText(ns, label)
		if allLabels[candidate] {
			return candidate, true
		}
		if ns == "" {
			return "", false
		}
		if idx := strings.LastIndex(ns, "::"); idx >= 0 {
			ns = ns[:idx]
		} else {
			ns = ""
		}
	}
}

// resolveNonlocalLabels rewrites every nonlocal ($) label, declaration or
// reference, to whichever enclosing namespace's label it matched.
func resolveNonlocalLabels(block *AssemblyBlock, allLabels map[string]bool, namespace string) error {
	newNamespace := namespace
	if block.Name != nil {
		if namespace == "" {
			newNamespace = *block.Name
		} else {
			newNamespace = namespace + "::" + *block.Name
		}
	}

	for i, c := range block.Components {
		if c.IsBlock() {
			if err := resolveNonlocalLabels(c.Block, allLabels, newNamespace); err != nil {
				return err
			}
			continue
		}
		text, isDecl, isRef := labelOf(c.Instr)
		if !isDecl && !isRef {
			continue
		}
		stripped, sigil, has := stripSigil(text)
		if !has || sigil != NonlocalLabelMarker {
			continue
		}
		resolved, ok := findNonlocalLabel(stripped, allLabels, newNamespace)
		if !ok {
			return jerr.ErrNonlocalLabelNotFound.New(stripped)
		}
		block.Components[i] = Instr(withLabel(c.Instr, resolved))
	}
	return nil
}

// flatten replaces every nested block with its children, concatenated in
// pre-order, then drops temporary-label declarations that survived the
// rewrite passes unreferenced. A temporary label that some reference
// still resolved against (unusual, but not forbidden) is kept so its
// reference doesn't dangle.
func flatten(block *AssemblyBlock) *AssemblyBlock {
	var collected []Component
	var walk func(*AssemblyBlock)
	walk = func(b *AssemblyBlock) {
		for _, c := range b.Components {
			if c.IsBlock() {
				walk(c.Block)
			} else {
				collected = append(collected, c)
			}
		}
	}
	walk(block)

	referenced := make(map[string]bool)
	for _, c := range collected {
		if _, _, isRef := labelOf(c.Instr); isRef {
			text, _, _ := labelOf(c.Instr)
			referenced[text] = true
		}
	}

	out := NewAnonymous()
	for _, c := range collected {
		if c.Temporary {
			name, _, _ := labelOf(c.Instr)
			if !referenced[name] {
				continue
			}
		}
		out.Components = append(out.Components, c)
	}
	return out
}

// RemoveUnused strips Label declarations that no Goto/IfGoto in the block
// references, operating on an already-normalized (flat) block.
func RemoveUnused(block *AssemblyBlock) *AssemblyBlock {
	referenced := make(map[string]bool)
	for _, c := range block.Components {
		if c.IsBlock() {
			continue
		}
		text, _, isRef := labelOf(c.Instr)
		if isRef {
			referenced[text] = true
		}
	}

	out := NewAnonymous()
	for _, c := range block.Components {
		if !c.IsBlock() {
			text, isDecl, _ := labelOf(c.Instr)
			if isDecl && !referenced[text] {
				continue
			}
		}
		out.Components = append(out.Components, c)
	}
	return out
}

// Instructions returns a flat block's instructions in order. Panics if any
// component is still a nested block — call after Normalize.
func (b *AssemblyBlock) Instructions() []bytecode.Instruction {
	out := make([]bytecode.Instruction, 0, len(b.Components))
	for _, c := range b.Components {
		if c.IsBlock() {
			panic("Instructions called on a non-flattened AssemblyBlock")
		}
		out = append(out, c.Instr)
	}
	return out
}
