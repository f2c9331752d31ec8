package asmblock

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"jodin.dev/jodinc/pkg/bytecode"
)

func TestRelativeLabelResolvesToNamespace(t *testing.T) {
	fn := NewNamed("Main.fibonacci")
	fn.InsertAsm(bytecode.Label{Name: "@loop_start"})
	fn.InsertAsm(bytecode.Goto{Label: "@loop_start"})

	flat, err := fn.Normalize()
	require.NoError(t, err)

	instrs := flat.Instructions()
	require.Len(t, instrs, 2)
	require.Equal(t, "main.fibonacci_loop_start", instrs[0].(bytecode.Label).Name)
	require.Equal(t, instrs[0].(bytecode.Label).Name, instrs[1].(bytecode.Goto).Label)
}

func TestNestedBlocksAccumulateNamespace(t *testing.T) {
	outer := NewNamed("outer")
	inner := NewNamed("inner")
	inner.InsertAsm(bytecode.Label{Name: "@x"})
	inner.InsertAsm(bytecode.Goto{Label: "$x"})
	outer.InsertBlock(inner)

	flat, err := outer.Normalize()
	require.NoError(t, err)

	instrs := flat.Instructions()
	require.Equal(t, "outer_inner_x", instrs[0].(bytecode.Label).Name)
	require.Equal(t, "outer_inner_x", instrs[1].(bytecode.Goto).Label)
}

func TestNonlocalLabelSearchesAncestorsFirstMatchWins(t *testing.T) {
	root := NewNamed("fn")
	root.InsertAsm(bytecode.Label{Name: "@top"})

	child := NewNamed("loop")
	child.InsertAsm(bytecode.Label{Name: "@top"})
	child.InsertAsm(bytecode.Goto{Label: "$top"})
	root.InsertBlock(child)
	root.InsertAsm(bytecode.Goto{Label: "$top"})

	flat, err := root.Normalize()
	require.NoError(t, err)
	instrs := flat.Instructions()

	// The reference inside fn::loop finds its own namespace's label before
	// walking up to fn's; the reference directly under fn only sees fn's.
	require.Equal(t, "fn_top", instrs[0].(bytecode.Label).Name)
	require.Equal(t, "fn_loop_top", instrs[1].(bytecode.Label).Name)
	require.Equal(t, "fn_loop_top", instrs[2].(bytecode.Goto).Label)
	require.Equal(t, "fn_top", instrs[3].(bytecode.Goto).Label)
}

func TestNonlocalLabelFindsAbsoluteRootLabel(t *testing.T) {
	root := NewAnonymous()
	root.InsertAsm(bytecode.Label{Name: "shared"})

	child := NewAnonymous()
	child.InsertAsm(bytecode.Goto{Label: "$shared"})
	root.InsertBlock(child)

	flat, err := root.Normalize()
	require.NoError(t, err)
	instrs := flat.Instructions()
	require.Equal(t, "shared", instrs[0].(bytecode.Label).Name)
	require.Equal(t, "shared", instrs[1].(bytecode.Goto).Label)
}

func TestNonlocalLabelNotFoundErrors(t *testing.T) {
	root := NewAnonymous()
	root.InsertAsm(bytecode.Goto{Label: "$missing"})

	_, err := root.Normalize()
	require.Error(t, err)
}

func TestNormalizeIsIdempotentAndSigilFree(t *testing.T) {
	fn := NewNamed("fib")
	fn.InsertAsm(bytecode.Label{Name: "@loop"})
	fn.InsertAsm(bytecode.Goto{Label: "@loop"})
	inner := NewNamed("body")
	inner.InsertAsm(bytecode.Label{Name: "#scratch"})
	inner.InsertAsm(bytecode.Goto{Label: "$loop"})
	fn.InsertBlock(inner)

	once, err := fn.Normalize()
	require.NoError(t, err)
	twice, err := once.Normalize()
	require.NoError(t, err)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Fatalf("normalization is not idempotent (-once +twice):\n%s", diff)
	}

	seen := map[string]bool{}
	for _, instr := range once.Instructions() {
		switch v := instr.(type) {
		case bytecode.Label:
			require.NotContains(t, []byte{'@', '$', '#'}, v.Name[0])
			require.False(t, seen[v.Name], "label %q declared twice", v.Name)
			seen[v.Name] = true
		case bytecode.Goto:
			require.NotContains(t, []byte{'@', '$', '#'}, v.Label[0])
		}
	}
}

func TestTemporaryLabelsAreDiscardedAfterNormalization(t *testing.T) {
	a := NewNamed("a")
	a.InsertAsm(bytecode.Label{Name: "#tmp"})
	a.InsertAsm(bytecode.Goto{Label: "@done"})
	a.InsertAsm(bytecode.Label{Name: "@done"})
	b := NewNamed("b")
	b.InsertAsm(bytecode.Label{Name: "#tmp"})

	root := NewAnonymous()
	root.InsertBlock(a)
	root.InsertBlock(b)

	flat, err := root.Normalize()
	require.NoError(t, err)
	instrs := flat.Instructions()

	// Both temporary declarations are gone; only the real, referenced
	// "@done" label (and its Goto) survive.
	require.Len(t, instrs, 2)
	require.Equal(t, "a_done", instrs[1].(bytecode.Label).Name)
}

// TestTemporaryLabelsInDifferentNamespacesDontCollideDuringResolution
// exercises the namespace/content hash reformatTemporaryLabel uses: two
// temporary labels sharing the same bare name in different blocks must
// still resolve to distinct names mid-pipeline (before the final discard
// pass removes them), so a reference to one can never accidentally
// resolve against the other.
func TestTemporaryLabelsInDifferentNamespacesDontCollideDuringResolution(t *testing.T) {
	a := NewNamed("a")
	a.InsertAsm(bytecode.Label{Name: "#tmp"})
	b := NewNamed("b")
	b.InsertAsm(bytecode.Label{Name: "#tmp"})

	root := NewAnonymous()
	root.InsertBlock(a)
	root.InsertBlock(b)
	resolveRelativeLabels(root, "")

	nameOf := func(blk *AssemblyBlock) string {
		return blk.Components[0].Instr.(bytecode.Label).Name
	}
	require.NotEqual(t, nameOf(a), nameOf(b))
}

func TestRemoveUnusedStripsUnreferencedLabels(t *testing.T) {
	root := NewAnonymous()
	root.InsertAsm(bytecode.Label{Name: "used"})
	root.InsertAsm(bytecode.Goto{Label: "used"})
	root.InsertAsm(bytecode.Label{Name: "dead"})

	flat, err := root.Normalize()
	require.NoError(t, err)
	cleaned := RemoveUnused(flat)
	require.Len(t, cleaned.Instructions(), 2)
}

func TestInsertAfterAndBeforeLabel(t *testing.T) {
	b := NewAnonymous()
	b.InsertAsm(bytecode.Label{Name: "anchor"})
	require.NoError(t, b.InsertAfterLabel("anchor", bytecode.Return{}))
	require.NoError(t, b.InsertBeforeLabel("anchor", bytecode.Arithmetic{Op: bytecode.OpAdd}))

	require.Len(t, b.Components, 3)
	require.Equal(t, bytecode.Arithmetic{Op: bytecode.OpAdd}, b.Components[0].Instr)
	require.Equal(t, bytecode.Label{Name: "anchor"}, b.Components[1].Instr)
	require.Equal(t, bytecode.Return{}, b.Components[2].Instr)
}

func TestSeparatedAsmWrap(t *testing.T) {
	inner := NewAnonymous()
	inner.InsertAsm(bytecode.Return{})

	sep := SeparatedAsm{Before: []bytecode.Instruction{bytecode.Arithmetic{Op: bytecode.OpNot}}, After: []bytecode.Instruction{bytecode.Return{}}}
	wrapped := sep.Wrap(inner)

	flat, err := wrapped.Normalize()
	require.NoError(t, err)
	require.Len(t, flat.Instructions(), 3)
}
