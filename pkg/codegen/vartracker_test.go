package codegen

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVariableUseTrackerAllocatesDenseSlots(t *testing.T) {
	tr := NewVariableUseTracker()
	a := tr.Allocate("a")
	b := tr.Allocate("b")
	require.Equal(t, uint32(0), a)
	require.Equal(t, uint32(1), b)

	slot, ok := tr.Resolve("a")
	require.True(t, ok)
	require.Equal(t, a, slot)
}

func TestVariableUseTrackerReclaimsSlotsOnScopePop(t *testing.T) {
	tr := NewVariableUseTracker()
	tr.Allocate("outer")

	tr.PushScope()
	inner := tr.Allocate("inner")
	tr.PopScope()

	_, ok := tr.Resolve("inner")
	require.False(t, ok, "inner should no longer be visible once its scope pops")

	reused := tr.Allocate("reused")
	require.Equal(t, inner, reused, "freed slot should be reused before growing the counter")
}

func TestVariableUseTrackerShadowing(t *testing.T) {
	tr := NewVariableUseTracker()
	outer := tr.Allocate("x")

	tr.PushScope()
	inner := tr.Allocate("x")
	require.NotEqual(t, outer, inner)

	slot, ok := tr.Resolve("x")
	require.True(t, ok)
	require.Equal(t, inner, slot, "innermost binding shadows the outer one")
	tr.PopScope()

	slot, ok = tr.Resolve("x")
	require.True(t, ok)
	require.Equal(t, outer, slot, "outer binding visible again once inner scope pops")
}
