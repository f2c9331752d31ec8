package ident

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentifierString(t *testing.T) {
	id := New("hello", "world")
	assert.Equal(t, "hello::world", id.String())
}

func TestIdentifierCompareChildIsLess(t *testing.T) {
	a := New("hello", "world")
	b := New("hello")

	ord, ok := a.Compare(b)
	require.True(t, ok)
	assert.Equal(t, Less, ord)

	ord, ok = b.Compare(a)
	require.True(t, ok)
	assert.Equal(t, Greater, ord)
}

func TestIdentifierCompareUnrelatedIsIncomparable(t *testing.T) {
	a := New("hello")
	b := New("goodbye")

	_, ok := a.Compare(b)
	assert.False(t, ok)
}

func TestIdentifierCompareDivergentSameLengthIsIncomparable(t *testing.T) {
	a := New("a", "b", "x")
	b := New("a", "b", "y")

	_, ok := a.Compare(b)
	assert.False(t, ok)
}

func TestIdentifierCompareEqual(t *testing.T) {
	a := New("a", "b")
	b := New("a", "b")

	ord, ok := a.Compare(b)
	require.True(t, ok)
	assert.Equal(t, Equal, ord)
}

func TestIdentifierStringRoundTrip(t *testing.T) {
	id := New("a", "b", "c")
	assert.True(t, id.Equal(FromString(id.String())))
}

func TestIdentifierJoin(t *testing.T) {
	a := New("a")
	b := New("b", "c")
	assert.Equal(t, "a::b::c", a.Join(b).String())
}

func TestFromString(t *testing.T) {
	id := FromString("a::b::c")
	assert.Equal(t, []string{"a", "b", "c"}, id.Components())
}

func TestStripHighestParent(t *testing.T) {
	id := New("base", "a", "b")
	stripped, ok := id.StripHighestParent()
	require.True(t, ok)
	assert.Equal(t, "a::b", stripped.String())
}
