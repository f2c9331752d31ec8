package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"jodin.dev/jodinc/pkg/ident"
)

func TestDisplayGrammar(t *testing.T) {
	five := uint64(5)
	ty := FromPrimitive(Int).
		WithPointer().
		WithArraySize(five).
		WithFunctionParams(FromPrimitive(Int)).
		WithPointer()

	assert.Equal(t, "*fn(int) -> [*int: 5]", ty.String())
}

func TestDisplayAbstractArray(t *testing.T) {
	ty := FromPrimitive(Int).WithAbstractArray()
	assert.Equal(t, "[int]", ty.String())
}

func TestDisplayConst(t *testing.T) {
	ty := FromPrimitive(Int)
	ty.IsConst = true
	assert.Equal(t, "const int", ty.String())
}

func TestDisplayGenericSpecifier(t *testing.T) {
	ty := FromSpecifier(GenericSpecifier(ident.New("List"), FromPrimitive(Int)))
	assert.Equal(t, "List<int>", ty.String())
}

func TestSubstituteReplacesBareParameter(t *testing.T) {
	ty := FromSpecifier(GenericParam("T")).WithPointer()
	out := ty.Substitute(map[string]IntermediateType{"T": FromPrimitive(Int)})
	assert.Equal(t, "*int", out.String())
	// The receiver shares no mutation with the result.
	assert.Equal(t, "*T", ty.String())
}

func TestSubstituteRecursesIntoGenericsAndFunctionParams(t *testing.T) {
	inner := FromSpecifier(GenericParam("T"))
	list := FromSpecifier(GenericSpecifier(ident.New("List"), inner))
	fn := FromPrimitive(Void).WithFunctionParams(list, FromSpecifier(GenericParam("U")))

	out := fn.Substitute(map[string]IntermediateType{
		"T": FromPrimitive(Int),
		"U": FromPrimitive(Char),
	})
	assert.Equal(t, "fn(List<int>, char) -> void", out.String())
}

func TestSubstituteLeavesUnmappedParameters(t *testing.T) {
	ty := FromSpecifier(GenericParam("V"))
	out := ty.Substitute(map[string]IntermediateType{"T": FromPrimitive(Int)})
	assert.Equal(t, "V", out.String())
}
