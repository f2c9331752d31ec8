package module

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"jodin.dev/jodinc/pkg/ident"
	"jodin.dev/jodinc/pkg/registry"
	"jodin.dev/jodinc/pkg/types"
)

func TestParseTranslationUnits(t *testing.T) {
	joined := JoinTranslationUnits([]TranslationUnit{
		{Name: ident.New("x"), Type: types.FromPrimitive(types.Int), Visibility: registry.Public},
		{Name: ident.New("y"), Type: types.FromPrimitive(types.Int).WithPointer(), Visibility: registry.Private},
		{Name: ident.New("z"), Type: types.FromPrimitive(types.Int).WithAbstractArray(), Visibility: registry.Protected},
		{
			Name:       ident.New("w"),
			Type:       types.FromPrimitive(types.Float).WithFunctionParams(types.FromPrimitive(types.Int).WithAbstractArray()),
			Visibility: registry.Protected,
		},
	})

	units, err := ParseTranslationUnits(joined)
	require.NoError(t, err)
	require.Len(t, units, 4)

	assert.Equal(t, "x", units[0].Name.String())
	assert.Equal(t, "int", units[0].Type.String())
	assert.Equal(t, registry.Public, units[0].Visibility)

	assert.Equal(t, "y", units[1].Name.String())
	assert.Equal(t, "*int", units[1].Type.String())
	assert.Equal(t, registry.Private, units[1].Visibility)

	assert.Equal(t, "w", units[3].Name.String())
	assert.Equal(t, "fn([int]) -> float", units[3].Type.String())
}

func TestParseTranslationUnitRejectsMalformed(t *testing.T) {
	_, err := ParseTranslationUnit("missing-fields")
	require.Error(t, err)
}

func TestParseTranslationUnitsEmptyString(t *testing.T) {
	units, err := ParseTranslationUnits("")
	require.NoError(t, err)
	assert.Nil(t, units)
}
