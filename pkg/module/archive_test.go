package module

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"jodin.dev/jodinc/pkg/ident"
	"jodin.dev/jodinc/pkg/registry"
	"jodin.dev/jodinc/pkg/types"
)

func TestArchiveRoundTrip(t *testing.T) {
	a := New("math/add.jobj", ident.New("math"), nil, []string{"public_label math::add", "return"})
	b := New("math/static.jobj", ident.New("math"),
		[]TranslationUnit{{
			Name:       ident.New("math", "LIMIT"),
			Type:       types.FromPrimitive(types.Int),
			Visibility: registry.Protected,
		}},
		[]string{"push 0", "return"})

	encoded := EncodeArchive([]*CompilationObject{a, b})
	decoded, err := DecodeArchive("math.grounds", encoded)
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	if diff := cmp.Diff([]*CompilationObject{a, b}, decoded); diff != "" {
		t.Fatalf("archive round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeArchiveRejectsGarbage(t *testing.T) {
	_, err := DecodeArchive("bad.beans", "not an archive")
	require.Error(t, err)
}

func TestDecodeArchiveEmpty(t *testing.T) {
	decoded, err := DecodeArchive("empty.beans", EncodeArchive(nil))
	require.NoError(t, err)
	require.Empty(t, decoded)
}
