package registry

import (
	"testing"

	"github.com/stretchr/testify/require"
	"jodin.dev/jodinc/pkg/ident"
	"jodin.dev/jodinc/pkg/jerr"
)

func TestInsertAndResolve(t *testing.T) {
	r := New[int]("")
	abs, err := r.InsertWithIdentifier(ident.New("foo"), Public, 42)
	require.NoError(t, err)
	require.Equal(t, "foo", abs.String())

	resolved, entry, err := r.Resolve(ident.New("foo"), ident.New("foo"))
	require.NoError(t, err)
	require.Equal(t, "foo", resolved.String())
	require.Equal(t, 42, entry.Value)
}

func TestInsertDuplicateFails(t *testing.T) {
	r := New[int]("")
	_, err := r.InsertWithIdentifier(ident.New("foo"), Public, 1)
	require.NoError(t, err)

	_, err = r.InsertWithIdentifier(ident.New("foo"), Public, 2)
	require.Error(t, err)
	require.True(t, jerr.ErrIdentifierAlreadyExists.Is(err))
}

func TestPrivateNotVisibleFromSibling(t *testing.T) {
	r := New[int]("")
	r.Resolver.PushNamespace("mod_a")
	_, err := r.InsertWithIdentifier(ident.New("secret"), Private, 7)
	require.NoError(t, err)
	r.Resolver.PopNamespace()

	_, _, err = r.Resolve(ident.New("mod_a", "secret"), ident.New("mod_b"))
	require.Error(t, err)
	require.True(t, jerr.ErrVisibilityViolation.Is(err))
}

func TestProtectedVisibleFromDescendant(t *testing.T) {
	r := New[int]("")
	r.Resolver.PushNamespace("mod_a")
	_, err := r.InsertWithIdentifier(ident.New("shared"), Protected, 7)
	require.NoError(t, err)
	r.Resolver.PopNamespace()

	_, _, err = r.Resolve(ident.New("mod_a", "shared"), ident.New("mod_a", "inner"))
	require.NoError(t, err)
}
