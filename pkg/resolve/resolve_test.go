package resolve

import (
	"testing"

	"github.com/stretchr/testify/require"
	"jodin.dev/jodinc/pkg/ast"
	"jodin.dev/jodinc/pkg/ident"
	"jodin.dev/jodinc/pkg/jerr"
	"jodin.dev/jodinc/pkg/registry"
)

func TestResolveSimpleFunctionAndVariableUse(t *testing.T) {
	fn := &ast.Node{Type: ast.NodeFunctionDef, Name: ident.New("foo")}
	varX := &ast.Node{Type: ast.NodeVarDecl, Name: ident.New("x")}
	useX := &ast.Node{Type: ast.NodeIdentifierExpr, Name: ident.New("x")}
	fn.AddChild(varX)
	fn.AddChild(useX)

	root := ast.New(ast.NodeTopLevel, fn)

	_, err := Resolve(root, "")
	require.NoError(t, err)

	fnTag, err := ast.GetTagAs[ast.ResolvedIdentityTag](fn, "resolved_identity")
	require.NoError(t, err)
	require.Equal(t, "foo", fnTag.Absolute.String())

	varTag, err := ast.GetTagAs[ast.ResolvedIdentityTag](varX, "resolved_identity")
	require.NoError(t, err)
	require.Equal(t, "foo::x", varTag.Absolute.String())

	useTag, err := ast.GetTagAs[ast.ResolvedIdentityTag](useX, "resolved_identity")
	require.NoError(t, err)
	require.Equal(t, "foo::x", useTag.Absolute.String())
}

func TestResolveUnknownIdentifierFails(t *testing.T) {
	fn := &ast.Node{Type: ast.NodeFunctionDef, Name: ident.New("foo")}
	useY := &ast.Node{Type: ast.NodeIdentifierExpr, Name: ident.New("y")}
	fn.AddChild(useY)
	root := ast.New(ast.NodeTopLevel, fn)

	_, err := Resolve(root, "")
	require.Error(t, err)
}

func TestResolveBlockScopedVariable(t *testing.T) {
	innerBlock := &ast.Node{Type: ast.NodeBlock}
	varX := &ast.Node{Type: ast.NodeVarDecl, Name: ident.New("x")}
	useX := &ast.Node{Type: ast.NodeIdentifierExpr, Name: ident.New("x")}
	innerBlock.AddChild(varX)
	innerBlock.AddChild(useX)

	fn := &ast.Node{Type: ast.NodeFunctionDef, Name: ident.New("foo")}
	fn.AddChild(innerBlock)
	root := ast.New(ast.NodeTopLevel, fn)

	_, err := Resolve(root, "")
	require.NoError(t, err)

	useTag, err := ast.GetTagAs[ast.ResolvedIdentityTag](useX, "resolved_identity")
	require.NoError(t, err)
	require.Equal(t, "foo::{block 0}::x", useTag.Absolute.String())
}

func TestResolveFunctionParameterUse(t *testing.T) {
	useN := &ast.Node{Type: ast.NodeIdentifierExpr, Name: ident.New("n")}
	fn := &ast.Node{Type: ast.NodeFunctionDef, Name: ident.New("fib"), Params: []ident.Identifier{ident.New("n")}}
	fn.AddChild(useN)
	root := ast.New(ast.NodeTopLevel, fn)

	_, err := Resolve(root, "")
	require.NoError(t, err)

	useTag, err := ast.GetTagAs[ast.ResolvedIdentityTag](useN, "resolved_identity")
	require.NoError(t, err)
	require.Equal(t, "fib::n", useTag.Absolute.String())
}

func TestWildcardImportMakesNameVisible(t *testing.T) {
	libFn := &ast.Node{Type: ast.NodeFunctionDef, Name: ident.New("helper")}
	libFn.SetTag(ast.VisibilityTag{Visibility: registry.Public})
	lib := &ast.Node{Type: ast.NodeNamespace, Name: ident.New("lib")}
	lib.AddChild(libFn)

	imp := &ast.Node{Type: ast.NodeImport, Wildcard: true, ImportPath: ident.New("lib")}
	useHelper := &ast.Node{Type: ast.NodeIdentifierExpr, Name: ident.New("helper")}
	main := &ast.Node{Type: ast.NodeFunctionDef, Name: ident.New("main")}
	main.AddChild(imp)
	main.AddChild(useHelper)

	root := ast.New(ast.NodeTopLevel, lib, main)

	_, err := Resolve(root, "")
	require.NoError(t, err)

	useTag, err := ast.GetTagAs[ast.ResolvedIdentityTag](useHelper, "resolved_identity")
	require.NoError(t, err)
	require.Equal(t, "lib::helper", useTag.Absolute.String())
}

func TestProtectedDeclarationInvisibleAcrossNamespaces(t *testing.T) {
	libFn := &ast.Node{Type: ast.NodeFunctionDef, Name: ident.New("helper")}
	lib := &ast.Node{Type: ast.NodeNamespace, Name: ident.New("lib")}
	lib.AddChild(libFn)

	imp := &ast.Node{Type: ast.NodeImport, Wildcard: true, ImportPath: ident.New("lib")}
	useHelper := &ast.Node{Type: ast.NodeIdentifierExpr, Name: ident.New("helper")}
	main := &ast.Node{Type: ast.NodeFunctionDef, Name: ident.New("main")}
	main.AddChild(imp)
	main.AddChild(useHelper)

	root := ast.New(ast.NodeTopLevel, lib, main)

	// helper defaults to protected: lib is not an ancestor of main's
	// namespace, so the use must be rejected.
	_, err := Resolve(root, "")
	require.Error(t, err)
	require.True(t, jerr.ErrVisibilityViolation.Is(err))
}
