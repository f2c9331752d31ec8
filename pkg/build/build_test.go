package build

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"jodin.dev/jodinc/pkg/ast"
	"jodin.dev/jodinc/pkg/ident"
	"jodin.dev/jodinc/pkg/jerr"
	"jodin.dev/jodinc/pkg/module"
	"jodin.dev/jodinc/pkg/registry"
	"jodin.dev/jodinc/pkg/types"
)

func mathFile() *ast.Node {
	addFn := &ast.Node{
		Type:         ast.NodeFunctionDef,
		Name:         ident.New("add"),
		DeclaredType: types.FromPrimitive(types.Int),
		Params:       []ident.Identifier{ident.New("a"), ident.New("b")},
		ParamTypes:   []types.IntermediateType{types.FromPrimitive(types.Int), types.FromPrimitive(types.Int)},
	}
	// Exported across files: protected wouldn't be visible from main's
	// namespace.
	addFn.SetTag(ast.VisibilityTag{Visibility: registry.Public})
	sum := &ast.Node{
		Type:  ast.NodeBinaryOp,
		BinOp: ast.OpAdd,
		Children: []*ast.Node{
			{Type: ast.NodeIdentifierExpr, Name: ident.New("a")},
			{Type: ast.NodeIdentifierExpr, Name: ident.New("b")},
		},
	}
	addFn.AddChild(ast.New(ast.NodeReturnStatement, sum))

	ns := &ast.Node{Type: ast.NodeNamespace, Name: ident.New("math")}
	ns.AddChild(addFn)
	return ast.New(ast.NodeTopLevel, ns)
}

func mainFileUsingMath() *ast.Node {
	imp := &ast.Node{Type: ast.NodeImport, Wildcard: true, ImportPath: ident.New("math")}
	call := &ast.Node{
		Type: ast.NodeFunctionCall,
		Name: ident.New("add"),
		Children: []*ast.Node{
			{Type: ast.NodeLiteral, LiteralKind: ast.LiteralInt, IntValue: 1},
			{Type: ast.NodeLiteral, LiteralKind: ast.LiteralInt, IntValue: 2},
		},
	}
	main := &ast.Node{Type: ast.NodeFunctionDef, Name: ident.New("main"), DeclaredType: types.FromPrimitive(types.Int)}
	main.AddChild(imp)
	main.AddChild(ast.New(ast.NodeReturnStatement, call))
	return ast.New(ast.NodeTopLevel, main)
}

func TestBuildResolvesCrossFileImport(t *testing.T) {
	dir := t.TempDir()
	files := []FileInput{
		{Path: "math.jodin", Source: []byte("namespace math { fn add(a: int, b: int) -> int { return a + b; } }"), Tree: mathFile()},
		{Path: "main.jodin", Source: []byte("import math::*; fn main() -> int { return add(1, 2); }"), Tree: mainFileUsingMath()},
	}

	result, err := Build(Settings{TargetDirectory: dir}, files)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"math.jodin", "main.jodin"}, result.Compiled)
	assert.Empty(t, result.Reused)
	assert.NotEmpty(t, result.Objects)
}

func TestBuildSkipsUnchangedFileOnSecondRun(t *testing.T) {
	dir := t.TempDir()
	files := []FileInput{
		{Path: "math.jodin", Source: []byte("namespace math { fn add(a: int, b: int) -> int { return a + b; } }"), Tree: mathFile()},
	}

	first, err := Build(Settings{TargetDirectory: dir}, files)
	require.NoError(t, err)
	assert.Equal(t, []string{"math.jodin"}, first.Compiled)

	second, err := Build(Settings{TargetDirectory: dir}, []FileInput{
		{Path: "math.jodin", Source: files[0].Source, Tree: mathFile()},
	})
	require.NoError(t, err)
	assert.Empty(t, second.Compiled)
	assert.Equal(t, []string{"math.jodin"}, second.Reused)
}

func TestBuildRecompilesDependentWhenDependencyChanges(t *testing.T) {
	dir := t.TempDir()
	base := []FileInput{
		{Path: "math.jodin", Source: []byte("namespace math { fn add(a: int, b: int) -> int { return a + b; } }"), Tree: mathFile()},
		{Path: "main.jodin", Source: []byte("import math::*; fn main() -> int { return add(1, 2); }"), Tree: mainFileUsingMath()},
	}
	_, err := Build(Settings{TargetDirectory: dir}, base)
	require.NoError(t, err)

	changed := []FileInput{
		{Path: "math.jodin", Source: []byte("namespace math { fn add(a: int, b: int) -> int { return a + b; } } // changed"), Tree: mathFile()},
		{Path: "main.jodin", Source: base[1].Source, Tree: mainFileUsingMath()},
	}
	second, err := Build(Settings{TargetDirectory: dir}, changed)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"math.jodin", "main.jodin"}, second.Compiled)
}

func TestBuildDetectsCyclicalImports(t *testing.T) {
	aImp := &ast.Node{Type: ast.NodeImport, Wildcard: true, ImportPath: ident.New("b")}
	aNs := &ast.Node{Type: ast.NodeNamespace, Name: ident.New("a")}
	aFn := &ast.Node{Type: ast.NodeFunctionDef, Name: ident.New("fromA"), DeclaredType: types.FromPrimitive(types.Int)}
	aFn.AddChild(aImp)
	aFn.AddChild(ast.New(ast.NodeReturnStatement, &ast.Node{Type: ast.NodeFunctionCall, Name: ident.New("fromB")}))
	aNs.AddChild(aFn)
	aTree := ast.New(ast.NodeTopLevel, aNs)

	bImp := &ast.Node{Type: ast.NodeImport, Wildcard: true, ImportPath: ident.New("a")}
	bNs := &ast.Node{Type: ast.NodeNamespace, Name: ident.New("b")}
	bFn := &ast.Node{Type: ast.NodeFunctionDef, Name: ident.New("fromB"), DeclaredType: types.FromPrimitive(types.Int)}
	bFn.AddChild(bImp)
	bFn.AddChild(ast.New(ast.NodeReturnStatement, &ast.Node{Type: ast.NodeFunctionCall, Name: ident.New("fromA")}))
	bNs.AddChild(bFn)
	bTree := ast.New(ast.NodeTopLevel, bNs)

	_, err := Build(Settings{TargetDirectory: t.TempDir()}, []FileInput{
		{Path: "a.jodin", Source: []byte("a"), Tree: aTree},
		{Path: "b.jodin", Source: []byte("b"), Tree: bTree},
	})
	require.Error(t, err)
}

func TestBuildWritesGroundsArchivePerSourceFile(t *testing.T) {
	dir := t.TempDir()
	files := []FileInput{
		{Path: "math.jodin", Source: []byte("namespace math { fn add(a: int, b: int) -> int { return a + b; } }"), Tree: mathFile()},
	}
	_, err := Build(Settings{TargetDirectory: dir}, files)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "math.grounds"))
	require.NoError(t, err)
	objects, err := module.DecodeArchive("math.grounds", string(data))
	require.NoError(t, err)
	assert.NotEmpty(t, objects)
}

func TestBuildPreloadsPrecompiledObjectsFromObjectPath(t *testing.T) {
	// First build math alone into a library directory.
	libDir := t.TempDir()
	_, err := Build(Settings{TargetDirectory: libDir}, []FileInput{
		{Path: "math.jodin", Source: []byte("namespace math { fn add(a: int, b: int) -> int { return a + b; } }"), Tree: mathFile()},
	})
	require.NoError(t, err)

	// Then build main without math's source, resolving add through the
	// library's precompiled objects on the object path.
	outDir := t.TempDir()
	result, err := Build(Settings{TargetDirectory: outDir, ObjectPath: []string{libDir}}, []FileInput{
		{Path: "main.jodin", Source: []byte("import math::*; fn main() -> int { return add(1, 2); }"), Tree: mainFileUsingMath()},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"main.jodin"}, result.Compiled)
}

func TestBuildRejectsMissingObjectPathEntry(t *testing.T) {
	_, err := Build(Settings{
		TargetDirectory: t.TempDir(),
		ObjectPath:      []string{filepath.Join(t.TempDir(), "does-not-exist")},
	}, nil)
	require.Error(t, err)
	require.True(t, jerr.ErrInvalidObjectPath.Is(err))
}

func TestManifestRecordsAndDetectsChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.boltdb")
	manifest, err := OpenManifest(path)
	require.NoError(t, err)
	defer manifest.Close()

	source := []byte("fn foo() -> int { return 1; }")
	assert.False(t, manifest.Unchanged("foo.jodin", source))
	require.NoError(t, manifest.Record("foo.jodin", source))
	assert.True(t, manifest.Unchanged("foo.jodin", source))
	assert.False(t, manifest.Unchanged("foo.jodin", []byte("fn foo() -> int { return 2; }")))
}

func TestParseObjectPath(t *testing.T) {
	assert.Nil(t, ParseObjectPath(""))
	assert.Equal(t, []string{"a", "b"}, ParseObjectPath("a:b"))
	assert.Equal(t, []string{"a", "b"}, ParseObjectPath("a;b"))
}
