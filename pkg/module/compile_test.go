package module

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"jodin.dev/jodinc/pkg/ast"
	"jodin.dev/jodinc/pkg/ident"
	"jodin.dev/jodinc/pkg/resolve"
	"jodin.dev/jodinc/pkg/types"
)

func buildSampleTree() *ast.Node {
	addFn := &ast.Node{
		Type:         ast.NodeFunctionDef,
		Name:         ident.New("add"),
		DeclaredType: types.FromPrimitive(types.Int),
		Params:       []ident.Identifier{ident.New("a"), ident.New("b")},
		ParamTypes:   []types.IntermediateType{types.FromPrimitive(types.Int), types.FromPrimitive(types.Int)},
	}
	sum := &ast.Node{
		Type:  ast.NodeBinaryOp,
		BinOp: ast.OpAdd,
		Children: []*ast.Node{
			{Type: ast.NodeIdentifierExpr, Name: ident.New("a")},
			{Type: ast.NodeIdentifierExpr, Name: ident.New("b")},
		},
	}
	ret := ast.New(ast.NodeReturnStatement, sum)
	addFn.AddChild(ret)

	ns := &ast.Node{Type: ast.NodeNamespace, Name: ident.New("math")}
	ns.AddChild(addFn)

	pi := &ast.Node{Type: ast.NodeVarDecl, Name: ident.New("PI"), DeclaredType: types.FromPrimitive(types.Int)}
	pi.AddChild(&ast.Node{Type: ast.NodeLiteral, LiteralKind: ast.LiteralInt, IntValue: 3})

	limit := &ast.Node{
		Type:         ast.NodeVarDecl,
		Name:         ident.New("LIMIT"),
		DeclaredType: types.FromPrimitive(types.Int),
		Extern:       true,
	}

	return ast.New(ast.NodeTopLevel, ns, pi, limit)
}

func TestCompileFileProducesObjectsAndOutgoingSurface(t *testing.T) {
	root := buildSampleTree()
	_, err := resolve.Resolve(root, "")
	require.NoError(t, err)

	dir := t.TempDir()
	objects, outgoing, err := CompileFile(root, dir)
	require.NoError(t, err)

	require.Len(t, objects, 3) // math/add.jobj, math/static.jobj, static.jobj
	var names []string
	for _, o := range objects {
		names = append(names, filepath.Base(o.Path))
	}
	assert.Contains(t, names, "add.jobj")
	assert.Contains(t, names, "static.jobj")

	require.Len(t, outgoing, 2)
	var outgoingNames []string
	for _, u := range outgoing {
		outgoingNames = append(outgoingNames, u.Name.String())
	}
	assert.Contains(t, outgoingNames, "math::add")
	assert.Contains(t, outgoingNames, "LIMIT")
}

func TestCompileFileRejectsUninitializedNonExternGlobal(t *testing.T) {
	bad := &ast.Node{Type: ast.NodeVarDecl, Name: ident.New("oops"), DeclaredType: types.FromPrimitive(types.Int)}
	root := ast.New(ast.NodeTopLevel, bad)
	_, err := resolve.Resolve(root, "")
	require.NoError(t, err)

	_, _, err = CompileFile(root, t.TempDir())
	require.Error(t, err)
}

func TestCompileFileResolvesStructFieldTypes(t *testing.T) {
	point := &ast.Node{Type: ast.NodeStructDef, Name: ident.New("Point")}
	point.AddChild(&ast.Node{Type: ast.NodeVarDecl, Name: ident.New("x"), DeclaredType: types.FromPrimitive(types.Int)})
	point.AddChild(&ast.Node{Type: ast.NodeVarDecl, Name: ident.New("y"), DeclaredType: types.FromPrimitive(types.Int)})

	area := &ast.Node{
		Type:         ast.NodeFunctionDef,
		Name:         ident.New("area"),
		DeclaredType: types.FromPrimitive(types.Int),
		Params:       []ident.Identifier{ident.New("p")},
		ParamTypes:   []types.IntermediateType{types.FromSpecifier(types.IdSpecifier(ident.New("Point")))},
	}
	area.AddChild(ast.New(ast.NodeReturnStatement, &ast.Node{Type: ast.NodeLiteral, LiteralKind: ast.LiteralInt, IntValue: 0}))

	root := ast.New(ast.NodeTopLevel, point, area)
	_, err := resolve.Resolve(root, "")
	require.NoError(t, err)

	objects, _, err := CompileFile(root, t.TempDir())
	require.NoError(t, err)

	_, ok := point.GetTag("resolved_type")
	assert.True(t, ok, "struct definition should carry a resolved TypeTag")

	var names []string
	for _, o := range objects {
		names = append(names, filepath.Base(o.Path))
	}
	assert.Contains(t, names, "Point.jobj")
	assert.Contains(t, names, "area.jobj")
}

func TestCompileFileRejectsUnknownParameterType(t *testing.T) {
	fn := &ast.Node{
		Type:         ast.NodeFunctionDef,
		Name:         ident.New("use"),
		DeclaredType: types.FromPrimitive(types.Int),
		Params:       []ident.Identifier{ident.New("v")},
		ParamTypes:   []types.IntermediateType{types.FromSpecifier(types.IdSpecifier(ident.New("Nonexistent")))},
	}
	fn.AddChild(ast.New(ast.NodeReturnStatement, &ast.Node{Type: ast.NodeLiteral, LiteralKind: ast.LiteralInt, IntValue: 0}))

	root := ast.New(ast.NodeTopLevel, fn)
	_, err := resolve.Resolve(root, "")
	require.NoError(t, err)

	_, _, err = CompileFile(root, t.TempDir())
	require.Error(t, err)
}

func TestStaticInitializerEvaluatesInSourceOrder(t *testing.T) {
	sum := &ast.Node{
		Type:  ast.NodeBinaryOp,
		BinOp: ast.OpAdd,
		Children: []*ast.Node{
			{Type: ast.NodeLiteral, LiteralKind: ast.LiteralInt, IntValue: 2},
			{Type: ast.NodeLiteral, LiteralKind: ast.LiteralInt, IntValue: 3},
		},
	}
	x := &ast.Node{Type: ast.NodeVarDecl, Name: ident.New("x"), DeclaredType: types.FromPrimitive(types.Int)}
	x.AddChild(sum)
	root := ast.New(ast.NodeTopLevel, x)
	_, err := resolve.Resolve(root, "")
	require.NoError(t, err)

	mod := SplitByModule(root)[0]
	obj, err := BuildStaticObject(mod, t.TempDir())
	require.NoError(t, err)

	// Ignoring labels: push 3; push 2; add; set_symbol x; push 0; return.
	var instructions []string
	for _, line := range obj.Assembly {
		if strings.HasPrefix(line, "label ") || strings.HasPrefix(line, "public_label ") {
			continue
		}
		instructions = append(instructions, line)
	}
	assert.Equal(t, []string{"push 3", "push 2", "add", "set_symbol x", "push 0", "return"}, instructions)
}

func TestModuleDirCreatesNestedPath(t *testing.T) {
	m := Module{Identifier: ident.New("a", "b")}
	dir := m.Dir("/base")
	assert.Equal(t, filepath.Join("/base", "a", "b"), dir)
}
