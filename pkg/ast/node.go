// Package ast is the tagged AST node model that the rest of the pipeline
// (C5 identity resolution, C6 type environment, C7 codegen) walks and
// annotates.
package ast

import (
	"jodin.dev/jodinc/pkg/ident"
	"jodin.dev/jodinc/pkg/types"
)

// NodeType enumerates the AST node kinds the pipeline understands. It is
// deliberately flat (a tagged union via a Kind field) rather than a Go
// interface hierarchy — the same node gets mutated in place as passes
// attach tags to it, which is awkward with interface-typed children.
type NodeType int

const (
	NodeInvalid NodeType = iota
	NodeTopLevel
	NodeNamespace
	NodeFunctionDef
	NodeStructDef
	NodeVarDecl
	NodeBlock
	NodeIfStatement
	NodeWhileStatement
	NodeForStatement
	NodeReturnStatement
	NodeExpressionStatement
	NodeImport
	NodeLiteral
	NodeIdentifierExpr
	NodeBinaryOp
	NodeUnaryOp
	NodeFunctionCall
	NodeIndexExpr
	NodeMemberAccess
	NodeAssignment
)

func (t NodeType) String() string {
	names := map[NodeType]string{
		NodeInvalid:             "invalid",
		NodeTopLevel:            "top_level",
		NodeNamespace:           "namespace",
		NodeFunctionDef:         "function_def",
		NodeStructDef:           "struct_def",
		NodeVarDecl:             "var_decl",
		NodeBlock:               "block",
		NodeIfStatement:         "if_statement",
		NodeWhileStatement:      "while_statement",
		NodeForStatement:        "for_statement",
		NodeReturnStatement:     "return_statement",
		NodeExpressionStatement: "expression_statement",
		NodeImport:              "import",
		NodeLiteral:             "literal",
		NodeIdentifierExpr:      "identifier_expr",
		NodeBinaryOp:            "binary_op",
		NodeUnaryOp:             "unary_op",
		NodeFunctionCall:        "function_call",
		NodeIndexExpr:           "index_expr",
		NodeMemberAccess:        "member_access",
		NodeAssignment:          "assignment",
	}
	if n, ok := names[t]; ok {
		return n
	}
	return "unknown"
}

// BinaryOp enumerates the binary operators a NodeBinaryOp node carries.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
	OpAnd // non-short-circuiting, see DESIGN.md Open Question resolutions
	OpOr  // non-short-circuiting, see DESIGN.md Open Question resolutions
)

// UnaryOp enumerates the unary operators a NodeUnaryOp node carries.
type UnaryOp int

const (
	OpNegate UnaryOp = iota
	OpNot
)

// LiteralKind discriminates a NodeLiteral node's payload.
type LiteralKind int

const (
	LiteralInt LiteralKind = iota
	LiteralFloat
	LiteralDouble
	LiteralBoolean
	LiteralChar
	LiteralString
	LiteralNull
)

// Node is one vertex of the AST. Exactly the fields relevant to its Type
// are populated; the rest are zero.
type Node struct {
	Type     NodeType
	Children []*Node
	Tags     []Tag

	// identifiers
	Name   ident.Identifier // NodeFunctionDef, NodeStructDef, NodeVarDecl, NodeNamespace, NodeIdentifierExpr
	Params []ident.Identifier

	// types
	DeclaredType types.IntermediateType   // NodeVarDecl, NodeFunctionDef's return type
	ParamTypes   []types.IntermediateType // NodeFunctionDef, parallel to Params

	// Extern marks a NodeVarDecl as declared-but-not-defined: it carries
	// no initializer child and module splitting emits a TranslationUnit
	// for it instead of a static initializer store.
	Extern bool

	// literals
	LiteralKind LiteralKind
	IntValue    int64
	FloatValue  float64
	BoolValue   bool
	StringValue string

	// operators
	BinOp   BinaryOp
	UnOp    UnaryOp
	ImportAlias ident.Identifier
	ImportPath  ident.Identifier
	Wildcard    bool // NodeImport: import path::* rather than a single name
}

// New builds a bare node of the given type with the given children.
func New(t NodeType, children ...*Node) *Node {
	return &Node{Type: t, Children: children}
}

// AddChild appends a child node.
func (n *Node) AddChild(child *Node) {
	n.Children = append(n.Children, child)
}

// Walk visits n and every descendant in pre-order, depth first.
func Walk(n *Node, visit func(*Node)) {
	if n == nil {
		return
	}
	visit(n)
	for _, c := range n.Children {
		Walk(c, visit)
	}
}
