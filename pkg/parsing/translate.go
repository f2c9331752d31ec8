package parsing

import (
	"strconv"
	"strings"

	pc "github.com/prataprc/goparsec"
	jast "jodin.dev/jodinc/pkg/ast"
	"jodin.dev/jodinc/pkg/ident"
	"jodin.dev/jodinc/pkg/jerr"
	"jodin.dev/jodinc/pkg/registry"
	"jodin.dev/jodinc/pkg/types"
)

// applyVisibility attaches an explicit `pub`/`private` qualifier to the
// translated declaration; without one, identity creation falls back to
// protected.
func applyVisibility(node *jast.Node, visNode pc.Queryable) {
	if !maybePresent(visNode, "visibility") {
		return
	}
	switch visNode.GetValue() {
	case "pub":
		node.SetTag(jast.VisibilityTag{Visibility: registry.Public})
	case "private":
		node.SetTag(jast.VisibilityTag{Visibility: registry.Private})
	}
}

// maybePresent reports whether an ast.Maybe combinator named wrapperName
// actually matched: on success goparsec's OrdChoice/Maybe flatten through
// to the wrapped sub-parser's own node, so the node handed back carries a
// different name than the Maybe itself; on failure the node handed back
// is either the wrapper's own (childless) node or goparsec's "missing"
// placeholder, and neither counts as present.
func maybePresent(n pc.Queryable, wrapperName string) bool {
	if n == nil {
		return false
	}
	name := n.GetName()
	return name != wrapperName && name != "missing"
}

// FromAST converts a goparsec parse tree rooted at "program" into the
// top-level ast.Node the rest of the pipeline consumes.
func (p *Parser) FromAST(root pc.Queryable) (*jast.Node, error) {
	if root == nil || root.GetName() != "program" {
		return nil, jerr.ErrParse.New("expected a program node at the root")
	}

	var items []*jast.Node
	for _, child := range root.GetChildren() {
		item, err := translateItem(child)
		if err != nil {
			return nil, err
		}
		if item != nil {
			items = append(items, item)
		}
	}
	return jast.New(jast.NodeTopLevel, items...), nil
}

func translateItem(n pc.Queryable) (*jast.Node, error) {
	switch n.GetName() {
	case "comment":
		return nil, nil
	case "namespace_decl":
		return translateNamespace(n)
	case "import_decl":
		return translateImport(n)
	case "function_def":
		return translateFunctionDef(n)
	case "struct_def":
		return translateStructDef(n)
	case "var_decl":
		return translateVarDecl(n)
	default:
		return nil, jerr.ErrParse.New("unexpected top-level item: " + n.GetName())
	}
}

func translateNamespace(n pc.Queryable) (*jast.Node, error) {
	children := n.GetChildren()
	name := children[1].GetValue()

	var members []*jast.Node
	for _, child := range children[3].GetChildren() {
		m, err := translateItem(child)
		if err != nil {
			return nil, err
		}
		if m != nil {
			members = append(members, m)
		}
	}
	return &jast.Node{Type: jast.NodeNamespace, Name: ident.New(name), Children: members}, nil
}

func translateImport(n pc.Queryable) (*jast.Node, error) {
	children := n.GetChildren()
	raw := children[1].GetValue()
	wildcard := strings.HasSuffix(raw, "::*")
	path := strings.TrimSuffix(raw, "::*")

	node := &jast.Node{Type: jast.NodeImport, ImportPath: ident.FromString(path), Wildcard: wildcard}
	if maybePresent(children[2], "import_alias") {
		alias := children[2]
		node.ImportAlias = ident.New(alias.GetChildren()[1].GetValue())
	}
	return node, nil
}

func translateFunctionDef(n pc.Queryable) (*jast.Node, error) {
	children := n.GetChildren()
	name := children[2].GetValue()

	var params []ident.Identifier
	var paramTypes []types.IntermediateType
	for _, p := range children[4].GetChildren() {
		pfields := p.GetChildren()
		params = append(params, ident.New(pfields[0].GetValue()))
		ptype, err := parseSourceType(pfields[2].GetValue())
		if err != nil {
			return nil, err
		}
		paramTypes = append(paramTypes, ptype)
	}

	retType := types.FromPrimitive(types.Void)
	if maybePresent(children[6], "return_type") {
		var err error
		retType, err = parseSourceType(children[6].GetChildren()[1].GetValue())
		if err != nil {
			return nil, err
		}
	}

	var body []*jast.Node
	for _, s := range children[8].GetChildren() {
		stmt, err := translateStatement(s)
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			body = append(body, stmt)
		}
	}

	node := &jast.Node{
		Type: jast.NodeFunctionDef, Name: ident.New(name),
		Params: params, ParamTypes: paramTypes, DeclaredType: retType,
		Children: body,
	}
	applyVisibility(node, children[0])
	return node, nil
}

func translateStructDef(n pc.Queryable) (*jast.Node, error) {
	children := n.GetChildren()
	name := children[2].GetValue()

	var fields []*jast.Node
	for _, f := range children[4].GetChildren() {
		fc := f.GetChildren()
		ftype, err := parseSourceType(fc[2].GetValue())
		if err != nil {
			return nil, err
		}
		fields = append(fields, &jast.Node{Type: jast.NodeVarDecl, Name: ident.New(fc[0].GetValue()), DeclaredType: ftype})
	}
	node := &jast.Node{Type: jast.NodeStructDef, Name: ident.New(name), Children: fields}
	applyVisibility(node, children[0])
	return node, nil
}

func translateVarDecl(n pc.Queryable) (*jast.Node, error) {
	return translateVarDeclInner(n.GetChildren()[0])
}

func translateVarDeclInner(n pc.Queryable) (*jast.Node, error) {
	children := n.GetChildren()
	extern := maybePresent(children[1], "extern_mark")
	name := children[3].GetValue()
	declType, err := parseSourceType(children[5].GetValue())
	if err != nil {
		return nil, err
	}

	node := &jast.Node{Type: jast.NodeVarDecl, Name: ident.New(name), DeclaredType: declType, Extern: extern}
	applyVisibility(node, children[0])
	if maybePresent(children[6], "init") {
		initExpr, err := translateExprNode(children[6].GetChildren()[1])
		if err != nil {
			return nil, err
		}
		node.Children = []*jast.Node{initExpr}
	}
	return node, nil
}

func translateStatement(n pc.Queryable) (*jast.Node, error) {
	switch n.GetName() {
	case "comment":
		return nil, nil
	case "var_decl":
		return translateVarDecl(n)
	case "if_stmt":
		return translateIfStmt(n)
	case "while_stmt":
		return translateWhileStmt(n)
	case "for_stmt":
		return translateForStmt(n)
	case "return_stmt":
		return translateReturnStmt(n)
	case "block":
		return translateBlock(n)
	case "expr_stmt":
		return translateExprStmt(n)
	default:
		return nil, jerr.ErrParse.New("unexpected statement: " + n.GetName())
	}
}

func translateBlock(n pc.Queryable) (*jast.Node, error) {
	var stmts []*jast.Node
	for _, s := range n.GetChildren()[1].GetChildren() {
		stmt, err := translateStatement(s)
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	return &jast.Node{Type: jast.NodeBlock, Children: stmts}, nil
}

func translateIfStmt(n pc.Queryable) (*jast.Node, error) {
	children := n.GetChildren()
	cond, err := translateExprNode(children[2])
	if err != nil {
		return nil, err
	}
	thenBlock, err := translateBlock(children[4])
	if err != nil {
		return nil, err
	}
	node := &jast.Node{Type: jast.NodeIfStatement, Children: []*jast.Node{cond, thenBlock}}

	if maybePresent(children[5], "else_clause") {
		branch := children[5].GetChildren()[1]
		var elseNode *jast.Node
		if branch.GetName() == "if_stmt" {
			elseNode, err = translateIfStmt(branch)
		} else {
			elseNode, err = translateBlock(branch)
		}
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, elseNode)
	}
	return node, nil
}

func translateWhileStmt(n pc.Queryable) (*jast.Node, error) {
	children := n.GetChildren()
	cond, err := translateExprNode(children[2])
	if err != nil {
		return nil, err
	}
	body, err := translateBlock(children[4])
	if err != nil {
		return nil, err
	}
	return &jast.Node{Type: jast.NodeWhileStatement, Children: []*jast.Node{cond, body}}, nil
}

func translateAssignInner(n pc.Queryable) (*jast.Node, error) {
	children := n.GetChildren()
	target := &jast.Node{Type: jast.NodeIdentifierExpr, Name: ident.New(children[0].GetValue())}
	rhs, err := translateExprNode(children[2])
	if err != nil {
		return nil, err
	}
	return &jast.Node{Type: jast.NodeAssignment, Children: []*jast.Node{target, rhs}}, nil
}

func translateForStmt(n pc.Queryable) (*jast.Node, error) {
	children := n.GetChildren()

	var init *jast.Node
	var err error
	initNode := children[2]
	if initNode.GetName() == "var_decl_inner" {
		init, err = translateVarDeclInner(initNode)
	} else {
		init, err = translateAssignInner(initNode)
	}
	if err != nil {
		return nil, err
	}

	cond, err := translateExprNode(children[4])
	if err != nil {
		return nil, err
	}

	var step *jast.Node
	stepNode := children[6]
	if stepNode.GetName() == "assign_inner" {
		step, err = translateAssignInner(stepNode)
	} else {
		var expr *jast.Node
		expr, err = translateExprNode(stepNode)
		if err == nil {
			step = &jast.Node{Type: jast.NodeExpressionStatement, Children: []*jast.Node{expr}}
		}
	}
	if err != nil {
		return nil, err
	}

	body, err := translateBlock(children[8])
	if err != nil {
		return nil, err
	}

	return &jast.Node{Type: jast.NodeForStatement, Children: []*jast.Node{init, cond, step, body}}, nil
}

func translateReturnStmt(n pc.Queryable) (*jast.Node, error) {
	children := n.GetChildren()
	if !maybePresent(children[1], "value") {
		return &jast.Node{Type: jast.NodeReturnStatement}, nil
	}
	val, err := translateExprNode(children[1])
	if err != nil {
		return nil, err
	}
	return &jast.Node{Type: jast.NodeReturnStatement, Children: []*jast.Node{val}}, nil
}

func translateExprStmt(n pc.Queryable) (*jast.Node, error) {
	head := n.GetChildren()[0]
	if head.GetName() == "assign_inner" {
		return translateAssignInner(head)
	}
	expr, err := translateExprNode(head)
	if err != nil {
		return nil, err
	}
	return &jast.Node{Type: jast.NodeExpressionStatement, Children: []*jast.Node{expr}}, nil
}

// binaryOpFor maps an operator token's literal value to its BinaryOp, for
// one precedence level at a time.
func binaryOpFor(symbol string) (jast.BinaryOp, bool) {
	switch symbol {
	case "+":
		return jast.OpAdd, true
	case "-":
		return jast.OpSub, true
	case "*":
		return jast.OpMul, true
	case "/":
		return jast.OpDiv, true
	case "%":
		return jast.OpMod, true
	case "==":
		return jast.OpEq, true
	case "!=":
		return jast.OpNeq, true
	case "<":
		return jast.OpLt, true
	case "<=":
		return jast.OpLte, true
	case ">":
		return jast.OpGt, true
	case ">=":
		return jast.OpGte, true
	case "&&":
		return jast.OpAnd, true
	case "||":
		return jast.OpOr, true
	default:
		return 0, false
	}
}

// foldBinaryChain translates one precedence level's node (operand, then a
// Kleene tail of (op, operand) pairs) into a left-associative chain of
// NodeBinaryOp nodes.
func foldBinaryChain(children []pc.Queryable) (*jast.Node, error) {
	left, err := translateExprNode(children[0])
	if err != nil {
		return nil, err
	}
	for _, pair := range children[1].GetChildren() {
		opnode := pair.GetChildren()
		op, ok := binaryOpFor(opnode[0].GetValue())
		if !ok {
			return nil, jerr.ErrParse.New("unknown binary operator: " + opnode[0].GetValue())
		}
		right, err := translateExprNode(opnode[1])
		if err != nil {
			return nil, err
		}
		left = &jast.Node{Type: jast.NodeBinaryOp, BinOp: op, Children: []*jast.Node{left, right}}
	}
	return left, nil
}

func translateExprNode(n pc.Queryable) (*jast.Node, error) {
	switch n.GetName() {
	case "or_expr", "and_expr", "eq_expr", "rel_expr", "add_expr", "mul_expr":
		return foldBinaryChain(n.GetChildren())

	case "unary_apply":
		children := n.GetChildren()
		operand, err := translateExprNode(children[1])
		if err != nil {
			return nil, err
		}
		op := jast.OpNegate
		if children[0].GetValue() == "!" {
			op = jast.OpNot
		}
		return &jast.Node{Type: jast.NodeUnaryOp, UnOp: op, Children: []*jast.Node{operand}}, nil

	case "postfix_expr":
		return translatePostfix(n)

	case "paren_expr":
		return translateExprNode(n.GetChildren()[1])

	case "call_expr":
		return translateCall(n)

	case "ident_expr":
		return &jast.Node{Type: jast.NodeIdentifierExpr, Name: ident.New(n.GetChildren()[0].GetValue())}, nil

	case "STRING":
		return translateStringLiteral(n.GetValue())
	case "CHAR":
		return translateCharLiteral(n.GetValue())
	case "TRUE":
		return &jast.Node{Type: jast.NodeLiteral, LiteralKind: jast.LiteralBoolean, BoolValue: true}, nil
	case "FALSE":
		return &jast.Node{Type: jast.NodeLiteral, LiteralKind: jast.LiteralBoolean, BoolValue: false}, nil
	case "NULL":
		return &jast.Node{Type: jast.NodeLiteral, LiteralKind: jast.LiteralNull}, nil

	default:
		// pc.Int()/pc.Float() leaves: dispatch on content rather than a
		// guessed node name, since the library doesn't document one.
		value := n.GetValue()
		if strings.ContainsAny(value, ".eE") {
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, jerr.ErrIncorrectLiteralType.New(value)
			}
			return &jast.Node{Type: jast.NodeLiteral, LiteralKind: jast.LiteralFloat, FloatValue: f}, nil
		}
		if isNumeric(value) {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, jerr.ErrIncorrectLiteralType.New(value)
			}
			return &jast.Node{Type: jast.NodeLiteral, LiteralKind: jast.LiteralInt, IntValue: i}, nil
		}
		return nil, jerr.ErrParse.New("unexpected expression node: " + n.GetName())
	}
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == '-' || s[0] == '+' {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// unescape rewrites the backslash escapes a string or char literal may
// contain into the characters they denote.
func unescape(s string) (string, error) {
	if !strings.ContainsRune(s, '\\') {
		return s, nil
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			b.WriteByte(s[i])
			continue
		}
		if i+1 >= len(s) {
			return "", jerr.ErrInvalidEscapeSequence.New(`\`)
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '0':
			b.WriteByte(0)
		case '\\', '"', '\'':
			b.WriteByte(s[i])
		default:
			return "", jerr.ErrInvalidEscapeSequence.New(`\` + string(s[i]))
		}
	}
	return b.String(), nil
}

func translateStringLiteral(raw string) (*jast.Node, error) {
	unquoted := strings.TrimSuffix(strings.TrimPrefix(raw, `"`), `"`)
	value, err := unescape(unquoted)
	if err != nil {
		return nil, err
	}
	return &jast.Node{Type: jast.NodeLiteral, LiteralKind: jast.LiteralString, StringValue: value}, nil
}

func translateCharLiteral(raw string) (*jast.Node, error) {
	unquoted := strings.TrimSuffix(strings.TrimPrefix(raw, "'"), "'")
	value, err := unescape(unquoted)
	if err != nil {
		return nil, err
	}
	if len([]rune(value)) != 1 {
		return nil, jerr.ErrIncorrectLiteralType.New(raw)
	}
	return &jast.Node{Type: jast.NodeLiteral, LiteralKind: jast.LiteralChar, StringValue: value}, nil
}

func translateCall(n pc.Queryable) (*jast.Node, error) {
	children := n.GetChildren()
	name := children[0].GetValue()

	var args []*jast.Node
	for _, a := range children[2].GetChildren() {
		arg, err := translateExprNode(a)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return &jast.Node{Type: jast.NodeFunctionCall, Name: ident.New(name), Children: args}, nil
}

func translatePostfix(n pc.Queryable) (*jast.Node, error) {
	children := n.GetChildren()
	base, err := translateExprNode(children[0])
	if err != nil {
		return nil, err
	}

	for _, tail := range children[1].GetChildren() {
		switch tail.GetName() {
		case "index_tail":
			idx, err := translateExprNode(tail.GetChildren()[1])
			if err != nil {
				return nil, err
			}
			base = &jast.Node{Type: jast.NodeIndexExpr, Children: []*jast.Node{base, idx}}
		case "member_tail":
			member := tail.GetChildren()[1].GetValue()
			base = &jast.Node{Type: jast.NodeMemberAccess, Name: ident.New(member), Children: []*jast.Node{base}}
		default:
			return nil, jerr.ErrParse.New("unexpected postfix tail: " + tail.GetName())
		}
	}
	return base, nil
}
