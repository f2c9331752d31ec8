package codegen

import (
	"jodin.dev/jodinc/pkg/ast"
	"jodin.dev/jodinc/pkg/asmblock"
	"jodin.dev/jodinc/pkg/bytecode"
	"jodin.dev/jodinc/pkg/jerr"
)

// CompileStatement compiles one statement node to an AssemblyBlock that
// leaves the operand stack exactly as it found it (every intermediate
// value a statement produces is consumed before it returns).
func (c *Compiler) CompileStatement(n *ast.Node) (*asmblock.AssemblyBlock, error) {
	switch n.Type {
	case ast.NodeBlock:
		return c.compileBlock(n)
	case ast.NodeVarDecl:
		return c.compileVarDecl(n)
	case ast.NodeIfStatement:
		return c.compileIfStatement(n)
	case ast.NodeWhileStatement:
		return c.compileWhileStatement(n)
	case ast.NodeForStatement:
		return c.compileForStatement(n)
	case ast.NodeReturnStatement:
		return c.compileReturnStatement(n)
	case ast.NodeExpressionStatement:
		return c.compileExpressionStatement(n)
	case ast.NodeAssignment:
		return c.compileAssignment(n)
	case ast.NodeImport:
		// An import only affects identity resolution; it emits no code.
		return asmblock.NewAnonymous(), nil
	default:
		return nil, jerr.ErrUnsupportedNode.New(n.Type.String())
	}
}

func (c *Compiler) compileBlock(n *ast.Node) (*asmblock.AssemblyBlock, error) {
	c.vars.PushScope()
	defer c.vars.PopScope()

	block := asmblock.NewAnonymous()
	for _, stmt := range n.Children {
		stmtBlock, err := c.CompileStatement(stmt)
		if err != nil {
			return nil, err
		}
		block.InsertBlock(stmtBlock)
	}
	return block, nil
}

// compileVarDecl allocates a slot for the declared name and, when an
// initializer is present (its sole child), compiles it and stores it.
// A slot with no initializer is only allocated; nothing is stored into it
// here, so it holds whatever the VM's default is.
func (c *Compiler) compileVarDecl(n *ast.Node) (*asmblock.AssemblyBlock, error) {
	slot := c.vars.Allocate(n.Name.This())
	block := asmblock.NewAnonymous()
	if len(n.Children) > 0 {
		initBlock, err := c.CompileExpression(n.Children[0])
		if err != nil {
			return nil, err
		}
		block.InsertBlock(initBlock)
		block.InsertAsm(bytecode.SetVar{Slot: slot})
	}
	return block, nil
}

// compileIfStatement expects children[0] = condition, children[1] = then
// block, and an optional children[2] = else block.
func (c *Compiler) compileIfStatement(n *ast.Node) (*asmblock.AssemblyBlock, error) {
	if len(n.Children) < 2 {
		return nil, jerr.ErrUnsupportedNode.New("if_statement missing condition or then-block")
	}
	cond, err := c.CompileExpression(n.Children[0])
	if err != nil {
		return nil, err
	}
	thenBlock, err := c.CompileStatement(n.Children[1])
	if err != nil {
		return nil, err
	}

	thenLabel := c.nextLabel("then")
	endLabel := c.nextLabel("end")

	block := asmblock.NewAnonymous()
	block.InsertBlock(cond)

	if len(n.Children) > 2 {
		elseBlock, err := c.CompileStatement(n.Children[2])
		if err != nil {
			return nil, err
		}
		elseLabel := c.nextLabel("else")
		block.InsertAsm(bytecode.IfGoto{Label: thenLabel})
		block.InsertAsm(bytecode.Goto{Label: elseLabel})
		block.InsertAsm(bytecode.Label{Name: thenLabel})
		block.InsertBlock(thenBlock)
		block.InsertAsm(bytecode.Goto{Label: endLabel})
		block.InsertAsm(bytecode.Label{Name: elseLabel})
		block.InsertBlock(elseBlock)
		block.InsertAsm(bytecode.Label{Name: endLabel})
		return block, nil
	}

	block.InsertAsm(bytecode.IfGoto{Label: thenLabel})
	block.InsertAsm(bytecode.Goto{Label: endLabel})
	block.InsertAsm(bytecode.Label{Name: thenLabel})
	block.InsertBlock(thenBlock)
	block.InsertAsm(bytecode.Label{Name: endLabel})
	return block, nil
}

// compileWhileStatement expects children[0] = condition, children[1] = body.
func (c *Compiler) compileWhileStatement(n *ast.Node) (*asmblock.AssemblyBlock, error) {
	if len(n.Children) != 2 {
		return nil, jerr.ErrUnsupportedNode.New("while_statement missing condition or body")
	}
	return c.compileLoop(n.Children[0], n.Children[1], nil)
}

// compileForStatement desugars `for (init; cond; step) body` into the
// same loop/end label shape a while loop uses, wrapped in its own scope
// so the loop variable doesn't leak. Expects children in (init, cond,
// step, body) order.
func (c *Compiler) compileForStatement(n *ast.Node) (*asmblock.AssemblyBlock, error) {
	if len(n.Children) != 4 {
		return nil, jerr.ErrUnsupportedNode.New("for_statement missing init/condition/step/body")
	}
	c.vars.PushScope()
	defer c.vars.PopScope()

	init, err := c.CompileStatement(n.Children[0])
	if err != nil {
		return nil, err
	}

	loopBlock, err := c.compileLoop(n.Children[1], n.Children[3], n.Children[2])
	if err != nil {
		return nil, err
	}

	block := asmblock.NewAnonymous()
	block.InsertBlock(init)
	block.InsertBlock(loopBlock)
	return block, nil
}

// compileLoop builds the shared while/for control flow: evaluate cond,
// exit if falsy, run body (then step, if given), jump back to the top.
func (c *Compiler) compileLoop(cond, body, step *ast.Node) (*asmblock.AssemblyBlock, error) {
	condBlock, err := c.CompileExpression(cond)
	if err != nil {
		return nil, err
	}
	bodyBlock, err := c.CompileStatement(body)
	if err != nil {
		return nil, err
	}
	var stepBlock *asmblock.AssemblyBlock
	if step != nil {
		stepBlock, err = c.CompileStatement(step)
		if err != nil {
			return nil, err
		}
	}

	loopLabel := c.nextLabel("loop")
	endLabel := c.nextLabel("end")

	block := asmblock.NewAnonymous()
	block.InsertAsm(bytecode.Label{Name: loopLabel})
	block.InsertBlock(condBlock)
	block.InsertAsm(bytecode.Arithmetic{Op: bytecode.OpNot})
	block.InsertAsm(bytecode.IfGoto{Label: endLabel})
	block.InsertBlock(bodyBlock)
	if stepBlock != nil {
		block.InsertBlock(stepBlock)
	}
	block.InsertAsm(bytecode.Goto{Label: loopLabel})
	block.InsertAsm(bytecode.Label{Name: endLabel})
	return block, nil
}

// compileReturnStatement: <expression or Empty>; Return.
func (c *Compiler) compileReturnStatement(n *ast.Node) (*asmblock.AssemblyBlock, error) {
	block := asmblock.NewAnonymous()
	if len(n.Children) > 0 {
		exprBlock, err := c.CompileExpression(n.Children[0])
		if err != nil {
			return nil, err
		}
		block.InsertBlock(exprBlock)
	} else {
		block.InsertAsm(bytecode.Push{Value: "empty"})
	}
	block.InsertAsm(bytecode.Return{})
	return block, nil
}

// compileExpressionStatement expression-compiles its sole child, then
// discards the one value it leaves behind.
func (c *Compiler) compileExpressionStatement(n *ast.Node) (*asmblock.AssemblyBlock, error) {
	if len(n.Children) != 1 {
		return nil, jerr.ErrUnsupportedNode.New("expression_statement with != 1 child")
	}
	exprBlock, err := c.CompileExpression(n.Children[0])
	if err != nil {
		return nil, err
	}
	block := asmblock.NewAnonymous()
	block.InsertBlock(exprBlock)
	block.InsertAsm(bytecode.Pop{})
	return block, nil
}

// compileAssignment expects children[0] = target identifier expression,
// children[1] = value expression.
func (c *Compiler) compileAssignment(n *ast.Node) (*asmblock.AssemblyBlock, error) {
	if len(n.Children) != 2 || n.Children[0].Type != ast.NodeIdentifierExpr {
		return nil, jerr.ErrUnsupportedNode.New("assignment with a non-identifier target")
	}
	target := n.Children[0]
	rhs, err := c.CompileExpression(n.Children[1])
	if err != nil {
		return nil, err
	}

	block := asmblock.NewAnonymous()
	block.InsertBlock(rhs)
	if slot, ok := c.vars.Resolve(target.Name.This()); ok {
		block.InsertAsm(bytecode.SetVar{Slot: slot})
		return block, nil
	}
	name := target.Name.String()
	if tag, err := ast.GetTagAs[ast.ResolvedIdentityTag](target, "resolved_identity"); err == nil {
		name = tag.Absolute.String()
	}
	block.InsertAsm(bytecode.SetSymbol{Name: name})
	return block, nil
}
