package codegen

import (
	"fmt"
	"strconv"

	"jodin.dev/jodinc/pkg/ast"
	"jodin.dev/jodinc/pkg/asmblock"
	"jodin.dev/jodinc/pkg/bytecode"
	"jodin.dev/jodinc/pkg/jerr"
)

// CompileExpression translates n to an AssemblyBlock that, once executed,
// leaves exactly one value on the operand stack.
func (c *Compiler) CompileExpression(n *ast.Node) (*asmblock.AssemblyBlock, error) {
	switch n.Type {
	case ast.NodeLiteral:
		return c.compileLiteral(n)
	case ast.NodeIdentifierExpr:
		return c.identifierBlock(n), nil
	case ast.NodeBinaryOp:
		return c.compileBinaryOp(n)
	case ast.NodeUnaryOp:
		return c.compileUnaryOp(n)
	case ast.NodeFunctionCall:
		return c.compileFunctionCall(n)
	case ast.NodeIndexExpr:
		return c.compileIndexExpr(n)
	case ast.NodeMemberAccess:
		return c.compileMemberAccess(n)
	default:
		return nil, jerr.ErrUnsupportedNode.New(n.Type.String())
	}
}

func (c *Compiler) compileLiteral(n *ast.Node) (*asmblock.AssemblyBlock, error) {
	var value string
	switch n.LiteralKind {
	case ast.LiteralInt:
		value = strconv.FormatInt(n.IntValue, 10)
	case ast.LiteralFloat, ast.LiteralDouble:
		value = strconv.FormatFloat(n.FloatValue, 'g', -1, 64)
	case ast.LiteralBoolean:
		value = strconv.FormatBool(n.BoolValue)
	case ast.LiteralChar:
		value = fmt.Sprintf("'%s'", n.StringValue)
	case ast.LiteralString:
		value = strconv.Quote(n.StringValue)
	case ast.LiteralNull:
		value = "null"
	default:
		return nil, jerr.ErrUnsupportedNode.New("literal")
	}
	return single(bytecode.Push{Value: value}), nil
}

// identifierBlock compiles a use-occurrence: a locally bound variable
// reads from its slot, anything else falls back to the resolved absolute
// identifier's symbol-table entry.
func (c *Compiler) identifierBlock(n *ast.Node) *asmblock.AssemblyBlock {
	if slot, ok := c.vars.Resolve(n.Name.This()); ok {
		return single(bytecode.GetVar{Slot: slot})
	}
	name := n.Name.String()
	if tag, err := ast.GetTagAs[ast.ResolvedIdentityTag](n, "resolved_identity"); err == nil {
		name = tag.Absolute.String()
	}
	return single(bytecode.GetSymbol{Name: name})
}

// compileBinaryOp emits operands RHS-first, LHS-second (instructions are
// stack-based with LHS-on-top semantics) followed by the operator. `==`,
// `!=`, and the four ordering comparisons have no dedicated instruction
// and are built out of Subtract/GT0/Boolify/Not, per the behavioral
// contract's comparison recipe; `&&`/`||` share And/Or with bitwise use —
// there is no short-circuit encoding.
func (c *Compiler) compileBinaryOp(n *ast.Node) (*asmblock.AssemblyBlock, error) {
	if len(n.Children) != 2 {
		return nil, jerr.ErrUnsupportedNode.New("binary_op with != 2 operands")
	}
	lhs, rhs := n.Children[0], n.Children[1]

	pushBoth := func(first, second *ast.Node) (*asmblock.AssemblyBlock, error) {
		block := asmblock.NewAnonymous()
		firstBlock, err := c.CompileExpression(first)
		if err != nil {
			return nil, err
		}
		secondBlock, err := c.CompileExpression(second)
		if err != nil {
			return nil, err
		}
		block.InsertBlock(firstBlock)
		block.InsertBlock(secondBlock)
		return block, nil
	}

	switch n.BinOp {
	case ast.OpEq:
		block, err := pushBoth(rhs, lhs)
		if err != nil {
			return nil, err
		}
		block.InsertAsm(bytecode.Arithmetic{Op: bytecode.OpSubtract})
		block.InsertAsm(bytecode.Arithmetic{Op: bytecode.OpBoolify})
		block.InsertAsm(bytecode.Arithmetic{Op: bytecode.OpNot})
		return block, nil
	case ast.OpNeq:
		block, err := pushBoth(rhs, lhs)
		if err != nil {
			return nil, err
		}
		block.InsertAsm(bytecode.Arithmetic{Op: bytecode.OpSubtract})
		block.InsertAsm(bytecode.Arithmetic{Op: bytecode.OpBoolify})
		return block, nil
	case ast.OpLt:
		block, err := pushBoth(rhs, lhs)
		if err != nil {
			return nil, err
		}
		block.InsertAsm(bytecode.Arithmetic{Op: bytecode.OpSubtract})
		block.InsertAsm(bytecode.Arithmetic{Op: bytecode.OpGT0})
		return block, nil
	case ast.OpGt:
		block, err := pushBoth(lhs, rhs)
		if err != nil {
			return nil, err
		}
		block.InsertAsm(bytecode.Arithmetic{Op: bytecode.OpSubtract})
		block.InsertAsm(bytecode.Arithmetic{Op: bytecode.OpGT0})
		return block, nil
	case ast.OpLte:
		block, err := pushBoth(lhs, rhs)
		if err != nil {
			return nil, err
		}
		block.InsertAsm(bytecode.Arithmetic{Op: bytecode.OpSubtract})
		block.InsertAsm(bytecode.Arithmetic{Op: bytecode.OpGT0})
		block.InsertAsm(bytecode.Arithmetic{Op: bytecode.OpNot})
		return block, nil
	case ast.OpGte:
		block, err := pushBoth(rhs, lhs)
		if err != nil {
			return nil, err
		}
		block.InsertAsm(bytecode.Arithmetic{Op: bytecode.OpSubtract})
		block.InsertAsm(bytecode.Arithmetic{Op: bytecode.OpGT0})
		block.InsertAsm(bytecode.Arithmetic{Op: bytecode.OpNot})
		return block, nil
	default:
		op, err := arithOpFor(n.BinOp)
		if err != nil {
			return nil, err
		}
		block, err := pushBoth(rhs, lhs)
		if err != nil {
			return nil, err
		}
		block.InsertAsm(bytecode.Arithmetic{Op: op})
		return block, nil
	}
}

func arithOpFor(op ast.BinaryOp) (bytecode.ArithOp, error) {
	switch op {
	case ast.OpAdd:
		return bytecode.OpAdd, nil
	case ast.OpSub:
		return bytecode.OpSubtract, nil
	case ast.OpMul:
		return bytecode.OpMultiply, nil
	case ast.OpDiv:
		return bytecode.OpDivide, nil
	case ast.OpMod:
		return bytecode.OpRemainder, nil
	case ast.OpAnd:
		return bytecode.OpAnd, nil
	case ast.OpOr:
		return bytecode.OpOr, nil
	default:
		return 0, jerr.ErrUnsupportedNode.New("binary_op")
	}
}

// compileUnaryOp has no dedicated negate instruction in the behavioral
// contract, so numeric negation lowers to `0 - operand`; boolean not maps
// straight to the Not instruction.
func (c *Compiler) compileUnaryOp(n *ast.Node) (*asmblock.AssemblyBlock, error) {
	if len(n.Children) != 1 {
		return nil, jerr.ErrUnsupportedNode.New("unary_op with != 1 operand")
	}
	operand, err := c.CompileExpression(n.Children[0])
	if err != nil {
		return nil, err
	}

	block := asmblock.NewAnonymous()
	switch n.UnOp {
	case ast.OpNegate:
		block.InsertAsm(bytecode.Push{Value: "0"})
		block.InsertBlock(operand)
		block.InsertAsm(bytecode.Arithmetic{Op: bytecode.OpSubtract})
	case ast.OpNot:
		block.InsertBlock(operand)
		block.InsertAsm(bytecode.Arithmetic{Op: bytecode.OpNot})
	default:
		return nil, jerr.ErrUnsupportedNode.New("unary_op")
	}
	return block, nil
}

// compileFunctionCall: push(args reversed); push("call"); <callee>;
// SendMessage.
func (c *Compiler) compileFunctionCall(n *ast.Node) (*asmblock.AssemblyBlock, error) {
	block := asmblock.NewAnonymous()
	for i := len(n.Children) - 1; i >= 0; i-- {
		argBlock, err := c.CompileExpression(n.Children[i])
		if err != nil {
			return nil, err
		}
		block.InsertBlock(argBlock)
	}
	block.InsertAsm(bytecode.Push{Value: strconv.Quote("call")})
	block.InsertBlock(c.identifierBlock(n))
	block.InsertAsm(bytecode.SendMessage{})
	return block, nil
}

// compileIndexExpr: base expression, then index expression, then Index.
func (c *Compiler) compileIndexExpr(n *ast.Node) (*asmblock.AssemblyBlock, error) {
	if len(n.Children) != 2 {
		return nil, jerr.ErrUnsupportedNode.New("index_expr with != 2 children")
	}
	block := asmblock.NewAnonymous()
	base, err := c.CompileExpression(n.Children[0])
	if err != nil {
		return nil, err
	}
	index, err := c.CompileExpression(n.Children[1])
	if err != nil {
		return nil, err
	}
	block.InsertBlock(base)
	block.InsertBlock(index)
	block.InsertAsm(bytecode.Index{})
	return block, nil
}

// compileMemberAccess: base expression, then GetAttribute(name).
func (c *Compiler) compileMemberAccess(n *ast.Node) (*asmblock.AssemblyBlock, error) {
	if len(n.Children) != 1 {
		return nil, jerr.ErrUnsupportedNode.New("member_access with != 1 child")
	}
	base, err := c.CompileExpression(n.Children[0])
	if err != nil {
		return nil, err
	}
	block := asmblock.NewAnonymous()
	block.InsertBlock(base)
	block.InsertAsm(bytecode.GetAttribute{Name: n.Name.String()})
	return block, nil
}
