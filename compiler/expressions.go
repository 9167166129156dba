package compiler

import (
	"github.com/mrunix00/vibelang/ast"
	"github.com/mrunix00/vibelang/errors"
	"github.com/mrunix00/vibelang/object"
	"github.com/mrunix00/vibelang/op"
)

// compileExpr compiles expr and returns the register holding its value.
// Every call pushes exactly one fresh stack slot net of its internal
// work, so callers can uniformly pop it when done.
func (c *Compiler) compileExpr(expr ast.Expr) byte {
	if c.err != nil {
		return 0
	}
	switch e := expr.(type) {
	case *ast.NumberLit:
		reg := c.pushStack()
		c.emitLoadConst(reg, object.NewNumber(e.Value), e.Line())
		return reg
	case *ast.StringLit:
		reg := c.pushStack()
		idx := c.makeStringConstant(e.Value, e.Line())
		c.emitOp(op.LOAD_CONST, e.Line())
		c.emitByte(reg, e.Line())
		c.emitUint16(idx, e.Line())
		return reg
	case *ast.BoolLit:
		reg := c.pushStack()
		if e.Value {
			c.emitOp(op.LOAD_TRUE, e.Line())
		} else {
			c.emitOp(op.LOAD_FALSE, e.Line())
		}
		c.emitByte(reg, e.Line())
		return reg
	case *ast.NullLit:
		reg := c.pushStack()
		c.emitLoadNull(reg, e.Line())
		return reg
	case *ast.ThisExpr:
		return c.compileThis(e)
	case *ast.Identifier:
		return c.compileIdentifierRead(e)
	case *ast.UnaryExpr:
		return c.compileUnary(e)
	case *ast.BinaryExpr:
		return c.compileBinary(e)
	case *ast.AssignExpr:
		return c.compileAssign(e)
	case *ast.CallExpr:
		return c.compileCall(e)
	case *ast.InvokeExpr:
		return c.compileInvoke(e)
	case *ast.IndexExpr:
		return c.compileIndex(e)
	case *ast.GetPropertyExpr:
		return c.compileGetProperty(e)
	case *ast.ArrayLit:
		return c.compileArrayLit(e)
	default:
		c.fail(errors.NewCompileError(errors.E1004, "Unsupported expression."))
		return c.pushStack()
	}
}

func (c *Compiler) compileThis(e *ast.ThisExpr) byte {
	reg, found, initialized := c.resolveLocal("this", false)
	if !found {
		c.fail(errors.NewCompileError(errors.E2001, "Cannot use 'this' outside of a class method."))
		return c.pushStack()
	}
	if !initialized {
		c.fail(errors.NewCompileError(errors.E2009, "Cannot read 'this' before initialization."))
	}
	// "this" already lives in a persistent local register; give the
	// caller a fresh slot holding the same value so stack bookkeeping
	// stays uniform.
	dst := c.pushStack()
	c.emitMove(dst, reg, e.Line())
	return dst
}

func (c *Compiler) compileIdentifierRead(e *ast.Identifier) byte {
	if reg, found, initialized := c.resolveLocal(e.Name, false); found {
		if !initialized {
			c.fail(errors.NewCompileError(errors.E2009, "Cannot read local variable %q before initialization.", e.Name))
		}
		dst := c.pushStack()
		c.emitMove(dst, reg, e.Line())
		return dst
	}
	if slot, ok := c.machine.ResolveGlobalSlot(e.Name); ok {
		dst := c.pushStack()
		c.emitOp(op.GET_GLOBAL, e.Line())
		c.emitByte(dst, e.Line())
		c.emitUint16(uint16(slot), e.Line())
		return dst
	}
	c.fail(errors.NewCompileError(errors.E2001, "Undefined variable %q.", e.Name))
	return c.pushStack()
}

func (c *Compiler) compileUnary(e *ast.UnaryExpr) byte {
	reg := c.compileExpr(e.Right)
	switch e.Operator {
	case "-":
		c.emitOp(op.NEG, e.Line())
	case "!":
		c.emitOp(op.NOT, e.Line())
	default:
		c.fail(errors.NewCompileError(errors.E1003, "Unknown unary operator %q.", e.Operator))
		return reg
	}
	c.emitByte(reg, e.Line())
	c.emitByte(reg, e.Line())
	return reg
}

var binaryOps = map[string]op.Code{
	"+":  op.ADD,
	"-":  op.SUB,
	"*":  op.MUL,
	"/":  op.DIV,
	">":  op.GT,
	"<":  op.LT,
	"==": op.EQ,
}

func (c *Compiler) compileBinary(e *ast.BinaryExpr) byte {
	// ">=" is "not (left < right)", "<=" is "not (left > right)",
	// "!=" is "not (left == right)" — the same encoding the register
	// allocator uses for all comparisons, reusing the left operand's
	// register as destination and popping the right.
	switch e.Operator {
	case ">=":
		return c.compileBinaryNegated(e, "<")
	case "<=":
		return c.compileBinaryNegated(e, ">")
	case "!=":
		return c.compileBinaryNegated(e, "==")
	}

	left := c.compileExpr(e.Left)
	right := c.compileExpr(e.Right)
	code, ok := binaryOps[e.Operator]
	if !ok {
		c.fail(errors.NewCompileError(errors.E1003, "Unknown binary operator %q.", e.Operator))
		return left
	}
	c.emitOp(code, e.Line())
	c.emitByte(left, e.Line())
	c.emitByte(left, e.Line())
	c.emitByte(right, e.Line())
	c.popStack(1)
	return left
}

func (c *Compiler) compileBinaryNegated(e *ast.BinaryExpr, underlying string) byte {
	left := c.compileExpr(e.Left)
	right := c.compileExpr(e.Right)
	code := binaryOps[underlying]
	c.emitOp(code, e.Line())
	c.emitByte(left, e.Line())
	c.emitByte(left, e.Line())
	c.emitByte(right, e.Line())
	c.popStack(1)
	c.emitOp(op.NOT, e.Line())
	c.emitByte(left, e.Line())
	c.emitByte(left, e.Line())
	return left
}

func (c *Compiler) compileAssign(e *ast.AssignExpr) byte {
	switch target := e.Target.(type) {
	case *ast.Identifier:
		valueReg := c.compileExpr(e.Value)
		if reg, found, _ := c.resolveLocal(target.Name, true); found {
			c.emitMove(reg, valueReg, e.Line())
			return valueReg
		}
		if slot, ok := c.machine.ResolveGlobalSlot(target.Name); ok {
			c.emitOp(op.SET_GLOBAL, e.Line())
			c.emitByte(valueReg, e.Line())
			c.emitUint16(uint16(slot), e.Line())
			return valueReg
		}
		c.fail(errors.NewCompileError(errors.E2001, "Undefined variable %q.", target.Name))
		return valueReg
	case *ast.GetPropertyExpr:
		objReg := c.compileExpr(target.Object)
		valueReg := c.compileExpr(e.Value)
		nameIdx := c.makeStringConstant(target.Name, e.Line())
		c.emitOp(op.SET_PROPERTY, e.Line())
		c.emitByte(objReg, e.Line())
		c.emitUint16(nameIdx, e.Line())
		c.emitByte(valueReg, e.Line())
		c.emitMove(objReg, valueReg, e.Line())
		c.popStack(1)
		return objReg
	default:
		c.fail(errors.NewCompileError(errors.E1005, "Invalid assignment target."))
		return c.compileExpr(e.Value)
	}
}

func (c *Compiler) compileArgList(args []ast.Expr) []byte {
	regs := make([]byte, len(args))
	for i, a := range args {
		regs[i] = c.compileExpr(a)
	}
	return regs
}

func (c *Compiler) compileCall(e *ast.CallExpr) byte {
	if len(e.Args) > 255 {
		c.fail(errors.NewCompileError(errors.E2008, "Too many arguments in function call."))
		return c.pushStack()
	}
	calleeReg := c.compileExpr(e.Callee)
	argRegs := c.compileArgList(e.Args)
	dst := calleeReg
	c.emitOp(op.CALL, e.Line())
	c.emitByte(dst, e.Line())
	c.emitByte(calleeReg, e.Line())
	c.emitByte(byte(len(argRegs)), e.Line())
	for _, r := range argRegs {
		c.emitByte(r, e.Line())
	}
	c.popStack(len(argRegs))
	return dst
}

func (c *Compiler) compileInvoke(e *ast.InvokeExpr) byte {
	if len(e.Args) >= 255 {
		c.fail(errors.NewCompileError(errors.E2008, "Too many arguments in method call."))
		return c.pushStack()
	}
	objReg := c.compileExpr(e.Object)
	argRegs := c.compileArgList(e.Args)
	nameIdx := c.makeStringConstant(e.Name, e.Line())
	dst := objReg
	c.emitOp(op.INVOKE, e.Line())
	c.emitByte(dst, e.Line())
	c.emitByte(objReg, e.Line())
	c.emitUint16(nameIdx, e.Line())
	c.emitByte(byte(len(argRegs)), e.Line())
	for _, r := range argRegs {
		c.emitByte(r, e.Line())
	}
	c.popStack(len(argRegs))
	return dst
}

func (c *Compiler) compileIndex(e *ast.IndexExpr) byte {
	arrReg := c.compileExpr(e.Array)
	idxReg := c.compileExpr(e.Index)
	c.emitOp(op.ARRAY_GET, e.Line())
	c.emitByte(arrReg, e.Line())
	c.emitByte(arrReg, e.Line())
	c.emitByte(idxReg, e.Line())
	c.popStack(1)
	return arrReg
}

func (c *Compiler) compileGetProperty(e *ast.GetPropertyExpr) byte {
	objReg := c.compileExpr(e.Object)
	nameIdx := c.makeStringConstant(e.Name, e.Line())
	c.emitOp(op.GET_PROPERTY, e.Line())
	c.emitByte(objReg, e.Line())
	c.emitByte(objReg, e.Line())
	c.emitUint16(nameIdx, e.Line())
	return objReg
}

func (c *Compiler) compileArrayLit(e *ast.ArrayLit) byte {
	if len(e.Elements) > 255 {
		c.fail(errors.NewCompileError(errors.E2008, "Array literal has too many elements."))
		return c.pushStack()
	}
	if len(e.Elements) == 0 {
		dst := c.pushStack()
		c.emitOp(op.BUILD_ARRAY, e.Line())
		c.emitByte(dst, e.Line())
		c.emitByte(0, e.Line())
		return dst
	}
	regs := make([]byte, len(e.Elements))
	for i, elem := range e.Elements {
		regs[i] = c.compileExpr(elem)
	}
	dst := regs[0]
	c.emitOp(op.BUILD_ARRAY, e.Line())
	c.emitByte(dst, e.Line())
	c.emitByte(byte(len(regs)), e.Line())
	for _, r := range regs {
		c.emitByte(r, e.Line())
	}
	c.popStack(len(regs) - 1)
	return dst
}
