package compiler

import (
	"github.com/mrunix00/vibelang/ast"
	"github.com/mrunix00/vibelang/bytecode"
	"github.com/mrunix00/vibelang/errors"
	"github.com/mrunix00/vibelang/object"
	"github.com/mrunix00/vibelang/op"
)

func (c *Compiler) compileStatement(stmt ast.Stmt) {
	if c.err != nil {
		return
	}
	if _, ok := stmt.(*ast.ExpressionStmt); !ok {
		c.discardPendingExpression()
	}
	switch s := stmt.(type) {
	case *ast.LetStmt:
		c.compileLetStatement(s)
	case *ast.ExpressionStmt:
		c.compileExpressionStatement(s)
	case *ast.BlockStmt:
		c.compileBlockStatement(s)
	case *ast.IfStmt:
		c.compileIfStatement(s)
	case *ast.WhileStmt:
		c.compileWhileStatement(s)
	case *ast.ReturnStmt:
		c.compileReturnStatement(s)
	case *ast.FunctionStmt:
		c.compileFunctionStatement(s)
	case *ast.ClassStmt:
		c.compileClassStatement(s)
	default:
		c.fail(errors.NewCompileError(errors.E1004, "Unsupported statement."))
	}
}

// compileLetStatement declares the name before compiling its initializer,
// so the initializer sees the new binding as declared-but-uninitialized
// and a self-referential read fails instead of resolving outward.
func (c *Compiler) compileLetStatement(s *ast.LetStmt) {
	if c.isGlobalScope() {
		slot, ok := c.declareGlobal(s.Name)
		if !ok {
			return
		}
		var valueReg byte
		if s.HasInitializer {
			valueReg = c.compileExpr(s.Value)
		} else {
			valueReg = c.pushStack()
			c.emitLoadNull(valueReg, s.Line())
		}
		c.emitOp(op.DEFINE_GLOBAL, s.Line())
		c.emitByte(valueReg, s.Line())
		c.emitUint16(slot, s.Line())
		c.popStack(1)
		return
	}

	reg, ok := c.declareLocal(s.Name, s.Line())
	if !ok {
		return
	}
	if s.HasInitializer {
		valueReg := c.compileExpr(s.Value)
		c.emitMove(reg, valueReg, s.Line())
		c.popStack(1)
	} else {
		c.emitLoadNull(reg, s.Line())
	}
	c.markLocalInitialized(reg)
}

// compileExpressionStatement is the sole place a value can survive past
// its own statement: at the outermost script scope it becomes the
// pending result returned if no later statement overrides or the script
// ends, matching a REPL's last-expression-wins behavior.
func (c *Compiler) compileExpressionStatement(s *ast.ExpressionStmt) {
	if c.isGlobalScope() {
		c.discardPendingExpression()
		reg := c.compileExpr(s.Expression)
		c.hasPending = true
		c.pendingReg = reg
		return
	}
	c.compileExpr(s.Expression)
	c.popStack(1)
}

func (c *Compiler) compileBlockStatement(s *ast.BlockStmt) {
	c.beginScope()
	for _, stmt := range s.Statements {
		c.compileStatement(stmt)
		if c.err != nil {
			break
		}
	}
	c.endScope()
}

func (c *Compiler) compileIfStatement(s *ast.IfStmt) {
	condReg := c.compileExpr(s.Condition)
	c.popStack(1)
	thenJump := c.emitJump(op.JUMP_IF_FALSE, condReg, true, s.Line())
	c.compileBlockStatement(s.Then)
	if s.Else != nil {
		elseJump := c.emitJump(op.JUMP, 0, false, s.Line())
		c.patchJump(thenJump)
		c.compileBlockStatement(s.Else)
		c.patchJump(elseJump)
	} else {
		c.patchJump(thenJump)
	}
}

func (c *Compiler) compileWhileStatement(s *ast.WhileStmt) {
	loopStart := c.chunk().Len()
	condReg := c.compileExpr(s.Condition)
	c.popStack(1)
	exitJump := c.emitJump(op.JUMP_IF_FALSE, condReg, true, s.Line())
	c.compileBlockStatement(s.Body)
	c.emitLoop(loopStart, s.Line())
	c.patchJump(exitJump)
}

func (c *Compiler) compileReturnStatement(s *ast.ReturnStmt) {
	if c.fnType == typeInitializer && s.HasValue {
		c.fail(errors.NewCompileError(errors.E2007, "Cannot return a value from a constructor."))
		return
	}
	if !s.HasValue {
		c.emitReturn(s.Line())
		return
	}
	reg := c.compileExpr(s.Value)
	c.emitOp(op.RETURN, s.Line())
	c.emitByte(reg, s.Line())
	c.popStack(1)
}

// compileFunctionBody spawns a nested Compiler for fn's body, injecting
// params (and, for methods, the receiver) as already-initialized locals
// at register 0, 1, 2, ....
func (c *Compiler) compileFunctionBody(fnType funcType, fn *bytecode.Function, receiverName string, params []ast.Param, body *ast.BlockStmt, line int) {
	nested := newCompiler(c, fnType, fn, c.machine)
	nested.beginScope()
	if receiverName != "" {
		reg, _ := nested.declareLocal(receiverName, line)
		nested.markLocalInitialized(reg)
	}
	for _, p := range params {
		reg, ok := nested.declareLocal(p.Name, line)
		if !ok {
			break
		}
		nested.markLocalInitialized(reg)
	}
	for _, stmt := range body.Statements {
		nested.compileStatement(stmt)
		if nested.err != nil {
			break
		}
	}
	if nested.err == nil {
		nested.emitReturn(line)
	}
	if nested.err != nil {
		c.fail(nested.err)
	}
}

// compileFunctionStatement installs the function's name (global slot or
// local register) before compiling its body, so a recursive body can
// resolve its own name.
func (c *Compiler) compileFunctionStatement(s *ast.FunctionStmt) {
	if len(s.Params) > 255 {
		c.fail(errors.NewCompileError(errors.E2008, "Function %q has too many parameters.", s.Name))
		return
	}

	isGlobal := c.isGlobalScope()
	var slot uint16
	var localReg byte
	if isGlobal {
		var ok bool
		slot, ok = c.declareGlobal(s.Name)
		if !ok {
			return
		}
	} else {
		var ok bool
		localReg, ok = c.declareLocal(s.Name, s.Line())
		if !ok {
			return
		}
		c.markLocalInitialized(localReg)
	}

	name := c.machine.Intern(s.Name)
	fn := c.machine.AllocateFunction(name)
	fn.Arity = len(s.Params)
	c.machine.Push(object.NewObj(fn))
	c.compileFunctionBody(typeFunction, fn, "", s.Params, s.Body, s.Line())
	c.machine.Pop()
	if c.err != nil {
		return
	}

	dst := c.pushStack()
	c.emitLoadConst(dst, object.NewObj(fn), s.Line())
	if isGlobal {
		c.emitOp(op.DEFINE_GLOBAL, s.Line())
		c.emitByte(dst, s.Line())
		c.emitUint16(slot, s.Line())
	} else {
		c.emitMove(localReg, dst, s.Line())
	}
	c.popStack(1)
}

func (c *Compiler) compileMethod(classReg byte, m ast.MethodDecl) {
	if len(m.Params)+1 > 255 {
		c.fail(errors.NewCompileError(errors.E2008, "Method %q has too many parameters.", m.Name))
		return
	}
	fnType := typeMethod
	if m.IsConstructor {
		fnType = typeInitializer
	}
	name := c.machine.Intern(m.Name)
	fn := c.machine.AllocateFunction(name)
	fn.Arity = len(m.Params) + 1 // +1 for the implicit receiver
	c.machine.Push(object.NewObj(fn))
	c.compileFunctionBody(fnType, fn, "this", m.Params, m.Body, m.Line)
	c.machine.Pop()
	if c.err != nil {
		return
	}

	methodReg := c.pushStack()
	c.emitLoadConst(methodReg, object.NewObj(fn), m.Line)
	nameIdx := c.makeStringConstant(m.Name, m.Line)
	c.emitOp(op.METHOD, m.Line)
	c.emitByte(classReg, m.Line)
	c.emitUint16(nameIdx, m.Line)
	c.emitByte(methodReg, m.Line)
	c.popStack(1)
}

// compileClassStatement installs the class into its storage right after
// allocating it and before compiling any method, so method bodies can
// already name the class through its global slot.
func (c *Compiler) compileClassStatement(s *ast.ClassStmt) {
	nameIdx := c.makeStringConstant(s.Name, s.Line())

	isGlobal := c.isGlobalScope()
	var slot uint16
	var localReg byte
	if isGlobal {
		var ok bool
		slot, ok = c.declareGlobal(s.Name)
		if !ok {
			return
		}
	} else {
		var ok bool
		localReg, ok = c.declareLocal(s.Name, s.Line())
		if !ok {
			return
		}
	}

	dst := c.pushStack()
	c.emitOp(op.CLASS, s.Line())
	c.emitByte(dst, s.Line())
	c.emitUint16(nameIdx, s.Line())

	if isGlobal {
		c.emitOp(op.DEFINE_GLOBAL, s.Line())
		c.emitByte(dst, s.Line())
		c.emitUint16(slot, s.Line())
	} else {
		c.markLocalInitialized(localReg)
		c.emitMove(localReg, dst, s.Line())
	}

	for _, m := range s.Methods {
		c.compileMethod(dst, m)
		if c.err != nil {
			return
		}
	}

	c.popStack(1)
}
