// Package compiler walks an *ast.Program and emits the bytecode.Function
// (and its nested function/method bytecode.Functions) the vm package
// interprets.
package compiler

import (
	"github.com/mrunix00/vibelang/ast"
	"github.com/mrunix00/vibelang/bytecode"
	"github.com/mrunix00/vibelang/errors"
	"github.com/mrunix00/vibelang/object"
	"github.com/mrunix00/vibelang/op"
	"github.com/mrunix00/vibelang/vm"
)

type funcType int

const (
	typeScript funcType = iota
	typeFunction
	typeMethod
	typeInitializer
)

type localVar struct {
	name        string
	depth       int
	register    byte
	initialized bool
}

// Compiler produces bytecode for one function body. A fresh Compiler is
// spawned, with no access to its enclosing compiler's locals, for every
// nested function and method body — this language has no closures, so
// identifier resolution never needs to walk an enclosing chain.
type Compiler struct {
	enclosing *Compiler
	fnType    funcType

	function *bytecode.Function
	machine  *vm.VM

	locals     []localVar
	scopeDepth int
	stackDepth int

	// Pending trailing-expression state, meaningful only on the outermost
	// script compiler at scope depth 0. The pending register is always a
	// live stack temp, released when the value is discarded.
	hasPending bool
	pendingReg byte

	err error
}

func newCompiler(enclosing *Compiler, fnType funcType, fn *bytecode.Function, machine *vm.VM) *Compiler {
	return &Compiler{enclosing: enclosing, fnType: fnType, function: fn, machine: machine}
}

// Compile compiles a whole program into its top-level script function.
// machine supplies string interning and heap allocation for compile-time
// constants (class names, method names, nested function/class objects);
// it should later be reused to run the result so the interned names the
// emitted code compares by identity stay canonical.
func Compile(program *ast.Program, machine *vm.VM) (*bytecode.Function, error) {
	fn := machine.AllocateFunction(nil)
	machine.Push(object.NewObj(fn))

	c := newCompiler(nil, typeScript, fn, machine)
	for _, stmt := range program.Statements {
		c.compileStatement(stmt)
		if c.err != nil {
			break
		}
	}
	if c.err == nil {
		c.emitReturn(0)
	}
	machine.Pop()
	if c.err != nil {
		return nil, c.err
	}
	return fn, nil
}

func (c *Compiler) fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

func (c *Compiler) chunk() *bytecode.Chunk { return c.function.Chunk }

func (c *Compiler) localCount() int { return len(c.locals) }

// pushStack reserves the next free register for an intermediate
// expression value and returns it.
func (c *Compiler) pushStack() byte {
	next := c.localCount() + c.stackDepth
	if next >= 255 {
		c.fail(errors.NewCompileError(errors.E2003, "Function requires too many registers."))
		return 254
	}
	c.stackDepth++
	if next+1 > c.function.RegisterCount {
		c.function.RegisterCount = next + 1
	}
	return byte(next)
}

func (c *Compiler) popStack(n int) {
	c.stackDepth -= n
}

func (c *Compiler) emitByte(b byte, line int) {
	c.chunk().WriteByte(b, line)
}

func (c *Compiler) emitOp(code op.Code, line int) {
	c.emitByte(byte(code), line)
}

func (c *Compiler) emitUint16(v uint16, line int) {
	c.chunk().WriteUint16(v, line)
}

func (c *Compiler) makeConstant(v object.Value, line int) uint16 {
	if len(c.chunk().Constants) >= 65536 {
		c.fail(errors.NewCompileError(errors.E2004, "Too many constants in one chunk."))
		return 0
	}
	return uint16(c.chunk().AddConstant(v))
}

func (c *Compiler) makeStringConstant(s string, line int) uint16 {
	str := c.machine.Intern(s)
	return c.makeConstant(object.NewObj(str), line)
}

func (c *Compiler) emitLoadConst(dst byte, v object.Value, line int) {
	idx := c.makeConstant(v, line)
	c.emitOp(op.LOAD_CONST, line)
	c.emitByte(dst, line)
	c.emitUint16(idx, line)
}

func (c *Compiler) emitLoadNull(dst byte, line int) {
	c.emitOp(op.LOAD_NULL, line)
	c.emitByte(dst, line)
}

func (c *Compiler) emitMove(dst, src byte, line int) {
	c.emitOp(op.MOVE, line)
	c.emitByte(dst, line)
	c.emitByte(src, line)
}

// emitJump writes a jump opcode with a placeholder offset and returns the
// offset of the placeholder's first byte, to be patched later.
func (c *Compiler) emitJump(code op.Code, cond byte, hasCond bool, line int) int {
	c.emitOp(code, line)
	if hasCond {
		c.emitByte(cond, line)
	}
	placeholder := c.chunk().Len()
	c.emitUint16(0xFFFF, line)
	return placeholder
}

func (c *Compiler) patchJump(placeholder int) {
	dist := c.chunk().Len() - (placeholder + 2)
	if dist < 0 || dist > 65535 {
		c.fail(errors.NewCompileError(errors.E2006, "Jump offset out of range."))
		return
	}
	c.chunk().PatchUint16(placeholder, uint16(dist))
}

func (c *Compiler) emitLoop(loopStart int, line int) {
	c.emitOp(op.LOOP, line)
	dist := c.chunk().Len() + 2 - loopStart
	if dist < 0 || dist > 65535 {
		c.fail(errors.NewCompileError(errors.E2006, "Loop offset out of range."))
		dist = 0
	}
	c.emitUint16(uint16(dist), line)
}

// discardPendingExpression drops any trailing-expression value the
// script compiler is keeping live, called at the start of every
// non-expression statement so only the most recent expression statement's
// value survives to the implicit return.
func (c *Compiler) discardPendingExpression() {
	if c.enclosing == nil && c.scopeDepth == 0 && c.hasPending {
		c.popStack(1)
		c.hasPending = false
	}
}

// emitReturn emits the function's default return: the receiver for a
// constructor, the pending trailing value for the outermost script, or
// null otherwise.
func (c *Compiler) emitReturn(line int) {
	if c.fnType == typeInitializer {
		c.emitOp(op.RETURN, line)
		c.emitByte(0, line)
		return
	}
	if c.enclosing == nil && c.scopeDepth == 0 && c.hasPending {
		c.emitOp(op.RETURN, line)
		c.emitByte(c.pendingReg, line)
		c.hasPending = false
		return
	}
	reg := c.pushStack()
	c.emitLoadNull(reg, line)
	c.emitOp(op.RETURN, line)
	c.emitByte(reg, line)
	c.popStack(1)
}
