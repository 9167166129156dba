package compiler

import "github.com/mrunix00/vibelang/errors"

func (c *Compiler) beginScope() {
	c.scopeDepth++
}

// endScope discards every local declared in the scope being left and
// returns its registers to the free pool.
func (c *Compiler) endScope() {
	c.scopeDepth--
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth > c.scopeDepth {
		c.locals = c.locals[:len(c.locals)-1]
	}
}

// declareLocal reserves a register for name at the current scope depth,
// erroring if name is already declared in this exact scope. The new local
// starts uninitialized; reads resolve to it but fail until
// markLocalInitialized runs.
func (c *Compiler) declareLocal(name string, line int) (byte, bool) {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].depth != -1 && c.locals[i].depth < c.scopeDepth {
			break
		}
		if c.locals[i].name == name {
			c.fail(errors.NewCompileError(errors.E2002, "Variable %q is already declared in this scope.", name))
			return 0, false
		}
	}
	if len(c.locals) >= 255 {
		c.fail(errors.NewCompileError(errors.E2003, "Too many local variables in one function."))
		return 0, false
	}
	reg := byte(c.localCount())
	c.locals = append(c.locals, localVar{name: name, depth: -1, register: reg})
	if c.localCount() > c.function.RegisterCount {
		c.function.RegisterCount = c.localCount()
	}
	return reg, true
}

func (c *Compiler) markLocalInitialized(reg byte) {
	for i := range c.locals {
		if c.locals[i].register == reg {
			c.locals[i].depth = c.scopeDepth
			c.locals[i].initialized = true
			return
		}
	}
}

// resolveLocal looks name up innermost-to-outermost within this
// compiler's own locals only — functions do not capture enclosing
// locals in this language.
func (c *Compiler) resolveLocal(name string, forAssignment bool) (byte, bool, bool) {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].name == name {
			if !c.locals[i].initialized && !forAssignment {
				return 0, true, false
			}
			return c.locals[i].register, true, true
		}
	}
	return 0, false, false
}

func (c *Compiler) isGlobalScope() bool {
	return c.enclosing == nil && c.scopeDepth == 0
}

// declareGlobal assigns a fresh 16-bit global slot to name, erroring on a
// redefinition or a full table.
func (c *Compiler) declareGlobal(name string) (uint16, bool) {
	if _, exists := c.machine.ResolveGlobalSlot(name); exists {
		c.fail(errors.NewCompileError(errors.E2002, "Global %q already defined.", name))
		return 0, false
	}
	slot := c.machine.DefineGlobalSlot(name)
	if slot >= 65535 {
		c.fail(errors.NewCompileError(errors.E2005, "Too many global variables defined."))
		return 0, false
	}
	return uint16(slot), true
}
