// Package vm implements the register-based bytecode interpreter: frame
// and register-stack management, instruction dispatch, and the heap
// (allocation list, string interning, mark-and-sweep GC) the interpreted
// program runs against.
package vm

import (
	"github.com/rs/zerolog"

	"github.com/mrunix00/vibelang/bytecode"
	"github.com/mrunix00/vibelang/object"
)

type frame struct {
	function  *bytecode.Function
	ip        int
	base      int // offset into vm.stack where this frame's registers begin
	returnReg byte
}

// VM is one self-contained interpreter instance: its own heap, globals,
// and register/frame stacks. Distinct VMs share nothing and may run
// concurrently in separate goroutines as long as no Value crosses
// between them.
type VM struct {
	heap

	stack    []object.Value
	stackTop int

	frames     []frame
	frameCount int

	globals       []object.Value
	globalDefined []bool
	globalNames   []string
}

// Options configures ambient, non-semantic behavior: a logger for GC
// diagnostics (one debug entry per collection). The zero value runs
// silently.
type Options struct {
	Logger zerolog.Logger
}

// New returns an empty VM ready to run a compiled top-level function.
func New(opts Options) *VM {
	return &VM{heap: newHeap(opts.Logger)}
}

func (vm *VM) reserve(total int) {
	for len(vm.stack) < total {
		vm.stack = append(vm.stack, object.Value{})
	}
}

// Push appends v to the value stack. It is also how a newly allocated
// object not yet reachable from any other root is kept alive across a
// call that might trigger a collection.
func (vm *VM) Push(v object.Value) {
	vm.reserve(vm.stackTop + 1)
	vm.stack[vm.stackTop] = v
	vm.stackTop++
}

// Pop removes and returns the top value stack entry.
func (vm *VM) Pop() object.Value {
	vm.stackTop--
	return vm.stack[vm.stackTop]
}

func (vm *VM) reg(f *frame, r byte) object.Value {
	return vm.stack[f.base+int(r)]
}

func (vm *VM) setReg(f *frame, r byte, v object.Value) {
	vm.stack[f.base+int(r)] = v
}

// DefineGlobalSlot assigns the next 16-bit slot to name if it does not
// already have one, and returns that slot. Used by the compiler so
// globals declared at the outermost script scope get real storage.
func (vm *VM) DefineGlobalSlot(name string) int {
	for i, n := range vm.globalNames {
		if n == name {
			return i
		}
	}
	vm.globalNames = append(vm.globalNames, name)
	vm.globals = append(vm.globals, object.Null)
	vm.globalDefined = append(vm.globalDefined, false)
	return len(vm.globalNames) - 1
}

// ResolveGlobalSlot reports the slot assigned to name, if any.
func (vm *VM) ResolveGlobalSlot(name string) (int, bool) {
	for i, n := range vm.globalNames {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

func (vm *VM) pushFrame(fn *bytecode.Function, base int, returnReg byte) {
	vm.reserve(base + fn.RegisterCount)
	vm.frames = append(vm.frames[:vm.frameCount], frame{function: fn, base: base, returnReg: returnReg})
	vm.frameCount++
	// The frame's whole register window sits below the stack top so the
	// collector treats every live register as a root.
	vm.stackTop = base + fn.RegisterCount
}

func (vm *VM) currentFrame() *frame {
	return &vm.frames[vm.frameCount-1]
}

func (vm *VM) resetStack() {
	vm.stackTop = 0
	vm.frameCount = 0
	vm.frames = vm.frames[:0]
}
