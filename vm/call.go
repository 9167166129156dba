package vm

import (
	"github.com/mrunix00/vibelang/bytecode"
	"github.com/mrunix00/vibelang/errors"
	"github.com/mrunix00/vibelang/object"
)

// runtimeError builds the frame-by-frame trace, innermost frame first,
// resets the VM's stack, and returns it as the run loop's failure result.
func (vm *VM) runtimeError(message string, line int) (object.Value, *errors.RuntimeError) {
	trace := make([]errors.Frame, 0, vm.frameCount)
	// The innermost (currently executing) frame's line is the one passed
	// in; frames below it report the line of the CALL/INVOKE instruction
	// that is still in flight, read from their own ip-1.
	for i := vm.frameCount - 1; i >= 0; i-- {
		fr := vm.frames[i]
		l := line
		if i != vm.frameCount-1 {
			l = fr.function.Chunk.Lines[fr.ip-1]
		}
		trace = append(trace, errors.Frame{FunctionName: displayName(fr.function), Line: l})
	}
	rerr := &errors.RuntimeError{Code: errors.E3001, Message: message, Trace: trace}
	vm.resetStack()
	return object.Value{}, rerr
}

func displayName(fn *bytecode.Function) string {
	if fn.Name == nil {
		return "<script>"
	}
	return fn.Name.Value
}

func (vm *VM) callFunction(fn *bytecode.Function, callerFrame *frame, dst byte, argRegs []byte) string {
	if len(argRegs) != fn.Arity {
		return "Incorrect number of arguments."
	}
	if fn.RegisterCount < fn.Arity {
		return "Function does not provide enough registers for its parameters."
	}
	base := vm.stackTop
	vm.reserve(base + fn.RegisterCount)
	for i := 0; i < fn.RegisterCount; i++ {
		if i < len(argRegs) {
			vm.stack[base+i] = vm.reg(callerFrame, argRegs[i])
		} else {
			vm.stack[base+i] = object.Null
		}
	}
	vm.pushFrame(fn, base, dst)
	return ""
}

// callValue dispatches CALL over the callee's runtime type: Function,
// BoundMethod, Class, or anything else (an error).
func (vm *VM) callValue(callerFrame *frame, dst byte, callee object.Value, argRegs []byte) string {
	if !callee.IsObj() {
		return "Attempted to call a non-function value."
	}
	switch callee.Obj.Type() {
	case object.ObjFunction:
		fn := callee.Obj.(*bytecode.Function)
		return vm.callFunction(fn, callerFrame, dst, argRegs)

	case object.ObjBoundMethod:
		bm := callee.Obj.(*object.BoundMethod)
		fn := bm.Method.Obj.(*bytecode.Function)
		if len(argRegs) != fn.Arity-1 {
			return "Incorrect number of arguments."
		}
		vm.setReg(callerFrame, dst, bm.Receiver)
		extended := append([]byte{dst}, argRegs...)
		return vm.callFunction(fn, callerFrame, dst, extended)

	case object.ObjClass:
		class := callee.Obj.(*object.Class)
		instance := vm.AllocateInstance(class)
		vm.setReg(callerFrame, dst, object.NewObj(instance))
		vm.maybeCollect()
		ctorName := vm.Intern("constructor")
		if ctor, ok := class.FindMethod(ctorName); ok {
			fn := ctor.Obj.(*bytecode.Function)
			if len(argRegs)+1 != fn.Arity {
				return "Incorrect number of arguments."
			}
			extended := append([]byte{dst}, argRegs...)
			return vm.callFunction(fn, callerFrame, dst, extended)
		}
		if len(argRegs) > 0 {
			return "Constructor not defined."
		}
		return ""

	default:
		return "Attempted to call a non-function value."
	}
}

// invoke fuses property lookup and call for "obj.name(args)".
func (vm *VM) invoke(callerFrame *frame, dst byte, objVal object.Value, name *object.String, argRegs []byte) string {
	if !objVal.IsObjType(object.ObjInstance) {
		if objVal.IsObjType(object.ObjClass) {
			class := objVal.Obj.(*object.Class)
			if method, ok := class.FindMethod(name); ok {
				return vm.callValue(callerFrame, dst, method, argRegs)
			}
			return "Undefined method on class."
		}
		return "Only instances and classes have methods."
	}
	in := objVal.Obj.(*object.Instance)
	if field, ok := in.GetField(name); ok {
		return vm.callValue(callerFrame, dst, field, argRegs)
	}
	method, ok := in.Class.FindMethod(name)
	if !ok {
		return "Undefined method on instance."
	}
	bm := vm.AllocateBoundMethod(objVal, method)
	bmVal := object.NewObj(bm)
	// bm is not yet reachable from any root (objVal/method already are,
	// but the pair object itself isn't) — root it before a collection
	// can run, matching the safety discipline in heap.go.
	vm.Push(bmVal)
	vm.maybeCollect()
	vm.Pop()
	return vm.callValue(callerFrame, dst, bmVal, argRegs)
}
