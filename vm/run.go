package vm

import (
	"math"

	"github.com/mrunix00/vibelang/bytecode"
	"github.com/mrunix00/vibelang/errors"
	"github.com/mrunix00/vibelang/object"
	"github.com/mrunix00/vibelang/op"
)

// Run interprets the top-level script function fn with zero arguments and
// returns its result value, or a structured runtime error with a
// frame-by-frame trace if execution failed.
func (vm *VM) Run(fn *bytecode.Function) (object.Value, *errors.RuntimeError) {
	vm.resetStack()
	vm.Push(object.NewObj(fn))
	vm.pushFrame(fn, vm.stackTop, 0)
	return vm.run()
}

func readByte(f *frame) byte {
	b := f.function.Chunk.Code[f.ip]
	f.ip++
	return b
}

func readUint16(f *frame) uint16 {
	hi := readByte(f)
	lo := readByte(f)
	return uint16(hi)<<8 | uint16(lo)
}

func (vm *VM) run() (object.Value, *errors.RuntimeError) {
	f := vm.currentFrame()
	for {
		instrLine := f.function.Chunk.Lines[f.ip]
		code := op.Code(readByte(f))

		switch code {
		case op.LOAD_CONST:
			dst := readByte(f)
			idx := readUint16(f)
			vm.setReg(f, dst, f.function.Chunk.Constants[idx])

		case op.LOAD_NULL:
			dst := readByte(f)
			vm.setReg(f, dst, object.Null)

		case op.LOAD_TRUE:
			dst := readByte(f)
			vm.setReg(f, dst, object.True)

		case op.LOAD_FALSE:
			dst := readByte(f)
			vm.setReg(f, dst, object.False)

		case op.MOVE:
			dst := readByte(f)
			src := readByte(f)
			vm.setReg(f, dst, vm.reg(f, src))

		case op.ADD:
			dst, a, b := readByte(f), readByte(f), readByte(f)
			v, rerr := vm.add(vm.reg(f, a), vm.reg(f, b))
			if rerr != "" {
				return vm.runtimeError(rerr, instrLine)
			}
			vm.setReg(f, dst, v)

		case op.SUB, op.MUL, op.DIV, op.GT, op.LT:
			dst, a, b := readByte(f), readByte(f), readByte(f)
			left, right := vm.reg(f, a), vm.reg(f, b)
			if !left.IsNumber() || !right.IsNumber() {
				return vm.runtimeError("Operands must be numbers.", instrLine)
			}
			var result object.Value
			switch code {
			case op.SUB:
				result = object.NewNumber(left.Number - right.Number)
			case op.MUL:
				result = object.NewNumber(left.Number * right.Number)
			case op.DIV:
				result = object.NewNumber(left.Number / right.Number)
			case op.GT:
				result = object.NewBool(left.Number > right.Number)
			case op.LT:
				result = object.NewBool(left.Number < right.Number)
			}
			vm.setReg(f, dst, result)

		case op.EQ:
			dst, a, b := readByte(f), readByte(f), readByte(f)
			vm.setReg(f, dst, object.NewBool(vm.reg(f, a).Equals(vm.reg(f, b))))

		case op.NEG:
			dst, a := readByte(f), readByte(f)
			v := vm.reg(f, a)
			if !v.IsNumber() {
				return vm.runtimeError("Operand must be a number.", instrLine)
			}
			vm.setReg(f, dst, object.NewNumber(-v.Number))

		case op.NOT:
			dst, a := readByte(f), readByte(f)
			vm.setReg(f, dst, object.NewBool(!vm.reg(f, a).Truthy()))

		case op.JUMP:
			off := readUint16(f)
			f.ip += int(off)

		case op.JUMP_IF_FALSE:
			cond := readByte(f)
			off := readUint16(f)
			if !vm.reg(f, cond).Truthy() {
				f.ip += int(off)
			}

		case op.LOOP:
			off := readUint16(f)
			f.ip -= int(off)

		case op.GET_GLOBAL:
			dst := readByte(f)
			slot := readUint16(f)
			if int(slot) >= len(vm.globalDefined) || !vm.globalDefined[slot] {
				return vm.runtimeError("Undefined global variable.", instrLine)
			}
			vm.setReg(f, dst, vm.globals[slot])

		case op.DEFINE_GLOBAL:
			reg := readByte(f)
			slot := readUint16(f)
			vm.globals[slot] = vm.reg(f, reg)
			vm.globalDefined[slot] = true

		case op.SET_GLOBAL:
			reg := readByte(f)
			slot := readUint16(f)
			if int(slot) >= len(vm.globalDefined) || !vm.globalDefined[slot] {
				return vm.runtimeError("Undefined global variable.", instrLine)
			}
			vm.globals[slot] = vm.reg(f, reg)

		case op.BUILD_ARRAY:
			dst := readByte(f)
			n := readByte(f)
			elems := make([]object.Value, n)
			for i := byte(0); i < n; i++ {
				r := readByte(f)
				elems[i] = vm.reg(f, r)
			}
			arr := vm.AllocateArray(elems)
			vm.setReg(f, dst, object.NewObj(arr))
			vm.maybeCollect()

		case op.ARRAY_GET:
			dst, arrReg, idxReg := readByte(f), readByte(f), readByte(f)
			arrVal := vm.reg(f, arrReg)
			if !arrVal.IsObjType(object.ObjArray) {
				return vm.runtimeError("Operand is not an array.", instrLine)
			}
			idxVal := vm.reg(f, idxReg)
			if !idxVal.IsNumber() {
				return vm.runtimeError("Array index must be a number.", instrLine)
			}
			arr := arrVal.Obj.(*object.Array)
			idx := idxVal.Number
			if idx < 0 {
				return vm.runtimeError("Array index out of bounds.", instrLine)
			}
			if idx != math.Trunc(idx) {
				return vm.runtimeError("Array index must be an integer.", instrLine)
			}
			if int(idx) >= len(arr.Elements) {
				return vm.runtimeError("Array index out of range.", instrLine)
			}
			vm.setReg(f, dst, arr.Elements[int(idx)])

		case op.GET_PROPERTY:
			dst, objReg := readByte(f), readByte(f)
			nameIdx := readUint16(f)
			name := f.function.Chunk.Constants[nameIdx].Obj.(*object.String)
			v, rerr := vm.getProperty(vm.reg(f, objReg), name)
			if rerr != "" {
				return vm.runtimeError(rerr, instrLine)
			}
			vm.setReg(f, dst, v)

		case op.SET_PROPERTY:
			objReg := readByte(f)
			nameIdx := readUint16(f)
			valReg := readByte(f)
			name := f.function.Chunk.Constants[nameIdx].Obj.(*object.String)
			objVal := vm.reg(f, objReg)
			if !objVal.IsObjType(object.ObjInstance) {
				return vm.runtimeError("Only instances have fields.", instrLine)
			}
			objVal.Obj.(*object.Instance).SetField(name, vm.reg(f, valReg))

		case op.CLASS:
			dst := readByte(f)
			nameIdx := readUint16(f)
			name := f.function.Chunk.Constants[nameIdx].Obj.(*object.String)
			class := vm.AllocateClass(name)
			vm.setReg(f, dst, object.NewObj(class))
			vm.maybeCollect()

		case op.METHOD:
			classReg := readByte(f)
			nameIdx := readUint16(f)
			methodReg := readByte(f)
			classVal := vm.reg(f, classReg)
			if !classVal.IsObjType(object.ObjClass) {
				return vm.runtimeError("METHOD target is not a class.", instrLine)
			}
			name := f.function.Chunk.Constants[nameIdx].Obj.(*object.String)
			classVal.Obj.(*object.Class).SetMethod(name, vm.reg(f, methodReg))

		case op.CALL:
			dst := readByte(f)
			calleeReg := readByte(f)
			n := readByte(f)
			argRegs := make([]byte, n)
			for i := byte(0); i < n; i++ {
				argRegs[i] = readByte(f)
			}
			callee := vm.reg(f, calleeReg)
			rerr := vm.callValue(f, dst, callee, argRegs)
			if rerr != "" {
				return vm.runtimeError(rerr, instrLine)
			}
			f = vm.currentFrame()

		case op.INVOKE:
			dst := readByte(f)
			objReg := readByte(f)
			nameIdx := readUint16(f)
			n := readByte(f)
			argRegs := make([]byte, n)
			for i := byte(0); i < n; i++ {
				argRegs[i] = readByte(f)
			}
			name := f.function.Chunk.Constants[nameIdx].Obj.(*object.String)
			rerr := vm.invoke(f, dst, vm.reg(f, objReg), name, argRegs)
			if rerr != "" {
				return vm.runtimeError(rerr, instrLine)
			}
			f = vm.currentFrame()

		case op.RETURN:
			src := readByte(f)
			result := vm.reg(f, src)
			vm.frameCount--
			if vm.frameCount == 0 {
				vm.resetStack()
				return result, nil
			}
			vm.stackTop = f.base
			caller := vm.currentFrame()
			vm.setReg(caller, f.returnReg, result)
			vm.stackTop = caller.base + caller.function.RegisterCount
			f = caller

		default:
			return vm.runtimeError("Unknown opcode.", instrLine)
		}
	}
}

// add implements ADD's polymorphism over arrays, strings, and numbers.
// It returns a non-empty error message on failure.
func (vm *VM) add(left, right object.Value) (object.Value, string) {
	if left.IsObjType(object.ObjArray) {
		leftArr := left.Obj.(*object.Array)
		var elems []object.Value
		elems = append(elems, leftArr.Elements...)
		if right.IsObjType(object.ObjArray) {
			elems = append(elems, right.Obj.(*object.Array).Elements...)
		} else {
			elems = append(elems, right)
		}
		arr := vm.AllocateArray(elems)
		result := object.NewObj(arr)
		// arr is reachable from no root yet; push it before a collection
		// can run, matching the safety discipline every allocation site
		// that doesn't immediately land in a register must follow.
		vm.Push(result)
		vm.maybeCollect()
		vm.Pop()
		return result, ""
	}
	if right.IsObjType(object.ObjArray) {
		return object.Value{}, "Left operand must be an array for array addition."
	}
	if left.IsObjType(object.ObjString) && right.IsObjType(object.ObjString) {
		concatenated := left.Obj.(*object.String).Value + right.Obj.(*object.String).Value
		s := vm.Intern(concatenated)
		return object.NewObj(s), ""
	}
	if left.IsNumber() && right.IsNumber() {
		return object.NewNumber(left.Number + right.Number), ""
	}
	return object.Value{}, "Operands must be numbers or strings."
}

func (vm *VM) getProperty(objVal object.Value, name *object.String) (object.Value, string) {
	if objVal.IsObjType(object.ObjInstance) {
		in := objVal.Obj.(*object.Instance)
		if v, ok := in.GetField(name); ok {
			return v, ""
		}
		if v, ok := in.Class.FindMethod(name); ok {
			bm := vm.AllocateBoundMethod(objVal, v)
			result := object.NewObj(bm)
			vm.Push(result)
			vm.maybeCollect()
			vm.Pop()
			return result, ""
		}
		return object.Value{}, "Undefined property on instance."
	}
	if objVal.IsObjType(object.ObjClass) {
		class := objVal.Obj.(*object.Class)
		if v, ok := class.FindMethod(name); ok {
			return v, ""
		}
		return object.Value{}, "Undefined property on class."
	}
	return object.Value{}, "Only instances and classes have properties."
}
