package vm

import (
	"github.com/rs/zerolog"

	"github.com/mrunix00/vibelang/bytecode"
	"github.com/mrunix00/vibelang/object"
)

// heap owns every object allocated during one VM's lifetime: the
// intrusive allocation list, the string intern table, and the
// mark-and-sweep collector's bookkeeping. It is embedded in VM rather
// than split into its own package because tracing it requires walking
// the VM's stack, frames, and globals directly.
type heap struct {
	objects object.Obj // head of the intrusive allocation list

	strings map[string]*object.String // intern table: content -> canonical String

	bytesAllocated int
	nextGC         int

	gray []object.Obj

	log zerolog.Logger
}

func newHeap(log zerolog.Logger) heap {
	return heap{
		strings: make(map[string]*object.String),
		nextGC:  1024,
		log:     log,
	}
}

func sizeOf(o object.Obj) int {
	switch v := o.(type) {
	case *object.String:
		return 24 + len(v.Value)
	case *object.Array:
		return 24 + 32*len(v.Elements)
	case *object.Class:
		return 24 + 32*len(v.Methods)
	case *object.Instance:
		return 24 + 32*len(v.Fields)
	case *object.BoundMethod:
		return 48
	case *bytecode.Function:
		return 64
	default:
		return 16
	}
}

func (h *heap) track(o object.Obj) {
	o.SetNext(h.objects)
	h.objects = o
	h.bytesAllocated += sizeOf(o)
}

// Intern returns the canonical *object.String for s, allocating and
// tracking a new one only if no entry with this content exists yet.
func (vm *VM) Intern(s string) *object.String {
	if existing, ok := vm.strings[s]; ok {
		return existing
	}
	str := object.NewString(s)
	// Root the new string on the value stack before it is reachable from
	// anywhere else, matching the safety discipline for interning.
	vm.Push(object.NewObj(str))
	vm.track(str)
	vm.strings[s] = str
	vm.Pop()
	return str
}

func (vm *VM) AllocateArray(elements []object.Value) *object.Array {
	arr := object.NewArray(elements)
	vm.track(arr)
	return arr
}

func (vm *VM) AllocateFunction(name *object.String) *bytecode.Function {
	fn := bytecode.NewFunction(name)
	vm.track(fn)
	return fn
}

func (vm *VM) AllocateClass(name *object.String) *object.Class {
	c := object.NewClass(name)
	vm.track(c)
	return c
}

func (vm *VM) AllocateInstance(class *object.Class) *object.Instance {
	in := object.NewInstance(class)
	vm.track(in)
	return in
}

func (vm *VM) AllocateBoundMethod(receiver, method object.Value) *object.BoundMethod {
	bm := object.NewBoundMethod(receiver, method)
	vm.track(bm)
	return bm
}

// maybeCollect triggers a collection if accumulated bytes have crossed
// the threshold set after the last collection.
func (vm *VM) maybeCollect() {
	if vm.bytesAllocated > vm.nextGC {
		vm.CollectGarbage()
	}
}

// CollectGarbage runs one full mark-and-sweep pass: mark roots, trace
// and blacken reachable objects, prune the intern table of anything not
// reachable, then free everything left unmarked.
func (vm *VM) CollectGarbage() {
	before := vm.bytesAllocated
	vm.markRoots()
	vm.traceReferences()
	vm.pruneInternTable()
	freed := vm.sweep()
	if vm.nextGC < 2*vm.bytesAllocated {
		vm.nextGC = 2 * vm.bytesAllocated
	}
	if vm.nextGC < 1024 {
		vm.nextGC = 1024
	}
	vm.log.Debug().
		Int("before_bytes", before).
		Int("after_bytes", vm.bytesAllocated).
		Int("freed_objects", freed).
		Int("next_gc", vm.nextGC).
		Msg("gc collect")
}

func (vm *VM) markValue(v object.Value) {
	if v.Type == object.ValueObj && v.Obj != nil {
		vm.markObject(v.Obj)
	}
}

func (vm *VM) markObject(o object.Obj) {
	if o == nil || o.IsMarked() {
		return
	}
	o.SetMarked(true)
	vm.gray = append(vm.gray, o)
}

func (vm *VM) markRoots() {
	for i := 0; i < vm.stackTop; i++ {
		vm.markValue(vm.stack[i])
	}
	for i := 0; i < vm.frameCount; i++ {
		vm.markObject(vm.frames[i].function)
	}
	for i, defined := range vm.globalDefined {
		if defined {
			vm.markValue(vm.globals[i])
		}
	}
}

func (vm *VM) traceReferences() {
	for len(vm.gray) > 0 {
		o := vm.gray[len(vm.gray)-1]
		vm.gray = vm.gray[:len(vm.gray)-1]
		vm.blacken(o)
	}
}

func (vm *VM) blacken(o object.Obj) {
	switch v := o.(type) {
	case *object.String:
		// no outgoing references
	case *object.Array:
		for _, elem := range v.Elements {
			vm.markValue(elem)
		}
	case *object.Class:
		vm.markObject(v.Name)
		for _, m := range v.Methods {
			vm.markObject(m.Name)
			vm.markValue(m.Value)
		}
	case *object.Instance:
		vm.markObject(v.Class)
		for _, f := range v.Fields {
			vm.markObject(f.Name)
			vm.markValue(f.Value)
		}
	case *object.BoundMethod:
		vm.markValue(v.Receiver)
		vm.markValue(v.Method)
	case *bytecode.Function:
		if v.Name != nil {
			vm.markObject(v.Name)
		}
		for _, c := range v.Chunk.Constants {
			vm.markValue(c)
		}
	}
}

// pruneInternTable removes entries whose string was not marked reachable
// this collection. This must run before sweep frees those strings, or a
// later lookup would return a dangling reference.
func (vm *VM) pruneInternTable() {
	for k, s := range vm.strings {
		if !s.IsMarked() {
			delete(vm.strings, k)
		}
	}
}

func (vm *VM) sweep() int {
	var prev object.Obj
	cur := vm.objects
	freed := 0
	for cur != nil {
		next := cur.Next()
		if cur.IsMarked() {
			cur.SetMarked(false)
			prev = cur
		} else {
			vm.bytesAllocated -= sizeOf(cur)
			freed++
			if prev == nil {
				vm.objects = next
			} else {
				prev.SetNext(next)
			}
		}
		cur = next
	}
	return freed
}
