// Package object defines the tagged-union Value representation and the
// heap-object header shared by every heap-allocated variant (strings,
// arrays, classes, instances, bound methods, functions).
package object

// ObjType discriminates heap object variants.
type ObjType int

const (
	ObjString ObjType = iota
	ObjArray
	ObjClass
	ObjInstance
	ObjBoundMethod
	ObjFunction
)

func (t ObjType) String() string {
	switch t {
	case ObjString:
		return "string"
	case ObjArray:
		return "array"
	case ObjClass:
		return "class"
	case ObjInstance:
		return "instance"
	case ObjBoundMethod:
		return "bound method"
	case ObjFunction:
		return "function"
	default:
		return "unknown"
	}
}

// Obj is satisfied by every heap object variant. Implementations embed
// Header, which supplies the mark bit and intrusive list link that make
// the allocation list and the tracing collector possible.
type Obj interface {
	Type() ObjType
	IsMarked() bool
	SetMarked(bool)
	Next() Obj
	SetNext(Obj)
}

// Header is embedded by every heap object. It carries the object's type
// tag, the GC mark bit, and the forward link in the VM's intrusive
// allocation list.
type Header struct {
	ObjType ObjType
	Marked  bool
	next    Obj
}

func (h *Header) Type() ObjType    { return h.ObjType }
func (h *Header) IsMarked() bool   { return h.Marked }
func (h *Header) SetMarked(m bool) { h.Marked = m }
func (h *Header) Next() Obj        { return h.next }
func (h *Header) SetNext(o Obj)    { h.next = o }
