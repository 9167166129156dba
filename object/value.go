package object

// ValueType discriminates the tagged Value union.
type ValueType int

const (
	ValueNull ValueType = iota
	ValueBool
	ValueNumber
	ValueObj
)

// Value is the tagged union every register, stack slot, global slot, and
// object field holds. It is copied by plain Go struct assignment (shallow
// bitwise copy); only the Obj variant participates in garbage collection.
type Value struct {
	Type   ValueType
	Bool   bool
	Number float64
	Obj    Obj
}

var Null = Value{Type: ValueNull}
var True = Value{Type: ValueBool, Bool: true}
var False = Value{Type: ValueBool, Bool: false}

func NewBool(b bool) Value {
	if b {
		return True
	}
	return False
}

func NewNumber(n float64) Value {
	return Value{Type: ValueNumber, Number: n}
}

func NewObj(o Obj) Value {
	return Value{Type: ValueObj, Obj: o}
}

func (v Value) IsNull() bool   { return v.Type == ValueNull }
func (v Value) IsBool() bool   { return v.Type == ValueBool }
func (v Value) IsNumber() bool { return v.Type == ValueNumber }
func (v Value) IsObj() bool    { return v.Type == ValueObj }

func (v Value) IsObjType(t ObjType) bool {
	return v.Type == ValueObj && v.Obj.Type() == t
}

// Truthy implements the language's truthiness rule: null and false are
// false, everything else is true.
func (v Value) Truthy() bool {
	switch v.Type {
	case ValueNull:
		return false
	case ValueBool:
		return v.Bool
	default:
		return true
	}
}

// Equals implements same-variant structural equality. Heap-object
// references compare strings by byte content and every other heap
// object by reference identity.
func (v Value) Equals(other Value) bool {
	if v.Type != other.Type {
		return false
	}
	switch v.Type {
	case ValueNull:
		return true
	case ValueBool:
		return v.Bool == other.Bool
	case ValueNumber:
		return v.Number == other.Number
	case ValueObj:
		if s1, ok := v.Obj.(*String); ok {
			if s2, ok := other.Obj.(*String); ok {
				return s1.Value == s2.Value
			}
			return false
		}
		return v.Obj == other.Obj
	default:
		return false
	}
}

func TypeName(v Value) string {
	switch v.Type {
	case ValueNull:
		return "null"
	case ValueBool:
		return "bool"
	case ValueNumber:
		return "number"
	case ValueObj:
		return v.Obj.Type().String()
	default:
		return "unknown"
	}
}
