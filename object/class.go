package object

// Property is one (name, value) entry in a class's method table or an
// instance's field table. Name is an interned string compared by
// identity, not content, when looking a property up.
type Property struct {
	Name  *String
	Value Value
}

// Class is a named collection of methods. Instances are created by
// calling the class; see the vm package for constructor dispatch.
type Class struct {
	Header
	Name    *String
	Methods []Property
}

func NewClass(name *String) *Class {
	return &Class{Header: Header{ObjType: ObjClass}, Name: name}
}

// FindMethod looks a method up by pointer identity; method and field
// names always come from the intern table, so identity equals content.
func (c *Class) FindMethod(name *String) (Value, bool) {
	for _, m := range c.Methods {
		if m.Name == name {
			return m.Value, true
		}
	}
	return Value{}, false
}

// SetMethod installs or replaces a method by name.
func (c *Class) SetMethod(name *String, value Value) {
	for i, m := range c.Methods {
		if m.Name == name {
			c.Methods[i].Value = value
			return
		}
	}
	c.Methods = append(c.Methods, Property{Name: name, Value: value})
}

// Instance is a per-object field table bound to a class.
type Instance struct {
	Header
	Class  *Class
	Fields []Property
}

func NewInstance(class *Class) *Instance {
	return &Instance{Header: Header{ObjType: ObjInstance}, Class: class}
}

func (in *Instance) GetField(name *String) (Value, bool) {
	for _, f := range in.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}

func (in *Instance) SetField(name *String, value Value) {
	for i, f := range in.Fields {
		if f.Name == name {
			in.Fields[i].Value = value
			return
		}
	}
	in.Fields = append(in.Fields, Property{Name: name, Value: value})
}

// BoundMethod pairs a receiver with the method function read off it,
// produced when a method is accessed without being immediately invoked.
type BoundMethod struct {
	Header
	Receiver Value
	Method   Value // always holds a function object
}

func NewBoundMethod(receiver, method Value) *BoundMethod {
	return &BoundMethod{Header: Header{ObjType: ObjBoundMethod}, Receiver: receiver, Method: method}
}
