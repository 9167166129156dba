package bytecode

import "github.com/mrunix00/vibelang/object"

// Function is a compiled function body: its declared arity, the maximum
// register count its frame requires, its chunk, and an optional interned
// name. Name is nil for the implicit top-level script function; declared
// functions and methods always carry their name.
type Function struct {
	object.Header
	Arity         int
	RegisterCount int
	Chunk         *Chunk
	Name          *object.String
}

// NewFunction allocates a Function heap object with an empty chunk.
// Callers are responsible for rooting it (pushing it onto the VM stack)
// until it is installed somewhere reachable, matching the GC safety
// discipline.
func NewFunction(name *object.String) *Function {
	return &Function{Header: object.Header{ObjType: object.ObjFunction}, Name: name, Chunk: NewChunk()}
}

// DisplayName renders f the way a successful CLI run prints a function
// result: its declared name, or the bare placeholder if it has none.
func (f *Function) DisplayName() string {
	if f.Name == nil {
		return "<fn>"
	}
	return "<function " + f.Name.Value + ">"
}
