// Package bytecode defines the compiled representation a function's body
// is compiled to: a Chunk (instruction stream, line table, constant pool)
// and a Function (arity, register count, name, and its Chunk) that the VM
// dispatches against.
package bytecode

import "github.com/mrunix00/vibelang/object"

// Chunk is one function body's compiled form: a flat byte stream of
// opcodes and their operands, a parallel line-number table with one entry
// per instruction byte, and a constant pool indexed by 16-bit operands.
type Chunk struct {
	Code      []byte
	Lines     []int
	Constants []object.Value
}

// NewChunk returns an empty chunk ready for the compiler to emit into.
func NewChunk() *Chunk {
	return &Chunk{}
}

// WriteByte appends one instruction or operand byte, recording line as the
// source line that produced it.
func (c *Chunk) WriteByte(b byte, line int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

// WriteUint16 appends a big-endian 16-bit operand across two bytes.
func (c *Chunk) WriteUint16(v uint16, line int) {
	c.WriteByte(byte(v>>8), line)
	c.WriteByte(byte(v), line)
}

// AddConstant appends value to the constant pool and returns its index.
// The compiler is responsible for enforcing the 65536-entry limit.
func (c *Chunk) AddConstant(value object.Value) int {
	c.Constants = append(c.Constants, value)
	return len(c.Constants) - 1
}

// Len returns the current length of the instruction stream, used by the
// compiler to record jump targets and loop-head offsets.
func (c *Chunk) Len() int {
	return len(c.Code)
}

// PatchUint16 overwrites the two operand bytes at offset with v, used to
// back-patch forward jumps once their target address is known.
func (c *Chunk) PatchUint16(offset int, v uint16) {
	c.Code[offset] = byte(v >> 8)
	c.Code[offset+1] = byte(v)
}

// ReadUint16 reads the big-endian 16-bit value at offset.
func (c *Chunk) ReadUint16(offset int) uint16 {
	return uint16(c.Code[offset])<<8 | uint16(c.Code[offset+1])
}
