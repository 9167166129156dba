package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrunix00/vibelang/bytecode"
	"github.com/mrunix00/vibelang/object"
	"github.com/mrunix00/vibelang/op"
)

// scriptReturningConstant builds a script function that loads a constant
// into register 0, calls register 0 with no arguments, and returns it.
func scriptReturningConstant(v object.Value) *bytecode.Function {
	fn := bytecode.NewFunction(nil)
	fn.RegisterCount = 1
	fn.Chunk.WriteByte(byte(op.LOAD_CONST), 1)
	fn.Chunk.WriteByte(0, 1)
	idx := fn.Chunk.AddConstant(v)
	fn.Chunk.WriteUint16(uint16(idx), 1)
	fn.Chunk.WriteByte(byte(op.CALL), 1)
	fn.Chunk.WriteByte(0, 1) // dst
	fn.Chunk.WriteByte(0, 1) // callee
	fn.Chunk.WriteByte(0, 1) // argc
	fn.Chunk.WriteByte(byte(op.RETURN), 1)
	fn.Chunk.WriteByte(0, 1)
	return fn
}

func TestCallingNonFunctionValueIsRuntimeError(t *testing.T) {
	machine := New(Options{})
	fn := scriptReturningConstant(object.NewNumber(5))
	_, rerr := machine.Run(fn)
	require.NotNil(t, rerr)
	assert.Contains(t, rerr.Message, "Attempted to call a non-function value.")
}

func TestGetGlobalAtUndefinedSlotIsRuntimeError(t *testing.T) {
	machine := New(Options{})
	fn := bytecode.NewFunction(nil)
	fn.RegisterCount = 1
	fn.Chunk.WriteByte(byte(op.GET_GLOBAL), 1)
	fn.Chunk.WriteByte(0, 1)
	fn.Chunk.WriteUint16(0, 1) // slot 0 was never DEFINE_GLOBAL'd
	fn.Chunk.WriteByte(byte(op.RETURN), 1)
	fn.Chunk.WriteByte(0, 1)

	machine.DefineGlobalSlot("never_defined")
	_, rerr := machine.Run(fn)
	require.NotNil(t, rerr)
	assert.Contains(t, rerr.Message, "Undefined global variable.")
}

func TestRuntimeErrorTraceReportsFrameByFrame(t *testing.T) {
	machine := New(Options{})
	fn := scriptReturningConstant(object.NewNumber(1))
	_, rerr := machine.Run(fn)
	require.NotNil(t, rerr)
	require.Len(t, rerr.Trace, 1)
	assert.Equal(t, "<script>", rerr.Trace[0].FunctionName)
}
