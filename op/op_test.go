package op

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetInfoOperandCounts(t *testing.T) {
	tests := []struct {
		code     Code
		name     string
		operands int
		variadic bool
	}{
		{LOAD_CONST, "LOAD_CONST", 3, false},
		{MOVE, "MOVE", 2, false},
		{ADD, "ADD", 3, false},
		{NEG, "NEG", 2, false},
		{JUMP_IF_FALSE, "JUMP_IF_FALSE", 3, false},
		{CALL, "CALL", 2, true},
		{BUILD_ARRAY, "BUILD_ARRAY", 1, true},
		{GET_PROPERTY, "GET_PROPERTY", 4, false},
		{METHOD, "METHOD", 4, false},
		{INVOKE, "INVOKE", 4, true},
	}
	for _, tt := range tests {
		info := GetInfo(tt.code)
		assert.Equal(t, tt.name, info.Name)
		assert.Equal(t, tt.operands, info.Operands)
		assert.Equal(t, tt.variadic, info.Variadic)
	}
}

func TestCodeString(t *testing.T) {
	assert.Equal(t, "RETURN", RETURN.String())
}
