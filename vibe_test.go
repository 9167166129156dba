package vibelang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrunix00/vibelang/object"
)

func TestEvalEndToEndScenarios(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		number float64
	}{
		{"arithmetic", `let x = 41; let y = 1; x + y;`, 42},
		{"if_else", `let x = 10; if (x > 5) { x = x + 1; } else { x = x - 1; } x;`, 11},
		{"function_call", `function add(a, b) { return a + b; } add(3, 4);`, 7},
		{"while_loop", `let sum = 0; let i = 0; while (i < 4) { sum = sum + i; i = i + 1; } sum;`, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Eval(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.number, result.Number)
		})
	}
}

func TestEvalStringConcatenation(t *testing.T) {
	result, err := Eval(`let a = "foo"; let b = "bar"; a + b;`)
	require.NoError(t, err)
	require.True(t, result.IsObjType(object.ObjString))
	assert.Equal(t, "foobar", result.Obj.(*object.String).Value)
}

func TestEvalClassConstructorAndMethod(t *testing.T) {
	result, err := Eval(`
		class Player {
			constructor(s) { this.value = s; }
			tick(n) { this.value = this.value + n; }
		}
		let p = Player(0);
		p.tick(1);
		p.value;
	`)
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.Number)
}

func TestEvalArrayConcatAndIndex(t *testing.T) {
	result, err := Eval(`let list = [1, 2, 3]; list += 4; list[3];`)
	require.NoError(t, err)
	assert.Equal(t, 4.0, result.Number)
}

func TestEvalParseErrorYieldsNoResult(t *testing.T) {
	_, err := Eval(`let x = ;`)
	require.Error(t, err)
}

func TestEvalCallingNonFunctionIsRuntimeError(t *testing.T) {
	_, err := Eval(`let x = 5; x();`)
	require.Error(t, err)
}

func TestEvalUndefinedGlobalIsCompileError(t *testing.T) {
	_, err := Eval(`undefined_name;`)
	require.Error(t, err)
}
