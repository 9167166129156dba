package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrunix00/vibelang/object"
	"github.com/mrunix00/vibelang/parser"
	"github.com/mrunix00/vibelang/vm"
)

func run(t *testing.T, source string) object.Value {
	t.Helper()
	program, err := parser.Parse(source)
	require.NoError(t, err)

	machine := vm.New(vm.Options{})
	fn, err := Compile(program, machine)
	require.NoError(t, err)

	result, rerr := machine.Run(fn)
	require.Nil(t, rerr, "unexpected runtime error: %v", rerr)
	return result
}

func runErr(t *testing.T, source string) error {
	t.Helper()
	program, err := parser.Parse(source)
	if err != nil {
		return err
	}
	machine := vm.New(vm.Options{})
	fn, err := Compile(program, machine)
	if err != nil {
		return err
	}
	_, rerr := machine.Run(fn)
	if rerr != nil {
		return rerr
	}
	return nil
}

func TestArithmeticPrecedence(t *testing.T) {
	result := run(t, "1 + 2 * 3;")
	assert.Equal(t, 7.0, result.Number)
}

func TestComparisonComposites(t *testing.T) {
	assert.True(t, run(t, "3 >= 3;").Bool)
	assert.True(t, run(t, "2 <= 3;").Bool)
	assert.True(t, run(t, "1 != 2;").Bool)
	assert.False(t, run(t, "1 != 1;").Bool)
}

func TestLetAndGlobalMutation(t *testing.T) {
	result := run(t, `
		let x = 10;
		x = x + 5;
		x;
	`)
	assert.Equal(t, 15.0, result.Number)
}

func TestLocalScoping(t *testing.T) {
	result := run(t, `
		let x = 1;
		{
			let x = 2;
		}
		x;
	`)
	assert.Equal(t, 1.0, result.Number)
}

func TestIfElse(t *testing.T) {
	assert.Equal(t, 1.0, run(t, `
		let result = 0;
		if (true) {
			result = 1;
		} else {
			result = 2;
		}
		result;
	`).Number)

	assert.Equal(t, 2.0, run(t, `
		let result = 0;
		if (false) {
			result = 1;
		} else {
			result = 2;
		}
		result;
	`).Number)
}

func TestWhileLoop(t *testing.T) {
	result := run(t, `
		let i = 0;
		let sum = 0;
		while (i < 5) {
			sum = sum + i;
			i = i + 1;
		}
		sum;
	`)
	assert.Equal(t, 10.0, result.Number)
}

func TestFunctionCallAndReturn(t *testing.T) {
	result := run(t, `
		function add(a, b) {
			return a + b;
		}
		add(2, 3);
	`)
	assert.Equal(t, 5.0, result.Number)
}

func TestRecursiveFunction(t *testing.T) {
	result := run(t, `
		function fib(n) {
			if (n < 2) {
				return n;
			}
			return fib(n - 1) + fib(n - 2);
		}
		fib(10);
	`)
	assert.Equal(t, 55.0, result.Number)
}

func TestArrayBuildIndexAndConcat(t *testing.T) {
	result := run(t, `
		let a = [1, 2, 3];
		let b = a + 4;
		b[3];
	`)
	assert.Equal(t, 4.0, result.Number)
}

func TestStringConcat(t *testing.T) {
	result := run(t, `"foo" + "bar";`)
	require.True(t, result.IsObjType(object.ObjString))
	assert.Equal(t, "foobar", result.Obj.(*object.String).Value)
}

func TestClassWithConstructorAndMethod(t *testing.T) {
	result := run(t, `
		class Point {
			constructor(x, y) {
				this.x = x;
				this.y = y;
			}
			sum() {
				return this.x + this.y;
			}
		}
		let p = Point(3, 4);
		p.sum();
	`)
	assert.Equal(t, 7.0, result.Number)
}

func TestClassWithoutConstructorBareInstance(t *testing.T) {
	result := run(t, `
		class Empty {}
		let e = Empty();
		e;
	`)
	assert.True(t, result.IsObjType(object.ObjInstance))
}

func TestClassWithoutConstructorButArgsIsArityError(t *testing.T) {
	err := runErr(t, `
		class Empty {}
		Empty(1);
	`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Constructor not defined.")
}

func TestUndefinedVariableIsCompileError(t *testing.T) {
	err := runErr(t, `missing_name;`)
	require.Error(t, err)
}

func TestReadLocalInOwnInitializerIsCompileError(t *testing.T) {
	err := runErr(t, `
		{
			let x = x;
		}
	`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "before initialization")
}

func TestDuplicateGlobalIsCompileError(t *testing.T) {
	err := runErr(t, `
		let x = 1;
		let x = 2;
	`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already defined")
}

func TestDuplicateLocalIsCompileError(t *testing.T) {
	err := runErr(t, `
		{
			let a = 1;
			let a = 2;
		}
	`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already declared")
}

func TestEmptyArrayLiteral(t *testing.T) {
	result := run(t, `
		let a = [];
		a + 1;
	`)
	require.True(t, result.IsObjType(object.ObjArray))
	assert.Len(t, result.Obj.(*object.Array).Elements, 1)
}

func TestScriptResultIsLastExpressionStatement(t *testing.T) {
	result := run(t, `
		1;
		2;
		3;
	`)
	assert.Equal(t, 3.0, result.Number)
}

func TestNonGlobalExpressionStatementDoesNotBecomeResult(t *testing.T) {
	result := run(t, `
		let x = 1;
		function f() {
			99;
		}
		f();
		42;
	`)
	assert.Equal(t, 42.0, result.Number)
}

func TestUnaryOperators(t *testing.T) {
	assert.Equal(t, -5.0, run(t, "-5;").Number)
	assert.True(t, run(t, "!false;").Bool)
}

func TestAddNumberAndBoolIsRuntimeError(t *testing.T) {
	err := runErr(t, `1 + true;`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Operands must be numbers or strings.")
}

func TestConstructorDefaultReturnYieldsReceiver(t *testing.T) {
	result := run(t, `
		class Box {
			constructor(v) {
				this.v = v;
			}
		}
		Box(9);
	`)
	require.True(t, result.IsObjType(object.ObjInstance))
	assert.Equal(t, 9.0, result.Obj.(*object.Instance).Fields[0].Value.Number)
}

func TestExplicitReturnInConstructorIsCompileError(t *testing.T) {
	err := runErr(t, `
		class Box {
			constructor(v) {
				return v;
			}
		}
	`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cannot return a value from a constructor.")
}

func TestArrayIndexOutOfRange(t *testing.T) {
	err := runErr(t, `
		let a = [1, 2];
		a[5];
	`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}
