package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrunix00/vibelang/ast"
)

func TestParseLetWithAndWithoutInitializer(t *testing.T) {
	prog, err := Parse(`let x = 5; let y;`)
	require.NoError(t, err)
	require.Len(t, prog.Statements, 2)

	x, ok := prog.Statements[0].(*ast.LetStmt)
	require.True(t, ok)
	assert.Equal(t, "x", x.Name)
	assert.True(t, x.HasInitializer)

	y, ok := prog.Statements[1].(*ast.LetStmt)
	require.True(t, ok)
	assert.Equal(t, "y", y.Name)
	assert.False(t, y.HasInitializer)
}

func TestParsePrecedence(t *testing.T) {
	prog, err := Parse(`1 + 2 * 3;`)
	require.NoError(t, err)
	require.Len(t, prog.Statements, 1)

	exprStmt := prog.Statements[0].(*ast.ExpressionStmt)
	root, ok := exprStmt.Expression.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "+", root.Operator)

	left, ok := root.Left.(*ast.NumberLit)
	require.True(t, ok)
	assert.Equal(t, float64(1), left.Value)

	right, ok := root.Right.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "*", right.Operator)
}

func TestParsePlusEqualsDesugarsToAssignment(t *testing.T) {
	prog, err := Parse(`list += 4;`)
	require.NoError(t, err)
	exprStmt := prog.Statements[0].(*ast.ExpressionStmt)
	assign, ok := exprStmt.Expression.(*ast.AssignExpr)
	require.True(t, ok)
	ident, ok := assign.Target.(*ast.Identifier)
	require.True(t, ok)
	assert.Equal(t, "list", ident.Name)
	bin, ok := assign.Value.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "+", bin.Operator)
}

func TestParseInvokeDesugarsToFusedNode(t *testing.T) {
	prog, err := Parse(`obj.tick(1);`)
	require.NoError(t, err)
	exprStmt := prog.Statements[0].(*ast.ExpressionStmt)
	invoke, ok := exprStmt.Expression.(*ast.InvokeExpr)
	require.True(t, ok)
	assert.Equal(t, "tick", invoke.Name)
	require.Len(t, invoke.Args, 1)
}

func TestParsePropertyPlusEqualsIsInvalidTarget(t *testing.T) {
	_, err := Parse(`obj.field += 1;`)
	require.Error(t, err)
}

func TestParseMissingExpressionIsError(t *testing.T) {
	_, err := Parse(`let x = ;`)
	require.Error(t, err)
}

func TestParseArrayLiterals(t *testing.T) {
	prog, err := Parse(`[]; [1, 2];`)
	require.NoError(t, err)
	require.Len(t, prog.Statements, 2)

	empty := prog.Statements[0].(*ast.ExpressionStmt).Expression.(*ast.ArrayLit)
	assert.Empty(t, empty.Elements)

	two := prog.Statements[1].(*ast.ExpressionStmt).Expression.(*ast.ArrayLit)
	assert.Len(t, two.Elements, 2)
}

func TestParseClassWithConstructor(t *testing.T) {
	prog, err := Parse(`class Player { constructor(s) { this.value = s; } tick(n) { this.value = this.value + n; } }`)
	require.NoError(t, err)
	class := prog.Statements[0].(*ast.ClassStmt)
	assert.Equal(t, "Player", class.Name)
	require.Len(t, class.Methods, 2)
	assert.True(t, class.Methods[0].IsConstructor)
	assert.Equal(t, "tick", class.Methods[1].Name)
}
