// Package parser implements a recursive-descent, Pratt-style parser that
// turns a token stream into an *ast.Program.
package parser

import (
	"fmt"

	"github.com/mrunix00/vibelang/ast"
	"github.com/mrunix00/vibelang/errors"
	"github.com/mrunix00/vibelang/lexer"
	"github.com/mrunix00/vibelang/token"
)

// Parser consumes tokens from a lexer and builds an AST. Errors are sticky:
// the first error is recorded and parsing continues in panic-mode recovery,
// discarding tokens until a statement boundary, so the whole input is
// consumed but only the first error is surfaced.
type Parser struct {
	l *lexer.Lexer

	cur  token.Token
	next token.Token

	err *errors.SyntaxError
}

// New returns a Parser reading from l.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.advance()
	p.advance()
	return p
}

func (p *Parser) advance() {
	p.cur = p.next
	p.next = p.l.Next()
	for p.next.Type == token.ILLEGAL {
		code := errors.E1001
		if p.next.Literal == "Unterminated string literal." {
			code = errors.E1002
		}
		p.setError(code, p.next, p.next.Literal)
		p.next = p.l.Next()
	}
}

func (p *Parser) check(t token.Type) bool { return p.cur.Type == t }

func (p *Parser) match(t token.Type) bool {
	if !p.check(t) {
		return false
	}
	p.advance()
	return true
}

func (p *Parser) consume(t token.Type, message string) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	p.setError(errors.E1003, p.cur, message)
	return false
}

func (p *Parser) setError(code errors.Code, tok token.Token, format string, args ...any) {
	if p.err != nil {
		return
	}
	p.err = errors.NewSyntaxError(code, errors.Position{Line: tok.Line, Column: tok.Column}, format, args...)
}

// synchronize discards tokens until a likely statement boundary, so a
// caller that tries again after fixing an earlier error has a fresh start.
func (p *Parser) synchronize() {
	for !p.check(token.EOF) {
		if p.cur.Type == token.SEMICOLON {
			p.advance()
			return
		}
		switch p.cur.Type {
		case token.CLASS, token.FUNCTION, token.LET, token.IF, token.WHILE, token.RETURN:
			return
		}
		p.advance()
	}
}

// Parse runs the parser to completion. On success it returns the program;
// on the first error it returns nil and the error.
func Parse(source string) (*ast.Program, error) {
	p := New(lexer.New(source))
	return p.ParseProgram()
}

// ParseProgram parses the whole token stream into a Program.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	prog := &ast.Program{}
	for !p.check(token.EOF) {
		stmt := p.declaration()
		if p.err != nil {
			p.synchronize()
			continue
		}
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
	}
	if p.err != nil {
		return nil, p.err
	}
	return prog, nil
}

func (p *Parser) declaration() ast.Stmt {
	switch p.cur.Type {
	case token.CLASS:
		return p.classDeclaration()
	case token.FUNCTION:
		return p.functionDeclaration("function")
	case token.LET:
		return p.letDeclaration()
	default:
		return p.statement()
	}
}

func (p *Parser) params() []ast.Param {
	var params []ast.Param
	if !p.check(token.RPAREN) {
		for {
			if !p.check(token.IDENT) {
				p.setError(errors.E1003, p.cur, "Expect parameter name.")
				return params
			}
			params = append(params, ast.Param{Name: p.cur.Literal})
			p.advance()
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	return params
}

func (p *Parser) functionDeclaration(kind string) *ast.FunctionStmt {
	line := p.cur.Line
	p.advance() // "function"
	if !p.check(token.IDENT) {
		p.setError(errors.E1003, p.cur, fmt.Sprintf("Expect %s name.", kind))
		return nil
	}
	name := p.cur.Literal
	p.advance()
	if !p.consume(token.LPAREN, "Expect '(' after function name.") {
		return nil
	}
	params := p.params()
	if !p.consume(token.RPAREN, "Expect ')' after parameters.") {
		return nil
	}
	body := p.block()
	if body == nil {
		return nil
	}
	return ast.NewFunctionStmt(line, name, params, body)
}

func (p *Parser) method() ast.MethodDecl {
	line := p.cur.Line
	isCtor := p.check(token.CONSTRUCTOR)
	var name string
	if isCtor {
		name = "constructor"
		p.advance()
	} else if p.check(token.IDENT) {
		name = p.cur.Literal
		p.advance()
	} else {
		p.setError(errors.E1003, p.cur, "Expect method name.")
		return ast.MethodDecl{}
	}
	if !p.consume(token.LPAREN, "Expect '(' after method name.") {
		return ast.MethodDecl{}
	}
	params := p.params()
	if !p.consume(token.RPAREN, "Expect ')' after parameters.") {
		return ast.MethodDecl{}
	}
	body := p.block()
	return ast.MethodDecl{Name: name, Params: params, Body: body, IsConstructor: isCtor, Line: line}
}

func (p *Parser) classDeclaration() *ast.ClassStmt {
	line := p.cur.Line
	p.advance() // "class"
	if !p.check(token.IDENT) {
		p.setError(errors.E1003, p.cur, "Expect class name.")
		return nil
	}
	name := p.cur.Literal
	p.advance()
	if !p.consume(token.LBRACE, "Expect '{' before class body.") {
		return nil
	}
	var methods []ast.MethodDecl
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		m := p.method()
		if p.err != nil {
			return nil
		}
		methods = append(methods, m)
	}
	if !p.consume(token.RBRACE, "Expect '}' after class body.") {
		return nil
	}
	return ast.NewClassStmt(line, name, methods)
}

func (p *Parser) letDeclaration() *ast.LetStmt {
	line := p.cur.Line
	p.advance() // "let"
	if !p.check(token.IDENT) {
		p.setError(errors.E1003, p.cur, "Expect variable name.")
		return nil
	}
	name := p.cur.Literal
	p.advance()
	var value ast.Expr
	hasInit := false
	if p.match(token.ASSIGN) {
		hasInit = true
		value = p.expression()
	}
	if !p.consume(token.SEMICOLON, "Expect ';' after variable declaration.") {
		return nil
	}
	return ast.NewLetStmt(line, name, value, hasInit)
}

func (p *Parser) statement() ast.Stmt {
	switch p.cur.Type {
	case token.IF:
		return p.ifStatement()
	case token.WHILE:
		return p.whileStatement()
	case token.RETURN:
		return p.returnStatement()
	case token.LBRACE:
		return p.block()
	default:
		return p.expressionStatement()
	}
}

func (p *Parser) block() *ast.BlockStmt {
	line := p.cur.Line
	if !p.consume(token.LBRACE, "Expect '{'.") {
		return nil
	}
	var stmts []ast.Stmt
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		s := p.declaration()
		if p.err != nil {
			return nil
		}
		if s != nil {
			stmts = append(stmts, s)
		}
	}
	if !p.consume(token.RBRACE, "Expect '}' after block.") {
		return nil
	}
	return ast.NewBlockStmt(line, stmts)
}

func (p *Parser) ifStatement() *ast.IfStmt {
	line := p.cur.Line
	p.advance() // "if"
	if !p.consume(token.LPAREN, "Expect '(' after 'if'.") {
		return nil
	}
	cond := p.expression()
	if !p.consume(token.RPAREN, "Expect ')' after condition.") {
		return nil
	}
	then := p.block()
	if then == nil {
		return nil
	}
	var els *ast.BlockStmt
	if p.match(token.ELSE) {
		els = p.block()
		if els == nil {
			return nil
		}
	}
	return ast.NewIfStmt(line, cond, then, els)
}

func (p *Parser) whileStatement() *ast.WhileStmt {
	line := p.cur.Line
	p.advance() // "while"
	if !p.consume(token.LPAREN, "Expect '(' after 'while'.") {
		return nil
	}
	cond := p.expression()
	if !p.consume(token.RPAREN, "Expect ')' after condition.") {
		return nil
	}
	body := p.block()
	if body == nil {
		return nil
	}
	return ast.NewWhileStmt(line, cond, body)
}

func (p *Parser) returnStatement() *ast.ReturnStmt {
	line := p.cur.Line
	p.advance() // "return"
	var value ast.Expr
	hasValue := false
	if !p.check(token.SEMICOLON) {
		hasValue = true
		value = p.expression()
	}
	if !p.consume(token.SEMICOLON, "Expect ';' after return value.") {
		return nil
	}
	return ast.NewReturnStmt(line, value, hasValue)
}

func (p *Parser) expressionStatement() *ast.ExpressionStmt {
	line := p.cur.Line
	expr := p.expression()
	if p.err != nil {
		return nil
	}
	if !p.consume(token.SEMICOLON, "Expect ';' after expression.") {
		return nil
	}
	return ast.NewExpressionStmt(line, expr)
}

// ---- Expressions, in ascending precedence ----

func (p *Parser) expression() ast.Expr {
	return p.assignment()
}

func (p *Parser) assignment() ast.Expr {
	line := p.cur.Line
	expr := p.equality()
	if p.err != nil {
		return expr
	}

	if p.check(token.ASSIGN) || p.check(token.PLUS_EQ) {
		isPlusEq := p.cur.Type == token.PLUS_EQ
		p.advance()
		value := p.assignment()
		if p.err != nil {
			return expr
		}

		if ident, ok := expr.(*ast.Identifier); ok {
			if isPlusEq {
				value = ast.NewBinaryExpr(line, "+", ast.NewIdentifier(ident.Line(), ident.Name), value)
			}
			return ast.NewAssignExpr(line, ident, value)
		}
		if getProp, ok := expr.(*ast.GetPropertyExpr); ok && !isPlusEq {
			return ast.NewAssignExpr(line, getProp, value)
		}
		p.setError(errors.E1005, p.cur, "Invalid assignment target.")
		return expr
	}
	return expr
}

func (p *Parser) equality() ast.Expr {
	expr := p.comparison()
	for p.check(token.EQ) || p.check(token.NOT_EQ) {
		op := string(p.cur.Type)
		line := p.cur.Line
		p.advance()
		right := p.comparison()
		expr = ast.NewBinaryExpr(line, op, expr, right)
	}
	return expr
}

func (p *Parser) comparison() ast.Expr {
	expr := p.term()
	for p.check(token.GT) || p.check(token.GT_EQ) || p.check(token.LT) || p.check(token.LT_EQ) {
		op := string(p.cur.Type)
		line := p.cur.Line
		p.advance()
		right := p.term()
		expr = ast.NewBinaryExpr(line, op, expr, right)
	}
	return expr
}

func (p *Parser) term() ast.Expr {
	expr := p.factor()
	for p.check(token.PLUS) || p.check(token.MINUS) {
		op := string(p.cur.Type)
		line := p.cur.Line
		p.advance()
		right := p.factor()
		expr = ast.NewBinaryExpr(line, op, expr, right)
	}
	return expr
}

func (p *Parser) factor() ast.Expr {
	expr := p.unary()
	for p.check(token.STAR) || p.check(token.SLASH) {
		op := string(p.cur.Type)
		line := p.cur.Line
		p.advance()
		right := p.unary()
		expr = ast.NewBinaryExpr(line, op, expr, right)
	}
	return expr
}

func (p *Parser) unary() ast.Expr {
	if p.check(token.BANG) || p.check(token.MINUS) {
		op := string(p.cur.Type)
		line := p.cur.Line
		p.advance()
		right := p.unary()
		return ast.NewUnaryExpr(line, op, right)
	}
	return p.call()
}

func (p *Parser) call() ast.Expr {
	expr := p.primary()
	for {
		switch {
		case p.check(token.LPAREN):
			line := p.cur.Line
			p.advance()
			args := p.argumentList(token.RPAREN)
			if !p.consume(token.RPAREN, "Expect ')' after arguments.") {
				return expr
			}
			expr = ast.NewCallExpr(line, expr, args)
		case p.check(token.LBRACKET):
			line := p.cur.Line
			p.advance()
			index := p.expression()
			if !p.consume(token.RBRACKET, "Expect ']' after index.") {
				return expr
			}
			expr = ast.NewIndexExpr(line, expr, index)
		case p.check(token.DOT):
			line := p.cur.Line
			p.advance()
			if !p.check(token.IDENT) {
				p.setError(errors.E1003, p.cur, "Expect property name after '.'.")
				return expr
			}
			name := p.cur.Literal
			p.advance()
			if p.check(token.LPAREN) {
				p.advance()
				args := p.argumentList(token.RPAREN)
				if !p.consume(token.RPAREN, "Expect ')' after arguments.") {
					return expr
				}
				expr = ast.NewInvokeExpr(line, expr, name, args)
			} else {
				expr = ast.NewGetPropertyExpr(line, expr, name)
			}
		default:
			return expr
		}
		if p.err != nil {
			return expr
		}
	}
}

// argumentList parses a possibly-empty comma-separated expression list up
// to (but not consuming) terminator: ")" for calls, "]" for array literals.
func (p *Parser) argumentList(terminator token.Type) []ast.Expr {
	var args []ast.Expr
	if !p.check(terminator) {
		for {
			args = append(args, p.expression())
			if p.err != nil {
				return args
			}
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	return args
}

func (p *Parser) primary() ast.Expr {
	line := p.cur.Line
	switch p.cur.Type {
	case token.NUMBER:
		v := p.cur.Number
		p.advance()
		return ast.NewNumberLit(line, v)
	case token.STRING:
		v := p.cur.Literal
		p.advance()
		return ast.NewStringLit(line, v)
	case token.TRUE:
		p.advance()
		return ast.NewBoolLit(line, true)
	case token.FALSE:
		p.advance()
		return ast.NewBoolLit(line, false)
	case token.NULL:
		p.advance()
		return ast.NewNullLit(line)
	case token.THIS:
		p.advance()
		return ast.NewThisExpr(line)
	case token.IDENT:
		name := p.cur.Literal
		p.advance()
		return ast.NewIdentifier(line, name)
	case token.LPAREN:
		p.advance()
		expr := p.expression()
		p.consume(token.RPAREN, "Expect ')' after expression.")
		return expr
	case token.LBRACKET:
		p.advance()
		elems := p.argumentList(token.RBRACKET)
		p.consume(token.RBRACKET, "Expect ']' after array elements.")
		return ast.NewArrayLit(line, elems)
	}
	p.setError(errors.E1004, p.cur, "Expect expression.")
	return ast.NewNullLit(line)
}
