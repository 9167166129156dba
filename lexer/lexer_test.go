package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mrunix00/vibelang/token"
)

func TestNextTokenPunctuators(t *testing.T) {
	input := `+-*/(){}[],;.= == != ! > >= < <= +=`

	tests := []token.Type{
		token.PLUS, token.MINUS, token.STAR, token.SLASH,
		token.LPAREN, token.RPAREN, token.LBRACE, token.RBRACE,
		token.LBRACKET, token.RBRACKET, token.COMMA, token.SEMICOLON, token.DOT,
		token.ASSIGN, token.EQ, token.NOT_EQ, token.BANG,
		token.GT, token.GT_EQ, token.LT, token.LT_EQ, token.PLUS_EQ,
		token.EOF,
	}

	l := New(input)
	for i, want := range tests {
		tok := l.Next()
		assert.Equalf(t, want, tok.Type, "token %d", i)
	}
}

func TestNextTokenKeywordsAndIdents(t *testing.T) {
	input := `let function return if else while class constructor this true false null foo_1`

	tests := []token.Type{
		token.LET, token.FUNCTION, token.RETURN, token.IF, token.ELSE,
		token.WHILE, token.CLASS, token.CONSTRUCTOR, token.THIS,
		token.TRUE, token.FALSE, token.NULL, token.IDENT,
	}

	l := New(input)
	for i, want := range tests {
		tok := l.Next()
		assert.Equalf(t, want, tok.Type, "token %d", i)
	}
}

func TestNextTokenNumber(t *testing.T) {
	l := New("42 3.14 5.")
	tok := l.Next()
	assert.Equal(t, token.NUMBER, tok.Type)
	assert.Equal(t, float64(42), tok.Number)

	tok = l.Next()
	assert.Equal(t, token.NUMBER, tok.Type)
	assert.Equal(t, 3.14, tok.Number)

	// "5." has no digit after the dot: the dot is a separate token.
	tok = l.Next()
	assert.Equal(t, token.NUMBER, tok.Type)
	assert.Equal(t, float64(5), tok.Number)
	tok = l.Next()
	assert.Equal(t, token.DOT, tok.Type)
}

func TestNextTokenString(t *testing.T) {
	l := New(`"hello world"`)
	tok := l.Next()
	assert.Equal(t, token.STRING, tok.Type)
	assert.Equal(t, "hello world", tok.Literal)
}

func TestNextTokenUnterminatedString(t *testing.T) {
	l := New(`"hello`)
	tok := l.Next()
	assert.Equal(t, token.ILLEGAL, tok.Type)
	assert.Equal(t, "Unterminated string literal.", tok.Literal)
}

func TestNextTokenLineComment(t *testing.T) {
	l := New("1 // comment\n2")
	tok := l.Next()
	assert.Equal(t, float64(1), tok.Number)
	tok = l.Next()
	assert.Equal(t, float64(2), tok.Number)
	assert.Equal(t, 2, tok.Line)
}

func TestNextTokenUnexpectedCharacter(t *testing.T) {
	l := New("@")
	tok := l.Next()
	assert.Equal(t, token.ILLEGAL, tok.Type)
	assert.Equal(t, "Unexpected character.", tok.Literal)
}
