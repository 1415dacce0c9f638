// Package token carries source positions through the semantic passes.
// Tokenization itself happens upstream; the core only needs enough of a
// token to place a diagnostic.
package token

import "fmt"

type TokenType string

const (
	IDENT  TokenType = "IDENT"
	INT    TokenType = "INT"
	FLOAT  TokenType = "FLOAT"
	STRING TokenType = "STRING"
	BOOL   TokenType = "BOOL"
	UNIT   TokenType = "UNIT"
	LAMBDA TokenType = "LAMBDA"
	DEF    TokenType = "DEF"
	LPAREN TokenType = "LPAREN"
	LBRACK TokenType = "LBRACK"
	LBRACE TokenType = "LBRACE"
	EOF    TokenType = "EOF"
)

// Token is the position-bearing handle every AST node keeps for error
// reporting. Line and Column are 1-based; a zero Token means "unknown site".
type Token struct {
	Type   TokenType
	Lexeme string
	Line   int
	Column int
}

// Pos renders the token position as "line:col".
func (t Token) Pos() string {
	return fmt.Sprintf("%d:%d", t.Line, t.Column)
}

// IsZero reports whether the token carries no position information.
func (t Token) IsZero() bool {
	return t.Line == 0 && t.Column == 0 && t.Lexeme == ""
}
