// Package ast defines the desugared syntax tree handed to the semantic
// core. Upstream collaborators have already rewritten surface sugar
// (nested-binding patterns, multi-clause definitions, conditional forms)
// into this canonical shape; the core performs no syntax validation.
package ast

import (
	"strings"

	"github.com/quill-lang/quill/internal/token"
)

// Node is the base interface for all syntax nodes.
type Node interface {
	GetToken() token.Token
	TokenLiteral() string
}

// Expression is any evaluatable node. The desugared tree is expression
// oriented: there are no statements, only an ordered sequence of top-level
// expressions.
type Expression interface {
	Node
	expressionNode()
}

// Program is the root of one compilation unit.
type Program struct {
	File  string
	Exprs []Expression
}

func (p *Program) GetToken() token.Token {
	if len(p.Exprs) > 0 {
		return p.Exprs[0].GetToken()
	}
	return token.Token{}
}

func (p *Program) TokenLiteral() string {
	if len(p.Exprs) > 0 {
		return p.Exprs[0].TokenLiteral()
	}
	return ""
}

// Identifier is a name reference.
type Identifier struct {
	Token token.Token
	Value string
}

func (i *Identifier) expressionNode()       {}
func (i *Identifier) GetToken() token.Token { return i.Token }
func (i *Identifier) TokenLiteral() string  { return i.Token.Lexeme }

// IntLiteral is an integer literal.
type IntLiteral struct {
	Token token.Token
	Value int64
}

func (l *IntLiteral) expressionNode()       {}
func (l *IntLiteral) GetToken() token.Token { return l.Token }
func (l *IntLiteral) TokenLiteral() string  { return l.Token.Lexeme }

// FloatLiteral is a floating-point literal.
type FloatLiteral struct {
	Token token.Token
	Value float64
}

func (l *FloatLiteral) expressionNode()       {}
func (l *FloatLiteral) GetToken() token.Token { return l.Token }
func (l *FloatLiteral) TokenLiteral() string  { return l.Token.Lexeme }

// StringLiteral is a string literal.
type StringLiteral struct {
	Token token.Token
	Value string
}

func (l *StringLiteral) expressionNode()       {}
func (l *StringLiteral) GetToken() token.Token { return l.Token }
func (l *StringLiteral) TokenLiteral() string  { return l.Token.Lexeme }

// BoolLiteral is true or false.
type BoolLiteral struct {
	Token token.Token
	Value bool
}

func (l *BoolLiteral) expressionNode()       {}
func (l *BoolLiteral) GetToken() token.Token { return l.Token }
func (l *BoolLiteral) TokenLiteral() string  { return l.Token.Lexeme }

// UnitLiteral is the unit value ().
type UnitLiteral struct {
	Token token.Token
}

func (l *UnitLiteral) expressionNode()       {}
func (l *UnitLiteral) GetToken() token.Token { return l.Token }
func (l *UnitLiteral) TokenLiteral() string  { return "()" }

// Accessor reads a field out of a record value.
type Accessor struct {
	Token  token.Token // the '.' token
	Target Expression
	Field  string
}

func (a *Accessor) expressionNode()       {}
func (a *Accessor) GetToken() token.Token { return a.Token }
func (a *Accessor) TokenLiteral() string  { return a.Token.Lexeme }

// CallExpression applies a callee to arguments. Conditional forms arrive
// here too: the desugarer rewrites them into ordinary calls of the builtin
// 'if' with lambda branches.
type CallExpression struct {
	Token  token.Token
	Callee Expression
	Args   []Expression
}

func (c *CallExpression) expressionNode()       {}
func (c *CallExpression) GetToken() token.Token { return c.Token }
func (c *CallExpression) TokenLiteral() string  { return c.Token.Lexeme }

// Param is one formal parameter of a definition or lambda.
type Param struct {
	Token token.Token
	Name  string
}

// Definition binds a name in the current scope. A nil Params slice is a
// value binding; otherwise it is a subroutine definition, already reduced
// to a single clause by the desugarer. A name ending in '!' declares a
// procedure (effectful subroutine).
type Definition struct {
	Token  token.Token
	Name   string
	Params []*Param
	Body   Expression
}

func (d *Definition) expressionNode()       {}
func (d *Definition) GetToken() token.Token { return d.Token }
func (d *Definition) TokenLiteral() string  { return d.Token.Lexeme }

// IsSubroutine reports whether the definition has a parameter list.
func (d *Definition) IsSubroutine() bool { return d.Params != nil }

// DeclaredEffectful reports the '!' naming convention: procedures may
// perform effects, plain definitions must be pure.
func (d *Definition) DeclaredEffectful() bool {
	return strings.HasSuffix(d.Name, "!")
}

// Lambda is an anonymous subroutine. MoveCapture marks a closure that
// captures its free bindings by value (moving them into its private
// environment); otherwise captures are by reference.
type Lambda struct {
	Token       token.Token
	Params      []*Param
	Body        Expression
	MoveCapture bool
}

func (l *Lambda) expressionNode()       {}
func (l *Lambda) GetToken() token.Token { return l.Token }
func (l *Lambda) TokenLiteral() string  { return l.Token.Lexeme }

// ArrayLiteral is an ordered element list.
type ArrayLiteral struct {
	Token    token.Token
	Elements []Expression
}

func (a *ArrayLiteral) expressionNode()       {}
func (a *ArrayLiteral) GetToken() token.Token { return a.Token }
func (a *ArrayLiteral) TokenLiteral() string  { return a.Token.Lexeme }

// RecordField is one field of a record literal. Fields keep source order;
// the code generator relies on it for deterministic emission.
type RecordField struct {
	Token token.Token
	Name  string
	Value Expression
}

// RecordLiteral constructs a record value.
type RecordLiteral struct {
	Token  token.Token
	Fields []*RecordField
}

func (r *RecordLiteral) expressionNode()       {}
func (r *RecordLiteral) GetToken() token.Token { return r.Token }
func (r *RecordLiteral) TokenLiteral() string  { return r.Token.Lexeme }

// Comprehension builds a list from a source: [Body | Binding <- Source, Filter].
// The desugarer guarantees Source evaluates to a List.
type Comprehension struct {
	Token   token.Token
	Binding *Param
	Source  Expression
	Filter  Expression // optional
	Body    Expression
}

func (c *Comprehension) expressionNode()       {}
func (c *Comprehension) GetToken() token.Token { return c.Token }
func (c *Comprehension) TokenLiteral() string  { return c.Token.Lexeme }

// Block is an expression sequence evaluating to its last expression. It
// introduces a scope.
type Block struct {
	Token token.Token
	Exprs []Expression
}

func (b *Block) expressionNode()       {}
func (b *Block) GetToken() token.Token { return b.Token }
func (b *Block) TokenLiteral() string  { return b.Token.Lexeme }
