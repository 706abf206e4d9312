package ast

import (
	"strings"

	"github.com/beanshell/beanshell-sub002/internal/token"
)

// TokenProvider is an interface for any AST node that can provide its primary token.
// This is useful for error reporting.
type TokenProvider interface {
	GetToken() token.Token
}

// Node is the base interface for all AST nodes.
type Node interface {
	TokenLiteral() string
	GetToken() token.Token
	String() string
}

// Statement is a Node that represents a statement.
type Statement interface {
	Node
	statementNode()
}

// Expression is a Node that represents an expression.
type Expression interface {
	Node
	expressionNode()
}

// Program is the root node of every AST our parser produces.
type Program struct {
	File       string // Source name, used in error positions
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) GetToken() token.Token {
	if len(p.Statements) > 0 {
		return p.Statements[0].GetToken()
	}
	return token.Token{}
}

func (p *Program) String() string {
	var out strings.Builder
	for _, s := range p.Statements {
		out.WriteString(s.String())
		out.WriteString("\n")
	}
	return out.String()
}

// BlockStatement is a braced statement list.
type BlockStatement struct {
	Token      token.Token // The '{' token
	Statements []Statement
}

func (bs *BlockStatement) statementNode()        {}
func (bs *BlockStatement) TokenLiteral() string  { return bs.Token.Lexeme }
func (bs *BlockStatement) GetToken() token.Token { return bs.Token }
func (bs *BlockStatement) String() string {
	var out strings.Builder
	out.WriteString("{ ")
	for _, s := range bs.Statements {
		out.WriteString(s.String())
		out.WriteString(" ")
	}
	out.WriteString("}")
	return out.String()
}

// TypeRef names a type in a declaration, cast, instanceof or allocation.
// Name is a primitive keyword ("int"), "void", or a possibly dotted class name.
type TypeRef struct {
	Token token.Token
	Name  string
	Dims  int
}

func (t *TypeRef) IsPrimitive() bool {
	switch t.Name {
	case "boolean", "char", "byte", "short", "int", "long", "float", "double":
		return true
	}
	return false
}

func (t *TypeRef) IsVoid() bool { return t.Name == "void" && t.Dims == 0 }

func (t *TypeRef) String() string {
	if t == nil {
		return ""
	}
	return t.Name + strings.Repeat("[]", t.Dims)
}

// Parameter is a formal method or catch parameter. A nil Type means untyped.
type Parameter struct {
	Token token.Token
	Name  string
	Type  *TypeRef
	Final bool
}

func (p *Parameter) String() string {
	if p.Type == nil {
		return p.Name
	}
	return p.Type.String() + " " + p.Name
}

// Modifiers is the ordered list of modifier keywords preceding a declaration.
type Modifiers []string

func (m Modifiers) Has(name string) bool {
	for _, s := range m {
		if s == name {
			return true
		}
	}
	return false
}

func (m Modifiers) String() string {
	if len(m) == 0 {
		return ""
	}
	return strings.Join(m, " ") + " "
}
