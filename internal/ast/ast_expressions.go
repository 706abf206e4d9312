package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beanshell/beanshell-sub002/internal/token"
)

// AmbiguousName is a possibly dotted identifier whose meaning (variable, type,
// field chain) is only known at evaluation time.
type AmbiguousName struct {
	Token token.Token
	Name  string
}

func (an *AmbiguousName) expressionNode()       {}
func (an *AmbiguousName) TokenLiteral() string  { return an.Token.Lexeme }
func (an *AmbiguousName) GetToken() token.Token { return an.Token }
func (an *AmbiguousName) String() string        { return an.Name }

// Literal is a primitive, string or null literal.
// Value is bool, uint16 (char), int32, int64, float32, float64, string or nil.
type Literal struct {
	Token token.Token
	Value interface{}
}

func (l *Literal) expressionNode()       {}
func (l *Literal) TokenLiteral() string  { return l.Token.Lexeme }
func (l *Literal) GetToken() token.Token { return l.Token }
func (l *Literal) String() string {
	switch v := l.Value.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(v)
	case uint16:
		return strconv.QuoteRune(rune(v))
	default:
		if l.Token.Lexeme != "" {
			return l.Token.Lexeme
		}
		return fmt.Sprint(v)
	}
}

// MethodInvocation calls a possibly dotted name: foo(x), a.b.foo(x), this.caller.f().
type MethodInvocation struct {
	Token     token.Token
	Name      string
	Arguments []Expression
}

func (mi *MethodInvocation) expressionNode()       {}
func (mi *MethodInvocation) TokenLiteral() string  { return mi.Token.Lexeme }
func (mi *MethodInvocation) GetToken() token.Token { return mi.Token }
func (mi *MethodInvocation) String() string {
	return mi.Name + "(" + joinExpressions(mi.Arguments) + ")"
}

// MethodCall invokes a method on the value of an arbitrary primary expression.
type MethodCall struct {
	Token     token.Token
	Object    Expression
	Method    string
	Arguments []Expression
}

func (mc *MethodCall) expressionNode()       {}
func (mc *MethodCall) TokenLiteral() string  { return mc.Token.Lexeme }
func (mc *MethodCall) GetToken() token.Token { return mc.Token }
func (mc *MethodCall) String() string {
	return mc.Object.String() + "." + mc.Method + "(" + joinExpressions(mc.Arguments) + ")"
}

// FieldAccess reads a member of the value of an arbitrary primary expression.
type FieldAccess struct {
	Token  token.Token
	Object Expression
	Field  string
}

func (fa *FieldAccess) expressionNode()       {}
func (fa *FieldAccess) TokenLiteral() string  { return fa.Token.Lexeme }
func (fa *FieldAccess) GetToken() token.Token { return fa.Token }
func (fa *FieldAccess) String() string        { return fa.Object.String() + "." + fa.Field }

type IndexExpression struct {
	Token token.Token // The '[' token
	Left  Expression
	Index Expression
}

func (ie *IndexExpression) expressionNode()       {}
func (ie *IndexExpression) TokenLiteral() string  { return ie.Token.Lexeme }
func (ie *IndexExpression) GetToken() token.Token { return ie.Token }
func (ie *IndexExpression) String() string {
	return ie.Left.String() + "[" + ie.Index.String() + "]"
}

// ClassLiteral is `Type.class`.
type ClassLiteral struct {
	Token token.Token
	Type  *TypeRef
}

func (cl *ClassLiteral) expressionNode()       {}
func (cl *ClassLiteral) TokenLiteral() string  { return cl.Token.Lexeme }
func (cl *ClassLiteral) GetToken() token.Token { return cl.Token }
func (cl *ClassLiteral) String() string        { return cl.Type.String() + ".class" }

// PrefixExpression covers unary - + ! ~ and pre-increment/decrement.
type PrefixExpression struct {
	Token    token.Token
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()       {}
func (pe *PrefixExpression) TokenLiteral() string  { return pe.Token.Lexeme }
func (pe *PrefixExpression) GetToken() token.Token { return pe.Token }
func (pe *PrefixExpression) String() string {
	return "(" + pe.Operator + pe.Right.String() + ")"
}

// PostfixExpression is x++ or x--.
type PostfixExpression struct {
	Token    token.Token
	Operator string
	Left     Expression
}

func (pe *PostfixExpression) expressionNode()       {}
func (pe *PostfixExpression) TokenLiteral() string  { return pe.Token.Lexeme }
func (pe *PostfixExpression) GetToken() token.Token { return pe.Token }
func (pe *PostfixExpression) String() string {
	return "(" + pe.Left.String() + pe.Operator + ")"
}

type InfixExpression struct {
	Token    token.Token
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()       {}
func (ie *InfixExpression) TokenLiteral() string  { return ie.Token.Lexeme }
func (ie *InfixExpression) GetToken() token.Token { return ie.Token }
func (ie *InfixExpression) String() string {
	return "(" + ie.Left.String() + " " + ie.Operator + " " + ie.Right.String() + ")"
}

// AssignExpression is plain or compound assignment. Operator is "=", "+=", ...
type AssignExpression struct {
	Token    token.Token
	Target   Expression
	Operator string
	Value    Expression
}

func (ae *AssignExpression) expressionNode()       {}
func (ae *AssignExpression) TokenLiteral() string  { return ae.Token.Lexeme }
func (ae *AssignExpression) GetToken() token.Token { return ae.Token }
func (ae *AssignExpression) String() string {
	return ae.Target.String() + " " + ae.Operator + " " + ae.Value.String()
}

type TernaryExpression struct {
	Token       token.Token
	Condition   Expression
	Consequence Expression
	Alternative Expression
}

func (te *TernaryExpression) expressionNode()       {}
func (te *TernaryExpression) TokenLiteral() string  { return te.Token.Lexeme }
func (te *TernaryExpression) GetToken() token.Token { return te.Token }
func (te *TernaryExpression) String() string {
	return "(" + te.Condition.String() + " ? " + te.Consequence.String() + " : " + te.Alternative.String() + ")"
}

type InstanceofExpression struct {
	Token token.Token
	Left  Expression
	Type  *TypeRef
}

func (ie *InstanceofExpression) expressionNode()       {}
func (ie *InstanceofExpression) TokenLiteral() string  { return ie.Token.Lexeme }
func (ie *InstanceofExpression) GetToken() token.Token { return ie.Token }
func (ie *InstanceofExpression) String() string {
	return "(" + ie.Left.String() + " instanceof " + ie.Type.String() + ")"
}

type CastExpression struct {
	Token token.Token
	Type  *TypeRef
	Right Expression
}

func (ce *CastExpression) expressionNode()       {}
func (ce *CastExpression) TokenLiteral() string  { return ce.Token.Lexeme }
func (ce *CastExpression) GetToken() token.Token { return ce.Token }
func (ce *CastExpression) String() string {
	return "((" + ce.Type.String() + ")" + ce.Right.String() + ")"
}

// NewExpression constructs a host object. Body is set for anonymous class bodies.
type NewExpression struct {
	Token     token.Token
	Type      *TypeRef
	Arguments []Expression
	Body      *BlockStatement
}

func (ne *NewExpression) expressionNode()       {}
func (ne *NewExpression) TokenLiteral() string  { return ne.Token.Lexeme }
func (ne *NewExpression) GetToken() token.Token { return ne.Token }
func (ne *NewExpression) String() string {
	s := "new " + ne.Type.String() + "(" + joinExpressions(ne.Arguments) + ")"
	if ne.Body != nil {
		s += " " + ne.Body.String()
	}
	return s
}

// ArrayAllocation is `new T[n][m][]` or `new T[]{...}`.
// Type carries the element type without dimensions.
type ArrayAllocation struct {
	Token     token.Token
	Type      *TypeRef
	Dims      []Expression // sized dimensions
	ExtraDims int          // trailing unsized dimensions
	Init      *ArrayInitializer
}

func (aa *ArrayAllocation) expressionNode()       {}
func (aa *ArrayAllocation) TokenLiteral() string  { return aa.Token.Lexeme }
func (aa *ArrayAllocation) GetToken() token.Token { return aa.Token }
func (aa *ArrayAllocation) String() string {
	var out strings.Builder
	out.WriteString("new " + aa.Type.String())
	for _, d := range aa.Dims {
		out.WriteString("[" + d.String() + "]")
	}
	out.WriteString(strings.Repeat("[]", aa.ExtraDims))
	if aa.Init != nil {
		out.WriteString(aa.Init.String())
	}
	return out.String()
}

// TotalDims is the array rank of the allocation.
func (aa *ArrayAllocation) TotalDims() int { return len(aa.Dims) + aa.ExtraDims }

// ArrayInitializer is `{a, b, {c}}`.
type ArrayInitializer struct {
	Token    token.Token
	Elements []Expression
}

func (ai *ArrayInitializer) expressionNode()       {}
func (ai *ArrayInitializer) TokenLiteral() string  { return ai.Token.Lexeme }
func (ai *ArrayInitializer) GetToken() token.Token { return ai.Token }
func (ai *ArrayInitializer) String() string        { return "{" + joinExpressions(ai.Elements) + "}" }

func joinExpressions(exprs []Expression) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
