package ast

import (
	"strings"

	"github.com/beanshell/beanshell-sub002/internal/token"
)

// ExpressionStatement wraps an expression evaluated for its effect.
type ExpressionStatement struct {
	Token      token.Token
	Expression Expression
}

func (es *ExpressionStatement) statementNode()        {}
func (es *ExpressionStatement) TokenLiteral() string  { return es.Token.Lexeme }
func (es *ExpressionStatement) GetToken() token.Token { return es.Token }
func (es *ExpressionStatement) String() string        { return es.Expression.String() + ";" }

// EmptyStatement is a lone ';'.
type EmptyStatement struct {
	Token token.Token
}

func (es *EmptyStatement) statementNode()        {}
func (es *EmptyStatement) TokenLiteral() string  { return es.Token.Lexeme }
func (es *EmptyStatement) GetToken() token.Token { return es.Token }
func (es *EmptyStatement) String() string        { return ";" }

// VariableDeclarator is one `name[] = value` entry of a declaration.
type VariableDeclarator struct {
	Token token.Token
	Name  string
	Dims  int        // extra dimensions written after the name
	Value Expression // nil when there is no initializer
}

// VariableDeclaration declares one or more typed variables.
// int a = 1, b[] = {2};
type VariableDeclaration struct {
	Token       token.Token
	Modifiers   Modifiers
	Type        *TypeRef
	Declarators []*VariableDeclarator
}

func (vd *VariableDeclaration) statementNode()        {}
func (vd *VariableDeclaration) TokenLiteral() string  { return vd.Token.Lexeme }
func (vd *VariableDeclaration) GetToken() token.Token { return vd.Token }
func (vd *VariableDeclaration) String() string {
	parts := make([]string, 0, len(vd.Declarators))
	for _, d := range vd.Declarators {
		s := d.Name + strings.Repeat("[]", d.Dims)
		if d.Value != nil {
			s += " = " + d.Value.String()
		}
		parts = append(parts, s)
	}
	return vd.Modifiers.String() + vd.Type.String() + " " + strings.Join(parts, ", ") + ";"
}

// MethodDeclaration declares a scripted method. A nil ReturnType means loosely typed.
type MethodDeclaration struct {
	Token      token.Token
	Modifiers  Modifiers
	ReturnType *TypeRef
	Name       string
	Params     []*Parameter
	Throws     []string
	Body       *BlockStatement
}

func (md *MethodDeclaration) statementNode()        {}
func (md *MethodDeclaration) TokenLiteral() string  { return md.Token.Lexeme }
func (md *MethodDeclaration) GetToken() token.Token { return md.Token }
func (md *MethodDeclaration) String() string {
	params := make([]string, len(md.Params))
	for i, p := range md.Params {
		params[i] = p.String()
	}
	ret := ""
	if md.ReturnType != nil {
		ret = md.ReturnType.String() + " "
	}
	return md.Modifiers.String() + ret + md.Name + "(" + strings.Join(params, ", ") + ") " + md.Body.String()
}

// ClassDeclaration declares a scripted class or interface.
type ClassDeclaration struct {
	Token       token.Token
	Modifiers   Modifiers
	Name        string
	IsInterface bool
	Extends     string
	Implements  []string
	Body        *BlockStatement
}

func (cd *ClassDeclaration) statementNode()        {}
func (cd *ClassDeclaration) TokenLiteral() string  { return cd.Token.Lexeme }
func (cd *ClassDeclaration) GetToken() token.Token { return cd.Token }
func (cd *ClassDeclaration) String() string {
	kind := "class "
	if cd.IsInterface {
		kind = "interface "
	}
	return cd.Modifiers.String() + kind + cd.Name + " " + cd.Body.String()
}

// ImportStatement is `import a.b.C;`, `import a.b.*;`, `import static a.b.C.m;` or `import *;`.
type ImportStatement struct {
	Token    token.Token
	Name     string
	Static   bool
	Wildcard bool
	Super    bool
}

func (is *ImportStatement) statementNode()        {}
func (is *ImportStatement) TokenLiteral() string  { return is.Token.Lexeme }
func (is *ImportStatement) GetToken() token.Token { return is.Token }
func (is *ImportStatement) String() string {
	if is.Super {
		return "import *;"
	}
	s := "import "
	if is.Static {
		s += "static "
	}
	s += is.Name
	if is.Wildcard {
		s += ".*"
	}
	return s + ";"
}

type IfStatement struct {
	Token       token.Token
	Condition   Expression
	Consequence Statement
	Alternative Statement // nil when there is no else branch
}

func (is *IfStatement) statementNode()        {}
func (is *IfStatement) TokenLiteral() string  { return is.Token.Lexeme }
func (is *IfStatement) GetToken() token.Token { return is.Token }
func (is *IfStatement) String() string {
	s := "if (" + is.Condition.String() + ") " + is.Consequence.String()
	if is.Alternative != nil {
		s += " else " + is.Alternative.String()
	}
	return s
}

type WhileStatement struct {
	Token     token.Token
	Condition Expression
	Body      Statement
}

func (ws *WhileStatement) statementNode()        {}
func (ws *WhileStatement) TokenLiteral() string  { return ws.Token.Lexeme }
func (ws *WhileStatement) GetToken() token.Token { return ws.Token }
func (ws *WhileStatement) String() string {
	return "while (" + ws.Condition.String() + ") " + ws.Body.String()
}

type DoWhileStatement struct {
	Token     token.Token
	Body      Statement
	Condition Expression
}

func (ds *DoWhileStatement) statementNode()        {}
func (ds *DoWhileStatement) TokenLiteral() string  { return ds.Token.Lexeme }
func (ds *DoWhileStatement) GetToken() token.Token { return ds.Token }
func (ds *DoWhileStatement) String() string {
	return "do " + ds.Body.String() + " while (" + ds.Condition.String() + ");"
}

// ForStatement is the classic three-clause loop. Any clause may be empty.
type ForStatement struct {
	Token     token.Token
	Init      []Statement
	Condition Expression
	Update    []Expression
	Body      Statement
}

func (fs *ForStatement) statementNode()        {}
func (fs *ForStatement) TokenLiteral() string  { return fs.Token.Lexeme }
func (fs *ForStatement) GetToken() token.Token { return fs.Token }
func (fs *ForStatement) String() string {
	init := make([]string, len(fs.Init))
	for i, s := range fs.Init {
		init[i] = strings.TrimSuffix(s.String(), ";")
	}
	cond := ""
	if fs.Condition != nil {
		cond = fs.Condition.String()
	}
	update := make([]string, len(fs.Update))
	for i, e := range fs.Update {
		update[i] = e.String()
	}
	return "for (" + strings.Join(init, ", ") + "; " + cond + "; " + strings.Join(update, ", ") + ") " + fs.Body.String()
}

// EnhancedForStatement is `for (Type name : iterable)`. VarType is nil for `for (name : xs)`.
type EnhancedForStatement struct {
	Token    token.Token
	VarType  *TypeRef
	VarName  string
	Final    bool
	Iterable Expression
	Body     Statement
}

func (fs *EnhancedForStatement) statementNode()        {}
func (fs *EnhancedForStatement) TokenLiteral() string  { return fs.Token.Lexeme }
func (fs *EnhancedForStatement) GetToken() token.Token { return fs.Token }
func (fs *EnhancedForStatement) String() string {
	v := fs.VarName
	if fs.VarType != nil {
		v = fs.VarType.String() + " " + v
	}
	return "for (" + v + " : " + fs.Iterable.String() + ") " + fs.Body.String()
}

// SwitchCase is one `case a:` / `default:` group. Body runs until a break.
type SwitchCase struct {
	Token     token.Token
	Values    []Expression
	IsDefault bool
	Body      []Statement
}

type SwitchStatement struct {
	Token token.Token
	Value Expression
	Cases []*SwitchCase
}

func (ss *SwitchStatement) statementNode()        {}
func (ss *SwitchStatement) TokenLiteral() string  { return ss.Token.Lexeme }
func (ss *SwitchStatement) GetToken() token.Token { return ss.Token }
func (ss *SwitchStatement) String() string {
	var out strings.Builder
	out.WriteString("switch (" + ss.Value.String() + ") { ")
	for _, c := range ss.Cases {
		if c.IsDefault {
			out.WriteString("default: ")
		}
		for _, v := range c.Values {
			out.WriteString("case " + v.String() + ": ")
		}
		for _, s := range c.Body {
			out.WriteString(s.String() + " ")
		}
	}
	out.WriteString("}")
	return out.String()
}

// LabeledStatement is `label: statement`.
type LabeledStatement struct {
	Token token.Token
	Label string
	Body  Statement
}

func (ls *LabeledStatement) statementNode()        {}
func (ls *LabeledStatement) TokenLiteral() string  { return ls.Token.Lexeme }
func (ls *LabeledStatement) GetToken() token.Token { return ls.Token }
func (ls *LabeledStatement) String() string        { return ls.Label + ": " + ls.Body.String() }

type BreakStatement struct {
	Token token.Token
	Label string
}

func (bs *BreakStatement) statementNode()        {}
func (bs *BreakStatement) TokenLiteral() string  { return bs.Token.Lexeme }
func (bs *BreakStatement) GetToken() token.Token { return bs.Token }
func (bs *BreakStatement) String() string        { return strings.TrimSpace("break "+bs.Label) + ";" }

type ContinueStatement struct {
	Token token.Token
	Label string
}

func (cs *ContinueStatement) statementNode()        {}
func (cs *ContinueStatement) TokenLiteral() string  { return cs.Token.Lexeme }
func (cs *ContinueStatement) GetToken() token.Token { return cs.Token }
func (cs *ContinueStatement) String() string        { return strings.TrimSpace("continue "+cs.Label) + ";" }

type ReturnStatement struct {
	Token token.Token
	Value Expression // nil for a bare return
}

func (rs *ReturnStatement) statementNode()        {}
func (rs *ReturnStatement) TokenLiteral() string  { return rs.Token.Lexeme }
func (rs *ReturnStatement) GetToken() token.Token { return rs.Token }
func (rs *ReturnStatement) String() string {
	if rs.Value == nil {
		return "return;"
	}
	return "return " + rs.Value.String() + ";"
}

type ThrowStatement struct {
	Token token.Token
	Value Expression
}

func (ts *ThrowStatement) statementNode()        {}
func (ts *ThrowStatement) TokenLiteral() string  { return ts.Token.Lexeme }
func (ts *ThrowStatement) GetToken() token.Token { return ts.Token }
func (ts *ThrowStatement) String() string        { return "throw " + ts.Value.String() + ";" }

// CatchClause binds the thrown value to Param. An untyped Param catches everything.
type CatchClause struct {
	Token token.Token
	Param *Parameter
	Body  *BlockStatement
}

type TryStatement struct {
	Token   token.Token
	Block   *BlockStatement
	Catches []*CatchClause
	Finally *BlockStatement
}

func (ts *TryStatement) statementNode()        {}
func (ts *TryStatement) TokenLiteral() string  { return ts.Token.Lexeme }
func (ts *TryStatement) GetToken() token.Token { return ts.Token }
func (ts *TryStatement) String() string {
	s := "try " + ts.Block.String()
	for _, c := range ts.Catches {
		s += " catch (" + c.Param.String() + ") " + c.Body.String()
	}
	if ts.Finally != nil {
		s += " finally " + ts.Finally.String()
	}
	return s
}

// SynchronizedStatement is `synchronized (lock) { ... }`.
type SynchronizedStatement struct {
	Token token.Token
	Lock  Expression
	Body  *BlockStatement
}

func (ss *SynchronizedStatement) statementNode()        {}
func (ss *SynchronizedStatement) TokenLiteral() string  { return ss.Token.Lexeme }
func (ss *SynchronizedStatement) GetToken() token.Token { return ss.Token }
func (ss *SynchronizedStatement) String() string {
	return "synchronized (" + ss.Lock.String() + ") " + ss.Body.String()
}
