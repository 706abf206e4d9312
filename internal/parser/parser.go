package parser

import (
	"fmt"
	"strings"

	"github.com/beanshell/beanshell-sub002/internal/ast"
	"github.com/beanshell/beanshell-sub002/internal/config"
	"github.com/beanshell/beanshell-sub002/internal/lexer"
	"github.com/beanshell/beanshell-sub002/internal/token"
)

const (
	_ int = iota
	LOWEST
	ASSIGNMENT  // = += -= ...
	TERNARY     // ?:
	LOGICAL_OR  // ||
	LOGICAL_AND // &&
	BIT_OR      // |
	BIT_XOR     // ^
	BIT_AND     // &
	EQUALS      // == !=
	RELATIONAL  // < > <= >= instanceof
	SHIFT       // << >> >>>
	SUM         // + -
	PRODUCT     // * / %
	PREFIX      // -x !x ~x ++x (T)x
	POSTFIX     // x++ x--
	MEMBER      // a.b a[i] a.b()
)

var precedences = map[token.TokenType]int{
	token.ASSIGN:          ASSIGNMENT,
	token.PLUS_ASSIGN:     ASSIGNMENT,
	token.MINUS_ASSIGN:    ASSIGNMENT,
	token.ASTERISK_ASSIGN: ASSIGNMENT,
	token.SLASH_ASSIGN:    ASSIGNMENT,
	token.PERCENT_ASSIGN:  ASSIGNMENT,
	token.AND_ASSIGN:      ASSIGNMENT,
	token.OR_ASSIGN:       ASSIGNMENT,
	token.XOR_ASSIGN:      ASSIGNMENT,
	token.LSHIFT_ASSIGN:   ASSIGNMENT,
	token.RSHIFT_ASSIGN:   ASSIGNMENT,
	token.URSHIFT_ASSIGN:  ASSIGNMENT,
	token.QUESTION:        TERNARY,
	token.OR:              LOGICAL_OR,
	token.AND:             LOGICAL_AND,
	token.BIT_OR:          BIT_OR,
	token.BIT_XOR:         BIT_XOR,
	token.BIT_AND:         BIT_AND,
	token.EQ:              EQUALS,
	token.NOT_EQ:          EQUALS,
	token.LT:              RELATIONAL,
	token.GT:              RELATIONAL,
	token.LTE:             RELATIONAL,
	token.GTE:             RELATIONAL,
	token.INSTANCEOF:      RELATIONAL,
	token.LSHIFT:          SHIFT,
	token.RSHIFT:          SHIFT,
	token.URSHIFT:         SHIFT,
	token.PLUS:            SUM,
	token.MINUS:           SUM,
	token.ASTERISK:        PRODUCT,
	token.SLASH:           PRODUCT,
	token.PERCENT:         PRODUCT,
	token.INCR:            POSTFIX,
	token.DECR:            POSTFIX,
	token.DOT:             MEMBER,
	token.LBRACKET:        MEMBER,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// Error is a syntax error with its source position.
type Error struct {
	File    string
	Line    int
	Column  int
	Message string
}

func (e *Error) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

// ErrorList collects every syntax error of one parse.
type ErrorList []*Error

func (l ErrorList) Error() string {
	msgs := make([]string, len(l))
	for i, e := range l {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

type Parser struct {
	tokens []token.Token
	pos    int
	file   string
	errors ErrorList
	depth  int

	curToken  token.Token
	peekToken token.Token

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{tokens: l.Tokens()}

	p.prefixParseFns = make(map[token.TokenType]prefixParseFn)
	p.registerPrefix(token.IDENT, p.parseName)
	for _, t := range []token.TokenType{token.INT, token.LONG, token.FLOAT, token.DOUBLE,
		token.CHAR, token.STRING, token.TRUE, token.FALSE, token.NULL} {
		p.registerPrefix(t, p.parseLiteral)
	}
	for _, t := range []token.TokenType{token.MINUS, token.PLUS, token.BANG, token.TILDE, token.INCR, token.DECR} {
		p.registerPrefix(t, p.parsePrefixExpression)
	}
	p.registerPrefix(token.LPAREN, p.parseParenOrCast)
	p.registerPrefix(token.NEW, p.parseAllocation)
	for _, t := range []token.TokenType{token.BOOLEAN_KW, token.CHAR_KW, token.BYTE_KW, token.SHORT_KW,
		token.INT_KW, token.LONG_KW, token.FLOAT_KW, token.DOUBLE_KW, token.VOID} {
		p.registerPrefix(t, p.parsePrimitiveClassLiteral)
	}

	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	for t, prec := range precedences {
		switch prec {
		case ASSIGNMENT:
			p.registerInfix(t, p.parseAssignExpression)
		case POSTFIX:
			p.registerInfix(t, p.parsePostfixExpression)
		default:
			p.registerInfix(t, p.parseInfixExpression)
		}
	}
	p.registerInfix(token.QUESTION, p.parseTernaryExpression)
	p.registerInfix(token.INSTANCEOF, p.parseInstanceofExpression)
	p.registerInfix(token.DOT, p.parseMemberExpression)
	p.registerInfix(token.LBRACKET, p.parseIndexExpression)

	p.pos = -1
	p.nextToken()
	return p
}

// ParseString parses a whole script. The returned error is an ErrorList.
func ParseString(file, src string) (*ast.Program, error) {
	p := New(lexer.New(src))
	p.file = file
	prog := p.ParseProgram()
	if len(p.errors) > 0 {
		return nil, p.errors
	}
	return prog, nil
}

func (p *Parser) registerPrefix(t token.TokenType, fn prefixParseFn) { p.prefixParseFns[t] = fn }
func (p *Parser) registerInfix(t token.TokenType, fn infixParseFn)   { p.infixParseFns[t] = fn }

// Errors returns the syntax errors collected so far.
func (p *Parser) Errors() ErrorList { return p.errors }

func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{File: p.file}
	for !p.curTokenIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		} else {
			p.skipToStatementBoundary()
		}
		p.nextToken()
	}
	return program
}

func (p *Parser) nextToken() {
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	p.curToken = p.tokens[p.pos]
	p.peekToken = p.tokenAt(1)
}

// tokenAt returns the token offset positions after the current one.
func (p *Parser) tokenAt(offset int) token.Token {
	i := p.pos + offset
	if i < 0 {
		i = 0
	}
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}

func (p *Parser) curTokenIs(t token.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t token.TokenType) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) addError(tok token.Token, format string, args ...interface{}) {
	p.errors = append(p.errors, &Error{File: p.file, Line: tok.Line, Column: tok.Column, Message: fmt.Sprintf(format, args...)})
}

func (p *Parser) peekError(t token.TokenType) {
	p.addError(p.peekToken, "expected %s, got %s", describe(t), describeToken(p.peekToken))
}

func (p *Parser) noPrefixParseFnError(tok token.Token) {
	if tok.Type == token.ILLEGAL {
		p.addError(tok, "%v", tok.Literal)
		return
	}
	p.addError(tok, "unexpected %s", describeToken(tok))
}

func describe(t token.TokenType) string {
	s := string(t)
	if strings.HasSuffix(s, "_KW") {
		return strings.ToLower(strings.TrimSuffix(s, "_KW"))
	}
	if strings.ToUpper(s) == s && len(s) > 1 && s[0] >= 'A' && s[0] <= 'Z' {
		return strings.ToLower(s)
	}
	return "'" + s + "'"
}

func describeToken(tok token.Token) string {
	if tok.Type == token.EOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", tok.Lexeme)
}

// skipToStatementBoundary advances past the current statement after an error.
func (p *Parser) skipToStatementBoundary() {
	for !p.curTokenIs(token.SEMICOLON) && !p.curTokenIs(token.RBRACE) && !p.peekTokenIs(token.EOF) && !p.curTokenIs(token.EOF) {
		p.nextToken()
	}
}

func (p *Parser) enter() bool {
	p.depth++
	if p.depth > config.MaxParseDepth {
		p.addError(p.curToken, "expression too complex: recursion depth limit exceeded")
		return false
	}
	return true
}

func (p *Parser) leave() { p.depth-- }
