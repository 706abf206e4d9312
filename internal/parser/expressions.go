package parser

import (
	"github.com/beanshell/beanshell-sub002/internal/ast"
	"github.com/beanshell/beanshell-sub002/internal/token"
)

func (p *Parser) parseExpression(precedence int) ast.Expression {
	if !p.enter() {
		p.leave()
		return nil
	}
	defer p.leave()

	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}
	leftExp := prefix()
	if leftExp == nil {
		return nil
	}

	for precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken()
		leftExp = infix(leftExp)
		if leftExp == nil {
			return nil
		}
	}
	return leftExp
}

func (p *Parser) parseLiteral() ast.Expression {
	lit := &ast.Literal{Token: p.curToken}
	switch p.curToken.Type {
	case token.INT:
		v := p.curToken.Literal.(int64)
		if v == 1<<31 {
			p.addError(p.curToken, "integer number too large: %s", p.curToken.Lexeme)
			return nil
		}
		lit.Value = int32(v)
	case token.LONG:
		lit.Value = p.curToken.Literal.(int64)
	case token.FLOAT:
		lit.Value = float32(p.curToken.Literal.(float64))
	case token.DOUBLE:
		lit.Value = p.curToken.Literal.(float64)
	case token.CHAR:
		lit.Value = p.curToken.Literal.(uint16)
	case token.STRING:
		lit.Value = p.curToken.Literal.(string)
	case token.TRUE:
		lit.Value = true
	case token.FALSE:
		lit.Value = false
	case token.NULL:
		lit.Value = nil
	}
	return lit
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expression := &ast.PrefixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Lexeme,
	}

	// fold negative integer literals so that the minimum values are representable
	if expression.Operator == "-" && (p.peekTokenIs(token.INT) || p.peekTokenIs(token.LONG)) {
		p.nextToken()
		tok := p.curToken
		tok.Lexeme = "-" + tok.Lexeme
		tok.Line, tok.Column = expression.Token.Line, expression.Token.Column
		v := -p.curToken.Literal.(int64)
		if p.curTokenIs(token.INT) {
			return &ast.Literal{Token: tok, Value: int32(v)}
		}
		return &ast.Literal{Token: tok, Value: v}
	}

	p.nextToken()
	expression.Right = p.parseExpression(PREFIX)
	if expression.Right == nil {
		return nil
	}
	if (expression.Operator == "++" || expression.Operator == "--") && !isAssignable(expression.Right) {
		p.addError(expression.Token, "invalid operand for %s", expression.Operator)
		return nil
	}
	return expression
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expression := &ast.InfixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Lexeme,
		Left:     left,
	}
	precedence := precedences[p.curToken.Type]
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}
	return expression
}

func (p *Parser) parsePostfixExpression(left ast.Expression) ast.Expression {
	if !isAssignable(left) {
		p.addError(p.curToken, "invalid operand for %s", p.curToken.Lexeme)
		return nil
	}
	return &ast.PostfixExpression{Token: p.curToken, Operator: p.curToken.Lexeme, Left: left}
}

func (p *Parser) parseAssignExpression(left ast.Expression) ast.Expression {
	if !isAssignable(left) {
		p.addError(p.curToken, "invalid assignment target %s", left.String())
		return nil
	}
	expression := &ast.AssignExpression{Token: p.curToken, Target: left, Operator: p.curToken.Lexeme}
	p.nextToken()
	// right associative
	expression.Value = p.parseExpression(LOWEST)
	if expression.Value == nil {
		return nil
	}
	return expression
}

func isAssignable(e ast.Expression) bool {
	switch e.(type) {
	case *ast.AmbiguousName, *ast.FieldAccess, *ast.IndexExpression:
		return true
	}
	return false
}

func (p *Parser) parseTernaryExpression(cond ast.Expression) ast.Expression {
	expression := &ast.TernaryExpression{Token: p.curToken, Condition: cond}
	p.nextToken()
	if expression.Consequence = p.parseExpression(LOWEST); expression.Consequence == nil {
		return nil
	}
	if !p.expectPeek(token.COLON) {
		return nil
	}
	p.nextToken()
	if expression.Alternative = p.parseExpression(ASSIGNMENT); expression.Alternative == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseInstanceofExpression(left ast.Expression) ast.Expression {
	expression := &ast.InstanceofExpression{Token: p.curToken, Left: left}
	p.nextToken()
	if expression.Type = p.parseType(); expression.Type == nil {
		return nil
	}
	return expression
}

// parseMemberExpression handles `.name` and `.name(args)` after an arbitrary primary.
func (p *Parser) parseMemberExpression(left ast.Expression) ast.Expression {
	dot := p.curToken
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := p.curToken.Lexeme
	if p.peekTokenIs(token.LPAREN) {
		p.nextToken()
		args, ok := p.parseArguments()
		if !ok {
			return nil
		}
		return &ast.MethodCall{Token: dot, Object: left, Method: name, Arguments: args}
	}
	return &ast.FieldAccess{Token: dot, Object: left, Field: name}
}

func (p *Parser) parseIndexExpression(left ast.Expression) ast.Expression {
	expression := &ast.IndexExpression{Token: p.curToken, Left: left}
	p.nextToken()
	if expression.Index = p.parseExpression(LOWEST); expression.Index == nil {
		return nil
	}
	if !p.expectPeek(token.RBRACKET) {
		return nil
	}
	return expression
}

// parseName consumes a dotted identifier and classifies it as an ambiguous
// name, a method invocation or a class literal.
func (p *Parser) parseName() ast.Expression {
	start := p.curToken
	name := p.curToken.Lexeme
	for p.peekTokenIs(token.DOT) && p.tokenAt(2).Type == token.IDENT {
		p.nextToken()
		p.nextToken()
		name += "." + p.curToken.Lexeme
	}

	switch {
	case p.peekTokenIs(token.LPAREN):
		p.nextToken()
		args, ok := p.parseArguments()
		if !ok {
			return nil
		}
		return &ast.MethodInvocation{Token: start, Name: name, Arguments: args}
	case p.peekTokenIs(token.DOT) && p.tokenAt(2).Type == token.CLASS:
		p.nextToken()
		p.nextToken()
		return &ast.ClassLiteral{Token: start, Type: &ast.TypeRef{Token: start, Name: name}}
	case p.peekTokenIs(token.LBRACKET) && p.tokenAt(2).Type == token.RBRACKET:
		dims := p.parseDims()
		if !p.expectPeek(token.DOT) || !p.expectPeek(token.CLASS) {
			return nil
		}
		return &ast.ClassLiteral{Token: start, Type: &ast.TypeRef{Token: start, Name: name, Dims: dims}}
	}
	return &ast.AmbiguousName{Token: start, Name: name}
}

// parsePrimitiveClassLiteral handles `int.class`, `byte[].class` and `void.class`.
func (p *Parser) parsePrimitiveClassLiteral() ast.Expression {
	start := p.curToken
	typ := p.parseType()
	if typ == nil {
		return nil
	}
	if !p.peekTokenIs(token.DOT) || p.tokenAt(2).Type != token.CLASS {
		p.addError(start, "unexpected %s", describeToken(start))
		return nil
	}
	p.nextToken()
	p.nextToken()
	return &ast.ClassLiteral{Token: start, Type: typ}
}

// parseArguments parses `(a, b)`; the current token is '('.
func (p *Parser) parseArguments() ([]ast.Expression, bool) {
	args := []ast.Expression{}
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return args, true
	}
	p.nextToken()
	list, ok := p.parseExpressionList()
	if !ok || !p.expectPeek(token.RPAREN) {
		return nil, false
	}
	return list, true
}

// parseParenOrCast disambiguates `(Type) expr` from a parenthesized expression.
func (p *Parser) parseParenOrCast() ast.Expression {
	start := p.curToken
	if end := p.scanType(1); end > 1 && p.tokenAt(end).Type == token.RPAREN {
		primitive := token.IsPrimitiveType(p.tokenAt(1).Type)
		array := p.tokenAt(end-1).Type == token.RBRACKET
		if primitive || array || canStartCastOperand(p.tokenAt(end+1).Type) {
			p.nextToken()
			cast := &ast.CastExpression{Token: start}
			if cast.Type = p.parseType(); cast.Type == nil {
				return nil
			}
			if !p.expectPeek(token.RPAREN) {
				return nil
			}
			p.nextToken()
			if cast.Right = p.parseExpression(PREFIX); cast.Right == nil {
				return nil
			}
			return cast
		}
	}

	p.nextToken()
	exp := p.parseExpression(LOWEST)
	if exp == nil || !p.expectPeek(token.RPAREN) {
		return nil
	}
	return exp
}

func canStartCastOperand(t token.TokenType) bool {
	switch t {
	case token.IDENT, token.INT, token.LONG, token.FLOAT, token.DOUBLE, token.CHAR, token.STRING,
		token.TRUE, token.FALSE, token.NULL, token.LPAREN, token.BANG, token.TILDE, token.NEW:
		return true
	}
	return false
}

// parseAllocation parses `new T(args) [body]`, `new T[n][]` and `new T[]{...}`.
func (p *Parser) parseAllocation() ast.Expression {
	newTok := p.curToken
	p.nextToken()
	typ := &ast.TypeRef{Token: p.curToken}
	if name, ok := primitiveNames[p.curToken.Type]; ok && p.curToken.Type != token.VOID {
		typ.Name = name
	} else if p.curTokenIs(token.IDENT) {
		typ.Name = p.curToken.Lexeme
		for p.peekTokenIs(token.DOT) && p.tokenAt(2).Type == token.IDENT {
			p.nextToken()
			p.nextToken()
			typ.Name += "." + p.curToken.Lexeme
		}
		if p.peekTokenIs(token.LT) {
			end, ok := p.scanTypeArguments(1)
			if !ok {
				p.addError(p.peekToken, "malformed type arguments")
				return nil
			}
			for i := 1; i < end; i++ {
				p.nextToken()
			}
		}
	} else {
		p.addError(p.curToken, "expected a type after new, got %s", describeToken(p.curToken))
		return nil
	}

	switch {
	case p.peekTokenIs(token.LPAREN) && !typ.IsPrimitive():
		p.nextToken()
		args, ok := p.parseArguments()
		if !ok {
			return nil
		}
		ne := &ast.NewExpression{Token: newTok, Type: typ, Arguments: args}
		if p.peekTokenIs(token.LBRACE) {
			p.nextToken()
			ne.Body = p.parseBlockStatement()
		}
		return ne
	case p.peekTokenIs(token.LBRACKET):
		return p.parseArrayAllocation(newTok, typ)
	}
	p.addError(p.peekToken, "expected '(' or '[' after new %s", typ.Name)
	return nil
}

func (p *Parser) parseArrayAllocation(newTok token.Token, typ *ast.TypeRef) ast.Expression {
	aa := &ast.ArrayAllocation{Token: newTok, Type: typ}
	for p.peekTokenIs(token.LBRACKET) {
		p.nextToken()
		if p.peekTokenIs(token.RBRACKET) {
			p.nextToken()
			aa.ExtraDims++
			continue
		}
		if aa.ExtraDims > 0 {
			p.addError(p.peekToken, "array dimension missing")
			return nil
		}
		p.nextToken()
		dim := p.parseExpression(LOWEST)
		if dim == nil || !p.expectPeek(token.RBRACKET) {
			return nil
		}
		aa.Dims = append(aa.Dims, dim)
	}
	if len(aa.Dims) == 0 {
		if !p.expectPeek(token.LBRACE) {
			return nil
		}
		if aa.Init = p.parseArrayInitializer(); aa.Init == nil {
			return nil
		}
	}
	return aa
}

// parseArrayInitializer parses `{a, {b}, c,}`; the current token is '{'.
func (p *Parser) parseArrayInitializer() *ast.ArrayInitializer {
	ai := &ast.ArrayInitializer{Token: p.curToken}
	p.nextToken()
	for !p.curTokenIs(token.RBRACE) {
		var elem ast.Expression
		if p.curTokenIs(token.LBRACE) {
			if init := p.parseArrayInitializer(); init != nil {
				elem = init
			}
		} else {
			elem = p.parseExpression(ASSIGNMENT)
		}
		if elem == nil {
			return nil
		}
		ai.Elements = append(ai.Elements, elem)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		if !p.expectPeek(token.RBRACE) {
			return nil
		}
	}
	return ai
}
