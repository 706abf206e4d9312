package parser

import (
	"github.com/beanshell/beanshell-sub002/internal/ast"
	"github.com/beanshell/beanshell-sub002/internal/token"
)

// parseStatement parses one statement starting at the current token and leaves
// the current token on the statement's last token.
func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.LBRACE:
		return p.parseBlockStatement()
	case token.SEMICOLON:
		return &ast.EmptyStatement{Token: p.curToken}
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.DO:
		return p.parseDoWhileStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.SWITCH:
		return p.parseSwitchStatement()
	case token.BREAK:
		return p.parseBreakStatement()
	case token.CONTINUE:
		return p.parseContinueStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.THROW:
		return p.parseThrowStatement()
	case token.TRY:
		return p.parseTryStatement()
	case token.IMPORT:
		return p.parseImportStatement()
	case token.PACKAGE:
		// package declarations are accepted and ignored
		for !p.curTokenIs(token.SEMICOLON) && !p.curTokenIs(token.EOF) {
			p.nextToken()
		}
		return &ast.EmptyStatement{Token: p.curToken}
	case token.SYNCHRONIZED:
		if p.peekTokenIs(token.LPAREN) {
			return p.parseSynchronizedStatement()
		}
		return p.parseDeclaration()
	case token.MODIFIER, token.CLASS, token.INTERFACE:
		return p.parseDeclaration()
	case token.IDENT:
		if p.peekTokenIs(token.COLON) {
			return p.parseLabeledStatement()
		}
		if p.isUntypedMethodDeclaration(0) {
			return p.parseMethodDeclaration(p.curToken, nil, nil)
		}
	}

	if _, ok := p.declarationTypeEnd(); ok {
		return p.parseDeclaration()
	}
	return p.parseExpressionStatement()
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.curToken}
	p.nextToken()
	for !p.curTokenIs(token.RBRACE) {
		if p.curTokenIs(token.EOF) {
			p.addError(p.curToken, "expected '}' to close block opened at %d:%d", block.Token.Line, block.Token.Column)
			return block
		}
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		} else {
			p.skipToStatementBoundary()
			if p.curTokenIs(token.RBRACE) {
				break
			}
		}
		p.nextToken()
	}
	return block
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	stmt := &ast.ExpressionStatement{Token: p.curToken}
	stmt.Expression = p.parseExpression(LOWEST)
	if stmt.Expression == nil {
		return nil
	}
	if !p.endStatement() {
		return nil
	}
	return stmt
}

// endStatement consumes the terminating ';'. A missing ';' before end of input is accepted.
func (p *Parser) endStatement() bool {
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		return true
	}
	if p.peekTokenIs(token.EOF) {
		return true
	}
	p.peekError(token.SEMICOLON)
	return false
}

// parseModifiers collects modifier keywords and leaves the current token on the
// first token after them.
func (p *Parser) parseModifiers() ast.Modifiers {
	var mods ast.Modifiers
	for p.curTokenIs(token.MODIFIER) || (p.curTokenIs(token.SYNCHRONIZED) && !p.peekTokenIs(token.LPAREN)) {
		mods = append(mods, p.curToken.Lexeme)
		p.nextToken()
	}
	return mods
}

// parseDeclaration parses a class, method or variable declaration.
func (p *Parser) parseDeclaration() ast.Statement {
	start := p.curToken
	mods := p.parseModifiers()

	switch {
	case p.curTokenIs(token.CLASS) || p.curTokenIs(token.INTERFACE):
		return p.parseClassDeclaration(start, mods)
	case p.curTokenIs(token.IDENT) && p.isUntypedMethodDeclaration(0):
		return p.parseMethodDeclaration(start, mods, nil)
	}

	nameAt, ok := p.declarationTypeEnd()
	if !ok {
		p.addError(p.curToken, "expected a declaration, got %s", describeToken(p.curToken))
		return nil
	}
	if p.tokenAt(nameAt+1).Type == token.LPAREN {
		typ := p.parseType()
		p.nextToken()
		return p.parseMethodDeclaration(start, mods, typ)
	}
	typ := p.parseType()
	if typ == nil {
		return nil
	}
	decl := p.parseVariableDeclaration(start, mods, typ)
	if decl == nil || !p.endStatement() {
		return nil
	}
	return decl
}

// parseVariableDeclaration parses declarators after the type; the current
// token is the type's last token. The terminating ';' is left to the caller.
func (p *Parser) parseVariableDeclaration(start token.Token, mods ast.Modifiers, typ *ast.TypeRef) *ast.VariableDeclaration {
	decl := &ast.VariableDeclaration{Token: start, Modifiers: mods, Type: typ}
	for {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		d := &ast.VariableDeclarator{Token: p.curToken, Name: p.curToken.Lexeme}
		d.Dims = p.parseDims()
		if p.peekTokenIs(token.ASSIGN) {
			p.nextToken()
			p.nextToken()
			if p.curTokenIs(token.LBRACE) {
				d.Value = p.parseArrayInitializer()
			} else {
				d.Value = p.parseExpression(LOWEST)
			}
			if d.Value == nil {
				return nil
			}
		}
		decl.Declarators = append(decl.Declarators, d)
		if !p.peekTokenIs(token.COMMA) {
			return decl
		}
		p.nextToken()
	}
}

// isUntypedMethodDeclaration reports whether `name(...)` at offset is followed by
// a body or throws clause, making it a loosely typed method declaration.
func (p *Parser) isUntypedMethodDeclaration(offset int) bool {
	if p.tokenAt(offset).Type != token.IDENT || p.tokenAt(offset+1).Type != token.LPAREN {
		return false
	}
	depth := 0
	for i := offset + 1; ; i++ {
		switch p.tokenAt(i).Type {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
			if depth == 0 {
				next := p.tokenAt(i + 1).Type
				return next == token.LBRACE || next == token.THROWS
			}
		case token.EOF, token.SEMICOLON, token.LBRACE, token.RBRACE:
			return false
		}
	}
}

// parseMethodDeclaration parses from the method name to the end of its body.
func (p *Parser) parseMethodDeclaration(start token.Token, mods ast.Modifiers, ret *ast.TypeRef) ast.Statement {
	md := &ast.MethodDeclaration{Token: start, Modifiers: mods, ReturnType: ret, Name: p.curToken.Lexeme}
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	params, ok := p.parseFormalParameters()
	if !ok {
		return nil
	}
	md.Params = params

	if p.peekTokenIs(token.THROWS) {
		p.nextToken()
		for {
			if !p.expectPeek(token.IDENT) {
				return nil
			}
			typ := p.parseType()
			if typ == nil {
				return nil
			}
			md.Throws = append(md.Throws, typ.Name)
			if !p.peekTokenIs(token.COMMA) {
				break
			}
			p.nextToken()
		}
	}

	if p.peekTokenIs(token.SEMICOLON) {
		// abstract or interface method
		p.nextToken()
		md.Body = &ast.BlockStatement{Token: p.curToken}
		return md
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	md.Body = p.parseBlockStatement()
	return md
}

// parseFormalParameters parses `(a, int b, final String c)`; current token is '('.
func (p *Parser) parseFormalParameters() ([]*ast.Parameter, bool) {
	var params []*ast.Parameter
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return params, true
	}
	p.nextToken()
	for {
		param := p.parseParameter()
		if param == nil {
			return nil, false
		}
		params = append(params, param)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
		p.nextToken()
	}
	if !p.expectPeek(token.RPAREN) {
		return nil, false
	}
	return params, true
}

// parseParameter parses `[final] [Type] name[]` at the current token.
func (p *Parser) parseParameter() *ast.Parameter {
	param := &ast.Parameter{Token: p.curToken}
	for p.curTokenIs(token.MODIFIER) {
		if p.curToken.Lexeme == "final" {
			param.Final = true
		}
		p.nextToken()
	}
	if p.curTokenIs(token.IDENT) && (p.peekTokenIs(token.COMMA) || p.peekTokenIs(token.RPAREN)) {
		param.Name = p.curToken.Lexeme
		return param
	}
	param.Type = p.parseType()
	if param.Type == nil {
		return nil
	}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	param.Name = p.curToken.Lexeme
	param.Type.Dims += p.parseDims()
	return param
}

func (p *Parser) parseClassDeclaration(start token.Token, mods ast.Modifiers) ast.Statement {
	cd := &ast.ClassDeclaration{Token: start, Modifiers: mods, IsInterface: p.curTokenIs(token.INTERFACE)}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	cd.Name = p.curToken.Lexeme
	if p.peekTokenIs(token.LT) {
		end, ok := p.scanTypeArguments(1)
		if !ok {
			p.addError(p.peekToken, "malformed type parameters")
			return nil
		}
		for i := 1; i < end; i++ {
			p.nextToken()
		}
	}
	if p.peekTokenIs(token.EXTENDS) {
		p.nextToken()
		p.nextToken()
		typ := p.parseType()
		if typ == nil {
			return nil
		}
		cd.Extends = typ.Name
		// interfaces may extend several interfaces
		for cd.IsInterface && p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			if typ = p.parseType(); typ == nil {
				return nil
			}
			cd.Implements = append(cd.Implements, typ.Name)
		}
	}
	if p.peekTokenIs(token.IMPLEMENTS) {
		p.nextToken()
		for {
			p.nextToken()
			typ := p.parseType()
			if typ == nil {
				return nil
			}
			cd.Implements = append(cd.Implements, typ.Name)
			if !p.peekTokenIs(token.COMMA) {
				break
			}
			p.nextToken()
		}
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	cd.Body = p.parseBlockStatement()
	return cd
}

func (p *Parser) parseImportStatement() ast.Statement {
	is := &ast.ImportStatement{Token: p.curToken}
	if p.peekTokenIs(token.MODIFIER) && p.peekToken.Lexeme == "static" {
		is.Static = true
		p.nextToken()
	}
	if p.peekTokenIs(token.ASTERISK) {
		p.nextToken()
		is.Super = true
		if !p.endStatement() {
			return nil
		}
		return is
	}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	is.Name = p.curToken.Lexeme
	for p.peekTokenIs(token.DOT) {
		p.nextToken()
		if p.peekTokenIs(token.ASTERISK) {
			p.nextToken()
			is.Wildcard = true
			break
		}
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		is.Name += "." + p.curToken.Lexeme
	}
	if !p.endStatement() {
		return nil
	}
	return is
}
