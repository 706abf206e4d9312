package parser

import (
	"github.com/beanshell/beanshell-sub002/internal/ast"
	"github.com/beanshell/beanshell-sub002/internal/token"
)

// parseParenCondition parses `( expr )` following the current keyword.
func (p *Parser) parseParenCondition() ast.Expression {
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	if cond == nil || !p.expectPeek(token.RPAREN) {
		return nil
	}
	return cond
}

// parseBody parses the statement after the current token.
func (p *Parser) parseBody() ast.Statement {
	p.nextToken()
	if p.curTokenIs(token.EOF) {
		p.addError(p.curToken, "expected a statement, got end of input")
		return nil
	}
	return p.parseStatement()
}

func (p *Parser) parseIfStatement() ast.Statement {
	is := &ast.IfStatement{Token: p.curToken}
	if is.Condition = p.parseParenCondition(); is.Condition == nil {
		return nil
	}
	if is.Consequence = p.parseBody(); is.Consequence == nil {
		return nil
	}
	if p.peekTokenIs(token.ELSE) {
		p.nextToken()
		if is.Alternative = p.parseBody(); is.Alternative == nil {
			return nil
		}
	}
	return is
}

func (p *Parser) parseWhileStatement() ast.Statement {
	ws := &ast.WhileStatement{Token: p.curToken}
	if ws.Condition = p.parseParenCondition(); ws.Condition == nil {
		return nil
	}
	if ws.Body = p.parseBody(); ws.Body == nil {
		return nil
	}
	return ws
}

func (p *Parser) parseDoWhileStatement() ast.Statement {
	ds := &ast.DoWhileStatement{Token: p.curToken}
	if ds.Body = p.parseBody(); ds.Body == nil {
		return nil
	}
	if !p.expectPeek(token.WHILE) {
		return nil
	}
	if ds.Condition = p.parseParenCondition(); ds.Condition == nil {
		return nil
	}
	if !p.endStatement() {
		return nil
	}
	return ds
}

func (p *Parser) parseForStatement() ast.Statement {
	forTok := p.curToken
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()

	if stmt, ok := p.tryParseEnhancedFor(forTok); ok {
		return stmt
	}

	fs := &ast.ForStatement{Token: forTok}
	if !p.curTokenIs(token.SEMICOLON) {
		init, ok := p.parseForInit()
		if !ok {
			return nil
		}
		fs.Init = init
		if !p.expectPeek(token.SEMICOLON) {
			return nil
		}
	}
	if !p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		if fs.Condition = p.parseExpression(LOWEST); fs.Condition == nil {
			return nil
		}
	}
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	if !p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		update, ok := p.parseExpressionList()
		if !ok {
			return nil
		}
		fs.Update = update
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	if fs.Body = p.parseBody(); fs.Body == nil {
		return nil
	}
	return fs
}

// tryParseEnhancedFor recognizes `[final] [Type] name : expr` at the current token.
func (p *Parser) tryParseEnhancedFor(forTok token.Token) (ast.Statement, bool) {
	offset := 0
	final := false
	for p.tokenAt(offset).Type == token.MODIFIER {
		if p.tokenAt(offset).Lexeme == "final" {
			final = true
		}
		offset++
	}
	typed := true
	if p.tokenAt(offset).Type == token.IDENT && p.tokenAt(offset+1).Type == token.COLON {
		typed = false
	} else if end := p.scanType(offset); end <= offset || p.tokenAt(end).Type != token.IDENT || p.tokenAt(end+1).Type != token.COLON {
		return nil, false
	}

	fs := &ast.EnhancedForStatement{Token: forTok, Final: final}
	for i := 0; i < offset; i++ {
		p.nextToken()
	}
	if typed {
		if fs.VarType = p.parseType(); fs.VarType == nil {
			return nil, true
		}
		p.nextToken()
	}
	fs.VarName = p.curToken.Lexeme
	p.nextToken() // ':'
	p.nextToken()
	if fs.Iterable = p.parseExpression(LOWEST); fs.Iterable == nil {
		return nil, true
	}
	if !p.expectPeek(token.RPAREN) {
		return nil, true
	}
	if fs.Body = p.parseBody(); fs.Body == nil {
		return nil, true
	}
	return fs, true
}

// parseForInit parses a declaration or a comma separated expression list.
func (p *Parser) parseForInit() ([]ast.Statement, bool) {
	start := p.curToken
	mods := p.parseModifiers()
	if _, ok := p.declarationTypeEnd(); ok {
		typ := p.parseType()
		if typ == nil {
			return nil, false
		}
		decl := p.parseVariableDeclaration(start, mods, typ)
		if decl == nil {
			return nil, false
		}
		return []ast.Statement{decl}, true
	}
	if len(mods) > 0 {
		p.addError(p.curToken, "expected a declaration after modifiers")
		return nil, false
	}
	exprs, ok := p.parseExpressionList()
	if !ok {
		return nil, false
	}
	stmts := make([]ast.Statement, len(exprs))
	for i, e := range exprs {
		stmts[i] = &ast.ExpressionStatement{Token: e.GetToken(), Expression: e}
	}
	return stmts, true
}

func (p *Parser) parseExpressionList() ([]ast.Expression, bool) {
	var list []ast.Expression
	for {
		e := p.parseExpression(LOWEST)
		if e == nil {
			return nil, false
		}
		list = append(list, e)
		if !p.peekTokenIs(token.COMMA) {
			return list, true
		}
		p.nextToken()
		p.nextToken()
	}
}

func (p *Parser) parseSwitchStatement() ast.Statement {
	ss := &ast.SwitchStatement{Token: p.curToken}
	if ss.Value = p.parseParenCondition(); ss.Value == nil {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	p.nextToken()
	var current *ast.SwitchCase
	for !p.curTokenIs(token.RBRACE) {
		switch p.curToken.Type {
		case token.EOF:
			p.addError(p.curToken, "expected '}' to close switch")
			return nil
		case token.CASE, token.DEFAULT:
			label := &ast.SwitchCase{Token: p.curToken}
			if p.curTokenIs(token.DEFAULT) {
				label.IsDefault = true
			} else {
				p.nextToken()
				v := p.parseExpression(TERNARY)
				if v == nil {
					return nil
				}
				label.Values = append(label.Values, v)
			}
			if !p.expectPeek(token.COLON) {
				return nil
			}
			// consecutive labels share one body
			if current != nil && len(current.Body) == 0 {
				current.Values = append(current.Values, label.Values...)
				current.IsDefault = current.IsDefault || label.IsDefault
			} else {
				current = label
				ss.Cases = append(ss.Cases, current)
			}
		default:
			if current == nil {
				p.addError(p.curToken, "expected case or default, got %s", describeToken(p.curToken))
				return nil
			}
			stmt := p.parseStatement()
			if stmt == nil {
				return nil
			}
			current.Body = append(current.Body, stmt)
		}
		p.nextToken()
	}
	return ss
}

func (p *Parser) parseLabeledStatement() ast.Statement {
	ls := &ast.LabeledStatement{Token: p.curToken, Label: p.curToken.Lexeme}
	p.nextToken() // ':'
	if ls.Body = p.parseBody(); ls.Body == nil {
		return nil
	}
	return ls
}

func (p *Parser) parseBreakStatement() ast.Statement {
	bs := &ast.BreakStatement{Token: p.curToken}
	if p.peekTokenIs(token.IDENT) {
		p.nextToken()
		bs.Label = p.curToken.Lexeme
	}
	if !p.endStatement() {
		return nil
	}
	return bs
}

func (p *Parser) parseContinueStatement() ast.Statement {
	cs := &ast.ContinueStatement{Token: p.curToken}
	if p.peekTokenIs(token.IDENT) {
		p.nextToken()
		cs.Label = p.curToken.Lexeme
	}
	if !p.endStatement() {
		return nil
	}
	return cs
}

func (p *Parser) parseReturnStatement() ast.Statement {
	rs := &ast.ReturnStatement{Token: p.curToken}
	if p.peekTokenIs(token.SEMICOLON) || p.peekTokenIs(token.EOF) || p.peekTokenIs(token.RBRACE) {
		if p.peekTokenIs(token.SEMICOLON) {
			p.nextToken()
		}
		return rs
	}
	p.nextToken()
	if rs.Value = p.parseExpression(LOWEST); rs.Value == nil {
		return nil
	}
	if !p.endStatement() {
		return nil
	}
	return rs
}

func (p *Parser) parseThrowStatement() ast.Statement {
	ts := &ast.ThrowStatement{Token: p.curToken}
	p.nextToken()
	if ts.Value = p.parseExpression(LOWEST); ts.Value == nil {
		return nil
	}
	if !p.endStatement() {
		return nil
	}
	return ts
}

func (p *Parser) parseTryStatement() ast.Statement {
	ts := &ast.TryStatement{Token: p.curToken}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	ts.Block = p.parseBlockStatement()
	for p.peekTokenIs(token.CATCH) {
		p.nextToken()
		cc := &ast.CatchClause{Token: p.curToken}
		if !p.expectPeek(token.LPAREN) {
			return nil
		}
		p.nextToken()
		if cc.Param = p.parseParameter(); cc.Param == nil {
			return nil
		}
		if !p.expectPeek(token.RPAREN) || !p.expectPeek(token.LBRACE) {
			return nil
		}
		cc.Body = p.parseBlockStatement()
		ts.Catches = append(ts.Catches, cc)
	}
	if p.peekTokenIs(token.FINALLY) {
		p.nextToken()
		if !p.expectPeek(token.LBRACE) {
			return nil
		}
		ts.Finally = p.parseBlockStatement()
	}
	if len(ts.Catches) == 0 && ts.Finally == nil {
		p.addError(ts.Token, "try without catch or finally")
		return nil
	}
	return ts
}

func (p *Parser) parseSynchronizedStatement() ast.Statement {
	ss := &ast.SynchronizedStatement{Token: p.curToken}
	if ss.Lock = p.parseParenCondition(); ss.Lock == nil {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	ss.Body = p.parseBlockStatement()
	return ss
}
