package parser

import (
	"github.com/beanshell/beanshell-sub002/internal/ast"
	"github.com/beanshell/beanshell-sub002/internal/token"
)

var primitiveNames = map[token.TokenType]string{
	token.BOOLEAN_KW: "boolean",
	token.CHAR_KW:    "char",
	token.BYTE_KW:    "byte",
	token.SHORT_KW:   "short",
	token.INT_KW:     "int",
	token.LONG_KW:    "long",
	token.FLOAT_KW:   "float",
	token.DOUBLE_KW:  "double",
	token.VOID:       "void",
}

// scanType looks ahead for a type starting offset tokens after the current one.
// It returns the offset just past the type, or -1 when no type starts there.
func (p *Parser) scanType(offset int) int {
	i := offset
	tok := p.tokenAt(i)
	switch {
	case token.IsPrimitiveType(tok.Type) || tok.Type == token.VOID:
		i++
	case tok.Type == token.IDENT:
		i++
		for p.tokenAt(i).Type == token.DOT && p.tokenAt(i+1).Type == token.IDENT {
			i += 2
		}
		if p.tokenAt(i).Type == token.LT {
			end, ok := p.scanTypeArguments(i)
			if !ok {
				return -1
			}
			i = end
		}
	default:
		return -1
	}
	for p.tokenAt(i).Type == token.LBRACKET && p.tokenAt(i+1).Type == token.RBRACKET {
		i += 2
	}
	return i
}

// scanTypeArguments skips a balanced <...> group starting at offset.
// Type arguments are accepted and ignored.
func (p *Parser) scanTypeArguments(offset int) (int, bool) {
	depth := 0
	for i := offset; ; i++ {
		tok := p.tokenAt(i)
		switch tok.Type {
		case token.LT:
			depth++
		case token.GT:
			depth--
		case token.RSHIFT:
			depth -= 2
		case token.URSHIFT:
			depth -= 3
		case token.IDENT, token.DOT, token.COMMA, token.QUESTION, token.EXTENDS, token.LBRACKET, token.RBRACKET:
		default:
			if !token.IsPrimitiveType(tok.Type) {
				return 0, false
			}
		}
		if depth < 0 {
			return 0, false
		}
		if depth == 0 {
			return i + 1, true
		}
	}
}

// declarationTypeEnd reports whether the current token starts `Type name`,
// returning the offset of the name.
func (p *Parser) declarationTypeEnd() (int, bool) {
	end := p.scanType(0)
	if end <= 0 || p.tokenAt(end).Type != token.IDENT {
		return 0, false
	}
	return end, true
}

// parseType parses a type starting at the current token and leaves the
// current token on its last token.
func (p *Parser) parseType() *ast.TypeRef {
	t := &ast.TypeRef{Token: p.curToken}
	if name, ok := primitiveNames[p.curToken.Type]; ok {
		t.Name = name
	} else if p.curTokenIs(token.IDENT) {
		t.Name = p.curToken.Lexeme
		for p.peekTokenIs(token.DOT) && p.tokenAt(2).Type == token.IDENT {
			p.nextToken()
			p.nextToken()
			t.Name += "." + p.curToken.Lexeme
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
		p.addError(p.curToken, "expected a type, got %s", describeToken(p.curToken))
		return nil
	}
	t.Dims = p.parseDims()
	return t
}

// parseDims consumes trailing [] pairs.
func (p *Parser) parseDims() int {
	dims := 0
	for p.peekTokenIs(token.LBRACKET) && p.tokenAt(2).Type == token.RBRACKET {
		p.nextToken()
		p.nextToken()
		dims++
	}
	return dims
}
