package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/beanshell/beanshell-sub002/internal/token"
)

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	line         int  // current line number
	column       int  // current column number
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		l.readPosition++
		l.column++
		return
	}

	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) peekCharAt(offset int) rune {
	pos := l.readPosition
	for i := 0; i < offset; i++ {
		if pos >= len(l.input) {
			return 0
		}
		_, w := utf8.DecodeRuneInString(l.input[pos:])
		pos += w
	}
	if pos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[pos:])
	return r
}

// Tokens lexes the whole input. The final token is always EOF.
func (l *Lexer) Tokens() []token.Token {
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	line, col := l.line, l.column
	op := func(t token.TokenType, lexeme string) token.Token {
		for i := 1; i < len(lexeme); i++ {
			l.readChar()
		}
		l.readChar()
		return token.Token{Type: t, Lexeme: lexeme, Literal: lexeme, Line: line, Column: col}
	}

	switch l.ch {
	case 0:
		return token.Token{Type: token.EOF, Line: line, Column: col}
	case '=':
		if l.peekChar() == '=' {
			return op(token.EQ, "==")
		}
		return op(token.ASSIGN, "=")
	case '+':
		switch l.peekChar() {
		case '+':
			return op(token.INCR, "++")
		case '=':
			return op(token.PLUS_ASSIGN, "+=")
		}
		return op(token.PLUS, "+")
	case '-':
		switch l.peekChar() {
		case '-':
			return op(token.DECR, "--")
		case '=':
			return op(token.MINUS_ASSIGN, "-=")
		}
		return op(token.MINUS, "-")
	case '*':
		if l.peekChar() == '=' {
			return op(token.ASTERISK_ASSIGN, "*=")
		}
		return op(token.ASTERISK, "*")
	case '/':
		if l.peekChar() == '=' {
			return op(token.SLASH_ASSIGN, "/=")
		}
		return op(token.SLASH, "/")
	case '%':
		if l.peekChar() == '=' {
			return op(token.PERCENT_ASSIGN, "%=")
		}
		return op(token.PERCENT, "%")
	case '!':
		if l.peekChar() == '=' {
			return op(token.NOT_EQ, "!=")
		}
		return op(token.BANG, "!")
	case '~':
		return op(token.TILDE, "~")
	case '?':
		return op(token.QUESTION, "?")
	case ':':
		return op(token.COLON, ":")
	case '<':
		if l.peekChar() == '<' {
			if l.peekCharAt(1) == '=' {
				return op(token.LSHIFT_ASSIGN, "<<=")
			}
			return op(token.LSHIFT, "<<")
		}
		if l.peekChar() == '=' {
			return op(token.LTE, "<=")
		}
		return op(token.LT, "<")
	case '>':
		if l.peekChar() == '>' {
			if l.peekCharAt(1) == '>' {
				if l.peekCharAt(2) == '=' {
					return op(token.URSHIFT_ASSIGN, ">>>=")
				}
				return op(token.URSHIFT, ">>>")
			}
			if l.peekCharAt(1) == '=' {
				return op(token.RSHIFT_ASSIGN, ">>=")
			}
			return op(token.RSHIFT, ">>")
		}
		if l.peekChar() == '=' {
			return op(token.GTE, ">=")
		}
		return op(token.GT, ">")
	case '&':
		switch l.peekChar() {
		case '&':
			return op(token.AND, "&&")
		case '=':
			return op(token.AND_ASSIGN, "&=")
		}
		return op(token.BIT_AND, "&")
	case '|':
		switch l.peekChar() {
		case '|':
			return op(token.OR, "||")
		case '=':
			return op(token.OR_ASSIGN, "|=")
		}
		return op(token.BIT_OR, "|")
	case '^':
		if l.peekChar() == '=' {
			return op(token.XOR_ASSIGN, "^=")
		}
		return op(token.BIT_XOR, "^")
	case ',':
		return op(token.COMMA, ",")
	case ';':
		return op(token.SEMICOLON, ";")
	case '(':
		return op(token.LPAREN, "(")
	case ')':
		return op(token.RPAREN, ")")
	case '{':
		return op(token.LBRACE, "{")
	case '}':
		return op(token.RBRACE, "}")
	case '[':
		return op(token.LBRACKET, "[")
	case ']':
		return op(token.RBRACKET, "]")
	case '.':
		if isDigit(l.peekChar()) {
			return l.readNumber(line, col)
		}
		return op(token.DOT, ".")
	case '"':
		return l.readString(line, col)
	case '\'':
		return l.readCharLiteral(line, col)
	}

	if isLetter(l.ch) {
		ident := l.readIdentifier()
		return token.Token{Type: token.LookupIdent(ident), Lexeme: ident, Literal: ident, Line: line, Column: col}
	}
	if isDigit(l.ch) {
		return l.readNumber(line, col)
	}

	ch := l.ch
	l.readChar()
	return token.Token{Type: token.ILLEGAL, Lexeme: string(ch), Literal: fmt.Sprintf("unexpected character %q", ch), Line: line, Column: col}
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' || l.ch == '\f':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		case l.ch == '/' && l.peekChar() == '*':
			l.readChar()
			l.readChar()
			for !(l.ch == '*' && l.peekChar() == '/') && l.ch != 0 {
				l.readChar()
			}
			if l.ch != 0 {
				l.readChar()
				l.readChar()
			}
		default:
			return
		}
	}
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

func (l *Lexer) readNumber(line, col int) token.Token {
	start := l.position
	illegal := func(msg string) token.Token {
		return token.Token{Type: token.ILLEGAL, Lexeme: l.input[start:l.position], Literal: msg, Line: line, Column: col}
	}

	// Hex literal
	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		l.readChar()
		l.readChar()
		digitsStart := l.position
		for isHexDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
		digits := strings.ReplaceAll(l.input[digitsStart:l.position], "_", "")
		isLong := l.ch == 'l' || l.ch == 'L'
		if isLong {
			l.readChar()
		}
		v, err := strconv.ParseUint(digits, 16, 64)
		if err != nil {
			return illegal("malformed hex literal")
		}
		return intToken(l.input[start:l.position], v, isLong, line, col)
	}

	isFloating := false
	for isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) || l.ch == '.' && !isLetter(l.peekChar()) && l.peekChar() != '.' && l.position > start {
		isFloating = true
		l.readChar()
		for isDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		isFloating = true
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		if !isDigit(l.ch) {
			return illegal("malformed exponent")
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	text := strings.ReplaceAll(l.input[start:l.position], "_", "")
	switch l.ch {
	case 'f', 'F':
		l.readChar()
		v, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return illegal("malformed float literal")
		}
		return token.Token{Type: token.FLOAT, Lexeme: l.input[start:l.position], Literal: v, Line: line, Column: col}
	case 'd', 'D':
		l.readChar()
		isFloating = true
	case 'l', 'L':
		if isFloating {
			return illegal("malformed long literal")
		}
		l.readChar()
		v, err := parseInteger(text)
		if err != nil {
			return illegal("malformed long literal")
		}
		return intToken(l.input[start:l.position], v, true, line, col)
	}

	if isFloating {
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return illegal("malformed floating point literal")
		}
		return token.Token{Type: token.DOUBLE, Lexeme: l.input[start:l.position], Literal: v, Line: line, Column: col}
	}

	v, err := parseInteger(text)
	if err != nil {
		return illegal("malformed integer literal")
	}
	return intToken(l.input[start:l.position], v, false, line, col)
}

// parseInteger handles decimal and leading-zero octal literals.
func parseInteger(text string) (uint64, error) {
	if len(text) > 1 && text[0] == '0' {
		return strconv.ParseUint(text[1:], 8, 64)
	}
	return strconv.ParseUint(text, 10, 64)
}

func intToken(lexeme string, v uint64, isLong bool, line, col int) token.Token {
	if isLong {
		return token.Token{Type: token.LONG, Lexeme: lexeme, Literal: int64(v), Line: line, Column: col}
	}
	// 2147483648 is only legal as the operand of unary minus; the parser checks that.
	if v > 1<<32-1 && v != 1<<31 {
		return token.Token{Type: token.ILLEGAL, Lexeme: lexeme, Literal: "integer number too large: " + lexeme, Line: line, Column: col}
	}
	if v > 1<<31 {
		// hex/octal literals may use the full 32 bits
		return token.Token{Type: token.INT, Lexeme: lexeme, Literal: int64(int32(uint32(v))), Line: line, Column: col}
	}
	return token.Token{Type: token.INT, Lexeme: lexeme, Literal: int64(v), Line: line, Column: col}
}

func (l *Lexer) readEscape() (rune, error) {
	// l.ch is the character after the backslash
	switch l.ch {
	case 'n':
		return '\n', nil
	case 't':
		return '\t', nil
	case 'r':
		return '\r', nil
	case 'b':
		return '\b', nil
	case 'f':
		return '\f', nil
	case '0':
		return 0, nil
	case '\\':
		return '\\', nil
	case '\'':
		return '\'', nil
	case '"':
		return '"', nil
	case 'u':
		var hex strings.Builder
		for i := 0; i < 4; i++ {
			if !isHexDigit(l.peekChar()) {
				return 0, fmt.Errorf("malformed unicode escape")
			}
			l.readChar()
			hex.WriteRune(l.ch)
		}
		v, _ := strconv.ParseUint(hex.String(), 16, 16)
		return rune(v), nil
	}
	return 0, fmt.Errorf("illegal escape character %q", l.ch)
}

func (l *Lexer) readString(line, col int) token.Token {
	start := l.position
	var out strings.Builder
	l.readChar() // opening quote
	for l.ch != '"' {
		if l.ch == 0 || l.ch == '\n' {
			return token.Token{Type: token.ILLEGAL, Lexeme: l.input[start:l.position], Literal: "unterminated string literal", Line: line, Column: col}
		}
		if l.ch == '\\' {
			l.readChar()
			r, err := l.readEscape()
			if err != nil {
				return token.Token{Type: token.ILLEGAL, Lexeme: l.input[start:l.position], Literal: err.Error(), Line: line, Column: col}
			}
			out.WriteRune(r)
		} else {
			out.WriteRune(l.ch)
		}
		l.readChar()
	}
	l.readChar() // closing quote
	return token.Token{Type: token.STRING, Lexeme: l.input[start:l.position], Literal: out.String(), Line: line, Column: col}
}

func (l *Lexer) readCharLiteral(line, col int) token.Token {
	start := l.position
	l.readChar() // opening quote
	var r rune
	switch l.ch {
	case '\\':
		l.readChar()
		esc, err := l.readEscape()
		if err != nil {
			return token.Token{Type: token.ILLEGAL, Lexeme: l.input[start:l.position], Literal: err.Error(), Line: line, Column: col}
		}
		r = esc
	case '\'', 0, '\n':
		return token.Token{Type: token.ILLEGAL, Lexeme: l.input[start:l.position], Literal: "empty character literal", Line: line, Column: col}
	default:
		r = l.ch
	}
	l.readChar()
	if l.ch != '\'' {
		return token.Token{Type: token.ILLEGAL, Lexeme: l.input[start:l.position], Literal: "unterminated character literal", Line: line, Column: col}
	}
	l.readChar()
	if r > 0xFFFF {
		return token.Token{Type: token.ILLEGAL, Lexeme: l.input[start:l.position], Literal: "character literal outside the basic multilingual plane", Line: line, Column: col}
	}
	return token.Token{Type: token.CHAR, Lexeme: l.input[start:l.position], Literal: uint16(r), Line: line, Column: col}
}

func isLetter(ch rune) bool {
	return ch == '_' || ch == '$' || unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func isHexDigit(ch rune) bool {
	return isDigit(ch) || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
}
