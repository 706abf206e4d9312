package token

import "fmt"

type TokenType string

type Token struct {
	Type    TokenType
	Lexeme  string      // Raw source text of the token
	Literal interface{} // Decoded value for literals (int64, float64, string, uint16)
	Line    int
	Column  int
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q) at %d:%d", t.Type, t.Lexeme, t.Line, t.Column)
}

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"

	// Identifiers and literals
	IDENT  = "IDENT"
	INT    = "INT"    // 123, 0x1F, 017
	LONG   = "LONG"   // 123L
	FLOAT  = "FLOAT"  // 1.5f
	DOUBLE = "DOUBLE" // 1.5, 1e3, 2d
	CHAR   = "CHAR"   // 'a'
	STRING = "STRING" // "abc"

	// Operators
	ASSIGN     = "="
	PLUS       = "+"
	MINUS      = "-"
	ASTERISK   = "*"
	SLASH      = "/"
	PERCENT    = "%"
	BANG       = "!"
	TILDE      = "~"
	QUESTION   = "?"
	COLON      = ":"
	LT         = "<"
	GT         = ">"
	LTE        = "<="
	GTE        = ">="
	EQ         = "=="
	NOT_EQ     = "!="
	AND        = "&&"
	OR         = "||"
	BIT_AND    = "&"
	BIT_OR     = "|"
	BIT_XOR    = "^"
	LSHIFT     = "<<"
	RSHIFT     = ">>"
	URSHIFT    = ">>>"
	INCR       = "++"
	DECR       = "--"

	PLUS_ASSIGN     = "+="
	MINUS_ASSIGN    = "-="
	ASTERISK_ASSIGN = "*="
	SLASH_ASSIGN    = "/="
	PERCENT_ASSIGN  = "%="
	AND_ASSIGN      = "&="
	OR_ASSIGN       = "|="
	XOR_ASSIGN      = "^="
	LSHIFT_ASSIGN   = "<<="
	RSHIFT_ASSIGN   = ">>="
	URSHIFT_ASSIGN  = ">>>="

	// Delimiters
	COMMA     = ","
	SEMICOLON = ";"
	DOT       = "."
	LPAREN    = "("
	RPAREN    = ")"
	LBRACE    = "{"
	RBRACE    = "}"
	LBRACKET  = "["
	RBRACKET  = "]"

	// Keywords
	BOOLEAN_KW   = "BOOLEAN_KW"
	BYTE_KW      = "BYTE_KW"
	CHAR_KW      = "CHAR_KW"
	SHORT_KW     = "SHORT_KW"
	INT_KW       = "INT_KW"
	LONG_KW      = "LONG_KW"
	FLOAT_KW     = "FLOAT_KW"
	DOUBLE_KW    = "DOUBLE_KW"
	VOID         = "VOID"
	TRUE         = "TRUE"
	FALSE        = "FALSE"
	NULL         = "NULL"
	IF           = "IF"
	ELSE         = "ELSE"
	WHILE        = "WHILE"
	DO           = "DO"
	FOR          = "FOR"
	SWITCH       = "SWITCH"
	CASE         = "CASE"
	DEFAULT      = "DEFAULT"
	BREAK        = "BREAK"
	CONTINUE     = "CONTINUE"
	RETURN       = "RETURN"
	THROW        = "THROW"
	THROWS       = "THROWS"
	TRY          = "TRY"
	CATCH        = "CATCH"
	FINALLY      = "FINALLY"
	NEW          = "NEW"
	INSTANCEOF   = "INSTANCEOF"
	IMPORT       = "IMPORT"
	PACKAGE      = "PACKAGE"
	CLASS        = "CLASS"
	INTERFACE    = "INTERFACE"
	EXTENDS      = "EXTENDS"
	IMPLEMENTS   = "IMPLEMENTS"
	SYNCHRONIZED = "SYNCHRONIZED"
	MODIFIER     = "MODIFIER" // public, private, protected, static, final, ...
)

var keywords = map[string]TokenType{
	"boolean":      BOOLEAN_KW,
	"byte":         BYTE_KW,
	"char":         CHAR_KW,
	"short":        SHORT_KW,
	"int":          INT_KW,
	"long":         LONG_KW,
	"float":        FLOAT_KW,
	"double":       DOUBLE_KW,
	"void":         VOID,
	"true":         TRUE,
	"false":        FALSE,
	"null":         NULL,
	"if":           IF,
	"else":         ELSE,
	"while":        WHILE,
	"do":           DO,
	"for":          FOR,
	"switch":       SWITCH,
	"case":         CASE,
	"default":      DEFAULT,
	"break":        BREAK,
	"continue":     CONTINUE,
	"return":       RETURN,
	"throw":        THROW,
	"throws":       THROWS,
	"try":          TRY,
	"catch":        CATCH,
	"finally":      FINALLY,
	"new":          NEW,
	"instanceof":   INSTANCEOF,
	"import":       IMPORT,
	"package":      PACKAGE,
	"class":        CLASS,
	"interface":    INTERFACE,
	"extends":      EXTENDS,
	"implements":   IMPLEMENTS,
	"synchronized": SYNCHRONIZED,
	"public":       MODIFIER,
	"private":      MODIFIER,
	"protected":    MODIFIER,
	"static":       MODIFIER,
	"final":        MODIFIER,
	"abstract":     MODIFIER,
	"native":       MODIFIER,
	"transient":    MODIFIER,
	"volatile":     MODIFIER,
	"strictfp":     MODIFIER,
}

// LookupIdent classifies an identifier as a keyword or a plain IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsPrimitiveType reports whether t names a primitive type keyword.
func IsPrimitiveType(t TokenType) bool {
	switch t {
	case BOOLEAN_KW, BYTE_KW, CHAR_KW, SHORT_KW, INT_KW, LONG_KW, FLOAT_KW, DOUBLE_KW:
		return true
	}
	return false
}
