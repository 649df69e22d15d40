package token

import "fmt"

type TokenType string

const (
	// Special
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"

	// Identifiers & Literals
	IDENT  = "IDENT"
	NUMBER = "NUMBER"
	STRING = "STRING"

	// Arithmetic
	PLUS     = "+"
	MINUS    = "-"
	ASTERISK = "*"
	POWER    = "**"
	SLASH    = "/"
	PERCENT  = "%"

	// Bitwise
	AMP   = "&"
	PIPE  = "|"
	CARET = "^"
	TILDE = "~"
	SHL   = "<<"
	SHR   = ">>"
	USHR  = ">>>"

	// Logical
	BANG = "!"
	AND  = "&&"
	OR   = "||"

	// Comparison
	LT            = "<"
	GT            = ">"
	LTE           = "<="
	GTE           = ">="
	EQ            = "=="
	NOT_EQ        = "!="
	STRICT_EQ     = "==="
	STRICT_NOT_EQ = "!=="

	// Delimiters
	QUESTION = "?"
	COLON    = ":"
	COMMA    = ","
	DOT      = "."
	LPAREN   = "("
	RPAREN   = ")"

	// Keywords
	TRUE  = "TRUE"
	FALSE = "FALSE"
)

type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
	Pos     int // byte offset of the first character
}

func (t Token) String() string {
	return fmt.Sprintf("Token(%s, %q, %d:%d)", t.Type, t.Literal, t.Line, t.Column)
}

var keywords = map[string]TokenType{
	"true":  TRUE,
	"false": FALSE,
}

func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}
