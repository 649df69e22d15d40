package lexer

import (
	"strings"

	"bytebeat/pkg/token"
)

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	line         int
	column       int
}

func New(input string) *Lexer {
	l := &Lexer{
		input:  input,
		line:   1,
		column: 0,
	}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition += 1
	l.column += 1
}

func (l *Lexer) peekChar() byte {
	return l.peekAt(0)
}

func (l *Lexer) peekAt(n int) byte {
	if l.readPosition+n >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition+n]
}

// operators lists multi-character operators, longest first.
var operators = []struct {
	literal string
	typ     token.TokenType
}{
	{">>>", token.USHR},
	{"===", token.STRICT_EQ},
	{"!==", token.STRICT_NOT_EQ},
	{"**", token.POWER},
	{"<<", token.SHL},
	{">>", token.SHR},
	{"<=", token.LTE},
	{">=", token.GTE},
	{"==", token.EQ},
	{"!=", token.NOT_EQ},
	{"&&", token.AND},
	{"||", token.OR},
}

var single = map[byte]token.TokenType{
	'+': token.PLUS,
	'-': token.MINUS,
	'*': token.ASTERISK,
	'/': token.SLASH,
	'%': token.PERCENT,
	'&': token.AMP,
	'|': token.PIPE,
	'^': token.CARET,
	'~': token.TILDE,
	'!': token.BANG,
	'<': token.LT,
	'>': token.GT,
	'?': token.QUESTION,
	':': token.COLON,
	',': token.COMMA,
	'(': token.LPAREN,
	')': token.RPAREN,
}

func (l *Lexer) NextToken() token.Token {
	l.skipWhitespace()

	line, column, pos := l.line, l.column, l.position

	if l.ch == 0 {
		return token.Token{Type: token.EOF, Literal: "", Line: line, Column: column, Pos: pos}
	}

	if isLetter(l.ch) {
		literal := l.readIdentifier()
		return token.Token{Type: token.LookupIdent(literal), Literal: literal, Line: line, Column: column, Pos: pos}
	}

	if isDigit(l.ch) || (l.ch == '.' && isDigit(l.peekChar())) {
		literal, ok := l.readNumber()
		typ := token.TokenType(token.NUMBER)
		if !ok {
			typ = token.ILLEGAL
		}
		return token.Token{Type: typ, Literal: literal, Line: line, Column: column, Pos: pos}
	}

	if l.ch == '"' || l.ch == '\'' {
		literal, ok := l.readString(l.ch)
		typ := token.TokenType(token.STRING)
		if !ok {
			typ = token.ILLEGAL
		}
		return token.Token{Type: typ, Literal: literal, Line: line, Column: column, Pos: pos}
	}

	if l.ch == '.' {
		l.readChar()
		return token.Token{Type: token.DOT, Literal: ".", Line: line, Column: column, Pos: pos}
	}

	rest := l.input[l.position:]
	for _, op := range operators {
		if strings.HasPrefix(rest, op.literal) {
			for range op.literal {
				l.readChar()
			}
			return token.Token{Type: op.typ, Literal: op.literal, Line: line, Column: column, Pos: pos}
		}
	}

	typ, ok := single[l.ch]
	if !ok {
		typ = token.ILLEGAL
	}
	tok := newToken(typ, l.ch, line, column)
	tok.Pos = pos
	l.readChar()
	return tok
}

func (l *Lexer) skipWhitespace() {
	for {
		switch {
		case l.ch == '\n':
			l.line++
			l.column = 0
			l.readChar()
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		case l.ch == '/' && l.peekChar() == '*':
			l.readChar()
			l.readChar()
			for l.ch != 0 && !(l.ch == '*' && l.peekChar() == '/') {
				if l.ch == '\n' {
					l.line++
					l.column = 0
				}
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

func newToken(tokenType token.TokenType, ch byte, line, col int) token.Token {
	return token.Token{Type: tokenType, Literal: string(ch), Line: line, Column: col}
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_' || ch == '$'
}

// readNumber consumes a decimal number with optional fraction and exponent,
// or a 0x, 0o or 0b integer. ok is false when the literal runs into letters.
func (l *Lexer) readNumber() (string, bool) {
	position := l.position

	if l.ch == '0' && isRadix(l.peekChar()) {
		l.readChar()
		l.readChar()
		for isHexDigit(l.ch) {
			l.readChar()
		}
		return l.input[position:l.position], !isLetter(l.ch)
	}

	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.peekAt(1))) {
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}
	return l.input[position:l.position], !isLetter(l.ch)
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || 'a' <= ch && ch <= 'f' || 'A' <= ch && ch <= 'F'
}

func isRadix(ch byte) bool {
	switch ch {
	case 'x', 'X', 'o', 'O', 'b', 'B':
		return true
	}
	return false
}

// readString consumes a quoted string and returns its unescaped contents.
// ok is false for an unterminated string.
func (l *Lexer) readString(quote byte) (string, bool) {
	var result strings.Builder
	l.readChar() // Skip opening quote

	for l.ch != quote {
		if l.ch == 0 || l.ch == '\n' {
			return result.String(), false
		}
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				result.WriteByte('\n')
			case 't':
				result.WriteByte('\t')
			case 'r':
				result.WriteByte('\r')
			case '0':
				result.WriteByte('\x00')
			case 'x':
				hi, lo := l.peekChar(), l.peekAt(1)
				if !isHexDigit(hi) || !isHexDigit(lo) {
					return result.String(), false
				}
				l.readChar()
				l.readChar()
				result.WriteRune(rune(hexVal(hi)<<4 | hexVal(lo)))
			case 0:
				return result.String(), false
			default:
				// \\ \' \" and any other escaped character stand for themselves
				result.WriteByte(l.ch)
			}
		} else {
			result.WriteByte(l.ch)
		}
		l.readChar()
	}
	l.readChar() // Skip closing quote

	return result.String(), true
}

func hexVal(ch byte) byte {
	switch {
	case isDigit(ch):
		return ch - '0'
	case 'a' <= ch && ch <= 'f':
		return ch - 'a' + 10
	default:
		return ch - 'A' + 10
	}
}
