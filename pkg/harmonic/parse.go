package harmonic

import (
	"regexp"
	"strconv"
	"strings"

	"bytebeat/pkg/diag"
)

// Expr is a Complex literal, a Symbol or an *Op.
type Expr interface {
	exprNode()
}

// Symbol is a free variable, a named constant or a function name.
type Symbol string

// Op applies Name to one or two operands. Name is an operator
// (+ - * / ^ ') or a function name.
type Op struct {
	Name string
	Args []Expr
}

func (Complex) exprNode() {}
func (Symbol) exprNode()  {}
func (*Op) exprNode()     {}

// NewOp builds an operator node.
func NewOp(name string, args ...Expr) *Op {
	return &Op{Name: name, Args: args}
}

var (
	tokenRe     = regexp.MustCompile(`\d+(?:\.\d+)?|\*\*?|[+\-/()^']|[A-Za-z_]+|π|𝑒`)
	whitelistRe = regexp.MustCompile(`^(?:\s|\d+(?:\.\d+)?|\*\*?|[+\-/()^']|im?|[jkN]|sqrt|abs|e(?:xp)?|pi)*$`)
	identRe     = regexp.MustCompile(`^(?:[A-Za-z_]+|π|𝑒)$`)
	imaginaryRe = regexp.MustCompile(`^(?:im?|j)$`)
	blankRe     = regexp.MustCompile(`^\s*$`)
)

// Validate is the cheap whitelist check used to gate input before Parse.
// It does not guarantee that Parse succeeds.
func Validate(text string) bool {
	return !blankRe.MatchString(text) && whitelistRe.MatchString(text)
}

type operator struct {
	precedence    int
	leftAssoc     bool
	canonicalName string
}

var operators = map[string]operator{
	"+":  {1, true, "+"},
	"-":  {1, true, "-"},
	"*":  {2, true, "*"},
	"/":  {2, true, "/"},
	"^":  {3, false, "^"},
	"**": {3, false, "^"},
}

const maxPrecedence = 3

type tokens struct {
	list []string
	pos  int
}

func (ts *tokens) peek() string {
	if ts.pos < len(ts.list) {
		return ts.list[ts.pos]
	}
	return ""
}

func (ts *tokens) shift() string {
	tok := ts.peek()
	if ts.pos < len(ts.list) {
		ts.pos++
	}
	return tok
}

func (ts *tokens) expect(want string) error {
	if got := ts.shift(); got != want {
		return diag.Errorf(diag.Syntax, "expected %q but got %q", want, got)
	}
	return nil
}

func tokenize(text string) ([]string, error) {
	var out []string
	last := 0
	for _, loc := range tokenRe.FindAllStringIndex(text, -1) {
		if gap := text[last:loc[0]]; strings.TrimSpace(gap) != "" {
			return nil, &diag.Error{Kind: diag.Syntax, Token: strings.TrimSpace(gap), Pos: last, Msg: "unexpected character"}
		}
		out = append(out, text[loc[0]:loc[1]])
		last = loc[1]
	}
	if gap := text[last:]; strings.TrimSpace(gap) != "" {
		return nil, &diag.Error{Kind: diag.Syntax, Token: strings.TrimSpace(gap), Pos: last, Msg: "unexpected character"}
	}
	return out, nil
}

// Parse reads a formula by precedence climbing. "**" is read as "^",
// a number directly followed by a name multiplies (3k is 3*k) and a number
// followed by i, im or j is imaginary.
func Parse(text string) (Expr, error) {
	list, err := tokenize(text)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, diag.Errorf(diag.Syntax, "empty expression")
	}

	ts := &tokens{list: list}
	expr, err := parseBinary(ts, 1)
	if err != nil {
		return nil, err
	}
	if ts.peek() != "" {
		return nil, &diag.Error{Kind: diag.Syntax, Token: ts.peek(), Pos: -1, Msg: "excess tokens"}
	}
	return expr, nil
}

func parseBinary(ts *tokens, precedence int) (Expr, error) {
	if precedence > maxPrecedence {
		return parseUnary(ts)
	}
	expr, err := parseBinary(ts, precedence+1)
	if err != nil {
		return nil, err
	}
	for {
		op, ok := operators[ts.peek()]
		if !ok || op.precedence != precedence {
			return expr, nil
		}
		ts.shift()

		next := precedence
		if op.leftAssoc {
			next++
		}
		right, err := parseBinary(ts, next)
		if err != nil {
			return nil, err
		}
		expr = NewOp(op.canonicalName, expr, right)
	}
}

func parseUnary(ts *tokens) (Expr, error) {
	tok := ts.shift()
	switch {
	case tok == "":
		return nil, diag.Errorf(diag.Syntax, "unexpected end of input")
	case tok == "+" || tok == "-":
		operand, err := parseUnary(ts)
		if err != nil {
			return nil, err
		}
		return NewOp(tok, operand), nil
	case tok == "(":
		term, err := parseBinary(ts, 1)
		if err != nil {
			return nil, err
		}
		if err := ts.expect(")"); err != nil {
			return nil, err
		}
		return parsePostfix(term, ts)
	case isNumber(tok):
		value, _ := strconv.ParseFloat(tok, 64)
		if imaginaryRe.MatchString(ts.peek()) {
			ts.shift()
			return parsePostfix(Complex{Im: value}, ts)
		}
		if identRe.MatchString(ts.peek()) {
			return parsePostfix(NewOp("*", Real(value), Symbol(ts.shift())), ts)
		}
		return parsePostfix(Real(value), ts)
	case imaginaryRe.MatchString(tok):
		return parsePostfix(Complex{Im: 1}, ts)
	case identRe.MatchString(tok):
		return parsePostfix(Symbol(tok), ts)
	default:
		return nil, &diag.Error{Kind: diag.Syntax, Token: tok, Pos: -1, Msg: "unexpected token"}
	}
}

func parsePostfix(expr Expr, ts *tokens) (Expr, error) {
	for {
		switch {
		case ts.peek() == "'":
			ts.shift()
			expr = NewOp("'", expr)
		case ts.peek() == "(":
			sym, ok := expr.(Symbol)
			if !ok {
				return expr, nil
			}
			ts.shift()
			arg, err := parseBinary(ts, 1)
			if err != nil {
				return nil, err
			}
			if err := ts.expect(")"); err != nil {
				return nil, err
			}
			expr = NewOp(string(sym), arg)
		default:
			return expr, nil
		}
	}
}

func isNumber(tok string) bool {
	return tok != "" && tok[0] >= '0' && tok[0] <= '9'
}
