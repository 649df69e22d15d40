package harmonic

import (
	"strings"

	"bytebeat/pkg/numeric"
)

const atomic = maxPrecedence + 1

// precedenceOf is the binding strength of expr as an operand.
func precedenceOf(expr Expr) int {
	switch e := expr.(type) {
	case Complex:
		if e.Re != 0 && e.Im != 0 {
			return operators["+"].precedence
		}
	case *Op:
		if op, ok := operators[e.Name]; ok {
			return op.precedence
		}
	}
	return atomic
}

func parens(markup string) string {
	return "<mrow><mo>(</mo>" + markup + "<mo>)</mo></mrow>"
}

// operand renders expr, parenthesized when it binds looser than minPrec.
func operand(expr Expr, minPrec int) string {
	if precedenceOf(expr) < minPrec {
		return parens(MathML(expr))
	}
	return MathML(expr)
}

// MathML renders expr as presentation markup. Fractions and powers use
// mfrac and msup; products parenthesize sums, differences parenthesize a
// compound right operand and powers parenthesize a compound base.
func MathML(expr Expr) string {
	switch e := expr.(type) {
	case Complex:
		return e.MathML()
	case Symbol:
		switch e {
		case "pi":
			e = "π"
		case "e":
			e = "𝑒"
		}
		return "<mi>" + string(e) + "</mi>"
	case *Op:
		return opMathML(e)
	default:
		return ""
	}
}

func opMathML(e *Op) string {
	if len(e.Args) == 1 {
		x := e.Args[0]
		switch e.Name {
		case "+", "-":
			return "<mrow><mo>" + e.Name + "</mo>" + operand(x, operators["*"].precedence) + "</mrow>"
		case "'":
			return "<mover>" + operand(x, atomic) + "<mo>‾</mo></mover>"
		case "sqrt":
			return "<msqrt>" + MathML(x) + "</msqrt>"
		default:
			return "<mrow>" + MathML(Symbol(e.Name)) +
				`<mo stretchy="false">(</mo>` + MathML(x) + `<mo stretchy="false">)</mo></mrow>`
		}
	}

	l, r := e.Args[0], e.Args[1]
	switch e.Name {
	case "/":
		return "<mfrac>" + MathML(l) + MathML(r) + "</mfrac>"
	case "^":
		return "<msup>" + operand(l, atomic) + MathML(r) + "</msup>"
	case "+":
		return "<mrow>" + MathML(l) + "<mo>+</mo>" + MathML(r) + "</mrow>"
	case "-":
		return "<mrow>" + MathML(l) + "<mo>-</mo>" + operand(r, operators["*"].precedence) + "</mrow>"
	case "*":
		// 3k is written without a dot
		if c, ok := l.(Complex); ok && c.Im == 0 {
			if _, ok := r.(Symbol); ok {
				return "<mrow>" + MathML(l) + MathML(r) + "</mrow>"
			}
		}
		mul := operators["*"].precedence
		return "<mrow>" + operand(l, mul) + "<mo>·</mo>" + operand(r, mul) + "</mrow>"
	default:
		return ""
	}
}

// SExpr renders expr as an s-expression, with numbers as #C(re im).
func SExpr(expr Expr) string {
	switch e := expr.(type) {
	case Complex:
		return "#C(" + numeric.Format(e.Re) + " " + numeric.Format(e.Im) + ")"
	case Symbol:
		return string(e)
	case *Op:
		parts := []string{e.Name}
		for _, a := range e.Args {
			parts = append(parts, SExpr(a))
		}
		return "(" + strings.Join(parts, " ") + ")"
	default:
		return ""
	}
}
