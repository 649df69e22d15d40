package harmonic

import "math"

// Constants are the bindings Evaluate uses when none are given.
var Constants = map[string]Complex{
	"e":  Real(math.E),
	"𝑒":  Real(math.E),
	"pi": Real(math.Pi),
	"π":  Real(math.Pi),
	"i":  {Im: 1},
	"im": {Im: 1},
	"j":  {Im: 1},
}

// Evaluate substitutes bound symbols and folds every operator whose
// operands are all numbers. Unbound symbols and unknown functions stay
// symbolic, so the result is a Complex only when everything was bound.
func Evaluate(expr Expr, bindings map[string]Complex) Expr {
	if bindings == nil {
		bindings = Constants
	}
	switch e := expr.(type) {
	case Symbol:
		if v, ok := bindings[string(e)]; ok {
			return v
		}
		return e
	case *Op:
		args := make([]Expr, len(e.Args))
		values := make([]Complex, 0, len(e.Args))
		for i, a := range e.Args {
			args[i] = Evaluate(a, bindings)
			if c, ok := args[i].(Complex); ok {
				values = append(values, c)
			}
		}
		if len(values) == len(args) {
			if v, ok := apply(e.Name, values); ok {
				return v
			}
		}
		return NewOp(e.Name, args...)
	default:
		return expr
	}
}

// Bind returns bindings extended with the constants, so callers only
// supply their free variables.
func Bind(vars map[string]Complex) map[string]Complex {
	out := make(map[string]Complex, len(Constants)+len(vars))
	for k, v := range Constants {
		out[k] = v
	}
	for k, v := range vars {
		out[k] = v
	}
	return out
}

// Normalize replaces named constants and folds constant subtrees.
func Normalize(expr Expr) Expr {
	return Evaluate(expr, Constants)
}

func apply(name string, args []Complex) (Complex, bool) {
	switch len(args) {
	case 1:
		a := args[0]
		switch name {
		case "+":
			return a, true
		case "-":
			return a.Neg(), true
		case "'":
			return a.Conj(), true
		case "sqrt":
			return a.Sqrt(), true
		case "abs":
			return Real(a.Abs()), true
		case "exp":
			return a.Exp(), true
		}
	case 2:
		a, b := args[0], args[1]
		switch name {
		case "+":
			return a.Add(b), true
		case "-":
			return a.Sub(b), true
		case "*":
			return a.Mul(b), true
		case "/":
			return a.Div(b), true
		case "^":
			return a.Pow(b), true
		}
	}
	return Complex{}, false
}

// Invert turns f into 1/f. A quotient is flipped, and 1/x gives back x.
func Invert(expr Expr) Expr {
	if op, ok := expr.(*Op); ok && op.Name == "/" && len(op.Args) == 2 {
		if one, ok := op.Args[0].(Complex); ok && one.Equal(Real(1)) {
			return op.Args[1]
		}
		return NewOp("/", op.Args[1], op.Args[0])
	}
	return NewOp("/", Real(1), expr)
}
