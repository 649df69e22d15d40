package eval

import (
	"math"
	"strings"

	"bytebeat/pkg/numeric"
	"bytebeat/pkg/opcode"
)

var numericNaN = math.NaN()

func constNode(v Value) node {
	return node{fn: func(float64, float64) Value { return v }, constant: true}
}

// fold evaluates a constant node once and replaces it with its value.
func fold(n node) node {
	if !n.constant {
		return n
	}
	return constNode(n.fn(0, 0))
}

type infixFn func(left, right Value) Value

func arithmetic(f func(a, b float64) float64) infixFn {
	return func(left, right Value) Value {
		return Number(f(left.ToNumber(), right.ToNumber()))
	}
}

func relational(num func(a, b float64) bool, str func(a, b string) bool) infixFn {
	return func(left, right Value) Value {
		if left.Kind == KindString && right.Kind == KindString {
			return Boolean(str(left.Str, right.Str))
		}
		return Boolean(num(left.ToNumber(), right.ToNumber()))
	}
}

var infixOps = map[string]infixFn{
	"+":   evalPlus,
	"-":   arithmetic(func(a, b float64) float64 { return a - b }),
	"*":   arithmetic(func(a, b float64) float64 { return a * b }),
	"/":   arithmetic(func(a, b float64) float64 { return a / b }),
	"%":   arithmetic(numeric.Mod),
	"**":  arithmetic(opcode.Pow),
	"&":   arithmetic(numeric.And),
	"|":   arithmetic(numeric.Or),
	"^":   arithmetic(numeric.Xor),
	"<<":  arithmetic(numeric.Shl),
	">>":  arithmetic(numeric.Shr),
	">>>": arithmetic(numeric.Ushr),
	"<": relational(
		func(a, b float64) bool { return a < b },
		func(a, b string) bool { return strings.Compare(a, b) < 0 }),
	"<=": relational(
		func(a, b float64) bool { return a <= b },
		func(a, b string) bool { return strings.Compare(a, b) <= 0 }),
	">": relational(
		func(a, b float64) bool { return a > b },
		func(a, b string) bool { return strings.Compare(a, b) > 0 }),
	">=": relational(
		func(a, b float64) bool { return a >= b },
		func(a, b string) bool { return strings.Compare(a, b) >= 0 }),
	"==":  func(l, r Value) Value { return Boolean(looseEquals(l, r)) },
	"!=":  func(l, r Value) Value { return Boolean(!looseEquals(l, r)) },
	"===": func(l, r Value) Value { return Boolean(strictEquals(l, r)) },
	"!==": func(l, r Value) Value { return Boolean(!strictEquals(l, r)) },
}

// evalPlus concatenates when either side is a string.
func evalPlus(left, right Value) Value {
	if left.Kind == KindString || right.Kind == KindString {
		return String(left.ToString() + right.ToString())
	}
	return Number(left.ToNumber() + right.ToNumber())
}

func strictEquals(left, right Value) bool {
	if left.Kind != right.Kind {
		return false
	}
	switch left.Kind {
	case KindString:
		return left.Str == right.Str
	case KindBoolean:
		return left.Bool == right.Bool
	default:
		return left.Num == right.Num
	}
}

// looseEquals compares mixed kinds as numbers.
func looseEquals(left, right Value) bool {
	if left.Kind == right.Kind {
		return strictEquals(left, right)
	}
	return left.ToNumber() == right.ToNumber()
}
