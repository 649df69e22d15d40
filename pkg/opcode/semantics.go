package opcode

import (
	"math"

	"bytebeat/pkg/numeric"
)

// Binary applies a two-operand word. x is the value popped first, y the one
// below it. ok is false for words that are not pure two-operand functions.
func Binary(op Opcode, y, x float64) (v float64, ok bool) {
	switch op {
	case OpAdd:
		return y + x, true
	case OpSub:
		return y - x, true
	case OpMul:
		return y * x, true
	case OpDiv:
		return (1 / x) * y, true
	case OpMod:
		return numeric.Mod(y, x), true
	case OpBitAnd:
		return numeric.And(y, x), true
	case OpBitOr:
		return numeric.Or(y, x), true
	case OpBitXor:
		return numeric.Xor(y, x), true
	case OpShl:
		return numeric.Shl(y, x), true
	case OpShr:
		return numeric.Shr(y, x), true
	case OpUshr:
		return numeric.Ushr(y, x), true
	case OpLess:
		return flag(x < y), true
	case OpGreater:
		return flag(x > y), true
	case OpEqual:
		return flag(x == y), true
	case OpAnd:
		if !numeric.Truthy(y) {
			return y, true
		}
		return x, true
	case OpOr:
		if numeric.Truthy(y) {
			return y, true
		}
		return x, true
	case OpLog:
		return math.Log(y), true
	case OpExp:
		return math.Exp(y), true
	case OpMin:
		return math.Min(y, x), true
	case OpMax:
		return math.Max(y, x), true
	case OpPow:
		return Pow(y, x), true
	case OpAtan2:
		return math.Atan2(y, x), true
	}
	return 0, false
}

// Unary applies a one-operand word to x.
func Unary(op Opcode, x float64) (v float64, ok bool) {
	switch op {
	case OpBitNot:
		return numeric.Not(x), true
	case OpInt, OpTrunc:
		return math.Trunc(x), true
	case OpAbs:
		return math.Abs(x), true
	case OpFloor:
		return math.Floor(x), true
	case OpRound:
		return numeric.Round(x), true
	case OpSqrt:
		return math.Sqrt(x), true
	case OpCeil:
		return math.Ceil(x), true
	case OpSin:
		return math.Sin(x), true
	case OpCos:
		return math.Cos(x), true
	case OpTan:
		return math.Tan(x), true
	case OpSinh:
		return math.Sinh(x), true
	case OpCosh:
		return math.Cosh(x), true
	case OpTanh:
		return math.Tanh(x), true
	case OpAsin:
		return math.Asin(x), true
	case OpAcos:
		return math.Acos(x), true
	case OpAsinh:
		return math.Asinh(x), true
	case OpAcosh:
		return math.Acosh(x), true
	case OpAtan:
		return math.Atan(x), true
	case OpAtanh:
		return math.Atanh(x), true
	case OpCbrt:
		return math.Cbrt(x), true
	case OpSign:
		return numeric.Sign(x), true
	}
	return 0, false
}

// Constant returns the value pushed by a named constant. random is not a
// constant.
func Constant(op Opcode) (float64, bool) {
	switch op {
	case OpE:
		return math.E, true
	case OpLn2:
		return math.Ln2, true
	case OpLn10:
		return math.Ln10, true
	case OpLog10E:
		return math.Log10E, true
	case OpPi:
		return math.Pi, true
	case OpSqrtHalf:
		return math.Sqrt2 / 2, true
	case OpSqrt2:
		return math.Sqrt2, true
	}
	return 0, false
}

// Pow is exponentiation with the IEEE edge cases math.Pow resolves
// differently: a NaN exponent, or a base of magnitude one raised to an
// infinity, is NaN.
func Pow(base, exp float64) float64 {
	if math.IsNaN(exp) {
		return math.NaN()
	}
	if math.Abs(base) == 1 && math.IsInf(exp, 0) {
		return math.NaN()
	}
	return math.Pow(base, exp)
}

func flag(b bool) float64 {
	if b {
		return numeric.True
	}
	return 0
}
