// Package numeric implements the double-precision number semantics bytebeat
// formulas were written against: 32-bit wrapping bitwise operators,
// truncated remainder and the string/number coercions of JavaScript.
package numeric

import (
	"math"
	"strconv"
	"strings"
)

const two32 = 4294967296.0

// True is the value comparison words push for a true result.
const True = 0xffffffff

// ToUint32 wraps f into [0, 2^32) after truncation. NaN and infinities map to 0.
func ToUint32(f float64) uint32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	f = math.Mod(math.Trunc(f), two32)
	if f < 0 {
		f += two32
	}
	return uint32(f)
}

// ToInt32 wraps f into the signed 32-bit range.
func ToInt32(f float64) int32 {
	return int32(ToUint32(f))
}

func And(a, b float64) float64 { return float64(ToInt32(a) & ToInt32(b)) }
func Or(a, b float64) float64  { return float64(ToInt32(a) | ToInt32(b)) }
func Xor(a, b float64) float64 { return float64(ToInt32(a) ^ ToInt32(b)) }
func Not(a float64) float64    { return float64(^ToInt32(a)) }

// Shl shifts left; the count is taken modulo 32.
func Shl(a, b float64) float64 { return float64(ToInt32(a) << (ToUint32(b) & 31)) }

// Shr is the sign-preserving right shift.
func Shr(a, b float64) float64 { return float64(ToInt32(a) >> (ToUint32(b) & 31)) }

// Ushr is the zero-filling right shift; its result is never negative.
func Ushr(a, b float64) float64 { return float64(ToUint32(a) >> (ToUint32(b) & 31)) }

// Mod is the truncated remainder: the result takes the sign of the dividend.
func Mod(a, b float64) float64 { return math.Mod(a, b) }

// Round rounds half up, toward +Inf.
func Round(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	r := math.Floor(x)
	if x-r >= 0.5 {
		r++
	}
	if r == 0 && math.Signbit(x) {
		return math.Copysign(0, -1)
	}
	return r
}

func Sign(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return x
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return x
	}
}

// Truthy reports whether x counts as true in a condition.
func Truthy(x float64) bool {
	return x != 0 && !math.IsNaN(x)
}

// Bool converts a comparison result into the 0/1 number it coerces to.
func Bool(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Format renders a number the way string concatenation does.
func Format(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		// 1e+21 rather than 1e+21 with padded exponent digits
		s = strings.Replace(s, "e+0", "e+", 1)
		s = strings.Replace(s, "e-0", "e-", 1)
		return s
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Parse converts a string operand to a number. Unparseable input is NaN.
func Parse(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil {
				return math.NaN()
			}
			return float64(n)
		}
	}
	for _, c := range s {
		// ParseFloat accepts forms such as "inf" and "0x1p-2" that must stay NaN here
		if !(c >= '0' && c <= '9' || c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-') {
			return math.NaN()
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}
