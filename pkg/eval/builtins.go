package eval

import (
	"math"
	"math/rand"

	"bytebeat/pkg/numeric"
	"bytebeat/pkg/opcode"
)

// constants are the numeric names of the math namespace.
var constants = map[string]float64{
	"E":       math.E,
	"LN2":     math.Ln2,
	"LN10":    math.Ln10,
	"LOG10E":  math.Log10E,
	"PI":      math.Pi,
	"SQRT1_2": math.Sqrt2 / 2,
	"SQRT2":   math.Sqrt2,
}

var unaryFns = map[string]func(float64) float64{
	"abs":   math.Abs,
	"floor": math.Floor,
	"round": numeric.Round,
	"sqrt":  math.Sqrt,
	"ceil":  math.Ceil,
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"sinh":  math.Sinh,
	"cosh":  math.Cosh,
	"tanh":  math.Tanh,
	"asin":  math.Asin,
	"acos":  math.Acos,
	"asinh": math.Asinh,
	"acosh": math.Acosh,
	"atan":  math.Atan,
	"atanh": math.Atanh,
	"cbrt":  math.Cbrt,
	"sign":  numeric.Sign,
	"trunc": math.Trunc,
	"log":   math.Log,
	"exp":   math.Exp,
}

var binaryFns = map[string]func(float64, float64) float64{
	"atan2": math.Atan2,
	"pow":   opcode.Pow,
}

// variadicFns fold their arguments starting from the identity.
var variadicFns = map[string]struct {
	identity float64
	fold     func(float64, float64) float64
}{
	"min": {math.Inf(1), math.Min},
	"max": {math.Inf(-1), math.Max},
}

// intName is the helper that floors numbers and indexes strings.
const intName = "int"

// isFunction reports whether name is callable. Only the unprefixed form
// may call int.
func isFunction(name string, prefixed bool) bool {
	if name == intName {
		return !prefixed
	}
	if name == "random" {
		return true
	}
	_, u := unaryFns[name]
	_, b := binaryFns[name]
	_, v := variadicFns[name]
	return u || b || v
}

// Names returns every identifier an expression may reference besides t and tt.
func Names() []string {
	names := []string{intName, "random"}
	for n := range constants {
		names = append(names, n)
	}
	for n := range unaryFns {
		names = append(names, n)
	}
	for n := range binaryFns {
		names = append(names, n)
	}
	for n := range variadicFns {
		names = append(names, n)
	}
	return names
}

func random() float64 { return rand.Float64() }

// intOf implements int(x, i): numbers are floored, strings yield the
// UTF-16 code unit at index i or NaN.
func intOf(x, i Value) Value {
	if x.Kind != KindString {
		return Number(math.Floor(x.ToNumber()))
	}
	idx, ok := stringIndex(i)
	if !ok {
		return Number(math.NaN())
	}
	u, ok := codeUnitAt(x.Str, idx)
	if !ok {
		return Number(math.NaN())
	}
	return Number(float64(u))
}

// unitOf is intOf for a string whose code units were computed up front.
func unitOf(units []uint16, i Value) Value {
	idx, ok := stringIndex(i)
	if !ok || idx >= len(units) {
		return Number(math.NaN())
	}
	return Number(float64(units[idx]))
}

// stringIndex truncates i; NaN counts as 0 and negative indices miss.
func stringIndex(i Value) (int, bool) {
	idx := math.Trunc(i.ToNumber())
	if math.IsNaN(idx) {
		return 0, true
	}
	if idx < 0 || idx > math.MaxInt32 {
		return 0, false
	}
	return int(idx), true
}
