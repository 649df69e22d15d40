// Package harmonic parses and evaluates the complex-valued formulas used
// for harmonic-series coefficients, such as 1/k or (-1)^k/k^2.
package harmonic

import (
	"fmt"
	"math"

	"bytebeat/pkg/numeric"
)

// Complex is a complex number value.
type Complex struct {
	Re float64 `json:"re"`
	Im float64 `json:"im"`
}

// Real returns the complex number with zero imaginary part.
func Real(re float64) Complex { return Complex{Re: re} }

func (a Complex) Add(b Complex) Complex { return Complex{a.Re + b.Re, a.Im + b.Im} }
func (a Complex) Sub(b Complex) Complex { return Complex{a.Re - b.Re, a.Im - b.Im} }
func (a Complex) Neg() Complex          { return Complex{-a.Re, -a.Im} }
func (a Complex) Conj() Complex         { return Complex{a.Re, -a.Im} }

func (a Complex) Mul(b Complex) Complex {
	return Complex{a.Re*b.Re - a.Im*b.Im, a.Im*b.Re + a.Re*b.Im}
}

// Div returns a/b. Dividing by zero magnitude yields zero.
func (a Complex) Div(b Complex) Complex {
	q := b.Re*b.Re + b.Im*b.Im
	if q == 0 {
		return Complex{}
	}
	return Complex{(a.Re*b.Re + a.Im*b.Im) / q, (a.Im*b.Re - a.Re*b.Im) / q}
}

// Abs is the magnitude.
func (a Complex) Abs() float64 { return math.Hypot(a.Re, a.Im) }

func (a Complex) Exp() Complex {
	m := math.Exp(a.Re)
	return Complex{m * math.Cos(a.Im), m * math.Sin(a.Im)}
}

// Log is the principal natural logarithm.
func (a Complex) Log() Complex {
	return Complex{math.Log(a.Abs()), math.Atan2(a.Im, a.Re)}
}

// Sqrt returns the principal root; the other root is its negation. The
// sign of the imaginary part follows the input.
func (a Complex) Sqrt() Complex {
	h := a.Abs()
	sgn := 1.0
	if a.Im < 0 {
		sgn = -1
	}
	return Complex{math.Sqrt((a.Re + h) / 2), sgn * math.Sqrt((h-a.Re)/2)}
}

// maxSquaring bounds the exponents raised by repeated squaring.
const maxSquaring = 1 << 31

// Pow raises a to b. Integer exponents use repeated squaring so that
// (-1)^k stays exactly real.
func (a Complex) Pow(b Complex) Complex {
	if b.Im == 0 && b.Re == math.Trunc(b.Re) && math.Abs(b.Re) < maxSquaring {
		n := int64(b.Re)
		neg := n < 0
		if neg {
			n = -n
		}
		result, base := Real(1), a
		for n > 0 {
			if n&1 == 1 {
				result = result.Mul(base)
			}
			base = base.Mul(base)
			n >>= 1
		}
		if neg {
			return Real(1).Div(result)
		}
		return result
	}
	if a.Im == 0 && b.Im == 0 && a.Re >= 0 {
		return Real(math.Pow(a.Re, b.Re))
	}
	if a.Re == 0 && a.Im == 0 {
		return Complex{}
	}
	return b.Mul(a.Log()).Exp()
}

func (a Complex) Equal(b Complex) bool { return a.Re == b.Re && a.Im == b.Im }

// String renders a as "re", or "re + imi" with a unit coefficient elided.
func (a Complex) String() string {
	if a.Im == 0 {
		return numeric.Format(a.Re)
	}
	sign := "+"
	if a.Im < 0 {
		sign = "-"
	}
	return fmt.Sprintf("%s %s %si", numeric.Format(a.Re), sign, coefficient(math.Abs(a.Im)))
}

func coefficient(im float64) string {
	if im == 1 {
		return ""
	}
	return numeric.Format(im)
}

// MathML renders a as presentation markup.
func (a Complex) MathML() string {
	switch {
	case a.Im == 0:
		return "<mn>" + numeric.Format(a.Re) + "</mn>"
	case a.Re == 0:
		c := coefficient(math.Abs(a.Im))
		if a.Im < 0 {
			c = "-" + c
		}
		return "<mn>" + c + "i</mn>"
	default:
		sign := "+"
		if a.Im < 0 {
			sign = "-"
		}
		return fmt.Sprintf("<mrow><mn>%s</mn><mo>%s</mo><mn>%s</mn><mi>i</mi></mrow>",
			numeric.Format(a.Re), sign, numeric.Format(math.Abs(a.Im)))
	}
}
