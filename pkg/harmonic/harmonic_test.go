package harmonic

import (
	"encoding/json"
	"math"
	"testing"

	"bytebeat/pkg/diag"
	"bytebeat/pkg/numeric"
)

func mustParse(t *testing.T, text string) Expr {
	t.Helper()
	expr, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse(%q): %v", text, err)
	}
	return expr
}

func near(a, b Complex) bool {
	const eps = 1e-12
	return math.Abs(a.Re-b.Re) < eps && math.Abs(a.Im-b.Im) < eps
}

func TestParse(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1/k", "(/ #C(1 0) k)"},
		{"3k", "(* #C(3 0) k)"},
		{"2i", "#C(0 2)"},
		{"4.5im", "#C(0 4.5)"},
		{"j", "#C(0 1)"},
		{"2.5", "#C(2.5 0)"},
		{"-1^k", "(^ (- #C(1 0)) k)"},
		{"2^3^2", "(^ #C(2 0) (^ #C(3 0) #C(2 0)))"},
		{"2**3", "(^ #C(2 0) #C(3 0))"},
		{"1-2-3", "(- (- #C(1 0) #C(2 0)) #C(3 0))"},
		{"1+2*3", "(+ #C(1 0) (* #C(2 0) #C(3 0)))"},
		{"sqrt(k)'", "(' (sqrt k))"},
		{"e^(i*pi)", "(^ e (* #C(0 1) pi))"},
		{"(k+1)/N", "(/ (+ k #C(1 0)) N)"},
		{" 1 / ( 2k ) ", "(/ #C(1 0) (* #C(2 0) k))"},
		{"abs(3-4i)", "(abs (- #C(3 0) #C(0 4)))"},
	}

	for _, tt := range tests {
		got := SExpr(mustParse(t, tt.input))
		if got != tt.expected {
			t.Errorf("Parse(%q) wrong. expected=%q, got=%q", tt.input, tt.expected, got)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []string{"", "   ", "1+", "(1", "1 2", "1 @ 2", ")", "sqrt(1"}

	for _, input := range tests {
		_, err := Parse(input)
		if err == nil {
			t.Errorf("Parse(%q): expected error", input)
			continue
		}
		if !diag.Is(err, diag.Syntax) {
			t.Errorf("Parse(%q): error kind wrong. got=%v", input, err)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"1/k", true},
		{"(-1)^k/k^2", true},
		{"2i+3", true},
		{"1 / k", true},
		{"sqrt(N)", true},
		{"exp(im*pi*k/N)", true},
		{"", false},
		{"   ", false},
		{"x", false},
		{"alert(1)", false},
	}

	for _, tt := range tests {
		if got := Validate(tt.input); got != tt.expected {
			t.Errorf("Validate(%q) wrong. expected=%t, got=%t", tt.input, tt.expected, got)
		}
	}
}

func TestComplexArithmetic(t *testing.T) {
	a, b := Complex{1, 2}, Complex{3, 4}

	if got := a.Mul(b); got != (Complex{-5, 10}) {
		t.Errorf("Mul wrong. got=%v", got)
	}
	if got := (Complex{-5, 10}).Div(b); got != a {
		t.Errorf("Div wrong. got=%v", got)
	}
	if got := a.Add(b).Sub(b); got != a {
		t.Errorf("Add/Sub wrong. got=%v", got)
	}
	if got := a.Neg(); got != (Complex{-1, -2}) {
		t.Errorf("Neg wrong. got=%v", got)
	}
	if got := a.Conj(); got != (Complex{1, -2}) {
		t.Errorf("Conj wrong. got=%v", got)
	}
	if got := b.Abs(); got != 5 {
		t.Errorf("Abs wrong. got=%v", got)
	}
	if got := Real(1).Div(Complex{}); got != (Complex{}) {
		t.Errorf("division by zero must be zero. got=%v", got)
	}
	if got := (Complex{}).Exp(); got != Real(1) {
		t.Errorf("Exp wrong. got=%v", got)
	}
}

func TestSqrt(t *testing.T) {
	tests := []struct {
		in, expected Complex
	}{
		{Real(4), Real(2)},
		{Real(-4), Complex{0, 2}},
		{Complex{3, -4}, Complex{2, -1}},
		{Complex{3, 4}, Complex{2, 1}},
	}

	for _, tt := range tests {
		got := tt.in.Sqrt()
		if !near(got, tt.expected) {
			t.Errorf("Sqrt(%v) wrong. expected=%v, got=%v", tt.in, tt.expected, got)
		}
		if sq := got.Mul(got); !near(sq, tt.in) {
			t.Errorf("Sqrt(%v) squared back to %v", tt.in, sq)
		}
	}
}

func TestPow(t *testing.T) {
	tests := []struct {
		base, exp, expected Complex
	}{
		{Complex{0, 1}, Real(2), Real(-1)},
		{Real(-1), Real(3), Real(-1)},
		{Real(2), Real(-2), Real(0.25)},
		{Real(4), Real(0.5), Real(2)},
		{Real(7), Real(0), Real(1)},
		{Real(0), Real(-1), Real(0)},
		{Real(math.E), Complex{0, math.Pi}, Complex{-1, math.Sin(math.Pi)}},
		{Real(-8), Real(1.0 / 3), Complex{1, math.Sqrt(3)}},
	}

	for _, tt := range tests {
		if got := tt.base.Pow(tt.exp); !near(got, tt.expected) {
			t.Errorf("%v ^ %v wrong. expected=%v, got=%v", tt.base, tt.exp, tt.expected, got)
		}
	}
}

func TestComplexString(t *testing.T) {
	tests := []struct {
		in       Complex
		expected string
	}{
		{Real(3), "3"},
		{Complex{0, 1}, "0 + i"},
		{Complex{3, -2}, "3 - 2i"},
		{Complex{1.5, 0.5}, "1.5 + 0.5i"},
	}

	for _, tt := range tests {
		if got := tt.in.String(); got != tt.expected {
			t.Errorf("String wrong. expected=%q, got=%q", tt.expected, got)
		}
	}
}

func TestComplexJSON(t *testing.T) {
	data, err := json.Marshal(Complex{1, -2})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"re":1,"im":-2}` {
		t.Errorf("json wrong. got=%s", data)
	}

	var c Complex
	if err := json.Unmarshal([]byte(`{"re":0.5,"im":3}`), &c); err != nil {
		t.Fatal(err)
	}
	if c != (Complex{0.5, 3}) {
		t.Errorf("unmarshal wrong. got=%v", c)
	}
}

func TestEvaluate(t *testing.T) {
	v, ok := Evaluate(mustParse(t, "e^(i*pi)"), nil).(Complex)
	if !ok {
		t.Fatalf("e^(i*pi) did not fold")
	}
	if !near(v, Real(-1)) {
		t.Errorf("e^(i*pi) wrong. got=%v", v)
	}

	partial := Evaluate(mustParse(t, "2*3/k"), nil)
	if got := SExpr(partial); got != "(/ #C(6 0) k)" {
		t.Errorf("partial evaluation wrong. got=%q", got)
	}

	coef := mustParse(t, "(-1)^k/k^2")
	v, ok = Evaluate(coef, Bind(map[string]Complex{"k": Real(3)})).(Complex)
	if !ok {
		t.Fatalf("bound coefficient did not fold")
	}
	if v != Real(-1.0/9) {
		t.Errorf("coefficient wrong. expected=%v, got=%v", Real(-1.0/9), v)
	}

	unknown := Evaluate(mustParse(t, "f(2)"), nil)
	if got := SExpr(unknown); got != "(f #C(2 0))" {
		t.Errorf("unknown function must stay symbolic. got=%q", got)
	}

	expected := "(* #C(" + numeric.Format(math.Pi) + " 0) k)"
	if got := SExpr(Normalize(mustParse(t, "pi*k"))); got != expected {
		t.Errorf("Normalize wrong. expected=%q, got=%q", expected, got)
	}
}

func TestInvert(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1/k", "k"},
		{"a/b", "(/ b a)"},
		{"k", "(/ #C(1 0) k)"},
		{"k^2+1", "(/ #C(1 0) (+ (^ k #C(2 0)) #C(1 0)))"},
	}

	for _, tt := range tests {
		expr := mustParse(t, tt.input)
		inv := Invert(expr)
		if got := SExpr(inv); got != tt.expected {
			t.Errorf("Invert(%q) wrong. expected=%q, got=%q", tt.input, tt.expected, got)
		}
		if got := SExpr(Invert(inv)); got != SExpr(expr) {
			t.Errorf("Invert(Invert(%q)) wrong. expected=%q, got=%q", tt.input, SExpr(expr), got)
		}
	}
}

func TestMathML(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"(a+b)*c", "<mrow><mrow><mo>(</mo><mrow><mi>a</mi><mo>+</mo><mi>b</mi></mrow><mo>)</mo></mrow><mo>·</mo><mi>c</mi></mrow>"},
		{"a*b+c", "<mrow><mrow><mi>a</mi><mo>·</mo><mi>b</mi></mrow><mo>+</mo><mi>c</mi></mrow>"},
		{"a-(b-c)", "<mrow><mi>a</mi><mo>-</mo><mrow><mo>(</mo><mrow><mi>b</mi><mo>-</mo><mi>c</mi></mrow><mo>)</mo></mrow></mrow>"},
		{"a-b-c", "<mrow><mrow><mi>a</mi><mo>-</mo><mi>b</mi></mrow><mo>-</mo><mi>c</mi></mrow>"},
		{"1/k", "<mfrac><mn>1</mn><mi>k</mi></mfrac>"},
		{"3k", "<mrow><mn>3</mn><mi>k</mi></mrow>"},
		{"k^2", "<msup><mi>k</mi><mn>2</mn></msup>"},
		{"(k+1)^2", "<msup><mrow><mo>(</mo><mrow><mi>k</mi><mo>+</mo><mn>1</mn></mrow><mo>)</mo></mrow><mn>2</mn></msup>"},
		{"pi", "<mi>π</mi>"},
		{"e", "<mi>𝑒</mi>"},
		{"sqrt(k)", "<msqrt><mi>k</mi></msqrt>"},
		{"2i", "<mn>2i</mn>"},
		{"i", "<mn>i</mn>"},
		{"-k", "<mrow><mo>-</mo><mi>k</mi></mrow>"},
		{"f(k)", `<mrow><mi>f</mi><mo stretchy="false">(</mo><mi>k</mi><mo stretchy="false">)</mo></mrow>`},
	}

	for _, tt := range tests {
		if got := MathML(mustParse(t, tt.input)); got != tt.expected {
			t.Errorf("MathML(%q) wrong.\nexpected=%q\ngot=     %q", tt.input, tt.expected, got)
		}
	}

	if got := (Complex{3, -2}).MathML(); got != "<mrow><mn>3</mn><mo>-</mo><mn>2</mn><mi>i</mi></mrow>" {
		t.Errorf("Complex MathML wrong. got=%q", got)
	}
}
