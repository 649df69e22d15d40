package eval

import (
	"errors"
	"math"
	"testing"

	"bytebeat/pkg/diag"
	"bytebeat/pkg/lexer"
	"bytebeat/pkg/parser"
)

// testEval compiles src without the number check and evaluates it at t.
func testEval(t *testing.T, src string, tval float64) Value {
	t.Helper()
	p := parser.New(lexer.New(src))
	program := p.ParseProgram()
	if err := p.Err(); err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	n, err := compileNode(program.Expression)
	if err != nil {
		t.Fatalf("compile %q: %v", src, err)
	}
	return n.fn(tval, 0)
}

func testNumber(t *testing.T, src string, got Value, expected float64) {
	t.Helper()
	if got.Kind != KindNumber {
		t.Errorf("%q: kind wrong. expected=number, got=%s (%s)", src, got.Kind, got.Inspect())
		return
	}
	if math.IsNaN(expected) {
		if !math.IsNaN(got.Num) {
			t.Errorf("%q: expected NaN, got=%v", src, got.Num)
		}
		return
	}
	if got.Num != expected {
		t.Errorf("%q: wrong. expected=%v, got=%v", src, expected, got.Num)
	}
}

func TestNumberExpressions(t *testing.T) {
	tests := []struct {
		input    string
		t        float64
		expected float64
	}{
		{"t*(t>>5|t>>8)", 1000, 31000},
		{"t&t>>8", 2000, 0},
		{"t%256/128-1", 2003, 0.6484375},
		{"1 + 2", 0, 3},
		{"'3' * '4'", 0, 12},
		{"true + 1", 0, 2},
		{"7 % -3", 0, 1},
		{"-7 % 3", 0, -1},
		{"5 / 2", 0, 2.5},
		{"1 / 0", 0, math.Inf(1)},
		{"2 ** 10", 0, 1024},
		{"2 ** 3 ** 2", 0, 512},
		{"(-2) ** 2", 0, 4},
		{"-1 >>> 0", 0, 4294967295},
		{"-1 >> 28", 0, -1},
		{"1 << 33", 0, 2},
		{"~5", 0, -6},
		{"0x80000000 | 0", 0, -2147483648},
		{"1 && 0", 0, 0},
		{"(1, 2)", 0, 2},
		{"int(3.7)", 0, 3},
		{"int(-3.2)", 0, -4},
		{"int('AB', 1)", 0, 66},
		{"int('A')", 0, 65},
		{"int('A', 5)", 0, math.NaN()},
		{"int(true)", 0, 1},
		{"min()", 0, math.Inf(1)},
		{"max(1, 5, 3)", 0, 5},
		{"min(4, t)", 2, 2},
		{"max(1, 'x')", 0, math.NaN()},
		{"Math.PI", 0, math.Pi},
		{"SQRT1_2", 0, math.Sqrt2 / 2},
		{"abs(-3)", 0, 3},
		{"round(-2.5)", 0, -2},
		{"Math.round(2.5)", 0, 3},
		{"pow(2, 0.5)", 0, math.Sqrt2},
		{"atan2(0, -1)", 0, math.Pi},
		{"sin()", 0, math.NaN()},
		{"floor(t / 3)", 10, 3},
		{"t /* comment */ * 2 // trailing", 21, 42},
		{"+'0x10'", 0, 16},
		{"-'abc'", 0, math.NaN()},
	}

	for _, tt := range tests {
		testNumber(t, tt.input, testEval(t, tt.input, tt.t), tt.expected)
	}
}

func TestStringAndBooleanExpressions(t *testing.T) {
	tests := []struct {
		input    string
		expected Value
	}{
		{"'a' + 1", String("a1")},
		{"1 + '2'", String("12")},
		{"1 + 2 + 'x'", String("3x")},
		{"'x' + 1.5", String("x1.5")},
		{"'x' + true", String("xtrue")},
		{"'b' > 'a'", Boolean(true)},
		{"'10' < '9'", Boolean(true)},
		{"'10' < 9", Boolean(false)},
		{"1 == '1'", Boolean(true)},
		{"1 === '1'", Boolean(false)},
		{"true == 1", Boolean(true)},
		{"true !== 1", Boolean(true)},
		{"'a' != 'a'", Boolean(false)},
		{"0 || 'x'", String("x")},
		{"'' && 5", String("")},
		{"1 ? 'y' : 'n'", String("y")},
		{"!''", Boolean(true)},
		{"!t", Boolean(true)},
		{"(0/0) == (0/0)", Boolean(false)},
	}

	for _, tt := range tests {
		got := testEval(t, tt.input, 0)
		if got != tt.expected {
			t.Errorf("%q: wrong. expected=%s, got=%s", tt.input, tt.expected.Inspect(), got.Inspect())
		}
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		input string
		kind  diag.Kind
		token string
	}{
		{"", diag.Syntax, ""},
		{"t +", diag.Syntax, ""},
		{"foo", diag.Syntax, "foo"},
		{"t(1)", diag.Syntax, "t"},
		{"PI()", diag.Syntax, "PI"},
		{"sin * 2", diag.Syntax, "sin"},
		{"Math.int(t)", diag.Syntax, "int"},
		{"Math.t", diag.Syntax, "t"},
		{"Date.now()", diag.Syntax, "("},
		{"window.alert", diag.Syntax, "."},
		{"t = 1", diag.Syntax, "="},
		{"'str'", diag.Type, ""},
		{"t > 1", diag.Type, ""},
		{"t ? 'x' : 'y'", diag.Type, ""},
	}

	for _, tt := range tests {
		_, err := Compile(tt.input)
		if err == nil {
			t.Errorf("%q: expected error, got none", tt.input)
			continue
		}
		var de *diag.Error
		if !errors.As(err, &de) {
			t.Fatalf("%q: error not *diag.Error. got=%T", tt.input, err)
		}
		if de.Kind != tt.kind {
			t.Errorf("%q: kind wrong. expected=%s, got=%s", tt.input, tt.kind, de.Kind)
		}
		if de.Token != tt.token {
			t.Errorf("%q: token wrong. expected=%q, got=%q", tt.input, tt.token, de.Token)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"t*(t>>5|t>>8)", true},
		{"(t*5&t>>7)|(t*3&t>>10)", true},
		{"sin(t/10)*127+128", true},
		{"int('hello', t % 5)", true},
		{"t +", false},
		{"'x'", false},
		{"alert(1)", false},
	}

	for _, tt := range tests {
		if got := Validate(tt.input); got != tt.expected {
			t.Errorf("Validate(%q) wrong. expected=%t, got=%t", tt.input, tt.expected, got)
		}
	}
}

func TestConstantFolding(t *testing.T) {
	tests := []struct {
		input    string
		constant bool
	}{
		{"1 + 2 * 3", true},
		{"sin(PI / 2) * 3", true},
		{"t + 1", false},
		{"random()", false},
		{"1 ? t : 2", false},
		{"0 ? t : 2", true},
		{"max(1, 2, tt)", false},
	}

	for _, tt := range tests {
		p, err := Compile(tt.input)
		if err != nil {
			t.Fatalf("%q: %v", tt.input, err)
		}
		if p.Constant() != tt.constant {
			t.Errorf("%q: constant wrong. expected=%t, got=%t", tt.input, tt.constant, p.Constant())
		}
	}
}

func TestRandom(t *testing.T) {
	p, err := Compile("random()")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 100; i++ {
		v := p.Eval(float64(i), 0).Num
		if v < 0 || v >= 1 {
			t.Fatalf("random out of range: %v", v)
		}
	}
}

func TestGenerator(t *testing.T) {
	p, err := Compile("t ? '5' : 1")
	if err != nil {
		t.Fatal(err)
	}
	g := p.Generator()

	v, err := g.Sample(0, 0)
	if err != nil || v != 1 {
		t.Errorf("Sample(0) wrong. expected=1, got=%v (%v)", v, err)
	}

	v, err = g.Sample(1, 0)
	if !errors.Is(err, ErrNotNumber) {
		t.Errorf("Sample(1) error wrong. expected=%v, got=%v", ErrNotNumber, err)
	}
	if v != 5 {
		t.Errorf("Sample(1) coerced value wrong. expected=5, got=%v", v)
	}

	p, err = Compile("tt & 255")
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := p.Generator().Sample(0, 300); v != 44 {
		t.Errorf("tt not wired. expected=44, got=%v", v)
	}
	if p.Source != "tt & 255" {
		t.Errorf("Source wrong. got=%q", p.Source)
	}
}

func TestIntIndexesCodeUnits(t *testing.T) {
	tests := []struct {
		input    string
		t        float64
		expected float64
	}{
		{"int('a😀b', t)", 0, 'a'},
		{"int('a😀b', t)", 1, 0xd83d},
		{"int('a😀b', t)", 2, 0xde00},
		{"int('a😀b', t)", 3, 'b'},
		{"int('a😀b', t)", 4, math.NaN()},
		{"int('a😀b', t - 5)", 0, math.NaN()},
		{"int(t < 100 ? 'a😀b' : 'xyz', t)", 1, 0xd83d},
		{"int(t < 100 ? 'a😀b' : 'xyz', t)", 3, 'b'},
		{"int(t < 100 ? 'a😀b' : 'xyz', t - 200)", 201, 'y'},
		{"int(t < 100 ? 'a😀b' : 'xyz', t)", 200, math.NaN()},
	}

	for _, tt := range tests {
		testNumber(t, tt.input, testEval(t, tt.input, tt.t), tt.expected)
	}
}

func TestIntDoesNotAllocate(t *testing.T) {
	inputs := []string{
		"int('0123456789abcdefghij', t % 20) * t",
		"int(t & 1 ? 'a😀b' : 'xyz', t % 4) * t",
	}

	for _, input := range inputs {
		p, err := Compile(input)
		if err != nil {
			t.Fatalf("compile %q: %v", input, err)
		}
		g := p.Generator()
		var n float64
		allocs := testing.AllocsPerRun(100, func() {
			n++
			if _, err := g.Sample(n, 0); err != nil {
				t.Fatal(err)
			}
		})
		if allocs != 0 {
			t.Errorf("%q: allocations per sample wrong. expected=0, got=%v", input, allocs)
		}
	}
}
