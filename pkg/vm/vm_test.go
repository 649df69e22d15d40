package vm

import (
	"math"
	"testing"

	"bytebeat/pkg/compiler"
	"bytebeat/pkg/diag"
	"bytebeat/pkg/opcode"
	"bytebeat/pkg/rpn"
)

type vmTestCase struct {
	input    string
	t, tt    float64
	expected float64
}

func TestArithmetic(t *testing.T) {
	tests := []vmTestCase{
		{"1 1 +", 0, 0, 2},
		{"6 4 -", 0, 0, 2},
		{"12 3 /", 0, 0, 4},
		{"7 3 %", 0, 0, 1},
		{"-7 3 %", 0, 0, -1},
		{"(- 6 (* (+ 1 1) 2))", 0, 0, 2},
		{"2 (+ 3 (* (- 4 2) (/ 12 3))) +", 0, 0, 13},
		{"t 3 *", 3, 0, 9},
		{"t tt -", 10, 4, 6},
		{"1.5 2 *", 0, 0, 3},
	}

	runVmTests(t, tests)
}

func TestBitwise(t *testing.T) {
	tests := []vmTestCase{
		{"4294967295 1 &", 0, 0, 1},
		{"(& (>> t 10) 42) t * 255 &", 20001, 0, 66},
		{"t 10 >> 42 & t * 255 &", 29901, 0, 104},
		{"0 ~", 0, 0, -1},
		{"-1 28 >>>", 0, 0, 15},
		{"1 33 <<", 0, 0, 2},
		{"t t 8 >> &", 1000, 0, 1000 & (1000 >> 8)},
		{"5 3 ^", 0, 0, 6},
		{"5 3 |", 0, 0, 7},
	}

	runVmTests(t, tests)
}

func TestComparisons(t *testing.T) {
	tests := []vmTestCase{
		{"3 5 <", 0, 0, 0},
		{"5 3 <", 0, 0, 4294967295},
		{"3 5 >", 0, 0, 4294967295},
		{"5 3 >", 0, 0, 0},
		{"4 4 =", 0, 0, 4294967295},
		{"4 5 =", 0, 0, 0},
		{"0 7 &&", 0, 0, 0},
		{"3 7 &&", 0, 0, 7},
		{"0 7 ||", 0, 0, 7},
		{"3 7 ||", 0, 0, 3},
	}

	runVmTests(t, tests)
}

func TestStackWords(t *testing.T) {
	tests := []vmTestCase{
		{"2 3 swap -", 0, 0, 1},
		{"5 dup *", 0, 0, 25},
		{"1 2 drop", 0, 0, 1},
		{"10 20 30 1 pick", 0, 0, 20},
		{"10 20 30 0 pick", 0, 0, 30},
		{"10 20 30 1 99 put drop", 0, 0, 99},
		{"10 20 30 2 99 put drop drop", 0, 0, 99},
		{"10 20 30 2 99 put", 0, 0, 2},
	}

	runVmTests(t, tests)
}

func TestMath(t *testing.T) {
	tests := []vmTestCase{
		{"2 10 pow", 0, 0, 1024},
		{"PI", 0, 0, math.Pi},
		{"SQRT1_2", 0, 0, math.Sqrt2 / 2},
		{"-2.5 int", 0, 0, -2},
		{"2.5 round", 0, 0, 3},
		{"9 sqrt", 0, 0, 3},
		{"1 1 atan2", 0, 0, math.Atan2(1, 1)},
		{"3 -1 max", 0, 0, 3},
		{"1 0 /", 0, 0, math.Inf(1)},
		{"t sin", 0, 0, 0},
	}

	runVmTests(t, tests)

	got, err := Interpret("0 0 /", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(got) {
		t.Errorf("0 0 / wrong. expected=NaN, got=%v", got)
	}
}

func TestRandomIsUnitInterval(t *testing.T) {
	m := NewSeeded(7)
	for i := 0; i < 100; i++ {
		v, err := m.Interpret("random", 0, 0)
		if err != nil {
			t.Fatal(err)
		}
		if v < 0 || v >= 1 {
			t.Fatalf("random out of range: %v", v)
		}
	}
}

func TestEmptyStackWraps(t *testing.T) {
	m := New()
	v, err := m.Interpret("+", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0 {
		t.Errorf("popping an empty ring should read zeros, got=%v", v)
	}
	if m.Stack().Pointer() != StackSize-2 {
		t.Errorf("pointer should wrap. got=%d", m.Stack().Pointer())
	}
}

func TestMachineStatePersists(t *testing.T) {
	m := New()
	if _, err := m.Interpret("1 2", 0, 0); err != nil {
		t.Fatal(err)
	}
	v, err := m.Interpret("3 +", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if v != 4 {
		t.Errorf("state did not persist. expected=4, got=%v", v)
	}

	m.Reset()
	v, _ = m.Interpret("3 +", 0, 0)
	if v != 3 {
		t.Errorf("Reset did not clear the stack. expected=3, got=%v", v)
	}
}

func TestInterpretErrors(t *testing.T) {
	_, err := Interpret("t nope", 0, 0)
	if !diag.Is(err, diag.Syntax) {
		t.Errorf("expected syntax error, got=%v", err)
	}
}

func TestTrace(t *testing.T) {
	bc, err := compiler.Compile("t 2 *")
	if err != nil {
		t.Fatal(err)
	}

	var ops []opcode.Opcode
	var depths []int
	v := New().Trace(bc, 21, 0, func(ip int, op opcode.Opcode, s *Stack) {
		ops = append(ops, op)
		depths = append(depths, s.Pointer())
	})

	if v != 42 {
		t.Errorf("trace result wrong. expected=42, got=%v", v)
	}
	expected := []opcode.Opcode{opcode.OpT, opcode.OpConstant, opcode.OpMul}
	if len(ops) != len(expected) {
		t.Fatalf("wrong number of steps. expected=%d, got=%d", len(expected), len(ops))
	}
	for i := range expected {
		if ops[i] != expected[i] {
			t.Errorf("step %d wrong. expected=%s, got=%s", i, expected[i], ops[i])
		}
	}
	if depths[0] != 1 || depths[1] != 2 || depths[2] != 1 {
		t.Errorf("depths wrong. got=%v", depths)
	}
}

func TestGenerator(t *testing.T) {
	bc, err := compiler.Compile("t t 8 >> &")
	if err != nil {
		t.Fatal(err)
	}
	g := NewGenerator(bc)
	for _, tv := range []float64{0, 255, 256, 4096, 70000} {
		got, err := g.Sample(tv, 0)
		if err != nil {
			t.Fatal(err)
		}
		expected := float64(int32(tv) & (int32(tv) >> 8))
		if got != expected {
			t.Errorf("Sample(%v) wrong. expected=%v, got=%v", tv, expected, got)
		}
	}
}

func runVmTests(t *testing.T, tests []vmTestCase) {
	t.Helper()

	for _, tt := range tests {
		got, err := Interpret(tt.input, tt.t, tt.tt)
		if err != nil {
			t.Fatalf("Interpret(%q) error: %s", tt.input, err)
		}
		if got != tt.expected {
			t.Errorf("Interpret(%q) wrong. expected=%v, got=%v", tt.input, tt.expected, got)
		}
	}
}

// unfolded compiles code one instruction per token.
func unfolded(t *testing.T, code string) *compiler.Bytecode {
	t.Helper()
	toks, err := rpn.Tokens(code)
	if err != nil {
		t.Fatal(err)
	}
	bc := &compiler.Bytecode{Source: code}
	for _, tok := range toks {
		if v, ok := rpn.ParseLiteral(tok); ok {
			bc.Instructions = append(bc.Instructions, opcode.Make(opcode.OpConstant, len(bc.Constants))...)
			bc.Constants = append(bc.Constants, v)
			continue
		}
		op, ok := opcode.FromToken(tok)
		if !ok {
			t.Fatalf("bad token %q", tok)
		}
		bc.Instructions = append(bc.Instructions, opcode.Make(op)...)
	}
	return bc
}

func TestFoldingMatchesUnfoldedRun(t *testing.T) {
	programs := []string{
		"t 7 drop +",
		"t 3 dup * swap -",
		"1 2 + t *",
		"t 1 2 + drop",
		"2 3 swap - t 8 >> &",
		"t 5 3 < *",
		"t 4 2 - >> 1 2 put",
		"t 3 pick +",
	}

	for _, code := range programs {
		folded, err := compiler.Compile(code)
		if err != nil {
			t.Fatalf("%q: %v", code, err)
		}
		plain := unfolded(t, code)

		a, b := New(), New()
		for i := 0; i < 600; i++ {
			ts := float64(i)
			got, want := a.Run(folded, ts, ts), b.Run(plain, ts, ts)
			if got != want {
				t.Fatalf("%q at sample %d wrong. expected=%v, got=%v", code, i, want, got)
			}
		}
	}
}
