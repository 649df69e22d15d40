package numeric

import (
	"math"
	"testing"
)

func TestToInt32(t *testing.T) {
	tests := []struct {
		input    float64
		expected int32
	}{
		{0, 0},
		{1.9, 1},
		{-1.9, -1},
		{4294967295, -1},
		{4294967296, 0},
		{2147483648, -2147483648},
		{-2147483649, 2147483647},
		{math.NaN(), 0},
		{math.Inf(1), 0},
	}

	for _, tt := range tests {
		if got := ToInt32(tt.input); got != tt.expected {
			t.Errorf("ToInt32(%v) wrong. expected=%d, got=%d", tt.input, tt.expected, got)
		}
	}
}

func TestBitwise(t *testing.T) {
	tests := []struct {
		name     string
		got      float64
		expected float64
	}{
		{"and wraps", And(4294967295, 1), 1},
		{"or", Or(8, 1), 9},
		{"xor negative", Xor(-1, 0), -1},
		{"not", Not(0), -1},
		{"shl count masked", Shl(1, 33), 2},
		{"shl overflow", Shl(1, 31), -2147483648},
		{"shr keeps sign", Shr(-8, 1), -4},
		{"ushr zero fill", Ushr(-1, 0), 4294967295},
		{"ushr", Ushr(-8, 28), 15},
	}

	for _, tt := range tests {
		if tt.got != tt.expected {
			t.Errorf("%s wrong. expected=%v, got=%v", tt.name, tt.expected, tt.got)
		}
	}
}

func TestModTruncates(t *testing.T) {
	if got := Mod(-1, 256); got != -1 {
		t.Errorf("Mod(-1, 256) wrong. expected=-1, got=%v", got)
	}
	if got := Mod(257, 256); got != 1 {
		t.Errorf("Mod(257, 256) wrong. expected=1, got=%v", got)
	}
	if got := Mod(1, 0); !math.IsNaN(got) {
		t.Errorf("Mod(1, 0) wrong. expected=NaN, got=%v", got)
	}
}

func TestRound(t *testing.T) {
	tests := map[float64]float64{2.5: 3, -2.5: -2, 2.4: 2, -0.2: 0}
	for in, expected := range tests {
		if got := Round(in); got != expected {
			t.Errorf("Round(%v) wrong. expected=%v, got=%v", in, expected, got)
		}
	}
}

func TestFormatAndParse(t *testing.T) {
	if got := Format(42); got != "42" {
		t.Errorf("Format(42) wrong. got=%q", got)
	}
	if got := Format(0.5); got != "0.5" {
		t.Errorf("Format(0.5) wrong. got=%q", got)
	}
	if got := Format(1e21); got != "1e+21" {
		t.Errorf("Format(1e21) wrong. got=%q", got)
	}
	if got := Parse(" 12 "); got != 12 {
		t.Errorf("Parse(12) wrong. got=%v", got)
	}
	if got := Parse("0x10"); got != 16 {
		t.Errorf("Parse(0x10) wrong. got=%v", got)
	}
	if got := Parse(""); got != 0 {
		t.Errorf("Parse(\"\") wrong. got=%v", got)
	}
	if got := Parse("inf"); !math.IsNaN(got) {
		t.Errorf("Parse(inf) wrong. got=%v", got)
	}
}
