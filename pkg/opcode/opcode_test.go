package opcode

import "testing"

func TestMake(t *testing.T) {
	tests := []struct {
		op       Opcode
		operands []int
		expected []byte
	}{
		{OpConstant, []int{65534}, []byte{byte(OpConstant), 255, 254}},
		{OpAdd, []int{}, []byte{byte(OpAdd)}},
		{OpPick, []int{}, []byte{byte(OpPick)}},
	}

	for _, tt := range tests {
		instruction := Make(tt.op, tt.operands...)

		if len(instruction) != len(tt.expected) {
			t.Errorf("instruction has wrong length. want=%d, got=%d", len(tt.expected), len(instruction))
			continue
		}

		for i, b := range tt.expected {
			if instruction[i] != b {
				t.Errorf("wrong byte at pos %d. want=%d, got=%d", i, b, instruction[i])
			}
		}
	}
}

func TestReadOperands(t *testing.T) {
	def, err := Lookup(byte(OpConstant))
	if err != nil {
		t.Fatalf("definition not found: %q", err)
	}

	instruction := Make(OpConstant, 65535)
	operands, n := ReadOperands(def, instruction[1:])
	if n != 2 {
		t.Fatalf("n wrong. want=2, got=%d", n)
	}
	if operands[0] != 65535 {
		t.Errorf("operand wrong. want=65535, got=%d", operands[0])
	}
}

func TestInstructionsString(t *testing.T) {
	instructions := []Instructions{
		Make(OpT),
		Make(OpConstant, 1),
		Make(OpShr),
		Make(OpBitAnd),
	}

	expected := `0000 OpT
0001 OpConstant 1
0004 OpShr
0005 OpBitAnd
`

	concatted := Instructions{}
	for _, ins := range instructions {
		concatted = append(concatted, ins...)
	}

	if concatted.String() != expected {
		t.Errorf("instructions wrongly formatted.\nwant=%q\ngot=%q", expected, concatted.String())
	}
}

func TestFromToken(t *testing.T) {
	tests := map[string]Opcode{
		"t": OpT, "tt": OpTT, "+": OpAdd, ">>>": OpUshr, "SQRT1_2": OpSqrtHalf,
		"random": OpRandom, "atan2": OpAtan2, "put": OpPut,
	}

	for word, expected := range tests {
		op, ok := FromToken(word)
		if !ok || op != expected {
			t.Errorf("FromToken(%q) wrong. expected=%s, got=%s (%v)", word, expected, op, ok)
		}
	}

	for _, word := range []string{"", "42", "Math.sin", "!"} {
		if _, ok := FromToken(word); ok {
			t.Errorf("FromToken(%q) should fail", word)
		}
	}
}

func TestGlitchLetters(t *testing.T) {
	letters := "abcdefghjklmnopqrstu"
	expected := []string{"t", "put", "drop", "*", "/", "+", "-", "%", "<<", ">>", "&", "|",
		"^", "~", "dup", "pick", "swap", "<", ">", "="}

	for i := 0; i < len(letters); i++ {
		op, ok := FromGlitch(letters[i])
		if !ok {
			t.Fatalf("letter %q has no opcode", letters[i])
		}
		if definitions[op].Word != expected[i] {
			t.Errorf("letter %q wrong. expected=%q, got=%q", letters[i], expected[i], definitions[op].Word)
		}
	}

	if _, ok := FromGlitch('i'); ok {
		t.Errorf("letter 'i' must not be defined")
	}
}

func TestStackEffectsAreDefined(t *testing.T) {
	for op, def := range definitions {
		if def.Name != op.String() {
			t.Errorf("name mismatch for %d: %s", op, def.Name)
		}
		if def.Pops < 0 || def.Pushes < 0 || def.Pushes > 2 {
			t.Errorf("%s has odd stack effect %d -> %d", def.Name, def.Pops, def.Pushes)
		}
		if def.Wasm != nil && def.Wat == "" {
			t.Errorf("%s has bytes but no text form", def.Name)
		}
	}
}
