// Package wasm compiles RPN programs into a WebAssembly module exporting a
// single function bytebeat(t, tt i32) i32, and runs such modules.
package wasm

import (
	"fmt"
	"strconv"
	"strings"

	"bytebeat/pkg/diag"
	"bytebeat/pkg/leb128"
	"bytebeat/pkg/opcode"
	"bytebeat/pkg/rpn"
)

const (
	opEnd      = 0x0b
	opDrop     = 0x1a
	opLocalGet = 0x20
	opI32Const = 0x41
)

// ExportName is the name under which the generated function is exported.
const ExportName = "bytebeat"

// Function is the compiled body of the bytebeat function.
type Function struct {
	Code   []byte   // instructions, without the trailing end
	Text   []string // one WAT instruction per line
	Source string

	// Unsigned is set when the result comes from a comparison or >>>.
	// Those words yield unsigned 32-bit values in the interpreter, so the
	// i32 result should be read as uint32.
	Unsigned bool
}

// Compile translates code into i32 instructions. Words without an i32
// form, fractional literals and programs that do not leave exactly one
// value are reported as encoding errors.
func Compile(code string) (*Function, error) {
	toks, err := rpn.Tokens(code)
	if err != nil {
		return nil, err
	}

	fn := &Function{Source: code}
	depth := 0
	var unsigned []bool
	for _, tok := range toks {
		if rpn.IsLiteral(tok) {
			v, err := literal(tok)
			if err != nil {
				return nil, err
			}
			fn.Code = append(fn.Code, opI32Const)
			fn.Code = leb128.AppendSigned(fn.Code, int64(v))
			fn.Text = append(fn.Text, fmt.Sprintf("i32.const %d", v))
			depth++
			unsigned = append(unsigned, false)
			continue
		}

		op, ok := opcode.FromToken(tok)
		if !ok {
			return nil, diag.BadToken(diag.Syntax, tok)
		}
		def, _ := opcode.Lookup(byte(op))
		if def.Wasm == nil {
			return nil, &diag.Error{Kind: diag.Encoding, Token: tok, Pos: -1,
				Msg: "no i32 instruction for word"}
		}
		if depth < def.Pops {
			return nil, &diag.Error{Kind: diag.Encoding, Token: tok, Pos: -1,
				Msg: "stack underflow at word"}
		}
		depth += def.Pushes - def.Pops
		unsigned = trackSign(unsigned, op, def)

		fn.Code = append(fn.Code, def.Wasm...)
		fn.Text = append(fn.Text, strings.Split(def.Wat, "\n")...)
	}

	if depth != 1 {
		return nil, diag.Errorf(diag.Encoding, "program leaves %d values on the stack, want 1", depth)
	}
	fn.Unsigned = unsigned[0]
	return fn, nil
}

// trackSign applies op to a stack recording which values are unsigned.
// Every word with an i32 form consumes its operands, so only the word
// itself decides the sign of what it pushes.
func trackSign(s []bool, op opcode.Opcode, def *opcode.Definition) []bool {
	u := op == opcode.OpLess || op == opcode.OpGreater || op == opcode.OpEqual || op == opcode.OpUshr
	s = s[:len(s)-def.Pops]
	for i := 0; i < def.Pushes; i++ {
		s = append(s, u)
	}
	return s
}

// literal wraps an integer literal to 32 bits, as i32.const interprets it.
func literal(tok string) (int32, error) {
	if strings.Contains(tok, ".") {
		return 0, &diag.Error{Kind: diag.Encoding, Token: tok, Pos: -1,
			Msg: "fractional literal has no i32 encoding"}
	}
	v, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return 0, &diag.Error{Kind: diag.Encoding, Token: tok, Pos: -1,
			Msg: "literal out of range"}
	}
	return int32(uint32(v)), nil
}

// ToWasmBinary compiles code into a complete binary module.
func ToWasmBinary(code string) ([]byte, error) {
	fn, err := Compile(code)
	if err != nil {
		return nil, err
	}
	return fn.Module(), nil
}

// ToWat compiles code into the text form of the module.
func ToWat(code string) (string, error) {
	fn, err := Compile(code)
	if err != nil {
		return "", err
	}
	return fn.Wat(), nil
}

func (fn *Function) Wat() string {
	var b strings.Builder
	b.WriteString("(module\n")
	fmt.Fprintf(&b, "  (func $%s (export %q) (param $t i32) (param $tt i32) (result i32)", ExportName, ExportName)
	for _, line := range fn.Text {
		b.WriteString("\n    ")
		b.WriteString(line)
	}
	b.WriteString("))\n")
	return b.String()
}
