package opcode

import (
	"bytes"
	"fmt"
	"sort"
)

type Opcode byte

type Instructions []byte

const (
	// OpConstant pushes a literal from the constant pool
	OpConstant Opcode = iota
	// OpT pushes the sample counter
	OpT
	// OpTT pushes the tempo-synced counter
	OpTT

	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod

	OpBitAnd
	OpBitOr
	OpBitXor
	OpBitNot
	OpShl
	OpShr
	OpUshr

	OpLess
	OpGreater
	OpEqual
	OpAnd
	OpOr

	OpDup
	OpDrop
	OpSwap
	OpPick
	OpPut

	// one-argument math, applied to the top of the stack
	OpInt
	OpAbs
	OpFloor
	OpRound
	OpSqrt
	OpCeil
	OpSin
	OpCos
	OpTan
	OpSinh
	OpCosh
	OpTanh
	OpAsin
	OpAcos
	OpAsinh
	OpAcosh
	OpAtan
	OpAtanh
	OpCbrt
	OpSign
	OpTrunc

	// two-argument math: pop x, pop y, push f(y, x)
	OpLog
	OpExp
	OpMin
	OpMax
	OpPow
	OpAtan2

	OpE
	OpLn2
	OpLn10
	OpLog10E
	OpPi
	OpSqrtHalf
	OpSqrt2
	OpRandom
)

// Definition describes one RPN word: how it is spelled, how it moves the
// stack, and how it is encoded in the Glitch and WebAssembly formats.
type Definition struct {
	Name          string
	Word          string
	LongName      string
	Glitch        byte   // 0 when the word has no Glitch letter
	Wasm          []byte // nil when the word has no i32 encoding
	Wat           string
	Pops          int
	Pushes        int
	Description   string
	OperandWidths []int
}

func binary(name, word, long string, glitch byte, wasm []byte, wat, desc string) *Definition {
	return &Definition{Name: name, Word: word, LongName: long, Glitch: glitch, Wasm: wasm,
		Wat: wat, Pops: 2, Pushes: 1, Description: desc, OperandWidths: []int{}}
}

func unary(name, word, desc string) *Definition {
	return &Definition{Name: name, Word: word, LongName: word, Pops: 1, Pushes: 1,
		Description: desc, OperandWidths: []int{}}
}

func constant(name, word, desc string) *Definition {
	return &Definition{Name: name, Word: word, LongName: word, Pushes: 1,
		Description: desc, OperandWidths: []int{}}
}

var definitions = map[Opcode]*Definition{
	OpConstant: {Name: "OpConstant", LongName: "number", Wat: "i32.const", Pushes: 1,
		Description: "Pushes the given number to the stack.", OperandWidths: []int{2}},
	OpT: {Name: "OpT", Word: "t", LongName: "t", Glitch: 'a', Wasm: []byte{0x20, 0x00},
		Wat: "local.get 0", Pushes: 1, Description: "Pushes the first parameter (t) onto the stack.",
		OperandWidths: []int{}},
	OpTT: {Name: "OpTT", Word: "tt", LongName: "tt", Wasm: []byte{0x20, 0x01},
		Wat: "local.get 1", Pushes: 1, Description: "Pushes the second parameter (tempo-synced t) onto the stack.",
		OperandWidths: []int{}},

	OpAdd: binary("OpAdd", "+", "add", 'f', []byte{0x6a}, "i32.add",
		"Pops two numbers from the stack and adds them together."),
	OpSub: binary("OpSub", "-", "subtract", 'g', []byte{0x6b}, "i32.sub",
		"Pops two numbers from the stack and subtracts the first from the second."),
	OpMul: binary("OpMul", "*", "multiply", 'd', []byte{0x6c}, "i32.mul",
		"Pops two numbers from the stack and multiplies them."),
	OpDiv: binary("OpDiv", "/", "divide", 'e', []byte{0x6d}, "i32.div_s",
		"Pops two numbers from the stack and divides the second by the first."),
	OpMod: binary("OpMod", "%", "modulo", 'h', []byte{0x6f}, "i32.rem_s",
		"Pops two numbers and pushes the remainder of dividing the second by the first."),

	OpBitAnd: binary("OpBitAnd", "&", "bitwiseAnd", 'l', []byte{0x71}, "i32.and",
		"Pops two numbers and pushes their bitwise AND."),
	OpBitOr: binary("OpBitOr", "|", "bitwiseOr", 'm', []byte{0x72}, "i32.or",
		"Pops two numbers and pushes their bitwise OR."),
	OpBitXor: binary("OpBitXor", "^", "bitwiseXor", 'n', []byte{0x73}, "i32.xor",
		"Pops two numbers and pushes their bitwise XOR."),
	OpBitNot: {Name: "OpBitNot", Word: "~", LongName: "bitwiseInvert", Glitch: 'o',
		Wasm: []byte{0x41, 0x7f, 0x73}, Wat: "i32.const -1\ni32.xor", Pops: 1, Pushes: 1,
		Description: "Pops a number and pushes its bitwise inversion.", OperandWidths: []int{}},
	OpShl: binary("OpShl", "<<", "shiftLeft", 'j', []byte{0x74}, "i32.shl",
		"Pops a number and shifts the next number left by that number of bits."),
	OpShr: binary("OpShr", ">>", "shiftRight", 'k', []byte{0x75}, "i32.shr_s",
		"Pops a number and shifts the next number right by that amount, maintaining sign."),
	OpUshr: binary("OpUshr", ">>>", "shiftRightUnsigned", 0, []byte{0x76}, "i32.shr_u",
		"Pops a number and shifts the next number right by that amount, left-padding with zeroes."),

	// x is the first value popped; the i32 forms compare the operands in
	// stack order, so the relation is mirrored and the 0/1 result scaled to -1.
	OpLess: binary("OpLess", "<", "lessThan", 's', []byte{0x4a, 0x41, 0x7f, 0x6c},
		"i32.gt_s\ni32.const -1\ni32.mul",
		"Pops two numbers and pushes 0xffffffff if the first is less than the second, otherwise 0."),
	OpGreater: binary("OpGreater", ">", "greaterThan", 't', []byte{0x48, 0x41, 0x7f, 0x6c},
		"i32.lt_s\ni32.const -1\ni32.mul",
		"Pops two numbers and pushes 0xffffffff if the first is greater than the second, otherwise 0."),
	OpEqual: binary("OpEqual", "=", "equal", 'u', []byte{0x46, 0x41, 0x7f, 0x6c},
		"i32.eq\ni32.const -1\ni32.mul",
		"Pops two numbers and pushes 0xffffffff if they are equal, otherwise 0."),
	OpAnd: binary("OpAnd", "&&", "and", 0, nil, "",
		"Pops x and y and pushes y if it is falsy, otherwise x."),
	OpOr: binary("OpOr", "||", "or", 0, nil, "",
		"Pops x and y and pushes y if it is truthy, otherwise x."),

	OpDup: {Name: "OpDup", Word: "dup", LongName: "dup", Glitch: 'p', Pops: 1, Pushes: 2,
		Description: "Pops a number from the stack and pushes it back twice.", OperandWidths: []int{}},
	OpDrop: {Name: "OpDrop", Word: "drop", LongName: "drop", Glitch: 'c', Wasm: []byte{0x1a},
		Wat: "drop", Pops: 1, Description: "Pops a number and discards it.", OperandWidths: []int{}},
	OpSwap: {Name: "OpSwap", Word: "swap", LongName: "swap", Glitch: 'r', Pops: 2, Pushes: 2,
		Description: "Exchanges the top two numbers.", OperandWidths: []int{}},
	OpPick: {Name: "OpPick", Word: "pick", LongName: "pick", Glitch: 'q', Pops: 1, Pushes: 1,
		Description: "Pops n and pushes a copy of the value n slots below the top.", OperandWidths: []int{}},
	OpPut: {Name: "OpPut", Word: "put", LongName: "put", Glitch: 'b', Pops: 2, Pushes: 1,
		Description: "Pops x and n, stores x n slots below the top and pushes n back.", OperandWidths: []int{}},

	OpInt:   unary("OpInt", "int", "Truncates the top number toward zero."),
	OpAbs:   unary("OpAbs", "abs", "Absolute value of the top number."),
	OpFloor: unary("OpFloor", "floor", "Rounds the top number down."),
	OpRound: unary("OpRound", "round", "Rounds the top number to the nearest integer, halves up."),
	OpSqrt:  unary("OpSqrt", "sqrt", "Square root of the top number."),
	OpCeil:  unary("OpCeil", "ceil", "Rounds the top number up."),
	OpSin:   unary("OpSin", "sin", "Sine of the top number."),
	OpCos:   unary("OpCos", "cos", "Cosine of the top number."),
	OpTan:   unary("OpTan", "tan", "Tangent of the top number."),
	OpSinh:  unary("OpSinh", "sinh", "Hyperbolic sine of the top number."),
	OpCosh:  unary("OpCosh", "cosh", "Hyperbolic cosine of the top number."),
	OpTanh:  unary("OpTanh", "tanh", "Hyperbolic tangent of the top number."),
	OpAsin:  unary("OpAsin", "asin", "Arcsine of the top number."),
	OpAcos:  unary("OpAcos", "acos", "Arccosine of the top number."),
	OpAsinh: unary("OpAsinh", "asinh", "Inverse hyperbolic sine of the top number."),
	OpAcosh: unary("OpAcosh", "acosh", "Inverse hyperbolic cosine of the top number."),
	OpAtan:  unary("OpAtan", "atan", "Arctangent of the top number."),
	OpAtanh: unary("OpAtanh", "atanh", "Inverse hyperbolic tangent of the top number."),
	OpCbrt:  unary("OpCbrt", "cbrt", "Cube root of the top number."),
	OpSign:  unary("OpSign", "sign", "Sign of the top number: -1, 0 or 1."),
	OpTrunc: unary("OpTrunc", "trunc", "Drops the fractional part of the top number."),

	OpLog:   binary("OpLog", "log", "log", 0, nil, "", "Pops x and y and pushes the natural logarithm of y."),
	OpExp:   binary("OpExp", "exp", "exp", 0, nil, "", "Pops x and y and pushes e raised to y."),
	OpMin:   binary("OpMin", "min", "min", 0, nil, "", "Pops two numbers and pushes the smaller."),
	OpMax:   binary("OpMax", "max", "max", 0, nil, "", "Pops two numbers and pushes the larger."),
	OpPow:   binary("OpPow", "pow", "pow", 0, nil, "", "Pops x and y and pushes y raised to x."),
	OpAtan2: binary("OpAtan2", "atan2", "atan2", 0, nil, "", "Pops x and y and pushes the angle of the point (x, y)."),

	OpE:        constant("OpE", "E", "Pushes Euler's number."),
	OpLn2:      constant("OpLn2", "LN2", "Pushes the natural logarithm of 2."),
	OpLn10:     constant("OpLn10", "LN10", "Pushes the natural logarithm of 10."),
	OpLog10E:   constant("OpLog10E", "LOG10E", "Pushes the base-10 logarithm of e."),
	OpPi:       constant("OpPi", "PI", "Pushes pi."),
	OpSqrtHalf: constant("OpSqrtHalf", "SQRT1_2", "Pushes the square root of one half."),
	OpSqrt2:    constant("OpSqrt2", "SQRT2", "Pushes the square root of 2."),
	OpRandom:   constant("OpRandom", "random", "Pushes a uniform random number in [0, 1)."),
}

var (
	words   = map[string]Opcode{}
	letters = map[byte]Opcode{}
)

func init() {
	for op, def := range definitions {
		if def.Word != "" {
			words[def.Word] = op
		}
		if def.Glitch != 0 {
			letters[def.Glitch] = op
		}
	}
}

func Lookup(op byte) (*Definition, error) {
	def, ok := definitions[Opcode(op)]
	if !ok {
		return nil, fmt.Errorf("opcode %d undefined", op)
	}
	return def, nil
}

// FromToken resolves an RPN word. Numeric literals are not words.
func FromToken(word string) (Opcode, bool) {
	op, ok := words[word]
	return op, ok
}

// FromGlitch resolves a Glitch letter.
func FromGlitch(letter byte) (Opcode, bool) {
	op, ok := letters[letter]
	return op, ok
}

// Words lists every RPN word, sorted.
func Words() []string {
	out := make([]string, 0, len(words))
	for w := range words {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

func Make(op Opcode, operands ...int) []byte {
	def, ok := definitions[op]
	if !ok {
		return []byte{}
	}

	instructionLen := 1
	for _, w := range def.OperandWidths {
		instructionLen += w
	}

	instruction := make([]byte, instructionLen)
	instruction[0] = byte(op)

	offset := 1
	for i, o := range operands {
		width := def.OperandWidths[i]
		switch width {
		case 2:
			instruction[offset] = byte(o >> 8)
			instruction[offset+1] = byte(o)
		case 1:
			instruction[offset] = byte(o)
		}
		offset += width
	}

	return instruction
}

func ReadOperands(def *Definition, ins []byte) ([]int, int) {
	operands := make([]int, len(def.OperandWidths))
	offset := 0

	for i, width := range def.OperandWidths {
		switch width {
		case 2:
			operands[i] = int(ReadUint16(ins[offset:]))
		case 1:
			operands[i] = int(ins[offset])
		}
		offset += width
	}

	return operands, offset
}

func ReadUint16(ins []byte) uint16 {
	return uint16(ins[0])<<8 | uint16(ins[1])
}

func (ins Opcode) String() string {
	def, ok := definitions[ins]
	if !ok {
		return fmt.Sprintf("Opcode(%d)", ins)
	}
	return def.Name
}

// String disassembles the instructions one per line, prefixed with offsets.
func (ins Instructions) String() string {
	var out bytes.Buffer

	i := 0
	for i < len(ins) {
		def, err := Lookup(ins[i])
		if err != nil {
			fmt.Fprintf(&out, "ERROR: %s\n", err)
			i++
			continue
		}

		operands, read := ReadOperands(def, ins[i+1:])
		fmt.Fprintf(&out, "%04d %s", i, def.Name)
		for _, o := range operands {
			fmt.Fprintf(&out, " %d", o)
		}
		out.WriteByte('\n')

		i += 1 + read
	}

	return out.String()
}
