package compiler

import (
	"bytebeat/pkg/diag"
	"bytebeat/pkg/opcode"
	"bytebeat/pkg/rpn"
)

// MaxConstants is the size of the constant pool addressable by OpConstant.
const MaxConstants = 1 << 16

type Compiler struct {
	instructions opcode.Instructions
	constants    []float64
	constIndex   map[float64]int

	// literals waiting to be emitted, kept back so pure words can fold them
	pending []float64
	folding bool
}

// Bytecode is a compiled RPN program. It is immutable once returned and may
// be shared by any number of machines.
type Bytecode struct {
	Instructions opcode.Instructions
	Constants    []float64
	Source       string
}

func New() *Compiler {
	return &Compiler{
		instructions: opcode.Instructions{},
		constants:    []float64{},
		constIndex:   map[float64]int{},
		folding:      true,
	}
}

// Compile desugars and validates code and appends its instructions.
func (c *Compiler) Compile(code string) error {
	toks, err := rpn.Tokens(code)
	if err != nil {
		return err
	}

	if !foldSafe(toks) {
		c.folding = false
	}

	for _, tok := range toks {
		if v, ok := rpn.ParseLiteral(tok); ok {
			c.pending = append(c.pending, v)
			continue
		}

		op, ok := opcode.FromToken(tok)
		if !ok {
			return diag.BadToken(diag.Syntax, tok)
		}
		if c.folding && c.fold(op) {
			continue
		}
		if err := c.flush(); err != nil {
			return err
		}
		c.emit(op)
	}

	return c.flush()
}

func (c *Compiler) Bytecode() *Bytecode {
	return &Bytecode{
		Instructions: c.instructions,
		Constants:    c.constants,
	}
}

func (c *Compiler) flush() error {
	for _, v := range c.pending {
		idx, err := c.addConstant(v)
		if err != nil {
			return err
		}
		c.emit(opcode.OpConstant, idx)
	}
	c.pending = c.pending[:0]
	return nil
}

func (c *Compiler) addConstant(v float64) (int, error) {
	// NaN never compares equal as a map key; literals cannot produce it
	if idx, ok := c.constIndex[v]; ok {
		return idx, nil
	}
	if len(c.constants) >= MaxConstants {
		return 0, diag.Errorf(diag.Encoding, "more than %d distinct literals", MaxConstants)
	}
	c.constants = append(c.constants, v)
	c.constIndex[v] = len(c.constants) - 1
	return len(c.constants) - 1, nil
}

func (c *Compiler) emit(op opcode.Opcode, operands ...int) int {
	ins := opcode.Make(op, operands...)
	return c.addInstruction(ins)
}

func (c *Compiler) addInstruction(ins []byte) int {
	posNewInstruction := len(c.instructions)
	c.instructions = append(c.instructions, ins...)
	return posNewInstruction
}

// Compile builds bytecode for code with a pooled compiler.
func Compile(code string) (*Bytecode, error) {
	c := GetCompiler()
	defer PutCompiler(c)

	if err := c.Compile(code); err != nil {
		return nil, err
	}

	// the pooled buffers are reused, so the result gets its own copies
	bc := &Bytecode{
		Instructions: append(opcode.Instructions(nil), c.instructions...),
		Constants:    append([]float64(nil), c.constants...),
		Source:       code,
	}
	return bc, nil
}
