package vm

import (
	"bytebeat/pkg/compiler"
)

// Interpret compiles code and runs it once on m. The stack keeps whatever
// the program leaves behind; call Reset first for an isolated run.
func (m *Machine) Interpret(code string, t, tt float64) (float64, error) {
	bc, err := compiler.Compile(code)
	if err != nil {
		return 0, err
	}
	return m.Run(bc, t, tt), nil
}

// Interpret runs code once on a fresh machine.
func Interpret(code string, t, tt float64) (float64, error) {
	return New().Interpret(code, t, tt)
}

// Generator binds bytecode to an exclusively owned machine. The stack is
// not cleared between samples, so programs may keep state with put and pick.
type Generator struct {
	bytecode *compiler.Bytecode
	machine  *Machine
}

func NewGenerator(bc *compiler.Bytecode) *Generator {
	return &Generator{bytecode: bc, machine: New()}
}

func (g *Generator) Sample(t, tt float64) (float64, error) {
	return g.machine.Run(g.bytecode, t, tt), nil
}

// Reset clears the generator's stack.
func (g *Generator) Reset() {
	g.machine.Reset()
}
