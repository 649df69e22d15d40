package vm

import (
	"math/rand"

	"bytebeat/pkg/compiler"
	"bytebeat/pkg/numeric"
	"bytebeat/pkg/opcode"
)

const StackSize = 256

// Stack is a ring of StackSize slots. Push and pop never fail: the pointer
// wraps, and a pop from an empty stack returns whatever the slot holds.
type Stack struct {
	data    [StackSize]float64
	pointer uint8
}

func (s *Stack) Push(v float64) {
	s.data[s.pointer] = v
	s.pointer++
}

func (s *Stack) Pop() float64 {
	s.pointer--
	return s.data[s.pointer]
}

// Pointer is the index of the next slot to be written.
func (s *Stack) Pointer() int { return int(s.pointer) }

// Slot returns the value stored at index i mod StackSize.
func (s *Stack) Slot(i int) float64 { return s.data[uint8(i)] }

func (s *Stack) Reset() {
	s.data = [StackSize]float64{}
	s.pointer = 0
}

// Machine executes compiled RPN bytecode. Its stack persists between runs
// until Reset; a Machine must not be shared between goroutines.
type Machine struct {
	stack Stack
	rand  *rand.Rand
}

func New() *Machine {
	return &Machine{rand: rand.New(rand.NewSource(rand.Int63()))}
}

// NewSeeded returns a machine whose random word is reproducible.
func NewSeeded(seed int64) *Machine {
	return &Machine{rand: rand.New(rand.NewSource(seed))}
}

func (m *Machine) Stack() *Stack { return &m.stack }

// Reset clears every slot and rewinds the pointer.
func (m *Machine) Reset() {
	m.stack.Reset()
}

// Run executes bc with the given counters and returns the value on top of
// the stack afterwards, popping it.
func (m *Machine) Run(bc *compiler.Bytecode, t, tt float64) float64 {
	return m.run(bc, t, tt, nil)
}

// Step is called by Trace after every instruction.
type Step func(ip int, op opcode.Opcode, s *Stack)

// Trace runs bc like Run, reporting each executed instruction to step.
func (m *Machine) Trace(bc *compiler.Bytecode, t, tt float64, step Step) float64 {
	return m.run(bc, t, tt, step)
}

// slot wraps a computed stack index the way the 32-bit masking of the
// pointer arithmetic does.
func slot(f float64) uint8 {
	return uint8(numeric.ToInt32(f) & 0xff)
}

func (m *Machine) run(bc *compiler.Bytecode, t, tt float64, step Step) float64 {
	ins := bc.Instructions
	constants := bc.Constants

	// Cache the ring in locals for the loop
	data := &m.stack.data
	sp := m.stack.pointer

	for ip := 0; ip < len(ins); ip++ {
		start := ip
		op := opcode.Opcode(ins[ip])

		switch op {
		case opcode.OpConstant:
			constIndex := int(opcode.ReadUint16(ins[ip+1:]))
			ip += 2
			data[sp] = constants[constIndex]
			sp++

		case opcode.OpT:
			data[sp] = t
			sp++

		case opcode.OpTT:
			data[sp] = tt
			sp++

		case opcode.OpAdd:
			sp--
			x := data[sp]
			data[sp-1] += x

		case opcode.OpSub:
			sp--
			x := data[sp]
			data[sp-1] -= x

		case opcode.OpMul:
			sp--
			x := data[sp]
			data[sp-1] *= x

		case opcode.OpDup:
			data[sp] = data[sp-1]
			sp++

		case opcode.OpDrop:
			sp--

		case opcode.OpSwap:
			data[sp-1], data[sp-2] = data[sp-2], data[sp-1]

		case opcode.OpPick:
			sp--
			n := data[sp]
			data[sp] = data[slot(float64(sp)-n-1)]
			sp++

		case opcode.OpPut:
			sp--
			x := data[sp]
			sp--
			n := data[sp]
			data[slot(float64(sp)-n)] = x
			data[sp] = n
			sp++

		case opcode.OpRandom:
			data[sp] = m.rand.Float64()
			sp++

		default:
			if v, ok := opcode.Constant(op); ok {
				data[sp] = v
				sp++
				break
			}
			x := data[sp-1]
			if v, ok := opcode.Unary(op, x); ok {
				data[sp-1] = v
				break
			}
			if v, ok := opcode.Binary(op, data[sp-2], x); ok {
				sp--
				data[sp-1] = v
			}
		}

		if step != nil {
			m.stack.pointer = sp
			step(start, op, &m.stack)
		}
	}

	sp--
	m.stack.pointer = sp
	return data[sp]
}
