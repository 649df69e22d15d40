package compiler

import (
	"math"

	"bytebeat/pkg/opcode"
	"bytebeat/pkg/rpn"
)

// foldSafe reports whether folding leaves every slot the program can read
// unchanged. The stack persists between runs, so a program that pops
// below its entry depth, or whose result pop does, reads slots written by
// earlier runs; folding elides some of those writes. pick and put address
// slots directly.
func foldSafe(toks []string) bool {
	depth := 0
	for _, tok := range toks {
		if rpn.IsLiteral(tok) {
			depth++
			continue
		}
		op, ok := opcode.FromToken(tok)
		if !ok || op == opcode.OpPick || op == opcode.OpPut {
			return false
		}
		def, err := opcode.Lookup(byte(op))
		if err != nil || depth < def.Pops {
			return false
		}
		depth += def.Pushes - def.Pops
	}
	return depth >= 1
}

// fold evaluates op at compile time when every operand it needs is a
// pending literal, replacing them with the result. It reports whether op
// was consumed.
func (c *Compiler) fold(op opcode.Opcode) bool {
	n := len(c.pending)

	if v, ok := opcode.Constant(op); ok {
		c.pending = append(c.pending, v)
		return true
	}

	if n >= 1 {
		if v, ok := opcode.Unary(op, c.pending[n-1]); ok {
			if !foldable(v) {
				return false
			}
			c.pending[n-1] = v
			return true
		}
	}

	if n >= 2 {
		if v, ok := opcode.Binary(op, c.pending[n-2], c.pending[n-1]); ok {
			if !foldable(v) {
				return false
			}
			c.pending = c.pending[:n-1]
			c.pending[n-2] = v
			return true
		}
	}

	switch op {
	case opcode.OpDup:
		if n >= 1 {
			c.pending = append(c.pending, c.pending[n-1])
			return true
		}
	case opcode.OpSwap:
		if n >= 2 {
			c.pending[n-1], c.pending[n-2] = c.pending[n-2], c.pending[n-1]
			return true
		}
	case opcode.OpDrop:
		if n >= 1 {
			c.pending = c.pending[:n-1]
			return true
		}
	}

	return false
}

// NaN cannot be deduplicated in the constant pool; leave such words to run.
func foldable(v float64) bool {
	return !math.IsNaN(v)
}
