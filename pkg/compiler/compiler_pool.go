package compiler

import "sync"

// Compiler pool for reusing compiler instances across compilations
var compilerPool = sync.Pool{
	New: func() interface{} {
		return New()
	},
}

// GetCompiler retrieves a compiler from the pool
func GetCompiler() *Compiler {
	return compilerPool.Get().(*Compiler)
}

// PutCompiler returns a compiler to the pool after use
func PutCompiler(c *Compiler) {
	c.instructions = c.instructions[:0]
	c.constants = c.constants[:0]
	c.pending = c.pending[:0]
	c.folding = true
	for k := range c.constIndex {
		delete(c.constIndex, k)
	}

	compilerPool.Put(c)
}
