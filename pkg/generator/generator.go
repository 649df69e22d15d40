// Package generator compiles bytebeat sources for one of the three
// execution backends and builds sample generators from them.
package generator

import (
	"context"
	"fmt"
	"strings"

	"bytebeat/pkg/compiler"
	"bytebeat/pkg/eval"
	"bytebeat/pkg/vm"
	"bytebeat/pkg/wasm"
)

// Backend selects how a source is compiled and run.
type Backend string

const (
	// Expr compiles a JavaScript-style expression into closures.
	Expr Backend = "expr"
	// RPN compiles postfix code into bytecode for the stack machine.
	RPN Backend = "rpn"
	// Wasm compiles postfix code into a WebAssembly module run by wazero.
	Wasm Backend = "wasm"
)

// Backends lists the accepted backends.
var Backends = []Backend{Expr, RPN, Wasm}

func ParseBackend(s string) (Backend, error) {
	b := Backend(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Backends {
		if b == known {
			return b, nil
		}
	}
	return "", fmt.Errorf("unknown backend %q (want expr, rpn or wasm)", s)
}

// Generator produces one raw sample for the given counters. A Generator
// is owned by a single processor and is not safe for concurrent use.
type Generator interface {
	Sample(t, tt float64) (float64, error)
}

// Func adapts a plain function to Generator.
type Func func(t, tt float64) (float64, error)

func (f Func) Sample(t, tt float64) (float64, error) { return f(t, tt) }

// Closer is implemented by generators that hold runtime resources.
type Closer interface {
	Close() error
}

// Release frees the resources held by g, if any.
func Release(g Generator) error {
	if c, ok := g.(Closer); ok {
		return c.Close()
	}
	return nil
}

// Artifact is the immutable result of compiling a source once. It may be
// shared; every generator built from it has its own state.
type Artifact interface {
	Backend() Backend
	Source() string
	NewGenerator(ctx context.Context) (Generator, error)
}

// Compile compiles src for backend.
func Compile(backend Backend, src string) (Artifact, error) {
	switch backend {
	case Expr:
		prog, err := eval.Compile(src)
		if err != nil {
			return nil, err
		}
		return &exprArtifact{prog: prog}, nil
	case RPN:
		bc, err := compiler.Compile(src)
		if err != nil {
			return nil, err
		}
		return &rpnArtifact{bc: bc}, nil
	case Wasm:
		fn, err := wasm.Compile(src)
		if err != nil {
			return nil, err
		}
		return &wasmArtifact{fn: fn, bin: fn.Module()}, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}

// Validate reports why src does not compile for backend, or nil.
func Validate(backend Backend, src string) error {
	_, err := Compile(backend, src)
	return err
}

type exprArtifact struct {
	prog *eval.Program
}

func (a *exprArtifact) Backend() Backend { return Expr }
func (a *exprArtifact) Source() string   { return a.prog.Source }

func (a *exprArtifact) NewGenerator(context.Context) (Generator, error) {
	return a.prog.Generator(), nil
}

// Program exposes the compiled expression.
func (a *exprArtifact) Program() *eval.Program { return a.prog }

type rpnArtifact struct {
	bc *compiler.Bytecode
}

func (a *rpnArtifact) Backend() Backend { return RPN }
func (a *rpnArtifact) Source() string   { return a.bc.Source }

func (a *rpnArtifact) NewGenerator(context.Context) (Generator, error) {
	return vm.NewGenerator(a.bc), nil
}

// Bytecode exposes the compiled program.
func (a *rpnArtifact) Bytecode() *compiler.Bytecode { return a.bc }

type wasmArtifact struct {
	fn  *wasm.Function
	bin []byte
}

func (a *wasmArtifact) Backend() Backend { return Wasm }
func (a *wasmArtifact) Source() string   { return a.fn.Source }

// Binary returns the encoded module.
func (a *wasmArtifact) Binary() []byte { return a.bin }

func (a *wasmArtifact) NewGenerator(ctx context.Context) (Generator, error) {
	inst, err := wasm.Instantiate(ctx, a.bin)
	if err != nil {
		return nil, err
	}
	return &wasmGenerator{Instance: inst, ctx: ctx, unsigned: a.fn.Unsigned}, nil
}

type wasmGenerator struct {
	*wasm.Instance
	ctx      context.Context
	unsigned bool
}

// Sample reads flag and >>> results as uint32, as the interpreter does.
func (g *wasmGenerator) Sample(t, tt float64) (float64, error) {
	v, err := g.Instance.Sample(t, tt)
	if err != nil || !g.unsigned {
		return v, err
	}
	return float64(uint32(int32(v))), nil
}

func (g *wasmGenerator) Close() error {
	return g.Instance.Close(g.ctx)
}
