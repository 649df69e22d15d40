package wasm

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"bytebeat/pkg/numeric"
)

// Instance is an instantiated bytebeat module with its own runtime. It is
// not safe for concurrent use.
type Instance struct {
	ctx     context.Context
	runtime wazero.Runtime
	fn      api.Function
	stack   []uint64
}

// Instantiate compiles and instantiates bin. ctx bounds the lifetime of
// every call made through the instance.
func Instantiate(ctx context.Context, bin []byte) (*Instance, error) {
	r := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfig().WithCloseOnContextDone(true))

	mod, err := r.Instantiate(ctx, bin)
	if err != nil {
		r.Close(ctx)
		return nil, fmt.Errorf("instantiate: %w", err)
	}

	fn := mod.ExportedFunction(ExportName)
	if fn == nil {
		r.Close(ctx)
		return nil, fmt.Errorf("module does not export %q", ExportName)
	}
	def := fn.Definition()
	if len(def.ParamTypes()) != 2 || len(def.ResultTypes()) != 1 {
		r.Close(ctx)
		return nil, fmt.Errorf("%q has signature %v -> %v, want (i32, i32) -> i32",
			ExportName, def.ParamTypes(), def.ResultTypes())
	}

	return &Instance{ctx: ctx, runtime: r, fn: fn, stack: make([]uint64, 2)}, nil
}

// Sample calls the exported function with the counters wrapped to i32 and
// returns the signed result. Traps, such as division by zero, are errors.
func (i *Instance) Sample(t, tt float64) (float64, error) {
	i.stack[0] = api.EncodeI32(numeric.ToInt32(t))
	i.stack[1] = api.EncodeI32(numeric.ToInt32(tt))
	if err := i.fn.CallWithStack(i.ctx, i.stack); err != nil {
		return 0, err
	}
	return float64(api.DecodeI32(i.stack[0])), nil
}

func (i *Instance) Close(ctx context.Context) error {
	return i.runtime.Close(ctx)
}
