package benchmarks

import (
	"testing"

	"bytebeat/pkg/compiler"
	"bytebeat/pkg/eval"
	"bytebeat/pkg/vm"
)

func native(t int32) float64 {
	return float64(t) * float64((t>>12|t>>8)&63&(t>>4))
}

// Go native benchmark for comparison
func BenchmarkGoNative(b *testing.B) {
	var v float64
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		v = native(int32(i))
	}
	result = v
}

func TestSourcesAgree(t *testing.T) {
	prog, err := eval.Compile(exprSource)
	if err != nil {
		t.Fatal(err)
	}
	bytecode, err := compiler.Compile(rpnSource)
	if err != nil {
		t.Fatal(err)
	}
	machine := vm.New()

	for _, n := range []int32{0, 1, 4096, 65535, 123456} {
		expected := native(n)
		if got := prog.Eval(float64(n), 0).Num; got != expected {
			t.Errorf("expression at t=%d wrong. expected=%v, got=%v", n, expected, got)
		}
		if got := machine.Run(bytecode, float64(n), 0); got != expected {
			t.Errorf("vm at t=%d wrong. expected=%v, got=%v", n, expected, got)
		}
	}
}
