package wasm

import (
	"context"
	"testing"

	"bytebeat/pkg/numeric"
	"bytebeat/pkg/vm"
)

func instantiate(t *testing.T, code string) *Instance {
	t.Helper()

	bin, err := ToWasmBinary(code)
	if err != nil {
		t.Fatalf("ToWasmBinary(%q) error: %v", code, err)
	}
	inst, err := Instantiate(context.Background(), bin)
	if err != nil {
		t.Fatalf("Instantiate(%q) error: %v", code, err)
	}
	t.Cleanup(func() { inst.Close(context.Background()) })
	return inst
}

func TestInstanceAgreesWithInterpreter(t *testing.T) {
	programs := []string{
		"t",
		"t t 8 >> &",
		"t 5 * t 7 >> &",
		"(& (>> t 10) 42) t *",
		"t 7 % tt |",
		"t 3 < t 4 > =",
		"t 100 > t 2 * ^",
		"t t * -1 t >>> +",
		"t ~ 4294967295 &",
		"t 1 << tt drop",
	}
	counters := []float64{0, 1, 3, 255, 1000, 20001, 29901, 70000, 1 << 20}

	for _, code := range programs {
		inst := instantiate(t, code)
		for _, c := range counters {
			want, err := vm.Interpret(code, c, c/2)
			if err != nil {
				t.Fatalf("Interpret(%q) error: %v", code, err)
			}
			got, err := inst.Sample(c, c/2)
			if err != nil {
				t.Fatalf("Sample(%q, %v) error: %v", code, c, err)
			}
			if got != float64(numeric.ToInt32(want)) {
				t.Errorf("%q at t=%v: interpreter=%v (i32 %d), module=%v",
					code, c, want, numeric.ToInt32(want), got)
			}
		}
	}
}

func TestInstanceTrapIsError(t *testing.T) {
	inst := instantiate(t, "t 0 /")

	if _, err := inst.Sample(5, 0); err == nil {
		t.Errorf("expected division by zero to trap")
	}

	// the instance stays usable after a trap
	if _, err := inst.Sample(5, 0); err == nil {
		t.Errorf("expected the second call to trap as well")
	}
}

func TestInstantiateRejectsGarbage(t *testing.T) {
	if _, err := Instantiate(context.Background(), []byte("junk")); err == nil {
		t.Errorf("expected error")
	}
}
