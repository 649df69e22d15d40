package main

import (
	"fmt"
	"os"
	"strings"

	"bytebeat/pkg/compiler"
	"bytebeat/pkg/numeric"
	"bytebeat/pkg/opcode"
	"bytebeat/pkg/vm"
)

func main() {
	input := "t t 8 >> &"
	if len(os.Args) > 1 {
		input = strings.Join(os.Args[1:], " ")
	}

	bytecode, err := compiler.Compile(input)
	if err != nil {
		panic(err)
	}

	fmt.Printf("Constants: %d\n", len(bytecode.Constants))
	for i, c := range bytecode.Constants {
		fmt.Printf("  [%d] = %s\n", i, numeric.Format(c))
	}

	fmt.Printf("\nInstructions (%d bytes):\n", len(bytecode.Instructions))
	for i := 0; i < len(bytecode.Instructions); i++ {
		fmt.Printf("%02d: %02x\n", i, bytecode.Instructions[i])
	}

	machine := vm.New()
	for _, t := range []float64{0, 1, 256, 1000} {
		fmt.Printf("\nt = %s\n", numeric.Format(t))
		result := machine.Trace(bytecode, t, 0, func(ip int, op opcode.Opcode, s *vm.Stack) {
			sp := s.Pointer()
			fmt.Printf("  %04d %-12s sp=%d top=%s\n", ip, op, sp, numeric.Format(s.Slot(sp-1)))
		})
		fmt.Printf("Result: %s\n", numeric.Format(result))
	}
}
