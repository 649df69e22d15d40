package main

import (
	"fmt"
	"os"
	"strings"

	"bytebeat/pkg/compiler"
	"bytebeat/pkg/numeric"
	"bytebeat/pkg/opcode"
	"bytebeat/pkg/wasm"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: inspect_bytecode '<rpn code>'")
		os.Exit(1)
	}

	input := strings.Join(os.Args[1:], " ")

	bytecode, err := compiler.Compile(input)
	if err != nil {
		fmt.Printf("Compiler error: %s\n", err)
		os.Exit(1)
	}

	fmt.Printf("Constants (%d):\n", len(bytecode.Constants))
	for i, c := range bytecode.Constants {
		fmt.Printf("  [%d] %s\n", i, numeric.Format(c))
	}
	fmt.Println()

	fmt.Printf("Instructions (%d bytes):\n", len(bytecode.Instructions))
	ins := bytecode.Instructions
	i := 0
	for i < len(ins) {
		def, err := opcode.Lookup(ins[i])
		if err != nil {
			fmt.Printf("%04d ERROR: %s\n", i, err)
			i++
			continue
		}

		operands, read := opcode.ReadOperands(def, ins[i+1:])
		fmt.Printf("%04d %s", i, def.Name)

		for _, op := range operands {
			fmt.Printf(" %d", op)
		}
		if def.Word != "" {
			fmt.Printf("  ; %s", def.Word)
		}
		fmt.Println()

		fmt.Printf("     Raw: ")
		for k := 0; k < 1+read; k++ {
			fmt.Printf("%02x ", ins[i+k])
		}
		fmt.Println()

		i += 1 + read
	}

	fn, err := wasm.Compile(input)
	if err != nil {
		fmt.Printf("\nNo wasm form: %s\n", err)
		return
	}
	module := fn.Module()
	fmt.Printf("\nWasm module (%d bytes):\n", len(module))
	for off := 0; off < len(module); off += 16 {
		end := off + 16
		if end > len(module) {
			end = len(module)
		}
		fmt.Printf("%04x ", off)
		for _, b := range module[off:end] {
			fmt.Printf(" %02x", b)
		}
		fmt.Println()
	}
}
