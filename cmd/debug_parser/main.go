package main

import (
	"fmt"
	"os"

	"bytebeat/pkg/eval"
	"bytebeat/pkg/lexer"
	"bytebeat/pkg/parser"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: debug_parser '<expression>'")
		os.Exit(1)
	}

	input := os.Args[1]
	l := lexer.New(input)
	p := parser.New(l)

	program := p.ParseProgram()

	if len(p.Errors()) != 0 {
		fmt.Println("Parser errors:")
		for _, msg := range p.Errors() {
			fmt.Printf("  %s\n", msg)
		}
		os.Exit(1)
	}

	fmt.Printf("AST:\n%s\n", program.String())

	prog, err := eval.Compile(input)
	if err != nil {
		fmt.Printf("\nCompile error: %s\n", err)
		os.Exit(1)
	}
	if prog.Constant() {
		fmt.Printf("\nConstant: %s\n", prog.Eval(0, 0).Inspect())
	}
}
