package main

import (
	"fmt"
	"os"

	"bytebeat/pkg/lexer"
	"bytebeat/pkg/token"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: debug_tokens '<expression>'")
		os.Exit(1)
	}

	input := os.Args[1]
	l := lexer.New(input)

	fmt.Printf("Input: %s\n\n", input)
	fmt.Println("Tokens:")
	fmt.Println("-------")

	for {
		tok := l.NextToken()
		fmt.Printf("%-15s %-20s (line %d, col %d, offset %d)\n", tok.Type, fmt.Sprintf("'%s'", tok.Literal), tok.Line, tok.Column, tok.Pos)

		if tok.Type == token.EOF {
			break
		}
	}
}
