package main

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"bytebeat/pkg/eval"
	"bytebeat/pkg/numeric"
)

const PROMPT = ">>> "

// runREPL evaluates expressions at adjustable counters. ":t N" and
// ":tt N" set the counters, a bare line is evaluated.
func runREPL([]string) error {
	return repl(os.Stdin, os.Stdout)
}

func repl(in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	var t, tt float64

	fmt.Fprintln(out, "bytebeat REPL, :t N and :tt N set the counters")
	for {
		fmt.Fprint(out, PROMPT)
		if !scanner.Scan() {
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, ":t ") || strings.HasPrefix(line, ":tt "):
			name, value, _ := strings.Cut(line[1:], " ")
			v := numeric.Parse(value)
			if math.IsNaN(v) {
				fmt.Fprintf(out, "bad counter %q\n", value)
				continue
			}
			if name == "t" {
				t = v
			} else {
				tt = v
			}
			continue
		}

		prog, err := eval.Compile(line)
		if err != nil {
			fmt.Fprintln(out, describe(err))
			continue
		}
		fmt.Fprintln(out, prog.Eval(t, tt).Inspect())
	}
}
