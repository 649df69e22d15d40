package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"bytebeat/pkg/compiler"
	"bytebeat/pkg/generator"
	"bytebeat/pkg/harmonic"
	"bytebeat/pkg/numeric"
	"bytebeat/pkg/opcode"
	"bytebeat/pkg/rpn"
	"bytebeat/pkg/vm"
	"bytebeat/pkg/wasm"
)

func runCheck(args []string) error {
	pf := newPatchFlags("check")
	if err := pf.parse(args); err != nil {
		return err
	}
	cfg, err := pf.load()
	if err != nil {
		return err
	}
	code, err := pf.code()
	if err != nil {
		return err
	}

	backend := cfg.Audio.ParsedBackend()
	if err := generator.Validate(backend, code); err != nil {
		return fmt.Errorf("%s", describe(err))
	}
	fmt.Printf("ok (%s)\n", backend)
	return nil
}

func runRPN(args []string) error {
	fs := flag.NewFlagSet("rpn", flag.ContinueOnError)
	from := fs.Float64("t", 0, "first value of t")
	count := fs.Int("n", 8, "number of samples")
	tt := fs.Float64("tt", 0, "value of tt")
	trace := fs.Bool("trace", false, "print the stack after every instruction")
	if err := fs.Parse(args); err != nil {
		return err
	}
	code, err := readCode(fs.Args())
	if err != nil {
		return err
	}

	bc, err := compiler.Compile(code)
	if err != nil {
		return fmt.Errorf("%s", describe(err))
	}
	m := vm.New()
	for i := 0; i < *count; i++ {
		t := *from + float64(i)
		var v float64
		if *trace {
			fmt.Printf("t=%s\n", numeric.Format(t))
			v = m.Trace(bc, t, *tt, printStep)
		} else {
			v = m.Run(bc, t, *tt)
		}
		fmt.Printf("%s\t%s\n", numeric.Format(t), numeric.Format(v))
	}
	return nil
}

func printStep(ip int, op opcode.Opcode, s *vm.Stack) {
	sp := s.Pointer()
	var top []string
	for i := 1; i <= 4 && i <= sp; i++ {
		top = append(top, numeric.Format(s.Slot(sp-i)))
	}
	fmt.Printf("  %04d %-12s sp=%-3d [%s]\n", ip, op, sp, strings.Join(top, " "))
}

func runDesugar(args []string) error {
	code, err := readCode(args)
	if err != nil {
		return err
	}
	out, err := rpn.Desugar(code)
	if err != nil {
		return fmt.Errorf("%s", describe(err))
	}
	fmt.Println(out)
	return nil
}

func runWasm(args []string) error {
	fs := flag.NewFlagSet("wasm", flag.ContinueOnError)
	wat := fs.Bool("wat", false, "print the text format")
	disasm := fs.Bool("disasm", false, "print the decoded function body")
	out := fs.String("o", "", "write the binary module to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	code, err := readCode(fs.Args())
	if err != nil {
		return err
	}

	fn, err := wasm.Compile(code)
	if err != nil {
		return fmt.Errorf("%s", describe(err))
	}

	switch {
	case *wat:
		fmt.Println(fn.Wat())
	case *disasm:
		instrs, err := wasm.Disassemble(fn.Code)
		if err != nil {
			return err
		}
		for _, in := range instrs {
			fmt.Printf("%04d %s\n", in.Offset, in)
		}
	case *out != "":
		return os.WriteFile(*out, fn.Module(), 0o644)
	default:
		fmt.Println(hex.EncodeToString(fn.Module()))
	}
	return nil
}

func runGlitch(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: glitch encode <name> <code> | glitch decode <url>")
	}
	switch args[0] {
	case "encode":
		if len(args) < 3 {
			return errors.New("usage: glitch encode <name> <code>")
		}
		code, err := readCode(args[2:])
		if err != nil {
			return err
		}
		url, err := rpn.ToGlitchURL(code, args[1])
		if err != nil {
			return fmt.Errorf("%s", describe(err))
		}
		fmt.Println(url)
	case "decode":
		if len(args) != 2 {
			return errors.New("usage: glitch decode <url>")
		}
		name, code, err := rpn.FromGlitchURL(args[1])
		if err != nil {
			return fmt.Errorf("%s", describe(err))
		}
		fmt.Printf("name: %s\n%s\n", name, code)
	default:
		return fmt.Errorf("unknown glitch command %q", args[0])
	}
	return nil
}

// bindings collects -bind name=value flags; values are complex expressions.
type bindings map[string]harmonic.Complex

func (b bindings) String() string { return "" }

func (b bindings) Set(s string) error {
	name, value, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("want name=value, got %q", s)
	}
	expr, err := harmonic.Parse(value)
	if err != nil {
		return err
	}
	c, ok := harmonic.Normalize(expr).(harmonic.Complex)
	if !ok {
		return fmt.Errorf("%s does not evaluate to a number", value)
	}
	b[name] = c
	return nil
}

func runMath(args []string) error {
	fs := flag.NewFlagSet("math", flag.ContinueOnError)
	invert := fs.Bool("invert", false, "take the reciprocal first")
	asJSON := fs.Bool("json", false, "print the result as JSON")
	vars := bindings{}
	fs.Var(vars, "bind", "bind a symbol, e.g. -bind k=3 (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	text, err := readCode(fs.Args())
	if err != nil {
		return err
	}

	expr, err := harmonic.Parse(text)
	if err != nil {
		return fmt.Errorf("%s", describe(err))
	}
	if *invert {
		expr = harmonic.Invert(expr)
	}
	value := harmonic.Evaluate(expr, harmonic.Bind(vars))

	if *asJSON {
		out := map[string]interface{}{
			"sexpr":  harmonic.SExpr(expr),
			"mathml": harmonic.MathML(expr),
		}
		if c, ok := value.(harmonic.Complex); ok {
			out["value"] = c
		} else {
			out["value"] = harmonic.SExpr(value)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Printf("sexpr:  %s\n", harmonic.SExpr(expr))
	fmt.Printf("mathml: <math>%s</math>\n", harmonic.MathML(expr))
	if c, ok := value.(harmonic.Complex); ok {
		fmt.Printf("value:  %s\n", c)
	} else {
		fmt.Printf("value:  %s\n", harmonic.SExpr(value))
	}
	return nil
}
