package main

import (
	"fmt"
	"os"

	"bytebeat/pkg/version"
)

type command struct {
	name  string
	usage string
	run   func(args []string) error
}

var commands []command

func init() {
	commands = []command{
		{"play", "play [flags] <code>         Play a patch on the default output device", runPlay},
		{"render", "render [flags] <code>       Render a patch to a WAV file", runRender},
		{"check", "check [flags] <code>        Validate a patch", runCheck},
		{"rpn", "rpn [flags] <code>          Run an RPN program for a few samples", runRPN},
		{"desugar", "desugar <code>              Rewrite (op a b) groups to postfix", runDesugar},
		{"wasm", "wasm [flags] <code>         Compile RPN to a WebAssembly module", runWasm},
		{"glitch", "glitch encode|decode ...    Convert between RPN and Glitch URLs", runGlitch},
		{"math", "math [flags] <expr>         Parse a complex expression", runMath},
		{"spectrum", "spectrum [flags] <code>     Report the dominant frequency of a patch", runSpectrum},
		{"repl", "repl                        Evaluate expressions interactively", runREPL},
		{"serve", "serve [flags]               Serve the compile API and sample streams", runServe},
	}
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}

	name := os.Args[1]
	switch name {
	case "--version", "-v", "version":
		printVersion()
		return
	case "--help", "-h", "help":
		printHelp()
		return
	}

	for _, c := range commands {
		if c.name == name {
			if err := c.run(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
				os.Exit(1)
			}
			return
		}
	}

	fmt.Printf("Unknown command: %s\n\n", name)
	printHelp()
	os.Exit(1)
}

func printUsage() {
	fmt.Println("bytebeat v" + version.Version)
	fmt.Println("\nUsage:")
	fmt.Println("  bytebeat <command> [flags] [args]")
	fmt.Println("  bytebeat help               Show all commands")
}

func printVersion() {
	fmt.Printf("bytebeat %s\n", version.Version)
	fmt.Printf("Build Date: %s\n", version.BuildDate)
	fmt.Printf("Git Commit: %s\n", version.GitCommit)
}

func printHelp() {
	fmt.Println("bytebeat: formula music compiler and player")
	fmt.Println()
	fmt.Println("Usage:")
	for _, c := range commands {
		fmt.Println("  bytebeat " + c.usage)
	}
	fmt.Println("  bytebeat version            Display build metadata")
	fmt.Println("  bytebeat help               Show this help message")
	fmt.Println()
	fmt.Println("Run 'bytebeat <command> -h' for the flags of a command.")
	fmt.Println("Code may be given inline, as @file, or as - for stdin.")
}
