package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"os/signal"
	"strings"

	"bytebeat/pkg/config"
	"bytebeat/pkg/diag"
	"bytebeat/pkg/generator"
)

// patchFlags are shared by every command that compiles a patch. Flags
// that are set override the loaded configuration.
type patchFlags struct {
	fs         *flag.FlagSet
	configPath string
	backend    string
	frequency  float64
	sampleRate float64
	tempo      float64
	floatMode  bool
}

func newPatchFlags(name string) *patchFlags {
	pf := &patchFlags{fs: flag.NewFlagSet(name, flag.ContinueOnError)}
	pf.fs.StringVar(&pf.configPath, "config", "", "config file (default "+config.DefaultPath+")")
	pf.fs.StringVar(&pf.backend, "backend", "", "expr, rpn or wasm")
	pf.fs.Float64Var(&pf.frequency, "freq", 0, "t steps per second")
	pf.fs.Float64Var(&pf.sampleRate, "rate", 0, "output sample rate")
	pf.fs.Float64Var(&pf.tempo, "tempo", 0, "tempo for tt in BPM")
	pf.fs.BoolVar(&pf.floatMode, "float", false, "treat output as -1..1 floats")
	return pf
}

func (pf *patchFlags) parse(args []string) error {
	return pf.fs.Parse(args)
}

// load reads the configuration and applies explicitly set flags.
func (pf *patchFlags) load() (*config.Config, error) {
	cfg, err := config.Load(pf.configPath)
	if err != nil {
		return nil, err
	}
	pf.fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "backend":
			cfg.Audio.Backend = pf.backend
		case "freq":
			cfg.Audio.Frequency = pf.frequency
		case "rate":
			cfg.Audio.SampleRate = pf.sampleRate
		case "tempo":
			cfg.Audio.Tempo = pf.tempo
		case "float":
			cfg.Audio.FloatMode = pf.floatMode
		}
	})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// code returns the patch named by the remaining arguments.
func (pf *patchFlags) code() (string, error) {
	return readCode(pf.fs.Args())
}

func readCode(args []string) (string, error) {
	if len(args) == 0 {
		return "", errors.New("missing code argument")
	}
	arg := strings.Join(args, " ")
	switch {
	case arg == "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		return strings.TrimRight(string(data), "\n"), nil
	case strings.HasPrefix(arg, "@"):
		data, err := os.ReadFile(arg[1:])
		if err != nil {
			return "", err
		}
		return strings.TrimRight(string(data), "\n"), nil
	default:
		return arg, nil
	}
}

// compile builds an exclusively owned generator for the configured backend.
func compile(ctx context.Context, cfg *config.Config, code string) (generator.Generator, error) {
	art, err := generator.Compile(cfg.Audio.ParsedBackend(), code)
	if err != nil {
		return nil, err
	}
	return art.NewGenerator(ctx)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// describe reports the compile error itself, dropping any wrapping context.
func describe(err error) string {
	var de *diag.Error
	if !errors.As(err, &de) {
		return err.Error()
	}
	return de.Error()
}
