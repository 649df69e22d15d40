// Package config loads runtime settings from defaults, a YAML file, .env
// files and BYTEBEAT_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"

	"bytebeat/pkg/generator"
	"bytebeat/pkg/processor"
)

// DefaultPath is read when Load is given no path. A missing file there is
// not an error.
const DefaultPath = "~/.bytebeat.yaml"

const envPrefix = "BYTEBEAT_"

type Config struct {
	Audio     Audio  `yaml:"audio"`
	Server    Server `yaml:"server"`
	SentryDSN string `yaml:"sentry_dsn"`
}

type Audio struct {
	SampleRate      float64 `yaml:"sample_rate"`
	Frequency       float64 `yaml:"frequency"`
	Tempo           float64 `yaml:"tempo"`
	FloatMode       bool    `yaml:"float_mode"`
	Backend         string  `yaml:"backend"`
	BufferSeconds   float64 `yaml:"buffer_seconds"`
	FramesPerBuffer int     `yaml:"frames_per_buffer"`
	Channels        int     `yaml:"channels"`
}

type Server struct {
	Addr        string        `yaml:"addr"`
	TokenSecret string        `yaml:"token_secret"`
	TokenTTL    time.Duration `yaml:"token_ttl"`
}

func Default() *Config {
	return &Config{
		Audio: Audio{
			SampleRate:      processor.DefaultSampleRate,
			Frequency:       processor.DefaultFrequency,
			Tempo:           processor.DefaultTempo,
			Backend:         string(generator.Expr),
			BufferSeconds:   processor.DefaultBufferSeconds,
			FramesPerBuffer: 1024,
			Channels:        1,
		},
		Server: Server{
			Addr:     ":8080",
			TokenTTL: 15 * time.Minute,
		},
	}
}

// Load builds a Config. path may start with ~; an empty path means
// DefaultPath. envFiles default to ".env"; missing env files are skipped.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()

	optional := path == ""
	if optional {
		path = DefaultPath
	}
	if err := cfg.readFile(path, optional); err != nil {
		return nil, err
	}

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string, optional bool) error {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return fmt.Errorf("expand %s: %w", path, err)
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse %s: %w", expanded, err)
	}
	return nil
}

// ApplyEnv overrides fields from BYTEBEAT_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	floats := map[string]*float64{
		"SAMPLE_RATE":    &c.Audio.SampleRate,
		"FREQUENCY":      &c.Audio.Frequency,
		"TEMPO":          &c.Audio.Tempo,
		"BUFFER_SECONDS": &c.Audio.BufferSeconds,
	}
	ints := map[string]*int{
		"FRAMES_PER_BUFFER": &c.Audio.FramesPerBuffer,
		"CHANNELS":          &c.Audio.Channels,
	}
	strs := map[string]*string{
		"BACKEND":      &c.Audio.Backend,
		"ADDR":         &c.Server.Addr,
		"TOKEN_SECRET": &c.Server.TokenSecret,
		"SENTRY_DSN":   &c.SentryDSN,
	}

	for name, dst := range floats {
		if v, ok := lookup(envPrefix + name); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("%s%s: %w", envPrefix, name, err)
			}
			*dst = f
		}
	}
	for name, dst := range ints {
		if v, ok := lookup(envPrefix + name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", envPrefix, name, err)
			}
			*dst = n
		}
	}
	for name, dst := range strs {
		if v, ok := lookup(envPrefix + name); ok {
			*dst = v
		}
	}

	if v, ok := lookup(envPrefix + "FLOAT_MODE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sFLOAT_MODE: %w", envPrefix, err)
		}
		c.Audio.FloatMode = b
	}
	if v, ok := lookup(envPrefix + "TOKEN_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sTOKEN_TTL: %w", envPrefix, err)
		}
		c.Server.TokenTTL = d
	}
	return nil
}

func (c *Config) Validate() error {
	if err := c.Audio.Processor().Validate(); err != nil {
		return err
	}
	if _, err := generator.ParseBackend(c.Audio.Backend); err != nil {
		return err
	}
	if c.Audio.BufferSeconds <= 0 {
		return fmt.Errorf("buffer_seconds must be positive, got %v", c.Audio.BufferSeconds)
	}
	if c.Audio.FramesPerBuffer < 0 {
		return fmt.Errorf("frames_per_buffer must not be negative, got %d", c.Audio.FramesPerBuffer)
	}
	if c.Audio.Channels < 1 || c.Audio.Channels > 8 {
		return fmt.Errorf("channels must be between 1 and 8, got %d", c.Audio.Channels)
	}
	if c.Server.TokenTTL <= 0 {
		return fmt.Errorf("token_ttl must be positive, got %v", c.Server.TokenTTL)
	}
	return nil
}

// Processor returns the sample processor settings.
func (a Audio) Processor() processor.Config {
	return processor.Config{
		Frequency:  a.Frequency,
		SampleRate: a.SampleRate,
		Tempo:      a.Tempo,
		FloatMode:  a.FloatMode,
	}
}

// ParsedBackend is Backend after validation.
func (a Audio) ParsedBackend() generator.Backend {
	b, err := generator.ParseBackend(a.Backend)
	if err != nil {
		return generator.Expr
	}
	return b
}
