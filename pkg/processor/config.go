// Package processor turns a sample generator into audio: a streaming
// processor for real-time callbacks and a fixed-buffer renderer.
package processor

import (
	"fmt"
	"math"
)

const (
	DefaultFrequency  = 8000
	DefaultSampleRate = 44100
	DefaultTempo      = 120

	// DefaultBufferSeconds is the length of the fixed-buffer fallback.
	DefaultBufferSeconds = 30
)

// Config fixes how the counters advance and how raw samples are mapped
// to [-1, 1].
type Config struct {
	Frequency  float64 // rate at which t advances, in Hz
	SampleRate float64
	Tempo      float64 // tt advances 8192 per second at 120
	FloatMode  bool    // raw values are already in [-1, 1]
}

func DefaultConfig() Config {
	return Config{
		Frequency:  DefaultFrequency,
		SampleRate: DefaultSampleRate,
		Tempo:      DefaultTempo,
	}
}

func (c Config) Validate() error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"frequency", c.Frequency},
		{"sample rate", c.SampleRate},
		{"tempo", c.Tempo},
	} {
		if !(f.value > 0) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%s must be a positive number, got %v", f.name, f.value)
		}
	}
	return nil
}

// TimeDelta is the increment of t per output frame.
func (c Config) TimeDelta() float64 { return c.Frequency / c.SampleRate }

// TempoDelta is the increment of tt per output frame.
func (c Config) TempoDelta() float64 { return c.Tempo * 8192 / 120 / c.SampleRate }

// Frames returns the number of frames in the given duration.
func (c Config) Frames(seconds float64) int {
	return int(c.SampleRate * seconds)
}

// Postprocess maps a raw generator value to an output sample. ok is false
// for values that cannot be played, which the caller turns into silence.
func (c Config) Postprocess(v float64) (sample float32, ok bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if c.FloatMode {
		return float32(math.Min(1, math.Max(-1, v))), true
	}
	return float32(math.Mod(v, 256)/128 - 1), true
}
