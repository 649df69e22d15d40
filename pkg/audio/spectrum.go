package audio

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/ktye/fft"
)

// PeakFrequency returns the frequency of the strongest non-DC bin of a
// Hann-windowed FFT over the first size samples. size must be a power of
// two; shorter input is zero padded.
func PeakFrequency(samples []float32, sampleRate float64, size int) (float64, error) {
	f, err := fft.New(size)
	if err != nil {
		return 0, fmt.Errorf("fft: %w", err)
	}

	buf := make([]complex128, size)
	for i := 0; i < size && i < len(samples); i++ {
		w := (1 - math.Cos(2*math.Pi*float64(i)/float64(size))) / 2
		buf[i] = complex(float64(samples[i])*w, 0)
	}
	buf = f.Transform(buf)

	peak, best := 0, 0.0
	for k := 1; k <= size/2; k++ {
		if m := cmplx.Abs(buf[k]); m > best {
			peak, best = k, m
		}
	}
	return float64(peak) * sampleRate / float64(size), nil
}
