package audio

import (
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"bytebeat/pkg/processor"
)

const bitDepth = 16

// WriteWAV encodes buf as 16-bit PCM with the mono signal copied to every
// channel.
func WriteWAV(w io.WriteSeeker, buf *processor.Buffer, channels int) error {
	if channels < 1 {
		return fmt.Errorf("channels must be at least 1, got %d", channels)
	}
	sr := int(buf.SampleRate)
	enc := wav.NewEncoder(w, sr, bitDepth, channels, 1)

	intBuf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: channels,
			SampleRate:  sr,
		},
		Data:           make([]int, len(buf.Samples)*channels),
		SourceBitDepth: bitDepth,
	}
	for i, s := range buf.Samples {
		v := toPCM(s)
		for c := 0; c < channels; c++ {
			intBuf.Data[i*channels+c] = v
		}
	}

	if err := enc.Write(intBuf); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	return enc.Close()
}

func toPCM(s float32) int {
	f := math.Max(-1, math.Min(1, float64(s)))
	return int(math.Round(f * 32767))
}

// ReadWAV decodes a file written by WriteWAV back into a mono buffer,
// keeping the first channel.
func ReadWAV(r io.ReadSeeker) (*processor.Buffer, int, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("not a wav file")
	}
	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("read wav: %w", err)
	}

	channels := pcm.Format.NumChannels
	buf := &processor.Buffer{
		Samples:    make([]float32, len(pcm.Data)/channels),
		SampleRate: float64(pcm.Format.SampleRate),
	}
	for i := range buf.Samples {
		buf.Samples[i] = float32(pcm.Data[i*channels]) / 32767
	}
	return buf, channels, nil
}
