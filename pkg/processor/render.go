package processor

import (
	"math"
	"time"

	"bytebeat/pkg/generator"
)

// Buffer is a rendered mono signal.
type Buffer struct {
	Samples    []float32
	SampleRate float64
	Faults     uint64
}

func (b *Buffer) Duration() time.Duration {
	return time.Duration(float64(len(b.Samples)) / b.SampleRate * float64(time.Second))
}

// Render evaluates gen for the given number of frames. In byte mode the
// counters are floored and a frame whose floored counters did not change
// repeats the previous sample; in float mode the fractional counters are
// passed through. The same generator state and config always give the
// same buffer.
func Render(gen generator.Generator, cfg Config, frames int) *Buffer {
	buf := &Buffer{
		Samples:    make([]float32, frames),
		SampleRate: cfg.SampleRate,
	}
	tDelta, ttDelta := cfg.TimeDelta(), cfg.TempoDelta()

	var t, tt float64
	lastT, lastTT := math.NaN(), math.NaN()
	for i := range buf.Samples {
		if cfg.FloatMode {
			buf.Samples[i] = renderSample(gen, cfg, buf, t, tt)
		} else {
			ft, ftt := math.Floor(t), math.Floor(tt)
			if i > 0 && ft == lastT && ftt == lastTT {
				buf.Samples[i] = buf.Samples[i-1]
			} else {
				buf.Samples[i] = renderSample(gen, cfg, buf, ft, ftt)
				lastT, lastTT = ft, ftt
			}
		}
		t += tDelta
		tt += ttDelta
	}
	return buf
}

func renderSample(gen generator.Generator, cfg Config, buf *Buffer, t, tt float64) (s float32) {
	defer func() {
		if r := recover(); r != nil {
			buf.Faults++
			s = 0
		}
	}()

	v, err := gen.Sample(t, tt)
	if err != nil {
		buf.Faults++
		return 0
	}
	s, ok := cfg.Postprocess(v)
	if !ok {
		buf.Faults++
	}
	return s
}

// BufferSource plays a rendered Buffer with the Process contract of
// Processor. Times given to Start, Stop and Restart are absolute audio
// times in seconds. A source that reached the end of its buffer stays
// silent until restarted.
type BufferSource struct {
	buf      *Buffer
	commands chan command

	// audio side only
	pos       int
	startTime float64
	stopTime  float64
	ended     bool
}

func NewBufferSource(buf *Buffer) *BufferSource {
	return &BufferSource{
		buf:       buf,
		commands:  make(chan command, commandQueueSize),
		startTime: math.Inf(1),
		stopTime:  math.Inf(1),
	}
}

func (s *BufferSource) Buffer() *Buffer { return s.buf }

func (s *BufferSource) Start(at float64) error   { return s.send(command{kind: cmdStart, at: at}) }
func (s *BufferSource) Stop(at float64) error    { return s.send(command{kind: cmdStop, at: at}) }
func (s *BufferSource) Restart(at float64) error { return s.send(command{kind: cmdRestart, at: at}) }

func (s *BufferSource) send(c command) error {
	select {
	case s.commands <- c:
		return nil
	default:
		return ErrCommandQueueFull
	}
}

func (s *BufferSource) drain() {
	for {
		select {
		case c := <-s.commands:
			switch c.kind {
			case cmdStart:
				if math.IsInf(s.startTime, 1) {
					s.startTime = c.at
				}
			case cmdStop:
				s.stopTime = c.at
			case cmdRestart:
				s.pos = 0
				s.ended = false
				s.startTime = c.at
				s.stopTime = math.Inf(1)
			}
		default:
			return
		}
	}
}

// Process copies the next block of the buffer into every channel.
func (s *BufferSource) Process(out [][]float32, now float64) bool {
	s.drain()

	if len(out) == 0 || s.ended || now >= s.stopTime || now < s.startTime {
		silence(out, 0)
		return !s.ended && now < s.stopTime
	}

	n := copy(out[0], s.buf.Samples[s.pos:])
	for _, ch := range out[1:] {
		copy(ch, out[0][:n])
	}
	silence(out, n)
	s.pos += n
	if s.pos >= len(s.buf.Samples) {
		s.ended = true
	}
	return true
}
