package processor

import (
	"errors"
	"math"
	"sync"
	"sync/atomic"

	"bytebeat/pkg/generator"
)

// ErrCommandQueueFull is returned by Start and Stop when the audio side
// has not yet drained earlier commands.
var ErrCommandQueueFull = errors.New("processor: command queue full")

const commandQueueSize = 16

type commandKind uint8

const (
	cmdStart commandKind = iota
	cmdStop
	cmdRestart
)

type command struct {
	kind commandKind
	at   float64 // seconds; relative or absolute depending on the receiver
}

// Processor streams a generator block by block. Start and Stop may be
// called from any goroutine; Process belongs to the audio callback.
type Processor struct {
	gen generator.Generator
	cfg Config

	tDelta, ttDelta float64

	commands chan command
	faults   atomic.Uint64
	done     chan struct{}
	doneOnce sync.Once

	// audio side only
	t, tt     float64
	startTime float64
	stopTime  float64
}

func New(gen generator.Generator, cfg Config) (*Processor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Processor{
		gen:       gen,
		cfg:       cfg,
		tDelta:    cfg.TimeDelta(),
		ttDelta:   cfg.TempoDelta(),
		commands:  make(chan command, commandQueueSize),
		done:      make(chan struct{}),
		startTime: math.Inf(1),
		stopTime:  math.Inf(1),
	}, nil
}

func (p *Processor) Config() Config { return p.cfg }

// Start schedules output to begin after the given number of seconds,
// counted from the audio time of the next Process call.
func (p *Processor) Start(after float64) error {
	return p.send(command{kind: cmdStart, at: after})
}

// Stop schedules the end of the stream after the given number of seconds.
func (p *Processor) Stop(after float64) error {
	return p.send(command{kind: cmdStop, at: after})
}

func (p *Processor) send(c command) error {
	select {
	case p.commands <- c:
		return nil
	default:
		return ErrCommandQueueFull
	}
}

// Done is closed the first time Process returns false.
func (p *Processor) Done() <-chan struct{} { return p.done }

// Faults counts the samples replaced by silence because the generator
// failed or produced a value that cannot be played.
func (p *Processor) Faults() uint64 { return p.faults.Load() }

func (p *Processor) drain(now float64) {
	for {
		select {
		case c := <-p.commands:
			switch c.kind {
			case cmdStart:
				p.startTime = now + c.at
			case cmdStop:
				p.stopTime = now + c.at
			}
		default:
			return
		}
	}
}

// Process fills every channel of out with the same mono block. now is the
// audio time of the block's first frame in seconds. It reports whether
// the processor wants to be called again.
func (p *Processor) Process(out [][]float32, now float64) bool {
	p.drain(now)

	if len(out) == 0 || now < p.startTime {
		silence(out, 0)
		return p.finish(now)
	}

	var (
		lastT, lastTT float64
		data          float32
		have          bool
	)
	for i, n := 0, len(out[0]); i < n; i++ {
		t, tt := math.Floor(p.t), math.Floor(p.tt)
		if !have || t != lastT || tt != lastTT {
			data = p.sample(t, tt)
			lastT, lastTT, have = t, tt, true
		}
		for _, ch := range out {
			ch[i] = data
		}
		p.t += p.tDelta
		p.tt += p.ttDelta
	}

	return p.finish(now)
}

// sample plays one frame. A panicking generator silences only that frame.
func (p *Processor) sample(t, tt float64) (s float32) {
	defer func() {
		if r := recover(); r != nil {
			p.faults.Add(1)
			s = 0
		}
	}()

	v, err := p.gen.Sample(t, tt)
	if err != nil {
		p.faults.Add(1)
		return 0
	}
	s, ok := p.cfg.Postprocess(v)
	if !ok {
		p.faults.Add(1)
	}
	return s
}

func (p *Processor) finish(now float64) bool {
	if now < p.stopTime {
		return true
	}
	p.doneOnce.Do(func() { close(p.done) })
	return false
}

// silence zeroes every channel from frame i on.
func silence(out [][]float32, i int) {
	for _, ch := range out {
		for j := i; j < len(ch); j++ {
			ch[j] = 0
		}
	}
}
