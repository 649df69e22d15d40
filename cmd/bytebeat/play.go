package main

import (
	"fmt"
	"os"
	"time"

	"bytebeat/pkg/audio"
	"bytebeat/pkg/audio/device"
	"bytebeat/pkg/generator"
	"bytebeat/pkg/processor"
)

func runPlay(args []string) error {
	pf := newPatchFlags("play")
	duration := pf.fs.Duration("duration", 0, "stop after this long (0 plays until interrupted)")
	fixed := pf.fs.Bool("fixed", false, "pre-render a fixed buffer instead of streaming")
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

	ctx, cancel := signalContext()
	defer cancel()

	gen, err := compile(ctx, cfg, code)
	if err != nil {
		return fmt.Errorf("%s", describe(err))
	}
	defer generator.Release(gen)

	player, err := device.Open(cfg.Audio.SampleRate, cfg.Audio.Channels, cfg.Audio.FramesPerBuffer)
	if err != nil {
		return err
	}
	defer player.Close()

	pc := cfg.Audio.Processor()
	var faults func() uint64
	if *fixed {
		buf := processor.Render(gen, pc, pc.Frames(cfg.Audio.BufferSeconds))
		src := processor.NewBufferSource(buf)
		now := player.Now()
		if err := src.Start(now); err != nil {
			return err
		}
		if *duration > 0 {
			if err := src.Stop(now + duration.Seconds()); err != nil {
				return err
			}
		}
		faults = func() uint64 { return buf.Faults }
		err = player.PlayAndWait(ctx, src)
	} else {
		proc, perr := processor.New(gen, pc)
		if perr != nil {
			return perr
		}
		if err := proc.Start(0); err != nil {
			return err
		}
		if *duration > 0 {
			if err := proc.Stop(duration.Seconds()); err != nil {
				return err
			}
		}
		faults = proc.Faults
		err = player.PlayAndWait(ctx, proc)
	}

	if n := faults(); n > 0 {
		fmt.Fprintf(os.Stderr, "%d samples were silenced by runtime errors\n", n)
	}
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func runRender(args []string) error {
	pf := newPatchFlags("render")
	out := pf.fs.String("o", "out.wav", "output file")
	seconds := pf.fs.Float64("seconds", 0, "length in seconds (default buffer_seconds from config)")
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
	if *seconds <= 0 {
		*seconds = cfg.Audio.BufferSeconds
	}

	ctx, cancel := signalContext()
	defer cancel()
	gen, err := compile(ctx, cfg, code)
	if err != nil {
		return fmt.Errorf("%s", describe(err))
	}
	defer generator.Release(gen)

	pc := cfg.Audio.Processor()
	start := time.Now()
	buf := processor.Render(gen, pc, pc.Frames(*seconds))

	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	if err := audio.WriteWAV(f, buf, cfg.Audio.Channels); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Printf("wrote %s: %v of audio, %d samples, %d faults (%v)\n",
		*out, buf.Duration(), len(buf.Samples), buf.Faults, time.Since(start).Round(time.Millisecond))
	return nil
}

func runSpectrum(args []string) error {
	pf := newPatchFlags("spectrum")
	size := pf.fs.Int("size", 8192, "FFT size, a power of two")
	offset := pf.fs.Float64("at", 0, "analyse from this many seconds in")
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

	ctx, cancel := signalContext()
	defer cancel()
	gen, err := compile(ctx, cfg, code)
	if err != nil {
		return fmt.Errorf("%s", describe(err))
	}
	defer generator.Release(gen)

	pc := cfg.Audio.Processor()
	skip := pc.Frames(*offset)
	buf := processor.Render(gen, pc, skip+*size)

	hz, err := audio.PeakFrequency(buf.Samples[skip:], pc.SampleRate, *size)
	if err != nil {
		return err
	}
	fmt.Printf("peak: %.2f Hz (bin width %.2f Hz)\n", hz, pc.SampleRate/float64(*size))
	return nil
}
