//go:build !nodevice

// Package device plays audio sources on the default PortAudio output. It
// is the only package in the module that needs cgo; build with the
// nodevice tag to leave PortAudio out.
package device

import (
	"context"
	"fmt"

	"github.com/gordonklaus/portaudio"

	"bytebeat/pkg/audio"
)

// Player drives an audio.Router from the default output device.
type Player struct {
	*audio.Router
	stream *portaudio.Stream
}

// Open initializes PortAudio and starts the default output stream.
func Open(sampleRate float64, channels, framesPerBuffer int) (*Player, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio: %w", err)
	}

	p := &Player{Router: audio.NewRouter(sampleRate)}
	stream, err := portaudio.OpenDefaultStream(0, channels, sampleRate, framesPerBuffer, p.Router.Callback)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("open output stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("start output stream: %w", err)
	}
	p.stream = stream
	return p, nil
}

// Play disconnects the current source and connects src.
func (p *Player) Play(src audio.Source) <-chan struct{} {
	return p.Connect(src)
}

// PlayAndWait plays src until it finishes, is replaced or ctx is done.
func (p *Player) PlayAndWait(ctx context.Context, src audio.Source) error {
	select {
	case <-p.Play(src):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Player) Close() error {
	p.Disconnect()
	err := p.stream.Close()
	if terr := portaudio.Terminate(); err == nil {
		err = terr
	}
	return err
}
