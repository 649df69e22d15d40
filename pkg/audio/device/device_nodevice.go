//go:build nodevice

package device

import (
	"context"
	"errors"

	"bytebeat/pkg/audio"
)

// ErrNoDevice is returned by Open in builds without PortAudio.
var ErrNoDevice = errors.New("device: built without audio output (nodevice tag)")

type Player struct {
	*audio.Router
}

func Open(sampleRate float64, channels, framesPerBuffer int) (*Player, error) {
	return nil, ErrNoDevice
}

func (p *Player) Play(src audio.Source) <-chan struct{} { return p.Connect(src) }

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
	return nil
}
