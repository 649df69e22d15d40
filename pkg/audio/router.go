// Package audio connects processors to sound devices and files.
package audio

import (
	"context"
	"sync"
	"sync/atomic"
)

// Source is anything with the processor block contract: fill out with
// the block starting at audio time now, report whether to continue.
type Source interface {
	Process(out [][]float32, now float64) bool
}

type connection struct {
	src  Source
	done chan struct{}
	once sync.Once
}

func (c *connection) finish() {
	c.once.Do(func() { close(c.done) })
}

// Router feeds at most one Source from an output callback and keeps the
// audio clock as a frame count. Connect may be called from any goroutine.
type Router struct {
	sampleRate float64
	frames     uint64 // callback goroutine only
	current    atomic.Pointer[connection]
}

func NewRouter(sampleRate float64) *Router {
	return &Router{sampleRate: sampleRate}
}

// Connect replaces the current source. The previous one is disconnected
// before the next block and its waiters are released. The returned
// channel closes when src finishes or is replaced.
func (r *Router) Connect(src Source) <-chan struct{} {
	next := &connection{src: src, done: make(chan struct{})}
	if prev := r.current.Swap(next); prev != nil {
		prev.finish()
	}
	return next.done
}

// Disconnect removes the current source, if any.
func (r *Router) Disconnect() {
	if prev := r.current.Swap(nil); prev != nil {
		prev.finish()
	}
}

// Now is the audio time of the next block in seconds.
func (r *Router) Now() float64 {
	return float64(atomic.LoadUint64(&r.frames)) / r.sampleRate
}

// Wait blocks until the current source finishes or is replaced.
func (r *Router) Wait(ctx context.Context) error {
	c := r.current.Load()
	if c == nil {
		return nil
	}
	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Callback renders one block. It is the body of the device callback.
func (r *Router) Callback(out [][]float32) {
	if len(out) == 0 {
		return
	}
	now := r.Now()
	atomic.AddUint64(&r.frames, uint64(len(out[0])))

	c := r.current.Load()
	if c == nil {
		for _, ch := range out {
			for i := range ch {
				ch[i] = 0
			}
		}
		return
	}
	if !c.src.Process(out, now) {
		r.current.CompareAndSwap(c, nil)
		c.finish()
	}
}
