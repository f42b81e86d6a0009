package room

import (
	"context"
	"fmt"
	"sync"
)

// DefaultLoopbackBuffer sizes the loopback channels.
const DefaultLoopbackBuffer = 64

// Loopback is an in-memory Room for tests and local development. The test
// side injects microphone audio with Push and observes agent speech on
// Published.
type Loopback struct {
	mu        sync.Mutex
	connected bool
	closed    bool
	inputDone bool

	ready     chan struct{}
	incoming  chan AudioFrame
	published chan AudioClip
}

var _ Room = (*Loopback)(nil)

// NewLoopback creates a loopback room. buffer <= 0 selects
// DefaultLoopbackBuffer.
func NewLoopback(buffer int) *Loopback {
	if buffer <= 0 {
		buffer = DefaultLoopbackBuffer
	}
	return &Loopback{
		ready:     make(chan struct{}),
		incoming:  make(chan AudioFrame, buffer),
		published: make(chan AudioClip, buffer),
	}
}

// Connect marks the room ready. The loopback participant is always present.
func (r *Loopback) Connect(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return fmt.Errorf("loopback: room is closed")
	}
	if r.connected {
		return nil
	}
	r.connected = true
	close(r.ready)
	return nil
}

func (r *Loopback) Ready() <-chan struct{} { return r.ready }

func (r *Loopback) Incoming() <-chan AudioFrame { return r.incoming }

// Push injects one microphone frame. It fails once the room is closed or
// input has ended.
func (r *Loopback) Push(frame AudioFrame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.inputDone {
		return fmt.Errorf("loopback: input is closed")
	}
	if !r.connected {
		return fmt.Errorf("loopback: room not connected")
	}
	r.incoming <- frame
	return nil
}

// EndInput simulates the participant leaving: the incoming channel closes
// and no further frames are accepted.
func (r *Loopback) EndInput() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inputDone || r.closed {
		return
	}
	r.inputDone = true
	close(r.incoming)
}

// Publish records one synthesized clip.
func (r *Loopback) Publish(ctx context.Context, clip AudioClip) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return fmt.Errorf("loopback: room is closed")
	}
	r.mu.Unlock()

	select {
	case r.published <- clip:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Published exposes the clips played into the room, oldest first.
func (r *Loopback) Published() <-chan AudioClip { return r.published }

// Close shuts the loopback down. Idempotent.
func (r *Loopback) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	if !r.inputDone {
		r.inputDone = true
		close(r.incoming)
	}
	return nil
}
