package room

import "context"

// AudioFrame is one capture chunk from the participant's microphone track,
// 16-bit little-endian PCM.
type AudioFrame struct {
	Data       []byte
	SampleRate int
	Channels   int
}

// AudioClip is one synthesized reply published to the room, with the
// transcript kept alongside for captioning.
type AudioClip struct {
	Data   []byte
	Format string
	Voice  string
	Text   string
}

// Room is the transport boundary between the voice pipeline and whatever
// carries the call: a media server connection in production, a loopback in
// tests and local development.
//
// Connect must complete and Ready must be signalled before the first turn;
// the greeting is not published into a room nobody has joined.
type Room interface {
	// Connect establishes the transport. Safe to call once per room.
	Connect(ctx context.Context) error

	// Ready is closed when the room is connected and a participant is
	// present.
	Ready() <-chan struct{}

	// Incoming delivers captured audio frames. The channel closes when the
	// participant leaves or the room shuts down.
	Incoming() <-chan AudioFrame

	// Publish plays one synthesized clip into the room.
	Publish(ctx context.Context, clip AudioClip) error

	// Close tears the transport down. Idempotent.
	Close() error
}
