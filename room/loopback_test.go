package room

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopback_ConnectSignalsReady(t *testing.T) {
	r := NewLoopback(0)

	select {
	case <-r.Ready():
		t.Fatal("ready before connect")
	default:
	}

	require.NoError(t, r.Connect(context.Background()))

	select {
	case <-r.Ready():
	case <-time.After(time.Second):
		t.Fatal("ready not signalled after connect")
	}

	assert.NoError(t, r.Connect(context.Background()), "connect is idempotent")
}

func TestLoopback_PushRequiresConnect(t *testing.T) {
	r := NewLoopback(4)
	err := r.Push(AudioFrame{Data: []byte{1}})
	assert.ErrorContains(t, err, "not connected")
}

func TestLoopback_PushDeliversFrames(t *testing.T) {
	r := NewLoopback(4)
	require.NoError(t, r.Connect(context.Background()))

	require.NoError(t, r.Push(AudioFrame{Data: []byte{1, 2}, SampleRate: 16000, Channels: 1}))
	require.NoError(t, r.Push(AudioFrame{Data: []byte{3, 4}, SampleRate: 16000, Channels: 1}))

	first := <-r.Incoming()
	assert.Equal(t, []byte{1, 2}, first.Data)
	assert.Equal(t, 16000, first.SampleRate)

	second := <-r.Incoming()
	assert.Equal(t, []byte{3, 4}, second.Data)
}

func TestLoopback_EndInputClosesIncoming(t *testing.T) {
	r := NewLoopback(4)
	require.NoError(t, r.Connect(context.Background()))

	r.EndInput()

	_, ok := <-r.Incoming()
	assert.False(t, ok)

	err := r.Push(AudioFrame{Data: []byte{1}})
	assert.ErrorContains(t, err, "input is closed")

	r.EndInput() // no panic on repeat
}

func TestLoopback_PublishRoundTrip(t *testing.T) {
	r := NewLoopback(4)
	require.NoError(t, r.Connect(context.Background()))

	clip := AudioClip{Data: []byte("mp3"), Format: "mp3_44100_128", Voice: "v1", Text: "hello"}
	require.NoError(t, r.Publish(context.Background(), clip))

	got := <-r.Published()
	assert.Equal(t, clip, got)
}

func TestLoopback_PublishHonorsContext(t *testing.T) {
	r := NewLoopback(1)
	require.NoError(t, r.Connect(context.Background()))
	require.NoError(t, r.Publish(context.Background(), AudioClip{Text: "fills buffer"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Publish(ctx, AudioClip{Text: "blocked"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoopback_Close(t *testing.T) {
	r := NewLoopback(4)
	require.NoError(t, r.Connect(context.Background()))

	require.NoError(t, r.Close())
	require.NoError(t, r.Close(), "close is idempotent")

	_, ok := <-r.Incoming()
	assert.False(t, ok, "close ends input")

	assert.ErrorContains(t, r.Push(AudioFrame{}), "closed")
	assert.ErrorContains(t, r.Publish(context.Background(), AudioClip{}), "closed")
	assert.ErrorContains(t, r.Connect(context.Background()), "closed")
}
