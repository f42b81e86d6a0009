package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sarathfrancis90/livekit-pharmacy-agent/config"
	"github.com/sarathfrancis90/livekit-pharmacy-agent/room"
)

func TestClipExtension(t *testing.T) {
	assert.Equal(t, "mp3", clipExtension("mp3_44100_128"))
	assert.Equal(t, "wav", clipExtension("wav"))
	assert.Equal(t, "bin", clipExtension(""))
}

func TestFeedPCMFrames_FramesAndHangup(t *testing.T) {
	lb := room.NewLoopback(0)
	t.Cleanup(func() { lb.Close() })
	require.NoError(t, lb.Connect(context.Background()))

	// 16kHz 20ms 帧 = 640 字节；2.5 帧的输入得到两整帧加一个尾帧
	audio := bytes.Repeat([]byte{0x01}, 1600)
	feedPCMFrames(lb, bytes.NewReader(audio), 16000, 20, zap.NewNop())

	var frames []room.AudioFrame
	for frame := range lb.Incoming() {
		frames = append(frames, frame)
	}

	require.Len(t, frames, 3, "input close counts as the caller hanging up")
	assert.Len(t, frames[0].Data, 640)
	assert.Len(t, frames[1].Data, 640)
	assert.Len(t, frames[2].Data, 320)
	assert.Equal(t, 16000, frames[0].SampleRate)
	assert.Equal(t, 1, frames[0].Channels)
}

func TestFeedPCMFrames_InvalidFrameSize(t *testing.T) {
	lb := room.NewLoopback(0)
	t.Cleanup(func() { lb.Close() })
	require.NoError(t, lb.Connect(context.Background()))

	feedPCMFrames(lb, bytes.NewReader([]byte{1, 2, 3}), 0, 20, zap.NewNop())

	_, open := <-lb.Incoming()
	assert.False(t, open, "no frames, input closed")
}

func TestBuildSpeechConfigs(t *testing.T) {
	dg := buildDeepgramConfig(config.DeepgramConfig{APIKey: "dg-key"})
	assert.Equal(t, "dg-key", dg.APIKey)
	assert.Equal(t, "https://api.deepgram.com", dg.BaseURL, "default base URL survives")
	assert.Equal(t, "nova-2", dg.Model)

	dg = buildDeepgramConfig(config.DeepgramConfig{APIKey: "k", BaseURL: "http://local", Model: "nova-3"})
	assert.Equal(t, "http://local", dg.BaseURL)
	assert.Equal(t, "nova-3", dg.Model)

	el := buildElevenLabsConfig(config.ElevenLabsConfig{APIKey: "el-key"})
	assert.Equal(t, "el-key", el.APIKey)
	assert.Equal(t, "eleven_multilingual_v2", el.Model)

	vad := buildVADConfig(config.VADConfig{Threshold: 0.02, HangoverFrames: 10, MinSpeechFrames: 2})
	assert.Equal(t, 0.02, vad.Threshold)
	assert.Equal(t, 10, vad.HangoverFrames)
	assert.Equal(t, 2, vad.MinSpeechFrames)
}
