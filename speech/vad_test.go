package speech

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

// pcmFrame 生成固定幅值的 16-bit LE PCM 帧.
func pcmFrame(amplitude int16, samples int) []byte {
	frame := make([]byte, samples*2)
	for i := 0; i < samples; i++ {
		binary.LittleEndian.PutUint16(frame[i*2:], uint16(amplitude))
	}
	return frame
}

func testVAD() *EnergyVAD {
	return NewEnergyVAD(VADConfig{Threshold: 0.01, HangoverFrames: 4, MinSpeechFrames: 2})
}

func TestEnergyVAD_SilenceProducesNoEvents(t *testing.T) {
	v := testVAD()

	for i := 0; i < 20; i++ {
		assert.Equal(t, EventNone, v.Process(pcmFrame(0, 160)))
	}
	assert.False(t, v.Speaking())
}

func TestEnergyVAD_SpeechStartAfterMinFrames(t *testing.T) {
	v := testVAD()

	loud := pcmFrame(8000, 160)
	assert.Equal(t, EventNone, v.Process(loud), "first loud frame is debounced")
	assert.False(t, v.Speaking())
	assert.Equal(t, EventSpeechStart, v.Process(loud))
	assert.True(t, v.Speaking())
	assert.Equal(t, EventNone, v.Process(loud), "start fires once per utterance")
}

func TestEnergyVAD_TransientNoiseIgnored(t *testing.T) {
	v := testVAD()

	assert.Equal(t, EventNone, v.Process(pcmFrame(8000, 160)))
	assert.Equal(t, EventNone, v.Process(pcmFrame(0, 160)), "silence resets the debounce run")
	assert.Equal(t, EventNone, v.Process(pcmFrame(8000, 160)))
	assert.False(t, v.Speaking())
}

func TestEnergyVAD_SpeechEndAfterHangover(t *testing.T) {
	v := testVAD()

	loud := pcmFrame(8000, 160)
	quiet := pcmFrame(0, 160)

	v.Process(loud)
	assert.Equal(t, EventSpeechStart, v.Process(loud))

	for i := 0; i < 3; i++ {
		assert.Equal(t, EventNone, v.Process(quiet), "silence inside hangover window")
	}
	assert.True(t, v.Speaking())
	assert.Equal(t, EventSpeechEnd, v.Process(quiet))
	assert.False(t, v.Speaking())
}

func TestEnergyVAD_BriefPauseDoesNotEndSpeech(t *testing.T) {
	v := testVAD()

	loud := pcmFrame(8000, 160)
	quiet := pcmFrame(0, 160)

	v.Process(loud)
	v.Process(loud)

	v.Process(quiet)
	v.Process(quiet)
	assert.Equal(t, EventNone, v.Process(loud), "speech resumes, hangover resets")

	for i := 0; i < 3; i++ {
		v.Process(quiet)
	}
	assert.True(t, v.Speaking(), "hangover counts from the last loud frame")
}

func TestEnergyVAD_Reset(t *testing.T) {
	v := testVAD()

	loud := pcmFrame(8000, 160)
	v.Process(loud)
	v.Process(loud)
	assert.True(t, v.Speaking())

	v.Reset()
	assert.False(t, v.Speaking())
	assert.Equal(t, EventNone, v.Process(loud), "debounce restarts after reset")
}

func TestEnergyVAD_DefaultsApplied(t *testing.T) {
	v := NewEnergyVAD(VADConfig{})
	def := DefaultVADConfig()
	assert.Equal(t, def.Threshold, v.cfg.Threshold)
	assert.Equal(t, def.HangoverFrames, v.cfg.HangoverFrames)
	assert.Equal(t, def.MinSpeechFrames, v.cfg.MinSpeechFrames)
}

func TestFrameRMS(t *testing.T) {
	assert.Zero(t, frameRMS(nil))
	assert.Zero(t, frameRMS([]byte{0x01}), "incomplete sample is ignored")
	assert.Zero(t, frameRMS(pcmFrame(0, 160)))

	full := frameRMS(pcmFrame(32767, 160))
	assert.InDelta(t, 1.0, full, 0.001)

	half := frameRMS(pcmFrame(16384, 160))
	assert.InDelta(t, 0.5, half, 0.001)
}

func TestSpeechEvent_String(t *testing.T) {
	assert.Equal(t, "speech_start", EventSpeechStart.String())
	assert.Equal(t, "speech_end", EventSpeechEnd.String())
	assert.Equal(t, "none", EventNone.String())
}
