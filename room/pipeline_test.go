package room

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarathfrancis90/livekit-pharmacy-agent/agent"
	"github.com/sarathfrancis90/livekit-pharmacy-agent/speech"
)

// --- Mocks ---

type scriptedEngine struct {
	mu      sync.Mutex
	started string
	turns   []string

	greet    *agent.TurnResult
	greetErr error
	results  []*agent.TurnResult
	turnErr  error
}

func (e *scriptedEngine) Start(_ context.Context, initialAgent string) (*agent.TurnResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.started = initialAgent
	return e.greet, e.greetErr
}

func (e *scriptedEngine) ProcessTurn(_ context.Context, utterance string) (*agent.TurnResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.turns = append(e.turns, utterance)
	if len(e.results) == 0 {
		return nil, errors.New("no scripted result")
	}
	r := e.results[0]
	e.results = e.results[1:]
	return r, e.turnErr
}

func (e *scriptedEngine) recordedTurns() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.turns...)
}

type fakeRecognizer struct {
	mu       sync.Mutex
	text     string
	err      error
	audioLen int
}

func (r *fakeRecognizer) Transcribe(_ context.Context, req *speech.RecognizeRequest) (*speech.RecognizeResponse, error) {
	data, _ := io.ReadAll(req.Audio)
	r.mu.Lock()
	r.audioLen = len(data)
	r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	return &speech.RecognizeResponse{Provider: "fake", Text: r.text}, nil
}

func (r *fakeRecognizer) TranscribeFile(ctx context.Context, _ string, opts *speech.RecognizeRequest) (*speech.RecognizeResponse, error) {
	return r.Transcribe(ctx, opts)
}

func (r *fakeRecognizer) Name() string               { return "fake" }
func (r *fakeRecognizer) SupportedFormats() []string { return []string{"pcm"} }

func (r *fakeRecognizer) receivedAudioLen() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.audioLen
}

type fakeSynthesizer struct {
	err error
}

func (s *fakeSynthesizer) Synthesize(_ context.Context, req *speech.SynthesizeRequest) (*speech.SynthesizeResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &speech.SynthesizeResponse{
		Provider: "fake",
		Voice:    req.Voice,
		Audio:    io.NopCloser(strings.NewReader("audio:" + req.Text)),
		Format:   "mp3_44100_128",
	}, nil
}

func (s *fakeSynthesizer) SynthesizeToFile(context.Context, *speech.SynthesizeRequest, string) error {
	return errors.New("not used")
}

func (s *fakeSynthesizer) ListVoices(context.Context) ([]speech.Voice, error) { return nil, nil }
func (s *fakeSynthesizer) Name() string                                       { return "fake" }

// --- Helpers ---

func pcmTestFrame(amplitude int16, samples int) AudioFrame {
	data := make([]byte, samples*2)
	for i := 0; i < samples; i++ {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(amplitude))
	}
	return AudioFrame{Data: data, SampleRate: 16000, Channels: 1}
}

func testPipeline(t *testing.T, r *Loopback, engine *scriptedEngine, stt *fakeRecognizer, tts *fakeSynthesizer) *Pipeline {
	t.Helper()
	p, err := NewPipeline(PipelineConfig{
		Room:         r,
		Engine:       engine,
		Recognizer:   stt,
		Synthesizer:  tts,
		VAD:          speech.NewEnergyVAD(speech.VADConfig{Threshold: 0.01, HangoverFrames: 2, MinSpeechFrames: 2}),
		InitialAgent: "triage",
	})
	require.NoError(t, err)
	return p
}

func waitClip(t *testing.T, r *Loopback) AudioClip {
	t.Helper()
	select {
	case clip := <-r.Published():
		return clip
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for published clip")
		return AudioClip{}
	}
}

func speakUtterance(t *testing.T, r *Loopback) {
	t.Helper()
	loud := pcmTestFrame(8000, 160)
	quiet := pcmTestFrame(0, 160)
	for i := 0; i < 3; i++ {
		require.NoError(t, r.Push(loud))
	}
	for i := 0; i < 2; i++ {
		require.NoError(t, r.Push(quiet))
	}
}

// --- Tests ---

func TestNewPipeline_Validation(t *testing.T) {
	base := func() PipelineConfig {
		return PipelineConfig{
			Room:         NewLoopback(4),
			Engine:       &scriptedEngine{},
			Recognizer:   &fakeRecognizer{},
			Synthesizer:  &fakeSynthesizer{},
			VAD:          speech.NewEnergyVAD(speech.VADConfig{}),
			InitialAgent: "triage",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*PipelineConfig)
		wantErr string
	}{
		{"missing room", func(c *PipelineConfig) { c.Room = nil }, "room is required"},
		{"missing engine", func(c *PipelineConfig) { c.Engine = nil }, "turn engine is required"},
		{"missing recognizer", func(c *PipelineConfig) { c.Recognizer = nil }, "recognizer is required"},
		{"missing synthesizer", func(c *PipelineConfig) { c.Synthesizer = nil }, "synthesizer is required"},
		{"missing vad", func(c *PipelineConfig) { c.VAD = nil }, "vad is required"},
		{"missing initial agent", func(c *PipelineConfig) { c.InitialAgent = "" }, "initial agent is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			_, err := NewPipeline(cfg)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}

	p, err := NewPipeline(base())
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestPipeline_GreetingThenTurn(t *testing.T) {
	r := NewLoopback(16)
	engine := &scriptedEngine{
		greet: &agent.TurnResult{Reply: "Hi! How can I help you today?", Agent: "triage", Voice: "voice-triage"},
		results: []*agent.TurnResult{
			{Reply: "Prescription RX123 is ready for pickup.", Agent: "prescription", Voice: "voice-rx", Transferred: true},
		},
	}
	stt := &fakeRecognizer{text: "check my prescription status"}
	tts := &fakeSynthesizer{}
	p := testPipeline(t, r, engine, stt, tts)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	greeting := waitClip(t, r)
	assert.Equal(t, "Hi! How can I help you today?", greeting.Text)
	assert.Equal(t, "voice-triage", greeting.Voice)
	assert.Equal(t, []byte("audio:Hi! How can I help you today?"), greeting.Data)

	speakUtterance(t, r)

	reply := waitClip(t, r)
	assert.Equal(t, "Prescription RX123 is ready for pickup.", reply.Text)
	assert.Equal(t, "voice-rx", reply.Voice, "reply is spoken with the new agent's voice")

	assert.Equal(t, []string{"check my prescription status"}, engine.recordedTurns())
	// 3 loud + 2 trailing silence frames at 160 samples each.
	assert.Equal(t, 5*160*2, stt.receivedAudioLen(), "utterance includes debounced head frames")

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestPipeline_ParticipantLeaveEndsRun(t *testing.T) {
	r := NewLoopback(16)
	engine := &scriptedEngine{
		greet: &agent.TurnResult{Reply: "Hello!", Agent: "triage", Voice: "voice-triage"},
	}
	p := testPipeline(t, r, engine, &fakeRecognizer{text: "x"}, &fakeSynthesizer{})

	done := make(chan error, 1)
	go func() { done <- p.Run(context.Background()) }()

	waitClip(t, r)
	r.EndInput()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not end after input closed")
	}
	assert.Equal(t, "triage", engine.started)
}

func TestPipeline_EmptyTranscriptSkipsTurn(t *testing.T) {
	r := NewLoopback(16)
	engine := &scriptedEngine{
		greet: &agent.TurnResult{Reply: "Hello!", Agent: "triage", Voice: "voice-triage"},
	}
	stt := &fakeRecognizer{text: "   "}
	p := testPipeline(t, r, engine, stt, &fakeSynthesizer{})

	done := make(chan error, 1)
	go func() { done <- p.Run(context.Background()) }()

	waitClip(t, r)
	speakUtterance(t, r)
	r.EndInput()

	require.NoError(t, <-done)
	assert.Empty(t, engine.recordedTurns(), "blank transcripts never reach the engine")
	assert.Empty(t, r.Published(), "nothing spoken for a blank transcript")
}

func TestPipeline_RecognizerFailureSpeaksFallback(t *testing.T) {
	r := NewLoopback(16)
	engine := &scriptedEngine{
		greet: &agent.TurnResult{Reply: "Hello!", Agent: "triage", Voice: "voice-triage"},
	}
	stt := &fakeRecognizer{err: errors.New("stt down")}
	p := testPipeline(t, r, engine, stt, &fakeSynthesizer{})

	done := make(chan error, 1)
	go func() { done <- p.Run(context.Background()) }()

	waitClip(t, r)
	speakUtterance(t, r)

	fallback := waitClip(t, r)
	assert.Equal(t, "I'm sorry, I didn't catch that. Could you say it again?", fallback.Text)
	assert.Equal(t, "voice-triage", fallback.Voice, "fallback keeps the current agent's voice")
	assert.Empty(t, engine.recordedTurns())

	r.EndInput()
	require.NoError(t, <-done)
}

func TestPipeline_FailedTurnStillSpeaksFallbackReply(t *testing.T) {
	r := NewLoopback(16)
	engine := &scriptedEngine{
		greet:   &agent.TurnResult{Reply: "Hello!", Agent: "triage", Voice: "voice-triage"},
		results: []*agent.TurnResult{{Reply: "I'm sorry, something went wrong on my end.", Agent: "triage", Voice: "voice-triage"}},
		turnErr: errors.New("provider unavailable"),
	}
	p := testPipeline(t, r, engine, &fakeRecognizer{text: "hello"}, &fakeSynthesizer{})

	done := make(chan error, 1)
	go func() { done <- p.Run(context.Background()) }()

	waitClip(t, r)
	speakUtterance(t, r)

	reply := waitClip(t, r)
	assert.Equal(t, "I'm sorry, something went wrong on my end.", reply.Text)

	r.EndInput()
	require.NoError(t, <-done)
}

func TestPipeline_SynthesisFailureDoesNotEndCall(t *testing.T) {
	r := NewLoopback(16)
	engine := &scriptedEngine{
		greet: &agent.TurnResult{Reply: "Hello!", Agent: "triage", Voice: "voice-triage"},
	}
	p := testPipeline(t, r, engine, &fakeRecognizer{text: "x"}, &fakeSynthesizer{err: errors.New("tts down")})

	done := make(chan error, 1)
	go func() { done <- p.Run(context.Background()) }()

	// Greeting synthesis fails; the call keeps running.
	r.EndInput()
	require.NoError(t, <-done)
	assert.Empty(t, r.Published())
}

func TestPipeline_StartFailure(t *testing.T) {
	r := NewLoopback(16)
	engine := &scriptedEngine{greetErr: errors.New("no such agent")}
	p := testPipeline(t, r, engine, &fakeRecognizer{}, &fakeSynthesizer{})

	err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session start")
}

func TestPipeline_ConnectFailure(t *testing.T) {
	r := NewLoopback(16)
	require.NoError(t, r.Close())

	p := testPipeline(t, r, &scriptedEngine{greet: &agent.TurnResult{}}, &fakeRecognizer{}, &fakeSynthesizer{})

	err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "room connect")
}

func TestPipeline_UtteranceBufferResetsBetweenTurns(t *testing.T) {
	r := NewLoopback(32)
	engine := &scriptedEngine{
		greet: &agent.TurnResult{Reply: "Hello!", Agent: "triage", Voice: "voice-triage"},
		results: []*agent.TurnResult{
			{Reply: "first", Agent: "triage", Voice: "voice-triage"},
			{Reply: "second", Agent: "triage", Voice: "voice-triage"},
		},
	}
	stt := &fakeRecognizer{text: "hello"}
	p := testPipeline(t, r, engine, stt, &fakeSynthesizer{})

	done := make(chan error, 1)
	go func() { done <- p.Run(context.Background()) }()

	waitClip(t, r)

	speakUtterance(t, r)
	waitClip(t, r)
	firstLen := stt.receivedAudioLen()

	speakUtterance(t, r)
	waitClip(t, r)
	secondLen := stt.receivedAudioLen()

	assert.Equal(t, firstLen, secondLen, "second utterance must not contain the first")

	r.EndInput()
	require.NoError(t, <-done)
}
