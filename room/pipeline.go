package room

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/sarathfrancis90/livekit-pharmacy-agent/agent"
	"github.com/sarathfrancis90/livekit-pharmacy-agent/speech"
)

// TurnEngine is the conversational core the pipeline drives. *agent.Session
// satisfies it.
type TurnEngine interface {
	Start(ctx context.Context, initialAgent string) (*agent.TurnResult, error)
	ProcessTurn(ctx context.Context, utterance string) (*agent.TurnResult, error)
}

// preBufferFrames compensates VAD start debounce: the frames inspected
// before the start event fires still belong to the utterance.
const preBufferFrames = 8

// Spoken when recognition fails and there is no utterance to run a turn on.
const replyNotUnderstood = "I'm sorry, I didn't catch that. Could you say it again?"

// PipelineConfig wires one voice call.
type PipelineConfig struct {
	Room        Room
	Engine      TurnEngine
	Recognizer  speech.Recognizer
	Synthesizer speech.Synthesizer
	VAD         speech.VAD

	// InitialAgent greets the caller once the room is ready.
	InitialAgent string

	// Language optionally hints the recognizer.
	Language string

	// AudioFormat overrides the synthesizer's default output format.
	AudioFormat string

	Logger *zap.Logger
}

// Validate checks required collaborators.
func (c PipelineConfig) Validate() error {
	if c.Room == nil {
		return fmt.Errorf("pipeline: room is required")
	}
	if c.Engine == nil {
		return fmt.Errorf("pipeline: turn engine is required")
	}
	if c.Recognizer == nil {
		return fmt.Errorf("pipeline: recognizer is required")
	}
	if c.Synthesizer == nil {
		return fmt.Errorf("pipeline: synthesizer is required")
	}
	if c.VAD == nil {
		return fmt.Errorf("pipeline: vad is required")
	}
	if c.InitialAgent == "" {
		return fmt.Errorf("pipeline: initial agent is required")
	}
	return nil
}

// Pipeline runs one voice call: room audio in, VAD-segmented utterances
// through the recognizer into the turn engine, replies synthesized with the
// speaking agent's voice and published back into the room.
//
// A pipeline is single-use and single-goroutine; create one per call.
type Pipeline struct {
	room    Room
	engine  TurnEngine
	stt     speech.Recognizer
	tts     speech.Synthesizer
	vad     speech.VAD
	initial string

	language string
	format   string
	logger   *zap.Logger

	// lastVoice carries the current agent's voice binding between turns so
	// pipeline-level fallbacks speak with a consistent voice.
	lastVoice string
}

// NewPipeline validates the wiring and builds a pipeline.
func NewPipeline(cfg PipelineConfig) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		room:     cfg.Room,
		engine:   cfg.Engine,
		stt:      cfg.Recognizer,
		tts:      cfg.Synthesizer,
		vad:      cfg.VAD,
		initial:  cfg.InitialAgent,
		language: cfg.Language,
		format:   cfg.AudioFormat,
		logger:   logger.With(zap.String("component", "voice_pipeline")),
	}, nil
}

// Run connects the room, speaks the greeting, then loops until the
// participant leaves or ctx is cancelled. The room is left for the caller
// to close.
func (p *Pipeline) Run(ctx context.Context) error {
	if err := p.room.Connect(ctx); err != nil {
		return fmt.Errorf("room connect: %w", err)
	}

	select {
	case <-p.room.Ready():
	case <-ctx.Done():
		return ctx.Err()
	}

	greeting, err := p.engine.Start(ctx, p.initial)
	if err != nil {
		return fmt.Errorf("session start: %w", err)
	}
	p.logger.Info("call started", zap.String("agent", greeting.Agent))
	p.speak(ctx, greeting.Reply, greeting.Voice)

	var utterance bytes.Buffer
	pre := make([][]byte, 0, preBufferFrames)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case frame, ok := <-p.room.Incoming():
			if !ok {
				p.logger.Info("participant left, ending call")
				return nil
			}
			p.consumeFrame(ctx, frame, &utterance, &pre)
		}
	}
}

// consumeFrame advances the VAD and, on an end-of-speech boundary, runs the
// finished utterance through recognition and a turn.
func (p *Pipeline) consumeFrame(ctx context.Context, frame AudioFrame, utterance *bytes.Buffer, pre *[][]byte) {
	switch p.vad.Process(frame.Data) {
	case speech.EventSpeechStart:
		for _, f := range *pre {
			utterance.Write(f)
		}
		*pre = (*pre)[:0]
		utterance.Write(frame.Data)

	case speech.EventSpeechEnd:
		utterance.Write(frame.Data)
		p.handleUtterance(ctx, utterance.Bytes())
		utterance.Reset()

	default:
		if p.vad.Speaking() {
			utterance.Write(frame.Data)
			return
		}
		if len(*pre) == preBufferFrames {
			copy(*pre, (*pre)[1:])
			*pre = (*pre)[:preBufferFrames-1]
		}
		*pre = append(*pre, frame.Data)
	}
}

func (p *Pipeline) handleUtterance(ctx context.Context, audio []byte) {
	if len(audio) == 0 {
		return
	}

	rec, err := p.stt.Transcribe(ctx, &speech.RecognizeRequest{
		Audio:    bytes.NewReader(audio),
		Language: p.language,
	})
	if err != nil {
		p.logger.Error("transcription failed", zap.Error(err))
		p.speak(ctx, replyNotUnderstood, p.lastVoice)
		return
	}

	text := strings.TrimSpace(rec.Text)
	if text == "" {
		p.logger.Debug("empty transcript, skipping turn")
		return
	}

	result, err := p.engine.ProcessTurn(ctx, text)
	if err != nil {
		// Failed turns still carry a speakable fallback reply.
		p.logger.Error("turn failed", zap.Error(err))
	}
	if result == nil {
		return
	}
	if result.Transferred {
		p.logger.Info("agent handoff", zap.String("agent", result.Agent))
	}
	p.speak(ctx, result.Reply, result.Voice)
}

// speak synthesizes text with the given voice binding and publishes it.
// Synthesis and publish failures end the reply, not the call.
func (p *Pipeline) speak(ctx context.Context, text, voice string) {
	if text == "" {
		return
	}
	if voice == "" {
		voice = p.lastVoice
	}

	resp, err := p.tts.Synthesize(ctx, &speech.SynthesizeRequest{
		Text:           text,
		Voice:          voice,
		ResponseFormat: p.format,
	})
	if err != nil {
		p.logger.Error("synthesis failed", zap.Error(err))
		return
	}
	defer resp.Audio.Close()

	data, err := io.ReadAll(resp.Audio)
	if err != nil {
		p.logger.Error("reading synthesized audio failed", zap.Error(err))
		return
	}

	if err := p.room.Publish(ctx, AudioClip{
		Data:   data,
		Format: resp.Format,
		Voice:  resp.Voice,
		Text:   text,
	}); err != nil {
		p.logger.Error("publish failed", zap.Error(err))
		return
	}
	if voice != "" {
		p.lastVoice = voice
	}
}
