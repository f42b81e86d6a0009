package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/sarathfrancis90/livekit-pharmacy-agent/config"
	"github.com/sarathfrancis90/livekit-pharmacy-agent/internal/metrics"
	"github.com/sarathfrancis90/livekit-pharmacy-agent/llm/tokenizer"
	"github.com/sarathfrancis90/livekit-pharmacy-agent/pharmacy"
	"github.com/sarathfrancis90/livekit-pharmacy-agent/room"
	"github.com/sarathfrancis90/livekit-pharmacy-agent/speech"
)

// =============================================================================
// 🎙️ voice 命令
// =============================================================================

// runVoice 在本地跑完整语音链路：输入 PCM 文件当作来电麦克风，VAD 切分话语，
// Deepgram 识别，坐席回合，ElevenLabs 合成的回复落盘到输出目录。
// 除了房间是回环的，其余与线上一致。
func runVoice(args []string) {
	fs := flag.NewFlagSet("voice", flag.ExitOnError)
	input := fs.String("input", "", "16-bit mono PCM file used as the caller microphone ('-' for stdin)")
	outputDir := fs.String("output-dir", "", "Directory for synthesized reply clips (omit to discard audio)")
	sampleRate := fs.Int("rate", 16000, "Input sample rate in Hz")
	frameMs := fs.Int("frame-ms", 20, "Input frame duration in milliseconds")
	cfg, _ := loadConfig(fs, args)

	logger := initLogger(cfg.Log)
	defer logger.Sync()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "voice requires --input (a 16-bit mono PCM file, or '-' for stdin)")
		os.Exit(1)
	}
	if cfg.Speech.Deepgram.APIKey == "" || cfg.Speech.ElevenLabs.APIKey == "" {
		fmt.Fprintln(os.Stderr, "voice requires Deepgram and ElevenLabs API keys in the speech config")
		os.Exit(1)
	}

	var audio io.Reader = os.Stdin
	if *input != "-" {
		f, err := os.Open(*input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open input audio: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		audio = f
	}
	if *outputDir != "" {
		if err := os.MkdirAll(*outputDir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create output dir: %v\n", err)
			os.Exit(1)
		}
	}

	collector := metrics.NewCollector("pharmacy_agent", logger)

	st, err := buildStore(cfg.Store, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build store: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	provider, err := buildProvider(cfg, collector, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build provider: %v\n", err)
		os.Exit(1)
	}

	pharmacyCfg := pharmacy.Config{
		Provider:     provider,
		Store:        st,
		Model:        cfg.Agent.Model,
		Temperature:  float32(cfg.Agent.Temperature),
		MaxToolSteps: cfg.Agent.MaxToolSteps,
		Metrics:      collector,
		Logger:       logger,
	}
	if cfg.Agent.TokenBudget > 0 {
		tokenizer.RegisterDefaultTokenizers()
		pharmacyCfg.TokenBudget = cfg.Agent.TokenBudget
		pharmacyCfg.TokenCounter = tokenizer.GetTokenizerOrEstimator(cfg.Agent.Model)
	}

	session, _, err := pharmacy.NewSession(pharmacyCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build session: %v\n", err)
		os.Exit(1)
	}
	defer session.Close()

	lb := room.NewLoopback(0)
	defer lb.Close()

	pipe, err := room.NewPipeline(room.PipelineConfig{
		Room:         lb,
		Engine:       session,
		Recognizer:   speech.NewDeepgramRecognizer(buildDeepgramConfig(cfg.Speech.Deepgram)),
		Synthesizer:  speech.NewElevenLabsSynthesizer(buildElevenLabsConfig(cfg.Speech.ElevenLabs)),
		VAD:          speech.NewEnergyVAD(buildVADConfig(cfg.Speech.VAD)),
		InitialAgent: cfg.Agent.InitialAgent,
		Logger:       logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build pipeline: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go feedPCMFrames(lb, audio, *sampleRate, *frameMs, logger)
	go drainClips(ctx, lb, *outputDir, logger)

	if err := pipe.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Voice call failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Call finished.")
}

// feedPCMFrames 把输入音频按帧送进回环房间，EOF 即来电者挂断。
func feedPCMFrames(lb *room.Loopback, r io.Reader, sampleRate, frameMs int, logger *zap.Logger) {
	defer lb.EndInput()
	<-lb.Ready()

	// 16-bit 单声道
	frameBytes := sampleRate * frameMs / 1000 * 2
	if frameBytes <= 0 {
		logger.Error("invalid frame size", zap.Int("rate", sampleRate), zap.Int("frame_ms", frameMs))
		return
	}

	buf := make([]byte, frameBytes)
	for {
		n, err := io.ReadFull(r, buf)
		if n > 0 {
			frame := room.AudioFrame{
				Data:       append([]byte(nil), buf[:n]...),
				SampleRate: sampleRate,
				Channels:   1,
			}
			if pushErr := lb.Push(frame); pushErr != nil {
				return
			}
		}
		if err != nil {
			if err != io.EOF && err != io.ErrUnexpectedEOF {
				logger.Error("reading input audio failed", zap.Error(err))
			}
			return
		}
	}
}

// drainClips 打印每条回复的字幕，可选地把音频写入 dir。
func drainClips(ctx context.Context, lb *room.Loopback, dir string, logger *zap.Logger) {
	n := 0
	for {
		select {
		case <-ctx.Done():
			return
		case clip := <-lb.Published():
			n++
			fmt.Printf("<< %s\n", clip.Text)
			if dir == "" {
				continue
			}
			name := filepath.Join(dir, fmt.Sprintf("reply-%03d.%s", n, clipExtension(clip.Format)))
			if err := os.WriteFile(name, clip.Data, 0o644); err != nil {
				logger.Error("writing reply clip failed", zap.String("path", name), zap.Error(err))
			}
		}
	}
}

// clipExtension 从合成格式（如 mp3_44100_128）推文件扩展名。
func clipExtension(format string) string {
	if format == "" {
		return "bin"
	}
	if i := strings.IndexByte(format, '_'); i > 0 {
		return format[:i]
	}
	return format
}

func buildDeepgramConfig(cfg config.DeepgramConfig) speech.DeepgramConfig {
	out := speech.DefaultDeepgramConfig()
	out.APIKey = cfg.APIKey
	if cfg.BaseURL != "" {
		out.BaseURL = cfg.BaseURL
	}
	if cfg.Model != "" {
		out.Model = cfg.Model
	}
	return out
}

func buildElevenLabsConfig(cfg config.ElevenLabsConfig) speech.ElevenLabsConfig {
	out := speech.DefaultElevenLabsConfig()
	out.APIKey = cfg.APIKey
	if cfg.BaseURL != "" {
		out.BaseURL = cfg.BaseURL
	}
	if cfg.Model != "" {
		out.Model = cfg.Model
	}
	return out
}

func buildVADConfig(cfg config.VADConfig) speech.VADConfig {
	return speech.VADConfig{
		Threshold:       cfg.Threshold,
		HangoverFrames:  cfg.HangoverFrames,
		MinSpeechFrames: cfg.MinSpeechFrames,
	}
}
