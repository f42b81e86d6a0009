package speech

import (
	"context"
	"io"
	"time"
)

// ============================================================
// 语音合成 (TTS)
// ============================================================

// SynthesizeRequest 代表一次文本转语音请求.
type SynthesizeRequest struct {
	Text           string            `json:"text"`
	Model          string            `json:"model,omitempty"`
	Voice          string            `json:"voice,omitempty"`           // 声音绑定 ID, 通常来自 persona 的 voice 字段
	ResponseFormat string            `json:"response_format,omitempty"` // mp3_44100_128, pcm_16000, ...
	Language       string            `json:"language,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// SynthesizeResponse 代表合成结果.
type SynthesizeResponse struct {
	Provider  string        `json:"provider"`
	Model     string        `json:"model"`
	Voice     string        `json:"voice"`
	Audio     io.ReadCloser `json:"-"` // Audio stream
	Format    string        `json:"format"`
	CharCount int           `json:"char_count,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// Synthesizer 定义语音合成接口. 回复文本配合当前坐席的
// 声音绑定转换为音频。
type Synthesizer interface {
	// Synthesize 将文本转换为语音.
	Synthesize(ctx context.Context, req *SynthesizeRequest) (*SynthesizeResponse, error)

	// SynthesizeToFile 将文本转换为语音并保存为文件。
	SynthesizeToFile(ctx context.Context, req *SynthesizeRequest, filepath string) error

	// ListVoices 返回可用声音 。
	ListVoices(ctx context.Context) ([]Voice, error)

	// Name 返回提供者名称 。
	Name() string
}

// Voice 代表一个可用的声音。
type Voice struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Language    string   `json:"language"`
	Gender      string   `json:"gender,omitempty"`
	Description string   `json:"description,omitempty"`
	PreviewURL  string   `json:"preview_url,omitempty"`
	Labels      []string `json:"labels,omitempty"`
}

// ============================================================
// 语音识别 (STT)
// ============================================================

// RecognizeRequest 代表一次语音转文本请求.
type RecognizeRequest struct {
	Audio       io.Reader         `json:"-"`
	AudioURL    string            `json:"audio_url,omitempty"`
	Model       string            `json:"model,omitempty"`
	Language    string            `json:"language,omitempty"` // ISO-639-1 code
	Diarization bool              `json:"diarization,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// RecognizeResponse 代表识别结果.
type RecognizeResponse struct {
	Provider   string        `json:"provider"`
	Model      string        `json:"model"`
	Text       string        `json:"text"`
	Language   string        `json:"language,omitempty"`
	Duration   time.Duration `json:"duration,omitempty"`
	Segments   []Segment     `json:"segments,omitempty"`
	Words      []Word        `json:"words,omitempty"`
	Confidence float64       `json:"confidence,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}

// Segment 代表一个转写片段.
type Segment struct {
	ID         int           `json:"id"`
	Start      time.Duration `json:"start"`
	End        time.Duration `json:"end"`
	Text       string        `json:"text"`
	Speaker    string        `json:"speaker,omitempty"`
	Confidence float64       `json:"confidence,omitempty"`
}

// Word 代表带时间戳的转写词.
type Word struct {
	Word       string        `json:"word"`
	Start      time.Duration `json:"start"`
	End        time.Duration `json:"end"`
	Confidence float64       `json:"confidence,omitempty"`
	Speaker    string        `json:"speaker,omitempty"`
}

// Recognizer 定义语音识别接口. 每个回合把用户的完整话语
// 转写为文本后交给会话处理。
type Recognizer interface {
	// Transcribe 将语音转换为文本 。
	Transcribe(ctx context.Context, req *RecognizeRequest) (*RecognizeResponse, error)

	// TranscribeFile 转写音频文件.
	TranscribeFile(ctx context.Context, filepath string, opts *RecognizeRequest) (*RecognizeResponse, error)

	// Name 返回提供者名称 。
	Name() string

	// SupportedFormats 返回支持的音频格式 。
	SupportedFormats() []string
}

// ============================================================
// 语音边界检测 (VAD)
// ============================================================

// SpeechEvent 是 VAD 对单帧音频的判定结果.
type SpeechEvent int

const (
	// EventNone 表示边界状态没有变化.
	EventNone SpeechEvent = iota
	// EventSpeechStart 表示检测到话语开始.
	EventSpeechStart
	// EventSpeechEnd 表示话语结束 (静音超过挂起窗口).
	EventSpeechEnd
)

func (e SpeechEvent) String() string {
	switch e {
	case EventSpeechStart:
		return "speech_start"
	case EventSpeechEnd:
		return "speech_end"
	default:
		return "none"
	}
}

// VAD 在音频帧流上检测话语边界, 供转写分段使用.
// 实现维护内部状态, 不能跨 goroutine 共享。
type VAD interface {
	// Process 消费一帧 PCM 音频并返回边界事件.
	Process(frame []byte) SpeechEvent

	// Speaking 返回当前是否处于话语中.
	Speaking() bool

	// Reset 清空内部状态.
	Reset()
}
