package speech

import "time"

// DeepgramConfig 配置 Deepgram STT 供应商.
type DeepgramConfig struct {
	APIKey  string        `json:"api_key" yaml:"api_key"`
	BaseURL string        `json:"base_url" yaml:"base_url"`
	Model   string        `json:"model,omitempty" yaml:"model,omitempty"` // nova-2
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// ElevenLabsConfig 配置 ElevenLabs TTS 供应商.
type ElevenLabsConfig struct {
	APIKey  string        `json:"api_key" yaml:"api_key"`
	BaseURL string        `json:"base_url" yaml:"base_url"`
	Model   string        `json:"model,omitempty" yaml:"model,omitempty"` // eleven_multilingual_v2
	VoiceID string        `json:"voice_id,omitempty" yaml:"voice_id,omitempty"`
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// VADConfig 配置能量 VAD.
type VADConfig struct {
	// Threshold 是归一化 RMS 能量阈值 (0..1), 超过视为语音.
	Threshold float64 `json:"threshold" yaml:"threshold"`
	// HangoverFrames 是判定话语结束前允许的连续静音帧数.
	HangoverFrames int `json:"hangover_frames" yaml:"hangover_frames"`
	// MinSpeechFrames 是触发话语开始所需的连续语音帧数, 过滤瞬时噪声.
	MinSpeechFrames int `json:"min_speech_frames" yaml:"min_speech_frames"`
}

// DefaultDeepgramConfig 返回默认 Deepgram 配置 。
func DefaultDeepgramConfig() DeepgramConfig {
	return DeepgramConfig{
		BaseURL: "https://api.deepgram.com",
		Model:   "nova-2",
		Timeout: 120 * time.Second,
	}
}

// DefaultElevenLabsConfig 返回默认 ElevenLabs 配置 。
func DefaultElevenLabsConfig() ElevenLabsConfig {
	return ElevenLabsConfig{
		BaseURL: "https://api.elevenlabs.io",
		Model:   "eleven_multilingual_v2",
		Timeout: 60 * time.Second,
	}
}

// DefaultVADConfig 返回适合 16kHz 16-bit PCM 的默认 VAD 配置 。
func DefaultVADConfig() VADConfig {
	return VADConfig{
		Threshold:       0.015,
		HangoverFrames:  25,
		MinSpeechFrames: 3,
	}
}
