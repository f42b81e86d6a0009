package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- DefaultConfig aggregate ---

func TestDefaultConfig_ContainsAllSubConfigs(t *testing.T) {
	cfg := DefaultConfig()
	require.NotNil(t, cfg)

	// Each sub-config should be non-zero
	assert.NotEqual(t, ServerConfig{}, cfg.Server)
	assert.NotEqual(t, AgentConfig{}, cfg.Agent)
	assert.NotEqual(t, LLMConfig{}, cfg.LLM)
	assert.NotEqual(t, StoreConfig{}, cfg.Store)
	assert.NotEqual(t, SpeechConfig{}, cfg.Speech)
	assert.NotEqual(t, LogConfig{}, cfg.Log)
	assert.NotEqual(t, TelemetryConfig{}, cfg.Telemetry)
}

func TestDefaultConfig_PassesValidation(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

// --- Individual Default*Config functions ---

func TestDefaultServerConfig(t *testing.T) {
	cfg := DefaultServerConfig()
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.WriteTimeout)
	assert.Equal(t, 15*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, float64(100), cfg.RateLimitRPS)
	assert.Equal(t, 200, cfg.RateLimitBurst)
	assert.False(t, cfg.AuthEnabled)
	assert.Empty(t, cfg.JWTSecret)
}

func TestDefaultAgentConfig(t *testing.T) {
	cfg := DefaultAgentConfig()
	assert.Equal(t, "llama3.1-8b", cfg.Model)
	assert.InDelta(t, 0.7, cfg.Temperature, 0.001)
	assert.Equal(t, 5, cfg.MaxToolSteps)
	assert.Equal(t, "triage", cfg.InitialAgent)
	assert.Equal(t, 0, cfg.TokenBudget)
	assert.Equal(t, "en", cfg.Language)
}

func TestDefaultLLMConfig(t *testing.T) {
	cfg := DefaultLLMConfig()
	assert.Equal(t, "cerebras", cfg.Provider)
	assert.Empty(t, cfg.APIKey)
	assert.Empty(t, cfg.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.RetryBackoff)
}

func TestDefaultStoreConfig(t *testing.T) {
	cfg := DefaultStoreConfig()
	assert.Equal(t, "memory", cfg.Driver)
	assert.Empty(t, cfg.DSN)
	assert.Equal(t, 25, cfg.MaxOpenConns)
	assert.Equal(t, 5, cfg.MaxIdleConns)
	assert.Equal(t, 30*time.Minute, cfg.ConnMaxLifetime)
}

func TestDefaultCacheConfig(t *testing.T) {
	cfg := DefaultCacheConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Addr)
	assert.Empty(t, cfg.Password)
	assert.Equal(t, 0, cfg.DB)
	assert.Equal(t, 5*time.Minute, cfg.TTL)
}

func TestDefaultSpeechConfig(t *testing.T) {
	cfg := DefaultSpeechConfig()
	assert.Equal(t, "https://api.deepgram.com", cfg.Deepgram.BaseURL)
	assert.Equal(t, "nova-2", cfg.Deepgram.Model)
	assert.Empty(t, cfg.Deepgram.APIKey)

	assert.Equal(t, "https://api.elevenlabs.io", cfg.ElevenLabs.BaseURL)
	assert.Equal(t, "eleven_multilingual_v2", cfg.ElevenLabs.Model)
	assert.Empty(t, cfg.ElevenLabs.APIKey)

	assert.InDelta(t, 0.015, cfg.VAD.Threshold, 0.0001)
	assert.Equal(t, 25, cfg.VAD.HangoverFrames)
	assert.Equal(t, 3, cfg.VAD.MinSpeechFrames)
}

func TestDefaultLogConfig(t *testing.T) {
	cfg := DefaultLogConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, []string{"stdout"}, cfg.OutputPaths)
	assert.True(t, cfg.EnableCaller)
	assert.False(t, cfg.EnableStacktrace)
}

func TestDefaultTelemetryConfig(t *testing.T) {
	cfg := DefaultTelemetryConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, "localhost:4317", cfg.OTLPEndpoint)
	assert.Equal(t, "pharmacy-agent", cfg.ServiceName)
	assert.InDelta(t, 0.1, cfg.SampleRate, 0.001)
}
