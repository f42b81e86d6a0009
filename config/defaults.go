// =============================================================================
// 📦 PharmacyAgent 默认配置
// =============================================================================
// 提供所有配置项的合理默认值
// =============================================================================
package config

import "time"

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Server:    DefaultServerConfig(),
		Agent:     DefaultAgentConfig(),
		LLM:       DefaultLLMConfig(),
		Store:     DefaultStoreConfig(),
		Speech:    DefaultSpeechConfig(),
		Log:       DefaultLogConfig(),
		Telemetry: DefaultTelemetryConfig(),
	}
}

// DefaultServerConfig 返回默认服务器配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		HTTPPort:        8080,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 15 * time.Second,
		RateLimitRPS:    100,
		RateLimitBurst:  200,
		AuthEnabled:     false,
	}
}

// DefaultAgentConfig 返回默认坐席配置
func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		Model:        "llama3.1-8b",
		Temperature:  0.7,
		MaxToolSteps: 5,
		InitialAgent: "triage",
		TokenBudget:  0,
		Language:     "en",
	}
}

// DefaultLLMConfig 返回默认 LLM 配置
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Provider:     "cerebras",
		APIKey:       "",
		BaseURL:      "",
		Timeout:      30 * time.Second,
		MaxRetries:   3,
		RetryBackoff: 500 * time.Millisecond,
	}
}

// DefaultStoreConfig 返回默认存储配置
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		Driver:          "memory",
		DSN:             "",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
		Cache:           DefaultCacheConfig(),
	}
}

// DefaultCacheConfig 返回默认缓存配置
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:  false,
		Addr:     "localhost:6379",
		Password: "",
		DB:       0,
		TTL:      5 * time.Minute,
	}
}

// DefaultSpeechConfig 返回默认语音配置
func DefaultSpeechConfig() SpeechConfig {
	return SpeechConfig{
		Deepgram: DeepgramConfig{
			BaseURL: "https://api.deepgram.com",
			Model:   "nova-2",
		},
		ElevenLabs: ElevenLabsConfig{
			BaseURL: "https://api.elevenlabs.io",
			Model:   "eleven_multilingual_v2",
		},
		VAD: VADConfig{
			Threshold:       0.015,
			HangoverFrames:  25,
			MinSpeechFrames: 3,
		},
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{"stdout"},
		EnableCaller:     true,
		EnableStacktrace: false,
	}
}

// DefaultTelemetryConfig 返回默认遥测配置
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "pharmacy-agent",
		SampleRate:   0.1,
	}
}
