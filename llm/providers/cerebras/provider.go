package cerebras

import (
	"go.uber.org/zap"

	"github.com/sarathfrancis90/livekit-pharmacy-agent/llm/providers"
	"github.com/sarathfrancis90/livekit-pharmacy-agent/llm/providers/openaicompat"
)

// DefaultModel 是未显式配置模型时使用的兜底模型.
const DefaultModel = "llama3.1-8b"

// CerebrasProvider 实现 Cerebras 推理服务的 Provider 适配.
// Cerebras 使用 OpenAI 兼容的 API 格式.
type CerebrasProvider struct {
	*openaicompat.Provider
}

// NewCerebrasProvider 创建新的 Cerebras 提供者实例.
func NewCerebrasProvider(cfg providers.CerebrasConfig, logger *zap.Logger) *CerebrasProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.cerebras.ai"
	}

	return &CerebrasProvider{
		Provider: openaicompat.New(openaicompat.Config{
			ProviderName:  "cerebras",
			APIKey:        cfg.APIKey,
			BaseURL:       cfg.BaseURL,
			DefaultModel:  cfg.Model,
			FallbackModel: DefaultModel,
			Timeout:       cfg.Timeout,
		}, logger),
	}
}
