package cerebras

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sarathfrancis90/livekit-pharmacy-agent/llm"
	"github.com/sarathfrancis90/livekit-pharmacy-agent/llm/providers"
)

func TestNewCerebrasProvider_Defaults(t *testing.T) {
	p := NewCerebrasProvider(providers.CerebrasConfig{
		BaseProviderConfig: providers.BaseProviderConfig{APIKey: "key"},
	}, zap.NewNop())

	assert.Equal(t, "cerebras", p.Name())
	assert.Equal(t, "https://api.cerebras.ai", p.Cfg.BaseURL)
	assert.Equal(t, DefaultModel, p.Cfg.FallbackModel)
	assert.True(t, p.SupportsNativeFunctionCalling())
}

func TestNewCerebrasProvider_CustomBaseURL(t *testing.T) {
	p := NewCerebrasProvider(providers.CerebrasConfig{
		BaseProviderConfig: providers.BaseProviderConfig{
			APIKey:  "key",
			BaseURL: "https://proxy.internal",
			Model:   "llama3.1-70b",
			Timeout: 5 * time.Second,
		},
	}, zap.NewNop())

	assert.Equal(t, "https://proxy.internal", p.Cfg.BaseURL)
	assert.Equal(t, "llama3.1-70b", p.Cfg.DefaultModel)
	assert.Equal(t, 5*time.Second, p.Client.Timeout)
}

func TestCerebrasProvider_Completion_FallbackModel(t *testing.T) {
	var receivedModel string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body providers.OpenAICompatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		receivedModel = body.Model

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(providers.OpenAICompatResponse{
			ID: "r1", Model: body.Model,
			Choices: []providers.OpenAICompatChoice{
				{Index: 0, FinishReason: "stop", Message: providers.OpenAICompatMessage{Role: "assistant", Content: "Hello there!"}},
			},
			Usage: &providers.OpenAICompatUsage{PromptTokens: 3, CompletionTokens: 3, TotalTokens: 6},
		})
	}))
	t.Cleanup(server.Close)

	p := NewCerebrasProvider(providers.CerebrasConfig{
		BaseProviderConfig: providers.BaseProviderConfig{APIKey: "key", BaseURL: server.URL},
	}, zap.NewNop())

	resp, err := p.Completion(context.Background(), &llm.ChatRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "Hi"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "llama3.1-8b", receivedModel)
	assert.Equal(t, "cerebras", resp.Provider)
	assert.Equal(t, "Hello there!", resp.First().Content)
}
