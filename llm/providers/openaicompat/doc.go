// Package openaicompat provides a shared base implementation for
// OpenAI-compatible LLM providers.
//
// Cerebras (and any other service speaking the OpenAI Chat Completions
// format) shares the same HTTP handling, SSE parsing, message conversion,
// and error mapping. Vendor packages embed openaicompat.Provider and only
// override what differs:
//
//   - Provider name and default model
//   - Base URL
//   - Custom headers (if any)
//   - Request hooks for provider-specific fields
//
// Usage:
//
//	p := openaicompat.New(openaicompat.Config{
//	    ProviderName:  "cerebras",
//	    APIKey:        cfg.APIKey,
//	    BaseURL:       "https://api.cerebras.ai",
//	    DefaultModel:  "llama3.1-8b",
//	    FallbackModel: "llama3.1-8b",
//	}, logger)
package openaicompat
