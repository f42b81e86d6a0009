package middleware

import (
	"context"

	llmpkg "github.com/sarathfrancis90/livekit-pharmacy-agent/llm"
)

// wrappedProvider applies a middleware chain to Completion and delegates
// everything else to the underlying provider.
type wrappedProvider struct {
	inner   llmpkg.Provider
	handler Handler
}

// WrapProvider returns a provider whose Completion runs through the chain.
// Stream, HealthCheck, Name and capability checks pass through unchanged.
func WrapProvider(p llmpkg.Provider, chain *Chain) llmpkg.Provider {
	if chain == nil || chain.Len() == 0 {
		return p
	}
	return &wrappedProvider{
		inner:   p,
		handler: chain.Then(p.Completion),
	}
}

func (w *wrappedProvider) Completion(ctx context.Context, req *llmpkg.ChatRequest) (*llmpkg.ChatResponse, error) {
	return w.handler(ctx, req)
}

func (w *wrappedProvider) Stream(ctx context.Context, req *llmpkg.ChatRequest) (<-chan llmpkg.StreamChunk, error) {
	return w.inner.Stream(ctx, req)
}

func (w *wrappedProvider) HealthCheck(ctx context.Context) (*llmpkg.HealthStatus, error) {
	return w.inner.HealthCheck(ctx)
}

func (w *wrappedProvider) Name() string {
	return w.inner.Name()
}

func (w *wrappedProvider) SupportsNativeFunctionCalling() bool {
	return w.inner.SupportsNativeFunctionCalling()
}
