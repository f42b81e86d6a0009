package middleware

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	llmpkg "github.com/sarathfrancis90/livekit-pharmacy-agent/llm"
	"github.com/sarathfrancis90/livekit-pharmacy-agent/types"
)

// Handler 处理一个请求并返回一个响应.
type Handler func(ctx context.Context, req *llmpkg.ChatRequest) (*llmpkg.ChatResponse, error)

// Middleware 将处理器包裹并添加额外功能.
type Middleware func(next Handler) Handler

// Chain 表示中间件链.
type Chain struct {
	middlewares []Middleware
	mu          sync.RWMutex
}

// NewChain 创建新的中间件链.
func NewChain(middlewares ...Middleware) *Chain {
	return &Chain{
		middlewares: middlewares,
	}
}

// Use 将中间件添加到链中.
func (c *Chain) Use(m Middleware) *Chain {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.middlewares = append(c.middlewares, m)
	return c
}

// Then 用链中的所有中间件包裹一个处理器.
func (c *Chain) Then(h Handler) Handler {
	c.mu.RLock()
	defer c.mu.RUnlock()

	// 按倒序应用中间件
	for i := len(c.middlewares) - 1; i >= 0; i-- {
		h = c.middlewares[i](h)
	}
	return h
}

// Len 返回链中的中间件数量.
func (c *Chain) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.middlewares)
}

// 内置中间件

// LoggingMiddleware 记录请求/响应详情.
func LoggingMiddleware(logger *zap.Logger) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *llmpkg.ChatRequest) (*llmpkg.ChatResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)
			duration := time.Since(start)

			if err != nil {
				logger.Warn("llm request failed",
					zap.String("model", req.Model),
					zap.Int("messages", len(req.Messages)),
					zap.Duration("duration", duration),
					zap.Error(err),
				)
			} else {
				logger.Debug("llm request finished",
					zap.String("model", req.Model),
					zap.Int("messages", len(req.Messages)),
					zap.Int("total_tokens", resp.Usage.TotalTokens),
					zap.Duration("duration", duration),
				)
			}
			return resp, err
		}
	}
}

// TimeoutMiddleware 对请求添加超时.
func TimeoutMiddleware(timeout time.Duration) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *llmpkg.ChatRequest) (*llmpkg.ChatResponse, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			return next(ctx, req)
		}
	}
}

// RetryMiddleware 重试失败的请求。只重试带可重试标记的错误，
// 认证失败和 4xx 级错误立即上抛.
func RetryMiddleware(maxRetries int, backoff time.Duration) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *llmpkg.ChatRequest) (*llmpkg.ChatResponse, error) {
			var lastErr error
			for i := 0; i <= maxRetries; i++ {
				resp, err := next(ctx, req)
				if err == nil {
					return resp, nil
				}
				lastErr = err
				if !types.IsRetryable(err) {
					return nil, err
				}

				if i < maxRetries {
					select {
					case <-ctx.Done():
						return nil, ctx.Err()
					case <-time.After(backoff * time.Duration(i+1)):
					}
				}
			}
			return nil, lastErr
		}
	}
}

// MetricsCollector 定义指标收集接口.
type MetricsCollector interface {
	RecordRequest(model string, duration time.Duration, success bool)
	RecordTokens(model string, tokens int)
}

// MetricsMiddleware 收集请求的指标.
func MetricsMiddleware(collector MetricsCollector) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *llmpkg.ChatRequest) (*llmpkg.ChatResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)
			duration := time.Since(start)

			collector.RecordRequest(req.Model, duration, err == nil)
			if resp != nil {
				collector.RecordTokens(req.Model, resp.Usage.TotalTokens)
			}

			return resp, err
		}
	}
}

// BlockingRateLimiter 阻塞式速率限制接口，超出速率时阻塞等待.
// golang.org/x/time/rate 的 *rate.Limiter 直接满足此接口.
type BlockingRateLimiter interface {
	Wait(ctx context.Context) error
}

// RateLimitMiddleware 应用速率限制.
func RateLimitMiddleware(limiter BlockingRateLimiter) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *llmpkg.ChatRequest) (*llmpkg.ChatResponse, error) {
			if err := limiter.Wait(ctx); err != nil {
				return nil, err
			}
			return next(ctx, req)
		}
	}
}

// PanicError 表示已恢复的 panic.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return "panic recovered"
}

// RecoveryMiddleware 从 panic 中恢复.
func RecoveryMiddleware(onPanic func(any)) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *llmpkg.ChatRequest) (resp *llmpkg.ChatResponse, err error) {
			defer func() {
				if r := recover(); r != nil {
					if onPanic != nil {
						onPanic(r)
					}
					err = &PanicError{Value: r}
				}
			}()
			return next(ctx, req)
		}
	}
}
