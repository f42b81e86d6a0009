package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	llmpkg "github.com/sarathfrancis90/livekit-pharmacy-agent/llm"
	"github.com/sarathfrancis90/livekit-pharmacy-agent/types"
)

// tracerName 是本中间件发出 span 时使用的 instrumentation scope.
const tracerName = "pharmacy-agent/llm"

// TracingMiddleware 为每次推理调用创建一个 span，记录模型、工具选择策略、
// 当前坐席和 token 用量。未初始化 OTel 时全部为 noop.
func TracingMiddleware() Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *llmpkg.ChatRequest) (*llmpkg.ChatResponse, error) {
			tracer := otel.Tracer(tracerName)

			attrs := []attribute.KeyValue{
				attribute.String("llm.model", req.Model),
				attribute.String("llm.tool_choice", req.ToolChoice),
				attribute.Int("llm.message_count", len(req.Messages)),
			}
			if agentName, ok := types.AgentName(ctx); ok {
				attrs = append(attrs, attribute.String("agent.name", agentName))
			}
			if sessionID, ok := types.SessionID(ctx); ok {
				attrs = append(attrs, attribute.String("session.id", sessionID))
			}

			ctx, span := tracer.Start(ctx, "llm.completion",
				oteltrace.WithSpanKind(oteltrace.SpanKindClient),
				oteltrace.WithAttributes(attrs...),
			)
			defer span.End()

			resp, err := next(ctx, req)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return resp, err
			}

			span.SetAttributes(
				attribute.Int("llm.usage.prompt_tokens", resp.Usage.PromptTokens),
				attribute.Int("llm.usage.completion_tokens", resp.Usage.CompletionTokens),
			)
			return resp, nil
		}
	}
}
