package types

import (
	"context"
	"testing"
)

func TestContextHelpers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	ctx = WithTraceID(ctx, "t1")
	if got, ok := TraceID(ctx); !ok || got != "t1" {
		t.Fatalf("TraceID mismatch: %v %v", got, ok)
	}

	ctx = WithSessionID(ctx, "sess-1")
	if got, ok := SessionID(ctx); !ok || got != "sess-1" {
		t.Fatalf("SessionID mismatch: %v %v", got, ok)
	}

	ctx = WithTurnID(ctx, "turn-1")
	if got, ok := TurnID(ctx); !ok || got != "turn-1" {
		t.Fatalf("TurnID mismatch: %v %v", got, ok)
	}

	ctx = WithAgentName(ctx, "triage")
	if got, ok := AgentName(ctx); !ok || got != "triage" {
		t.Fatalf("AgentName mismatch: %v %v", got, ok)
	}
}

func TestContextHelpers_EmptyValues(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if _, ok := SessionID(ctx); ok {
		t.Fatalf("expected missing session id")
	}
	if _, ok := AgentName(WithAgentName(ctx, "")); ok {
		t.Fatalf("expected empty agent name to report absent")
	}
}
