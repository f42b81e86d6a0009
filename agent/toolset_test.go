package agent

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarathfrancis90/livekit-pharmacy-agent/types"
)

func TestToolSet_Register(t *testing.T) {
	ts := NewToolSet()
	tool := Tool{
		Schema: types.ToolSchema{Name: "get_pharmacy_info"},
		Handler: func(ctx context.Context, args json.RawMessage) (ToolOutput, error) {
			return ToolOutput{Text: "info"}, nil
		},
	}

	require.NoError(t, ts.Register(tool))

	got, ok := ts.Get("get_pharmacy_info")
	require.True(t, ok)
	assert.Equal(t, "get_pharmacy_info", got.Schema.Name)
	assert.Contains(t, ts.Names(), "get_pharmacy_info")
}

func TestToolSet_Register_Validation(t *testing.T) {
	ts := NewToolSet()

	err := ts.Register(Tool{Schema: types.ToolSchema{Name: ""}})
	assert.Error(t, err, "empty name is rejected")

	err = ts.Register(Tool{Schema: types.ToolSchema{Name: "broken"}})
	assert.Error(t, err, "nil handler is rejected")
}

func TestToolSet_Register_Duplicate(t *testing.T) {
	ts := NewToolSet()
	tool := Tool{
		Schema: types.ToolSchema{Name: "update_name"},
		Handler: func(ctx context.Context, args json.RawMessage) (ToolOutput, error) {
			return ToolOutput{}, nil
		},
	}

	require.NoError(t, ts.Register(tool))
	err := ts.Register(tool)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")

	assert.Panics(t, func() { ts.MustRegister(tool) })
}

func TestToolSet_Schemas_SelectsAllowedSubset(t *testing.T) {
	ts := NewToolSet()
	for _, name := range []string{"check_prescription_status", "check_medicine_availability", "get_pharmacy_info"} {
		ts.MustRegister(Tool{
			Schema: types.ToolSchema{Name: name},
			Handler: func(ctx context.Context, args json.RawMessage) (ToolOutput, error) {
				return ToolOutput{}, nil
			},
		})
	}

	schemas := ts.Schemas([]string{"get_pharmacy_info", "check_prescription_status", "not_registered"})
	require.Len(t, schemas, 2)
	assert.Equal(t, "get_pharmacy_info", schemas[0].Name)
	assert.Equal(t, "check_prescription_status", schemas[1].Name)
}

func TestToolSet_Execute_Success(t *testing.T) {
	ts := NewToolSet()
	var gotArgs string
	ts.MustRegister(Tool{
		Schema: types.ToolSchema{Name: "check_prescription_status"},
		Handler: func(ctx context.Context, args json.RawMessage) (ToolOutput, error) {
			gotArgs = string(args)
			return ToolOutput{Text: "ready for pickup"}, nil
		},
	})

	call := types.ToolCall{
		ID:        "call-1",
		Name:      "check_prescription_status",
		Arguments: json.RawMessage(`{"prescription_id":"RX123"}`),
	}
	out, result := ts.Execute(context.Background(), call)

	assert.Equal(t, "ready for pickup", out.Text)
	assert.Empty(t, out.TransferTo)
	assert.JSONEq(t, `{"prescription_id":"RX123"}`, gotArgs)

	assert.Equal(t, "call-1", result.ToolCallID)
	assert.Equal(t, "check_prescription_status", result.Name)
	assert.Equal(t, "ready for pickup", result.Content)
	assert.False(t, result.IsError())
	assert.GreaterOrEqual(t, result.Duration, time.Duration(0))
}

func TestToolSet_Execute_UnknownTool(t *testing.T) {
	ts := NewToolSet()

	_, result := ts.Execute(context.Background(), types.ToolCall{ID: "call-9", Name: "nope"})

	assert.True(t, result.IsError())
	assert.Contains(t, result.Error, "tool not found")
	assert.Equal(t, "call-9", result.ToolCallID)

	item := result.ToItem()
	assert.Equal(t, types.RoleTool, item.Role)
	assert.Contains(t, item.Content, "Error:")
}

func TestToolSet_Execute_HandlerError(t *testing.T) {
	ts := NewToolSet()
	ts.MustRegister(Tool{
		Schema: types.ToolSchema{Name: "update_name"},
		Handler: func(ctx context.Context, args json.RawMessage) (ToolOutput, error) {
			return ToolOutput{}, errors.New("name must not be empty")
		},
	})

	out, result := ts.Execute(context.Background(), types.ToolCall{ID: "call-2", Name: "update_name"})

	assert.Empty(t, out.Text)
	assert.True(t, result.IsError())
	assert.Equal(t, "name must not be empty", result.Error)
	assert.Contains(t, result.ToItem().Content, "Error: name must not be empty")
}

func TestToolSet_Execute_TransferSignal(t *testing.T) {
	ts := NewToolSet()
	ts.MustRegister(Tool{
		Schema: types.ToolSchema{Name: "transfer_to_info"},
		Handler: func(ctx context.Context, args json.RawMessage) (ToolOutput, error) {
			return ToolOutput{Text: "Transferring to info.", TransferTo: "info"}, nil
		},
	})

	out, result := ts.Execute(context.Background(), types.ToolCall{ID: "call-3", Name: "transfer_to_info"})

	// The tool only signals; nothing here switches agents.
	assert.Equal(t, "info", out.TransferTo)
	assert.Equal(t, "Transferring to info.", result.Content)
	assert.False(t, result.IsError())
}
