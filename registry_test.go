package guardrail

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerTestTool(t *testing.T, reg *Registry, name string) {
	t.Helper()
	tool, err := NewTool(name, "desc", testAction(t))
	require.NoError(t, err)
	reg.Register(tool)
}

func TestRegistry_Register_Execute(t *testing.T) {
	reg := NewRegistry(WithDefaultTimeout(time.Second), WithRecoverPanics(true))
	registerTestTool(t, reg, "create_user")
	all := reg.GetAllTools()
	require.Len(t, all, 1)
	resp, err := reg.Execute(context.Background(), ToolCall{
		ID: "1", ToolName: "create_user", Payload: map[string]any{"name": "John Doe"},
	})
	require.NoError(t, err)
	require.True(t, resp.Success)
	assert.Equal(t, map[string]any{"id": float64(1)}, resp.Data)
}

func TestRegistry_Execute_ValidationFailureIsNotAnError(t *testing.T) {
	reg := NewRegistry()
	registerTestTool(t, reg, "create_user")
	resp, err := reg.Execute(context.Background(), ToolCall{
		ID: "1", ToolName: "create_user", Payload: map[string]any{"name": 1},
	})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	require.NotEmpty(t, resp.Messages)
}

func TestRegistry_GetTool(t *testing.T) {
	reg := NewRegistry()
	registerTestTool(t, reg, "create_user")
	got, ok := reg.GetTool("create_user")
	require.True(t, ok)
	require.NotNil(t, got)
	_, ok = reg.GetTool("missing")
	require.False(t, ok)
}

func TestRegistry_Execute_NotFound(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Execute(context.Background(), ToolCall{ID: "1", ToolName: "nope"})
	require.ErrorIs(t, err, ErrToolNotFound)
}

func TestRegistry_GetAllTools_Sorted(t *testing.T) {
	reg := NewRegistry()
	registerTestTool(t, reg, "zeta")
	registerTestTool(t, reg, "alpha")
	registerTestTool(t, reg, "mid")
	all := reg.GetAllTools()
	require.Len(t, all, 3)
	assert.Equal(t, "alpha", all[0].Name())
	assert.Equal(t, "mid", all[1].Name())
	assert.Equal(t, "zeta", all[2].Name())
}

func TestRegistry_Execute_Timeout(t *testing.T) {
	input := MustCompileSchema(map[string]any{"type": "object"})
	output := MustCompileSchema(map[string]any{"type": "object"})
	act, err := NewAction(input, output, func(ctx context.Context, _ map[string]any) (Response, error) {
		<-ctx.Done()
		return Response{}, ctx.Err()
	})
	require.NoError(t, err)
	tool, err := NewTool("slow", "desc", act, WithTimeout(5*time.Millisecond))
	require.NoError(t, err)
	reg := NewRegistry(WithDefaultTimeout(time.Minute))
	reg.Register(tool)
	_, err = reg.Execute(context.Background(), ToolCall{ID: "1", ToolName: "slow", Payload: map[string]any{}})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRegistry_Execute_RecoversPanic(t *testing.T) {
	input := MustCompileSchema(map[string]any{"type": "object"})
	output := MustCompileSchema(map[string]any{"type": "object"})
	act, err := NewAction(input, output, func(_ context.Context, _ map[string]any) (Response, error) {
		panic("unit bug")
	})
	require.NoError(t, err)
	tool, err := NewTool("broken", "desc", act)
	require.NoError(t, err)
	reg := NewRegistry(WithRecoverPanics(true))
	reg.Register(tool)
	_, err = reg.Execute(context.Background(), ToolCall{ID: "1", ToolName: "broken", Payload: map[string]any{}})
	require.Error(t, err)
	var sysErr *SystemError
	require.ErrorAs(t, err, &sysErr)
	assert.Contains(t, sysErr.Err.Error(), "panic")
}

func TestRegistry_Hooks(t *testing.T) {
	var before, after atomic.Int64
	var gotSummary ExecutionSummary
	reg := NewRegistry(
		WithOnBeforeExecute(func(_ context.Context, call ToolCall) {
			before.Add(1)
		}),
		WithOnAfterExecute(func(_ context.Context, call ToolCall, summary ExecutionSummary, _ time.Duration) {
			after.Add(1)
			gotSummary = summary
		}),
	)
	registerTestTool(t, reg, "create_user")
	resp, err := reg.Execute(context.Background(), ToolCall{
		ID: "call_7", ToolName: "create_user", Payload: map[string]any{"name": "x"},
	})
	require.NoError(t, err)
	require.True(t, resp.Success)
	assert.Equal(t, int64(1), before.Load())
	assert.Equal(t, int64(1), after.Load())
	assert.Equal(t, "call_7", gotSummary.CallID)
	assert.Equal(t, "create_user", gotSummary.ToolName)
	assert.True(t, gotSummary.Success)
	assert.NoError(t, gotSummary.Err)
}

func TestRegistry_ExecuteBatch(t *testing.T) {
	reg := NewRegistry()
	registerTestTool(t, reg, "create_user")
	calls := []ToolCall{
		{ID: "1", ToolName: "create_user", Payload: map[string]any{"name": "a"}},
		{ID: "2", ToolName: "missing", Payload: map[string]any{}},
		{ID: "3", ToolName: "create_user", Payload: map[string]any{"name": 9}},
	}
	results := reg.ExecuteBatch(context.Background(), calls)
	require.Len(t, results, 3)
	// Results keep call order; one failure does not cancel the others.
	assert.Equal(t, "1", results[0].CallID)
	require.NoError(t, results[0].Err)
	assert.True(t, results[0].Response.Success)
	assert.ErrorIs(t, results[1].Err, ErrToolNotFound)
	require.NoError(t, results[2].Err)
	assert.False(t, results[2].Response.Success)
}

func TestRegistry_Shutdown(t *testing.T) {
	reg := NewRegistry()
	registerTestTool(t, reg, "create_user")
	require.NoError(t, reg.Shutdown(context.Background()))
	_, err := reg.Execute(context.Background(), ToolCall{ID: "1", ToolName: "create_user"})
	require.ErrorIs(t, err, ErrShutdown)
	// Shutdown is idempotent.
	require.NoError(t, reg.Shutdown(context.Background()))
}

func TestRegistry_Replace(t *testing.T) {
	reg := NewRegistry()
	registerTestTool(t, reg, "create_user")
	input := MustCompileSchema(map[string]any{"type": "object"})
	output := MustCompileSchema(map[string]any{"type": "object"})
	act, err := NewAction(input, output, func(_ context.Context, _ map[string]any) (Response, error) {
		return Response{Success: true, Data: map[string]any{}}, nil
	})
	require.NoError(t, err)
	replacement, err := NewTool("create_user", "v2", act)
	require.NoError(t, err)
	reg.Register(replacement)
	all := reg.GetAllTools()
	require.Len(t, all, 1)
	assert.Equal(t, "v2", all[0].Description())
}

func TestRegistry_Execute_ErrorPropagates(t *testing.T) {
	input := MustCompileSchema(map[string]any{"type": "object"})
	output := MustCompileSchema(map[string]any{"type": "object"})
	boom := errors.New("downstream outage")
	act, err := NewAction(input, output, func(_ context.Context, _ map[string]any) (Response, error) {
		return Response{}, boom
	})
	require.NoError(t, err)
	tool, err := NewTool("flaky", "desc", act)
	require.NoError(t, err)
	reg := NewRegistry()
	reg.Register(tool)
	_, err = reg.Execute(context.Background(), ToolCall{ID: "1", ToolName: "flaky", Payload: map[string]any{}})
	require.ErrorIs(t, err, boom)
}
