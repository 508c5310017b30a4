package guardrail

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serviceSchemas(t *testing.T) (Schema, Schema) {
	t.Helper()
	input := MustCompileSchema(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name": map[string]any{"type": "string"},
		},
		"required": []any{"name"},
	})
	output := MustCompileSchema(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id": map[string]any{"type": "number"},
		},
		"required": []any{"id"},
	})
	return input, output
}

func TestNewService_NilArguments(t *testing.T) {
	t.Parallel()
	input, output := serviceSchemas(t)
	unit := func(_ context.Context, _ any) (any, error) { return nil, nil }
	_, err := NewService(nil, output, unit)
	require.Error(t, err)
	_, err = NewService(input, nil, unit)
	require.Error(t, err)
	_, err = NewService(input, output, nil)
	require.Error(t, err)
}

func TestService_Execute_Success(t *testing.T) {
	t.Parallel()
	input, output := serviceSchemas(t)
	svc, err := NewService(input, output, func(_ context.Context, payload any) (any, error) {
		record := payload.(map[string]any)
		require.Equal(t, "John Doe", record["name"])
		return map[string]any{"id": 1}, nil
	})
	require.NoError(t, err)
	res, err := svc.Execute(context.Background(), map[string]any{"name": "John Doe"})
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, map[string]any{"id": float64(1)}, res.Value)
}

func TestService_Execute_InputFailure_ShortCircuits(t *testing.T) {
	t.Parallel()
	input, output := serviceSchemas(t)
	var calls atomic.Int64
	svc, err := NewService(input, output, func(_ context.Context, _ any) (any, error) {
		calls.Add(1)
		return map[string]any{"id": 1}, nil
	})
	require.NoError(t, err)
	res, err := svc.Execute(context.Background(), map[string]any{"name": 123})
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "expected string, received number", res.Issues[0].Message)
	assert.Equal(t, []string{"name"}, res.Issues[0].Path)
	assert.Equal(t, int64(0), calls.Load(), "unit must not run on input failure")
}

func TestService_Execute_OutputFailure(t *testing.T) {
	t.Parallel()
	input, output := serviceSchemas(t)
	svc, err := NewService(input, output, func(_ context.Context, _ any) (any, error) {
		return map[string]any{"id": "invalid"}, nil
	})
	require.NoError(t, err)
	res, err := svc.Execute(context.Background(), map[string]any{"name": "John Doe"})
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "expected number, received string", res.Issues[0].Message)
	assert.Equal(t, []string{"id"}, res.Issues[0].Path)
}

func TestService_Execute_NoStripInThisConvention(t *testing.T) {
	t.Parallel()
	input, output := serviceSchemas(t)
	svc, err := NewService(input, output, func(_ context.Context, _ any) (any, error) {
		return map[string]any{"id": 1, "debug": true}, nil
	})
	require.NoError(t, err)
	res, err := svc.Execute(context.Background(), map[string]any{"name": "x"})
	require.NoError(t, err)
	require.True(t, res.Success)
	// Open output schema: undeclared fields stay (Service does not strip).
	assert.Equal(t, map[string]any{"id": float64(1), "debug": true}, res.Value)
}

func TestService_Execute_UnitErrorPropagates(t *testing.T) {
	t.Parallel()
	input, output := serviceSchemas(t)
	boom := errors.New("database unavailable")
	svc, err := NewService(input, output, func(_ context.Context, _ any) (any, error) {
		return nil, boom
	})
	require.NoError(t, err)
	_, err = svc.Execute(context.Background(), map[string]any{"name": "x"})
	require.ErrorIs(t, err, boom)
}

func TestService_Execute_NoEmptyStringNormalization(t *testing.T) {
	t.Parallel()
	input := MustCompileSchema(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name": map[string]any{"type": "string"},
			"note": map[string]any{"type": "number"},
		},
		"required": []any{"name"},
	})
	_, output := serviceSchemas(t)
	svc, err := NewService(input, output, func(_ context.Context, payload any) (any, error) {
		return map[string]any{"id": 1}, nil
	})
	require.NoError(t, err)
	// The Service convention passes the payload to validation as-is: an
	// empty string on an optional number field is a type error.
	res, err := svc.Execute(context.Background(), map[string]any{"name": "x", "note": ""})
	require.NoError(t, err)
	require.False(t, res.Success)
}
